// Package testinfra provides databases for repository and service tests.
//
// NewSQLite returns a migrated in-memory store and needs nothing else.
// NewPostgres (build tag "integration") starts a disposable Postgres
// container through testcontainers-go:
//
//	func TestCatalogOnPostgres(t *testing.T) {
//	    db := testinfra.NewPostgres(t)
//	    svc := service.NewBookService(db.SQL, ...)
//	}
package testinfra
