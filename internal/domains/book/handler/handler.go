package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authorModel "library-backend/internal/domains/author/model"
	authorService "library-backend/internal/domains/author/service"
	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/service"
	"library-backend/internal/shared/response"
	"library-backend/internal/shared/utils"
)

type BookHandler struct {
	service service.ServiceInterface
	authors authorService.ServiceInterface
}

func NewBookHandler(svc service.ServiceInterface, authors authorService.ServiceInterface) *BookHandler {
	return &BookHandler{
		service: svc,
		authors: authors,
	}
}

// Home - GET /?search=&author_id=&sort=title|author
func (h *BookHandler) Home(c *gin.Context) {
	filter := model.BookFilter{
		Search:   c.Query("search"),
		AuthorID: utils.ParseOptionalUUID(c.Query("author_id")),
		Sort:     c.Query("sort"),
	}

	result, err := h.service.ListBooks(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	authors, err := h.authors.ListAuthors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result.Message, gin.H{
		"books":           model.ToResponseList(result.Books),
		"authors":         authorModel.ToResponseList(authors),
		"search":          filter.Search,
		"selected_author": filter.AuthorID,
		"selected_sort":   filter.NormalizedSort(),
	})
}

// AddForm - GET /books/add
func (h *BookHandler) AddForm(c *gin.Context) {
	authors, err := h.authors.ListAuthors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", gin.H{"authors": authorModel.ToResponseList(authors)})
}

// Create - POST /books/add
func (h *BookHandler) Create(c *gin.Context) {
	var req model.CreateBookRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	b, err := h.service.CreateBook(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, fmt.Sprintf("'%s' added to your library!", b.Title), b.ToResponse())
}

// GetByID - GET /books/:id
func (h *BookHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, err := h.service.GetBook(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", b.ToResponse())
}

// EditForm - GET /books/:id/edit
func (h *BookHandler) EditForm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, err := h.service.GetBook(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	authors, err := h.authors.ListAuthors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", gin.H{
		"book":    b.ToResponse(),
		"authors": authorModel.ToResponseList(authors),
	})
}

// Edit - POST /books/:id/edit
func (h *BookHandler) Edit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.EditBookRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	b, err := h.service.EditBook(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Book updated.", b.ToResponse())
}

// Rate - POST /books/:id/rate
func (h *BookHandler) Rate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.RateBookRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, model.ErrInvalidRating)
		return
	}

	rating, err := h.service.RateBook(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", gin.H{"rating": rating})
}

// Delete - POST /books/:id/delete
func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.service.DeleteBook(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	msg := fmt.Sprintf("'%s' deleted.", result.Book.Title)
	if result.AuthorDeleted {
		msg = fmt.Sprintf("'%s' deleted. %s had no other books and was removed too.", result.Book.Title, result.Book.AuthorName)
	}
	response.Success(c, http.StatusOK, msg, gin.H{"author_deleted": result.AuthorDeleted})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, model.ErrBookNotFound)
		return uuid.Nil, false
	}
	return id, true
}
