package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/author/model"
	"library-backend/internal/domains/author/service"
	"library-backend/internal/shared/response"
)

type AuthorHandler struct {
	service service.ServiceInterface
}

func NewAuthorHandler(svc service.ServiceInterface) *AuthorHandler {
	return &AuthorHandler{
		service: svc,
	}
}

// List - GET /authors
func (h *AuthorHandler) List(c *gin.Context) {
	authors, err := h.service.ListAuthors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", gin.H{"authors": model.ToResponseList(authors)})
}

// AddForm - GET /authors/add
func (h *AuthorHandler) AddForm(c *gin.Context) {
	response.Success(c, http.StatusOK, "", gin.H{
		"required": []string{"name", "birth_date"},
		"optional": []string{"date_of_death"},
	})
}

// Create - POST /authors/add
func (h *AuthorHandler) Create(c *gin.Context) {
	var req model.CreateAuthorRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	a, err := h.service.CreateAuthor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, fmt.Sprintf("Author '%s' added!", a.Name), a.ToResponse())
}

// GetByID - GET /authors/:id
func (h *AuthorHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	detail, err := h.service.GetAuthor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "", detail.ToResponse())
}

// Delete - POST /authors/:id/delete
func (h *AuthorHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	a, err := h.service.DeleteAuthor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, fmt.Sprintf("Author '%s' deleted.", a.Name), nil)
}

// parseID reads :id. Malformed ids cannot match a row, so they are reported as not found.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, model.ErrAuthorNotFound)
		return uuid.Nil, false
	}
	return id, true
}
