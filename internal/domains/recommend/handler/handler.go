package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/recommend/model"
	"library-backend/internal/domains/recommend/service"
	"library-backend/internal/shared/response"
)

type RecommendHandler struct {
	service service.ServiceInterface
}

func NewRecommendHandler(svc service.ServiceInterface) *RecommendHandler {
	return &RecommendHandler{service: svc}
}

// Show - GET /recommend
// Lists the books a recommendation would be based on.
func (h *RecommendHandler) Show(c *gin.Context) {
	books, err := h.service.EligibleBooks(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	msg := ""
	if len(books) == 0 {
		msg = model.MsgNoEligibleBooks
	}
	response.Success(c, http.StatusOK, msg, gin.H{"user_books": bookModel.ToResponseList(books)})
}

// Generate - POST /recommend
func (h *RecommendHandler) Generate(c *gin.Context) {
	result, err := h.service.Recommend(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result.Message, result)
}

// Add - POST /recommend/add
func (h *RecommendHandler) Add(c *gin.Context) {
	var req model.AddRecommendedRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, model.ErrTitleAuthorRequired)
		return
	}

	b, err := h.service.AddRecommended(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, fmt.Sprintf("'%s' by %s has been added!", b.Title, b.AuthorName), b.ToResponse())
}
