package api

import (
	"net/http"

	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CommentHandler handles comment endpoints
type CommentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// Create handles POST /v1/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var in models.CommentInput
	if !bindJSON(c, &in) {
		return
	}

	client := models.ClientInfo{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	comment, err := h.services.Comment.Create(c.Request.Context(), callerFrom(c), &in, client)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Delete handles DELETE /v1/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.services.Comment.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListByArticle handles GET /v1/articles/:id/comments
func (h *CommentHandler) ListByArticle(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var q models.CommentQuery
	if !bindQuery(c, &q) {
		return
	}

	page, err := h.services.Comment.ListByArticle(c.Request.Context(), callerFrom(c), id, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListForModeration handles GET /v1/admin/comments
func (h *CommentHandler) ListForModeration(c *gin.Context) {
	var q models.CommentQuery
	if !bindQuery(c, &q) {
		return
	}

	page, err := h.services.Comment.ListForModeration(c.Request.Context(), callerFrom(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Audit handles POST /v1/admin/comments/:id/audit
func (h *CommentHandler) Audit(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.CommentAuditRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.services.Comment.Audit(c.Request.Context(), callerFrom(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}
