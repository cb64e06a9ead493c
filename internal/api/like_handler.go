package api

import (
	"context"
	"net/http"

	"github.com/blog-content-api/internal/authz"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// LikeHandler handles like endpoints on articles and comments
type LikeHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(services *service.Services, log zerolog.Logger) *LikeHandler {
	return &LikeHandler{
		services: services,
		log:      log.With().Str("handler", "like").Logger(),
	}
}

type likeOp func(ctx context.Context, caller *authz.Principal, target models.LikeTarget, id int64) (*models.LikeStatus, error)

func (h *LikeHandler) handle(c *gin.Context, target models.LikeTarget, op likeOp) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	status, err := op(c.Request.Context(), callerFrom(c), target, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// LikeArticle handles POST /v1/articles/:id/like
func (h *LikeHandler) LikeArticle(c *gin.Context) {
	h.handle(c, models.LikeArticle, h.services.Like.Like)
}

// UnlikeArticle handles DELETE /v1/articles/:id/like
func (h *LikeHandler) UnlikeArticle(c *gin.Context) {
	h.handle(c, models.LikeArticle, h.services.Like.Unlike)
}

// ArticleStatus handles GET /v1/articles/:id/like
func (h *LikeHandler) ArticleStatus(c *gin.Context) {
	h.handle(c, models.LikeArticle, h.services.Like.Status)
}

// LikeComment handles POST /v1/comments/:id/like
func (h *LikeHandler) LikeComment(c *gin.Context) {
	h.handle(c, models.LikeComment, h.services.Like.Like)
}

// UnlikeComment handles DELETE /v1/comments/:id/like
func (h *LikeHandler) UnlikeComment(c *gin.Context) {
	h.handle(c, models.LikeComment, h.services.Like.Unlike)
}

// CommentStatus handles GET /v1/comments/:id/like
func (h *LikeHandler) CommentStatus(c *gin.Context) {
	h.handle(c, models.LikeComment, h.services.Like.Status)
}
