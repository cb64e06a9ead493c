package api

import (
	"net/http"
	"strconv"

	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// passwordHeader carries the password of a protected article
const passwordHeader = "X-Article-Password"

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// Create handles POST /v1/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var in models.ArticleInput
	if !bindJSON(c, &in) {
		return
	}

	article, err := h.services.Article.Create(c.Request.Context(), callerFrom(c), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

// Update handles PUT /v1/articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in models.ArticleInput
	if !bindJSON(c, &in) {
		return
	}

	article, err := h.services.Article.Update(c.Request.Context(), callerFrom(c), id, &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Delete handles DELETE /v1/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.services.Article.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get handles GET /v1/articles/:id where :id is a numeric id or a slug.
// The password of a protected article comes from X-Article-Password or ?password=.
func (h *ArticleHandler) Get(c *gin.Context) {
	opts := service.ReadOptions{
		Password: c.GetHeader(passwordHeader),
		Visitor:  visitorOf(c),
	}
	if opts.Password == "" {
		opts.Password = c.Query("password")
	}

	ref := c.Param("id")
	var (
		article *models.Article
		err     error
	)
	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
		article, err = h.services.Article.Get(c.Request.Context(), callerFrom(c), id, opts)
	} else {
		article, err = h.services.Article.GetBySlug(c.Request.Context(), callerFrom(c), ref, opts)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// List handles GET /v1/articles
func (h *ArticleHandler) List(c *gin.Context) {
	var q models.ArticleQuery
	if !bindQuery(c, &q) {
		return
	}

	page, err := h.services.Article.List(c.Request.Context(), callerFrom(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListManaged handles GET /v1/admin/articles
func (h *ArticleHandler) ListManaged(c *gin.Context) {
	var q models.ArticleQuery
	if !bindQuery(c, &q) {
		return
	}

	page, err := h.services.Article.ListManaged(c.Request.Context(), callerFrom(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Audit handles POST /v1/admin/articles/:id/audit
func (h *ArticleHandler) Audit(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.ArticleAuditRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := h.services.Article.Audit(c.Request.Context(), callerFrom(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// Offline handles POST /v1/admin/articles/:id/offline
func (h *ArticleHandler) Offline(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.ArticleOfflineRequest
	if !bindJSON(c, &req) {
		return
	}

	article, err := h.services.Article.Offline(c.Request.Context(), callerFrom(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// visitorOf identifies a reader for view de-duplication
func visitorOf(c *gin.Context) string {
	if p := callerFrom(c); p != nil {
		return "u" + strconv.FormatInt(p.ID, 10)
	}
	return c.ClientIP()
}
