package api

import (
	"net/http"

	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// TaxonomyHandler handles tag and category endpoints
type TaxonomyHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewTaxonomyHandler creates a new TaxonomyHandler
func NewTaxonomyHandler(services *service.Services, log zerolog.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{
		services: services,
		log:      log.With().Str("handler", "taxonomy").Logger(),
	}
}

// ListTags handles GET /v1/tags
func (h *TaxonomyHandler) ListTags(c *gin.Context) {
	tags, err := h.services.Taxonomy.ListTags(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": tags})
}

// CreateTag handles POST /v1/admin/tags
func (h *TaxonomyHandler) CreateTag(c *gin.Context) {
	var in models.TagInput
	if !bindJSON(c, &in) {
		return
	}
	tag, err := h.services.Taxonomy.CreateTag(c.Request.Context(), callerFrom(c), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// UpdateTag handles PUT /v1/admin/tags/:id
func (h *TaxonomyHandler) UpdateTag(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in models.TagInput
	if !bindJSON(c, &in) {
		return
	}
	tag, err := h.services.Taxonomy.UpdateTag(c.Request.Context(), callerFrom(c), id, &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// DeleteTag handles DELETE /v1/admin/tags/:id
func (h *TaxonomyHandler) DeleteTag(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.services.Taxonomy.DeleteTag(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CategoryTree handles GET /v1/categories
func (h *TaxonomyHandler) CategoryTree(c *gin.Context) {
	tree, err := h.services.Taxonomy.CategoryTree(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": tree})
}

// CreateCategory handles POST /v1/admin/categories
func (h *TaxonomyHandler) CreateCategory(c *gin.Context) {
	var in models.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	category, err := h.services.Taxonomy.CreateCategory(c.Request.Context(), callerFrom(c), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles PUT /v1/admin/categories/:id
func (h *TaxonomyHandler) UpdateCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var in models.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	category, err := h.services.Taxonomy.UpdateCategory(c.Request.Context(), callerFrom(c), id, &in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /v1/admin/categories/:id
func (h *TaxonomyHandler) DeleteCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.services.Taxonomy.DeleteCategory(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
