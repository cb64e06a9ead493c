package api

import (
	"github.com/blog-content-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ExportHandler handles export endpoints
type ExportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(services *service.Services, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		services: services,
		log:      log.With().Str("handler", "export").Logger(),
	}
}

// StreamArticles handles GET /v1/admin/exports/articles?format=ndjson|json
// Streams the export directly to the response
func (h *ExportHandler) StreamArticles(c *gin.Context) {
	format := c.DefaultQuery("format", service.FormatNDJSON)

	err := h.services.Export.StreamArticles(c.Request.Context(), callerFrom(c), c.Writer, format)
	if err == nil {
		return
	}

	// Can't return error JSON after streaming has started
	if c.Writer.Written() {
		h.log.Error().Err(err).Str("format", format).Msg("Export failed mid-stream")
		return
	}
	respondError(c, err)
}
