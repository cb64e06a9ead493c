package api

import (
	"net/http"
	"strconv"

	"github.com/blog-content-api/internal/apperror"
	"github.com/gin-gonic/gin"
)

// statusFor maps an error kind onto its HTTP status
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindPermission:
		return http.StatusForbidden
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ..., "fields": [...]}. System failures
// were logged by the service and are reported opaquely.
func respondError(c *gin.Context, err error) {
	body := gin.H{"error": apperror.MessageOf(err)}
	if fields := apperror.FieldsOf(err); len(fields) > 0 {
		body["fields"] = fields
	}
	c.AbortWithStatusJSON(statusFor(apperror.KindOf(err)), body)
}

// bindJSON decodes the request body, reporting malformed JSON as a validation error
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperror.Validation("invalid request body", apperror.FieldError{
			Field: "body", Message: err.Error(),
		}))
		return false
	}
	return true
}

// bindQuery decodes query parameters into dst
func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		respondError(c, apperror.Validation("invalid query parameters", apperror.FieldError{
			Field: "query", Message: err.Error(),
		}))
		return false
	}
	return true
}

// idParam parses a positive numeric path parameter
func idParam(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperror.Validation("invalid "+name, apperror.FieldError{
			Field: name, Message: name + " must be a positive integer", Value: raw,
		}))
		return 0, false
	}
	return id, true
}
