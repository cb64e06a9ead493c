package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/blog-content-api/internal/apperror"
	"github.com/blog-content-api/internal/derive"
	"github.com/blog-content-api/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator checks request structs against their `validate` tags
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with the content-specific rules registered
func New() *Validator {
	v := validator.New()

	// Report json field names rather than Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		return derive.IsValidSlug(fl.Field().String())
	})
	mustRegister(v, "author_status", func(fl validator.FieldLevel) bool {
		return models.AuthorStatuses[models.ArticleStatus(fl.Field().Int())]
	})
	mustRegister(v, "audit_status", func(fl validator.FieldLevel) bool {
		s := models.ArticleStatus(fl.Field().Int())
		return s == models.ArticlePublished || s == models.ArticleRejected
	})
	mustRegister(v, "comment_audit_status", func(fl validator.FieldLevel) bool {
		s := models.CommentStatus(fl.Field().Int())
		return s == models.CommentApproved || s == models.CommentDeleted
	})

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Struct validates s and returns one FieldError per failed rule
func (v *Validator) Struct(s interface{}) []apperror.FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperror.FieldError{{Field: "request", Message: err.Error()}}
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{
			Field:   fieldPath(fe),
			Message: messageFor(fe),
			Value:   valueFor(fe),
		})
	}
	return fields
}

// fieldPath strips the top-level struct name: "ArticleInput.tag_ids[0]" -> "tag_ids[0]"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must contain at most %s items", fe.Field(), fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), paramBound(fe))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "url":
		return fe.Field() + " must be a valid URL"
	case "slug":
		return "slug must contain only lowercase letters, numbers and hyphens"
	case "author_status":
		return "status must be one of: 0 (draft), 1 (reviewing), 2 (published)"
	case "audit_status":
		return "status must be one of: 2 (published), 3 (rejected)"
	case "comment_audit_status":
		return "status must be one of: 1 (approved), 2 (deleted)"
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func paramBound(fe validator.FieldError) string {
	if fe.Tag() == "gte" {
		return "or equal to " + fe.Param()
	}
	return fe.Param()
}

// valueFor echoes short scalar values back to the caller
func valueFor(fe validator.FieldError) interface{} {
	switch v := fe.Value().(type) {
	case string:
		if len(v) > 100 {
			return nil
		}
		return v
	case int, int64, models.ArticleStatus, models.CommentStatus:
		return v
	default:
		return nil
	}
}

// Required returns a field error when value is blank
func Required(field, value string) []apperror.FieldError {
	if strings.TrimSpace(value) == "" {
		return []apperror.FieldError{{Field: field, Message: field + " is required"}}
	}
	return nil
}
