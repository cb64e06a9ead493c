package validation

import (
	"strings"
	"testing"

	"github.com/blog-content-api/internal/apperror"
	"github.com/blog-content-api/internal/models"
)

func fieldNames(errs []apperror.FieldError) []string {
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, e.Field)
	}
	return names
}

func hasField(errs []apperror.FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidateArticleInput(t *testing.T) {
	validator := New()
	catID := int64(3)
	badCat := int64(0)
	tags := []int64{1, 2}
	badTags := []int64{1, -4}

	tests := []struct {
		name       string
		input      *models.ArticleInput
		wantErrors int
		wantFields []string
	}{
		{
			name: "valid article with all fields",
			input: &models.ArticleInput{
				Title:      "Hello World",
				Slug:       "hello-world",
				Content:    "x",
				CategoryID: &catID,
				TagIDs:     &tags,
				SourceURL:  "https://example.com/post",
				Status:     models.ArticlePublished,
			},
			wantErrors: 0,
		},
		{
			name:       "missing title and content",
			input:      &models.ArticleInput{Status: models.ArticleDraft},
			wantErrors: 2,
			wantFields: []string{"title", "content"},
		},
		{
			name:       "title over 200 characters",
			input:      &models.ArticleInput{Title: strings.Repeat("t", 201), Content: "x"},
			wantErrors: 1,
			wantFields: []string{"title"},
		},
		{
			name:       "cjk title of 200 characters is fine",
			input:      &models.ArticleInput{Title: strings.Repeat("文", 200), Content: "x"},
			wantErrors: 0,
		},
		{
			name:       "bad slug characters",
			input:      &models.ArticleInput{Title: "t", Slug: "Hello World", Content: "x"},
			wantErrors: 1,
			wantFields: []string{"slug"},
		},
		{
			name:       "status outside author domain",
			input:      &models.ArticleInput{Title: "t", Content: "x", Status: models.ArticleRejected},
			wantErrors: 1,
			wantFields: []string{"status"},
		},
		{
			name:       "non-positive category id",
			input:      &models.ArticleInput{Title: "t", Content: "x", CategoryID: &badCat},
			wantErrors: 1,
			wantFields: []string{"category_id"},
		},
		{
			name:       "negative tag id",
			input:      &models.ArticleInput{Title: "t", Content: "x", TagIDs: &badTags},
			wantErrors: 1,
			wantFields: []string{"tag_ids[1]"},
		},
		{
			name:       "invalid source url",
			input:      &models.ArticleInput{Title: "t", Content: "x", SourceURL: "not a url"},
			wantErrors: 1,
			wantFields: []string{"source_url"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := validator.Struct(tt.input)
			if len(errors) != tt.wantErrors {
				t.Errorf("Expected %d errors, got %d: %v", tt.wantErrors, len(errors), fieldNames(errors))
			}
			for _, field := range tt.wantFields {
				if !hasField(errors, field) {
					t.Errorf("Expected error for field %q, got %v", field, fieldNames(errors))
				}
			}
		})
	}
}

func TestValidateAuditRequests(t *testing.T) {
	validator := New()

	tests := []struct {
		name       string
		input      interface{}
		wantErrors int
	}{
		{"publish decision", &models.ArticleAuditRequest{Status: models.ArticlePublished}, 0},
		{"reject decision", &models.ArticleAuditRequest{Status: models.ArticleRejected, AuditReason: "spam"}, 0},
		{"draft is not a decision", &models.ArticleAuditRequest{Status: models.ArticleDraft}, 1},
		{"offline is not a decision", &models.ArticleAuditRequest{Status: models.ArticleOffline}, 1},
		{"offline needs a reason", &models.ArticleOfflineRequest{}, 1},
		{"offline with reason", &models.ArticleOfflineRequest{Reason: "outdated"}, 0},
		{"comment approve", &models.CommentAuditRequest{Status: models.CommentApproved}, 0},
		{"comment delete", &models.CommentAuditRequest{Status: models.CommentDeleted}, 0},
		{"comment pending is not a decision", &models.CommentAuditRequest{Status: models.CommentPending}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := validator.Struct(tt.input)
			if len(errors) != tt.wantErrors {
				t.Errorf("Expected %d errors, got %d: %v", tt.wantErrors, len(errors), fieldNames(errors))
			}
		})
	}
}

func TestValidateCommentInput(t *testing.T) {
	validator := New()

	errors := validator.Struct(&models.CommentInput{Content: "hi", ArticleID: 1})
	if len(errors) != 0 {
		t.Errorf("Expected valid comment, got %v", fieldNames(errors))
	}

	errors = validator.Struct(&models.CommentInput{Content: strings.Repeat("c", models.MaxCommentLength+1), ArticleID: 1})
	if !hasField(errors, "content") {
		t.Errorf("Expected content length error, got %v", fieldNames(errors))
	}

	errors = validator.Struct(&models.CommentInput{Content: "hi"})
	if !hasField(errors, "article_id") {
		t.Errorf("Expected article_id error, got %v", fieldNames(errors))
	}
}

func TestValidateTaxonomyInput(t *testing.T) {
	validator := New()
	bad := 5

	errors := validator.Struct(&models.TagInput{Name: "go", Status: &bad})
	if !hasField(errors, "status") {
		t.Errorf("Expected status error, got %v", fieldNames(errors))
	}

	errors = validator.Struct(&models.CategoryInput{Name: "Tech", Slug: "tech"})
	if len(errors) != 0 {
		t.Errorf("Expected valid category, got %v", fieldNames(errors))
	}
}

func TestRequired(t *testing.T) {
	if errs := Required("reason", "   "); len(errs) != 1 {
		t.Errorf("Expected blank reason to fail, got %v", errs)
	}
	if errs := Required("reason", "spam"); errs != nil {
		t.Errorf("Expected reason to pass, got %v", errs)
	}
}

func BenchmarkValidateArticleInput(b *testing.B) {
	v := New()
	in := &models.ArticleInput{
		Title:     "Benchmarking the validator",
		Slug:      "benchmarking-the-validator",
		Content:   strings.Repeat("body ", 100),
		TagIDs:    &[]int64{1, 2, 3},
		SourceURL: "https://example.com/post",
		Status:    models.ArticlePublished,
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		v.Struct(in)
	}
}
