package mocks

import (
	"context"
	"net/http"

	"github.com/blog-content-api/internal/authz"
	"github.com/blog-content-api/internal/service"
)

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	StreamArticlesFunc func(ctx context.Context, caller *authz.Principal, w http.ResponseWriter, format string) error
	CountErr           error
	Counts             map[string]int
	Formats            []string
}

// Verify interface compliance
var _ service.ExportService = (*MockExportService)(nil)

func NewMockExportService() *MockExportService {
	return &MockExportService{
		Counts: make(map[string]int),
	}
}

func (m *MockExportService) StreamArticles(ctx context.Context, caller *authz.Principal, w http.ResponseWriter, format string) error {
	m.Formats = append(m.Formats, format)
	if m.StreamArticlesFunc != nil {
		return m.StreamArticlesFunc(ctx, caller, w, format)
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Write([]byte(`{"id":1,"slug":"mock"}` + "\n"))
	return nil
}

func (m *MockExportService) CountByStatus(ctx context.Context) (map[string]int, error) {
	if m.CountErr != nil {
		return nil, m.CountErr
	}
	return m.Counts, nil
}
