package service

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/blog-content-api/internal/apperror"
	"github.com/blog-content-api/internal/authz"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/repository"
	"github.com/rs/zerolog"
)

// exportBatch is the number of articles read and flushed per round trip
const exportBatch = 100

// Export formats
const (
	FormatNDJSON = "ndjson"
	FormatJSON   = "json"
)

// exportService is the concrete implementation of ExportService
type exportService struct {
	base
	log zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(b base, log zerolog.Logger) *exportService {
	return &exportService{
		base: b,
		log:  log.With().Str("service", "export").Logger(),
	}
}

// StreamArticles streams every live article with its tag ids
func (s *exportService) StreamArticles(ctx context.Context, caller *authz.Principal, w http.ResponseWriter, format string) error {
	if err := authz.Authorize(caller, 0, authz.AdminOnly); err != nil {
		return err
	}

	s.log.Info().Str("format", format).Int64("caller_id", caller.ID).Msg("Starting articles export")

	switch format {
	case FormatNDJSON:
		return s.streamNDJSON(ctx, w)
	case FormatJSON:
		return s.streamJSON(ctx, w)
	default:
		return apperror.Validation("unsupported format", apperror.FieldError{
			Field: "format", Message: "format must be one of: ndjson, json", Value: format,
		})
	}
}

func (s *exportService) streamNDJSON(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", "attachment; filename=articles.ndjson")

	flusher, _ := w.(http.Flusher)
	count := 0

	err := s.eachRecord(ctx, func(rec *models.ArticleNDJSON) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		w.Write(data)
		w.Write([]byte("\n"))
		count++

		// Flush every batch for streaming
		if count%exportBatch == 0 && flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	s.log.Info().Int("count", count).Msg("Articles export completed")
	return err
}

func (s *exportService) streamJSON(ctx context.Context, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=articles.json")

	w.Write([]byte("["))
	first := true
	count := 0

	err := s.eachRecord(ctx, func(rec *models.ArticleNDJSON) error {
		if !first {
			w.Write([]byte(","))
		}
		first = false

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		w.Write(data)
		count++
		return nil
	})

	w.Write([]byte("]"))
	s.log.Info().Int("count", count).Msg("Articles export completed")
	return err
}

// eachRecord walks the article table in batches, attaching tag ids per batch
func (s *exportService) eachRecord(ctx context.Context, fn func(*models.ArticleNDJSON) error) error {
	return s.repos.Article.StreamAll(ctx, exportBatch, func(batch []*models.Article) error {
		ids := make([]int64, len(batch))
		for i, a := range batch {
			ids[i] = a.ID
		}
		links, err := s.repos.ArticleTag.TagIDsByArticles(ctx, ids)
		if err != nil {
			return err
		}

		for _, a := range batch {
			tagIDs := links[a.ID]
			if tagIDs == nil {
				tagIDs = []int64{}
			}
			if err := fn(&models.ArticleNDJSON{
				ID:          a.ID,
				Slug:        a.Slug,
				Title:       a.Title,
				Summary:     a.Summary,
				Content:     a.Content,
				AuthorID:    a.AuthorID,
				CategoryID:  a.CategoryID,
				TagIDs:      tagIDs,
				Status:      a.Status.String(),
				PublishedAt: a.PublishedAt,
				CreatedAt:   a.CreatedAt,
				UpdatedAt:   a.UpdatedAt,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountByStatus returns the number of live articles per status name
func (s *exportService) CountByStatus(ctx context.Context) (map[string]int, error) {
	statuses := []models.ArticleStatus{
		models.ArticleDraft, models.ArticleReviewing, models.ArticlePublished,
		models.ArticleRejected, models.ArticleOffline,
	}

	counts := make(map[string]int, len(statuses))
	for _, st := range statuses {
		_, total, err := s.repos.Article.List(ctx, repository.ArticleFilter{
			Statuses: []models.ArticleStatus{st},
			Limit:    1,
		})
		if err != nil {
			return nil, storeErr(s.log, err, "count articles")
		}
		counts[st.String()] = total
	}
	return counts, nil
}
