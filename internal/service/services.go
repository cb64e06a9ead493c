package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/blog-content-api/internal/apperror"
	"github.com/blog-content-api/internal/authz"
	"github.com/blog-content-api/internal/cache"
	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/internal/derive"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/repository"
	"github.com/blog-content-api/internal/validation"
	"github.com/rs/zerolog"
)

// ReadOptions carries the per-request inputs of an article detail read
type ReadOptions struct {
	// Password is compared against a password-protected article
	Password string
	// Visitor identifies the reader for view de-duplication
	Visitor string
}

// ArticleService drives the article lifecycle
type ArticleService interface {
	Create(ctx context.Context, caller *authz.Principal, in *models.ArticleInput) (*models.Article, error)
	Update(ctx context.Context, caller *authz.Principal, id int64, in *models.ArticleInput) (*models.Article, error)
	Audit(ctx context.Context, caller *authz.Principal, id int64, req *models.ArticleAuditRequest) (*models.Article, error)
	Offline(ctx context.Context, caller *authz.Principal, id int64, req *models.ArticleOfflineRequest) (*models.Article, error)
	Delete(ctx context.Context, caller *authz.Principal, id int64) error
	Get(ctx context.Context, caller *authz.Principal, id int64, opts ReadOptions) (*models.Article, error)
	GetBySlug(ctx context.Context, caller *authz.Principal, slug string, opts ReadOptions) (*models.Article, error)
	List(ctx context.Context, caller *authz.Principal, q models.ArticleQuery) (*models.Page[*models.Article], error)
	ListManaged(ctx context.Context, caller *authz.Principal, q models.ArticleQuery) (*models.Page[*models.Article], error)
}

// CommentService drives comment threading and moderation
type CommentService interface {
	Create(ctx context.Context, caller *authz.Principal, in *models.CommentInput, client models.ClientInfo) (*models.Comment, error)
	Audit(ctx context.Context, caller *authz.Principal, id int64, req *models.CommentAuditRequest) (*models.Comment, error)
	Delete(ctx context.Context, caller *authz.Principal, id int64) error
	ListByArticle(ctx context.Context, caller *authz.Principal, articleID int64, q models.CommentQuery) (*models.Page[*models.Comment], error)
	ListForModeration(ctx context.Context, caller *authz.Principal, q models.CommentQuery) (*models.Page[*models.Comment], error)
}

// LikeService records likes on articles and comments
type LikeService interface {
	Like(ctx context.Context, caller *authz.Principal, target models.LikeTarget, targetID int64) (*models.LikeStatus, error)
	Unlike(ctx context.Context, caller *authz.Principal, target models.LikeTarget, targetID int64) (*models.LikeStatus, error)
	Status(ctx context.Context, caller *authz.Principal, target models.LikeTarget, targetID int64) (*models.LikeStatus, error)
}

// TaxonomyService manages tags and categories
type TaxonomyService interface {
	CreateTag(ctx context.Context, caller *authz.Principal, in *models.TagInput) (*models.Tag, error)
	UpdateTag(ctx context.Context, caller *authz.Principal, id int64, in *models.TagInput) (*models.Tag, error)
	DeleteTag(ctx context.Context, caller *authz.Principal, id int64) error
	ListTags(ctx context.Context, caller *authz.Principal) ([]*models.Tag, error)
	CreateCategory(ctx context.Context, caller *authz.Principal, in *models.CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, caller *authz.Principal, id int64, in *models.CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, caller *authz.Principal, id int64) error
	CategoryTree(ctx context.Context, caller *authz.Principal) ([]*models.Category, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	StreamArticles(ctx context.Context, caller *authz.Principal, w http.ResponseWriter, format string) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// Services holds all service interfaces
type Services struct {
	Article  ArticleService
	Comment  CommentService
	Like     LikeService
	Taxonomy TaxonomyService
	Export   ExportService
}

// NewServices creates all services. A nil view recorder counts every read.
func NewServices(repos *repository.Repositories, cfg *config.Config, views cache.ViewRecorder, log zerolog.Logger) *Services {
	if views == nil {
		views = cache.NoopViewRecorder{}
	}

	b := base{
		repos:    repos,
		policy:   cfg.Content,
		validate: validation.New(),
		slugger:  derive.Slugger{Transliterate: cfg.Content.TransliterateSlugs},
		now:      func() time.Time { return time.Now().UTC() },
	}

	return &Services{
		Article:  newArticleService(b, views, log),
		Comment:  newCommentService(b, log),
		Like:     newLikeService(b, log),
		Taxonomy: newTaxonomyService(b, log),
		Export:   newExportService(b, log),
	}
}

// base is the shared wiring of every service
type base struct {
	repos    *repository.Repositories
	policy   config.ContentConfig
	validate *validation.Validator
	slugger  derive.Slugger
	now      func() time.Time
}

// pageBounds applies the configured page size default and cap
func (b base) pageBounds(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = b.policy.DefaultPageSize
	}
	if size > b.policy.MaxPageSize {
		size = b.policy.MaxPageSize
	}
	return page, size
}

// storeErr passes caller-facing errors through and wraps everything else as
// an opaque system failure, logging the cause once
func storeErr(log zerolog.Logger, err error, op string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	log.Error().Err(err).Str("op", op).Msg("Store operation failed")
	return apperror.System(err, op)
}

func validationErr(fields []apperror.FieldError) error {
	return apperror.Validation("invalid request", fields...)
}
