package service

import (
	"context"
	"strings"
	"time"

	"github.com/blog-content-api/internal/apperror"
	"github.com/blog-content-api/internal/authz"
	"github.com/blog-content-api/internal/cache"
	"github.com/blog-content-api/internal/derive"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/repository"
	"github.com/blog-content-api/internal/validation"
	"github.com/rs/zerolog"
)

// summaryLen is the length of an auto-generated summary, in runes
const summaryLen = 200

// articleService is the concrete implementation of ArticleService
type articleService struct {
	base
	views cache.ViewRecorder
	log   zerolog.Logger
}

// newArticleService creates a new ArticleService
func newArticleService(b base, views cache.ViewRecorder, log zerolog.Logger) *articleService {
	return &articleService{
		base:  b,
		views: views,
		log:   log.With().Str("service", "article").Logger(),
	}
}

// Create validates the input, derives slug and metrics, and stores the
// article with its tag links and counter bumps in one transaction
func (s *articleService) Create(ctx context.Context, caller *authz.Principal, in *models.ArticleInput) (*models.Article, error) {
	if err := authz.RequireActive(caller); err != nil {
		return nil, err
	}
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	now := s.now()
	article := &models.Article{AuthorID: caller.ID, CreatedAt: now}
	s.apply(article, in, caller, now)

	var tagIDs []int64
	if in.TagIDs != nil {
		tagIDs = uniqueIDs(*in.TagIDs)
	}

	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		if err := checkCategory(ctx, tx, article.CategoryID); err != nil {
			return err
		}
		if err := checkTags(ctx, tx, tagIDs); err != nil {
			return err
		}

		slug, err := s.resolveSlug(ctx, tx, in.Slug, article.Title, 0)
		if err != nil {
			return err
		}
		article.Slug = slug

		if err := tx.Article.Create(ctx, article); err != nil {
			return err
		}
		if err := tx.ArticleTag.Add(ctx, article.ID, tagIDs, now); err != nil {
			return err
		}

		c := newCounters(tx, now)
		if err := c.tagsLinked(ctx, tagIDs, 1); err != nil {
			return err
		}
		return c.categoryMoved(ctx, nil, article.CategoryID)
	})
	if err != nil {
		return nil, storeErr(s.log, err, "create article")
	}

	s.log.Info().
		Int64("article_id", article.ID).
		Int64("author_id", article.AuthorID).
		Str("status", article.Status.String()).
		Msg("Article created")

	return s.withTags(ctx, article)
}

// Update replaces the editable fields of an article. A nil TagIDs leaves the
// tag links untouched and a blank slug keeps the current one.
func (s *articleService) Update(ctx context.Context, caller *authz.Principal, id int64, in *models.ArticleInput) (*models.Article, error) {
	if err := authz.RequireActive(caller); err != nil {
		return nil, err
	}
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	now := s.now()
	var article *models.Article

	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		current, err := tx.Article.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return apperror.NotFound("article %d not found", id)
		}
		if err := authz.Authorize(caller, current.AuthorID, authz.OwnerOrAdmin); err != nil {
			return err
		}

		if !sameCategory(current.CategoryID, in.CategoryID) {
			if err := checkCategory(ctx, tx, in.CategoryID); err != nil {
				return err
			}
		}

		var tagIDs []int64
		if in.TagIDs != nil {
			tagIDs = uniqueIDs(*in.TagIDs)
			if err := checkTags(ctx, tx, tagIDs); err != nil {
				return err
			}
		}

		if in.Slug != "" && in.Slug != current.Slug {
			if _, err := s.resolveSlug(ctx, tx, in.Slug, "", current.ID); err != nil {
				return err
			}
			current.Slug = in.Slug
		}

		oldCategory := current.CategoryID
		s.apply(current, in, caller, now)

		if err := tx.Article.Update(ctx, current); err != nil {
			return err
		}

		c := newCounters(tx, now)
		if in.TagIDs != nil {
			removed, err := tx.ArticleTag.RemoveAll(ctx, current.ID)
			if err != nil {
				return err
			}
			if err := c.tagsLinked(ctx, removed, -1); err != nil {
				return err
			}
			if err := tx.ArticleTag.Add(ctx, current.ID, tagIDs, now); err != nil {
				return err
			}
			if err := c.tagsLinked(ctx, tagIDs, 1); err != nil {
				return err
			}
		}
		if err := c.categoryMoved(ctx, oldCategory, current.CategoryID); err != nil {
			return err
		}

		article = current
		return nil
	})
	if err != nil {
		return nil, storeErr(s.log, err, "update article")
	}

	s.log.Info().
		Int64("article_id", article.ID).
		Str("status", article.Status.String()).
		Msg("Article updated")

	return s.reload(ctx, article.ID)
}

// Audit resolves a Reviewing article to Published or Rejected
func (s *articleService) Audit(ctx context.Context, caller *authz.Principal, id int64, req *models.ArticleAuditRequest) (*models.Article, error) {
	if err := authz.RequireActive(caller); err != nil {
		return nil, err
	}
	req.AuditReason = strings.TrimSpace(req.AuditReason)
	if fields := s.validate.Struct(req); len(fields) > 0 {
		return nil, validationErr(fields)
	}
	if req.Status == models.ArticleRejected {
		if fields := validation.Required("audit_reason", req.AuditReason); fields != nil {
			return nil, validationErr(fields)
		}
	}

	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.Status != models.ArticleReviewing {
		return nil, apperror.Conflict("article %d is %s, only reviewing articles can be audited", id, article.Status)
	}
	if err := authz.Authorize(caller, article.AuthorID, authz.AdminOnly); err != nil {
		return nil, err
	}

	now := s.now()
	article.Status = req.Status
	article.AuditReason = req.AuditReason
	article.UpdatedAt = now
	stampPublished(article, now)

	if err := s.repos.Article.Update(ctx, article); err != nil {
		return nil, storeErr(s.log, err, "audit article")
	}

	s.log.Info().
		Int64("article_id", id).
		Int64("moderator_id", caller.ID).
		Str("status", article.Status.String()).
		Msg("Article audited")

	return s.withTags(ctx, article)
}

// Offline takes a Published article down with a mandatory reason
func (s *articleService) Offline(ctx context.Context, caller *authz.Principal, id int64, req *models.ArticleOfflineRequest) (*models.Article, error) {
	if err := authz.RequireActive(caller); err != nil {
		return nil, err
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if fields := s.validate.Struct(req); len(fields) > 0 {
		return nil, validationErr(fields)
	}

	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.Status != models.ArticlePublished {
		return nil, apperror.Conflict("article %d is %s, only published articles can be taken offline", id, article.Status)
	}
	if err := authz.Authorize(caller, article.AuthorID, authz.AdminOnly); err != nil {
		return nil, err
	}

	article.Status = models.ArticleOffline
	article.AuditReason = req.Reason
	article.UpdatedAt = s.now()

	if err := s.repos.Article.Update(ctx, article); err != nil {
		return nil, storeErr(s.log, err, "offline article")
	}

	s.log.Info().
		Int64("article_id", id).
		Int64("moderator_id", caller.ID).
		Msg("Article taken offline")

	return s.withTags(ctx, article)
}

// Delete soft-deletes the article, unlinks its tags and releases its counters
func (s *articleService) Delete(ctx context.Context, caller *authz.Principal, id int64) error {
	if err := authz.RequireActive(caller); err != nil {
		return err
	}

	now := s.now()
	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		article, err := tx.Article.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if article == nil {
			return apperror.NotFound("article %d not found", id)
		}
		if err := authz.Authorize(caller, article.AuthorID, authz.OwnerOrAdmin); err != nil {
			return err
		}

		if err := tx.Article.SoftDelete(ctx, id, now); err != nil {
			return err
		}
		removed, err := tx.ArticleTag.RemoveAll(ctx, id)
		if err != nil {
			return err
		}

		c := newCounters(tx, now)
		if err := c.tagsLinked(ctx, removed, -1); err != nil {
			return err
		}
		return c.categoryMoved(ctx, article.CategoryID, nil)
	})
	if err != nil {
		return storeErr(s.log, err, "delete article")
	}

	s.log.Info().Int64("article_id", id).Int64("caller_id", caller.ID).Msg("Article deleted")
	return nil
}

// Get returns one article subject to visibility and the password gate
func (s *articleService) Get(ctx context.Context, caller *authz.Principal, id int64, opts ReadOptions) (*models.Article, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.read(ctx, caller, article, opts)
}

// GetBySlug is Get addressed by slug
func (s *articleService) GetBySlug(ctx context.Context, caller *authz.Principal, slug string, opts ReadOptions) (*models.Article, error) {
	article, err := s.repos.Article.GetBySlug(ctx, slug)
	if err != nil {
		return nil, storeErr(s.log, err, "get article")
	}
	if article == nil {
		return nil, apperror.NotFound("article %q not found", slug)
	}
	return s.read(ctx, caller, article, opts)
}

func (s *articleService) read(ctx context.Context, caller *authz.Principal, article *models.Article, opts ReadOptions) (*models.Article, error) {
	if article.Status != models.ArticlePublished && !authz.CanView(caller, article.AuthorID) {
		return nil, apperror.Permission("article %d is %s and not visible to the caller", article.ID, article.Status)
	}
	if article.Password != "" && opts.Password != article.Password {
		return nil, apperror.Permission("article %d is password protected", article.ID)
	}

	if article.Status == models.ArticlePublished {
		s.recordView(ctx, article, opts.Visitor)
	}
	return s.withTags(ctx, article)
}

// recordView bumps view_count once per visitor window. Failures only cost a view.
func (s *articleService) recordView(ctx context.Context, article *models.Article, visitor string) {
	count, err := s.views.ShouldCount(ctx, article.ID, visitor)
	if err != nil {
		s.log.Warn().Err(err).Int64("article_id", article.ID).Msg("View de-duplication failed")
		count = true
	}
	if !count {
		return
	}
	if err := newCounters(s.repos, s.now()).articleViewed(ctx, article.ID); err != nil {
		s.log.Warn().Err(err).Int64("article_id", article.ID).Msg("Failed to record view")
		return
	}
	article.ViewCount++
}

// List returns published articles. The status filter is honored only for
// admins and for authors listing their own articles.
func (s *articleService) List(ctx context.Context, caller *authz.Principal, q models.ArticleQuery) (*models.Page[*models.Article], error) {
	filter, err := s.buildFilter(q)
	if err != nil {
		return nil, err
	}

	ownList := q.AuthorID != nil && authz.CanView(caller, *q.AuthorID)
	switch {
	case ownList && q.Status != nil:
		filter.Statuses = []models.ArticleStatus{*q.Status}
	case ownList:
		// an author's own listing shows every status
	default:
		filter.Statuses = []models.ArticleStatus{models.ArticlePublished}
	}

	return s.list(ctx, filter, q)
}

// ListManaged is the admin listing across every status
func (s *articleService) ListManaged(ctx context.Context, caller *authz.Principal, q models.ArticleQuery) (*models.Page[*models.Article], error) {
	if err := authz.Authorize(caller, 0, authz.AdminOnly); err != nil {
		return nil, err
	}
	filter, err := s.buildFilter(q)
	if err != nil {
		return nil, err
	}
	if q.Status != nil {
		filter.Statuses = []models.ArticleStatus{*q.Status}
	}
	return s.list(ctx, filter, q)
}

func (s *articleService) buildFilter(q models.ArticleQuery) (repository.ArticleFilter, error) {
	var fields []apperror.FieldError
	switch q.SortBy {
	case "", models.SortPublishedAt, models.SortViewCount, models.SortLikeCount:
	default:
		fields = append(fields, apperror.FieldError{
			Field: "sort_by", Message: "sort_by must be one of: published_at, view_count, like_count", Value: q.SortBy,
		})
	}
	switch strings.ToLower(q.SortOrder) {
	case "", "asc", "desc":
	default:
		fields = append(fields, apperror.FieldError{
			Field: "sort_order", Message: "sort_order must be asc or desc", Value: q.SortOrder,
		})
	}
	if q.Status != nil && (*q.Status < models.ArticleDraft || *q.Status > models.ArticleOffline) {
		fields = append(fields, apperror.FieldError{
			Field: "status", Message: "status must be between 0 and 4", Value: int(*q.Status),
		})
	}
	if len(fields) > 0 {
		return repository.ArticleFilter{}, validationErr(fields)
	}

	page, size := s.pageBounds(q.Page, q.PageSize)
	return repository.ArticleFilter{
		CategoryID:  q.CategoryID,
		TagID:       q.TagID,
		AuthorID:    q.AuthorID,
		IsTop:       q.IsTop,
		IsRecommend: q.IsRecommend,
		Keyword:     strings.TrimSpace(q.Keyword),
		SortBy:      q.SortBy,
		Desc:        !strings.EqualFold(q.SortOrder, "asc"),
		Limit:       size,
		Offset:      models.Offset(page, size),
	}, nil
}

func (s *articleService) list(ctx context.Context, filter repository.ArticleFilter, q models.ArticleQuery) (*models.Page[*models.Article], error) {
	articles, total, err := s.repos.Article.List(ctx, filter)
	if err != nil {
		return nil, storeErr(s.log, err, "list articles")
	}
	if err := s.attachTags(ctx, articles); err != nil {
		return nil, err
	}
	for _, a := range articles {
		a.Content = ""
		a.ContentHTML = ""
	}

	page, size := s.pageBounds(q.Page, q.PageSize)
	return &models.Page[*models.Article]{Items: articles, Total: total, Page: page, PageSize: size}, nil
}

// validateInput trims the request and checks it against its rules
func (s *articleService) validateInput(in *models.ArticleInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Summary = strings.TrimSpace(in.Summary)
	in.CoverImage = strings.TrimSpace(in.CoverImage)
	in.SourceURL = strings.TrimSpace(in.SourceURL)
	in.Password = strings.TrimSpace(in.Password)

	fields := s.validate.Struct(in)
	if strings.TrimSpace(in.Content) == "" && !hasField(fields, "content") {
		fields = append(fields, apperror.FieldError{Field: "content", Message: "content is required"})
	}
	if len(fields) > 0 {
		return validationErr(fields)
	}
	return nil
}

// apply copies author-editable fields onto the article and recomputes the
// derived ones. Published is downgraded to Reviewing for non-admins when
// articles need audit.
func (s *articleService) apply(a *models.Article, in *models.ArticleInput, caller *authz.Principal, now time.Time) {
	a.Title = in.Title
	a.Content = in.Content
	a.CoverImage = in.CoverImage
	a.CategoryID = in.CategoryID
	a.IsTop = in.IsTop
	a.IsRecommend = in.IsRecommend
	a.IsOriginal = in.IsOriginal
	a.SourceURL = in.SourceURL
	a.Password = in.Password
	a.HasPassword = in.Password != ""

	m := derive.Analyze(in.Content)
	a.ContentHTML = m.HTML
	a.WordCount = m.WordCount
	a.ReadingTime = m.ReadingTime

	a.Summary = in.Summary
	if a.Summary == "" {
		a.Summary = derive.Excerpt(m.HTML, summaryLen)
	}

	a.Status = in.Status
	if a.Status == models.ArticlePublished && s.policy.ArticleNeedAudit && !caller.IsAdmin() {
		a.Status = models.ArticleReviewing
	}
	stampPublished(a, now)
	a.UpdatedAt = now
}

// resolveSlug checks a requested slug for uniqueness or derives one from title
func (s *articleService) resolveSlug(ctx context.Context, tx *repository.Repositories, requested, title string, selfID int64) (string, error) {
	taken := func(candidate string) (bool, error) {
		return tx.Article.SlugExists(ctx, candidate, selfID)
	}

	if requested != "" {
		exists, err := taken(requested)
		if err != nil {
			return "", err
		}
		if exists {
			return "", apperror.Conflict("slug %q is already in use", requested)
		}
		return requested, nil
	}

	return derive.UniqueSlug(s.slugger.Slugify(title), taken)
}

func (s *articleService) load(ctx context.Context, id int64) (*models.Article, error) {
	article, err := s.repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(s.log, err, "get article")
	}
	if article == nil {
		return nil, apperror.NotFound("article %d not found", id)
	}
	return article, nil
}

// reload returns the stored row, including counters moved inside the write
func (s *articleService) reload(ctx context.Context, id int64) (*models.Article, error) {
	article, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withTags(ctx, article)
}

func (s *articleService) withTags(ctx context.Context, article *models.Article) (*models.Article, error) {
	if err := s.attachTags(ctx, []*models.Article{article}); err != nil {
		return nil, err
	}
	return article, nil
}

// attachTags loads the tags of every article with two queries
func (s *articleService) attachTags(ctx context.Context, articles []*models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	ids := make([]int64, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}
	links, err := s.repos.ArticleTag.TagIDsByArticles(ctx, ids)
	if err != nil {
		return storeErr(s.log, err, "load article tags")
	}

	var tagIDs []int64
	for _, l := range links {
		tagIDs = append(tagIDs, l...)
	}
	tags, err := s.repos.Tag.GetByIDs(ctx, uniqueIDs(tagIDs))
	if err != nil {
		return storeErr(s.log, err, "load article tags")
	}
	byID := make(map[int64]models.Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = *t
	}

	for _, a := range articles {
		a.Tags = []models.Tag{}
		for _, id := range links[a.ID] {
			if t, ok := byID[id]; ok {
				a.Tags = append(a.Tags, t)
			}
		}
	}
	return nil
}

// checkCategory requires a supplied category to exist and be enabled
func checkCategory(ctx context.Context, repos *repository.Repositories, id *int64) error {
	if id == nil {
		return nil
	}
	category, err := repos.Category.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if category == nil {
		return apperror.NotFound("category %d not found", *id)
	}
	if !category.Enabled() {
		return apperror.Validation("category is disabled", apperror.FieldError{
			Field: "category_id", Message: "category is disabled", Value: *id,
		})
	}
	return nil
}

// checkTags requires every tag to exist and be enabled
func checkTags(ctx context.Context, repos *repository.Repositories, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	tags, err := repos.Tag.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	found := make(map[int64]*models.Tag, len(tags))
	for _, t := range tags {
		found[t.ID] = t
	}
	for _, id := range ids {
		t, ok := found[id]
		if !ok {
			return apperror.NotFound("tag %d not found", id)
		}
		if !t.Enabled() {
			return apperror.Validation("tag is disabled", apperror.FieldError{
				Field: "tag_ids", Message: "tag " + t.Name + " is disabled", Value: id,
			})
		}
	}
	return nil
}

// stampPublished sets published_at on the first entry into Published
func stampPublished(a *models.Article, now time.Time) {
	if a.Status == models.ArticlePublished && a.PublishedAt == nil {
		t := now
		a.PublishedAt = &t
	}
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func hasField(fields []apperror.FieldError, name string) bool {
	for _, f := range fields {
		if f.Field == name {
			return true
		}
	}
	return false
}
