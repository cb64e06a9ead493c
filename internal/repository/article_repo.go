package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/blog-content-api/internal/models"
)

var articleColumns = []string{
	"id", "title", "slug", "summary", "content", "content_html", "cover_image", "category_id",
	"password", "author_id", "status", "is_top", "is_recommend", "is_original", "source_url",
	"view_count", "like_count", "comment_count", "word_count", "reading_time", "audit_reason",
	"published_at", "created_at", "updated_at",
}

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	q  Querier
	sb sq.StatementBuilderType
}

// Create inserts a new article and sets its ID
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	b := r.sb.Insert("articles").
		Columns(
			"title", "slug", "summary", "content", "content_html", "cover_image", "category_id",
			"password", "author_id", "status", "is_top", "is_recommend", "is_original", "source_url",
			"view_count", "like_count", "comment_count", "word_count", "reading_time", "audit_reason",
			"published_at", "created_at", "updated_at", "deleted",
		).
		Values(
			article.Title, article.Slug, article.Summary, article.Content, article.ContentHTML,
			article.CoverImage, article.CategoryID, article.Password, article.AuthorID, article.Status,
			article.IsTop, article.IsRecommend, article.IsOriginal, article.SourceURL,
			article.ViewCount, article.LikeCount, article.CommentCount, article.WordCount,
			article.ReadingTime, article.AuditReason, article.PublishedAt,
			article.CreatedAt, article.UpdatedAt, false,
		)

	id, err := insertReturningID(ctx, r.q, b)
	if err != nil {
		return err
	}
	article.ID = id
	return nil
}

// Update writes every editable column. Counters are owned by CounterRepository.
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	query, args, err := r.sb.Update("articles").
		SetMap(map[string]interface{}{
			"title":        article.Title,
			"slug":         article.Slug,
			"summary":      article.Summary,
			"content":      article.Content,
			"content_html": article.ContentHTML,
			"cover_image":  article.CoverImage,
			"category_id":  article.CategoryID,
			"password":     article.Password,
			"status":       article.Status,
			"is_top":       article.IsTop,
			"is_recommend": article.IsRecommend,
			"is_original":  article.IsOriginal,
			"source_url":   article.SourceURL,
			"word_count":   article.WordCount,
			"reading_time": article.ReadingTime,
			"audit_reason": article.AuditReason,
			"published_at": article.PublishedAt,
			"updated_at":   article.UpdatedAt,
		}).
		Where(sq.Eq{"id": article.ID, "deleted": false}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, query, args...)
	return err
}

// GetByID retrieves a live article by ID
func (r *articleRepo) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	return r.getOne(ctx, sq.Eq{"id": id, "deleted": false})
}

// GetBySlug retrieves a live article by slug
func (r *articleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return r.getOne(ctx, sq.Eq{"slug": slug, "deleted": false})
}

func (r *articleRepo) getOne(ctx context.Context, pred sq.Sqlizer) (*models.Article, error) {
	query, args, err := r.sb.Select(articleColumns...).From("articles").Where(pred).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}

	article, err := scanArticle(r.q.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return article, nil
}

// SlugExists checks if a live article other than excludeID uses slug
func (r *articleRepo) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	return exists(ctx, r.q, r.sb, "articles",
		sq.And{uniqueExcept("slug", slug, excludeID), sq.Eq{"deleted": false}})
}

// SoftDelete flags the article as deleted
func (r *articleRepo) SoftDelete(ctx context.Context, id int64, now time.Time) error {
	query, args, err := r.sb.Update("articles").
		Set("deleted", true).
		Set("updated_at", now).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, query, args...)
	return err
}

// List returns one page of articles matching filter, pinned articles first,
// and the total number of matches
func (r *articleRepo) List(ctx context.Context, filter ArticleFilter) ([]*models.Article, int, error) {
	where := articleWhere(filter)

	total, err := count(ctx, r.q, r.sb, "articles", where)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*models.Article{}, 0, nil
	}

	dir := sortDir(filter.Desc)
	b := r.sb.Select(articleColumns...).From("articles").Where(where).OrderBy("is_top DESC")
	switch filter.SortBy {
	case models.SortViewCount, models.SortLikeCount:
		b = b.OrderBy(filter.SortBy + " " + dir)
	default:
		// unpublished rows have no published_at; keep them after dated rows in either direction
		b = b.OrderBy("CASE WHEN published_at IS NULL THEN 1 ELSE 0 END", "published_at "+dir)
	}
	b = b.OrderBy("id " + dir)
	if filter.Limit > 0 {
		b = b.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	articles := make([]*models.Article, 0, filter.Limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, article)
	}
	return articles, total, rows.Err()
}

func articleWhere(filter ArticleFilter) sq.And {
	where := sq.And{sq.Eq{"deleted": false}}
	if filter.CategoryID != nil {
		where = append(where, sq.Eq{"category_id": *filter.CategoryID})
	}
	if filter.TagID != nil {
		where = append(where, sq.Expr("id IN (SELECT article_id FROM article_tags WHERE tag_id = ?)", *filter.TagID))
	}
	if filter.AuthorID != nil {
		where = append(where, sq.Eq{"author_id": *filter.AuthorID})
	}
	if len(filter.Statuses) > 0 {
		where = append(where, sq.Eq{"status": filter.Statuses})
	}
	if filter.IsTop != nil {
		where = append(where, sq.Eq{"is_top": *filter.IsTop})
	}
	if filter.IsRecommend != nil {
		where = append(where, sq.Eq{"is_recommend": *filter.IsRecommend})
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		pattern := "%" + strings.ToLower(kw) + "%"
		where = append(where, sq.Or{
			sq.Like{"LOWER(title)": pattern},
			sq.Like{"LOWER(summary)": pattern},
			sq.Like{"LOWER(content)": pattern},
		})
	}
	return where
}

// StreamAll walks all live articles in id order, batchSize rows at a time.
// Each batch is fully read before callback runs, so callback may query the store.
func (r *articleRepo) StreamAll(ctx context.Context, batchSize int, callback func([]*models.Article) error) error {
	if batchSize <= 0 {
		batchSize = 100
	}

	var lastID int64
	for {
		batch, err := r.batchAfter(ctx, lastID, batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := callback(batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
		lastID = batch[len(batch)-1].ID
	}
}

func (r *articleRepo) batchAfter(ctx context.Context, lastID int64, limit int) ([]*models.Article, error) {
	query, args, err := r.sb.Select(articleColumns...).
		From("articles").
		Where(sq.And{sq.Eq{"deleted": false}, sq.Gt{"id": lastID}}).
		OrderBy("id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := make([]*models.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var article models.Article
	var categoryID sql.NullInt64
	var publishedAt sql.NullTime

	err := row.Scan(
		&article.ID, &article.Title, &article.Slug, &article.Summary, &article.Content,
		&article.ContentHTML, &article.CoverImage, &categoryID, &article.Password,
		&article.AuthorID, &article.Status, &article.IsTop, &article.IsRecommend,
		&article.IsOriginal, &article.SourceURL, &article.ViewCount, &article.LikeCount,
		&article.CommentCount, &article.WordCount, &article.ReadingTime, &article.AuditReason,
		&publishedAt, &article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		article.CategoryID = &categoryID.Int64
	}
	if publishedAt.Valid {
		article.PublishedAt = &publishedAt.Time
	}
	article.HasPassword = article.Password != ""
	return &article, nil
}
