package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/blog-content-api/internal/models"
)

var commentColumns = []string{
	"id", "article_id", "author_id", "parent_id", "reply_to_id", "content", "like_count",
	"status", "audit_reason", "ip_address", "user_agent", "created_at", "updated_at",
}

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	q  Querier
	sb sq.StatementBuilderType
}

// Create inserts a new comment and sets its ID
func (r *commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	b := r.sb.Insert("comments").
		Columns(
			"article_id", "author_id", "parent_id", "reply_to_id", "content", "like_count",
			"status", "audit_reason", "ip_address", "user_agent", "created_at", "updated_at", "deleted",
		).
		Values(
			comment.ArticleID, comment.AuthorID, comment.ParentID, comment.ReplyToID, comment.Content,
			comment.LikeCount, comment.Status, comment.AuditReason, comment.IPAddress, comment.UserAgent,
			comment.CreatedAt, comment.UpdatedAt, false,
		)

	id, err := insertReturningID(ctx, r.q, b)
	if err != nil {
		return err
	}
	comment.ID = id
	return nil
}

// GetByID retrieves a live comment by ID
func (r *commentRepo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	query, args, err := r.sb.Select(commentColumns...).
		From("comments").
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return nil, err
	}

	comment, err := scanComment(r.q.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// UpdateStatus records a moderation decision
func (r *commentRepo) UpdateStatus(ctx context.Context, id int64, status models.CommentStatus, reason string, now time.Time) error {
	query, args, err := r.sb.Update("comments").
		Set("status", status).
		Set("audit_reason", reason).
		Set("updated_at", now).
		Where(sq.Eq{"id": id, "deleted": false}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, query, args...)
	return err
}

// SoftDelete flags the comment as deleted
func (r *commentRepo) SoftDelete(ctx context.Context, id int64, now time.Time) error {
	query, args, err := r.sb.Update("comments").
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

// HasApprovedReplies reports whether any live approved comment has id as its parent
func (r *commentRepo) HasApprovedReplies(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.q, r.sb, "comments", sq.Eq{
		"parent_id": id,
		"status":    models.CommentApproved,
		"deleted":   false,
	})
}

// ListTopLevel returns a page of approved top-level comments on an article
func (r *commentRepo) ListTopLevel(ctx context.Context, articleID int64, desc bool, limit, offset int) ([]*models.Comment, int, error) {
	where := sq.Eq{
		"article_id": articleID,
		"parent_id":  0,
		"status":     models.CommentApproved,
		"deleted":    false,
	}

	total, err := count(ctx, r.q, r.sb, "comments", where)
	if err != nil || total == 0 {
		return []*models.Comment{}, total, err
	}

	dir := sortDir(desc)
	b := r.sb.Select(commentColumns...).
		From("comments").
		Where(where).
		OrderBy("created_at "+dir, "id "+dir)
	if limit > 0 {
		b = b.Limit(uint64(limit)).Offset(uint64(offset))
	}

	comments, err := r.query(ctx, b)
	return comments, total, err
}

// ListReplies returns the approved replies under the given top-level comments
// in creation order
func (r *commentRepo) ListReplies(ctx context.Context, parentIDs []int64) ([]*models.Comment, error) {
	if len(parentIDs) == 0 {
		return []*models.Comment{}, nil
	}

	b := r.sb.Select(commentColumns...).
		From("comments").
		Where(sq.Eq{"parent_id": parentIDs, "status": models.CommentApproved, "deleted": false}).
		OrderBy("created_at ASC", "id ASC")
	return r.query(ctx, b)
}

// List returns a page of comments for moderation
func (r *commentRepo) List(ctx context.Context, filter CommentFilter) ([]*models.Comment, int, error) {
	where := sq.And{sq.Eq{"deleted": false}}
	if filter.ArticleID != nil {
		where = append(where, sq.Eq{"article_id": *filter.ArticleID})
	}
	if filter.Status != nil {
		where = append(where, sq.Eq{"status": *filter.Status})
	}

	total, err := count(ctx, r.q, r.sb, "comments", where)
	if err != nil || total == 0 {
		return []*models.Comment{}, total, err
	}

	dir := sortDir(filter.Desc)
	b := r.sb.Select(commentColumns...).
		From("comments").
		Where(where).
		OrderBy("created_at "+dir, "id "+dir)
	if filter.Limit > 0 {
		b = b.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	comments, err := r.query(ctx, b)
	return comments, total, err
}

func (r *commentRepo) query(ctx context.Context, b sq.SelectBuilder) ([]*models.Comment, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var comment models.Comment
	var replyTo sql.NullInt64

	err := row.Scan(
		&comment.ID, &comment.ArticleID, &comment.AuthorID, &comment.ParentID, &replyTo,
		&comment.Content, &comment.LikeCount, &comment.Status, &comment.AuditReason,
		&comment.IPAddress, &comment.UserAgent, &comment.CreatedAt, &comment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if replyTo.Valid {
		comment.ReplyToID = &replyTo.Int64
	}
	return &comment, nil
}
