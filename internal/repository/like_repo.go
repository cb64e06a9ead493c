package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/blog-content-api/internal/models"
)

// likeRepo is the concrete implementation of LikeRepository
type likeRepo struct {
	q  Querier
	sb sq.StatementBuilderType
}

// Create inserts a like. The unique (user, target, type) index turns a
// duplicate into a no-op, reported as false.
func (r *likeRepo) Create(ctx context.Context, like *models.Like) (bool, error) {
	query, args, err := r.sb.Insert("likes").
		Columns("user_id", "target_id", "target_type", "created_at").
		Values(like.UserID, like.TargetID, like.TargetType, like.CreatedAt).
		Suffix("ON CONFLICT (user_id, target_id, target_type) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return false, err
	}

	err = r.q.QueryRowContext(ctx, query, args...).Scan(&like.ID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a like, reporting whether one existed
func (r *likeRepo) Delete(ctx context.Context, userID, targetID int64, target models.LikeTarget) (bool, error) {
	query, args, err := r.sb.Delete("likes").
		Where(sq.Eq{"user_id": userID, "target_id": targetID, "target_type": target}).
		ToSql()
	if err != nil {
		return false, err
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Exists reports whether the user has liked the target
func (r *likeRepo) Exists(ctx context.Context, userID, targetID int64, target models.LikeTarget) (bool, error) {
	return exists(ctx, r.q, r.sb, "likes",
		sq.Eq{"user_id": userID, "target_id": targetID, "target_type": target})
}
