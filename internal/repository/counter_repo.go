package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Entity names a table that carries denormalized counters
type Entity string

const (
	EntityArticle  Entity = "articles"
	EntityComment  Entity = "comments"
	EntityTag      Entity = "tags"
	EntityCategory Entity = "categories"
)

// Counter fields per entity
const (
	FieldViewCount    = "view_count"
	FieldLikeCount    = "like_count"
	FieldCommentCount = "comment_count"
	FieldArticleCount = "article_count"
)

var counterFields = map[Entity]map[string]bool{
	EntityArticle:  {FieldViewCount: true, FieldLikeCount: true, FieldCommentCount: true},
	EntityComment:  {FieldLikeCount: true},
	EntityTag:      {FieldArticleCount: true},
	EntityCategory: {FieldArticleCount: true},
}

// ValidCounter reports whether field is a counter on entity
func ValidCounter(entity Entity, field string) bool {
	return counterFields[entity][field]
}

// counterRepo is the concrete implementation of CounterRepository
type counterRepo struct {
	q  Querier
	sb sq.StatementBuilderType
}

// Adjust adds delta to the counter in a single statement, clamping at zero
func (r *counterRepo) Adjust(ctx context.Context, entity Entity, field string, id int64, delta int, now time.Time) error {
	if !ValidCounter(entity, field) {
		return fmt.Errorf("unknown counter %s.%s", entity, field)
	}

	query, args, err := r.sb.Update(string(entity)).
		Set(field, sq.Expr(
			fmt.Sprintf("CASE WHEN %[1]s + ? < 0 THEN 0 ELSE %[1]s + ? END", field),
			delta, delta,
		)).
		Set("updated_at", now).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, query, args...)
	return err
}
