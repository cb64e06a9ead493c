package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// articleTagRepo is the concrete implementation of ArticleTagRepository
type articleTagRepo struct {
	q  Querier
	sb sq.StatementBuilderType
}

// Add links the article to every tag in tagIDs
func (r *articleTagRepo) Add(ctx context.Context, articleID int64, tagIDs []int64, now time.Time) error {
	if len(tagIDs) == 0 {
		return nil
	}

	b := r.sb.Insert("article_tags").Columns("article_id", "tag_id", "created_at")
	for _, tagID := range tagIDs {
		b = b.Values(articleID, tagID, now)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, query, args...)
	return err
}

// RemoveAll unlinks every tag from the article and returns the removed tag IDs
func (r *articleTagRepo) RemoveAll(ctx context.Context, articleID int64) ([]int64, error) {
	tagIDs, err := r.TagIDs(ctx, articleID)
	if err != nil || len(tagIDs) == 0 {
		return tagIDs, err
	}

	query, args, err := r.sb.Delete("article_tags").Where(sq.Eq{"article_id": articleID}).ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}
	return tagIDs, nil
}

// TagIDs returns the tags linked to one article
func (r *articleTagRepo) TagIDs(ctx context.Context, articleID int64) ([]int64, error) {
	byArticle, err := r.TagIDsByArticles(ctx, []int64{articleID})
	if err != nil {
		return nil, err
	}
	return byArticle[articleID], nil
}

// TagIDsByArticles returns the linked tags for each article in one query
func (r *articleTagRepo) TagIDsByArticles(ctx context.Context, articleIDs []int64) (map[int64][]int64, error) {
	result := make(map[int64][]int64, len(articleIDs))
	if len(articleIDs) == 0 {
		return result, nil
	}

	query, args, err := r.sb.Select("article_id", "tag_id").
		From("article_tags").
		Where(sq.Eq{"article_id": articleIDs}).
		OrderBy("article_id", "tag_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var articleID, tagID int64
		if err := rows.Scan(&articleID, &tagID); err != nil {
			return nil, err
		}
		result[articleID] = append(result[articleID], tagID)
	}
	return result, rows.Err()
}
