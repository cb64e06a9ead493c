package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/blog-content-api/internal/models"
)

var tagColumns = []string{
	"id", "name", "slug", "description", "article_count", "status", "created_at", "updated_at",
}

// tagRepo is the concrete implementation of TagRepository
type tagRepo struct {
	q  Querier
	sb sq.StatementBuilderType
}

// Create inserts a new tag and sets its ID
func (r *tagRepo) Create(ctx context.Context, tag *models.Tag) error {
	b := r.sb.Insert("tags").
		Columns("name", "slug", "description", "article_count", "status", "created_at", "updated_at").
		Values(tag.Name, tag.Slug, tag.Description, tag.ArticleCount, tag.Status, tag.CreatedAt, tag.UpdatedAt)

	id, err := insertReturningID(ctx, r.q, b)
	if err != nil {
		return err
	}
	tag.ID = id
	return nil
}

// Update writes the editable tag columns
func (r *tagRepo) Update(ctx context.Context, tag *models.Tag) error {
	query, args, err := r.sb.Update("tags").
		Set("name", tag.Name).
		Set("slug", tag.Slug).
		Set("description", tag.Description).
		Set("status", tag.Status).
		Set("updated_at", tag.UpdatedAt).
		Where(sq.Eq{"id": tag.ID}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, query, args...)
	return err
}

// Delete removes a tag
func (r *tagRepo) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("tags").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, query, args...)
	return err
}

// GetByID retrieves a tag by ID
func (r *tagRepo) GetByID(ctx context.Context, id int64) (*models.Tag, error) {
	query, args, err := r.sb.Select(tagColumns...).From("tags").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	tag, err := scanTag(r.q.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// GetByIDs retrieves the tags that exist among ids
func (r *tagRepo) GetByIDs(ctx context.Context, ids []int64) ([]*models.Tag, error) {
	if len(ids) == 0 {
		return []*models.Tag{}, nil
	}
	return r.query(ctx, r.sb.Select(tagColumns...).From("tags").Where(sq.Eq{"id": ids}).OrderBy("id"))
}

// List returns all tags, optionally only enabled ones
func (r *tagRepo) List(ctx context.Context, enabledOnly bool) ([]*models.Tag, error) {
	b := r.sb.Select(tagColumns...).From("tags").OrderBy("id")
	if enabledOnly {
		b = b.Where(sq.Eq{"status": models.StatusEnabled})
	}
	return r.query(ctx, b)
}

// NameExists checks if a tag other than excludeID uses name
func (r *tagRepo) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	return exists(ctx, r.q, r.sb, "tags", uniqueExcept("name", name, excludeID))
}

// SlugExists checks if a tag other than excludeID uses slug
func (r *tagRepo) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	return exists(ctx, r.q, r.sb, "tags", uniqueExcept("slug", slug, excludeID))
}

func (r *tagRepo) query(ctx context.Context, b sq.SelectBuilder) ([]*models.Tag, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*models.Tag{}
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func scanTag(row rowScanner) (*models.Tag, error) {
	var tag models.Tag
	err := row.Scan(
		&tag.ID, &tag.Name, &tag.Slug, &tag.Description, &tag.ArticleCount,
		&tag.Status, &tag.CreatedAt, &tag.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tag, nil
}
