package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/blog-content-api/internal/models"
)

var categoryColumns = []string{
	"id", "name", "slug", "description", "parent_id", "sort_order", "article_count",
	"status", "created_at", "updated_at",
}

// categoryRepo is the concrete implementation of CategoryRepository
type categoryRepo struct {
	q  Querier
	sb sq.StatementBuilderType
}

// Create inserts a new category and sets its ID
func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	b := r.sb.Insert("categories").
		Columns("name", "slug", "description", "parent_id", "sort_order", "article_count",
			"status", "created_at", "updated_at").
		Values(category.Name, category.Slug, category.Description, category.ParentID,
			category.SortOrder, category.ArticleCount, category.Status,
			category.CreatedAt, category.UpdatedAt)

	id, err := insertReturningID(ctx, r.q, b)
	if err != nil {
		return err
	}
	category.ID = id
	return nil
}

// Update writes the editable category columns
func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query, args, err := r.sb.Update("categories").
		Set("name", category.Name).
		Set("slug", category.Slug).
		Set("description", category.Description).
		Set("parent_id", category.ParentID).
		Set("sort_order", category.SortOrder).
		Set("status", category.Status).
		Set("updated_at", category.UpdatedAt).
		Where(sq.Eq{"id": category.ID}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, query, args...)
	return err
}

// Delete removes a category
func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("categories").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, query, args...)
	return err
}

// GetByID retrieves a category by ID
func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	query, args, err := r.sb.Select(categoryColumns...).From("categories").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	category, err := scanCategory(r.q.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

// List returns all categories ordered by sort_order, optionally only enabled ones
func (r *categoryRepo) List(ctx context.Context, enabledOnly bool) ([]*models.Category, error) {
	b := r.sb.Select(categoryColumns...).From("categories").OrderBy("sort_order", "id")
	if enabledOnly {
		b = b.Where(sq.Eq{"status": models.StatusEnabled})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*models.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// HasChildren reports whether any category sits under id
func (r *categoryRepo) HasChildren(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.q, r.sb, "categories", sq.Eq{"parent_id": id})
}

// NameExists checks if a category other than excludeID uses name
func (r *categoryRepo) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	return exists(ctx, r.q, r.sb, "categories", uniqueExcept("name", name, excludeID))
}

// SlugExists checks if a category other than excludeID uses slug
func (r *categoryRepo) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	return exists(ctx, r.q, r.sb, "categories", uniqueExcept("slug", slug, excludeID))
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var category models.Category
	err := row.Scan(
		&category.ID, &category.Name, &category.Slug, &category.Description, &category.ParentID,
		&category.SortOrder, &category.ArticleCount, &category.Status,
		&category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &category, nil
}
