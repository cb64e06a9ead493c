package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/blog-content-api/internal/database"
	"github.com/blog-content-api/internal/models"
)

// Querier is satisfied by both *sql.DB and *sql.Tx
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ArticleFilter is the store-level article listing filter. Visibility has
// already been resolved by the caller into Statuses.
type ArticleFilter struct {
	CategoryID  *int64
	TagID       *int64
	AuthorID    *int64
	Statuses    []models.ArticleStatus
	IsTop       *bool
	IsRecommend *bool
	Keyword     string
	SortBy      string
	Desc        bool
	Limit       int
	Offset      int
}

// CommentFilter is the store-level moderation listing filter
type CommentFilter struct {
	ArticleID *int64
	Status    *models.CommentStatus
	Desc      bool
	Limit     int
	Offset    int
}

// ArticleRepository defines the interface for article data operations.
// Reads never return soft-deleted rows; a missing row is (nil, nil).
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id int64) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	SoftDelete(ctx context.Context, id int64, now time.Time) error
	List(ctx context.Context, filter ArticleFilter) ([]*models.Article, int, error)
	StreamAll(ctx context.Context, batchSize int, callback func([]*models.Article) error) error
}

// ArticleTagRepository maintains the article/tag association rows
type ArticleTagRepository interface {
	Add(ctx context.Context, articleID int64, tagIDs []int64, now time.Time) error
	RemoveAll(ctx context.Context, articleID int64) ([]int64, error)
	TagIDs(ctx context.Context, articleID int64) ([]int64, error)
	TagIDsByArticles(ctx context.Context, articleIDs []int64) (map[int64][]int64, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	UpdateStatus(ctx context.Context, id int64, status models.CommentStatus, reason string, now time.Time) error
	SoftDelete(ctx context.Context, id int64, now time.Time) error
	HasApprovedReplies(ctx context.Context, id int64) (bool, error)
	ListTopLevel(ctx context.Context, articleID int64, desc bool, limit, offset int) ([]*models.Comment, int, error)
	ListReplies(ctx context.Context, parentIDs []int64) ([]*models.Comment, error)
	List(ctx context.Context, filter CommentFilter) ([]*models.Comment, int, error)
}

// TagRepository defines the interface for tag data operations
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Tag, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*models.Tag, error)
	List(ctx context.Context, enabledOnly bool) ([]*models.Tag, error)
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	List(ctx context.Context, enabledOnly bool) ([]*models.Category, error)
	HasChildren(ctx context.Context, id int64) (bool, error)
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}

// LikeRepository records likes. Create reports false when the like already exists.
type LikeRepository interface {
	Create(ctx context.Context, like *models.Like) (bool, error)
	Delete(ctx context.Context, userID, targetID int64, target models.LikeTarget) (bool, error)
	Exists(ctx context.Context, userID, targetID int64, target models.LikeTarget) (bool, error)
}

// CounterRepository applies clamped deltas to denormalized counters
type CounterRepository interface {
	Adjust(ctx context.Context, entity Entity, field string, id int64, delta int, now time.Time) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article    ArticleRepository
	ArticleTag ArticleTagRepository
	Comment    CommentRepository
	Tag        TagRepository
	Category   CategoryRepository
	Like       LikeRepository
	Counter    CounterRepository

	txFn func(ctx context.Context, fn func(*Repositories) error) error
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	repos := newRepositories(db.DB, db.SQL())
	repos.txFn = func(ctx context.Context, fn func(*Repositories) error) error {
		return db.WithTx(ctx, func(tx *sql.Tx) error {
			return fn(newRepositories(tx, db.SQL()))
		})
	}
	return repos
}

func newRepositories(q Querier, sb sq.StatementBuilderType) *Repositories {
	return &Repositories{
		Article:    &articleRepo{q: q, sb: sb},
		ArticleTag: &articleTagRepo{q: q, sb: sb},
		Comment:    &commentRepo{q: q, sb: sb},
		Tag:        &tagRepo{q: q, sb: sb},
		Category:   &categoryRepo{q: q, sb: sb},
		Like:       &likeRepo{q: q, sb: sb},
		Counter:    &counterRepo{q: q, sb: sb},
	}
}

// WithTx runs fn against repositories bound to one transaction. Repositories
// without a transaction hook (in-memory or already inside a transaction) run
// fn directly.
func (r *Repositories) WithTx(ctx context.Context, fn func(*Repositories) error) error {
	if r.txFn == nil {
		return fn(r)
	}
	return r.txFn(ctx, fn)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// exists runs a SELECT 1 ... LIMIT 1 built from the given predicate
func exists(ctx context.Context, q Querier, sb sq.StatementBuilderType, table string, pred sq.Sqlizer) (bool, error) {
	query, args, err := sb.Select("1").From(table).Where(pred).Limit(1).ToSql()
	if err != nil {
		return false, err
	}
	var one int
	err = q.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// uniqueExcept matches column = value on rows other than excludeID
func uniqueExcept(column string, value interface{}, excludeID int64) sq.Sqlizer {
	pred := sq.And{sq.Eq{column: value}}
	if excludeID > 0 {
		pred = append(pred, sq.NotEq{"id": excludeID})
	}
	return pred
}

// count runs SELECT COUNT(*) over table with the given predicate
func count(ctx context.Context, q Querier, sb sq.StatementBuilderType, table string, pred sq.Sqlizer) (int, error) {
	query, args, err := sb.Select("COUNT(*)").From(table).Where(pred).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = q.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// insertReturningID executes an INSERT ... RETURNING id
func insertReturningID(ctx context.Context, q Querier, b sq.InsertBuilder) (int64, error) {
	query, args, err := b.Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	err = q.QueryRowContext(ctx, query, args...).Scan(&id)
	return id, err
}

func sortDir(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}
