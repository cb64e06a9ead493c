package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/blog-content-api/internal/apperror"
	"github.com/blog-content-api/internal/authz"
	"github.com/blog-content-api/internal/cache"
	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/internal/mocks"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/service"
	"github.com/rs/zerolog"
)

var (
	admin    = &authz.Principal{ID: 1, Role: authz.RoleAdmin, Enabled: true}
	author   = &authz.Principal{ID: 2, Role: authz.RoleUser, Enabled: true}
	reader   = &authz.Principal{ID: 3, Role: authz.RoleUser, Enabled: true}
	banned   = &authz.Principal{ID: 4, Role: authz.RoleUser, Enabled: false}
	disabled = &authz.Principal{ID: 5, Role: authz.RoleAdmin, Enabled: false}
)

// fixture wires real services over the in-memory store
type fixture struct {
	store *mocks.Store
	svc   *service.Services
	cfg   *config.Config
}

func newFixture(t testing.TB, opts ...func(*config.Config)) *fixture {
	t.Helper()
	return newFixtureWithViews(t, nil, opts...)
}

func newFixtureWithViews(t testing.TB, views cache.ViewRecorder, opts ...func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Default()
	for _, opt := range opts {
		opt(cfg)
	}
	store := mocks.NewStore()
	return &fixture{
		store: store,
		svc:   service.NewServices(store.Repositories(), cfg, views, zerolog.Nop()),
		cfg:   cfg,
	}
}

func articleAudit(cfg *config.Config) { cfg.Content.ArticleNeedAudit = true }
func commentAudit(cfg *config.Config) { cfg.Content.CommentNeedAudit = true }

func (f *fixture) createArticle(t testing.TB, caller *authz.Principal, title string, status models.ArticleStatus) *models.Article {
	t.Helper()
	a, err := f.svc.Article.Create(context.Background(), caller, &models.ArticleInput{
		Title:   title,
		Content: "Some **markdown** body for " + title,
		Status:  status,
	})
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", title, err)
	}
	return a
}

func (f *fixture) createTag(t *testing.T, name string) *models.Tag {
	t.Helper()
	tag, err := f.svc.Taxonomy.CreateTag(context.Background(), admin, &models.TagInput{Name: name})
	if err != nil {
		t.Fatalf("CreateTag(%q) failed: %v", name, err)
	}
	return tag
}

func (f *fixture) createCategory(t *testing.T, name string, parentID int64) *models.Category {
	t.Helper()
	c, err := f.svc.Taxonomy.CreateCategory(context.Background(), admin, &models.CategoryInput{Name: name, ParentID: parentID})
	if err != nil {
		t.Fatalf("CreateCategory(%q) failed: %v", name, err)
	}
	return c
}

func (f *fixture) comment(t *testing.T, caller *authz.Principal, articleID, parentID int64, content string) *models.Comment {
	t.Helper()
	c, err := f.svc.Comment.Create(context.Background(), caller, &models.CommentInput{
		Content:   content,
		ArticleID: articleID,
		ParentID:  parentID,
	}, models.ClientInfo{IPAddress: "10.0.0.1", UserAgent: "test-agent"})
	if err != nil {
		t.Fatalf("Comment.Create failed: %v", err)
	}
	return c
}

func (f *fixture) article(t *testing.T, id int64) *models.Article {
	t.Helper()
	a, err := f.store.Repositories().Article.GetByID(context.Background(), id)
	if err != nil || a == nil {
		t.Fatalf("article %d not in store: %v", id, err)
	}
	return a
}

func (f *fixture) tag(t *testing.T, id int64) *models.Tag {
	t.Helper()
	tag, err := f.store.Repositories().Tag.GetByID(context.Background(), id)
	if err != nil || tag == nil {
		t.Fatalf("tag %d not in store: %v", id, err)
	}
	return tag
}

func (f *fixture) category(t *testing.T, id int64) *models.Category {
	t.Helper()
	c, err := f.store.Repositories().Category.GetByID(context.Background(), id)
	if err != nil || c == nil {
		t.Fatalf("category %d not in store: %v", id, err)
	}
	return c
}

func expectKind(t *testing.T, err error, want apperror.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := apperror.KindOf(err); got != want {
		t.Fatalf("expected %s error, got %s (%v)", want, got, err)
	}
}

func TestStoreFailureIsOpaque(t *testing.T) {
	f := newFixture(t)
	a := f.createArticle(t, author, "Hello", models.ArticlePublished)

	f.store.Err = errors.New("pq: connection refused")
	_, err := f.svc.Article.Get(context.Background(), nil, a.ID, service.ReadOptions{})
	expectKind(t, err, apperror.KindSystem)

	if msg := apperror.MessageOf(err); strings.Contains(msg, "pq") {
		t.Errorf("system error leaked driver text: %q", msg)
	}
	if !errors.Is(err, apperror.ErrSystem) {
		t.Error("errors.Is(err, ErrSystem) should hold")
	}
}
