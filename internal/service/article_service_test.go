package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/blog-content-api/internal/apperror"
	"github.com/blog-content-api/internal/authz"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/service"
)

type stubViews struct {
	count bool
	err   error
	calls int
}

func (v *stubViews) ShouldCount(ctx context.Context, articleID int64, visitor string) (bool, error) {
	v.calls++
	return v.count, v.err
}

func TestArticleCreate_DerivesFields(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Article.Create(context.Background(), author, &models.ArticleInput{
		Title:   "  Hello World  ",
		Content: strings.Repeat("word ", 450),
		Status:  models.ArticleDraft,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if a.Title != "Hello World" {
		t.Errorf("Title = %q, want trimmed", a.Title)
	}
	if a.Slug != "hello-world" {
		t.Errorf("Slug = %q, want hello-world", a.Slug)
	}
	if a.WordCount != 450 || a.ReadingTime != 3 {
		t.Errorf("metrics = %d words / %d min, want 450 / 3", a.WordCount, a.ReadingTime)
	}
	if a.ContentHTML == "" {
		t.Error("ContentHTML should be rendered")
	}
	if !strings.HasPrefix(a.Summary, "word word") {
		t.Errorf("Summary should be derived from content, got %q", a.Summary)
	}
	if a.AuthorID != author.ID {
		t.Errorf("AuthorID = %d, want %d", a.AuthorID, author.ID)
	}
	if a.PublishedAt != nil {
		t.Error("draft should not have published_at")
	}
	if a.Tags == nil {
		t.Error("Tags should be an empty slice, not nil")
	}
}

func TestArticleCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   models.ArticleInput
	}{
		{"blank title", models.ArticleInput{Title: "   ", Content: "x"}},
		{"title too long", models.ArticleInput{Title: strings.Repeat("t", 201), Content: "x"}},
		{"blank content", models.ArticleInput{Title: "t", Content: " \n "}},
		{"rejected status", models.ArticleInput{Title: "t", Content: "x", Status: models.ArticleRejected}},
		{"offline status", models.ArticleInput{Title: "t", Content: "x", Status: models.ArticleOffline}},
		{"bad slug", models.ArticleInput{Title: "t", Content: "x", Slug: "Not A Slug"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			_, err := f.svc.Article.Create(ctx, author, &in)
			expectKind(t, err, apperror.KindValidation)
			if len(apperror.FieldsOf(err)) == 0 {
				t.Error("validation error should carry field details")
			}
		})
	}

	if len(f.store.Articles) != 0 {
		t.Errorf("no article should be stored, got %d", len(f.store.Articles))
	}
}

func TestArticleCreate_RequiresActiveCaller(t *testing.T) {
	f := newFixture(t)
	in := func() *models.ArticleInput { return &models.ArticleInput{Title: "t", Content: "x"} }

	_, err := f.svc.Article.Create(context.Background(), nil, in())
	expectKind(t, err, apperror.KindPermission)

	_, err = f.svc.Article.Create(context.Background(), banned, in())
	expectKind(t, err, apperror.KindPermission)

	_, err = f.svc.Article.Create(context.Background(), disabled, in())
	expectKind(t, err, apperror.KindPermission)
}

func TestArticleCreate_NeedAudit(t *testing.T) {
	f := newFixture(t, articleAudit)

	a := f.createArticle(t, author, "By author", models.ArticlePublished)
	if a.Status != models.ArticleReviewing {
		t.Errorf("author publish under audit policy: status = %s, want reviewing", a.Status)
	}
	if a.PublishedAt != nil {
		t.Error("reviewing article should not have published_at")
	}

	b := f.createArticle(t, admin, "By admin", models.ArticlePublished)
	if b.Status != models.ArticlePublished {
		t.Errorf("admin publish: status = %s, want published", b.Status)
	}
	if b.PublishedAt == nil {
		t.Error("published article should have published_at")
	}
}

func TestArticleCreate_Slugs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.createArticle(t, author, "Same Title", models.ArticleDraft)
	second := f.createArticle(t, author, "Same Title", models.ArticleDraft)
	if first.Slug != "same-title" || second.Slug != "same-title-2" {
		t.Errorf("derived slugs = %q, %q; want same-title, same-title-2", first.Slug, second.Slug)
	}

	_, err := f.svc.Article.Create(ctx, author, &models.ArticleInput{Title: "Other", Content: "x", Slug: "same-title"})
	expectKind(t, err, apperror.KindConflict)

	custom, err := f.svc.Article.Create(ctx, author, &models.ArticleInput{Title: "Other", Content: "x", Slug: "my-slug"})
	if err != nil {
		t.Fatalf("Create with custom slug failed: %v", err)
	}
	if custom.Slug != "my-slug" {
		t.Errorf("Slug = %q, want my-slug", custom.Slug)
	}

	// a deleted article frees its slug
	if err := f.svc.Article.Delete(ctx, author, custom.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := f.svc.Article.Create(ctx, author, &models.ArticleInput{Title: "Again", Content: "x", Slug: "my-slug"}); err != nil {
		t.Errorf("slug of a deleted article should be reusable: %v", err)
	}
}

func TestArticleCreate_TaxonomyChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	off := models.StatusDisabled

	hidden, err := f.svc.Taxonomy.CreateCategory(ctx, admin, &models.CategoryInput{Name: "Hidden", Status: &off})
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	retired, err := f.svc.Taxonomy.CreateTag(ctx, admin, &models.TagInput{Name: "Retired", Status: &off})
	if err != nil {
		t.Fatalf("CreateTag failed: %v", err)
	}

	missing := int64(999)
	_, err = f.svc.Article.Create(ctx, author, &models.ArticleInput{Title: "t", Content: "x", CategoryID: &missing})
	expectKind(t, err, apperror.KindNotFound)

	_, err = f.svc.Article.Create(ctx, author, &models.ArticleInput{Title: "t", Content: "x", CategoryID: &hidden.ID})
	expectKind(t, err, apperror.KindValidation)

	_, err = f.svc.Article.Create(ctx, author, &models.ArticleInput{Title: "t", Content: "x", TagIDs: &[]int64{missing}})
	expectKind(t, err, apperror.KindNotFound)

	_, err = f.svc.Article.Create(ctx, author, &models.ArticleInput{Title: "t", Content: "x", TagIDs: &[]int64{retired.ID}})
	expectKind(t, err, apperror.KindValidation)

	if len(f.store.Articles) != 0 {
		t.Errorf("rejected creates must not store anything, got %d articles", len(f.store.Articles))
	}
}

func TestArticle_TagAndCategoryCounters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	go1 := f.createTag(t, "Go")
	db := f.createTag(t, "Databases")
	news := f.createCategory(t, "News", 0)
	howto := f.createCategory(t, "How-to", 0)

	a, err := f.svc.Article.Create(ctx, author, &models.ArticleInput{
		Title:      "Tagged",
		Content:    "x",
		CategoryID: &news.ID,
		TagIDs:     &[]int64{go1.ID, db.ID, go1.ID},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(a.Tags) != 2 {
		t.Errorf("duplicate tag ids should be collapsed, got %d tags", len(a.Tags))
	}
	if f.tag(t, go1.ID).ArticleCount != 1 || f.tag(t, db.ID).ArticleCount != 1 {
		t.Error("each linked tag should count the article once")
	}
	if f.category(t, news.ID).ArticleCount != 1 {
		t.Error("category should count the article")
	}

	// nil tag list leaves links untouched, category move shifts counters
	a, err = f.svc.Article.Update(ctx, author, a.ID, &models.ArticleInput{Title: "Tagged", Content: "y", CategoryID: &howto.ID})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(a.Tags) != 2 {
		t.Errorf("nil TagIDs should keep links, got %d tags", len(a.Tags))
	}
	if f.category(t, news.ID).ArticleCount != 0 || f.category(t, howto.ID).ArticleCount != 1 {
		t.Error("category change should move the article count")
	}

	a, err = f.svc.Article.Update(ctx, author, a.ID, &models.ArticleInput{
		Title: "Tagged", Content: "y", CategoryID: &howto.ID, TagIDs: &[]int64{db.ID},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(a.Tags) != 1 || a.Tags[0].ID != db.ID {
		t.Errorf("tags after replace = %+v, want only %d", a.Tags, db.ID)
	}
	if f.tag(t, go1.ID).ArticleCount != 0 || f.tag(t, db.ID).ArticleCount != 1 {
		t.Error("replaced tag links should rebalance tag counts")
	}

	if _, err := f.svc.Article.Update(ctx, author, a.ID, &models.ArticleInput{
		Title: "Tagged", Content: "y", CategoryID: &howto.ID, TagIDs: &[]int64{},
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if f.tag(t, db.ID).ArticleCount != 0 {
		t.Error("an empty tag list should unlink every tag")
	}

	if err := f.svc.Article.Delete(ctx, author, a.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if f.category(t, howto.ID).ArticleCount != 0 {
		t.Error("deleting an article should release its category count")
	}
}

func TestArticleDelete_ReleasesTagCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tag := f.createTag(t, "Go")

	a, err := f.svc.Article.Create(ctx, author, &models.ArticleInput{Title: "t", Content: "x", TagIDs: &[]int64{tag.ID}})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err = f.svc.Article.Delete(ctx, reader, a.ID)
	expectKind(t, err, apperror.KindPermission)

	if err := f.svc.Article.Delete(ctx, admin, a.ID); err != nil {
		t.Fatalf("admin Delete failed: %v", err)
	}
	if f.tag(t, tag.ID).ArticleCount != 0 {
		t.Error("tag count should drop when the article is deleted")
	}
	if len(f.store.ArticleTags[a.ID]) != 0 {
		t.Error("tag links should be removed")
	}

	_, err = f.svc.Article.Get(ctx, admin, a.ID, service.ReadOptions{})
	expectKind(t, err, apperror.KindNotFound)

	err = f.svc.Article.Delete(ctx, admin, a.ID)
	expectKind(t, err, apperror.KindNotFound)
}

func TestArticleUpdate_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createArticle(t, author, "Mine", models.ArticleDraft)
	in := func() *models.ArticleInput { return &models.ArticleInput{Title: "Changed", Content: "x"} }

	_, err := f.svc.Article.Update(ctx, reader, a.ID, in())
	expectKind(t, err, apperror.KindPermission)

	_, err = f.svc.Article.Update(ctx, author, 999, in())
	expectKind(t, err, apperror.KindNotFound)

	updated, err := f.svc.Article.Update(ctx, admin, a.ID, in())
	if err != nil {
		t.Fatalf("admin Update failed: %v", err)
	}
	if updated.Title != "Changed" || updated.AuthorID != author.ID {
		t.Errorf("Update = %q by %d, want Changed by %d", updated.Title, updated.AuthorID, author.ID)
	}
	if updated.Slug != a.Slug {
		t.Errorf("blank slug should keep %q, got %q", a.Slug, updated.Slug)
	}
}

func TestArticleUpdate_SlugUniqueExcludingSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createArticle(t, author, "First", models.ArticleDraft)
	b := f.createArticle(t, author, "Second", models.ArticleDraft)

	if _, err := f.svc.Article.Update(ctx, author, a.ID, &models.ArticleInput{Title: "First", Content: "x", Slug: a.Slug}); err != nil {
		t.Errorf("keeping its own slug should succeed: %v", err)
	}

	_, err := f.svc.Article.Update(ctx, author, a.ID, &models.ArticleInput{Title: "First", Content: "x", Slug: b.Slug})
	expectKind(t, err, apperror.KindConflict)
}

func TestArticle_PublishedAtStampedOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.createArticle(t, author, "Live", models.ArticlePublished)
	if a.PublishedAt == nil {
		t.Fatal("published article should have published_at")
	}
	first := *a.PublishedAt

	update := func(status models.ArticleStatus) *models.Article {
		got, err := f.svc.Article.Update(ctx, author, a.ID, &models.ArticleInput{Title: "Live", Content: "x", Status: status})
		if err != nil {
			t.Fatalf("Update(%s) failed: %v", status, err)
		}
		return got
	}

	update(models.ArticleDraft)
	again := update(models.ArticlePublished)
	if again.PublishedAt == nil || !again.PublishedAt.Equal(first) {
		t.Errorf("published_at changed from %v to %v", first, again.PublishedAt)
	}
}

func TestArticleUpdate_NeedAuditDowngrades(t *testing.T) {
	f := newFixture(t, articleAudit)
	a := f.createArticle(t, author, "Pending", models.ArticleDraft)

	got, err := f.svc.Article.Update(context.Background(), author, a.ID, &models.ArticleInput{
		Title: "Pending", Content: "x", Status: models.ArticlePublished,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Status != models.ArticleReviewing {
		t.Errorf("status = %s, want reviewing", got.Status)
	}
}

func TestArticleAudit(t *testing.T) {
	f := newFixture(t, articleAudit)
	ctx := context.Background()

	a := f.createArticle(t, author, "Review me", models.ArticleReviewing)

	_, err := f.svc.Article.Audit(ctx, author, a.ID, &models.ArticleAuditRequest{Status: models.ArticlePublished})
	expectKind(t, err, apperror.KindPermission)

	_, err = f.svc.Article.Audit(ctx, admin, a.ID, &models.ArticleAuditRequest{Status: models.ArticleDraft})
	expectKind(t, err, apperror.KindValidation)

	_, err = f.svc.Article.Audit(ctx, admin, a.ID, &models.ArticleAuditRequest{Status: models.ArticleRejected, AuditReason: "  "})
	expectKind(t, err, apperror.KindValidation)

	_, err = f.svc.Article.Audit(ctx, admin, 999, &models.ArticleAuditRequest{Status: models.ArticlePublished})
	expectKind(t, err, apperror.KindNotFound)

	got, err := f.svc.Article.Audit(ctx, admin, a.ID, &models.ArticleAuditRequest{Status: models.ArticlePublished})
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	if got.Status != models.ArticlePublished || got.PublishedAt == nil {
		t.Errorf("audited article = %s (published_at %v), want published with timestamp", got.Status, got.PublishedAt)
	}

	b := f.createArticle(t, author, "Reject me", models.ArticleReviewing)
	got, err = f.svc.Article.Audit(ctx, admin, b.ID, &models.ArticleAuditRequest{Status: models.ArticleRejected, AuditReason: "off topic"})
	if err != nil {
		t.Fatalf("Audit reject failed: %v", err)
	}
	if got.Status != models.ArticleRejected || got.AuditReason != "off topic" {
		t.Errorf("rejected article = %s %q", got.Status, got.AuditReason)
	}
}

func TestArticleAudit_OnlyFromReviewing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, status := range []models.ArticleStatus{models.ArticleDraft, models.ArticlePublished} {
		a := f.createArticle(t, author, "Not reviewing "+status.String(), status)
		_, err := f.svc.Article.Audit(ctx, admin, a.ID, &models.ArticleAuditRequest{Status: models.ArticlePublished})
		expectKind(t, err, apperror.KindConflict)

		_, err = f.svc.Article.Audit(ctx, author, a.ID, &models.ArticleAuditRequest{Status: models.ArticlePublished})
		expectKind(t, err, apperror.KindConflict)
	}
}

func TestArticleOffline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft := f.createArticle(t, author, "Draft", models.ArticleDraft)
	live := f.createArticle(t, author, "Live", models.ArticlePublished)

	_, err := f.svc.Article.Offline(ctx, admin, live.ID, &models.ArticleOfflineRequest{Reason: " "})
	expectKind(t, err, apperror.KindValidation)

	_, err = f.svc.Article.Offline(ctx, admin, draft.ID, &models.ArticleOfflineRequest{Reason: "spam"})
	expectKind(t, err, apperror.KindConflict)

	_, err = f.svc.Article.Offline(ctx, author, live.ID, &models.ArticleOfflineRequest{Reason: "spam"})
	expectKind(t, err, apperror.KindPermission)

	got, err := f.svc.Article.Offline(ctx, admin, live.ID, &models.ArticleOfflineRequest{Reason: "spam"})
	if err != nil {
		t.Fatalf("Offline failed: %v", err)
	}
	if got.Status != models.ArticleOffline || got.AuditReason != "spam" {
		t.Errorf("offline article = %s %q", got.Status, got.AuditReason)
	}

	_, err = f.svc.Article.Get(ctx, reader, live.ID, service.ReadOptions{})
	expectKind(t, err, apperror.KindPermission)
}

func TestArticleGet_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := f.createArticle(t, author, "Draft", models.ArticleDraft)

	if _, err := f.svc.Article.Get(ctx, nil, draft.ID, service.ReadOptions{}); apperror.KindOf(err) != apperror.KindPermission {
		t.Errorf("anonymous read of a draft: got %v, want permission", err)
	}
	if _, err := f.svc.Article.Get(ctx, reader, draft.ID, service.ReadOptions{}); apperror.KindOf(err) != apperror.KindPermission {
		t.Errorf("non-owner read of a draft: got %v, want permission", err)
	}
	if _, err := f.svc.Article.Get(ctx, author, draft.ID, service.ReadOptions{}); err != nil {
		t.Errorf("owner read of a draft failed: %v", err)
	}
	if _, err := f.svc.Article.Get(ctx, admin, draft.ID, service.ReadOptions{}); err != nil {
		t.Errorf("admin read of a draft failed: %v", err)
	}
	if _, err := f.svc.Article.Get(ctx, banned, draft.ID, service.ReadOptions{}); apperror.KindOf(err) != apperror.KindPermission {
		t.Errorf("disabled caller should not see drafts: %v", err)
	}

	got, err := f.svc.Article.GetBySlug(ctx, author, draft.Slug, service.ReadOptions{})
	if err != nil || got.ID != draft.ID {
		t.Errorf("GetBySlug = %v, %v", got, err)
	}
	_, err = f.svc.Article.GetBySlug(ctx, reader, draft.Slug, service.ReadOptions{})
	expectKind(t, err, apperror.KindPermission)
	_, err = f.svc.Article.GetBySlug(ctx, nil, "no-such-slug", service.ReadOptions{})
	expectKind(t, err, apperror.KindNotFound)
	_, err = f.svc.Article.Get(ctx, reader, draft.ID+100, service.ReadOptions{})
	expectKind(t, err, apperror.KindNotFound)
}

func TestArticleGet_PasswordGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Article.Create(ctx, author, &models.ArticleInput{
		Title: "Secret", Content: "x", Password: "hunter2", Status: models.ArticlePublished,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !a.HasPassword {
		t.Error("HasPassword should be set")
	}

	_, err = f.svc.Article.Get(ctx, reader, a.ID, service.ReadOptions{})
	expectKind(t, err, apperror.KindPermission)

	_, err = f.svc.Article.Get(ctx, nil, a.ID, service.ReadOptions{Password: "wrong"})
	expectKind(t, err, apperror.KindPermission)

	if _, err := f.svc.Article.Get(ctx, nil, a.ID, service.ReadOptions{Password: "hunter2"}); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}

	// the gate applies to owners and admins too
	_, err = f.svc.Article.Get(ctx, author, a.ID, service.ReadOptions{})
	expectKind(t, err, apperror.KindPermission)
	_, err = f.svc.Article.Get(ctx, admin, a.ID, service.ReadOptions{Password: "wrong"})
	expectKind(t, err, apperror.KindPermission)
	if _, err := f.svc.Article.Get(ctx, admin, a.ID, service.ReadOptions{Password: "hunter2"}); err != nil {
		t.Errorf("admin with the password rejected: %v", err)
	}
}

func TestArticleCreate_BlankPasswordIsNoPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Article.Create(ctx, author, &models.ArticleInput{
		Title: "Open", Content: "x", Password: "   ", Status: models.ArticlePublished,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.HasPassword {
		t.Error("a whitespace password should not protect the article")
	}
	if _, err := f.svc.Article.Get(ctx, reader, a.ID, service.ReadOptions{}); err != nil {
		t.Errorf("read of an unprotected article failed: %v", err)
	}

	padded, err := f.svc.Article.Create(ctx, author, &models.ArticleInput{
		Title: "Padded", Content: "x", Password: " pw ", Status: models.ArticlePublished,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := f.svc.Article.Get(ctx, reader, padded.ID, service.ReadOptions{Password: "pw"}); err != nil {
		t.Errorf("trimmed password rejected: %v", err)
	}
}

func TestArticleGet_RecordsViews(t *testing.T) {
	views := &stubViews{count: true}
	f := newFixtureWithViews(t, views)
	ctx := context.Background()

	live := f.createArticle(t, author, "Live", models.ArticlePublished)
	draft := f.createArticle(t, author, "Draft", models.ArticleDraft)

	got, err := f.svc.Article.Get(ctx, nil, live.ID, service.ReadOptions{Visitor: "1.2.3.4"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ViewCount != 1 || f.article(t, live.ID).ViewCount != 1 {
		t.Errorf("view count = %d (stored %d), want 1", got.ViewCount, f.article(t, live.ID).ViewCount)
	}

	views.count = false
	if _, err := f.svc.Article.Get(ctx, nil, live.ID, service.ReadOptions{Visitor: "1.2.3.4"}); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if f.article(t, live.ID).ViewCount != 1 {
		t.Error("a de-duplicated view should not count")
	}

	// recorder failures still count the view
	views.err = errors.New("redis down")
	if _, err := f.svc.Article.Get(ctx, nil, live.ID, service.ReadOptions{}); err != nil {
		t.Fatalf("Get with failing recorder should succeed: %v", err)
	}
	if f.article(t, live.ID).ViewCount != 2 {
		t.Errorf("view count = %d, want 2", f.article(t, live.ID).ViewCount)
	}

	calls := views.calls
	if _, err := f.svc.Article.Get(ctx, author, draft.ID, service.ReadOptions{}); err != nil {
		t.Fatalf("Get draft failed: %v", err)
	}
	if views.calls != calls || f.article(t, draft.ID).ViewCount != 0 {
		t.Error("reads of unpublished articles should not record views")
	}
}

func TestArticleList_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createArticle(t, author, "Draft A", models.ArticleDraft)
	f.createArticle(t, author, "Pub B", models.ArticlePublished)
	f.createArticle(t, reader, "Pub C", models.ArticlePublished)

	draft := models.ArticleDraft
	authorID := author.ID

	tests := []struct {
		name   string
		caller *authz.Principal
		q      models.ArticleQuery
		want   int
	}{
		{"anonymous", nil, models.ArticleQuery{}, 2},
		{"anonymous status filter ignored", nil, models.ArticleQuery{Status: &draft}, 2},
		{"author own listing", author, models.ArticleQuery{AuthorID: &authorID}, 2},
		{"author own drafts", author, models.ArticleQuery{AuthorID: &authorID, Status: &draft}, 1},
		{"other user on author", reader, models.ArticleQuery{AuthorID: &authorID}, 1},
		{"admin on author", admin, models.ArticleQuery{AuthorID: &authorID}, 2},
		{"keyword", nil, models.ArticleQuery{Keyword: "pub c"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.svc.Article.List(ctx, tt.caller, tt.q)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if page.Total != tt.want || len(page.Items) != tt.want {
				t.Errorf("List total = %d (items %d), want %d", page.Total, len(page.Items), tt.want)
			}
			for _, a := range page.Items {
				if a.Content != "" || a.ContentHTML != "" {
					t.Error("list items should not carry content")
				}
			}
		})
	}
}

func TestArticleList_PagingAndSort(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, title := range []string{"One", "Two", "Three"} {
		f.createArticle(t, author, title, models.ArticlePublished)
	}

	page, err := f.svc.Article.List(ctx, nil, models.ArticleQuery{PageSize: 1000})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.PageSize != f.cfg.Content.MaxPageSize || page.Page != 1 {
		t.Errorf("page bounds = %d/%d, want 1/%d", page.Page, page.PageSize, f.cfg.Content.MaxPageSize)
	}

	page, err = f.svc.Article.List(ctx, nil, models.ArticleQuery{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 1 {
		t.Errorf("second page = %d items of %d, want 1 of 3", len(page.Items), page.Total)
	}

	_, err = f.svc.Article.List(ctx, nil, models.ArticleQuery{SortBy: "title"})
	expectKind(t, err, apperror.KindValidation)

	_, err = f.svc.Article.List(ctx, nil, models.ArticleQuery{SortOrder: "sideways"})
	expectKind(t, err, apperror.KindValidation)
}

func TestArticleList_PinnedFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createArticle(t, author, "Plain", models.ArticlePublished)
	pinned, err := f.svc.Article.Create(ctx, admin, &models.ArticleInput{
		Title: "Pinned", Content: "x", IsTop: true, Status: models.ArticlePublished,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f.createArticle(t, author, "Newest", models.ArticlePublished)

	page, err := f.svc.Article.List(ctx, nil, models.ArticleQuery{SortOrder: "asc"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page.Items) != 3 || page.Items[0].ID != pinned.ID {
		t.Errorf("pinned article should lead the listing, got %+v", page.Items)
	}
}

func TestArticleListManaged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createArticle(t, author, "Draft", models.ArticleDraft)
	f.createArticle(t, author, "Live", models.ArticlePublished)

	_, err := f.svc.Article.ListManaged(ctx, author, models.ArticleQuery{})
	expectKind(t, err, apperror.KindPermission)

	page, err := f.svc.Article.ListManaged(ctx, admin, models.ArticleQuery{})
	if err != nil {
		t.Fatalf("ListManaged failed: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("ListManaged total = %d, want 2", page.Total)
	}

	draft := models.ArticleDraft
	page, err = f.svc.Article.ListManaged(ctx, admin, models.ArticleQuery{Status: &draft})
	if err != nil {
		t.Fatalf("ListManaged failed: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("ListManaged(draft) total = %d, want 1", page.Total)
	}
}

// TestArticle_PublishScenario walks the author -> admin -> reader path
func TestArticle_PublishScenario(t *testing.T) {
	f := newFixture(t, articleAudit)
	ctx := context.Background()

	a := f.createArticle(t, author, "Scenario", models.ArticlePublished)
	if a.Status != models.ArticleReviewing {
		t.Fatalf("status = %s, want reviewing", a.Status)
	}

	_, err := f.svc.Article.Get(ctx, nil, a.ID, service.ReadOptions{})
	expectKind(t, err, apperror.KindPermission)

	if _, err := f.svc.Article.Audit(ctx, admin, a.ID, &models.ArticleAuditRequest{Status: models.ArticlePublished}); err != nil {
		t.Fatalf("Audit failed: %v", err)
	}

	got, err := f.svc.Article.Get(ctx, nil, a.ID, service.ReadOptions{})
	if err != nil {
		t.Fatalf("public read after publish failed: %v", err)
	}
	if got.Status != models.ArticlePublished || got.ViewCount != 1 {
		t.Errorf("public read = %s with %d views", got.Status, got.ViewCount)
	}
}
