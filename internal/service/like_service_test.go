package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/blog-content-api/internal/apperror"
	"github.com/blog-content-api/internal/authz"
	"github.com/blog-content-api/internal/models"
)

func user(id int64) *authz.Principal {
	return &authz.Principal{ID: id, Role: authz.RoleUser, Enabled: true}
}

func TestLike_CountMatchesActiveLikes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createArticle(t, author, "Likeable", models.ArticlePublished)

	const n = 5
	for i := int64(1); i <= n; i++ {
		st, err := f.svc.Like.Like(ctx, user(100+i), models.LikeArticle, a.ID)
		if err != nil {
			t.Fatalf("Like by %d failed: %v", 100+i, err)
		}
		if !st.Liked || st.LikeCount != int(i) {
			t.Errorf("after %d likes: status = %+v", i, st)
		}
	}

	_, err := f.svc.Like.Like(ctx, user(101), models.LikeArticle, a.ID)
	expectKind(t, err, apperror.KindConflict)

	for _, id := range []int64{101, 103} {
		if _, err := f.svc.Like.Unlike(ctx, user(id), models.LikeArticle, a.ID); err != nil {
			t.Fatalf("Unlike by %d failed: %v", id, err)
		}
	}

	_, err = f.svc.Like.Unlike(ctx, user(101), models.LikeArticle, a.ID)
	expectKind(t, err, apperror.KindNotFound)

	stored := f.article(t, a.ID).LikeCount
	if active := f.store.LikeCount(a.ID, models.LikeArticle); stored != active || stored != n-2 {
		t.Errorf("like_count = %d, active likes = %d, want %d", stored, active, n-2)
	}
}

func TestLike_Concurrent(t *testing.T) {
	f := newFixture(t)
	a := f.createArticle(t, author, "Popular", models.ArticlePublished)

	var wg sync.WaitGroup
	for _, id := range []int64{201, 202} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := f.svc.Like.Like(context.Background(), user(id), models.LikeArticle, a.ID); err != nil {
				t.Errorf("Like by %d failed: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	if got := f.article(t, a.ID).LikeCount; got != 2 {
		t.Errorf("like_count = %d, want 2", got)
	}
}

func TestLike_Targets(t *testing.T) {
	f := newFixture(t, commentAudit)
	ctx := context.Background()
	live := f.createArticle(t, author, "Live", models.ArticlePublished)
	draft := f.createArticle(t, author, "Draft", models.ArticleDraft)
	pending := f.comment(t, reader, live.ID, 0, "pending")

	_, err := f.svc.Like.Like(ctx, reader, models.LikeArticle, draft.ID)
	expectKind(t, err, apperror.KindConflict)

	_, err = f.svc.Like.Like(ctx, reader, models.LikeComment, pending.ID)
	expectKind(t, err, apperror.KindConflict)

	_, err = f.svc.Like.Like(ctx, reader, models.LikeArticle, 999)
	expectKind(t, err, apperror.KindNotFound)

	_, err = f.svc.Like.Like(ctx, reader, models.LikeTarget(7), live.ID)
	expectKind(t, err, apperror.KindValidation)

	_, err = f.svc.Like.Like(ctx, nil, models.LikeArticle, live.ID)
	expectKind(t, err, apperror.KindPermission)

	if _, err := f.svc.Comment.Audit(ctx, admin, pending.ID, &models.CommentAuditRequest{Status: models.CommentApproved}); err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	st, err := f.svc.Like.Like(ctx, author, models.LikeComment, pending.ID)
	if err != nil {
		t.Fatalf("Like comment failed: %v", err)
	}
	if st.LikeCount != 1 || st.TargetType != models.LikeComment {
		t.Errorf("comment like status = %+v", st)
	}
}

func TestLike_Status(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createArticle(t, author, "Live", models.ArticlePublished)

	if _, err := f.svc.Like.Like(ctx, reader, models.LikeArticle, a.ID); err != nil {
		t.Fatalf("Like failed: %v", err)
	}

	st, err := f.svc.Like.Status(ctx, reader, models.LikeArticle, a.ID)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !st.Liked || st.LikeCount != 1 {
		t.Errorf("liker status = %+v", st)
	}

	st, err = f.svc.Like.Status(ctx, nil, models.LikeArticle, a.ID)
	if err != nil {
		t.Fatalf("anonymous Status failed: %v", err)
	}
	if st.Liked || st.LikeCount != 1 {
		t.Errorf("anonymous status = %+v", st)
	}

	_, err = f.svc.Like.Status(ctx, nil, models.LikeComment, 999)
	expectKind(t, err, apperror.KindNotFound)
}
