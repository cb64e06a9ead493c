package service

import (
	"context"
	"time"

	"github.com/blog-content-api/internal/repository"
)

// counters issues the ±1 adjustments that keep denormalized counts in step
// with the rows they summarize. Every adjustment funnels through
// CounterRepository.Adjust.
type counters struct {
	repos *repository.Repositories
	now   time.Time
}

func newCounters(repos *repository.Repositories, now time.Time) counters {
	return counters{repos: repos, now: now}
}

func (c counters) adjust(ctx context.Context, entity repository.Entity, field string, id int64, delta int) error {
	return c.repos.Counter.Adjust(ctx, entity, field, id, delta, c.now)
}

// tagsLinked bumps article_count on each tag by delta
func (c counters) tagsLinked(ctx context.Context, tagIDs []int64, delta int) error {
	for _, id := range tagIDs {
		if err := c.adjust(ctx, repository.EntityTag, repository.FieldArticleCount, id, delta); err != nil {
			return err
		}
	}
	return nil
}

// categoryMoved moves one article from one category to another; either side may be nil
func (c counters) categoryMoved(ctx context.Context, from, to *int64) error {
	if sameCategory(from, to) {
		return nil
	}
	if from != nil {
		if err := c.adjust(ctx, repository.EntityCategory, repository.FieldArticleCount, *from, -1); err != nil {
			return err
		}
	}
	if to != nil {
		if err := c.adjust(ctx, repository.EntityCategory, repository.FieldArticleCount, *to, 1); err != nil {
			return err
		}
	}
	return nil
}

func (c counters) articleComments(ctx context.Context, articleID int64, delta int) error {
	return c.adjust(ctx, repository.EntityArticle, repository.FieldCommentCount, articleID, delta)
}

func (c counters) articleViewed(ctx context.Context, articleID int64) error {
	return c.adjust(ctx, repository.EntityArticle, repository.FieldViewCount, articleID, 1)
}

// likes adjusts like_count on an article or a comment
func (c counters) likes(ctx context.Context, entity repository.Entity, id int64, delta int) error {
	return c.adjust(ctx, entity, repository.FieldLikeCount, id, delta)
}

func sameCategory(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
