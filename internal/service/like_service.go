package service

import (
	"context"

	"github.com/blog-content-api/internal/apperror"
	"github.com/blog-content-api/internal/authz"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/repository"
	"github.com/rs/zerolog"
)

// likeService is the concrete implementation of LikeService
type likeService struct {
	base
	log zerolog.Logger
}

// newLikeService creates a new LikeService
func newLikeService(b base, log zerolog.Logger) *likeService {
	return &likeService{
		base: b,
		log:  log.With().Str("service", "like").Logger(),
	}
}

// likeable is the part of a like target the service needs
type likeable struct {
	entity    repository.Entity
	open      bool
	likeCount int
}

// Like records the caller's like. A second like of the same target is a conflict.
func (s *likeService) Like(ctx context.Context, caller *authz.Principal, target models.LikeTarget, targetID int64) (*models.LikeStatus, error) {
	if err := authz.RequireActive(caller); err != nil {
		return nil, err
	}
	if err := checkTarget(target, targetID); err != nil {
		return nil, err
	}

	now := s.now()
	var count int
	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		t, err := loadTarget(ctx, tx, target, targetID)
		if err != nil {
			return err
		}
		if !t.open {
			return apperror.Conflict("%s %d cannot be liked in its current state", target, targetID)
		}

		created, err := tx.Like.Create(ctx, &models.Like{
			UserID:     caller.ID,
			TargetID:   targetID,
			TargetType: target,
			CreatedAt:  now,
		})
		if err != nil {
			return err
		}
		if !created {
			return apperror.Conflict("%s %d is already liked", target, targetID)
		}
		if err := newCounters(tx, now).likes(ctx, t.entity, targetID, 1); err != nil {
			return err
		}

		count, err = currentLikes(ctx, tx, target, targetID)
		return err
	})
	if err != nil {
		return nil, storeErr(s.log, err, "like")
	}

	s.log.Debug().
		Int64("user_id", caller.ID).
		Str("target", target.String()).
		Int64("target_id", targetID).
		Msg("Liked")

	return &models.LikeStatus{TargetID: targetID, TargetType: target, Liked: true, LikeCount: count}, nil
}

// Unlike removes the caller's like. Removing a like that does not exist is not-found.
func (s *likeService) Unlike(ctx context.Context, caller *authz.Principal, target models.LikeTarget, targetID int64) (*models.LikeStatus, error) {
	if err := authz.RequireActive(caller); err != nil {
		return nil, err
	}
	if err := checkTarget(target, targetID); err != nil {
		return nil, err
	}

	now := s.now()
	var count int
	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		removed, err := tx.Like.Delete(ctx, caller.ID, targetID, target)
		if err != nil {
			return err
		}
		if !removed {
			return apperror.NotFound("%s %d is not liked", target, targetID)
		}
		if err := newCounters(tx, now).likes(ctx, entityOf(target), targetID, -1); err != nil {
			return err
		}

		count, err = currentLikes(ctx, tx, target, targetID)
		return err
	})
	if err != nil {
		return nil, storeErr(s.log, err, "unlike")
	}

	s.log.Debug().
		Int64("user_id", caller.ID).
		Str("target", target.String()).
		Int64("target_id", targetID).
		Msg("Unliked")

	return &models.LikeStatus{TargetID: targetID, TargetType: target, Liked: false, LikeCount: count}, nil
}

// Status reports the like count and whether the caller has liked the target
func (s *likeService) Status(ctx context.Context, caller *authz.Principal, target models.LikeTarget, targetID int64) (*models.LikeStatus, error) {
	if err := checkTarget(target, targetID); err != nil {
		return nil, err
	}

	t, err := loadTarget(ctx, s.repos, target, targetID)
	if err != nil {
		return nil, storeErr(s.log, err, "like status")
	}

	status := &models.LikeStatus{TargetID: targetID, TargetType: target, LikeCount: t.likeCount}
	if caller.IsAuthenticated() {
		status.Liked, err = s.repos.Like.Exists(ctx, caller.ID, targetID, target)
		if err != nil {
			return nil, storeErr(s.log, err, "like status")
		}
	}
	return status, nil
}

func checkTarget(target models.LikeTarget, targetID int64) error {
	var fields []apperror.FieldError
	if !target.Valid() {
		fields = append(fields, apperror.FieldError{
			Field: "target_type", Message: "target_type must be 1 (article) or 2 (comment)", Value: int(target),
		})
	}
	if targetID <= 0 {
		fields = append(fields, apperror.FieldError{
			Field: "target_id", Message: "target_id must be greater than 0", Value: targetID,
		})
	}
	if len(fields) > 0 {
		return validationErr(fields)
	}
	return nil
}

// loadTarget fetches a like target. Only published articles and approved
// comments are open to new likes.
func loadTarget(ctx context.Context, repos *repository.Repositories, target models.LikeTarget, id int64) (*likeable, error) {
	if target == models.LikeComment {
		c, err := repos.Comment.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, apperror.NotFound("comment %d not found", id)
		}
		return &likeable{entity: repository.EntityComment, open: c.Status == models.CommentApproved, likeCount: c.LikeCount}, nil
	}

	a, err := repos.Article.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperror.NotFound("article %d not found", id)
	}
	return &likeable{entity: repository.EntityArticle, open: a.Status == models.ArticlePublished, likeCount: a.LikeCount}, nil
}

// currentLikes reads the counter after an adjustment. A target deleted since
// the like was placed reads as zero.
func currentLikes(ctx context.Context, repos *repository.Repositories, target models.LikeTarget, id int64) (int, error) {
	t, err := loadTarget(ctx, repos, target, id)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return 0, nil
		}
		return 0, err
	}
	return t.likeCount, nil
}

func entityOf(target models.LikeTarget) repository.Entity {
	if target == models.LikeComment {
		return repository.EntityComment
	}
	return repository.EntityArticle
}
