package service

import (
	"context"
	"strings"

	"github.com/blog-content-api/internal/apperror"
	"github.com/blog-content-api/internal/authz"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/repository"
	"github.com/rs/zerolog"
)

// commentService is the concrete implementation of CommentService
type commentService struct {
	base
	log zerolog.Logger
}

// newCommentService creates a new CommentService
func newCommentService(b base, log zerolog.Logger) *commentService {
	return &commentService{
		base: b,
		log:  log.With().Str("service", "comment").Logger(),
	}
}

// Create stores a comment on a published article. Threads are two levels
// deep: a reply to a reply is stored under the top-level ancestor with
// reply_to_id naming the comment actually answered.
func (s *commentService) Create(ctx context.Context, caller *authz.Principal, in *models.CommentInput, client models.ClientInfo) (*models.Comment, error) {
	if err := authz.RequireActive(caller); err != nil {
		return nil, err
	}

	in.Content = strings.TrimSpace(in.Content)
	if fields := s.validate.Struct(in); len(fields) > 0 {
		return nil, validationErr(fields)
	}

	client = client.Clipped()
	now := s.now()
	comment := &models.Comment{
		ArticleID: in.ArticleID,
		AuthorID:  caller.ID,
		Content:   in.Content,
		Status:    models.CommentApproved,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.policy.CommentNeedAudit {
		comment.Status = models.CommentPending
	}

	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		article, err := tx.Article.GetByID(ctx, in.ArticleID)
		if err != nil {
			return err
		}
		if article == nil {
			return apperror.NotFound("article %d not found", in.ArticleID)
		}
		if article.Status != models.ArticlePublished {
			return apperror.Conflict("article %d is %s, comments are only accepted on published articles", article.ID, article.Status)
		}

		if err := s.placeInThread(ctx, tx, comment, in); err != nil {
			return err
		}

		if err := tx.Comment.Create(ctx, comment); err != nil {
			return err
		}
		return newCounters(tx, now).articleComments(ctx, comment.ArticleID, 1)
	})
	if err != nil {
		return nil, storeErr(s.log, err, "create comment")
	}

	s.log.Info().
		Int64("comment_id", comment.ID).
		Int64("article_id", comment.ArticleID).
		Int64("parent_id", comment.ParentID).
		Str("status", comment.Status.String()).
		Msg("Comment created")

	return comment, nil
}

// placeInThread resolves parent_id and reply_to_id for a new comment
func (s *commentService) placeInThread(ctx context.Context, tx *repository.Repositories, c *models.Comment, in *models.CommentInput) error {
	var replyTo int64
	if in.ReplyToID != nil {
		replyTo = *in.ReplyToID
	}
	if in.ParentID == 0 && replyTo == 0 {
		return nil
	}

	if in.ParentID != 0 {
		parent, err := s.threadTarget(ctx, tx, "parent_id", in.ParentID, c.ArticleID)
		if err != nil {
			return err
		}
		if parent.IsTopLevel() {
			c.ParentID = parent.ID
		} else {
			c.ParentID = parent.ParentID
			if replyTo == 0 {
				replyTo = parent.ID
			}
		}
	}

	if replyTo != 0 {
		target, err := s.threadTarget(ctx, tx, "reply_to_id", replyTo, c.ArticleID)
		if err != nil {
			return err
		}
		root := target.ParentID
		if target.IsTopLevel() {
			root = target.ID
		}
		if c.ParentID == 0 {
			c.ParentID = root
		} else if c.ParentID != root {
			return apperror.Validation("reply target is in a different thread", apperror.FieldError{
				Field: "reply_to_id", Message: "reply_to_id must belong to the same thread as parent_id", Value: replyTo,
			})
		}
		c.ReplyToID = &replyTo
	}
	return nil
}

// threadTarget loads a comment a new reply points at. It must be an approved
// comment on the same article.
func (s *commentService) threadTarget(ctx context.Context, tx *repository.Repositories, field string, id, articleID int64) (*models.Comment, error) {
	target, err := tx.Comment.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, apperror.NotFound("comment %d not found", id)
	}
	if target.ArticleID != articleID {
		return nil, apperror.Validation("comment belongs to another article", apperror.FieldError{
			Field: field, Message: field + " must reference a comment on the same article", Value: id,
		})
	}
	if target.Status != models.CommentApproved {
		return nil, apperror.Conflict("comment %d is %s, only approved comments can be replied to", id, target.Status)
	}
	return target, nil
}

// Audit resolves a Pending comment. Both outcomes are terminal.
func (s *commentService) Audit(ctx context.Context, caller *authz.Principal, id int64, req *models.CommentAuditRequest) (*models.Comment, error) {
	if err := authz.RequireActive(caller); err != nil {
		return nil, err
	}
	req.AuditReason = strings.TrimSpace(req.AuditReason)
	if fields := s.validate.Struct(req); len(fields) > 0 {
		return nil, validationErr(fields)
	}

	now := s.now()
	var comment *models.Comment

	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		c, err := tx.Comment.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return apperror.NotFound("comment %d not found", id)
		}
		if c.Status != models.CommentPending {
			return apperror.Conflict("comment %d is %s, only pending comments can be audited", id, c.Status)
		}
		if err := authz.Authorize(caller, c.AuthorID, authz.AdminOnly); err != nil {
			return err
		}

		if err := tx.Comment.UpdateStatus(ctx, id, req.Status, req.AuditReason, now); err != nil {
			return err
		}
		if req.Status == models.CommentDeleted {
			if err := newCounters(tx, now).articleComments(ctx, c.ArticleID, -1); err != nil {
				return err
			}
		}

		c.Status = req.Status
		c.AuditReason = req.AuditReason
		c.UpdatedAt = now
		comment = c
		return nil
	})
	if err != nil {
		return nil, storeErr(s.log, err, "audit comment")
	}

	s.log.Info().
		Int64("comment_id", id).
		Int64("moderator_id", caller.ID).
		Str("status", comment.Status.String()).
		Msg("Comment audited")

	return comment, nil
}

// Delete soft-deletes a comment that no approved reply still depends on
func (s *commentService) Delete(ctx context.Context, caller *authz.Principal, id int64) error {
	if err := authz.RequireActive(caller); err != nil {
		return err
	}

	now := s.now()
	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		c, err := tx.Comment.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return apperror.NotFound("comment %d not found", id)
		}
		if err := authz.Authorize(caller, c.AuthorID, authz.OwnerOrAdmin); err != nil {
			return err
		}

		replied, err := tx.Comment.HasApprovedReplies(ctx, id)
		if err != nil {
			return err
		}
		if replied {
			return apperror.Conflict("comment %d has approved replies", id)
		}

		if err := tx.Comment.SoftDelete(ctx, id, now); err != nil {
			return err
		}
		// a comment moderated to Deleted was already taken off the count
		if c.Status == models.CommentDeleted {
			return nil
		}
		return newCounters(tx, now).articleComments(ctx, c.ArticleID, -1)
	})
	if err != nil {
		return storeErr(s.log, err, "delete comment")
	}

	s.log.Info().Int64("comment_id", id).Int64("caller_id", caller.ID).Msg("Comment deleted")
	return nil
}

// ListByArticle returns a page of approved top-level comments with their
// approved replies attached
func (s *commentService) ListByArticle(ctx context.Context, caller *authz.Principal, articleID int64, q models.CommentQuery) (*models.Page[*models.Comment], error) {
	desc, err := commentOrder(q.SortOrder, false)
	if err != nil {
		return nil, err
	}

	article, err := s.repos.Article.GetByID(ctx, articleID)
	if err != nil {
		return nil, storeErr(s.log, err, "list comments")
	}
	if article == nil {
		return nil, apperror.NotFound("article %d not found", articleID)
	}
	if article.Status != models.ArticlePublished && !authz.CanView(caller, article.AuthorID) {
		return nil, apperror.Permission("article %d is %s and not visible to the caller", articleID, article.Status)
	}

	page, size := s.pageBounds(q.Page, q.PageSize)
	top, total, err := s.repos.Comment.ListTopLevel(ctx, articleID, desc, size, models.Offset(page, size))
	if err != nil {
		return nil, storeErr(s.log, err, "list comments")
	}

	ids := make([]int64, len(top))
	byID := make(map[int64]*models.Comment, len(top))
	for i, c := range top {
		ids[i] = c.ID
		byID[c.ID] = c
		redactClient(c)
	}

	replies, err := s.repos.Comment.ListReplies(ctx, ids)
	if err != nil {
		return nil, storeErr(s.log, err, "list comment replies")
	}
	for _, r := range replies {
		if parent, ok := byID[r.ParentID]; ok {
			redactClient(r)
			parent.Replies = append(parent.Replies, r)
		}
	}

	return &models.Page[*models.Comment]{Items: top, Total: total, Page: page, PageSize: size}, nil
}

// ListForModeration is the admin listing across every status
func (s *commentService) ListForModeration(ctx context.Context, caller *authz.Principal, q models.CommentQuery) (*models.Page[*models.Comment], error) {
	if err := authz.Authorize(caller, 0, authz.AdminOnly); err != nil {
		return nil, err
	}
	desc, err := commentOrder(q.SortOrder, true)
	if err != nil {
		return nil, err
	}
	if q.Status != nil && (*q.Status < models.CommentPending || *q.Status > models.CommentDeleted) {
		return nil, validationErr([]apperror.FieldError{{
			Field: "status", Message: "status must be between 0 and 2", Value: int(*q.Status),
		}})
	}

	page, size := s.pageBounds(q.Page, q.PageSize)
	comments, total, err := s.repos.Comment.List(ctx, repository.CommentFilter{
		ArticleID: q.ArticleID,
		Status:    q.Status,
		Desc:      desc,
		Limit:     size,
		Offset:    models.Offset(page, size),
	})
	if err != nil {
		return nil, storeErr(s.log, err, "list comments for moderation")
	}

	return &models.Page[*models.Comment]{Items: comments, Total: total, Page: page, PageSize: size}, nil
}

func commentOrder(order string, def bool) (bool, error) {
	switch strings.ToLower(order) {
	case "":
		return def, nil
	case "asc":
		return false, nil
	case "desc":
		return true, nil
	default:
		return false, validationErr([]apperror.FieldError{{
			Field: "sort_order", Message: "sort_order must be asc or desc", Value: order,
		}})
	}
}

// redactClient drops audit-only fields from public listings
func redactClient(c *models.Comment) {
	c.IPAddress = ""
	c.UserAgent = ""
}
