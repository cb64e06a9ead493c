package service

import (
	"context"
	"strings"

	"github.com/blog-content-api/internal/apperror"
	"github.com/blog-content-api/internal/authz"
	"github.com/blog-content-api/internal/derive"
	"github.com/blog-content-api/internal/models"
	"github.com/rs/zerolog"
)

// taxonomyService is the concrete implementation of TaxonomyService
type taxonomyService struct {
	base
	log zerolog.Logger
}

// newTaxonomyService creates a new TaxonomyService
func newTaxonomyService(b base, log zerolog.Logger) *taxonomyService {
	return &taxonomyService{
		base: b,
		log:  log.With().Str("service", "taxonomy").Logger(),
	}
}

// uniqueness looks up name and slug collisions for one taxonomy table
type uniqueness struct {
	kind       string
	nameExists func(ctx context.Context, name string, excludeID int64) (bool, error)
	slugExists func(ctx context.Context, slug string, excludeID int64) (bool, error)
}

// check rejects a taken name, then resolves the slug: a supplied one must be
// free, a derived one gets a numeric suffix until it is
func (u uniqueness) check(ctx context.Context, slugger derive.Slugger, name, slug string, selfID int64) (string, error) {
	taken, err := u.nameExists(ctx, name, selfID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperror.Conflict("%s name %q is already in use", u.kind, name)
	}

	exists := func(candidate string) (bool, error) {
		return u.slugExists(ctx, candidate, selfID)
	}
	if slug != "" {
		taken, err := exists(slug)
		if err != nil {
			return "", err
		}
		if taken {
			return "", apperror.Conflict("%s slug %q is already in use", u.kind, slug)
		}
		return slug, nil
	}
	return derive.UniqueSlug(slugger.Slugify(name), exists)
}

func (s *taxonomyService) tagUniqueness() uniqueness {
	return uniqueness{kind: "tag", nameExists: s.repos.Tag.NameExists, slugExists: s.repos.Tag.SlugExists}
}

func (s *taxonomyService) categoryUniqueness() uniqueness {
	return uniqueness{kind: "category", nameExists: s.repos.Category.NameExists, slugExists: s.repos.Category.SlugExists}
}

// admin gates every taxonomy mutation
func admin(caller *authz.Principal) error {
	if err := authz.RequireActive(caller); err != nil {
		return err
	}
	return authz.Authorize(caller, 0, authz.AdminOnly)
}

// CreateTag creates an enabled tag unless a status is given
func (s *taxonomyService) CreateTag(ctx context.Context, caller *authz.Principal, in *models.TagInput) (*models.Tag, error) {
	if err := admin(caller); err != nil {
		return nil, err
	}
	if err := s.validateTag(in); err != nil {
		return nil, err
	}

	slug, err := s.tagUniqueness().check(ctx, s.slugger, in.Name, in.Slug, 0)
	if err != nil {
		return nil, storeErr(s.log, err, "create tag")
	}

	now := s.now()
	tag := &models.Tag{
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
		Status:      statusOr(in.Status, models.StatusEnabled),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repos.Tag.Create(ctx, tag); err != nil {
		return nil, storeErr(s.log, err, "create tag")
	}

	s.log.Info().Int64("tag_id", tag.ID).Str("slug", tag.Slug).Msg("Tag created")
	return tag, nil
}

// UpdateTag replaces name, description and status. A blank slug keeps the current one.
func (s *taxonomyService) UpdateTag(ctx context.Context, caller *authz.Principal, id int64, in *models.TagInput) (*models.Tag, error) {
	if err := admin(caller); err != nil {
		return nil, err
	}
	if err := s.validateTag(in); err != nil {
		return nil, err
	}

	tag, err := s.repos.Tag.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(s.log, err, "update tag")
	}
	if tag == nil {
		return nil, apperror.NotFound("tag %d not found", id)
	}

	slug := in.Slug
	if slug == "" {
		slug = tag.Slug
	}
	if _, err := s.tagUniqueness().check(ctx, s.slugger, in.Name, slug, id); err != nil {
		return nil, storeErr(s.log, err, "update tag")
	}

	tag.Name = in.Name
	tag.Slug = slug
	tag.Description = in.Description
	tag.Status = statusOr(in.Status, tag.Status)
	tag.UpdatedAt = s.now()

	if err := s.repos.Tag.Update(ctx, tag); err != nil {
		return nil, storeErr(s.log, err, "update tag")
	}

	s.log.Info().Int64("tag_id", id).Msg("Tag updated")
	return tag, nil
}

// DeleteTag removes a tag no article uses
func (s *taxonomyService) DeleteTag(ctx context.Context, caller *authz.Principal, id int64) error {
	if err := admin(caller); err != nil {
		return err
	}

	tag, err := s.repos.Tag.GetByID(ctx, id)
	if err != nil {
		return storeErr(s.log, err, "delete tag")
	}
	if tag == nil {
		return apperror.NotFound("tag %d not found", id)
	}
	if tag.ArticleCount > 0 {
		return apperror.Conflict("tag %d is used by %d articles", id, tag.ArticleCount)
	}

	if err := s.repos.Tag.Delete(ctx, id); err != nil {
		return storeErr(s.log, err, "delete tag")
	}

	s.log.Info().Int64("tag_id", id).Msg("Tag deleted")
	return nil
}

// ListTags returns every tag to admins and enabled tags to everyone else
func (s *taxonomyService) ListTags(ctx context.Context, caller *authz.Principal) ([]*models.Tag, error) {
	tags, err := s.repos.Tag.List(ctx, !authz.Allowed(caller, 0, authz.AdminOnly))
	if err != nil {
		return nil, storeErr(s.log, err, "list tags")
	}
	return tags, nil
}

// CreateCategory creates a category, optionally under an existing parent
func (s *taxonomyService) CreateCategory(ctx context.Context, caller *authz.Principal, in *models.CategoryInput) (*models.Category, error) {
	if err := admin(caller); err != nil {
		return nil, err
	}
	if err := s.validateCategory(in); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, 0, in.ParentID); err != nil {
		return nil, storeErr(s.log, err, "create category")
	}

	slug, err := s.categoryUniqueness().check(ctx, s.slugger, in.Name, in.Slug, 0)
	if err != nil {
		return nil, storeErr(s.log, err, "create category")
	}

	now := s.now()
	category := &models.Category{
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
		ParentID:    in.ParentID,
		SortOrder:   in.SortOrder,
		Status:      statusOr(in.Status, models.StatusEnabled),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repos.Category.Create(ctx, category); err != nil {
		return nil, storeErr(s.log, err, "create category")
	}

	s.log.Info().Int64("category_id", category.ID).Str("slug", category.Slug).Msg("Category created")
	return category, nil
}

// UpdateCategory replaces the editable fields. A blank slug keeps the current one.
func (s *taxonomyService) UpdateCategory(ctx context.Context, caller *authz.Principal, id int64, in *models.CategoryInput) (*models.Category, error) {
	if err := admin(caller); err != nil {
		return nil, err
	}
	if err := s.validateCategory(in); err != nil {
		return nil, err
	}

	category, err := s.repos.Category.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(s.log, err, "update category")
	}
	if category == nil {
		return nil, apperror.NotFound("category %d not found", id)
	}
	if in.ParentID != category.ParentID {
		if err := s.checkParent(ctx, id, in.ParentID); err != nil {
			return nil, storeErr(s.log, err, "update category")
		}
	}

	slug := in.Slug
	if slug == "" {
		slug = category.Slug
	}
	if _, err := s.categoryUniqueness().check(ctx, s.slugger, in.Name, slug, id); err != nil {
		return nil, storeErr(s.log, err, "update category")
	}

	category.Name = in.Name
	category.Slug = slug
	category.Description = in.Description
	category.ParentID = in.ParentID
	category.SortOrder = in.SortOrder
	category.Status = statusOr(in.Status, category.Status)
	category.UpdatedAt = s.now()

	if err := s.repos.Category.Update(ctx, category); err != nil {
		return nil, storeErr(s.log, err, "update category")
	}

	s.log.Info().Int64("category_id", id).Msg("Category updated")
	return category, nil
}

// DeleteCategory removes an empty leaf category
func (s *taxonomyService) DeleteCategory(ctx context.Context, caller *authz.Principal, id int64) error {
	if err := admin(caller); err != nil {
		return err
	}

	category, err := s.repos.Category.GetByID(ctx, id)
	if err != nil {
		return storeErr(s.log, err, "delete category")
	}
	if category == nil {
		return apperror.NotFound("category %d not found", id)
	}
	if category.ArticleCount > 0 {
		return apperror.Conflict("category %d holds %d articles", id, category.ArticleCount)
	}
	hasChildren, err := s.repos.Category.HasChildren(ctx, id)
	if err != nil {
		return storeErr(s.log, err, "delete category")
	}
	if hasChildren {
		return apperror.Conflict("category %d has child categories", id)
	}

	if err := s.repos.Category.Delete(ctx, id); err != nil {
		return storeErr(s.log, err, "delete category")
	}

	s.log.Info().Int64("category_id", id).Msg("Category deleted")
	return nil
}

// CategoryTree returns the categories as a forest ordered by sort_order then
// id. Non-admins see enabled categories only; children of a hidden category
// are hidden with it.
func (s *taxonomyService) CategoryTree(ctx context.Context, caller *authz.Principal) ([]*models.Category, error) {
	categories, err := s.repos.Category.List(ctx, !authz.Allowed(caller, 0, authz.AdminOnly))
	if err != nil {
		return nil, storeErr(s.log, err, "list categories")
	}
	return buildTree(categories), nil
}

// buildTree links categories under their parents, keeping input order
func buildTree(categories []*models.Category) []*models.Category {
	byID := make(map[int64]*models.Category, len(categories))
	for _, c := range categories {
		c.Children = nil
		byID[c.ID] = c
	}

	roots := []*models.Category{}
	for _, c := range categories {
		if c.ParentID == 0 {
			roots = append(roots, c)
			continue
		}
		if parent, ok := byID[c.ParentID]; ok {
			parent.Children = append(parent.Children, c)
		}
	}
	return roots
}

// checkParent requires parentID to exist and not sit below selfID
func (s *taxonomyService) checkParent(ctx context.Context, selfID, parentID int64) error {
	if parentID == 0 {
		return nil
	}
	if parentID == selfID {
		return apperror.Validation("category cannot be its own parent", apperror.FieldError{
			Field: "parent_id", Message: "parent_id cannot reference the category itself", Value: parentID,
		})
	}

	seen := map[int64]bool{}
	for id := parentID; id != 0 && !seen[id]; {
		seen[id] = true
		c, err := s.repos.Category.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			if id == parentID {
				return apperror.NotFound("parent category %d not found", parentID)
			}
			return nil
		}
		if c.ParentID == selfID && selfID != 0 {
			return apperror.Validation("category cannot move under its own descendant", apperror.FieldError{
				Field: "parent_id", Message: "parent_id cannot reference a descendant", Value: parentID,
			})
		}
		id = c.ParentID
	}
	return nil
}

func (s *taxonomyService) validateTag(in *models.TagInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Description = strings.TrimSpace(in.Description)
	if fields := s.validate.Struct(in); len(fields) > 0 {
		return validationErr(fields)
	}
	return nil
}

func (s *taxonomyService) validateCategory(in *models.CategoryInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Description = strings.TrimSpace(in.Description)
	if fields := s.validate.Struct(in); len(fields) > 0 {
		return validationErr(fields)
	}
	return nil
}

func statusOr(status *int, def int) int {
	if status == nil {
		return def
	}
	return *status
}
