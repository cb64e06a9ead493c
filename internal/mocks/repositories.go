package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/repository"
)

type likeKey struct {
	UserID     int64
	TargetID   int64
	TargetType models.LikeTarget
}

// Store is an in-memory content store shared by the mock repositories.
// Reads return copies so callers cannot mutate stored rows without an Update.
type Store struct {
	mu sync.Mutex

	Articles    map[int64]*models.Article
	ArticleTags map[int64][]int64
	Comments    map[int64]*models.Comment
	Tags        map[int64]*models.Tag
	Categories  map[int64]*models.Category
	Likes       map[likeKey]*models.Like

	// Err, when set, is returned by every repository call
	Err error

	nextID int64
}

func NewStore() *Store {
	return &Store{
		Articles:    make(map[int64]*models.Article),
		ArticleTags: make(map[int64][]int64),
		Comments:    make(map[int64]*models.Comment),
		Tags:        make(map[int64]*models.Tag),
		Categories:  make(map[int64]*models.Category),
		Likes:       make(map[likeKey]*models.Like),
	}
}

// Repositories returns the repository set backed by this store
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		Article:    &MockArticleRepository{s: s},
		ArticleTag: &MockArticleTagRepository{s: s},
		Comment:    &MockCommentRepository{s: s},
		Tag:        &MockTagRepository{s: s},
		Category:   &MockCategoryRepository{s: s},
		Like:       &MockLikeRepository{s: s},
		Counter:    &MockCounterRepository{s: s},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// LikeCount returns the number of stored likes on a target
func (s *Store) LikeCount(targetID int64, target models.LikeTarget) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.Likes {
		if k.TargetID == targetID && k.TargetType == target {
			n++
		}
	}
	return n
}

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct {
	s *Store
}

var _ repository.ArticleRepository = (*MockArticleRepository)(nil)

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	for _, a := range m.s.Articles {
		if !a.Deleted && a.Slug == article.Slug {
			return fmt.Errorf("duplicate slug %q", article.Slug)
		}
	}
	article.ID = m.s.id()
	stored := *article
	stored.Tags = nil
	m.s.Articles[article.ID] = &stored
	return nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	stored, ok := m.s.Articles[article.ID]
	if !ok || stored.Deleted {
		return nil
	}
	updated := *article
	updated.Tags = nil
	updated.ViewCount = stored.ViewCount
	updated.LikeCount = stored.LikeCount
	updated.CommentCount = stored.CommentCount
	updated.CreatedAt = stored.CreatedAt
	updated.AuthorID = stored.AuthorID
	m.s.Articles[article.ID] = &updated
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	a, ok := m.s.Articles[id]
	if !ok || a.Deleted {
		return nil, nil
	}
	return copyArticle(a), nil
}

func (m *MockArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	for _, a := range m.s.Articles {
		if !a.Deleted && a.Slug == slug {
			return copyArticle(a), nil
		}
	}
	return nil, nil
}

func (m *MockArticleRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return false, m.s.Err
	}
	for _, a := range m.s.Articles {
		if !a.Deleted && a.Slug == slug && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockArticleRepository) SoftDelete(ctx context.Context, id int64, now time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if a, ok := m.s.Articles[id]; ok {
		a.Deleted = true
		a.UpdatedAt = now
	}
	return nil
}

func (m *MockArticleRepository) List(ctx context.Context, filter repository.ArticleFilter) ([]*models.Article, int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, 0, m.s.Err
	}

	var matched []*models.Article
	for _, a := range m.s.Articles {
		if m.matches(a, filter) {
			matched = append(matched, a)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.IsTop != b.IsTop {
			return a.IsTop
		}
		if less, decided := compareBySort(a, b, filter); decided {
			return less
		}
		if filter.Desc {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})

	total := len(matched)
	items := []*models.Article{}
	for i := filter.Offset; i < total && (filter.Limit <= 0 || i < filter.Offset+filter.Limit); i++ {
		items = append(items, copyArticle(matched[i]))
	}
	return items, total, nil
}

func (m *MockArticleRepository) matches(a *models.Article, f repository.ArticleFilter) bool {
	if a.Deleted {
		return false
	}
	if f.CategoryID != nil && (a.CategoryID == nil || *a.CategoryID != *f.CategoryID) {
		return false
	}
	if f.TagID != nil && !containsID(m.s.ArticleTags[a.ID], *f.TagID) {
		return false
	}
	if f.AuthorID != nil && a.AuthorID != *f.AuthorID {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, st := range f.Statuses {
			if a.Status == st {
				ok = true
			}
		}
		if !ok {
			return false
		}
	}
	if f.IsTop != nil && a.IsTop != *f.IsTop {
		return false
	}
	if f.IsRecommend != nil && a.IsRecommend != *f.IsRecommend {
		return false
	}
	if kw := strings.ToLower(strings.TrimSpace(f.Keyword)); kw != "" {
		text := strings.ToLower(a.Title + "\n" + a.Summary + "\n" + a.Content)
		if !strings.Contains(text, kw) {
			return false
		}
	}
	return true
}

func compareBySort(a, b *models.Article, f repository.ArticleFilter) (less bool, decided bool) {
	var x, y int64
	switch f.SortBy {
	case models.SortViewCount:
		x, y = int64(a.ViewCount), int64(b.ViewCount)
	case models.SortLikeCount:
		x, y = int64(a.LikeCount), int64(b.LikeCount)
	default:
		if (a.PublishedAt == nil) != (b.PublishedAt == nil) {
			return a.PublishedAt != nil, true
		}
		if a.PublishedAt == nil {
			return false, false
		}
		x, y = a.PublishedAt.UnixNano(), b.PublishedAt.UnixNano()
	}
	if x == y {
		return false, false
	}
	if f.Desc {
		return x > y, true
	}
	return x < y, true
}

func (m *MockArticleRepository) StreamAll(ctx context.Context, batchSize int, callback func([]*models.Article) error) error {
	m.s.mu.Lock()
	if m.s.Err != nil {
		m.s.mu.Unlock()
		return m.s.Err
	}
	var articles []*models.Article
	for _, a := range m.s.Articles {
		if !a.Deleted {
			articles = append(articles, copyArticle(a))
		}
	}
	m.s.mu.Unlock()

	if batchSize <= 0 {
		batchSize = 100
	}
	sort.Slice(articles, func(i, j int) bool { return articles[i].ID < articles[j].ID })
	for start := 0; start < len(articles); start += batchSize {
		end := start + batchSize
		if end > len(articles) {
			end = len(articles)
		}
		if err := callback(articles[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func copyArticle(a *models.Article) *models.Article {
	c := *a
	c.HasPassword = c.Password != ""
	return &c
}

// MockArticleTagRepository is a mock implementation of ArticleTagRepository
type MockArticleTagRepository struct {
	s *Store
}

var _ repository.ArticleTagRepository = (*MockArticleTagRepository)(nil)

func (m *MockArticleTagRepository) Add(ctx context.Context, articleID int64, tagIDs []int64, now time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	for _, id := range tagIDs {
		if containsID(m.s.ArticleTags[articleID], id) {
			return fmt.Errorf("duplicate link %d/%d", articleID, id)
		}
		m.s.ArticleTags[articleID] = append(m.s.ArticleTags[articleID], id)
	}
	return nil
}

func (m *MockArticleTagRepository) RemoveAll(ctx context.Context, articleID int64) ([]int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	removed := m.s.ArticleTags[articleID]
	delete(m.s.ArticleTags, articleID)
	return removed, nil
}

func (m *MockArticleTagRepository) TagIDs(ctx context.Context, articleID int64) ([]int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	return append([]int64(nil), m.s.ArticleTags[articleID]...), nil
}

func (m *MockArticleTagRepository) TagIDsByArticles(ctx context.Context, articleIDs []int64) (map[int64][]int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	result := make(map[int64][]int64, len(articleIDs))
	for _, id := range articleIDs {
		if ids := m.s.ArticleTags[id]; len(ids) > 0 {
			result[id] = append([]int64(nil), ids...)
		}
	}
	return result, nil
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	s *Store
}

var _ repository.CommentRepository = (*MockCommentRepository)(nil)

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	comment.ID = m.s.id()
	stored := *comment
	stored.Replies = nil
	m.s.Comments[comment.ID] = &stored
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	c, ok := m.s.Comments[id]
	if !ok || c.Deleted {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *MockCommentRepository) UpdateStatus(ctx context.Context, id int64, status models.CommentStatus, reason string, now time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if c, ok := m.s.Comments[id]; ok && !c.Deleted {
		c.Status = status
		c.AuditReason = reason
		c.UpdatedAt = now
	}
	return nil
}

func (m *MockCommentRepository) SoftDelete(ctx context.Context, id int64, now time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if c, ok := m.s.Comments[id]; ok {
		c.Deleted = true
		c.UpdatedAt = now
	}
	return nil
}

func (m *MockCommentRepository) HasApprovedReplies(ctx context.Context, id int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return false, m.s.Err
	}
	for _, c := range m.s.Comments {
		if c.Deleted || c.Status != models.CommentApproved {
			continue
		}
		if c.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCommentRepository) ListTopLevel(ctx context.Context, articleID int64, desc bool, limit, offset int) ([]*models.Comment, int, error) {
	status := models.CommentApproved
	return m.list(articleID, &status, true, desc, limit, offset)
}

func (m *MockCommentRepository) ListReplies(ctx context.Context, parentIDs []int64) ([]*models.Comment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	replies := []*models.Comment{}
	for _, c := range m.s.Comments {
		if !c.Deleted && c.Status == models.CommentApproved && c.ParentID != 0 && containsID(parentIDs, c.ParentID) {
			cp := *c
			replies = append(replies, &cp)
		}
	}
	sortComments(replies, false)
	return replies, nil
}

func (m *MockCommentRepository) List(ctx context.Context, filter repository.CommentFilter) ([]*models.Comment, int, error) {
	var articleID int64
	if filter.ArticleID != nil {
		articleID = *filter.ArticleID
	}
	return m.list(articleID, filter.Status, false, filter.Desc, filter.Limit, filter.Offset)
}

func (m *MockCommentRepository) list(articleID int64, status *models.CommentStatus, topOnly, desc bool, limit, offset int) ([]*models.Comment, int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, 0, m.s.Err
	}

	var matched []*models.Comment
	for _, c := range m.s.Comments {
		if c.Deleted || (articleID != 0 && c.ArticleID != articleID) {
			continue
		}
		if status != nil && c.Status != *status {
			continue
		}
		if topOnly && c.ParentID != 0 {
			continue
		}
		cp := *c
		matched = append(matched, &cp)
	}
	sortComments(matched, desc)

	total := len(matched)
	items := []*models.Comment{}
	for i := offset; i < total && (limit <= 0 || i < offset+limit); i++ {
		items = append(items, matched[i])
	}
	return items, total, nil
}

func sortComments(comments []*models.Comment, desc bool) {
	sort.Slice(comments, func(i, j int) bool {
		a, b := comments[i], comments[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if desc {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if desc {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})
}

// MockTagRepository is a mock implementation of TagRepository
type MockTagRepository struct {
	s *Store
}

var _ repository.TagRepository = (*MockTagRepository)(nil)

func (m *MockTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	tag.ID = m.s.id()
	stored := *tag
	m.s.Tags[tag.ID] = &stored
	return nil
}

func (m *MockTagRepository) Update(ctx context.Context, tag *models.Tag) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if stored, ok := m.s.Tags[tag.ID]; ok {
		stored.Name = tag.Name
		stored.Slug = tag.Slug
		stored.Description = tag.Description
		stored.Status = tag.Status
		stored.UpdatedAt = tag.UpdatedAt
	}
	return nil
}

func (m *MockTagRepository) Delete(ctx context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	delete(m.s.Tags, id)
	return nil
}

func (m *MockTagRepository) GetByID(ctx context.Context, id int64) (*models.Tag, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	t, ok := m.s.Tags[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *MockTagRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Tag, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	tags := []*models.Tag{}
	for _, t := range m.s.Tags {
		if containsID(ids, t.ID) {
			cp := *t
			tags = append(tags, &cp)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
	return tags, nil
}

func (m *MockTagRepository) List(ctx context.Context, enabledOnly bool) ([]*models.Tag, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	tags := []*models.Tag{}
	for _, t := range m.s.Tags {
		if !enabledOnly || t.Enabled() {
			cp := *t
			tags = append(tags, &cp)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
	return tags, nil
}

func (m *MockTagRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, t := range m.s.Tags {
		if t.Name == name && t.ID != excludeID {
			return true, m.s.Err
		}
	}
	return false, m.s.Err
}

func (m *MockTagRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, t := range m.s.Tags {
		if t.Slug == slug && t.ID != excludeID {
			return true, m.s.Err
		}
	}
	return false, m.s.Err
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	s *Store
}

var _ repository.CategoryRepository = (*MockCategoryRepository)(nil)

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	category.ID = m.s.id()
	stored := *category
	stored.Children = nil
	m.s.Categories[category.ID] = &stored
	return nil
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	if stored, ok := m.s.Categories[category.ID]; ok {
		stored.Name = category.Name
		stored.Slug = category.Slug
		stored.Description = category.Description
		stored.ParentID = category.ParentID
		stored.SortOrder = category.SortOrder
		stored.Status = category.Status
		stored.UpdatedAt = category.UpdatedAt
	}
	return nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}
	delete(m.s.Categories, id)
	return nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	c, ok := m.s.Categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.Children = nil
	return &cp, nil
}

func (m *MockCategoryRepository) List(ctx context.Context, enabledOnly bool) ([]*models.Category, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return nil, m.s.Err
	}
	categories := []*models.Category{}
	for _, c := range m.s.Categories {
		if !enabledOnly || c.Enabled() {
			cp := *c
			cp.Children = nil
			categories = append(categories, &cp)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].ID < categories[j].ID
	})
	return categories, nil
}

func (m *MockCategoryRepository) HasChildren(ctx context.Context, id int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.Categories {
		if c.ParentID == id {
			return true, m.s.Err
		}
	}
	return false, m.s.Err
}

func (m *MockCategoryRepository) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.Categories {
		if c.Name == name && c.ID != excludeID {
			return true, m.s.Err
		}
	}
	return false, m.s.Err
}

func (m *MockCategoryRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.Categories {
		if c.Slug == slug && c.ID != excludeID {
			return true, m.s.Err
		}
	}
	return false, m.s.Err
}

// MockLikeRepository is a mock implementation of LikeRepository
type MockLikeRepository struct {
	s *Store
}

var _ repository.LikeRepository = (*MockLikeRepository)(nil)

func (m *MockLikeRepository) Create(ctx context.Context, like *models.Like) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return false, m.s.Err
	}
	key := likeKey{like.UserID, like.TargetID, like.TargetType}
	if _, dup := m.s.Likes[key]; dup {
		return false, nil
	}
	like.ID = m.s.id()
	stored := *like
	m.s.Likes[key] = &stored
	return true, nil
}

func (m *MockLikeRepository) Delete(ctx context.Context, userID, targetID int64, target models.LikeTarget) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return false, m.s.Err
	}
	key := likeKey{userID, targetID, target}
	if _, ok := m.s.Likes[key]; !ok {
		return false, nil
	}
	delete(m.s.Likes, key)
	return true, nil
}

func (m *MockLikeRepository) Exists(ctx context.Context, userID, targetID int64, target models.LikeTarget) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_, ok := m.s.Likes[likeKey{userID, targetID, target}]
	return ok, m.s.Err
}

// MockCounterRepository is a mock implementation of CounterRepository.
// Each adjustment is applied under the store lock.
type MockCounterRepository struct {
	s *Store
}

var _ repository.CounterRepository = (*MockCounterRepository)(nil)

func (m *MockCounterRepository) Adjust(ctx context.Context, entity repository.Entity, field string, id int64, delta int, now time.Time) error {
	if !repository.ValidCounter(entity, field) {
		return fmt.Errorf("unknown counter %s.%s", entity, field)
	}

	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.Err != nil {
		return m.s.Err
	}

	var target *int
	switch entity {
	case repository.EntityArticle:
		a, ok := m.s.Articles[id]
		if !ok {
			return nil
		}
		a.UpdatedAt = now
		switch field {
		case repository.FieldViewCount:
			target = &a.ViewCount
		case repository.FieldLikeCount:
			target = &a.LikeCount
		case repository.FieldCommentCount:
			target = &a.CommentCount
		}
	case repository.EntityComment:
		c, ok := m.s.Comments[id]
		if !ok {
			return nil
		}
		c.UpdatedAt = now
		target = &c.LikeCount
	case repository.EntityTag:
		t, ok := m.s.Tags[id]
		if !ok {
			return nil
		}
		t.UpdatedAt = now
		target = &t.ArticleCount
	case repository.EntityCategory:
		c, ok := m.s.Categories[id]
		if !ok {
			return nil
		}
		c.UpdatedAt = now
		target = &c.ArticleCount
	}

	*target += delta
	if *target < 0 {
		*target = 0
	}
	return nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
