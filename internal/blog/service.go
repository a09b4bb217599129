package blog

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/blog-forge/internal/apperror"
	"github.com/yourusername/blog-forge/internal/models"
	"github.com/yourusername/blog-forge/internal/store"
)

// PostRepository は投稿の保存先です。store.PostStore が実装します。
type PostRepository interface {
	Create(ctx context.Context, p *models.Post) error
	FindActive(ctx context.Context, id string) (*models.Post, error)
	ListActive(ctx context.Context) ([]models.Post, error)
	ListActiveByUser(ctx context.Context, userID string) ([]models.Post, error)
	UpdateContent(ctx context.Context, p *models.Post) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
}

type CreateInput struct {
	Title    string
	Content  string
	Synopsis string
	Image    string
}

// UpdateInput は nil の項目を変更しません。
type UpdateInput struct {
	Title    *string
	Content  *string
	Synopsis *string
	Image    *string
}

// Service は投稿に関するユースケースをまとめたものです。
type Service struct {
	posts  PostRepository
	policy *OwnershipPolicy
	now    func() time.Time
}

type Option func(*Service)

// WithClock は作成日時・更新日時に使う時計を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(posts PostRepository, policy *OwnershipPolicy, opts ...Option) *Service {
	if policy == nil {
		policy = NewOwnershipPolicy()
	}
	s := &Service{
		posts:  posts,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var errNoIdentity = apperror.Unauthenticated("UNAUTHORIZED", "ログインが必要です")

// Create は userID を投稿者として投稿を作成します。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*models.Post, error) {
	if userID == "" {
		return nil, errNoIdentity
	}
	now := s.now()
	p := &models.Post{
		Title:       in.Title,
		Content:     in.Content,
		Synopsis:    in.Synopsis,
		Image:       in.Image,
		UserID:      userID,
		DateCreated: now,
		LastUpdated: now,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, apperror.Unexpected("", err)
	}
	return s.reload(ctx, p)
}

// List は削除されていない投稿を新しい順に返します。
func (s *Service) List(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.ListActive(ctx)
	if err != nil {
		return nil, apperror.Unexpected("", err)
	}
	return posts, nil
}

// ListMine は userID の削除されていない投稿を新しい順に返します。
func (s *Service) ListMine(ctx context.Context, userID string) ([]models.Post, error) {
	if userID == "" {
		return nil, errNoIdentity
	}
	posts, err := s.posts.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Unexpected("", err)
	}
	return posts, nil
}

// Get は投稿を返します。存在しないか削除済みなら NotFound です。
func (s *Service) Get(ctx context.Context, id string) (*models.Post, error) {
	p, err := s.posts.FindActive(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound("POST_NOT_FOUND", "投稿が見つかりません")
		}
		return nil, apperror.Unexpected("", err)
	}
	return p, nil
}

// Update は投稿者本人であれば指定された項目を書き換え、最終更新日時を進めます。
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*models.Post, error) {
	p, err := s.authorized(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Synopsis != nil {
		p.Synopsis = *in.Synopsis
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
	p.LastUpdated = s.now()

	if err := s.posts.UpdateContent(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, s.policy.Authorize(nil, userID)
		}
		return nil, apperror.Unexpected("", err)
	}
	return p, nil
}

// Delete は投稿者本人であれば投稿を論理削除します。
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.authorized(ctx, userID, id); err != nil {
		return err
	}
	if err := s.posts.SoftDelete(ctx, id, s.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s.policy.Authorize(nil, userID)
		}
		return apperror.Unexpected("", err)
	}
	return nil
}

// authorized は変更対象の投稿を読み込み、所有者であることを確認します。
func (s *Service) authorized(ctx context.Context, userID, id string) (*models.Post, error) {
	if userID == "" {
		return nil, errNoIdentity
	}
	p, err := s.posts.FindActive(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, apperror.Unexpected("", err)
	}
	if err := s.policy.Authorize(p, userID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) reload(ctx context.Context, p *models.Post) (*models.Post, error) {
	loaded, err := s.posts.FindActive(ctx, p.ID)
	if err != nil {
		return nil, apperror.Unexpected("", err)
	}
	return loaded, nil
}
