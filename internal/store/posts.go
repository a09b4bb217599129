package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/blog-forge/internal/models"
)

// PostStore は投稿を保存します。読み取り系は論理削除済みの行を返しません。
type PostStore struct {
	db *gorm.DB
}

func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	if err := s.db.WithContext(ctx).Omit("User").Create(p).Error; err != nil {
		return translate(err)
	}
	return nil
}

// FindActive は削除されていない投稿を投稿者付きで返します。
func (s *PostStore) FindActive(ctx context.Context, id string) (*models.Post, error) {
	var p models.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// ListActive は削除されていない投稿を新しい順に返します。
func (s *PostStore) ListActive(ctx context.Context) ([]models.Post, error) {
	return s.list(ctx, s.db.Where("is_deleted = ?", false))
}

// ListActiveByUser は指定したユーザーの削除されていない投稿を新しい順に返します。
func (s *PostStore) ListActiveByUser(ctx context.Context, userID string) ([]models.Post, error) {
	return s.list(ctx, s.db.Where("user_id = ? AND is_deleted = ?", userID, false))
}

func (s *PostStore) list(ctx context.Context, q *gorm.DB) ([]models.Post, error) {
	posts := []models.Post{}
	err := q.WithContext(ctx).
		Preload("User").
		Order("date_created DESC").
		Find(&posts).Error
	if err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

// UpdateContent は本文関連の項目と最終更新日時を書き換えます。
func (s *PostStore) UpdateContent(ctx context.Context, p *models.Post) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND is_deleted = ?", p.ID, false).
		Updates(map[string]any{
			"title":        p.Title,
			"content":      p.Content,
			"synopsis":     p.Synopsis,
			"image":        p.Image,
			"last_updated": p.LastUpdated,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete は削除フラグを立てます。すでに削除済みなら ErrNotFound です。
func (s *PostStore) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{
			"is_deleted":   true,
			"last_updated": at,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountActive は削除されていない投稿の件数です。
func (s *PostStore) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).Where("is_deleted = ?", false).Count(&n).Error
	return n, translate(err)
}
