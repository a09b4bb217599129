package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/blog-forge/internal/models"
)

// UserStore は認証情報を保存します。
type UserStore struct {
	db *gorm.DB
}

// Create はユーザーを追加します。ユーザー名またはメールアドレスが重複すると ErrDuplicate です。
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.first(ctx, "email_address = ?", email)
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.first(ctx, "username = ?", username)
}

// FindByIdentifier はユーザー名またはメールアドレスのどちらかで検索します。
func (s *UserStore) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return s.first(ctx, "username = ? OR email_address = ?", identifier, identifier)
}

func (s *UserStore) first(ctx context.Context, query string, args ...any) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where(query, args...).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// UpdateProfile はプロフィール項目（名前・メールアドレス・ユーザー名）を書き換えます。
func (s *UserStore) UpdateProfile(ctx context.Context, u *models.User) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", u.ID).Updates(map[string]any{
		"first_name":    u.FirstName,
		"last_name":     u.LastName,
		"email_address": u.EmailAddress,
		"username":      u.Username,
		"updated_at":    time.Now(),
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword はパスワードハッシュを上書きします。
func (s *UserStore) UpdatePassword(ctx context.Context, id, hash string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"password_hash": hash,
		"updated_at":    time.Now(),
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, translate(err)
}
