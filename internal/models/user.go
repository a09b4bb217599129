// Package models はデータベースに保存するユーザーと投稿のモデルを定義します。
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User は登録済みのアカウントです。物理削除はしません。
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FirstName    string    `gorm:"not null" json:"firstName"`
	LastName     string    `gorm:"not null" json:"lastName"`
	EmailAddress string    `gorm:"uniqueIndex;not null" json:"emailAddress"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser はレスポンスとトークンに含めてよい項目だけを持ちます。
type PublicUser struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
	Username     string `json:"username"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Public はパスワードハッシュを除いた射影を返します。
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		EmailAddress: u.EmailAddress,
		Username:     u.Username,
	}
}
