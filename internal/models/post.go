package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post はブログ記事です。削除は IsDeleted を立てるだけで、行は残ります。
type Post struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Synopsis    string    `gorm:"not null" json:"synopsis"`
	Image       string    `gorm:"not null" json:"image"`
	DateCreated time.Time `gorm:"index" json:"dateCreated"`
	LastUpdated time.Time `json:"lastUpdated"`
	UserID      string    `gorm:"type:varchar(36);index;not null" json:"userId"`
	IsDeleted   bool      `gorm:"not null;default:false" json:"isDeleted"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
}

// postJSON は投稿者をパスワードハッシュ抜きで埋め込むための表現です。
type postJSON struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	Synopsis    string      `json:"synopsis"`
	Image       string      `json:"image"`
	DateCreated time.Time   `json:"dateCreated"`
	LastUpdated time.Time   `json:"lastUpdated"`
	UserID      string      `json:"userId"`
	IsDeleted   bool        `json:"isDeleted"`
	User        *PublicUser `json:"user,omitempty"`
}

func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// OwnerID は記事を作成したユーザーの ID です。
func (p *Post) OwnerID() string { return p.UserID }

// MarshalJSON は投稿者が読み込まれていれば公開項目だけを user として埋め込みます。
func (p Post) MarshalJSON() ([]byte, error) {
	v := postJSON{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		Synopsis:    p.Synopsis,
		Image:       p.Image,
		DateCreated: p.DateCreated,
		LastUpdated: p.LastUpdated,
		UserID:      p.UserID,
		IsDeleted:   p.IsDeleted,
	}
	if p.User.ID != "" {
		pub := p.User.Public()
		v.User = &pub
	}
	return json.Marshal(v)
}
