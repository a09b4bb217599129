// Package blog はブログ投稿の作成・参照・更新・論理削除と、投稿者だけが変更できるという認可規則を提供します。
package blog

import (
	"github.com/yourusername/blog-forge/internal/apperror"
	"github.com/yourusername/blog-forge/internal/models"
)

// Ownable は所有者を持つリソースです。models.Post が実装します。
type Ownable interface {
	OwnerID() string
}

// OwnershipPolicy はリソースを作成したユーザーだけに変更を許可します。
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Owns は userID がリソースの所有者かどうかを返します。
func (p *OwnershipPolicy) Owns(resource Ownable, userID string) bool {
	if resource == nil || userID == "" {
		return false
	}
	return resource.OwnerID() == userID
}

// Authorize は actingUserID が投稿を変更してよいかを判定します。
// 投稿が存在しない（削除済みを含む）場合も、所有者でない場合と同じく Forbidden を返します。
func (p *OwnershipPolicy) Authorize(post *models.Post, actingUserID string) error {
	if post == nil || !p.Owns(post, actingUserID) {
		return apperror.Forbidden("この投稿を変更する権限がありません")
	}
	return nil
}
