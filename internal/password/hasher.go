// Package password は bcrypt によるパスワードのハッシュ化と照合を提供します。
package password

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost は本番で使う bcrypt のコストです。
const DefaultCost = 10

// MaxInputBytes は bcrypt が参照する入力の長さです。これを超える部分は照合に使われません。
const MaxInputBytes = 72

// Hasher はソルト付きハッシュの生成と照合を行います。
type Hasher struct {
	cost int
}

// NewHasher は指定したコストの Hasher を返します。範囲外の値は DefaultCost になります。
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash は平文からダイジェストを生成します。
func (h *Hasher) Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(truncate(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify は平文がダイジェストと一致するかを返します。不正なダイジェストは不一致として扱います。
func (h *Hasher) Verify(plain, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), truncate(plain)) == nil
}

// truncate は入力を先頭 MaxInputBytes バイトに切り詰めます。
// Hash と Verify の両方で同じ規則を使うため、長い入力でも結果は決定的です。
func truncate(plain string) []byte {
	b := []byte(plain)
	if len(b) > MaxInputBytes {
		b = b[:MaxInputBytes]
	}
	return b
}
