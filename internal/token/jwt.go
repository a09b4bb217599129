// Package token は HS256 で署名したセッショントークンの発行と検証を提供します。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingSecret は署名鍵が空のまま Issuer を作ろうとした場合に返されます。
	ErrMissingSecret = errors.New("token: signing secret is empty")
	// ErrInvalidToken は署名不一致・形式不正などで検証に失敗した場合に返されます。
	ErrInvalidToken = errors.New("token: invalid token")
	// ErrTokenExpired は有効期限切れの場合に返されます。errors.Is(err, ErrInvalidToken) も真になります。
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// Claims はトークンに埋め込むユーザー情報です。発行時点のプロフィールを複製して持ちます。
type Claims struct {
	jwt.RegisteredClaims
	UserID       string `json:"userId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmailAddress string `json:"emailAddress"`
	Username     string `json:"username"`
}

// Issuer はプロセス全体で共有する署名鍵を保持します。
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer は Issuer を作成します。ttl が 0 の場合は exp を付けません。
func NewIssuer(secret []byte, ttl time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}, nil
}

// TTL は発行するトークンの有効期間です。
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue はクレームに署名してトークン文字列を返します。
func (i *Issuer) Issue(claims Claims) (string, error) {
	if claims.UserID == "" {
		return "", fmt.Errorf("token: user id is required")
	}
	now := i.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	} else {
		claims.ExpiresAt = nil
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// Verify はトークンを検証し、埋め込まれたクレームを返します。
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
