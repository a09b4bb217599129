package auth

import (
	"context"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/blog-forge/internal/apperror"
	"github.com/yourusername/blog-forge/internal/logutil"
	"github.com/yourusername/blog-forge/internal/token"
)

// ContextClaimsKey は、ハンドラー間で検証済みクレームを共有するためのキーです。
const ContextClaimsKey = "auth.claims"

type identityKey struct{}

var bearerTokenRE = regexp.MustCompile(`^Bearer ([^\s]+)$`)

// Verifier はトークンを検証してクレームを返します。
type Verifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// WithIdentity は検証済みのクレームをコンテキストに載せます。
func WithIdentity(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, identityKey{}, claims)
}

// IdentityFrom はコンテキストからクレームを取り出します。
func IdentityFrom(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(identityKey{}).(*token.Claims)
	return claims, ok && claims != nil
}

// UserID は認可ゲートを通過したリクエストの利用者 ID を返します。未認証なら空文字です。
func UserID(c *gin.Context) string {
	if claims, ok := IdentityFrom(c.Request.Context()); ok {
		return claims.UserID
	}
	return ""
}

// RequireToken は Authorization: Bearer ヘッダーのトークンを検証するミドルウェアを返します。
// 失敗した場合は 401 を返し、後続のハンドラーは呼び出しません。
func RequireToken(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		groups := bearerTokenRE.FindStringSubmatch(c.GetHeader("Authorization"))
		if len(groups) == 0 {
			apperror.Respond(c, apperror.Unauthenticated("UNAUTHORIZED", "トークンがありません"))
			return
		}

		claims, err := v.Verify(groups[1])
		if err != nil {
			log := logutil.GetOrDefault(c.Request.Context())
			log.Debug().Err(err).Msg("Rejected bearer token")
			apperror.Respond(c, apperror.Unauthenticated("INVALID_TOKEN", "トークンが無効か期限切れです"))
			return
		}

		ctx := WithIdentity(c.Request.Context(), claims)
		log := logutil.GetOrDefault(ctx).With().Str("user.id", claims.UserID).Logger()
		c.Request = c.Request.WithContext(logutil.WithLogger(ctx, log))
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}
