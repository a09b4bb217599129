package auth

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/blog-forge/internal/apperror"
	"github.com/yourusername/blog-forge/internal/logutil"
	"github.com/yourusername/blog-forge/internal/validation"
)

// TokenCookieName はログイン時に発行するクッキーの名前です。
const TokenCookieName = "token"

// CookieOptions はトークンクッキーの属性です。
type CookieOptions struct {
	// Secure は本番（release モード）で true にします。
	Secure bool
	// TTL が 0 の場合はセッションクッキーになります。
	TTL time.Duration
}

// Handler は /api/auth 配下のハンドラーです。
type Handler struct {
	svc      *Service
	cookie   CookieOptions
	limits   Limits
	attempts AttemptStore
}

type HandlerOption func(*Handler)

// WithCookie はトークンクッキーの属性を設定します。
func WithCookie(opts CookieOptions) HandlerOption {
	return func(h *Handler) { h.cookie = opts }
}

// WithLockout はクライアント IP ごとのログイン試行制限を有効にします。
func WithLockout(limits Limits, attempts AttemptStore) HandlerOption {
	return func(h *Handler) {
		if limits.Enabled() && attempts != nil {
			h.limits = limits
			h.attempts = attempts
		}
	}
}

func NewHandler(svc *Service, opts ...HandlerOption) *Handler {
	validation.Setup()
	h := &Handler{svc: svc}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type registerRequest struct {
	FirstName    string `json:"firstName" binding:"required,min=1"`
	LastName     string `json:"lastName" binding:"required,min=1"`
	Username     string `json:"username" binding:"required,min=3,excludes=@"`
	EmailAddress string `json:"emailAddress" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	FirstName    *string `json:"firstName" binding:"omitempty,min=2,max=50"`
	LastName     *string `json:"lastName" binding:"omitempty,min=2,max=50"`
	EmailAddress *string `json:"emailAddress" binding:"omitempty,email"`
	Username     *string `json:"username" binding:"omitempty,min=3,max=30,excludes=@"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// Register は /auth/register のハンドラーです。
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation(validation.Describe(err)))
		return
	}

	err := h.svc.Register(c.Request.Context(), RegisterInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		EmailAddress: req.EmailAddress,
		Password:     req.Password,
	})
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "ユーザー登録が完了しました"})
}

// Login は /auth/login のハンドラーです。
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation(validation.Describe(err)))
		return
	}

	ctx := c.Request.Context()
	ip := c.ClientIP()
	if h.attempts != nil {
		retryAfter, err := h.attempts.LockedFor(ctx, ip)
		if err != nil {
			apperror.Respond(c, apperror.Unexpected("", err))
			return
		}
		if retryAfter > 0 {
			apperror.Respond(c, apperror.TooManyAttempts(retryAfter))
			return
		}
	}

	result, err := h.svc.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		if h.attempts != nil && (apperror.Is(err, apperror.KindInvalidCredentials) || apperror.Is(err, apperror.KindNotFound)) {
			remaining, recErr := h.attempts.RecordFailure(ctx, ip)
			if recErr != nil {
				log := logutil.GetOrDefault(ctx)
				log.Error().Err(recErr).Msg("Failed to record login failure")
			} else {
				c.Header("X-Remaining-Attempts", strconv.Itoa(remaining))
			}
		}
		apperror.Respond(c, err)
		return
	}

	if h.attempts != nil {
		if err := h.attempts.Reset(ctx, ip); err != nil {
			log := logutil.GetOrDefault(ctx)
			log.Warn().Err(err).Msg("Failed to reset login attempts")
		}
	}

	h.setTokenCookie(c, result.Token)
	c.JSON(http.StatusOK, gin.H{
		"message": "ログインしました",
		"user":    result.User,
		"token":   result.Token,
	})
}

// Logout は /auth/logout のハンドラーです。トークン自体は失効させず、クッキーだけを消します。
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(TokenCookieName, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "ログアウトしました"})
}

// UpdateProfile は /auth/update のハンドラーです。
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation(validation.Describe(err)))
		return
	}

	result, err := h.svc.UpdateProfile(c.Request.Context(), UserID(c), ProfileInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		EmailAddress: req.EmailAddress,
		Username:     req.Username,
	})
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	h.setTokenCookie(c, result.Token)
	c.JSON(http.StatusOK, gin.H{
		"message": "プロフィールを更新しました",
		"user":    result.User,
		"token":   result.Token,
	})
}

// ChangePassword は /auth/change-password のハンドラーです。
func (h *Handler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation(validation.Describe(err)))
		return
	}

	err := h.svc.ChangePassword(c.Request.Context(), UserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "パスワードを変更しました"})
}

func (h *Handler) setTokenCookie(c *gin.Context, tok string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(TokenCookieName, tok, int(h.cookie.TTL.Seconds()), "/", "", h.cookie.Secure, true)
}
