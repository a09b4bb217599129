// Package apperror はサービス層のエラー分類と、それを HTTP レスポンスへ変換する処理を提供します。
package apperror

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/blog-forge/internal/logutil"
)

// Kind はエラーの種別を表します。
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidationFailed
	KindConflict
	KindNotFound
	KindInvalidCredentials
	KindUnauthenticated
	KindForbidden
	KindTooManyAttempts
)

// Error は呼び出し側へ返すコードとメッセージを保持します。
// Err には内部原因を保持し、ログにのみ出力します。
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error

	// RetryAfter は KindTooManyAttempts のときだけ使います。
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status は種別に対応する HTTP ステータスを返します。
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidationFailed, KindInvalidCredentials:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyAttempts:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidationFailed, Code: "INVALID_INPUT", Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func InvalidCredentials(message string) *Error {
	return &Error{Kind: KindInvalidCredentials, Code: "INVALID_CREDENTIALS", Message: message}
}

func Unauthenticated(code, message string) *Error {
	return &Error{Kind: KindUnauthenticated, Code: code, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: "FORBIDDEN", Message: message}
}

func TooManyAttempts(retryAfter time.Duration) *Error {
	return &Error{
		Kind:       KindTooManyAttempts,
		Code:       "TOO_MANY_ATTEMPTS",
		Message:    "一定時間後に再度お試しください",
		RetryAfter: retryAfter,
	}
}

// Unexpected はストレージ等の失敗を包みます。メッセージは固定で、原因は外に出しません。
func Unexpected(message string, err error) *Error {
	if message == "" {
		message = "サーバー内部でエラーが発生しました"
	}
	return &Error{Kind: KindUnexpected, Code: "INTERNAL_ERROR", Message: message, Err: err}
}

// KindOf は err に含まれる *Error の種別を返します。*Error でなければ KindUnexpected です。
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// Is は err が指定した種別かどうかを返します。
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Respond はエラーを {"code","message"} 形式の JSON として書き込み、後続のハンドラーを中断します。
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Unexpected("", err)
	}

	if appErr.Kind == KindUnexpected {
		log := logutil.GetOrDefault(c.Request.Context())
		log.Error().Err(appErr.Err).Str("code", appErr.Code).Msg("Unexpected failure")
	}
	if appErr.Kind == KindTooManyAttempts && appErr.RetryAfter > 0 {
		// Retry-After は秒数で返す
		c.Header("Retry-After", strconv.FormatInt(int64(appErr.RetryAfter.Seconds()), 10))
	}

	c.AbortWithStatusJSON(appErr.Status(), gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}
