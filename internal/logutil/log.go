// Package logutil は zerolog のロガーをコンテキスト経由で受け渡すための補助関数を提供します。
package logutil

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type (
	key byte
)

var (
	loggerKey = key(1)
)

// New はレベル文字列とGinモードからロガーを生成します。
// debug モードでは人間向けのコンソール出力、それ以外は JSON を出力します。
func New(level, mode string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if mode == gin.DebugMode {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func GetOrDefault(ctx context.Context) zerolog.Logger {
	v := ctx.Value(loggerKey)
	if v == nil {
		return log.Logger
	}
	return v.(zerolog.Logger)
}

// Middleware はリクエストごとのロガーをコンテキストに載せ、完了時にアクセスログを出力します。
func Middleware(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLog := base.With().
			Str("http.method", c.Request.Method).
			Str("http.path", c.Request.URL.Path).
			Str("http.client_ip", c.ClientIP()).
			Logger()
		c.Request = c.Request.WithContext(WithLogger(c.Request.Context(), reqLog))

		c.Next()

		status := c.Writer.Status()
		var evt *zerolog.Event
		switch {
		case status >= 500:
			evt = reqLog.Error()
		case status >= 400:
			evt = reqLog.Warn()
		default:
			evt = reqLog.Info()
		}
		evt.Int("http.status", status).
			Dur("latency", time.Since(start)).
			Msg("Request handled")
	}
}
