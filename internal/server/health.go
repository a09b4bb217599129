package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/blog-forge/internal/logutil"
	"github.com/yourusername/blog-forge/internal/store"
)

const (
	serviceName    = "blog-forge-api"
	serviceVersion = "0.1.0"
	healthTimeout  = 3 * time.Second
)

// healthHandler はヘルスチェックエンドポイントのハンドラーです。
// データベースに到達できない場合は 503 を返します。
func healthHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		users, posts, err := probe(ctx, st)
		if err != nil {
			log := logutil.GetOrDefault(ctx)
			log.Error().Err(err).Msg("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "error",
				"service":  serviceName,
				"version":  serviceVersion,
				"database": "disconnected",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  serviceName,
			"version":  serviceVersion,
			"database": "connected",
			"dialect":  st.Dialect(),
			"counts": gin.H{
				"users": users,
				"posts": posts,
			},
		})
	}
}

func probe(ctx context.Context, st *store.Store) (int64, int64, error) {
	if err := st.Ping(ctx); err != nil {
		return 0, 0, err
	}
	users, err := st.Users.Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	posts, err := st.Posts.CountActive(ctx)
	if err != nil {
		return 0, 0, err
	}
	return users, posts, nil
}
