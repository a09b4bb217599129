// Package server は gin のルーターを組み立て、各ハンドラーとミドルウェアを配線します。
package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yourusername/blog-forge/internal/auth"
	"github.com/yourusername/blog-forge/internal/blog"
	"github.com/yourusername/blog-forge/internal/config"
	"github.com/yourusername/blog-forge/internal/logutil"
	"github.com/yourusername/blog-forge/internal/password"
	"github.com/yourusername/blog-forge/internal/store"
	"github.com/yourusername/blog-forge/internal/token"
	"github.com/yourusername/blog-forge/internal/validation"
)

// Deps はルーターが必要とする依存関係です。
type Deps struct {
	Config *config.Config
	Store  *store.Store
	Issuer *token.Issuer
	Hasher *password.Hasher
	Logger zerolog.Logger

	// Attempts が nil の場合、ログイン試行制限は無効です。
	Attempts auth.AttemptStore
}

// New はすべてのルートを登録した gin.Engine を返します。
func New(d Deps) *gin.Engine {
	gin.SetMode(d.Config.GinMode)
	validation.Setup()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logutil.Middleware(d.Logger))

	// CORSミドルウェアの設定（許可オリジンが空なら登録しない）
	if origins := splitOrigins(d.Config.CORSAllowedOrigins); len(origins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
		}
		corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
		router.Use(cors.New(corsConfig))
	}

	setupRoutes(router, d)
	return router
}

// setupRoutes は API グループと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, d Deps) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", healthHandler(d.Store))

	authService := auth.NewService(d.Store.Users, d.Hasher, d.Issuer)
	authOpts := []auth.HandlerOption{
		auth.WithCookie(auth.CookieOptions{
			Secure: d.Config.Secure(),
			TTL:    d.Config.TokenTTL,
		}),
	}
	if d.Attempts != nil {
		authOpts = append(authOpts, auth.WithLockout(auth.Limits{
			MaxAttempts: d.Config.MaxLoginAttempts,
			Window:      d.Config.LoginWindow,
			LockFor:     d.Config.LoginLockout,
		}, d.Attempts))
	}
	authHandler := auth.NewHandler(authService, authOpts...)

	blogService := blog.NewService(d.Store.Posts, blog.NewOwnershipPolicy())
	blogHandler := blog.NewHandler(blogService)

	requireToken := auth.RequireToken(d.Issuer)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			// 登録とログインはトークン不要
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.PATCH("/update", requireToken, authHandler.UpdateProfile)
			authRoutes.POST("/change-password", requireToken, authHandler.ChangePassword)
		}

		blogRoutes := api.Group("/blogs")
		{
			blogRoutes.GET("", blogHandler.List)
			blogRoutes.GET("/me", requireToken, blogHandler.ListMine)
			blogRoutes.GET("/:id", blogHandler.Get)
			blogRoutes.POST("", requireToken, blogHandler.Create)
			blogRoutes.POST("/create", requireToken, blogHandler.Create)
			blogRoutes.PATCH("/:id", requireToken, blogHandler.Update)
			blogRoutes.DELETE("/:id", requireToken, blogHandler.Delete)
		}
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
