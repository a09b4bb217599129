package blog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/blog-forge/internal/apperror"
	"github.com/yourusername/blog-forge/internal/auth"
	"github.com/yourusername/blog-forge/internal/validation"
)

// Handler は /api/blogs 配下のハンドラーです。
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	validation.Setup()
	return &Handler{svc: svc}
}

type createRequest struct {
	Title    string `json:"title" binding:"required,min=1"`
	Content  string `json:"content" binding:"required,min=1"`
	Synopsis string `json:"synopsis" binding:"required,min=1"`
	Image    string `json:"image" binding:"required,min=1"`
}

type updateRequest struct {
	Title    *string `json:"title" binding:"omitempty,min=1"`
	Content  *string `json:"content" binding:"omitempty,min=1"`
	Synopsis *string `json:"synopsis" binding:"omitempty,min=1"`
	Image    *string `json:"image" binding:"omitempty,min=1"`
}

// Create は投稿作成のハンドラーです。投稿者はトークンの利用者です。
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation(validation.Describe(err)))
		return
	}

	post, err := h.svc.Create(c.Request.Context(), auth.UserID(c), CreateInput{
		Title:    req.Title,
		Content:  req.Content,
		Synopsis: req.Synopsis,
		Image:    req.Image,
	})
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// List は全投稿一覧のハンドラーです。
func (h *Handler) List(c *gin.Context) {
	posts, err := h.svc.List(c.Request.Context())
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// ListMine は自分の投稿一覧のハンドラーです。
func (h *Handler) ListMine(c *gin.Context) {
	posts, err := h.svc.ListMine(c.Request.Context(), auth.UserID(c))
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Get は投稿 1 件のハンドラーです。
func (h *Handler) Get(c *gin.Context) {
	post, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Update は投稿更新のハンドラーです。
func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperror.Respond(c, apperror.Validation(validation.Describe(err)))
		return
	}

	post, err := h.svc.Update(c.Request.Context(), auth.UserID(c), c.Param("id"), UpdateInput{
		Title:    req.Title,
		Content:  req.Content,
		Synopsis: req.Synopsis,
		Image:    req.Image,
	})
	if err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Delete は投稿削除のハンドラーです。
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		apperror.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "投稿を削除しました"})
}
