package client

import (
	"context"
	"net/http"
	"sync"
)

// Session は 1 回のログインで得たトークンを保持します。
// プロフィール更新で再発行されたトークンに置き換わります。
type Session struct {
	client *Client

	mu    sync.RWMutex
	token string
	user  User
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) do(ctx context.Context, method, path string, in, out any) error {
	return s.client.do(ctx, method, path, s.Token(), in, out)
}

// UpdateProfile はプロフィールを更新し、セッションのトークンとユーザー情報を差し替えます。
func (s *Session) UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error) {
	var res authResponse
	if err := s.do(ctx, http.MethodPatch, "/api/auth/update", update, &res); err != nil {
		return User{}, err
	}
	s.mu.Lock()
	s.token = res.Token
	s.user = res.User
	s.mu.Unlock()
	return res.User, nil
}

func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return s.do(ctx, http.MethodPost, "/api/auth/change-password", body, nil)
}

func (s *Session) CreatePost(ctx context.Context, in PostInput) (*Post, error) {
	var p Post
	if err := s.do(ctx, http.MethodPost, "/api/blogs", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Session) MyPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := s.do(ctx, http.MethodGet, "/api/blogs/me", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Session) UpdatePost(ctx context.Context, id string, update PostUpdate) (*Post, error) {
	var p Post
	if err := s.do(ctx, http.MethodPatch, "/api/blogs/"+id, update, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Session) DeletePost(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/api/blogs/"+id, nil, nil)
}
