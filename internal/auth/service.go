// Package auth は登録・ログイン・パスワード変更・プロフィール更新と、
// Bearer トークンによる認可ゲートを提供します。
package auth

import (
	"context"
	"errors"

	"github.com/yourusername/blog-forge/internal/apperror"
	"github.com/yourusername/blog-forge/internal/models"
	"github.com/yourusername/blog-forge/internal/store"
	"github.com/yourusername/blog-forge/internal/token"
)

// UserRepository は認証情報の保存先です。store.UserStore が実装します。
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	UpdateProfile(ctx context.Context, u *models.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
}

// PasswordHasher は password.Hasher が実装します。
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// TokenIssuer は token.Issuer が実装します。
type TokenIssuer interface {
	Issue(claims token.Claims) (string, error)
	Verify(tokenString string) (*token.Claims, error)
}

type RegisterInput struct {
	FirstName    string
	LastName     string
	Username     string
	EmailAddress string
	Password     string
}

// ProfileInput は nil の項目を変更しません。
type ProfileInput struct {
	FirstName    *string
	LastName     *string
	EmailAddress *string
	Username     *string
}

// LoginResult はログインとプロフィール更新の結果です。
type LoginResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// Service は認証に関するユースケースをまとめたものです。
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

var (
	errUsernameTaken = apperror.Conflict("USERNAME_TAKEN", "このユーザー名は既に使われています")
	errEmailTaken    = apperror.Conflict("EMAIL_TAKEN", "このメールアドレスは既に登録されています")
	errUserExists    = apperror.Conflict("USER_EXISTS", "ユーザーは既に存在します")
	errWrongLogin    = apperror.NotFound("USER_NOT_FOUND", "ログイン情報が正しくありません")
	errBadPassword   = apperror.InvalidCredentials("ログイン情報が正しくありません")
	errNoIdentity    = apperror.Unauthenticated("UNAUTHORIZED", "ログインが必要です")
	errUserMissing   = apperror.NotFound("USER_NOT_FOUND", "ユーザーが見つかりません")
)

// Register は新しいユーザーを作成します。ユーザー名とメールアドレスは一意です。
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	if err := s.ensureFree(ctx, "", &in.Username, &in.EmailAddress); err != nil {
		return err
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return apperror.Unexpected("", err)
	}
	u := &models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Username:     in.Username,
		EmailAddress: in.EmailAddress,
		PasswordHash: digest,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return errUserExists
		}
		return apperror.Unexpected("", err)
	}
	return nil
}

// Login はユーザー名またはメールアドレスとパスワードを照合し、トークンを発行します。
func (s *Service) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	u, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errWrongLogin
		}
		return nil, apperror.Unexpected("", err)
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, errBadPassword
	}
	return s.issue(u)
}

// ChangePassword は現在のパスワードを確認してから新しいパスワードに置き換えます。
// 発行済みのトークンはそのまま有効です。
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if userID == "" {
		return errNoIdentity
	}
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(current, u.PasswordHash) {
		return apperror.InvalidCredentials("現在のパスワードが正しくありません")
	}

	digest, err := s.hasher.Hash(next)
	if err != nil {
		return apperror.Unexpected("", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, digest); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errUserMissing
		}
		return apperror.Unexpected("", err)
	}
	return nil
}

// UpdateProfile は指定された項目だけを書き換え、新しいクレームでトークンを発行し直します。
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*LoginResult, error) {
	if userID == "" {
		return nil, errNoIdentity
	}
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var username, email *string
	if in.Username != nil && *in.Username != u.Username {
		username = in.Username
	}
	if in.EmailAddress != nil && *in.EmailAddress != u.EmailAddress {
		email = in.EmailAddress
	}
	if err := s.ensureFree(ctx, u.ID, username, email); err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if username != nil {
		u.Username = *username
	}
	if email != nil {
		u.EmailAddress = *email
	}

	if err := s.users.UpdateProfile(ctx, u); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, errUserExists
		case errors.Is(err, store.ErrNotFound):
			return nil, errUserMissing
		}
		return nil, apperror.Unexpected("", err)
	}
	return s.issue(u)
}

func (s *Service) findUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errUserMissing
		}
		return nil, apperror.Unexpected("", err)
	}
	return u, nil
}

// ensureFree は username と email が selfID 以外のユーザーに使われていないことを確認します。
// ログインはユーザー名とメールアドレスのどちらでも照合するため、
// 他人のメールアドレスと同じユーザー名（またはその逆）も使用済みとして扱います。
// nil の項目は確認しません。
func (s *Service) ensureFree(ctx context.Context, selfID string, username, email *string) error {
	if username != nil {
		taken, err := s.anyHeldByOther(ctx, selfID, *username, s.users.FindByUsername, s.users.FindByEmail)
		if err != nil {
			return err
		}
		if taken {
			return errUsernameTaken
		}
	}
	if email != nil {
		taken, err := s.anyHeldByOther(ctx, selfID, *email, s.users.FindByEmail, s.users.FindByUsername)
		if err != nil {
			return err
		}
		if taken {
			return errEmailTaken
		}
	}
	return nil
}

func (s *Service) anyHeldByOther(ctx context.Context, selfID, value string, finds ...func(context.Context, string) (*models.User, error)) (bool, error) {
	for _, find := range finds {
		taken, err := s.heldByOther(ctx, selfID, find, value)
		if err != nil || taken {
			return taken, err
		}
	}
	return false, nil
}

func (s *Service) heldByOther(ctx context.Context, selfID string, find func(context.Context, string) (*models.User, error), value string) (bool, error) {
	u, err := find(ctx, value)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, apperror.Unexpected("", err)
	}
	return u.ID != selfID, nil
}

func (s *Service) issue(u *models.User) (*LoginResult, error) {
	tok, err := s.tokens.Issue(ClaimsFor(u))
	if err != nil {
		return nil, apperror.Unexpected("トークンの発行に失敗しました", err)
	}
	return &LoginResult{Token: tok, User: u.Public()}, nil
}

// ClaimsFor はユーザーのプロフィールからクレームを組み立てます。
func ClaimsFor(u *models.User) token.Claims {
	return token.Claims{
		UserID:       u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		EmailAddress: u.EmailAddress,
		Username:     u.Username,
	}
}
