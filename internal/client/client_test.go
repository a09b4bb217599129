package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/blog-forge/internal/client"
	"github.com/yourusername/blog-forge/internal/config"
	"github.com/yourusername/blog-forge/internal/password"
	"github.com/yourusername/blog-forge/internal/server"
	"github.com/yourusername/blog-forge/internal/store/storetest"
	"github.com/yourusername/blog-forge/internal/token"
)

func newTestServer(t *testing.T) *client.Client {
	t.Helper()
	cfg := &config.Config{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
		GinMode:   "test",
	}
	issuer, err := token.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL)
	require.NoError(t, err)

	router := server.New(server.Deps{
		Config: cfg,
		Store:  storetest.New(t),
		Issuer: issuer,
		Hasher: password.NewHasher(bcrypt.MinCost),
		Logger: zerolog.Nop(),
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return client.New(srv.URL, srv.Client())
}

func statusOf(err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func register(t *testing.T, c *client.Client, username string) {
	t.Helper()
	err := c.Register(context.Background(), client.RegisterRequest{
		FirstName:    "First",
		LastName:     "Last",
		Username:     username,
		EmailAddress: username + "@x.com",
		Password:     "pw12345678",
	})
	require.NoError(t, err)
}

func TestAliceScenario(t *testing.T) {
	c := newTestServer(t)
	ctx := context.Background()

	register(t, c, "alice")

	sess, err := c.Login(ctx, "alice", "pw12345678")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token())
	assert.Equal(t, "alice", sess.User().Username)

	_, err = c.Login(ctx, "alice", "wrong-password")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestDuplicateRegistration(t *testing.T) {
	c := newTestServer(t)
	register(t, c, "alice")

	err := c.Register(context.Background(), client.RegisterRequest{
		FirstName: "A", LastName: "B", Username: "alice2", EmailAddress: "alice@x.com", Password: "pw12345678",
	})
	assert.Equal(t, http.StatusConflict, statusOf(err))
}

func TestSessionLifecycle(t *testing.T) {
	c := newTestServer(t)
	ctx := context.Background()
	register(t, c, "alice")
	register(t, c, "bob")

	alice, err := c.Login(ctx, "alice", "pw12345678")
	require.NoError(t, err)
	bob, err := c.Login(ctx, "bob@x.com", "pw12345678")
	require.NoError(t, err)

	post, err := alice.CreatePost(ctx, client.PostInput{Title: "Hello", Content: "World", Synopsis: "Hi", Image: "img.png"})
	require.NoError(t, err)
	require.NotNil(t, post.User)
	assert.Equal(t, "alice", post.User.Username)

	title := "Hijacked"
	_, err = bob.UpdatePost(ctx, post.ID, client.PostUpdate{Title: &title})
	assert.Equal(t, http.StatusForbidden, statusOf(err))
	assert.Equal(t, http.StatusForbidden, statusOf(bob.DeletePost(ctx, post.ID)))

	title = "Hello v2"
	updated, err := alice.UpdatePost(ctx, post.ID, client.PostUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Hello v2", updated.Title)
	assert.False(t, updated.LastUpdated.Before(updated.DateCreated))

	old := alice.Token()
	first := "Alicia"
	user, err := alice.UpdateProfile(ctx, client.ProfileUpdate{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", user.FirstName)
	assert.Equal(t, "Alicia", alice.User().FirstName)
	assert.NotEqual(t, old, alice.Token())

	mine, err := alice.MyPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, alice.DeletePost(ctx, post.ID))
	_, err = c.GetPost(ctx, post.ID)
	assert.Equal(t, http.StatusNotFound, statusOf(err))

	all, err := c.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, alice.ChangePassword(ctx, "pw12345678", "newpass123"))
	_, err = c.Login(ctx, "alice", "pw12345678")
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	_, err = c.Login(ctx, "alice", "newpass123")
	assert.NoError(t, err)
}

func TestAPIErrorCarriesCode(t *testing.T) {
	c := newTestServer(t)
	_, err := c.Login(context.Background(), "nobody", "pw12345678")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "USER_NOT_FOUND", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "404")
}
