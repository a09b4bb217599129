package auth

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(t *testing.T, env *testEnv, opts ...HandlerOption) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(env.service, opts...)

	r := gin.New()
	g := r.Group("/api/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.PATCH("/update", RequireToken(env.issuer), h.UpdateProfile)
	g.POST("/change-password", RequireToken(env.issuer), h.ChangePassword)
	return r
}

const aliceJSON = `{"firstName":"Alice","lastName":"Smith","username":"alice","emailAddress":"alice@x.com","password":"pw12345678"}`

func loginToken(t *testing.T, r *gin.Engine, identifier, password string) string {
	t.Helper()
	res := apitest.Handler(r).
		Post("/api/auth/login").
		JSON(`{"identifier":"` + identifier + `","password":"` + password + `"}`).
		Expect(t).
		Status(http.StatusOK).
		End()
	var body struct {
		Token string `json:"token"`
	}
	res.JSON(&body)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestHandler_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	r := newAuthRouter(t, env, WithCookie(CookieOptions{TTL: time.Hour}))

	apitest.Handler(r).Post("/api/auth/register").JSON(aliceJSON).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Present("$.message")).
		End()

	apitest.Handler(r).Post("/api/auth/register").JSON(aliceJSON).
		Expect(t).
		Status(http.StatusConflict).
		End()

	apitest.Handler(r).Post("/api/auth/login").
		JSON(`{"identifier":"alice@x.com","password":"pw12345678"}`).
		Expect(t).
		Status(http.StatusOK).
		CookiePresent(TokenCookieName).
		Assert(jsonpath.Present("$.token")).
		Assert(jsonpath.Equal("$.user.username", "alice")).
		Assert(jsonpath.NotPresent("$.user.passwordHash")).
		End()

	apitest.Handler(r).Post("/api/auth/login").
		JSON(`{"identifier":"alice","password":"wrong-password"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		CookieNotPresent(TokenCookieName).
		Assert(jsonpath.NotPresent("$.token")).
		Assert(jsonpath.Equal("$.code", "INVALID_CREDENTIALS")).
		End()

	apitest.Handler(r).Post("/api/auth/login").
		JSON(`{"identifier":"nobody","password":"pw12345678"}`).
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestHandler_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	r := newAuthRouter(t, env)

	apitest.Handler(r).Post("/api/auth/register").
		JSON(`{"firstName":"A","lastName":"B","username":"al","emailAddress":"alice@x.com","password":"pw12345678"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.code", "INVALID_INPUT")).
		End()

	apitest.Handler(r).Post("/api/auth/register").
		JSON(`{"firstName":"A","lastName":"B","username":"alice","emailAddress":"not-email","password":"pw12345678"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()

	apitest.Handler(r).Post("/api/auth/register").
		JSON(`{"firstName":"A","lastName":"B","username":"alice","emailAddress":"alice@x.com","password":"short"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()

	apitest.Handler(r).Post("/api/auth/register").
		JSON(`{"firstName":"A","lastName":"B","username":"bob@x.com","emailAddress":"bob@x.com","password":"pw12345678"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.code", "INVALID_INPUT")).
		End()
}

func TestHandler_RegisterLongPassword(t *testing.T) {
	env := newTestEnv(t)
	r := newAuthRouter(t, env)
	long := strings.Repeat("p", 80)

	apitest.Handler(r).Post("/api/auth/register").
		JSON(`{"firstName":"A","lastName":"B","username":"alice","emailAddress":"alice@x.com","password":"` + long + `"}`).
		Expect(t).
		Status(http.StatusCreated).
		End()

	tok := loginToken(t, r, "alice", long)

	apitest.Handler(r).Post("/api/auth/change-password").
		Header("Authorization", "Bearer "+tok).
		JSON(`{"currentPassword":"` + long + `","newPassword":"` + strings.Repeat("n", 100) + `"}`).
		Expect(t).
		Status(http.StatusOK).
		End()

	loginToken(t, r, "alice", strings.Repeat("n", 100))
}

func TestHandler_ChangePasswordAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	r := newAuthRouter(t, env)

	apitest.Handler(r).Post("/api/auth/register").JSON(aliceJSON).Expect(t).Status(http.StatusCreated).End()
	tok := loginToken(t, r, "alice", "pw12345678")

	apitest.Handler(r).Post("/api/auth/change-password").
		JSON(`{"currentPassword":"pw12345678","newPassword":"newpass123"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	apitest.Handler(r).Post("/api/auth/change-password").
		Header("Authorization", "Bearer "+tok).
		JSON(`{"currentPassword":"wrong-password","newPassword":"newpass123"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()

	apitest.Handler(r).Post("/api/auth/change-password").
		Header("Authorization", "Bearer "+tok).
		JSON(`{"currentPassword":"pw12345678","newPassword":"newpass123"}`).
		Expect(t).
		Status(http.StatusOK).
		End()

	apitest.Handler(r).Post("/api/auth/login").
		JSON(`{"identifier":"alice","password":"pw12345678"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
	tok = loginToken(t, r, "alice", "newpass123")

	res := apitest.Handler(r).Patch("/api/auth/update").
		Header("Authorization", "Bearer "+tok).
		JSON(`{"firstName":"Alicia"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.user.firstName", "Alicia")).
		Assert(jsonpath.Equal("$.user.lastName", "Smith")).
		End()

	var body struct {
		Token string `json:"token"`
	}
	res.JSON(&body)
	claims, err := env.issuer.Verify(body.Token)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", claims.FirstName)

	apitest.Handler(r).Patch("/api/auth/update").
		Header("Authorization", "Bearer "+tok).
		JSON(`{"firstName":"A"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestHandler_Logout(t *testing.T) {
	env := newTestEnv(t)
	r := newAuthRouter(t, env)

	apitest.Handler(r).Post("/api/auth/logout").
		Expect(t).
		Status(http.StatusOK).
		CookiePresent(TokenCookieName).
		Assert(jsonpath.Present("$.message")).
		End()
}

func TestHandler_LoginLockout(t *testing.T) {
	env := newTestEnv(t)
	limits := Limits{MaxAttempts: 2, Window: time.Minute, LockFor: time.Minute}
	r := newAuthRouter(t, env, WithLockout(limits, NewMemoryAttempts(limits)))

	apitest.Handler(r).Post("/api/auth/register").JSON(aliceJSON).Expect(t).Status(http.StatusCreated).End()

	apitest.Handler(r).Post("/api/auth/login").
		JSON(`{"identifier":"alice","password":"wrong-password"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Header("X-Remaining-Attempts", "1").
		End()
	apitest.Handler(r).Post("/api/auth/login").
		JSON(`{"identifier":"alice","password":"wrong-password"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Header("X-Remaining-Attempts", "0").
		End()

	apitest.Handler(r).Post("/api/auth/login").
		JSON(`{"identifier":"alice","password":"pw12345678"}`).
		Expect(t).
		Status(http.StatusTooManyRequests).
		HeaderPresent("Retry-After").
		Assert(jsonpath.Equal("$.code", "TOO_MANY_ATTEMPTS")).
		End()
}
