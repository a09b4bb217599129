package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Username     string `json:"username" binding:"required,min=3,excludes=@"`
	EmailAddress string `json:"emailAddress" binding:"required,email"`
}

func bind(t *testing.T, body string) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Setup()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var s sample
	return c.ShouldBindJSON(&s)
}

func TestDescribeUsesJSONFieldNames(t *testing.T) {
	err := bind(t, `{"username":"al","emailAddress":"alice@x.com"}`)
	require.Error(t, err)
	msg := Describe(err)
	assert.Contains(t, msg, "username")
	assert.Contains(t, msg, "3")
}

func TestDescribeEmail(t *testing.T) {
	err := bind(t, `{"username":"alice","emailAddress":"nope"}`)
	require.Error(t, err)
	assert.Contains(t, Describe(err), "emailAddress")
}

func TestDescribeRequired(t *testing.T) {
	err := bind(t, `{"emailAddress":"alice@x.com"}`)
	require.Error(t, err)
	assert.Contains(t, Describe(err), "username は必須です")
}

func TestDescribeNonValidationError(t *testing.T) {
	assert.Equal(t, "リクエストボディを JSON で送ってください", Describe(errors.New("EOF")))
}

func TestDescribeExcludes(t *testing.T) {
	err := bind(t, `{"username":"al@ce","emailAddress":"alice@x.com"}`)
	require.Error(t, err)
	assert.Contains(t, Describe(err), "username に \"@\" は使えません")
}
