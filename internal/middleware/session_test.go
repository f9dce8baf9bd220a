package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agrocommunity_backend/internal/auth"
	"agrocommunity_backend/internal/models"
	"agrocommunity_backend/internal/repositories"
	"agrocommunity_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokenConfig = auth.TokenConfig{
	ActivationSecret: "activation-secret",
	AccessSecret:     "access-secret",
	RefreshSecret:    "refresh-secret",
}

type sessionFixture struct {
	tokens *auth.TokenService
	stale  *auth.TokenService
	user   *models.User
	router *gin.Engine
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenService(testTokenConfig)
	require.NoError(t, err)
	// Issues tokens as if it were an hour ago, so access tokens are expired
	// while refresh tokens are still valid.
	stale, err := auth.NewTokenService(testTokenConfig, auth.WithClock(func() time.Time {
		return time.Now().Add(-time.Hour)
	}))
	require.NoError(t, err)

	repos := repositories.NewMemoryRepositories()
	user := &models.User{Username: "alice", Name: "Alice", Email: "alice@farm.kz", PasswordHash: "h"}
	require.NoError(t, repos.Users.Create(context.Background(), user))

	session := NewSessionMiddleware(tokens, repos.Users, CookieConfig{})
	router := gin.New()
	router.GET("/me", session.Authenticate(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(contextkeys.UserIDKey))
	})
	router.GET("/admin", session.Authenticate(), RequireRoles(models.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return &sessionFixture{tokens: tokens, stale: stale, user: user, router: router}
}

func (f *sessionFixture) do(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSession_NoCookie(t *testing.T) {
	f := newSessionFixture(t)

	rec := f.do("/me")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please login to access this resource")
}

func TestSession_ValidAccessToken(t *testing.T) {
	f := newSessionFixture(t)
	access, err := f.tokens.IssueAccessToken(f.user.ID, string(f.user.Role))
	require.NoError(t, err)

	rec := f.do("/me", &http.Cookie{Name: AccessCookie, Value: access})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, f.user.ID, rec.Body.String())
	assert.Nil(t, findCookie(rec, AccessCookie))
}

func TestSession_ExpiredAccessIsRefreshed(t *testing.T) {
	// Arrange
	f := newSessionFixture(t)
	access, err := f.stale.IssueAccessToken(f.user.ID, string(f.user.Role))
	require.NoError(t, err)
	refresh, err := f.stale.IssueRefreshToken(f.user.ID)
	require.NoError(t, err)

	// Act
	rec := f.do("/me",
		&http.Cookie{Name: AccessCookie, Value: access},
		&http.Cookie{Name: RefreshCookie, Value: refresh},
	)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	renewed := findCookie(rec, AccessCookie)
	require.NotNil(t, renewed)
	assert.True(t, renewed.HttpOnly)
	claims, err := f.tokens.ParseAccessToken(renewed.Value)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, claims.UserID)
}

func TestSession_ExpiredAccessBadRefresh(t *testing.T) {
	f := newSessionFixture(t)
	access, err := f.stale.IssueAccessToken(f.user.ID, string(f.user.Role))
	require.NoError(t, err)

	rec := f.do("/me",
		&http.Cookie{Name: AccessCookie, Value: access},
		&http.Cookie{Name: RefreshCookie, Value: "garbage"},
	)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do("/me", &http.Cookie{Name: AccessCookie, Value: access})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSession_RefreshTokenIsNotAnAccessToken(t *testing.T) {
	f := newSessionFixture(t)
	refresh, err := f.tokens.IssueRefreshToken(f.user.ID)
	require.NoError(t, err)

	rec := f.do("/me", &http.Cookie{Name: AccessCookie, Value: refresh})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSession_UnknownUser(t *testing.T) {
	f := newSessionFixture(t)
	access, err := f.tokens.IssueAccessToken("3f1c0a52-0000-4000-8000-000000000000", "farmer")
	require.NoError(t, err)

	rec := f.do("/me", &http.Cookie{Name: AccessCookie, Value: access})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	f := newSessionFixture(t)
	access, err := f.tokens.IssueAccessToken(f.user.ID, string(f.user.Role))
	require.NoError(t, err)

	rec := f.do("/admin", &http.Cookie{Name: AccessCookie, Value: access})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Role: farmer is not authorized to access this resource")
}
