package middleware

import (
	"errors"
	"net/http"
	"strings"

	"agrocommunity_backend/internal/auth"
	"agrocommunity_backend/internal/logger"
	"agrocommunity_backend/internal/models"
	"agrocommunity_backend/internal/repositories"
	"agrocommunity_backend/pkg/apperrors"
	"agrocommunity_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "access-token"
	RefreshCookie = "refresh-token"
)

// CookieConfig controls the attributes of the session cookies.
type CookieConfig struct {
	Secure bool
	Domain string
}

// SessionMiddleware authenticates requests from the session cookies and
// silently renews an expired access token while the refresh token is valid.
type SessionMiddleware struct {
	tokens  *auth.TokenService
	users   repositories.UserRepository
	cookies CookieConfig
}

func NewSessionMiddleware(tokens *auth.TokenService, users repositories.UserRepository, cookies CookieConfig) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, users: users, cookies: cookies}
}

// ============================================
// Authentication
// ============================================

func (m *SessionMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		access, err := c.Cookie(AccessCookie)
		if err != nil || access == "" {
			apperrors.HandleError(c, apperrors.ErrLoginRequired)
			return
		}

		var userID string
		refreshed := false

		claims, err := m.tokens.ParseAccessToken(access)
		switch {
		case err == nil:
			userID = claims.UserID
		case errors.Is(err, auth.ErrTokenExpired):
			refresh, cookieErr := c.Cookie(RefreshCookie)
			if cookieErr != nil || refresh == "" {
				apperrors.HandleError(c, apperrors.ErrSessionExpired)
				return
			}
			userID, err = m.tokens.ParseRefreshToken(refresh)
			if err != nil {
				logger.CtxWarn(ctx, "Refresh rejected", "error", err)
				apperrors.HandleError(c, apperrors.ErrSessionExpired)
				return
			}
			refreshed = true
		default:
			logger.CtxWarn(ctx, "Access token rejected", "error", err)
			apperrors.HandleError(c, apperrors.ErrLoginRequired)
			return
		}

		user, err := m.users.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				apperrors.HandleError(c, apperrors.ErrLoginRequired)
				return
			}
			apperrors.HandleError(c, apperrors.ErrUpstream(err, "auth", "Failed to load session user"))
			return
		}

		if refreshed {
			// The role is read from the store so a role change applies on refresh.
			token, err := m.tokens.IssueAccessToken(user.ID, string(user.Role))
			if err != nil {
				apperrors.HandleError(c, apperrors.InternalError(err))
				return
			}
			m.SetAccessCookie(c, token)
			logger.CtxDebug(ctx, "Access token refreshed", "user_id", user.ID)
		}

		c.Set(contextkeys.UserIDKey, user.ID)
		c.Set(contextkeys.UserRoleKey, string(user.Role))
		c.Set(contextkeys.UserKey, user)
		c.Request = c.Request.WithContext(logger.WithUserID(ctx, user.ID))
		c.Next()
	}
}

// RequireRoles must run after Authenticate.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role := models.UserRole(c.GetString(contextkeys.UserRoleKey))
		if !allowed[role] {
			apperrors.HandleError(c, apperrors.NewForbiddenError(
				"Role: "+string(role)+" is not authorized to access this resource"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user attached by Authenticate.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	val, ok := c.Get(contextkeys.UserKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok && user != nil
}

// ============================================
// Cookies
// ============================================

func (m *SessionMiddleware) SetSessionCookies(c *gin.Context, accessToken, refreshToken string) {
	m.SetAccessCookie(c, accessToken)
	m.setCookie(c, RefreshCookie, refreshToken, int(m.tokens.RefreshTTL().Seconds()))
}

func (m *SessionMiddleware) SetAccessCookie(c *gin.Context, token string) {
	m.setCookie(c, AccessCookie, token, int(m.tokens.AccessTTL().Seconds()))
}

func (m *SessionMiddleware) ClearSessionCookies(c *gin.Context) {
	m.setCookie(c, AccessCookie, "", -1)
	m.setCookie(c, RefreshCookie, "", -1)
}

func (m *SessionMiddleware) setCookie(c *gin.Context, name, value string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if m.cookies.Secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   strings.TrimSpace(m.cookies.Domain),
		MaxAge:   maxAge,
		Secure:   m.cookies.Secure,
		HttpOnly: true,
		SameSite: sameSite,
	})
}
