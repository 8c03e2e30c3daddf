package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/models"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/sessions"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/users"
	"github.com/gogotex/gogotex/backend/go-attachments/pkg/logger"
)

const (
	claimsKey = "claims"
	userKey   = "user"

	// AccessTokenCookie carries the access token for browser requests.
	AccessTokenCookie = "access_token"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// UserResolver maps verified claims onto an application user.
type UserResolver func(ctx context.Context, claims map[string]interface{}) (*models.User, error)

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using the provided verifier
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		// Expect 'Bearer <token>'
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		if revoked, err := sessions.IsAccessTokenBlacklisted(c.Request.Context(), token); err != nil || revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}

		idToken, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "details": err.Error()})
			return
		}

		// Extract claims
		var claims map[string]interface{}
		if err := idToken.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// IdentityMiddleware resolves the caller's identity when a valid token is
// present (Bearer header or access_token cookie). It never rejects a request;
// handlers that need a user pair it with LoginRequired.
func IdentityMiddleware(ver Verifier, resolve UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" || ver == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		revoked, err := sessions.IsAccessTokenBlacklisted(ctx, raw)
		if err != nil {
			logger.Warnf("identity: blacklist check failed: %v", err)
			c.Next()
			return
		}
		if revoked {
			c.Next()
			return
		}
		tok, err := ver.Verify(ctx, raw)
		if err != nil {
			logger.Debugf("identity: token rejected: %v", err)
			c.Next()
			return
		}
		var claims map[string]interface{}
		if err := tok.Claims(&claims); err != nil {
			c.Next()
			return
		}
		c.Set(claimsKey, claims)
		u, err := resolve(ctx, claims)
		if err != nil {
			// keep the caller identified from the token alone
			logger.Errorf("identity: resolve user: %v", err)
			u = users.FromClaims(claims)
		}
		if u != nil {
			c.Set(userKey, u)
		}
		c.Next()
	}
}

// LoginRequired redirects anonymous callers to loginURL with a next parameter.
func LoginRequired(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		target := loginURL
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + "next=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

// CurrentUser returns the user resolved by IdentityMiddleware, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// SetUser stores u as the request's identity.
func SetUser(c *gin.Context, u *models.User) {
	c.Set(userKey, u)
}

func bearerToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n == 1 {
			return token
		}
		return ""
	}
	if ck, err := c.Cookie(AccessTokenCookie); err == nil {
		return ck
	}
	return ""
}
