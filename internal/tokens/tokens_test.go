package tokens

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/gogotex/gogotex/backend/go-attachments/internal/models"
	"github.com/gogotex/gogotex/backend/go-attachments/internal/users"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// signAccessToken issues a token shaped like the identity service's.
func signAccessToken(t *testing.T, secret string, u *models.User, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":          u.Sub,
		"name":         u.Name,
		"email":        u.Email,
		"is_staff":     u.IsStaff,
		"is_superuser": u.IsSuperuser,
		"iat":          time.Now().Unix(),
		"exp":          time.Now().Add(ttl).Unix(),
	}
	if len(u.Permissions) > 0 {
		claims["permissions"] = u.Permissions
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestHMACVerifier_ClaimsPassThrough(t *testing.T) {
	const secret = "test-secret-32-bytes-should-be-long-enough"
	u := &models.User{Sub: "user-123", Name: "Test User", Email: "test@example.com", IsStaff: true}
	tok, err := NewHMACVerifier(secret).Verify(context.Background(), signAccessToken(t, secret, u, 2*time.Minute))
	require.NoError(t, err)

	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "user-123", claims["sub"])
	require.Equal(t, "test@example.com", claims["email"])
	require.Equal(t, true, claims["is_staff"])
	require.NotContains(t, claims, "permissions")
}

func TestHMACVerifier_RoundTripFeedsUserMapping(t *testing.T) {
	const secret = "verifier-secret-32-bytes-xxxxxxxxxx"
	u := &models.User{Sub: "editor-1", Name: "Ed", Permissions: []string{models.PermDisallowAddAttachment}}
	tokenStr := signAccessToken(t, secret, u, time.Minute)

	tok, err := NewHMACVerifier(secret).Verify(context.Background(), tokenStr)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))

	got := users.FromClaims(claims)
	require.Equal(t, "editor-1", got.Sub)
	require.False(t, got.IsStaff)
	require.False(t, users.AllowAddAttachmentBy(got))
}

func TestHMACVerifier_Rejects(t *testing.T) {
	const secret = "right-secret-32-bytes-xxxxxxxxxxxxx"
	good := signAccessToken(t, secret, &models.User{Sub: "user-t"}, time.Minute)
	expired := signAccessToken(t, secret, &models.User{Sub: "user-t"}, -time.Minute)

	parts := strings.Split(good, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(strings.Replace(string(payload), "user-t", "attacker", 1)))
	tampered := strings.Join(parts, ".")

	none := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`)) + "." +
		base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"u-none","exp":9999999999}`)) + "."

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "forever"}).SignedString([]byte(secret))
	require.NoError(t, err)

	cases := map[string]struct {
		secret string
		token  string
	}{
		"wrong secret":   {"wrong-secret-32-bytes-xxxxxxxxxxxxx", good},
		"empty secret":   {"", good},
		"expired":        {secret, expired},
		"tampered":       {secret, tampered},
		"alg none":       {secret, none},
		"malformed":      {secret, "not.a.jwt"},
		"missing expiry": {secret, noExp},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewHMACVerifier(tc.secret).Verify(context.Background(), tc.token)
			require.Error(t, err)
		})
	}
}
