package oidc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func unsignedToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	b, err := json.Marshal(claims)
	require.NoError(t, err)
	return "eyJhbGciOiJub25lIn0." + base64.RawURLEncoding.EncodeToString(b) + ".sig"
}

func TestInsecureVerifier(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	v := &InsecureVerifier{now: func() time.Time { return now }}
	ctx := context.Background()

	tok, err := v.Verify(ctx, unsignedToken(t, map[string]interface{}{"sub": "alice", "is_staff": true, "exp": now.Add(time.Minute).Unix()}))
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "alice", claims["sub"])
	require.Equal(t, true, claims["is_staff"])

	_, err = v.Verify(ctx, unsignedToken(t, map[string]interface{}{"sub": "alice", "exp": now.Add(-time.Minute).Unix()}))
	require.ErrorContains(t, err, "expired")

	_, err = v.Verify(ctx, unsignedToken(t, map[string]interface{}{"email": "x@example.com"}))
	require.ErrorContains(t, err, "subject")

	_, err = v.Verify(ctx, "not-a-jwt")
	require.Error(t, err)
}

func TestIssuedTo(t *testing.T) {
	require.True(t, issuedTo("wiki", "wiki", []string{"account"}))
	require.True(t, issuedTo("wiki", "", []string{"account", "wiki"}))
	require.False(t, issuedTo("wiki", "other", []string{"account"}))
	require.True(t, issuedTo("", "other", nil))
}
