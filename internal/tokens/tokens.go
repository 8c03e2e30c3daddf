package tokens

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gogotex/gogotex/backend/go-attachments/pkg/middleware"
	"github.com/golang-jwt/jwt/v5"
)

// HMACVerifier verifies HS256 access tokens the identity service signs with
// the shared JWT_SECRET.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

type claimsToken struct {
	claims jwt.MapClaims
}

func (t *claimsToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Verify checks signature and expiry and returns the token claims.
func (v *HMACVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if len(v.secret) == 0 {
		return nil, errors.New("token secret not configured")
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return &claimsToken{claims: claims}, nil
}
