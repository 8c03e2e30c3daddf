package oidc

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gogotex/gogotex/backend/go-attachments/pkg/middleware"
)

// Verifier checks Keycloak-issued access tokens against the realm's
// published keys.
type Verifier struct {
	clientID string
	verifier *oidc.IDTokenVerifier
}

// NewVerifier discovers the provider at issuer. Keycloak access tokens carry
// the "account" audience, so the client is matched against aud or azp
// instead of aud alone.
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	return &Verifier{
		clientID: clientID,
		verifier: provider.Verifier(&oidc.Config{SkipClientIDCheck: true}),
	}, nil
}

// Verify checks the signature, issuer and expiry of raw and that it was
// issued to this client.
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	tok, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	var c struct {
		AZP string `json:"azp"`
	}
	if err := tok.Claims(&c); err != nil {
		return nil, err
	}
	if !issuedTo(v.clientID, c.AZP, tok.Audience) {
		return nil, fmt.Errorf("token not issued to client %q", v.clientID)
	}
	return tok, nil
}

func issuedTo(clientID, azp string, aud []string) bool {
	if clientID == "" || azp == clientID {
		return true
	}
	for _, a := range aud {
		if a == clientID {
			return true
		}
	}
	return false
}
