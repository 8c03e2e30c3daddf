package users

import (
	"context"

	"github.com/gogotex/gogotex/backend/go-attachments/internal/models"
)

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// UpsertFromClaims creates or updates a user using OIDC claims map
func (s *Service) UpsertFromClaims(ctx context.Context, claims map[string]interface{}) (*models.User, error) {
	u := FromClaims(claims)
	if u == nil {
		return nil, nil
	}
	return s.repo.UpsertBySub(ctx, u)
}

func (s *Service) GetBySub(ctx context.Context, sub string) (*models.User, error) {
	return s.repo.GetBySub(ctx, sub)
}

// FromClaims builds a user from token claims without touching storage.
// Returns nil when the claims carry no subject.
//
// Flags and permissions are read from "is_staff", "is_superuser" and
// "permissions", and from Keycloak's realm_access.roles where the roles
// "staff" and "superuser" map onto the flags and any other role is kept as a
// permission.
func FromClaims(claims map[string]interface{}) *models.User {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	u := &models.User{Sub: sub, Email: email, Name: name}
	u.IsStaff, _ = claims["is_staff"].(bool)
	u.IsSuperuser, _ = claims["is_superuser"].(bool)
	u.Permissions = append(u.Permissions, stringList(claims["permissions"])...)

	if ra, ok := claims["realm_access"].(map[string]interface{}); ok {
		for _, role := range stringList(ra["roles"]) {
			switch role {
			case "staff":
				u.IsStaff = true
			case "superuser":
				u.IsSuperuser = true
			default:
				u.Permissions = append(u.Permissions, role)
			}
		}
	}
	return u
}

func stringList(v interface{}) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, it := range vv {
			if s, ok := it.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
