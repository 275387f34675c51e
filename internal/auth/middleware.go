package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

const principalKey = "principal"

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	TenantID    string
	UserID      string
	Permissions []string
}

// Has reports whether the principal carries the given permission.
func (p *Principal) Has(permission string) bool {
	for _, granted := range p.Permissions {
		if granted == permission {
			return true
		}
	}
	return false
}

// Middleware authenticates requests with a bearer token and stores the
// resulting principal in request locals.
func Middleware(tokens *TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return apperrors.NewUnauthorized("missing authorization header")
		}
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return apperrors.NewUnauthorized("malformed authorization header")
		}
		claims, err := tokens.Parse(token)
		if err != nil {
			return err
		}
		c.Locals(principalKey, &Principal{
			TenantID:    claims.TenantID,
			UserID:      claims.Subject,
			Permissions: claims.Permissions,
		})
		return c.Next()
	}
}

// PrincipalFromContext returns the authenticated principal, or an
// unauthorized error if the middleware did not run.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, error) {
	principal, ok := c.Locals(principalKey).(*Principal)
	if !ok || principal == nil {
		return nil, apperrors.NewUnauthorized("no authenticated principal")
	}
	return principal, nil
}
