package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/atlasdesk/support-service/pkg/util"
)

// Permission strings granted through token claims.
const (
	PermSupportView      = "support.view"
	PermSupportCreate    = "support.create"
	PermSupportIntervene = "support.intervene"
	PermSupportManage    = "support.manage"
)

// RequirePermission guards a route group with one permission check. It must
// run after Middleware.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := PrincipalFromContext(c)
		if err != nil {
			return err
		}
		if !principal.Has(permission) {
			return apperrors.NewForbidden("missing permission: " + permission)
		}
		return c.Next()
	}
}
