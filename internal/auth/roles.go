package auth

import (
	"github.com/gofiber/fiber/v2"
)

// Require guards a collection-level route (create, list) with the policy.
// Record-level checks need the target and happen once the record is loaded.
func Require(resource Resource, action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		if err := Authorize(identity, resource, action, nil); err != nil {
			return err
		}
		return c.Next()
	}
}
