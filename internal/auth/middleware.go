package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
)

const (
	identityKey = "auth_identity"

	// DefaultCookieName carries the access token between requests.
	DefaultCookieName = "jwt"
)

// AuthMiddleware resolves the caller from the token cookie, falling back to a
// bearer header, and stores the account in the request locals.
type AuthMiddleware struct {
	resolver   *Resolver
	cookieName string
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(resolver *Resolver, cookieName string) *AuthMiddleware {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &AuthMiddleware{resolver: resolver, cookieName: cookieName}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := m.extractToken(c)
	if token == "" {
		return ErrUnauthenticated
	}

	account, err := m.resolver.Resolve(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(identityKey, account)
	return c.Next()
}

func (m *AuthMiddleware) extractToken(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Cookies(m.cookieName)); token != "" {
		return token
	}

	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// IdentityFromContext retrieves the authenticated account.
func IdentityFromContext(c *fiber.Ctx) (*domain.Account, bool) {
	account, ok := c.Locals(identityKey).(*domain.Account)
	return account, ok && account != nil
}
