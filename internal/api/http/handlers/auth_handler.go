package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ezinne-pharmarcy/backend/internal/api/dto"
	"github.com/ezinne-pharmarcy/backend/internal/service"
)

// CookieConfig describes the token cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler serves login and logout.
type AuthHandler struct {
	service *service.AuthService
	cookie  CookieConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "jwt"
	}
	return &AuthHandler{service: authService, cookie: cookie}
}

// Login POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return validationError(err)
	}

	result, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    result.Tokens.Access,
		Path:     "/",
		Expires:  result.Tokens.AccessExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Status(fiber.StatusCreated).JSON(dto.LoginResponse{
		Status:  "success",
		Access:  result.Tokens.Access,
		Refresh: result.Tokens.Refresh,
	})
}

// Logout POST /logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	account, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.service.Logout(c.UserContext(), account); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.StatusResponse{Status: "success", Detail: "logged out successfully"})
}
