package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ezinne-pharmarcy/backend/internal/api/dto"
	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/service"
)

// AccountsHandler serves one account kind's collection.
type AccountsHandler struct {
	service *service.AccountService
	kind    domain.AccountKind
}

// NewAccountsHandler constructs handler for kind.
func NewAccountsHandler(accountService *service.AccountService, kind domain.AccountKind) *AccountsHandler {
	return &AccountsHandler{service: accountService, kind: kind}
}

// Create POST /{kind}.
func (h *AccountsHandler) Create(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.CreateAccountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return validationError(err)
	}

	account, err := h.service.Create(c.UserContext(), actor, req.ToInput(h.kind))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewAccountResponse(account)})
}

// List GET /{kind}.
func (h *AccountsHandler) List(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	accounts, err := h.service.List(c.UserContext(), actor, h.kind, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountListResponse(accounts)})
}

// Get GET /{kind}/:id.
func (h *AccountsHandler) Get(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, string(h.kind))
	if err != nil {
		return err
	}
	account, err := h.service.Get(c.UserContext(), actor, h.kind, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountResponse(account)})
}

// Update PATCH /{kind}/:id.
func (h *AccountsHandler) Update(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, string(h.kind))
	if err != nil {
		return err
	}
	var req dto.UpdateAccountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return validationError(err)
	}

	account, err := h.service.Update(c.UserContext(), actor, h.kind, id, req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountResponse(account)})
}

// Delete DELETE /{kind}/:id.
func (h *AccountsHandler) Delete(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, string(h.kind))
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, h.kind, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
