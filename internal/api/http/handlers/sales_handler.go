package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ezinne-pharmarcy/backend/internal/api/dto"
	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/service"
	apperrors "github.com/ezinne-pharmarcy/backend/pkg/util/errorutil"
)

// SalesHandler serves carts or orders and their item lines.
type SalesHandler struct {
	service *service.SaleService
	kind    domain.SaleKind
}

// NewSalesHandler constructs handler for kind.
func NewSalesHandler(saleService *service.SaleService, kind domain.SaleKind) *SalesHandler {
	return &SalesHandler{service: saleService, kind: kind}
}

func (h *SalesHandler) itemResource() string {
	return string(h.kind) + "_item"
}

// Create POST /carts or /orders.
func (h *SalesHandler) Create(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.CreateSaleRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	if err := req.Validate(); err != nil {
		return validationError(err)
	}
	sale, err := h.service.Create(c.UserContext(), actor, req.TotalPrice)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewSaleResponse(sale)})
}

// List GET /carts or /orders.
func (h *SalesHandler) List(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	sales, err := h.service.List(c.UserContext(), actor, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSaleListResponse(sales)})
}

// Get GET /carts/:id or /orders/:id.
func (h *SalesHandler) Get(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, string(h.kind))
	if err != nil {
		return err
	}
	sale, err := h.service.Get(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSaleResponse(sale)})
}

// Delete DELETE /carts/:id or /orders/:id.
func (h *SalesHandler) Delete(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, string(h.kind))
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateItem POST /cart-items or /order-items.
func (h *SalesHandler) CreateItem(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.CreateSaleItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := req.Validate(h.kind); err != nil {
		return validationError(err)
	}
	item, err := h.service.AddItem(c.UserContext(), actor, req.ToInput(h.kind))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewSaleItemResponse(item)})
}

// ListItems GET /cart-items?cart_id= or /order-items?order_id=.
func (h *SalesHandler) ListItems(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	param := string(h.kind) + "_id"
	saleID := c.Query(param)
	if _, err := uuid.Parse(saleID); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{param: "must be a valid UUID"})
	}
	items, err := h.service.ListItems(c.UserContext(), actor, saleID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSaleItemListResponse(items)})
}

// GetItem GET /cart-items/:id or /order-items/:id.
func (h *SalesHandler) GetItem(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, h.itemResource())
	if err != nil {
		return err
	}
	item, err := h.service.GetItem(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSaleItemResponse(item)})
}

// DeleteItem DELETE /cart-items/:id or /order-items/:id.
func (h *SalesHandler) DeleteItem(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, h.itemResource())
	if err != nil {
		return err
	}
	if err := h.service.DeleteItem(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
