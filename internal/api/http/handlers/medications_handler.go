package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ezinne-pharmarcy/backend/internal/api/dto"
	"github.com/ezinne-pharmarcy/backend/internal/service"
)

// MedicationsHandler serves the stock list.
type MedicationsHandler struct {
	service *service.MedicationService
}

// NewMedicationsHandler constructs handler.
func NewMedicationsHandler(medicationService *service.MedicationService) *MedicationsHandler {
	return &MedicationsHandler{service: medicationService}
}

// Create POST /medications.
func (h *MedicationsHandler) Create(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.MedicationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := req.ValidateCreate(); err != nil {
		return validationError(err)
	}
	med, err := h.service.Create(c.UserContext(), actor, req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewMedicationResponse(med)})
}

// List GET /medications.
func (h *MedicationsHandler) List(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	meds, err := h.service.List(c.UserContext(), actor, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMedicationListResponse(meds)})
}

// Get GET /medications/:id.
func (h *MedicationsHandler) Get(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "medication")
	if err != nil {
		return err
	}
	med, err := h.service.Get(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMedicationResponse(med)})
}

// Update PATCH /medications/:id.
func (h *MedicationsHandler) Update(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "medication")
	if err != nil {
		return err
	}
	var req dto.MedicationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return validationError(err)
	}
	med, err := h.service.Update(c.UserContext(), actor, id, req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMedicationResponse(med)})
}

// Delete DELETE /medications/:id.
func (h *MedicationsHandler) Delete(c *fiber.Ctx) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "medication")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
