package handlers

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ezinne-pharmarcy/backend/internal/auth"
	"github.com/ezinne-pharmarcy/backend/internal/domain"
	apperrors "github.com/ezinne-pharmarcy/backend/pkg/util/errorutil"
)

// identity returns the resolved account or ErrUnauthenticated.
func identity(c *fiber.Ctx) (*domain.Account, error) {
	account, ok := auth.IdentityFromContext(c)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	return account, nil
}

// pathID reads the :id parameter. Malformed ids can never match a record.
func pathID(c *fiber.Ctx, resource string) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewNotFound(resource, nil)
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]any, len(fieldErrs))
		for field, fe := range fieldErrs {
			details[field] = fe.Error()
		}
		return apperrors.NewValidationError("invalid payload", details)
	}
	return apperrors.NewValidationError(err.Error(), nil)
}

func pagination(c *fiber.Ctx) (limit, offset int) {
	return c.QueryInt("limit", 50), c.QueryInt("offset", 0)
}
