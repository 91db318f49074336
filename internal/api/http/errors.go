package http

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ezinne-pharmarcy/backend/internal/auth"
	"github.com/ezinne-pharmarcy/backend/internal/repository"
	apperrors "github.com/ezinne-pharmarcy/backend/pkg/util/errorutil"
)

// translateError maps internal error kinds to stable client-facing errors.
// Verification and store details never leave this function.
func translateError(err error) *apperrors.DomainError {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var fiberErr *fiber.Error
	switch {
	case errors.Is(err, auth.ErrSessionConflict):
		return apperrors.ToDomainError(apperrors.NewSessionConflict(err))
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidToken):
		return apperrors.ToDomainError(apperrors.NewUnauthenticated(err))
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrAccountNotFound):
		return apperrors.ToDomainError(apperrors.NewInvalidCredentials(err))
	case errors.Is(err, auth.ErrForbidden):
		return apperrors.ToDomainError(apperrors.NewForbidden("you don't have permission to access this resource"))
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.ToDomainError(apperrors.NewNotFound("resource", nil))
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.ToDomainError(apperrors.NewConflict("resource already exists", nil))
	case errors.As(err, &fiberErr):
		return fiberError(fiberErr)
	}
	return apperrors.ToDomainError(err)
}

func fiberError(err *fiber.Error) *apperrors.DomainError {
	switch err.Code {
	case http.StatusNotFound:
		return apperrors.NewDomainError("NOT_FOUND", "route not found", err.Code, nil)
	case http.StatusMethodNotAllowed:
		return apperrors.NewDomainError("METHOD_NOT_ALLOWED", err.Message, err.Code, nil)
	case http.StatusRequestEntityTooLarge:
		return apperrors.NewDomainError("PAYLOAD_TOO_LARGE", err.Message, err.Code, nil)
	}
	if err.Code >= 400 && err.Code < 500 {
		return apperrors.NewDomainError("BAD_REQUEST", err.Message, err.Code, nil)
	}
	return apperrors.ToDomainError(apperrors.NewInternalError(err))
}
