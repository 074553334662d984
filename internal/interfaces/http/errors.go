package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-reconciliation/internal/application/dto"
	"github.com/jhoicas/stock-reconciliation/internal/domain"
)

// statusByCode status HTTP por código de dominio. Lo no listado es 500.
var statusByCode = map[string]int{
	domain.CodeValidation:        fiber.StatusBadRequest,
	domain.CodeItemNotFound:      fiber.StatusNotFound,
	domain.CodeMovementNotFound:  fiber.StatusNotFound,
	domain.CodeInsufficientStock: fiber.StatusConflict,
	domain.CodeDuplicate:         fiber.StatusConflict,
	domain.CodeInvalidState:      fiber.StatusConflict,
	domain.CodeNothingToCommit:   fiber.StatusUnprocessableEntity,
	domain.CodePartialFailure:    fiber.StatusMultiStatus,
	domain.CodeTimeout:           fiber.StatusGatewayTimeout,
	domain.CodeCanceled:          fiber.StatusRequestTimeout,
}

// StatusFor traduce un error a su status HTTP.
func StatusFor(err error) int {
	if st, ok := statusByCode[domain.Code(err)]; ok {
		return st
	}
	return fiber.StatusInternalServerError
}

// writeError responde con dto.ErrorResponse usando el código estable del error.
func writeError(c *fiber.Ctx, err error) error {
	return c.Status(StatusFor(err)).JSON(dto.ErrorResponse{Code: domain.Code(err), Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
