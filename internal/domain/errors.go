package domain

import (
	"context"
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
// Se envuelven con fmt.Errorf("%w: ...") y se inspeccionan con errors.Is.
var (
	ErrValidation           = errors.New("entrada inválida")
	ErrItemNotFound         = errors.New("ítem de catálogo no encontrado")
	ErrMovementNotFound     = errors.New("movimiento no encontrado")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrNothingToCommit      = errors.New("la revisión no dejó ítems aceptados")
	ErrTotalsMismatch       = errors.New("los totales del documento no cuadran")
	ErrCommitPartialFailure = errors.New("una o más líneas fallaron al confirmar")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrInvalidTransition    = errors.New("transición de estado inválida")
	ErrCanceled             = errors.New("operación cancelada")

	// ErrItemInactive es una forma de ErrValidation: el ítem existe pero está desactivado.
	ErrItemInactive = fmt.Errorf("%w: ítem de catálogo inactivo", ErrValidation)
)

// Códigos estables expuestos en reportes, respuestas HTTP y CLI.
const (
	CodeValidation        = "VALIDATION"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeItemNotFound      = "ITEM_NOT_FOUND"
	CodeMovementNotFound  = "MOVEMENT_NOT_FOUND"
	CodeNothingToCommit   = "NOTHING_TO_COMMIT"
	CodePartialFailure    = "COMMIT_PARTIAL_FAILURE"
	CodeTotalsMismatch    = "TOTALS_MISMATCH"
	CodeDuplicate         = "DUPLICATE"
	CodeInvalidState      = "INVALID_STATE"
	CodeCanceled          = "CANCELED"
	CodeTimeout           = "TIMEOUT"
	CodeInternal          = "INTERNAL"
)

// Code traduce un error a su código estable. nil devuelve "".
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrInsufficientStock):
		return CodeInsufficientStock
	case errors.Is(err, ErrItemNotFound):
		return CodeItemNotFound
	case errors.Is(err, ErrMovementNotFound):
		return CodeMovementNotFound
	case errors.Is(err, ErrNothingToCommit):
		return CodeNothingToCommit
	case errors.Is(err, ErrCommitPartialFailure):
		return CodePartialFailure
	case errors.Is(err, ErrTotalsMismatch):
		return CodeTotalsMismatch
	case errors.Is(err, ErrDuplicate):
		return CodeDuplicate
	case errors.Is(err, ErrInvalidTransition):
		return CodeInvalidState
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, ErrCanceled), errors.Is(err, context.Canceled):
		return CodeCanceled
	default:
		return CodeInternal
	}
}
