package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio. Los handlers los traducen a códigos HTTP con errors.Is.
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrStoreFailure      = errors.New("fallo del almacenamiento")
)

// InsufficientStockError identifica la cuenta de stock que habría quedado negativa.
type InsufficientStockError struct {
	ProductID   string
	WarehouseID string
	LocationID  *string
	Available   decimal.Decimal
	Requested   decimal.Decimal // delta negativo solicitado, en valor absoluto
}

func (e *InsufficientStockError) Error() string {
	loc := "-"
	if e.LocationID != nil {
		loc = *e.LocationID
	}
	return fmt.Sprintf("stock insuficiente: producto %s en bodega %s/%s (disponible %s, solicitado %s)",
		e.ProductID, e.WarehouseID, loc, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ValidationError describe una entrada rechazada antes de tocar la persistencia.
// Line es el índice de la línea (base 0) o -1 si el error es de cabecera.
type ValidationError struct {
	Line   int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("línea %d: %s: %s", e.Line, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewFieldError crea un ValidationError de cabecera.
func NewFieldError(field, reason string) *ValidationError {
	return &ValidationError{Line: -1, Field: field, Reason: reason}
}

// TransitionError se produce al validar un documento que ya está en estado terminal.
type TransitionError struct {
	DocumentID string
	Kind       string
	From       string
}

func (e *TransitionError) Error() string {
	if e.From == "cancelled" {
		return fmt.Sprintf("no se puede validar el documento cancelado %s #%s", e.Kind, e.DocumentID)
	}
	return fmt.Sprintf("transición inválida: %s #%s ya está en %s", e.Kind, e.DocumentID, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// StoreFailure envuelve un error de infraestructura para que responda a errors.Is(err, ErrStoreFailure)
// sin perder la causa original. Los errores de dominio pasan intactos.
func StoreFailure(err error) error {
	if err == nil || IsDomain(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}

// IsDomain indica si err pertenece a la taxonomía de dominio.
func IsDomain(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidInput, ErrDuplicate, ErrUnauthorized, ErrForbidden,
		ErrConflict, ErrInsufficientStock, ErrInvalidTransition, ErrStoreFailure,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
