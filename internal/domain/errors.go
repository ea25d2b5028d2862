package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
// Usar con errors.Is; los errores estructurados de abajo hacen Unwrap al sentinel correspondiente.
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrValidation             = errors.New("entrada inválida")
	ErrInsufficientInventory  = errors.New("inventario insuficiente")
	ErrInvalidStateTransition = errors.New("transición de estado inválida")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrForbidden              = errors.New("acceso denegado")
	ErrDuplicate              = errors.New("registro duplicado")
)

// ValidationError detalla qué campo de la entrada es inválido.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validación: " + e.Message
	}
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError construye un ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientInventoryError lleva el faltante numérico para que el caller pueda reaccionar
// (entrega parcial, backorder, mensaje al usuario).
type InsufficientInventoryError struct {
	WarehouseID string
	ProductID   string
	Requested   decimal.Decimal
	Available   decimal.Decimal
	Shortage    decimal.Decimal
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("inventario insuficiente: bodega %s producto %s: solicitado %s, disponible %s, faltante %s",
		e.WarehouseID, e.ProductID, e.Requested.String(), e.Available.String(), e.Shortage.String())
}

func (e *InsufficientInventoryError) Unwrap() error { return ErrInsufficientInventory }

// NewInsufficientInventory calcula el faltante como max(0, requested - available).
func NewInsufficientInventory(warehouseID, productID string, requested, available decimal.Decimal) *InsufficientInventoryError {
	shortage := requested.Sub(available)
	if shortage.IsNegative() {
		shortage = decimal.Zero
	}
	return &InsufficientInventoryError{
		WarehouseID: warehouseID,
		ProductID:   productID,
		Requested:   requested,
		Available:   available,
		Shortage:    shortage,
	}
}

// InvalidStateTransitionError indica que el documento no está en un estado que permita la acción.
type InvalidStateTransitionError struct {
	Document string // stock_transaction | stock_transfer
	ID       string
	From     string
	Action   string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("transición inválida: no se puede %s %s %s en estado %s", e.Action, e.Document, e.ID, e.From)
}

func (e *InvalidStateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// NotFoundError identifica el recurso inexistente.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound construye un NotFoundError.
func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ShortageOf devuelve el faltante si err es (o envuelve) un InsufficientInventoryError.
func ShortageOf(err error) (decimal.Decimal, bool) {
	var ie *InsufficientInventoryError
	if errors.As(err, &ie) {
		return ie.Shortage, true
	}
	return decimal.Zero, false
}
