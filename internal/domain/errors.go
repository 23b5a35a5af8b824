package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind clasifica los errores de dominio según cómo debe reaccionar el llamador.
type Kind string

const (
	KindValidation   Kind = "validation"   // entrada inválida, sin efecto parcial
	KindAdmission    Kind = "admission"    // reglas de admisión del checkout
	KindNotFound     Kind = "not_found"    // cuenta, pedido o producto inexistente
	KindState        Kind = "state"        // transición no permitida
	KindTransient    Kind = "transient"    // timeout o conflicto de escritura, reintentable
	KindUnauthorized Kind = "unauthorized" // sesión ausente o inválida
	KindForbidden    Kind = "forbidden"    // rol sin permiso
	KindInternal     Kind = "internal"     // inesperado
)

// Error es un error de dominio con tipo y código estable (se expone en la API).
type Error struct {
	Kind Kind
	Code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, msg: msg}
}

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrInvalidInput           = newError(KindValidation, "VALIDATION", "entrada inválida")
	ErrEmptyCart              = newError(KindValidation, "EMPTY_CART", "el carrito está vacío")
	ErrInvalidQuantity        = newError(KindValidation, "INVALID_QUANTITY", "la cantidad debe estar entre 1 y 999")
	ErrInvalidStatus          = newError(KindValidation, "INVALID_STATUS", "estado de pedido desconocido")
	ErrMissingIdempotencyKey  = newError(KindValidation, "MISSING_IDEMPOTENCY_KEY", "se requiere una llave de idempotencia")
	ErrBlackoutDay            = newError(KindAdmission, "BLACKOUT_DAY", "no se reciben pedidos el día de hoy")
	ErrPendingOrderExists     = newError(KindAdmission, "PENDING_ORDER_EXISTS", "ya existe un pedido pendiente esta semana")
	ErrQuotaExceeded          = newError(KindAdmission, "QUOTA_EXCEEDED", "la compra supera el límite semanal")
	ErrAccountInactive        = newError(KindForbidden, "ACCOUNT_INACTIVE", "la cuenta está inactiva")
	ErrNotFound               = newError(KindNotFound, "NOT_FOUND", "recurso no encontrado")
	ErrAccountNotFound        = newError(KindNotFound, "ACCOUNT_NOT_FOUND", "empleado no encontrado")
	ErrOrderNotFound          = newError(KindNotFound, "ORDER_NOT_FOUND", "pedido no encontrado")
	ErrProductNotFound        = newError(KindNotFound, "PRODUCT_NOT_FOUND", "producto no encontrado")
	ErrCartItemNotFound       = newError(KindNotFound, "CART_ITEM_NOT_FOUND", "producto no encontrado en el carrito")
	ErrInvalidTransition      = newError(KindState, "INVALID_TRANSITION", "transición de estado no permitida")
	ErrAlreadyDelivered       = newError(KindState, "ALREADY_DELIVERED", "no se puede cancelar un pedido ya entregado")
	ErrTransient              = newError(KindTransient, "TRANSIENT", "conflicto temporal, intente de nuevo")
	ErrConflict               = newError(KindTransient, "CONFLICT", "conflicto con el estado actual")
	ErrUnauthorized           = newError(KindUnauthorized, "UNAUTHORIZED", "no autorizado")
	ErrForbidden              = newError(KindForbidden, "FORBIDDEN", "acceso denegado")
)

// QuotaExceededError lleva el gasto actual y la cuota para que el llamador pueda corregir el pedido.
type QuotaExceededError struct {
	Spent     decimal.Decimal
	Quota     decimal.Decimal
	Attempted decimal.Decimal
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("con esta compra (%s) se supera el límite semanal de %s; gastado esta semana: %s",
		e.Attempted.StringFixed(2), e.Quota.StringFixed(2), e.Spent.StringFixed(2))
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }

// KindOf devuelve la categoría del error. Los timeouts de contexto son transitorios.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransient
	}
	return KindInternal
}

// CodeOf devuelve el código estable del error (INTERNAL si no es de dominio).
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	if KindOf(err) == KindTransient {
		return ErrTransient.Code
	}
	return "INTERNAL"
}

// IsRetryable indica si el llamador puede reintentar con una nueva llave/transacción.
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransient
}
