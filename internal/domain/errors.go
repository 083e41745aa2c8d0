package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")

	// Fallas de negocio de la venta. Los errores tipados de abajo hacen
	// Unwrap a estos sentinelas para que los handlers usen errors.Is.
	ErrEmptyOrder        = errors.New("la venta debe incluir al menos un item")
	ErrInvalidQuantity   = errors.New("cantidad inválida")
	ErrUnknownProduct    = errors.New("uno o más productos no existen")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// ErrDeliveryFailed: el comprobante no pudo enviarse. Nunca revierte
	// una venta ya confirmada; se informa por separado.
	ErrDeliveryFailed = errors.New("no se pudo enviar el comprobante")

	// ErrStoreUnavailable: falla transitoria de conexión o timeout contra la
	// base. La operación abortó sin aplicar nada; el caller puede reintentar.
	ErrStoreUnavailable = errors.New("base de datos no disponible")
)

// InvalidQuantityError indica qué producto traía una cantidad no positiva.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("cantidad inválida para el producto %s", e.ProductID)
}

func (e *InvalidQuantityError) Unwrap() error { return ErrInvalidQuantity }

// UnknownProductError lista los ids del pedido que no resolvieron a un producto.
type UnknownProductError struct {
	ProductIDs []string
}

func (e *UnknownProductError) Error() string {
	if len(e.ProductIDs) == 0 {
		return ErrUnknownProduct.Error()
	}
	return fmt.Sprintf("productos inexistentes: %s", strings.Join(e.ProductIDs, ", "))
}

func (e *UnknownProductError) Unwrap() error { return ErrUnknownProduct }

// InsufficientStockError informa el producto sin stock y el disponible al momento del chequeo.
type InsufficientStockError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s: solicitado %d, disponible %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
