package repository

import (
	"github.com/shopspring/decimal"

	"github.com/kiosco-app/ventas-api/internal/domain/entity"
)

// SaleWithCustomer cabecera de venta con el cliente resuelto (para listados).
type SaleWithCustomer struct {
	Sale         entity.Sale
	CustomerName string // vacío si es venta de mostrador
}

// SaleLineWithProduct línea de venta con el nombre actual del producto
// (el precio ya viene congelado en la línea).
type SaleLineWithProduct struct {
	Line        entity.SaleLine
	ProductName string
}

// SaleRepository define el puerto de persistencia para Sale y sus líneas.
// Las líneas se crean junto con la cabecera y no tienen camino de edición.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateLine(line *entity.SaleLine) error
	// UpdateTotal fija el total definitivo de la cabecera (se inserta en 0 y
	// se actualiza como último paso de la transacción).
	UpdateTotal(saleID string, total decimal.Decimal) error
	GetByID(id string) (*entity.Sale, error)
	GetLinesBySaleID(saleID string) ([]*SaleLineWithProduct, error)
	// List cabeceras con cliente resuelto, más recientes primero.
	List(limit, offset int) ([]*SaleWithCustomer, error)
}
