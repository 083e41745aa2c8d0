package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario.
// Stock es un entero >= 0; toda venta lo descuenta con un decremento
// condicional en la base (nunca read-modify-write en la aplicación).
type Product struct {
	ID        string
	Name      string
	Brand     string // opcional
	Category  string // opcional
	Price     decimal.Decimal // precio de venta (exacto, NUMERIC en DB)
	Stock     int64
	MinStock  int64 // umbral para el reporte de stock bajo
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
