package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale representa la cabecera de una venta confirmada.
// Total se persiste como campo propio: es autoritativo tras el commit y no
// se recalcula sumando líneas en lecturas posteriores.
type Sale struct {
	ID         string
	CustomerID string // vacío = venta de mostrador
	Total      decimal.Decimal
	CreatedAt  time.Time
}

// SaleLine representa una línea persistida de una venta. Se crea una sola
// vez junto con la cabecera y es inmutable: no hay camino de edición ni
// borrado para líneas de ventas confirmadas.
type SaleLine struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal // precio al momento de la venta
	Subtotal  decimal.Decimal // UnitPrice * Quantity, exacto
}
