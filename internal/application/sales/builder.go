package sales

import (
	"github.com/shopspring/decimal"

	"github.com/kiosco-app/ventas-api/internal/domain"
	"github.com/kiosco-app/ventas-api/internal/domain/entity"
)

// LineRequest línea del pedido entrante: producto y cantidad solicitada.
type LineRequest struct {
	ProductID string
	Quantity  int64
}

// PlannedLine línea resuelta por el Builder. UnitPrice queda congelado al
// precio del producto al momento del armado; un cambio de precio posterior
// no afecta la venta.
type PlannedLine struct {
	ProductID   string
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal // UnitPrice * Quantity, aritmética exacta
}

// SalePlan resultado del armado: líneas resueltas en el orden del pedido y
// total exacto. Lo consume el coordinador de la transacción.
type SalePlan struct {
	CustomerID string
	Lines      []PlannedLine
	Total      decimal.Decimal
}

// Builder valida un pedido contra un snapshot de productos y calcula
// subtotales y total con aritmética decimal exacta. Solo lee: nunca muta el
// catálogo. Las reglas se evalúan en orden y cortan en la primera violación.
type Builder struct{}

// Build arma el plan de venta. El snapshot products es una foto única del
// catálogo: ids duplicados en el pedido NO se combinan, cada línea se valida
// por separado contra ese mismo snapshot (el decremento condicional del
// commit vuelve a validar de forma acumulativa, así que no hay sobreventa).
func (Builder) Build(customerID string, items []LineRequest, products map[string]*entity.Product) (*SalePlan, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, &domain.InvalidQuantityError{ProductID: item.ProductID}
		}
	}

	var missing []string
	for _, item := range items {
		if _, ok := products[item.ProductID]; !ok {
			missing = append(missing, item.ProductID)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.UnknownProductError{ProductIDs: missing}
	}

	plan := &SalePlan{
		CustomerID: customerID,
		Lines:      make([]PlannedLine, 0, len(items)),
		Total:      decimal.Zero,
	}
	for _, item := range items {
		product := products[item.ProductID]
		if product.Stock < item.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: product.Stock,
			}
		}
		subtotal := product.Price.Mul(decimal.NewFromInt(item.Quantity))
		plan.Lines = append(plan.Lines, PlannedLine{
			ProductID:   item.ProductID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			Subtotal:    subtotal,
		})
		plan.Total = plan.Total.Add(subtotal)
	}

	return plan, nil
}
