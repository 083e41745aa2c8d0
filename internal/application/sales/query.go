package sales

import (
	"github.com/kiosco-app/ventas-api/internal/application/dto"
	"github.com/kiosco-app/ventas-api/internal/domain"
	"github.com/kiosco-app/ventas-api/internal/domain/repository"
)

// SaleQueryUseCase lecturas de ventas confirmadas: detalle con líneas y
// listado de cabeceras. Solo consume el total persistido, nunca lo recalcula.
type SaleQueryUseCase struct {
	saleRepo     repository.SaleRepository
	customerRepo repository.CustomerRepository
}

// NewSaleQueryUseCase construye el caso de uso.
func NewSaleQueryUseCase(saleRepo repository.SaleRepository, customerRepo repository.CustomerRepository) *SaleQueryUseCase {
	return &SaleQueryUseCase{saleRepo: saleRepo, customerRepo: customerRepo}
}

// GetSale devuelve la venta con sus líneas (nombre de producto resuelto) y
// el cliente si existe, o domain.ErrNotFound.
func (uc *SaleQueryUseCase) GetSale(id string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	lines, err := uc.saleRepo.GetLinesBySaleID(id)
	if err != nil {
		return nil, err
	}
	customerName := ""
	if sale.CustomerID != "" {
		customer, err := uc.customerRepo.GetByID(sale.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer != nil {
			customerName = customer.DisplayName()
		}
	}
	return toSaleResponse(sale, customerName, lines), nil
}

// ListSales devuelve cabeceras con cliente resuelto, más recientes primero
// (sin líneas, para vistas de resumen).
func (uc *SaleQueryUseCase) ListSales(limit, offset int) ([]dto.SaleSummaryResponse, error) {
	list, err := uc.saleRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleSummaryResponse, 0, len(list))
	for _, s := range list {
		items = append(items, dto.SaleSummaryResponse{
			ID:           s.Sale.ID,
			CustomerID:   s.Sale.CustomerID,
			CustomerName: s.CustomerName,
			Total:        s.Sale.Total,
			CreatedAt:    s.Sale.CreatedAt,
		})
	}
	return items, nil
}
