package usecase

import (
	"github.com/kiosco-app/ventas-api/internal/application/dto"
	"github.com/kiosco-app/ventas-api/internal/domain/repository"
)

// ReportUseCase reportes de inventario.
type ReportUseCase struct {
	productRepo repository.ProductRepository
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(productRepo repository.ProductRepository) *ReportUseCase {
	return &ReportUseCase{productRepo: productRepo}
}

// LowStock productos activos con stock en o por debajo de su mínimo,
// ordenados del más crítico al menos (stock ascendente).
func (uc *ReportUseCase) LowStock() ([]dto.ProductResponse, error) {
	list, err := uc.productRepo.ListLowStock()
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return items, nil
}
