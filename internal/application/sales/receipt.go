package sales

import (
	"github.com/kiosco-app/ventas-api/internal/application/dto"
)

// ReceiptUseCase genera el ticket PDF de una venta ya confirmada
// (GET /api/sales/:id/receipt).
type ReceiptUseCase struct {
	query    *SaleQueryUseCase
	renderer ReceiptRenderer
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(query *SaleQueryUseCase, renderer ReceiptRenderer) *ReceiptUseCase {
	return &ReceiptUseCase{query: query, renderer: renderer}
}

// GetReceiptPDF relee la venta confirmada y devuelve los bytes del PDF.
func (uc *ReceiptUseCase) GetReceiptPDF(saleID string) ([]byte, error) {
	sale, err := uc.query.GetSale(saleID)
	if err != nil {
		return nil, err
	}
	return uc.renderer.Render(receiptDataFrom(sale))
}

func receiptDataFrom(sale *dto.SaleResponse) *ReceiptData {
	data := &ReceiptData{
		SaleID:       sale.ID,
		CustomerName: sale.CustomerName,
		Date:         sale.CreatedAt,
		Total:        sale.Total,
	}
	for _, l := range sale.Lines {
		data.Lines = append(data.Lines, ReceiptLine{
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Subtotal:    l.Subtotal,
		})
	}
	return data
}
