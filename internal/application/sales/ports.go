package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kiosco-app/ventas-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Commit si fn devuelve nil, Rollback si no:
// la venta (cabecera, líneas y descuentos de stock) es todo-o-nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// Notifier envía un comprobante ya renderizado a una dirección de correo.
// Una falla acá nunca revierte la venta; se reporta por separado.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string, receiptPDF []byte) error
}

// ReceiptRenderer genera el comprobante (ticket PDF) de una venta confirmada.
type ReceiptRenderer interface {
	Render(sale *ReceiptData) ([]byte, error)
}

// ReceiptData datos ya resueltos para renderizar un comprobante.
type ReceiptData struct {
	SaleID       string
	CustomerName string // vacío = consumidor final
	Date         time.Time
	Lines        []ReceiptLine
	Total        decimal.Decimal
}

// ReceiptLine línea del comprobante.
type ReceiptLine struct {
	ProductName string
	Quantity    int64
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}
