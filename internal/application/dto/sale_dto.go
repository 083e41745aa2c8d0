package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest body para POST /api/sales.
// customer_id es opcional (venta de mostrador). send_receipt pide enviar el
// comprobante por email al cliente tras confirmar la venta.
type CreateSaleRequest struct {
	CustomerID  string            `json:"customer_id,omitempty"`
	Items       []SaleItemRequest `json:"items"`
	SendReceipt bool              `json:"send_receipt,omitempty"`
}

// SaleItemRequest línea del pedido: producto y cantidad solicitada.
type SaleItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// SaleResponse venta completa con líneas para POST /api/sales y GET /api/sales/:id.
type SaleResponse struct {
	ID           string             `json:"id"`
	CustomerID   string             `json:"customer_id,omitempty"`
	CustomerName string             `json:"customer_name,omitempty"`
	Total        decimal.Decimal    `json:"total"`
	CreatedAt    time.Time          `json:"created_at"`
	Lines        []SaleLineResponse `json:"lines"`
	// ReceiptError se informa cuando la venta confirmó pero el envío del
	// comprobante falló; nunca implica rollback.
	ReceiptError string `json:"receipt_error,omitempty"`
}

// SaleLineResponse línea persistida con el nombre del producto resuelto.
type SaleLineResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleSummaryResponse cabecera para GET /api/sales (sin líneas).
type SaleSummaryResponse struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customer_id,omitempty"`
	CustomerName string          `json:"customer_name,omitempty"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
}
