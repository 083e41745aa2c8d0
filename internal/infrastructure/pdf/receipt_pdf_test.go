package pdf_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosco-app/ventas-api/internal/application/sales"
	"github.com/kiosco-app/ventas-api/internal/infrastructure/pdf"
)

func TestRender_GeneraPDFValido(t *testing.T) {
	g := pdf.NewMarotoReceiptRenderer("Kiosco Test")
	data := &sales.ReceiptData{
		SaleID:       "11111111-2222-3333-4444-555555555555",
		CustomerName: "Ana Pérez",
		Date:         time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC),
		Lines: []sales.ReceiptLine{
			{ProductName: "Gaseosa 500ml", Quantity: 2, UnitPrice: decimal.RequireFromString("1250.50"), Subtotal: decimal.RequireFromString("2501.00")},
			{ProductName: "Galletitas", Quantity: 3, UnitPrice: decimal.RequireFromString("899.99"), Subtotal: decimal.RequireFromString("2699.97")},
		},
		Total: decimal.RequireFromString("5200.97"),
	}

	out, err := g.Render(data)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "la salida debe ser un PDF")
}

func TestRender_VentaDeMostradorSinCliente(t *testing.T) {
	g := pdf.NewMarotoReceiptRenderer("")
	data := &sales.ReceiptData{
		SaleID: "corto",
		Date:   time.Now(),
		Lines:  []sales.ReceiptLine{{ProductName: "Chicle", Quantity: 1, UnitPrice: decimal.NewFromInt(100), Subtotal: decimal.NewFromInt(100)}},
		Total:  decimal.NewFromInt(100),
	}

	out, err := g.Render(data)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestFormatAmount_FormatoEsAR(t *testing.T) {
	// es-AR: miles con punto, decimales con coma
	assert.Equal(t, "$ 1.234,50", pdf.FormatAmount(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "$ 0,10", pdf.FormatAmount(decimal.RequireFromString("0.10")))
	assert.Equal(t, "$ 1.000.000,00", pdf.FormatAmount(decimal.NewFromInt(1000000)))
}
