package sales_test

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosco-app/ventas-api/internal/application/sales"
	"github.com/kiosco-app/ventas-api/internal/domain"
	"github.com/kiosco-app/ventas-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func producto(id, name, price string, stock int64) *entity.Product {
	return &entity.Product{
		ID:    id,
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
}

func snapshot(products ...*entity.Product) map[string]*entity.Product {
	m := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}

// ──────────────────────────────────────────────────────────────────────────────
// Validaciones del pedido
// ──────────────────────────────────────────────────────────────────────────────

func TestBuild_PedidoVacio(t *testing.T) {
	var b sales.Builder
	_, err := b.Build("", nil, snapshot())
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)

	_, err = b.Build("", []sales.LineRequest{}, snapshot())
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
}

func TestBuild_CantidadInvalida(t *testing.T) {
	var b sales.Builder
	snap := snapshot(producto("p1", "Coca 500ml", "1200.50", 10))

	for _, qty := range []int64{0, -1, -100} {
		_, err := b.Build("", []sales.LineRequest{{ProductID: "p1", Quantity: qty}}, snap)
		require.ErrorIs(t, err, domain.ErrInvalidQuantity, "cantidad %d debe rechazarse", qty)

		var iq *domain.InvalidQuantityError
		require.ErrorAs(t, err, &iq)
		assert.Equal(t, "p1", iq.ProductID)
	}
}

func TestBuild_ProductoInexistente(t *testing.T) {
	var b sales.Builder
	snap := snapshot(producto("p1", "Coca 500ml", "1200.50", 10))

	_, err := b.Build("", []sales.LineRequest{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "fantasma-1", Quantity: 2},
		{ProductID: "fantasma-2", Quantity: 3},
	}, snap)
	require.ErrorIs(t, err, domain.ErrUnknownProduct)

	var up *domain.UnknownProductError
	require.ErrorAs(t, err, &up)
	assert.ElementsMatch(t, []string{"fantasma-1", "fantasma-2"}, up.ProductIDs,
		"deben reportarse todos los ids inexistentes, no solo el primero")
}

func TestBuild_CantidadInvalidaGanaAProductoInexistente(t *testing.T) {
	// La cantidad se valida antes que la existencia: un pedido con ambas
	// violaciones reporta la cantidad.
	var b sales.Builder
	_, err := b.Build("", []sales.LineRequest{
		{ProductID: "fantasma", Quantity: 0},
	}, snapshot())
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestBuild_StockInsuficiente(t *testing.T) {
	var b sales.Builder
	snap := snapshot(producto("p1", "Alfajor", "950", 3))

	_, err := b.Build("", []sales.LineRequest{{ProductID: "p1", Quantity: 5}}, snap)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var is *domain.InsufficientStockError
	require.ErrorAs(t, err, &is)
	assert.Equal(t, "p1", is.ProductID)
	assert.Equal(t, int64(5), is.Requested)
	assert.Equal(t, int64(3), is.Available)
}

func TestBuild_StockJustoAlcanza(t *testing.T) {
	var b sales.Builder
	snap := snapshot(producto("p1", "Alfajor", "950", 5))

	plan, err := b.Build("", []sales.LineRequest{{ProductID: "p1", Quantity: 5}}, snap)
	require.NoError(t, err, "pedir exactamente el stock disponible es válido")
	assert.True(t, plan.Total.Equal(decimal.RequireFromString("4750")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Duplicados: cada línea se valida por separado contra el mismo snapshot
// ──────────────────────────────────────────────────────────────────────────────

func TestBuild_DuplicadosNoSeCombinan(t *testing.T) {
	var b sales.Builder
	snap := snapshot(producto("p1", "Chicle", "100", 5))

	// 3 + 3 = 6 > 5, pero cada línea por separado pasa contra el snapshot.
	// La sobreventa la impide el decremento condicional al confirmar.
	plan, err := b.Build("", []sales.LineRequest{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p1", Quantity: 3},
	}, snap)
	require.NoError(t, err)
	require.Len(t, plan.Lines, 2, "los duplicados quedan como líneas separadas")
	assert.True(t, plan.Total.Equal(decimal.RequireFromString("600")))
}

func TestBuild_DuplicadoIndividualExcedido(t *testing.T) {
	var b sales.Builder
	snap := snapshot(producto("p1", "Chicle", "100", 5))

	_, err := b.Build("", []sales.LineRequest{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p1", Quantity: 6}, // esta línea sola excede el stock
	}, snap)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Aritmética decimal exacta
// ──────────────────────────────────────────────────────────────────────────────

func TestBuild_SubtotalesYTotalExactos(t *testing.T) {
	var b sales.Builder
	snap := snapshot(
		producto("p1", "Gaseosa", "1250.50", 100),
		producto("p2", "Galletitas", "899.99", 100),
		producto("p3", "Caramelo", "0.10", 1000),
	)

	plan, err := b.Build("cliente-1", []sales.LineRequest{
		{ProductID: "p1", Quantity: 3},
		{ProductID: "p2", Quantity: 2},
		{ProductID: "p3", Quantity: 7},
	}, snap)
	require.NoError(t, err)

	assert.Equal(t, "cliente-1", plan.CustomerID)
	require.Len(t, plan.Lines, 3)
	assert.True(t, plan.Lines[0].Subtotal.Equal(decimal.RequireFromString("3751.50")))
	assert.True(t, plan.Lines[1].Subtotal.Equal(decimal.RequireFromString("1799.98")))
	assert.True(t, plan.Lines[2].Subtotal.Equal(decimal.RequireFromString("0.70")))
	// 3751.50 + 1799.98 + 0.70 — con float64 este tipo de suma acumula error
	assert.True(t, plan.Total.Equal(decimal.RequireFromString("5552.18")),
		"total esperado 5552.18, obtenido %s", plan.Total)
}

func TestBuild_PrecioCongeladoEnLinea(t *testing.T) {
	var b sales.Builder
	p := producto("p1", "Yerba", "5400.00", 10)
	plan, err := b.Build("", []sales.LineRequest{{ProductID: "p1", Quantity: 1}}, snapshot(p))
	require.NoError(t, err)

	// Cambiar el precio del producto después del armado no afecta el plan.
	p.Price = decimal.RequireFromString("9999.99")
	assert.True(t, plan.Lines[0].UnitPrice.Equal(decimal.RequireFromString("5400.00")))
	assert.True(t, plan.Total.Equal(decimal.RequireFromString("5400.00")))
}

// Propiedad: el total es exactamente la suma de los subtotales y no depende
// del orden de las líneas, con precios y cantidades aleatorios.
func TestBuild_TotalEsSumaExactaDeSubtotales(t *testing.T) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var b sales.Builder

	for iter := 0; iter < 50; iter++ {
		n := 1 + rng.Intn(20)
		items := make([]sales.LineRequest, 0, n)
		products := make([]*entity.Product, 0, n)
		for i := 0; i < n; i++ {
			id := fmt.Sprintf("p%d", i)
			// precios con centavos "incómodos" para float: 0.01 .. 9999.99
			price := fmt.Sprintf("%d.%02d", rng.Intn(10000), rng.Intn(100))
			qty := int64(1 + rng.Intn(50))
			products = append(products, producto(id, "Producto "+id, price, qty+int64(rng.Intn(10))))
			items = append(items, sales.LineRequest{ProductID: id, Quantity: qty})
		}

		plan, err := b.Build("", items, snapshot(products...))
		require.NoError(t, err)

		sum := decimal.Zero
		var cents int64
		for _, l := range plan.Lines {
			require.True(t, l.Subtotal.Equal(l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))))
			sum = sum.Add(l.Subtotal)
			// contraste en aritmética entera exacta: centavos * cantidad
			cents += l.UnitPrice.Mul(decimal.NewFromInt(100)).IntPart() * l.Quantity
		}
		require.True(t, plan.Total.Equal(sum), "total %s != suma de subtotales %s", plan.Total, sum)
		require.Equal(t, cents, plan.Total.Mul(decimal.NewFromInt(100)).IntPart(),
			"el total decimal debe coincidir con el cálculo entero en centavos")

		// Permutar las líneas no cambia el total.
		perm := rng.Perm(len(items))
		shuffled := make([]sales.LineRequest, len(items))
		for i, j := range perm {
			shuffled[i] = items[j]
		}
		planShuffled, err := b.Build("", shuffled, snapshot(products...))
		require.NoError(t, err)
		require.True(t, plan.Total.Equal(planShuffled.Total),
			"el total no debe depender del orden de las líneas")
	}
}

func TestBuild_LineasEnOrdenDelPedido(t *testing.T) {
	var b sales.Builder
	snap := snapshot(
		producto("a", "A", "1", 10),
		producto("b", "B", "2", 10),
		producto("c", "C", "3", 10),
	)
	plan, err := b.Build("", []sales.LineRequest{
		{ProductID: "c", Quantity: 1},
		{ProductID: "a", Quantity: 1},
		{ProductID: "b", Quantity: 1},
	}, snap)
	require.NoError(t, err)
	require.Len(t, plan.Lines, 3)
	assert.Equal(t, "c", plan.Lines[0].ProductID)
	assert.Equal(t, "a", plan.Lines[1].ProductID)
	assert.Equal(t, "b", plan.Lines[2].ProductID)
}

// El builder no muta el snapshot: armar un plan no descuenta stock.
func TestBuild_NoMutaElSnapshot(t *testing.T) {
	var b sales.Builder
	p := producto("p1", "Fósforos", "300", 8)
	_, err := b.Build("", []sales.LineRequest{{ProductID: "p1", Quantity: 5}}, snapshot(p))
	require.NoError(t, err)
	assert.Equal(t, int64(8), p.Stock, "el armado del plan es solo lectura")
}

// Sanidad del unwrap de errores tipados.
func TestErroresTipados_Unwrap(t *testing.T) {
	assert.True(t, errors.Is(&domain.InvalidQuantityError{ProductID: "x"}, domain.ErrInvalidQuantity))
	assert.True(t, errors.Is(&domain.UnknownProductError{ProductIDs: []string{"x"}}, domain.ErrUnknownProduct))
	assert.True(t, errors.Is(&domain.InsufficientStockError{ProductID: "x"}, domain.ErrInsufficientStock))
}
