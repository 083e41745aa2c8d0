package sales_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosco-app/ventas-api/internal/application/dto"
	"github.com/kiosco-app/ventas-api/internal/application/sales"
	"github.com/kiosco-app/ventas-api/internal/domain"
	"github.com/kiosco-app/ventas-api/internal/domain/entity"
	"github.com/kiosco-app/ventas-api/internal/domain/repository"
	"github.com/kiosco-app/ventas-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: un memStore compartido con semántica transaccional real.
// El TxRunner toma el lock por toda la transacción y restaura un snapshot si
// fn falla, igual que un Rollback: o se aplica todo o no se aplica nada.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	products  map[string]entity.Product
	customers map[string]entity.Customer
	sales     map[string]entity.Sale
	lines     []entity.SaleLine
}

func newMemStore() *memStore {
	return &memStore{
		products:  map[string]entity.Product{},
		customers: map[string]entity.Customer{},
		sales:     map[string]entity.Sale{},
	}
}

func (s *memStore) addProduct(p entity.Product)   { s.products[p.ID] = p }
func (s *memStore) addCustomer(c entity.Customer) { s.customers[c.ID] = c }

func (s *memStore) snapshot() *memStore {
	cp := newMemStore()
	for k, v := range s.products {
		cp.products[k] = v
	}
	for k, v := range s.customers {
		cp.customers[k] = v
	}
	for k, v := range s.sales {
		cp.sales[k] = v
	}
	cp.lines = append([]entity.SaleLine(nil), s.lines...)
	return cp
}

func (s *memStore) restore(snap *memStore) {
	s.products = snap.products
	s.customers = snap.customers
	s.sales = snap.sales
	s.lines = snap.lines
}

// fakeProductRepo opera sobre el memStore. Con locking=false se usa dentro de
// una transacción (el TxRunner ya sostiene el lock).
type fakeProductRepo struct {
	store   *memStore
	locking bool
}

func (r *fakeProductRepo) lock() func() {
	if !r.locking {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *fakeProductRepo) Create(p *entity.Product) error {
	defer r.lock()()
	r.store.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	defer r.lock()()
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakeProductRepo) GetByIDs(ids []string) (map[string]*entity.Product, error) {
	defer r.lock()()
	result := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.store.products[id]; ok {
			cp := p
			result[id] = &cp
		}
	}
	return result, nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	defer r.lock()()
	if _, ok := r.store.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.store.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	defer r.lock()()
	var list []*entity.Product
	for _, p := range r.store.products {
		cp := p
		list = append(list, &cp)
	}
	return list, nil
}

func (r *fakeProductRepo) ListLowStock() ([]*entity.Product, error) {
	defer r.lock()()
	var list []*entity.Product
	for _, p := range r.store.products {
		if p.Active && p.Stock <= p.MinStock {
			cp := p
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Stock < list[j].Stock })
	return list, nil
}

func (r *fakeProductRepo) DecrementStockIfAvailable(productID string, quantity int64) error {
	defer r.lock()()
	p, ok := r.store.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Stock < quantity {
		return &domain.InsufficientStockError{ProductID: productID, Requested: quantity, Available: p.Stock}
	}
	p.Stock -= quantity
	r.store.products[productID] = p
	return nil
}

func (r *fakeProductRepo) Delete(id string) error {
	defer r.lock()()
	if _, ok := r.store.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.products, id)
	return nil
}

type fakeCustomerRepo struct {
	store *memStore
}

func (r *fakeCustomerRepo) Create(c *entity.Customer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.customers[c.ID] = *c
	return nil
}

func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *fakeCustomerRepo) Update(c *entity.Customer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.customers[c.ID]; !ok {
		return domain.ErrNotFound
	}
	r.store.customers[c.ID] = *c
	return nil
}

func (r *fakeCustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	return nil, nil
}

func (r *fakeCustomerRepo) Delete(id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.customers, id)
	return nil
}

// fakeSaleRepo con falla inyectable en UpdateTotal para probar el rollback.
type fakeSaleRepo struct {
	store           *memStore
	locking         bool
	failUpdateTotal error
}

func (r *fakeSaleRepo) lock() func() {
	if !r.locking {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *fakeSaleRepo) Create(sale *entity.Sale) error {
	defer r.lock()()
	s := *sale
	s.Total = decimal.Zero
	r.store.sales[s.ID] = s
	return nil
}

func (r *fakeSaleRepo) CreateLine(line *entity.SaleLine) error {
	defer r.lock()()
	r.store.lines = append(r.store.lines, *line)
	return nil
}

func (r *fakeSaleRepo) UpdateTotal(saleID string, total decimal.Decimal) error {
	if r.failUpdateTotal != nil {
		return r.failUpdateTotal
	}
	defer r.lock()()
	s, ok := r.store.sales[saleID]
	if !ok {
		return domain.ErrNotFound
	}
	s.Total = total
	r.store.sales[saleID] = s
	return nil
}

func (r *fakeSaleRepo) GetByID(id string) (*entity.Sale, error) {
	defer r.lock()()
	s, ok := r.store.sales[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *fakeSaleRepo) GetLinesBySaleID(saleID string) ([]*repository.SaleLineWithProduct, error) {
	defer r.lock()()
	var list []*repository.SaleLineWithProduct
	for _, l := range r.store.lines {
		if l.SaleID != saleID {
			continue
		}
		name := ""
		if p, ok := r.store.products[l.ProductID]; ok {
			name = p.Name
		}
		list = append(list, &repository.SaleLineWithProduct{Line: l, ProductName: name})
	}
	return list, nil
}

func (r *fakeSaleRepo) List(limit, offset int) ([]*repository.SaleWithCustomer, error) {
	defer r.lock()()
	var list []*repository.SaleWithCustomer
	for _, s := range r.store.sales {
		name := ""
		if c, ok := r.store.customers[s.CustomerID]; ok {
			name = c.DisplayName()
		}
		list = append(list, &repository.SaleWithCustomer{Sale: s, CustomerName: name})
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Sale.CreatedAt.Equal(list[j].Sale.CreatedAt) {
			return list[i].Sale.CreatedAt.After(list[j].Sale.CreatedAt)
		}
		return list[i].Sale.ID > list[j].Sale.ID
	})
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

// fakeTxRunner serializa transacciones con el lock del store y restaura el
// snapshot completo si fn devuelve error.
type fakeTxRunner struct {
	store           *memStore
	failUpdateTotal error
}

func (tx *fakeTxRunner) Run(ctx context.Context, fn func(repository.SaleRepository, repository.ProductRepository) error) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	snap := tx.store.snapshot()
	err := fn(
		&fakeSaleRepo{store: tx.store, failUpdateTotal: tx.failUpdateTotal},
		&fakeProductRepo{store: tx.store},
	)
	if err != nil {
		tx.store.restore(snap)
		return err
	}
	return nil
}

// fakeNotifier captura el último envío; con fail devuelve error.
type fakeNotifier struct {
	mu      sync.Mutex
	fail    error
	lastTo  string
	lastPDF []byte
	sent    int
}

func (n *fakeNotifier) Send(_ context.Context, to, _, _ string, receiptPDF []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.sent++
	n.lastTo = to
	n.lastPDF = receiptPDF
	return nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(*sales.ReceiptData) ([]byte, error) {
	return []byte("%PDF-fake"), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type saleFixture struct {
	store    *memStore
	txRunner *fakeTxRunner
	notifier *fakeNotifier
	uc       *sales.CreateSaleUseCase
	query    *sales.SaleQueryUseCase
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	store := newMemStore()
	txRunner := &fakeTxRunner{store: store}
	notifier := &fakeNotifier{}
	productRepo := &fakeProductRepo{store: store, locking: true}
	customerRepo := &fakeCustomerRepo{store: store}
	saleRepo := &fakeSaleRepo{store: store, locking: true}
	uc := sales.NewCreateSaleUseCase(
		txRunner, productRepo, customerRepo, saleRepo,
		notifier, fakeRenderer{}, logger.Nop(),
	)
	return &saleFixture{
		store:    store,
		txRunner: txRunner,
		notifier: notifier,
		uc:       uc,
		query:    sales.NewSaleQueryUseCase(saleRepo, customerRepo),
	}
}

func (f *saleFixture) stockOf(t *testing.T, id string) int64 {
	t.Helper()
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	p, ok := f.store.products[id]
	require.True(t, ok, "producto %s debe existir", id)
	return p.Stock
}

// ──────────────────────────────────────────────────────────────────────────────
// Camino feliz
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_Exitosa(t *testing.T) {
	f := newSaleFixture(t)
	f.store.addProduct(entity.Product{ID: "p1", Name: "Gaseosa", Price: decimal.RequireFromString("1250.50"), Stock: 10, Active: true})
	f.store.addProduct(entity.Product{ID: "p2", Name: "Galletitas", Price: decimal.RequireFromString("899.99"), Stock: 4, Active: true})
	f.store.addCustomer(entity.Customer{ID: "c1", FirstName: "Ana", LastName: "Pérez", Email: "ana@example.com"})

	resp, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CustomerID: "c1",
		Items: []dto.SaleItemRequest{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "c1", resp.CustomerID)
	assert.Equal(t, "Ana Pérez", resp.CustomerName)
	require.Len(t, resp.Lines, 2)
	// 2*1250.50 + 3*899.99 = 2501.00 + 2699.97 = 5200.97
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("5200.97")),
		"total esperado 5200.97, obtenido %s", resp.Total)
	assert.Empty(t, resp.ReceiptError)

	// El stock quedó descontado
	assert.Equal(t, int64(8), f.stockOf(t, "p1"))
	assert.Equal(t, int64(1), f.stockOf(t, "p2"))

	// La respuesta refleja lo persistido: releer devuelve lo mismo
	read, err := f.query.GetSale(resp.ID)
	require.NoError(t, err)
	assert.True(t, read.Total.Equal(resp.Total))
	assert.Len(t, read.Lines, 2)
}

func TestCreateSale_VentaDeMostrador(t *testing.T) {
	f := newSaleFixture(t)
	f.store.addProduct(entity.Product{ID: "p1", Name: "Chicle", Price: decimal.RequireFromString("100"), Stock: 5, Active: true})

	resp, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.CustomerID, "sin cliente es venta de mostrador")
	assert.Empty(t, resp.CustomerName)
}

// ──────────────────────────────────────────────────────────────────────────────
// Rechazos de validación: nada se persiste, el stock no se toca
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_RechazosNoTocanElStock(t *testing.T) {
	f := newSaleFixture(t)
	f.store.addProduct(entity.Product{ID: "p1", Name: "Alfajor", Price: decimal.RequireFromString("950"), Stock: 3, Active: true})

	cases := []struct {
		name    string
		in      dto.CreateSaleRequest
		wantErr error
	}{
		{"pedido vacío", dto.CreateSaleRequest{}, domain.ErrEmptyOrder},
		{"cantidad cero", dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: "p1", Quantity: 0}}}, domain.ErrInvalidQuantity},
		{"cantidad negativa", dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: "p1", Quantity: -2}}}, domain.ErrInvalidQuantity},
		{"producto inexistente", dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: "nope", Quantity: 1}}}, domain.ErrUnknownProduct},
		{"stock insuficiente", dto.CreateSaleRequest{Items: []dto.SaleItemRequest{{ProductID: "p1", Quantity: 99}}}, domain.ErrInsufficientStock},
		{"cliente inexistente", dto.CreateSaleRequest{CustomerID: "ghost", Items: []dto.SaleItemRequest{{ProductID: "p1", Quantity: 1}}}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := f.uc.CreateSale(context.Background(), tc.in)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	assert.Equal(t, int64(3), f.stockOf(t, "p1"), "ningún rechazo debe descontar stock")
	list, err := f.query.ListSales(100, 0)
	require.NoError(t, err)
	assert.Empty(t, list, "ningún rechazo debe dejar una venta persistida")
}

// ──────────────────────────────────────────────────────────────────────────────
// Atomicidad
// ──────────────────────────────────────────────────────────────────────────────

// Duplicados del mismo producto: el plan valida cada línea contra el snapshot,
// pero el decremento condicional acumula al confirmar. 3+3 sobre stock 5
// falla en la segunda línea y revierte TODO.
func TestCreateSale_DuplicadosNoSobrevenden(t *testing.T) {
	f := newSaleFixture(t)
	f.store.addProduct(entity.Product{ID: "p1", Name: "Chicle", Price: decimal.RequireFromString("100"), Stock: 5, Active: true})

	resp, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: "p1", Quantity: 3},
			{ProductID: "p1", Quantity: 3},
		},
	})
	assert.Nil(t, resp)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(5), f.stockOf(t, "p1"), "la primera línea descontada debe revertirse")
	list, err := f.query.ListSales(100, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateSale_FallaAlFijarTotal_RevierteTodo(t *testing.T) {
	f := newSaleFixture(t)
	f.store.addProduct(entity.Product{ID: "p1", Name: "Yerba", Price: decimal.RequireFromString("5400"), Stock: 10, Active: true})
	f.txRunner.failUpdateTotal = errors.New("disco lleno")

	resp, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{ProductID: "p1", Quantity: 2}},
	})
	assert.Nil(t, resp)
	require.Error(t, err)

	assert.Equal(t, int64(10), f.stockOf(t, "p1"), "el descuento de stock debe revertirse")
	list, listErr := f.query.ListSales(100, 0)
	require.NoError(t, listErr)
	assert.Empty(t, list, "no debe quedar cabecera ni líneas de la venta fallida")
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia: N ventas simultáneas del mismo producto
// ──────────────────────────────────────────────────────────────────────────────

// Con stock S y pedidos de cantidad q, deben confirmar exactamente floor(S/q)
// ventas; el resto falla con stock insuficiente y el stock final es S - q*éxitos.
func TestCreateSale_ConcurrentesNoSobrevenden(t *testing.T) {
	const (
		stock    = int64(20)
		qty      = int64(3)
		attempts = 15
		expected = 6 // floor(20/3)
	)

	f := newSaleFixture(t)
	f.store.addProduct(entity.Product{ID: "p1", Name: "Fernet", Price: decimal.RequireFromString("8999.99"), Stock: stock, Active: true})

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
				Items: []dto.SaleItemRequest{{ProductID: "p1", Quantity: qty}},
			})
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}

	assert.Equal(t, expected, ok, "deben confirmar exactamente floor(S/q) ventas")
	assert.Equal(t, attempts-expected, insufficient)
	assert.Equal(t, stock-qty*int64(expected), f.stockOf(t, "p1"),
		"el stock final debe reflejar solo las ventas confirmadas")

	list, err := f.query.ListSales(100, 0)
	require.NoError(t, err)
	assert.Len(t, list, expected, "debe haber una venta persistida por cada éxito")
}

// ──────────────────────────────────────────────────────────────────────────────
// Comprobante por email: nunca revierte la venta
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_EnviaComprobante(t *testing.T) {
	f := newSaleFixture(t)
	f.store.addProduct(entity.Product{ID: "p1", Name: "Gaseosa", Price: decimal.RequireFromString("1000"), Stock: 10, Active: true})
	f.store.addCustomer(entity.Customer{ID: "c1", FirstName: "Ana", LastName: "Pérez", Email: "ana@example.com"})

	resp, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CustomerID:  "c1",
		Items:       []dto.SaleItemRequest{{ProductID: "p1", Quantity: 1}},
		SendReceipt: true,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.ReceiptError)
	assert.Equal(t, 1, f.notifier.sent)
	assert.Equal(t, "ana@example.com", f.notifier.lastTo)
	assert.NotEmpty(t, f.notifier.lastPDF, "el comprobante debe ir adjunto")
}

func TestCreateSale_FallaDeEnvioNoRevierte(t *testing.T) {
	f := newSaleFixture(t)
	f.store.addProduct(entity.Product{ID: "p1", Name: "Gaseosa", Price: decimal.RequireFromString("1000"), Stock: 10, Active: true})
	f.store.addCustomer(entity.Customer{ID: "c1", FirstName: "Ana", LastName: "Pérez", Email: "ana@example.com"})
	f.notifier.fail = errors.New("smtp caído")

	resp, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CustomerID:  "c1",
		Items:       []dto.SaleItemRequest{{ProductID: "p1", Quantity: 2}},
		SendReceipt: true,
	})
	require.NoError(t, err, "la falla del envío no es falla de la venta")
	assert.NotEmpty(t, resp.ReceiptError, "debe informarse que el comprobante no salió")

	assert.Equal(t, int64(8), f.stockOf(t, "p1"), "la venta queda confirmada igual")
	read, err := f.query.GetSale(resp.ID)
	require.NoError(t, err)
	assert.True(t, read.Total.Equal(resp.Total))
}

func TestCreateSale_ClienteSinEmail(t *testing.T) {
	f := newSaleFixture(t)
	f.store.addProduct(entity.Product{ID: "p1", Name: "Gaseosa", Price: decimal.RequireFromString("1000"), Stock: 10, Active: true})
	f.store.addCustomer(entity.Customer{ID: "c1", FirstName: "Ana", LastName: "Pérez"})

	resp, err := f.uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		CustomerID:  "c1",
		Items:       []dto.SaleItemRequest{{ProductID: "p1", Quantity: 1}},
		SendReceipt: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ReceiptError)
	assert.Equal(t, 0, f.notifier.sent)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lecturas
// ──────────────────────────────────────────────────────────────────────────────

func TestSaleQuery_GetSale_NoExiste(t *testing.T) {
	f := newSaleFixture(t)
	_, err := f.query.GetSale("no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaleQuery_ListSales_MasRecientesPrimero(t *testing.T) {
	f := newSaleFixture(t)
	base := time.Now()
	for i, id := range []string{"s1", "s2", "s3"} {
		f.store.sales[id] = entity.Sale{
			ID:        id,
			Total:     decimal.NewFromInt(int64(i + 1)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}

	list, err := f.query.ListSales(10, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "s3", list[0].ID)
	assert.Equal(t, "s2", list[1].ID)
	assert.Equal(t, "s1", list[2].ID)
}
