package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kiosco-app/ventas-api/internal/domain"
	"github.com/kiosco-app/ventas-api/internal/domain/entity"
	"github.com/kiosco-app/ventas-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
// Las líneas no tienen UPDATE ni DELETE: una venta confirmada es inmutable.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create persiste la cabecera de la venta (total provisional en 0; se fija
// con UpdateTotal como último paso de la transacción).
func (r *SaleRepo) Create(sale *entity.Sale) error {
	query := `
		INSERT INTO sales (id, customer_id, total, created_at)
		VALUES ($1, $2, 0, $3)`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, nullIfEmpty(sale.CustomerID), sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateLine persiste una línea de la venta.
func (r *SaleRepo) CreateLine(line *entity.SaleLine) error {
	query := `
		INSERT INTO sale_lines (id, sale_id, product_id, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.SaleID, line.ProductID, line.Quantity, line.UnitPrice, line.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert sale line: %w", err)
	}
	return nil
}

// UpdateTotal fija el total definitivo de la cabecera.
func (r *SaleRepo) UpdateTotal(saleID string, total decimal.Decimal) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE sales SET total = $2 WHERE id = $1`, saleID, total)
	if err != nil {
		return fmt.Errorf("update sale total: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene la cabecera de una venta.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	query := `SELECT id, customer_id, total, created_at FROM sales WHERE id = $1`
	var s entity.Sale
	var customerID *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(&s.ID, &customerID, &s.Total, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if customerID != nil {
		s.CustomerID = *customerID
	}
	return &s, nil
}

// GetLinesBySaleID líneas de la venta con el nombre actual del producto
// (el precio unitario viene congelado en la línea, no del producto).
func (r *SaleRepo) GetLinesBySaleID(saleID string) ([]*repository.SaleLineWithProduct, error) {
	query := `
		SELECT l.id, l.sale_id, l.product_id, l.quantity, l.unit_price, l.subtotal, p.name
		FROM sale_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.sale_id = $1
		ORDER BY l.id`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale lines: %w", err)
	}
	defer rows.Close()
	var list []*repository.SaleLineWithProduct
	for rows.Next() {
		var item repository.SaleLineWithProduct
		if err := rows.Scan(
			&item.Line.ID, &item.Line.SaleID, &item.Line.ProductID,
			&item.Line.Quantity, &item.Line.UnitPrice, &item.Line.Subtotal,
			&item.ProductName,
		); err != nil {
			return nil, fmt.Errorf("scan sale line: %w", err)
		}
		list = append(list, &item)
	}
	return list, rows.Err()
}

// List cabeceras con cliente resuelto, más recientes primero (sin líneas).
func (r *SaleRepo) List(limit, offset int) ([]*repository.SaleWithCustomer, error) {
	query := `
		SELECT s.id, s.customer_id, s.total, s.created_at,
		       COALESCE(c.first_name || ' ' || c.last_name, '')
		FROM sales s
		LEFT JOIN customers c ON c.id = s.customer_id
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*repository.SaleWithCustomer
	for rows.Next() {
		var item repository.SaleWithCustomer
		var customerID *string
		if err := rows.Scan(&item.Sale.ID, &customerID, &item.Sale.Total, &item.Sale.CreatedAt, &item.CustomerName); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		if customerID != nil {
			item.Sale.CustomerID = *customerID
		}
		list = append(list, &item)
	}
	return list, rows.Err()
}
