package repository

import "github.com/kiosco-app/ventas-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	// GetByIDs resuelve un conjunto de ids en un solo viaje; los ids que no
	// existen simplemente no aparecen en el mapa resultado.
	GetByIDs(ids []string) (map[string]*entity.Product, error)
	Update(product *entity.Product) error
	List(limit, offset int) ([]*entity.Product, error)
	// ListLowStock productos activos con stock <= min_stock, ordenados por stock ascendente.
	ListLowStock() ([]*entity.Product, error)
	// DecrementStockIfAvailable descuenta quantity de forma condicional y
	// atómica en la base (UPDATE ... WHERE stock >= quantity). Devuelve
	// *domain.InsufficientStockError si el stock no alcanza y
	// domain.ErrNotFound si el producto no existe.
	DecrementStockIfAvailable(productID string, quantity int64) error
	// Delete falla con domain.ErrConflict si el producto ya fue usado en una venta.
	Delete(id string) error
}
