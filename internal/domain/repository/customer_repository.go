package repository

import "github.com/kiosco-app/ventas-api/internal/domain/entity"

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	Update(customer *entity.Customer) error
	List(limit, offset int) ([]*entity.Customer, error)
	// Delete falla con domain.ErrConflict si el cliente tiene ventas asociadas.
	Delete(id string) error
}
