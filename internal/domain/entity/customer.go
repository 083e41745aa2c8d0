package entity

import "time"

// Customer representa un cliente. Las ventas lo referencian por id y puede
// no existir (venta de mostrador).
type Customer struct {
	ID        string
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Address   string // opcional
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName nombre para mostrar en respuestas y comprobantes.
func (c *Customer) DisplayName() string {
	return c.FirstName + " " + c.LastName
}
