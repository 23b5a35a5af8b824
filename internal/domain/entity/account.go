package entity

import "time"

// Roles válidos para Account.
const (
	RoleEmployee   = "employee"
	RoleDispatcher = "dispatcher"
	RoleAdmin      = "admin"
)

// Estados de la cuenta.
const (
	AccountActive   = "active"
	AccountInactive = "inactive"
)

// Account representa a un empleado habilitado para comprar. La identidad la emite un
// proveedor externo; aquí solo se lee.
type Account struct {
	ID           string
	EmployeeCode string // código de empleado en el ERP
	NationalID   string // cédula
	Name         string
	Email        string
	Status       string // active, inactive
	Role         string // employee, dispatcher, admin
	CreatedAt    time.Time
}

// IsActive indica si la cuenta puede comprar.
func (a *Account) IsActive() bool { return a.Status == AccountActive }

// IsStaff indica si el rol puede operar pedidos de terceros.
func IsStaff(role string) bool {
	return role == RoleDispatcher || role == RoleAdmin
}
