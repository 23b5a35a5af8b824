package entity

import "github.com/shopspring/decimal"

// Product es la vista del catálogo que necesita el checkout: existencia y precio vigente.
type Product struct {
	ID     string
	Code   string // código del artículo en el ERP
	Name   string
	Price  decimal.Decimal
	Active bool
}
