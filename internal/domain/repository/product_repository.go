package repository

import (
	"context"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
)

// ProductRepository puerto de lectura del catálogo (existencia y precio vigente).
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetByIDs devuelve los productos encontrados indexados por ID; los ausentes no aparecen.
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
}
