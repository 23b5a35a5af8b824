package checkout

import (
	"context"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/order"
	"github.com/jhoicas/tienda-empleados-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Run hace commit si fn no devuelve error; en caso contrario rollback sin efectos parciales.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// ReplayCache acelera la respuesta de reintentos idempotentes antes de abrir la transacción.
// La base de datos sigue siendo la fuente de verdad; un fallo de caché no afecta el checkout.
type ReplayCache interface {
	Get(ctx context.Context, scope, key string) (*Result, error)
	Set(ctx context.Context, scope, key string, res Result) error
}

// EventPublisher recibe los pedidos confirmados (recibo y correo, fuera de la transacción).
type EventPublisher interface {
	Publish(evt order.OrderCreated)
}
