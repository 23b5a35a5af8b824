// Package cache guarda en Redis las respuestas de checkouts ya confirmados para responder
// reintentos sin abrir transacción.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/tienda-empleados-api/internal/application/checkout"
	"github.com/jhoicas/tienda-empleados-api/pkg/config"
)

var _ checkout.ReplayCache = (*ReplayCache)(nil)

// ReplayCache implementa checkout.ReplayCache sobre go-redis.
type ReplayCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReplayCache abre el cliente. El TTL debe coincidir con la ventana de idempotencia.
func NewReplayCache(cfg config.RedisConfig) *ReplayCache {
	return NewReplayCacheWithClient(redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), cfg.TTL)
}

// NewReplayCacheWithClient usa un cliente ya construido.
func NewReplayCacheWithClient(client *redis.Client, ttl time.Duration) *ReplayCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ReplayCache{client: client, ttl: ttl}
}

// Key devuelve la llave Redis de un checkout: checkout:<cuenta>:<llave>.
func Key(scope, key string) string {
	return fmt.Sprintf("checkout:%s:%s", scope, key)
}

// Get devuelve nil sin error si la llave no está.
func (c *ReplayCache) Get(ctx context.Context, scope, key string) (*checkout.Result, error) {
	raw, err := c.client.Get(ctx, Key(scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var res checkout.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		// dato corrupto: se descarta y se resuelve contra la base
		_ = c.client.Del(ctx, Key(scope, key)).Err()
		return nil, nil
	}
	return &res, nil
}

func (c *ReplayCache) Set(ctx context.Context, scope, key string, res checkout.Result) error {
	body, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := c.client.Set(ctx, Key(scope, key), body, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping verifica la conexión al arrancar.
func (c *ReplayCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close libera el cliente.
func (c *ReplayCache) Close() error {
	return c.client.Close()
}
