package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-empleados-api/internal/application/checkout"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "checkout:acc-1:k-123", Key("acc-1", "k-123"))
}

func TestReplayCache_SinServidorDevuelveError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewReplayCacheWithClient(client, 0)
	defer c.Close()
	assert.Equal(t, 24*time.Hour, c.ttl)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := c.Get(ctx, "acc-1", "k")
	assert.Error(t, err)
	assert.Nil(t, res)

	err = c.Set(ctx, "acc-1", "k", checkout.Result{OrderID: "o1", Total: decimal.NewFromInt(5000)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis set")
}
