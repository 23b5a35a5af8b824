package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-empleados-api/pkg/config"
)

func TestPoolConfig_DesdeCampos(t *testing.T) {
	pc, err := poolConfig(config.DBConfig{
		Host: "db", Port: 5432, User: "app", Password: "secreto", DBName: "tienda", SSLMode: "disable",
		MaxConns: 10, MinConns: 3, LockTimeout: 2 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, "db", pc.ConnConfig.Host)
	assert.Equal(t, "tienda", pc.ConnConfig.Database)
	assert.Equal(t, "2000ms", pc.ConnConfig.RuntimeParams["lock_timeout"])
	assert.EqualValues(t, 10, pc.MaxConns)
	assert.EqualValues(t, 3, pc.MinConns)
	assert.NotNil(t, pc.AfterConnect)
}

func TestPoolConfig_URLManda(t *testing.T) {
	pc, err := poolConfig(config.DBConfig{
		DatabaseURL: "postgres://app:x@pg.interno:6543/otra?sslmode=disable&lock_timeout=750ms",
		Host:        "ignorado",
		LockTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, "pg.interno", pc.ConnConfig.Host)
	assert.EqualValues(t, 6543, pc.ConnConfig.Port)
	assert.Equal(t, "750ms", pc.ConnConfig.RuntimeParams["lock_timeout"])
}

func TestPoolConfig_SinLockTimeout(t *testing.T) {
	pc, err := poolConfig(config.DBConfig{DatabaseURL: "postgres://app@db/tienda"})
	require.NoError(t, err)

	_, ok := pc.ConnConfig.RuntimeParams["lock_timeout"]
	assert.False(t, ok)
}

func TestPoolConfig_DSNInvalido(t *testing.T) {
	_, err := poolConfig(config.DBConfig{DatabaseURL: "postgres://app@db:puerto/tienda"})
	assert.Error(t, err)
}
