// migrate aplica o revierte las migraciones embebidas.
//
// Uso: go run ./cmd/migrate [up|down|version]
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/tienda-empleados-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-empleados-api/pkg/config"
	"github.com/jhoicas/tienda-empleados-api/pkg/logger"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Named("migrate")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	switch cmd {
	case "up", "down":
		if err := postgres.Migrate(ctx, pool, cmd == "down"); err != nil {
			pool.Close()
			log.Fatal().Err(err).Str("cmd", cmd).Msg("migración fallida")
		}
		fallthrough
	case "version":
		version, dirty, err := postgres.MigrationVersion(ctx, pool)
		if err != nil {
			pool.Close()
			log.Fatal().Err(err).Msg("leer versión")
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Str("cmd", cmd).Msg("estado del esquema")
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido %q (up|down|version)\n", cmd)
		os.Exit(2)
	}
}
