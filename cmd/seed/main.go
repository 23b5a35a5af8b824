// seed carga en PostgreSQL el catálogo y las cuentas exportadas del ERP.
//
// Uso: go run ./cmd/seed productos.csv [empleados.csv]
// Los archivos vienen en ISO-8859-1 separados por ';'. Se puede repetir: hace upsert por código.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jhoicas/tienda-empleados-api/internal/domain/entity"
	"github.com/jhoicas/tienda-empleados-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-empleados-api/pkg/config"
	"github.com/jhoicas/tienda-empleados-api/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "uso: seed productos.csv [empleados.csv]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Named("seed")

	products, err := readFile(os.Args[1], readProducts)
	if err != nil {
		log.Fatal().Err(err).Msg("catálogo")
	}
	var accounts []entity.Account
	if len(os.Args) > 2 {
		if accounts, err = readFile(os.Args[2], readAccounts); err != nil {
			log.Fatal().Err(err).Msg("empleados")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	res, err := postgres.ImportCatalog(ctx, pool, products, accounts)
	if err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("importación fallida, no se aplicó ningún cambio")
	}
	log.Info().Int("productos", res.Products).Int("cuentas", res.Accounts).Msg("importación completa")
}

func readFile[T any](path string, parse func(r io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir %s: %w", path, err)
	}
	defer f.Close()
	return parse(f)
}
