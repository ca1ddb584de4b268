// Command seed applies the catalog schema to PostgreSQL and loads the
// embedded restaurant catalog into it. It reads the same POSTGRES_*
// environment as the server and is safe to run repeatedly.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/w24010/delightful/internal/catalogdata"
	"github.com/w24010/delightful/internal/config"
	"github.com/w24010/delightful/internal/repository/postgres"
	"github.com/w24010/delightful/pkg/database"
	"github.com/w24010/delightful/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("storefront-seed", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, 2*time.Minute)
	defer cancelTimeout()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	catalog, err := catalogdata.Load()
	if err != nil {
		return err
	}

	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPassword
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSLMode
	pgCfg.MaxConns = 2

	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, postgres.Migrations(), log); err != nil {
		return err
	}

	if err := postgres.NewCatalogRepository(pool).Seed(ctx, catalog); err != nil {
		return err
	}

	items := 0
	for _, r := range catalog.Restaurants {
		items += len(r.Menu)
	}
	log.Info("catalog seeded",
		slog.Int("restaurants", len(catalog.Restaurants)),
		slog.Int("menu_items", items),
		slog.Int("featured_categories", len(catalog.FeaturedCategories)),
	)
	return nil
}
