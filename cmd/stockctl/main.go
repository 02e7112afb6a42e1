// Comando stockctl: tareas administrativas sobre el libro de stock
// (migraciones, reconstrucción, desvíos, migración de área e importación).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/bodega-stock/internal/application/inventory"
	"github.com/jhoicas/bodega-stock/internal/infrastructure/postgres"
	"github.com/jhoicas/bodega-stock/pkg/config"
	"github.com/jhoicas/bodega-stock/pkg/logger"
)

var Version = "dev"

var (
	actorID    string
	jsonOutput bool
	verbose    bool
)

// app dependencias compartidas por los subcomandos que tocan la base.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	pool      *pgxpool.Pool
	reconcile *inventory.ReconcileUseCase
	migration *inventory.AreaMigrationUseCase
	importer  *inventory.ImportUseCase
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "stockctl",
		Short:         "stockctl - administración del libro de stock bodega/surtido",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "stockctl", "actor registrado en los movimientos generados")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "salida en JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log detallado")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(rebuildCmd())
	rootCmd.AddCommand(driftCmd())
	rootCmd.AddCommand(moveAllCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(verifyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Env: "development", Level: level, App: "stockctl", Output: os.Stderr})
	return cfg, log, nil
}

// openApp conecta a PostgreSQL y arma los casos de uso. El llamador cierra con close().
func openApp(ctx context.Context) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	txRunner := postgres.NewTxRunner(pool, cfg.DB.TxTimeout)
	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewInventoryMovementRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)

	return &app{
		cfg:       cfg,
		log:       log,
		pool:      pool,
		reconcile: inventory.NewReconcileUseCase(txRunner, productRepo, movementRepo, stockRepo, log),
		migration: inventory.NewAreaMigrationUseCase(txRunner, nil, log),
		importer:  inventory.NewImportUseCase(txRunner, log),
	}, nil
}

func (a *app) close() {
	a.pool.Close()
}
