package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/bodega-stock/internal/application/inventory"
	"github.com/jhoicas/bodega-stock/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// ErrTxTimeout la transacción superó el tiempo máximo configurado.
var ErrTxTimeout = errors.New("tiempo de transacción agotado")

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED).
type TxRunner struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewTxRunner construye el runner con el pool. timeout <= 0 deja solo el del contexto.
func NewTxRunner(pool *pgxpool.Pool, timeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, timeout: timeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Una vez iniciada, la operación no se cancela con el contexto del llamador (p. ej. el
// cliente HTTP que se desconecta): solo el timeout propio la aborta.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	ctx = context.WithoutCancel(ctx)
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return r.wrap(ctx, "begin transaction", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	movRepo := NewInventoryMovementRepository(tx)
	stockRepo := NewStockRepository(tx)
	productRepo := NewProductRepository(tx)

	if err := fn(movRepo, stockRepo, productRepo); err != nil {
		if ctx.Err() != nil {
			return r.wrap(ctx, "run transaction", err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return r.wrap(ctx, "commit transaction", err)
	}
	return nil
}

func (r *TxRunner) wrap(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w (%s): %w", op, ErrTxTimeout, r.timeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
