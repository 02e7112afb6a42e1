package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-stock/internal/domain"
	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	"github.com/jhoicas/bodega-stock/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto en un área. Sin fila devuelve cero.
func (r *StockRepo) Get(ctx context.Context, productID string, area entity.Area) (*entity.StockEntry, error) {
	query := `
		SELECT product_id::text, area, quantity, updated_at
		FROM inventory_stock WHERE product_id = $1 AND area = $2`
	var s entity.StockEntry
	err := r.q.QueryRow(ctx, query, productID, area).Scan(&s.ProductID, &s.Area, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockEntry{ProductID: productID, Area: area, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// GetForUpdate crea la fila en cero si no existe y la bloquea (SELECT FOR UPDATE).
// Crear antes de bloquear evita que dos transacciones lean "sin fila" a la vez y
// pierdan una actualización.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID string, area entity.Area) (*entity.StockEntry, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_stock (product_id, area, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, area) DO NOTHING`, productID, area)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}

	query := `
		SELECT product_id::text, area, quantity, updated_at
		FROM inventory_stock WHERE product_id = $1 AND area = $2
		FOR UPDATE`
	var s entity.StockEntry
	if err := r.q.QueryRow(ctx, query, productID, area).Scan(&s.ProductID, &s.Area, &s.Quantity, &s.UpdatedAt); err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad en stock (por producto y área).
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.StockEntry) error {
	query := `
		INSERT INTO inventory_stock (product_id, area, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, area)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(ctx, query, stock.ProductID, stock.Area, stock.Quantity)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrNegativeStock
		}
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// LockTable bloquea inventory_stock contra escrituras concurrentes hasta el fin de la tx.
// SHARE ROW EXCLUSIVE deja leer pero choca con los INSERT/UPDATE de los movimientos.
func (r *StockRepo) LockTable(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `LOCK TABLE inventory_stock IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("lock inventory_stock: %w", err)
	}
	return nil
}

// ListAll devuelve todas las filas de la proyección.
func (r *StockRepo) ListAll(ctx context.Context) ([]*entity.StockEntry, error) {
	return r.list(ctx, "list stock", `
		SELECT product_id::text, area, quantity, updated_at
		FROM inventory_stock ORDER BY product_id, area`)
}

// ListByArea devuelve las filas con cantidad distinta de cero en un área.
func (r *StockRepo) ListByArea(ctx context.Context, area entity.Area) ([]*entity.StockEntry, error) {
	return r.list(ctx, "list stock by area", `
		SELECT product_id::text, area, quantity, updated_at
		FROM inventory_stock WHERE area = $1 AND quantity <> 0
		ORDER BY product_id`, area)
}

// DeleteArea borra todas las filas de un área y devuelve cuántas eran.
func (r *StockRepo) DeleteArea(ctx context.Context, area entity.Area) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM inventory_stock WHERE area = $1`, area)
	if err != nil {
		return 0, fmt.Errorf("delete stock area: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *StockRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.StockEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var out []*entity.StockEntry
	for rows.Next() {
		var s entity.StockEntry
		if err := rows.Scan(&s.ProductID, &s.Area, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
