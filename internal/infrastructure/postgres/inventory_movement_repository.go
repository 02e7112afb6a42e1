package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	"github.com/jhoicas/bodega-stock/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación del log de movimientos sobre PostgreSQL (pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

const movementColumns = `m.id, COALESCE(m.transaction_id::text, ''), m.product_id::text, m.area, m.type,
	m.quantity, COALESCE(m.reason, ''), COALESCE(m.user_id, ''), m.created_at`

// Create inserta un movimiento y completa su ID (BIGSERIAL).
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO inventory_movements (transaction_id, product_id, area, type, quantity, reason, user_id, created_at)
		VALUES (NULLIF($1, '')::uuid, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.TransactionID, m.ProductID, m.Area, m.Type, m.Quantity, m.Reason, m.ActorID, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// ListByPair historia completa de un par en orden (created_at, id).
func (r *InventoryMovementRepo) ListByPair(ctx context.Context, productID string, area entity.Area) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM inventory_movements m
		WHERE m.product_id = $1 AND m.area = $2
		ORDER BY m.created_at, m.id`
	return r.list(ctx, "list movements by pair", query, productID, area)
}

// ListByProduct movimientos de un producto, más recientes primero.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM inventory_movements m
		WHERE m.product_id = $1
		ORDER BY m.created_at DESC, m.id DESC`
	args := []any{productID}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}
	return r.list(ctx, "list movements by product", query, args...)
}

// ListRecent últimos movimientos con SKU y nombre del producto.
func (r *InventoryMovementRepo) ListRecent(ctx context.Context, limit int) ([]*entity.MovementDetail, error) {
	query := `SELECT ` + movementColumns + `, COALESCE(p.sku, ''), p.name
		FROM inventory_movements m
		JOIN products p ON p.id = m.product_id
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent movements: %w", err)
	}
	defer rows.Close()
	var out []*entity.MovementDetail
	for rows.Next() {
		var d entity.MovementDetail
		if err := rows.Scan(
			&d.ID, &d.TransactionID, &d.ProductID, &d.Area, &d.Type,
			&d.Quantity, &d.Reason, &d.ActorID, &d.CreatedAt, &d.SKU, &d.ProductName,
		); err != nil {
			return nil, fmt.Errorf("scan recent movement: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// Projections calcula, para cada par con historia, la cantidad del último ajuste (base)
// y la suma firmada de ingresos/salidas posteriores (delta). "Posterior" usa el orden
// total (created_at, id), así movimientos con la misma fecha no se pierden ni se duplican.
func (r *InventoryMovementRepo) Projections(ctx context.Context) ([]entity.StockProjection, error) {
	query := `
		WITH pairs AS (
			SELECT DISTINCT product_id, area FROM inventory_movements
		),
		last_adj AS (
			SELECT DISTINCT ON (product_id, area)
				product_id, area, quantity AS base, created_at AS base_at, id AS base_id
			FROM inventory_movements
			WHERE type = 'ajuste'
			ORDER BY product_id, area, created_at DESC, id DESC
		),
		deltas AS (
			SELECT m.product_id, m.area,
				SUM(CASE m.type WHEN 'ingreso' THEN m.quantity WHEN 'salida' THEN -m.quantity ELSE 0 END) AS delta
			FROM inventory_movements m
			LEFT JOIN last_adj a ON a.product_id = m.product_id AND a.area = m.area
			WHERE a.base_id IS NULL OR (m.created_at, m.id) > (a.base_at, a.base_id)
			GROUP BY m.product_id, m.area
		)
		SELECT p.product_id::text, p.area, COALESCE(a.base, 0), COALESCE(d.delta, 0)
		FROM pairs p
		LEFT JOIN last_adj a ON a.product_id = p.product_id AND a.area = p.area
		LEFT JOIN deltas d ON d.product_id = p.product_id AND d.area = p.area
		ORDER BY p.product_id, p.area`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("stock projections: %w", err)
	}
	defer rows.Close()
	var out []entity.StockProjection
	for rows.Next() {
		var p entity.StockProjection
		if err := rows.Scan(&p.ProductID, &p.Area, &p.Base, &p.Delta); err != nil {
			return nil, fmt.Errorf("scan projection: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *InventoryMovementRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var out []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		if err := rows.Scan(
			&m.ID, &m.TransactionID, &m.ProductID, &m.Area, &m.Type,
			&m.Quantity, &m.Reason, &m.ActorID, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
