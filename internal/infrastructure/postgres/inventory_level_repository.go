package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	"github.com/jhoicas/bodega-stock/internal/domain/repository"
)

var _ repository.InventoryLevelRepository = (*InventoryLevelRepo)(nil)

// InventoryLevelRepo lecturas de inventory_stock unidas a products.
type InventoryLevelRepo struct {
	q Querier
}

// NewInventoryLevelRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInventoryLevelRepository(q Querier) *InventoryLevelRepo {
	return &InventoryLevelRepo{q: q}
}

const levelSelect = `
	SELECT s.product_id::text, COALESCE(p.sku, ''), p.name, s.area, s.quantity, s.updated_at
	FROM inventory_stock s
	JOIN products p ON p.id = s.product_id`

// List filtra por área y por búsqueda en SKU/nombre (ILIKE), ordenado por nombre.
// Limit 0 = sin límite.
func (r *InventoryLevelRepo) List(ctx context.Context, f repository.StockFilter) ([]*entity.InventoryLevel, error) {
	query := levelSelect + ` WHERE 1=1`
	args := []any{}
	argNum := 1
	if f.Area != "" {
		query += fmt.Sprintf(" AND s.area = $%d", argNum)
		args = append(args, f.Area)
		argNum++
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		query += fmt.Sprintf(" AND (p.sku ILIKE $%d OR p.name ILIKE $%d)", argNum, argNum)
		args = append(args, "%"+q+"%")
		argNum++
	}
	query += " ORDER BY p.name, s.area"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, f.Limit)
	}
	return r.list(ctx, "list inventory levels", query, args...)
}

// ListLow filas con cantidad <= threshold, menor cantidad primero.
func (r *InventoryLevelRepo) ListLow(ctx context.Context, threshold decimal.Decimal, limit int) ([]*entity.InventoryLevel, error) {
	query := levelSelect + `
		WHERE s.quantity <= $1
		ORDER BY s.quantity ASC, p.name
		LIMIT $2`
	return r.list(ctx, "list low stock", query, threshold, limit)
}

// TotalsByArea suma de cantidades por área.
func (r *InventoryLevelRepo) TotalsByArea(ctx context.Context) (map[entity.Area]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `SELECT area, COALESCE(SUM(quantity), 0) FROM inventory_stock GROUP BY area`)
	if err != nil {
		return nil, fmt.Errorf("stock totals: %w", err)
	}
	defer rows.Close()
	out := make(map[entity.Area]decimal.Decimal)
	for rows.Next() {
		var a entity.Area
		var total decimal.Decimal
		if err := rows.Scan(&a, &total); err != nil {
			return nil, fmt.Errorf("scan stock total: %w", err)
		}
		out[a] = total
	}
	return out, rows.Err()
}

func (r *InventoryLevelRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.InventoryLevel, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.InventoryLevel
	for rows.Next() {
		var l entity.InventoryLevel
		if err := rows.Scan(&l.ProductID, &l.SKU, &l.ProductName, &l.Area, &l.Quantity, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory level: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
