// Package memstore implementa los puertos de inventario en memoria para tests.
// Run serializa las transacciones con un mutex global y restaura el estado si fn falla.
package memstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bodega-stock/internal/domain/entity"
	ledger "github.com/jhoicas/bodega-stock/internal/domain/inventory"
	"github.com/jhoicas/bodega-stock/internal/domain/repository"
)

// Operaciones en las que se puede inyectar una falla.
const (
	OpMovementCreate    = "movements.create"
	OpStockUpsert       = "stock.upsert"
	OpStockDeleteArea   = "stock.delete_area"
	OpStockGetForUpdate = "stock.get_for_update"
)

// ErrInjected error por defecto de InjectFailure.
var ErrInjected = errors.New("memstore: falla inyectada")

type pair struct {
	productID string
	area      entity.Area
}

type failure struct {
	after int
	err   error
}

// Store estado en memoria: catálogo, log de movimientos y proyección de stock.
type Store struct {
	mu        sync.Mutex
	products  map[string]*entity.Product
	bySKU     map[string]string
	movements []*entity.Movement
	stock     map[pair]*entity.StockEntry
	nextID    int64
	failures  map[string]*failure
	txCount   int
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		products: make(map[string]*entity.Product),
		bySKU:    make(map[string]string),
		stock:    make(map[pair]*entity.StockEntry),
		failures: make(map[string]*failure),
	}
}

// AddProduct da de alta un producto con id nuevo.
func (s *Store) AddProduct(sku, name string) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p := &entity.Product{ID: uuid.New().String(), SKU: sku, Name: name, CreatedAt: now, UpdatedAt: now}
	s.products[p.ID] = p
	s.bySKU[sku] = p.ID
	return p
}

// SetStock escribe una fila de stock sin movimiento (datos heredados o corruptos).
func (s *Store) SetStock(productID string, area entity.Area, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[pair{productID, area}] = &entity.StockEntry{
		ProductID: productID, Area: area, Quantity: qty, UpdatedAt: time.Now().UTC(),
	}
}

// AppendMovement agrega un movimiento al log sin tocar la proyección.
func (s *Store) AppendMovement(m entity.Movement) *entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m.ID = s.nextID
	s.movements = append(s.movements, &m)
	return &m
}

// StockOf devuelve la cantidad guardada y si la fila existe.
func (s *Store) StockOf(productID string, area entity.Area) (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.stock[pair{productID, area}]
	if !ok {
		return decimal.Zero, false
	}
	return e.Quantity, true
}

// Movements copia del log en orden de inserción.
func (s *Store) Movements() []entity.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Movement, len(s.movements))
	for i, m := range s.movements {
		out[i] = *m
	}
	return out
}

// Commits número de transacciones confirmadas.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txCount
}

// InjectFailure hace que la operación op falle después de after llamadas exitosas.
// err nil usa ErrInjected. La falla se consume una vez.
func (s *Store) InjectFailure(op string, after int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	s.failures[op] = &failure{after: after, err: err}
}

// check se llama con mu tomado.
func (s *Store) check(op string) error {
	f, ok := s.failures[op]
	if !ok {
		return nil
	}
	if f.after > 0 {
		f.after--
		return nil
	}
	delete(s.failures, op)
	return f.err
}

type snapshot struct {
	movements []*entity.Movement
	stock     map[pair]*entity.StockEntry
	nextID    int64
}

func (s *Store) snapshot() snapshot {
	st := make(map[pair]*entity.StockEntry, len(s.stock))
	for k, v := range s.stock {
		cp := *v
		st[k] = &cp
	}
	return snapshot{
		movements: append([]*entity.Movement(nil), s.movements...),
		stock:     st,
		nextID:    s.nextID,
	}
}

func (s *Store) restore(snap snapshot) {
	s.movements = snap.movements
	s.stock = snap.stock
	s.nextID = snap.nextID
}

// Run implementa TxRunner: una transacción a la vez; rollback completo si fn falla.
func (s *Store) Run(_ context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&MovementRepo{s: s}, &StockRepo{s: s}, &ProductRepo{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	s.txCount++
	return nil
}

// MovementRepository repositorio de movimientos fuera de transacción.
func (s *Store) MovementRepository() *MovementRepo { return &MovementRepo{s: s, locked: true} }

// StockRepository repositorio de stock fuera de transacción.
func (s *Store) StockRepository() *StockRepo { return &StockRepo{s: s, locked: true} }

// ProductRepository repositorio de productos fuera de transacción.
func (s *Store) ProductRepository() *ProductRepo { return &ProductRepo{s: s, locked: true} }

// LevelRepository repositorio de lecturas unidas al catálogo.
func (s *Store) LevelRepository() *LevelRepo { return &LevelRepo{s: s} }

// guard toma el mutex si el repositorio se usa fuera de Run.
func guard(s *Store, locked bool) func() {
	if !locked {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// ─── Productos ───────────────────────────────────────────────────────────────

// ProductRepo implementa repository.ProductRepository.
type ProductRepo struct {
	s      *Store
	locked bool
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer guard(r.s, r.locked)()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	defer guard(r.s, r.locked)()
	id, ok := r.s.bySKU[sku]
	if !ok {
		return nil, nil
	}
	cp := *r.s.products[id]
	return &cp, nil
}

// ─── Movimientos ─────────────────────────────────────────────────────────────

// MovementRepo implementa repository.InventoryMovementRepository.
type MovementRepo struct {
	s      *Store
	locked bool
}

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	defer guard(r.s, r.locked)()
	if err := r.s.check(OpMovementCreate); err != nil {
		return err
	}
	r.s.nextID++
	m.ID = r.s.nextID
	cp := *m
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *MovementRepo) ListByPair(_ context.Context, productID string, area entity.Area) ([]*entity.Movement, error) {
	defer guard(r.s, r.locked)()
	var out []*entity.Movement
	for _, m := range r.s.movements {
		if m.ProductID == productID && m.Area == area {
			cp := *m
			out = append(out, &cp)
		}
	}
	ledger.SortMovements(out)
	return out, nil
}

func (r *MovementRepo) ListByProduct(_ context.Context, productID string, limit int) ([]*entity.Movement, error) {
	defer guard(r.s, r.locked)()
	var out []*entity.Movement
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sortDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MovementRepo) ListRecent(_ context.Context, limit int) ([]*entity.MovementDetail, error) {
	defer guard(r.s, r.locked)()
	movs := make([]*entity.Movement, len(r.s.movements))
	copy(movs, r.s.movements)
	sortDesc(movs)
	if limit > 0 && len(movs) > limit {
		movs = movs[:limit]
	}
	out := make([]*entity.MovementDetail, 0, len(movs))
	for _, m := range movs {
		d := &entity.MovementDetail{Movement: *m}
		if p, ok := r.s.products[m.ProductID]; ok {
			d.SKU = p.SKU
			d.ProductName = p.Name
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *MovementRepo) Projections(_ context.Context) ([]entity.StockProjection, error) {
	defer guard(r.s, r.locked)()
	groups := make(map[pair][]*entity.Movement)
	var keys []pair
	for _, m := range r.s.movements {
		k := pair{m.ProductID, m.Area}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], m)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].productID != keys[j].productID {
			return keys[i].productID < keys[j].productID
		}
		return keys[i].area < keys[j].area
	})
	out := make([]entity.StockProjection, 0, len(keys))
	for _, k := range keys {
		out = append(out, ledger.Baseline(groups[k]))
	}
	return out, nil
}

func sortDesc(movs []*entity.Movement) {
	sort.SliceStable(movs, func(i, j int) bool { return movs[j].Before(movs[i]) })
}

// ─── Stock ───────────────────────────────────────────────────────────────────

// StockRepo implementa repository.StockRepository.
type StockRepo struct {
	s      *Store
	locked bool
}

func (r *StockRepo) Get(_ context.Context, productID string, area entity.Area) (*entity.StockEntry, error) {
	defer guard(r.s, r.locked)()
	if e, ok := r.s.stock[pair{productID, area}]; ok {
		cp := *e
		return &cp, nil
	}
	return &entity.StockEntry{ProductID: productID, Area: area, Quantity: decimal.Zero}, nil
}

// GetForUpdate crea la fila en cero si falta. El bloqueo lo da el mutex de Run.
func (r *StockRepo) GetForUpdate(_ context.Context, productID string, area entity.Area) (*entity.StockEntry, error) {
	defer guard(r.s, r.locked)()
	if err := r.s.check(OpStockGetForUpdate); err != nil {
		return nil, err
	}
	k := pair{productID, area}
	e, ok := r.s.stock[k]
	if !ok {
		e = &entity.StockEntry{ProductID: productID, Area: area, Quantity: decimal.Zero, UpdatedAt: time.Now().UTC()}
		r.s.stock[k] = e
	}
	cp := *e
	return &cp, nil
}

func (r *StockRepo) Upsert(_ context.Context, e *entity.StockEntry) error {
	defer guard(r.s, r.locked)()
	if err := r.s.check(OpStockUpsert); err != nil {
		return err
	}
	if e.Quantity.IsNegative() {
		return errors.New("memstore: inventory_stock quantity < 0")
	}
	cp := *e
	r.s.stock[pair{e.ProductID, e.Area}] = &cp
	return nil
}

// LockTable no hace nada: Run ya serializa.
func (r *StockRepo) LockTable(_ context.Context) error { return nil }

func (r *StockRepo) ListAll(_ context.Context) ([]*entity.StockEntry, error) {
	defer guard(r.s, r.locked)()
	return r.s.entries(func(*entity.StockEntry) bool { return true }), nil
}

func (r *StockRepo) ListByArea(_ context.Context, area entity.Area) ([]*entity.StockEntry, error) {
	defer guard(r.s, r.locked)()
	return r.s.entries(func(e *entity.StockEntry) bool {
		return e.Area == area && !e.Quantity.IsZero()
	}), nil
}

func (r *StockRepo) DeleteArea(_ context.Context, area entity.Area) (int64, error) {
	defer guard(r.s, r.locked)()
	if err := r.s.check(OpStockDeleteArea); err != nil {
		return 0, err
	}
	var n int64
	for k := range r.s.stock {
		if k.area == area {
			delete(r.s.stock, k)
			n++
		}
	}
	return n, nil
}

func (s *Store) entries(keep func(*entity.StockEntry) bool) []*entity.StockEntry {
	var out []*entity.StockEntry
	for _, e := range s.stock {
		if keep(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].Area < out[j].Area
	})
	return out
}

// ─── Niveles ─────────────────────────────────────────────────────────────────

// LevelRepo implementa repository.InventoryLevelRepository.
type LevelRepo struct {
	s *Store
}

func (r *LevelRepo) levels() []*entity.InventoryLevel {
	out := make([]*entity.InventoryLevel, 0, len(r.s.stock))
	for _, e := range r.s.stock {
		p, ok := r.s.products[e.ProductID]
		if !ok {
			continue
		}
		out = append(out, &entity.InventoryLevel{
			ProductID:   e.ProductID,
			SKU:         p.SKU,
			ProductName: p.Name,
			Area:        e.Area,
			Quantity:    e.Quantity,
			UpdatedAt:   e.UpdatedAt,
		})
	}
	return out
}

func (r *LevelRepo) List(_ context.Context, f repository.StockFilter) ([]*entity.InventoryLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := strings.ToLower(f.Query)
	var out []*entity.InventoryLevel
	for _, l := range r.levels() {
		if f.Area != "" && l.Area != f.Area {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(l.SKU), q) && !strings.Contains(strings.ToLower(l.ProductName), q) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductName != out[j].ProductName {
			return out[i].ProductName < out[j].ProductName
		}
		return out[i].Area < out[j].Area
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *LevelRepo) ListLow(_ context.Context, threshold decimal.Decimal, limit int) ([]*entity.InventoryLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryLevel
	for _, l := range r.levels() {
		if l.Quantity.LessThanOrEqual(threshold) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Quantity.Equal(out[j].Quantity) {
			return out[i].Quantity.LessThan(out[j].Quantity)
		}
		return out[i].ProductName < out[j].ProductName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *LevelRepo) TotalsByArea(_ context.Context) (map[entity.Area]decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[entity.Area]decimal.Decimal)
	for _, e := range r.s.stock {
		out[e.Area] = out[e.Area].Add(e.Quantity)
	}
	return out, nil
}

var (
	_ repository.ProductRepository           = (*ProductRepo)(nil)
	_ repository.InventoryMovementRepository = (*MovementRepo)(nil)
	_ repository.StockRepository             = (*StockRepo)(nil)
	_ repository.InventoryLevelRepository    = (*LevelRepo)(nil)
)
