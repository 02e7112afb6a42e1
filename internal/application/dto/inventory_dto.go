package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementRequest body para POST /api/manager/inventory/movement.
type MovementRequest struct {
	SKU      string          `json:"sku"`
	Area     string          `json:"area"`
	Type     string          `json:"type"` // ingreso | salida | ajuste
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason,omitempty"`
}

// MovementResponse resultado de un movimiento aceptado.
type MovementResponse struct {
	OK        bool            `json:"ok"`
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Area      string          `json:"area"`
	Type      string          `json:"type"`
	Stock     decimal.Decimal `json:"stock"`
}

// TransferRequest body para POST /api/manager/inventory/transfer.
type TransferRequest struct {
	SKU      string          `json:"sku"`
	FromArea string          `json:"fromArea"`
	ToArea   string          `json:"toArea"`
	Quantity decimal.Decimal `json:"quantity"`
	Reason   string          `json:"reason,omitempty"`
}

// TransferResponse cantidades resultantes de ambas áreas.
type TransferResponse struct {
	OK            bool            `json:"ok"`
	TransactionID string          `json:"transaction_id"`
	SKU           string          `json:"sku"`
	FromArea      string          `json:"from_area"`
	ToArea        string          `json:"to_area"`
	FromStock     decimal.Decimal `json:"from_stock"`
	ToStock       decimal.Decimal `json:"to_stock"`
}

// StockLevelDTO fila de stock por producto y área.
type StockLevelDTO struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Area      string          `json:"area"`
	Quantity  decimal.Decimal `json:"quantity"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// StockListResponse respuesta de GET /inventory/stock.
type StockListResponse struct {
	Items []StockLevelDTO `json:"items"`
}

// MovementDTO movimiento del log.
type MovementDTO struct {
	ID            int64           `json:"id"`
	TransactionID string          `json:"transaction_id,omitempty"`
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku,omitempty"`
	Name          string          `json:"name,omitempty"`
	Area          string          `json:"area"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	Reason        string          `json:"reason,omitempty"`
	UserID        string          `json:"user_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SummaryResponse respuesta de GET /inventory/summary.
type SummaryResponse struct {
	LowStock          []StockLevelDTO `json:"low_stock"`
	LastMovements     []MovementDTO   `json:"last_movements"`
	StockBodegaTotal  decimal.Decimal `json:"stock_bodega_total"`
	StockSurtidoTotal decimal.Decimal `json:"stock_surtido_total"`
	LowThreshold      decimal.Decimal `json:"low_threshold"`
}

// ActivityResponse respuesta de GET /products/:id/activity.
type ActivityResponse struct {
	ProductID string        `json:"product_id"`
	SKU       string        `json:"sku"`
	Name      string        `json:"name"`
	Activity  []MovementDTO `json:"activity"`
}

// StockDriftDTO par cuya proyección difiere del log.
type StockDriftDTO struct {
	ProductID string          `json:"product_id"`
	Area      string          `json:"area"`
	Stored    decimal.Decimal `json:"stored"`
	Computed  decimal.Decimal `json:"computed"`
}

// ReconcileResponse respuesta de rebuild-stock y drift.
type ReconcileResponse struct {
	OK      bool            `json:"ok"`
	DryRun  bool            `json:"dry_run"`
	Pairs   int             `json:"pairs"`
	Changed []StockDriftDTO `json:"changed"`
}

// VerifyResponse respuesta de GET /inventory/verify.
type VerifyResponse struct {
	ProductID  string          `json:"product_id"`
	SKU        string          `json:"sku"`
	Area       string          `json:"area"`
	Movements  int             `json:"movements"`
	Stored     decimal.Decimal `json:"stored"`
	Replayed   decimal.Decimal `json:"replayed"`
	Projected  decimal.Decimal `json:"projected"`
	Consistent bool            `json:"consistent"`
}

// MoveAllToBodegaResponse respuesta de POST /inventory/move-all-to-bodega.
type MoveAllToBodegaResponse struct {
	OK          bool            `json:"ok"`
	Products    int             `json:"products"`
	Quantity    decimal.Decimal `json:"quantity"`
	DeletedRows int64           `json:"deleted_rows"`
}

// ImportSkipDTO fila omitida en la importación.
type ImportSkipDTO struct {
	Kind   string `json:"kind"`
	Index  int    `json:"index"`
	SKU    string `json:"sku"`
	Reason string `json:"reason"`
}

// ImportResponse respuesta de POST /import.
type ImportResponse struct {
	OK        bool            `json:"ok"`
	Stock     int             `json:"stock"`
	Movements int             `json:"movements"`
	Skipped   []ImportSkipDTO `json:"skipped"`
	Rebuilt   int             `json:"rebuilt"`
}
