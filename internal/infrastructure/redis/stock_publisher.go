package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/bodega-stock/internal/application/inventory"
)

var _ inventory.StockNotifier = (*StockPublisher)(nil)

// Publisher lo que StockPublisher necesita de *redis.Client.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
}

// StockEvent mensaje publicado por cada operación confirmada.
type StockEvent struct {
	Changes     []inventory.StockChange `json:"changes"`
	PublishedAt time.Time               `json:"published_at"`
}

// StockPublisher publica los cambios de stock en un canal. Un publisher nil no hace nada.
type StockPublisher struct {
	client  Publisher
	channel string
	timeout time.Duration
}

// NewStockPublisher construye el publisher sobre un cliente (normalmente *redis.Client).
func NewStockPublisher(client Publisher, channel string) *StockPublisher {
	return &StockPublisher{client: client, channel: channel, timeout: 2 * time.Second}
}

// StockChanged serializa los cambios como un StockEvent JSON y los publica.
func (p *StockPublisher) StockChanged(ctx context.Context, changes []inventory.StockChange) error {
	if p == nil || p.client == nil || len(changes) == 0 {
		return nil
	}
	payload, err := json.Marshal(StockEvent{Changes: changes, PublishedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal stock event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", p.channel, err)
	}
	return nil
}
