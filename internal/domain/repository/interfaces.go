package repository

import (
	"context"
	"io"
	"time"

	"ModelVault/internal/domain/models"
)

// Backend fetches raw artifact bytes by path relative to the storage root.
// The variant (local filesystem or S3) is fixed at construction.
type Backend interface {
	Name() string
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// ObjectSink accepts artifact uploads. Implemented by the S3 backend and used
// by the model tree sync tool.
type ObjectSink interface {
	Head(ctx context.Context, key string) (size int64, exists bool, err error)
	Put(ctx context.Context, key string, body io.Reader, size int64) error
}

// BundleSource is what API handlers need from the loader facade.
type BundleSource interface {
	LoadModelsForTicker(ctx context.Context, ticker string) (*models.Bundle, error)
	GetModelPathForTicker(ticker string) (string, error)
	ClearCache(ctx context.Context)
	CacheInfo() models.CacheInfo
}

// CostSource fetches one day's spend from the billing API.
type CostSource interface {
	DailyCosts(ctx context.Context, day time.Time) (*models.CostSnapshot, error)
}

// CostStore persists daily cost snapshots and serves monthly aggregates.
type CostStore interface {
	Store(ctx context.Context, snap *models.CostSnapshot) error
	Month(ctx context.Context, year, month int) ([]*models.CostSnapshot, error)
	Health(ctx context.Context) error
	Close() error
}

// AlertPublisher emits cost alerts for downstream consumers. Delivery
// (email, chat) is owned by whoever consumes the topic.
type AlertPublisher interface {
	Publish(ctx context.Context, alert *models.CostAlert) error
	Close() error
}

// Metrics records loader and cost-watch observations.
type Metrics interface {
	RecordFetch(backend, path string)
	RecordFetchBytes(backend string, n int)
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
	RecordLoadDuration(ticker string, seconds float64)
	RecordError(kind string)
	RecordDailyCost(service string, amount float64)
}
