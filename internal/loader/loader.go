package loader

import (
	"context"
	"strings"
	"sync"
	"time"

	"ModelVault/internal/artifact"
	"ModelVault/internal/domain/models"
	"ModelVault/internal/domain/repository"
	"ModelVault/internal/registry"
	"ModelVault/pkg/cache"
	xlogger "ModelVault/pkg/logger"
)

const bytesKeyPrefix = "artifact"

// Option configures the Loader.
type Option func(*Loader)

// WithBytesCache adds a raw-bytes cache keyed by artifact path. Tickers that
// share a model path (universal stock model) then share one backend fetch,
// and a Redis-backed cache can span process restarts.
func WithBytesCache(svc cache.Service, ttl time.Duration) Option {
	return func(l *Loader) {
		l.bytes = svc
		l.bytesTTL = ttl
	}
}

// WithAllowInactive loads bundles for assets whose registry status is not
// active. Off by default: planned assets fail with InactiveAssetError before
// any fetch is attempted.
func WithAllowInactive(allow bool) Option {
	return func(l *Loader) { l.allowInactive = allow }
}

// WithLogger sets the structured logger.
func WithLogger(log *xlogger.Logger) Option {
	return func(l *Loader) { l.log = log }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m repository.Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// Loader resolves, fetches, decodes and caches model artifact bundles.
// Safe for concurrent use; the check-then-insert path is serialized so each
// ticker is fetched and decoded at most once per cache lifetime.
type Loader struct {
	backend  repository.Backend
	resolver *registry.Resolver
	bundles  *bundleCache

	bytes    cache.Service
	bytesTTL time.Duration

	allowInactive bool
	log           *xlogger.Logger
	metrics       repository.Metrics

	loadMu sync.Mutex
}

// New creates a Loader over a fixed backend and resolver.
func New(backend repository.Backend, resolver *registry.Resolver, opts ...Option) *Loader {
	l := &Loader{
		backend: backend,
		resolver: resolver,
		bundles: newBundleCache(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// GetModelPathForTicker returns the artifact path prefix for a ticker.
// Pure registry lookup: no I/O, no cache interaction.
func (l *Loader) GetModelPathForTicker(ticker string) (string, error) {
	loc, err := l.resolver.Resolve(ticker)
	if err != nil {
		return "", err
	}
	return loc.Path, nil
}

// LoadModelsForTicker returns the complete artifact bundle for a ticker,
// loading it from the backend on first request. Either all four artifacts
// decode successfully or the call fails and the cache stays untouched.
func (l *Loader) LoadModelsForTicker(ctx context.Context, ticker string) (*models.Bundle, error) {
	loc, err := l.resolver.Resolve(ticker)
	if err != nil {
		l.recordError("registry")
		return nil, err
	}

	if b, ok := l.bundles.get(loc.Ticker); ok {
		l.recordCache("bundle", true)
		return b, nil
	}
	l.recordCache("bundle", false)

	l.loadMu.Lock()
	defer l.loadMu.Unlock()

	// Re-check: another caller may have populated the entry while we waited.
	if b, ok := l.bundles.get(loc.Ticker); ok {
		return b, nil
	}

	if !loc.Active() && !l.allowInactive {
		l.recordError("inactive_asset")
		return nil, &models.InactiveAssetError{Ticker: loc.Ticker, Status: loc.Status}
	}

	start := time.Now()
	bundle, err := l.loadBundle(ctx, loc)
	if err != nil {
		return nil, err
	}

	l.bundles.put(loc.Ticker, bundle)
	if l.metrics != nil {
		l.metrics.RecordLoadDuration(loc.Ticker, time.Since(start).Seconds())
	}
	if l.log != nil {
		l.log.Info("bundle loaded",
			xlogger.String("ticker", loc.Ticker),
			xlogger.String("model_type", string(bundle.ModelType)),
			xlogger.String("version", bundle.Metadata.Version),
			xlogger.Int("features", len(bundle.FeatureNames)),
		)
	}
	return bundle, nil
}

// ClearCache empties the bundle cache and, when configured, the raw-bytes
// cache. Subsequent loads fetch from the backend again.
func (l *Loader) ClearCache(ctx context.Context) {
	l.bundles.clear()
	if l.bytes != nil {
		if err := l.bytes.DeleteByPattern(ctx, cache.Key(bytesKeyPrefix, "*")); err != nil && l.log != nil {
			l.log.Warn("bytes cache clear failed", xlogger.Error(err))
		}
	}
	if l.log != nil {
		l.log.Info("cache cleared")
	}
}

// CacheInfo reports which tickers are cached.
func (l *Loader) CacheInfo() models.CacheInfo {
	return models.CacheInfo{
		CachedTickers: l.bundles.tickers(),
		Count:         l.bundles.len(),
		Source:        l.backend.Name(),
	}
}

func (l *Loader) loadBundle(ctx context.Context, loc models.ArtifactLocation) (*models.Bundle, error) {
	modelRaw, err := l.fetch(ctx, loc.Path+models.ModelFile)
	if err != nil {
		return nil, err
	}
	encoderRaw, err := l.fetch(ctx, loc.Path+models.EncoderFile)
	if err != nil {
		return nil, err
	}
	featuresRaw, err := l.fetch(ctx, loc.Path+models.FeatureNamesFile)
	if err != nil {
		return nil, err
	}
	metadataRaw, err := l.fetch(ctx, loc.Path+models.MetadataFile)
	if err != nil {
		return nil, err
	}

	model, err := artifact.DecodeBlob(loc.Path+models.ModelFile, modelRaw)
	if err != nil {
		l.recordError("decode")
		return nil, err
	}
	encoder, err := artifact.DecodeBlob(loc.Path+models.EncoderFile, encoderRaw)
	if err != nil {
		l.recordError("decode")
		return nil, err
	}
	features, err := artifact.DecodeFeatureNames(loc.Path+models.FeatureNamesFile, featuresRaw)
	if err != nil {
		l.recordError("decode")
		return nil, err
	}
	md, err := artifact.DecodeMetadata(loc.Path+models.MetadataFile, metadataRaw)
	if err != nil {
		l.recordError("metadata")
		return nil, err
	}

	modelType := classify(loc.Path)
	if err := checkTickerConsistency(loc, modelType, md); err != nil {
		l.recordError("metadata")
		return nil, err
	}

	return &models.Bundle{
		Ticker:       loc.Ticker,
		ModelPath:    loc.Path,
		ModelType:    modelType,
		Model:        model,
		LabelEncoder: encoder,
		FeatureNames: features,
		Metadata:     md,
		LoadedAt:     time.Now(),
	}, nil
}

func (l *Loader) fetch(ctx context.Context, path string) ([]byte, error) {
	key := cache.Key(bytesKeyPrefix, path)

	if l.bytes != nil {
		if b, err := l.bytes.Get(ctx, key); err == nil {
			l.recordCache("bytes", true)
			return b, nil
		}
		l.recordCache("bytes", false)
	}

	data, err := l.backend.Fetch(ctx, path)
	if err != nil {
		l.recordError("fetch")
		return nil, err
	}
	if l.metrics != nil {
		l.metrics.RecordFetch(l.backend.Name(), path)
		l.metrics.RecordFetchBytes(l.backend.Name(), len(data))
	}

	if l.bytes != nil {
		if err := l.bytes.Set(ctx, key, data, l.bytesTTL); err != nil && l.log != nil {
			l.log.Warn("bytes cache set failed", xlogger.String("path", path), xlogger.Error(err))
		}
	}
	return data, nil
}

func (l *Loader) recordCache(kind string, hit bool) {
	if l.metrics == nil {
		return
	}
	if hit {
		l.metrics.RecordCacheHit(kind)
	} else {
		l.metrics.RecordCacheMiss(kind)
	}
}

func (l *Loader) recordError(kind string) {
	if l.metrics != nil {
		l.metrics.RecordError(kind)
	}
}

func classify(path string) models.ModelType {
	switch {
	case strings.HasPrefix(path, "etfs/"):
		return models.ModelTypeETF
	case strings.HasPrefix(path, "stocks/universal"):
		return models.ModelTypeUniversal
	default:
		return models.ModelTypeUnknown
	}
}

// checkTickerConsistency rejects bundles whose metadata belongs to a
// different asset. The universal stock model is trained across tickers and
// carries its own marker instead of a per-ticker symbol.
func checkTickerConsistency(loc models.ArtifactLocation, mt models.ModelType, md *models.Metadata) error {
	if mt == models.ModelTypeUniversal {
		return nil
	}
	if !strings.EqualFold(md.Ticker, loc.Ticker) {
		return &models.MalformedMetadataError{
			Path:   loc.Path + models.MetadataFile,
			Reason: "metadata ticker " + md.Ticker + " does not match requested ticker " + loc.Ticker,
		}
	}
	return nil
}
