package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"ModelVault/internal/domain/models"
	"ModelVault/internal/registry"
	"ModelVault/pkg/cache"
)

// countingBackend serves artifacts from a map and counts fetches per path.
type countingBackend struct {
	mu     sync.Mutex
	data   map[string][]byte
	counts map[string]int
}

func newCountingBackend() *countingBackend {
	return &countingBackend{
		data:   make(map[string][]byte),
		counts: make(map[string]int),
	}
}

func (b *countingBackend) Name() string { return "fake" }

func (b *countingBackend) Fetch(_ context.Context, path string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counts[path]++
	d, ok := b.data[path]
	if !ok {
		return nil, &models.ArtifactNotFoundError{Backend: "fake", Path: path}
	}
	return d, nil
}

func (b *countingBackend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.counts {
		n += c
	}
	return n
}

func (b *countingBackend) addBundle(path, ticker string, features int, accuracy float64) {
	names := make([]string, features)
	for i := range names {
		names[i] = fmt.Sprintf("feature_%d", i)
	}
	featuresJSON, _ := json.Marshal(names)
	metadata := fmt.Sprintf(`{"version":"1.0","created_date":"2024-01-15","ticker":%q,"accuracy":%v}`, ticker, accuracy)

	b.data[path+models.ModelFile] = []byte{0x80, 0x04, 0x95, 0x01}
	b.data[path+models.EncoderFile] = []byte{0x80, 0x04, 0x95, 0x02}
	b.data[path+models.FeatureNamesFile] = featuresJSON
	b.data[path+models.MetadataFile] = []byte(metadata)
}

func testResolver() *registry.Resolver {
	return registry.NewResolver(models.RegistryDoc{
		ETFs: map[string]models.AssetEntry{
			"SMH": {Name: "VanEck Semiconductor ETF", Status: models.StatusActive},
			"GDX": {Name: "VanEck Gold Miners", Status: models.StatusPlanned},
		},
		Stocks: map[string]models.AssetEntry{
			"AAPL": {Status: models.StatusActive},
			"MSFT": {Status: models.StatusActive},
		},
	})
}

func TestLoadModelsForTicker(t *testing.T) {
	b := newCountingBackend()
	b.addBundle("etfs/SMH/production/", "SMH", 84, 0.8421)
	l := New(b, testResolver())

	bundle, err := l.LoadModelsForTicker(context.Background(), "SMH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bundle.Ticker != "SMH" {
		t.Fatalf("unexpected ticker %q", bundle.Ticker)
	}
	if bundle.ModelType != models.ModelTypeETF {
		t.Fatalf("unexpected model type %q", bundle.ModelType)
	}
	if len(bundle.FeatureNames) != 84 {
		t.Fatalf("unexpected feature count %d", len(bundle.FeatureNames))
	}
	if bundle.Metadata.Accuracy != 0.8421 {
		t.Fatalf("unexpected accuracy %v", bundle.Metadata.Accuracy)
	}
	if bundle.Model == nil || bundle.Model.Format != models.FormatPickle {
		t.Fatalf("unexpected model blob %+v", bundle.Model)
	}
	if b.total() != 4 {
		t.Fatalf("expected 4 fetches, got %d", b.total())
	}
}

func TestLoadModelsForTickerCached(t *testing.T) {
	b := newCountingBackend()
	b.addBundle("etfs/SMH/production/", "SMH", 84, 0.8421)
	l := New(b, testResolver())

	first, err := l.LoadModelsForTicker(context.Background(), "SMH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := l.LoadModelsForTicker(context.Background(), "smh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same cached bundle")
	}
	if b.total() != 4 {
		t.Fatalf("expected no extra fetches, got %d", b.total())
	}
}

func TestLoadModelsForTickerUnknown(t *testing.T) {
	b := newCountingBackend()
	l := New(b, testResolver())

	_, err := l.LoadModelsForTicker(context.Background(), "NOPE")
	var unknown *models.UnknownTickerError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTickerError, got %v", err)
	}
	if b.total() != 0 {
		t.Fatalf("expected no fetches, got %d", b.total())
	}
	if l.CacheInfo().Count != 0 {
		t.Fatalf("cache should stay empty")
	}
}

func TestLoadModelsForTickerEmpty(t *testing.T) {
	l := New(newCountingBackend(), testResolver())

	if _, err := l.LoadModelsForTicker(context.Background(), ""); !errors.Is(err, models.ErrEmptyTicker) {
		t.Fatalf("expected ErrEmptyTicker, got %v", err)
	}
}

func TestLoadModelsForTickerInactive(t *testing.T) {
	b := newCountingBackend()
	b.addBundle("etfs/GDX/production/", "GDX", 10, 0.5)
	l := New(b, testResolver())

	_, err := l.LoadModelsForTicker(context.Background(), "GDX")
	var inactive *models.InactiveAssetError
	if !errors.As(err, &inactive) {
		t.Fatalf("expected InactiveAssetError, got %v", err)
	}
	if b.total() != 0 {
		t.Fatalf("inactive assets must not be fetched, got %d fetches", b.total())
	}
}

func TestLoadModelsForTickerAllowInactive(t *testing.T) {
	b := newCountingBackend()
	b.addBundle("etfs/GDX/production/", "GDX", 10, 0.5)
	l := New(b, testResolver(), WithAllowInactive(true))

	if _, err := l.LoadModelsForTicker(context.Background(), "GDX"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadModelsForTickerMissingArtifact(t *testing.T) {
	b := newCountingBackend()
	b.addBundle("etfs/SMH/production/", "SMH", 84, 0.8421)
	delete(b.data, "etfs/SMH/production/"+models.MetadataFile)
	l := New(b, testResolver())

	_, err := l.LoadModelsForTicker(context.Background(), "SMH")
	var notFound *models.ArtifactNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ArtifactNotFoundError, got %v", err)
	}
	if l.CacheInfo().Count != 0 {
		t.Fatalf("partial bundles must not be cached")
	}
}

func TestLoadModelsForTickerMalformedMetadata(t *testing.T) {
	b := newCountingBackend()
	b.addBundle("etfs/SMH/production/", "SMH", 84, 1.5)
	l := New(b, testResolver())

	_, err := l.LoadModelsForTicker(context.Background(), "SMH")
	var malformed *models.MalformedMetadataError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedMetadataError, got %v", err)
	}
	if l.CacheInfo().Count != 0 {
		t.Fatalf("failed loads must not be cached")
	}
}

func TestLoadModelsForTickerMetadataMismatch(t *testing.T) {
	b := newCountingBackend()
	b.addBundle("etfs/SMH/production/", "QQQ", 84, 0.8421)
	l := New(b, testResolver())

	_, err := l.LoadModelsForTicker(context.Background(), "SMH")
	var malformed *models.MalformedMetadataError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedMetadataError, got %v", err)
	}
}

func TestUniversalModelSkipsTickerCheck(t *testing.T) {
	b := newCountingBackend()
	b.addBundle("stocks/universal/production/", "UNIVERSAL", 120, 0.61)
	l := New(b, testResolver())

	bundle, err := l.LoadModelsForTicker(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bundle.ModelType != models.ModelTypeUniversal {
		t.Fatalf("unexpected model type %q", bundle.ModelType)
	}
}

func TestUniversalModelSharedFetchWithBytesCache(t *testing.T) {
	b := newCountingBackend()
	b.addBundle("stocks/universal/production/", "UNIVERSAL", 120, 0.61)
	mem := cache.NewMemory(cache.WithMaxEntries(32))
	defer mem.Close()
	l := New(b, testResolver(), WithBytesCache(mem, 0))

	if _, err := l.LoadModelsForTicker(context.Background(), "AAPL"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := l.LoadModelsForTicker(context.Background(), "MSFT"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Both tickers share one path; the second bundle decodes from cached bytes.
	if b.total() != 4 {
		t.Fatalf("expected 4 fetches, got %d", b.total())
	}

	info := l.CacheInfo()
	if info.Count != 2 {
		t.Fatalf("expected 2 cached bundles, got %d", info.Count)
	}
}

func TestGetModelPathForTicker(t *testing.T) {
	l := New(newCountingBackend(), testResolver())

	path, err := l.GetModelPathForTicker("SMH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "etfs/SMH/production/" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestClearCache(t *testing.T) {
	b := newCountingBackend()
	b.addBundle("etfs/SMH/production/", "SMH", 84, 0.8421)
	mem := cache.NewMemory()
	defer mem.Close()
	l := New(b, testResolver(), WithBytesCache(mem, 0))

	ctx := context.Background()
	if _, err := l.LoadModelsForTicker(ctx, "SMH"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.CacheInfo().Count != 1 {
		t.Fatalf("expected 1 cached bundle")
	}

	l.ClearCache(ctx)

	info := l.CacheInfo()
	if info.Count != 0 || len(info.CachedTickers) != 0 {
		t.Fatalf("cache not cleared: %+v", info)
	}
	if mem.Len() != 0 {
		t.Fatalf("bytes cache not cleared, %d entries", mem.Len())
	}

	if _, err := l.LoadModelsForTicker(ctx, "SMH"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.total() != 8 {
		t.Fatalf("expected refetch after clear, got %d fetches", b.total())
	}
}

func TestCacheInfoSource(t *testing.T) {
	b := newCountingBackend()
	b.addBundle("etfs/SMH/production/", "SMH", 84, 0.8421)
	l := New(b, testResolver())

	if _, err := l.LoadModelsForTicker(context.Background(), "SMH"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info := l.CacheInfo()
	if info.Source != "fake" {
		t.Fatalf("unexpected source %q", info.Source)
	}
	if len(info.CachedTickers) != 1 || info.CachedTickers[0] != "SMH" {
		t.Fatalf("unexpected tickers %v", info.CachedTickers)
	}
}

func TestConcurrentLoadSingleFetch(t *testing.T) {
	b := newCountingBackend()
	b.addBundle("etfs/SMH/production/", "SMH", 84, 0.8421)
	l := New(b, testResolver())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.LoadModelsForTicker(context.Background(), "SMH"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if b.total() != 4 {
		t.Fatalf("expected 4 fetches, got %d", b.total())
	}
}
