package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"ModelVault/internal/domain/models"
	"ModelVault/internal/domain/repository"
)

// DocumentKey is where the registry document lives relative to the backend root.
const DocumentKey = "metadata/asset_registry.json"

// Resolver maps tickers to artifact locations. Built once at loader
// construction and immutable afterward.
type Resolver struct {
	index map[string]models.ArtifactLocation
}

// Load fetches and parses the registry document through the given backend.
func Load(ctx context.Context, b repository.Backend) (*Resolver, error) {
	raw, err := b.Fetch(ctx, DocumentKey)
	if err != nil {
		return nil, fmt.Errorf("load asset registry: %w", err)
	}

	var doc models.RegistryDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse asset registry: %w", err)
	}

	return NewResolver(doc), nil
}

// NewResolver builds a resolver from an already-parsed registry document.
func NewResolver(doc models.RegistryDoc) *Resolver {
	index := make(map[string]models.ArtifactLocation, len(doc.ETFs)+len(doc.Stocks))

	for ticker, entry := range doc.ETFs {
		t := normalize(ticker)
		index[t] = models.ArtifactLocation{
			Ticker: t,
			Class:  models.ClassETF,
			Name:   entry.Name,
			Path:   entryPath(entry, fmt.Sprintf("etfs/%s/production/", t)),
			Status: entry.Status,
		}
	}
	for ticker, entry := range doc.Stocks {
		t := normalize(ticker)
		index[t] = models.ArtifactLocation{
			Ticker: t,
			Class:  models.ClassStock,
			Name:   entry.Name,
			Path:   entryPath(entry, "stocks/universal/production/"),
			Status: entry.Status,
		}
	}

	return &Resolver{index: index}
}

// Resolve looks up a ticker across all asset classes. Matching is
// case-insensitive.
func (r *Resolver) Resolve(ticker string) (models.ArtifactLocation, error) {
	t := normalize(ticker)
	if t == "" {
		return models.ArtifactLocation{}, models.ErrEmptyTicker
	}

	loc, ok := r.index[t]
	if !ok {
		return models.ArtifactLocation{}, &models.UnknownTickerError{Ticker: t}
	}
	return loc, nil
}

// Tickers returns all registered tickers sorted alphabetically.
func (r *Resolver) Tickers() []string {
	out := make([]string, 0, len(r.index))
	for t := range r.index {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered tickers.
func (r *Resolver) Len() int { return len(r.index) }

func normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

func entryPath(entry models.AssetEntry, fallback string) string {
	p := strings.TrimSpace(entry.ModelPath)
	if p == "" {
		return fallback
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}
