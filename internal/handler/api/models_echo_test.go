package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"ModelVault/internal/domain/models"
)

type fakeBundleSource struct {
	bundle  *models.Bundle
	loadErr error
	pathErr error
	cleared bool
}

func (f *fakeBundleSource) LoadModelsForTicker(_ context.Context, _ string) (*models.Bundle, error) {
	return f.bundle, f.loadErr
}

func (f *fakeBundleSource) GetModelPathForTicker(_ string) (string, error) {
	if f.pathErr != nil {
		return "", f.pathErr
	}
	return f.bundle.ModelPath, nil
}

func (f *fakeBundleSource) ClearCache(_ context.Context) { f.cleared = true }

func (f *fakeBundleSource) CacheInfo() models.CacheInfo {
	return models.CacheInfo{CachedTickers: []string{"SMH"}, Count: 1, Source: "local"}
}

func testBundle() *models.Bundle {
	return &models.Bundle{
		Ticker:    "SMH",
		ModelPath: "etfs/SMH/production/",
		ModelType: models.ModelTypeETF,
		Model: &models.Blob{
			Format: models.FormatPickle,
			SHA256: "abc",
			Size:   4,
		},
		LabelEncoder: &models.Blob{
			Format: models.FormatPickle,
			SHA256: "def",
			Size:   4,
		},
		FeatureNames: []string{"rsi_14", "macd"},
		Metadata: &models.Metadata{
			Version:     "1.0",
			CreatedDate: "2024-01-15",
			Ticker:      "SMH",
			Accuracy:    0.8421,
		},
		LoadedAt: time.Now(),
	}
}

func doRequest(h *ModelsEchoHandler, method, target string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGetBundle(t *testing.T) {
	h := NewModelsEchoHandler(&fakeBundleSource{bundle: testBundle()}, nil)

	rec := doRequest(h, http.MethodGet, "/api/models/SMH")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.BundleSummary `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.Ticker != "SMH" {
		t.Fatalf("unexpected ticker %q", resp.Data.Ticker)
	}
	if resp.Data.FeatureCount != 2 {
		t.Fatalf("unexpected feature count %d", resp.Data.FeatureCount)
	}
	if resp.Data.Accuracy != 0.8421 {
		t.Fatalf("unexpected accuracy %v", resp.Data.Accuracy)
	}
}

func TestGetBundleUnknownTicker(t *testing.T) {
	src := &fakeBundleSource{loadErr: &models.UnknownTickerError{Ticker: "NOPE"}}
	h := NewModelsEchoHandler(src, nil)

	rec := doRequest(h, http.MethodGet, "/api/models/NOPE")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestGetBundleInactiveAsset(t *testing.T) {
	src := &fakeBundleSource{loadErr: &models.InactiveAssetError{Ticker: "GDX", Status: models.StatusPlanned}}
	h := NewModelsEchoHandler(src, nil)

	rec := doRequest(h, http.MethodGet, "/api/models/GDX")
	if rec.Code != http.StatusConflict {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestGetBundleBackendUnavailable(t *testing.T) {
	src := &fakeBundleSource{loadErr: &models.BackendUnavailableError{Backend: "s3", Path: "x"}}
	h := NewModelsEchoHandler(src, nil)

	rec := doRequest(h, http.MethodGet, "/api/models/SMH")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestGetBundleMalformedMetadata(t *testing.T) {
	src := &fakeBundleSource{loadErr: &models.MalformedMetadataError{Path: "m.json", Reason: "missing version"}}
	h := NewModelsEchoHandler(src, nil)

	rec := doRequest(h, http.MethodGet, "/api/models/SMH")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestGetBundleDecodeError(t *testing.T) {
	src := &fakeBundleSource{loadErr: &models.ArtifactDecodeError{Path: "f.json", Reason: "empty blob"}}
	h := NewModelsEchoHandler(src, nil)

	rec := doRequest(h, http.MethodGet, "/api/models/SMH")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var resp struct {
		Data []struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Message != "decode artifact f.json: empty blob" {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestGetBundleInvalidTicker(t *testing.T) {
	h := NewModelsEchoHandler(&fakeBundleSource{bundle: testBundle()}, nil)

	rec := doRequest(h, http.MethodGet, "/api/models/SM%24H")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetModelPath(t *testing.T) {
	h := NewModelsEchoHandler(&fakeBundleSource{bundle: testBundle()}, nil)

	rec := doRequest(h, http.MethodGet, "/api/models/SMH/path")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var resp struct {
		Data models.PathResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.Path != "etfs/SMH/production/" {
		t.Fatalf("unexpected path %q", resp.Data.Path)
	}
}

func TestGetCacheInfo(t *testing.T) {
	h := NewModelsEchoHandler(&fakeBundleSource{bundle: testBundle()}, nil)

	rec := doRequest(h, http.MethodGet, "/api/cache")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var resp struct {
		Data models.CacheInfo `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.Count != 1 || resp.Data.Source != "local" {
		t.Fatalf("unexpected cache info %+v", resp.Data)
	}
}

func TestClearCache(t *testing.T) {
	src := &fakeBundleSource{bundle: testBundle()}
	h := NewModelsEchoHandler(src, nil)

	rec := doRequest(h, http.MethodDelete, "/api/cache")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !src.cleared {
		t.Fatalf("cache not cleared")
	}
}

func TestHealth(t *testing.T) {
	h := NewModelsEchoHandler(&fakeBundleSource{bundle: testBundle()}, nil)

	rec := doRequest(h, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}
