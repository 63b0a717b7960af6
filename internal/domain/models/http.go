package models

import "time"

// BundleRequest binds the ticker path parameter for model endpoints.
type BundleRequest struct {
	Ticker string `param:"ticker" validate:"required,min=1,max=12,alphanum"`
}

// DailyCostRequest binds the optional date query parameter (YYYY-MM-DD,
// defaults to yesterday).
type DailyCostRequest struct {
	Date string `query:"date" validate:"omitempty,datetime=2006-01-02"`
}

// MonthlyCostRequest binds the year/month query parameters.
type MonthlyCostRequest struct {
	Year  int `query:"year" validate:"required,gte=2020,lte=2100"`
	Month int `query:"month" validate:"required,gte=1,lte=12"`
}

// BundleSummary is the API view of a loaded bundle. Blobs are summarized by
// digest and size; raw model bytes never leave the loader.
type BundleSummary struct {
	Ticker       string    `json:"ticker"`
	ModelPath    string    `json:"model_path"`
	ModelType    ModelType `json:"model_type"`
	Version      string    `json:"version"`
	CreatedDate  string    `json:"created_date"`
	Accuracy     float64   `json:"accuracy"`
	FeatureCount int       `json:"feature_count"`
	Model        *Blob     `json:"model"`
	LabelEncoder *Blob     `json:"label_encoder"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// Summary converts a bundle into its API representation.
func (b *Bundle) Summary() *BundleSummary {
	return &BundleSummary{
		Ticker:       b.Ticker,
		ModelPath:    b.ModelPath,
		ModelType:    b.ModelType,
		Version:      b.Metadata.Version,
		CreatedDate:  b.Metadata.CreatedDate,
		Accuracy:     b.Metadata.Accuracy,
		FeatureCount: len(b.FeatureNames),
		Model:        b.Model,
		LabelEncoder: b.LabelEncoder,
		LoadedAt:     b.LoadedAt,
	}
}

// PathResponse is the resolver-only path lookup result.
type PathResponse struct {
	Ticker string `json:"ticker"`
	Path   string `json:"path"`
}
