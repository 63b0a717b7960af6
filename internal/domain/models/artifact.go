package models

import "time"

// Artifact file names inside a model path prefix. The training pipeline owns
// these names; the loader only resolves and fetches them.
const (
	ModelFile        = "lightgbm_clean_model.pkl"
	EncoderFile      = "label_encoder_clean.pkl"
	FeatureNamesFile = "feature_names_clean.json"
	MetadataFile     = "metadata.json"
)

// BlobFormat is the sniffed serialization format of an opaque artifact blob.
type BlobFormat string

const (
	FormatPickle   BlobFormat = "pickle"
	FormatGzip     BlobFormat = "gzip"
	FormatZlib     BlobFormat = "zlib"
	FormatLGBMText BlobFormat = "lightgbm_text"
	FormatUnknown  BlobFormat = "unknown"
)

// Blob holds a serialized model object byte-for-byte as the training pipeline
// wrote it. The loader never re-encodes blob contents; consumers that
// deserialize it rely on the bytes being untouched.
type Blob struct {
	Data   []byte     `json:"-"`
	Format BlobFormat `json:"format"`
	SHA256 string     `json:"sha256"`
	Size   int64      `json:"size"`
}

// Metadata describes one trained model version.
type Metadata struct {
	Version     string  `json:"version"`
	CreatedDate string  `json:"created_date"`
	Ticker      string  `json:"ticker"`
	Accuracy    float64 `json:"accuracy"`
}

// ModelType classifies which kind of model backs a bundle.
type ModelType string

const (
	ModelTypeETF       ModelType = "etf_specific"
	ModelTypeUniversal ModelType = "stock_universal"
	ModelTypeUnknown   ModelType = "unknown"
)

// Bundle is the complete set of artifacts for one ticker. A bundle is only
// ever constructed whole: either all four artifacts decoded, or nothing is
// returned. Cached bundles are read-only.
type Bundle struct {
	Ticker       string    `json:"ticker"`
	ModelPath    string    `json:"model_path"`
	ModelType    ModelType `json:"model_type"`
	Model        *Blob     `json:"model"`
	LabelEncoder *Blob     `json:"label_encoder"`
	FeatureNames []string  `json:"feature_names"`
	Metadata     *Metadata `json:"metadata"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// CacheInfo is a point-in-time view of the loader's bundle cache.
type CacheInfo struct {
	CachedTickers []string `json:"cached_tickers"`
	Count         int      `json:"count"`
	Source        string   `json:"source"`
}
