package models

// AssetStatus marks whether a registered asset has a trained model deployed.
type AssetStatus string

const (
	StatusActive  AssetStatus = "active"
	StatusPlanned AssetStatus = "planned"
)

// AssetClass distinguishes per-ETF models from the shared universal stock model.
type AssetClass string

const (
	ClassETF   AssetClass = "etf"
	ClassStock AssetClass = "stock"
)

// AssetEntry is one ticker's row in the asset registry document.
type AssetEntry struct {
	Name      string      `json:"name"`
	ModelPath string      `json:"model_path"`
	Status    AssetStatus `json:"status"`
}

// RegistryDoc is the asset registry document schema
// (metadata/asset_registry.json).
type RegistryDoc struct {
	ETFs   map[string]AssetEntry `json:"etfs"`
	Stocks map[string]AssetEntry `json:"stocks"`
}

// ArtifactLocation is a resolved registry entry: where a ticker's artifacts
// live relative to the backend root, and whether the asset is live.
type ArtifactLocation struct {
	Ticker string      `json:"ticker"`
	Class  AssetClass  `json:"class"`
	Name   string      `json:"name,omitempty"`
	Path   string      `json:"path"`
	Status AssetStatus `json:"status"`
}

// Active reports whether artifacts are expected to exist for this location.
func (l ArtifactLocation) Active() bool {
	return l.Status == StatusActive
}
