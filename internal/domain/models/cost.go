package models

import "time"

// ServiceCost is one cloud service's spend for a day.
type ServiceCost struct {
	Service string  `json:"service"`
	Amount  float64 `json:"amount"`
}

// CostSnapshot is one day's spend, grouped by service.
type CostSnapshot struct {
	Date      string        `json:"date"` // YYYY-MM-DD
	Services  []ServiceCost `json:"services"`
	Total     float64       `json:"total"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// AlertLevel classifies a daily total against configured thresholds.
type AlertLevel string

const (
	AlertNormal   AlertLevel = "normal"
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// CostAlert is the event published when a daily total is classified.
type CostAlert struct {
	Level        AlertLevel    `json:"level"`
	Date         string        `json:"date"`
	Total        float64       `json:"total"`
	Projection   float64       `json:"monthly_projection"`
	Message      string        `json:"message"`
	TopServices  []ServiceCost `json:"top_services,omitempty"`
	GeneratedAt  time.Time     `json:"generated_at"`
}

// DailyTotal is one day's aggregate spend inside a monthly report.
type DailyTotal struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// MonthlyReport aggregates stored daily snapshots for one calendar month.
type MonthlyReport struct {
	Year       int           `json:"year"`
	Month      int           `json:"month"`
	Days       []DailyTotal  `json:"days"`
	ByService  []ServiceCost `json:"by_service"`
	Total      float64       `json:"total"`
	DailyAvg   float64       `json:"daily_avg"`
	Projection float64       `json:"projection"`
}
