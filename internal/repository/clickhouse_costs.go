package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ModelVault/internal/domain/models"
	"ModelVault/pkg/clickhouse"
	"ModelVault/pkg/util"
)

// CostSchema creates the daily cost table. Run once at startup.
var CostSchema = []string{
	`CREATE TABLE IF NOT EXISTS daily_costs (
		date        Date,
		service     String,
		amount      Float64,
		fetched_at  DateTime
	) ENGINE = ReplacingMergeTree(fetched_at)
	ORDER BY (date, service)`,
}

// ClickHouseCostStore persists daily cost snapshots in ClickHouse.
type ClickHouseCostStore struct {
	client *clickhouse.Client
}

// NewClickHouseCostStore wraps an existing ClickHouse client.
func NewClickHouseCostStore(client *clickhouse.Client) *ClickHouseCostStore {
	return &ClickHouseCostStore{client: client}
}

// Store inserts one row per service for the snapshot's day. Re-storing the
// same day replaces old rows on merge via the ReplacingMergeTree version
// column.
func (s *ClickHouseCostStore) Store(ctx context.Context, snap *models.CostSnapshot) error {
	if len(snap.Services) == 0 {
		return nil
	}

	day, ok := util.ParseDay(snap.Date)
	if !ok {
		return fmt.Errorf("snapshot date %q is not YYYY-MM-DD", snap.Date)
	}

	var (
		placeholders []string
		args         []interface{}
	)
	for _, sc := range snap.Services {
		placeholders = append(placeholders, "(?, ?, ?, ?)")
		args = append(args, day, sc.Service, sc.Amount, snap.FetchedAt)
	}

	query := "INSERT INTO daily_costs (date, service, amount, fetched_at) VALUES " +
		strings.Join(placeholders, ", ")
	if _, err := s.client.DB().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert daily costs: %w", err)
	}
	return nil
}

// Month returns one snapshot per stored day of the given month, ordered by
// date ascending.
func (s *ClickHouseCostStore) Month(ctx context.Context, year, month int) ([]*models.CostSnapshot, error) {
	start, end := util.MonthBounds(year, month)

	rows, err := s.client.DB().QueryContext(ctx,
		`SELECT date, service, sum(amount) AS amount, max(fetched_at) AS fetched_at
		 FROM daily_costs
		 WHERE date >= ? AND date < ?
		 GROUP BY date, service
		 ORDER BY date, amount DESC`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("query monthly costs: %w", err)
	}
	defer rows.Close()

	byDate := make(map[string]*models.CostSnapshot)
	for rows.Next() {
		var (
			day       time.Time
			service   string
			amount    float64
			fetchedAt time.Time
		)
		if err := rows.Scan(&day, &service, &amount, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scan cost row: %w", err)
		}
		date := day.Format(util.DayLayout)
		snap, ok := byDate[date]
		if !ok {
			snap = &models.CostSnapshot{Date: date, FetchedAt: fetchedAt}
			byDate[date] = snap
		}
		snap.Services = append(snap.Services, models.ServiceCost{Service: service, Amount: amount})
		snap.Total += amount
		if fetchedAt.After(snap.FetchedAt) {
			snap.FetchedAt = fetchedAt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cost rows: %w", err)
	}

	snaps := make([]*models.CostSnapshot, 0, len(byDate))
	for _, snap := range byDate {
		snaps = append(snaps, snap)
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Date < snaps[j].Date })
	return snaps, nil
}

// Health pings the underlying connection.
func (s *ClickHouseCostStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

// Close closes the underlying connection pool.
func (s *ClickHouseCostStore) Close() error {
	return s.client.Close()
}
