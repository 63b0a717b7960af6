package costwatch

import (
	"context"
	"fmt"
	"time"

	"ModelVault/internal/domain/models"
	"ModelVault/internal/domain/repository"
	applogger "ModelVault/pkg/logger"
)

// Thresholds classify a daily total.
type Thresholds struct {
	Warning  float64
	Critical float64
}

// Classify returns the alert level for a daily total.
func (t Thresholds) Classify(total float64) models.AlertLevel {
	switch {
	case total >= t.Critical:
		return models.AlertCritical
	case total >= t.Warning:
		return models.AlertWarning
	default:
		return models.AlertNormal
	}
}

// Service checks daily spend against thresholds, persists snapshots and
// publishes alerts. Store and publish failures are logged, not returned;
// the caller still gets the snapshot it asked for.
type Service struct {
	source    repository.CostSource
	store     repository.CostStore
	publisher repository.AlertPublisher
	metrics   repository.Metrics
	limits    Thresholds
	log       *applogger.Logger
}

// ServiceOption configures Service.
type ServiceOption func(*Service)

// WithStore enables snapshot persistence.
func WithStore(store repository.CostStore) ServiceOption {
	return func(s *Service) { s.store = store }
}

// WithPublisher enables alert publication for warning and critical levels.
func WithPublisher(pub repository.AlertPublisher) ServiceOption {
	return func(s *Service) { s.publisher = pub }
}

// WithMetrics enables per-service cost gauges.
func WithMetrics(m repository.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithServiceLogger sets the logger.
func WithServiceLogger(log *applogger.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// NewService creates a cost watch service.
func NewService(source repository.CostSource, limits Thresholds, opts ...ServiceOption) *Service {
	s := &Service{source: source, limits: limits}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckDaily fetches one day's spend, classifies it and emits the snapshot
// plus the resulting alert. Normal-level alerts are returned but never
// published.
func (s *Service) CheckDaily(ctx context.Context, day time.Time) (*models.CostSnapshot, *models.CostAlert, error) {
	snap, err := s.source.DailyCosts(ctx, day)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordError("cost_source")
		}
		return nil, nil, err
	}

	alert := s.buildAlert(snap)

	if s.metrics != nil {
		for _, sc := range snap.Services {
			s.metrics.RecordDailyCost(sc.Service, sc.Amount)
		}
	}

	if s.store != nil {
		if err := s.store.Store(ctx, snap); err != nil && s.log != nil {
			s.log.Error("failed to store cost snapshot",
				applogger.String("date", snap.Date),
				applogger.Error(err),
			)
		}
	}

	if alert.Level != models.AlertNormal && s.publisher != nil {
		if err := s.publisher.Publish(ctx, alert); err != nil && s.log != nil {
			s.log.Error("failed to publish cost alert",
				applogger.String("level", string(alert.Level)),
				applogger.Error(err),
			)
		}
	}

	if s.log != nil {
		s.log.Info("daily cost check",
			applogger.String("date", snap.Date),
			applogger.Float64("total_usd", snap.Total),
			applogger.String("level", string(alert.Level)),
		)
	}
	return snap, alert, nil
}

// Daily fetches and classifies one day's spend without persisting or
// publishing anything. Used by read paths.
func (s *Service) Daily(ctx context.Context, day time.Time) (*models.CostSnapshot, *models.CostAlert, error) {
	snap, err := s.source.DailyCosts(ctx, day)
	if err != nil {
		return nil, nil, err
	}
	return snap, s.buildAlert(snap), nil
}

// Monthly returns a report built from stored snapshots. Requires a store.
func (s *Service) Monthly(ctx context.Context, year, month int) (*models.MonthlyReport, error) {
	if s.store == nil {
		return nil, fmt.Errorf("cost store is not configured")
	}
	snaps, err := s.store.Month(ctx, year, month)
	if err != nil {
		return nil, err
	}
	return BuildMonthlyReport(year, month, snaps), nil
}

func (s *Service) buildAlert(snap *models.CostSnapshot) *models.CostAlert {
	level := s.limits.Classify(snap.Total)
	top := snap.Services
	if len(top) > 5 {
		top = top[:5]
	}

	var msg string
	switch level {
	case models.AlertCritical:
		msg = fmt.Sprintf("daily cost $%.2f exceeds critical threshold $%.2f", snap.Total, s.limits.Critical)
	case models.AlertWarning:
		msg = fmt.Sprintf("daily cost $%.2f exceeds warning threshold $%.2f", snap.Total, s.limits.Warning)
	default:
		msg = fmt.Sprintf("daily cost $%.2f within budget", snap.Total)
	}

	return &models.CostAlert{
		Level:       level,
		Date:        snap.Date,
		Total:       snap.Total,
		Projection:  projectMonthly(snap),
		Message:     msg,
		TopServices: top,
		GeneratedAt: time.Now(),
	}
}

// projectMonthly extrapolates one day's total across its calendar month.
func projectMonthly(snap *models.CostSnapshot) float64 {
	day, err := time.Parse("2006-01-02", snap.Date)
	if err != nil {
		return snap.Total * 30
	}
	daysInMonth := time.Date(day.Year(), day.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return snap.Total * float64(daysInMonth)
}
