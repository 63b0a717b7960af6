package costwatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"ModelVault/internal/domain/models"
)

type fakeSource struct {
	snap *models.CostSnapshot
	err  error
}

func (s *fakeSource) DailyCosts(_ context.Context, _ time.Time) (*models.CostSnapshot, error) {
	return s.snap, s.err
}

type fakeStore struct {
	stored []*models.CostSnapshot
	month  []*models.CostSnapshot
	err    error
}

func (s *fakeStore) Store(_ context.Context, snap *models.CostSnapshot) error {
	if s.err != nil {
		return s.err
	}
	s.stored = append(s.stored, snap)
	return nil
}

func (s *fakeStore) Month(_ context.Context, _, _ int) ([]*models.CostSnapshot, error) {
	return s.month, s.err
}

func (s *fakeStore) Health(_ context.Context) error { return nil }
func (s *fakeStore) Close() error                   { return nil }

type fakePublisher struct {
	alerts []*models.CostAlert
}

func (p *fakePublisher) Publish(_ context.Context, alert *models.CostAlert) error {
	p.alerts = append(p.alerts, alert)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func snapshotOf(date string, services ...models.ServiceCost) *models.CostSnapshot {
	snap := &models.CostSnapshot{Date: date, Services: services, FetchedAt: time.Now()}
	for _, sc := range services {
		snap.Total += sc.Amount
	}
	return snap
}

func TestThresholdsClassify(t *testing.T) {
	limits := Thresholds{Warning: 2.00, Critical: 2.50}

	cases := []struct {
		total float64
		want  models.AlertLevel
	}{
		{0, models.AlertNormal},
		{1.99, models.AlertNormal},
		{2.00, models.AlertWarning},
		{2.49, models.AlertWarning},
		{2.50, models.AlertCritical},
		{10, models.AlertCritical},
	}
	for _, tc := range cases {
		if got := limits.Classify(tc.total); got != tc.want {
			t.Fatalf("total %v: expected %q, got %q", tc.total, tc.want, got)
		}
	}
}

func TestCheckDailyNormal(t *testing.T) {
	source := &fakeSource{snap: snapshotOf("2025-03-10",
		models.ServiceCost{Service: "S3", Amount: 0.25},
		models.ServiceCost{Service: "EC2", Amount: 1.00},
	)}
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewService(source, Thresholds{Warning: 2.00, Critical: 2.50},
		WithStore(store), WithPublisher(pub))

	snap, alert, err := svc.CheckDaily(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Total != 1.25 {
		t.Fatalf("unexpected total %v", snap.Total)
	}
	if alert.Level != models.AlertNormal {
		t.Fatalf("unexpected level %q", alert.Level)
	}
	if len(store.stored) != 1 {
		t.Fatalf("snapshot not stored")
	}
	if len(pub.alerts) != 0 {
		t.Fatalf("normal alerts must not be published")
	}
}

func TestCheckDailyCriticalPublishes(t *testing.T) {
	source := &fakeSource{snap: snapshotOf("2025-03-10",
		models.ServiceCost{Service: "SageMaker", Amount: 3.10},
	)}
	pub := &fakePublisher{}
	svc := NewService(source, Thresholds{Warning: 2.00, Critical: 2.50}, WithPublisher(pub))

	_, alert, err := svc.CheckDaily(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert.Level != models.AlertCritical {
		t.Fatalf("unexpected level %q", alert.Level)
	}
	if len(pub.alerts) != 1 {
		t.Fatalf("expected one published alert, got %d", len(pub.alerts))
	}
	if pub.alerts[0].Date != "2025-03-10" {
		t.Fatalf("unexpected alert date %q", pub.alerts[0].Date)
	}
}

func TestCheckDailyStoreFailureIsNotFatal(t *testing.T) {
	source := &fakeSource{snap: snapshotOf("2025-03-10",
		models.ServiceCost{Service: "S3", Amount: 0.10},
	)}
	store := &fakeStore{err: errors.New("clickhouse down")}
	svc := NewService(source, Thresholds{Warning: 2.00, Critical: 2.50}, WithStore(store))

	if _, _, err := svc.CheckDaily(context.Background(), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckDailySourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("throttled")}
	svc := NewService(source, Thresholds{})

	if _, _, err := svc.CheckDaily(context.Background(), time.Now()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDailyDoesNotStoreOrPublish(t *testing.T) {
	source := &fakeSource{snap: snapshotOf("2025-03-10",
		models.ServiceCost{Service: "SageMaker", Amount: 9.99},
	)}
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewService(source, Thresholds{Warning: 2.00, Critical: 2.50},
		WithStore(store), WithPublisher(pub))

	_, alert, err := svc.Daily(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert.Level != models.AlertCritical {
		t.Fatalf("unexpected level %q", alert.Level)
	}
	if len(store.stored) != 0 || len(pub.alerts) != 0 {
		t.Fatalf("read path must have no side effects")
	}
}

func TestAlertProjection(t *testing.T) {
	// March has 31 days.
	source := &fakeSource{snap: snapshotOf("2025-03-10",
		models.ServiceCost{Service: "S3", Amount: 1.00},
	)}
	svc := NewService(source, Thresholds{Warning: 2.00, Critical: 2.50})

	_, alert, err := svc.Daily(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert.Projection != 31.00 {
		t.Fatalf("unexpected projection %v", alert.Projection)
	}
}

func TestAlertTopServicesCapped(t *testing.T) {
	source := &fakeSource{snap: snapshotOf("2025-03-10",
		models.ServiceCost{Service: "a", Amount: 7},
		models.ServiceCost{Service: "b", Amount: 6},
		models.ServiceCost{Service: "c", Amount: 5},
		models.ServiceCost{Service: "d", Amount: 4},
		models.ServiceCost{Service: "e", Amount: 3},
		models.ServiceCost{Service: "f", Amount: 2},
		models.ServiceCost{Service: "g", Amount: 1},
	)}
	svc := NewService(source, Thresholds{Warning: 2.00, Critical: 2.50})

	_, alert, err := svc.Daily(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alert.TopServices) != 5 {
		t.Fatalf("expected 5 top services, got %d", len(alert.TopServices))
	}
	if alert.TopServices[0].Service != "a" {
		t.Fatalf("unexpected ordering %v", alert.TopServices)
	}
}

func TestMonthlyRequiresStore(t *testing.T) {
	svc := NewService(&fakeSource{}, Thresholds{})

	if _, err := svc.Monthly(context.Background(), 2025, 3); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBuildMonthlyReport(t *testing.T) {
	snaps := []*models.CostSnapshot{
		snapshotOf("2025-03-02",
			models.ServiceCost{Service: "EC2", Amount: 1.00},
			models.ServiceCost{Service: "S3", Amount: 0.50},
		),
		snapshotOf("2025-03-01",
			models.ServiceCost{Service: "EC2", Amount: 2.00},
		),
	}

	report := BuildMonthlyReport(2025, 3, snaps)
	if report.Total != 3.50 {
		t.Fatalf("unexpected total %v", report.Total)
	}
	if len(report.Days) != 2 || report.Days[0].Date != "2025-03-01" {
		t.Fatalf("days not sorted: %+v", report.Days)
	}
	if report.DailyAvg != 1.75 {
		t.Fatalf("unexpected daily avg %v", report.DailyAvg)
	}
	if report.Projection != 1.75*31 {
		t.Fatalf("unexpected projection %v", report.Projection)
	}
	if report.ByService[0].Service != "EC2" || report.ByService[0].Amount != 3.00 {
		t.Fatalf("unexpected service aggregation %+v", report.ByService)
	}
}

func TestBuildMonthlyReportEmpty(t *testing.T) {
	report := BuildMonthlyReport(2025, 3, nil)
	if report.Total != 0 || report.DailyAvg != 0 || report.Projection != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Days) != 0 {
		t.Fatalf("expected no days")
	}
}
