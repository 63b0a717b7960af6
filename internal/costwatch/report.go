package costwatch

import (
	"sort"
	"time"

	"ModelVault/internal/domain/models"
)

// BuildMonthlyReport aggregates daily snapshots into a monthly view. The
// projection extrapolates the observed daily average across the full
// calendar month, matching the daily alert projection for partial months.
func BuildMonthlyReport(year, month int, snaps []*models.CostSnapshot) *models.MonthlyReport {
	report := &models.MonthlyReport{Year: year, Month: month}

	byService := make(map[string]float64)
	for _, snap := range snaps {
		report.Days = append(report.Days, models.DailyTotal{
			Date:  snap.Date,
			Total: snap.Total,
		})
		report.Total += snap.Total
		for _, sc := range snap.Services {
			byService[sc.Service] += sc.Amount
		}
	}

	sort.Slice(report.Days, func(i, j int) bool {
		return report.Days[i].Date < report.Days[j].Date
	})

	for service, amount := range byService {
		report.ByService = append(report.ByService, models.ServiceCost{
			Service: service,
			Amount:  amount,
		})
	}
	sort.Slice(report.ByService, func(i, j int) bool {
		return report.ByService[i].Amount > report.ByService[j].Amount
	})

	if len(report.Days) > 0 {
		report.DailyAvg = report.Total / float64(len(report.Days))
		daysInMonth := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
		report.Projection = report.DailyAvg * float64(daysInMonth)
	}
	return report
}
