package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/kdiawara/sika/internal/models"
)

// StatsService aggregates the ledger into dashboard KPIs and dense daily
// time series. It only ever reads; no mutation happens here.
type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService { return &StatsService{DB: db} }

type DashboardStats struct {
	TotalClients  int64   `json:"totalClients"`
	ActiveClients int64   `json:"activeClients"`
	TotalAgents   int64   `json:"totalAgents"`
	TotalBalance  float64 `json:"totalBalance"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalDeposits float64 `json:"totalDeposits"`
	TotalPayouts  float64 `json:"totalPayouts"`
}

// Dashboard computes the KPI snapshot. Empty tables yield zeros, never an
// error.
func (s *StatsService) Dashboard() (*DashboardStats, error) {
	stats := &DashboardStats{}
	if err := s.DB.Model(&models.Client{}).Count(&stats.TotalClients).Error; err != nil {
		return nil, &PersistenceError{Op: "count clients", Err: err}
	}
	if err := s.DB.Model(&models.Client{}).Where("status = ?", models.StatusActive).Count(&stats.ActiveClients).Error; err != nil {
		return nil, &PersistenceError{Op: "count active clients", Err: err}
	}
	if err := s.DB.Model(&models.Agent{}).Count(&stats.TotalAgents).Error; err != nil {
		return nil, &PersistenceError{Op: "count agents", Err: err}
	}
	if err := s.DB.Model(&models.Client{}).
		Select("COALESCE(SUM(account_balance), 0)").Scan(&stats.TotalBalance).Error; err != nil {
		return nil, &PersistenceError{Op: "sum balances", Err: err}
	}
	if err := s.sumByTypes(&stats.TotalRevenue, models.TypeFraisInscription, models.TypeFraisReactivation); err != nil {
		return nil, err
	}
	if err := s.sumByTypes(&stats.TotalDeposits, models.TypeDepot); err != nil {
		return nil, err
	}
	if err := s.sumByTypes(&stats.TotalPayouts, models.TypeRetrait); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *StatsService) sumByTypes(dst *float64, types ...string) error {
	if err := s.DB.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("type IN ?", types).
		Scan(dst).Error; err != nil {
		return &PersistenceError{Op: "sum transactions", Err: err}
	}
	return nil
}

type SeriesPoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Value float64 `json:"value"`
}

type TimeSeries struct {
	Revenue    []SeriesPoint `json:"revenue"`
	Deposits   []SeriesPoint `json:"deposits"`
	NewClients []SeriesPoint `json:"newClients"`
}

const dayLayout = "2006-01-02"

// TimeSeriesData returns one dense calendar-day series per metric, from the
// earliest transaction date across all three through today inclusive. Days
// with no matching transactions report 0 instead of being omitted, so the
// result charts directly without client-side interpolation.
func (s *StatsService) TimeSeriesData() (*TimeSeries, error) {
	revenue, err := s.dailyTotals("SUM(amount)", models.TypeFraisInscription, models.TypeFraisReactivation)
	if err != nil {
		return nil, err
	}
	deposits, err := s.dailyTotals("SUM(amount)", models.TypeDepot)
	if err != nil {
		return nil, err
	}
	// Registration is one-to-one with client creation, so new clients per day
	// is a count of FraisInscription entries.
	newClients, err := s.dailyTotals("COUNT(*)", models.TypeFraisInscription)
	if err != nil {
		return nil, err
	}

	start, ok := earliestDay(revenue, deposits, newClients)
	if !ok {
		return &TimeSeries{
			Revenue:    []SeriesPoint{},
			Deposits:   []SeriesPoint{},
			NewClients: []SeriesPoint{},
		}, nil
	}
	// DATE() buckets by UTC day, so "today" must be the UTC day too.
	today := time.Now().UTC().Format(dayLayout)
	return &TimeSeries{
		Revenue:    fillGaps(revenue, start, today),
		Deposits:   fillGaps(deposits, start, today),
		NewClients: fillGaps(newClients, start, today),
	}, nil
}

// dailyTotals runs the sparse GROUP BY day query for one metric. DATE()
// yields YYYY-MM-DD on both sqlite and postgres.
func (s *StatsService) dailyTotals(agg string, types ...string) (map[string]float64, error) {
	rows := []struct {
		Day   string
		Total float64
	}{}
	if err := s.DB.Model(&models.Transaction{}).
		Select("DATE(created_at) AS day, "+agg+" AS total").
		Where("type IN ?", types).
		Group("DATE(created_at)").
		Scan(&rows).Error; err != nil {
		return nil, &PersistenceError{Op: "daily totals", Err: err}
	}
	out := make(map[string]float64, len(rows))
	for _, r := range rows {
		out[r.Day] = r.Total
	}
	return out, nil
}

// earliestDay finds the smallest day key across the sparse series.
func earliestDay(series ...map[string]float64) (string, bool) {
	earliest := ""
	for _, m := range series {
		for day := range m {
			if earliest == "" || day < earliest {
				earliest = day
			}
		}
	}
	return earliest, earliest != ""
}

// fillGaps densifies a sparse day->value map into a continuous series from
// start through end inclusive, inserting zeros for missing days.
func fillGaps(sparse map[string]float64, start, end string) []SeriesPoint {
	startDay, err := time.Parse(dayLayout, start)
	if err != nil {
		return []SeriesPoint{}
	}
	endDay, err := time.Parse(dayLayout, end)
	if err != nil {
		return []SeriesPoint{}
	}
	var out []SeriesPoint
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		out = append(out, SeriesPoint{Date: key, Value: sparse[key]})
	}
	return out
}
