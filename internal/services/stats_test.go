package services

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kdiawara/sika/internal/models"
)

func setupStatsDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Agent{}, &models.Client{}, &models.Ticket{}, &models.Transaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedTx(t *testing.T, db *gorm.DB, clientID uint, amount float64, txType string, at time.Time) {
	t.Helper()
	entry := models.Transaction{ClientID: clientID, Amount: amount, Type: txType, CreatedAt: at}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("seed tx: %v", err)
	}
}

func TestDashboardEmpty(t *testing.T) {
	db := setupStatsDB(t)
	svc := NewStatsService(db)
	stats, err := svc.Dashboard()
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if stats.TotalClients != 0 || stats.ActiveClients != 0 || stats.TotalAgents != 0 {
		t.Fatalf("expected zero counts: %#v", stats)
	}
	if stats.TotalBalance != 0 || stats.TotalRevenue != 0 || stats.TotalDeposits != 0 || stats.TotalPayouts != 0 {
		t.Fatalf("empty sums must be zero, never null: %#v", stats)
	}
}

func TestDashboardAggregates(t *testing.T) {
	db := setupStatsDB(t)
	agent := seedAgent(t, db)
	active := seedClient(t, db, agent.ID, 1200, 1000, models.StatusActive, time.Now().Add(24*time.Hour))
	expired := seedClient(t, db, agent.ID, 50, 500, models.StatusExpired, time.Now().Add(-24*time.Hour))

	now := time.Now()
	seedTx(t, db, active.ID, 1000, models.TypeFraisInscription, now)
	seedTx(t, db, active.ID, 1500, models.TypeFraisReactivation, now)
	seedTx(t, db, active.ID, 1000, models.TypeDepot, now)
	seedTx(t, db, active.ID, 1000, models.TypeDepot, now)
	seedTx(t, db, expired.ID, 700, models.TypeRetrait, now)

	svc := NewStatsService(db)
	stats, err := svc.Dashboard()
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if stats.TotalClients != 2 || stats.ActiveClients != 1 || stats.TotalAgents != 1 {
		t.Fatalf("unexpected counts: %#v", stats)
	}
	if stats.TotalBalance != 1250 {
		t.Fatalf("expected total balance 1250, got %v", stats.TotalBalance)
	}
	if stats.TotalRevenue != 2500 {
		t.Fatalf("expected revenue 2500 (inscription + reactivation), got %v", stats.TotalRevenue)
	}
	if stats.TotalDeposits != 2000 {
		t.Fatalf("expected deposits 2000, got %v", stats.TotalDeposits)
	}
	if stats.TotalPayouts != 700 {
		t.Fatalf("expected payouts 700, got %v", stats.TotalPayouts)
	}
}

func TestTimeSeriesEmpty(t *testing.T) {
	db := setupStatsDB(t)
	svc := NewStatsService(db)
	series, err := svc.TimeSeriesData()
	if err != nil {
		t.Fatalf("timeseries: %v", err)
	}
	if len(series.Revenue) != 0 || len(series.Deposits) != 0 || len(series.NewClients) != 0 {
		t.Fatalf("empty ledger must produce empty series: %#v", series)
	}
}

func TestTimeSeriesGapFilling(t *testing.T) {
	db := setupStatsDB(t)
	agent := seedAgent(t, db)
	client := seedClient(t, db, agent.ID, 0, 1000, models.StatusActive, time.Now().Add(24*time.Hour))

	// Transactions only on D-3 and D (today); D-2 and D-1 must still appear
	// with zero values.
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC)
	threeDaysAgo := today.AddDate(0, 0, -3)
	seedTx(t, db, client.ID, 1000, models.TypeFraisInscription, threeDaysAgo)
	seedTx(t, db, client.ID, 1000, models.TypeDepot, today)

	svc := NewStatsService(db)
	series, err := svc.TimeSeriesData()
	if err != nil {
		t.Fatalf("timeseries: %v", err)
	}

	wantDates := []string{
		threeDaysAgo.Format("2006-01-02"),
		threeDaysAgo.AddDate(0, 0, 1).Format("2006-01-02"),
		threeDaysAgo.AddDate(0, 0, 2).Format("2006-01-02"),
		today.Format("2006-01-02"),
	}
	for name, pts := range map[string][]SeriesPoint{
		"revenue":    series.Revenue,
		"deposits":   series.Deposits,
		"newClients": series.NewClients,
	} {
		if len(pts) != len(wantDates) {
			t.Fatalf("%s: expected %d dense points, got %d: %#v", name, len(wantDates), len(pts), pts)
		}
		for i, p := range pts {
			if p.Date != wantDates[i] {
				t.Fatalf("%s[%d]: expected date %s, got %s", name, i, wantDates[i], p.Date)
			}
		}
		// The two middle days carry no transactions for any metric.
		if pts[1].Value != 0 || pts[2].Value != 0 {
			t.Fatalf("%s: gap days must be zero: %#v", name, pts)
		}
	}

	if series.Revenue[0].Value != 1000 {
		t.Fatalf("revenue on D-3 should be 1000, got %v", series.Revenue[0].Value)
	}
	if series.Revenue[3].Value != 0 {
		t.Fatalf("revenue today should be 0, got %v", series.Revenue[3].Value)
	}
	if series.Deposits[0].Value != 0 || series.Deposits[3].Value != 1000 {
		t.Fatalf("unexpected deposit series: %#v", series.Deposits)
	}
	if series.NewClients[0].Value != 1 || series.NewClients[3].Value != 0 {
		t.Fatalf("unexpected newClients series: %#v", series.NewClients)
	}
}
