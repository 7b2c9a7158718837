// Package sweeper passively expires lapsed accounts in the background. It is
// the guarantee behind the stored status: even if no per-client read touches
// an account, the sweeper flips it within one interval of its expiry.
package sweeper

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/kdiawara/sika/internal/models"
)

type Sweeper struct {
	DB       *gorm.DB
	Interval time.Duration
}

func New(db *gorm.DB, interval time.Duration) *Sweeper {
	return &Sweeper{DB: db, Interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
// A failed sweep is logged and retried on the next tick; it never crashes
// the process.
func (s *Sweeper) Run(ctx context.Context) {
	if _, err := s.Sweep(); err != nil {
		log.Printf("[sweeper] initial sweep failed: %v", err)
	}
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("[sweeper] stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(); err != nil {
				log.Printf("[sweeper] sweep failed: %v", err)
			}
		}
	}
}

// Sweep expires every active client past its expiry date in one bulk update
// and returns how many rows changed. Idempotent: a second run with no time
// elapsed matches nothing. Passive expiration writes no ledger entry, which
// distinguishes it from the renew/payout transitions.
func (s *Sweeper) Sweep() (int64, error) {
	res := s.DB.Model(&models.Client{}).
		Where("status = ? AND account_expires_at < ?", models.StatusActive, time.Now()).
		Update("status", models.StatusExpired)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("[sweeper] expired %d account(s)", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
