package db

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/kdiawara/sika/internal/models"
)

// columnFix describes a column that later schema versions added to an
// existing table, with the backfill applied to rows predating it.
type columnFix struct {
	model    interface{}
	column   string
	backfill string
}

// The client table grew phone/location/status after the first deployments, so
// installations migrated from old data may miss them.
var columnFixes = []columnFix{
	{&models.Client{}, "phone", `UPDATE clients SET phone = '' WHERE phone IS NULL`},
	{&models.Client{}, "location", `UPDATE clients SET location = '' WHERE location IS NULL`},
	{&models.Client{}, "status", `UPDATE clients SET status = 'active' WHERE status IS NULL`},
	{&models.Client{}, "montant_engagement", `UPDATE clients SET montant_engagement = 0 WHERE montant_engagement IS NULL`},
	{&models.Agent{}, "location", `UPDATE agents SET location = '' WHERE location IS NULL`},
	{&models.Transaction{}, "description", ``},
}

// EnsureSchema checks the live schema against the expected one and applies
// non-destructive ALTERs: missing columns are added, then NULLs are backfilled
// with safe defaults. Idempotent; runs at every startup before serving.
func EnsureSchema(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, fix := range columnFixes {
		if migrator.HasColumn(fix.model, fix.column) {
			continue
		}
		log.Printf("[DB] schema heal: adding missing column %T.%s", fix.model, fix.column)
		if err := migrator.AddColumn(fix.model, fix.column); err != nil {
			return fmt.Errorf("add column %s: %w", fix.column, err)
		}
		if fix.backfill == "" {
			continue
		}
		if err := db.Exec(fix.backfill).Error; err != nil {
			return fmt.Errorf("backfill %s: %w", fix.column, err)
		}
	}
	return nil
}
