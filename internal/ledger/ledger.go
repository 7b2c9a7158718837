// Package ledger appends monetary events to the transaction table. The table
// is append-only: this package exposes no update or delete operations, and
// nothing else in the codebase writes to it.
package ledger

import (
	"gorm.io/gorm"

	"github.com/kdiawara/sika/internal/models"
)

// Record inserts one ledger entry inside the caller's transaction scope. The
// caller is responsible for committing the client row mutation in the same
// scope so the two land or roll back together.
func Record(tx *gorm.DB, clientID uint, amount float64, txType, description string) (*models.Transaction, error) {
	entry := models.Transaction{
		ClientID:    clientID,
		Amount:      amount,
		Type:        txType,
		Description: description,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
