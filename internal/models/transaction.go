package models

import "time"

// Transaction types. Amounts are always positive; the semantics are carried
// by the type, not by the sign.
const (
	TypeFraisInscription  = "FraisInscription"
	TypeFraisReactivation = "FraisReactivation"
	TypeDepot             = "Depot"
	TypeRetrait           = "Retrait"
)

// Transaction is an append-only ledger entry, the sole audit trail and the
// sole input to reporting. No code path updates or deletes rows.
type Transaction struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClientID    uint      `gorm:"not null;index" json:"clientId"`
	Client      Client    `gorm:"foreignKey:ClientID" json:"-"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Type        string    `gorm:"not null;index" json:"type"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}
