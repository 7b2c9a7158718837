package models

import "time"

// Ticket status values.
const (
	TicketActive  = "active"
	TicketClosed  = "closed"
	TicketPending = "pending"
)

// Ticket is the account-opening case file created alongside every client,
// exactly one per client.
type Ticket struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Description string    `json:"description,omitempty"`
	Status      string    `gorm:"not null;default:'active'" json:"status"`
	ClientID    uint      `gorm:"not null;index" json:"clientId"`
	Client      Client    `gorm:"foreignKey:ClientID" json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
