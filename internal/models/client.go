package models

import "time"

// Account status values. Status is stored state: only client creation, the
// lifecycle operations and the expiration sweeper write it.
const (
	StatusActive  = "active"
	StatusExpired = "expired"
)

// Client holds a savings account with a fixed engagement contribution and a
// 30 day renewal cycle.
type Client struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Firstname         string    `gorm:"not null;index" json:"firstname"`
	Lastname          string    `gorm:"not null;index" json:"lastname"`
	Email             string    `json:"email,omitempty"`
	Phone             string    `gorm:"not null;default:''" json:"phone"`
	Location          string    `gorm:"not null;default:''" json:"location"`
	AgentID           uint      `gorm:"not null;index" json:"agentId"`
	Agent             Agent     `gorm:"foreignKey:AgentID" json:"-"`
	AccountBalance    float64   `gorm:"not null;default:0" json:"accountBalance"`
	MontantEngagement float64   `gorm:"not null;default:0" json:"montantEngagement"`
	AccountExpiresAt  time.Time `gorm:"not null" json:"accountExpiresAt"`
	Status            string    `gorm:"not null;default:'active';index" json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Lapsed reports whether the account is past its expiry date, regardless of
// the stored status.
func (c *Client) Lapsed(now time.Time) bool {
	return c.AccountExpiresAt.Before(now)
}
