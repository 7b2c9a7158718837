package models

import "time"

// Agent entity: the field collector a portfolio of clients is assigned to.
type Agent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Firstname string    `gorm:"not null;index" json:"firstname"`
	Lastname  string    `gorm:"not null;index" json:"lastname"`
	Email     string    `json:"email,omitempty"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
