package models

import "time"

// Farm is the account that owns animals. Every audit stamp refers to a farm id.
type Farm struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Phone     string    `gorm:"size:30" json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_on"`
}
