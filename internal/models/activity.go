package models

import "time"

// Activity is one logged action and the footprint computed for it when it was saved.
type Activity struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	UserID          uint      `gorm:"index:idx_activity_owner_date,priority:1;not null" json:"userId"`
	Type            string    `gorm:"size:32;index;not null" json:"type"`
	Category        string    `gorm:"size:32;not null" json:"category"`
	Amount          float64   `gorm:"not null" json:"amount"`
	Unit            string    `gorm:"size:16;not null" json:"unit"`
	CarbonFootprint float64   `gorm:"not null" json:"carbonFootprint"` // kg CO2
	Date            time.Time `gorm:"index:idx_activity_owner_date,priority:2;not null" json:"date"`
	Description     string    `gorm:"size:500" json:"description,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
