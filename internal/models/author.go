package models

import "time"

type Author struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name string  `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Bio  *string `gorm:"size:2000" json:"bio"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
