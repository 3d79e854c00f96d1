package models

import "time"

type Book struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Title           string `gorm:"size:200;not null" json:"title"`
	ISBN            string `gorm:"size:20;uniqueIndex;not null" json:"isbn"`
	PublishedYear   int    `json:"published_year"`
	AvailableCopies int    `gorm:"not null;default:0" json:"available_copies"`

	CoverURL string `gorm:"size:500" json:"cover_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
