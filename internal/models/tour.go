package models

import "time"

// Tour is a sellable travel package. Available and CreatedAt stay out of JSON.
type Tour struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Duration    int       `json:"duration"`
	Destination string    `json:"destination"`
	ImageURL    string    `json:"image_url"`
	Available   bool      `json:"-"`
	CreatedAt   time.Time `json:"-"`
}
