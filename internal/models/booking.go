package models

import "time"

type Booking struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	TourID      int64     `json:"tour_id"`
	BookingDate time.Time `json:"booking_date"`
	Status      string    `json:"status"` // pending; no transitions yet
}

// BookingView is a booking joined with the tour fields shown in booking history.
type BookingView struct {
	ID          int64     `json:"id"`
	BookingDate time.Time `json:"booking_date"`
	Status      string    `json:"status"`
	TourID      int64     `json:"tour_id"`
	TourTitle   string    `json:"tour_title"`
	Price       float64   `json:"price"`
	Destination string    `json:"destination"`
}

// BookingStats aggregates a user's bookings.
type BookingStats struct {
	TotalBookings   int64   `json:"total_bookings"`
	PendingBookings int64   `json:"pending_bookings"`
	TotalSpent      float64 `json:"total_spent"`
}
