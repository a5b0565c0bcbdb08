package database

import (
	"context"
	"fmt"
	"time"

	"touragency/internal/models"
)

// CreateBooking inserts a booking as given. Tour existence is not checked.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (user_id, tour_id, booking_date, status) VALUES (?, ?, ?, ?)`
	if booking.Status == "" {
		booking.Status = models.StatusPending
	}
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query, booking.UserID, booking.TourID, now, booking.Status)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	booking.BookingDate = now
	return nil
}

// GetUserBookings returns the user's bookings joined with tour data, newest first.
// Bookings whose tour no longer exists are left out, as with an inner join.
func (db *DB) GetUserBookings(ctx context.Context, userID int64) ([]*models.BookingView, error) {
	query := `SELECT b.id, b.booking_date, b.status, t.id, t.title, t.price, COALESCE(t.destination, '')
              FROM bookings b
              JOIN tours t ON b.tour_id = t.id
              WHERE b.user_id = ?
              ORDER BY b.booking_date DESC, b.id DESC`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*models.BookingView, 0)
	for rows.Next() {
		b := &models.BookingView{}
		if err := rows.Scan(
			&b.ID, &b.BookingDate, &b.Status, &b.TourID, &b.TourTitle, &b.Price, &b.Destination,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}

// GetUserStats counts all and pending bookings and sums the joined tour prices.
func (db *DB) GetUserStats(ctx context.Context, userID int64) (*models.BookingStats, error) {
	stats := &models.BookingStats{}

	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
         FROM bookings WHERE user_id = ?`,
		models.StatusPending, userID,
	).Scan(&stats.TotalBookings, &stats.PendingBookings)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(t.price), 0)
         FROM bookings b JOIN tours t ON b.tour_id = t.id
         WHERE b.user_id = ?`,
		userID,
	).Scan(&stats.TotalSpent)
	if err != nil {
		return nil, fmt.Errorf("failed to sum booking prices: %w", err)
	}

	return stats, nil
}
