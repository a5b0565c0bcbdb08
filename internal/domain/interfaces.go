package domain

import (
	"context"
	"time"

	"touragency/internal/database"
	"touragency/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type TourRepository interface {
	GetAvailableTours(ctx context.Context, order database.TourOrder) ([]*models.Tour, error)
	GetTour(ctx context.Context, id int64) (*models.Tour, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetUserBookings(ctx context.Context, userID int64) ([]*models.BookingView, error)
	GetUserStats(ctx context.Context, userID int64) (*models.BookingStats, error)
}

type ActivityLogRepository interface {
	CreateActivityLog(ctx context.Context, entry *models.ActivityLogEntry) error
}

// AttemptLimiter counts attempts per key inside a fixed window.
type AttemptLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
