package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"touragency/internal/database"
	"touragency/internal/events"
	"touragency/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBookingService_CreateBooking(t *testing.T) {
	ctx := WithOrigin(context.Background(), "10.1.1.1")

	repo := new(mockBookingRepo)
	logs := new(mockActivityRepo)
	publisher := new(mockEventPublisher)

	repo.On("CreateBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
		return b.UserID == 4 && b.TourID == 77 && b.Status == models.StatusPending
	})).Return(nil).Once()
	logs.On("CreateActivityLog", ctx, mock.MatchedBy(func(e *models.ActivityLogEntry) bool {
		return e.Action == models.ActionBookTour && *e.Details == "Booked tour 77" && e.IPAddress == "10.1.1.1"
	})).Return(nil).Once()
	publisher.On("PublishJSON", events.EventActivity, mock.Anything).Return(nil).Once()
	publisher.On("PublishJSON", events.EventTourBooked, mock.MatchedBy(func(p events.BookingPayload) bool {
		return p.BookingID == 100 && p.TourID == 77
	})).Return(nil).Once()

	svc := NewBookingService(repo, NewActivityLogger(logs, publisher, nil), publisher, nil)
	booking, err := svc.CreateBooking(ctx, 4, 77)
	require.NoError(t, err)
	assert.Equal(t, int64(100), booking.ID)

	repo.AssertExpectations(t)
	logs.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestBookingService_CreateBookingStoreError(t *testing.T) {
	ctx := context.Background()
	repo := new(mockBookingRepo)
	logs := new(mockActivityRepo)
	repo.On("CreateBooking", ctx, mock.Anything).Return(errors.New("readonly database")).Once()

	svc := NewBookingService(repo, NewActivityLogger(logs, nil, nil), nil, nil)
	_, err := svc.CreateBooking(ctx, 1, 1)
	require.Error(t, err)
	logs.AssertNotCalled(t, "CreateActivityLog", mock.Anything, mock.Anything)
}

// Exercises the services against a real SQLite file end to end.
func TestServices_WithSQLite(t *testing.T) {
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "svc.db"), &logger)
	require.NoError(t, err)
	defer db.Close()

	ctx := WithOrigin(context.Background(), "127.0.0.1")
	_, err = db.SeedTours(ctx, database.DefaultTours())
	require.NoError(t, err)

	activity := NewActivityLogger(db, nil, &logger)
	auth := NewAuthService(db, activity, nil, bcrypt.MinCost, &logger)
	catalog := NewCatalogService(db)
	bookings := NewBookingService(db, activity, nil, &logger)

	user, err := auth.Register(ctx, RegisterInput{Username: "dana", Email: "dana@example.com", Password: "pw", ConfirmPassword: "pw"})
	require.NoError(t, err)

	_, err = auth.Register(ctx, RegisterInput{Username: "dana", Email: "other@example.com", Password: "pw", ConfirmPassword: "pw"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = auth.Login(ctx, "dana", "wrong")
	assert.ErrorIs(t, err, ErrAuth)

	stats, err := bookings.ComputeStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStats{}, *stats)

	byPrice, err := catalog.ListAvailableTours(ctx, database.OrderPriceAsc)
	require.NoError(t, err)
	require.Len(t, byPrice, 6)

	_, err = bookings.CreateBooking(ctx, user.ID, byPrice[0].ID)
	require.NoError(t, err)
	_, err = bookings.CreateBooking(ctx, user.ID, byPrice[1].ID)
	require.NoError(t, err)

	stats, err = bookings.ComputeStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, int64(2), stats.PendingBookings)
	assert.Equal(t, float64(110000), stats.TotalSpent)

	list, err := bookings.ListBookingsForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, byPrice[1].Title, list[0].TourTitle)

	recent, err := db.GetRecentActivity(ctx, 10)
	require.NoError(t, err)
	// REGISTER + 2x BOOK_TOUR
	require.Len(t, recent, 3)
	assert.Equal(t, models.ActionBookTour, recent[0].Action)
	assert.Equal(t, "127.0.0.1", recent[0].IPAddress)
	assert.Equal(t, models.ActionRegister, recent[2].Action)
}
