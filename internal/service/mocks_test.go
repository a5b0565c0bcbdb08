package service

import (
	"context"

	"touragency/internal/database"
	"touragency/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 1
	}
	return args.Error(0)
}
func (m *mockUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockTourRepo struct {
	mock.Mock
}

func (m *mockTourRepo) GetAvailableTours(ctx context.Context, order database.TourOrder) ([]*models.Tour, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tour), args.Error(1)
}
func (m *mockTourRepo) GetTour(ctx context.Context, id int64) (*models.Tour, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tour), args.Error(1)
}

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil {
		b.ID = 100
	}
	return args.Error(0)
}
func (m *mockBookingRepo) GetUserBookings(ctx context.Context, userID int64) ([]*models.BookingView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BookingView), args.Error(1)
}
func (m *mockBookingRepo) GetUserStats(ctx context.Context, userID int64) (*models.BookingStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingStats), args.Error(1)
}

type mockActivityRepo struct {
	mock.Mock
}

func (m *mockActivityRepo) CreateActivityLog(ctx context.Context, e *models.ActivityLogEntry) error {
	return m.Called(ctx, e).Error(0)
}

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}
