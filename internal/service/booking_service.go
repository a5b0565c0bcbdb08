package service

import (
	"context"

	"touragency/internal/domain"
	"touragency/internal/events"
	"touragency/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo     domain.BookingRepository
	activity *ActivityLogger
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.BookingRepository, activity *ActivityLogger, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &BookingService{
		repo:     repo,
		activity: activity,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreateBooking stores a pending booking. The tour is not looked up: unknown,
// unavailable and repeated tours are all accepted.
func (s *BookingService) CreateBooking(ctx context.Context, userID, tourID int64) (*models.Booking, error) {
	booking := &models.Booking{
		UserID: userID,
		TourID: tourID,
		Status: models.StatusPending,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.activity.Log(ctx, &userID, models.ActionBookTour, detailsf("Booked tour %d", tourID)); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		payload := events.BookingPayload{
			BookingID: booking.ID,
			UserID:    booking.UserID,
			TourID:    booking.TourID,
			Status:    booking.Status,
			Date:      booking.BookingDate,
		}
		if err := s.eventBus.PublishJSON(events.EventTourBooked, payload); err != nil {
			s.logger.Warn().Err(err).Int64("booking_id", booking.ID).Msg("failed to publish booking event")
		}
	}

	return booking, nil
}

func (s *BookingService) ListBookingsForUser(ctx context.Context, userID int64) ([]*models.BookingView, error) {
	bookings, err := s.repo.GetUserBookings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []*models.BookingView{}
	}
	return bookings, nil
}

func (s *BookingService) ComputeStats(ctx context.Context, userID int64) (*models.BookingStats, error) {
	return s.repo.GetUserStats(ctx, userID)
}
