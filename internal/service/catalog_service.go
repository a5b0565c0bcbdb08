package service

import (
	"context"
	"errors"

	"touragency/internal/database"
	"touragency/internal/domain"
	"touragency/internal/models"
)

type CatalogService struct {
	tours domain.TourRepository
}

func NewCatalogService(tours domain.TourRepository) *CatalogService {
	return &CatalogService{tours: tours}
}

// ListAvailableTours never returns a nil slice.
func (s *CatalogService) ListAvailableTours(ctx context.Context, order database.TourOrder) ([]*models.Tour, error) {
	tours, err := s.tours.GetAvailableTours(ctx, order)
	if err != nil {
		return nil, err
	}
	if tours == nil {
		tours = []*models.Tour{}
	}
	return tours, nil
}

// GetTour returns the tour even when it is not available for booking.
func (s *CatalogService) GetTour(ctx context.Context, id int64) (*models.Tour, error) {
	tour, err := s.tours.GetTour(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tour, nil
}
