package database

import (
	"context"
	"testing"

	"touragency/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedTours_OnlyWhenEmpty(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	n, err := db.SeedTours(ctx, DefaultTours())
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	n, err = db.SeedTours(ctx, DefaultTours())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	tours, err := db.GetAvailableTours(ctx, OrderNewest)
	require.NoError(t, err)
	assert.Len(t, tours, 6)
}

func TestGetAvailableTours_PriceOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.SeedTours(ctx, DefaultTours())
	require.NoError(t, err)

	tours, err := db.GetAvailableTours(ctx, OrderPriceAsc)
	require.NoError(t, err)
	require.Len(t, tours, 6)

	var prices []float64
	for _, tour := range tours {
		prices = append(prices, tour.Price)
	}
	assert.Equal(t, []float64{45000, 65000, 80000, 95000, 120000, 150000}, prices)
}

func TestGetAvailableTours_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.SeedTours(ctx, DefaultTours())
	require.NoError(t, err)

	latest := &models.Tour{Title: "Latest", Price: 1, Duration: 1, Available: true}
	require.NoError(t, db.CreateTour(ctx, latest))

	tours, err := db.GetAvailableTours(ctx, OrderNewest)
	require.NoError(t, err)
	require.Len(t, tours, 7)
	assert.Equal(t, latest.ID, tours[0].ID)

	for i := 1; i < len(tours); i++ {
		assert.False(t, tours[i].CreatedAt.After(tours[i-1].CreatedAt))
		if tours[i].CreatedAt.Equal(tours[i-1].CreatedAt) {
			assert.Less(t, tours[i].ID, tours[i-1].ID)
		}
	}
}

func TestGetAvailableTours_ExcludesUnavailable(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	hidden := &models.Tour{Title: "Hidden", Price: 10, Duration: 1, Available: false}
	visible := &models.Tour{Title: "Visible", Price: 20, Duration: 2, Available: true}
	require.NoError(t, db.CreateTour(ctx, hidden))
	require.NoError(t, db.CreateTour(ctx, visible))

	for _, order := range []TourOrder{OrderNewest, OrderPriceAsc} {
		tours, err := db.GetAvailableTours(ctx, order)
		require.NoError(t, err)
		require.Len(t, tours, 1)
		assert.Equal(t, "Visible", tours[0].Title)
	}

	// detail lookups still see the hidden tour
	found, err := db.GetTour(ctx, hidden.ID)
	require.NoError(t, err)
	assert.False(t, found.Available)
}

func TestGetAvailableTours_EmptyIsNotNil(t *testing.T) {
	db := setupTestDB(t)
	tours, err := db.GetAvailableTours(context.Background(), OrderNewest)
	require.NoError(t, err)
	assert.NotNil(t, tours)
	assert.Empty(t, tours)
}

func TestGetTour_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.GetTour(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTour(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tour := &models.Tour{Title: "Baikal", Price: 70000, Duration: 6, Available: true}
	require.NoError(t, db.CreateTour(ctx, tour))

	found, err := db.GetTourByTitle(ctx, "Baikal")
	require.NoError(t, err)
	assert.Equal(t, tour.ID, found.ID)

	found.Price = 72000
	found.Available = false
	require.NoError(t, db.UpdateTour(ctx, found))

	updated, err := db.GetTour(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(72000), updated.Price)
	assert.False(t, updated.Available)
	assert.True(t, updated.CreatedAt.Equal(found.CreatedAt))

	assert.ErrorIs(t, db.UpdateTour(ctx, &models.Tour{ID: 999, Title: "x"}), ErrNotFound)

	_, err = db.GetTourByTitle(ctx, "Nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}
