package database

import (
	"context"
	"fmt"
	"time"

	"touragency/internal/models"
)

// TourOrder selects one of the fixed catalog orderings.
type TourOrder int

const (
	// OrderNewest sorts by creation time, newest first.
	OrderNewest TourOrder = iota
	// OrderPriceAsc sorts by price, cheapest first.
	OrderPriceAsc
)

const tourColumns = `id, title, COALESCE(description, ''), price, COALESCE(duration, 0),
                     COALESCE(destination, ''), COALESCE(image_url, ''), available, created_at`

func (o TourOrder) clause() string {
	switch o {
	case OrderPriceAsc:
		return `ORDER BY price ASC, id ASC`
	default:
		return `ORDER BY created_at DESC, id DESC`
	}
}

// GetAvailableTours returns tours flagged available, in the requested order.
func (db *DB) GetAvailableTours(ctx context.Context, order TourOrder) ([]*models.Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours WHERE available = 1 ` + order.clause()
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get available tours: %w", err)
	}
	defer rows.Close()

	tours := make([]*models.Tour, 0)
	for rows.Next() {
		t := &models.Tour{}
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Price, &t.Duration,
			&t.Destination, &t.ImageURL, &t.Available, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tour: %w", err)
		}
		tours = append(tours, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tours: %w", err)
	}
	return tours, nil
}

// GetTour returns a tour regardless of its availability flag.
func (db *DB) GetTour(ctx context.Context, id int64) (*models.Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours WHERE id = ?`
	t := &models.Tour{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Title, &t.Description, &t.Price, &t.Duration,
		&t.Destination, &t.ImageURL, &t.Available, &t.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (db *DB) CreateTour(ctx context.Context, tour *models.Tour) error {
	query := `INSERT INTO tours (title, description, price, duration, destination, image_url, available, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		tour.Title,
		tour.Description,
		tour.Price,
		tour.Duration,
		tour.Destination,
		tour.ImageURL,
		tour.Available,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create tour: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	tour.ID = id
	tour.CreatedAt = now
	return nil
}

// SeedTours inserts tours only when the table is empty and reports how many
// rows were written.
func (db *DB) SeedTours(ctx context.Context, tours []models.Tour) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tours`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tours: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	query := `INSERT INTO tours (title, description, price, duration, destination, image_url, available, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	for _, t := range tours {
		if _, err := tx.ExecContext(ctx, query,
			t.Title, t.Description, t.Price, t.Duration, t.Destination, t.ImageURL, t.Available, now,
		); err != nil {
			return 0, fmt.Errorf("failed to seed tour %q: %w", t.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}

	db.logger.Info().Int("count", len(tours)).Msg("seeded sample tours")
	return len(tours), nil
}

// GetTourByTitle returns the oldest tour with the given title.
func (db *DB) GetTourByTitle(ctx context.Context, title string) (*models.Tour, error) {
	query := `SELECT ` + tourColumns + ` FROM tours WHERE title = ? ORDER BY id LIMIT 1`
	t := &models.Tour{}
	err := db.QueryRowContext(ctx, query, title).Scan(
		&t.ID, &t.Title, &t.Description, &t.Price, &t.Duration,
		&t.Destination, &t.ImageURL, &t.Available, &t.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// UpdateTour rewrites every mutable column; created_at is kept.
func (db *DB) UpdateTour(ctx context.Context, tour *models.Tour) error {
	query := `UPDATE tours SET title = ?, description = ?, price = ?, duration = ?,
              destination = ?, image_url = ?, available = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		tour.Title,
		tour.Description,
		tour.Price,
		tour.Duration,
		tour.Destination,
		tour.ImageURL,
		tour.Available,
		tour.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tour: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
