// Command synctours upserts the tour catalog from a YAML file, matching
// existing tours by title.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"touragency/internal/database"
	"touragency/internal/models"

	"github.com/rs/zerolog"
)

type catalogStore interface {
	GetTourByTitle(ctx context.Context, title string) (*models.Tour, error)
	CreateTour(ctx context.Context, tour *models.Tour) error
	UpdateTour(ctx context.Context, tour *models.Tour) error
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		toursPath = flag.String("tours", "configs/tours.yaml", "path to tours.yaml")
		dbPath    = flag.String("db", "./data/tour_agency.db", "path to sqlite db")
	)
	flag.Parse()

	tours, err := database.LoadTours(*toursPath)
	if err != nil {
		return fmt.Errorf("read tours: %w", err)
	}
	if len(tours) == 0 {
		return fmt.Errorf("no tours in yaml")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created, updated, err := syncTours(ctx, db, tours)
	if err != nil {
		return err
	}

	fmt.Printf("done: created=%d updated=%d\n", created, updated)
	return nil
}

func syncTours(ctx context.Context, store catalogStore, tours []models.Tour) (created, updated int, err error) {
	for i := range tours {
		tour := tours[i]
		existing, err := store.GetTourByTitle(ctx, tour.Title)
		switch {
		case err == nil:
			tour.ID = existing.ID
			if err := store.UpdateTour(ctx, &tour); err != nil {
				return created, updated, fmt.Errorf("update %s: %w", tour.Title, err)
			}
			updated++
		case errors.Is(err, database.ErrNotFound):
			if err := store.CreateTour(ctx, &tour); err != nil {
				return created, updated, fmt.Errorf("create %s: %w", tour.Title, err)
			}
			created++
		default:
			return created, updated, fmt.Errorf("get %s: %w", tour.Title, err)
		}
	}
	return created, updated, nil
}
