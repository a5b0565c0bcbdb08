package database

import (
	"fmt"
	"os"

	"touragency/internal/models"

	"gopkg.in/yaml.v3"
)

// DefaultTours is the sample catalog written on first start.
func DefaultTours() []models.Tour {
	return []models.Tour{
		{Title: "Beach Holiday in Turkey", Description: "A wonderful beach holiday on the Mediterranean coast", Price: 45000, Duration: 7, Destination: "Turkey", ImageURL: "/static/images/turkey.svg", Available: true},
		{Title: "Paris Sightseeing", Description: "A romantic trip to the capital of France", Price: 65000, Duration: 5, Destination: "France", ImageURL: "/static/images/paris.svg", Available: true},
		{Title: "African Safari", Description: "An unforgettable adventure in the wild", Price: 120000, Duration: 10, Destination: "Kenya", ImageURL: "/static/images/africa.svg", Available: true},
		{Title: "Ski Resort", Description: "Skiing in the Alps", Price: 80000, Duration: 7, Destination: "Switzerland", ImageURL: "/static/images/ski.svg", Available: true},
		{Title: "Maldives Retreat", Description: "Paradise islands with crystal clear water", Price: 150000, Duration: 10, Destination: "Maldives", ImageURL: "/static/images/maldives.svg", Available: true},
		{Title: "Cultural Tour of Japan", Description: "Immersion in tradition and modernity", Price: 95000, Duration: 8, Destination: "Japan", ImageURL: "/static/images/japan.svg", Available: true},
	}
}

type seedTour struct {
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Price       float64 `yaml:"price"`
	Duration    int     `yaml:"duration"`
	Destination string  `yaml:"destination"`
	ImageURL    string  `yaml:"image_url"`
	Available   *bool   `yaml:"available"`
}

// LoadTours reads a seed catalog from YAML. Tours without an explicit
// available flag are available.
func LoadTours(path string) ([]models.Tour, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		Tours []seedTour `yaml:"tours"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse tours file: %w", err)
	}

	tours := make([]models.Tour, 0, len(file.Tours))
	for i, st := range file.Tours {
		if st.Title == "" {
			return nil, fmt.Errorf("tour #%d has no title", i+1)
		}
		if st.Price < 0 || st.Duration < 0 {
			return nil, fmt.Errorf("tour %q has negative price or duration", st.Title)
		}
		available := true
		if st.Available != nil {
			available = *st.Available
		}
		tours = append(tours, models.Tour{
			Title:       st.Title,
			Description: st.Description,
			Price:       st.Price,
			Duration:    st.Duration,
			Destination: st.Destination,
			ImageURL:    st.ImageURL,
			Available:   available,
		})
	}
	return tours, nil
}
