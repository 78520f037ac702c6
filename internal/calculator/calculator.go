package calculator

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"contact-radar/internal/models"
)

// ErrInvalidInput is returned for out-of-range coordinates, limits or radii.
var ErrInvalidInput = errors.New("invalid input")

// RankNearest returns up to limit located candidates ordered by distance from origin.
// Candidates without a location are skipped; ties keep input order.
func RankNearest(origin models.Coordinate, candidates []models.Contact, limit int) ([]models.RankedContact, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit %d must be positive: %w", limit, ErrInvalidInput)
	}
	ranked, err := locate(origin, candidates)
	if err != nil {
		return nil, err
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// WithinRadius returns every located candidate whose rounded distance is at most radiusKm.
func WithinRadius(origin models.Coordinate, candidates []models.Contact, radiusKm float64) ([]models.RankedContact, error) {
	if math.IsNaN(radiusKm) || radiusKm < 0 {
		return nil, fmt.Errorf("radius %v km: %w", radiusKm, ErrInvalidInput)
	}
	ranked, err := locate(origin, candidates)
	if err != nil {
		return nil, err
	}
	n := sort.Search(len(ranked), func(i int) bool {
		return ranked[i].DistanceKm > radiusKm
	})
	return ranked[:n], nil
}

// locate validates, measures and stably sorts every candidate that has a location.
func locate(origin models.Coordinate, candidates []models.Contact) ([]models.RankedContact, error) {
	if !origin.Valid() {
		return nil, fmt.Errorf("origin (%v, %v) out of range: %w", origin.Lat, origin.Lon, ErrInvalidInput)
	}

	ranked := make([]models.RankedContact, 0, len(candidates))
	for _, c := range candidates {
		if c.Loc == nil {
			continue
		}
		if !c.Loc.Valid() {
			return nil, fmt.Errorf("contact %q location (%v, %v) out of range: %w", c.ID, c.Loc.Lat, c.Loc.Lon, ErrInvalidInput)
		}
		ranked = append(ranked, models.RankedContact{
			Contact:    c,
			DistanceKm: DistanceKm(origin, *c.Loc),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	for i := range ranked {
		ranked[i].Rank = i
	}
	return ranked, nil
}
