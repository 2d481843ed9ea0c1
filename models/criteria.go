package models

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MinSearchYear is the lower bound of the default year range.
	MinSearchYear = 1900
	// MinRating and MaxRating bound IMDb ratings.
	MinRating = 0.0
	MaxRating = 10.0
)

// ErrInvalidCriteria is returned when filter criteria are malformed.
var ErrInvalidCriteria = errors.New("invalid filter criteria")

// YearRange is an inclusive range of release years.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether year lies inside the range.
func (r YearRange) Contains(year int) bool {
	return r.Min <= year && year <= r.Max
}

// RatingRange is an inclusive range of IMDb ratings.
type RatingRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether rating lies inside the range.
func (r RatingRange) Contains(rating float64) bool {
	return r.Min <= rating && rating <= r.Max
}

// FilterCriteria describes the active search filters.
type FilterCriteria struct {
	Type    MediaType   `json:"type"`
	Years   YearRange   `json:"years"`
	Ratings RatingRange `json:"ratings"`
}

// DefaultCriteria mirrors the search form defaults: movies from 1900 through
// the current year with any rating.
func DefaultCriteria(now time.Time) FilterCriteria {
	return FilterCriteria{
		Type:    MediaTypeMovie,
		Years:   YearRange{Min: MinSearchYear, Max: now.Year()},
		Ratings: RatingRange{Min: MinRating, Max: MaxRating},
	}
}

// Validate checks the range invariants.
func (c FilterCriteria) Validate() error {
	if c.Type != MediaTypeMovie && c.Type != MediaTypeSeries {
		return fmt.Errorf("%w: type %q", ErrInvalidCriteria, c.Type)
	}
	if c.Years.Min > c.Years.Max {
		return fmt.Errorf("%w: year range %d-%d", ErrInvalidCriteria, c.Years.Min, c.Years.Max)
	}
	if c.Ratings.Min < MinRating || c.Ratings.Max > MaxRating {
		return fmt.Errorf("%w: rating range must be within %.1f-%.1f", ErrInvalidCriteria, MinRating, MaxRating)
	}
	if c.Ratings.Min > c.Ratings.Max {
		return fmt.Errorf("%w: rating range %.1f-%.1f", ErrInvalidCriteria, c.Ratings.Min, c.Ratings.Max)
	}
	return nil
}

// YearParam formats the year range the way the provider expects it.
func (c FilterCriteria) YearParam() string {
	return fmt.Sprintf("%d-%d", c.Years.Min, c.Years.Max)
}
