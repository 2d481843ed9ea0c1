package models

import (
	"errors"
	"fmt"
	"strings"
)

// MediaType distinguishes feature films from episodic titles.
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
)

// ErrInvalidRecord is returned when a record does not hold the invariants a
// normalized record guarantees.
var ErrInvalidRecord = errors.New("invalid movie record")

// NotAvailable is the provider's sentinel for a missing value. It is also the
// display value substituted for absent descriptive fields.
const NotAvailable = "N/A"

// ParseMediaType accepts "movie" or "series" (case-insensitive).
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToLower(strings.TrimSpace(s))) {
	case MediaTypeMovie:
		return MediaTypeMovie, nil
	case MediaTypeSeries:
		return MediaTypeSeries, nil
	default:
		return "", fmt.Errorf("unknown media type %q", s)
	}
}

// MovieRecord is a normalized provider title. Records are treated as immutable
// once produced by the normalizer.
type MovieRecord struct {
	Title      string    `json:"title"`
	Year       int       `json:"year"`
	Type       MediaType `json:"type"`
	Rated      string    `json:"rated"`
	Runtime    string    `json:"runtime"`
	Released   string    `json:"released"`
	Genre      string    `json:"genre"`
	Director   string    `json:"director"`
	Writer     string    `json:"writer"`
	Actors     string    `json:"actors"`
	Language   string    `json:"language"`
	Country    string    `json:"country"`
	Awards     string    `json:"awards"`
	Plot       string    `json:"plot"`
	IMDbRating *float64  `json:"imdbRating"` // nil when the provider reports N/A
	IMDbVotes  string    `json:"imdbVotes"`
	IMDbID     string    `json:"imdbId,omitempty"`
	PosterURL  string    `json:"posterUrl,omitempty"`
}

// HasRating reports whether the provider supplied a numeric IMDb rating.
func (m MovieRecord) HasRating() bool {
	return m.IMDbRating != nil
}

// HasPoster reports whether the provider supplied artwork.
func (m MovieRecord) HasPoster() bool {
	return m.PosterURL != ""
}

// DisplayTitle renders the title the way result lists and charts label it.
func (m MovieRecord) DisplayTitle() string {
	return fmt.Sprintf("%s (%d)", m.Title, m.Year)
}

// Clone returns a copy that shares no pointers with m.
func (m MovieRecord) Clone() MovieRecord {
	out := m
	if m.IMDbRating != nil {
		r := *m.IMDbRating
		out.IMDbRating = &r
	}
	return out
}

// Validate checks the invariants Normalize establishes: a title, a four-digit
// year, a known type and a rating that is absent or within 0-10. Records that
// arrive from clients rather than the provider go through this before storage.
func (m MovieRecord) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRecord)
	}
	if m.Year < 1000 || m.Year > 9999 {
		return fmt.Errorf("%w: year %d is not four digits", ErrInvalidRecord, m.Year)
	}
	if parsed, err := ParseMediaType(string(m.Type)); err != nil || parsed != m.Type {
		return fmt.Errorf("%w: type %q", ErrInvalidRecord, m.Type)
	}
	if m.IMDbRating != nil && !(RatingRange{Min: MinRating, Max: MaxRating}).Contains(*m.IMDbRating) {
		return fmt.Errorf("%w: rating %v outside %.1f-%.1f", ErrInvalidRecord, *m.IMDbRating, MinRating, MaxRating)
	}
	return nil
}
