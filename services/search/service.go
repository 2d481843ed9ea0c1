package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/sourcegraph/conc/panics"

	"cinelist/models"
	"cinelist/services/filter"
	"cinelist/services/omdb"
)

var (
	ErrTitleRequired  = errors.New("title is required")
	ErrLookupPanicked = errors.New("lookup panicked")
)

// Result is the single value delivered by SearchAsync.
type Result struct {
	Records []models.MovieRecord
	Err     error
}

// Service runs a title search through the provider, the normalizer and the
// filter engine.
type Service struct {
	lookup Lookup
}

func NewService(lookup Lookup) *Service {
	return &Service{lookup: lookup}
}

// Search looks up title once and returns at most one record. A record that
// fails the criteria yields an empty result and a nil error. A provider "not
// found" yields an empty result and an error wrapping omdb.ErrNotFound.
func (s *Service) Search(ctx context.Context, title string, criteria models.FilterCriteria) ([]models.MovieRecord, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := s.lookup.Lookup(ctx, omdb.Query{
		Title: title,
		Type:  criteria.Type,
		Years: criteria.YearParam(),
	})
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", title, err)
	}

	record, err := omdb.Normalize(raw)
	if errors.Is(err, omdb.ErrNotFound) {
		log.Printf("[search] no match for %q", title)
		return []models.MovieRecord{}, err
	}
	if err != nil {
		return nil, err
	}

	if reason := filter.Reason(record, criteria); reason != "" {
		log.Printf("[search] %q filtered out (%s)", record.DisplayTitle(), reason)
		return []models.MovieRecord{}, nil
	}

	return []models.MovieRecord{record}, nil
}

// SearchAsync runs Search in its own goroutine and delivers exactly one
// Result on the returned channel. Cancelling ctx aborts the provider call.
func (s *Service) SearchAsync(ctx context.Context, title string, criteria models.FilterCriteria) <-chan Result {
	out := make(chan Result, 1)

	go func() {
		var res Result
		var pc panics.Catcher
		pc.Try(func() {
			res.Records, res.Err = s.Search(ctx, title, criteria)
		})
		if r := pc.Recovered(); r != nil {
			log.Printf("[search] lookup for %q panicked: %v", title, r.Value)
			res = Result{Err: fmt.Errorf("%w: %v", ErrLookupPanicked, r.Value)}
		}
		out <- res
	}()

	return out
}
