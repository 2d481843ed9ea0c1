package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cinelist/models"
	"cinelist/services/search"
)

type searcher interface {
	SearchAsync(ctx context.Context, title string, criteria models.FilterCriteria) <-chan search.Result
}

var _ searcher = (*search.Service)(nil)

// SearchHandler serves the movie finder.
type SearchHandler struct {
	search searcher
	now    func() time.Time
}

func NewSearchHandler(svc searcher) *SearchHandler {
	return &SearchHandler{search: svc, now: time.Now}
}

// SearchResponse carries the accepted records and both charts.
type SearchResponse struct {
	Title    string                `json:"title"`
	Criteria models.FilterCriteria `json:"criteria"`
	Results  []models.MovieRecord  `json:"results"`
	Ratings  []models.ChartPoint   `json:"ratings"`
	Votes    []models.ChartPoint   `json:"votes"`
	Message  string                `json:"message,omitempty"`
}

// Search handles GET /api/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	title := strings.TrimSpace(q.Get("title"))

	criteria, err := h.parseCriteria(q.Get)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var res search.Result
	select {
	case res = <-h.search.SearchAsync(r.Context(), title, criteria):
	case <-r.Context().Done():
		return
	}

	if res.Err != nil {
		respondServiceError(w, res.Err)
		return
	}

	resp := SearchResponse{
		Title:    title,
		Criteria: criteria,
		Results:  res.Records,
		Ratings:  search.RatingsByTitle(res.Records),
		Votes:    search.VotesByTitle(res.Records),
	}
	if resp.Results == nil {
		resp.Results = []models.MovieRecord{}
	}
	if len(resp.Results) == 0 {
		resp.Message = "no titles match the current filters"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SearchHandler) parseCriteria(get func(string) string) (models.FilterCriteria, error) {
	criteria := models.DefaultCriteria(h.now())

	if raw := strings.TrimSpace(get("type")); raw != "" {
		mediaType, err := models.ParseMediaType(raw)
		if err != nil {
			return criteria, err
		}
		criteria.Type = mediaType
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"minYear", &criteria.Years.Min},
		{"maxYear", &criteria.Years.Max},
	}
	for _, p := range ints {
		raw := strings.TrimSpace(get(p.key))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return criteria, fmt.Errorf("invalid %s %q", p.key, raw)
		}
		*p.dst = v
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"minRating", &criteria.Ratings.Min},
		{"maxRating", &criteria.Ratings.Max},
	}
	for _, p := range floats {
		raw := strings.TrimSpace(get(p.key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return criteria, fmt.Errorf("invalid %s %q", p.key, raw)
		}
		*p.dst = v
	}

	return criteria, nil
}
