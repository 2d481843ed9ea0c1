package search

import (
	"strconv"
	"strings"

	"cinelist/models"
)

// RatingsByTitle charts the IMDb rating of each record that has one.
func RatingsByTitle(records []models.MovieRecord) []models.ChartPoint {
	points := make([]models.ChartPoint, 0, len(records))
	for _, r := range records {
		if !r.HasRating() {
			continue
		}
		points = append(points, models.ChartPoint{Label: r.DisplayTitle(), Value: *r.IMDbRating})
	}
	return points
}

// VotesByTitle charts the IMDb vote count of each record. Thousands
// separators are stripped; records without a numeric count are skipped.
func VotesByTitle(records []models.MovieRecord) []models.ChartPoint {
	points := make([]models.ChartPoint, 0, len(records))
	for _, r := range records {
		votes, ok := parseVotes(r.IMDbVotes)
		if !ok {
			continue
		}
		points = append(points, models.ChartPoint{Label: r.DisplayTitle(), Value: float64(votes)})
	}
	return points
}

func parseVotes(raw string) (int64, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" || raw == models.NotAvailable {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
