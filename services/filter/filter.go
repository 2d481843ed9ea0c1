package filter

import "cinelist/models"

// Rejection reasons reported by Reason.
const (
	ReasonType         = "type"
	ReasonYear         = "year"
	ReasonRatingAbsent = "rating_absent"
	ReasonRating       = "rating"
)

// Accepts reports whether record passes criteria.
//
// Movies must fall inside both the year and rating ranges. Series are only
// checked against the rating range; the year range is ignored for them. A
// record without a rating never passes.
func Accepts(record models.MovieRecord, criteria models.FilterCriteria) bool {
	return Reason(record, criteria) == ""
}

// Reason returns why record is rejected by criteria, or "" when it passes.
func Reason(record models.MovieRecord, criteria models.FilterCriteria) string {
	if record.Type != criteria.Type {
		return ReasonType
	}

	switch criteria.Type {
	case models.MediaTypeMovie:
		if !criteria.Years.Contains(record.Year) {
			return ReasonYear
		}
		return ratingReason(record, criteria)
	case models.MediaTypeSeries:
		return ratingReason(record, criteria)
	default:
		return ReasonType
	}
}

func ratingReason(record models.MovieRecord, criteria models.FilterCriteria) string {
	if !record.HasRating() {
		return ReasonRatingAbsent
	}
	if !criteria.Ratings.Contains(*record.IMDbRating) {
		return ReasonRating
	}
	return ""
}

// Apply returns the records accepted by criteria, preserving order.
func Apply(records []models.MovieRecord, criteria models.FilterCriteria) []models.MovieRecord {
	result := make([]models.MovieRecord, 0, len(records))
	for _, r := range records {
		if Accepts(r, criteria) {
			result = append(result, r)
		}
	}
	return result
}
