package omdb

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"cinelist/models"
)

// RawRecord is the provider's reply for a single title lookup, keyed by the
// provider's field names.
type RawRecord map[string]string

// Provider field names.
const (
	FieldResponse = "Response"
	FieldError    = "Error"
	FieldTitle    = "Title"
	FieldYear     = "Year"
	FieldType     = "Type"
	FieldRated    = "Rated"
	FieldRuntime  = "Runtime"
	FieldReleased = "Released"
	FieldGenre    = "Genre"
	FieldDirector = "Director"
	FieldWriter   = "Writer"
	FieldActors   = "Actors"
	FieldLanguage = "Language"
	FieldCountry  = "Country"
	FieldAwards   = "Awards"
	FieldPlot     = "Plot"
	FieldRating   = "imdbRating"
	FieldVotes    = "imdbVotes"
	FieldIMDbID   = "imdbID"
	FieldPoster   = "Poster"
)

// Normalize converts a raw provider reply into a MovieRecord.
func Normalize(raw RawRecord) (models.MovieRecord, error) {
	if raw[FieldResponse] != "True" {
		if msg := strings.TrimSpace(raw[FieldError]); msg != "" {
			return models.MovieRecord{}, fmt.Errorf("%w: %s", ErrNotFound, msg)
		}
		return models.MovieRecord{}, ErrNotFound
	}

	title := clean(raw[FieldTitle])
	if title == "" || title == models.NotAvailable {
		return models.MovieRecord{}, &NormalizationError{Field: FieldTitle, Reason: "missing"}
	}

	rawType := clean(raw[FieldType])
	if rawType == "" {
		return models.MovieRecord{}, &NormalizationError{Field: FieldType, Reason: "missing"}
	}
	mediaType, err := models.ParseMediaType(rawType)
	if err != nil {
		return models.MovieRecord{}, &NormalizationError{Field: FieldType, Value: rawType, Reason: "unsupported type"}
	}

	year, err := ParseYear(raw[FieldYear])
	if err != nil {
		return models.MovieRecord{}, err
	}

	rating, err := parseRating(raw[FieldRating])
	if err != nil {
		return models.MovieRecord{}, err
	}

	poster := clean(raw[FieldPoster])
	if poster == models.NotAvailable {
		poster = ""
	}

	return models.MovieRecord{
		Title:      title,
		Year:       year,
		Type:       mediaType,
		Rated:      display(raw[FieldRated]),
		Runtime:    display(raw[FieldRuntime]),
		Released:   display(raw[FieldReleased]),
		Genre:      display(raw[FieldGenre]),
		Director:   display(raw[FieldDirector]),
		Writer:     display(raw[FieldWriter]),
		Actors:     display(raw[FieldActors]),
		Language:   display(raw[FieldLanguage]),
		Country:    display(raw[FieldCountry]),
		Awards:     display(raw[FieldAwards]),
		Plot:       display(raw[FieldPlot]),
		IMDbRating: rating,
		IMDbVotes:  display(raw[FieldVotes]),
		IMDbID:     clean(raw[FieldIMDbID]),
		PosterURL:  poster,
	}, nil
}

// ParseYear extracts a four digit year. The feed appends a range dash to
// ongoing series ("1994–", sometimes mis-encoded as "1994â€“"); trailing
// dashes and non-ASCII artifacts are stripped first, and a closed range
// ("2008–2013") yields its start year.
func ParseYear(raw string) (int, error) {
	s := strings.TrimRightFunc(strings.TrimSpace(raw), isRangeArtifact)
	if i := strings.IndexFunc(s, isRangeArtifact); i > 0 {
		s = s[:i]
	}

	if len(s) != 4 {
		return 0, &NormalizationError{Field: FieldYear, Value: raw, Reason: "expected a four digit year"}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, &NormalizationError{Field: FieldYear, Value: raw, Reason: "expected a four digit year"}
		}
	}

	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, &NormalizationError{Field: FieldYear, Value: raw, Reason: err.Error()}
	}
	return year, nil
}

func isRangeArtifact(r rune) bool {
	return r == '-' || unicode.Is(unicode.Pd, r) || r > unicode.MaxASCII
}

func parseRating(raw string) (*float64, error) {
	s := clean(raw)
	if s == "" || s == models.NotAvailable {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &NormalizationError{Field: FieldRating, Value: raw, Reason: "not a number"}
	}
	if v < models.MinRating || v > models.MaxRating {
		return nil, &NormalizationError{Field: FieldRating, Value: raw, Reason: "out of range"}
	}
	return &v, nil
}

func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func display(s string) string {
	if v := clean(s); v != "" {
		return v
	}
	return models.NotAvailable
}
