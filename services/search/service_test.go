package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cinelist/models"
	"cinelist/services/omdb"
)

func inceptionRaw(rating string) omdb.RawRecord {
	return omdb.RawRecord{
		"Response":   "True",
		"Title":      "Inception",
		"Year":       "2010",
		"Type":       "movie",
		"Director":   "Christopher Nolan",
		"imdbRating": rating,
		"imdbVotes":  "2,512,345",
		"imdbID":     "tt1375666",
		"Poster":     "N/A",
	}
}

func criteria() models.FilterCriteria {
	return models.FilterCriteria{
		Type:    models.MediaTypeMovie,
		Years:   models.YearRange{Min: 2000, Max: 2020},
		Ratings: models.RatingRange{Min: 7.0, Max: 10.0},
	}
}

func setupTestService(t *testing.T) (*Service, *MockLookup) {
	t.Helper()
	ctrl := gomock.NewController(t)
	lookup := NewMockLookup(ctrl)
	return NewService(lookup), lookup
}

func TestSearch_InceptionAccepted(t *testing.T) {
	svc, lookup := setupTestService(t)

	lookup.EXPECT().
		Lookup(gomock.Any(), omdb.Query{Title: "Inception", Type: models.MediaTypeMovie, Years: "2000-2020"}).
		Return(inceptionRaw("8.8"), nil).
		Times(1)

	records, err := svc.Search(context.Background(), "Inception", criteria())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2010, records[0].Year)
	require.NotNil(t, records[0].IMDbRating)
	assert.Equal(t, 8.8, *records[0].IMDbRating)
}

func TestSearch_RatingNotAvailableIsFiltered(t *testing.T) {
	svc, lookup := setupTestService(t)

	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(inceptionRaw("N/A"), nil)

	records, err := svc.Search(context.Background(), "Inception", criteria())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearch_OutOfRangeIsFiltered(t *testing.T) {
	svc, lookup := setupTestService(t)

	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(inceptionRaw("6.1"), nil)

	records, err := svc.Search(context.Background(), "Inception", criteria())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearch_NotFound(t *testing.T) {
	svc, lookup := setupTestService(t)

	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).
		Return(omdb.RawRecord{"Response": "False", "Error": "Movie not found!"}, nil)

	records, err := svc.Search(context.Background(), "Nope", criteria())
	assert.ErrorIs(t, err, omdb.ErrNotFound)
	assert.Empty(t, records)
}

func TestSearch_LookupErrorIsNotRetried(t *testing.T) {
	svc, lookup := setupTestService(t)

	boom := errors.New("connection reset")
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(nil, boom).Times(1)

	records, err := svc.Search(context.Background(), "Inception", criteria())
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, records)
}

func TestSearch_NormalizationError(t *testing.T) {
	svc, lookup := setupTestService(t)

	raw := inceptionRaw("8.8")
	delete(raw, "Year")
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(raw, nil)

	_, err := svc.Search(context.Background(), "Inception", criteria())
	var normErr *omdb.NormalizationError
	require.ErrorAs(t, err, &normErr)
	assert.Equal(t, "Year", normErr.Field)
}

func TestSearch_ValidatesInputWithoutCallingProvider(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.Search(context.Background(), "   ", criteria())
	assert.ErrorIs(t, err, ErrTitleRequired)

	bad := criteria()
	bad.Years = models.YearRange{Min: 2020, Max: 2000}
	_, err = svc.Search(context.Background(), "Inception", bad)
	assert.ErrorIs(t, err, models.ErrInvalidCriteria)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Search(ctx, "Inception", criteria())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchAsync_DeliversOneResult(t *testing.T) {
	svc, lookup := setupTestService(t)

	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(inceptionRaw("8.8"), nil)

	ch := svc.SearchAsync(context.Background(), "Inception", criteria())

	select {
	case res := <-ch:
		require.NoError(t, res.Err)
		assert.Len(t, res.Records, 1)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for result")
	}
}

func TestSearchAsync_CancelledBeforeLookup(t *testing.T) {
	svc, lookup := setupTestService(t)

	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Times(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	select {
	case res := <-svc.SearchAsync(ctx, "Inception", criteria()):
		assert.ErrorIs(t, res.Err, context.Canceled)
		assert.Empty(t, res.Records)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for cancelled result")
	}
}

func TestSearchAsync_CancelledDuringLookup(t *testing.T) {
	svc, lookup := setupTestService(t)

	started := make(chan struct{})
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ omdb.Query) (omdb.RawRecord, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := svc.SearchAsync(ctx, "Inception", criteria())

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for lookup to start")
	}
	cancel()

	select {
	case res := <-ch:
		assert.ErrorIs(t, res.Err, context.Canceled)
		assert.Empty(t, res.Records)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for cancelled result")
	}
}

func TestSearchAsync_RecoversPanic(t *testing.T) {
	svc, lookup := setupTestService(t)

	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, omdb.Query) (omdb.RawRecord, error) {
			panic("provider exploded")
		})

	res := <-svc.SearchAsync(context.Background(), "Inception", criteria())
	assert.ErrorIs(t, res.Err, ErrLookupPanicked)
	assert.Contains(t, res.Err.Error(), "provider exploded")
}

func TestAggregates(t *testing.T) {
	rating := 8.8
	records := []models.MovieRecord{
		{Title: "Inception", Year: 2010, IMDbRating: &rating, IMDbVotes: "2,512,345"},
		{Title: "Obscure", Year: 1999, IMDbVotes: "N/A"},
		{Title: "Odd", Year: 2001, IMDbVotes: "lots"},
	}

	ratings := RatingsByTitle(records)
	require.Len(t, ratings, 1)
	assert.Equal(t, models.ChartPoint{Label: "Inception (2010)", Value: 8.8}, ratings[0])

	votes := VotesByTitle(records)
	require.Len(t, votes, 1)
	assert.Equal(t, models.ChartPoint{Label: "Inception (2010)", Value: 2512345}, votes[0])

	assert.Empty(t, RatingsByTitle(nil))
	assert.Empty(t, VotesByTitle(nil))
}
