package omdb

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"cinelist/models"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func stubClient(status int, body string, inspect func(*http.Request)) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if inspect != nil {
				inspect(req)
			}
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(bytes.NewBufferString(body)),
				Header:     make(http.Header),
			}, nil
		}),
	}
}

func TestLookup_SendsQueryParameters(t *testing.T) {
	var got *http.Request
	httpc := stubClient(http.StatusOK, `{"Response":"True","Title":"Inception","Year":"2010","Type":"movie","Ratings":[{"Source":"x"}]}`, func(req *http.Request) {
		got = req
	})
	client := NewClient("secret", "", httpc)

	raw, err := client.Lookup(context.Background(), Query{Title: "Inception", Type: models.MediaTypeMovie, Years: "2000-2020"})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if got == nil {
		t.Fatal("expected a request to be sent")
	}
	if got.Method != http.MethodGet {
		t.Errorf("expected GET, got %s", got.Method)
	}
	q := got.URL.Query()
	checks := map[string]string{"apikey": "secret", "t": "Inception", "type": "movie", "y": "2000-2020", "r": "json"}
	for k, want := range checks {
		if q.Get(k) != want {
			t.Errorf("param %s = %q, want %q", k, q.Get(k), want)
		}
	}
	if got.URL.Host != "www.omdbapi.com" {
		t.Errorf("unexpected host %q", got.URL.Host)
	}

	if raw["Title"] != "Inception" {
		t.Errorf("expected Title Inception, got %q", raw["Title"])
	}
	if _, ok := raw["Ratings"]; ok {
		t.Error("expected non-string fields to be dropped")
	}
}

func TestLookup_NotFoundIsNotATransportError(t *testing.T) {
	client := NewClient("secret", "http://omdb.test/", stubClient(http.StatusOK, `{"Response":"False","Error":"Movie not found!"}`, nil))

	raw, err := client.Lookup(context.Background(), Query{Title: "zzzz", Type: models.MediaTypeMovie})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if _, err := Normalize(raw); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from Normalize, got %v", err)
	}
}

func TestLookup_HTTPError(t *testing.T) {
	client := NewClient("secret", "http://omdb.test/", stubClient(http.StatusUnauthorized, `{"Response":"False","Error":"Invalid API key!"}`, nil))

	_, err := client.Lookup(context.Background(), Query{Title: "Inception"})
	var herr *HTTPStatusError
	if !errors.As(err, &herr) {
		t.Fatalf("expected HTTPStatusError, got %v", err)
	}
	if herr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", herr.StatusCode)
	}
	if bytes.Contains([]byte(herr.URL), []byte("secret")) {
		t.Error("expected api key to be redacted from the error URL")
	}
}

func TestLookup_TransportErrorIsNotRetried(t *testing.T) {
	calls := 0
	httpc := &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			calls++
			return nil, errors.New("connection refused")
		}),
	}
	client := NewClient("secret", "http://omdb.test/", httpc)

	if _, err := client.Lookup(context.Background(), Query{Title: "Inception"}); err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", calls)
	}
}

func TestLookup_MissingAPIKey(t *testing.T) {
	client := NewClient("  ", "", stubClient(http.StatusOK, `{}`, func(*http.Request) {
		t.Error("no request expected without an api key")
	}))

	if _, err := client.Lookup(context.Background(), Query{Title: "Inception"}); !errors.Is(err, ErrAPIKeyRequired) {
		t.Errorf("expected ErrAPIKeyRequired, got %v", err)
	}
}

func TestLookup_MalformedJSON(t *testing.T) {
	client := NewClient("secret", "http://omdb.test/", stubClient(http.StatusOK, `not json`, nil))

	if _, err := client.Lookup(context.Background(), Query{Title: "Inception"}); err == nil {
		t.Fatal("expected decode error")
	}
}
