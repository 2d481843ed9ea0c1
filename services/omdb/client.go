package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cinelist/models"
)

const (
	// DefaultBaseURL is the public OMDb endpoint.
	DefaultBaseURL = "http://www.omdbapi.com/"
	// DefaultTimeout bounds a single lookup.
	DefaultTimeout = 10 * time.Second

	maxResponseSize = 1 << 20
)

// Query parameterizes an exact-title lookup.
type Query struct {
	Title string
	Type  models.MediaType
	Years string // "min-max"
}

// Client performs exact-title lookups against OMDb. It never retries; a
// failed call is returned to the caller as is.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

// NewClient builds a client. An empty baseURL selects DefaultBaseURL and a nil
// httpc gets a client with DefaultTimeout.
func NewClient(apiKey, baseURL string, httpc *http.Client) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: baseURL,
		httpc:   httpc,
	}
}

// Lookup fetches the provider reply for q. A "not found" reply is not an
// error at this level; Normalize reports it.
func (c *Client) Lookup(ctx context.Context, q Query) (RawRecord, error) {
	if c.apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse omdb base url: %w", err)
	}
	params := u.Query()
	params.Set("apikey", c.apiKey)
	params.Set("t", q.Title)
	if q.Type != "" {
		params.Set("type", string(q.Type))
	}
	if q.Years != "" {
		params.Set("y", q.Years)
	}
	params.Set("r", "json")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build omdb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("omdb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, &HTTPStatusError{URL: redact(u), StatusCode: resp.StatusCode}
	}

	var body map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode omdb response: %w", err)
	}

	raw := make(RawRecord, len(body))
	for k, v := range body {
		if s, ok := v.(string); ok {
			raw[k] = s
		}
	}

	log.Printf("[omdb] lookup title=%q type=%s years=%s response=%s in %s",
		q.Title, q.Type, q.Years, raw[FieldResponse], time.Since(start).Round(time.Millisecond))
	return raw, nil
}

// redact strips the api key from u for error messages.
func redact(u *url.URL) string {
	c := *u
	params := c.Query()
	if params.Has("apikey") {
		params.Set("apikey", "REDACTED")
	}
	c.RawQuery = params.Encode()
	return c.String()
}
