package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	v1 "github.com/tablescope/tablescope/internal/api/v1"
	"github.com/tablescope/tablescope/internal/core/config"
)

// dateLayouts are tried in order when parsing upstream review dates.
// The API is not consistent about the format it returns.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Client fetches restaurant reviews from the SerpAPI OpenTable Reviews
// endpoint. It issues exactly one outbound request per FetchReviews call
// with a bounded timeout. No retries, no caching.
type Client struct {
	http    *resty.Client
	baseURL string
	engine  string
	apiKey  string
	placeID string
}

// FetchQuery selects a page of reviews.
type FetchQuery struct {
	Start int // pagination offset, >= 0
	Num   int // result-count bound, >= 1
}

// FetchResult is a validated batch of reviews plus upstream metadata.
type FetchResult struct {
	Reviews      []v1.ReviewRecord
	PlaceInfo    map[string]interface{}
	TotalResults int
	// Skipped counts entries dropped by per-entry validation
	// (skip-and-log, the batch itself still succeeds).
	Skipped int
}

func NewClient(cfg config.SerpAPIConfig) *Client {
	rc := resty.New().
		SetTimeout(cfg.EffectiveTimeout()).
		SetHeader("User-Agent", "tablescope/1.0")

	return &Client{
		http:    rc,
		baseURL: cfg.BaseURL,
		engine:  cfg.Engine,
		apiKey:  cfg.APIKey,
		placeID: cfg.PlaceID,
	}
}

// responseEnvelope is the upstream JSON shape. Reviews stays raw so one
// malformed entry can be skipped without aborting the whole batch.
type responseEnvelope struct {
	Error          string `json:"error"`
	SearchMetadata struct {
		TotalResults int `json:"total_results"`
	} `json:"search_metadata"`
	PlaceInfo map[string]interface{} `json:"place_info"`
	Reviews   []json.RawMessage      `json:"reviews"`
}

// rawReview tolerates the field aliases the API uses across result pages.
type rawReview struct {
	ReviewID     string   `json:"review_id"`
	ID           string   `json:"id"`
	Rating       *float64 `json:"rating"`
	Review       string   `json:"review"`
	Text         string   `json:"text"`
	Date         string   `json:"date"`
	ReviewDate   string   `json:"review_date"`
	ReviewerName string   `json:"reviewer_name"`
	Author       string   `json:"author"`
	HelpfulVotes *int     `json:"helpful_votes"`
	Helpful      *int     `json:"helpful"`
}

// FetchReviews fetches one page of reviews for the configured place.
// Failures surface untouched as one of the package sentinel errors; the
// only swallowed condition is the documented per-entry skip for
// malformed individual records.
func (c *Client) FetchReviews(ctx context.Context, q FetchQuery) (*FetchResult, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"engine":   c.engine,
			"api_key":  c.apiKey,
			"place_id": c.placeID,
			"start":    strconv.Itoa(q.Start),
			"num":      strconv.Itoa(q.Num),
		}).
		Get(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if err := classifyStatus(resp.StatusCode()); err != nil {
		return nil, err
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON envelope: %v", ErrMalformedResponse, err)
	}

	if envelope.Error != "" {
		return nil, classifyAPIError(envelope.Error)
	}

	result := &FetchResult{
		Reviews:      make([]v1.ReviewRecord, 0, len(envelope.Reviews)),
		PlaceInfo:    envelope.PlaceInfo,
		TotalResults: envelope.SearchMetadata.TotalResults,
	}

	for i, raw := range envelope.Reviews {
		record, err := normalizeReview(raw)
		if err != nil {
			slog.Warn("Skipping malformed review entry", "index", i, "error", err)
			result.Skipped++
			continue
		}
		result.Reviews = append(result.Reviews, *record)
	}

	if result.TotalResults == 0 {
		result.TotalResults = len(result.Reviews)
	}

	slog.Info("Fetched reviews",
		"place_id", c.placeID,
		"start", q.Start,
		"requested", q.Num,
		"returned", len(result.Reviews),
		"skipped", result.Skipped,
	)

	return result, nil
}

// classifyStatus maps transport-visible HTTP statuses onto the failure
// taxonomy. 2xx falls through to envelope parsing.
func classifyStatus(status int) error {
	switch {
	case status < 400:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: upstream returned %d", ErrAuthentication, status)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: upstream returned %d", ErrRateLimit, status)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: upstream returned %d", ErrNotFound, status)
	case status >= 500:
		return fmt.Errorf("%w: upstream returned %d", ErrNetwork, status)
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrMalformedResponse, status)
	}
}

// classifyAPIError maps the error string the API embeds in an otherwise
// successful (HTTP 200) response body.
func classifyAPIError(msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "api key") || strings.Contains(lower, "unauthorized"):
		return fmt.Errorf("%w: %s", ErrAuthentication, msg)
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "run out of searches"):
		return fmt.Errorf("%w: %s", ErrRateLimit, msg)
	case strings.Contains(lower, "hasn't returned any results") || strings.Contains(lower, "not found"):
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	default:
		return fmt.Errorf("%w: %s", ErrMalformedResponse, msg)
	}
}

// normalizeReview validates one raw entry and converts it to the
// internal record shape. Any error here means the entry is dropped.
func normalizeReview(raw json.RawMessage) (*v1.ReviewRecord, error) {
	var entry rawReview
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("entry is not a valid review object: %w", err)
	}

	if entry.Rating == nil {
		return nil, fmt.Errorf("missing rating")
	}
	rating := *entry.Rating
	if rating != math.Trunc(rating) {
		return nil, fmt.Errorf("non-integer rating %v", rating)
	}
	if rating < v1.MinRating || rating > v1.MaxRating {
		return nil, fmt.Errorf("rating %v out of range", rating)
	}

	dateStr := entry.Date
	if dateStr == "" {
		dateStr = entry.ReviewDate
	}
	postedAt, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	id := entry.ReviewID
	if id == "" {
		id = entry.ID
	}
	if id == "" {
		id = "rev_" + uuid.New().String()
	}

	text := entry.Review
	if text == "" {
		text = entry.Text
	}

	author := entry.ReviewerName
	if author == "" {
		author = entry.Author
	}
	if author == "" {
		author = "Anonymous"
	}

	votes := 0
	if entry.HelpfulVotes != nil {
		votes = *entry.HelpfulVotes
	} else if entry.Helpful != nil {
		votes = *entry.Helpful
	}
	if votes < 0 {
		votes = 0
	}

	record := &v1.ReviewRecord{
		ID:           id,
		Rating:       int(rating),
		Text:         strings.TrimSpace(text),
		Author:       author,
		PostedAt:     postedAt,
		HelpfulVotes: votes,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}
