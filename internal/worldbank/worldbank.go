// Package worldbank fetches a single indicator value per country from the
// World Bank statistics API.
package worldbank

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"asean-population/internal/logging"
	"asean-population/internal/metrics"
	"asean-population/internal/models"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "http://api.worldbank.org/v2"
	Indicator      = "SP.POP.TOTL" // total population
	Year           = "2022"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	ErrMalformed      = errors.New("malformed response")
	ErrNoObservations = errors.New("no observations")
	ErrNullValue      = errors.New("null value")
	ErrNegativeValue  = errors.New("negative value")
)

type ProgressCallback func(current, total int, msg string)

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *zap.Logger
	Metrics *metrics.Collector
}

func NewClient(logger *zap.Logger, m *metrics.Collector) *Client {
	return &Client{BaseURL: DefaultBaseURL, HTTP: http.DefaultClient, Logger: logger, Metrics: m}
}

type observation struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

type apiMessage struct {
	Message []struct {
		ID    string `json:"id"`
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"message"`
}

// IndicatorURL builds the lookup URL for one country.
func (c *Client) IndicatorURL(code string) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	q := url.Values{}
	q.Set("format", "json")
	q.Set("date", Year)
	return fmt.Sprintf("%s/country/%s/indicator/%s?%s",
		strings.TrimRight(base, "/"), url.PathEscape(code), Indicator, q.Encode())
}

// FetchValue returns the raw indicator value for code.
func (c *Client) FetchValue(ctx context.Context, code string) (float64, error) {
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.IndicatorURL(code), nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request indicator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("request indicator: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read indicator response: %w", err)
	}
	return DecodeValue(body)
}

// DecodeValue extracts the first observation's value from an API payload of
// the form [meta, [observation, ...]].
func DecodeValue(body []byte) (float64, error) {
	var parts []jsoniter.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(parts) < 2 {
		if len(parts) == 1 {
			var msg apiMessage
			if err := json.Unmarshal(parts[0], &msg); err == nil && len(msg.Message) > 0 {
				return 0, fmt.Errorf("%w: %s", ErrMalformed, msg.Message[0].Value)
			}
		}
		return 0, fmt.Errorf("%w: expected 2 elements, got %d", ErrMalformed, len(parts))
	}

	// A country without data comes back as [meta, null]; jsoniter hands the
	// null element over as an empty RawMessage.
	second := bytes.TrimSpace(parts[1])
	if len(second) == 0 || bytes.Equal(second, []byte("null")) {
		return 0, ErrNoObservations
	}

	var obs []observation
	if err := json.Unmarshal(second, &obs); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(obs) == 0 {
		return 0, ErrNoObservations
	}
	if obs[0].Value == nil {
		return 0, ErrNullValue
	}
	if *obs[0].Value < 0 {
		return 0, fmt.Errorf("%w: %v", ErrNegativeValue, *obs[0].Value)
	}
	return *obs[0].Value, nil
}

// Reason maps a lookup error to a short metrics label.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoObservations):
		return "no_observations"
	case errors.Is(err, ErrNullValue):
		return "null_value"
	case errors.Is(err, ErrNegativeValue):
		return "negative_value"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "request_failed"
	}
}

type Result struct {
	Records  models.ResultSet
	Skips    []models.Skip
	Outcomes []models.Outcome
}

// Lookup resolves one country. It never fails: an unusable response becomes a
// Skip.
func (c *Client) Lookup(ctx context.Context, ref models.CountryRef) models.Outcome {
	raw, err := c.FetchValue(ctx, ref.Code)
	if err != nil {
		return models.Outcome{Skip: &models.Skip{Name: ref.Name, Code: ref.Code, Reason: err}}
	}
	rec := models.NewPopulationRecord(ref, raw)
	return models.Outcome{Record: &rec}
}

// Collect looks up every country in order, one request at a time.
func (c *Client) Collect(ctx context.Context, refs []models.CountryRef, onProgress ProgressCallback) Result {
	logger := logging.OrNop(c.Logger)

	res := Result{Outcomes: make([]models.Outcome, 0, len(refs))}
	for i, ref := range refs {
		out := c.Lookup(ctx, ref)
		res.Outcomes = append(res.Outcomes, out)

		if out.OK() {
			res.Records = append(res.Records, *out.Record)
			c.Metrics.ObserveFetch(metrics.OutcomeResolved, "")
			if onProgress != nil {
				onProgress(i+1, len(refs), "")
			}
			continue
		}

		res.Skips = append(res.Skips, *out.Skip)
		c.Metrics.ObserveFetch(metrics.OutcomeSkipped, Reason(out.Skip.Reason))
		logger.Warn("Failed to fetch data",
			zap.String("country", ref.Name),
			zap.String("code", ref.Code),
			zap.Error(out.Skip.Reason))
		if onProgress != nil {
			onProgress(i+1, len(refs), fmt.Sprintf("skipped %s", ref.Name))
		}
	}

	logger.Info("Data from API",
		zap.Int("resolved", len(res.Records)),
		zap.Int("skipped", len(res.Skips)))
	for _, r := range res.Records {
		logger.Info("Population",
			zap.String("country", r.Name),
			zap.String("code", r.Code),
			zap.Float64("lat", r.Loc.Lat),
			zap.Float64("lon", r.Loc.Lon),
			zap.String("raw", humanize.Commaf(r.Raw)),
			zap.Float64("millions", r.PopulationMillions))
	}
	return res
}
