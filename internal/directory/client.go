// Package directory talks to the Radio Browser station directory. Every
// failure collapses into an empty result: callers only ever see a list.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/babycommando/afroradio/internal/station"
)

const (
	DefaultBaseURL     = "https://de1.api.radio-browser.info/json/stations"
	DefaultUserAgent   = "afroradio/1.0 (terminal radio)"
	DefaultTimeout     = 10 * time.Second
	DefaultMaxAttempts = 10
	DefaultMinWait     = 4 * time.Second
	DefaultMaxWait     = 10 * time.Second

	maxBodyBytes = 32 << 20
)

var (
	errUnexpectedStatus = errors.New("unexpected response code")
	errMalformedBody    = errors.New("response is not a list of stations")
)

// Directory returns the stations of a country. An empty slice is the uniform
// "nothing available" answer, whether the country has no stations or the
// request failed.
type Directory interface {
	Fetch(ctx context.Context, country string) []station.Station
}

type Config struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration // per attempt
	MaxAttempts int
	MinWait     time.Duration
	MaxWait     time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		UserAgent:   DefaultUserAgent,
		Timeout:     DefaultTimeout,
		MaxAttempts: DefaultMaxAttempts,
		MinWait:     DefaultMinWait,
		MaxWait:     DefaultMaxWait,
	}
}

// Client is the HTTP implementation of Directory.
type Client struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
}

var _ Directory = (*Client)(nil)

func NewClient(cfg Config, logger *zap.Logger) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.MinWait <= 0 {
		cfg.MinWait = def.MinWait
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = def.MaxWait
	}
	if cfg.MaxWait < cfg.MinWait {
		cfg.MaxWait = cfg.MinWait
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    logger.Named("directory"),
	}
}

// record mirrors the subset of a Radio Browser station object we use.
type record struct {
	StationUUID string `json:"stationuuid"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	CountryCode string `json:"countrycode"`
	Codec       string `json:"codec"`
	Bitrate     int    `json:"bitrate"`
	Tags        string `json:"tags"`
	Homepage    string `json:"homepage"`
}

// Fetch never returns an error; see Directory.
func (c *Client) Fetch(ctx context.Context, country string) []station.Station {
	country = strings.TrimSpace(country)
	if country == "" {
		return []station.Station{}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.waits(), uint64(c.cfg.MaxAttempts-1)), ctx)

	attempt := 0
	stations, err := backoff.RetryNotifyWithData(func() ([]station.Station, error) {
		attempt++
		return c.fetchOnce(ctx, country)
	}, policy, func(err error, wait time.Duration) {
		c.log.Warn("fetch attempt failed",
			zap.String("country", country),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", wait),
			zap.Error(err))
	})
	if err != nil {
		c.log.Error("fetch stations failed",
			zap.String("country", country),
			zap.Int("attempts", attempt),
			zap.Error(err))
		return []station.Station{}
	}

	c.log.Debug("fetched stations", zap.String("country", country), zap.Int("count", len(stations)))
	return stations
}

// waits doubles from MinWait up to MaxWait between attempts.
func (c *Client) waits() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.MinWait
	b.MaxInterval = c.cfg.MaxWait
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func (c *Client) fetchOnce(ctx context.Context, country string) ([]station.Station, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/bycountry/" + url.PathEscape(country)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	stations, err := decode(body, country)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	return stations, nil
}

// decode accepts only a JSON array of objects.
func decode(body []byte, country string) ([]station.Station, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if raw == nil {
		return nil, errMalformedBody
	}

	stations := make([]station.Station, 0, len(raw))
	for i, item := range raw {
		if len(item) == 0 || item[0] != '{' {
			return nil, fmt.Errorf("%w: element %d is not an object", errMalformedBody, i)
		}
		var r record
		if err := json.Unmarshal(item, &r); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", errMalformedBody, i, err)
		}
		name := strings.TrimSpace(r.Name)
		if name == "" {
			name = station.UnknownName
		}
		stations = append(stations, station.Station{
			Name:        name,
			StreamURL:   strings.TrimSpace(r.URL),
			Country:     country,
			CountryCode: r.CountryCode,
			UUID:        r.StationUUID,
			Codec:       r.Codec,
			Bitrate:     r.Bitrate,
			Tags:        splitTags(r.Tags),
			Homepage:    r.Homepage,
		})
	}
	return stations, nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
