package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const (
	defaultLatestURL    = "https://api.wheretheiss.at/v1/satellites/25544"
	defaultPositionsURL = "https://api.wheretheiss.at/v1/satellites/25544/positions"

	// velocityKmsThreshold separates km/s-scale readings from km/h-scale
	// ones. Orbital velocity is ~7.66 km/s or ~27500 km/h; nothing
	// plausible falls near the boundary.
	velocityKmsThreshold = 1000

	// maxBodyBytes bounds response reads; a position payload is well under 1 KB.
	maxBodyBytes = 1 << 20
)

// Fetcher retrieves current and future satellite positions from the remote API.
type Fetcher struct {
	url          string
	positionsURL string
	httpClient   *http.Client
}

// NewFetcher creates a Fetcher for the given endpoint URLs. Empty URLs fall
// back to the wheretheiss.at defaults.
func NewFetcher(latestURL, positionsURL string, timeout time.Duration) *Fetcher {
	if latestURL == "" {
		latestURL = defaultLatestURL
	}
	if positionsURL == "" {
		positionsURL = defaultPositionsURL
	}
	return &Fetcher{
		url:          latestURL,
		positionsURL: positionsURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// URL returns the configured latest-position endpoint URL.
func (f *Fetcher) URL() string {
	return f.url
}

// wirePosition is the fixed JSON shape of the remote API. Absent fields
// decode to zero.
type wirePosition struct {
	Timestamp int64   `json:"timestamp"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
	Velocity  float64 `json:"velocity"`
}

// Fetch performs a single bounded-timeout request and returns the normalized
// position. Errors are classified as network, http_status, or parse; the
// caller logs and skips the tick, there is no retry here.
func (f *Fetcher) Fetch(ctx context.Context) (*Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &FetchError{Kind: FetchNetwork, Err: fmt.Errorf("creating request: %w", err)}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: FetchNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Kind: FetchStatus, Err: fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, f.url)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Kind: FetchNetwork, Err: fmt.Errorf("reading response body: %w", err)}
	}

	var wire wirePosition
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &FetchError{Kind: FetchParse, Err: fmt.Errorf("decoding position payload: %w", err)}
	}

	return normalize(wire, body, time.Now().UTC()), nil
}

// normalize converts a wire payload into a Position with velocity in km/h.
func normalize(wire wirePosition, raw []byte, now time.Time) *Position {
	ts := now.Truncate(time.Second)
	if wire.Timestamp > 0 {
		ts = time.Unix(wire.Timestamp, 0).UTC()
	}

	kmh := NormalizeVelocity(wire.Velocity)
	return &Position{
		Timestamp:   ts,
		Epoch:       ts.Unix(),
		Latitude:    wire.Latitude,
		Longitude:   wire.Longitude,
		AltitudeKm:  wire.Altitude,
		VelocityKmh: kmh,
		VelocityKms: round2(kmh / 3600),
		Source:      DefaultSource,
		Raw:         raw,
	}
}

// NormalizeVelocity converts a raw velocity reading to km/h, rounded to two
// decimals. Readings below the km/s threshold are treated as km/s and scaled
// by 3600; everything else is taken as km/h already.
func NormalizeVelocity(raw float64) float64 {
	if raw < velocityKmsThreshold {
		raw *= 3600
	}
	return round2(raw)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
