package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// FetchFuture returns the satellite's ground track for the next minutes
// ahead, one position every step seconds, queried from the remote positions
// endpoint. Malformed elements in the response are skipped rather than
// failing the whole track.
func (f *Fetcher) FetchFuture(ctx context.Context, minutes, step int) ([]Position, error) {
	now := time.Now().Unix()
	var stamps []string
	for t := now + int64(step); t <= now+int64(minutes)*60; t += int64(step) {
		stamps = append(stamps, strconv.FormatInt(t, 10))
	}

	q := url.Values{}
	q.Set("timestamps", strings.Join(stamps, ","))
	q.Set("units", "kilometers")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.positionsURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Kind: FetchNetwork, Err: fmt.Errorf("creating request: %w", err)}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: FetchNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Kind: FetchStatus, Err: fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, f.positionsURL)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{Kind: FetchNetwork, Err: fmt.Errorf("reading response body: %w", err)}
	}

	var wires []wirePosition
	if err := json.Unmarshal(body, &wires); err != nil {
		return nil, &FetchError{Kind: FetchParse, Err: fmt.Errorf("decoding positions payload: %w", err)}
	}

	out := make([]Position, 0, len(wires))
	for _, w := range wires {
		if w.Timestamp <= 0 {
			continue
		}
		out = append(out, *normalize(w, nil, time.Now().UTC()))
	}
	return out, nil
}
