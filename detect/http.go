package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// ErrBadResponse is returned when the detection service answers with
// something other than a region list.
var ErrBadResponse = errors.New("bad detection response")

// HTTPDetector posts PNG page images to a detection service and reads back
// a JSON array of regions.
type HTTPDetector struct {
	URL    string
	Client *http.Client
}

// NewHTTPDetector creates a detector for the service at url.
func NewHTTPDetector(url string) *HTTPDetector {
	return &HTTPDetector{
		URL:    url,
		Client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Detect implements Detector.
func (d *HTTPDetector) Detect(ctx context.Context, page image.Image) ([]Region, error) {
	var body bytes.Buffer
	if err := png.Encode(&body, page); err != nil {
		return nil, errors.Wrap(err, "failed to encode page image")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, &body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build detection request")
	}
	req.Header.Set("Content-Type", "image/png")
	req.Header.Set("Accept", "application/json")

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "detection request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Wrapf(ErrBadResponse, "status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var regions []Region
	if err := json.NewDecoder(resp.Body).Decode(&regions); err != nil {
		return nil, errors.Wrap(ErrBadResponse, err.Error())
	}

	out := regions[:0]
	for _, r := range regions {
		if !r.Class.Valid() || r.X2 < r.X1 || r.Y2 < r.Y1 {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
