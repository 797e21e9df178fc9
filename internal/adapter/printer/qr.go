package printer

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"net/http"
	"net/url"
	"time"
)

// QRFetcher retrieves a QR code image for a payload. Used by the raster
// rendering strategy; the native strategy lets the printer draw the code.
type QRFetcher interface {
	Fetch(ctx context.Context, payload string) (image.Image, error)
}

// ImageServiceFetcher fetches QR PNGs from an external generator service
// (api.qrserver.com create-qr-code endpoint or compatible).
type ImageServiceFetcher struct {
	baseURL string
	size    int
	client  *http.Client
}

// NewImageServiceFetcher creates a fetcher against the given endpoint.
func NewImageServiceFetcher(baseURL string) *ImageServiceFetcher {
	return &ImageServiceFetcher{
		baseURL: baseURL,
		size:    200,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch downloads and decodes the QR image for payload.
func (f *ImageServiceFetcher) Fetch(ctx context.Context, payload string) (image.Image, error) {
	q := url.Values{}
	q.Set("size", fmt.Sprintf("%dx%d", f.size, f.size))
	q.Set("data", payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build qr request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch qr image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("qr service returned %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode qr image: %w", err)
	}
	return img, nil
}
