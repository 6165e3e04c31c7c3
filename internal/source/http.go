package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kailas-cloud/devsift/internal/domain"
	"github.com/kailas-cloud/devsift/internal/domain/device"
)

// DefaultMaxBodyBytes caps the size of a fetched payload.
const DefaultMaxBodyBytes = 256 << 20

// HTTP loads records with a GET request. The locator is the URL.
type HTTP struct {
	client  *http.Client
	maxBody int64
}

// NewHTTP creates an HTTP loader. A nil client gets one with the given timeout.
func NewHTTP(client *http.Client, timeout time.Duration) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTP{client: client, maxBody: DefaultMaxBodyBytes}
}

// Load fetches locator. Non-2xx responses fail with the status code.
func (h *HTTP) Load(ctx context.Context, locator string) ([]device.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, http.NoBody)
	if err != nil {
		return nil, domain.NewLoadError(locator, 0, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, domain.NewLoadError(locator, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, domain.NewLoadError(locator, resp.StatusCode, nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBody+1))
	if err != nil {
		return nil, domain.NewLoadError(locator, resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if int64(len(data)) > h.maxBody {
		return nil, domain.NewLoadError(locator, resp.StatusCode, fmt.Errorf("body exceeds %d bytes", h.maxBody))
	}
	return decode(data)
}
