package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic"
)

var _ meshtastic.Transport = &Transport{}

// PollInterval is how often Transport polls /api/v1/fromradio while
// connected, in the absence of a push mechanism over plain HTTP.
const PollInterval = 2 * time.Second

// Transport communicates with a Meshtastic device through its REST API
// (the WebUI/HTTP administrative endpoint some firmware builds expose),
// polling for inbound frames rather than receiving a push.
type Transport struct {
	// URL is the base URL of the meshtastic API endpoint.
	URL string
	// Client is an HTTP client used to send requests.
	Client http.Client

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Connect starts a background poll loop against /api/v1/fromradio,
// delivering each non-empty response body to onBytes.
func (t *Transport) Connect(ctx context.Context, onBytes func([]byte)) error {
	if _, err := t.Ping(ctx); err != nil {
		return fmt.Errorf("meshtastic/http: initial ping: %w", err)
	}

	pumpCtx, cancel := context.WithCancel(context.Background())
	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()

	go t.poll(pumpCtx, onBytes)
	return nil
}

func (t *Transport) poll(ctx context.Context, onBytes func([]byte)) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			body, err := t.fetch(ctx)
			if err != nil || len(body) == 0 {
				continue
			}
			onBytes(body)
		}
	}
}

func (t *Transport) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", t.URL+"/api/v1/fromradio?all=false", nil)
	if err != nil {
		return nil, fmt.Errorf("meshtastic/http: build request: %w", err)
	}
	req.Header.Set("Connection", "keep-alive")

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("meshtastic/http: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Disconnect stops the poll loop.
func (t *Transport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	return nil
}

// Write PUTs a framed buffer to /api/v1/toradio.
func (t *Transport) Write(ctx context.Context, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, "PUT", t.URL+"/api/v1/toradio", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("meshtastic/http: build request: %w", err)
	}
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Content-Type", "application/x-protobuf")

	resp, err := t.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("meshtastic/http: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Ping performs a lightweight GET against /api/v1/fromradio to confirm
// the device is reachable.
func (t *Transport) Ping(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", t.URL+"/api/v1/fromradio?all=false", nil)
	if err != nil {
		return false, fmt.Errorf("meshtastic/http: build request: %w", err)
	}
	resp, err := t.Client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}
