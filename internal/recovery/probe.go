package recovery

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
)

// Prober checks whether connectivity has recovered
type Prober interface {
	Probe(ctx context.Context) error
}

// ProberFunc adapts a function to the Prober interface
type ProberFunc func(ctx context.Context) error

// Probe implements Prober
func (f ProberFunc) Probe(ctx context.Context) error {
	return f(ctx)
}

// HTTPProber probes an HTTP endpoint to verify connectivity. The retry
// schedule belongs to the recovery manager's backoff loop, so the client
// itself performs no retries.
type HTTPProber struct {
	client *resty.Client
	url    string
}

// NewHTTPProber creates a prober for the given endpoint
func NewHTTPProber(url string, timeout time.Duration) *HTTPProber {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil // Disable logging

	client := resty.New().
		SetTransport(retryClient.HTTPClient.Transport).
		SetTimeout(timeout).
		SetHeader("User-Agent", "Sentinel-Probe/1.0")

	return &HTTPProber{
		client: client,
		url:    url,
	}
}

// Probe implements Prober with a single GET against the endpoint
func (p *HTTPProber) Probe(ctx context.Context) error {
	resp, err := p.client.R().SetContext(ctx).Get(p.url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("probe endpoint returned %s", resp.Status())
	}
	return nil
}
