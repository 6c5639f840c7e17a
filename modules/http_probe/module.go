// Package http_probe provides a handler that checks an HTTP endpoint answers
// with the expected status code.
package http_probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/specialistvlad/unitgrid/internal/ctxlog"
	"github.com/specialistvlad/unitgrid/internal/registry"
	"github.com/specialistvlad/unitgrid/internal/suite"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package. The
// zero value probes with a shared client.
type Module struct {
	// Client overrides the shared client, mostly for tests.
	Client *http.Client
}

// sharedClient is reused by every probe so connections are pooled.
var sharedClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

func (m *Module) client() *http.Client {
	if m.Client != nil {
		return m.Client
	}
	return sharedClient
}

// onRunHttpProbe issues the request and compares the response.
func (m *Module) onRunHttpProbe(ctx context.Context, args registry.Arguments) error {
	url, err := args.String("url", "")
	if err != nil {
		return err
	}
	method, err := args.String("method", http.MethodGet)
	if err != nil {
		return err
	}
	wantStatus, err := args.Int("status", http.StatusOK)
	if err != nil {
		return err
	}
	contains, err := args.String("contains", "")
	if err != nil {
		return err
	}
	timeout, err := args.Duration("timeout", 10*time.Second)
	if err != nil {
		return err
	}

	logger := ctxlog.FromContext(ctx).With("method", method, "url", url)
	logger.Debug("Making HTTP request")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := m.client().Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug("Received HTTP response", "status", resp.Status)
	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%w: %s %s returned %d, want %d", suite.ErrAssertion, method, url, resp.StatusCode, wantStatus)
	}

	if contains == "" {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if !strings.Contains(string(body), contains) {
		return fmt.Errorf("%w: response body of %s does not contain %q", suite.ErrAssertion, url, contains)
	}
	return nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterHandler("http_probe", &registry.RegisteredHandler{
		Arguments: map[string]registry.Argument{
			"url":      {Type: cty.String, Required: true},
			"method":   {Type: cty.String},
			"status":   {Type: cty.Number},
			"contains": {Type: cty.String},
			"timeout":  {Type: cty.String},
		},
		Fn: m.onRunHttpProbe,
	})
}
