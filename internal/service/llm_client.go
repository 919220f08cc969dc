package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ProviderConfig configures an external reasoning provider
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	City    string
	Timeout time.Duration
}

func (c ProviderConfig) validate(provider string) error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%s: missing API key", provider)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%s: missing model", provider)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s: invalid base URL %q", provider, c.BaseURL)
	}
	return nil
}

// llmHTTP is the JSON-over-HTTP transport shared by provider clients.
type llmHTTP struct {
	provider   string
	httpClient *http.Client
}

func newLLMHTTP(provider string, timeout time.Duration) llmHTTP {
	return llmHTTP{
		provider:   provider,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// postJSON sends body and decodes a 2xx reply into out. Failures come back as
// *ProviderError classified as transient or not.
func (t llmHTTP) postJSON(ctx context.Context, endpoint string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return t.fail(false, fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return t.fail(false, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return t.fail(true, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return t.fail(true, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return t.fail(transient, fmt.Errorf("http %d: %s", resp.StatusCode, truncate(string(raw), 200)))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return t.fail(false, fmt.Errorf("%w: failed to decode envelope: %v", ErrMalformedReply, err))
	}
	return nil
}

func (t llmHTTP) fail(transient bool, err error) *ProviderError {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr
	}
	return &ProviderError{Provider: t.provider, Transient: transient, Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
