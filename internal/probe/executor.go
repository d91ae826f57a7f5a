package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/opswatch/sentinel/internal/config"
)

// maxBodyBytes is the hard cap on how much of a response body the Executor
// ever reads, whether or not a text match is configured.
const maxBodyBytes = 100 * 1024

// Executor performs HTTP probes. It is safe for concurrent use: every call
// to Probe builds its own request and shares only the http.Client's
// connection pool.
type Executor struct {
	client *http.Client
}

// NewExecutor builds an Executor with a clean transport (no inherited
// environment-proxy surprises from http.DefaultTransport) and manual
// redirect handling: a 3xx response is itself the completed response.
func NewExecutor() *Executor {
	transport := cleanhttp.DefaultPooledTransport()
	return &Executor{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Probe issues one HTTP request against cfg.Resource and classifies the
// result. It never panics or returns an error: every failure mode is
// captured as a FAIL Outcome with a populated FailureReason.
func (e *Executor) Probe(ctx context.Context, cfg config.EffectiveServiceConfig) Outcome {
	correlationID := uuid.NewString()
	start := time.Now()

	outcome := Outcome{
		ServiceName:    cfg.Name,
		Timestamp:      start.UTC(),
		Method:         cfg.Method,
		ExpectedStatus: cfg.Expected.Status,
		CorrelationID:  correlationID,
	}

	req, err := e.buildRequest(ctx, cfg)
	if err != nil {
		outcome.Status = StatusFail
		outcome.FailureReason = fmt.Sprintf("Network error: %v", err)
		outcome.LatencyMS = time.Since(start).Milliseconds()
		return outcome
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	req = req.WithContext(deadlineCtx)

	resp, err := e.client.Do(req)
	if err != nil {
		outcome.LatencyMS = time.Since(start).Milliseconds()
		if errors.Is(deadlineCtx.Err(), context.DeadlineExceeded) {
			outcome.FailureReason = "Connection timeout"
		} else {
			outcome.FailureReason = fmt.Sprintf("Network error: %v", err)
		}
		outcome.Status = StatusFail
		return outcome
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	latency := time.Since(start)

	outcome.HTTPStatusCode = resp.StatusCode
	outcome.LatencyMS = latency.Milliseconds()

	statusMatch := resp.StatusCode == cfg.Expected.Status

	var textMatch *bool
	if cfg.Expected.Text != "" {
		match := bytes.Contains(body, []byte(cfg.Expected.Text))
		textMatch = &match
	}

	var headerResults map[string]bool
	if len(cfg.Expected.Headers) > 0 {
		headerResults = make(map[string]bool, len(cfg.Expected.Headers))
		for name, want := range cfg.Expected.Headers {
			got := resp.Header.Get(name)
			headerResults[name] = got == want
		}
	}

	outcome.TextValidationResult = textMatch
	outcome.HeaderValidationResult = headerResults

	var reasons []string
	if !statusMatch {
		reasons = append(reasons, fmt.Sprintf("Expected status %d, got %d", cfg.Expected.Status, resp.StatusCode))
	}
	if textMatch != nil && !*textMatch {
		reasons = append(reasons, fmt.Sprintf("Expected text '%s' not found", cfg.Expected.Text))
	}
	for name, want := range cfg.Expected.Headers {
		if ok := headerResults[name]; !ok {
			reasons = append(reasons, fmt.Sprintf("Header '%s' expected '%s', got '%s'", name, want, resp.Header.Get(name)))
		}
	}

	validationPassed := len(reasons) == 0
	outcome.Status, outcome.FailureReason = classify(validationPassed, latency, cfg.Timeout, cfg.WarningThreshold, reasons)

	return outcome
}

// classify applies the PASS/DEGRADED/FAIL state machine.
func classify(validationPassed bool, latency, timeout, warning time.Duration, reasons []string) (Status, string) {
	if !validationPassed {
		return StatusFail, strings.Join(reasons, "; ")
	}
	if latency >= timeout {
		return StatusFail, "Connection timeout"
	}
	if latency >= warning {
		return StatusDegraded, fmt.Sprintf("Latency %dms exceeded warning threshold %dms", latency.Milliseconds(), warning.Milliseconds())
	}
	return StatusPass, ""
}

func (e *Executor) buildRequest(ctx context.Context, cfg config.EffectiveServiceConfig) (*http.Request, error) {
	var bodyReader io.Reader
	var contentType string

	if cfg.Method == http.MethodPost && cfg.Payload != nil {
		encoded, err := json.Marshal(cfg.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, cfg.Resource, bodyReader)
	if err != nil {
		return nil, err
	}

	for _, h := range cfg.Headers {
		req.Header.Set(h.Name, h.Value)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}
