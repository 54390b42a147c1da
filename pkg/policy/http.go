package policy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// HTTPEvaluator consumes an external policy evaluation service over
// HTTP. The wire shape follows the common data-api convention: the
// input is posted under an "input" key and the decision comes back
// under "result".
//
// Any transport or decoding failure is an EvaluationError; the gateway
// treats those as fail-closed denies. The evaluator remembers the last
// ruleset version it saw so verdicts produced during an outage still
// carry a meaningful version.
type HTTPEvaluator struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger

	mu          sync.RWMutex
	lastVersion string
}

type evaluateRequest struct {
	Input Input `json:"input"`
}

type evaluateResponse struct {
	Result struct {
		Recommendation Recommendation `json:"recommendation"`
		Reasons        []Reason       `json:"reasons,omitempty"`
		RulesetVersion string         `json:"rulesetVersion"`
	} `json:"result"`
}

// NewHTTPEvaluator creates an evaluator client for the given endpoint.
// initialVersion seeds the version reported before the first successful
// evaluation.
func NewHTTPEvaluator(endpoint string, timeout time.Duration, initialVersion string) *HTTPEvaluator {
	return &HTTPEvaluator{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
		logger:      slog.Default().With("component", "policy.http"),
		lastVersion: initialVersion,
	}
}

// Evaluate posts the input to the policy service and decodes its
// recommendation.
func (h *HTTPEvaluator) Evaluate(ctx context.Context, input Input) (*Evaluation, error) {
	body, err := json.Marshal(evaluateRequest{Input: input})
	if err != nil {
		return nil, NewEvaluationError(h.endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, NewEvaluationError(h.endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Error("policy service unreachable", "endpoint", h.endpoint, "error", err)
		return nil, NewEvaluationError(h.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("policy service returned status %d", resp.StatusCode)
		h.logger.Error("policy service error", "endpoint", h.endpoint, "status", resp.StatusCode)
		return nil, NewEvaluationError(h.endpoint, err)
	}

	var decoded evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, NewEvaluationError(h.endpoint, err)
	}

	if !validEffect(decoded.Result.Recommendation) {
		err := fmt.Errorf("policy service returned unknown recommendation %q", decoded.Result.Recommendation)
		return nil, NewEvaluationError(h.endpoint, err)
	}

	version := decoded.Result.RulesetVersion
	if version == "" {
		version = h.Version()
	} else {
		h.mu.Lock()
		h.lastVersion = version
		h.mu.Unlock()
	}

	return &Evaluation{
		Recommendation: decoded.Result.Recommendation,
		Reasons:        decoded.Result.Reasons,
		RulesetVersion: version,
	}, nil
}

// Version returns the most recently observed ruleset version, or the
// configured initial version if no evaluation has succeeded yet.
func (h *HTTPEvaluator) Version() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastVersion
}

// Close releases idle connections.
func (h *HTTPEvaluator) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
