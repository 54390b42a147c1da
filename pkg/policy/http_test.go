package policy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BrianCLong/govgate/pkg/tenant"
)

func policyServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPEvaluator_Evaluate(t *testing.T) {
	var gotInput Input
	srv := policyServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		var req evaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotInput = req.Input

		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"recommendation": "deny",
				"reasons": []map[string]string{
					{"code": "POLICY_DENY", "message": "tenant over budget", "control": "cost-cap"},
				},
				"rulesetVersion": "svc-42",
			},
		})
	})

	ev := NewHTTPEvaluator(srv.URL, time.Second, "seed-1")
	defer ev.Close()

	eval, err := ev.Evaluate(context.Background(), Input{
		TenantID:      "tenant-alpha",
		Environment:   tenant.EnvProd,
		PrivilegeTier: tenant.TierStandard,
		Verb:          "write",
		Route:         "/v1/reports",
		Purpose:       "general_access",
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if gotInput.TenantID != "tenant-alpha" || gotInput.Route != "/v1/reports" {
		t.Errorf("service received %+v", gotInput)
	}
	if eval.Recommendation != RecommendDeny {
		t.Errorf("recommendation = %s", eval.Recommendation)
	}
	if len(eval.Reasons) != 1 || eval.Reasons[0].Control != "cost-cap" {
		t.Errorf("reasons = %+v", eval.Reasons)
	}
	if eval.RulesetVersion != "svc-42" {
		t.Errorf("version = %q", eval.RulesetVersion)
	}
	if ev.Version() != "svc-42" {
		t.Errorf("cached version = %q, want svc-42", ev.Version())
	}
}

func TestHTTPEvaluator_ServerErrorIsEvaluationError(t *testing.T) {
	srv := policyServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	ev := NewHTTPEvaluator(srv.URL, time.Second, "seed-1")
	defer ev.Close()

	_, err := ev.Evaluate(context.Background(), Input{TenantID: "t"})
	if err == nil {
		t.Fatal("expected error")
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Errorf("error type = %T, want *EvaluationError", err)
	}
}

func TestHTTPEvaluator_UnreachableService(t *testing.T) {
	srv := policyServer(t, func(w http.ResponseWriter, r *http.Request) {})
	url := srv.URL
	srv.Close()

	ev := NewHTTPEvaluator(url, 200*time.Millisecond, "seed-1")
	defer ev.Close()

	if _, err := ev.Evaluate(context.Background(), Input{TenantID: "t"}); err == nil {
		t.Fatal("expected transport error")
	}
	// Version survives the outage.
	if ev.Version() != "seed-1" {
		t.Errorf("Version() = %q, want seed-1", ev.Version())
	}
}

func TestHTTPEvaluator_UnknownRecommendationRejected(t *testing.T) {
	srv := policyServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"recommendation": "escalate",
				"rulesetVersion": "svc-1",
			},
		})
	})

	ev := NewHTTPEvaluator(srv.URL, time.Second, "seed-1")
	defer ev.Close()

	if _, err := ev.Evaluate(context.Background(), Input{TenantID: "t"}); err == nil {
		t.Error("unknown recommendation should be rejected")
	}
}

func TestHTTPEvaluator_EmptyVersionFallsBack(t *testing.T) {
	srv := policyServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"recommendation": "allow"},
		})
	})

	ev := NewHTTPEvaluator(srv.URL, time.Second, "seed-9")
	defer ev.Close()

	eval, err := ev.Evaluate(context.Background(), Input{TenantID: "t"})
	if err != nil {
		t.Fatal(err)
	}
	if eval.RulesetVersion != "seed-9" {
		t.Errorf("version = %q, want seed-9 fallback", eval.RulesetVersion)
	}
}

func TestHTTPEvaluator_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := policyServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-block
	})
	defer close(block)

	ev := NewHTTPEvaluator(srv.URL, 5*time.Second, "seed-1")
	defer ev.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := ev.Evaluate(ctx, Input{TenantID: "t"}); err == nil {
		t.Error("expected cancellation error")
	}
}
