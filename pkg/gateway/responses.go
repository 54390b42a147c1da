package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/BrianCLong/govgate/pkg/verdict"
)

// Governance headers emitted on every decision.
const (
	StatusHeader        = "X-Governance-Status"
	PolicyVersionHeader = "X-Governance-Policy-Version"
	ReasonHeader        = "X-Governance-Reason"
)

// denyResponse is the JSON body returned to callers on deny. It carries
// stable reason codes and caller-safe messages, never internal detail.
type denyResponse struct {
	Status    string       `json:"status"`
	Reasons   []denyReason `json:"reasons"`
	VerdictID string       `json:"verdictId"`
	RequestID string       `json:"requestId"`
}

type denyReason struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// setVerdictHeaders stamps the governance headers from a sealed
// verdict.
func setVerdictHeaders(w http.ResponseWriter, v *verdict.Verdict) {
	w.Header().Set(StatusHeader, string(v.Status()))
	w.Header().Set(PolicyVersionHeader, v.PolicyVersion())
	if reason := v.PrimaryReason(); reason != "" {
		w.Header().Set(ReasonHeader, reason)
	}
}

// writeDeny emits the deny body with the verdict's HTTP status.
func writeDeny(w http.ResponseWriter, httpStatus int, v *verdict.Verdict, requestID string) {
	reasons := v.Reasons()
	body := denyResponse{
		Status:    string(v.Status()),
		Reasons:   make([]denyReason, len(reasons)),
		VerdictID: v.ID(),
		RequestID: requestID,
	}
	for i, r := range reasons {
		body.Reasons[i] = denyReason{Code: r.Code, Message: r.Message}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(body)
}
