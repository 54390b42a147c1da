package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/BrianCLong/govgate/pkg/config"
)

func testCollector() *Collector {
	return NewCollector(config.MetricsConfig{
		Enabled:   true,
		Namespace: "govgate",
		Subsystem: "gateway",
	}, prometheus.NewRegistry())
}

func TestRecordDecision(t *testing.T) {
	c := testCollector()

	c.RecordDecision("deny", "CROSS_TENANT", 2*time.Millisecond)
	c.RecordDecision("deny", "CROSS_TENANT", 1*time.Millisecond)
	c.RecordDecision("allow", "", time.Millisecond)

	got := testutil.ToFloat64(c.decisionsTotal.WithLabelValues("deny", "CROSS_TENANT"))
	if got != 2 {
		t.Errorf("deny/CROSS_TENANT count = %v, want 2", got)
	}

	// Empty reason is normalized so the label set stays bounded.
	got = testutil.ToFloat64(c.decisionsTotal.WithLabelValues("allow", "none"))
	if got != 1 {
		t.Errorf("allow/none count = %v, want 1", got)
	}
}

func TestSetKillSwitchMode(t *testing.T) {
	c := testCollector()

	c.SetKillSwitchMode("DENY_ALL")
	if got := testutil.ToFloat64(c.killSwitchMode.WithLabelValues("DENY_ALL")); got != 1 {
		t.Errorf("DENY_ALL gauge = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.killSwitchMode.WithLabelValues("OFF")); got != 0 {
		t.Errorf("OFF gauge = %v, want 0", got)
	}

	// Switching modes flips the previous mode back to zero.
	c.SetKillSwitchMode("OFF")
	if got := testutil.ToFloat64(c.killSwitchMode.WithLabelValues("DENY_ALL")); got != 0 {
		t.Errorf("DENY_ALL gauge after switch = %v, want 0", got)
	}

	// No config loaded.
	c.SetKillSwitchMode("")
	if got := testutil.ToFloat64(c.killSwitchMode.WithLabelValues("none")); got != 1 {
		t.Errorf("none gauge = %v, want 1", got)
	}
}

func TestRecordAuditWriteAndAlert(t *testing.T) {
	c := testCollector()

	c.RecordAuditWrite("blocking", "failure")
	c.RecordAlert("high", "AUDIT_WRITE_FAILED")

	if got := testutil.ToFloat64(c.auditWritesTotal.WithLabelValues("blocking", "failure")); got != 1 {
		t.Errorf("audit write counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.alertsTotal.WithLabelValues("high", "AUDIT_WRITE_FAILED")); got != 1 {
		t.Errorf("alert counter = %v, want 1", got)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector

	// Must not panic.
	c.RecordDecision("deny", "KILL_SWITCH", time.Millisecond)
	c.RecordBreakGlass()
	c.SetKillSwitchMode("OFF")
	c.RecordConfigRefresh("success")
	c.RecordAuditWrite("async", "success")
	c.RecordAlert("info", "CONFIG_REFRESHED")
}

func TestHandler_Exposition(t *testing.T) {
	c := testCollector()
	c.RecordDecision("deny", "KILL_SWITCH", time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "govgate_gateway_decisions_total") {
		t.Errorf("exposition missing decisions_total:\n%s", body)
	}
}
