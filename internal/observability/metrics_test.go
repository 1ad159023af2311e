package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog/log"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("GET", "/health", 200, 12*time.Millisecond)

	m := SessionMetrics{}
	before := testutil.ToFloat64(sessionCommands.WithLabelValues("test-registry", "domain:check", "1000"))
	m.Command("test-registry", "domain:check", 1000, 24*time.Millisecond)
	m.Command("test-registry", "poll:req", 0, time.Millisecond)
	m.Transition("test-registry", "greeted", "authenticated")
	m.Frame("out", 128)

	after := testutil.ToFloat64(sessionCommands.WithLabelValues("test-registry", "domain:check", "1000"))
	if after-before != 1 {
		t.Fatalf("expected one recorded command, got delta %v", after-before)
	}
	if got := testutil.ToFloat64(sessionCommands.WithLabelValues("test-registry", "poll:req", "none")); got < 1 {
		t.Fatalf("expected code-less command under none, got %v", got)
	}

	log.Debug().Msg("observability/metrics: registration idempotent and recording paths executed")
}
