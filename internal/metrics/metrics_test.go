package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestQueueDepthGauge(t *testing.T) {
	SetQueueDepth(5)
	if got := testutil.ToFloat64(queueDepth); got != 5 {
		t.Errorf("queue depth gauge = %v, expected 5", got)
	}

	// A terminal batch resets the gauge; it must not keep reporting
	// refused items forever.
	SetQueueDepth(0)
	if got := testutil.ToFloat64(queueDepth); got != 0 {
		t.Errorf("queue depth gauge = %v, expected 0 after reset", got)
	}
}

func TestItemFinishedLowercasesStatus(t *testing.T) {
	before := testutil.ToFloat64(itemsTotal.WithLabelValues("converted"))
	ItemFinished("CONVERTED")
	after := testutil.ToFloat64(itemsTotal.WithLabelValues("converted"))
	if after != before+1 {
		t.Errorf("converted counter went %v -> %v, expected +1", before, after)
	}
}
