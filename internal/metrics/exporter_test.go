package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/smazurov/audionode/internal/events"
)

// eventually polls fn until it returns true or the deadline passes. Bus
// handlers run on dispatcher goroutines, so counter updates are async.
func eventually(t *testing.T, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestExporterCountsBusEvents(t *testing.T) {
	bus := events.New()
	exporter := NewExporter()
	exporter.Attach(bus)
	defer exporter.Detach()

	bus.Publish(events.EntryAddedEvent{ID: 1, Kind: "sink", Label: "Speakers"})
	bus.Publish(events.VolumeChangedEvent{ID: 1, Label: "Speakers", Volume: 0.5})
	bus.Publish(events.NotificationEvent{ID: 1, Action: "shown"})
	bus.Publish(events.NotificationEvent{ID: 1, Action: "updated", Failed: true})
	bus.Publish(events.EntryRemovedEvent{ID: 1, Label: "Speakers"})

	eventually(t, func() bool {
		return testutil.ToFloat64(exporter.entriesTotal.WithLabelValues("added", "sink")) == 1 &&
			testutil.ToFloat64(exporter.entriesTotal.WithLabelValues("removed", "")) == 1 &&
			testutil.ToFloat64(exporter.volumeChangesTotal) == 1 &&
			testutil.ToFloat64(exporter.notificationsTotal.WithLabelValues("shown", "ok")) == 1 &&
			testutil.ToFloat64(exporter.notificationsTotal.WithLabelValues("updated", "failed")) == 1 &&
			testutil.ToFloat64(exporter.entriesTracked) == 0
	})
}

func TestExporterDetachStopsCounting(t *testing.T) {
	bus := events.New()
	exporter := NewExporter()
	exporter.Attach(bus)

	bus.Publish(events.VolumeChangedEvent{ID: 1})
	eventually(t, func() bool {
		return testutil.ToFloat64(exporter.volumeChangesTotal) == 1
	})

	exporter.Detach()
	bus.Publish(events.VolumeChangedEvent{ID: 1})

	// Give the dispatcher time to (not) deliver.
	time.Sleep(100 * time.Millisecond)
	if got := testutil.ToFloat64(exporter.volumeChangesTotal); got != 1 {
		t.Errorf("counter advanced after Detach: %v", got)
	}
}

func TestExporterHandlerServesMetrics(t *testing.T) {
	exporter := NewExporter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exporter.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := rec.Body.String(); !strings.Contains(body, "audionode_entries_tracked") {
		t.Errorf("metrics output missing audionode_entries_tracked:\n%s", body)
	}
}

func TestExporterShutdownWithoutServe(t *testing.T) {
	exporter := NewExporter()
	if err := exporter.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown without Serve should be a no-op, got %v", err)
	}
}
