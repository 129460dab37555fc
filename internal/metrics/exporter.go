// Package metrics exposes Prometheus counters for the audio event
// pipeline. The exporter subscribes to the event bus so the reconciler
// stays free of any metrics coupling.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smazurov/audionode/internal/events"
	"github.com/smazurov/audionode/internal/logging"
)

// Exporter owns the Prometheus registry and the bus subscriptions that
// feed it.
type Exporter struct {
	registry *prometheus.Registry

	entriesTotal       *prometheus.CounterVec
	volumeChangesTotal prometheus.Counter
	notificationsTotal *prometheus.CounterVec
	entriesTracked     prometheus.Gauge

	unsubs []func()
	server *http.Server
}

// NewExporter creates an exporter with all collectors registered.
func NewExporter() *Exporter {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	e := &Exporter{
		registry: registry,
		entriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "audionode",
			Name:      "entries_total",
			Help:      "Audio objects that appeared or disappeared, by lifecycle event.",
		}, []string{"event", "kind"}),
		volumeChangesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "audionode",
			Name:      "volume_changes_total",
			Help:      "Genuine volume or mute changes after deduplication.",
		}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "audionode",
			Name:      "notifications_total",
			Help:      "Desktop notification calls by action and outcome.",
		}, []string{"action", "status"}),
		entriesTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "audionode",
			Name:      "entries_tracked",
			Help:      "Audio objects currently tracked by the reconciler.",
		}),
	}

	registry.MustRegister(e.entriesTotal, e.volumeChangesTotal, e.notificationsTotal, e.entriesTracked)
	return e
}

// Attach subscribes the exporter's counters to the event bus. Call
// Detach to release the subscriptions.
func (e *Exporter) Attach(bus *events.Bus) {
	e.unsubs = append(e.unsubs,
		bus.Subscribe(func(ev events.EntryAddedEvent) {
			e.entriesTotal.WithLabelValues("added", ev.Kind).Inc()
			e.entriesTracked.Inc()
		}),
		bus.Subscribe(func(ev events.VolumeChangedEvent) {
			e.volumeChangesTotal.Inc()
		}),
		bus.Subscribe(func(ev events.EntryRemovedEvent) {
			e.entriesTotal.WithLabelValues("removed", "").Inc()
			e.entriesTracked.Dec()
		}),
		bus.Subscribe(func(ev events.NotificationEvent) {
			status := "ok"
			if ev.Failed {
				status = "failed"
			}
			e.notificationsTotal.WithLabelValues(ev.Action, status).Inc()
		}),
	)
}

// Detach releases all bus subscriptions.
func (e *Exporter) Detach() {
	for _, unsub := range e.unsubs {
		unsub()
	}
	e.unsubs = nil
}

// Handler returns the HTTP handler serving the registry.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server for /metrics on addr in the background.
func (e *Exporter) Serve(addr string) {
	logger := logging.GetLogger("metrics")

	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	e.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics server listening", "addr", addr)
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Metrics server stopped", "error", err)
		}
	}()
}

// Shutdown stops the HTTP server, if one was started, and detaches from
// the bus.
func (e *Exporter) Shutdown(ctx context.Context) error {
	e.Detach()
	if e.server == nil {
		return nil
	}
	return e.server.Shutdown(ctx)
}
