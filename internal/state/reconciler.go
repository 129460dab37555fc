// Package state consumes the bridge's action stream and decides which
// changes are worth presenting. It owns the authoritative entry map and
// the outstanding notification handles; nothing else mutates them.
package state

import (
	"log/slog"

	"github.com/smazurov/audionode/internal/bridge"
	"github.com/smazurov/audionode/internal/entry"
	"github.com/smazurov/audionode/internal/events"
	"github.com/smazurov/audionode/internal/notify"
)

// Notifier is the presentation collaborator. Failures are logged and do
// not affect reconciler bookkeeping: audio-side truth is independent of
// notification delivery.
type Notifier interface {
	Show(req notify.Request) (notify.Handle, error)
	Update(handle notify.Handle, req notify.Request) (notify.Handle, error)
	Close(handle notify.Handle) error
}

// Config configures a Reconciler.
type Config struct {
	// Notifier may be nil, in which case no presentation calls happen
	// (the monitor command runs this way).
	Notifier Notifier
	// Bus receives lifecycle events for observers. May be nil.
	Bus *events.Bus
	// PinCorrection enables the volume-pinned-at-1.0 display heuristic.
	PinCorrection bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Reconciler applies actions to the entry map, deduplicates noisy volume
// updates and drives the notifier.
type Reconciler struct {
	entries       map[uint32]*entry.Entry
	handles       map[uint32]notify.Handle
	notifier      Notifier
	bus           *events.Bus
	pinCorrection bool
	logger        *slog.Logger
}

// New creates a reconciler with empty state. Multiple independent
// reconcilers can coexist; there is no package-level state.
func New(cfg Config) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		entries:       make(map[uint32]*entry.Entry),
		handles:       make(map[uint32]notify.Handle),
		notifier:      cfg.Notifier,
		bus:           cfg.Bus,
		pinCorrection: cfg.PinCorrection,
		logger:        logger,
	}
}

// Run consumes actions until Shutdown arrives or the channel closes.
// Actions are processed strictly in order, one at a time.
func (r *Reconciler) Run(actions <-chan bridge.Action) {
	for a := range actions {
		if done := r.Apply(a); done {
			return
		}
	}
	// Sender dropped without an explicit Shutdown; tear down anyway.
	r.shutdown()
}

// Apply processes one action and reports whether it was Shutdown.
func (r *Reconciler) Apply(a bridge.Action) bool {
	switch a.Kind {
	case bridge.ActionEntryAdd:
		r.entryAdd(a.ID, a.Entry)
	case bridge.ActionVolumeChange:
		r.volumeChange(a.ID, a.Volume)
	case bridge.ActionEntryRemove:
		r.entryRemove(a.ID)
	case bridge.ActionShutdown:
		r.shutdown()
		return true
	}
	return false
}

// Len returns the number of live entries.
func (r *Reconciler) Len() int {
	return len(r.entries)
}

// OutstandingHandles returns the number of visible notifications.
func (r *Reconciler) OutstandingHandles() int {
	return len(r.handles)
}

func (r *Reconciler) entryAdd(id uint32, e *entry.Entry) {
	// Unconditional insert: an id reuse means the prior object was
	// already removed.
	r.entries[id] = e
	r.logger.Info("entry added", "id", id, "kind", e.Kind.String(), "label", e.DisplayLabel())
	r.publish(events.EntryAddedEvent{ID: id, Kind: e.Kind.String(), Label: e.DisplayLabel()})
}

func (r *Reconciler) volumeChange(id uint32, vol *entry.VolumeInfo) {
	e, ok := r.entries[id]
	if !ok {
		r.logger.Warn("volume change for orphan entry", "id", id)
		return
	}

	if e.Volume == nil {
		// The first update after subscribing is the server's initial
		// state echo, not a user change.
		e.Volume = vol
		r.logger.Debug("initial volume snapshot", "id", id, "label", e.DisplayLabel())
		return
	}
	if e.Volume.Equal(*vol) {
		// Duplicate updates fire on unrelated playback transitions.
		return
	}

	e.Volume = vol
	r.publish(volumeEvent(id, e, *vol, r.pinCorrection))
	r.presentChange(id, e, *vol)
}

func (r *Reconciler) presentChange(id uint32, e *entry.Entry, vol entry.VolumeInfo) {
	if r.notifier == nil {
		return
	}

	req, ok := notify.Render(e.DisplayLabel(), vol, r.pinCorrection)
	if !ok {
		// Nothing presentable; silence beats a blank alert.
		if handle, exists := r.handles[id]; exists {
			r.closeHandle(id, handle)
		}
		return
	}

	if handle, exists := r.handles[id]; exists {
		updated, err := r.notifier.Update(handle, req)
		if err != nil {
			r.logger.Warn("notification update failed", "id", id, "error", err)
			r.publish(events.NotificationEvent{ID: id, Action: "updated", Failed: true})
			return
		}
		r.handles[id] = updated
		r.publish(events.NotificationEvent{ID: id, Action: "updated"})
		return
	}

	handle, err := r.notifier.Show(req)
	if err != nil {
		r.logger.Warn("notification show failed", "id", id, "error", err)
		r.publish(events.NotificationEvent{ID: id, Action: "shown", Failed: true})
		return
	}
	r.handles[id] = handle
	r.publish(events.NotificationEvent{ID: id, Action: "shown"})
}

func (r *Reconciler) entryRemove(id uint32) {
	e, ok := r.entries[id]
	if !ok {
		r.logger.Warn("removal of orphan entry", "id", id)
		return
	}

	if handle, exists := r.handles[id]; exists {
		r.closeHandle(id, handle)
	}
	delete(r.entries, id)
	r.logger.Info("entry removed", "id", id, "label", e.DisplayLabel())
	r.publish(events.EntryRemovedEvent{ID: id, Label: e.DisplayLabel()})
}

func (r *Reconciler) shutdown() {
	for id, handle := range r.handles {
		r.closeHandle(id, handle)
	}
	r.entries = make(map[uint32]*entry.Entry)
	r.handles = make(map[uint32]notify.Handle)
	r.logger.Info("reconciler shut down")
}

func (r *Reconciler) closeHandle(id uint32, handle notify.Handle) {
	delete(r.handles, id)
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Close(handle); err != nil {
		r.logger.Warn("notification close failed", "id", id, "error", err)
		r.publish(events.NotificationEvent{ID: id, Action: "closed", Failed: true})
		return
	}
	r.publish(events.NotificationEvent{ID: id, Action: "closed"})
}

func (r *Reconciler) publish(ev events.Event) {
	if r.bus != nil {
		r.bus.Publish(ev)
	}
}

func volumeEvent(id uint32, e *entry.Entry, vol entry.VolumeInfo, pinCorrection bool) events.VolumeChangedEvent {
	ev := events.VolumeChangedEvent{ID: id, Label: e.DisplayLabel()}
	if v, ok := vol.Effective(pinCorrection); ok {
		ev.Volume = float64(v)
	}
	ev.Muted = vol.Mute != nil && *vol.Mute
	return ev
}
