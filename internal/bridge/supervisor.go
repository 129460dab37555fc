package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/smazurov/audionode/internal/entry"
	"github.com/smazurov/audionode/pkg/pw"
)

// State represents the supervisor lifecycle.
type State string

// Supervisor states.
const (
	StateCreated    State = "created"    // Not connected yet
	StateConnected  State = "connected"  // Connection and registry acquired
	StateRunning    State = "running"    // Native loop processing callbacks
	StateStopping   State = "stopping"   // Cancellation received
	StateTerminated State = "terminated" // Loop stopped, channel closed
)

// IgnoreSet holds entry names that must never be bound or subscribed.
// Replace may be called from any goroutine (config hot-reload); Match runs
// on the loop thread.
type IgnoreSet struct {
	names atomic.Value // map[string]struct{}
}

// NewIgnoreSet builds a set from the configured names.
func NewIgnoreSet(names []string) *IgnoreSet {
	s := &IgnoreSet{}
	s.Replace(names)
	return s
}

// Replace swaps the whole set atomically.
func (s *IgnoreSet) Replace(names []string) {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n != "" {
			m[n] = struct{}{}
		}
	}
	s.names.Store(m)
}

// Match reports whether the entry is ignored. The entry's name is matched
// first, its label when no name is set.
func (s *IgnoreSet) Match(e *entry.Entry) bool {
	m, _ := s.names.Load().(map[string]struct{})
	if len(m) == 0 {
		return false
	}
	key := e.Name
	if key == "" {
		key = e.Label
	}
	_, ok := m[key]
	return ok
}

// Config configures a Supervisor.
type Config struct {
	// ChannelCapacity bounds the action channel. Zero means
	// DefaultChannelCapacity.
	ChannelCapacity int
	// Ignore suppresses binding for matching entries. Nil means no
	// filtering.
	Ignore *IgnoreSet
	// Dial opens the native connection. Nil means pw.Connect.
	Dial func() (pw.Conn, error)
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Supervisor owns the native connection and the subscription registry. It
// converts registry and property callbacks into actions; the action
// channel is the only thing shared with the consumer side.
type Supervisor struct {
	dial     func() (pw.Conn, error)
	conn     pw.Conn
	registry *Registry
	actions  chan Action
	ignore   *IgnoreSet
	logger   *slog.Logger
	state    atomic.Value // State
	done     chan struct{}
}

// NewSupervisor creates a supervisor in the Created state.
func NewSupervisor(cfg Config) *Supervisor {
	capacity := cfg.ChannelCapacity
	if capacity <= 0 {
		capacity = DefaultChannelCapacity
	}
	dial := cfg.Dial
	if dial == nil {
		dial = pw.Connect
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ignore := cfg.Ignore
	if ignore == nil {
		ignore = NewIgnoreSet(nil)
	}

	s := &Supervisor{
		dial:     dial,
		registry: NewRegistry(),
		actions:  make(chan Action, capacity),
		ignore:   ignore,
		logger:   logger,
		done:     make(chan struct{}),
	}
	s.state.Store(StateCreated)
	return s
}

// Actions returns the action stream. It is closed after the Shutdown
// action once the supervisor terminates, so the close itself doubles as an
// end-of-stream signal.
func (s *Supervisor) Actions() <-chan Action {
	return s.actions
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	return s.state.Load().(State)
}

// Done is closed once the supervisor reaches Terminated.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

// Start connects to the server, installs the registry listener and starts
// the native loop. It returns once the loop is running; cancellation of
// ctx triggers teardown. Startup failures are fatal and leave nothing
// running.
func (s *Supervisor) Start(ctx context.Context) error {
	conn, err := s.dial()
	if err != nil {
		return fmt.Errorf("bridge: startup: %w", err)
	}
	s.conn = conn
	s.state.Store(StateConnected)

	conn.AddListener(s)

	if err := conn.Start(); err != nil {
		conn.Close()
		s.state.Store(StateTerminated)
		return fmt.Errorf("bridge: start loop: %w", err)
	}
	s.state.Store(StateRunning)
	s.logger.Info("event loop running")

	go s.waitForCancel(ctx)
	return nil
}

// waitForCancel blocks until the context is cancelled, then tears down in
// order: stop the loop (no callbacks after this), clear the registry
// without firing removal callbacks, enqueue Shutdown, close the channel.
func (s *Supervisor) waitForCancel(ctx context.Context) {
	<-ctx.Done()
	s.state.Store(StateStopping)
	s.logger.Info("shutting down event loop")

	s.conn.Stop()
	s.registry.Clear()
	s.actions <- Action{Kind: ActionShutdown}
	close(s.actions)
	s.conn.Close()

	s.state.Store(StateTerminated)
	close(s.done)
}

// Global handles a registry "global appeared" callback on the loop thread.
func (s *Supervisor) Global(g pw.Global) {
	if g.Props == nil && (g.Type == pw.ObjectNode || g.Type == pw.ObjectDevice) {
		s.logger.Debug("ignoring global without props", "id", g.ID, "type", g.Type.String())
		return
	}

	e, ok := entry.Classify(g)
	if !ok {
		return
	}
	if s.ignore.Match(e) {
		s.logger.Debug("entry ignored by filter", "id", e.ID, "label", e.DisplayLabel())
		return
	}

	var (
		proxy pw.Proxy
		err   error
	)
	if e.IsNode {
		proxy, err = s.conn.BindNode(e.ID)
	} else {
		proxy, err = s.conn.BindDevice(e.ID)
	}
	if err != nil {
		s.logger.Warn("bind failed, skipping object", "id", e.ID, "label", e.DisplayLabel(), "error", err)
		return
	}

	s.registry.Register(e.ID, proxy)
	_ = s.registry.OnRemove(e.ID, s.removeSender(e.ID))

	// The id is allocated from here on, so announce the entry before the
	// first Props snapshot can arrive.
	s.actions <- Action{Kind: ActionEntryAdd, ID: e.ID, Entry: e}

	silenced := &atomic.Bool{}
	_ = s.registry.AddListener(e.ID, func() { silenced.Store(true) })

	if err := proxy.SubscribeParams(s.paramSender(e.ID, silenced), pw.ParamProps, pw.ParamRoute); err != nil {
		s.logger.Warn("param subscription failed, dropping object", "id", e.ID, "label", e.DisplayLabel(), "error", err)
		s.registry.Remove(e.ID)
		return
	}

	s.logger.Debug("tracking entry", "id", e.ID, "kind", e.Kind.String(), "label", e.DisplayLabel())
}

// GlobalRemove handles a registry "global removed" callback.
func (s *Supervisor) GlobalRemove(id uint32) {
	s.registry.Remove(id)
}

// removeSender forwards EntryRemove downstream when the registry tears the
// object down.
func (s *Supervisor) removeSender(id uint32) func() {
	return func() {
		s.actions <- Action{Kind: ActionEntryRemove, ID: id}
	}
}

// paramSender converts a Props callback into a VolumeChange action. Any
// other parameter is ignored, and a Props update with none of the
// recognized fields is noise, not an event.
func (s *Supervisor) paramSender(id uint32, silenced *atomic.Bool) pw.ParamFunc {
	return func(kind pw.ParamKind, payload []byte) {
		if silenced.Load() || kind != pw.ParamProps {
			return
		}

		props, ok := pw.ParseVolumeProps(payload)
		if !ok {
			s.logger.Debug("unparseable props payload", "id", id, "bytes", len(payload))
			return
		}

		vol := entry.VolumeInfo{
			Volume:         props.Volume,
			Mute:           props.Mute,
			ChannelVolumes: props.ChannelVolumes,
		}
		if vol.IsZero() {
			return
		}
		s.actions <- Action{Kind: ActionVolumeChange, ID: id, Volume: &vol}
	}
}
