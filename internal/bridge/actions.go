// Package bridge runs the PipeWire event loop, tracks the lifetime of
// bound remote objects and converts raw callbacks into the ordered action
// stream the reconciler consumes.
package bridge

import "github.com/smazurov/audionode/internal/entry"

// DefaultChannelCapacity bounds the action channel. The bound exists for
// backpressure, not buffering: the loop thread blocks rather than drop an
// action, because a dropped VolumeChange or EntryRemove would desync the
// consumer from server state.
const DefaultChannelCapacity = 8

// ActionKind tags the variants of the action stream.
type ActionKind int

const (
	// ActionEntryAdd announces a newly tracked object.
	ActionEntryAdd ActionKind = iota
	// ActionVolumeChange carries a parsed Props update.
	ActionVolumeChange
	// ActionEntryRemove announces that a tracked object disappeared.
	ActionEntryRemove
	// ActionShutdown is the final action before the channel closes.
	ActionShutdown
)

// String returns the name used in logs and metrics labels.
func (k ActionKind) String() string {
	switch k {
	case ActionEntryAdd:
		return "entry_add"
	case ActionVolumeChange:
		return "volume_change"
	case ActionEntryRemove:
		return "entry_remove"
	case ActionShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Action is one message on the bridge-to-reconciler channel. Entry is set
// only for ActionEntryAdd, Volume only for ActionVolumeChange; ID is zero
// for ActionShutdown.
type Action struct {
	Kind   ActionKind
	ID     uint32
	Entry  *entry.Entry
	Volume *entry.VolumeInfo
}
