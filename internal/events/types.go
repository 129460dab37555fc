package events

// Event type constants for kelindar/event.
const (
	TypeEntryAdded uint32 = iota + 1
	TypeVolumeChanged
	TypeEntryRemoved
	TypeNotification
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// EntryAddedEvent is published when the reconciler starts tracking an
// audio object.
type EntryAddedEvent struct {
	ID    uint32 `json:"id"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

// Type returns the event type identifier for EntryAddedEvent.
func (e EntryAddedEvent) Type() uint32 { return TypeEntryAdded }

// VolumeChangedEvent is published for every genuine (non-duplicate,
// non-initial) volume change.
type VolumeChangedEvent struct {
	ID     uint32  `json:"id"`
	Label  string  `json:"label"`
	Volume float64 `json:"volume"`
	Muted  bool    `json:"muted"`
}

// Type returns the event type identifier for VolumeChangedEvent.
func (e VolumeChangedEvent) Type() uint32 { return TypeVolumeChanged }

// EntryRemovedEvent is published when a tracked object disappears.
type EntryRemovedEvent struct {
	ID    uint32 `json:"id"`
	Label string `json:"label"`
}

// Type returns the event type identifier for EntryRemovedEvent.
func (e EntryRemovedEvent) Type() uint32 { return TypeEntryRemoved }

// NotificationEvent is published after a presentation call, successful or
// not. Action is one of "shown", "updated", "closed".
type NotificationEvent struct {
	ID     uint32 `json:"id"`
	Action string `json:"action"`
	Failed bool   `json:"failed"`
}

// Type returns the event type identifier for NotificationEvent.
func (e NotificationEvent) Type() uint32 { return TypeNotification }
