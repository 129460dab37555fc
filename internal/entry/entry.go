// Package entry defines the normalized view of a remote PipeWire audio
// object (device or node) and the volume state attached to it.
package entry

// UnnamedLabel is displayed for entries that carry no usable name at all.
const UnnamedLabel = "<unnamed>"

// Kind classifies what role an audio object plays.
type Kind int

const (
	// KindUnknown is the fallback for unrecognized media classes.
	KindUnknown Kind = iota
	// KindDevice is a generic device that can be source, sink or both.
	KindDevice
	// KindSink is an output (e.g. headphones).
	KindSink
	// KindSource is an input (e.g. microphone).
	KindSource
)

// String returns the short name used in logs and the monitor command.
func (k Kind) String() string {
	switch k {
	case KindDevice:
		return "device"
	case KindSink:
		return "sink"
	case KindSource:
		return "source"
	default:
		return "unknown"
	}
}

// KindFromMediaClass maps a media.class property value to a Kind.
func KindFromMediaClass(mediaClass string) Kind {
	switch mediaClass {
	case "Audio/Sink":
		return KindSink
	case "Audio/Source":
		return KindSource
	case "Audio/Device":
		return KindDevice
	default:
		return KindUnknown
	}
}

// Entry is a snapshot of a tracked audio object. The ID is assigned by the
// server and is stable only for the object's lifetime; after removal the
// server may hand the same ID to an unrelated object.
type Entry struct {
	ID          uint32
	IsNode      bool
	DeviceID    *uint32
	Name        string
	Label       string
	Description string
	Kind        Kind
	// Volume is nil until the first Props snapshot arrives.
	Volume *VolumeInfo
}

// DisplayLabel picks the best available display string, preferring the
// curated label, then the description, then the raw name.
func (e *Entry) DisplayLabel() string {
	switch {
	case e.Label != "":
		return e.Label
	case e.Description != "":
		return e.Description
	case e.Name != "":
		return e.Name
	default:
		return UnnamedLabel
	}
}

// VolumeInfo is the volume state parsed from a Props update. All fields are
// optional because real devices report inconsistent subsets: many expose
// only per-channel levels and no master volume.
type VolumeInfo struct {
	Volume         *float32
	Mute           *bool
	ChannelVolumes []float32
}

// IsZero reports whether no recognized field was present in the update.
func (v VolumeInfo) IsZero() bool {
	return v.Volume == nil && v.Mute == nil && len(v.ChannelVolumes) == 0
}

// Equal reports field-wise equality. This is the identity used for
// deduplicating repeated Props updates.
func (v VolumeInfo) Equal(other VolumeInfo) bool {
	if !floatPtrEqual(v.Volume, other.Volume) {
		return false
	}
	if !boolPtrEqual(v.Mute, other.Mute) {
		return false
	}
	if len(v.ChannelVolumes) != len(other.ChannelVolumes) {
		return false
	}
	for i, cv := range v.ChannelVolumes {
		if cv != other.ChannelVolumes[i] {
			return false
		}
	}
	return true
}

// Effective returns the scalar volume to display and compare. When the
// master volume is absent, or pinned at exactly 1.0 while per-channel
// volumes exist (the server encodes the real value per-channel in that
// case), channel 0 is treated as representative. The pin check is a
// heuristic observed from server behavior, so it can be switched off with
// pinCorrection=false. The second return is false when no value can be
// derived at all.
func (v VolumeInfo) Effective(pinCorrection bool) (float32, bool) {
	if v.Volume != nil {
		pinned := pinCorrection && *v.Volume == 1.0 && len(v.ChannelVolumes) > 0
		if !pinned {
			return *v.Volume, true
		}
	}
	if len(v.ChannelVolumes) > 0 {
		return v.ChannelVolumes[0], true
	}
	return 0, false
}

func floatPtrEqual(a, b *float32) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
