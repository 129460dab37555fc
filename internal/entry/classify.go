package entry

import (
	"strconv"

	"github.com/smazurov/audionode/pkg/pw"
)

// Property keys used by the PipeWire registry.
const (
	propMediaClass        = "media.class"
	propDeviceAPI         = "device.api"
	propNodeName          = "node.name"
	propNodeNick          = "node.nick"
	propNodeDescription   = "node.description"
	propDeviceName        = "device.name"
	propDeviceDescription = "device.description"
	propDeviceID          = "device.id"
)

// audioMediaClasses lists the node classes the daemon tracks. Monitor
// sources are included so recording-path volumes are observable.
var audioMediaClasses = map[string]bool{
	"Audio/Sink":         true,
	"Audio/Source":       true,
	"Audio/Duplex":       true,
	"Audio/Sink/Monitor": true,
}

// audioDeviceAPIs lists the device backends that expose audio hardware.
var audioDeviceAPIs = map[string]bool{
	"alsa":   true,
	"bluez5": true,
	"jack":   true,
	"pulse":  true,
}

// IsAudioNode reports whether a node property dictionary describes an
// audio node of interest.
func IsAudioNode(props map[string]string) bool {
	return audioMediaClasses[props[propMediaClass]]
}

// IsAudioDevice reports whether a device property dictionary describes an
// audio device of interest.
func IsAudioDevice(props map[string]string) bool {
	return audioDeviceAPIs[props[propDeviceAPI]]
}

// Classify decides whether a registry global is an audio object worth
// tracking and, if so, extracts its Entry snapshot. It is a pure function:
// callers handle logging and side effects.
//
// The label preference order (nodes: nick then description; devices:
// description then name) is a display heuristic carried over unchanged so
// output stays stable across versions.
func Classify(g pw.Global) (*Entry, bool) {
	if g.Props == nil {
		return nil, false
	}

	switch g.Type {
	case pw.ObjectNode:
		if !IsAudioNode(g.Props) {
			return nil, false
		}
		return &Entry{
			ID:          g.ID,
			IsNode:      true,
			DeviceID:    parseDeviceID(g.Props),
			Name:        g.Props[propNodeName],
			Label:       firstNonEmpty(g.Props[propNodeNick], g.Props[propNodeDescription]),
			Description: g.Props[propNodeDescription],
			Kind:        KindFromMediaClass(g.Props[propMediaClass]),
		}, true

	case pw.ObjectDevice:
		if !IsAudioDevice(g.Props) {
			return nil, false
		}
		return &Entry{
			ID:          g.ID,
			IsNode:      false,
			DeviceID:    parseDeviceID(g.Props),
			Name:        g.Props[propDeviceName],
			Label:       firstNonEmpty(g.Props[propDeviceDescription], g.Props[propDeviceName]),
			Description: g.Props[propDeviceDescription],
			Kind:        KindFromMediaClass(g.Props[propMediaClass]),
		}, true

	default:
		return nil, false
	}
}

func parseDeviceID(props map[string]string) *uint32 {
	raw, ok := props[propDeviceID]
	if !ok {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	id := uint32(v)
	return &id
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
