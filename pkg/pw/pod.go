package pw

import (
	"encoding/binary"
	"math"
)

// SPA POD wire structure: every pod is an 8-byte header (uint32 payload
// size, uint32 type) followed by the payload padded to 8 bytes. An Object
// payload starts with object type and id, then repeats (uint32 key,
// uint32 flags, pod). An Array payload starts with child size and child
// type, then packed elements. PODs travel in the host's byte order.

const (
	podTypeBool   = 2
	podTypeFloat  = 6
	podTypeArray  = 13
	podTypeObject = 15
)

// Props keys from spa/param/props.h.
const (
	propVolume         = 0x10003
	propMute           = 0x10004
	propChannelVolumes = 0x10010
)

var podOrder = binary.NativeEndian

// VolumeProps is the subset of a Props object the daemon cares about.
// Unrecognized keys are skipped; a Props update can legitimately carry
// none of these.
type VolumeProps struct {
	Volume         *float32
	Mute           *bool
	ChannelVolumes []float32
}

// ParseVolumeProps decodes a serialized Props object. It returns false
// when the blob is not a parseable POD object at all; a well-formed object
// without volume keys returns an empty VolumeProps and true.
func ParseVolumeProps(data []byte) (VolumeProps, bool) {
	var out VolumeProps

	size, typ, payload, ok := podHeader(data)
	if !ok || typ != podTypeObject || size < 8 {
		return out, false
	}

	// Skip the object type and id words; the keys identify everything we
	// need regardless of which object carried them.
	body := payload[8:]
	for len(body) >= 16 {
		key := podOrder.Uint32(body[0:4])
		vsize, vtyp, value, vok := podHeader(body[8:])
		if !vok {
			break
		}

		switch key {
		case propVolume:
			if vtyp == podTypeFloat && vsize >= 4 {
				v := math.Float32frombits(podOrder.Uint32(value[0:4]))
				out.Volume = &v
			}
		case propMute:
			if vtyp == podTypeBool && vsize >= 4 {
				m := podOrder.Uint32(value[0:4]) != 0
				out.Mute = &m
			}
		case propChannelVolumes:
			if vtyp == podTypeArray {
				out.ChannelVolumes = parseFloatArray(value)
			}
		}

		adv := 16 + pad8(vsize)
		if adv > len(body) {
			break
		}
		body = body[adv:]
	}

	return out, true
}

// podHeader splits one pod into its declared payload. ok is false when the
// buffer is too short for the header or the declared payload.
func podHeader(data []byte) (size int, typ uint32, payload []byte, ok bool) {
	if len(data) < 8 {
		return 0, 0, nil, false
	}
	size = int(podOrder.Uint32(data[0:4]))
	typ = podOrder.Uint32(data[4:8])
	if size < 0 || len(data)-8 < size {
		return 0, 0, nil, false
	}
	return size, typ, data[8 : 8+size], true
}

// parseFloatArray decodes an array payload of packed floats. Arrays with a
// different child type are ignored rather than treated as errors.
func parseFloatArray(payload []byte) []float32 {
	if len(payload) < 8 {
		return nil
	}
	childSize := int(podOrder.Uint32(payload[0:4]))
	childType := podOrder.Uint32(payload[4:8])
	if childType != podTypeFloat || childSize != 4 {
		return nil
	}

	elems := payload[8:]
	n := len(elems) / 4
	if n == 0 {
		return nil
	}
	out := make([]float32, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, math.Float32frombits(podOrder.Uint32(elems[i*4:i*4+4])))
	}
	return out
}

func pad8(n int) int {
	return (n + 7) &^ 7
}
