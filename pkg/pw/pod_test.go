package pw

import (
	"encoding/binary"
	"math"
	"testing"
)

// buildPropsPod serializes a Props-shaped POD object for tests. Passing a
// nil pointer omits that property entirely.
func buildPropsPod(volume *float32, mute *bool, channels []float32) []byte {
	var props []byte

	appendPod := func(key uint32, typ uint32, payload []byte) {
		prop := make([]byte, 16)
		binary.NativeEndian.PutUint32(prop[0:4], key)
		// flags stay zero
		binary.NativeEndian.PutUint32(prop[8:12], uint32(len(payload)))
		binary.NativeEndian.PutUint32(prop[12:16], typ)
		prop = append(prop, payload...)
		for len(prop)%8 != 0 {
			prop = append(prop, 0)
		}
		props = append(props, prop...)
	}

	if volume != nil {
		v := make([]byte, 4)
		binary.NativeEndian.PutUint32(v, math.Float32bits(*volume))
		appendPod(propVolume, podTypeFloat, v)
	}
	if mute != nil {
		v := make([]byte, 4)
		if *mute {
			binary.NativeEndian.PutUint32(v, 1)
		}
		appendPod(propMute, podTypeBool, v)
	}
	if channels != nil {
		payload := make([]byte, 8, 8+len(channels)*4)
		binary.NativeEndian.PutUint32(payload[0:4], 4)
		binary.NativeEndian.PutUint32(payload[4:8], podTypeFloat)
		for _, cv := range channels {
			e := make([]byte, 4)
			binary.NativeEndian.PutUint32(e, math.Float32bits(cv))
			payload = append(payload, e...)
		}
		appendPod(propChannelVolumes, podTypeArray, payload)
	}

	// Object header: payload = object type + object id + props.
	body := make([]byte, 8, 8+len(props))
	binary.NativeEndian.PutUint32(body[0:4], 0x40002) // SPA_TYPE_OBJECT_Props
	binary.NativeEndian.PutUint32(body[4:8], 2)       // SPA_PARAM_Props
	body = append(body, props...)

	pod := make([]byte, 8, 8+len(body))
	binary.NativeEndian.PutUint32(pod[0:4], uint32(len(body)))
	binary.NativeEndian.PutUint32(pod[4:8], podTypeObject)
	return append(pod, body...)
}

func fptr(v float32) *float32 { return &v }
func bptr(v bool) *bool       { return &v }

func TestParseVolumeProps(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantOK   bool
		volume   *float32
		mute     *bool
		channels []float32
	}{
		{
			name:   "empty input",
			data:   nil,
			wantOK: false,
		},
		{
			name:   "truncated header",
			data:   []byte{1, 2, 3},
			wantOK: false,
		},
		{
			name:   "declared size exceeds buffer",
			data:   []byte{0xff, 0xff, 0, 0, 15, 0, 0, 0},
			wantOK: false,
		},
		{
			name:   "not an object",
			data:   []byte{4, 0, 0, 0, podTypeFloat, 0, 0, 0, 0, 0, 0, 0},
			wantOK: false,
		},
		{
			name:   "object without volume keys",
			data:   buildPropsPod(nil, nil, nil),
			wantOK: true,
		},
		{
			name:   "volume only",
			data:   buildPropsPod(fptr(0.75), nil, nil),
			wantOK: true,
			volume: fptr(0.75),
		},
		{
			name:   "mute only",
			data:   buildPropsPod(nil, bptr(true), nil),
			wantOK: true,
			mute:   bptr(true),
		},
		{
			name:     "full props",
			data:     buildPropsPod(fptr(1.0), bptr(false), []float32{0.42, 0.42}),
			wantOK:   true,
			volume:   fptr(1.0),
			mute:     bptr(false),
			channels: []float32{0.42, 0.42},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseVolumeProps(tt.data)
			if ok != tt.wantOK {
				t.Fatalf("ParseVolumeProps ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}

			if (got.Volume == nil) != (tt.volume == nil) {
				t.Errorf("Volume presence = %v, want %v", got.Volume != nil, tt.volume != nil)
			} else if got.Volume != nil && *got.Volume != *tt.volume {
				t.Errorf("Volume = %v, want %v", *got.Volume, *tt.volume)
			}

			if (got.Mute == nil) != (tt.mute == nil) {
				t.Errorf("Mute presence = %v, want %v", got.Mute != nil, tt.mute != nil)
			} else if got.Mute != nil && *got.Mute != *tt.mute {
				t.Errorf("Mute = %v, want %v", *got.Mute, *tt.mute)
			}

			if len(got.ChannelVolumes) != len(tt.channels) {
				t.Fatalf("ChannelVolumes = %v, want %v", got.ChannelVolumes, tt.channels)
			}
			for i, cv := range tt.channels {
				if got.ChannelVolumes[i] != cv {
					t.Errorf("ChannelVolumes[%d] = %v, want %v", i, got.ChannelVolumes[i], cv)
				}
			}
		})
	}
}

func TestParseVolumePropsSkipsUnknownKeys(t *testing.T) {
	// Hand-build an object with one unknown property before a volume.
	unknown := make([]byte, 16+8)
	binary.NativeEndian.PutUint32(unknown[0:4], 0x10001) // waveType, unused here
	binary.NativeEndian.PutUint32(unknown[8:12], 4)
	binary.NativeEndian.PutUint32(unknown[12:16], podTypeFloat)

	vol := make([]byte, 16+8)
	binary.NativeEndian.PutUint32(vol[0:4], propVolume)
	binary.NativeEndian.PutUint32(vol[8:12], 4)
	binary.NativeEndian.PutUint32(vol[12:16], podTypeFloat)
	binary.NativeEndian.PutUint32(vol[16:20], math.Float32bits(0.3))

	body := make([]byte, 8)
	body = append(body, unknown...)
	body = append(body, vol...)

	pod := make([]byte, 8, 8+len(body))
	binary.NativeEndian.PutUint32(pod[0:4], uint32(len(body)))
	binary.NativeEndian.PutUint32(pod[4:8], podTypeObject)
	pod = append(pod, body...)

	got, ok := ParseVolumeProps(pod)
	if !ok {
		t.Fatal("expected parseable object")
	}
	if got.Volume == nil || *got.Volume != float32(0.3) {
		t.Fatalf("Volume = %v, want 0.3", got.Volume)
	}
}
