package entry

import "testing"

func fptr(v float32) *float32 { return &v }
func bptr(v bool) *bool       { return &v }

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		name string
		e    Entry
		want string
	}{
		{"label wins", Entry{Label: "Headphones", Description: "desc", Name: "name"}, "Headphones"},
		{"description second", Entry{Description: "desc", Name: "name"}, "desc"},
		{"name third", Entry{Name: "name"}, "name"},
		{"placeholder last", Entry{}, UnnamedLabel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.DisplayLabel(); got != tt.want {
				t.Errorf("DisplayLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVolumeInfoEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b VolumeInfo
		want bool
	}{
		{"both empty", VolumeInfo{}, VolumeInfo{}, true},
		{
			"identical full",
			VolumeInfo{Volume: fptr(0.6), Mute: bptr(false), ChannelVolumes: []float32{0.6, 0.6}},
			VolumeInfo{Volume: fptr(0.6), Mute: bptr(false), ChannelVolumes: []float32{0.6, 0.6}},
			true,
		},
		{
			"different volume",
			VolumeInfo{Volume: fptr(0.6)},
			VolumeInfo{Volume: fptr(0.8)},
			false,
		},
		{
			"volume present vs absent",
			VolumeInfo{Volume: fptr(0.6)},
			VolumeInfo{},
			false,
		},
		{
			"different mute",
			VolumeInfo{Mute: bptr(true)},
			VolumeInfo{Mute: bptr(false)},
			false,
		},
		{
			"different channel count",
			VolumeInfo{ChannelVolumes: []float32{0.5}},
			VolumeInfo{ChannelVolumes: []float32{0.5, 0.5}},
			false,
		},
		{
			"different channel value",
			VolumeInfo{ChannelVolumes: []float32{0.5, 0.4}},
			VolumeInfo{ChannelVolumes: []float32{0.5, 0.5}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
			if got := tt.b.Equal(tt.a); got != tt.want {
				t.Errorf("Equal (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVolumeInfoEffective(t *testing.T) {
	tests := []struct {
		name          string
		v             VolumeInfo
		pinCorrection bool
		want          float32
		wantOK        bool
	}{
		{
			name:          "master volume used directly",
			v:             VolumeInfo{Volume: fptr(0.8)},
			pinCorrection: true,
			want:          0.8,
			wantOK:        true,
		},
		{
			name:          "pinned 1.0 falls back to channel 0",
			v:             VolumeInfo{Volume: fptr(1.0), ChannelVolumes: []float32{0.42}},
			pinCorrection: true,
			want:          0.42,
			wantOK:        true,
		},
		{
			name:          "pin correction disabled keeps master",
			v:             VolumeInfo{Volume: fptr(1.0), ChannelVolumes: []float32{0.42}},
			pinCorrection: false,
			want:          1.0,
			wantOK:        true,
		},
		{
			name:          "pinned without channels keeps master",
			v:             VolumeInfo{Volume: fptr(1.0)},
			pinCorrection: true,
			want:          1.0,
			wantOK:        true,
		},
		{
			name:          "missing master uses channel 0",
			v:             VolumeInfo{ChannelVolumes: []float32{0.3, 0.4}},
			pinCorrection: true,
			want:          0.3,
			wantOK:        true,
		},
		{
			name:          "nothing derivable",
			v:             VolumeInfo{Mute: bptr(true)},
			pinCorrection: true,
			wantOK:        false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.v.Effective(tt.pinCorrection)
			if ok != tt.wantOK {
				t.Fatalf("Effective ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Effective = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVolumeInfoIsZero(t *testing.T) {
	if !(VolumeInfo{}).IsZero() {
		t.Error("empty VolumeInfo should be zero")
	}
	if (VolumeInfo{Mute: bptr(false)}).IsZero() {
		t.Error("VolumeInfo with mute should not be zero")
	}
	if (VolumeInfo{ChannelVolumes: []float32{0.1}}).IsZero() {
		t.Error("VolumeInfo with channels should not be zero")
	}
}
