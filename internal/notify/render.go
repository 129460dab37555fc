package notify

import (
	"fmt"
	"math"

	"github.com/smazurov/audionode/internal/entry"
)

// Icon names from the freedesktop icon naming spec.
const (
	iconMuted  = "audio-volume-muted"
	iconLow    = "audio-volume-low"
	iconMedium = "audio-volume-medium"
	iconHigh   = "audio-volume-high"
)

// Render turns a volume state into a notification request. It returns
// false when the state carries neither a mute flag nor a derivable volume
// value; the caller should show nothing rather than a blank alert.
func Render(label string, vol entry.VolumeInfo, pinCorrection bool) (Request, bool) {
	req := Request{
		Summary: label,
		Urgency: UrgencyLow,
	}

	if vol.Mute != nil && *vol.Mute {
		req.Body = "Muted"
		req.Icon = iconMuted
		return req, true
	}

	effective, ok := vol.Effective(pinCorrection)
	if ok {
		percent := int(math.Round(float64(effective) * 100))
		req.Body = fmt.Sprintf("Volume %d%%", percent)
		req.Icon = volumeIcon(percent)
		req.Value = &percent
		return req, true
	}

	if vol.Mute != nil {
		// Explicitly unmuted but no level reported.
		req.Body = "Unmuted"
		req.Icon = iconHigh
		return req, true
	}

	return Request{}, false
}

func volumeIcon(percent int) string {
	switch {
	case percent <= 0:
		return iconMuted
	case percent < 34:
		return iconLow
	case percent < 67:
		return iconMedium
	default:
		return iconHigh
	}
}
