// Package notify renders volume changes as desktop notifications through
// the org.freedesktop.Notifications D-Bus service.
package notify

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = "/org/freedesktop/Notifications"
	appName    = "audionode"
)

// Urgency levels from the Desktop Notifications Specification.
const (
	UrgencyLow      byte = 0
	UrgencyNormal   byte = 1
	UrgencyCritical byte = 2
)

// DefaultTimeout keeps volume toasts short-lived.
const DefaultTimeout = 2 * time.Second

// Handle identifies a notification previously shown by the server. Zero
// is never a valid handle.
type Handle uint32

// Request describes one notification to show or update.
type Request struct {
	Summary string
	Body    string
	Icon    string
	// Value, when non-nil, asks the server for a progress-style gauge
	// (0-100).
	Value   *int
	Urgency byte
	Timeout time.Duration
}

// Service sends notifications over the session bus.
type Service struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewService connects to the session bus.
func NewService() (*Service, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("notify: session bus: %w", err)
	}
	return &Service{
		conn: conn,
		obj:  conn.Object(busName, objectPath),
	}, nil
}

// Show displays a new notification and returns its handle.
func (s *Service) Show(req Request) (Handle, error) {
	return s.send(0, req)
}

// Update replaces the notification behind handle. Servers reuse the id, so
// the returned handle normally equals the argument.
func (s *Service) Update(handle Handle, req Request) (Handle, error) {
	return s.send(handle, req)
}

// Close dismisses the notification behind handle.
func (s *Service) Close(handle Handle) error {
	call := s.obj.Call(busName+".CloseNotification", 0, uint32(handle))
	if call.Err != nil {
		return fmt.Errorf("notify: close: %w", call.Err)
	}
	return nil
}

// Shutdown releases the bus connection.
func (s *Service) Shutdown() error {
	return s.conn.Close()
}

func (s *Service) send(replaces Handle, req Request) (Handle, error) {
	timeout := req.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(req.Urgency),
	}
	if req.Value != nil {
		hints["value"] = dbus.MakeVariant(int32(*req.Value))
	}

	call := s.obj.Call(busName+".Notify", 0,
		appName,
		uint32(replaces),
		req.Icon,
		req.Summary,
		req.Body,
		[]string{},
		hints,
		int32(timeout/time.Millisecond),
	)
	if call.Err != nil {
		return 0, fmt.Errorf("notify: show: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify: bad reply: %w", err)
	}
	return Handle(id), nil
}
