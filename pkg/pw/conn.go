// Package pw wraps the PipeWire client library behind a small
// transport-neutral surface. The cgo backend in pipewire.go owns every
// native handle and delivers callbacks on the native loop; everything in
// this file is plain Go so consumers and tests never touch cgo.
package pw

import "errors"

// ErrUnsupported is returned by Connect on platforms without a PipeWire
// backend compiled in.
var ErrUnsupported = errors.New("pw: pipewire support not compiled in")

// ObjectType identifies the interface of a registry global.
type ObjectType int

const (
	// ObjectOther covers every registry global the daemon does not track.
	ObjectOther ObjectType = iota
	// ObjectNode is a PipeWire:Interface:Node global.
	ObjectNode
	// ObjectDevice is a PipeWire:Interface:Device global.
	ObjectDevice
)

// String returns the PipeWire-style short name.
func (t ObjectType) String() string {
	switch t {
	case ObjectNode:
		return "Node"
	case ObjectDevice:
		return "Device"
	default:
		return "Other"
	}
}

// ParamKind identifies the parameter a change callback is about. Only
// Props carries volume state; Route exists because devices signal some
// volume changes through it and subscribing keeps the change stream alive.
type ParamKind int

const (
	// ParamOther is any parameter the daemon has no use for.
	ParamOther ParamKind = iota
	// ParamProps is SPA_PARAM_Props.
	ParamProps
	// ParamRoute is SPA_PARAM_Route.
	ParamRoute
)

// Global describes a registry "global appeared" callback.
type Global struct {
	ID    uint32
	Type  ObjectType
	// Props is the property dictionary, nil when the server sent none.
	Props map[string]string
}

// Events receives callbacks from the native loop. All methods are invoked
// sequentially on the loop thread; implementations must not call back into
// the Conn from other goroutines.
type Events interface {
	// Global fires when a registry global appears.
	Global(g Global)
	// GlobalRemove fires when a registry global disappears.
	GlobalRemove(id uint32)
}

// ParamFunc receives a parameter-change callback for a bound proxy. The
// payload is the serialized SPA POD for the parameter, valid only for the
// duration of the call.
type ParamFunc func(kind ParamKind, payload []byte)

// Proxy is a bound remote object. Destroying the proxy tears down the
// remote binding and silences its parameter subscription.
type Proxy interface {
	// SubscribeParams asks the server to emit the given parameters now and
	// on every change, delivering them to fn.
	SubscribeParams(fn ParamFunc, kinds ...ParamKind) error
	// Destroy releases the binding. Safe to call once.
	Destroy()
}

// Conn is a connection to the PipeWire daemon. Start runs the native event
// loop; callbacks arrive on the loop thread until Stop.
type Conn interface {
	// AddListener installs the registry listener. Must be called before
	// Start.
	AddListener(ev Events)
	// Start launches the native loop.
	Start() error
	// Stop halts the native loop. No callbacks fire after it returns.
	Stop()
	// BindNode binds a node global to a local proxy.
	BindNode(id uint32) (Proxy, error)
	// BindDevice binds a device global to a local proxy.
	BindDevice(id uint32) (Proxy, error)
	// Close releases the connection, context and library state.
	Close()
}
