//go:build linux && cgo

package pw

/*
#cgo pkg-config: libpipewire-0.3
#include <stdint.h>
#include <stdlib.h>
#include <pipewire/pipewire.h>
#include <spa/param/props.h>
#include <spa/pod/pod.h>

extern void goRegistryGlobal(uintptr_t handle, uint32_t id, char *type, const struct spa_dict *props);
extern void goRegistryGlobalRemove(uintptr_t handle, uint32_t id);
extern void goProxyParam(uintptr_t handle, uint32_t param_id, const struct spa_pod *param);

static void on_registry_global(void *data, uint32_t id, uint32_t permissions,
		const char *type, uint32_t version, const struct spa_dict *props) {
	goRegistryGlobal((uintptr_t)data, id, (char *)type, props);
}

static void on_registry_global_remove(void *data, uint32_t id) {
	goRegistryGlobalRemove((uintptr_t)data, id);
}

static const struct pw_registry_events registry_events = {
	PW_VERSION_REGISTRY_EVENTS,
	.global = on_registry_global,
	.global_remove = on_registry_global_remove,
};

static void on_node_param(void *data, int seq, uint32_t id, uint32_t index,
		uint32_t next, const struct spa_pod *param) {
	goProxyParam((uintptr_t)data, id, param);
}

static const struct pw_node_events node_events = {
	PW_VERSION_NODE_EVENTS,
	.param = on_node_param,
};

static void on_device_param(void *data, int seq, uint32_t id, uint32_t index,
		uint32_t next, const struct spa_pod *param) {
	goProxyParam((uintptr_t)data, id, param);
}

static const struct pw_device_events device_events = {
	PW_VERSION_DEVICE_EVENTS,
	.param = on_device_param,
};

static void add_registry_listener(struct pw_registry *registry,
		struct spa_hook *hook, uintptr_t handle) {
	pw_registry_add_listener(registry, hook, &registry_events, (void *)handle);
}

static struct pw_proxy *registry_bind(struct pw_registry *registry,
		uint32_t id, const char *type, uint32_t version) {
	return (struct pw_proxy *)pw_registry_bind(registry, id, type, version, 0);
}

static void add_node_listener(struct pw_proxy *proxy, struct spa_hook *hook, uintptr_t handle) {
	pw_node_add_listener((struct pw_node *)proxy, hook, &node_events, (void *)handle);
}

static void add_device_listener(struct pw_proxy *proxy, struct spa_hook *hook, uintptr_t handle) {
	pw_device_add_listener((struct pw_device *)proxy, hook, &device_events, (void *)handle);
}

static void node_subscribe_params(struct pw_proxy *proxy, uint32_t *ids, uint32_t n) {
	pw_node_subscribe_params((struct pw_node *)proxy, ids, n);
}

static void device_subscribe_params(struct pw_proxy *proxy, uint32_t *ids, uint32_t n) {
	pw_device_subscribe_params((struct pw_device *)proxy, ids, n);
}

static void destroy_registry(struct pw_registry *registry) {
	pw_proxy_destroy((struct pw_proxy *)registry);
}

static uint32_t dict_count(const struct spa_dict *d) {
	return d ? d->n_items : 0;
}

static const char *dict_key(const struct spa_dict *d, uint32_t i) {
	return d->items[i].key;
}

static const char *dict_value(const struct spa_dict *d, uint32_t i) {
	return d->items[i].value;
}

static uint32_t pod_total_size(const struct spa_pod *pod) {
	return pod ? (uint32_t)SPA_POD_SIZE(pod) : 0;
}
*/
import "C"

import (
	"errors"
	"runtime/cgo"
	"unsafe"
)

// Startup failure causes, distinct so callers can report which stage of
// bring-up failed.
var (
	ErrLoopCreate  = errors.New("pw: can't create thread loop")
	ErrContext     = errors.New("pw: can't create context")
	ErrCoreConnect = errors.New("pw: can't connect to pipewire daemon")
	ErrRegistry    = errors.New("pw: can't acquire registry")
)

const (
	interfaceNode   = "PipeWire:Interface:Node"
	interfaceDevice = "PipeWire:Interface:Device"
)

// nativeConn is the libpipewire-backed Conn. All callbacks arrive on the
// thread loop's own thread; Conn methods other than Stop and Close must be
// called either before Start or from inside a callback.
type nativeConn struct {
	loop     *C.struct_pw_thread_loop
	context  *C.struct_pw_context
	core     *C.struct_pw_core
	registry *C.struct_pw_registry
	hook     *C.struct_spa_hook
	handle   cgo.Handle
	events   Events
	started  bool
}

// Connect initializes the client library, opens a thread loop, connects a
// core and acquires the registry. The loop does not run until Start.
func Connect() (Conn, error) {
	C.pw_init(nil, nil)

	loop := C.pw_thread_loop_new(nil, nil)
	if loop == nil {
		C.pw_deinit()
		return nil, ErrLoopCreate
	}

	ctx := C.pw_context_new(C.pw_thread_loop_get_loop(loop), nil, 0)
	if ctx == nil {
		C.pw_thread_loop_destroy(loop)
		C.pw_deinit()
		return nil, ErrContext
	}

	core := C.pw_context_connect(ctx, nil, 0)
	if core == nil {
		C.pw_context_destroy(ctx)
		C.pw_thread_loop_destroy(loop)
		C.pw_deinit()
		return nil, ErrCoreConnect
	}

	registry := C.pw_core_get_registry(core, C.PW_VERSION_REGISTRY, 0)
	if registry == nil {
		C.pw_core_disconnect(core)
		C.pw_context_destroy(ctx)
		C.pw_thread_loop_destroy(loop)
		C.pw_deinit()
		return nil, ErrRegistry
	}

	return &nativeConn{
		loop:     loop,
		context:  ctx,
		core:     core,
		registry: registry,
	}, nil
}

func (c *nativeConn) AddListener(ev Events) {
	c.events = ev
	c.handle = cgo.NewHandle(c)
	c.hook = (*C.struct_spa_hook)(C.calloc(1, C.sizeof_struct_spa_hook))
	C.add_registry_listener(c.registry, c.hook, C.uintptr_t(c.handle))
}

func (c *nativeConn) Start() error {
	if C.pw_thread_loop_start(c.loop) < 0 {
		return ErrLoopCreate
	}
	c.started = true
	return nil
}

func (c *nativeConn) Stop() {
	if c.started {
		C.pw_thread_loop_stop(c.loop)
		c.started = false
	}
}

func (c *nativeConn) BindNode(id uint32) (Proxy, error) {
	return c.bind(id, interfaceNode, C.PW_VERSION_NODE, true)
}

func (c *nativeConn) BindDevice(id uint32) (Proxy, error) {
	return c.bind(id, interfaceDevice, C.PW_VERSION_DEVICE, false)
}

func (c *nativeConn) bind(id uint32, iface string, version uint32, node bool) (Proxy, error) {
	ctype := C.CString(iface)
	defer C.free(unsafe.Pointer(ctype))

	p := C.registry_bind(c.registry, C.uint32_t(id), ctype, C.uint32_t(version))
	if p == nil {
		return nil, errors.New("pw: can't bind " + iface)
	}
	return &nativeProxy{c: p, node: node}, nil
}

func (c *nativeConn) Close() {
	if c.hook != nil {
		C.spa_hook_remove(c.hook)
		C.free(unsafe.Pointer(c.hook))
		c.hook = nil
	}
	if c.handle != 0 {
		c.handle.Delete()
		c.handle = 0
	}
	C.destroy_registry(c.registry)
	C.pw_core_disconnect(c.core)
	C.pw_context_destroy(c.context)
	C.pw_thread_loop_destroy(c.loop)
	C.pw_deinit()
}

// nativeProxy is a bound node or device.
type nativeProxy struct {
	c         *C.struct_pw_proxy
	hook      *C.struct_spa_hook
	handle    cgo.Handle
	fn        ParamFunc
	node      bool
	destroyed bool
}

func (p *nativeProxy) SubscribeParams(fn ParamFunc, kinds ...ParamKind) error {
	if len(kinds) == 0 {
		return errors.New("pw: no params to subscribe")
	}

	p.fn = fn
	p.handle = cgo.NewHandle(p)
	p.hook = (*C.struct_spa_hook)(C.calloc(1, C.sizeof_struct_spa_hook))

	ids := make([]C.uint32_t, 0, len(kinds))
	for _, k := range kinds {
		switch k {
		case ParamProps:
			ids = append(ids, C.SPA_PARAM_Props)
		case ParamRoute:
			ids = append(ids, C.SPA_PARAM_Route)
		}
	}
	if len(ids) == 0 {
		return errors.New("pw: no subscribable params")
	}

	if p.node {
		C.add_node_listener(p.c, p.hook, C.uintptr_t(p.handle))
		C.node_subscribe_params(p.c, &ids[0], C.uint32_t(len(ids)))
	} else {
		C.add_device_listener(p.c, p.hook, C.uintptr_t(p.handle))
		C.device_subscribe_params(p.c, &ids[0], C.uint32_t(len(ids)))
	}
	return nil
}

func (p *nativeProxy) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true

	if p.hook != nil {
		C.spa_hook_remove(p.hook)
		C.free(unsafe.Pointer(p.hook))
		p.hook = nil
	}
	C.pw_proxy_destroy(p.c)
	if p.handle != 0 {
		p.handle.Delete()
		p.handle = 0
	}
}

//export goRegistryGlobal
func goRegistryGlobal(handle C.uintptr_t, id C.uint32_t, ctype *C.char, props *C.struct_spa_dict) {
	c, ok := cgo.Handle(handle).Value().(*nativeConn)
	if !ok || c.events == nil {
		return
	}

	g := Global{ID: uint32(id), Type: objectTypeFromString(C.GoString(ctype))}
	if n := uint32(C.dict_count(props)); n > 0 {
		g.Props = make(map[string]string, n)
		for i := uint32(0); i < n; i++ {
			key := C.GoString(C.dict_key(props, C.uint32_t(i)))
			g.Props[key] = C.GoString(C.dict_value(props, C.uint32_t(i)))
		}
	}
	c.events.Global(g)
}

//export goRegistryGlobalRemove
func goRegistryGlobalRemove(handle C.uintptr_t, id C.uint32_t) {
	c, ok := cgo.Handle(handle).Value().(*nativeConn)
	if !ok || c.events == nil {
		return
	}
	c.events.GlobalRemove(uint32(id))
}

//export goProxyParam
func goProxyParam(handle C.uintptr_t, paramID C.uint32_t, param *C.struct_spa_pod) {
	p, ok := cgo.Handle(handle).Value().(*nativeProxy)
	if !ok || p.fn == nil || p.destroyed {
		return
	}

	var kind ParamKind
	switch paramID {
	case C.SPA_PARAM_Props:
		kind = ParamProps
	case C.SPA_PARAM_Route:
		kind = ParamRoute
	default:
		kind = ParamOther
	}

	var payload []byte
	if size := C.pod_total_size(param); size > 0 {
		payload = C.GoBytes(unsafe.Pointer(param), C.int(size))
	}
	p.fn(kind, payload)
}

func objectTypeFromString(s string) ObjectType {
	switch s {
	case interfaceNode:
		return ObjectNode
	case interfaceDevice:
		return ObjectDevice
	default:
		return ObjectOther
	}
}
