package bridge

import (
	"errors"
	"testing"

	"github.com/smazurov/audionode/pkg/pw"
)

// fakeProxy records teardown order for registry tests.
type fakeProxy struct {
	log       *[]string
	name      string
	destroyed bool
}

func (p *fakeProxy) SubscribeParams(pw.ParamFunc, ...pw.ParamKind) error { return nil }

func (p *fakeProxy) Destroy() {
	p.destroyed = true
	if p.log != nil {
		*p.log = append(*p.log, "destroy:"+p.name)
	}
}

func TestRegistryRegisterIdempotent(t *testing.T) {
	r := NewRegistry()
	first := &fakeProxy{name: "first"}
	second := &fakeProxy{name: "second"}

	r.Register(10, first)
	r.Register(10, second)

	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}

	r.Remove(10)
	if !first.destroyed {
		t.Error("first proxy should be destroyed")
	}
	if second.destroyed {
		t.Error("second proxy should have been dropped silently, not owned")
	}
}

func TestRegistryUnregisteredObject(t *testing.T) {
	r := NewRegistry()

	if err := r.AddListener(99, func() {}); !errors.Is(err, ErrUnregisteredObject) {
		t.Errorf("AddListener error = %v, want ErrUnregisteredObject", err)
	}
	if err := r.OnRemove(99, func() {}); !errors.Is(err, ErrUnregisteredObject) {
		t.Errorf("OnRemove error = %v, want ErrUnregisteredObject", err)
	}
}

func TestRegistryRemoveOrdering(t *testing.T) {
	var log []string
	r := NewRegistry()
	r.Register(5, &fakeProxy{log: &log, name: "proxy"})

	_ = r.OnRemove(5, func() { log = append(log, "callback:a") })
	_ = r.OnRemove(5, func() { log = append(log, "callback:b") })
	_ = r.AddListener(5, func() { log = append(log, "release:listener") })

	if !r.Remove(5) {
		t.Fatal("Remove returned false for tracked id")
	}

	want := []string{"callback:a", "callback:b", "release:listener", "destroy:proxy"}
	if len(log) != len(want) {
		t.Fatalf("teardown log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("teardown log = %v, want %v", log, want)
		}
	}

	if r.Remove(5) {
		t.Error("second Remove should report untracked id")
	}
}

func TestRegistryClearSkipsCallbacks(t *testing.T) {
	var log []string
	r := NewRegistry()
	r.Register(1, &fakeProxy{log: &log, name: "one"})
	r.Register(2, &fakeProxy{log: &log, name: "two"})

	_ = r.OnRemove(1, func() { log = append(log, "callback:one") })
	_ = r.OnRemove(2, func() { log = append(log, "callback:two") })
	_ = r.AddListener(1, func() { log = append(log, "release:one") })

	r.Clear()

	if r.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", r.Len())
	}
	for _, ev := range log {
		if ev == "callback:one" || ev == "callback:two" {
			t.Fatalf("Clear invoked a removal callback: %v", log)
		}
	}

	var listeners, destroys int
	for _, ev := range log {
		switch ev {
		case "release:one":
			listeners++
		case "destroy:one", "destroy:two":
			destroys++
		}
	}
	if listeners != 1 || destroys != 2 {
		t.Errorf("Clear released %d listeners and %d proxies, want 1 and 2 (log %v)", listeners, destroys, log)
	}
}
