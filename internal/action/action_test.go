package action

import (
	"errors"
	"testing"
)

// fakePrimitive records every call and fails the pids listed in failPIDs.
type fakePrimitive struct {
	calls    []int32
	failPIDs map[int32]bool
}

func (f *fakePrimitive) do(pid int32) error {
	f.calls = append(f.calls, pid)
	if f.failPIDs[pid] {
		return errors.New("access denied")
	}
	return nil
}

func (f *fakePrimitive) Terminate(pid int32) error { return f.do(pid) }
func (f *fakePrimitive) Suspend(pid int32) error   { return f.do(pid) }
func (f *fakePrimitive) Resume(pid int32) error    { return f.do(pid) }

func TestApplyPartialFailureContinues(t *testing.T) {
	prim := &fakePrimitive{failPIDs: map[int32]bool{200: true}}
	d := NewDispatcher(prim)
	res, err := d.Apply(Terminate, []int32{300, 200, 100}, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Succeeded != 2 || res.Failed != 1 {
		t.Fatalf("got %+v, want 2 ok / 1 fail", res)
	}
	if len(prim.calls) != 3 {
		t.Fatalf("failure aborted the batch: calls %v", prim.calls)
	}
}

func TestApplyPreservesOrder(t *testing.T) {
	prim := &fakePrimitive{}
	d := NewDispatcher(prim)
	victims := []int32{300, 200, 100}
	if _, err := d.Apply(Suspend, victims, nil); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i, pid := range victims {
		if prim.calls[i] != pid {
			t.Fatalf("call order %v, want %v", prim.calls, victims)
		}
	}
}

func TestApplyEmptyVictims(t *testing.T) {
	d := NewDispatcher(&fakePrimitive{})
	_, err := d.Apply(Terminate, nil, nil)
	if !errors.Is(err, ErrNoVictims) {
		t.Fatalf("got %v, want ErrNoVictims", err)
	}
}

func TestApplyUnknownAction(t *testing.T) {
	prim := &fakePrimitive{}
	d := NewDispatcher(prim)
	if _, err := d.Apply(Action("reboot"), []int32{1}, nil); err == nil {
		t.Fatal("expected error for unknown action")
	}
	if len(prim.calls) != 0 {
		t.Fatalf("unknown action reached the OS: %v", prim.calls)
	}
}

func TestApplyObserver(t *testing.T) {
	prim := &fakePrimitive{failPIDs: map[int32]bool{7: true}}
	d := NewDispatcher(prim)
	type event struct {
		pid int32
		ok  bool
	}
	var events []event
	_, err := d.Apply(Resume, []int32{7, 8}, func(a Action, pid int32, ok bool) {
		if a != Resume {
			t.Errorf("observer action = %q", a)
		}
		events = append(events, event{pid, ok})
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(events) != 2 || events[0] != (event{7, false}) || events[1] != (event{8, true}) {
		t.Fatalf("events %v", events)
	}
}

// unavailablePrimitive mimics a host where the suspend/resume entry points
// could not be resolved: every call fails immediately.
type unavailablePrimitive struct{ err error }

func (u unavailablePrimitive) Terminate(int32) error { return u.err }
func (u unavailablePrimitive) Suspend(int32) error   { return u.err }
func (u unavailablePrimitive) Resume(int32) error    { return u.err }

func TestApplyUnavailablePrimitive(t *testing.T) {
	d := NewDispatcher(unavailablePrimitive{err: errors.New("not resolved")})
	res, err := d.Apply(Suspend, []int32{1, 2, 3}, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Failed != 3 || res.Succeeded != 0 {
		t.Fatalf("got %+v, want all failed", res)
	}
}
