// Package action applies bulk lifecycle actions to victim pid lists.
// Dispatch is a best-effort fold: a failing pid is tallied and the batch
// continues, because bulk robustness is the point of the operation.
package action

import (
	"errors"
	"fmt"
)

// Action identifies a lifecycle operation on a process.
type Action string

const (
	Terminate Action = "terminate"
	Suspend   Action = "suspend"
	Resume    Action = "resume"
)

// ErrNoVictims is returned when dispatch is requested with an empty victim
// list. It is a user-input error raised before any OS call and does not
// count toward failure tallies.
var ErrNoVictims = errors.New("no processes selected")

// Primitive is the capability boundary to the OS. The unix implementation
// is always available; on Windows the suspend/resume entry points are
// resolved from ntdll at startup and an unresolved primitive fails every
// call immediately without attempting the OS.
type Primitive interface {
	Terminate(pid int32) error
	Suspend(pid int32) error
	Resume(pid int32) error
}

// Result aggregates the outcome of one dispatch pass. No per-pid detail is
// kept; the calling shell only needs a summary.
type Result struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Observer is invoked once per victim with the outcome. Used to feed
// metrics and the audit trail; may be nil.
type Observer func(a Action, pid int32, ok bool)

// Dispatcher applies actions through a Primitive.
type Dispatcher struct {
	prim Primitive
}

// NewDispatcher returns a dispatcher backed by prim, or by the host
// primitive when prim is nil.
func NewDispatcher(prim Primitive) *Dispatcher {
	if prim == nil {
		prim = HostPrimitive()
	}
	return &Dispatcher{prim: prim}
}

// Apply runs a over every victim in order, tallying per-pid success and
// failure. Victims must already be ordered deepest-first by the caller; the
// dispatcher never reorders or aborts mid-batch.
func (d *Dispatcher) Apply(a Action, victims []int32, obs Observer) (Result, error) {
	if len(victims) == 0 {
		return Result{}, ErrNoVictims
	}
	var op func(pid int32) error
	switch a {
	case Terminate:
		op = d.prim.Terminate
	case Suspend:
		op = d.prim.Suspend
	case Resume:
		op = d.prim.Resume
	default:
		return Result{}, fmt.Errorf("unknown action %q", a)
	}
	var res Result
	for _, pid := range victims {
		err := op(pid)
		if err != nil {
			res.Failed++
		} else {
			res.Succeeded++
		}
		if obs != nil {
			obs(a, pid, err == nil)
		}
	}
	return res, nil
}
