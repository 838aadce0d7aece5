// Package engine ties the snapshot provider, tree index, filter view,
// dispatcher and formatters together behind one caller-owned value. The
// original design kept the current snapshot and filter in shell-global
// state; here every refresh produces a new View that is replaced wholesale
// and never shared or mutated.
package engine

import (
	"time"

	"github.com/procsnap/procsnap/internal/action"
	"github.com/procsnap/procsnap/internal/export"
	"github.com/procsnap/procsnap/internal/filterview"
	"github.com/procsnap/procsnap/internal/metrics"
	"github.com/procsnap/procsnap/internal/proctree"
	"github.com/procsnap/procsnap/internal/snapshot"
)

// ActionEvent describes one per-pid action outcome, enriched with the
// process name from the snapshot the action was computed against.
type ActionEvent struct {
	Action     action.Action `json:"action"`
	PID        int32         `json:"pid"`
	Name       string        `json:"name"`
	OK         bool          `json:"ok"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// EventHook receives an ActionEvent after every per-pid action attempt.
type EventHook func(ActionEvent)

// Engine owns the capture function and the dispatcher. All operations are
// synchronous and run to completion on the calling goroutine; there is no
// background refresh by design.
type Engine struct {
	capture func() snapshot.Snapshot
	disp    *action.Dispatcher
	hook    EventHook
}

// New returns an engine backed by the real process table and OS primitives.
func New() *Engine {
	return &Engine{
		capture: snapshot.Capture,
		disp:    action.NewDispatcher(nil),
	}
}

// SetCapture replaces the snapshot source. Used by tests and embedders that
// replay recorded process tables.
func (e *Engine) SetCapture(fn func() snapshot.Snapshot) {
	if fn != nil {
		e.capture = fn
	}
}

// SetPrimitive replaces the OS capability behind the dispatcher.
func (e *Engine) SetPrimitive(p action.Primitive) {
	e.disp = action.NewDispatcher(p)
}

// SetEventHook installs a hook invoked once per victim after dispatch.
func (e *Engine) SetEventHook(h EventHook) { e.hook = h }

// View is one snapshot plus everything derived from it: the display-sorted
// records, the parent/child index and the filtered rows. A View is a value;
// callers replace it with a fresh one after every mutating action.
type View struct {
	TakenAt time.Time
	Records snapshot.Snapshot
	Index   proctree.Index
	Filter  string
	Rows    snapshot.Snapshot
}

// Refresh captures a fresh snapshot, applies the display sort and derives
// the filtered rows and tree index.
func (e *Engine) Refresh(filterText string) View {
	start := time.Now()
	recs := e.capture()
	snapshot.SortForDisplay(recs)
	metrics.ObserveCapture(len(recs), time.Since(start).Seconds())
	return View{
		TakenAt: start,
		Records: recs,
		Index:   proctree.Build(recs),
		Filter:  filterText,
		Rows:    filterview.Apply(recs, filterText),
	}
}

// WithFilter derives a new View over the same snapshot with different
// filter text. The underlying records are immutable and safely shared.
func (v View) WithFilter(text string) View {
	v.Filter = text
	v.Rows = filterview.Apply(v.Records, text)
	return v
}

// Victims expands the user's selection against this view's tree index:
// full descendant closures when subtree is set, the raw selection
// otherwise, deduplicated and ordered deepest-first.
func (v View) Victims(seeds []int32, subtree bool) []int32 {
	return v.Index.Victims(seeds, subtree)
}

// ExportJSON renders the filtered rows in the structured export format.
func (v View) ExportJSON() string {
	metrics.IncExport("json")
	return export.JSON(v.Rows)
}

// ExportCSV renders the filtered rows in the tabular export format.
func (v View) ExportCSV() string {
	metrics.IncExport("csv")
	return export.CSV(v.Rows)
}

// Apply dispatches a over victims, in the order given. The caller triggers
// a fresh Refresh afterwards; the engine never re-snapshots on its own.
func (e *Engine) Apply(a action.Action, victims []int32) (action.Result, error) {
	return e.disp.Apply(a, victims, func(act action.Action, pid int32, ok bool) {
		metrics.IncAction(string(act), ok)
	})
}

// ApplySelection expands seeds against v and dispatches in one step,
// feeding the event hook with names resolved from the view's snapshot.
func (e *Engine) ApplySelection(v View, a action.Action, seeds []int32, subtree bool) (action.Result, error) {
	victims := v.Victims(seeds, subtree)
	names := make(map[int32]string, len(v.Records))
	for _, r := range v.Records {
		names[r.PID] = r.Name
	}
	return e.disp.Apply(a, victims, func(act action.Action, pid int32, ok bool) {
		metrics.IncAction(string(act), ok)
		if e.hook != nil {
			e.hook(ActionEvent{
				Action:     act,
				PID:        pid,
				Name:       names[pid],
				OK:         ok,
				OccurredAt: time.Now(),
			})
		}
	})
}
