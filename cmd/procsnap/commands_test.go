package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/procsnap/procsnap"
	"github.com/procsnap/procsnap/internal/snapshot"
)

type fakePrimitive struct {
	terminated []int32
	suspended  []int32
	fail       map[int32]bool
}

func (p *fakePrimitive) Terminate(pid int32) error {
	if p.fail[pid] {
		return fmt.Errorf("pid %d: access denied", pid)
	}
	p.terminated = append(p.terminated, pid)
	return nil
}

func (p *fakePrimitive) Suspend(pid int32) error {
	p.suspended = append(p.suspended, pid)
	return nil
}

func (p *fakePrimitive) Resume(pid int32) error { return nil }

func testCommand(t *testing.T, prim *fakePrimitive) (command, *bytes.Buffer) {
	t.Helper()
	eng := procsnap.New()
	eng.SetCapture(func() snapshot.Snapshot {
		return snapshot.Snapshot{
			{PID: 100, PPID: 1, Name: "svc.exe", Path: `C:\svc.exe`, MemoryBytes: 10},
			{PID: 200, PPID: 100, Name: "worker", Path: "/opt/worker", MemoryBytes: 300},
			{PID: 300, PPID: 200, Name: "helper", Path: "/opt/helper", MemoryBytes: 20},
		}
	})
	if prim != nil {
		eng.SetPrimitive(prim)
	}
	var buf bytes.Buffer
	return command{eng: eng, out: &buf}, &buf
}

func TestListTableFiltered(t *testing.T) {
	c, buf := testCommand(t, nil)
	if err := c.List(ListFlags{Filter: "WORKER", Format: "table"}); err != nil {
		t.Fatalf("List: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "worker") {
		t.Fatalf("filtered row missing: %q", out)
	}
	if strings.Contains(out, "helper") {
		t.Fatalf("unfiltered row leaked: %q", out)
	}
}

func TestListJSONEscapesBackslash(t *testing.T) {
	c, buf := testCommand(t, nil)
	if err := c.List(ListFlags{Filter: "svc", Format: "json"}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if !strings.Contains(buf.String(), `"path":"C:\\svc.exe"`) {
		t.Fatalf("backslash not escaped: %q", buf.String())
	}
}

func TestListRejectsUnknownFormat(t *testing.T) {
	c, _ := testCommand(t, nil)
	if err := c.List(ListFlags{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestTreeListsDescendantsNearestFirst(t *testing.T) {
	c, buf := testCommand(t, nil)
	if err := c.Tree(TreeFlags{PID: 100}); err != nil {
		t.Fatalf("Tree: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "200") || !strings.Contains(out, "300") {
		t.Fatalf("descendants missing: %q", out)
	}
	if strings.Index(out, "200") > strings.Index(out, "300") {
		t.Fatalf("descendants out of order: %q", out)
	}
}

func TestTreeRejectsNonPositivePID(t *testing.T) {
	c, _ := testCommand(t, nil)
	if err := c.Tree(TreeFlags{PID: 0}); err == nil {
		t.Fatal("expected error for pid 0")
	}
}

func TestDoKillTreeTallies(t *testing.T) {
	prim := &fakePrimitive{fail: map[int32]bool{300: true}}
	c, buf := testCommand(t, prim)
	if err := c.Do(procsnap.ActionTerminate, ActionFlags{PIDs: []int32{100}, Tree: true}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got, want := buf.String(), "terminate: 2 succeeded, 1 failed\n3 processes visible\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
	// Children go before parents.
	if len(prim.terminated) != 2 || prim.terminated[0] != 200 || prim.terminated[1] != 100 {
		t.Fatalf("terminated = %v", prim.terminated)
	}
}

func TestDoRequiresPIDs(t *testing.T) {
	c, _ := testCommand(t, &fakePrimitive{})
	if err := c.Do(procsnap.ActionTerminate, ActionFlags{}); err == nil {
		t.Fatal("expected error for empty pid list")
	}
}

func TestDoSuspendWithoutTree(t *testing.T) {
	prim := &fakePrimitive{}
	c, buf := testCommand(t, prim)
	if err := c.Do(procsnap.ActionSuspend, ActionFlags{PIDs: []int32{200}}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(prim.suspended) != 1 || prim.suspended[0] != 200 {
		t.Fatalf("suspended = %v", prim.suspended)
	}
	if !strings.Contains(buf.String(), "suspend: 1 succeeded, 0 failed") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestExportCSVToFile(t *testing.T) {
	c, _ := testCommand(t, nil)
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := c.Export(ExportFlags{Format: "csv", Filter: "helper", Output: path}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if b[0] != 0xEF || b[1] != 0xBB || b[2] != 0xBF {
		t.Fatalf("missing BOM: % x", b[:3])
	}
	body := string(b[3:])
	want := "PID,PPID,RSS_BYTES,Name,Path\n300,200,20,\"helper\",\"/opt/helper\"\n"
	if body != want {
		t.Fatalf("body = %q, want %q", body, want)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	c, _ := testCommand(t, nil)
	if err := c.Export(ExportFlags{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
