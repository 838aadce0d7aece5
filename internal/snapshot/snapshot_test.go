package snapshot

import (
	"os"
	"testing"
)

func TestCaptureListsSelf(t *testing.T) {
	s := Capture()
	if len(s) == 0 {
		t.Skip("process enumeration unavailable in this environment")
	}
	self := int32(os.Getpid())
	found := false
	seen := make(map[int32]bool, len(s))
	for _, r := range s {
		if seen[r.PID] {
			t.Fatalf("duplicate pid %d in snapshot", r.PID)
		}
		seen[r.PID] = true
		if r.PID == self {
			found = true
			if r.Name == "" {
				t.Errorf("own process has empty name")
			}
		}
	}
	if !found {
		t.Fatalf("snapshot does not contain own pid %d", self)
	}
}

func TestSortForDisplay(t *testing.T) {
	s := Snapshot{
		{PID: 1, Name: "b", MemoryBytes: 100},
		{PID: 2, Name: "a", MemoryBytes: 100},
		{PID: 3, Name: "z", MemoryBytes: 5000},
		{PID: 4, Name: "c", MemoryBytes: 0},
	}
	SortForDisplay(s)
	wantPIDs := []int32{3, 2, 1, 4}
	for i, want := range wantPIDs {
		if s[i].PID != want {
			t.Fatalf("position %d: got pid %d, want %d", i, s[i].PID, want)
		}
	}
}
