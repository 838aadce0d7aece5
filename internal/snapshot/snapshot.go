package snapshot

import (
	"sort"

	"github.com/shirou/gopsutil/v4/process"
)

// Record describes one live process at capture time. A Record is a plain
// value and is never mutated after construction.
type Record struct {
	PID         int32  `json:"pid"`
	PPID        int32  `json:"ppid"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	MemoryBytes uint64 `json:"rss_bytes"`
}

// Snapshot is a point-in-time capture of every process visible to the
// caller. PIDs are unique within one Snapshot; ordering carries no meaning
// until SortForDisplay is applied by the consumer.
type Snapshot []Record

// Capture enumerates the host process table. Per-process query failures
// (access denied, already exited) degrade the record to an empty path and
// zero memory instead of dropping it. A failed enumeration yields an empty
// Snapshot rather than an error; the caller only sees "nothing listed".
func Capture() Snapshot {
	procs, err := process.Processes()
	if err != nil {
		return Snapshot{}
	}
	out := make(Snapshot, 0, len(procs))
	for _, p := range procs {
		rec := Record{PID: p.Pid}
		if ppid, err := p.Ppid(); err == nil {
			rec.PPID = ppid
		}
		if name, err := p.Name(); err == nil {
			rec.Name = name
		}
		// PID 0 is the idle pseudo-process; it is listed but never queried
		// for path or memory.
		if p.Pid != 0 {
			if exe, err := p.Exe(); err == nil {
				rec.Path = exe
			}
			if mi, err := p.MemoryInfo(); err == nil && mi != nil {
				rec.MemoryBytes = mi.RSS
			}
		}
		out = append(out, rec)
	}
	return out
}

// SortForDisplay orders records by resident memory descending so the
// heaviest processes come first, with name ascending as the tie-break.
func SortForDisplay(s Snapshot) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].MemoryBytes != s[j].MemoryBytes {
			return s[i].MemoryBytes > s[j].MemoryBytes
		}
		return s[i].Name < s[j].Name
	})
}
