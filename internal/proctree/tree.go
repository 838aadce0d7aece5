// Package proctree builds the parent/child index for one snapshot and
// computes descendant closures and action ordering over it.
package proctree

import (
	"sort"

	"github.com/procsnap/procsnap/internal/snapshot"
)

// maxDepth bounds tree walks. The OS guarantees the process hierarchy is a
// forest, but malformed test input (or a pid that is its own parent, as some
// kernels report for pid 0) must not hang a traversal.
const maxDepth = 512

// Index maps each parent pid to its children for a single snapshot. It is
// rebuilt fresh on every action request and never mutated incrementally.
type Index struct {
	children map[int32][]int32
	parent   map[int32]int32
}

// Build groups every record's pid under its parent pid. Parent links that
// point outside the snapshot (the parent already exited, or the pid was
// reused) are preserved verbatim; looking them up simply yields no children.
func Build(records snapshot.Snapshot) Index {
	idx := Index{
		children: make(map[int32][]int32, len(records)),
		parent:   make(map[int32]int32, len(records)),
	}
	for _, r := range records {
		idx.children[r.PPID] = append(idx.children[r.PPID], r.PID)
		idx.parent[r.PID] = r.PPID
	}
	return idx
}

// Children returns the direct children of pid. Unknown pids yield nil.
func (idx Index) Children(pid int32) []int32 {
	return idx.children[pid]
}

// Collect returns pid followed by its full descendant closure in pre-order:
// self first, then each child's subtree. The walk is an explicit stack with
// a depth bound; a leaf yields just {pid}.
func (idx Index) Collect(pid int32) []int32 {
	type frame struct {
		pid   int32
		depth int
	}
	out := make([]int32, 0, 8)
	stack := []frame{{pid: pid, depth: 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, f.pid)
		if f.depth >= maxDepth {
			continue
		}
		kids := idx.children[f.pid]
		// Push in reverse so children pop in their natural order.
		for i := len(kids) - 1; i >= 0; i-- {
			if kids[i] == f.pid {
				continue
			}
			stack = append(stack, frame{pid: kids[i], depth: f.depth + 1})
		}
	}
	return out
}

// Depth returns the distance of pid from its forest root, following parent
// links until one points outside the snapshot. The walk is bounded so a
// self-parenting record cannot loop.
func (idx Index) Depth(pid int32) int {
	depth := 0
	cur := pid
	for depth < maxDepth {
		parent, ok := idx.parent[cur]
		if !ok || parent == cur {
			return depth
		}
		if _, present := idx.parent[parent]; !present {
			return depth
		}
		cur = parent
		depth++
	}
	return depth
}

// Victims assembles the ordered, deduplicated set of pids to act on. With
// subtree enabled each seed contributes its full closure; otherwise the
// seeds are taken as-is. The result is sorted deepest-first so every
// descendant is acted on before any of its ancestors; terminating a parent
// can invalidate children, the reverse never can.
func (idx Index) Victims(seeds []int32, subtree bool) []int32 {
	seen := make(map[int32]struct{})
	out := make([]int32, 0, len(seeds))
	add := func(pid int32) {
		if _, dup := seen[pid]; dup {
			return
		}
		seen[pid] = struct{}{}
		out = append(out, pid)
	}
	for _, s := range seeds {
		if subtree {
			for _, pid := range idx.Collect(s) {
				add(pid)
			}
		} else {
			add(s)
		}
	}
	depths := make(map[int32]int, len(out))
	for _, pid := range out {
		depths[pid] = idx.Depth(pid)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return depths[out[i]] > depths[out[j]]
	})
	return out
}
