// Package filterview derives the displayed subsequence of a snapshot from
// the active filter text. Views are always recomputed from scratch; process
// counts are small enough that incremental diffing would buy nothing.
package filterview

import (
	"strings"

	"github.com/procsnap/procsnap/internal/snapshot"
)

// Apply returns the records whose name or path contains text, matched
// case-insensitively. Empty text matches everything. The relative order of
// the input is preserved and the input itself is never modified.
func Apply(records snapshot.Snapshot, text string) snapshot.Snapshot {
	if text == "" {
		out := make(snapshot.Snapshot, len(records))
		copy(out, records)
		return out
	}
	needle := strings.ToLower(text)
	out := make(snapshot.Snapshot, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), needle) ||
			strings.Contains(strings.ToLower(r.Path), needle) {
			out = append(out, r)
		}
	}
	return out
}
