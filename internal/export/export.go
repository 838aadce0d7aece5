// Package export serializes filtered process views to structured text.
// Both formats are stable contracts consumed by external tooling, so they
// are assembled by hand instead of going through encoding/json, whose key
// ordering and escaping rules do not match.
package export

import (
	"fmt"
	"strings"

	"github.com/procsnap/procsnap/internal/snapshot"
)

// JSON renders records as a single container object with one entry per
// process, followed by a trailing newline:
//
//	{"processes":[{"pid":1,"ppid":0,"name":"x","path":"","rss_bytes":0}]}
func JSON(records snapshot.Snapshot) string {
	var b strings.Builder
	b.WriteString(`{"processes":[`)
	for i, r := range records {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `{"pid":%d,"ppid":%d,"name":"%s","path":"%s","rss_bytes":%d}`,
			r.PID, r.PPID, escapeJSON(r.Name), escapeJSON(r.Path), r.MemoryBytes)
	}
	b.WriteString("]}\n")
	return b.String()
}

// CSV renders records under a fixed header. Name and Path are always
// quoted, with embedded quotes doubled.
func CSV(records snapshot.Snapshot) string {
	var b strings.Builder
	b.WriteString("PID,PPID,RSS_BYTES,Name,Path\n")
	for _, r := range records {
		fmt.Fprintf(&b, "%d,%d,%d,%s,%s\n",
			r.PID, r.PPID, r.MemoryBytes, quoteCSV(r.Name), quoteCSV(r.Path))
	}
	return b.String()
}

func escapeJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, c)
			} else {
				b.WriteRune(c)
			}
		}
	}
	return b.String()
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
