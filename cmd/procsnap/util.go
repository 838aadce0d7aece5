package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/procsnap/procsnap"
)

// humanSize renders a byte count with a binary-unit suffix, one decimal
// place above KB.
func humanSize(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

func printJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	_, _ = fmt.Fprintln(w, string(b))
}

func printTable(w io.Writer, rows procsnap.Snapshot) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PID\tPPID\tMEMORY\tNAME\tPATH")
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", r.PID, r.PPID, humanSize(r.MemoryBytes), r.Name, r.Path)
	}
	_ = tw.Flush()
}

// emit writes rendered export text to a file (with BOM) when path is set,
// or to w otherwise.
func emit(w io.Writer, path, text string) error {
	if path != "" {
		return procsnap.WriteExportFile(path, text)
	}
	_, err := io.WriteString(w, text)
	return err
}
