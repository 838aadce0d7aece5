package main

import (
	"context"
	"fmt"
	"io"

	"github.com/procsnap/procsnap"
	"github.com/procsnap/procsnap/pkg/client"
)

// command binds subcommand handlers to an engine and an output stream so
// tests can capture what the CLI prints.
type command struct {
	eng *procsnap.Engine
	out io.Writer
}

// List prints the current process view filtered by name or path.
func (c *command) List(f ListFlags) error {
	var rows procsnap.Snapshot
	if f.APIUrl != "" {
		cl := client.New(client.Config{BaseURL: f.APIUrl, Timeout: f.APITimeout})
		list, err := cl.Processes(context.Background(), f.Filter)
		if err != nil {
			return err
		}
		rows = list.Processes
	} else {
		rows = c.eng.Refresh(f.Filter).Rows
	}

	switch f.Format {
	case "", "table":
		printTable(c.out, rows)
		return nil
	case "json":
		return emit(c.out, f.Output, procsnap.ExportJSON(rows))
	case "csv":
		return emit(c.out, f.Output, procsnap.ExportCSV(rows))
	default:
		return fmt.Errorf("unsupported format %q (table, json, csv)", f.Format)
	}
}

// Tree prints the descendant pids of one process, nearest first.
func (c *command) Tree(f TreeFlags) error {
	if f.PID <= 0 {
		return fmt.Errorf("pid must be positive")
	}
	var descendants []int32
	if f.APIUrl != "" {
		cl := client.New(client.Config{BaseURL: f.APIUrl, Timeout: f.APITimeout})
		d, err := cl.Tree(context.Background(), f.PID)
		if err != nil {
			return err
		}
		descendants = d
	} else {
		v := c.eng.Refresh("")
		closure := v.Index.Collect(f.PID)
		descendants = closure[1:]
	}
	printJSON(c.out, struct {
		PID         int32   `json:"pid"`
		Descendants []int32 `json:"descendants"`
	}{f.PID, descendants})
	return nil
}

// Do dispatches a bulk action on the selected pids and prints the tallies.
// Per-pid failures are reported in the counts, not as a command error.
func (c *command) Do(a procsnap.Action, f ActionFlags) error {
	if len(f.PIDs) == 0 {
		return fmt.Errorf("at least one --pid is required")
	}
	var res procsnap.Result
	var err error
	if f.APIUrl != "" {
		cl := client.New(client.Config{BaseURL: f.APIUrl, Timeout: f.APITimeout})
		res, err = cl.Apply(context.Background(), client.ActionRequest{
			Action: string(a),
			PIDs:   f.PIDs,
			Tree:   f.Tree,
		})
	} else {
		v := c.eng.Refresh("")
		res, err = c.eng.ApplySelection(v, a, f.PIDs, f.Tree)
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.out, "%s: %d succeeded, %d failed\n", a, res.Succeeded, res.Failed)

	// Re-capture so the summary reflects the table after the action.
	if f.APIUrl != "" {
		cl := client.New(client.Config{BaseURL: f.APIUrl, Timeout: f.APITimeout})
		list, err := cl.Processes(context.Background(), "")
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(c.out, "%d processes visible\n", list.Count)
	} else {
		after := c.eng.Refresh("")
		_, _ = fmt.Fprintf(c.out, "%d processes visible\n", len(after.Rows))
	}
	return nil
}

// Export renders the filtered view as json or csv, to stdout or a file.
func (c *command) Export(f ExportFlags) error {
	if f.Format != "json" && f.Format != "csv" {
		return fmt.Errorf("unsupported format %q (json, csv)", f.Format)
	}
	var text string
	if f.APIUrl != "" {
		cl := client.New(client.Config{BaseURL: f.APIUrl, Timeout: f.APITimeout})
		t, err := cl.Export(context.Background(), f.Format, f.Filter)
		if err != nil {
			return err
		}
		text = t
	} else {
		v := c.eng.Refresh(f.Filter)
		if f.Format == "json" {
			text = v.ExportJSON()
		} else {
			text = v.ExportCSV()
		}
	}
	return emit(c.out, f.Output, text)
}
