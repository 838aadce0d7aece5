package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/procsnap/procsnap"
	"github.com/procsnap/procsnap/internal/logger"
	"github.com/spf13/cobra"
)

func main() {
	eng := procsnap.New()
	root := buildRoot(eng)
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildRoot wires all subcommands against one engine.
func buildRoot(eng *procsnap.Engine) *cobra.Command {
	listFlags := &ListFlags{}
	treeFlags := &TreeFlags{}
	killFlags := &ActionFlags{}
	suspendFlags := &ActionFlags{}
	resumeFlags := &ActionFlags{}
	exportFlags := &ExportFlags{}
	serveFlags := &ServeFlags{}

	cmd := command{eng: eng, out: os.Stdout}

	root := createRootCommand()
	root.AddCommand(
		createListCommand(cmd, listFlags),
		createTreeCommand(cmd, treeFlags),
		createActionCommand(cmd, procsnap.ActionTerminate, "kill", "Terminate processes", killFlags),
		createActionCommand(cmd, procsnap.ActionSuspend, "suspend", "Suspend processes", suspendFlags),
		createActionCommand(cmd, procsnap.ActionResume, "resume", "Resume suspended processes", resumeFlags),
		createExportCommand(cmd, exportFlags),
		createServeCommand(serveFlags),
	)
	return root
}

func createRootCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "procsnap",
		Short: "Process snapshot and bulk action tool",
		Long: `Procsnap captures a snapshot of the host process table, indexes it by
parent, and applies bulk terminate/suspend/resume actions with optional
descendant expansion. Views can be exported as JSON or CSV.

Examples:
  procsnap list --filter=chrome
  procsnap tree --pid=1234
  procsnap kill --pid=1234 --tree
  procsnap export --format=csv --output=procs.csv
  procsnap serve --config=config.toml   # Start daemon
  procsnap list --api-url=http://remote:8080/api`,
	}
}

func createListCommand(c command, f *ListFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List processes sorted by memory",
		Long: `List the current process table, largest resident memory first.
The filter matches case-insensitively against name and path.

Examples:
  procsnap list
  procsnap list --filter=chrome --format=json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.List(*f)
		},
	}
	cmd.Flags().StringVar(&f.Filter, "filter", "", "case-insensitive name/path substring")
	cmd.Flags().StringVar(&f.Format, "format", "table", "output format: table, json or csv")
	cmd.Flags().StringVar(&f.Output, "output", "", "write json/csv output to file instead of stdout")
	addRemoteFlags(cmd, &f.APIUrl, &f.APITimeout)
	return cmd
}

func createTreeCommand(c command, f *TreeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show descendants of a process",
		Long: `Show the full descendant closure of one process, nearest first.

Examples:
  procsnap tree --pid=1234`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Tree(*f)
		},
	}
	cmd.Flags().Int32Var(&f.PID, "pid", 0, "root pid (required)")
	addRemoteFlags(cmd, &f.APIUrl, &f.APITimeout)
	if err := cmd.MarkFlagRequired("pid"); err != nil {
		panic(err)
	}
	return cmd
}

func createActionCommand(c command, a procsnap.Action, use, short string, f *ActionFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: fmt.Sprintf(`%s by pid, best effort. With --tree the action also covers every
descendant, children before parents. Per-pid failures are tallied in the
output, they do not abort the rest of the batch.

Examples:
  procsnap %s --pid=1234
  procsnap %s --pid=1234 --pid=5678 --tree`, short, use, use),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Do(a, *f)
		},
	}
	cmd.Flags().Int32SliceVar(&f.PIDs, "pid", nil, "target pid, repeatable (required)")
	cmd.Flags().BoolVar(&f.Tree, "tree", false, "include all descendants")
	addRemoteFlags(cmd, &f.APIUrl, &f.APITimeout)
	if err := cmd.MarkFlagRequired("pid"); err != nil {
		panic(err)
	}
	return cmd
}

func createExportCommand(c command, f *ExportFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the process view as JSON or CSV",
		Long: `Render the filtered process view in a stable export format. Files are
written with a UTF-8 byte order mark.

Examples:
  procsnap export --format=json
  procsnap export --format=csv --filter=chrome --output=procs.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Export(*f)
		},
	}
	cmd.Flags().StringVar(&f.Format, "format", "json", "export format: json or csv")
	cmd.Flags().StringVar(&f.Filter, "filter", "", "case-insensitive name/path substring")
	cmd.Flags().StringVar(&f.Output, "output", "", "write to file instead of stdout")
	addRemoteFlags(cmd, &f.APIUrl, &f.APITimeout)
	return cmd
}

func createServeCommand(f *ServeFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [config.toml]",
		Short: "Start the procsnap daemon",
		Long: `Start the procsnap daemon exposing the snapshot and action API over
HTTP. All configuration is loaded from a TOML file.

Examples:
  procsnap serve --config=config.toml
  procsnap serve config.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeCommand(f, args)
		},
	}
	cmd.Flags().StringVar(&f.ConfigPath, "config", "", "path to TOML config file")
	return cmd
}

func addRemoteFlags(cmd *cobra.Command, url *string, timeout *time.Duration) {
	cmd.Flags().StringVar(url, "api-url", "", "remote daemon URL (e.g. http://host:8080/api)")
	cmd.Flags().DurationVar(timeout, "api-timeout", 10*time.Second, "request timeout")
}

func runServeCommand(flags *ServeFlags, args []string) error {
	configPath := flags.ConfigPath
	if len(args) > 0 {
		configPath = args[0]
	}
	if configPath == "" {
		return fmt.Errorf("config file required for serve command. Use --config=config.toml or provide as argument")
	}

	cfg, err := procsnap.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logCfg := logger.Config{}
	if cfg.Log != nil {
		logCfg = logger.Config{
			Level:      cfg.Log.Level,
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		}
	}
	slog.SetDefault(logger.New(logCfg))

	eng := procsnap.New()

	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		if err := procsnap.RegisterMetricsDefault(); err != nil {
			slog.Warn("failed to register metrics", "error", err)
		}
		if cfg.Metrics.Listen != "" {
			go func() {
				if err := procsnap.ServeMetrics(cfg.Metrics.Listen); err != nil {
					slog.Error("metrics server error", "error", err)
				}
			}()
		}
	}

	var sink procsnap.AuditSink
	if cfg.Audit != nil && cfg.Audit.DSN != "" {
		sink, err = procsnap.NewAuditSink(cfg.Audit.DSN)
		if err != nil {
			return fmt.Errorf("failed to open audit sink: %w", err)
		}
		eng.SetEventHook(func(ev procsnap.ActionEvent) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			e := procsnap.AuditEvent{
				Action:     string(ev.Action),
				PID:        ev.PID,
				Name:       ev.Name,
				OK:         ev.OK,
				OccurredAt: ev.OccurredAt,
			}
			if err := sink.Send(ctx, e); err != nil {
				slog.Warn("audit sink write failed", "action", ev.Action, "pid", ev.PID, "error", err)
			}
		})
	}

	server, err := procsnap.NewHTTPServer(cfg.Server.Listen, cfg.Server.BasePath, eng)
	if err != nil {
		return fmt.Errorf("failed to create HTTP server: %w", err)
	}
	slog.Info("procsnap daemon listening", "addr", cfg.Server.Listen, "base_path", cfg.Server.BasePath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	if sink != nil {
		_ = sink.Close()
	}
	return server.Close()
}
