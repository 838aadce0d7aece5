package procsnap

import (
	"net/http"
	"time"

	"github.com/procsnap/procsnap/internal/action"
	"github.com/procsnap/procsnap/internal/audit"
	"github.com/procsnap/procsnap/internal/audit/factory"
	cfg "github.com/procsnap/procsnap/internal/config"
	"github.com/procsnap/procsnap/internal/engine"
	"github.com/procsnap/procsnap/internal/export"
	"github.com/procsnap/procsnap/internal/metrics"
	iapi "github.com/procsnap/procsnap/internal/server"
	"github.com/procsnap/procsnap/internal/snapshot"
	"github.com/prometheus/client_golang/prometheus"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Record = snapshot.Record

type Snapshot = snapshot.Snapshot

type Action = action.Action

type Result = action.Result

type View = engine.View

type ActionEvent = engine.ActionEvent

type AuditEvent = audit.Event

type AuditSink = audit.Sink

const (
	ActionTerminate = action.Terminate
	ActionSuspend   = action.Suspend
	ActionResume    = action.Resume
)

// Engine is the embeddable entry point: snapshot capture, tree expansion,
// bulk actions and export rendering behind one value.
type Engine = engine.Engine

func New() *Engine { return engine.New() }

// Capture takes one raw snapshot of the host process table.
func Capture() Snapshot { return snapshot.Capture() }

// ExportJSON renders records in the structured export format.
func ExportJSON(records Snapshot) string { return export.JSON(records) }

// ExportCSV renders records in the tabular export format.
func ExportCSV(records Snapshot) string { return export.CSV(records) }

// WriteExportFile writes rendered export text to path with a UTF-8 BOM.
func WriteExportFile(path, text string) error { return export.WriteFile(path, text) }

func LoadConfig(path string) (*cfg.Config, error) {
	return cfg.Load(path)
}

// NewAuditSink builds an audit sink from a DSN (sqlite path, postgres:// or
// clickhouse:// URL).
func NewAuditSink(dsn string) (AuditSink, error) {
	return factory.NewSinkFromDSN(dsn)
}

// NewHTTPServer starts an HTTP server exposing the daemon API backed by eng.
func NewHTTPServer(addr, basePath string, eng *Engine) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, eng)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts an HTTP server on addr exposing /metrics using the
// default registry. It returns any immediate listen error; otherwise it runs
// the server in the caller goroutine.
func ServeMetrics(addr string) error {
	http.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           nil,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
