package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/procsnap/procsnap/internal/action"
	"github.com/procsnap/procsnap/internal/engine"
	"github.com/procsnap/procsnap/internal/snapshot"
)

// Router provides embeddable HTTP handlers over the snapshot engine.
// Endpoints:
//
//	GET  {basePath}/processes            query: filter=... (optional)
//	GET  {basePath}/processes/:pid/tree  descendant closure for one pid
//	POST {basePath}/actions              body: {"action","pids","tree"}
//	GET  {basePath}/export               query: format=json|csv, filter=...
//	GET  {basePath}/healthz
//
// Every request works against a fresh snapshot; the server holds no process
// state between requests.
type Router struct {
	eng      *engine.Engine
	basePath string
}

// NewRouter constructs a Router with a configurable basePath.
// Example basePath: "/api" results in /api/processes, /api/actions, ...
func NewRouter(eng *engine.Engine, basePath string) *Router {
	return &Router{eng: eng, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in any
// server or mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.GET("/processes", r.handleProcesses)
	group.GET("/processes/:pid/tree", r.handleTree)
	group.POST("/actions", r.handleActions)
	group.GET("/export", r.handleExport)
	group.GET("/healthz", r.handleHealthz)
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
func NewServer(addr, basePath string, eng *engine.Engine) (*http.Server, error) {
	r := NewRouter(eng, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server, nil
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

type processesResp struct {
	TakenAt   time.Time         `json:"taken_at"`
	Count     int               `json:"count"`
	Processes snapshot.Snapshot `json:"processes"`
}

func (r *Router) handleProcesses(c *gin.Context) {
	v := r.eng.Refresh(c.Query("filter"))
	writeJSON(c, http.StatusOK, processesResp{
		TakenAt:   v.TakenAt,
		Count:     len(v.Rows),
		Processes: v.Rows,
	})
}

type treeResp struct {
	PID         int32   `json:"pid"`
	Descendants []int32 `json:"descendants"`
}

func (r *Router) handleTree(c *gin.Context) {
	pid64, err := strconv.ParseInt(c.Param("pid"), 10, 32)
	if err != nil || pid64 < 0 {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid pid"})
		return
	}
	pid := int32(pid64)
	v := r.eng.Refresh("")
	closure := v.Index.Collect(pid)
	// Everything after the leading self entry is a descendant.
	writeJSON(c, http.StatusOK, treeResp{PID: pid, Descendants: closure[1:]})
}

type actionReq struct {
	Action string  `json:"action"`
	PIDs   []int32 `json:"pids"`
	Tree   bool    `json:"tree"`
}

func (r *Router) handleActions(c *gin.Context) {
	var req actionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if len(req.PIDs) == 0 {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "pids required"})
		return
	}
	v := r.eng.Refresh("")
	res, err := r.eng.ApplySelection(v, action.Action(req.Action), req.PIDs, req.Tree)
	if err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, res)
}

func (r *Router) handleExport(c *gin.Context) {
	v := r.eng.Refresh(c.Query("filter"))
	switch c.DefaultQuery("format", "json") {
	case "json":
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(v.ExportJSON()))
	case "csv":
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(v.ExportCSV()))
	default:
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "format must be json or csv"})
	}
}

type okResp struct {
	OK bool `json:"ok"`
}

func (r *Router) handleHealthz(c *gin.Context) {
	writeJSON(c, http.StatusOK, okResp{OK: true})
}
