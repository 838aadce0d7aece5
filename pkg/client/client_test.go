package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProcessesAndTree(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/processes":
			if got := r.URL.Query().Get("filter"); got != "chrome" {
				t.Errorf("filter query = %q, want chrome", got)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"taken_at": time.Now().UTC(),
				"count":    1,
				"processes": []map[string]any{
					{"pid": 100, "ppid": 1, "name": "chrome", "path": "/usr/bin/chrome", "rss_bytes": 4096},
				},
			})
		case "/api/processes/100/tree":
			_ = json.NewEncoder(w).Encode(map[string]any{"pid": 100, "descendants": []int32{200, 300}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/api"})
	list, err := c.Processes(context.Background(), "chrome")
	if err != nil {
		t.Fatalf("Processes: %v", err)
	}
	if list.Count != 1 || len(list.Processes) != 1 || list.Processes[0].Name != "chrome" {
		t.Fatalf("unexpected list: %+v", list)
	}
	desc, err := c.Tree(context.Background(), 100)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(desc) != 2 || desc[0] != 200 || desc[1] != 300 {
		t.Fatalf("descendants = %v", desc)
	}
}

func TestApplyReportsTallies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/actions" {
			http.NotFound(w, r)
			return
		}
		var req ActionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Action != "terminate" || len(req.PIDs) != 2 || !req.Tree {
			t.Errorf("unexpected request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"succeeded": 3, "failed": 1})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/api"})
	res, err := c.Apply(context.Background(), ActionRequest{Action: "terminate", PIDs: []int32{100, 200}, Tree: true})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Succeeded != 3 || res.Failed != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestErrorEnvelopeSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"pids required"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/api"})
	if _, err := c.Apply(context.Background(), ActionRequest{Action: "terminate"}); err == nil {
		t.Fatal("expected error")
	} else if want := "daemon returned 400: pids required"; err.Error() != want {
		t.Fatalf("err = %q, want %q", err.Error(), want)
	}
}

func TestExportPassesThroughBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "csv" {
			t.Errorf("format query = %q", r.URL.Query().Get("format"))
		}
		_, _ = w.Write([]byte("PID,PPID,RSS_BYTES,Name,Path\n"))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/api"})
	body, err := c.Export(context.Background(), "csv", "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if body != "PID,PPID,RSS_BYTES,Name,Path\n" {
		t.Fatalf("body = %q", body)
	}
}

func TestHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if !New(Config{BaseURL: srv.URL + "/api"}).Healthy(context.Background()) {
		t.Fatal("expected healthy")
	}
	srv.Close()
	if New(Config{BaseURL: srv.URL + "/api"}).Healthy(context.Background()) {
		t.Fatal("expected unhealthy after close")
	}
}
