package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/gutterview/pkg/errors"
	"github.com/matzehuels/gutterview/pkg/graph"
	"github.com/matzehuels/gutterview/pkg/pipeline"
	"github.com/matzehuels/gutterview/pkg/solver"
	"github.com/matzehuels/gutterview/pkg/solver/worker"
	"github.com/matzehuels/gutterview/pkg/store"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SolveResponse is returned when a solve request is accepted.
type SolveResponse struct {
	RequestID string `json:"request_id"`
	GraphHash string `json:"graph_hash"`
	Chains    int    `json:"chains"`
}

// SolveStatus is the latest published snapshot.
type SolveStatus struct {
	Busy     bool             `json:"busy"`
	Snapshot *worker.Snapshot `json:"snapshot,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"checks": map[string]string{
			"worker": workerState(s.worker.Busy()),
		},
	})
}

func workerState(busy bool) string {
	if busy {
		return "busy"
	}
	return "idle"
}

// handleDiagram solves, lays out and routes the posted graph document.
// Query parameters width, columns, seed and format override the defaults.
func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	m, err := s.readModel(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts, format, err := s.requestOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	sol, err := s.cfg.Runner.Solve(ctx, m, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	d, err := s.cfg.Runner.Diagram(ctx, m, sol.Order, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	if format == pipeline.FormatJSON {
		writeJSON(w, http.StatusOK, d)
		return
	}
	opts.Formats = []string{format}
	artifacts, err := s.cfg.Runner.Render(ctx, d, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// handleSubmitSolve hands the posted graph to the background worker.
func (s *Server) handleSubmitSolve(w http.ResponseWriter, r *http.Request) {
	m, err := s.readModel(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts, _, err := s.requestOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := solver.NewProblem(m.NodeCount(), m.Pairs())
	if err != nil {
		writeError(w, err)
		return
	}
	opts.SetSolveDefaults(p)

	run := store.NewRun(m.Fingerprint())
	run.Source = r.RemoteAddr
	run.Nodes = m.NodeCount()
	run.Edges = m.EdgeCount()
	run.Chains = opts.Solver.BatchSize

	req := worker.Request{
		ID:         run.ID,
		GraphHash:  run.GraphHash,
		Problem:    p,
		Config:     opts.Solver,
		Steps:      opts.Solver.Steps,
		Plateau:    opts.Plateau,
		MaxBatches: opts.MaxBatches,
	}
	s.addPending(run)
	if !s.worker.Submit(req) {
		s.dropPending(run.ID)
		writeError(w, errs.New(errs.ErrCodeWorkerBusy, "a solve is already running"))
		return
	}

	writeJSON(w, http.StatusAccepted, SolveResponse{
		RequestID: run.ID,
		GraphHash: run.GraphHash,
		Chains:    run.Chains,
	})
}

func (s *Server) handleSolveStatus(w http.ResponseWriter, _ *http.Request) {
	snap := s.worker.Latest()
	if snap == nil && !s.worker.Busy() {
		writeError(w, errs.New(errs.ErrCodeNotFound, "no solve has been submitted"))
		return
	}
	writeJSON(w, http.StatusOK, SolveStatus{Busy: s.worker.Busy(), Snapshot: snap})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errs.New(errs.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	runs, err := s.cfg.Store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := store.ValidateID(id); err != nil {
		writeError(w, err)
		return
	}
	run, err := s.cfg.Store.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// readModel decodes a JSON or TOML graph document from the request body.
func (s *Server) readModel(w http.ResponseWriter, r *http.Request) (*graph.Model, error) {
	format := graph.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "toml") {
		format = graph.FormatTOML
	}
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	doc, err := graph.ReadDocument(body, format)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errs.New(errs.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, err
	}
	return graph.Build(doc)
}

// requestOptions applies query overrides to the server defaults.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, string, error) {
	opts := s.cfg.Options
	opts.Formats = nil
	q := r.URL.Query()

	if v := q.Get("width"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return opts, "", errs.New(errs.ErrCodeInvalidOptions, "invalid width %q", v)
		}
		opts.Width = f
	}
	if v := q.Get("columns"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, "", errs.New(errs.ErrCodeInvalidOptions, "invalid columns %q", v)
		}
		opts.Columns = n
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, "", errs.New(errs.ErrCodeInvalidOptions, "invalid seed %q", v)
		}
		opts.Solver.Seed = seed
	}
	if v := q.Get("max_batches"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, "", errs.New(errs.ErrCodeInvalidOptions, "invalid max_batches %q", v)
		}
		opts.MaxBatches = n
	}

	format := q.Get("format")
	switch format {
	case "":
		format = pipeline.FormatJSON
	case pipeline.FormatJSON, pipeline.FormatSVG, pipeline.FormatDOT:
	default:
		return opts, "", errs.New(errs.ErrCodeInvalidFormat, "invalid format %q", format)
	}
	return opts, format, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, errs.HTTPStatus(err), ErrorResponse{
		Error: ErrorDetail{Code: string(code), Message: errs.UserMessage(err)},
	})
}
