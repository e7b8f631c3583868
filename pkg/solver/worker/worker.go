package worker

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/gutterview/pkg/errors"
	"github.com/matzehuels/gutterview/pkg/observability"
	"github.com/matzehuels/gutterview/pkg/solver"
)

// runLoop is replaced in tests.
var runLoop = Loop

// Request asks the worker to order one graph.
type Request struct {
	ID         string
	GraphHash  string // Identity used to resume chains from the previous request
	Problem    *solver.Problem
	Config     solver.Config
	Steps      int
	Plateau    time.Duration
	MaxBatches int
}

// Result is delivered exactly once for every accepted request.
type Result struct {
	RequestID string
	Snapshot  Snapshot
	Chains    int  // Chains the solver actually ran
	Resumed   bool // Chains continued from an earlier request on the same graph and config
	Err       error
}

// Worker runs solve requests one at a time on a background goroutine.
//
// The mailbox holds a single request. Submit drops new requests while one is
// queued or running; callers learn about it from the return value.
type Worker struct {
	logger *log.Logger

	mu       sync.Mutex
	requests chan Request
	results  chan Result
	cancel   context.CancelFunc
	done     chan struct{}
	session  *Session

	busy   atomic.Bool
	latest atomic.Pointer[Snapshot]
}

// New creates a stopped worker. Call Start before submitting.
func New(logger *log.Logger) *Worker {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Worker{
		logger:  logger,
		results: make(chan Result, 1),
	}
}

// Start launches the worker goroutine. It stops when ctx is cancelled or
// Stop is called. Starting a running worker is a no-op.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.requests = make(chan Request, 1)
	w.session = &Session{}
	w.busy.Store(false)

	go w.run(ctx, w.requests, w.session, w.done)
}

// Stop cancels the running request and waits for the goroutine to exit.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Restart stops the worker and starts it again with an empty session.
// Use it after a request failed with a WORKER_DISCONNECTED error.
func (w *Worker) Restart(ctx context.Context) {
	w.Stop()
	w.Start(ctx)
}

// Submit queues req. It returns false when the worker is stopped or already
// has a request in flight.
func (w *Worker) Submit(req Request) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done == nil {
		return false
	}
	if !w.busy.CompareAndSwap(false, true) {
		return false
	}
	select {
	case w.requests <- req:
		return true
	default:
		w.busy.Store(false)
		return false
	}
}

// Results returns the channel on which results are delivered.
func (w *Worker) Results() <-chan Result { return w.results }

// Busy reports whether a request is queued or running.
func (w *Worker) Busy() bool { return w.busy.Load() }

// Latest returns the most recently published snapshot, or nil.
func (w *Worker) Latest() *Snapshot { return w.latest.Load() }

func (w *Worker) run(ctx context.Context, requests <-chan Request, session *Session, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-requests:
			res := w.handle(ctx, req, session)
			if res.Err != nil {
				observability.Solver().OnWorkerError(ctx, res.Err)
				w.logger.Warn("solve failed", "request", req.ID, "err", res.Err)
			}
			w.busy.Store(false)
			select {
			case w.results <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handle runs one request. Panics are converted into a terminal result and
// the session is dropped, since its chains may be half-updated.
func (w *Worker) handle(ctx context.Context, req Request, session *Session) (res Result) {
	res.RequestID = req.ID
	defer func() {
		if r := recover(); r != nil {
			session.Reset()
			res.Err = errs.Wrap(errs.ErrCodeWorkerDisconnected, fmt.Errorf("%v", r), "solver worker crashed")
		}
	}()

	if req.Problem == nil {
		res.Err = errs.Wrap(errs.ErrCodeWorkerFailed, solver.ErrNoNodes, "initialize solver")
		return res
	}

	st, resumed, err := session.State(req.GraphHash, req.Problem, req.Config)
	if err != nil {
		res.Err = errs.Wrap(errs.ErrCodeWorkerFailed, err, "initialize solver")
		return res
	}
	res.Resumed = resumed
	res.Chains = st.Chains()
	w.logger.Debug("solving", "request", req.ID, "nodes", req.Problem.NodeCount(),
		"edges", req.Problem.EdgeCount(), "chains", st.Chains(), "resumed", resumed)

	publish := func(s Snapshot) {
		s.RequestID = req.ID
		s.GraphHash = req.GraphHash
		w.latest.Store(&s)
	}
	opts := LoopOptions{Steps: req.Steps, Plateau: req.Plateau, MaxBatches: req.MaxBatches, Logger: w.logger}
	snap, err := runLoop(ctx, st, opts, publish)
	snap.RequestID = req.ID
	snap.GraphHash = req.GraphHash
	res.Snapshot = snap
	if err != nil {
		res.Err = errs.Wrap(errs.ErrCodeWorkerFailed, err, "solve %s", req.ID)
	}
	return res
}
