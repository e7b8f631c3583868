// Package store keeps a history of solver runs.
//
// A [Run] records what the solver found for one graph: the best order, its
// cost and how long the search took. [Mongo] persists runs in MongoDB;
// [Memory] keeps them in process for tests and single-user CLI sessions.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/gutterview/pkg/config"
	errs "github.com/matzehuels/gutterview/pkg/errors"
)

// DefaultListLimit bounds List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Run is one completed solver run.
type Run struct {
	ID        string        `json:"id" bson:"_id"`
	GraphHash string        `json:"graph_hash" bson:"graph_hash"`
	Source    string        `json:"source,omitempty" bson:"source,omitempty"` // File path or request origin
	Nodes     int           `json:"nodes" bson:"nodes"`
	Edges     int           `json:"edges" bson:"edges"`
	Chains    int           `json:"chains" bson:"chains"`
	Cost      uint32        `json:"cost" bson:"cost"`
	Order     []int         `json:"order" bson:"order"`
	Batches   int           `json:"batches" bson:"batches"`
	Elapsed   time.Duration `json:"elapsed" bson:"elapsed"`
	Error     string        `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}

// NewRun returns a run with a fresh ID and the current time.
func NewRun(graphHash string) Run {
	return Run{
		ID:        uuid.NewString(),
		GraphHash: graphHash,
		CreatedAt: time.Now().UTC(),
	}
}

// Store persists runs.
type Store interface {
	// Save inserts or replaces a run by ID.
	Save(ctx context.Context, run Run) error
	// Get returns the run with the given ID or a NOT_FOUND error.
	Get(ctx context.Context, id string) (Run, error)
	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]Run, error)
	Close(ctx context.Context) error
}

// ValidateID checks that id is a UUID.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "run id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errs.New(errs.ErrCodeNotFound, "run %s not found", id)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// Open returns a Mongo store when cfg names a URI and a Memory store otherwise.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	if cfg.MongoURI == "" {
		return NewMemory(), nil
	}
	m, err := NewMongo(ctx, MongoOptions{
		URI:        cfg.MongoURI,
		Database:   cfg.Database,
		Collection: cfg.Collection,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
