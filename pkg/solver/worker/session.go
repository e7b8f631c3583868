package worker

import (
	"sync"

	"github.com/matzehuels/gutterview/pkg/solver"
)

// Session keeps one solver state alive across requests for the same graph
// and tuning, so repeated solves continue from the chains of the previous run.
type Session struct {
	mu    sync.Mutex
	key   string
	cfg   solver.Config
	state *solver.State
}

// State returns the state for key, creating it when the key or the
// normalized config changed. The second return value reports whether an
// existing state was reused.
func (s *Session) State(key string, p *solver.Problem, cfg solver.Config) (*solver.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg = cfg.Normalize()
	if s.state != nil && s.key == key && key != "" && s.cfg == cfg {
		return s.state, true, nil
	}

	st, err := solver.Initialize(p, cfg)
	if err != nil {
		s.key, s.cfg, s.state = "", solver.Config{}, nil
		return nil, false, err
	}
	s.key, s.cfg, s.state = key, cfg, st
	return st, false, nil
}

// Key returns the identity of the cached state, or "" when empty.
func (s *Session) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Reset drops the cached state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key, s.cfg, s.state = "", solver.Config{}, nil
}
