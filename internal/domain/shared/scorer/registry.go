package scorer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mylittlethingz/backend/internal/domain/shared"
)

// Registry indexes scoring engines by name so callers can enumerate
// and look up the engines wired into a service.
type Registry struct {
	mu      sync.RWMutex
	scorers map[string]Scorer
}

// NewRegistry creates an empty scorer registry
func NewRegistry() *Registry {
	return &Registry{
		scorers: make(map[string]Scorer),
	}
}

// Register adds a scorer under its name
func (r *Registry) Register(s Scorer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !s.Type().IsValid() {
		return fmt.Errorf("%w: scorer '%s' has unknown type '%s'", shared.ErrInvalidInput, s.Name(), s.Type())
	}
	name := s.Name()
	if _, exists := r.scorers[name]; exists {
		return fmt.Errorf("%w: scorer '%s' already registered", shared.ErrAlreadyExists, name)
	}
	r.scorers[name] = s
	return nil
}

// Get returns a scorer by name
func (r *Registry) Get(name string) (Scorer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.scorers[name]
	if !exists {
		return nil, fmt.Errorf("%w: scorer '%s' not found", shared.ErrNotFound, name)
	}
	return s, nil
}

// ByType returns all scorers of one type, sorted by name
func (r *Registry) ByType(t ScorerType) []Scorer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Scorer
	for _, s := range r.scorers {
		if s.Type() == t {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// List returns all registered scorer names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.scorers))
	for name := range r.scorers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
