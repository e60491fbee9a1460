package catalog

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/r2ready/internal/model"
)

// Resolver holds every registered scoring config version and tracks which
// one is active. Versions are immutable once registered; activating a new
// version never rewrites results persisted under a prior one.
type Resolver struct {
	mu       sync.RWMutex
	versions map[int]model.ScoringConfig
	active   int
}

// NewResolver returns an empty resolver with no active version.
func NewResolver() *Resolver {
	return &Resolver{versions: make(map[int]model.ScoringConfig)}
}

// Register validates and stores a config version. Re-registering an
// existing version is rejected: versions are immutable.
func (r *Resolver) Register(cfg model.ScoringConfig) error {
	if err := cfg.Validate(); err != nil {
		return &ConfigurationError{Issues: []string{err.Error()}}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.versions[cfg.Version]; exists {
		return &ConfigurationError{Issues: []string{fmt.Sprintf("scoring config version %d already registered", cfg.Version)}}
	}
	r.versions[cfg.Version] = cfg
	return nil
}

// Activate switches the active version. Activating an unknown version
// fails and leaves the previously active version in effect, so existing
// assessments are unaffected by a bad rollout.
func (r *Resolver) Activate(version int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.versions[version]; !ok {
		return &ConfigurationError{Issues: []string{fmt.Sprintf("cannot activate unknown scoring config version %d", version)}}
	}
	r.active = version
	zap.L().Info("catalog: scoring config activated", zap.Int("version", version))
	return nil
}

// Active returns the currently active config. A pass calls this once at
// start and treats the returned value as an immutable snapshot.
func (r *Resolver) Active() (model.ScoringConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.versions[r.active]
	if !ok {
		return model.ScoringConfig{}, &ConfigurationError{Issues: []string{"no active scoring config"}}
	}
	return cfg, nil
}

// Version returns a specific registered config, for reading results
// computed under older versions.
func (r *Resolver) Version(v int) (model.ScoringConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.versions[v]
	return cfg, ok
}
