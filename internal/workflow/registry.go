package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/OmkarVetal12/synlawn/internal/drafts"
	"github.com/OmkarVetal12/synlawn/pkg/enums"
	pkgerrors "github.com/OmkarVetal12/synlawn/pkg/errors"
	"github.com/OmkarVetal12/synlawn/pkg/logger"
	"github.com/OmkarVetal12/synlawn/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// RegistryConfig wires the dependencies shared by every workflow.
type RegistryConfig struct {
	Collaborators map[enums.WorkflowMode]Collaborators
	Drafts        drafts.Store
	Logger        *logger.Logger
	Metrics       *metrics.WorkflowMetrics
	IdleTTL       time.Duration
	RemoteTimeout time.Duration
}

type registryEntry struct {
	workflow *Workflow
	lastSeen time.Time
}

// Registry owns the live workflows of the HTTP host, keyed by id.
// Workflows untouched for IdleTTL are dropped by Sweep.
type Registry struct {
	cfg RegistryConfig
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry
}

func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Drafts == nil {
		cfg.Drafts = drafts.NewMemoryStore()
	}
	return &Registry{
		cfg:     cfg,
		now:     time.Now,
		entries: map[string]*registryEntry{},
	}
}

// Create builds and starts a workflow. A workflow whose start fails is not
// registered.
func (r *Registry) Create(ctx context.Context, mode enums.WorkflowMode, parentID string) (*Workflow, error) {
	collab, ok := r.cfg.Collaborators[mode]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported workflow mode")
	}
	wf, err := New(Config{
		ID:            uuid.NewString(),
		Mode:          mode,
		ParentID:      parentID,
		Collaborators: collab,
		Drafts:        r.cfg.Drafts,
		Logger:        r.cfg.Logger,
		Metrics:       r.cfg.Metrics,
		RemoteTimeout: r.cfg.RemoteTimeout,
	})
	if err != nil {
		return nil, err
	}
	if err := wf.Start(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.entries[wf.ID()] = &registryEntry{workflow: wf, lastSeen: r.now()}
	active := len(r.entries)
	r.mu.Unlock()

	r.cfg.Metrics.SetActive(active)
	return wf, nil
}

// Get returns the workflow and refreshes its idle timer.
func (r *Registry) Get(id string) (*Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "workflow not found")
	}
	entry.lastSeen = r.now()
	return entry.workflow, nil
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	active := len(r.entries)
	r.mu.Unlock()
	r.cfg.Metrics.SetActive(active)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops idle workflows and returns how many were removed. Busy
// workflows are kept until their call resolves.
func (r *Registry) Sweep() int {
	if r.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.cfg.IdleTTL)

	r.mu.Lock()
	stale := make(map[string]*Workflow)
	for id, entry := range r.entries {
		if !entry.lastSeen.After(cutoff) {
			stale[id] = entry.workflow
		}
	}
	r.mu.Unlock()

	// Busy takes the workflow lock, so it is checked without r.mu held.
	for id, wf := range stale {
		if wf.Busy() {
			delete(stale, id)
		}
	}

	r.mu.Lock()
	removed := 0
	for id, wf := range stale {
		entry, ok := r.entries[id]
		if !ok || entry.workflow != wf || entry.lastSeen.After(cutoff) {
			continue
		}
		delete(r.entries, id)
		removed++
	}
	active := len(r.entries)
	r.mu.Unlock()

	r.cfg.Metrics.SetActive(active)
	return removed
}

// Close flushes the drafts of every live workflow and empties the registry.
// Flush failures are combined; every workflow is attempted.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	live := make([]*Workflow, 0, len(r.entries))
	for _, entry := range r.entries {
		live = append(live, entry.workflow)
	}
	r.entries = map[string]*registryEntry{}
	r.mu.Unlock()

	var errs error
	for _, wf := range live {
		errs = multierr.Append(errs, wf.FlushDrafts(ctx))
	}
	r.cfg.Metrics.SetActive(0)
	return errs
}

// Run sweeps on every interval tick until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := r.Sweep(); removed > 0 && r.cfg.Logger != nil {
				r.cfg.Logger.Info(r.cfg.Logger.WithField(ctx, "removed", removed), "expired idle workflows")
			}
		}
	}
}
