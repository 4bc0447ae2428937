// Package editor keeps one content store per project being edited. A
// workspace lives from the first authenticated request until logout or
// until it has been idle for the configured TTL.
package editor

import (
	"context"
	"sync"
	"time"

	"github.com/lovestory/lovestory/backend/go-services/internal/content"
	"github.com/lovestory/lovestory/backend/go-services/internal/content/store"
	"github.com/lovestory/lovestory/backend/go-services/internal/projects"
	"github.com/lovestory/lovestory/backend/go-services/internal/tokens"
	"github.com/lovestory/lovestory/backend/go-services/pkg/logger"
)

// ModeFor picks the store mode for a request: editing needs both a valid
// session and a resolved project.
func ModeFor(hasValidSession, projectResolved bool) store.Mode {
	if hasValidSession && projectResolved {
		return store.ModeEditor
	}
	return store.ModeViewer
}

// Projects is what the registry needs from the project service.
type Projects interface {
	ResolveByID(ctx context.Context, id, owner string) (*projects.Project, error)
	store.Persister
}

// Options configures a Registry.
type Options struct {
	Projects Projects
	// Cache receives debounced drafts so a reloaded editor resumes its
	// working copy. Nil disables resume.
	Cache    store.Cache
	Debounce time.Duration
	IdleTTL  time.Duration
}

type workspace struct {
	store    *store.Store
	owner    string
	lastUsed time.Time
}

// Registry is safe for concurrent use.
type Registry struct {
	opts Options
	now  func() time.Time

	mu         sync.Mutex
	workspaces map[string]*workspace
}

func NewRegistry(opts Options) *Registry {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 2 * time.Hour
	}
	return &Registry{opts: opts, now: time.Now, workspaces: make(map[string]*workspace)}
}

// Acquire returns the editor-mode store for the subject's project, creating
// and seeding it on first use. The project is resolved on every call so a
// session whose project was reassigned or deleted loses edit access.
func (r *Registry) Acquire(ctx context.Context, subj tokens.Subject) (*store.Store, *projects.Project, error) {
	p, err := r.opts.Projects.ResolveByID(ctx, subj.ProjectID, subj.Email)
	if err != nil {
		return nil, nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ws, ok := r.workspaces[p.ID]; ok {
		if ws.owner == p.OwnerEmail {
			ws.lastUsed = r.now()
			return ws.store, p, nil
		}
		// the project changed hands; the previous owner's draft goes with it
		ws.store.Close()
		r.forget(ctx, p.ID)
		logger.Infof("editor: discarded workspace of previous owner for project %s", p.ID)
	}

	s := store.New(store.Options{
		Key:       p.ID,
		Mode:      ModeFor(true, true),
		Cache:     r.opts.Cache,
		Persister: r.opts.Projects,
		Debounce:  r.opts.Debounce,
	})
	stored, draft := r.seed(ctx, p)
	s.InitializeWithDraft(ctx, stored, draft)
	r.workspaces[p.ID] = &workspace{store: s, owner: p.OwnerEmail, lastUsed: r.now()}
	logger.Debugf("editor: opened workspace for project %s", p.ID)
	return s, p, nil
}

// seed returns the stored document and, when the cache holds one, the
// unsaved draft to resume on top of it.
func (r *Registry) seed(ctx context.Context, p *projects.Project) (stored, draft []byte) {
	stored = p.Data
	if len(stored) == 0 {
		stored = []byte("{}")
	}
	if r.opts.Cache == nil {
		return stored, nil
	}
	cached, ok, err := r.opts.Cache.Load(ctx, p.ID)
	if err != nil {
		logger.Warnf("editor: draft lookup for %s failed: %v", p.ID, err)
	}
	if !ok {
		return stored, nil
	}
	return stored, cached
}

// Drop closes the project's workspace after flushing its pending draft. A
// workspace with nothing left to save also releases its cache entry, so only
// unsaved drafts stay cached.
func (r *Registry) Drop(projectID string) {
	r.mu.Lock()
	ws, ok := r.workspaces[projectID]
	delete(r.workspaces, projectID)
	r.mu.Unlock()
	if !ok {
		return
	}
	ws.store.Flush()
	ws.store.Close()
	if ws.store.Settled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r.forget(ctx, projectID)
	}
}

func (r *Registry) forget(ctx context.Context, projectID string) {
	if r.opts.Cache == nil {
		return
	}
	if err := r.opts.Cache.Delete(ctx, projectID); err != nil {
		logger.Warnf("editor: draft cleanup for %s failed: %v", projectID, err)
	}
}

// Len reports the number of open workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Sweep drops workspaces idle for longer than the TTL and returns how many
// were dropped.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.opts.IdleTTL)
	var idle []string
	r.mu.Lock()
	for id, ws := range r.workspaces {
		if ws.lastUsed.Before(cutoff) {
			idle = append(idle, id)
		}
	}
	r.mu.Unlock()
	for _, id := range idle {
		r.Drop(id)
	}
	if len(idle) > 0 {
		logger.Infof("editor: dropped %d idle workspaces", len(idle))
	}
	return len(idle)
}

// Run sweeps every interval until ctx is done, then drops every workspace.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case <-t.C:
			r.Sweep()
		}
	}
}

// Close drops every workspace.
func (r *Registry) Close() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.workspaces))
	for id := range r.workspaces {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.Drop(id)
	}
}

// View renders a project for a public viewer. The viewer-mode store never
// propagates or persists, so nothing a viewer does reaches the project.
func View(ctx context.Context, p *projects.Project) content.Document {
	s := store.New(store.Options{Key: p.ID, Mode: ModeFor(false, true)})
	defer s.Close()
	s.Initialize(ctx, p.Data)
	return s.Read()
}
