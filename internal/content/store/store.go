// Package store holds the ContentStore: the single source of truth for the
// document a session renders, with an editor draft layered over the
// canonical copy.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
	"github.com/lovestory/lovestory/backend/go-services/internal/content"
	"github.com/lovestory/lovestory/backend/go-services/internal/debounce"
	"github.com/lovestory/lovestory/backend/go-services/pkg/logger"
	"github.com/lovestory/lovestory/backend/go-services/pkg/metrics"
)

// DefaultDebounce is the quiet period before a burst of edits propagates.
const DefaultDebounce = 300 * time.Millisecond

// ErrNotEditor is returned by Commit on a viewer-mode store.
var ErrNotEditor = fmt.Errorf("%w: store is not in editor mode", apperr.ErrAuth)

// Mode selects which copy of the document reads and writes target.
type Mode int

const (
	ModeViewer Mode = iota
	ModeEditor
)

func (m Mode) String() string {
	if m == ModeEditor {
		return "editor"
	}
	return "viewer"
}

// Persister writes a committed document to the remote project record.
type Persister interface {
	SaveContent(ctx context.Context, projectID string, doc content.Document) error
}

// Options configures a Store. Key identifies the project (and cache entry).
type Options struct {
	Key       string
	Mode      Mode
	Cache     Cache
	Persister Persister
	Debounce  time.Duration
	// OnPropagate receives the cumulative draft after each quiet period in
	// editor mode (live preview).
	OnPropagate func(content.Document)
}

// Store is safe for concurrent use.
type Store struct {
	opts Options

	mu          sync.RWMutex
	canonical   content.Document
	draft       content.Document
	initialized bool
	// set while the last commit did not reach the Persister
	commitFailed bool

	propagate *debounce.Debouncer[content.Document]
}

// New returns a store holding the defaults; call Initialize to seed it.
func New(opts Options) *Store {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	s := &Store{
		opts:      opts,
		canonical: content.Defaults(),
		draft:     content.Defaults(),
	}
	s.propagate = debounce.New(opts.Debounce, s.onPropagate)
	return s
}

func (s *Store) Mode() Mode  { return s.opts.Mode }
func (s *Store) Key() string { return s.opts.Key }

// Initialized reports whether a successful Initialize already ran.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Initialize seeds the store once. With a seed, the seed is merged over the
// defaults; without one, the cached document is used when present, else the
// defaults. Later calls do nothing so in-progress edits are never clobbered.
// It reports whether this call performed the initialization.
func (s *Store) Initialize(ctx context.Context, seed json.RawMessage) bool {
	return s.InitializeWithDraft(ctx, seed, nil)
}

// InitializeWithDraft is Initialize for a resumed editor: seed becomes the
// canonical document and draft, merged over the defaults, the working copy.
// A nil or unusable draft leaves the working copy equal to the canonical
// document.
func (s *Store) InitializeWithDraft(ctx context.Context, seed, draft json.RawMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return false
	}

	doc := s.seedDocument(ctx, seed)
	s.canonical = doc
	s.draft = doc.Clone()
	if draft != nil {
		d, err := content.MergeDefaults(draft)
		if err != nil {
			logger.Warnf("content %s: resumed draft unusable, using stored document: %v", s.opts.Key, err)
		} else {
			s.draft = d
		}
	}
	s.initialized = true
	return true
}

func (s *Store) seedDocument(ctx context.Context, seed json.RawMessage) content.Document {
	if seed != nil {
		merged, err := content.MergeDefaults(seed)
		if err != nil {
			logger.Warnf("content %s: seed document unusable, using defaults: %v", s.opts.Key, err)
		}
		return merged
	}
	if s.opts.Cache == nil {
		return content.Defaults()
	}
	cached, ok, err := s.opts.Cache.Load(ctx, s.opts.Key)
	switch {
	case err != nil:
		logger.Warnf("content %s: cache load failed, using defaults: %v", s.opts.Key, err)
	case ok:
		merged, err := content.MergeDefaults(cached)
		if err != nil {
			logger.Warnf("content %s: cached document unusable, using defaults: %v", s.opts.Key, err)
		}
		return merged
	default:
		logger.Debugf("content %s: no cached document, using defaults", s.opts.Key)
	}
	return content.Defaults()
}

// Read returns a copy of the active document: the draft in editor mode, the
// canonical document otherwise.
func (s *Store) Read() content.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active().Clone()
}

// Canonical returns a copy of the last committed document.
func (s *Store) Canonical() content.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canonical.Clone()
}

func (s *Store) active() content.Document {
	if s.opts.Mode == ModeEditor {
		return s.draft
	}
	return s.canonical
}

// Update shallow-merges p into the active document. The result is visible to
// Read immediately; in editor mode one debounced propagation is scheduled for
// the cumulative draft. A failed merge leaves the document untouched.
func (s *Store) Update(p content.Patch) error {
	s.mu.Lock()
	next, err := content.Apply(s.active(), p)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if s.opts.Mode == ModeEditor {
		s.draft = next
		// triggered under the lock so bursts from concurrent callers keep order
		s.propagate.Trigger(next.Clone())
	} else {
		s.canonical = next
	}
	s.mu.Unlock()
	return nil
}

// Dirty reports whether the draft differs from the canonical document.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.draft.Equal(s.canonical)
}

// Settled reports whether nothing is waiting to be saved: the draft equals
// the canonical document and the last commit, if any, was persisted.
func (s *Store) Settled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.commitFailed && s.draft.Equal(s.canonical)
}

// Commit replaces the canonical document with the draft and writes it to the
// cache and the Persister as one full overwrite. On a remote failure the
// local draft and canonical copies are kept so the commit can be retried.
func (s *Store) Commit(ctx context.Context) error {
	if s.opts.Mode != ModeEditor {
		return ErrNotEditor
	}
	s.propagate.Flush()

	s.mu.Lock()
	s.canonical = s.draft.Clone()
	snapshot := s.canonical.Clone()
	s.mu.Unlock()

	if s.opts.Cache != nil {
		if err := s.saveCache(ctx, snapshot); err != nil {
			logger.Warnf("content %s: cache write on commit failed: %v", s.opts.Key, err)
		}
	}
	if s.opts.Persister == nil {
		metrics.ContentCommits.WithLabelValues("ok").Inc()
		return nil
	}
	if err := s.opts.Persister.SaveContent(ctx, s.opts.Key, snapshot); err != nil {
		s.setCommitFailed(true)
		metrics.ContentCommits.WithLabelValues("failed").Inc()
		logger.Errorf("content %s: commit failed: %v", s.opts.Key, err)
		return fmt.Errorf("commit %s: %w", s.opts.Key, err)
	}
	s.setCommitFailed(false)
	metrics.ContentCommits.WithLabelValues("ok").Inc()
	logger.Infof("content %s: committed", s.opts.Key)
	return nil
}

func (s *Store) setCommitFailed(v bool) {
	s.mu.Lock()
	s.commitFailed = v
	s.mu.Unlock()
}

// Flush runs a pending propagation now.
func (s *Store) Flush() { s.propagate.Flush() }

// Close drops any pending propagation.
func (s *Store) Close() { s.propagate.Stop() }

func (s *Store) onPropagate(doc content.Document) {
	metrics.ContentPropagations.Inc()
	if s.opts.Cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.saveCache(ctx, doc); err != nil {
			logger.Warnf("content %s: draft propagation failed: %v", s.opts.Key, err)
		}
	}
	if s.opts.OnPropagate != nil {
		s.opts.OnPropagate(doc)
	}
}

func (s *Store) saveCache(ctx context.Context, doc content.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return s.opts.Cache.Save(ctx, s.opts.Key, b)
}
