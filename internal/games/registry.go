// Package games holds in-progress mini-games by id. Games are never
// persisted; an idle game is forgotten after the TTL.
package games

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
)

// ErrNotFound is returned for unknown or expired game ids.
var ErrNotFound = apperr.ErrNotFound

type entry[T any] struct {
	game     T
	lastUsed time.Time
}

// Registry maps ids to games of one kind.
type Registry[T any] struct {
	ttl time.Duration
	max int
	now func() time.Time

	mu    sync.Mutex
	games map[string]*entry[T]
}

// NewRegistry keeps at most max games, each for ttl after last use.
func NewRegistry[T any](ttl time.Duration, max int) *Registry[T] {
	return &Registry[T]{ttl: ttl, max: max, now: time.Now, games: make(map[string]*entry[T])}
}

// Add stores g under a new id.
func (r *Registry[T]) Add(g T) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expireLocked()
	if r.max > 0 && len(r.games) >= r.max {
		r.evictOldestLocked()
	}
	id := uuid.NewString()
	r.games[id] = &entry[T]{game: g, lastUsed: r.now()}
	return id
}

// Get returns the game for id and refreshes its TTL.
func (r *Registry[T]) Get(id string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.games[id]
	if !ok || r.now().Sub(e.lastUsed) > r.ttl {
		delete(r.games, id)
		var zero T
		return zero, ErrNotFound
	}
	e.lastUsed = r.now()
	return e.game, nil
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.games)
}

func (r *Registry[T]) expireLocked() {
	now := r.now()
	for id, e := range r.games {
		if now.Sub(e.lastUsed) > r.ttl {
			delete(r.games, id)
		}
	}
}

func (r *Registry[T]) evictOldestLocked() {
	var oldest string
	var at time.Time
	for id, e := range r.games {
		if oldest == "" || e.lastUsed.Before(at) {
			oldest, at = id, e.lastUsed
		}
	}
	delete(r.games, oldest)
}
