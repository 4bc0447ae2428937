package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
	"github.com/lovestory/lovestory/backend/go-services/internal/content"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakePersister records every committed document.
type fakePersister struct {
	mu    sync.Mutex
	saved []content.Document
	err   error
}

func (f *fakePersister) SaveContent(ctx context.Context, projectID string, doc content.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, doc)
	return nil
}

// countingCache wraps MemoryCache and counts writes.
type countingCache struct {
	*MemoryCache
	mu     sync.Mutex
	writes int
}

func (c *countingCache) Save(ctx context.Context, key string, doc json.RawMessage) error {
	c.mu.Lock()
	c.writes++
	c.mu.Unlock()
	return c.MemoryCache.Save(ctx, key, doc)
}

func (c *countingCache) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

func newEditor(t *testing.T, opts Options) *Store {
	t.Helper()
	opts.Mode = ModeEditor
	if opts.Key == "" {
		opts.Key = "p1"
	}
	s := New(opts)
	t.Cleanup(s.Close)
	return s
}

func skatePatch(t *testing.T, s content.Skate) content.Patch {
	t.Helper()
	p, err := content.PatchOf(content.SectionSkate, s)
	require.NoError(t, err)
	return p
}

func TestFreshStoreReadsDefaults(t *testing.T) {
	s := newEditor(t, Options{})
	require.True(t, s.Initialize(context.Background(), nil))
	require.Equal(t, "Every superhero has a story. This one is ours.", s.Read().Skate.Text)
	if diff := cmp.Diff(content.Defaults(), s.Read()); diff != "" {
		t.Fatalf("unexpected diff (-want +got):\n%s", diff)
	}
}

func TestUpdateSkateTextKeepsImage(t *testing.T) {
	s := newEditor(t, Options{})
	s.Initialize(context.Background(), nil)

	cur := s.Read().Skate
	cur.Text = "X"
	require.NoError(t, s.Update(skatePatch(t, cur)))

	got := s.Read()
	require.Equal(t, "X", got.Skate.Text)
	require.Equal(t, "/images/s1.png", got.Skate.Image1)
}

func TestUpdateLeavesSiblingsByteIdentical(t *testing.T) {
	s := newEditor(t, Options{})
	s.Initialize(context.Background(), []byte(`{"letterTitle":"Mine"}`))
	before, err := content.Raw(s.Read())
	require.NoError(t, err)

	p := content.Patch{
		content.SectionComicTexts: json.RawMessage(`["a","b"]`),
		content.SectionLetterText: json.RawMessage(`"short letter"`),
	}
	require.NoError(t, s.Update(p))

	after, err := content.Raw(s.Read())
	require.NoError(t, err)
	for _, sec := range content.Sections {
		if _, touched := p[sec]; touched {
			continue
		}
		require.Equal(t, string(before[sec]), string(after[sec]), "section %s changed", sec)
	}
	require.Equal(t, []string{"a", "b"}, s.Read().ComicTexts)
	require.Equal(t, "short letter", s.Read().LetterText)
}

func TestFailedUpdateChangesNothing(t *testing.T) {
	s := newEditor(t, Options{})
	s.Initialize(context.Background(), nil)
	err := s.Update(content.Patch{"memories": json.RawMessage(`{"bad":true}`)})
	require.ErrorIs(t, err, apperr.ErrValidation)
	require.Equal(t, content.Defaults(), s.Read())
	require.False(t, s.Dirty())
}

func TestInitializeRunsOnce(t *testing.T) {
	s := newEditor(t, Options{})
	ctx := context.Background()
	require.True(t, s.Initialize(ctx, []byte(`{"letterTitle":"first"}`)))

	require.NoError(t, s.Update(content.Patch{content.SectionLetterTitle: json.RawMessage(`"edited"`)}))
	require.False(t, s.Initialize(ctx, []byte(`{"letterTitle":"second"}`)))
	require.Equal(t, "edited", s.Read().LetterTitle)
	require.True(t, s.Initialized())
}

func TestInitializePartialAndMalformedSeeds(t *testing.T) {
	ctx := context.Background()

	partial := newEditor(t, Options{})
	partial.Initialize(ctx, []byte(`{"skate":{"text":"hi"}}`))
	doc := partial.Read()
	require.Equal(t, content.Defaults().Memories, doc.Memories)
	require.Equal(t, "hi", doc.Skate.Text)
	require.Equal(t, "/images/s2.png", doc.Skate.Image2)

	broken := newEditor(t, Options{})
	require.True(t, broken.Initialize(ctx, []byte(`{"skate":`)))
	require.Equal(t, content.Defaults(), broken.Read())
}

func TestInitializeFromCacheWithoutSeed(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	require.NoError(t, cache.Save(ctx, "p1", json.RawMessage(`{"letterText":"cached letter"}`)))

	s := newEditor(t, Options{Cache: cache})
	s.Initialize(ctx, nil)
	require.Equal(t, "cached letter", s.Read().LetterText)
	require.Equal(t, content.Defaults().Skate, s.Read().Skate)

	seeded := newEditor(t, Options{Cache: cache})
	seeded.Initialize(ctx, []byte(`{"letterText":"from project"}`))
	require.Equal(t, "from project", seeded.Read().LetterText)
}

func TestInitializeWithDraftLayersDraftOverStored(t *testing.T) {
	ctx := context.Background()
	s := newEditor(t, Options{})
	require.True(t, s.InitializeWithDraft(ctx, []byte(`{"letterTitle":"stored"}`), []byte(`{"letterTitle":"draft"}`)))
	require.Equal(t, "draft", s.Read().LetterTitle)
	require.Equal(t, "stored", s.Canonical().LetterTitle)
	require.True(t, s.Dirty())
	require.False(t, s.Settled())

	unusable := newEditor(t, Options{})
	unusable.InitializeWithDraft(ctx, []byte(`{"letterTitle":"stored"}`), []byte(`{"letterTitle":`))
	require.Equal(t, "stored", unusable.Read().LetterTitle)
	require.False(t, unusable.Dirty())
	require.True(t, unusable.Settled())
}

func TestViewerModeUpdatesCanonicalDirectly(t *testing.T) {
	cache := &countingCache{MemoryCache: NewMemoryCache()}
	var propagated int
	s := New(Options{Key: "p1", Mode: ModeViewer, Cache: cache, Debounce: 10 * time.Millisecond,
		OnPropagate: func(content.Document) { propagated++ }})
	defer s.Close()
	s.Initialize(context.Background(), nil)

	require.NoError(t, s.Update(content.Patch{content.SectionLetterTitle: json.RawMessage(`"viewer"`)}))
	require.Equal(t, "viewer", s.Read().LetterTitle)
	require.Equal(t, "viewer", s.Canonical().LetterTitle)

	time.Sleep(40 * time.Millisecond)
	require.Zero(t, propagated)
	require.Zero(t, cache.count())
	require.ErrorIs(t, s.Commit(context.Background()), ErrNotEditor)
}

func TestEditorDraftIsSeparateFromCanonical(t *testing.T) {
	s := newEditor(t, Options{})
	s.Initialize(context.Background(), nil)
	require.NoError(t, s.Update(content.Patch{content.SectionLetterTitle: json.RawMessage(`"draft"`)}))
	require.Equal(t, "draft", s.Read().LetterTitle)
	require.Equal(t, content.Defaults().LetterTitle, s.Canonical().LetterTitle)
	require.True(t, s.Dirty())
}

func TestRapidUpdatesPropagateOnce(t *testing.T) {
	cache := &countingCache{MemoryCache: NewMemoryCache()}
	got := make(chan content.Document, 8)
	s := newEditor(t, Options{Cache: cache, Debounce: 40 * time.Millisecond,
		OnPropagate: func(d content.Document) { got <- d }})
	s.Initialize(context.Background(), nil)

	text := ""
	for _, r := range "hello world" {
		text += string(r)
		cur := s.Read().Skate
		cur.Text = text
		require.NoError(t, s.Update(skatePatch(t, cur)))
	}
	require.NoError(t, s.Update(content.Patch{content.SectionLetterTitle: json.RawMessage(`"T"`)}))

	var doc content.Document
	select {
	case doc = <-got:
	case <-time.After(time.Second):
		t.Fatal("no propagation")
	}
	time.Sleep(100 * time.Millisecond)
	require.Len(t, got, 0, "expected exactly one propagation")
	require.Equal(t, "hello world", doc.Skate.Text)
	require.Equal(t, "T", doc.LetterTitle)
	require.Equal(t, 1, cache.count())

	cached, ok, err := cache.Load(context.Background(), "p1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, string(cached), "hello world")
}

func TestCommitIsIdempotent(t *testing.T) {
	p := &fakePersister{}
	s := newEditor(t, Options{Persister: p, Cache: NewMemoryCache()})
	ctx := context.Background()
	s.Initialize(ctx, nil)
	require.NoError(t, s.Update(content.Patch{content.SectionLetterText: json.RawMessage(`"saved"`)}))

	require.NoError(t, s.Commit(ctx))
	require.NoError(t, s.Commit(ctx))
	require.Len(t, p.saved, 2)
	if diff := cmp.Diff(p.saved[0], p.saved[1]); diff != "" {
		t.Fatalf("second commit differs (-first +second):\n%s", diff)
	}
	require.Equal(t, "saved", p.saved[1].LetterText)
	require.False(t, s.Dirty())
	require.Equal(t, "saved", s.Canonical().LetterText)
}

func TestCommitFailureKeepsDraftForRetry(t *testing.T) {
	p := &fakePersister{err: fmt.Errorf("%w: connection reset", apperr.ErrPersistence)}
	s := newEditor(t, Options{Persister: p})
	ctx := context.Background()
	s.Initialize(ctx, nil)
	require.NoError(t, s.Update(content.Patch{content.SectionLetterTitle: json.RawMessage(`"keep me"`)}))

	err := s.Commit(ctx)
	require.Error(t, err)
	require.True(t, errors.Is(err, apperr.ErrPersistence))
	require.Equal(t, "keep me", s.Read().LetterTitle)
	require.False(t, s.Settled())

	p.mu.Lock()
	p.err = nil
	p.mu.Unlock()
	require.NoError(t, s.Commit(ctx))
	require.Equal(t, "keep me", p.saved[0].LetterTitle)
	require.True(t, s.Settled())
}

func TestRedisCache(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer client.Close()
	cache := NewRedisCache(client, "test:draft:", time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Load(ctx, "p1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Save(ctx, "p1", json.RawMessage(`{"letterTitle":"r"}`)))
	require.True(t, m.Exists("test:draft:p1"))

	s := newEditor(t, Options{Cache: cache})
	s.Initialize(ctx, nil)
	require.Equal(t, "r", s.Read().LetterTitle)

	m.FastForward(2 * time.Minute)
	_, ok, err = cache.Load(ctx, "p1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Save(ctx, "p2", json.RawMessage(`{}`)))
	require.NoError(t, cache.Delete(ctx, "p2"))
	require.False(t, m.Exists("test:draft:p2"))
}
