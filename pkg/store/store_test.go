package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type note struct {
	Meta
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags,omitempty"`
}

func newNote(id, title string) note {
	now := time.Now().UTC()
	return note{Meta: Meta{ID: id, CreatedAt: now, UpdatedAt: now}, Title: title}
}

func newTestStore(t *testing.T) *Store[note] {
	t.Helper()
	return New[note]("notes", filepath.Join(t.TempDir(), "notes.json"))
}

func TestLoadInitializesMissingFile(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	items, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)

	// First use must leave an empty collection on disk.
	raw, err := os.ReadFile(s.path)
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(raw))
}

func TestInsertRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	first := newNote("n1", "first")
	first.Tags = []string{"a", "b"}
	require.NoError(t, s.Insert(ctx, first))
	require.NoError(t, s.Insert(ctx, newNote("n2", "second")))

	items, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "n1", items[0].ID)
	require.Equal(t, []string{"a", "b"}, items[0].Tags)
	require.Equal(t, "second", items[1].Title)
}

func TestInsertRejectsDuplicateID(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, newNote("n1", "first")))
	err := s.Insert(ctx, newNote("n1", "imposter"))
	require.ErrorIs(t, err, ErrDuplicateKey)

	items, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "first", items[0].Title)
}

func TestUpdateMissingRecord(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, err := s.Update(context.Background(), "ghost", func(n *note) { n.Title = "boo" })
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePreservesUntouchedFields(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	n := newNote("n1", "original")
	n.Body = "keep me"
	n.Tags = []string{"pinned"}
	require.NoError(t, s.Insert(ctx, n))

	before := n.UpdatedAt
	updated, err := s.Update(ctx, "n1", func(n *note) { n.Title = "renamed" })
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Title)
	require.Equal(t, "keep me", updated.Body)
	require.Equal(t, []string{"pinned"}, updated.Tags)
	require.True(t, updated.UpdatedAt.After(before) || updated.UpdatedAt.Equal(before))

	// The patch must survive a reload.
	reloaded, found, err := s.FindByID(ctx, "n1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "renamed", reloaded.Title)
	require.Equal(t, "keep me", reloaded.Body)
}

func TestUpdateIdempotentApartFromTimestamp(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, newNote("n1", "original")))

	patch := func(n *note) { n.Title = "patched"; n.Body = "body" }
	first, err := s.Update(ctx, "n1", patch)
	require.NoError(t, err)
	second, err := s.Update(ctx, "n1", patch)
	require.NoError(t, err)

	first.UpdatedAt = time.Time{}
	second.UpdatedAt = time.Time{}
	require.Equal(t, first, second)
}

func TestFindAbsentIsNotAnError(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, newNote("n1", "first")))

	_, found, err := s.Find(ctx, func(n note) bool { return n.Title == "missing" })
	require.NoError(t, err)
	require.False(t, found)
}

func TestFilterPreservesStorageOrder(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		n := newNote(fmt.Sprintf("n%d", i), "note")
		if i%2 == 0 {
			n.Body = "even"
		}
		require.NoError(t, s.Insert(ctx, n))
	}

	matches, err := s.Filter(ctx, func(n note) bool { return n.Body == "even" })
	require.NoError(t, err)
	require.Len(t, matches, 3)
	require.Equal(t, []string{"n0", "n2", "n4"}, []string{matches[0].ID, matches[1].ID, matches[2].ID})
}

func TestConcurrentUpdatesOnDistinctIDs(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	const records = 8
	for i := 0; i < records; i++ {
		require.NoError(t, s.Insert(ctx, newNote(fmt.Sprintf("n%d", i), "stale")))
	}

	var wg sync.WaitGroup
	errs := make([]error, records)
	for i := 0; i < records; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Update(ctx, fmt.Sprintf("n%d", i), func(n *note) { n.Title = "fresh" })
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "update %d", i)
	}

	// Every update must be present afterward: no lost writes.
	items, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, records)
	for _, item := range items {
		require.Equal(t, "fresh", item.Title, "record %s lost its update", item.ID)
	}
}

func TestConcurrentInsertsAllPersisted(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	const records = 8
	var wg sync.WaitGroup
	for i := 0; i < records; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Insert(ctx, newNote(fmt.Sprintf("n%d", i), "note"))
		}(i)
	}
	wg.Wait()

	items, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, records)
}

func TestCorruptFileSurfacesStorageUnavailable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := New[note]("notes", path)
	_, err := s.Load(context.Background())
	require.ErrorIs(t, err, ErrStorageUnavailable)

	err = s.Insert(context.Background(), newNote("n1", "first"))
	require.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestReadsReturnValueCopies(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	n := newNote("n1", "original")
	n.Tags = []string{"keep"}
	require.NoError(t, s.Insert(ctx, n))

	items, err := s.Load(ctx)
	require.NoError(t, err)
	items[0].Title = "mutated"
	items[0].Tags[0] = "mutated"

	reloaded, _, err := s.FindByID(ctx, "n1")
	require.NoError(t, err)
	require.Equal(t, "original", reloaded.Title)
	require.Equal(t, []string{"keep"}, reloaded.Tags)
}

func TestCancelledContextShortCircuits(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
	err = s.Insert(ctx, newNote("n1", "first"))
	require.ErrorIs(t, err, context.Canceled)
}

type opRecorder struct {
	mu  sync.Mutex
	ops []string
}

func (r *opRecorder) ObserveOp(collection, op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, collection+"/"+op)
}

func TestObserverSeesOperations(t *testing.T) {
	t.Parallel()

	rec := &opRecorder{}
	s := New[note]("notes", filepath.Join(t.TempDir(), "notes.json"), WithObserver(rec))
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, newNote("n1", "first")))
	_, err := s.Load(ctx)
	require.NoError(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Contains(t, rec.ops, "notes/insert")
	require.Contains(t, rec.ops, "notes/load")
}

func TestErrorsUnwrapCleanly(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, newNote("n1", "first")))

	_, err := s.Update(ctx, "missing", func(n *note) {})
	require.True(t, errors.Is(err, ErrNotFound))
	require.Contains(t, err.Error(), "notes")
}
