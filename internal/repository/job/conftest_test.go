package job

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/recall/internal/db"
	"github.com/kailas-cloud/recall/internal/domain/task"
)

// memStore is an in-memory hash store honoring SCAN glob prefixes.
type memStore struct {
	hashes  map[string]map[string]string
	ttls    map[string]time.Duration
	hsetErr error
	scanErr error
	scanDup bool // report every key twice, as SCAN may
}

func newMemStore() *memStore {
	return &memStore{hashes: map[string]map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) HSet(_ context.Context, key string, fields map[string]string) error {
	if m.hsetErr != nil {
		return m.hsetErr
	}
	h, ok := m.hashes[key]
	if !ok {
		h = map[string]string{}
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (m *memStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	out := map[string]string{}
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i], _ = m.HGetAll(ctx, k)
	}
	return out, nil
}

// Scan supports only trailing-* patterns with backslash escapes.
func (m *memStore) Scan(_ context.Context, pattern string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	prefix = strings.NewReplacer(`\*`, "*", `\?`, "?", `\[`, "[", `\]`, "]", `\\`, `\`).Replace(prefix)
	var keys []string
	for k := range m.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
			if m.scanDup {
				keys = append(keys, k)
			}
		}
	}
	return keys, nil
}

func (m *memStore) Expire(_ context.Context, key string, ttl time.Duration, _ bool) error {
	m.ttls[key] = ttl
	return nil
}

// fakeDispatcher is a FIFO with an explicit in-flight set.
type fakeDispatcher struct {
	pending    []string
	inflight   map[string]bool
	acked      []string
	publishErr error
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{inflight: map[string]bool{}}
}

func (f *fakeDispatcher) Publish(_ context.Context, ids ...string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.pending = append(f.pending, ids...)
	return nil
}

func (f *fakeDispatcher) Next(context.Context, time.Duration) (task.Delivery, error) {
	if len(f.pending) == 0 {
		return task.Delivery{}, task.ErrNoDelivery
	}
	id := f.pending[0]
	f.pending = f.pending[1:]
	f.inflight[id] = true
	return task.NewDelivery(id, func(context.Context) error {
		delete(f.inflight, id)
		f.acked = append(f.acked, id)
		return nil
	}), nil
}

func (f *fakeDispatcher) Recover(context.Context) ([]string, error) {
	var ids []string
	for id := range f.inflight {
		ids = append(ids, id)
		f.pending = append(f.pending, id)
	}
	f.inflight = map[string]bool{}
	return ids, nil
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) (*Repo, *memStore, *fakeDispatcher) {
	t.Helper()
	ms := newMemStore()
	fd := newFakeDispatcher()
	repo := New(ms, fd)
	repo.now = func() time.Time { return fixedNow }
	return repo, ms, fd
}

func testJob(batch, doc string) task.Job {
	return task.Job{
		ID:         task.JobID(batch, doc),
		Collection: "shoes",
		DocID:      doc,
		ContentRaw: "red shoes",
		Payload:    map[string]any{"category": "shoes", "price": 50},
	}
}

// mockLists implements the list consumer interface with fn fields.
type mockLists struct {
	lpushFn  func(ctx context.Context, key string, values ...string) error
	blmoveFn func(ctx context.Context, src, dst string, timeout time.Duration) (string, error)
	lmoveFn  func(ctx context.Context, src, dst string) (string, error)
	lremFn   func(ctx context.Context, key, value string) error
	llenFn   func(ctx context.Context, key string) (int64, error)
	setFn    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	existsFn func(ctx context.Context, key string) (bool, error)
	scanFn   func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockLists) LPush(ctx context.Context, key string, values ...string) error {
	if m.lpushFn != nil {
		return m.lpushFn(ctx, key, values...)
	}
	return nil
}

func (m *mockLists) BLMove(ctx context.Context, src, dst string, timeout time.Duration) (string, error) {
	if m.blmoveFn != nil {
		return m.blmoveFn(ctx, src, dst, timeout)
	}
	return "", db.ErrKeyNotFound
}

func (m *mockLists) LMove(ctx context.Context, src, dst string) (string, error) {
	if m.lmoveFn != nil {
		return m.lmoveFn(ctx, src, dst)
	}
	return "", db.ErrKeyNotFound
}

func (m *mockLists) LRem(ctx context.Context, key, value string) error {
	if m.lremFn != nil {
		return m.lremFn(ctx, key, value)
	}
	return nil
}

func (m *mockLists) LLen(ctx context.Context, key string) (int64, error) {
	if m.llenFn != nil {
		return m.llenFn(ctx, key)
	}
	return 0, nil
}

func (m *mockLists) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockLists) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockLists) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

// memLists is an in-memory list store shared by several queues.
// Lists are stored head first; liveness keys never expire on their own.
type memLists struct {
	lists map[string][]string
	alive map[string]bool
}

func newMemLists() *memLists {
	return &memLists{lists: map[string][]string{}, alive: map[string]bool{}}
}

func (m *memLists) LPush(_ context.Context, key string, values ...string) error {
	for _, v := range values {
		m.lists[key] = append([]string{v}, m.lists[key]...)
	}
	return nil
}

// move pops the tail of src and pushes it to the head of dst.
func (m *memLists) move(src, dst string) (string, error) {
	l := m.lists[src]
	if len(l) == 0 {
		return "", db.ErrKeyNotFound
	}
	v := l[len(l)-1]
	m.lists[src] = l[:len(l)-1]
	if len(m.lists[src]) == 0 {
		delete(m.lists, src)
	}
	m.lists[dst] = append([]string{v}, m.lists[dst]...)
	return v, nil
}

func (m *memLists) BLMove(_ context.Context, src, dst string, _ time.Duration) (string, error) {
	return m.move(src, dst)
}

func (m *memLists) LMove(_ context.Context, src, dst string) (string, error) {
	return m.move(src, dst)
}

func (m *memLists) LRem(_ context.Context, key, value string) error {
	kept := m.lists[key][:0]
	for _, v := range m.lists[key] {
		if v != value {
			kept = append(kept, v)
		}
	}
	m.lists[key] = kept
	return nil
}

func (m *memLists) LLen(_ context.Context, key string) (int64, error) {
	return int64(len(m.lists[key])), nil
}

func (m *memLists) SetWithTTL(_ context.Context, key string, _ []byte, _ time.Duration) error {
	m.alive[key] = true
	return nil
}

func (m *memLists) Exists(_ context.Context, key string) (bool, error) {
	return m.alive[key], nil
}

func (m *memLists) Scan(_ context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k, l := range m.lists {
		if strings.HasPrefix(k, prefix) && len(l) > 0 {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
