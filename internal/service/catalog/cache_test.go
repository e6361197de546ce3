package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sahara-storefront/internal/domain"
)

type stubLister struct {
	mu      sync.Mutex
	items   []domain.CatalogItem
	err     error
	calls   int
	queries []domain.CatalogQuery
}

func (s *stubLister) List(_ context.Context, q domain.CatalogQuery) ([]domain.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.queries = append(s.queries, q)
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func (s *stubLister) set(items []domain.CatalogItem, err error) {
	s.mu.Lock()
	s.items, s.err = items, err
	s.mu.Unlock()
}

// gatedLister blocks each List call until its revision is released.
type gatedLister struct {
	mu      sync.Mutex
	gates   map[uint64]chan []domain.CatalogItem
	entered chan uint64
}

func newGatedLister() *gatedLister {
	return &gatedLister{gates: map[uint64]chan []domain.CatalogItem{}, entered: make(chan uint64, 8)}
}

func (g *gatedLister) gate(rev uint64) chan []domain.CatalogItem {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[rev]
	if !ok {
		ch = make(chan []domain.CatalogItem, 1)
		g.gates[rev] = ch
	}
	return ch
}

func (g *gatedLister) List(ctx context.Context, q domain.CatalogQuery) ([]domain.CatalogItem, error) {
	ch := g.gate(q.Revision)
	g.entered <- q.Revision
	select {
	case items := <-ch:
		return items, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func items(names ...string) []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(names))
	for i, n := range names {
		out = append(out, domain.CatalogItem{ID: domain.ItemID(string(rune('1' + i))), Name: n, Price: domain.MustPrice("1"), Quantity: i})
	}
	return out
}

func TestCache_FetchReplacesWholesale(t *testing.T) {
	repo := &stubLister{items: items("Pen", "Ink")}
	c := New(repo, nil)
	ctx := context.Background()

	got, err := c.Fetch(ctx, domain.DefaultQuery())
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.True(t, c.Loaded())

	repo.set(items("Pad"), nil)
	_, err = c.Fetch(ctx, domain.DefaultQuery())
	require.NoError(t, err)
	require.Len(t, c.All(), 1)
	assert.Equal(t, "Pad", c.All()[0].Name)
	_, ok := c.Lookup("2")
	assert.False(t, ok, "items from the previous snapshot must be gone")
}

func TestCache_FailedFetchKeepsSnapshotAndSetsError(t *testing.T) {
	repo := &stubLister{items: items("Pen", "Ink")}
	c := New(repo, nil)
	ctx := context.Background()
	_, err := c.Fetch(ctx, domain.DefaultQuery())
	require.NoError(t, err)

	boom := &domain.NetworkError{Service: "catalog", Op: "list items", Err: errors.New("connection refused")}
	repo.set(nil, boom)
	_, err = c.Fetch(ctx, domain.DefaultQuery())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNetwork))

	assert.Len(t, c.All(), 2)
	assert.Equal(t, boom, c.Err())
	assert.Equal(t, boom, c.State().Err)

	repo.set(items("Pen"), nil)
	_, err = c.Refetch(ctx)
	require.NoError(t, err)
	assert.NoError(t, c.Err())
}

func TestCache_RefetchRerunsLastDescriptor(t *testing.T) {
	repo := &stubLister{items: items("Pen")}
	c := New(repo, nil)
	q := domain.DefaultQuery()
	q.Revision = 4
	q.SearchTerm = "pen"

	_, err := c.Fetch(context.Background(), q)
	require.NoError(t, err)
	_, err = c.Refetch(context.Background())
	require.NoError(t, err)

	require.Len(t, repo.queries, 2)
	assert.Equal(t, q, repo.queries[1])
}

func TestCache_ItemsApplyDescriptorAndStock(t *testing.T) {
	repo := &stubLister{items: items("Pen", "Ink", "Pad")}
	c := New(repo, nil)
	q := domain.DefaultQuery()
	q.Filter.InStock = true
	q.Sort.Name = domain.SortAsc

	got, err := c.Fetch(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ink", got[0].Name)
	assert.Equal(t, "Pad", got[1].Name)
	assert.Equal(t, got, c.Items())
	assert.Len(t, c.All(), 3)
	assert.Equal(t, map[domain.ItemID]int{"1": 0, "2": 1, "3": 2}, c.Stock())
}

func TestCache_OlderRevisionArrivingLastIsDiscarded(t *testing.T) {
	repo := newGatedLister()
	c := New(repo, nil)
	ctx := context.Background()

	older := domain.DefaultQuery()
	older.Revision = 1
	newer := domain.DefaultQuery()
	newer.Revision = 2

	var wg sync.WaitGroup
	var olderErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, olderErr = c.Fetch(ctx, older)
	}()
	require.Equal(t, uint64(1), <-repo.entered)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := c.Fetch(ctx, newer)
		assert.NoError(t, err)
	}()
	require.Equal(t, uint64(2), <-repo.entered)

	repo.gate(2) <- items("Fresh")
	repo.gate(1) <- items("Stale", "Stale")
	wg.Wait()

	assert.True(t, errors.Is(olderErr, domain.ErrStaleResponse))
	require.Len(t, c.All(), 1)
	assert.Equal(t, "Fresh", c.All()[0].Name)
	assert.Equal(t, uint64(2), c.State().Query.Revision)
}

func TestCache_SubscribersSeeFailuresAndSnapshots(t *testing.T) {
	repo := &stubLister{items: items("Pen")}
	c := New(repo, nil)
	var states []State
	c.Subscribe(func(s State) { states = append(states, s) })

	_, _ = c.Fetch(context.Background(), domain.DefaultQuery())
	repo.set(nil, errors.New("boom"))
	_, _ = c.Fetch(context.Background(), domain.DefaultQuery())

	require.Len(t, states, 2)
	assert.NoError(t, states[0].Err)
	assert.Error(t, states[1].Err)
	assert.Len(t, states[1].Items, 1)
}
