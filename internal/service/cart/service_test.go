package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sahara-storefront/internal/domain"
)

type stubRepo struct {
	saveID    domain.CartIdentity
	saveErr   error
	saved     []domain.CartLine
	saveCalls int
	onSave    func()

	getLines []domain.CartLine
	getErr   error
	lastGet  domain.CartIdentity
}

func (s *stubRepo) Save(_ context.Context, lines []domain.CartLine) (domain.CartIdentity, error) {
	s.saveCalls++
	s.saved = lines
	if s.onSave != nil {
		s.onSave()
	}
	return s.saveID, s.saveErr
}

func (s *stubRepo) GetByID(_ context.Context, id domain.CartIdentity) ([]domain.CartLine, error) {
	s.lastGet = id
	return s.getLines, s.getErr
}

func item(id, name, price string, stock int) domain.CatalogItem {
	return domain.CatalogItem{ID: domain.ItemID(id), Name: name, Price: domain.MustPrice(price), Quantity: stock}
}

func line(id, name, price string, qty int) domain.CartLine {
	return domain.CartLine{ID: domain.ItemID(id), Name: name, Price: domain.MustPrice(price), Quantity: qty}
}

func TestAddLine_MergesAndKeepsFirstSnapshot(t *testing.T) {
	s := New(&stubRepo{}, nil)
	require.NoError(t, s.AddLine(item("1", "Pen", "2.50", 10), 2))
	require.NoError(t, s.AddLine(item("2", "Ink", "4.00", 10), 1))
	require.NoError(t, s.AddLine(item("1", "Pen (renamed)", "9.99", 10), 3))

	lines := s.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, line("1", "Pen", "2.50", 5), lines[0])
	assert.Equal(t, line("2", "Ink", "4.00", 1), lines[1])
	assert.Equal(t, 6, s.TotalQuantity())
}

func TestAddLine_RejectsNonPositiveQuantity(t *testing.T) {
	s := New(&stubRepo{}, nil)
	for _, qty := range []int{0, -1} {
		err := s.AddLine(item("1", "Pen", "1", 1), qty)
		assert.True(t, errors.Is(err, domain.ErrValidation), "qty %d", qty)
	}
	assert.Empty(t, s.Lines())
}

func TestSetLineQuantity(t *testing.T) {
	s := New(&stubRepo{}, nil)
	require.NoError(t, s.AddLine(item("1", "Pen", "1", 9), 1))
	require.NoError(t, s.AddLine(item("2", "Ink", "1", 9), 1))

	require.NoError(t, s.SetLineQuantity("1", 4))
	assert.Equal(t, 4, s.Lines()[0].Quantity)

	err := s.SetLineQuantity("1", -2)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Equal(t, 4, s.Lines()[0].Quantity)

	err = s.SetLineQuantity("42", 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Len(t, s.Lines(), 2)

	require.NoError(t, s.SetLineQuantity("1", 0))
	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, domain.ItemID("2"), lines[0].ID)
}

func TestRemoveLine_IsIdempotent(t *testing.T) {
	s := New(&stubRepo{}, nil)
	require.NoError(t, s.AddLine(item("1", "Pen", "1", 9), 1))
	s.RemoveLine("1")
	s.RemoveLine("1")
	s.RemoveLine("missing")
	assert.Empty(t, s.Lines())
}

func TestRemoveLine_ThenAddStartsFreshLine(t *testing.T) {
	s := New(&stubRepo{}, nil)
	require.NoError(t, s.AddLine(item("1", "Pen", "2.50", 9), 3))
	s.RemoveLine("1")
	require.NoError(t, s.AddLine(item("1", "Fountain Pen", "7.00", 9), 2))

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, line("1", "Fountain Pen", "7.00", 2), lines[0])
}

func TestAddLine_RejectsNegativePrice(t *testing.T) {
	s := New(&stubRepo{}, nil)
	bad := domain.CatalogItem{ID: "1", Name: "Pen", Price: domain.NewPrice(decimal.NewFromInt(-1)), Quantity: 5}

	err := s.AddLine(bad, 1)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Empty(t, s.Lines())

	err = s.AddLine(domain.CatalogItem{Name: "Pen", Price: domain.MustPrice("1")}, 1)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestClear_ResetsIdentity(t *testing.T) {
	s := New(&stubRepo{}, nil)
	require.NoError(t, s.ReplaceAll([]domain.CartLine{line("1", "Pen", "1", 1)}, "cart-7"))
	s.Clear()
	assert.Empty(t, s.Lines())
	assert.True(t, s.Identity().IsZero())
}

func TestReplaceAll_DoesNotMerge(t *testing.T) {
	s := New(&stubRepo{}, nil)
	require.NoError(t, s.AddLine(item("1", "Pen", "1", 9), 3))
	require.NoError(t, s.ReplaceAll([]domain.CartLine{line("1", "Pen", "1.00", 1)}, "c1"))
	assert.Equal(t, []domain.CartLine{line("1", "Pen", "1.00", 1)}, s.Lines())
	assert.Equal(t, domain.CartIdentity("c1"), s.Identity())
}

func TestReplaceAll_RejectsBrokenPayload(t *testing.T) {
	s := New(&stubRepo{}, nil)
	require.NoError(t, s.AddLine(item("1", "Pen", "1", 9), 3))
	before := s.Snapshot()

	dup := []domain.CartLine{line("2", "Ink", "1", 1), line("2", "Ink", "1", 2)}
	assert.True(t, errors.Is(s.ReplaceAll(dup, "x"), domain.ErrValidation))
	zero := []domain.CartLine{line("2", "Ink", "1", 0)}
	assert.True(t, errors.Is(s.ReplaceAll(zero, "x"), domain.ErrValidation))

	assert.Equal(t, before, s.Snapshot())
}

func TestSave_SuccessEmptiesCartAndSetsIdentity(t *testing.T) {
	repo := &stubRepo{saveID: "cart-99"}
	s := New(repo, nil)
	require.NoError(t, s.AddLine(item("1", "Pen", "2.50", 9), 2))

	id, err := s.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.CartIdentity("cart-99"), id)
	assert.Equal(t, domain.CartIdentity("cart-99"), s.Identity())
	assert.Empty(t, s.Lines())
	assert.Equal(t, []domain.CartLine{line("1", "Pen", "2.50", 2)}, repo.saved)
}

func TestSave_SendsSnapshotTakenAtSubmission(t *testing.T) {
	repo := &stubRepo{saveID: "c"}
	s := New(repo, nil)
	require.NoError(t, s.AddLine(item("1", "Pen", "1", 9), 1))
	repo.onSave = func() {
		require.NoError(t, s.AddLine(item("2", "Ink", "1", 9), 1))
	}

	_, err := s.Save(context.Background())
	require.NoError(t, err)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, domain.ItemID("1"), repo.saved[0].ID)
}

func TestSave_FailureLeavesCartUntouched(t *testing.T) {
	repo := &stubRepo{saveErr: &domain.ServiceError{Service: "cart", Op: "save cart", StatusCode: 500}}
	s := New(repo, nil)
	require.NoError(t, s.ReplaceAll([]domain.CartLine{line("1", "Pen", "1", 2)}, "old"))
	before := s.Snapshot()

	_, err := s.Save(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrServiceRejected))
	assert.Equal(t, before, s.Snapshot())
}

func TestSave_EmptyCartIsRejected(t *testing.T) {
	repo := &stubRepo{saveID: "c"}
	s := New(repo, nil)
	_, err := s.Save(context.Background())
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Zero(t, repo.saveCalls)
}

func TestRetrieve_ReplacesCart(t *testing.T) {
	repo := &stubRepo{getLines: []domain.CartLine{line("5", "Pad", "3.00", 2)}}
	s := New(repo, nil)
	require.NoError(t, s.AddLine(item("1", "Pen", "1", 9), 1))

	require.NoError(t, s.Retrieve(context.Background(), "cart-5"))
	assert.Equal(t, domain.CartIdentity("cart-5"), repo.lastGet)
	assert.Equal(t, []domain.CartLine{line("5", "Pad", "3.00", 2)}, s.Lines())
	assert.Equal(t, domain.CartIdentity("cart-5"), s.Identity())
}

func TestRetrieve_FailureLeavesCartUntouched(t *testing.T) {
	repo := &stubRepo{getErr: errors.Wrap(domain.ErrNotFound, "cart nope")}
	s := New(repo, nil)
	require.NoError(t, s.AddLine(item("1", "Pen", "1", 9), 1))
	before := s.Snapshot()

	err := s.Retrieve(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, before, s.Snapshot())

	assert.True(t, errors.Is(s.Retrieve(context.Background(), ""), domain.ErrValidation))
}

func TestSubscribe_NotifiedOnEveryMutation(t *testing.T) {
	s := New(&stubRepo{saveID: "c"}, nil)
	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	require.NoError(t, s.AddLine(item("1", "Pen", "1", 9), 1))
	require.NoError(t, s.SetLineQuantity("1", 3))
	_, err := s.Save(context.Background())
	require.NoError(t, err)
	unsubscribe()
	s.Clear()

	require.Len(t, got, 3)
	assert.Equal(t, 3, got[1].Lines[0].Quantity)
	assert.Empty(t, got[2].Lines)
	assert.Equal(t, domain.CartIdentity("c"), got[2].Identity)
	assert.Less(t, got[0].Version, got[1].Version)
	assert.Less(t, got[1].Version, got[2].Version)
}

func TestSnapshot_VersionOrdersConcurrentMutations(t *testing.T) {
	s := New(&stubRepo{}, nil)
	var mu sync.Mutex
	var latest Snapshot
	s.Subscribe(func(snap Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if snap.Version > latest.Version {
			latest = snap
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.AddLine(item("1", "Pen", "1", 99), 1))
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, s.Snapshot(), latest)
	assert.Equal(t, 20, latest.Lines[0].Quantity)
}
