// Package cart is the shopper's cart: an ordered set of lines, at most one
// per item, with save and retrieve against the remote cart service.
package cart

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/logging"
	"sahara-storefront/internal/metrics"
	"sahara-storefront/internal/notify"
)

type cartRepo interface {
	Save(ctx context.Context, lines []domain.CartLine) (domain.CartIdentity, error)
	GetByID(ctx context.Context, id domain.CartIdentity) ([]domain.CartLine, error)
}

// Snapshot is what subscribers receive after every mutation. Version grows
// with each mutation; deliveries from concurrent mutations may arrive out
// of order, so a subscriber keeps the highest Version it has seen.
type Snapshot struct {
	Lines    []domain.CartLine
	Identity domain.CartIdentity
	Version  uint64
}

// Store is the CartStore. All mutations are serialized; only Save and
// Retrieve leave the lock while the cart service is called.
type Store struct {
	repo   cartRepo
	logger logrus.FieldLogger

	mu       sync.Mutex
	lines    []domain.CartLine
	identity domain.CartIdentity
	version  uint64

	changes notify.Hub[Snapshot]
}

func New(repo cartRepo, logger logrus.FieldLogger) *Store {
	return &Store{repo: repo, logger: logging.OrDiscard(logger)}
}

// AddLine adds quantity of item. An existing line for the same id has the
// quantity added and keeps its original name and price snapshot.
func (s *Store) AddLine(item domain.CatalogItem, quantity int) error {
	line := domain.CartLine{
		ID:       item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: quantity,
	}
	if err := line.Validate(); err != nil {
		return err
	}
	s.mutate(func() {
		if i := s.indexLocked(item.ID); i >= 0 {
			s.lines[i].Quantity += quantity
			return
		}
		s.lines = append(s.lines, line)
	})
	return nil
}

// SetLineQuantity replaces the quantity of an existing line. Zero removes
// the line.
func (s *Store) SetLineQuantity(id domain.ItemID, quantity int) error {
	if quantity < 0 {
		return domain.Invalid("quantity must not be negative, got %d", quantity)
	}
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return errors.Wrapf(domain.ErrNotFound, "cart line %s", id)
	}
	if quantity == 0 {
		s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
	} else {
		s.lines[i].Quantity = quantity
	}
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.changes.Publish(snap)
	return nil
}

// RemoveLine drops the line for id if there is one.
func (s *Store) RemoveLine(id domain.ItemID) {
	s.mutate(func() {
		if i := s.indexLocked(id); i >= 0 {
			s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
		}
	})
}

// Clear empties the cart and forgets its identity.
func (s *Store) Clear() {
	s.mutate(func() {
		s.lines = nil
		s.identity = ""
	})
}

// ReplaceAll swaps in lines and identity wholesale.
func (s *Store) ReplaceAll(lines []domain.CartLine, identity domain.CartIdentity) error {
	seen := make(map[domain.ItemID]struct{}, len(lines))
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return err
		}
		if _, dup := seen[l.ID]; dup {
			return domain.Invalid("duplicate cart line %s", l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	replacement := make([]domain.CartLine, len(lines))
	copy(replacement, lines)
	s.mutate(func() {
		s.lines = replacement
		s.identity = identity
	})
	return nil
}

// Save submits the current lines to the cart service. On success the cart
// is emptied and takes the returned identity. On failure nothing changes.
func (s *Store) Save(ctx context.Context) (domain.CartIdentity, error) {
	lines := s.Lines()
	if len(lines) == 0 {
		return "", domain.Invalid("cart is empty")
	}

	id, err := s.repo.Save(ctx, lines)
	metrics.RecordCartOperation("save", err)
	if err != nil {
		s.logger.WithError(err).WithField("lines", len(lines)).Warn("cart store: save failed")
		return "", err
	}

	s.mutate(func() {
		s.lines = nil
		s.identity = id
	})
	s.logger.WithFields(logrus.Fields{"cart_id": id, "lines": len(lines)}).Info("cart store: saved")
	return id, nil
}

// Retrieve loads a saved cart and replaces the local one with it.
func (s *Store) Retrieve(ctx context.Context, identity domain.CartIdentity) error {
	if identity.IsZero() {
		return domain.Invalid("cart id required")
	}
	lines, err := s.repo.GetByID(ctx, identity)
	metrics.RecordCartOperation("retrieve", err)
	if err != nil {
		s.logger.WithError(err).WithField("cart_id", identity).Warn("cart store: retrieve failed")
		return err
	}
	if err := s.ReplaceAll(lines, identity); err != nil {
		return errors.Wrap(err, "retrieved cart")
	}
	s.logger.WithFields(logrus.Fields{"cart_id": identity, "lines": len(lines)}).Info("cart store: retrieved")
	return nil
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLinesLocked()
}

func (s *Store) Identity() domain.CartIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// TotalQuantity sums quantities across lines.
func (s *Store) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every mutation. It returns the unsubscribe func.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	return s.changes.Subscribe(fn)
}

func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	fn()
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.changes.Publish(snap)
}

func (s *Store) indexLocked(id domain.ItemID) int {
	for i, l := range s.lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) copyLinesLocked() []domain.CartLine {
	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Lines: s.copyLinesLocked(), Identity: s.identity, Version: s.version}
}
