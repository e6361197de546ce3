// Package admin is the product maintenance contract: validate locally,
// call the catalog service, then refresh the shop's cached catalog.
package admin

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/logging"
	catalogrepo "sahara-storefront/internal/repository/catalog"
)

// ErrDuplicateName rejects a name another item already uses, ignoring case.
var ErrDuplicateName = errors.Wrap(domain.ErrValidation, "product name already exists")

type refresher interface {
	Refetch(ctx context.Context) ([]domain.CatalogItem, error)
}

type Service struct {
	repo   catalogrepo.Repository
	cache  refresher
	logger logrus.FieldLogger
}

// New wires the service. cache may be nil when nothing needs refreshing,
// as in the importer.
func New(repo catalogrepo.Repository, cache refresher, logger logrus.FieldLogger) *Service {
	return &Service{repo: repo, cache: cache, logger: logging.OrDiscard(logger)}
}

// CreateInput mirrors the add-product form. Every field except the
// descriptive extras is required.
type CreateInput struct {
	Name     string        `json:"name"`
	Price    *domain.Price `json:"price"`
	Quantity *int          `json:"quantity"`
	ImageURL string        `json:"imageUrl"`
	Category string        `json:"category,omitempty"`
	Color    string        `json:"color,omitempty"`
	Tags     []string      `json:"tags,omitempty"`
}

// UpdateInput is a partial patch; nil fields keep their current value.
type UpdateInput struct {
	Name     *string       `json:"name,omitempty"`
	Price    *domain.Price `json:"price,omitempty"`
	Quantity *int          `json:"quantity,omitempty"`
	ImageURL *string       `json:"imageUrl,omitempty"`
	Category *string       `json:"category,omitempty"`
	Color    *string       `json:"color,omitempty"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.CatalogItem, error) {
	name := strings.TrimSpace(in.Name)
	imageURL := strings.TrimSpace(in.ImageURL)
	if name == "" || in.Price == nil || in.Quantity == nil || imageURL == "" {
		return nil, domain.Invalid("all fields are required")
	}
	price, err := checkPrice(*in.Price)
	if err != nil {
		return nil, err
	}
	if *in.Quantity < 0 {
		return nil, domain.Invalid("quantity must not be negative")
	}
	if err := s.ensureUniqueName(ctx, name, ""); err != nil {
		return nil, err
	}

	item, err := s.repo.Create(ctx, catalogrepo.CreateItemInput{
		Name:     name,
		Price:    price,
		Quantity: *in.Quantity,
		ImageURL: imageURL,
		Category: strings.ToLower(strings.TrimSpace(in.Category)),
		Color:    strings.TrimSpace(in.Color),
		Tags:     in.Tags,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	s.logger.WithFields(logrus.Fields{"id": item.ID, "name": item.Name}).Info("admin: product added")
	s.refresh(ctx)
	return item, nil
}

func (s *Service) Update(ctx context.Context, id domain.ItemID, in UpdateInput) (*domain.CatalogItem, error) {
	if id == "" {
		return nil, domain.Invalid("product id required")
	}
	patch := catalogrepo.UpdateItemInput{
		ImageURL: in.ImageURL,
		Color:    in.Color,
		Quantity: in.Quantity,
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return nil, domain.Invalid("quantity must not be negative")
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name must not be empty")
		}
		if err := s.ensureUniqueName(ctx, name, id); err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if in.Price != nil {
		price, err := checkPrice(*in.Price)
		if err != nil {
			return nil, err
		}
		patch.Price = &price
	}
	if in.Category != nil {
		category := strings.ToLower(strings.TrimSpace(*in.Category))
		patch.Category = &category
	}

	item, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, errors.Wrapf(err, "update product %s", id)
	}
	s.logger.WithField("id", id).Info("admin: product updated")
	s.refresh(ctx)
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id domain.ItemID) error {
	if id == "" {
		return domain.Invalid("product id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "delete product %s", id)
	}
	s.logger.WithField("id", id).Info("admin: product deleted")
	s.refresh(ctx)
	return nil
}

// Get loads one product straight from the item service, as the edit form does.
func (s *Service) Get(ctx context.Context, id domain.ItemID) (*domain.CatalogItem, error) {
	if id == "" {
		return nil, domain.Invalid("product id required")
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get product %s", id)
	}
	return item, nil
}

// List returns every product ordered for the admin table.
func (s *Service) List(ctx context.Context, order Order) ([]domain.CatalogItem, error) {
	items, err := s.repo.List(ctx, domain.DefaultQuery())
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return order.Apply(items), nil
}

// ensureUniqueName checks name against the full catalog, skipping self.
func (s *Service) ensureUniqueName(ctx context.Context, name string, self domain.ItemID) error {
	existing, err := s.repo.List(ctx, domain.DefaultQuery())
	if err != nil {
		return errors.Wrap(err, "load existing products")
	}
	for _, item := range existing {
		if item.ID != self && item.SameName(name) {
			return errors.Wrapf(ErrDuplicateName, "%q", name)
		}
	}
	return nil
}

// refresh asks the shop cache to refetch. A failure there is already
// surfaced through the cache's error indicator, so it is only logged.
func (s *Service) refresh(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Refetch(ctx); err != nil && !errors.Is(err, domain.ErrStaleResponse) {
		s.logger.WithError(err).Warn("admin: catalog refetch failed")
	}
}

func checkPrice(p domain.Price) (domain.Price, error) {
	if p.IsNegative() {
		return domain.Price{}, domain.Invalid("price must not be negative")
	}
	return domain.NewPrice(p.Decimal), nil
}
