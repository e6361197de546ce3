package catalog

import (
	"context"

	"sahara-storefront/internal/domain"
)

// CreateItemInput is the body of an admin "add product" call.
type CreateItemInput struct {
	Name     string       `json:"name"`
	Price    domain.Price `json:"price"`
	Quantity int          `json:"quantity"`
	ImageURL string       `json:"imageUrl"`
	Category string       `json:"category,omitempty"`
	Color    string       `json:"color,omitempty"`
	Tags     []string     `json:"tags,omitempty"`
}

// UpdateItemInput is a partial update; nil fields are left unchanged by the service.
type UpdateItemInput struct {
	Name     *string       `json:"name,omitempty"`
	Price    *domain.Price `json:"price,omitempty"`
	Quantity *int          `json:"quantity,omitempty"`
	ImageURL *string       `json:"imageUrl,omitempty"`
	Category *string       `json:"category,omitempty"`
	Color    *string       `json:"color,omitempty"`
}

type Repository interface {
	List(ctx context.Context, q domain.CatalogQuery) ([]domain.CatalogItem, error)
	GetByID(ctx context.Context, id domain.ItemID) (*domain.CatalogItem, error)
	Create(ctx context.Context, in CreateItemInput) (*domain.CatalogItem, error)
	Update(ctx context.Context, id domain.ItemID, in UpdateItemInput) (*domain.CatalogItem, error)
	Delete(ctx context.Context, id domain.ItemID) error
}
