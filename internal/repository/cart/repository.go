package cart

import (
	"context"

	"sahara-storefront/internal/domain"
)

type Repository interface {
	// Save persists lines as a new cart and returns its identity.
	Save(ctx context.Context, lines []domain.CartLine) (domain.CartIdentity, error)
	GetByID(ctx context.Context, id domain.CartIdentity) ([]domain.CartLine, error)
}
