package seed

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/logging"
	"sahara-storefront/internal/service/admin"
)

// ItemWriter is the admin add-product contract.
type ItemWriter interface {
	Create(ctx context.Context, in admin.CreateInput) (*domain.CatalogItem, error)
}

type itemSeed struct {
	Name     string
	Price    string
	Quantity int
	ImageURL string
	Category string
	Color    string
	Tags     []string
}

var demoItems = []itemSeed{
	{Name: "Fountain Pen", Price: "24.99", Quantity: 12, ImageURL: "https://images.sahara.example/fountain-pen.jpg", Category: "writing", Color: "black", Tags: []string{"pen", "gift"}},
	{Name: "Gel Pen Set", Price: "6.50", Quantity: 40, ImageURL: "https://images.sahara.example/gel-pens.jpg", Category: "writing", Color: "multi", Tags: []string{"pen"}},
	{Name: "Bottled Ink", Price: "8.25", Quantity: 0, ImageURL: "https://images.sahara.example/ink.jpg", Category: "writing", Color: "blue", Tags: []string{"ink"}},
	{Name: "Sketchbook A4", Price: "11.00", Quantity: 25, ImageURL: "https://images.sahara.example/sketchbook.jpg", Category: "drawing", Color: "white", Tags: []string{"paper"}},
	{Name: "Graphite Pencils", Price: "4.75", Quantity: 60, ImageURL: "https://images.sahara.example/pencils.jpg", Category: "drawing", Color: "grey", Tags: []string{"pencil"}},
	{Name: "Charcoal Sticks", Price: "3.33", Quantity: 18, ImageURL: "https://images.sahara.example/charcoal.jpg", Category: "drawing", Color: "black", Tags: []string{"charcoal"}},
}

// Apply adds the demo catalog for manual testing. Items whose name already
// exists are left alone, so it is safe to run repeatedly.
func Apply(ctx context.Context, w ItemWriter, logger logrus.FieldLogger) (int, error) {
	logger = logging.OrDiscard(logger)
	created := 0
	for _, s := range demoItems {
		price := domain.MustPrice(s.Price)
		qty := s.Quantity
		_, err := w.Create(ctx, admin.CreateInput{
			Name:     s.Name,
			Price:    &price,
			Quantity: &qty,
			ImageURL: s.ImageURL,
			Category: s.Category,
			Color:    s.Color,
			Tags:     s.Tags,
		})
		if errors.Is(err, admin.ErrDuplicateName) {
			logger.WithField("name", s.Name).Debug("seed: item exists")
			continue
		}
		if err != nil {
			return created, errors.Wrapf(err, "seed %q", s.Name)
		}
		created++
	}
	return created, nil
}
