package catalog

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/httputil"
	"sahara-storefront/internal/logging"
)

type httpRepo struct {
	client *httputil.Client
	logger logrus.FieldLogger
}

// NewHTTP returns a Repository backed by the item service's REST API.
func NewHTTP(client *httputil.Client, logger logrus.FieldLogger) Repository {
	return &httpRepo{client: client, logger: logging.OrDiscard(logger)}
}

func (r *httpRepo) List(ctx context.Context, q domain.CatalogQuery) ([]domain.CatalogItem, error) {
	var items []domain.CatalogItem
	if err := r.client.Do(ctx, "list items", http.MethodGet, "/items/getAll", QueryValues(q), nil, &items); err != nil {
		r.logger.Printf("catalog repo: list revision=%d error=%v", q.Revision, err)
		return nil, err
	}
	r.logger.Debugf("catalog repo: list revision=%d count=%d", q.Revision, len(items))
	return items, nil
}

func (r *httpRepo) GetByID(ctx context.Context, id domain.ItemID) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	if err := r.client.Do(ctx, "get item", http.MethodGet, "/items/get/"+url.PathEscape(id.String()), nil, nil, &item); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *httpRepo) Create(ctx context.Context, in CreateItemInput) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	if err := r.client.Do(ctx, "create item", http.MethodPost, "/item/add", nil, in, &item); err != nil {
		r.logger.Printf("catalog repo: create name=%q error=%v", in.Name, err)
		return nil, err
	}
	if item.ID == "" {
		return nil, &domain.ServiceError{Service: r.client.Service(), Op: "create item", StatusCode: http.StatusCreated, Body: "response without id"}
	}
	r.logger.Printf("catalog repo: created id=%s name=%q", item.ID, item.Name)
	return &item, nil
}

func (r *httpRepo) Update(ctx context.Context, id domain.ItemID, in UpdateItemInput) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	if err := r.client.Do(ctx, "update item", http.MethodPatch, "/item/update/"+url.PathEscape(id.String()), nil, in, &item); err != nil {
		r.logger.Printf("catalog repo: update id=%s error=%v", id, err)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	r.logger.Printf("catalog repo: updated id=%s", id)
	return &item, nil
}

func (r *httpRepo) Delete(ctx context.Context, id domain.ItemID) error {
	if _, err := r.client.DoRaw(ctx, "delete item", http.MethodDelete, "/item/remove/"+url.PathEscape(id.String()), nil, nil); err != nil {
		r.logger.Printf("catalog repo: delete id=%s error=%v", id, err)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	r.logger.Printf("catalog repo: deleted id=%s", id)
	return nil
}

// QueryValues encodes a descriptor as list parameters. Services that ignore
// them return the full list; the storefront applies the descriptor either way.
func QueryValues(q domain.CatalogQuery) url.Values {
	v := url.Values{}
	if term := strings.TrimSpace(q.SearchTerm); term != "" {
		v.Set("search", term)
	}
	if q.Sort.Name == domain.SortAsc || q.Sort.Name == domain.SortDesc {
		v.Add("sort", "name,"+string(q.Sort.Name))
	}
	if q.Sort.Price == domain.SortAsc || q.Sort.Price == domain.SortDesc {
		v.Add("sort", "price,"+string(q.Sort.Price))
	}
	if q.Filter.MinPrice.Valid {
		v.Set("minPrice", q.Filter.MinPrice.Decimal.StringFixed(2))
	}
	if q.Filter.MaxPrice.Valid {
		v.Set("maxPrice", q.Filter.MaxPrice.Decimal.StringFixed(2))
	}
	if c := strings.TrimSpace(q.Filter.Category); c != "" && !strings.EqualFold(c, domain.CategoryAll) {
		v.Set("category", c)
	}
	if q.Filter.InStock {
		v.Set("inStock", "true")
	}
	return v
}
