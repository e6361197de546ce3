package cart

import (
	"bytes"
	"context"
	"encoding/json"
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

// NewHTTP returns a Repository backed by the cart service.
func NewHTTP(client *httputil.Client, logger logrus.FieldLogger) Repository {
	return &httpRepo{client: client, logger: logging.OrDiscard(logger)}
}

func (r *httpRepo) Save(ctx context.Context, lines []domain.CartLine) (domain.CartIdentity, error) {
	raw, err := r.client.DoRaw(ctx, "save cart", http.MethodPost, "/cart/add", nil, lines)
	if err != nil {
		r.logger.Printf("cart repo: save lines=%d error=%v", len(lines), err)
		return "", err
	}
	id, err := parseIdentity(raw)
	if err != nil {
		return "", &domain.ServiceError{Service: r.client.Service(), Op: "save cart", StatusCode: http.StatusCreated, Body: err.Error()}
	}
	r.logger.Printf("cart repo: saved id=%s lines=%d", id, len(lines))
	return id, nil
}

func (r *httpRepo) GetByID(ctx context.Context, id domain.CartIdentity) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := r.client.Do(ctx, "get cart", http.MethodGet, "/cart/"+url.PathEscape(id.String()), nil, nil, &lines); err != nil {
		r.logger.Printf("cart repo: get id=%s error=%v", id, err)
		return nil, err
	}
	r.logger.Printf("cart repo: get id=%s lines=%d", id, len(lines))
	return lines, nil
}

// parseIdentity accepts a bare text body, a JSON string, or {"cartId": ...}.
func parseIdentity(raw []byte) (domain.CartIdentity, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", errors.New("empty cart id")
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", errors.Wrap(err, "decode cart id")
		}
		raw = []byte(s)
	case '{':
		var body struct {
			CartID string `json:"cartId"`
			ID     string `json:"id"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return "", errors.Wrap(err, "decode cart id")
		}
		raw = []byte(body.CartID)
		if body.CartID == "" {
			raw = []byte(body.ID)
		}
	}
	id := strings.TrimSpace(string(raw))
	if id == "" {
		return "", errors.New("empty cart id")
	}
	return domain.CartIdentity(id), nil
}
