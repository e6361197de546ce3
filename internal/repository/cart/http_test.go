package cart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/httputil"
)

func newTestRepo(t *testing.T, saveBody string) (Repository, *[]domain.CartLine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var saved []domain.CartLine
	r := gin.New()
	r.POST("/cart/add", func(c *gin.Context) {
		if err := c.BindJSON(&saved); err != nil {
			return
		}
		c.Data(http.StatusCreated, "text/plain", []byte(saveBody))
	})
	r.GET("/cart/:id", func(c *gin.Context) {
		if c.Param("id") != "abc123" {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "application/json", []byte(`[{"id":"1","name":"Pen","price":2.5,"quantity":2}]`))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewHTTP(httputil.New(httputil.Config{Service: "cart", BaseURL: srv.URL}), nil), &saved
}

func TestHTTP_SaveReturnsIdentity(t *testing.T) {
	repo, saved := newTestRepo(t, "abc123\n")
	id, err := repo.Save(context.Background(), []domain.CartLine{{ID: "1", Name: "Pen", Price: domain.MustPrice("2.5"), Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, domain.CartIdentity("abc123"), id)
	require.Len(t, *saved, 1)
	assert.Equal(t, 2, (*saved)[0].Quantity)
}

func TestHTTP_SaveEmptyIdentityRejected(t *testing.T) {
	repo, _ := newTestRepo(t, "  ")
	_, err := repo.Save(context.Background(), []domain.CartLine{{ID: "1", Quantity: 1}})
	assert.True(t, errors.Is(err, domain.ErrServiceRejected))
}

func TestHTTP_GetByID(t *testing.T) {
	repo, _ := newTestRepo(t, "x")
	lines, err := repo.GetByID(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "2.50", lines[0].Price.String())

	_, err = repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestParseIdentity(t *testing.T) {
	cases := map[string]domain.CartIdentity{
		`"q1w2"`:            "q1w2",
		`{"cartId":"c-9"}`:  "c-9",
		`{"id":"c-10"}`:     "c-10",
		" plain-text-id \n": "plain-text-id",
	}
	for in, want := range cases {
		got, err := parseIdentity([]byte(in))
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := parseIdentity([]byte(`""`))
	assert.Error(t, err)
}
