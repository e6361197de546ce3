package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/service/query"
	"sahara-storefront/internal/session"
)

type handlers struct {
	logger     logrus.FieldLogger
	categories []string
}

type searchRequest struct {
	Term string `json:"term"`
}

type sortRequest struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type filtersRequest struct {
	MinPrice string `json:"minPrice"`
	MaxPrice string `json:"maxPrice"`
	Category string `json:"category"`
	InStock  bool   `json:"inStock"`
}

func (h *handlers) listItems(c *gin.Context) {
	s := currentSession(c)
	s.WaitIdle()
	c.JSON(http.StatusOK, toCatalogResponse(s.Catalog.State(), s.Catalog.Loaded()))
}

func (h *handlers) getItem(c *gin.Context) {
	s := currentSession(c)
	s.WaitIdle()
	id := domain.ItemID(c.Param("id"))
	if item, ok := s.Catalog.Lookup(id); ok {
		c.JSON(http.StatusOK, item)
		return
	}
	// Not in the snapshot: the item may sit outside the current filters.
	item, err := s.Admin.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handlers) listCategories(c *gin.Context) {
	out := append([]string{domain.CategoryAll}, h.categories...)
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// refetch re-runs the last catalog fetch; the error indicator in the
// response reports whether it worked.
func (h *handlers) refetch(c *gin.Context) {
	s := currentSession(c)
	if _, err := s.Catalog.Refetch(c.Request.Context()); err != nil && !errors.Is(err, domain.ErrStaleResponse) {
		h.logger.WithError(err).WithField("session", s.ID).Debug("shop: refetch failed")
	}
	s.WaitIdle()
	c.JSON(http.StatusOK, toCatalogResponse(s.Catalog.State(), s.Catalog.Loaded()))
}

func (h *handlers) getQuery(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Query.Descriptor())
}

func (h *handlers) setSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s := currentSession(c)
	s.Query.SetSearchTerm(req.Term)
	h.respondCatalog(c, s)
}

func (h *handlers) clearSearch(c *gin.Context) {
	s := currentSession(c)
	s.Query.ClearSearch()
	h.respondCatalog(c, s)
}

func (h *handlers) setSort(c *gin.Context) {
	var req sortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s := currentSession(c)
	sort := domain.SortOptions{Name: domain.SortDirection(req.Name), Price: domain.SortDirection(req.Price)}
	if err := s.Query.SetSort(sort); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.respondCatalog(c, s)
}

func (h *handlers) clearSort(c *gin.Context) {
	s := currentSession(c)
	s.Query.ClearSort()
	h.respondCatalog(c, s)
}

func (h *handlers) setFilters(c *gin.Context) {
	var req filtersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	filters, err := query.ParseFilters(req.MinPrice, req.MaxPrice, req.Category, req.InStock)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	s := currentSession(c)
	if err := s.Query.SetFilters(filters); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.respondCatalog(c, s)
}

func (h *handlers) clearFilters(c *gin.Context) {
	s := currentSession(c)
	s.Query.ClearFilters()
	h.respondCatalog(c, s)
}

// respondCatalog waits for the fetch the descriptor change triggered so
// the response reflects it.
func (h *handlers) respondCatalog(c *gin.Context, s *session.Session) {
	s.WaitIdle()
	c.JSON(http.StatusOK, toCatalogResponse(s.Catalog.State(), s.Catalog.Loaded()))
}
