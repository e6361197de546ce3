package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/session"
)

type addLineRequest struct {
	ItemID   domain.ItemID `json:"itemId"`
	Quantity int           `json:"quantity"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *handlers) getCart(c *gin.Context) {
	h.respondCart(c, currentSession(c), http.StatusOK)
}

func (h *handlers) clearCart(c *gin.Context) {
	s := currentSession(c)
	s.Cart.Clear()
	h.respondCart(c, s, http.StatusOK)
}

func (h *handlers) addLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s := currentSession(c)
	s.WaitIdle()
	item, ok := s.Catalog.Lookup(req.ItemID)
	if !ok {
		writeError(c, h.logger, errors.Wrapf(domain.ErrNotFound, "item %s", req.ItemID))
		return
	}
	inCart := 0
	for _, l := range s.Cart.Lines() {
		if l.ID == item.ID {
			inCart = l.Quantity
		}
	}
	if req.Quantity > 0 && inCart+req.Quantity > item.Quantity {
		writeError(c, h.logger, domain.Invalid("only %d of %s in stock", item.Quantity, item.Name))
		return
	}
	if err := s.Cart.AddLine(item, req.Quantity); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.respondCart(c, s, http.StatusOK)
}

func (h *handlers) setLineQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Quantity == nil {
		writeError(c, h.logger, domain.Invalid("quantity required"))
		return
	}
	s := currentSession(c)
	id := domain.ItemID(c.Param("id"))
	if available, ok := s.Catalog.Stock()[id]; ok && *req.Quantity > available {
		writeError(c, h.logger, domain.Invalid("only %d in stock", available))
		return
	}
	if err := s.Cart.SetLineQuantity(id, *req.Quantity); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.respondCart(c, s, http.StatusOK)
}

func (h *handlers) removeLine(c *gin.Context) {
	s := currentSession(c)
	s.Cart.RemoveLine(domain.ItemID(c.Param("id")))
	h.respondCart(c, s, http.StatusOK)
}

func (h *handlers) saveCart(c *gin.Context) {
	s := currentSession(c)
	id, err := s.Cart.Save(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cartId": id.String()})
}

func (h *handlers) retrieveCart(c *gin.Context) {
	s := currentSession(c)
	if err := s.Cart.Retrieve(c.Request.Context(), domain.CartIdentity(c.Param("cartId"))); err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.respondCart(c, s, http.StatusOK)
}

func (h *handlers) respondCart(c *gin.Context, s *session.Session, status int) {
	c.JSON(status, toCartResponse(s.Cart.Snapshot(), s.Catalog.Stock()))
}
