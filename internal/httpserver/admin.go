package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/service/admin"
)

func (h *handlers) adminListItems(c *gin.Context) {
	order, err := admin.ParseOrder(c.Query("sort"), c.Query("direction"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	// toggle applies a header click on top of the current order.
	if raw := c.Query("toggle"); raw != "" {
		column, err := admin.ParseColumn(raw)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		order = order.Toggle(column)
	}
	items, err := currentSession(c).Admin.List(c.Request.Context(), order)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "sort": order.Column, "direction": order.Direction})
}

func (h *handlers) adminCreateItem(c *gin.Context) {
	var req admin.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := currentSession(c).Admin.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *handlers) adminUpdateItem(c *gin.Context) {
	var req admin.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := currentSession(c).Admin.Update(c.Request.Context(), domain.ItemID(c.Param("id")), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *handlers) adminDeleteItem(c *gin.Context) {
	if err := currentSession(c).Admin.Delete(c.Request.Context(), domain.ItemID(c.Param("id"))); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
