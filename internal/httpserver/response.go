package httpserver

import (
	"time"

	"sahara-storefront/internal/domain"
	"sahara-storefront/internal/service/cart"
	"sahara-storefront/internal/service/catalog"
	"sahara-storefront/internal/service/pricing"
)

type catalogResponse struct {
	Query     domain.CatalogQuery  `json:"query"`
	Items     []domain.CatalogItem `json:"items"`
	Loaded    bool                 `json:"loaded"`
	Error     string               `json:"error,omitempty"`
	FetchedAt *time.Time           `json:"fetchedAt,omitempty"`
}

func toCatalogResponse(state catalog.State, loaded bool) catalogResponse {
	items := state.Items
	if items == nil {
		items = []domain.CatalogItem{}
	}
	resp := catalogResponse{Query: state.Query, Items: items, Loaded: loaded}
	if state.Err != nil {
		resp.Error = state.Err.Error()
	}
	if !state.FetchedAt.IsZero() {
		fetched := state.FetchedAt.UTC()
		resp.FetchedAt = &fetched
	}
	return resp
}

type cartLineResponse struct {
	domain.CartLine
	LineTotal   domain.Price `json:"lineTotal"`
	Display     string       `json:"display"`
	MaxQuantity *int         `json:"maxQuantity,omitempty"`
}

type cartResponse struct {
	CartID        string             `json:"cartId,omitempty"`
	Lines         []cartLineResponse `json:"lines"`
	TotalQuantity int                `json:"totalQuantity"`
	Summary       pricing.Summary    `json:"summary"`
	Display       cartDisplay        `json:"display"`
}

type cartDisplay struct {
	Subtotal      string `json:"subtotal"`
	ServiceCharge string `json:"serviceCharge"`
	Total         string `json:"total"`
}

// toCartResponse renders the cart table. stock bounds each line's quantity
// selector; lines whose item is not in the snapshot carry no bound.
func toCartResponse(snap cart.Snapshot, stock map[domain.ItemID]int) cartResponse {
	lines := make([]cartLineResponse, 0, len(snap.Lines))
	total := 0
	for _, l := range snap.Lines {
		lineTotal := pricing.LineTotal(l)
		row := cartLineResponse{CartLine: l, LineTotal: lineTotal, Display: pricing.Format(lineTotal)}
		if available, ok := stock[l.ID]; ok {
			row.MaxQuantity = &available
		}
		lines = append(lines, row)
		total += l.Quantity
	}
	summary := pricing.Calculate(snap.Lines)
	return cartResponse{
		CartID:        snap.Identity.String(),
		Lines:         lines,
		TotalQuantity: total,
		Summary:       summary,
		Display: cartDisplay{
			Subtotal:      pricing.Format(summary.Subtotal),
			ServiceCharge: pricing.Format(summary.ServiceCharge),
			Total:         pricing.Format(summary.Total),
		},
	}
}
