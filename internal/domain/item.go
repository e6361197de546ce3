package domain

import (
	"encoding/json"
	"strings"
)

// ItemID is the catalog service's identifier. The item service issues
// numeric ids while the cart service stores them as strings, so both decode.
type ItemID string

func (id *ItemID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ItemID(n.String())
	return nil
}

func (id ItemID) String() string { return string(id) }

// CatalogItem is a read-only snapshot of an item owned by the catalog service.
type CatalogItem struct {
	ID       ItemID   `json:"id"`
	Name     string   `json:"name"`
	Price    Price    `json:"price"`
	Quantity int      `json:"quantity"`
	ImageURL string   `json:"imageUrl"`
	Category string   `json:"category,omitempty"`
	Color    string   `json:"color,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// InStock reports whether any units are available.
func (i CatalogItem) InStock() bool {
	return i.Quantity > 0
}

// SameName compares display names the way the admin panel detects duplicates.
func (i CatalogItem) SameName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(i.Name), strings.TrimSpace(name))
}
