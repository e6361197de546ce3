package domain

// CartLine is one row of the cart. Name and price are captured when the
// item is first added and are not refreshed by later merges.
type CartLine struct {
	ID       ItemID `json:"id"`
	Name     string `json:"name"`
	Price    Price  `json:"price"`
	Quantity int    `json:"quantity"`
}

// Validate checks the per-line invariants.
func (l CartLine) Validate() error {
	if l.ID == "" {
		return Invalid("line id required")
	}
	if l.Quantity <= 0 {
		return Invalid("line %s: quantity must be positive", l.ID)
	}
	if l.Price.IsNegative() {
		return Invalid("line %s: price must not be negative", l.ID)
	}
	return nil
}

// CartIdentity names a cart persisted by the cart service. The zero value
// means the in-memory cart has never been saved or retrieved.
type CartIdentity string

func (c CartIdentity) IsZero() bool { return c == "" }

func (c CartIdentity) String() string { return string(c) }
