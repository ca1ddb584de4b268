package domain

import "time"

// Cart is the ordered ledger of items a session intends to buy.
// Lines keep first-insertion order and every line ID is unique.
type Cart struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// CartLine is one menu item in the cart. UnitPrice is in dollars.
type CartLine struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	UnitPrice      float64 `json:"unit_price"`
	Image          string  `json:"image"`
	RestaurantID   string  `json:"restaurant_id"`
	RestaurantName string  `json:"restaurant_name"`
	Quantity       int     `json:"quantity"`
}

// NewCart returns an empty cart for sessionID.
func NewCart(sessionID string, now time.Time) *Cart {
	return &Cart{
		SessionID: sessionID,
		Lines:     []CartLine{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LineFromMenuItem builds a cart line (quantity 0) for item sold by r.
func LineFromMenuItem(r *Restaurant, item MenuItem) CartLine {
	return CartLine{
		ID:             item.ID,
		Name:           item.Name,
		UnitPrice:      item.Price,
		Image:          item.Image,
		RestaurantID:   r.ID,
		RestaurantName: r.Name,
	}
}

func (c *Cart) indexOf(id string) int {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return i
		}
	}
	return -1
}

// AddItem increments the quantity of an existing line or appends line with quantity 1.
// The stored name and price of an existing line are left untouched.
func (c *Cart) AddItem(line CartLine) {
	if i := c.indexOf(line.ID); i >= 0 {
		c.Lines[i].Quantity++
		return
	}
	line.Quantity = 1
	c.Lines = append(c.Lines, line)
}

// UpdateQuantity sets the quantity of line id. A quantity of zero or less removes the line.
// An unknown id is a no-op.
func (c *Cart) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(id)
		return
	}
	if i := c.indexOf(id); i >= 0 {
		c.Lines[i].Quantity = quantity
	}
}

// RemoveItem deletes line id if present.
func (c *Cart) RemoveItem(id string) {
	if i := c.indexOf(id); i >= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = []CartLine{}
}

// Total is Σ unit price × quantity, unrounded.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// ItemCount is the sum of quantities.
func (c *Cart) ItemCount() int {
	var n int
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// ItemQuantity returns the quantity of line id, or 0.
func (c *Cart) ItemQuantity(id string) int {
	if i := c.indexOf(id); i >= 0 {
		return c.Lines[i].Quantity
	}
	return 0
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
