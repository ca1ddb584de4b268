package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func margherita() CartLine {
	return CartLine{ID: "1", Name: "Margherita Pizza", UnitPrice: 18.99, RestaurantID: "marios-italian", RestaurantName: "Mario's Italian Kitchen"}
}

func naan() CartLine {
	return CartLine{ID: "sg-12", Name: "Garlic Naan", UnitPrice: 4.99, RestaurantID: "spice-garden"}
}

// ============================================================================
// Cart.AddItem Tests
// ============================================================================

func TestAddItem_NewLineStartsAtOne(t *testing.T) {
	c := NewCart("sess-1", time.Now())
	line := margherita()
	line.Quantity = 7

	c.AddItem(line)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 1, c.Lines[0].Quantity)
}

func TestAddItem_ExistingLineIncrements(t *testing.T) {
	c := NewCart("sess-1", time.Now())
	c.AddItem(margherita())

	changed := margherita()
	changed.UnitPrice = 99
	c.AddItem(changed)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, 18.99, c.Lines[0].UnitPrice)
}

func TestAddItem_KeepsInsertionOrder(t *testing.T) {
	c := NewCart("sess-1", time.Now())
	c.AddItem(margherita())
	c.AddItem(naan())
	c.AddItem(margherita())

	require.Len(t, c.Lines, 2)
	assert.Equal(t, "1", c.Lines[0].ID)
	assert.Equal(t, "sg-12", c.Lines[1].ID)
}

// ============================================================================
// Cart.UpdateQuantity / RemoveItem / Clear Tests
// ============================================================================

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		quantity int
		want     map[string]int
	}{
		{"sets quantity", "1", 4, map[string]int{"1": 4, "sg-12": 1}},
		{"zero removes", "1", 0, map[string]int{"sg-12": 1}},
		{"negative removes", "sg-12", -3, map[string]int{"1": 1}},
		{"unknown id is a no-op", "nope", 5, map[string]int{"1": 1, "sg-12": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCart("sess-1", time.Now())
			c.AddItem(margherita())
			c.AddItem(naan())

			c.UpdateQuantity(tt.id, tt.quantity)

			got := map[string]int{}
			for _, l := range c.Lines {
				got[l.ID] = l.Quantity
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemoveItem(t *testing.T) {
	c := NewCart("sess-1", time.Now())
	c.AddItem(margherita())
	c.AddItem(naan())

	c.RemoveItem("1")
	c.RemoveItem("missing")

	require.Len(t, c.Lines, 1)
	assert.Equal(t, "sg-12", c.Lines[0].ID)
}

func TestClear(t *testing.T) {
	c := NewCart("sess-1", time.Now())
	c.AddItem(margherita())
	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.NotNil(t, c.Lines)
	assert.Equal(t, 0, c.ItemCount())
}

// ============================================================================
// Cart.Total / ItemCount / ItemQuantity Tests
// ============================================================================

func TestTotalsAndCounts(t *testing.T) {
	c := NewCart("sess-1", time.Now())
	c.AddItem(margherita())
	c.AddItem(margherita())
	c.AddItem(naan())

	assert.InDelta(t, 2*18.99+4.99, c.Total(), 1e-9)
	assert.Equal(t, 3, c.ItemCount())
	assert.Equal(t, 2, c.ItemQuantity("1"))
	assert.Equal(t, 0, c.ItemQuantity("absent"))
}

func TestTotal_EmptyCart(t *testing.T) {
	c := &Cart{}
	assert.Equal(t, 0.0, c.Total())
	assert.Equal(t, 0, c.ItemCount())
}

func TestLineFromMenuItem(t *testing.T) {
	r := &Restaurant{ID: "fresh-sushi", Name: "Fresh Sushi Bar"}
	line := LineFromMenuItem(r, MenuItem{ID: "fs-1", Name: "California Roll", Price: 12.99, Image: "/california-roll.png"})

	assert.Equal(t, CartLine{
		ID: "fs-1", Name: "California Roll", UnitPrice: 12.99, Image: "/california-roll.png",
		RestaurantID: "fresh-sushi", RestaurantName: "Fresh Sushi Bar",
	}, line)
}

// ============================================================================
// Cart operation order and removal equivalence
// ============================================================================

func sushiRoll() CartLine {
	return CartLine{ID: "fs-3", Name: "Dragon Roll", UnitPrice: 15.99, RestaurantID: "fresh-sushi"}
}

func curry() CartLine {
	return CartLine{ID: "sg-1", Name: "Butter Chicken", UnitPrice: 16.99, RestaurantID: "spice-garden"}
}

type cartOp struct {
	name  string
	apply func(c *Cart)
}

func permutations(ops []cartOp) [][]cartOp {
	if len(ops) <= 1 {
		return [][]cartOp{append([]cartOp(nil), ops...)}
	}
	var out [][]cartOp
	for i := range ops {
		rest := make([]cartOp, 0, len(ops)-1)
		rest = append(rest, ops[:i]...)
		rest = append(rest, ops[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]cartOp{ops[i]}, p...))
		}
	}
	return out
}

func TestCart_TotalIgnoresOperationOrder(t *testing.T) {
	ops := []cartOp{
		{"add naan", func(c *Cart) { c.AddItem(naan()) }},
		{"add naan", func(c *Cart) { c.AddItem(naan()) }},
		{"add pizza", func(c *Cart) { c.AddItem(margherita()) }},
		{"remove curry", func(c *Cart) { c.RemoveItem("sg-1") }},
		{"set sushi to 3", func(c *Cart) { c.UpdateQuantity("fs-3", 3) }},
		{"remove unknown", func(c *Cart) { c.RemoveItem("missing") }},
	}

	wantTotal := 2*18.99 + 2*4.99 + 3*15.99
	wantCount := 7

	orders := permutations(ops)
	require.Len(t, orders, 720)

	for _, order := range orders {
		c := NewCart("sess-1", time.Now())
		c.AddItem(margherita())
		c.AddItem(curry())
		c.AddItem(sushiRoll())

		names := make([]string, 0, len(order))
		for _, op := range order {
			op.apply(c)
			names = append(names, op.name)
		}

		assert.InDelta(t, wantTotal, c.Total(), 1e-9, "order: %v", names)
		assert.Equal(t, wantCount, c.ItemCount(), "order: %v", names)
		assert.Equal(t, 2, c.ItemQuantity("1"), "order: %v", names)
		assert.Equal(t, 2, c.ItemQuantity("sg-12"), "order: %v", names)
		assert.Equal(t, 3, c.ItemQuantity("fs-3"), "order: %v", names)
		assert.Zero(t, c.ItemQuantity("sg-1"), "order: %v", names)
	}
}

func TestCart_UpdateToZeroEqualsRemove(t *testing.T) {
	build := func() *Cart {
		c := NewCart("sess-1", time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
		c.AddItem(margherita())
		c.AddItem(margherita())
		c.AddItem(naan())
		c.AddItem(curry())
		return c
	}

	tests := []struct {
		name string
		id   string
	}{
		{"first line", "1"},
		{"middle line", "sg-12"},
		{"last line", "sg-1"},
		{"absent line", "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated := build()
			updated.UpdateQuantity(tt.id, 0)

			removed := build()
			removed.RemoveItem(tt.id)

			assert.Equal(t, removed, updated)
			assert.Equal(t, removed.Total(), updated.Total())
			assert.Equal(t, removed.ItemCount(), updated.ItemCount())
			assert.Zero(t, updated.ItemQuantity(tt.id))
		})
	}
}
