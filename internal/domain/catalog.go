package domain

import "strings"

// Restaurant is a catalog entry with its full menu.
type Restaurant struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Cuisine      string     `json:"cuisine"`
	Rating       float64    `json:"rating"`
	Reviews      int        `json:"reviews"`
	DeliveryTime string     `json:"delivery_time"`
	DeliveryFee  float64    `json:"delivery_fee"`
	Image        string     `json:"image"`
	Address      string     `json:"address"`
	Menu         []MenuItem `json:"menu,omitempty"`
}

// MenuItem is a dish offered by a restaurant.
type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Popular     bool    `json:"popular,omitempty"`
	Spicy       bool    `json:"spicy,omitempty"`
}

// FeaturedCategory is a home page shortcut into one restaurant's menu section.
type FeaturedCategory struct {
	Name         string `json:"name"`
	Image        string `json:"image"`
	RestaurantID string `json:"restaurant_id"`
	MenuCategory string `json:"menu_category"`
}

// RestaurantFilter narrows a restaurant listing. Empty fields match everything.
type RestaurantFilter struct {
	Cuisine  string
	Query    string
	Category string
}

// Categories returns the menu categories in first-appearance order.
func (r *Restaurant) Categories() []string {
	seen := make(map[string]struct{}, 8)
	var out []string
	for _, item := range r.Menu {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	return out
}

// ItemsInCategory returns the items of category in menu order.
func (r *Restaurant) ItemsInCategory(category string) []MenuItem {
	var out []MenuItem
	for _, item := range r.Menu {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}

// FindItem looks up a menu item by ID.
func (r *Restaurant) FindItem(id string) (MenuItem, bool) {
	for _, item := range r.Menu {
		if item.ID == id {
			return item, true
		}
	}
	return MenuItem{}, false
}

// HasCategory reports whether any menu item belongs to category (case-insensitive).
func (r *Restaurant) HasCategory(category string) bool {
	for _, item := range r.Menu {
		if strings.EqualFold(item.Category, category) {
			return true
		}
	}
	return false
}

// Matches reports whether the restaurant satisfies every non-empty filter field.
// Cuisine and category compare case-insensitively; Query is a substring match on the name.
func (f RestaurantFilter) Matches(r *Restaurant) bool {
	if f.Cuisine != "" && !strings.EqualFold(r.Cuisine, f.Cuisine) {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(strings.TrimSpace(f.Query))) {
		return false
	}
	if f.Category != "" && !r.HasCategory(f.Category) {
		return false
	}
	return true
}
