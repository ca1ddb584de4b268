// Package catalogdata embeds the storefront's static restaurant catalog.
package catalogdata

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/w24010/delightful/internal/domain"
)

//go:embed catalog.json
var raw []byte

// Catalog is the decoded catalog document.
type Catalog struct {
	Restaurants        []domain.Restaurant       `json:"restaurants"`
	FeaturedCategories []domain.FeaturedCategory `json:"featured_categories"`
}

// Load decodes the embedded catalog and checks that item IDs are unique
// across every menu, since cart lines are keyed by item ID alone.
func Load() (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	restaurants := make(map[string]struct{}, len(c.Restaurants))
	items := make(map[string]string)
	for _, r := range c.Restaurants {
		if _, dup := restaurants[r.ID]; dup {
			return nil, fmt.Errorf("duplicate restaurant id %q", r.ID)
		}
		restaurants[r.ID] = struct{}{}
		for _, item := range r.Menu {
			if owner, dup := items[item.ID]; dup {
				return nil, fmt.Errorf("menu item %q appears in %s and %s", item.ID, owner, r.ID)
			}
			items[item.ID] = r.ID
		}
	}

	for _, fc := range c.FeaturedCategories {
		if _, ok := restaurants[fc.RestaurantID]; !ok {
			return nil, fmt.Errorf("featured category %q points at unknown restaurant %q", fc.Name, fc.RestaurantID)
		}
	}
	return &c, nil
}
