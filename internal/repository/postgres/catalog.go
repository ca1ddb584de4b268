package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/w24010/delightful/internal/catalogdata"
	"github.com/w24010/delightful/internal/domain"
	"github.com/w24010/delightful/pkg/database"
	apperrors "github.com/w24010/delightful/pkg/errors"
)

const restaurantColumns = `id, name, cuisine, rating, reviews, delivery_time, delivery_fee, image, address`

const menuItemColumns = `id, restaurant_id, name, description, price, image, category, popular, spicy`

// CatalogRepository implements repository.CatalogRepository on PostgreSQL.
type CatalogRepository struct {
	pool database.DBTX
}

// NewCatalogRepository creates a new PostgreSQL-backed catalog repository.
func NewCatalogRepository(pool database.DBTX) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListRestaurants returns the restaurants matching filter with their menus.
func (r *CatalogRepository) ListRestaurants(ctx context.Context, filter domain.RestaurantFilter) (_ []domain.Restaurant, err error) {
	query := fmt.Sprintf(`
		SELECT %s FROM restaurants
		WHERE ($1 = '' OR lower(cuisine) = lower($1))
		  AND ($2 = '' OR strpos(lower(name), lower($2)) > 0)
		  AND ($3 = '' OR EXISTS (
		        SELECT 1 FROM menu_items m
		        WHERE m.restaurant_id = restaurants.id AND lower(m.category) = lower($3)))
		ORDER BY sort_order, id`, restaurantColumns)

	ctx, end := database.TraceQuery(ctx, "ListRestaurants", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, filter.Cuisine, filter.Query, filter.Category)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	defer rows.Close()

	var restaurants []domain.Restaurant
	for rows.Next() {
		var rest domain.Restaurant
		if err := scanRestaurant(rows, &rest); err != nil {
			return nil, fmt.Errorf("scan restaurant row: %w", err)
		}
		restaurants = append(restaurants, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate restaurant rows: %w", err)
	}
	if len(restaurants) == 0 {
		return []domain.Restaurant{}, nil
	}

	ids := make([]string, len(restaurants))
	for i := range restaurants {
		ids[i] = restaurants[i].ID
	}
	menus, err := r.loadMenus(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range restaurants {
		restaurants[i].Menu = menus[restaurants[i].ID]
	}
	return restaurants, nil
}

// GetRestaurant retrieves a restaurant and its menu by ID.
func (r *CatalogRepository) GetRestaurant(ctx context.Context, id string) (_ *domain.Restaurant, err error) {
	query := fmt.Sprintf(`SELECT %s FROM restaurants WHERE id = $1`, restaurantColumns)

	ctx, end := database.TraceQuery(ctx, "GetRestaurant", query)
	defer func() { end(err) }()

	var rest domain.Restaurant
	if err := scanRestaurant(r.pool.QueryRow(ctx, query, id), &rest); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("restaurant", id)
		}
		return nil, fmt.Errorf("get restaurant: %w", err)
	}

	menus, err := r.loadMenus(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	rest.Menu = menus[id]
	return &rest, nil
}

// ListFeaturedCategories returns the featured categories in display order.
func (r *CatalogRepository) ListFeaturedCategories(ctx context.Context) (_ []domain.FeaturedCategory, err error) {
	query := `SELECT name, image, restaurant_id, menu_category FROM featured_categories ORDER BY sort_order, name`

	ctx, end := database.TraceQuery(ctx, "ListFeaturedCategories", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list featured categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.FeaturedCategory{}
	for rows.Next() {
		var fc domain.FeaturedCategory
		if err := rows.Scan(&fc.Name, &fc.Image, &fc.RestaurantID, &fc.MenuCategory); err != nil {
			return nil, fmt.Errorf("scan featured category row: %w", err)
		}
		categories = append(categories, fc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate featured category rows: %w", err)
	}
	return categories, nil
}

func (r *CatalogRepository) loadMenus(ctx context.Context, restaurantIDs []string) (map[string][]domain.MenuItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM menu_items WHERE restaurant_id = ANY($1) ORDER BY restaurant_id, sort_order`, menuItemColumns)

	rows, err := r.pool.Query(ctx, query, restaurantIDs)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	menus := make(map[string][]domain.MenuItem, len(restaurantIDs))
	for rows.Next() {
		var (
			item         domain.MenuItem
			restaurantID string
		)
		if err := rows.Scan(
			&item.ID, &restaurantID, &item.Name, &item.Description, &item.Price,
			&item.Image, &item.Category, &item.Popular, &item.Spicy,
		); err != nil {
			return nil, fmt.Errorf("scan menu item row: %w", err)
		}
		menus[restaurantID] = append(menus[restaurantID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu item rows: %w", err)
	}
	return menus, nil
}

// Seed upserts the embedded catalog in one transaction so the database
// mirrors catalog.json after every start.
func (r *CatalogRepository) Seed(ctx context.Context, c *catalogdata.Catalog) (err error) {
	ctx, end := database.TraceQuery(ctx, "SeedCatalog", "INSERT ... ON CONFLICT DO UPDATE")
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	if err := seedTx(ctx, tx, c); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}
	return nil
}

func seedTx(ctx context.Context, tx pgx.Tx, c *catalogdata.Catalog) error {
	for i, rest := range c.Restaurants {
		if _, err := tx.Exec(ctx, `
			INSERT INTO restaurants (id, name, cuisine, rating, reviews, delivery_time, delivery_fee, image, address, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO UPDATE SET
			    name = EXCLUDED.name, cuisine = EXCLUDED.cuisine, rating = EXCLUDED.rating,
			    reviews = EXCLUDED.reviews, delivery_time = EXCLUDED.delivery_time,
			    delivery_fee = EXCLUDED.delivery_fee, image = EXCLUDED.image,
			    address = EXCLUDED.address, sort_order = EXCLUDED.sort_order`,
			rest.ID, rest.Name, rest.Cuisine, rest.Rating, rest.Reviews,
			rest.DeliveryTime, rest.DeliveryFee, rest.Image, rest.Address, i,
		); err != nil {
			return fmt.Errorf("upsert restaurant %s: %w", rest.ID, err)
		}

		for j, item := range rest.Menu {
			if _, err := tx.Exec(ctx, `
				INSERT INTO menu_items (id, restaurant_id, name, description, price, image, category, popular, spicy, sort_order)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				ON CONFLICT (id) DO UPDATE SET
				    restaurant_id = EXCLUDED.restaurant_id, name = EXCLUDED.name,
				    description = EXCLUDED.description, price = EXCLUDED.price,
				    image = EXCLUDED.image, category = EXCLUDED.category,
				    popular = EXCLUDED.popular, spicy = EXCLUDED.spicy, sort_order = EXCLUDED.sort_order`,
				item.ID, rest.ID, item.Name, item.Description, item.Price,
				item.Image, item.Category, item.Popular, item.Spicy, j,
			); err != nil {
				return fmt.Errorf("upsert menu item %s: %w", item.ID, err)
			}
		}
	}

	for i, fc := range c.FeaturedCategories {
		if _, err := tx.Exec(ctx, `
			INSERT INTO featured_categories (name, image, restaurant_id, menu_category, sort_order)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (name) DO UPDATE SET
			    image = EXCLUDED.image, restaurant_id = EXCLUDED.restaurant_id,
			    menu_category = EXCLUDED.menu_category, sort_order = EXCLUDED.sort_order`,
			fc.Name, fc.Image, fc.RestaurantID, fc.MenuCategory, i,
		); err != nil {
			return fmt.Errorf("upsert featured category %s: %w", fc.Name, err)
		}
	}

	return nil
}

func scanRestaurant(row pgx.Row, r *domain.Restaurant) error {
	return row.Scan(
		&r.ID, &r.Name, &r.Cuisine, &r.Rating, &r.Reviews,
		&r.DeliveryTime, &r.DeliveryFee, &r.Image, &r.Address,
	)
}
