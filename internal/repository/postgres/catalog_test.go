package postgres

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w24010/delightful/internal/catalogdata"
	"github.com/w24010/delightful/internal/domain"
	"github.com/w24010/delightful/pkg/database"
	apperrors "github.com/w24010/delightful/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var restaurantCols = []string{
	"id", "name", "cuisine", "rating", "reviews", "delivery_time", "delivery_fee", "image", "address",
}

var menuItemCols = []string{
	"id", "restaurant_id", "name", "description", "price", "image", "category", "popular", "spicy",
}

func spiceGardenRow() []any {
	return []any{"spice-garden", "Spice Garden", "Indian", 4.6, 890, "30-40 min", 1.99, "/indian.png", "456 Curry Lane"}
}

// ─── ListRestaurants ────────────────────────────────────────────────────────

func TestListRestaurants_WithMenus(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM restaurants").
		WithArgs("indian", "", "").
		WillReturnRows(pgxmock.NewRows(restaurantCols).AddRow(spiceGardenRow()...))
	mock.ExpectQuery("SELECT .+ FROM menu_items WHERE restaurant_id = ANY").
		WithArgs([]string{"spice-garden"}).
		WillReturnRows(pgxmock.NewRows(menuItemCols).
			AddRow("curry-1", "spice-garden", "Butter Chicken", "Creamy", 16.99, "/bc.png", "Curries", true, false).
			AddRow("curry-2", "spice-garden", "Lamb Vindaloo", "Hot", 19.99, "/lv.png", "Curries", false, true))

	got, err := repo.ListRestaurants(context.Background(), domain.RestaurantFilter{Cuisine: "indian"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Spice Garden", got[0].Name)
	assert.Equal(t, 890, got[0].Reviews)
	require.Len(t, got[0].Menu, 2)
	assert.True(t, got[0].Menu[1].Spicy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRestaurants_NoMatchSkipsMenuQuery(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM restaurants").
		WithArgs("", "burger", "").
		WillReturnRows(pgxmock.NewRows(restaurantCols))

	got, err := repo.ListRestaurants(context.Background(), domain.RestaurantFilter{Query: "burger"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRestaurants_QueryError(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM restaurants").
		WithArgs("", "", "").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.ListRestaurants(context.Background(), domain.RestaurantFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list restaurants")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─── GetRestaurant ──────────────────────────────────────────────────────────

func TestGetRestaurant_Found(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM restaurants WHERE id").
		WithArgs("spice-garden").
		WillReturnRows(pgxmock.NewRows(restaurantCols).AddRow(spiceGardenRow()...))
	mock.ExpectQuery("SELECT .+ FROM menu_items").
		WithArgs([]string{"spice-garden"}).
		WillReturnRows(pgxmock.NewRows(menuItemCols).
			AddRow("curry-1", "spice-garden", "Butter Chicken", "Creamy", 16.99, "/bc.png", "Curries", true, false))

	got, err := repo.GetRestaurant(context.Background(), "spice-garden")
	require.NoError(t, err)
	assert.Equal(t, "456 Curry Lane", got.Address)
	require.Len(t, got.Menu, 1)
	assert.Equal(t, 16.99, got.Menu[0].Price)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRestaurant_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM restaurants WHERE id").
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetRestaurant(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─── ListFeaturedCategories ─────────────────────────────────────────────────

func TestListFeaturedCategories(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	mock.ExpectQuery("SELECT name, image, restaurant_id, menu_category FROM featured_categories").
		WillReturnRows(pgxmock.NewRows([]string{"name", "image", "restaurant_id", "menu_category"}).
			AddRow("Pizza", "/pizza.png", "marios-italian", "Pizza").
			AddRow("Ramen", "/ramen.png", "fresh-sushi", "Ramen"))

	got, err := repo.ListFeaturedCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.FeaturedCategory{
		{Name: "Pizza", Image: "/pizza.png", RestaurantID: "marios-italian", MenuCategory: "Pizza"},
		{Name: "Ramen", Image: "/ramen.png", RestaurantID: "fresh-sushi", MenuCategory: "Ramen"},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─── Seed ───────────────────────────────────────────────────────────────────

func seedCatalog() *catalogdata.Catalog {
	return &catalogdata.Catalog{
		Restaurants: []domain.Restaurant{{
			ID: "fresh-sushi", Name: "Fresh Sushi Co.", Cuisine: "Japanese", Rating: 4.7, Reviews: 640,
			DeliveryTime: "20-30 min", DeliveryFee: 3.49, Image: "/sushi.png", Address: "789 Ocean Ave",
			Menu: []domain.MenuItem{
				{ID: "roll-1", Name: "California Roll", Price: 8.99, Category: "Sushi Rolls", Popular: true},
			},
		}},
		FeaturedCategories: []domain.FeaturedCategory{
			{Name: "Ramen", Image: "/ramen.png", RestaurantID: "fresh-sushi", MenuCategory: "Ramen"},
		},
	}
}

func TestSeed_UpsertsInOneTransaction(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO restaurants").
		WithArgs("fresh-sushi", "Fresh Sushi Co.", "Japanese", 4.7, 640, "20-30 min", 3.49, "/sushi.png", "789 Ocean Ave", 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO menu_items").
		WithArgs("roll-1", "fresh-sushi", "California Roll", "", 8.99, "", "Sushi Rolls", true, false, 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO featured_categories").
		WithArgs("Ramen", "/ramen.png", "fresh-sushi", "Ramen", 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Seed(context.Background(), seedCatalog()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeed_RollsBackOnFailure(t *testing.T) {
	mock := newMock(t)
	repo := NewCatalogRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO restaurants").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("relation \"restaurants\" does not exist"))
	mock.ExpectRollback()

	err := repo.Seed(context.Background(), seedCatalog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert restaurant fresh-sushi")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrations_Embedded(t *testing.T) {
	names, err := fs.Glob(Migrations(), "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_catalog.down.sql", "001_catalog.up.sql"}, names)
}

