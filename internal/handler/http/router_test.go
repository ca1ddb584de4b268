package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w24010/delightful/internal/catalogdata"
	"github.com/w24010/delightful/internal/event"
	"github.com/w24010/delightful/internal/geo"
	"github.com/w24010/delightful/internal/repository/memory"
	redisrepo "github.com/w24010/delightful/internal/repository/redis"
	"github.com/w24010/delightful/internal/service"
	"github.com/w24010/delightful/pkg/health"
	"github.com/w24010/delightful/pkg/httputil"
	"github.com/w24010/delightful/pkg/middleware"
)

// ============================================================================
// Test helpers
// ============================================================================

const testSession = "sess-test"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testRouterConfig() RouterConfig {
	return RouterConfig{
		ServiceName:      "storefront-test",
		CORS:             middleware.DefaultCORSConfig(),
		CatalogMaxAge:    300,
		ProgressInterval: 5 * time.Millisecond,
	}
}

// setupRouter wires the production router over miniredis and the embedded catalog.
func setupRouter(t *testing.T, cfg RouterConfig) http.Handler {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	catalog, err := catalogdata.Load()
	require.NoError(t, err)

	logger := testLogger()
	producer := event.NewProducer(nil, logger)
	catalogRepo := memory.NewCatalogRepository(catalog)

	carts := service.NewCartService(redisrepo.NewCartRepository(client, time.Hour), catalogRepo, producer, logger, time.Hour)
	addresses := service.NewAddressService(redisrepo.NewAddressRepository(client, time.Hour),
		geo.ClientLocator{}, geo.PlaceholderGeocoder{}, geo.DefaultOptions(), producer, logger)

	return NewRouter(Services{
		Catalog:  service.NewCatalogService(catalogRepo, logger),
		Cart:     carts,
		Address:  addresses,
		Checkout: service.NewCheckoutService(carts, addresses, producer, logger, 0),
	}, health.NewHandler(), logger, cfg)
}

func doRequest(t *testing.T, h http.Handler, method, path, session string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(middleware.SessionIDHeader, session)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage         `json:"data"`
	Error *httputil.ErrorResponse `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.Nil(t, env.Error, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

type cartResponse struct {
	Cart struct {
		SessionID string `json:"session_id"`
		Lines     []struct {
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
		} `json:"lines"`
	} `json:"cart"`
	ItemCount int `json:"item_count"`
	Display   struct {
		Subtotal string `json:"subtotal"`
		Tax      string `json:"tax"`
		Total    string `json:"total"`
	} `json:"display"`
}

type addressBookResponse struct {
	Current *struct {
		Street  string `json:"street"`
		City    string `json:"city"`
		ZipCode string `json:"zip_code"`
		Country string `json:"country"`
	} `json:"current_address"`
	LocationEnabled bool   `json:"is_location_enabled"`
	Error           string `json:"error"`
}

func chicagoForm() map[string]string {
	return map[string]string{
		"street":   "1 Wacker Dr",
		"city":     "Chicago",
		"state":    "IL",
		"zip_code": "60601",
	}
}

// ============================================================================
// Health
// ============================================================================

func TestHealthLive(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ============================================================================
// Catalog
// ============================================================================

func TestListRestaurants(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/catalog/restaurants", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))

	var page struct {
		Data []struct {
			ID         string   `json:"id"`
			Categories []string `json:"categories"`
		} `json:"data"`
		TotalCount int `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 3, page.TotalCount)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "marios-italian", page.Data[0].ID)
	assert.Equal(t, "Pizza", page.Data[0].Categories[0])
}

func TestListRestaurants_FilterByCuisine(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/catalog/restaurants?cuisine=Indian", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
		TotalCount int `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, "spice-garden", page.Data[0].ID)
}

func TestGetRestaurant_NotFound(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/catalog/restaurants/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestGetMenu_DefaultsToFirstCategory(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/catalog/restaurants/marios-italian/menu", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Category string `json:"category"`
		Items    []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"items"`
	}
	decodeData(t, rec, &view)
	assert.Equal(t, "Pizza", view.Category)
	require.NotEmpty(t, view.Items)
	assert.Equal(t, "Margherita Pizza", view.Items[0].Name)
}

func TestGetMenu_BySlug(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/catalog/restaurants/spice-garden/menu?category=rice-and-biryani", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Category string `json:"category"`
		Slug     string `json:"category_slug"`
	}
	decodeData(t, rec, &view)
	assert.Equal(t, "Rice & Biryani", view.Category)
	assert.Equal(t, "rice-and-biryani", view.Slug)
}

func TestGetMenu_UnknownCategory(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/catalog/restaurants/marios-italian/menu?category=Tacos", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListFeaturedCategories(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/catalog/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var categories []struct {
		Name string `json:"name"`
	}
	decodeData(t, rec, &categories)
	require.Len(t, categories, 7)
	assert.Equal(t, "Pizza", categories[0].Name)
}

// ============================================================================
// Cart
// ============================================================================

func TestCart_RequiresSession(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestCart_EmptyCartIsPriced(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/cart", testSession, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var resp cartResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, 0, resp.ItemCount)
	assert.Equal(t, "4.98", resp.Display.Total)
}

func TestCart_AddUpdateRemove(t *testing.T) {
	router := setupRouter(t, testRouterConfig())
	add := map[string]string{"restaurant_id": "spice-garden", "item_id": "curry-1"}

	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", testSession, add)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp cartResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, 1, resp.ItemCount)
	assert.Equal(t, "23.48", resp.Display.Total)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/cart/items", testSession, add)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &resp)
	assert.Equal(t, 2, resp.ItemCount)
	require.Len(t, resp.Cart.Lines, 1)
	assert.Equal(t, "3.02", resp.Display.Tax)
	assert.Equal(t, "41.98", resp.Display.Total)

	rec = doRequest(t, router, http.MethodPut, "/api/v1/cart/items/curry-1", testSession, map[string]int{"quantity": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &resp)
	assert.Equal(t, 5, resp.ItemCount)

	rec = doRequest(t, router, http.MethodPut, "/api/v1/cart/items/curry-1", testSession, map[string]int{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &resp)
	assert.Equal(t, 0, resp.ItemCount)
	assert.Empty(t, resp.Cart.Lines)
}

func TestCart_RemoveAndClear(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", testSession,
		map[string]string{"restaurant_id": "marios-italian", "item_id": "1"})
	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", testSession,
		map[string]string{"restaurant_id": "fresh-sushi", "item_id": "roll-1"})

	rec := doRequest(t, router, http.MethodDelete, "/api/v1/cart/items/1", testSession, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp cartResponse
	decodeData(t, rec, &resp)
	require.Len(t, resp.Cart.Lines, 1)
	assert.Equal(t, "roll-1", resp.Cart.Lines[0].ID)

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/cart", testSession, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/cart", testSession, nil)
	decodeData(t, rec, &resp)
	assert.Equal(t, 0, resp.ItemCount)
}

func TestCart_SessionsAreIsolated(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "sess-a",
		map[string]string{"restaurant_id": "spice-garden", "item_id": "curry-2"})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/cart", "sess-b", nil)
	var resp cartResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, 0, resp.ItemCount)
}

func TestAddItem_Validation(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", testSession,
		map[string]string{"restaurant_id": "spice-garden"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "is required", env.Error.Fields["item_id"])
}

func TestAddItem_MalformedBody(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", testSession, `{"restaurant_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
}

func TestAddItem_UnknownItem(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", testSession,
		map[string]string{"restaurant_id": "spice-garden", "item_id": "roll-1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContentTypeJSON_Rejects(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader("restaurant_id=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(middleware.SessionIDHeader, testSession)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", env.Error.Code)
}

// ============================================================================
// Address
// ============================================================================

func TestAddress_SubmitGetClear(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodPut, "/api/v1/address", testSession, chicagoForm())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var book addressBookResponse
	decodeData(t, rec, &book)
	require.NotNil(t, book.Current)
	assert.Equal(t, "Chicago", book.Current.City)
	assert.Equal(t, "USA", book.Current.Country)
	assert.False(t, book.LocationEnabled)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/address", testSession, nil)
	decodeData(t, rec, &book)
	require.NotNil(t, book.Current)
	assert.Equal(t, "60601", book.Current.ZipCode)

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/address", testSession, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/address", testSession, nil)
	book = addressBookResponse{}
	decodeData(t, rec, &book)
	assert.Nil(t, book.Current)
}

func TestAddress_SubmitRejected(t *testing.T) {
	tests := []struct {
		name    string
		form    map[string]string
		message string
	}{
		{
			name:    "incomplete",
			form:    map[string]string{"street": "1 Wacker Dr", "city": "Chicago", "state": "IL"},
			message: "Please fill in all required fields",
		},
		{
			name:    "outside delivery area",
			form:    map[string]string{"street": "1 Main St", "city": "Boston", "state": "MA", "zip_code": "02108"},
			message: "Sorry, we don't deliver to this area yet. Please try a different address.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(t, testRouterConfig())

			rec := doRequest(t, router, http.MethodPut, "/api/v1/address", testSession, tt.form)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			env := decodeEnvelope(t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.message, env.Error.Message)
		})
	}
}

func TestAddress_Check(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/address/check", testSession, chicagoForm())
	require.Equal(t, http.StatusOK, rec.Code)
	var check service.DeliveryCheck
	decodeData(t, rec, &check)
	assert.True(t, check.Deliverable)

	form := chicagoForm()
	form["zip_code"] = "60699"
	rec = doRequest(t, router, http.MethodPost, "/api/v1/address/check", testSession, form)
	decodeData(t, rec, &check)
	assert.False(t, check.Deliverable)
	assert.NotEmpty(t, check.Message)
}

func TestAddress_LocateWithPosition(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	body := map[string]any{"position": map[string]float64{"lat": 40.7128, "lng": -74.006}}
	rec := doRequest(t, router, http.MethodPost, "/api/v1/address/locate", testSession, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var book addressBookResponse
	decodeData(t, rec, &book)
	require.NotNil(t, book.Current)
	assert.Equal(t, "123 Current Location St", book.Current.Street)
	assert.True(t, book.LocationEnabled)
	assert.Empty(t, book.Error)
}

func TestAddress_LocateFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		message string
	}{
		{"permission denied", map[string]string{"error_code": "permission-denied"}, "Location access denied by user"},
		{"timeout", map[string]string{"error_code": "timeout"}, "Location request timed out"},
		{"unrecognized code", map[string]string{"error_code": "gremlins"}, "Failed to get current location"},
		{"no position", nil, "Location information is unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(t, testRouterConfig())

			rec := doRequest(t, router, http.MethodPost, "/api/v1/address/locate", testSession, tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var book addressBookResponse
			decodeData(t, rec, &book)
			assert.Nil(t, book.Current)
			assert.Equal(t, tt.message, book.Error)
		})
	}
}

func TestAddress_LocateFailureKeepsSavedAddress(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	doRequest(t, router, http.MethodPut, "/api/v1/address", testSession, chicagoForm())
	rec := doRequest(t, router, http.MethodPost, "/api/v1/address/locate", testSession,
		map[string]string{"error_code": "position-unavailable"})
	require.Equal(t, http.StatusOK, rec.Code)

	var book addressBookResponse
	decodeData(t, rec, &book)
	require.NotNil(t, book.Current)
	assert.Equal(t, "Chicago", book.Current.City)
	assert.Equal(t, "Location information is unavailable", book.Error)
}

func TestAddress_LocateRateLimited(t *testing.T) {
	cfg := testRouterConfig()
	cfg.LocateLimiter = middleware.NewRateLimiter(0.001, 1, testLogger())
	t.Cleanup(cfg.LocateLimiter.Stop)
	router := setupRouter(t, cfg)

	body := map[string]string{"error_code": "timeout"}
	rec := doRequest(t, router, http.MethodPost, "/api/v1/address/locate", testSession, body)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/address/locate", testSession, body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

// ============================================================================
// Checkout
// ============================================================================

func TestCheckout_Summary(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/checkout", testSession, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary struct {
		PaymentMethods []struct {
			ID string `json:"id"`
		} `json:"payment_methods"`
		Ready bool `json:"ready"`
	}
	decodeData(t, rec, &summary)
	require.Len(t, summary.PaymentMethods, 3)
	assert.Equal(t, "card", summary.PaymentMethods[0].ID)
	assert.False(t, summary.Ready)

	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", testSession,
		map[string]string{"restaurant_id": "spice-garden", "item_id": "curry-1"})
	doRequest(t, router, http.MethodPut, "/api/v1/address", testSession, chicagoForm())

	rec = doRequest(t, router, http.MethodGet, "/api/v1/checkout", testSession, nil)
	decodeData(t, rec, &summary)
	assert.True(t, summary.Ready)
}

func TestCheckout_FormatCard(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/checkout/format", testSession,
		map[string]string{"number": "4242424242424242999", "expiry": "1227", "cvv": "12a34", "name": "Ada"})
	require.Equal(t, http.StatusOK, rec.Code)

	var card struct {
		Number string `json:"number"`
		Expiry string `json:"expiry"`
		CVV    string `json:"cvv"`
	}
	decodeData(t, rec, &card)
	assert.Equal(t, "4242 4242 4242 4242", card.Number)
	assert.Equal(t, "12/27", card.Expiry)
	assert.Equal(t, "1234", card.CVV)
}

func TestCheckout_ValidateCard(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/checkout/validate", testSession,
		map[string]string{"number": "4242", "expiry": "12/27", "cvv": "123", "name": "Ada"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Valid  bool              `json:"valid"`
		Errors map[string]string `json:"errors"`
	}
	decodeData(t, rec, &result)
	assert.False(t, result.Valid)
	assert.Equal(t, "Please enter a valid card number", result.Errors["number"])
	assert.Len(t, result.Errors, 1)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/checkout/orders", testSession,
		map[string]string{"payment_method": "apple"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, service.MsgCartEmpty, env.Error.Message)
}

func TestPlaceOrder_NoAddress(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", testSession,
		map[string]string{"restaurant_id": "spice-garden", "item_id": "curry-1"})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/checkout/orders", testSession,
		map[string]string{"payment_method": "google"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "Please add a delivery address", env.Error.Message)
}

func TestPlaceOrder_UnknownMethod(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/checkout/orders", testSession,
		map[string]string{"payment_method": "cash"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "must be one of: card apple google", env.Error.Fields["payment_method"])
}

func TestPlaceOrder_InvalidCard(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", testSession,
		map[string]string{"restaurant_id": "spice-garden", "item_id": "curry-1"})
	doRequest(t, router, http.MethodPut, "/api/v1/address", testSession, chicagoForm())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/checkout/orders", testSession, map[string]any{
		"payment_method": "card",
		"card":           map[string]string{"number": "4242 4242", "expiry": "1227", "cvv": "1", "name": " "},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "Please enter a valid card number", env.Error.Fields["number"])
	assert.Equal(t, "Please enter expiry date (MM/YY)", env.Error.Fields["expiry"])
	assert.Equal(t, "Please enter a valid CVV", env.Error.Fields["cvv"])
	assert.Equal(t, "Please enter cardholder name", env.Error.Fields["name"])

	// A rejected order leaves the cart alone.
	rec = doRequest(t, router, http.MethodGet, "/api/v1/cart", testSession, nil)
	var resp cartResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, 1, resp.ItemCount)
}

func TestPlaceOrder_Success(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	doRequest(t, router, http.MethodPost, "/api/v1/cart/items", testSession,
		map[string]string{"restaurant_id": "spice-garden", "item_id": "curry-1"})
	doRequest(t, router, http.MethodPut, "/api/v1/address", testSession, chicagoForm())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/checkout/orders", testSession, map[string]any{
		"payment_method": "card",
		"card":           map[string]string{"number": "4242 4242 4242 4242", "expiry": "12/27", "cvv": "123", "name": "Ada Lovelace"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var order struct {
		ID              string `json:"id"`
		FormattedTotal  string `json:"formatted_total"`
		ConfirmationURL string `json:"confirmation_url"`
	}
	decodeData(t, rec, &order)
	assert.Regexp(t, `^DL\d{6}$`, order.ID)
	assert.Equal(t, "23.48", order.FormattedTotal)
	assert.Equal(t, "/order-confirmation?orderId="+order.ID+"&total=23.48", order.ConfirmationURL)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/cart", testSession, nil)
	var resp cartResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, 0, resp.ItemCount)
}

// ============================================================================
// Orders
// ============================================================================

func TestGetConfirmation(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/orders/confirmation?orderId=DL123456&total=23.48", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var confirmation struct {
		OrderID  string `json:"order_id"`
		Total    string `json:"total"`
		Progress int    `json:"progress"`
		Stages   []struct {
			ID        string `json:"id"`
			Completed bool   `json:"completed"`
			Current   bool   `json:"current"`
		} `json:"stages"`
	}
	decodeData(t, rec, &confirmation)
	assert.Equal(t, "DL123456", confirmation.OrderID)
	assert.Equal(t, "23.48", confirmation.Total)
	assert.Equal(t, 25, confirmation.Progress)
	require.Len(t, confirmation.Stages, 5)
	assert.True(t, confirmation.Stages[0].Completed)
	assert.True(t, confirmation.Stages[1].Current)
	assert.False(t, confirmation.Stages[1].Completed)
}

func TestGetConfirmation_MissingOrderID(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/orders/confirmation", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListStages(t *testing.T) {
	router := setupRouter(t, testRouterConfig())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/orders/stages", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stages []struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	}
	decodeData(t, rec, &stages)
	require.Len(t, stages, 5)
	assert.Equal(t, "confirmed", stages[0].ID)
	assert.Equal(t, "Delivered", stages[4].Label)
}
