package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"sbf/internal/handlers"
	"sbf/internal/middleware"
	"sbf/internal/models"
	"sbf/internal/repositories"
	"sbf/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbCounter int64

// setupApp wires the full app over a fresh in-memory SQLite database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.AuthToken{},
		&models.Category{},
		&models.Item{},
		&models.Cart{},
		&models.CartItem{},
	)
	require.NoError(t, err)

	userRepo := repositories.NewGORMUserRepository(db)
	tokenRepo := repositories.NewGORMTokenRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	itemRepo := repositories.NewGORMItemRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)

	authService := services.NewAuthService(userRepo, tokenRepo, 24*time.Hour)
	catalogService := services.NewCatalogService(categoryRepo, itemRepo)
	cartService := services.NewCartService(cartRepo, itemRepo, nil) // nil MQ client

	authHandler := handlers.NewAuthHandler(authService)
	itemHandler := handlers.NewItemHandler(catalogService)
	categoryHandler := handlers.NewCategoryHandler(catalogService)
	cartHandler := handlers.NewCartHandler(cartService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	protected := apiV1.Group("", middleware.AuthRequired(authService))

	authHandler.RegisterRoutes(apiV1)
	itemHandler.RegisterRoutes(apiV1, protected)
	categoryHandler.RegisterRoutes(apiV1, protected)
	cartHandler.RegisterRoutes(protected)

	return app
}

// TestMain suppresses logging during tests for cleaner output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var decoded map[string]interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			// List responses decode elsewhere; hand back nil here.
			decoded = nil
		}
	}
	return resp, decoded
}

func register(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token, ok := body["token"].(string)
	require.True(t, ok)
	require.Len(t, token, 64)
	return token
}

func createCategory(t *testing.T, app *fiber.App, token, name string) uint {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/categories", token, map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return uint(body["id"].(float64))
}

func createItem(t *testing.T, app *fiber.App, token, name, price string, categoryID uint) map[string]interface{} {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/items", token, map[string]interface{}{
		"item_name":     name,
		"price":         price,
		"item_category": categoryID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	register(t, app, "alice")

	// Registering the same username again fails with a conflict.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Login succeeds and reuses the issued token.
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])

	// Wrong password and unknown username are indistinguishable.
	respWrong, bodyWrong := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrongpassword",
	})
	respGhost, bodyGhost := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "nobody",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, respWrong.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, respGhost.StatusCode)
	assert.Equal(t, bodyWrong, bodyGhost)
}

func TestTokenTransport(t *testing.T) {
	app := setupApp(t)
	token := register(t, app, "alice")

	// No credentials at all.
	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Authorization header.
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Cookie fallback.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token})
	cookieResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, cookieResp.StatusCode)

	// A valid cookie does not rescue a bad header: header wins.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Token bogus")
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token})
	headerResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, headerResp.StatusCode)

	// Wrong scheme is malformed, not a fallback to the cookie-less path.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	bearerResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, bearerResp.StatusCode)
}

func TestItemSlugsAndPriceValidation(t *testing.T) {
	app := setupApp(t)
	token := register(t, app, "admin")
	categoryID := createCategory(t, app, token, "Apparel")

	first := createItem(t, app, token, "Cool Shirt", "19.99", categoryID)
	second := createItem(t, app, token, "Cool Shirt", "19.99", categoryID)
	assert.Equal(t, "cool-shirt", first["slug"])
	assert.Equal(t, "cool-shirt-1", second["slug"])
	assert.Equal(t, "19.99", first["price"])

	// Negative price is rejected at write time.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/items", token, map[string]interface{}{
		"item_name":     "Bad Deal",
		"price":         "-1.00",
		"item_category": categoryID,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Item reads are public.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	listResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, listResp.StatusCode)

	// Unknown item id is a 404.
	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/items/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCartAddRemoveClear(t *testing.T) {
	app := setupApp(t)
	token := register(t, app, "alice")
	categoryID := createCategory(t, app, token, "Stuff")
	createItem(t, app, token, "Item1", "10.00", categoryID)
	createItem(t, app, token, "Item2", "5.50", categoryID)

	// The spec scenario: Item1 x2 + Item2 x1 -> "25.50".
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/cart", token, map[string]interface{}{
		"slug": "item1", "quantity": 2,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/cart", token, map[string]interface{}{
		"slug": "item2", "quantity": 1,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "25.50", body["total_price"])

	// Repeat add increments the existing row instead of replacing it.
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/cart", token, map[string]interface{}{
		"slug": "item1", "quantity": 3,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 5, cartQuantity(t, body, "item1"))
	assert.Equal(t, "55.50", body["total_price"])

	// Adding an unknown slug is a 404; zero quantity is a 400.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/cart", token, map[string]interface{}{"slug": "ghost"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/cart", token, map[string]interface{}{
		"slug": "item1", "quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Removing an item works once, then fails.
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/cart", token, map[string]string{"slug": "item2"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/cart", token, map[string]string{"slug": "item2"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Clearing is idempotent, and an empty cart totals "0.00".
	resp, body = doJSON(t, app, http.MethodDelete, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0.00", body["total_price"])
	resp, body = doJSON(t, app, http.MethodDelete, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0.00", body["total_price"])
}

func TestCartReconcile(t *testing.T) {
	app := setupApp(t)
	token := register(t, app, "alice")
	categoryID := createCategory(t, app, token, "Stuff")
	itemA := uint(createItem(t, app, token, "Item A", "1.00", categoryID)["item_id"].(float64))
	itemB := uint(createItem(t, app, token, "Item B", "2.00", categoryID)["item_id"].(float64))
	itemC := uint(createItem(t, app, token, "Item C", "3.00", categoryID)["item_id"].(float64))

	// Current state {A:1, C:3}.
	doJSON(t, app, http.MethodPost, "/api/v1/cart", token, map[string]interface{}{"slug": "item-a", "quantity": 1})
	doJSON(t, app, http.MethodPost, "/api/v1/cart", token, map[string]interface{}{"slug": "item-c", "quantity": 3})

	// Desired {A:2, B:1}: A updated, B created, C deleted.
	resp, body := doJSON(t, app, http.MethodPut, "/api/v1/cart", token, map[string]interface{}{
		"cart_items": []map[string]interface{}{
			{"item_id": itemA, "quantity": 2},
			{"item_id": itemB, "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, cartQuantity(t, body, "item-a"))
	assert.Equal(t, 1, cartQuantity(t, body, "item-b"))
	assert.Equal(t, 0, cartQuantity(t, body, "item-c"))
	assert.Len(t, body["cart_items"], 2)
	assert.Equal(t, "4.00", body["total_price"])

	// A zero quantity rejects the whole batch; the cart is untouched.
	resp, _ = doJSON(t, app, http.MethodPut, "/api/v1/cart", token, map[string]interface{}{
		"cart_items": []map[string]interface{}{
			{"item_id": itemA, "quantity": 5},
			{"item_id": itemC, "quantity": 0},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, cartQuantity(t, body, "item-a"))
	assert.Equal(t, 1, cartQuantity(t, body, "item-b"))
	assert.Equal(t, "4.00", body["total_price"])

	// An empty desired set empties the cart.
	resp, body = doJSON(t, app, http.MethodPut, "/api/v1/cart", token, map[string]interface{}{
		"cart_items": []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0.00", body["total_price"])
}

func TestCategoryCascadeDelete(t *testing.T) {
	app := setupApp(t)
	token := register(t, app, "admin")
	categoryID := createCategory(t, app, token, "Doomed")
	item := createItem(t, app, token, "Casualty", "9.99", categoryID)
	itemID := uint(item["item_id"].(float64))

	// The item sits in a cart; the cascade must clean that row up too.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/cart", token, map[string]interface{}{"slug": item["slug"]})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/categories/%d", categoryID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/items/%d", itemID), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["cart_items"], 0)
}

// cartQuantity returns the quantity of the line whose item has the slug, or
// 0 when the cart does not hold it.
func cartQuantity(t *testing.T, cartBody map[string]interface{}, slug string) int {
	t.Helper()
	lines, ok := cartBody["cart_items"].([]interface{})
	require.True(t, ok)
	for _, raw := range lines {
		line := raw.(map[string]interface{})
		item := line["item"].(map[string]interface{})
		if item["slug"] == slug {
			return int(line["quantity"].(float64))
		}
	}
	return 0
}
