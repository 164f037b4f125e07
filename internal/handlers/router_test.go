package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/events"
	"storefront/internal/shop"
	"storefront/internal/store"
)

type testServer struct {
	router     *gin.Engine
	hub        *events.Hub
	uploads    string
	userToken  string
	adminToken string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	st := store.NewMemory()
	hub := events.NewHub()
	t.Cleanup(hub.Close)

	svc := shop.New(st, shop.WithPublisher(hub))
	seed, err := catalog.DefaultSeed()
	require.NoError(t, err)
	_, err = svc.SeedCategories(ctx, seed)
	require.NoError(t, err)

	authSvc := auth.NewService(st.Users, st.RefreshTokens, auth.Options{
		Secret:     "handler-secret",
		AccessTTL:  time.Hour,
		RefreshTTL: time.Hour,
		AdminKey:   "admin-key",
	})
	user, err := authSvc.Register(ctx, auth.RegisterInput{Name: "Shopper", Email: "shopper@example.com", Password: "secret123"})
	require.NoError(t, err)
	admin, err := authSvc.Register(ctx, auth.RegisterInput{Name: "Admin", Email: "admin@example.com", Password: "secret123", AdminKey: "admin-key"})
	require.NoError(t, err)

	uploads := t.TempDir()
	r := NewRouter(Deps{
		Shop:   svc,
		Auth:   authSvc,
		Hub:    hub,
		Images: ImageStore{Root: uploads},
	})
	return &testServer{
		router:     r,
		hub:        hub,
		uploads:    uploads,
		userToken:  user.AccessToken,
		adminToken: admin.AccessToken,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func (s *testServer) createProduct(t *testing.T, name string, price float64, stock int) string {
	t.Helper()
	w, body := s.do(t, http.MethodPost, "/api/admin/products", s.adminToken, gin.H{
		"name":        name,
		"description": name + " description",
		"price":       price,
		"discount":    10,
		"stock":       stock,
		"images":      []string{"/uploads/products/" + name + ".jpg"},
		"category":    "home",
		"subCategory": "decor",
		"brand":       "Acme",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return body["product"].(map[string]interface{})["id"].(string)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
}

func TestHealthReportsStorageFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", Health(func(context.Context) error { return errors.New("down") }))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "New", "email": "new@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	access := body["accessToken"].(string)
	refresh := body["refreshToken"].(string)

	w, body = s.do(t, http.MethodGet, "/api/auth/profile", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new@example.com", body["user"].(map[string]interface{})["email"])
	assert.NotContains(t, w.Body.String(), "passwordHash")

	w, _ = s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Dup", "email": "NEW@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "new@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, body["success"])

	w, body = s.do(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, w.Code)
	rotated := body["refreshToken"].(string)

	w, _ = s.do(t, http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/auth/logout", "", gin.H{"refreshToken": rotated})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPublicCatalog(t *testing.T) {
	s := newTestServer(t)
	id := s.createProduct(t, "Vase", 200, 3)
	s.createProduct(t, "Lamp", 50, 3)

	w, body := s.do(t, http.MethodGet, "/api/products?sortBy=price&sortOrder=asc&limit=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	products := body["products"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "Lamp", products[0].(map[string]interface{})["name"])
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["total"])
	assert.Equal(t, float64(2), pagination["pages"])

	w, body = s.do(t, http.MethodGet, "/api/products/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	product := body["product"].(map[string]interface{})
	assert.Equal(t, float64(180), product["finalPrice"])
	assert.Equal(t, "Home", product["categoryName"])

	w, _ = s.do(t, http.MethodGet, "/api/products/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/products/0123456789abcdef01234567", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, body = s.do(t, http.MethodGet, "/api/products?minPrice=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "minPrice", body["field"])

	w, body = s.do(t, http.MethodGet, "/api/products/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["categories"], 7)

	w, body = s.do(t, http.MethodGet, "/api/products/categories/clothing/subcategories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"Men", "Women", "Kids"}, body["subCategories"])
	w, _ = s.do(t, http.MethodGet, "/api/products/categories/garden/subcategories", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodPost, "/api/admin/products", s.userToken, gin.H{"name": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/admin/categories", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/orders/all", s.userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminProductValidation(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(t, http.MethodPost, "/api/admin/products", s.adminToken, gin.H{
		"name": "Shirt", "description": "d", "price": 10, "stock": 1,
		"images": []string{"a.jpg"}, "brand": "Acme",
		"category": "Clothing", "subCategory": "Unisex",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "subCategory", body["field"])

	id := s.createProduct(t, "Rug", 100, 5)
	w, body = s.do(t, http.MethodPut, "/api/admin/products/"+id, s.adminToken, gin.H{"discount": 50})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(50), body["product"].(map[string]interface{})["finalPrice"])

	w, _ = s.do(t, http.MethodDelete, "/api/admin/products/"+id, s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/products/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCategories(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(t, http.MethodPost, "/api/admin/categories", s.adminToken, gin.H{
		"name": "Garden", "subCategories": []string{"Tools", "Plants"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := body["category"].(map[string]interface{})["id"].(string)

	w, _ = s.do(t, http.MethodPost, "/api/admin/categories", s.adminToken, gin.H{"name": "garden"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/admin/categories/"+id, s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, body = s.do(t, http.MethodGet, "/api/products/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["categories"], 7)

	w, body = s.do(t, http.MethodGet, "/api/admin/categories", s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["categories"], 8)
}

func TestClothingRoutes(t *testing.T) {
	s := newTestServer(t)
	product := gin.H{
		"name": "Linen Shirt", "description": "d", "price": 40, "stock": 4,
		"images": []string{"a.jpg"}, "brand": "Acme",
	}

	w, body := s.do(t, http.MethodPost, "/api/admin/clothing", s.adminToken, product)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "gender", body["field"])

	product["gender"] = "women"
	w, body = s.do(t, http.MethodPost, "/api/admin/clothing", s.adminToken, product)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := body["product"].(map[string]interface{})["id"].(string)
	assert.Equal(t, "Women", body["product"].(map[string]interface{})["subCategory"])

	w, body = s.do(t, http.MethodGet, "/api/clothing/Women", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["count"])
	w, body = s.do(t, http.MethodGet, "/api/clothing/men", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), body["count"])

	w, body = s.do(t, http.MethodPut, "/api/admin/clothing/"+id, s.adminToken, gin.H{"gender": "Kids"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Kids", body["product"].(map[string]interface{})["subCategory"])

	w, body = s.do(t, http.MethodGet, "/api/admin/clothing", s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["count"])
}

func TestCartCheckoutAndOrders(t *testing.T) {
	s := newTestServer(t)
	id := s.createProduct(t, "Vase", 100, 2)

	w, body := s.do(t, http.MethodPost, "/api/cart/add", s.userToken, gin.H{"productId": id})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, body = s.do(t, http.MethodPost, "/api/cart/add", s.userToken, gin.H{"productId": id, "quantity": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "quantity", body["field"])

	w, body = s.do(t, http.MethodPut, "/api/cart/update", s.userToken, gin.H{"productId": id, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(180), body["cart"].(map[string]interface{})["totalAmount"])

	w, _ = s.do(t, http.MethodPut, "/api/admin/products/"+id, s.adminToken, gin.H{"stock": 1})
	require.Equal(t, http.StatusOK, w.Code)

	address := gin.H{"shippingAddress": gin.H{
		"name": "Asha", "phone": "555-0100", "address": "1 Main St",
		"city": "Pune", "state": "MH", "pincode": "411001",
	}}
	w, body = s.do(t, http.MethodPost, "/api/orders", s.userToken, address)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, id, body["productId"])
	assert.Equal(t, float64(1), body["available"])
	assert.Equal(t, float64(2), body["requested"])

	w, _ = s.do(t, http.MethodPut, "/api/cart/update", s.userToken, gin.H{"productId": id, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w, body = s.do(t, http.MethodPost, "/api/orders", s.userToken, gin.H{"shippingAddress": gin.H{"name": "Asha"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = s.do(t, http.MethodPost, "/api/orders", s.userToken, address)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := body["order"].(map[string]interface{})
	orderID := order["id"].(string)
	assert.Equal(t, float64(90), order["totalAmount"])
	assert.Equal(t, "pending", order["status"])

	w, body = s.do(t, http.MethodGet, "/api/cart", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["cart"].(map[string]interface{})["items"])

	w, body = s.do(t, http.MethodGet, "/api/orders", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["orders"], 1)

	w, _ = s.do(t, http.MethodGet, "/api/orders/"+orderID, s.userToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/orders/"+orderID, s.adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = s.do(t, http.MethodPut, "/api/orders/"+orderID+"/status", s.adminToken, gin.H{"status": "delivered"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w, body = s.do(t, http.MethodPut, "/api/admin/orders/"+orderID, s.adminToken, gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", body["order"].(map[string]interface{})["status"])

	w, body = s.do(t, http.MethodGet, "/api/admin/orders?status=confirmed", s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["orders"], 1)
	w, _ = s.do(t, http.MethodGet, "/api/orders/all?status=lost", s.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartRemoveAndClear(t *testing.T) {
	s := newTestServer(t)
	a := s.createProduct(t, "Vase", 100, 5)
	b := s.createProduct(t, "Lamp", 20, 5)

	s.do(t, http.MethodPost, "/api/cart/add", s.userToken, gin.H{"productId": a, "quantity": 2})
	s.do(t, http.MethodPost, "/api/cart/add", s.userToken, gin.H{"productId": b})

	w, body := s.do(t, http.MethodDelete, "/api/cart/remove/"+a, s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["cart"].(map[string]interface{})["items"], 1)

	w, _ = s.do(t, http.MethodPut, "/api/cart/update", s.userToken, gin.H{"productId": a})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = s.do(t, http.MethodPost, "/api/cart/add", s.userToken, gin.H{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "productId", body["field"])
	w, body = s.do(t, http.MethodPut, "/api/cart/update", s.userToken, gin.H{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "productId", body["field"])
	w, body = s.do(t, http.MethodPost, "/api/wishlist/add", s.userToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "productId", body["field"])

	w, body = s.do(t, http.MethodDelete, "/api/cart/clear", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cart cleared successfully", body["message"])
}

func TestWishlistRoutes(t *testing.T) {
	s := newTestServer(t)
	id := s.createProduct(t, "Vase", 100, 5)

	w, body := s.do(t, http.MethodPost, "/api/wishlist/add", s.userToken, gin.H{"productId": id})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	s.do(t, http.MethodPost, "/api/wishlist/add", s.userToken, gin.H{"productId": id})

	w, body = s.do(t, http.MethodGet, "/api/wishlist", s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["wishlist"].(map[string]interface{})["products"], 1)

	w, _ = s.do(t, http.MethodPost, "/api/wishlist/add", s.userToken, gin.H{"productId": "0123456789abcdef01234567"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = s.do(t, http.MethodDelete, "/api/wishlist/remove/"+id, s.userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["wishlist"].(map[string]interface{})["products"])
}

func TestExportProducts(t *testing.T) {
	s := newTestServer(t)
	s.createProduct(t, "Vase", 100, 5)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/products/export", nil)
	req.Header.Set("Authorization", "Bearer "+s.adminToken)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "products.xlsx")

	file, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	rows := file.Sheets[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "Name", rows[0].Cells[1].Value)
	assert.Equal(t, "Vase", rows[1].Cells[1].Value)
	assert.Equal(t, "Home", rows[1].Cells[3].Value)
}

func TestUploadAndDeleteImage(t *testing.T) {
	s := newTestServer(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "photo.PNG")
	require.NoError(t, err)
	_, _ = part.Write([]byte("not really a png"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.adminToken)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var out struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.True(t, strings.HasPrefix(out.URL, "/uploads/products/"))
	require.True(t, strings.HasSuffix(out.URL, ".png"))
	stored := filepath.Join(s.uploads, "products", filepath.Base(out.URL))
	_, err = os.Stat(stored)
	require.NoError(t, err)

	served := httptest.NewRecorder()
	s.router.ServeHTTP(served, httptest.NewRequest(http.MethodGet, out.URL, nil))
	assert.Equal(t, http.StatusOK, served.Code)

	w2, _ := s.do(t, http.MethodDelete, "/api/admin/uploads?path=/uploads/../../etc/passwd", s.adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w2.Code)

	w2, _ = s.do(t, http.MethodDelete, "/api/admin/uploads?path="+out.URL, s.adminToken, nil)
	require.Equal(t, http.StatusOK, w2.Code)
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	s := newTestServer(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "script.sh")
	require.NoError(t, err)
	_, _ = part.Write([]byte("echo hi"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.adminToken)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported image type")
}

func TestOrderStreamDeliversEvents(t *testing.T) {
	s := newTestServer(t)
	id := s.createProduct(t, "Vase", 100, 5)

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/admin/orders/stream?token=" + s.adminToken
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.do(t, http.MethodPost, "/api/cart/add", s.userToken, gin.H{"productId": id})
	w, _ := s.do(t, http.MethodPost, "/api/orders", s.userToken, gin.H{"shippingAddress": gin.H{
		"name": "Asha", "phone": "555-0100", "address": "1 Main St",
		"city": "Pune", "state": "MH", "pincode": "411001",
	}})
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env events.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, events.EventOrderPlaced, env.EventType)
}

func TestOrderStreamRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/admin/orders/stream?token=" + s.userToken
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
