package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory/internal/adapter/storage"
	"github.com/rl1809/inventory/internal/core/domain"
	"github.com/rl1809/inventory/internal/core/service"
)

type apiFixture struct {
	t      *testing.T
	server *httptest.Server
	mem    *storage.Memory

	adminToken   string
	managerToken string
	staffToken   string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	mem := storage.NewMemory()
	digester := service.SHA256Digester{}

	users := service.NewUserService(mem.Users(), digester)
	auth := service.NewAuthService(mem.Users(), digester, []byte("test-secret"), time.Minute)
	products := service.NewProductService(mem.Products())
	orders := service.NewOrderService(mem.Products(), mem.Orders(), nil, nil, "admin@example.com")
	reports := service.NewReportService(mem.Products(), mem.Orders())

	ctx := t.Context()
	require.NoError(t, users.EnsureAdmin(ctx, "admin", "admin123"))
	_, err := users.Create(ctx, "mandy", "manager123", domain.RoleManager)
	require.NoError(t, err)
	_, err = users.Create(ctx, "sam", "staff123", domain.RoleStaff)
	require.NoError(t, err)

	router := NewRouter(Handlers{
		Auth:      NewAuthHandler(auth),
		Products:  NewProductHandler(products, t.TempDir()),
		Orders:    NewOrderHandler(orders),
		Reports:   NewReportHandler(reports),
		Users:     NewUserHandler(users),
		MW:        NewMiddleware(auth),
		UploadDir: "",
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	f := &apiFixture{t: t, server: server, mem: mem}
	f.adminToken = f.login("admin", "admin123")
	f.managerToken = f.login("mandy", "manager123")
	f.staffToken = f.login("sam", "staff123")
	return f
}

func (f *apiFixture) login(username, password string) string {
	f.t.Helper()
	status, body := f.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(f.t, http.StatusOK, status, "login failed: %s", body)

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(f.t, json.Unmarshal(body, &resp))
	require.Equal(f.t, "bearer", resp.TokenType)
	return resp.AccessToken
}

func (f *apiFixture) do(method, path, token string, payload any) (int, []byte) {
	f.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(f.t, err)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.server.URL+path, body)
	require.NoError(f.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.server.Client().Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(f.t, err)
	return resp.StatusCode, data
}

func (f *apiFixture) createProduct(stock int, sku string) productResponse {
	f.t.Helper()
	status, body := f.do(http.MethodPost, "/api/products/", f.adminToken, map[string]any{
		"name":           "Widget " + sku,
		"price":          10.0,
		"stock_quantity": stock,
		"sku":            sku,
	})
	require.Equal(f.t, http.StatusOK, status, "create product failed: %s", body)
	var p productResponse
	require.NoError(f.t, json.Unmarshal(body, &p))
	return p
}

func detail(t *testing.T, body []byte) string {
	t.Helper()
	var resp detailResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Detail
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"healthy","database":"connected"}`, string(body))
}

func TestLogin_BadCredentials(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.NotEmpty(t, detail(t, body))
}

func TestAuthMe(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.do(http.MethodGet, "/api/auth/me", f.staffToken, nil)
	require.Equal(t, http.StatusOK, status)

	var me userResponse
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, "sam", me.Username)
	assert.Equal(t, "staff", me.Role)
	assert.ElementsMatch(t, domain.DefaultPermissions(domain.RoleStaff), me.Permissions)
}

func TestMissingAndInvalidToken(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.do(http.MethodGet, "/api/products/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Not authenticated", detail(t, body))

	status, _ = f.do(http.MethodGet, "/api/products/", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestProductCRUD(t *testing.T) {
	f := newAPIFixture(t)

	created := f.createProduct(30, "CRUD-1")
	assert.Equal(t, domain.DefaultLowStockThreshold, created.LowStockThreshold)

	status, body := f.do(http.MethodGet, "/api/products/"+created.ID, f.staffToken, nil)
	require.Equal(t, http.StatusOK, status)
	var got productResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "CRUD-1", got.SKU)

	status, body = f.do(http.MethodPut, "/api/products/"+created.ID, f.adminToken, map[string]any{
		"price": 12.5,
	})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 12.5, got.Price)
	assert.Equal(t, 30, got.StockQuantity, "unset fields remain unchanged")

	status, body = f.do(http.MethodGet, "/api/products/", f.staffToken, nil)
	require.Equal(t, http.StatusOK, status)
	var list []productResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)

	status, _ = f.do(http.MethodDelete, "/api/products/"+created.ID, f.adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = f.do(http.MethodGet, "/api/products/"+created.ID, f.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProductCreate_Validation(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.do(http.MethodPost, "/api/products/", f.adminToken, map[string]any{
		"price": 1.0,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "name and sku are required", detail(t, body))

	f.createProduct(5, "DUP-1")
	status, _ = f.do(http.MethodPost, "/api/products/", f.adminToken, map[string]any{
		"name": "Other",
		"sku":  "DUP-1",
	})
	assert.Equal(t, http.StatusBadRequest, status, "duplicate sku reports 400")
}

func TestOrderFlow(t *testing.T) {
	f := newAPIFixture(t)
	product := f.createProduct(10, "ORD-FLOW")

	status, body := f.do(http.MethodPost, "/api/orders/", f.staffToken, map[string]any{
		"customer_name":  "Alice",
		"customer_email": "alice@example.com",
		"items":          []map[string]any{{"product_id": product.ID, "quantity": 4}},
	})
	require.Equal(t, http.StatusOK, status, "place order failed: %s", body)

	var order orderResponse
	require.NoError(t, json.Unmarshal(body, &order))
	assert.Regexp(t, `^ORD-[0-9A-F]{8}$`, order.OrderNumber)
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, 40.0, order.TotalAmount)

	status, body = f.do(http.MethodGet, "/api/products/"+product.ID, f.staffToken, nil)
	require.Equal(t, http.StatusOK, status)
	var after productResponse
	require.NoError(t, json.Unmarshal(body, &after))
	assert.Equal(t, 6, after.StockQuantity)

	status, body = f.do(http.MethodPut, "/api/orders/"+order.ID+"/status", f.staffToken, map[string]any{
		"status": "shipped",
	})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &order))
	assert.Equal(t, "shipped", order.Status)

	status, body = f.do(http.MethodGet, "/api/orders/?status=shipped", f.staffToken, nil)
	require.Equal(t, http.StatusOK, status)
	var list []orderResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)

	status, body = f.do(http.MethodDelete, "/api/orders/"+order.ID, f.staffToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"Order deleted successfully"}`, string(body))

	// Shipped orders do not restock on delete.
	status, body = f.do(http.MethodGet, "/api/products/"+product.ID, f.staffToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &after))
	assert.Equal(t, 6, after.StockQuantity)
}

func TestOrderCreate_InsufficientStock(t *testing.T) {
	f := newAPIFixture(t)
	product := f.createProduct(5, "ORD-LOW")

	status, body := f.do(http.MethodPost, "/api/orders/", f.staffToken, map[string]any{
		"customer_name": "Alice",
		"items":         []map[string]any{{"product_id": product.ID, "quantity": 6}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t,
		fmt.Sprintf("insufficient stock for product %s. Available: 5, Requested: 6", product.Name),
		detail(t, body))
}

func TestReports_PermissionGate(t *testing.T) {
	f := newAPIFixture(t)
	f.createProduct(3, "REP-1")

	for _, path := range []string{
		"/api/reports/sales",
		"/api/reports/inventory",
		"/api/reports/dashboard-stats",
	} {
		status, _ := f.do(http.MethodGet, path, f.staffToken, nil)
		assert.Equal(t, http.StatusForbidden, status, "staff must not reach %s", path)

		status, _ = f.do(http.MethodGet, path, f.managerToken, nil)
		assert.Equal(t, http.StatusOK, status, "manager must reach %s", path)

		status, _ = f.do(http.MethodGet, path, f.adminToken, nil)
		assert.Equal(t, http.StatusOK, status, "admin must reach %s", path)
	}
}

func TestReports_InventoryContent(t *testing.T) {
	f := newAPIFixture(t)
	f.createProduct(0, "OOS-1")
	f.createProduct(4, "LOW-1")
	f.createProduct(50, "OK-1")

	status, body := f.do(http.MethodGet, "/api/reports/inventory", f.managerToken, nil)
	require.Equal(t, http.StatusOK, status)

	var resp inventorySummaryResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, 3, resp.TotalProducts)
	require.Len(t, resp.OutOfStockProducts, 1)
	assert.Equal(t, "OOS-1", resp.OutOfStockProducts[0].SKU)
	require.Len(t, resp.LowStockProducts, 1)
	assert.Equal(t, "LOW-1", resp.LowStockProducts[0].SKU)
}

func TestUserManagement(t *testing.T) {
	f := newAPIFixture(t)

	// Staff cannot create users.
	status, body := f.do(http.MethodPost, "/api/users/", f.staffToken, map[string]string{
		"username": "newbie", "password": "pw12345",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Only admins can create users", detail(t, body))

	// Managers cannot either, but they can list.
	status, _ = f.do(http.MethodPost, "/api/users/", f.managerToken, map[string]string{
		"username": "newbie", "password": "pw12345",
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = f.do(http.MethodPost, "/api/users/", f.adminToken, map[string]string{
		"username": "newbie", "password": "pw12345",
	})
	require.Equal(t, http.StatusOK, status, "admin create failed: %s", body)
	var created userResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "staff", created.Role, "role defaults to staff")

	status, body = f.do(http.MethodGet, "/api/users/", f.managerToken, nil)
	require.Equal(t, http.StatusOK, status)
	var list []userResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 4)

	status, _ = f.do(http.MethodGet, "/api/users/", f.staffToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Role updates take the role from the query string.
	status, body = f.do(http.MethodPut, "/api/users/"+created.ID+"/role?role=manager", f.adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"User role updated successfully"}`, string(body))

	status, body = f.do(http.MethodGet, "/api/users/", f.adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &list))
	for _, u := range list {
		if u.ID == created.ID {
			assert.Equal(t, "manager", u.Role)
			assert.ElementsMatch(t, domain.DefaultPermissions(domain.RoleManager), u.Permissions)
		}
	}

	status, _ = f.do(http.MethodPut, "/api/users/"+created.ID+"/role?role=manager", f.staffToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestUploadImage(t *testing.T) {
	f := newAPIFixture(t)
	product := f.createProduct(5, "IMG-1")

	var imgBuf bytes.Buffer
	require.NoError(t, png.Encode(&imgBuf, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="photo.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(imgBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/api/products/upload-image/"+product.ID, &body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+f.adminToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "upload failed: %s", data)

	var uploadResp map[string]string
	require.NoError(t, json.Unmarshal(data, &uploadResp))
	assert.Contains(t, uploadResp["image_url"], "/static/uploads/products/")

	status, body2 := f.do(http.MethodGet, "/api/products/"+product.ID, f.adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	var got productResponse
	require.NoError(t, json.Unmarshal(body2, &got))
	assert.Equal(t, uploadResp["image_url"], got.ImageURL)
}
