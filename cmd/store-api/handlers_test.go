package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/mcruz-dev/clothing-store/internal/auth"
	"github.com/mcruz-dev/clothing-store/internal/catalog"
	"github.com/mcruz-dev/clothing-store/internal/order"
	"github.com/mcruz-dev/clothing-store/internal/stats"
)

//
// ---------- STUBS & FAKES ----------
//

// stubPlacer implements orderPlacer in memory.
type stubPlacer struct {
	receipt   *order.Receipt
	err       error
	gotIdent  auth.Identity
	gotItems  []order.ItemRequest
	callCount int
}

func (s *stubPlacer) PlaceOrder(ctx context.Context, ident auth.Identity, items []order.ItemRequest) (*order.Receipt, error) {
	s.callCount++
	s.gotIdent = ident
	s.gotItems = items
	if s.err != nil {
		return nil, s.err
	}
	return s.receipt, nil
}

type stubHistory struct {
	summaries []order.Summary
	nested    []order.OrderWithItems
}

func (s *stubHistory) ListOrders(ctx context.Context, customerID int64) ([]order.Summary, error) {
	return s.summaries, nil
}

func (s *stubHistory) ListOrdersWithItems(ctx context.Context, customerID int64) ([]order.OrderWithItems, error) {
	return s.nested, nil
}

type stubAuth struct {
	customer  *auth.Customer
	token     *auth.TokenResponse
	err       error
	deletedID int64
}

func (s *stubAuth) Register(ctx context.Context, req auth.RegisterRequest) (*auth.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.customer, nil
}

func (s *stubAuth) Login(ctx context.Context, req auth.LoginRequest) (*auth.TokenResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.token, nil
}

func (s *stubAuth) Delete(ctx context.Context, customerID int64) error {
	s.deletedID = customerID
	return s.err
}

type stubCatalog struct {
	categories []catalog.Category
	products   []catalog.Product
}

func (s *stubCatalog) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return s.categories, nil
}

func (s *stubCatalog) GetCategory(ctx context.Context, id int64) (*catalog.Category, error) {
	for _, c := range s.categories {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (s *stubCatalog) CreateCategory(ctx context.Context, name string) (*catalog.Category, error) {
	c := catalog.Category{ID: int64(len(s.categories) + 1), Name: name}
	s.categories = append(s.categories, c)
	return &c, nil
}

func (s *stubCatalog) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.products, nil
}

type stubStats struct {
	gotN    int
	gotDays int
}

func (s *stubStats) CustomerOrders(ctx context.Context) ([]stats.CustomerStats, error) {
	return []stats.CustomerStats{}, nil
}

func (s *stubStats) ProductOrders(ctx context.Context) ([]stats.ProductStats, error) {
	return []stats.ProductStats{}, nil
}

func (s *stubStats) TopProducts(ctx context.Context, n int) ([]stats.ProductStats, error) {
	s.gotN = n
	return []stats.ProductStats{}, nil
}

func (s *stubStats) RecentSales(ctx context.Context, days int) ([]stats.RecentSale, error) {
	s.gotDays = days
	return []stats.RecentSale{}, nil
}

func withIdentity(ident auth.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("identity", ident)
		c.Next()
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

//
// ---------- TESTS ----------
//

func TestPlaceOrder_HappyPath(t *testing.T) {
	t.Parallel()

	placer := &stubPlacer{receipt: &order.Receipt{
		OrderID:    101,
		CustomerID: 7,
		OrderDate:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Items: []order.ReceiptItem{{
			ProductID:   3,
			ProductName: "Denim Jacket",
			UnitPrice:   d("10.00"),
			Quantity:    3,
			LineTotal:   d("30.00"),
		}},
		OrderTotal: d("30.00"),
	}}

	r := gin.New()
	r.POST("/orders", withIdentity(auth.Identity{CustomerID: 7, Email: "a@b.c", Role: auth.RoleCustomer}), placeOrderHandler(placer))

	body := `{"items":[{"product_id":3,"quantity":3}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if placer.gotIdent.CustomerID != 7 {
		t.Fatalf("identity not forwarded: %+v", placer.gotIdent)
	}
	if len(placer.gotItems) != 1 || placer.gotItems[0].ProductID != 3 || *placer.gotItems[0].Quantity != 3 {
		t.Fatalf("items not forwarded: %+v", placer.gotItems)
	}

	var resp struct {
		OrderID    int64  `json:"order_id"`
		CustomerID int64  `json:"customer_id"`
		OrderTotal string `json:"order_total"`
		Items      []struct {
			ProductName string `json:"product_name"`
			LineTotal   string `json:"line_total"`
		} `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v body=%s", err, w.Body.String())
	}
	if resp.OrderID != 101 || resp.CustomerID != 7 {
		t.Fatalf("unexpected receipt: %+v", resp)
	}
	if resp.OrderTotal != "30.00" {
		t.Fatalf("order_total=%q, expected 30.00", resp.OrderTotal)
	}
	if len(resp.Items) != 1 || resp.Items[0].LineTotal != "30.00" {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}
}

func TestPlaceOrder_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid request", &order.InvalidRequestError{Reason: "order must contain at least one item"}, http.StatusBadRequest},
		{"insufficient stock", &order.InsufficientStockError{ProductID: 3, Name: "Denim Jacket", Stock: 2, Requested: 5}, http.StatusBadRequest},
		{"product not found", &order.ProductNotFoundError{ProductID: 99}, http.StatusNotFound},
		{"lock timeout", order.ErrLockTimeout, http.StatusConflict},
		{"unauthenticated", order.ErrUnauthenticated, http.StatusUnauthorized},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.POST("/orders", withIdentity(auth.Identity{CustomerID: 7, Role: auth.RoleCustomer}), placeOrderHandler(&stubPlacer{err: tt.err}))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(`{"items":[{"product_id":1,"quantity":1}]}`))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("status=%d, expected %d, body=%s", w.Code, tt.want, w.Body.String())
			}
			var resp struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Error == "" {
				t.Fatalf("expected error body, got %s", w.Body.String())
			}
		})
	}
}

func TestPlaceOrder_NoIdentity(t *testing.T) {
	t.Parallel()

	placer := &stubPlacer{}
	r := gin.New()
	r.POST("/orders", placeOrderHandler(placer))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(`{"items":[{"product_id":1,"quantity":1}]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if placer.callCount != 0 {
		t.Fatalf("service must not be called without identity")
	}
}

func TestListOrders_SummaryAndDetails(t *testing.T) {
	t.Parallel()

	history := &stubHistory{
		summaries: []order.Summary{{OrderID: 1, TotalPrice: d("41.00"), ItemCount: 2}},
		nested: []order.OrderWithItems{{
			OrderID: 1,
			Items: []order.HistoryItem{
				{OrderID: 1, ProductID: 1, ProductName: "Shirt", UnitPrice: d("10.00"), Quantity: 3, LineTotal: d("30.00")},
				{OrderID: 1, ProductID: 2, ProductName: "Cap", UnitPrice: d("5.50"), Quantity: 2, LineTotal: d("11.00")},
			},
			TotalPrice: d("41.00"),
		}},
	}

	r := gin.New()
	r.GET("/orders", withIdentity(auth.Identity{CustomerID: 7, Role: auth.RoleCustomer}), listOrdersHandler(history))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var summaries []struct {
		TotalPrice string `json:"total_price"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &summaries); err != nil || len(summaries) != 1 {
		t.Fatalf("summary body=%s err=%v", w.Body.String(), err)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders?details=true", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var nested []struct {
		TotalPrice string `json:"total_price"`
		Items      []struct {
			LineTotal string `json:"line_total"`
		} `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &nested); err != nil || len(nested) != 1 {
		t.Fatalf("nested body=%s err=%v", w.Body.String(), err)
	}
	if len(nested[0].Items) != 2 {
		t.Fatalf("items len=%d, expected 2", len(nested[0].Items))
	}

	// summary total must reconcile with the nested line totals
	sum := decimal.Zero
	for _, it := range nested[0].Items {
		sum = sum.Add(d(it.LineTotal))
	}
	if !sum.Equal(d(summaries[0].TotalPrice)) {
		t.Fatalf("nested sum=%s, summary total=%s", sum, summaries[0].TotalPrice)
	}
}

func TestRegister_Created(t *testing.T) {
	t.Parallel()

	svc := &stubAuth{customer: &auth.Customer{ID: 12, Email: "ana@example.com"}}
	r := gin.New()
	r.POST("/users/register", registerHandler(svc))

	body := `{"first_name":"Ana","last_name":"Cruz","email":"ana@example.com","password":"s3cret"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.POST("/users/register", registerHandler(&stubAuth{err: auth.ErrAlreadyExist}))

	body := `{"first_name":"Ana","last_name":"Cruz","email":"ana@example.com","password":"s3cret"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestRegister_StorageError(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.POST("/users/register", registerHandler(&stubAuth{err: errors.New("dial tcp: connection refused")}))

	body := `{"first_name":"Ana","last_name":"Cruz","email":"ana@example.com","password":"s3cret"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "refused") {
		t.Fatalf("leaked storage detail: %s", w.Body.String())
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.POST("/users/login", loginHandler(&stubAuth{err: auth.ErrInvalidCredentials}))

	body := `{"email":"ana@example.com","password":"wrong"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestDeleteUser_OK(t *testing.T) {
	t.Parallel()

	svc := &stubAuth{}
	r := gin.New()
	r.DELETE("/users/:id", deleteUserHandler(svc))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/12", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.deletedID != 12 {
		t.Fatalf("deletedID=%d", svc.deletedID)
	}
}

func TestGetCategory_NotFound(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.GET("/categories/:id", getCategoryHandler(&stubCatalog{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/categories/99", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestCreateCategory_MissingName(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.POST("/categories", createCategoryHandler(&stubCatalog{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/categories", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestListProducts_EmptyIsArray(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.GET("/products", listProductsHandler(&stubCatalog{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w.Body.String() != "[]" {
		t.Fatalf("expected empty array, got %s", w.Body.String())
	}
}

func TestTopProducts_QueryParam(t *testing.T) {
	t.Parallel()

	repo := &stubStats{}
	r := gin.New()
	r.GET("/stats/top-products", topProductsHandler(repo))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats/top-products?n=5", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if repo.gotN != 5 {
		t.Fatalf("n=%d, expected 5", repo.gotN)
	}
}

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}
