package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository/memory"
	cartsvc "storefront/internal/service/cart"
	"storefront/internal/service/catalog"
	checkoutsvc "storefront/internal/service/checkout"
	"storefront/internal/service/dashboard"
	ordersvc "storefront/internal/service/order"
	"storefront/internal/service/user"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const testPassword = "Abcdefg1"

type testEnv struct {
	store  *memory.Store
	users  *user.Service
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	users := user.New(store.Users(), store.Tokens(), time.Hour, nil)
	cat := catalog.New(store.Products(), store.Categories(), nil)
	deps := Deps{
		Auth:      users,
		Catalog:   cat,
		Cart:      cartsvc.New(store.Carts(), cat, nil),
		Checkout:  checkoutsvc.New(store.Checkout(), store.Users(), nil, nil),
		Orders:    ordersvc.New(store.Orders(), nil, nil),
		Dashboard: dashboard.New(store.Categories(), store.Products(), store.Users(), store.Orders()),
	}
	ping := PingFunc(func(context.Context) error { return nil })
	router := buildRouter(zap.NewNop(), ping, deps, Options{})
	gin.SetMode(gin.TestMode)
	return &testEnv{store: store, users: users, router: router}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/login", "", `{"email":"`+email+`","password":"`+testPassword+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, rec, &resp)
	return resp.AccessToken
}

func (e *testEnv) customer(t *testing.T, email string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/signup", "", `{"name":"Ann","email":"`+email+`","password":"`+testPassword+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	return e.login(t, email)
}

func (e *testEnv) admin(t *testing.T) string {
	t.Helper()
	if _, err := e.users.EnsureAdmin(context.Background(), user.SignupInput{Name: "Root", Email: "admin@example.com", Password: testPassword}); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	return e.login(t, "admin@example.com")
}

// product creates a category and a product priced at price through the admin API.
func (e *testEnv) product(t *testing.T, adminToken, price string) domain.Product {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/admin/categories", adminToken, `{"name":"cat-`+price+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: status %d body %s", rec.Code, rec.Body.String())
	}
	var cat domain.Category
	decode(t, rec, &cat)

	body, _ := json.Marshal(map[string]any{"name": "item " + price, "categoryId": cat.ID, "price": price})
	rec = e.do(t, http.MethodPut, "/admin/products", adminToken, string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert product: status %d body %s", rec.Code, rec.Body.String())
	}
	var p domain.Product
	decode(t, rec, &p)
	return p
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	decode(t, rec, &body)
	return body.Code
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(t, http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/readyz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("readyz: expected 200, got %d", rec.Code)
	}
	rec := env.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestReady_Unavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/readyz", readyHandler(PingFunc(func(context.Context) error { return errors.New("down") })))
	router.GET("/nodb", readyHandler(nil))

	for _, path := range []string{"/readyz", "/nodb"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: expected 503, got %d", path, rec.Code)
		}
	}
}

func TestAuth_RejectsMissingAndUnknownTokens(t *testing.T) {
	env := newTestEnv(t)
	if rec := env.do(t, http.MethodGet, "/cart", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/cart", "nope", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown token: expected 401, got %d", rec.Code)
	}
}

func TestAuth_SignupLoginLogout(t *testing.T) {
	env := newTestEnv(t)
	token := env.customer(t, "ann@example.com")

	rec := env.do(t, http.MethodGet, "/me", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/auth/signup", "", `{"name":"Ann","email":"ANN@example.com","password":"`+testPassword+`"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: expected 409, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/auth/login", "", `{"email":"ann@example.com","password":"Wrong1234"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", rec.Code)
	}

	if rec := env.do(t, http.MethodPost, "/auth/logout", token, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/me", token, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: expected 401, got %d", rec.Code)
	}
}

func TestSignup_WeakPassword(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/auth/signup", "", `{"name":"Ann","email":"ann@example.com","password":"short"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body errorBody
	decode(t, rec, &body)
	if body.Field != "password" {
		t.Fatalf("expected field password, got %q", body.Field)
	}
}

func TestAdmin_ForbiddenForCustomers(t *testing.T) {
	env := newTestEnv(t)
	token := env.customer(t, "ann@example.com")
	for _, path := range []string{"/admin/dashboard", "/admin/users", "/admin/orders/board"} {
		if rec := env.do(t, http.MethodGet, path, token, ""); rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403, got %d", path, rec.Code)
		}
	}
}

func TestCartCheckoutAndFulfillment(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.admin(t)
	p10 := env.product(t, adminToken, "10.00")
	p5 := env.product(t, adminToken, "5.50")
	token := env.customer(t, "ann@example.com")

	if rec := env.do(t, http.MethodPost, "/cart/items", token, `{"productId":"`+p10.ID+`","quantity":2}`); rec.Code != http.StatusCreated {
		t.Fatalf("add item: expected 201, got %d body %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodPost, "/cart/items", token, `{"productId":"`+p5.ID+`","quantity":1}`); rec.Code != http.StatusCreated {
		t.Fatalf("add item: expected 201, got %d", rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/cart", token, "")
	var cart cartResponse
	decode(t, rec, &cart)
	if len(cart.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(cart.Lines))
	}
	if !cart.Total.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("expected total 25.50, got %s", cart.Total)
	}

	checkoutBody := `{"total":"25.50","contact":{"name":"Ann","lastName":"Lee","country":"NL","city":"Delft","email":"ann@example.com","phone":"+31 6 1234"}}`
	rec = env.do(t, http.MethodPost, "/checkout", token, checkoutBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d body %s", rec.Code, rec.Body.String())
	}
	var order domain.Order
	decode(t, rec, &order)
	if order.Status != domain.OrderStatusOpen || !order.TotalPrice.Equal(decimal.RequireFromString("25.50")) {
		t.Fatalf("unexpected order %+v", order)
	}

	rec = env.do(t, http.MethodGet, "/cart", token, "")
	decode(t, rec, &cart)
	if len(cart.Lines) != 0 || !cart.Total.IsZero() {
		t.Fatalf("expected empty cart after checkout, got %+v", cart)
	}

	rec = env.do(t, http.MethodGet, "/me/orders", token, "")
	var mine struct {
		Results []domain.Order `json:"results"`
	}
	decode(t, rec, &mine)
	if len(mine.Results) != 1 || mine.Results[0].ID != order.ID {
		t.Fatalf("expected own order in /me/orders, got %+v", mine.Results)
	}

	rec = env.do(t, http.MethodPatch, "/admin/orders/"+itoa(order.ID)+"/status", adminToken, `{"status":"inprogress"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("transition: expected 200, got %d body %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &order)
	if order.Status != domain.OrderStatusInProgress {
		t.Fatalf("expected INPROGRESS, got %s", order.Status)
	}

	rec = env.do(t, http.MethodGet, "/admin/orders/board", adminToken, "")
	var board map[domain.OrderStatus][]domain.Order
	decode(t, rec, &board)
	if len(board[domain.OrderStatusOpen]) != 0 || len(board[domain.OrderStatusInProgress]) != 1 {
		t.Fatalf("unexpected board %+v", board)
	}

	rec = env.do(t, http.MethodGet, "/admin/dashboard", adminToken, "")
	var sum dashboard.Summary
	decode(t, rec, &sum)
	if sum.Orders != 1 || sum.Products != 2 || sum.Users != 2 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestCheckout_EmptyCartAndStaleTotal(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.admin(t)
	p := env.product(t, adminToken, "3.00")
	token := env.customer(t, "ann@example.com")
	contact := `"contact":{"name":"Ann","lastName":"Lee","country":"NL","city":"Delft","email":"ann@example.com","phone":"1"}`

	rec := env.do(t, http.MethodPost, "/checkout", token, `{"total":"0",`+contact+`}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "empty_cart" {
		t.Fatalf("empty cart: got %d %s", rec.Code, rec.Body.String())
	}

	env.do(t, http.MethodPost, "/cart/items", token, `{"productId":"`+p.ID+`","quantity":1}`)
	rec = env.do(t, http.MethodPost, "/checkout", token, `{"total":"2.99",`+contact+`}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "total_mismatch" {
		t.Fatalf("stale total: got %d %s", rec.Code, rec.Body.String())
	}
}

func TestCheckout_CartClearFailure(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.admin(t)
	p := env.product(t, adminToken, "3.00")
	token := env.customer(t, "ann@example.com")
	env.do(t, http.MethodPost, "/cart/items", token, `{"productId":"`+p.ID+`","quantity":1}`)
	env.store.SetFault(memory.FaultCartClear)

	rec := env.do(t, http.MethodPost, "/checkout", token, `{"total":"3.00","contact":{"name":"Ann","lastName":"Lee","country":"NL","city":"Delft","email":"ann@example.com","phone":"1"}}`)
	if rec.Code != http.StatusInternalServerError || errorCode(t, rec) != "cart_clear_failed" {
		t.Fatalf("expected cart_clear_failed, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRemoveCartItem_OwnerScoped(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.admin(t)
	p := env.product(t, adminToken, "1.00")
	ann := env.customer(t, "ann@example.com")
	bob := env.customer(t, "bob@example.com")

	rec := env.do(t, http.MethodPost, "/cart/items", ann, `{"productId":"`+p.ID+`","quantity":1}`)
	var item domain.CartItem
	decode(t, rec, &item)

	if rec := env.do(t, http.MethodDelete, "/cart/items/"+itoa(item.ID), bob, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign delete: expected 404, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/cart/items/abc", ann, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/cart/items/"+itoa(item.ID), ann, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("own delete: expected 204, got %d", rec.Code)
	}
}

func TestAddCartItem_Validation(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.admin(t)
	p := env.product(t, adminToken, "1.00")
	token := env.customer(t, "ann@example.com")

	if rec := env.do(t, http.MethodPost, "/cart/items", token, `{"productId":"`+p.ID+`","quantity":0}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("zero quantity: expected 400, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/cart/items", token, `{"productId":"00000000-0000-0000-0000-000000000000","quantity":1}`); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown product: expected 404, got %d", rec.Code)
	}
}

func TestStorefront(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.admin(t)
	p := env.product(t, adminToken, "4.00")
	env.product(t, adminToken, "6.00")

	rec := env.do(t, http.MethodGet, "/storefront?categoryId="+itoa(p.CategoryID), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("storefront: expected 200, got %d", rec.Code)
	}
	var view catalog.StorefrontView
	decode(t, rec, &view)
	if len(view.Products) != 1 || view.AllCount != 2 || len(view.Categories) != 2 {
		t.Fatalf("unexpected view %+v", view)
	}

	if rec := env.do(t, http.MethodGet, "/products?categoryId=x", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad category: expected 400, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/products/"+p.ID, "", ""); rec.Code != http.StatusOK {
		t.Fatalf("product detail: expected 200, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/admin/products/"+p.ID, adminToken, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete product: expected 204, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/products/"+p.ID, "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("deleted product: expected 404, got %d", rec.Code)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrProductNotFound, http.StatusNotFound, "not_found"},
		{domain.Invalid("quantity", "must be at least 1"), http.StatusBadRequest, "validation_failed"},
		{domain.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
		{domain.ErrAlreadyExists, http.StatusConflict, "already_exists"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{domain.ErrOrderPersist, http.StatusInternalServerError, "order_persist_failed"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		status, body := classify(tc.err)
		if status != tc.status || body.Code != tc.code {
			t.Fatalf("%v: expected %d/%s, got %d/%s", tc.err, tc.status, tc.code, status, body.Code)
		}
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"":             "",
	}
	for header, want := range cases {
		if got := bearerToken(header); got != want {
			t.Fatalf("bearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func TestDeleteCategory(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.admin(t)
	p := env.product(t, adminToken, "2.00")

	rec := env.do(t, http.MethodDelete, "/admin/categories/"+itoa(p.CategoryID), adminToken, "")
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "category_in_use" {
		t.Fatalf("category in use: got %d %s", rec.Code, rec.Body.String())
	}

	if rec := env.do(t, http.MethodDelete, "/admin/products/"+p.ID, adminToken, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete product: expected 204, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/admin/categories/"+itoa(p.CategoryID), adminToken, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete category: expected 204, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/admin/categories/"+itoa(p.CategoryID), adminToken, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("deleted category: expected 404, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/admin/categories/x", adminToken, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", rec.Code)
	}
}
