package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/admin"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/profiles"
	"github.com/angelmondragon/storefront-backend/internal/testdb"
	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

const contactBody = `{"email":"ada@example.com","first_name":"Ada","last_name":"Lovelace","address":"1 Main St","city":"Springfield","postal_code":"12345","phone":"555-0100"}`

type stubSessionManager struct{}

func (stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	return "refresh-" + accessID, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return uuid.NewString(), "refresh-rotated", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type harness struct {
	t       *testing.T
	conn    *gorm.DB
	cfg     *config.Config
	handler http.Handler
	tee     *models.Product
	socks   *models.Product
	user    *models.User
	staff   *models.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	conn := testdb.Open(t)
	tx := db.Wrap(conn)

	cfg := &config.Config{
		App:  config.AppConfig{Env: "test"},
		HTTP: config.HTTPConfig{CORSOrigins: []string{"http://localhost:3000"}},
		JWT:  config.JWTConfig{Secret: "secret", Issuer: "storefront", ExpirationMinutes: 60},
		Password: config.PasswordConfig{
			ArgonMemoryKB: 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32,
		},
		Session: config.SessionConfig{
			CookieName: "storefront_session",
			AuthKey:    "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff",
			MaxAge:     time.Hour,
		},
	}

	cartRepo := cart.NewRepository(conn)
	carts, err := cart.NewService(cart.ServiceParams{Repo: cartRepo, Tx: tx})
	require.NoError(t, err)
	ordersRepo := orders.NewRepository(conn)
	orderSvc, err := orders.NewService(ordersRepo, nil, nil)
	require.NoError(t, err)
	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	require.NoError(t, err)
	checkoutSvc, err := checkout.NewService(tx, cartRepo, ordersRepo)
	require.NoError(t, err)
	usersRepo := users.NewRepository(conn)
	profileSvc, err := profiles.NewService(profiles.NewRepository(conn), usersRepo, tx)
	require.NoError(t, err)
	registrar, err := auth.NewAccountRegistrar(tx)
	require.NoError(t, err)
	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: stubSessionManager{},
		Carts:          carts,
		Registrar:      registrar,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	require.NoError(t, err)
	adminSvc, err := admin.NewService(admin.ServiceParams{Orders: ordersRepo, Status: orderSvc, Catalog: catalogSvc, Carts: carts})
	require.NoError(t, err)

	cookies, err := middleware.NewCookieStore(cfg.Session)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	handler := NewRouter(cfg, nil, tx, nil, nil, cookies,
		Observability{HTTP: metrics.NewHTTPMetrics(reg), Gatherer: reg},
		Services{
			Auth:     authSvc,
			Catalog:  catalogSvc,
			Cart:     carts,
			Checkout: checkoutSvc,
			Orders:   orderSvc,
			Profiles: profileSvc,
			Admin:    adminSvc,
		})

	category := testdb.Category(t, conn, "apparel")
	staff := testdb.User(t, conn, "staff@example.com")
	require.NoError(t, conn.Model(staff).Update("is_staff", true).Error)

	return &harness{
		t:       t,
		conn:    conn,
		cfg:     cfg,
		handler: handler,
		tee:     testdb.Product(t, conn, category, "tee", "10.00", 3),
		socks:   testdb.Product(t, conn, category, "socks", "5.50", 10),
		user:    testdb.User(t, conn, "ada@example.com"),
		staff:   staff,
	}
}

func (h *harness) token(user *models.User) string {
	h.t.Helper()
	token, err := pkgAuth.MintAccessToken(h.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   enums.RoleFor(user.IsStaff),
		JTI:    uuid.NewString(),
	})
	require.NoError(h.t, err)
	return token
}

type call struct {
	method string
	path   string
	body   string
	token  string
	cookie *http.Cookie
}

func (h *harness) do(c call) *httptest.ResponseRecorder {
	h.t.Helper()
	var req *http.Request
	if c.body != "" {
		req = httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(c.method, c.path, nil)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Data
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	live := h.do(call{method: http.MethodGet, path: "/health/live"})
	assert.Equal(t, http.StatusOK, live.Code)
	assert.Equal(t, "test", live.Header().Get("X-Storefront-Env"))

	ready := h.do(call{method: http.MethodGet, path: "/health/ready"})
	assert.Equal(t, http.StatusOK, ready.Code)

	m := h.do(call{method: http.MethodGet, path: "/metrics"})
	assert.Equal(t, http.StatusOK, m.Code)
	assert.Contains(t, m.Body.String(), "storefront_http_requests_total")
}

func TestAnonymousCartUsesSessionCookie(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	add := h.do(call{method: http.MethodPost, path: "/cart/add/" + h.tee.ID.String(), body: `{"size":"M","quantity":2}`})
	require.Equal(t, http.StatusOK, add.Code, add.Body.String())
	assert.Equal(t, true, decodeData(t, add)["success"])
	cookies := add.Result().Cookies()
	require.NotEmpty(t, cookies)
	session := cookies[0]

	again := h.do(call{method: http.MethodPost, path: "/cart/add/" + h.tee.ID.String(), body: `{"size":"M","quantity":3}`, cookie: session})
	require.Equal(t, http.StatusOK, again.Code)
	assert.EqualValues(t, 5, decodeData(t, again)["quantity"])

	count := h.do(call{method: http.MethodGet, path: "/cart/count", cookie: session})
	require.Equal(t, http.StatusOK, count.Code)
	assert.EqualValues(t, 5, decodeData(t, count)["count"])

	view := h.do(call{method: http.MethodGet, path: "/cart/", cookie: session})
	require.Equal(t, http.StatusOK, view.Code)
	assert.Equal(t, "50.00", decodeData(t, view)["total"])

	stranger := h.do(call{method: http.MethodGet, path: "/cart/count"})
	assert.EqualValues(t, 0, decodeData(t, stranger)["count"])
}

func TestCartMutationsReportSuccessFalseForMissingTargets(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	token := h.token(h.user)

	for _, c := range []call{
		{method: http.MethodPost, path: "/cart/add/" + uuid.NewString(), token: token},
		{method: http.MethodPost, path: "/cart/remove/" + uuid.NewString(), token: token},
		{method: http.MethodPost, path: "/cart/update/" + uuid.NewString(), body: `{"quantity":2}`, token: token},
		{method: http.MethodPost, path: "/cart/remove/not-a-uuid", token: token},
	} {
		rec := h.do(c)
		require.Equal(t, http.StatusOK, rec.Code, c.path)
		assert.JSONEq(t, `{"data":{"success":false}}`, rec.Body.String(), c.path)
	}

	invalid := h.do(call{method: http.MethodPost, path: "/cart/update/" + uuid.NewString(), body: `{"quantity":"two"}`, token: token})
	assert.Equal(t, http.StatusBadRequest, invalid.Code)
}

func TestCartUpdateAndRemoveTotals(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	token := h.token(h.user)

	add := h.do(call{method: http.MethodPost, path: "/cart/add/" + h.tee.ID.String(), body: `{"size":"S"}`, token: token})
	require.Equal(t, http.StatusOK, add.Code)
	itemID := decodeData(t, add)["item_id"].(string)

	update := h.do(call{method: http.MethodPost, path: "/cart/update/" + itemID, body: `{"quantity":4}`, token: token})
	require.Equal(t, http.StatusOK, update.Code)
	data := decodeData(t, update)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "40.00", data["item_total"])
	assert.Equal(t, "40.00", data["cart_total"])

	remove := h.do(call{method: http.MethodPost, path: "/cart/remove/" + itemID, token: token})
	require.Equal(t, http.StatusOK, remove.Code)
	data = decodeData(t, remove)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "0.00", data["cart_total"])
	assert.Equal(t, true, data["cart_empty"])
}

func TestCheckoutRedirectsAndCancelFlow(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	token := h.token(h.user)

	empty := h.do(call{method: http.MethodPost, path: "/orders/create", body: contactBody, token: token})
	require.Equal(t, http.StatusSeeOther, empty.Code)
	assert.Equal(t, "/cart/", empty.Header().Get("Location"))

	h.do(call{method: http.MethodPost, path: "/cart/add/" + h.tee.ID.String(), body: `{"size":"M","quantity":2}`, token: token})
	h.do(call{method: http.MethodPost, path: "/cart/add/" + h.socks.ID.String(), token: token})

	created := h.do(call{method: http.MethodPost, path: "/orders/create", body: contactBody, token: token})
	require.Equal(t, http.StatusSeeOther, created.Code, created.Body.String())
	location := created.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/orders/success/"), location)
	orderID := strings.TrimPrefix(location, "/orders/success/")

	success := h.do(call{method: http.MethodGet, path: location, token: token})
	require.Equal(t, http.StatusOK, success.Code)
	order := decodeData(t, success)
	assert.Equal(t, "25.50", order["total_amount"])
	assert.Equal(t, "pending", order["status"])

	count := h.do(call{method: http.MethodGet, path: "/cart/count", token: token})
	assert.EqualValues(t, 0, decodeData(t, count)["count"])

	other := h.token(h.staff)
	foreign := h.do(call{method: http.MethodGet, path: "/orders/detail/" + orderID, token: other})
	assert.Equal(t, http.StatusNotFound, foreign.Code)
	foreignCancel := h.do(call{method: http.MethodPost, path: "/orders/cancel/" + orderID, token: other})
	assert.JSONEq(t, `{"data":{"success":false}}`, foreignCancel.Body.String())

	cancel := h.do(call{method: http.MethodPost, path: "/orders/cancel/" + orderID, token: token})
	assert.JSONEq(t, `{"data":{"success":true}}`, cancel.Body.String())
	again := h.do(call{method: http.MethodPost, path: "/orders/cancel/" + orderID, token: token})
	assert.JSONEq(t, `{"data":{"success":false}}`, again.Body.String())

	history := h.do(call{method: http.MethodGet, path: "/orders/history", token: token})
	require.Equal(t, http.StatusOK, history.Code)
	var list struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(history.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "cancelled", list.Data[0]["status"])
}

func TestCheckoutEmptyCartRedirectsBeforeValidatingContact(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	token := h.token(h.user)

	for _, body := range []string{"", `{}`, `{"email":"not-an-email"}`} {
		rec := h.do(call{method: http.MethodPost, path: "/orders/create", body: body, token: token})
		require.Equal(t, http.StatusSeeOther, rec.Code, "body %q: %s", body, rec.Body.String())
		assert.Equal(t, "/cart/", rec.Header().Get("Location"))
	}

	h.do(call{method: http.MethodPost, path: "/cart/add/" + h.tee.ID.String(), token: token})
	invalid := h.do(call{method: http.MethodPost, path: "/orders/create", body: `{}`, token: token})
	assert.Equal(t, http.StatusBadRequest, invalid.Code)

	count := h.do(call{method: http.MethodGet, path: "/cart/count", token: token})
	assert.EqualValues(t, 1, decodeData(t, count)["count"])
}

func TestOrdersRequireLogin(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	rec := h.do(call{method: http.MethodGet, path: "/orders/history"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRequiresStaff(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	customer := h.do(call{method: http.MethodGet, path: "/admin/orders", token: h.token(h.user)})
	assert.Equal(t, http.StatusForbidden, customer.Code)

	staff := h.do(call{method: http.MethodGet, path: "/admin/orders", token: h.token(h.staff)})
	assert.Equal(t, http.StatusOK, staff.Code)

	products := h.do(call{method: http.MethodGet, path: "/admin/products", token: h.token(h.staff)})
	require.Equal(t, http.StatusOK, products.Code)
	assert.Contains(t, products.Body.String(), `"stock_status"`)
}

func TestAdminBulkStatusIsUnconditional(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	token := h.token(h.user)

	h.do(call{method: http.MethodPost, path: "/cart/add/" + h.socks.ID.String(), token: token})
	created := h.do(call{method: http.MethodPost, path: "/orders/create", body: contactBody, token: token})
	orderID := strings.TrimPrefix(created.Header().Get("Location"), "/orders/success/")
	h.do(call{method: http.MethodPost, path: "/orders/cancel/" + orderID, token: token})

	staff := h.token(h.staff)
	set := h.do(call{method: http.MethodPost, path: "/admin/orders/status", body: `{"order_ids":["` + orderID + `"],"status":"shipped"}`, token: staff})
	require.Equal(t, http.StatusOK, set.Code, set.Body.String())

	detail := h.do(call{method: http.MethodGet, path: "/orders/detail/" + orderID, token: token})
	assert.Equal(t, "shipped", decodeData(t, detail)["status"])

	bad := h.do(call{method: http.MethodPost, path: "/admin/orders/status", body: `{"order_ids":["` + orderID + `"],"status":"cancelled"}`, token: staff})
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestRegisterMergesSessionCart(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	add := h.do(call{method: http.MethodPost, path: "/cart/add/" + h.tee.ID.String(), body: `{"size":"L"}`})
	require.Equal(t, http.StatusOK, add.Code)
	session := add.Result().Cookies()[0]

	reg := h.do(call{
		method: http.MethodPost,
		path:   "/accounts/register",
		body:   `{"email":"new@example.com","password":"longenough","first_name":"New","last_name":"Shopper","phone":"555"}`,
		cookie: session,
	})
	require.Equal(t, http.StatusCreated, reg.Code, reg.Body.String())
	token, _ := decodeData(t, reg)["access_token"].(string)
	require.NotEmpty(t, token)

	count := h.do(call{method: http.MethodGet, path: "/cart/count", token: token})
	assert.EqualValues(t, 1, decodeData(t, count)["count"])

	profile := h.do(call{method: http.MethodGet, path: "/accounts/profile", token: token})
	require.Equal(t, http.StatusOK, profile.Code)
	assert.Equal(t, "555", decodeData(t, profile)["phone"])

	dup := h.do(call{
		method: http.MethodPost,
		path:   "/accounts/register",
		body:   `{"email":"new@example.com","password":"longenough","first_name":"New","last_name":"Shopper"}`,
	})
	assert.Equal(t, http.StatusConflict, dup.Code)
}

func TestCatalogReadRoutes(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	list := h.do(call{method: http.MethodGet, path: "/products?category=apparel"})
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), `"tee"`)

	detail := h.do(call{method: http.MethodGet, path: "/products/tee"})
	require.Equal(t, http.StatusOK, detail.Code)
	assert.Equal(t, "10.00", decodeData(t, detail)["price"])

	missing := h.do(call{method: http.MethodGet, path: "/products/nope"})
	assert.Equal(t, http.StatusNotFound, missing.Code)

	categories := h.do(call{method: http.MethodGet, path: "/categories"})
	assert.Equal(t, http.StatusOK, categories.Code)
}
