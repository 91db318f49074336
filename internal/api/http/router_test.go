package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ezinne-pharmarcy/backend/internal/api/http/handlers"
	"github.com/ezinne-pharmarcy/backend/internal/auth"
	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/observability"
	"github.com/ezinne-pharmarcy/backend/internal/repository/memory"
	"github.com/ezinne-pharmarcy/backend/internal/service"
)

var apiT0 = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

type apiEnv struct {
	app      *fiber.App
	now      time.Time
	accounts *memory.Accounts
	sessions *memory.Sessions
	limiter  *IPRateLimiter
	metrics  *observability.Metrics
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	env := &apiEnv{
		now:      apiT0,
		accounts: memory.NewAccounts(),
		sessions: memory.NewSessions(),
		limiter:  NewIPRateLimiter(0, 0),
	}
	clock := func() time.Time { return env.now }
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	env.metrics = metrics

	machine := auth.NewSessionMachine(5 * time.Minute)
	tokens := auth.NewTokenManager("secret", time.Hour, 24*time.Hour).WithClock(clock)
	meds := memory.NewMedications()

	authService, err := service.NewAuthService(service.AuthDependencies{
		Accounts:   env.accounts,
		Sessions:   env.sessions,
		Machine:    machine,
		Tokens:     tokens,
		Metrics:    metrics,
		Logger:     logger,
		Clock:      clock,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	accountService := service.NewAccountService(service.AccountDependencies{
		Accounts:   env.accounts,
		Sessions:   env.sessions,
		Logger:     logger,
		BcryptCost: bcrypt.MinCost,
		Clock:      clock,
	})
	resolver := auth.NewResolver(auth.ResolverDeps{
		Tokens:   tokens,
		Accounts: env.accounts,
		Sessions: env.sessions,
		Machine:  machine,
		Logger:   logger,
		Clock:    clock,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("pharmacy-backend", "test", nil),
		Auth:           handlers.NewAuthHandler(authService, handlers.CookieConfig{Name: auth.DefaultCookieName}),
		Owners:         handlers.NewAccountsHandler(accountService, domain.KindOwner),
		AdminStaff:     handlers.NewAccountsHandler(accountService, domain.KindAdminStaff),
		RetailStaff:    handlers.NewAccountsHandler(accountService, domain.KindRetailStaff),
		Medications:    handlers.NewMedicationsHandler(service.NewMedicationService(meds)),
		Carts:          handlers.NewSalesHandler(service.NewSaleService(memory.NewSales(domain.SaleCart).WithClock(clock), meds, clock), domain.SaleCart),
		Orders:         handlers.NewSalesHandler(service.NewSaleService(memory.NewSales(domain.SaleOrder).WithClock(clock), meds, clock), domain.SaleOrder),
		AuthMiddleware: auth.NewAuthMiddleware(resolver, auth.DefaultCookieName),
		LoginLimiter:   env.limiter,
		Metrics:        metrics,
	})
	env.app = app
	return env
}

func (e *apiEnv) seed(t *testing.T, kind domain.AccountKind, email string, storeAdmin bool) *domain.Account {
	t.Helper()
	hash, err := auth.HashPassword("password1", bcrypt.MinCost)
	require.NoError(t, err)
	account := &domain.Account{Kind: kind, Email: email, PasswordHash: hash, IsStaff: true, IsActive: true, IsStoreAdmin: storeAdmin}
	require.NoError(t, e.accounts.Create(context.Background(), account))
	return account
}

func (e *apiEnv) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp, decoded
}

func (e *apiEnv) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	resp, _ := e.do(t, http.MethodPost, "/api/v1/login", `{"email":"`+email+`","password":"password1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return jwtCookie(t, resp)
}

func jwtCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == auth.DefaultCookieName {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", auth.DefaultCookieName)
	return nil
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestLoginSetsCookie(t *testing.T) {
	env := newAPIEnv(t)
	env.seed(t, domain.KindOwner, "owner@example.com", true)

	resp, body := env.do(t, http.MethodPost, "/api/v1/login", `{"email":"  Owner@Example.com ","password":"password1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	assert.NotEmpty(t, body["access"])
	assert.NotEmpty(t, body["refresh"])

	cookie := jwtCookie(t, resp)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, body["access"], cookie.Value)
	assert.NotEmpty(t, resp.Header.Get(observability.RequestIDHeader))
}

func TestLoginFailures(t *testing.T) {
	env := newAPIEnv(t)
	env.seed(t, domain.KindRetailStaff, "retail@example.com", false)

	respUnknown, unknown := env.do(t, http.MethodPost, "/api/v1/login", `{"email":"nobody@example.com","password":"password1"}`)
	respWrong, wrong := env.do(t, http.MethodPost, "/api/v1/login", `{"email":"retail@example.com","password":"nope-nope"}`)

	assert.Equal(t, http.StatusUnauthorized, respUnknown.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, respWrong.StatusCode)
	assert.Equal(t, unknown, wrong, "unknown email and wrong password must look the same")
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(wrong))

	resp, body := env.do(t, http.MethodPost, "/api/v1/login", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(body))

	resp, _ = env.do(t, http.MethodPost, "/api/v1/login", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginConflictWhileLoggedIn(t *testing.T) {
	env := newAPIEnv(t)
	env.seed(t, domain.KindAdminStaff, "admin@example.com", false)
	env.login(t, "admin@example.com")

	resp, body := env.do(t, http.MethodPost, "/api/v1/login", `{"email":"admin@example.com","password":"password1"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "SESSION_CONFLICT", errorCode(body))
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	env := newAPIEnv(t)
	env.seed(t, domain.KindRetailStaff, "retail@example.com", false)

	resp, body := env.do(t, http.MethodGet, "/api/v1/medications", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(body))

	cookie := env.login(t, "retail@example.com")
	resp, body = env.do(t, http.MethodGet, "/api/v1/medications", "", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "data")

	resp, body = env.do(t, http.MethodPost, "/api/v1/medications", `{"name":"X","price":"1.00","quantity":1}`, cookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", errorCode(body))

	env.now = apiT0.Add(5 * time.Minute)
	resp, body = env.do(t, http.MethodGet, "/api/v1/medications", "", cookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(body))
}

func TestLogoutClearsCookieAndSession(t *testing.T) {
	env := newAPIEnv(t)
	env.seed(t, domain.KindRetailStaff, "retail@example.com", false)
	cookie := env.login(t, "retail@example.com")

	resp, body := env.do(t, http.MethodPost, "/api/v1/logout", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	cleared := jwtCookie(t, resp)
	assert.Empty(t, cleared.Value)

	resp, body = env.do(t, http.MethodPost, "/api/v1/logout", "", cookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "UNAUTHENTICATED", errorCode(body))
}

func TestStoreAdminCreatesStaffOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	env.seed(t, domain.KindOwner, "owner@example.com", true)
	cookie := env.login(t, "owner@example.com")

	payload := `{"email":"New@Example.com","password":"password1","confirm_password":"password1",
		"first_name":"Ada","last_name":"Obi","username":"ada","is_active":true}`
	resp, body := env.do(t, http.MethodPost, "/api/v1/retail-staff", payload, cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, "new@example.com", data["email"])
	assert.NotContains(t, data, "password")
	assert.NotContains(t, data, "is_store_admin")

	resp, body = env.do(t, http.MethodPost, "/api/v1/retail-staff", `{"email":"bad","password":"short"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody := body["error"].(map[string]any)
	details := errBody["details"].(map[string]any)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")

	resp, _ = env.do(t, http.MethodGet, "/api/v1/retail-staff/not-a-uuid", "", cookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCartFlowOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	env.seed(t, domain.KindRetailStaff, "retail@example.com", false)
	env.seed(t, domain.KindRetailStaff, "peer@example.com", false)
	cookie := env.login(t, "retail@example.com")
	peer := env.login(t, "peer@example.com")

	resp, body := env.do(t, http.MethodPost, "/api/v1/carts", "", cookie)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	cartID := body["data"].(map[string]any)["id"].(string)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/carts/"+cartID, "", peer)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/v1/carts", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/cart-items?cart_id="+cartID, "", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/cart-items", "", cookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	env := newAPIEnv(t)

	resp, body := env.do(t, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])

	resp, body = env.do(t, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsResp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)
}

func TestErrorMetricsUseRouteTemplate(t *testing.T) {
	env := newAPIEnv(t)
	env.seed(t, domain.KindAdminStaff, "admin@example.com", false)
	cookie := env.login(t, "admin@example.com")

	for i := 0; i < 5; i++ {
		resp, _ := env.do(t, http.MethodGet, "/api/v1/orders/"+uuid.NewString(), "", cookie)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
	resp, _ := env.do(t, http.MethodGet, "/health/"+strings.Repeat("z", 20), "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Equal(t, map[string]float64{
		"/api/v1/orders/:id":         5,
		observability.UnmatchedRoute: 1,
	}, errorCountsByRoute(t, env.metrics))
}

func errorCountsByRoute(t *testing.T, metrics *observability.Metrics) map[string]float64 {
	t.Helper()
	families, err := metrics.Registry().Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "http_errors_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "route" {
					counts[label.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	return counts
}

func TestLoginRateLimited(t *testing.T) {
	env := newAPIEnv(t)
	env.limiter.limit = 1
	env.limiter.burst = 1
	env.limiter.now = func() time.Time { return apiT0 }

	resp, _ := env.do(t, http.MethodPost, "/api/v1/login", `{"email":"x@example.com","password":"password1"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/v1/login", `{"email":"x@example.com","password":"password1"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", errorCode(body))
}
