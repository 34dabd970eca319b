package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/marmora-backend/internal/clients/redis"
	"github.com/yungbote/marmora-backend/internal/data/repos"
	"github.com/yungbote/marmora-backend/internal/data/repos/testutil"
	types "github.com/yungbote/marmora-backend/internal/domain"
	httpH "github.com/yungbote/marmora-backend/internal/http/handlers"
	httpMW "github.com/yungbote/marmora-backend/internal/http/middleware"
	"github.com/yungbote/marmora-backend/internal/observability"
	"github.com/yungbote/marmora-backend/internal/platform/i18n"
	"github.com/yungbote/marmora-backend/internal/services"
)

type allowGuard struct{}

func (allowGuard) Check(context.Context, string, string, string) error { return nil }

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	auth   services.AuthService
}

func newTestServer(t *testing.T, opts ...func(*RouterConfig)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tr, err := i18n.NewTranslator(i18n.DefaultLocale, log)
	if err != nil {
		t.Fatalf("NewTranslator: %v", err)
	}

	productRepo := repos.NewProductRepo(db, log)
	blogRepo := repos.NewBlogPostRepo(db, log)
	settings := services.NewSettingsService(db, log, repos.NewSiteSettingsRepo(db, log), nil, nil)
	content := services.NewContentService(db, log, tr, repos.NewContentBlockRepo(db, log), settings, nil)
	catalog := services.NewCatalogService(db, log, productRepo, repos.NewCategoryRepo(db, log), content, settings)
	blog := services.NewBlogService(db, log, blogRepo, settings)
	quotes := services.NewQuoteService(db, log, repos.NewQuoteRequestRepo(db, log), productRepo, allowGuard{}, nil, settings)
	contacts := services.NewContactService(db, log, repos.NewContactMessageRepo(db, log), allowGuard{}, nil, settings)
	auth := services.NewAuthService(db, log, repos.NewAdminUserRepo(db, log), repos.NewUserTokenRepo(db, log), "router-secret", 15*time.Minute, 24*time.Hour)
	renderer, err := services.NewOGRenderer("")
	if err != nil {
		t.Fatalf("NewOGRenderer: %v", err)
	}
	seo := services.NewSEOService(db, log, repos.NewPageSEORepo(db, log), productRepo, blogRepo, settings, content, nil, renderer, "https://marmora.example")

	rc := RouterConfig{
		ServiceName:      "marmora-test",
		AuthMiddleware:   httpMW.NewAuthMiddleware(log, auth),
		LocaleMiddleware: httpMW.NewLocaleMiddleware(settings, content, false),
		HealthHandler:    httpH.NewHealthHandler(db),
		AuthHandler:      httpH.NewAuthHandler(auth),
		CatalogHandler:   httpH.NewCatalogHandler(log, catalog),
		BlogHandler:      httpH.NewBlogHandler(blog),
		QuoteHandler:     httpH.NewQuoteHandler(log, quotes, content),
		ContactHandler:   httpH.NewContactHandler(contacts, content),
		SiteHandler: httpH.NewSiteHandler(settings,
			services.NewThemeService(settings),
			services.NewIntegrationsService(settings, content),
			services.NewWhatsAppService(settings, content),
			content),
		SEOHandler:     httpH.NewSEOHandler(seo),
		ContentHandler: httpH.NewContentHandler(content),
		HomeHandler:    httpH.NewHomeHandler(services.NewHomeService(catalog, blog, settings), services.NewStatsService(productRepo, quotes, contacts)),
	}
	for _, opt := range opts {
		opt(&rc)
	}
	engine, err := NewRouter(rc)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	ctx := context.Background()
	cat := testutil.SeedCategory(t, ctx, db, "marble")
	testutil.SeedProduct(t, ctx, db, "carrara-white", &cat.ID, true, true)
	testutil.SeedProduct(t, ctx, db, "hidden-slab", &cat.ID, false, false)
	return &testServer{t: t, engine: engine, auth: auth}
}

func (ts *testServer) do(method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	ts.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func (ts *testServer) login(email, password string, role types.Role) string {
	ts.t.Helper()
	ctx := context.Background()
	if _, err := ts.auth.CreateAdmin(ctx, services.CreateAdminInput{Email: email, Password: password, Name: "Staff", Role: role}); err != nil {
		ts.t.Fatalf("CreateAdmin: %v", err)
	}
	w := ts.do("POST", "/api/auth/login", map[string]string{"email": email, "password": password}, nil)
	if w.Code != nethttp.StatusOK {
		ts.t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var pair services.TokenPair
	decode(ts.t, w, &pair)
	return pair.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestPublicCatalogIsLocalized(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/api/products?lang=ar", nil, nil)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Language"); got != "ar" {
		t.Fatalf("Content-Language = %q", got)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "lang=ar") {
		t.Fatalf("lang cookie not set: %q", w.Header().Get("Set-Cookie"))
	}
	var page services.PageResult[services.ProductView]
	decode(t, w, &page)
	if page.Total != 1 || page.Items[0].Name != "منتج carrara-white" {
		t.Fatalf("page: %+v", page)
	}

	w = ts.do("GET", "/api/products/hidden-slab", nil, map[string]string{"Accept-Language": "fr-CA,fr;q=0.9"})
	if w.Code != nethttp.StatusNotFound {
		t.Fatalf("draft product: want 404, got %d", w.Code)
	}
	var env struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	decode(t, w, &env)
	if env.Error.Code != services.CodeNotFound || env.Error.Message != "Introuvable." {
		t.Fatalf("error envelope: %+v", env)
	}
}

func TestQuoteWizardEndpoints(t *testing.T) {
	ts := newTestServer(t)
	fr := map[string]string{"X-Locale": "fr"}

	w := ts.do("POST", "/api/quotes/steps/3/validate", map[string]any{}, fr)
	if w.Code != nethttp.StatusUnprocessableEntity {
		t.Fatalf("empty step 3: want 422, got %d", w.Code)
	}
	var env struct {
		Error struct {
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	decode(t, w, &env)
	if env.Error.Fields["full_name"] != "Ce champ est obligatoire." {
		t.Fatalf("fields: %+v", env.Error.Fields)
	}

	if w := ts.do("POST", "/api/quotes/steps/9/validate", map[string]any{}, nil); w.Code != nethttp.StatusBadRequest {
		t.Fatalf("unknown step: want 400, got %d", w.Code)
	}
	if w := ts.do("POST", "/api/quotes/steps/two/validate", map[string]any{}, nil); w.Code != nethttp.StatusBadRequest {
		t.Fatalf("non-numeric step: want 400, got %d", w.Code)
	}

	body := map[string]any{
		"items":               []map[string]any{{"product_name": "Nero Marquina", "quantity": 40, "unit": "slab"}},
		"project_type":        "Residential",
		"destination_country": "FR",
		"full_name":           "Claire Martin",
		"email":               "claire@example.fr",
		"phone":               "+33 1 23 45 67 89",
		"country":             "FR",
	}
	w = ts.do("POST", "/api/quotes/steps/1/validate", body, fr)
	if w.Code != nethttp.StatusOK || !strings.Contains(w.Body.String(), `"valid":true`) {
		t.Fatalf("step 1: %d %s", w.Code, w.Body.String())
	}

	w = ts.do("POST", "/api/quotes", body, fr)
	if w.Code != nethttp.StatusCreated {
		t.Fatalf("submit: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Message   string `json:"message"`
	}
	decode(t, w, &created)
	if created.Status != string(types.QuoteStatusPending) || !strings.Contains(created.Message, created.Reference) || !strings.HasPrefix(created.Message, "Merci.") {
		t.Fatalf("created: %+v", created)
	}
}

func TestContactSubmit(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do("POST", "/api/contact?lang=es", map[string]string{
		"name":    "Lucía",
		"email":   "lucia@example.es",
		"subject": "Muestras",
		"message": "¿Envían muestras a Valencia?",
	}, nil)
	if w.Code != nethttp.StatusCreated {
		t.Fatalf("contact: %d %s", w.Code, w.Body.String())
	}
	if w := ts.do("POST", "/api/contact", "not an object", nil); w.Code != nethttp.StatusBadRequest {
		t.Fatalf("bad body: want 400, got %d", w.Code)
	}
}

func TestAdminRoutesRequireAuthAndRole(t *testing.T) {
	ts := newTestServer(t)

	if w := ts.do("GET", "/api/admin/stats", nil, nil); w.Code != nethttp.StatusUnauthorized {
		t.Fatalf("anonymous: want 401, got %d", w.Code)
	}
	if w := ts.do("GET", "/api/admin/stats", nil, bearer("garbage")); w.Code != nethttp.StatusUnauthorized {
		t.Fatalf("bad token: want 401, got %d", w.Code)
	}

	editor := ts.login("editor@marmora.example", "editor-password", types.RoleEditor)
	w := ts.do("GET", "/api/admin/stats", nil, bearer(editor))
	if w.Code != nethttp.StatusOK {
		t.Fatalf("stats: %d %s", w.Code, w.Body.String())
	}
	var stats services.DashboardStats
	decode(t, w, &stats)
	if stats.Products != 2 || stats.PublishedProducts != 1 {
		t.Fatalf("stats: %+v", stats)
	}

	if w := ts.do("PATCH", "/api/admin/settings", map[string]any{"email": "sales@marmora.example"}, bearer(editor)); w.Code != nethttp.StatusForbidden {
		t.Fatalf("editor settings update: want 403, got %d", w.Code)
	}
	if w := ts.do("GET", "/api/admin/settings", nil, bearer(editor)); w.Code != nethttp.StatusOK {
		t.Fatalf("editor settings read: want 200, got %d", w.Code)
	}

	admin := ts.login("owner@marmora.example", "owner-password", types.RoleAdmin)
	w = ts.do("PATCH", "/api/admin/settings", map[string]any{"email": "sales@marmora.example"}, bearer(admin))
	if w.Code != nethttp.StatusOK {
		t.Fatalf("admin settings update: %d %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "smtp_password\":\"") {
		t.Fatalf("settings response leaks smtp password: %s", w.Body.String())
	}

	if w := ts.do("GET", "/api/admin/products/not-a-uuid", nil, bearer(admin)); w.Code != nethttp.StatusBadRequest {
		t.Fatalf("invalid id: want 400, got %d", w.Code)
	}
}

func TestEditorCannotDeleteQuotes(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do("POST", "/api/quotes", map[string]any{
		"items":               []map[string]any{{"product_name": "Galaxy", "quantity": 1, "unit": "container"}},
		"project_type":        "Hotel",
		"destination_country": "AE",
		"full_name":           "Omar",
		"email":               "omar@example.ae",
		"phone":               "+971 4 555 0101",
		"country":             "AE",
	}, nil)
	if w.Code != nethttp.StatusCreated {
		t.Fatalf("submit: %d %s", w.Code, w.Body.String())
	}

	editor := ts.login("editor@marmora.example", "editor-password", types.RoleEditor)
	w = ts.do("GET", "/api/admin/quotes?status=PENDING", nil, bearer(editor))
	var list services.PageResult[types.QuoteRequest]
	decode(t, w, &list)
	if list.Total != 1 {
		t.Fatalf("list: %+v", list)
	}
	id := list.Items[0].ID.String()

	w = ts.do("PATCH", "/api/admin/quotes/"+id+"/status", map[string]string{"status": "REVIEWED"}, bearer(editor))
	if w.Code != nethttp.StatusOK {
		t.Fatalf("status change: %d %s", w.Code, w.Body.String())
	}
	if w := ts.do("DELETE", "/api/admin/quotes/"+id, nil, bearer(editor)); w.Code != nethttp.StatusForbidden {
		t.Fatalf("editor delete: want 403, got %d", w.Code)
	}

	admin := ts.login("owner@marmora.example", "owner-password", types.RoleAdmin)
	if w := ts.do("DELETE", "/api/admin/quotes/"+id, nil, bearer(admin)); w.Code != nethttp.StatusNoContent {
		t.Fatalf("admin delete: want 204, got %d", w.Code)
	}
}

func TestThemeETag(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do("GET", "/api/theme.css", nil, nil)
	if w.Code != nethttp.StatusOK || !strings.HasPrefix(w.Body.String(), ":root{") {
		t.Fatalf("theme: %d %q", w.Code, w.Body.String())
	}
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}
	if w := ts.do("GET", "/api/theme.css", nil, map[string]string{"If-None-Match": etag}); w.Code != nethttp.StatusNotModified {
		t.Fatalf("conditional: want 304, got %d", w.Code)
	}
}

func TestDictionaryAndSitemap(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do("GET", "/api/i18n/ar", nil, nil)
	if w.Code != nethttp.StatusOK || !strings.Contains(w.Body.String(), `"dir":"rtl"`) {
		t.Fatalf("dictionary: %d %s", w.Code, w.Body.String())
	}
	if w := ts.do("GET", "/api/i18n/de", nil, nil); w.Code != nethttp.StatusNotFound {
		t.Fatalf("unsupported locale: want 404, got %d", w.Code)
	}

	w = ts.do("GET", "/sitemap.xml", nil, nil)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("sitemap: %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "/products/carrara-white") || strings.Contains(body, "hidden-slab") {
		t.Fatalf("sitemap contents: %s", body)
	}

	w = ts.do("GET", "/readyz", nil, nil)
	if w.Code != nethttp.StatusOK {
		t.Fatalf("readyz: %d", w.Code)
	}
}

func TestLoginLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	ts := newTestServer(t, func(rc *RouterConfig) {
		rc.Limiter = redis.NewMemoryLimiter(redis.LimitConfig{Limit: 1, Window: time.Minute})
	})
	creds := map[string]string{"email": "nobody@marmora.example", "password": "wrong-password"}

	var codes []int
	for _, xff := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3", ""} {
		h := map[string]string{}
		if xff != "" {
			h["X-Forwarded-For"] = xff
		}
		codes = append(codes, ts.do("POST", "/api/auth/login", creds, h).Code)
	}
	if codes[0] != nethttp.StatusUnauthorized {
		t.Fatalf("first attempt: want 401, got %d", codes[0])
	}
	for i, code := range codes[1:] {
		if code != nethttp.StatusTooManyRequests {
			t.Fatalf("attempt %d: want 429, got %v", i+2, codes)
		}
	}
}

func TestTrustedProxyForwardedFor(t *testing.T) {
	// httptest requests come from 192.0.2.1.
	ts := newTestServer(t, func(rc *RouterConfig) {
		rc.TrustedProxies = []string{"192.0.2.0/24"}
		rc.Limiter = redis.NewMemoryLimiter(redis.LimitConfig{Limit: 1, Window: time.Minute})
	})
	creds := map[string]string{"email": "nobody@marmora.example", "password": "wrong-password"}

	for _, xff := range []string{"1.1.1.1", "2.2.2.2"} {
		if w := ts.do("POST", "/api/auth/login", creds, map[string]string{"X-Forwarded-For": xff}); w.Code != nethttp.StatusUnauthorized {
			t.Fatalf("client %s: want 401, got %d", xff, w.Code)
		}
	}
	if w := ts.do("POST", "/api/auth/login", creds, map[string]string{"X-Forwarded-For": "1.1.1.1"}); w.Code != nethttp.StatusTooManyRequests {
		t.Fatalf("repeat client: want 429, got %d", w.Code)
	}
}

func TestNewRouterRejectsBadTrustedProxy(t *testing.T) {
	if _, err := NewRouter(RouterConfig{TrustedProxies: []string{"not-an-ip"}}); err == nil {
		t.Fatal("want error for malformed proxy")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := observability.NewMetrics()
	ts := newTestServer(t, func(rc *RouterConfig) { rc.Metrics = m })

	if w := ts.do("GET", "/api/products/carrara-white", nil, nil); w.Code != nethttp.StatusOK {
		t.Fatalf("product: %d", w.Code)
	}

	editor := ts.login("editor@marmora.example", "editor-password", types.RoleEditor)
	if w := ts.do("GET", "/api/admin/metrics", nil, bearer(editor)); w.Code != nethttp.StatusForbidden {
		t.Fatalf("editor metrics: want 403, got %d", w.Code)
	}

	admin := ts.login("owner@marmora.example", "owner-password", types.RoleAdmin)
	w := ts.do("GET", "/api/admin/metrics", nil, bearer(admin))
	if w.Code != nethttp.StatusOK {
		t.Fatalf("metrics: %d %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{
		`marmora_api_requests_total{method="GET",route="/api/products/:slug",status="200"} 1`,
		`marmora_api_requests_total{method="GET",route="/api/admin/metrics",status="403"} 1`,
		"marmora_api_inflight_requests 1",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}
