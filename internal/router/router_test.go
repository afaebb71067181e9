package router_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/listings-api/internal/config"
	"github.com/deppfellow/listings-api/internal/handler"
	"github.com/deppfellow/listings-api/internal/lib/cache"
	"github.com/deppfellow/listings-api/internal/router"
	"github.com/deppfellow/listings-api/internal/server"
	"github.com/deppfellow/listings-api/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func testConfig() *config.Config {
	return &config.Config{
		Primary: config.Primary{Env: "local"},
		Server: config.ServerConfig{
			Port:               "8080",
			CORSAllowedOrigins: []string{"*"},
		},
		Pagination: config.PaginationConfig{
			DefaultPage:    1,
			DefaultPerPage: 10,
		},
		Observability: config.DefaultObservabilityConfig(),
	}
}

func newTestRouter(t *testing.T, store service.ListingStore, cfg *config.Config) *echo.Echo {
	t.Helper()

	logger := zerolog.Nop()
	s := &server.Server{
		Config: cfg,
		Logger: &logger,
		Cache:  cache.Noop{},
	}

	services := &service.Services{Listings: service.NewListingService(store, s.Cache)}
	return router.NewRouter(s, handler.NewHandlers(s, services))
}

func do(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeObject(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func decodeArray(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()

	var out []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status: got %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func expectMessage(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if got := decodeObject(t, rec)["message"]; got != want {
		t.Errorf("message: got %v, want %s", got, want)
	}
}

func seed(t *testing.T, e *echo.Echo, names ...string) []string {
	t.Helper()

	ids := make([]string, 0, len(names))
	for _, name := range names {
		rec := do(t, e, http.MethodPost, "/api/listings", fmt.Sprintf(`{"name":%q}`, name))
		expectStatus(t, rec, http.StatusCreated)
		ids = append(ids, decodeObject(t, rec)["_id"].(string))
	}
	return ids
}

func TestRoot(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())

	rec := do(t, e, http.MethodGet, "/", "")
	expectStatus(t, rec, http.StatusOK)
	expectMessage(t, rec, "DATABASE TEST")
}

func TestListingLifecycle(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())

	rec := do(t, e, http.MethodPost, "/api/listings", `{"name":"Lakeview Condo","price":250000}`)
	expectStatus(t, rec, http.StatusCreated)

	created := decodeObject(t, rec)
	id, ok := created["_id"].(string)
	if !ok || id == "" {
		t.Fatalf("_id: got %v, want non-empty string", created["_id"])
	}
	if created["name"] != "Lakeview Condo" {
		t.Errorf("name: got %v, want Lakeview Condo", created["name"])
	}

	rec = do(t, e, http.MethodGet, "/api/listings/"+id, "")
	expectStatus(t, rec, http.StatusOK)
	got := decodeObject(t, rec)
	if got["name"] != "Lakeview Condo" || got["price"] != float64(250000) {
		t.Errorf("listing: got %v", got)
	}

	rec = do(t, e, http.MethodPut, "/api/listings/"+id, `{"price":260000}`)
	expectStatus(t, rec, http.StatusOK)
	expectMessage(t, rec, "Listing updated successfully")

	rec = do(t, e, http.MethodGet, "/api/listings/"+id, "")
	expectStatus(t, rec, http.StatusOK)
	got = decodeObject(t, rec)
	if got["price"] != float64(260000) {
		t.Errorf("price: got %v, want 260000", got["price"])
	}
	if got["name"] != "Lakeview Condo" {
		t.Errorf("name: got %v, want Lakeview Condo", got["name"])
	}

	rec = do(t, e, http.MethodDelete, "/api/listings/"+id, "")
	expectStatus(t, rec, http.StatusOK)
	expectMessage(t, rec, "Listing deleted successfully")

	rec = do(t, e, http.MethodGet, "/api/listings/"+id, "")
	expectStatus(t, rec, http.StatusNotFound)
	expectMessage(t, rec, "Listing not found")

	rec = do(t, e, http.MethodDelete, "/api/listings/"+id, "")
	expectStatus(t, rec, http.StatusNotFound)
	expectMessage(t, rec, "Listing not found")
}

func TestCreateAssignsDistinctIDs(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())

	ids := seed(t, e, "Same", "Same")
	if ids[0] == ids[1] {
		t.Errorf("ids: got %s twice, want distinct", ids[0])
	}
}

func TestCreateIgnoresClientID(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())

	rec := do(t, e, http.MethodPost, "/api/listings", `{"_id":"chosen","name":"Loft"}`)
	expectStatus(t, rec, http.StatusCreated)

	if id := decodeObject(t, rec)["_id"]; id == "chosen" {
		t.Error("_id: client-supplied identifier was kept")
	}
}

func TestCreateEmptyObject(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())

	rec := do(t, e, http.MethodPost, "/api/listings", `{}`)
	expectStatus(t, rec, http.StatusCreated)

	if _, ok := decodeObject(t, rec)["_id"]; !ok {
		t.Error("_id missing from created listing")
	}
}

func TestInvalidJSONBody(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())

	tests := []struct {
		method string
		target string
	}{
		{http.MethodPost, "/api/listings"},
		{http.MethodPut, "/api/listings/000000000000000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec := do(t, e, tt.method, tt.target, `{"name":`)
			expectStatus(t, rec, http.StatusBadRequest)
			expectMessage(t, rec, "Request body must be a JSON object")
		})
	}
}

func TestPagination(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())

	names := make([]string, 12)
	for i := range names {
		names[i] = fmt.Sprintf("Listing %02d", i+1)
	}
	seed(t, e, names...)

	rec := do(t, e, http.MethodGet, "/api/listings?page=2&perPage=5", "")
	expectStatus(t, rec, http.StatusOK)

	page := decodeArray(t, rec)
	if len(page) != 5 {
		t.Fatalf("page size: got %d, want 5", len(page))
	}
	for i, listing := range page {
		want := fmt.Sprintf("Listing %02d", i+6)
		if listing["name"] != want {
			t.Errorf("record %d: got %v, want %s", i, listing["name"], want)
		}
	}
}

func TestPaginationCoversAllWithoutDuplicates(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())

	names := make([]string, 12)
	for i := range names {
		names[i] = fmt.Sprintf("Listing %02d", i+1)
	}
	ids := seed(t, e, names...)

	seen := make(map[string]bool)
	for page := 1; page <= 3; page++ {
		rec := do(t, e, http.MethodGet, fmt.Sprintf("/api/listings?page=%d&perPage=5", page), "")
		expectStatus(t, rec, http.StatusOK)

		for _, listing := range decodeArray(t, rec) {
			id := listing["_id"].(string)
			if seen[id] {
				t.Errorf("duplicate id %s on page %d", id, page)
			}
			seen[id] = true
		}
	}

	if len(seen) != len(ids) {
		t.Errorf("listings seen: got %d, want %d", len(seen), len(ids))
	}
}

func TestPaginationBeyondLastPage(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())
	seed(t, e, "A", "B", "C")

	rec := do(t, e, http.MethodGet, "/api/listings?page=9&perPage=5", "")
	expectStatus(t, rec, http.StatusOK)

	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body: got %s, want []", body)
	}
}

func TestPaginationFallsBackToDefaults(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())

	names := make([]string, 12)
	for i := range names {
		names[i] = fmt.Sprintf("Listing %02d", i+1)
	}
	seed(t, e, names...)

	tests := []struct {
		name  string
		query string
	}{
		{"missing", ""},
		{"non-numeric", "?page=abc&perPage=xyz"},
		{"zero", "?page=0&perPage=0"},
		{"negative", "?page=-1&perPage=-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, http.MethodGet, "/api/listings"+tt.query, "")
			expectStatus(t, rec, http.StatusOK)

			page := decodeArray(t, rec)
			if len(page) != 10 {
				t.Fatalf("page size: got %d, want 10", len(page))
			}
			if page[0]["name"] != "Listing 01" {
				t.Errorf("first record: got %v, want Listing 01", page[0]["name"])
			}
		})
	}
}

func TestPaginationExtremeValues(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())
	seed(t, e, "A", "B", "C")

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"huge perPage", "?perPage=4611686018427387904", 3},
		{"huge perPage past first page", "?page=2&perPage=1099511627776", 0},
		{"page far past the end", "?page=4611686018427387905&perPage=4", 0},
		{"both at max", "?page=9223372036854775807&perPage=9223372036854775807", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, http.MethodGet, "/api/listings"+tt.query, "")
			expectStatus(t, rec, http.StatusOK)

			if got := len(decodeArray(t, rec)); got != tt.want {
				t.Errorf("page size: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPaginationMaxPerPage(t *testing.T) {
	cfg := testConfig()
	cfg.Pagination.MaxPerPage = 3

	e := newTestRouter(t, newMemoryStore(), cfg)
	seed(t, e, "A", "B", "C", "D", "E")

	rec := do(t, e, http.MethodGet, "/api/listings?perPage=50", "")
	expectStatus(t, rec, http.StatusOK)

	if got := len(decodeArray(t, rec)); got != 3 {
		t.Errorf("page size: got %d, want 3", got)
	}
}

func TestNameFilter(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())
	seed(t, e, "Lakeview Condo", "Downtown Loft", "LAKESIDE Cabin")

	tests := []struct {
		query string
		want  int
	}{
		{"?name=lake", 2},
		{"?name=Loft", 1},
		{"?name=castle", 0},
		{"?name=", 3},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := do(t, e, http.MethodGet, "/api/listings"+tt.query, "")
			expectStatus(t, rec, http.StatusOK)

			if got := len(decodeArray(t, rec)); got != tt.want {
				t.Errorf("matches: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUnknownID(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())

	tests := []struct {
		method  string
		body    string
		message string
	}{
		{http.MethodGet, "", "Listing not found"},
		{http.MethodPut, `{"price":1}`, "Listing not found or no changes made"},
		{http.MethodDelete, "", "Listing not found"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec := do(t, e, tt.method, "/api/listings/does-not-exist", tt.body)
			expectStatus(t, rec, http.StatusNotFound)
			expectMessage(t, rec, tt.message)
		})
	}
}

func TestUpdateWithoutChanges(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())
	id := seed(t, e, "Lakeview Condo")[0]

	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"same value", `{"name":"Lakeview Condo"}`},
		{"only id", `{"_id":"other"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, e, http.MethodPut, "/api/listings/"+id, tt.body)
			expectStatus(t, rec, http.StatusNotFound)
			expectMessage(t, rec, "Listing not found or no changes made")
		})
	}
}

func TestStoreFailures(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("connection refused")
	e := newTestRouter(t, store, testConfig())

	tests := []struct {
		method  string
		target  string
		body    string
		message string
	}{
		{http.MethodPost, "/api/listings", `{"name":"x"}`, "Unable to add listing"},
		{http.MethodGet, "/api/listings", "", "Unable to retrieve listings"},
		{http.MethodGet, "/api/listings/abc", "", "Unable to retrieve listing"},
		{http.MethodPut, "/api/listings/abc", `{"name":"x"}`, "Unable to update listing"},
		{http.MethodDelete, "/api/listings/abc", "", "Unable to delete listing"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := do(t, e, tt.method, tt.target, tt.body)
			expectStatus(t, rec, http.StatusInternalServerError)

			body := decodeObject(t, rec)
			if body["message"] != tt.message {
				t.Errorf("message: got %v, want %s", body["message"], tt.message)
			}
			if body["error"] != "connection refused" {
				t.Errorf("error: got %v, want connection refused", body["error"])
			}
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())

	rec := do(t, e, http.MethodGet, "/api/unknown", "")
	expectStatus(t, rec, http.StatusNotFound)
	expectMessage(t, rec, "Route not found")
}

func TestRequestIDHeader(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())

	rec := do(t, e, http.MethodGet, "/", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID: got %s, want req-123", got)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = 1

	e := newTestRouter(t, newMemoryStore(), cfg)

	// Burst is twice the rate, so the third immediate request is rejected.
	for i := 0; i < 2; i++ {
		expectStatus(t, do(t, e, http.MethodGet, "/", ""), http.StatusOK)
	}

	rec := do(t, e, http.MethodGet, "/", "")
	expectStatus(t, rec, http.StatusTooManyRequests)
	expectMessage(t, rec, "Too many requests")
}

func TestRateLimitBelowOnePerSecond(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = 0.2

	e := newTestRouter(t, newMemoryStore(), cfg)

	expectStatus(t, do(t, e, http.MethodGet, "/", ""), http.StatusOK)

	rec := do(t, e, http.MethodGet, "/", "")
	expectStatus(t, rec, http.StatusTooManyRequests)
	expectMessage(t, rec, "Too many requests")
}

func TestStatusWithoutChecks(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())

	rec := do(t, e, http.MethodGet, "/status", "")
	expectStatus(t, rec, http.StatusOK)

	if got := decodeObject(t, rec)["status"]; got != "healthy" {
		t.Errorf("status: got %v, want healthy", got)
	}
}

func TestDocsAndStaticAssets(t *testing.T) {
	e := newTestRouter(t, newMemoryStore(), testConfig())

	rec := do(t, e, http.MethodGet, "/docs", "")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "/static/openapi.json") {
		t.Error("docs page does not reference /static/openapi.json")
	}

	rec = do(t, e, http.MethodGet, "/static/openapi.json", "")
	expectStatus(t, rec, http.StatusOK)

	doc := decodeObject(t, rec)
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		t.Fatal("openapi.json has no paths")
	}
	for _, path := range []string{"/", "/api/listings", "/api/listings/{id}"} {
		if _, ok := paths[path]; !ok {
			t.Errorf("openapi.json missing path %s", path)
		}
	}
}
