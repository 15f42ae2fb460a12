package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/webdeck/homebridge-indigo/internal/bridge"
	"github.com/webdeck/homebridge-indigo/internal/indigo"
	"github.com/webdeck/homebridge-indigo/internal/infrastructure/config"
	"github.com/webdeck/homebridge-indigo/internal/infrastructure/logging"
)

// fakeIndigo implements bridge.Client with canned listings and details.
type fakeIndigo struct {
	mu       sync.Mutex
	listings []indigo.Summary
	details  map[string]*indigo.Detail
	getErrs  map[string]error
}

func newFakeIndigo() *fakeIndigo {
	return &fakeIndigo{
		details: make(map[string]*indigo.Detail),
		getErrs: make(map[string]error),
	}
}

func (f *fakeIndigo) device(name string) {
	restURL := "/devices/" + name + ".json"
	f.listings = append(f.listings, indigo.Summary{Name: name, RestURL: restURL})
	f.details[restURL] = &indigo.Detail{
		Name:          name,
		RestURL:       restURL,
		RestParent:    indigo.RestParentDevices,
		SupportsOnOff: true,
		Properties:    indigo.Properties{},
	}
}

func (f *fakeIndigo) failGets(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for restURL := range f.details {
		f.getErrs[restURL] = err
	}
}

func (f *fakeIndigo) ListDevices(_ context.Context, path string) ([]indigo.Summary, error) {
	if path != indigo.DeviceListingPath {
		return nil, nil
	}
	return f.listings, nil
}

func (f *fakeIndigo) GetDevice(_ context.Context, restURL string) (*indigo.Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErrs[restURL]; err != nil {
		return nil, err
	}
	d, ok := f.details[restURL]
	if !ok {
		return nil, fmt.Errorf("no detail for %s", restURL)
	}
	return d, nil
}

func (f *fakeIndigo) Request(context.Context, string, string, url.Values) ([]byte, error) {
	return []byte(`{}`), nil
}

func (f *fakeIndigo) Execute(context.Context, string) error { return nil }

// newTestServer builds a server whose registry was discovered from the fake.
func newTestServer(t *testing.T, fake *fakeIndigo) (*Server, http.Handler) {
	t.Helper()

	logger := logging.Default()
	registry := bridge.NewRegistry(config.BridgeConfig{}, config.UnitFahrenheit, fake, logger)
	if err := registry.Discover(context.Background()); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	server, err := New(Deps{
		Config:   config.ListenerConfig{Host: "127.0.0.1", Port: 8177},
		WS:       config.WebSocketConfig{Path: "/ws", MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10},
		Logger:   logger,
		Registry: registry,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	server.hub = NewHub(server.wsCfg, logger)
	return server, server.buildRouter()
}

func TestServer_RequiresRegistry(t *testing.T) {
	_, err := New(Deps{Logger: logging.Default()})
	if err == nil {
		t.Error("New() without registry returned nil error")
	}
}

func TestServer_Health(t *testing.T) {
	_, router := newTestServer(t, newFakeIndigo())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if body["version"] != "test" {
		t.Errorf("version = %v, want test", body["version"])
	}
}

func TestServer_DeviceChanged(t *testing.T) {
	fake := newFakeIndigo()
	fake.device("Lamp")
	_, router := newTestServer(t, fake)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices/Lamp", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /devices/Lamp = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
}

func TestServer_DeviceChanged_UnknownDevice(t *testing.T) {
	fake := newFakeIndigo()
	fake.device("Lamp")
	_, router := newTestServer(t, fake)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices/Toaster", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("GET /devices/Toaster = %d, want 404", rec.Code)
	}
}

func TestServer_DeviceChanged_ReconcileFailure(t *testing.T) {
	fake := newFakeIndigo()
	fake.device("Lamp")
	server, router := newTestServer(t, fake)

	fake.failGets(errors.New("server down"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices/Lamp", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("GET /devices/Lamp with failing fetch = %d, want 500", rec.Code)
	}
	if got := server.reconcileFailed.Load(); got != 1 {
		t.Errorf("reconcileFailed = %d, want 1", got)
	}
}

func TestServer_ListAccessories(t *testing.T) {
	fake := newFakeIndigo()
	fake.device("Lamp")
	fake.device("Heater")
	_, router := newTestServer(t, fake)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/devices/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /devices/ = %d, want 200", rec.Code)
	}
	var body struct {
		Accessories []accessorySummary `json:"accessories"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if len(body.Accessories) != 2 {
		t.Fatalf("listed %d accessories, want 2", len(body.Accessories))
	}
	// Display-name order
	if body.Accessories[0].ID != "Heater" || body.Accessories[1].ID != "Lamp" {
		t.Errorf("listing order = %s, %s; want Heater, Lamp",
			body.Accessories[0].ID, body.Accessories[1].ID)
	}
}

func TestServer_Metrics(t *testing.T) {
	fake := newFakeIndigo()
	fake.device("Lamp")
	_, router := newTestServer(t, fake)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics = %d, want 200", rec.Code)
	}
	var metrics SystemMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if metrics.Accessories.Total != 1 {
		t.Errorf("accessories.total = %d, want 1", metrics.Accessories.Total)
	}
	if metrics.Version != "test" {
		t.Errorf("version = %q, want test", metrics.Version)
	}
}

func TestServer_RequestIDPropagated(t *testing.T) {
	_, router := newTestServer(t, newFakeIndigo())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc123" {
		t.Errorf("X-Request-ID = %q, want abc123", got)
	}
}
