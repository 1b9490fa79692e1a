package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stablecam/stablecam/internal/device"
	"github.com/stablecam/stablecam/internal/events"
	"github.com/stablecam/stablecam/internal/infrastructure/config"
	"github.com/stablecam/stablecam/internal/infrastructure/logging"
	"github.com/stablecam/stablecam/internal/monitor"
	"github.com/stablecam/stablecam/internal/registry"
)

// mockDetector returns a fixed camera set.
type mockDetector struct {
	cameras []device.CameraDevice
}

func (d *mockDetector) DetectCameras() ([]device.CameraDevice, error) {
	out := make([]device.CameraDevice, len(d.cameras))
	copy(out, d.cameras)
	return out, nil
}

func (d *mockDetector) PlatformName() string { return "mock" }

func testCamera(index int, serial string) device.CameraDevice {
	return device.CameraDevice{
		SystemIndex:  index,
		VendorID:     "046d",
		ProductID:    "085e",
		SerialNumber: &serial,
		Label:        "Test Camera",
	}
}

// testServer creates a Server backed by a real registry store in a temp dir.
func testServer(t *testing.T, jwtSecret string, cameras ...device.CameraDevice) (*Server, *monitor.Manager) {
	t.Helper()

	store, err := registry.New(registry.Config{Path: filepath.Join(t.TempDir(), "registry.json")})
	if err != nil {
		t.Fatalf("registry.New() error: %v", err)
	}

	bus := events.NewBus()
	mgr := monitor.New(store, &mockDetector{cameras: cameras}, bus, monitor.Config{})

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
			JWTSecret: jwtSecret,
		},
		WS: config.WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logger:  log,
		Monitor: mgr,
		Bus:     bus,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	return srv, mgr
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t, "")
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version = %v, want test", resp["version"])
	}
	if resp["monitor_state"] != "idle" {
		t.Errorf("monitor_state = %v, want idle", resp["monitor_state"])
	}
}

func TestListDevices_Empty(t *testing.T) {
	srv, _ := testServer(t, "")
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("count = %d, want 0", resp.Count)
	}
}

func TestGetDevice(t *testing.T) {
	srv, mgr := testServer(t, "")
	router := srv.buildRouter()

	stableID, _, err := mgr.Register(testCamera(0, "SN001"))
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices/"+stableID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var dev device.RegisteredDevice
	if err := json.Unmarshal(w.Body.Bytes(), &dev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if dev.StableID != stableID {
		t.Errorf("stable_id = %q, want %q", dev.StableID, stableID)
	}
}

func TestGetDevice_NotFound(t *testing.T) {
	srv, _ := testServer(t, "")
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices/stable-cam-099", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestDetect(t *testing.T) {
	srv, _ := testServer(t, "", testCamera(0, "SN001"), testCamera(1, "SN002"))
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/detect", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
}

func TestRegister(t *testing.T) {
	srv, _ := testServer(t, "", testCamera(0, "SN001"))
	router := srv.buildRouter()

	body := bytes.NewBufferString(`{"system_index": 0}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp registerResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.StableID != "stable-cam-001" {
		t.Errorf("stable_id = %q, want stable-cam-001", resp.StableID)
	}
	if !resp.Created {
		t.Error("created = false, want true")
	}

	// Registering the same camera again is idempotent.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewBufferString(`{"system_index": 0}`))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("repeat status = %d, want %d", w.Code, http.StatusOK)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Created {
		t.Error("created = true on repeat registration, want false")
	}
}

func TestRegister_NoCameraAtIndex(t *testing.T) {
	srv, _ := testServer(t, "", testCamera(0, "SN001"))
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", bytes.NewBufferString(`{"system_index": 5}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHistory_Disabled(t *testing.T) {
	srv, _ := testServer(t, "")
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d when history disabled", w.Code, http.StatusNotFound)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	srv, _ := testServer(t, "test-secret-key-at-least-32-characters-long")
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuth_ValidToken(t *testing.T) {
	const secret = "test-secret-key-at-least-32-characters-long"
	srv, _ := testServer(t, secret)
	router := srv.buildRouter()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "diagnostics",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestAuth_WrongSecret(t *testing.T) {
	srv, _ := testServer(t, "test-secret-key-at-least-32-characters-long")
	router := srv.buildRouter()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("a-completely-different-secret-value-here"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := testServer(t, "")
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "my-request-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "my-request-id" {
		t.Errorf("X-Request-ID = %q, want my-request-id", got)
	}

	// Generated when absent.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not generated")
	}
}
