package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/quantumquest/quantum-quest-go/internal/engine"
	"github.com/quantumquest/quantum-quest-go/internal/rooms"
	"github.com/quantumquest/quantum-quest-go/internal/store"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "api_test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	manager := rooms.NewManager(engine.NewFactory("test_session_seed"))
	srv := NewServer(manager, db, nil)
	return srv, srv.Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, rec.Body.String())
	}
}

func TestListRooms(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/rooms", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Rooms []rooms.RoomInfo `json:"rooms"`
		Count int              `json:"count"`
	}
	decodeBody(t, rec, &resp)
	if resp.Count != 6 || len(resp.Rooms) != 6 {
		t.Errorf("expected 6 rooms, got %d", resp.Count)
	}
	if resp.Rooms[0].ID != rooms.RoomProbabilityBay {
		t.Errorf("first room = %s, want probability-bay", resp.Rooms[0].ID)
	}
}

func TestUnknownRoomReturns404Envelope(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/rooms/cafeteria/progress", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Type"); got != ErrTypeRoomNotFound {
		t.Errorf("X-Error-Type = %q", got)
	}

	var engineErr EngineError
	decodeBody(t, rec, &engineErr)
	if engineErr.Type != ErrTypeRoomNotFound {
		t.Errorf("error type = %q", engineErr.Type)
	}
}

func TestActionRequiresActionField(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/rooms/probability-bay/actions", map[string]any{
		"payload": map[string]any{"count": 50},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestActionRoundTrip(t *testing.T) {
	srv, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/rooms/probability-bay/actions", map[string]any{
		"action":  "perform_measurements",
		"payload": map[string]any{"count": 100},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}

	var result rooms.InteractionResult
	decodeBody(t, rec, &result)
	if !result.Success {
		t.Fatalf("expected success, got feedback %q", result.ConceptValidation.Feedback)
	}
	if result.ConceptValidation.Concept != "quantum-measurement" {
		t.Errorf("concept = %q", result.ConceptValidation.Concept)
	}

	// The interaction lands in the store.
	items, err := srv.db.ListInteractions(context.Background(), store.InteractionsQuery{Room: "probability-bay", Limit: 10})
	if err != nil {
		t.Fatalf("ListInteractions: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("stored interactions = %d, want 1", len(items))
	}
	if items[0].Action != "perform_measurements" || !items[0].Success {
		t.Errorf("stored interaction = %+v", items[0])
	}
}

func TestFailedActionIsStoredAsFailure(t *testing.T) {
	srv, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/rooms/probability-bay/actions", map[string]any{
		"action":  "perform_measurements",
		"payload": map[string]any{"count": 3},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var result rooms.InteractionResult
	decodeBody(t, rec, &result)
	if result.Success {
		t.Fatal("expected failure for an undersized sample")
	}

	items, err := srv.db.ListInteractions(context.Background(), store.InteractionsQuery{Room: "probability-bay", Limit: 10})
	if err != nil {
		t.Fatalf("ListInteractions: %v", err)
	}
	if len(items) != 1 || items[0].Success {
		t.Errorf("stored interactions = %+v", items)
	}
}

func TestHintEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/rooms/tunneling-vault/hint", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var hint rooms.EducationalHint
	decodeBody(t, rec, &hint)
	if hint.Tier != rooms.HintGentle {
		t.Errorf("tier = %q, want gentle before any mistakes", hint.Tier)
	}
	if hint.Text == "" {
		t.Error("hint text is empty")
	}
}

func TestInitReturnsIntroductionAndInstructions(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/rooms/state-chamber/init", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp InitResponse
	decodeBody(t, rec, &resp)
	if resp.Room != "state-chamber" {
		t.Errorf("room = %q", resp.Room)
	}
	if resp.Introduction == "" {
		t.Error("introduction is empty")
	}
	if len(resp.Instructions) != 3 {
		t.Errorf("instructions = %d, want 3", len(resp.Instructions))
	}
}

func TestResetClearsProgressOverHTTP(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/rooms/probability-bay/actions", map[string]any{
		"action":  "perform_measurements",
		"payload": map[string]any{"count": 200},
	})
	if rec.Code != http.StatusOK {
		t.Fatal("setup action failed")
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/rooms/probability-bay/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/rooms/probability-bay/progress", nil)
	var prog ProgressResponse
	decodeBody(t, rec, &prog)
	if prog.Progress != 0 || prog.Complete {
		t.Errorf("progress after reset = %+v", prog)
	}
}

func TestMeasurementIngest(t *testing.T) {
	srv, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/telemetry/measurements", map[string]any{
		"room":    "probability-bay",
		"event":   "dice_roll",
		"payload": map[string]any{"face": 3},
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d\nbody: %s", rec.Code, rec.Body.String())
	}

	n, err := srv.db.CountMeasurements(context.Background(), "probability-bay")
	if err != nil {
		t.Fatalf("CountMeasurements: %v", err)
	}
	if n != 1 {
		t.Errorf("measurement count = %d, want 1", n)
	}
}

func TestMeasurementRejectsUnknownRoom(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/telemetry/measurements", map[string]any{
		"room":  "cafeteria",
		"event": "dice_roll",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	_, h := newTestServer(t)

	for _, path := range []string{"/", "/health", "/health/ready", "/health/live"} {
		rec := doJSON(t, h, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}

	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	var health HealthCheckResponse
	decodeBody(t, rec, &health)
	if health.Status != HealthStatusHealthy {
		t.Errorf("health status = %q", health.Status)
	}
	if health.Checks["rooms"].Status != HealthStatusHealthy {
		t.Errorf("rooms check = %+v", health.Checks["rooms"])
	}
}

func TestMetricsEndpointExposesCounters(t *testing.T) {
	_, h := newTestServer(t)

	doJSON(t, h, http.MethodPost, "/api/v1/rooms/probability-bay/actions", map[string]any{
		"action":  "perform_measurements",
		"payload": map[string]any{"count": 60},
	})

	rec := doJSON(t, h, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("quantum_quest_interactions_total")) {
		t.Error("metrics output missing interaction counter")
	}
}

func TestCORSPreflight(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/rooms", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}
