package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/calldeck/callquery/internal/api"
	"github.com/calldeck/callquery/internal/api/handler"
	"github.com/calldeck/callquery/internal/domain"
	"github.com/calldeck/callquery/internal/llm"
	"github.com/calldeck/callquery/internal/schema"
	"github.com/calldeck/callquery/internal/service"
	"github.com/calldeck/callquery/internal/store"
)

type stubStage struct {
	name string
	out  string
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Run(_ context.Context, _ string, _ []llm.Message) (string, error) {
	return s.out, nil
}

type stubStore struct {
	pingErr error
}

func (s *stubStore) DatabaseType() string                            { return "sqlite" }
func (s *stubStore) Close() error                                    { return nil }
func (s *stubStore) Ping(_ context.Context) error                    { return s.pingErr }
func (s *stubStore) Tables(_ context.Context) ([]store.Table, error) { return nil, nil }
func (s *stubStore) Execute(_ context.Context, _ string, _ store.Options) (*store.Result, error) {
	return nil, nil
}

type memSessions struct {
	turns map[string][]domain.Turn
}

func (m *memSessions) Append(_ context.Context, id string, t domain.Turn) error {
	m.turns[id] = append(m.turns[id], t)
	return nil
}

func (m *memSessions) Context(_ context.Context, id string) ([]domain.Turn, error) {
	return m.turns[id], nil
}

func (m *memSessions) Clear(_ context.Context, id string) error {
	delete(m.turns, id)
	return nil
}

func newTestRouter(answer string) http.Handler {
	svc := service.NewQueryService(
		&stubStage{name: "sql", out: "raw rows"},
		&stubStage{name: "eval", out: answer},
		&memSessions{turns: make(map[string][]domain.Turn)},
		service.Options{MaxRetries: 2, BaseDelay: time.Millisecond},
	)
	desc := schema.New([]store.Table{
		{Name: "calls", Columns: []store.Column{{Name: "call_id", DataType: "INTEGER"}}},
		{Name: "employees", Columns: []store.Column{{Name: "employee_id", DataType: "INTEGER"}}},
	}, nil)
	return api.NewRouter(api.Deps{
		Query:  svc,
		LLM:    llm.NewRouter("openai"),
		Store:  &stubStore{},
		Schema: desc,
	})
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["success"] != true {
		t.Error("expected success to be true")
	}

	data, ok := response["data"].(map[string]any)
	if !ok {
		t.Fatal("expected data to be a map")
	}

	if data["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", data["status"])
	}
}

func TestQueryEndpoint(t *testing.T) {
	router := newTestRouter("The answer is 42 calls.")

	body, _ := json.Marshal(map[string]string{"question": "How many calls last week?"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			Question  string `json:"question"`
			Answer    string `json:"answer"`
			SessionID string `json:"session_id"`
			Success   bool   `json:"success"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !response.Success {
		t.Error("expected envelope success to be true")
	}
	if response.Data.Answer != "The answer is 42 calls." {
		t.Errorf("unexpected answer: %q", response.Data.Answer)
	}
	if response.Data.SessionID == "" {
		t.Error("expected a minted session ID")
	}
}

func TestQueryEndpointRejectsEmptyQuestion(t *testing.T) {
	router := newTestRouter("unused")

	body, _ := json.Marshal(map[string]string{"question": ""})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestQueryEndpointRejectsBadJSON(t *testing.T) {
	router := newTestRouter("unused")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestClearSessionAlwaysSucceeds(t *testing.T) {
	router := newTestRouter("unused")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/never-seen", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestSessionHistoryRoundTrip(t *testing.T) {
	router := newTestRouter("Answer one.")

	body, _ := json.Marshal(map[string]string{"question": "first?", "session_id": "s1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("query failed: %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s1/history", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response struct {
		Data struct {
			Turns []domain.Turn `json:"turns"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Data.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(response.Data.Turns))
	}
	if response.Data.Turns[0].Role != domain.RoleUser || response.Data.Turns[0].Content != "first?" {
		t.Errorf("unexpected first turn: %+v", response.Data.Turns[0])
	}
	if response.Data.Turns[1].Content != "Answer one." {
		t.Errorf("unexpected second turn: %+v", response.Data.Turns[1])
	}
}

func TestSchemaEndpoint(t *testing.T) {
	router := newTestRouter("unused")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schema", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response struct {
		Data struct {
			Tables []string `json:"tables"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Data.Tables) != 2 || response.Data.Tables[0] != "calls" {
		t.Errorf("unexpected tables: %v", response.Data.Tables)
	}
}

func TestReadyCheckUnavailable(t *testing.T) {
	h := handler.ReadyCheck(&stubStore{pingErr: context.DeadlineExceeded})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}
