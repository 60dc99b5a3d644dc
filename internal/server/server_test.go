package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Makepad-fr/tada-tasks/internal/api"
	"github.com/Makepad-fr/tada-tasks/internal/board"
	"github.com/Makepad-fr/tada-tasks/internal/model"
	"github.com/Makepad-fr/tada-tasks/internal/store/memstore"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestServer(t *testing.T) (*Server, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return New(store, quietLogger()), store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCreateAndList(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	w := do(t, s.Handler(), http.MethodPost, "/api/tasks", `{"text":"Buy milk","expire":"2025-07-01"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var created model.Task
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if created.ID == nil || created.Text != "Buy milk" || created.Expire != "2025-07-01" {
		t.Errorf("Unexpected created task %+v", created)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("Expected X-Request-ID on response")
	}

	w = do(t, s.Handler(), http.MethodGet, "/api/tasks", "")
	var tasks []model.Task
	if err := json.Unmarshal(w.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Text != "Buy milk" {
		t.Errorf("Unexpected list %+v", tasks)
	}
}

func TestListEmptyIsArray(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	w := do(t, s.Handler(), http.MethodGet, "/api/tasks", "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("Expected [], got %s", w.Body.String())
	}
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()
	s, store := newTestServer(t)

	tests := []struct {
		body string
		code int
	}{
		{`{"text":""}`, http.StatusBadRequest},
		{`{"text":"   "}`, http.StatusBadRequest},
		{`{not json`, http.StatusBadRequest},
		{`{"text":"ok","expire":"someday"}`, http.StatusOK},
	}
	for _, tt := range tests {
		if w := do(t, s.Handler(), http.MethodPost, "/api/tasks", tt.body); w.Code != tt.code {
			t.Errorf("POST %s: expected %d, got %d", tt.body, tt.code, w.Code)
		}
	}
	all := store.All()
	if len(all) != 1 || all[0].Expire != "" {
		t.Errorf("Expected unparsable expire to be dropped, got %+v", all)
	}
}

func TestDone(t *testing.T) {
	t.Parallel()
	s, store := newTestServer(t)
	store.Create("a", "")
	store.Create("b", "")

	w := do(t, s.Handler(), http.MethodPatch, "/api/tasks/1/done", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var task model.Task
	if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil || !task.Done {
		t.Errorf("Expected done task, got %s", w.Body.String())
	}
	if rem := store.Remaining(); len(rem) != 1 || rem[0].Text != "b" {
		t.Errorf("Unexpected remaining %+v", rem)
	}

	if w := do(t, s.Handler(), http.MethodPatch, "/api/tasks/99/done", ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	if w := do(t, s.Handler(), http.MethodPatch, "/api/tasks/abc/done", ""); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	if w := do(t, s.Handler(), http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Errorf("Expected 200 from healthz, got %d", w.Code)
	}
	do(t, s.Handler(), http.MethodGet, "/api/tasks", "")
	w := do(t, s.Handler(), http.MethodGet, "/metrics", "")
	if !strings.Contains(w.Body.String(), `tada_http_requests_total{method="GET",route="/api/tasks",status="200"} 1`) {
		t.Errorf("Expected request counter in metrics:\n%s", w.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks/1/done", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204 preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Expected wildcard origin, got %q", w.Header().Get("Access-Control-Allow-Origin"))
	}
}

// The client, board and server together: create, list, complete.
func TestClientRoundTrip(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	c, err := api.New(srv.URL)
	if err != nil {
		t.Fatalf("api.New failed: %v", err)
	}
	b := board.New(c, nil)
	ctx := context.Background()

	f := board.Form{Text: "Buy milk"}
	f.SetExpire(time.Date(2025, time.July, 1, 0, 30, 0, 0, time.FixedZone("JST", 9*60*60)))
	if err := b.Submit(ctx, &f); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	tasks := b.Tasks()
	if len(tasks) != 1 || tasks[0].Expire != "2025-07-01" || tasks[0].ID == nil {
		t.Fatalf("Unexpected tasks after submit %+v", tasks)
	}
	if got := model.FormatLabel(tasks[0].Expire, model.ParseLocale("ja-JP")); got != "2025/7/1" {
		t.Errorf("Expected label for the picked day, got %q", got)
	}

	if err := b.MarkDone(ctx, tasks[0]); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	if len(b.Tasks()) != 0 {
		t.Errorf("Expected done task to disappear, got %+v", b.Tasks())
	}

	missing := model.Task{ID: model.IDOf(1234), Text: "ghost"}
	if err := b.MarkDone(ctx, missing); !api.IsStatus(err, http.StatusNotFound) {
		t.Errorf("Expected 404 StatusError, got %v", err)
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	t.Parallel()
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", bytes.NewReader(nil))
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("Expected echoed request id, got %q", got)
	}
}
