package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Makepad-fr/tada-tasks/internal/server"
	"github.com/Makepad-fr/tada-tasks/internal/store/memstore"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// startService runs the reference server and isolates HOME so no user
// config is picked up.
func startService(t *testing.T) (string, *memstore.Store) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	l := logrus.New()
	l.SetOutput(io.Discard)
	store := memstore.New()
	srv := httptest.NewServer(server.New(store, l).Handler())
	t.Cleanup(srv.Close)
	return srv.URL, store
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), append([]string{"--no-color"}, args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestAddListDone(t *testing.T) {
	url, store := startService(t)

	code, out, errOut := execute(t, "--api", url, "add", "Buy", "milk", "--due", "2025-07-01")
	if code != 0 {
		t.Fatalf("add exited %d: %s", code, errOut)
	}
	if !strings.Contains(out, "added") {
		t.Errorf("Expected confirmation, got %q", out)
	}
	if all := store.All(); len(all) != 1 || all[0].Text != "Buy milk" || all[0].Expire != "2025-07-01" {
		t.Fatalf("Unexpected store contents %+v", all)
	}

	code, out, _ = execute(t, "--api", url, "--locale", "ja-JP", "ls")
	if code != 0 {
		t.Fatalf("ls exited %d", code)
	}
	if !strings.Contains(out, "Buy milk") || !strings.Contains(out, "2025/7/1") {
		t.Errorf("Expected task with ja-JP label, got:\n%s", out)
	}

	code, _, errOut = execute(t, "--api", url, "done", "1")
	if code != 0 {
		t.Fatalf("done exited %d: %s", code, errOut)
	}
	if len(store.Remaining()) != 0 {
		t.Error("Expected task completed")
	}

	_, out, _ = execute(t, "--api", url, "ls", "--group")
	if !strings.Contains(out, "no tasks") {
		t.Errorf("Expected empty list, got:\n%s", out)
	}
}

func TestUsageErrors(t *testing.T) {
	url, _ := startService(t)

	tests := []struct {
		name string
		args []string
	}{
		{"add without text", []string{"--api", url, "add"}},
		{"add blank text", []string{"--api", url, "add", "  "}},
		{"add bad due", []string{"--api", url, "add", "x", "--due", "tomorrow"}},
		{"done not a number", []string{"--api", url, "done", "abc"}},
		{"done unknown id", []string{"--api", url, "done", "99"}},
		{"done no args", []string{"--api", url, "done"}},
		{"unknown command", []string{"frobnicate"}},
		{"unknown flag", []string{"ls", "--bogus"}},
		{"bad api url", []string{"--api", "localhost", "ls"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := execute(t, tt.args...)
			if code != 2 {
				t.Errorf("Expected exit 2, got %d (%s)", code, errOut)
			}
		})
	}
}

func TestServiceDown(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	// A server that has been closed leaves a port nobody listens on.
	dead := httptest.NewServer(nil)
	deadURL := dead.URL
	dead.Close()

	code, _, errOut := execute(t, "--api", deadURL, "ls")
	if code != 1 {
		t.Errorf("Expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "reload") {
		t.Errorf("Expected failing step in message, got %q", errOut)
	}
}

func TestAddReportsCreateWhenListFails(t *testing.T) {
	url, store := startService(t)
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			http.Error(w, "list down", http.StatusServiceUnavailable)
			return
		}
		target := url + r.URL.Path
		req, _ := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
		req.Header = r.Header.Clone()
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()
		w.WriteHeader(resp.StatusCode)
		_, _ = io.Copy(w, resp.Body)
	}))
	t.Cleanup(proxy.Close)

	code, out, errOut := execute(t, "--api", proxy.URL, "add", "Buy", "milk")
	if code != 0 {
		t.Fatalf("Expected exit 0 once the task exists, got %d: %s", code, errOut)
	}
	if !strings.Contains(out, "added") {
		t.Errorf("Expected created task to be reported, got %q", out)
	}
	if !strings.Contains(errOut, "reload") {
		t.Errorf("Expected list failure on stderr, got %q", errOut)
	}
	if n := len(store.All()); n != 1 {
		t.Errorf("Expected exactly one stored task, got %d", n)
	}
}

func TestConfigFile(t *testing.T) {
	url, _ := startService(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "api_url: " + url + "\nlocale: en-US\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	if code, _, errOut := execute(t, "--config", path, "add", "from", "config", "--due", "2025-07-01"); code != 0 {
		t.Fatalf("add exited %d: %s", code, errOut)
	}
	_, out, _ := execute(t, "--config", path, "ls")
	if !strings.Contains(out, "7/1/2025") {
		t.Errorf("Expected en-US label from config, got:\n%s", out)
	}

	if code, _, _ := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "ls"); code != 1 {
		t.Errorf("Expected exit 1 for missing config, got %d", code)
	}
}
