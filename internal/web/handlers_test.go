package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shapestone/shape-csvxml/internal/config"
	"github.com/shapestone/shape-csvxml/internal/logging"
)

func testServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			IdleTimeout:     time.Second,
			ShutdownTimeout: time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Convert: config.ConvertConfig{
			MaxRecordsCap:  -1,
			RequestTimeout: 5 * time.Second,
		},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
	if mutate != nil {
		mutate(cfg)
	}

	s, err := NewServer(cfg, logging.New(io.Discard, "error", "text"), prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return s
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, r)
	return w
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t, nil)
	w := do(t, s, http.MethodGet, "/healthz", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", w.Body.String())
	}
}

func TestConvertBody(t *testing.T) {
	s := testServer(t, nil)
	w := do(t, s, http.MethodPost, "/convert", "a,b\n1,2\n")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/xml; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("X-Conversion-Id") == "" {
		t.Error("X-Conversion-Id header missing")
	}

	want := `<csv:document xmlns:csv="https://shapestone.dev/ns/csv/1.0">` +
		`<csv:record number="1"><csv:field number="1">a</csv:field><csv:field number="2">b</csv:field></csv:record>` +
		`<csv:record number="2"><csv:field number="1">1</csv:field><csv:field number="2">2</csv:field></csv:record>` +
		`</csv:document>`
	if got := w.Body.String(); got != want {
		t.Errorf("body mismatch\ngot:  %s\nwant: %s", got, want)
	}
}

func TestConvertBody_Options(t *testing.T) {
	s := testServer(t, nil)
	w := do(t, s, http.MethodPost, "/convert?separator=;&process-headers=true", "h1;h2\nv1;v2\n")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `<csv:column number="1">h1</csv:column>`) {
		t.Errorf("header column missing: %s", body)
	}
	if !strings.Contains(body, `<csv:field number="1" column="h1">v1</csv:field>`) {
		t.Errorf("bound field missing: %s", body)
	}
}

func TestConvertBody_BadOption(t *testing.T) {
	s := testServer(t, nil)

	for _, target := range []string{
		"/convert?separator=%3A%3A", // two characters
		"/convert?frobnicate=1",     // unknown key
		"/convert?max-records=many",
	} {
		w := do(t, s, http.MethodPost, target, "a,b\n")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, w.Code)
			continue
		}
		var resp ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Errorf("%s: bad error body: %v", target, err)
			continue
		}
		if resp.Error == "" || resp.ConversionID == "" {
			t.Errorf("%s: incomplete error body: %+v", target, resp)
		}
		if w.Header().Get("X-Conversion-Id") != resp.ConversionID {
			t.Errorf("%s: header/body conversion id mismatch", target)
		}
	}
}

func TestConvertBody_TooLarge(t *testing.T) {
	s := testServer(t, func(cfg *config.Config) {
		cfg.Server.MaxBodyBytes = 16
	})

	w := do(t, s, http.MethodPost, "/convert", strings.Repeat("a,b,c\n", 100))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", w.Code)
	}
}

func TestConvertBody_MalformedInput(t *testing.T) {
	s := testServer(t, nil)
	w := do(t, s, http.MethodPost, "/convert", "a,\xffb\n")

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestConvertBody_Indent(t *testing.T) {
	s := testServer(t, nil)
	w := do(t, s, http.MethodPost, "/convert?indent=true&declaration=true", "a\n")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n") {
		t.Errorf("declaration missing: %s", body)
	}
	if !strings.Contains(body, "\n  <csv:record") {
		t.Errorf("indentation missing: %s", body)
	}
}

func TestConvertBody_Detect(t *testing.T) {
	s := testServer(t, nil)
	w := do(t, s, http.MethodPost, "/convert?detect=true", "id;name\n1;Alice\n")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `<csv:column number="1">id</csv:column>`) {
		t.Errorf("detected header missing: %s", body)
	}
	if !strings.Contains(body, `<csv:field number="2" column="name">Alice</csv:field>`) {
		t.Errorf("detected separator not applied: %s", body)
	}
}

func TestConvertBody_MaxRecordsCap(t *testing.T) {
	s := testServer(t, func(cfg *config.Config) {
		cfg.Convert.MaxRecordsCap = 1
	})

	// The client asks for more than the cap allows.
	w := do(t, s, http.MethodPost, "/convert?max-records=5", "a\nb\nc\n")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `<csv:record number="1">`) {
		t.Errorf("first record missing: %s", body)
	}
	if strings.Contains(body, `<csv:record number="2">`) {
		t.Errorf("cap not applied: %s", body)
	}
}

func TestConvertSource(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data.csv" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "x,y\n1,2\n")
	}))
	defer origin.Close()

	s := testServer(t, nil)

	t.Run("fetches and converts", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/convert?src="+origin.URL+"/data.csv", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), `<csv:field number="1">x</csv:field>`) {
			t.Errorf("converted body missing: %s", w.Body.String())
		}
	})

	t.Run("missing src", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/convert", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("unreachable source", func(t *testing.T) {
		w := do(t, s, http.MethodGet, "/convert?src="+origin.URL+"/missing.csv", "")
		if w.Code != http.StatusBadGateway {
			t.Fatalf("status = %d, want 502", w.Code)
		}
	})
}

func TestConvertSource_FileScheme(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "data.csv"), []byte("a,b\n"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	t.Run("enabled", func(t *testing.T) {
		s := testServer(t, func(cfg *config.Config) {
			cfg.Convert.AllowFileSources = true
			cfg.Convert.FileRoot = root
		})
		w := do(t, s, http.MethodGet, "/convert?src=file://data.csv", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
	})

	t.Run("disabled by default", func(t *testing.T) {
		s := testServer(t, nil)
		w := do(t, s, http.MethodGet, "/convert?src=file://data.csv", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})

	t.Run("escape rejected", func(t *testing.T) {
		s := testServer(t, func(cfg *config.Config) {
			cfg.Convert.AllowFileSources = true
			cfg.Convert.FileRoot = root
		})
		w := do(t, s, http.MethodGet, "/convert?src=file://../outside.csv", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := testServer(t, nil)

	// Two records through one successful conversion.
	if w := do(t, s, http.MethodPost, "/convert", "a\nb\n"); w.Code != http.StatusOK {
		t.Fatalf("conversion failed: %d", w.Code)
	}

	w := do(t, s, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `csvxml_conversions_total{outcome="ok"} 1`) {
		t.Errorf("conversion counter missing: %s", body)
	}
	if !strings.Contains(body, "csvxml_records_emitted_total 2") {
		t.Errorf("record counter missing: %s", body)
	}
}
