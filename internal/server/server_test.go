package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beamforge/pkg/cache"
	"github.com/matzehuels/beamforge/pkg/errors"
	"github.com/matzehuels/beamforge/pkg/pipeline"
	"github.com/matzehuels/beamforge/pkg/survey"
)

const cellManifest = `
name = "demo"

[[elements]]
label = "D1"
type = "drift"
length_m = 1.0

[[elements]]
label = "QF"
type = "quadrupole"
length_m = 0.5

[[elements]]
label = "B1"
type = "dipole"
opening_deg = 30.0
radius_m = 2.0

[sequences]
cell = ["D1", "QF", "D1", "B1"]
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(c, nil, logger)
	t.Cleanup(func() { runner.Close() })
	return New(runner, logger)
}

func writeManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cell.toml")
	if err := os.WriteFile(path, []byte(cellManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func doRequest(t *testing.T, s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	return body
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/healthz", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("health body is not JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("got status %q, want ok", body["status"])
	}
}

func TestSurveyPost(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/survey", strings.NewReader(cellManifest))
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("got Content-Type %q, want application/json", ct)
	}
	if h := rec.Header().Get("X-Survey-Hash"); len(h) != 64 {
		t.Errorf("got X-Survey-Hash %q, want 64-char hash", h)
	}
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("got X-Cache %q on first request, want MISS", got)
	}

	var doc survey.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("response is not a survey document: %v", err)
	}
	if doc.Name != "cell" {
		t.Errorf("got document name %q, want cell", doc.Name)
	}
	if len(doc.Rows) != 4 {
		t.Errorf("got %d rows, want 4", len(doc.Rows))
	}

	// Identical request is served from cache.
	rec = doRequest(t, s, http.MethodPost, "/api/survey", strings.NewReader(cellManifest))
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d on second request, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("got X-Cache %q on second request, want HIT", got)
	}
}

func TestSurveyPostEmptyBody(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/survey", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", rec.Code)
	}
	if body := decodeError(t, rec); body["code"] != string(errors.ErrCodeInvalidInput) {
		t.Errorf("got code %q, want INVALID_INPUT", body["code"])
	}
}

func TestSurveyPostBadManifest(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/survey", strings.NewReader("[[elements\n"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400: %s", rec.Code, rec.Body)
	}
	if body := decodeError(t, rec); body["code"] != string(errors.ErrCodeInvalidManifest) {
		t.Errorf("got code %q, want INVALID_MANIFEST", body["code"])
	}
}

func TestSurveyGet(t *testing.T) {
	s := newTestServer(t)
	path := writeManifest(t)

	rec := doRequest(t, s, http.MethodGet, "/api/survey?manifest="+url.QueryEscape(path), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body)
	}
	var doc survey.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("response is not a survey document: %v", err)
	}
	if len(doc.Rows) != 4 {
		t.Errorf("got %d rows, want 4", len(doc.Rows))
	}

	t.Run("missingParam", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/survey", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("got status %d, want 400", rec.Code)
		}
	})

	t.Run("missingFile", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/api/survey?manifest=/no/such/file.toml", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("got status %d, want 404", rec.Code)
		}
	})

	t.Run("unknownSequence", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet,
			"/api/survey?manifest="+url.QueryEscape(path)+"&sequence=nope", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("got status %d, want 404: %s", rec.Code, rec.Body)
		}
	})

	t.Run("badOrigin", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet,
			"/api/survey?manifest="+url.QueryEscape(path)+"&origin_x=abc", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("got status %d, want 400", rec.Code)
		}
	})
}

func TestSchematic(t *testing.T) {
	s := newTestServer(t)
	path := writeManifest(t)

	rec := doRequest(t, s, http.MethodGet, "/api/schematic.svg?manifest="+url.QueryEscape(path), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("got Content-Type %q, want image/svg+xml", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "<svg") {
		t.Errorf("body does not look like SVG: %.40s", rec.Body.String())
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalidInput", errors.New(errors.ErrCodeInvalidInput, "bad"), http.StatusBadRequest},
		{"invalidManifest", errors.New(errors.ErrCodeInvalidManifest, "bad"), http.StatusBadRequest},
		{"sequenceNotFound", errors.New(errors.ErrCodeSequenceNotFound, "nope"), http.StatusNotFound},
		{"fileNotFound", errors.New(errors.ErrCodeFileNotFound, "nope"), http.StatusNotFound},
		{"timeout", errors.New(errors.ErrCodeTimeout, "slow"), http.StatusGatewayTimeout},
		{"internal", errors.New(errors.ErrCodeInternal, "boom"), http.StatusInternalServerError},
		{"uncoded", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.want {
				t.Errorf("got status %d, want %d", got, tt.want)
			}
		})
	}
}
