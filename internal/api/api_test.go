package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/jera/internal/granularity"
	"github.com/starford/jera/internal/index"
	"github.com/starford/jera/internal/linker"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/periodic"
	"github.com/starford/jera/internal/phrase"
	"github.com/starford/jera/internal/storage"
	"github.com/starford/jera/internal/testutil"
)

type testEnv struct {
	router   http.Handler
	store    storage.Provider
	db       *index.DB
	settings *periodic.PeriodicSettings
	resyncs  int
}

// newEnv sets up a temp vault, SQLite DB, linker service, and router.
// authToken="" means disabled mode.
func newEnv(t *testing.T, authToken string) *testEnv {
	t.Helper()

	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)

	settings := &periodic.PeriodicSettings{
		Granularities: map[string]periodic.Record{
			"day":  {Enabled: true, Folder: "daily"},
			"week": {Enabled: true, Folder: "weekly"},
		},
	}
	agg := periodic.NewAggregator(nil, settings.Source())
	det := periodic.NewDetector(agg, false)
	svc := linker.New(store, db, agg, det, phrase.Flags{}, phrase.ScopeAllPeriodic)

	env := &testEnv{store: store, db: db, settings: settings}
	env.router = NewRouter(svc, db, store, authToken != "", authToken, nil, func() error {
		env.resyncs++
		return nil
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, _ := json.Marshal(body)
		req = httptest.NewRequest(method, target, bytes.NewReader(raw))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestSuggestEndpoint(t *testing.T) {
	env := newEnv(t, "")
	line := "see 3 days ago "

	w := env.do(t, http.MethodPost, "/suggest", SuggestRequest{
		Line:    line,
		Cursor:  len(line),
		DocName: "2025-06-10",
		DocPath: "daily/2025-06-10.md",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var s Suggestion
	_ = json.Unmarshal(w.Body.Bytes(), &s)
	if s.Phrase != "3 days ago" {
		t.Errorf("phrase = %q", s.Phrase)
	}
	if s.Date != "2025-06-07" || s.Path != "daily/2025-06-07.md" {
		t.Errorf("target = %s %s", s.Date, s.Path)
	}
	if s.Link != "[[daily/2025-06-07|3 days ago]]" {
		t.Errorf("link = %q", s.Link)
	}
}

func TestSuggestNoExpression(t *testing.T) {
	env := newEnv(t, "")
	line := "plain prose "

	w := env.do(t, http.MethodPost, "/suggest", SuggestRequest{Line: line, Cursor: len(line)})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSuggestCursorOutOfRange(t *testing.T) {
	env := newEnv(t, "")

	w := env.do(t, http.MethodPost, "/suggest", SuggestRequest{Line: "hi", Cursor: 99})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateLink(t *testing.T) {
	env := newEnv(t, "")

	w := env.do(t, http.MethodPost, "/links", CreateLinkRequest{Granularity: "week", Date: "2025-06-09"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp CreateLinkResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Path != "weekly/2025-W24.md" || !resp.Created {
		t.Errorf("resp = %+v", resp)
	}
	if _, err := env.store.Read(resp.Path); err != nil {
		t.Errorf("note not written: %v", err)
	}

	// Second call finds the existing note.
	w = env.do(t, http.MethodPost, "/links", CreateLinkRequest{Granularity: "week", Date: "2025-06-09"})
	if w.Code != http.StatusOK {
		t.Fatalf("second status = %d", w.Code)
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Created {
		t.Error("second call should not create")
	}
}

func TestCreateLinkValidation(t *testing.T) {
	env := newEnv(t, "")

	w := env.do(t, http.MethodPost, "/links", CreateLinkRequest{Granularity: "fortnight", Date: "2025-06-09"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad granularity status = %d, want 400", w.Code)
	}
	w = env.do(t, http.MethodPost, "/links", CreateLinkRequest{Granularity: "day", Date: "June 9"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", w.Code)
	}
}

func TestDetectEndpoint(t *testing.T) {
	env := newEnv(t, "")

	w := env.do(t, http.MethodGet, "/detect?name=2025-06-10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp DetectResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Periodic || resp.Granularity != granularity.Day || resp.Date != "2025-06-10" {
		t.Errorf("resp = %+v", resp)
	}

	w = env.do(t, http.MethodGet, "/detect?name=shopping+list", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Periodic {
		t.Error("shopping list detected as periodic")
	}

	w = env.do(t, http.MethodGet, "/detect", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing name status = %d, want 400", w.Code)
	}
}

func TestListPeriodic(t *testing.T) {
	env := newEnv(t, "")
	for _, n := range []models.PeriodicNote{
		{Path: "daily/2025-06-10.md", Granularity: granularity.Day, Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local)},
		{Path: "daily/2025-06-09.md", Granularity: granularity.Day, Date: time.Date(2025, 6, 9, 0, 0, 0, 0, time.Local)},
		{Path: "weekly/2025-W24.md", Granularity: granularity.Week, Date: time.Date(2025, 6, 9, 0, 0, 0, 0, time.Local)},
	} {
		if err := env.db.Upsert(n); err != nil {
			t.Fatal(err)
		}
	}

	w := env.do(t, http.MethodGet, "/periodic?granularity=day", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp PeriodicListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Notes) != 2 {
		t.Fatalf("total = %d, notes = %d", resp.Total, len(resp.Notes))
	}
	// Newest first.
	if resp.Notes[0].Date != "2025-06-10" {
		t.Errorf("first = %+v", resp.Notes[0])
	}

	w = env.do(t, http.MethodGet, "/periodic?granularity=hourly", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad granularity status = %d, want 400", w.Code)
	}
}

func TestGetPeriodic(t *testing.T) {
	env := newEnv(t, "")
	if err := env.store.Write("weekly/2025-W24.md", []byte("# 2025-W24\n")); err != nil {
		t.Fatal(err)
	}
	if err := env.db.Upsert(models.PeriodicNote{
		Path:        "weekly/2025-W24.md",
		Granularity: granularity.Week,
		Date:        time.Date(2025, 6, 9, 0, 0, 0, 0, time.Local),
	}); err != nil {
		t.Fatal(err)
	}

	w := env.do(t, http.MethodGet, "/periodic/week/2025-06-09", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp PeriodicNoteDetail
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Path != "weekly/2025-W24.md" || resp.Content != "# 2025-W24\n" {
		t.Errorf("resp = %+v", resp)
	}

	w = env.do(t, http.MethodGet, "/periodic/week/2025-01-06", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing note status = %d, want 404", w.Code)
	}

	w = env.do(t, http.MethodGet, "/periodic/hourly/2025-06-09", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad granularity status = %d, want 400", w.Code)
	}
}

func TestConfigAndReload(t *testing.T) {
	env := newEnv(t, "")

	w := env.do(t, http.MethodGet, "/config", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ConfigResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Granularities) != 2 || resp.Scope != "all-periodic" {
		t.Fatalf("resp = %+v", resp)
	}

	// Enable month and reload.
	env.settings.Granularities["month"] = periodic.Record{Enabled: true, Folder: "monthly"}
	w = env.do(t, http.MethodPost, "/reload", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("reload status = %d", w.Code)
	}
	if env.resyncs != 1 {
		t.Errorf("resyncs = %d, want 1", env.resyncs)
	}

	w = env.do(t, http.MethodGet, "/config", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Granularities) != 3 {
		t.Errorf("granularities after reload = %d, want 3", len(resp.Granularities))
	}
}

func TestAuthMiddleware(t *testing.T) {
	env := newEnv(t, "secret-token")

	w := env.do(t, http.MethodGet, "/config", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/config", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token status = %d, want 200", rec.Code)
	}
}
