package bootstrap_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"healthdash/internal/bootstrap"
	recordsdto "healthdash/internal/modules/records/dto"
	"healthdash/internal/platform/config"
	apperrors "healthdash/internal/platform/errors"
)

// fakeAPI is an in-memory stand-in for the gateway in front of the auth,
// health and analytics services.
type fakeAPI struct {
	mu      sync.Mutex
	users   map[string]string
	tokens  map[string]string
	records []map[string]any
	nextID  int
}

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	api := &fakeAPI{users: map[string]string{}, tokens: map[string]string{}}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", api.register)
	mux.HandleFunc("POST /auth/login", api.login)
	mux.HandleFunc("GET /health/data", api.authed(api.list))
	mux.HandleFunc("POST /health/data", api.authed(api.create))
	mux.HandleFunc("DELETE /health/data/{id}", api.authed(api.delete))
	mux.HandleFunc("GET /analytics/stats/{username}", api.authed(api.stats))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *fakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var body struct{ Username, Password string }
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]any{{"msg": "invalid body"}}})
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, taken := a.users[body.Username]; taken {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Username already registered"})
		return
	}
	a.users[body.Username] = body.Password
	writeJSON(w, http.StatusOK, map[string]any{"id": len(a.users), "username": body.Username})
}

func (a *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "form body required"})
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	username := r.PostForm.Get("username")
	if pw, ok := a.users[username]; !ok || pw != r.PostForm.Get("password") {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
		return
	}
	token := "token-" + username + "-" + strconv.Itoa(len(a.tokens))
	a.tokens[token] = username
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (a *fakeAPI) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		a.mu.Lock()
		_, ok := a.tokens[token]
		a.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		next(w, r)
	}
}

func (a *fakeAPI) list(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []map[string]any{}
	for _, rec := range a.records {
		if rec["username"] == r.URL.Query().Get("username") {
			out = append(out, rec)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *fakeAPI) create(w http.ResponseWriter, r *http.Request) {
	var rec map[string]any
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "bad json"})
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	rec["id"] = a.nextID
	rec["timestamp"] = time.Date(2026, 2, 25, 10, a.nextID, 0, 0, time.UTC).Format("2006-01-02T15:04:05.000000")
	a.records = append(a.records, rec)
	writeJSON(w, http.StatusOK, rec)
}

func (a *fakeAPI) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, rec := range a.records {
		if rec["id"] == id {
			a.records = append(a.records[:i], a.records[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Record deleted successfully"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Health record not found"})
}

func (a *fakeAPI) stats(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	a.mu.Lock()
	defer a.mu.Unlock()
	total, count := 0.0, 0
	for _, rec := range a.records {
		if rec["username"] == username {
			total += rec["steps"].(float64)
			count++
		}
	}
	if count == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Stats not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id": 1, "username": username, "total_steps": total, "record_count": count, "average_steps": total / float64(count),
	})
}

func newApp(t *testing.T, stateDir, api string) *bootstrap.App {
	t.Helper()
	cfg, err := config.New(stateDir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg, err = cfg.WithAPIBaseURL(api)
	if err != nil {
		t.Fatalf("api url: %v", err)
	}
	app, err := bootstrap.New(cfg, bootstrap.WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { _ = app.Close(context.Background()) })
	return app
}

func TestRegisterLoginCreateList(t *testing.T) {
	srv := newFakeAPI(t)
	stateDir := t.TempDir()
	app := newApp(t, stateDir, srv.URL)
	ctx := context.Background()

	account, err := app.SessionCLI.Register(ctx, "carol", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if account.Username != "carol" {
		t.Fatalf("unexpected account %+v", account)
	}
	if _, err := app.SessionCLI.Register(ctx, "carol", "pw"); err == nil || err.Error() != "Username already registered" {
		t.Fatalf("expected duplicate registration message, got %v", err)
	}

	session, err := app.SessionCLI.Login(ctx, "carol", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token == "" {
		t.Fatalf("expected token")
	}

	dash, err := app.AnalyticsCLI.Dashboard(ctx)
	if err != nil {
		t.Fatalf("empty dashboard: %v", err)
	}
	if len(dash.Records) != 0 || dash.Stats != nil {
		t.Fatalf("expected empty dashboard without stats, got %+v", dash)
	}

	created, err := app.RecordsCLI.Create(ctx, recordsdto.CreateInput{Steps: 1000, SleepHours: 7, Weight: 60})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Steps != 1000 || created.ID == 0 || created.Timestamp == "" {
		t.Fatalf("unexpected record %+v", created)
	}

	listed, err := app.RecordsCLI.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	found := false
	for _, rec := range listed {
		if rec.ID == created.ID && rec.Steps == 1000 {
			found = true
		}
	}
	if !found {
		t.Fatalf("created record missing from %+v", listed)
	}

	dash, err = app.AnalyticsCLI.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.Stats == nil || dash.Stats.TotalSteps != 1000 || dash.Stats.RecordCount != 1 {
		t.Fatalf("unexpected stats %+v", dash.Stats)
	}

	// A second process over the same state dir picks the session back up.
	restarted := newApp(t, stateDir, srv.URL)
	current, err := restarted.SessionCLI.Current(ctx)
	if err != nil || current.Username != "carol" || current.Token != session.Token {
		t.Fatalf("expected rehydrated session, got %+v (%v)", current, err)
	}

	if err := restarted.SessionCLI.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := restarted.RecordsCLI.List(ctx); !errors.Is(err, apperrors.ErrNotAuthenticated) {
		t.Fatalf("expected not authenticated after logout, got %v", err)
	}
}

func TestRejectedTokenSignsOut(t *testing.T) {
	srv := newFakeAPI(t)
	app := newApp(t, t.TempDir(), srv.URL)
	ctx := context.Background()

	if err := app.Session.Login(ctx, "mallory", "forged"); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	_, err := app.RecordsCLI.List(ctx)
	if !errors.Is(err, apperrors.ErrSessionExpired) {
		t.Fatalf("expected expired session, got %v", err)
	}
	if _, ok := app.Session.Current(); ok {
		t.Fatalf("rejected token must be cleared")
	}
}

func TestFileSessionBackend(t *testing.T) {
	srv := newFakeAPI(t)
	stateDir := t.TempDir()
	cfg, err := config.New(stateDir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.SessionBackend = config.BackendFile
	cfg, _ = cfg.WithAPIBaseURL(srv.URL)

	app, err := bootstrap.New(cfg, bootstrap.WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer app.Close(context.Background())
	if err := app.Session.Login(context.Background(), "bob", "tok2"); err != nil {
		t.Fatalf("login: %v", err)
	}

	again, err := bootstrap.New(cfg, bootstrap.WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("bootstrap again: %v", err)
	}
	defer again.Close(context.Background())
	current, ok := again.Session.Current()
	if !ok || current.Username != "bob" || current.Token != "tok2" {
		t.Fatalf("expected file-backed session, got %+v", current)
	}
}
