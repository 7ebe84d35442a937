package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/passreg/passreg/internal/model"
	"github.com/passreg/passreg/internal/server/middleware"
	"github.com/passreg/passreg/internal/service"
	"github.com/passreg/passreg/internal/store"
)

const (
	testJWTSecret = "test-secret-for-handler-tests"
	testPassword  = "supersecretpassword"
)

// testEnv holds shared state for handler integration tests.
type testEnv struct {
	store   *store.Store
	authSvc *service.AuthService
	router  chi.Router
}

// newTestEnv creates a fresh test environment with an in-memory store and a
// Chi router wired the way the server wires it (auth middleware included, no
// rate limiting).
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.New("") // in-memory SQLite
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	authSvc := service.NewAuthService(st, testJWTSecret, time.Hour)
	accountHandler := NewAccountHandler(st, authSvc)
	passportHandler := NewPassportHandler(st)

	r := chi.NewRouter()
	r.Post("/users", accountHandler.Register)
	r.Post("/login", accountHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(authSvc, st))

		r.Get("/users/current", accountHandler.Current)
		r.Patch("/users/current", accountHandler.UpdateCurrent)

		r.Get("/passports", passportHandler.Search)
		r.Post("/passports", passportHandler.Create)
		r.Get("/passports/{passportId}", passportHandler.Get)
		r.Patch("/passports/{passportId}", passportHandler.Update)
		r.Delete("/passports/{passportId}", passportHandler.Delete)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff())
			r.Get("/users_search", accountHandler.Search)
			r.Get("/users/{userId}", accountHandler.Get)
			r.Delete("/users/{userId}", accountHandler.Delete)
		})
	})

	return &testEnv{
		store:   st,
		authSvc: authSvc,
		router:  r,
	}
}

// seedAccount registers a regular account directly through the auth service.
func (e *testEnv) seedAccount(t *testing.T, username, email string) *model.Account {
	t.Helper()
	acc, err := e.authSvc.Register(context.Background(), username, email, testPassword)
	if err != nil {
		t.Fatalf("seedAccount: %v", err)
	}
	return acc
}

// seedStaff registers an account and promotes it to staff.
func (e *testEnv) seedStaff(t *testing.T, username, email string) *model.Account {
	t.Helper()
	acc := e.seedAccount(t, username, email)
	acc.IsStaff = true
	if err := e.store.UpdateAccount(context.Background(), acc); err != nil {
		t.Fatalf("seedStaff: %v", err)
	}
	return acc
}

// seedPassport inserts a passport record directly through the store.
func (e *testEnv) seedPassport(t *testing.T, first, last string, series, number int64) *model.Passport {
	t.Helper()
	p := &model.Passport{
		FirstName:      first,
		LastName:       last,
		PassportSeries: series,
		PassportNumber: number,
	}
	if err := e.store.CreatePassport(context.Background(), p); err != nil {
		t.Fatalf("seedPassport: %v", err)
	}
	return p
}

// token issues a bearer token for the given account.
func (e *testEnv) token(t *testing.T, acc *model.Account) string {
	t.Helper()
	token, err := e.authSvc.IssueToken(context.Background(), acc.ID, acc.Username)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

// do executes an HTTP request against the test router and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// doAuth executes an authenticated HTTP request using the given bearer token.
func (e *testEnv) doAuth(t *testing.T, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// toJSON serializes v into a request body buffer.
func toJSON(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("toJSON: %v", err)
	}
	return buf
}

// assertStatus fails the test if the recorded status differs from want.
func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", rr.Code, want, rr.Body.String())
	}
}

// decodeJSON decodes the recorded response body into v.
func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decodeJSON: %v; body = %s", err, rr.Body.String())
	}
}
