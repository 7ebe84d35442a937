package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/passreg/passreg/internal/model"
)

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestPassportCreate(t *testing.T) {
	env := newTestEnv(t)
	acc := env.seedAccount(t, "ivan", "ivan@example.com")
	token := env.token(t, acc)

	body := toJSON(t, map[string]interface{}{
		"first_name":      "Иван",
		"last_name":       "Иванов",
		"passport_series": 1234,
		"passport_number": 123456,
	})
	rr := env.doAuth(t, "POST", "/passports", body, token)
	assertStatus(t, rr, http.StatusCreated)

	var p model.Passport
	decodeJSON(t, rr, &p)
	if p.ID == 0 {
		t.Error("expected non-zero id")
	}
	if p.FirstName != "Иван" || p.LastName != "Иванов" {
		t.Errorf("name = %q %q, want Иван Иванов", p.FirstName, p.LastName)
	}

	// A second create with the identical pair is a conflict.
	body = toJSON(t, map[string]interface{}{
		"first_name":      "Пётр",
		"last_name":       "Петров",
		"passport_series": 1234,
		"passport_number": 123456,
	})
	rr = env.doAuth(t, "POST", "/passports", body, token)
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestPassportCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	acc := env.seedAccount(t, "ivan", "ivan@example.com")
	token := env.token(t, acc)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing series", map[string]interface{}{
			"first_name": "Иван", "last_name": "Иванов", "passport_number": 123456}},
		{"missing number", map[string]interface{}{
			"first_name": "Иван", "last_name": "Иванов", "passport_series": 1234}},
		{"missing first name", map[string]interface{}{
			"last_name": "Иванов", "passport_series": 1234, "passport_number": 123456}},
		{"missing last name", map[string]interface{}{
			"first_name": "Иван", "passport_series": 1234, "passport_number": 123456}},
		{"series too small", map[string]interface{}{
			"first_name": "Иван", "last_name": "Иванов", "passport_series": 999, "passport_number": 123456}},
		{"series too large", map[string]interface{}{
			"first_name": "Иван", "last_name": "Иванов", "passport_series": 10000, "passport_number": 123456}},
		{"number too small", map[string]interface{}{
			"first_name": "Иван", "last_name": "Иванов", "passport_series": 1234, "passport_number": 99999}},
		{"number too large", map[string]interface{}{
			"first_name": "Иван", "last_name": "Иванов", "passport_series": 1234, "passport_number": 1000000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.doAuth(t, "POST", "/passports", toJSON(t, tt.body), token)
			assertStatus(t, rr, http.StatusBadRequest)
		})
	}
}

func TestPassportCreateUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	body := toJSON(t, map[string]interface{}{
		"first_name":      "Иван",
		"last_name":       "Иванов",
		"passport_series": 1234,
		"passport_number": 123456,
	})
	rr := env.do(t, "POST", "/passports", body)
	assertStatus(t, rr, http.StatusForbidden)
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

func TestPassportSearch(t *testing.T) {
	env := newTestEnv(t)
	acc := env.seedAccount(t, "ivan", "ivan@example.com")
	token := env.token(t, acc)

	env.seedPassport(t, "Иван", "Иванов", 1234, 123456)
	env.seedPassport(t, "Maria", "Petrova", 4321, 654321)

	// No filters: full set, amount equals length.
	rr := env.doAuth(t, "GET", "/passports", nil, token)
	assertStatus(t, rr, http.StatusOK)

	var resp struct {
		Passports []model.Passport `json:"passports"`
		Amount    int              `json:"amount"`
	}
	decodeJSON(t, rr, &resp)
	if resp.Amount != 2 || len(resp.Passports) != 2 {
		t.Errorf("amount = %d, passports = %d, want 2 and 2", resp.Amount, len(resp.Passports))
	}

	// Exact filter on the pair.
	rr = env.doAuth(t, "GET", "/passports?passport_series=1234&passport_number=123456", nil, token)
	assertStatus(t, rr, http.StatusOK)
	decodeJSON(t, rr, &resp)
	if resp.Amount != 1 || resp.Passports[0].FirstName != "Иван" {
		t.Errorf("filtered search returned %+v", resp)
	}

	// Case-insensitive substring on last name.
	rr = env.doAuth(t, "GET", "/passports?last_name=petrov", nil, token)
	assertStatus(t, rr, http.StatusOK)
	decodeJSON(t, rr, &resp)
	if resp.Amount != 1 || resp.Passports[0].FirstName != "Maria" {
		t.Errorf("substring search returned %+v", resp)
	}

	// Unrecognized keys are ignored.
	rr = env.doAuth(t, "GET", "/passports?favorite_color=blue", nil, token)
	assertStatus(t, rr, http.StatusOK)
	decodeJSON(t, rr, &resp)
	if resp.Amount != 2 {
		t.Errorf("amount = %d, want full unfiltered set of 2", resp.Amount)
	}
}

func TestPassportSearchBadInteger(t *testing.T) {
	env := newTestEnv(t)
	acc := env.seedAccount(t, "ivan", "ivan@example.com")

	rr := env.doAuth(t, "GET", "/passports?passport_series=abc", nil, env.token(t, acc))
	assertStatus(t, rr, http.StatusBadRequest)
}

// ---------------------------------------------------------------------------
// Get / Delete
// ---------------------------------------------------------------------------

func TestPassportGet(t *testing.T) {
	env := newTestEnv(t)
	acc := env.seedAccount(t, "ivan", "ivan@example.com")
	token := env.token(t, acc)
	p := env.seedPassport(t, "Иван", "Иванов", 1234, 123456)

	rr := env.doAuth(t, "GET", fmt.Sprintf("/passports/%d", p.ID), nil, token)
	assertStatus(t, rr, http.StatusOK)

	var got model.Passport
	decodeJSON(t, rr, &got)
	if got.ID != p.ID {
		t.Errorf("id = %d, want %d", got.ID, p.ID)
	}

	rr = env.doAuth(t, "GET", "/passports/9000", nil, token)
	assertStatus(t, rr, http.StatusNotFound)
}

func TestPassportDelete(t *testing.T) {
	env := newTestEnv(t)
	acc := env.seedAccount(t, "ivan", "ivan@example.com")
	token := env.token(t, acc)
	p := env.seedPassport(t, "Иван", "Иванов", 1234, 123456)

	rr := env.doAuth(t, "DELETE", fmt.Sprintf("/passports/%d", p.ID), nil, token)
	assertStatus(t, rr, http.StatusOK)

	// A second delete of the same ID is 404, never a 500.
	rr = env.doAuth(t, "DELETE", fmt.Sprintf("/passports/%d", p.ID), nil, token)
	assertStatus(t, rr, http.StatusNotFound)
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestPassportUpdatePairRequired(t *testing.T) {
	env := newTestEnv(t)
	acc := env.seedAccount(t, "ivan", "ivan@example.com")
	token := env.token(t, acc)
	p := env.seedPassport(t, "Иван", "Иванов", 1234, 123456)

	// Series without number.
	body := toJSON(t, map[string]interface{}{"passport_series": 4321})
	rr := env.doAuth(t, "PATCH", fmt.Sprintf("/passports/%d", p.ID), body, token)
	assertStatus(t, rr, http.StatusBadRequest)

	// Number without series.
	body = toJSON(t, map[string]interface{}{"passport_number": 654321})
	rr = env.doAuth(t, "PATCH", fmt.Sprintf("/passports/%d", p.ID), body, token)
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestPassportUpdateConflict(t *testing.T) {
	env := newTestEnv(t)
	acc := env.seedAccount(t, "ivan", "ivan@example.com")
	token := env.token(t, acc)

	env.seedPassport(t, "Иван", "Иванов", 1234, 123456)
	p := env.seedPassport(t, "Maria", "Petrova", 4321, 654321)

	// Colliding with a different record's pair.
	body := toJSON(t, map[string]interface{}{
		"passport_series": 1234,
		"passport_number": 123456,
	})
	rr := env.doAuth(t, "PATCH", fmt.Sprintf("/passports/%d", p.ID), body, token)
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestPassportUpdatePair(t *testing.T) {
	env := newTestEnv(t)
	acc := env.seedAccount(t, "ivan", "ivan@example.com")
	token := env.token(t, acc)
	p := env.seedPassport(t, "Иван", "Иванов", 1234, 123456)

	// A unique pair replaces both fields together.
	body := toJSON(t, map[string]interface{}{
		"passport_series": 4321,
		"passport_number": 654321,
	})
	rr := env.doAuth(t, "PATCH", fmt.Sprintf("/passports/%d", p.ID), body, token)
	assertStatus(t, rr, http.StatusOK)

	var got model.Passport
	decodeJSON(t, rr, &got)
	if got.PassportSeries != 4321 || got.PassportNumber != 654321 {
		t.Errorf("pair = (%d, %d), want (4321, 654321)", got.PassportSeries, got.PassportNumber)
	}
	if got.FirstName != "Иван" {
		t.Errorf("first_name = %q, want unchanged", got.FirstName)
	}

	// Re-submitting the record's own pair is not a conflict.
	rr = env.doAuth(t, "PATCH", fmt.Sprintf("/passports/%d", p.ID), toJSON(t, map[string]interface{}{
		"passport_series": 4321,
		"passport_number": 654321,
	}), token)
	assertStatus(t, rr, http.StatusOK)
}

func TestPassportUpdateNamesOnly(t *testing.T) {
	env := newTestEnv(t)
	acc := env.seedAccount(t, "ivan", "ivan@example.com")
	token := env.token(t, acc)
	p := env.seedPassport(t, "Иван", "Иванов", 1234, 123456)

	// Omitting the pair leaves both passport fields unchanged.
	body := toJSON(t, map[string]interface{}{
		"first_name": "Пётр",
		"last_name":  "Петров",
	})
	rr := env.doAuth(t, "PATCH", fmt.Sprintf("/passports/%d", p.ID), body, token)
	assertStatus(t, rr, http.StatusOK)

	var got model.Passport
	decodeJSON(t, rr, &got)
	if got.FirstName != "Пётр" || got.LastName != "Петров" {
		t.Errorf("name = %q %q, want Пётр Петров", got.FirstName, got.LastName)
	}
	if got.PassportSeries != 1234 || got.PassportNumber != 123456 {
		t.Errorf("pair = (%d, %d), want unchanged (1234, 123456)", got.PassportSeries, got.PassportNumber)
	}
}

func TestPassportUpdateRange(t *testing.T) {
	env := newTestEnv(t)
	acc := env.seedAccount(t, "ivan", "ivan@example.com")
	token := env.token(t, acc)
	p := env.seedPassport(t, "Иван", "Иванов", 1234, 123456)

	body := toJSON(t, map[string]interface{}{
		"passport_series": 99,
		"passport_number": 654321,
	})
	rr := env.doAuth(t, "PATCH", fmt.Sprintf("/passports/%d", p.ID), body, token)
	assertStatus(t, rr, http.StatusBadRequest)
}

func TestPassportUpdateNotFound(t *testing.T) {
	env := newTestEnv(t)
	acc := env.seedAccount(t, "ivan", "ivan@example.com")

	body := toJSON(t, map[string]interface{}{"first_name": "Пётр"})
	rr := env.doAuth(t, "PATCH", "/passports/9000", body, env.token(t, acc))
	assertStatus(t, rr, http.StatusNotFound)
}
