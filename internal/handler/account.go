package handler

import (
	"errors"
	"net/http"

	"github.com/passreg/passreg/internal/model"
	"github.com/passreg/passreg/internal/server/middleware"
	"github.com/passreg/passreg/internal/service"
	"github.com/passreg/passreg/internal/store"
)

// passwordMinLength is the minimum accepted password length for registration
// and self-service password changes.
const passwordMinLength = 8

// AccountHandler serves the account endpoints: registration, login,
// self-service profile, and the staff-only search/fetch/delete operations.
type AccountHandler struct {
	store   *store.Store
	authSvc *service.AuthService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(st *store.Store, authSvc *service.AuthService) *AccountHandler {
	return &AccountHandler{store: st, authSvc: authSvc}
}

// registerRequest is the expected payload for Register.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest is the expected payload for Login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new regular account and returns it with a bearer token.
// POST /users
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	fieldErrs := map[string]interface{}{}
	if req.Username == "" {
		fieldErrs["username"] = "this field is required"
	}
	if req.Email == "" {
		fieldErrs["email"] = "this field is required"
	}
	switch {
	case req.Password == "":
		fieldErrs["password"] = "this field is required"
	case len(req.Password) < passwordMinLength:
		fieldErrs["password"] = "must be at least 8 characters"
	}
	if len(fieldErrs) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", fieldErrs)
		return
	}

	acc, err := h.authSvc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "User with this username or email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to register: "+err.Error())
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, acc)
}

// Login authenticates by username and password and returns the account with a
// fresh bearer token. Bad credentials are 400; a deactivated account is 403.
// POST /login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	fieldErrs := map[string]interface{}{}
	if req.Username == "" {
		fieldErrs["username"] = "a username is required to log in"
	}
	if req.Password == "" {
		fieldErrs["password"] = "a password is required to log in"
	}
	if len(fieldErrs) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", fieldErrs)
		return
	}

	acc, err := h.authSvc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "A user with this username and password was not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Authentication error: "+err.Error())
		return
	}

	if !acc.IsActive {
		writeError(w, http.StatusForbidden, "This user has been deactivated")
		return
	}

	h.respondWithToken(w, r, http.StatusOK, acc)
}

// Current returns the calling account.
// GET /users/current
func (h *AccountHandler) Current(w http.ResponseWriter, r *http.Request) {
	acc := middleware.GetAccount(r.Context())
	h.respondWithToken(w, r, http.StatusOK, acc)
}

// updateRequest is the expected payload for UpdateCurrent. Pointer fields
// distinguish "absent" from "empty".
type updateRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// UpdateCurrent partially updates the calling account. Supplied fields replace
// the stored values; a supplied password is re-hashed.
// PATCH /users/current
func (h *AccountHandler) UpdateCurrent(w http.ResponseWriter, r *http.Request) {
	acc := middleware.GetAccount(r.Context())

	var req updateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Username != nil {
		if *req.Username == "" {
			writeError(w, http.StatusBadRequest, "Validation failed",
				map[string]interface{}{"username": "may not be blank"})
			return
		}
		acc.Username = *req.Username
	}
	if req.Email != nil {
		if *req.Email == "" {
			writeError(w, http.StatusBadRequest, "Validation failed",
				map[string]interface{}{"email": "may not be blank"})
			return
		}
		acc.Email = service.NormalizeEmail(*req.Email)
	}
	if req.Password != nil {
		if len(*req.Password) < passwordMinLength {
			writeError(w, http.StatusBadRequest, "Validation failed",
				map[string]interface{}{"password": "must be at least 8 characters"})
			return
		}
		hash, err := h.authSvc.HashPassword(*req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to hash password: "+err.Error())
			return
		}
		acc.PasswordHash = hash
	}

	if err := h.store.UpdateAccount(r.Context(), acc); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "User with this username or email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update account: "+err.Error())
		return
	}

	h.respondWithToken(w, r, http.StatusOK, acc)
}

// Search returns all accounts matching the recognized filter keys together
// with the result count. Unrecognized query parameters are ignored; with no
// filters the full set is returned.
// GET /users_search
func (h *AccountHandler) Search(w http.ResponseWriter, r *http.Request) {
	firstName, lastName, series, number, fieldErrs := parseSearchQuery(r)
	if fieldErrs != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", fieldErrs)
		return
	}

	accounts, err := h.store.SearchAccounts(r.Context(), model.AccountFilter{
		FirstName:      firstName,
		LastName:       lastName,
		PassportSeries: series,
		PassportNumber: number,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to search accounts: "+err.Error())
		return
	}

	users := make([]map[string]interface{}, 0, len(accounts))
	for i := range accounts {
		users = append(users, accountToMap(&accounts[i]))
	}

	writeJSON(w, http.StatusOK, model.AccountsResponse{
		Users:  users,
		Amount: len(users),
	})
}

// Get returns a single account by ID.
// GET /users/{userId}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "userId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	acc, err := h.store.GetAccount(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get user: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, accountToMap(acc))
}

// Delete removes an account by ID. A missing account is 404, never a failure.
// DELETE /users/{userId}
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "userId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.store.DeleteAccount(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete user: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{})
}

// respondWithToken writes the self-view of an account plus a freshly issued
// bearer token.
func (h *AccountHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, acc *model.Account) {
	token, err := h.authSvc.IssueToken(r.Context(), acc.ID, acc.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token: "+err.Error())
		return
	}

	writeJSON(w, status, map[string]interface{}{
		"id":       acc.ID,
		"email":    acc.Email,
		"username": acc.Username,
		"token":    token,
	})
}

// accountToMap is the staff view of an account; it never exposes credentials
// or tokens.
func accountToMap(acc *model.Account) map[string]interface{} {
	return map[string]interface{}{
		"id":       acc.ID,
		"email":    acc.Email,
		"username": acc.Username,
	}
}
