package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/passreg/passreg/internal/model"
	"github.com/passreg/passreg/internal/store"
)

// PassportHandler serves the passport record endpoints: filtered search,
// create, fetch, partial update, and delete.
type PassportHandler struct {
	store *store.Store
}

// NewPassportHandler creates a new PassportHandler.
func NewPassportHandler(st *store.Store) *PassportHandler {
	return &PassportHandler{store: st}
}

// Search returns all passport records matching the recognized filter keys
// (first_name, last_name, passport_series, passport_number) together with the
// result count. Unrecognized query parameters are ignored; with no filters the
// full set is returned.
// GET /passports
func (h *PassportHandler) Search(w http.ResponseWriter, r *http.Request) {
	firstName, lastName, series, number, fieldErrs := parseSearchQuery(r)
	if fieldErrs != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", fieldErrs)
		return
	}

	passports, err := h.store.SearchPassports(r.Context(), model.PassportFilter{
		FirstName:      firstName,
		LastName:       lastName,
		PassportSeries: series,
		PassportNumber: number,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to search passports: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, model.PassportsResponse{
		Passports: passports,
		Amount:    len(passports),
	})
}

// createPassportRequest is the expected payload for Create. Pointer fields
// distinguish "absent" from zero.
type createPassportRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	PassportSeries *int64 `json:"passport_series"`
	PassportNumber *int64 `json:"passport_number"`
}

// Create inserts a new passport record. Both series and number are required;
// an existing record with the same pair is a conflict.
// POST /passports
func (h *PassportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPassportRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	fieldErrs := map[string]interface{}{}
	if req.FirstName == "" {
		fieldErrs["first_name"] = "this field is required"
	}
	if req.LastName == "" {
		fieldErrs["last_name"] = "this field is required"
	}
	switch {
	case req.PassportSeries == nil:
		fieldErrs["passport_series"] = "this field is required"
	case !model.ValidSeries(*req.PassportSeries):
		fieldErrs["passport_series"] = seriesRangeMsg()
	}
	switch {
	case req.PassportNumber == nil:
		fieldErrs["passport_number"] = "this field is required"
	case !model.ValidNumber(*req.PassportNumber):
		fieldErrs["passport_number"] = numberRangeMsg()
	}
	if len(fieldErrs) > 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", fieldErrs)
		return
	}

	// Lookup-before-write keeps the error message clean; the storage-level
	// UNIQUE constraint closes the race between concurrent creators.
	if _, err := h.store.GetPassportByPassportData(r.Context(), *req.PassportSeries, *req.PassportNumber, 0); err == nil {
		writeError(w, http.StatusBadRequest, "Passport with this passport data exists")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to check passport data: "+err.Error())
		return
	}

	p := &model.Passport{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PassportSeries: *req.PassportSeries,
		PassportNumber: *req.PassportNumber,
	}
	if err := h.store.CreatePassport(r.Context(), p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "Passport with this passport data exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create passport: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

// Get returns a single passport record by ID.
// GET /passports/{passportId}
func (h *PassportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "passportId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid passport ID")
		return
	}

	p, err := h.store.GetPassport(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Passport not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get passport: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// updatePassportRequest is the expected payload for Update. Pointer fields
// distinguish "absent" from zero.
type updatePassportRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	PassportSeries *int64  `json:"passport_series"`
	PassportNumber *int64  `json:"passport_number"`
}

// Update partially updates a passport record. The series/number pair must be
// supplied together or not at all; when supplied, the pair must not collide
// with another record, and both fields are replaced as a unit. Omitting the
// pair leaves both fields unchanged.
// PATCH /passports/{passportId}
func (h *PassportHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "passportId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid passport ID")
		return
	}

	p, err := h.store.GetPassport(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Passport not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get passport: "+err.Error())
		return
	}

	var req updatePassportRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if (req.PassportSeries == nil) != (req.PassportNumber == nil) {
		writeError(w, http.StatusBadRequest, "Passport series and number must be supplied together")
		return
	}

	if req.PassportSeries != nil {
		fieldErrs := map[string]interface{}{}
		if !model.ValidSeries(*req.PassportSeries) {
			fieldErrs["passport_series"] = seriesRangeMsg()
		}
		if !model.ValidNumber(*req.PassportNumber) {
			fieldErrs["passport_number"] = numberRangeMsg()
		}
		if len(fieldErrs) > 0 {
			writeError(w, http.StatusBadRequest, "Validation failed", fieldErrs)
			return
		}

		if _, err := h.store.GetPassportByPassportData(r.Context(), *req.PassportSeries, *req.PassportNumber, id); err == nil {
			writeError(w, http.StatusBadRequest, "Passport with this passport data exists")
			return
		} else if !errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "Failed to check passport data: "+err.Error())
			return
		}

		// The pair is always replaced as a unit.
		p.PassportSeries = *req.PassportSeries
		p.PassportNumber = *req.PassportNumber
	}

	if req.FirstName != nil {
		if *req.FirstName == "" {
			writeError(w, http.StatusBadRequest, "Validation failed",
				map[string]interface{}{"first_name": "may not be blank"})
			return
		}
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		if *req.LastName == "" {
			writeError(w, http.StatusBadRequest, "Validation failed",
				map[string]interface{}{"last_name": "may not be blank"})
			return
		}
		p.LastName = *req.LastName
	}

	if err := h.store.UpdatePassport(r.Context(), p); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			writeError(w, http.StatusBadRequest, "Passport with this passport data exists")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "Passport not found")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update passport: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// Delete removes a passport record by ID. A missing record is 404, never a
// failure.
// DELETE /passports/{passportId}
func (h *PassportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "passportId")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid passport ID")
		return
	}

	if err := h.store.DeletePassport(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Passport not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete passport: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{})
}

func seriesRangeMsg() string {
	return fmt.Sprintf("must be between %d and %d", model.PassportSeriesMin, model.PassportSeriesMax)
}

func numberRangeMsg() string {
	return fmt.Sprintf("must be between %d and %d", model.PassportNumberMin, model.PassportNumberMax)
}
