package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/passreg/passreg/internal/model"
)

// writeJSON serializes v as JSON and writes it to the response with the given
// HTTP status code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a structured error response using the standard error
// envelope. The optional ctx map provides field-level detail.
func writeError(w http.ResponseWriter, code int, message string, ctx ...map[string]interface{}) {
	var ctxMap map[string]interface{}
	if len(ctx) > 0 {
		ctxMap = ctx[0]
	}
	writeJSON(w, code, model.ErrorResponse{
		Error: model.ErrorDetail{
			Code:    code,
			Message: message,
			Context: ctxMap,
		},
	})
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure.
func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// idParam extracts an integer URL parameter. The second return value is false
// when the parameter is missing or not an integer.
func idParam(r *http.Request, name string) (int64, bool) {
	idStr := chi.URLParam(r, name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// parseSearchQuery extracts the recognized search filter keys from the query
// string: first_name and last_name as substrings, passport_series and
// passport_number as exact integers. Unrecognized keys are ignored. Non-integer
// passport values are reported in the returned field error map.
func parseSearchQuery(r *http.Request) (firstName, lastName string, series, number *int64, fieldErrs map[string]interface{}) {
	q := r.URL.Query()
	firstName = q.Get("first_name")
	lastName = q.Get("last_name")
	fieldErrs = map[string]interface{}{}

	if v := q.Get("passport_series"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fieldErrs["passport_series"] = "must be an integer"
		} else {
			series = &n
		}
	}
	if v := q.Get("passport_number"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fieldErrs["passport_number"] = "must be an integer"
		} else {
			number = &n
		}
	}
	if len(fieldErrs) == 0 {
		fieldErrs = nil
	}
	return firstName, lastName, series, number, fieldErrs
}
