package model

// ErrorResponse is the standard envelope for error responses.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the structured error information returned by the API.
// Context carries field-level validation detail when present.
type ErrorDetail struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// AccountsResponse is the envelope for account search results. Amount always
// equals the length of Users; there is no pagination.
type AccountsResponse struct {
	Users  []map[string]interface{} `json:"users"`
	Amount int                      `json:"amount"`
}

// PassportsResponse is the envelope for passport search results. Amount always
// equals the length of Passports; there is no pagination.
type PassportsResponse struct {
	Passports []Passport `json:"passports"`
	Amount    int        `json:"amount"`
}
