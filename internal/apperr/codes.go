package apperr

import "net/http"

// Code classifies an API error.
type Code string

const (
	CodeValidation Code = "VALIDATION_ERROR"
	CodeNotFound   Code = "NOT_FOUND"
	CodeForbidden  Code = "FORBIDDEN"
	CodeConflict   Code = "CONFLICT"
	CodeUpstream   Code = "UPSTREAM_UNAVAILABLE"
	CodeInternal   Code = "INTERNAL_ERROR"
)

// statusMap maps a Code to its HTTP status.
var statusMap = map[Code]int{
	CodeValidation: http.StatusBadRequest,
	CodeNotFound:   http.StatusNotFound,
	CodeForbidden:  http.StatusForbidden,
	CodeConflict:   http.StatusConflict,
	CodeUpstream:   http.StatusServiceUnavailable,
	CodeInternal:   http.StatusInternalServerError,
}

// StatusCode returns the HTTP status for this code.
func (c Code) StatusCode() int {
	if status, ok := statusMap[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}
