// Package http provides HTTP server and handler implementations.
//
// This file builds the JSON and PDF responses so every handler reports
// errors in the same envelope.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"streamtally/internal/core"
	"streamtally/internal/log"
	"streamtally/internal/report"
	"streamtally/internal/repository"
)

// Error codes carried in the error envelope.
const (
	CodeValidation  = "validation_failed"
	CodeBadRequest  = "bad_request"
	CodeNotFound    = "not_found"
	CodeRateLimited = "rate_limited"
	CodeInternal    = "internal_error"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Error    ErrorDetail `json:"error"`
	Redirect string      `json:"redirect,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// The status line is already sent; an encode error means the client left.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: msg}})
}

// writeNotFound answers a lookup miss. Clients should return home.
func writeNotFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, ErrorBody{
		Error:    ErrorDetail{Code: CodeNotFound, Message: msg},
		Redirect: "/",
	})
}

// writeDomainError maps repository and validation errors onto status codes.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidation(err):
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, err.Error())
	case errors.Is(err, repository.ErrLogNotFound):
		writeNotFound(w, "stream log not found")
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

func writeDocument(w http.ResponseWriter, doc report.Document) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Content)
}
