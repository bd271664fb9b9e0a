// Package server exposes token issuance, renewal and checking over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gourdian25/memberjwt"
	"github.com/gourdian25/memberjwt/internal/logger"
)

// TokenService is the part of memberjwt.Service the handlers need.
type TokenService interface {
	IssueFromBasicAuth(ctx context.Context, credentials memberjwt.BasicCredentials, includeMember bool) (*memberjwt.Payload, error)
	Renew(token string) (string, error)
	Check(token string) bool
}

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CheckResponse is the JSON body of GET /token/check.
type CheckResponse struct {
	Valid bool `json:"valid"`
}

// NewHandler returns the routes for svc:
//
//	POST /token        Basic auth, ?member=1 adds the member profile
//	POST /token/renew  Bearer token
//	GET  /token/check  Bearer token
func NewHandler(svc TokenService) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", issueHandler(svc))
	mux.HandleFunc("POST /token/renew", renewHandler(svc))
	mux.HandleFunc("GET /token/check", checkHandler(svc))
	return logRequests(mux)
}

// New returns an http.Server serving NewHandler(svc) on addr.
func New(addr string, svc TokenService) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewHandler(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func issueHandler(svc TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		credentials, err := memberjwt.ParseBasicAuth(r.Header.Get("Authorization"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		payload, err := svc.IssueFromBasicAuth(r.Context(), credentials, includeMember(r))
		if err != nil {
			writeServiceError(w, err, "username", credentials.Username)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	}
}

func renewHandler(svc TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusForbidden, "missing bearer token")
			return
		}

		renewed, err := svc.Renew(token)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, memberjwt.Payload{Token: renewed})
	}
}

func checkHandler(svc TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, _ := bearerToken(r)
		writeJSON(w, http.StatusOK, CheckResponse{Valid: token != "" && svc.Check(token)})
	}
}

func includeMember(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("member")) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// writeServiceError maps memberjwt errors onto HTTP statuses. Rejections of
// the caller are 403; anything else is a server fault.
func writeServiceError(w http.ResponseWriter, err error, logFields ...any) {
	switch {
	case errors.Is(err, memberjwt.ErrAuthenticationFailed),
		errors.Is(err, memberjwt.ErrTokenInvalid):
		logger.Warn("Request rejected", append([]any{"error", err}, logFields...)...)
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, memberjwt.ErrConfiguration):
		logger.Error("Service misconfigured", append([]any{"error", err}, logFields...)...)
		writeError(w, http.StatusForbidden, err.Error())
	default:
		logger.Error("Request failed", append([]any{"error", err}, logFields...)...)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
