package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/kapu/name-bender-go/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeErrorEnvelope writes {"error", "message", "status", "request_id"}.
func writeErrorEnvelope(ctx context.Context, w http.ResponseWriter, status int, code, message string) {
	payload := map[string]any{
		"error":   code,
		"message": sanitize(message, 512),
		"status":  status,
	}
	if requestID := middleware.GetReqID(ctx); requestID != "" {
		payload["request_id"] = requestID
	}
	writeJSON(w, status, payload)
}

// writeError maps typed application errors onto the envelope. Generation
// errors expose only their user message; anything unrecognised is a 500.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		genErr *apperrors.GenerationError
		valErr *apperrors.ValidationError
		nfErr  *apperrors.NotFoundError
		svcErr *apperrors.ServiceError
		appErr *apperrors.AppError
	)

	switch {
	case stderrors.As(err, &genErr):
		writeErrorEnvelope(ctx, w, http.StatusBadGateway, genErr.Code, genErr.UserMessage())
	case stderrors.As(err, &valErr):
		writeErrorEnvelope(ctx, w, http.StatusBadRequest, valErr.Code, valErr.Message)
	case stderrors.As(err, &nfErr):
		writeErrorEnvelope(ctx, w, http.StatusNotFound, nfErr.Code, nfErr.Message)
	case stderrors.As(err, &svcErr):
		writeErrorEnvelope(ctx, w, http.StatusServiceUnavailable, svcErr.Code, svcErr.Message)
	case stderrors.As(err, &appErr) && appErr.StatusCode >= 400:
		writeErrorEnvelope(ctx, w, appErr.StatusCode, appErr.Code, appErr.Message)
	default:
		writeErrorEnvelope(ctx, w, http.StatusInternalServerError, apperrors.CodeAppError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	if err := decoder.Decode(dest); err != nil {
		return apperrors.NewValidationError("malformed JSON body", "body", err.Error())
	}
	return nil
}

func sanitize(value string, limit int) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
