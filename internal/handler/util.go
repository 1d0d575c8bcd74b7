// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/agrisense-ai/agrisense-backend/internal/middleware"
	"github.com/agrisense-ai/agrisense-backend/internal/service"
	"github.com/agrisense-ai/agrisense-backend/internal/store"
	"github.com/agrisense-ai/agrisense-backend/internal/weather"
)

// envelope is the standard JSON response shape.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeSuccess writes a success envelope around data.
func writeSuccess(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// writeMessage writes a success envelope with a message only.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, Message: message})
}

// writeError writes an error envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// writeDomainError maps a domain error to its HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "リソースが見つかりません")
	case errors.Is(err, store.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "このメールアドレスは既に登録されています")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNoLocation), errors.Is(err, weather.ErrInvalidLocation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrLocationNotFound):
		writeError(w, http.StatusNotFound, weather.ErrLocationNotFound.Error())
	case errors.Is(err, weather.ErrFetch):
		writeError(w, http.StatusInternalServerError, weather.ErrFetch.Error())
	case errors.Is(err, service.ErrAIGeneration):
		writeError(w, http.StatusInternalServerError, service.ErrAIGeneration.Error())
	default:
		writeError(w, http.StatusInternalServerError, "内部エラーが発生しました")
	}
}

// currentUserID extracts and parses the authenticated user id.
func currentUserID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(middleware.GetUserID(r.Context()))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
