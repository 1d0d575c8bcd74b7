package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/agrisense-ai/agrisense-backend/internal/middleware"
	"github.com/agrisense-ai/agrisense-backend/internal/model"
	"github.com/agrisense-ai/agrisense-backend/internal/service"
	"github.com/agrisense-ai/agrisense-backend/pkg/logger"
)

// ChatHandler handles the message-sending endpoint.
type ChatHandler struct {
	service *service.ChatService
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{service: svc, logger: log}
}

// SendMessage handles POST /api/v1/chat/message
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "認証が必要です")
		return
	}

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "リクエストの形式が正しくありません")
		return
	}

	if err := middleware.ValidateSessionID(req.SessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateMessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID := uuid.MustParse(req.SessionID)

	resp, err := h.service.SendMessage(r.Context(), userID, sessionID, req.Content)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp)
}
