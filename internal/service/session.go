package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/agrisense-ai/agrisense-backend/internal/model"
	"github.com/agrisense-ai/agrisense-backend/internal/store"
	"github.com/agrisense-ai/agrisense-backend/pkg/logger"
	"github.com/agrisense-ai/agrisense-backend/pkg/metrics"
)

// SessionService handles chat-session CRUD scoped by ownership.
type SessionService struct {
	sessions store.SessionStore
	log      *logger.Logger
}

// NewSessionService creates a session service.
func NewSessionService(sessions store.SessionStore, log *logger.Logger) *SessionService {
	return &SessionService{sessions: sessions, log: log}
}

// Create starts a new session, defaulting the title when none is given.
func (s *SessionService) Create(ctx context.Context, userID uuid.UUID, title string) (*model.ChatSession, error) {
	session, err := s.sessions.Create(ctx, userID, title)
	if err != nil {
		return nil, err
	}
	metrics.SessionsTotal.Inc()
	return session, nil
}

// List returns the user's sessions, most recently updated first.
func (s *SessionService) List(ctx context.Context, userID uuid.UUID) ([]model.ChatSession, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// GetWithMessages returns one owned session with its full history.
func (s *SessionService) GetWithMessages(ctx context.Context, sessionID, userID uuid.UUID) (*model.SessionWithMessages, error) {
	return s.sessions.GetWithMessages(ctx, sessionID, userID)
}

// UpdateTitle renames an owned session.
func (s *SessionService) UpdateTitle(ctx context.Context, sessionID, userID uuid.UUID, title string) (*model.ChatSession, error) {
	return s.sessions.UpdateTitle(ctx, sessionID, userID, title)
}

// Delete removes an owned session and all its messages.
func (s *SessionService) Delete(ctx context.Context, sessionID, userID uuid.UUID) error {
	return s.sessions.Delete(ctx, sessionID, userID)
}
