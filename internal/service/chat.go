package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrisense-ai/agrisense-backend/internal/events"
	"github.com/agrisense-ai/agrisense-backend/internal/model"
	"github.com/agrisense-ai/agrisense-backend/internal/store"
	"github.com/agrisense-ai/agrisense-backend/pkg/logger"
	"github.com/agrisense-ai/agrisense-backend/pkg/metrics"
)

// historyLimit is how many recent messages are replayed to the model.
const historyLimit = 10

// titleUpdateTimeout bounds the detached title derivation, which may
// itself call the model.
const titleUpdateTimeout = 30 * time.Second

// ChatService orchestrates "user sends message in session" end to end:
// profile load, best-effort weather enrichment, history replay, model
// call, persistence of both turns, and the detached first-message title
// derivation.
type ChatService struct {
	users    store.UserStore
	sessions store.SessionStore
	advisor  ResponseGenerator
	weather  WeatherLookup
	events   *events.Publisher
	log      *logger.Logger
}

// NewChatService creates the chat orchestrator. weather may be nil when
// no weather provider is configured.
func NewChatService(
	users store.UserStore,
	sessions store.SessionStore,
	advisor ResponseGenerator,
	weather WeatherLookup,
	pub *events.Publisher,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		users:    users,
		sessions: sessions,
		advisor:  advisor,
		weather:  weather,
		events:   pub,
		log:      log,
	}
}

// SendMessage handles one incoming chat message and returns the
// persisted user message and assistant reply.
func (s *ChatService) SendMessage(ctx context.Context, userID, sessionID uuid.UUID, content string) (*model.SendMessageResponse, error) {
	profile, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The session must belong to the caller; a foreign session looks
	// exactly like a missing one.
	if _, err := s.sessions.Get(ctx, sessionID, userID); err != nil {
		return nil, err
	}

	// Weather is enrichment, not a requirement: any failure is logged
	// and the pipeline continues without it.
	var snapshot *model.WeatherSnapshot
	if profile.City != nil && s.weather != nil {
		prefecture := ""
		if profile.Prefecture != nil {
			prefecture = *profile.Prefecture
		}
		snapshot, err = s.weather.CurrentWeather(ctx, *profile.City, prefecture)
		if err != nil {
			s.log.Warn("weather lookup failed, continuing without it",
				zap.String("city", *profile.City), zap.Error(err))
			snapshot = nil
		}
	}

	history, err := s.sessions.RecentMessages(ctx, sessionID, historyLimit)
	if err != nil {
		return nil, err
	}
	firstMessage := len(history) == 0

	chatCtx := &ChatContext{
		Profile:  profile,
		Weather:  snapshot,
		History:  history,
		Question: content,
	}

	reply, err := s.advisor.GenerateResponse(ctx, chatCtx)
	if err != nil {
		return nil, err
	}

	userMsg, err := s.sessions.InsertMessage(ctx, sessionID, model.RoleUser, content)
	if err != nil {
		return nil, err
	}
	assistantMsg, err := s.sessions.InsertMessage(ctx, sessionID, model.RoleAssistant, reply)
	if err != nil {
		return nil, err
	}

	metrics.MessagesTotal.WithLabelValues(string(model.RoleUser)).Inc()
	metrics.MessagesTotal.WithLabelValues(string(model.RoleAssistant)).Inc()
	s.events.Publish(events.SubjectMessageCreated, events.Event{
		Type: "message_pair", Outcome: "ok", Detail: sessionID.String(),
	})

	// The caller's response never waits on the title; the derivation
	// runs detached with its own deadline.
	if firstMessage {
		go s.deriveTitle(userID, sessionID, content)
	}

	return &model.SendMessageResponse{UserMessage: userMsg, AIResponse: assistantMsg}, nil
}

func (s *ChatService) deriveTitle(userID, sessionID uuid.UUID, content string) {
	ctx, cancel := context.WithTimeout(context.Background(), titleUpdateTimeout)
	defer cancel()

	title := s.advisor.GenerateTitle(ctx, content)
	if _, err := s.sessions.UpdateTitle(ctx, sessionID, userID, title); err != nil {
		s.log.Warn("failed to update session title",
			zap.String("session_id", sessionID.String()), zap.Error(err))
		s.events.Publish(events.SubjectTitleUpdated, events.Event{
			Type: "session_title", Outcome: "error", Detail: err.Error(),
		})
		return
	}
	s.events.Publish(events.SubjectTitleUpdated, events.Event{
		Type: "session_title", Outcome: "ok", Detail: sessionID.String(),
	})
}
