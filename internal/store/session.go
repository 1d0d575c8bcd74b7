package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/agrisense-ai/agrisense-backend/internal/model"
	"github.com/agrisense-ai/agrisense-backend/pkg/logger"
)

// SessionStore persists chat sessions and their messages. Every
// session-scoped operation takes the owning user's id and treats a
// mismatch as ErrNotFound.
type SessionStore interface {
	Create(ctx context.Context, userID uuid.UUID, title string) (*model.ChatSession, error)
	Get(ctx context.Context, sessionID, userID uuid.UUID) (*model.ChatSession, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ChatSession, error)
	GetWithMessages(ctx context.Context, sessionID, userID uuid.UUID) (*model.SessionWithMessages, error)
	UpdateTitle(ctx context.Context, sessionID, userID uuid.UUID, title string) (*model.ChatSession, error)
	Delete(ctx context.Context, sessionID, userID uuid.UUID) error
	RecentMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]model.Message, error)
	InsertMessage(ctx context.Context, sessionID uuid.UUID, role model.Role, content string) (*model.Message, error)
}

type sessionStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewSessionStore creates a Postgres-backed session store.
func NewSessionStore(db *DB, log *logger.Logger) SessionStore {
	return &sessionStore{db: db.Gorm(), log: log.With(zap.String("store", "session"))}
}

func (s *sessionStore) Create(ctx context.Context, userID uuid.UUID, title string) (*model.ChatSession, error) {
	if title == "" {
		title = model.DefaultSessionTitle
	}
	now := time.Now()
	session := &model.ChatSession{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (s *sessionStore) Get(ctx context.Context, sessionID, userID uuid.UUID) (*model.ChatSession, error) {
	return s.getOwned(ctx, s.db, sessionID, userID)
}

func (s *sessionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ChatSession, error) {
	sessions := []model.ChatSession{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *sessionStore) GetWithMessages(ctx context.Context, sessionID, userID uuid.UUID) (*model.SessionWithMessages, error) {
	session, err := s.getOwned(ctx, s.db, sessionID, userID)
	if err != nil {
		return nil, err
	}

	messages := []model.Message{}
	err = s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return &model.SessionWithMessages{ChatSession: *session, Messages: messages}, nil
}

func (s *sessionStore) UpdateTitle(ctx context.Context, sessionID, userID uuid.UUID, title string) (*model.ChatSession, error) {
	res := s.db.WithContext(ctx).
		Model(&model.ChatSession{}).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Updates(map[string]interface{}{
			"title":      title,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.getOwned(ctx, s.db, sessionID, userID)
}

// Delete removes the session and its messages in one transaction.
func (s *sessionStore) Delete(ctx context.Context, sessionID, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.getOwned(ctx, tx, sessionID, userID); err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", sessionID).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", sessionID).Delete(&model.ChatSession{}).Error
	})
}

// RecentMessages returns the newest limit messages in chronological
// order. The fetch runs newest-first with a LIMIT, then reverses.
func (s *sessionStore) RecentMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 10
	}
	messages := []model.Message{}
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *sessionStore) InsertMessage(ctx context.Context, sessionID uuid.UUID, role model.Role, content string) (*model.Message, error) {
	msg := &model.Message{
		ID:        uuid.New(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&model.ChatSession{}).
			Where("id = ?", sessionID).
			Update("updated_at", msg.CreatedAt).Error
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *sessionStore) getOwned(ctx context.Context, tx *gorm.DB, sessionID, userID uuid.UUID) (*model.ChatSession, error) {
	var session model.ChatSession
	err := tx.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}
