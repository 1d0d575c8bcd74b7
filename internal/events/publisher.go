// Package events publishes best-effort analytics events to NATS.
//
// The publisher is the observability sink for outcomes the request path
// never waits on: weather log writes, async title updates, message
// persistence. Publishing is fire-and-forget; failures are logged and
// never propagate.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/agrisense-ai/agrisense-backend/pkg/logger"
)

// Subjects for published events.
const (
	SubjectMessageCreated = "agrisense.chat.message"
	SubjectTitleUpdated   = "agrisense.chat.title"
	SubjectWeatherLogged  = "agrisense.weather.log"
)

// Event is a generic analytics event envelope.
type Event struct {
	Type       string    `json:"type"`
	Outcome    string    `json:"outcome"` // "ok" | "error"
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher wraps a NATS connection. A nil Publisher is valid and
// publishes nothing, so callers never need to branch on whether
// analytics is configured.
type Publisher struct {
	conn *nats.Conn
	log  *logger.Logger
}

// Config holds NATS connection configuration.
type Config struct {
	URL   string
	Token string
}

// Connect establishes a connection to the NATS server.
func Connect(cfg Config, log *logger.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, err
	}

	return &Publisher{conn: nc, log: log}, nil
}

// Publish emits an event on the given subject. Best effort: marshal or
// publish failures are logged, never returned.
func (p *Publisher) Publish(subject string, event Event) {
	if p == nil || p.conn == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("failed to marshal event", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.log.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

// IsConnected reports whether the publisher holds a live connection.
func (p *Publisher) IsConnected() bool {
	return p != nil && p.conn != nil && p.conn.IsConnected()
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p != nil && p.conn != nil {
		p.conn.Close()
	}
}
