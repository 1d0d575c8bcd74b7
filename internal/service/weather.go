package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/agrisense-ai/agrisense-backend/internal/events"
	"github.com/agrisense-ai/agrisense-backend/internal/model"
	"github.com/agrisense-ai/agrisense-backend/internal/store"
	"github.com/agrisense-ai/agrisense-backend/pkg/logger"
)

// WeatherLookup translates a location into a normalized snapshot.
// Implemented by weather.Client; faked in tests.
type WeatherLookup interface {
	CurrentWeather(ctx context.Context, city, prefecture string) (*model.WeatherSnapshot, error)
}

// WeatherService performs lookups and records a best-effort usage log
// for each success. The log write is detached from the caller: it runs
// in its own goroutine with its own timeout and its failure is reported
// to the analytics sink only.
type WeatherService struct {
	lookup WeatherLookup
	logs   store.WeatherLogStore
	events *events.Publisher
	log    *logger.Logger
}

// NewWeatherService creates a weather service.
func NewWeatherService(lookup WeatherLookup, logs store.WeatherLogStore, pub *events.Publisher, log *logger.Logger) *WeatherService {
	return &WeatherService{lookup: lookup, logs: logs, events: pub, log: log}
}

// CurrentWeather returns the snapshot for the location and, on success,
// kicks off the detached usage-log write.
func (s *WeatherService) CurrentWeather(ctx context.Context, city, prefecture string) (*model.WeatherSnapshot, error) {
	snapshot, err := s.lookup.CurrentWeather(ctx, city, prefecture)
	if err != nil {
		return nil, err
	}

	go s.saveLog(city, prefecture, snapshot)

	return snapshot, nil
}

func (s *WeatherService) saveLog(city, prefecture string, snapshot *model.WeatherSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry := &model.WeatherLog{
		City:             city,
		Temperature:      snapshot.Temperature,
		Humidity:         snapshot.Humidity,
		Rainfall:         snapshot.Rainfall,
		WeatherCondition: model.NormalizeCondition(snapshot.Condition),
		Description:      snapshot.Description,
	}
	if prefecture != "" {
		entry.Prefecture = &prefecture
	}

	if err := s.logs.Insert(ctx, entry); err != nil {
		s.log.Warn("failed to save weather log", zap.String("city", city), zap.Error(err))
		s.events.Publish(events.SubjectWeatherLogged, events.Event{
			Type: "weather_log", Outcome: "error", Detail: err.Error(),
		})
		return
	}
	s.events.Publish(events.SubjectWeatherLogged, events.Event{
		Type: "weather_log", Outcome: "ok", Detail: city,
	})
}
