package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisense-ai/agrisense-backend/internal/model"
	"github.com/agrisense-ai/agrisense-backend/pkg/logger"
)

type fakeWeatherLogStore struct {
	inserted chan *model.WeatherLog
	err      error
}

func newFakeWeatherLogStore() *fakeWeatherLogStore {
	return &fakeWeatherLogStore{inserted: make(chan *model.WeatherLog, 4)}
}

func (f *fakeWeatherLogStore) Insert(_ context.Context, entry *model.WeatherLog) error {
	if f.err != nil {
		return f.err
	}
	f.inserted <- entry
	return nil
}

func (f *fakeWeatherLogStore) CountSince(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func TestWeatherServiceCurrentWeather(t *testing.T) {
	ctx := context.Background()
	snapshot := &model.WeatherSnapshot{
		Temperature: "22°C",
		Humidity:    "65%",
		Condition:   "clouds",
		Description: "曇りがち",
		Rainfall:    "0mm",
	}

	t.Run("success records a usage log", func(t *testing.T) {
		logs := newFakeWeatherLogStore()
		svc := NewWeatherService(&fakeWeather{snapshot: snapshot}, logs, nil, logger.NewNop())

		got, err := svc.CurrentWeather(ctx, "つくば市", "茨城県")
		require.NoError(t, err)
		assert.Equal(t, snapshot, got)

		select {
		case entry := <-logs.inserted:
			assert.Equal(t, "つくば市", entry.City)
			require.NotNil(t, entry.Prefecture)
			assert.Equal(t, "茨城県", *entry.Prefecture)
			assert.Equal(t, model.ConditionClouds, entry.WeatherCondition)
		case <-time.After(2 * time.Second):
			t.Fatal("usage log was never written")
		}
	})

	t.Run("unknown condition normalizes to clouds", func(t *testing.T) {
		logs := newFakeWeatherLogStore()
		odd := *snapshot
		odd.Condition = "sandstorm"
		svc := NewWeatherService(&fakeWeather{snapshot: &odd}, logs, nil, logger.NewNop())

		_, err := svc.CurrentWeather(ctx, "つくば市", "")
		require.NoError(t, err)

		entry := <-logs.inserted
		assert.Equal(t, model.ConditionClouds, entry.WeatherCondition)
		assert.Nil(t, entry.Prefecture)
	})

	t.Run("lookup failure skips the log", func(t *testing.T) {
		logs := newFakeWeatherLogStore()
		svc := NewWeatherService(&fakeWeather{err: errors.New("down")}, logs, nil, logger.NewNop())

		_, err := svc.CurrentWeather(ctx, "つくば市", "")
		require.Error(t, err)

		select {
		case entry := <-logs.inserted:
			t.Fatalf("unexpected log write: %+v", entry)
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("log failure does not reach the caller", func(t *testing.T) {
		logs := newFakeWeatherLogStore()
		logs.err = errors.New("db full")
		svc := NewWeatherService(&fakeWeather{snapshot: snapshot}, logs, nil, logger.NewNop())

		_, err := svc.CurrentWeather(ctx, "つくば市", "")
		assert.NoError(t, err)
	})
}
