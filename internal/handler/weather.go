package handler

import (
	"net/http"

	"github.com/agrisense-ai/agrisense-backend/internal/service"
	"github.com/agrisense-ai/agrisense-backend/pkg/logger"
)

// WeatherHandler handles the current-weather endpoint.
type WeatherHandler struct {
	weather *service.WeatherService
	users   *service.UserService
	logger  *logger.Logger
}

// NewWeatherHandler creates a new weather handler.
func NewWeatherHandler(weather *service.WeatherService, users *service.UserService, log *logger.Logger) *WeatherHandler {
	return &WeatherHandler{weather: weather, users: users, logger: log}
}

// Current handles GET /api/v1/weather/current. The location comes from
// the caller's registered profile.
func (h *WeatherHandler) Current(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "認証が必要です")
		return
	}

	user, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if user.City == nil {
		writeDomainError(w, service.ErrNoLocation)
		return
	}

	prefecture := ""
	if user.Prefecture != nil {
		prefecture = *user.Prefecture
	}

	snapshot, err := h.weather.CurrentWeather(r.Context(), *user.City, prefecture)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{"weather": snapshot})
}
