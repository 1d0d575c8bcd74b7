package model

import (
	"time"

	"github.com/google/uuid"
)

// WeatherCondition is the normalized upstream condition taxonomy.
type WeatherCondition string

const (
	ConditionClear        WeatherCondition = "clear"
	ConditionClouds       WeatherCondition = "clouds"
	ConditionRain         WeatherCondition = "rain"
	ConditionSnow         WeatherCondition = "snow"
	ConditionThunderstorm WeatherCondition = "thunderstorm"
	ConditionDrizzle      WeatherCondition = "drizzle"
	ConditionMist         WeatherCondition = "mist"
	ConditionFog          WeatherCondition = "fog"
)

// NormalizeCondition maps an upstream condition string to the fixed
// enumeration, defaulting unknown values to clouds.
func NormalizeCondition(condition string) WeatherCondition {
	switch WeatherCondition(condition) {
	case ConditionClear, ConditionClouds, ConditionRain, ConditionSnow,
		ConditionThunderstorm, ConditionDrizzle, ConditionMist, ConditionFog:
		return WeatherCondition(condition)
	default:
		return ConditionClouds
	}
}

// WeatherSnapshot is a point-in-time weather reading for a location.
// It is ephemeral context for the chat pipeline, never part of session
// state.
type WeatherSnapshot struct {
	Temperature string `json:"temperature"` // "25°C"
	Humidity    string `json:"humidity"`    // "60%"
	Condition   string `json:"condition"`   // lowercased upstream main
	Description string `json:"description"` // human readable, Japanese
	Rainfall    string `json:"rainfall"`    // "0mm"
}

// WeatherLog is an analytics record of a successful weather lookup.
type WeatherLog struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	City             string           `gorm:"type:varchar(100);not null" json:"city"`
	Prefecture       *string          `gorm:"type:varchar(100)" json:"prefecture,omitempty"`
	Temperature      string           `gorm:"type:varchar(20)" json:"temperature"`
	Humidity         string           `gorm:"type:varchar(20)" json:"humidity"`
	Rainfall         string           `gorm:"type:varchar(20)" json:"rainfall"`
	WeatherCondition WeatherCondition `gorm:"type:varchar(20)" json:"weather_condition"`
	Description      string           `gorm:"type:varchar(255)" json:"description"`
	FetchedAt        time.Time        `gorm:"not null" json:"fetched_at"`
}

// TableName overrides the GORM table name.
func (WeatherLog) TableName() string { return "weather_logs" }
