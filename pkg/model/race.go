package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

type SafetyCarState struct {
	IsActive      bool `json:"isActive"`
	LapsRemaining int  `json:"lapsRemaining"`
}

type RaceStanding struct {
	Position   int     `json:"position"`
	DriverName string  `json:"driverName"`
	TeamName   string  `json:"teamName"`
	TotalTime  float64 `json:"totalTime"`
	Gap        string  `json:"gap"`
}

type EventCategory string

const (
	EventGreenFlag        EventCategory = "green_flag" // race start, safety car in
	EventCheckeredFlag    EventCategory = "checkered_flag"
	EventLapComplete      EventCategory = "lap_complete"
	EventCrash            EventCategory = "crash"
	EventPitStop          EventCategory = "pit_stop"
	EventSafetyCar        EventCategory = "safety_car"
	EventOvertake         EventCategory = "overtake"
	EventWeatherDry       EventCategory = "weather_dry"
	EventWeatherLightRain EventCategory = "weather_light_rain"
	EventWeatherHeavyRain EventCategory = "weather_heavy_rain"
)

var eventIcons = map[EventCategory]string{
	EventGreenFlag:        "🏁",
	EventCheckeredFlag:    "🏆",
	EventLapComplete:      "📊",
	EventCrash:            "💥",
	EventPitStop:          "🔧",
	EventSafetyCar:        "🚗",
	EventOvertake:         "🏎️",
	EventWeatherDry:       "☀️",
	EventWeatherLightRain: "🌧️",
	EventWeatherHeavyRain: "⛈️",
}

func (c EventCategory) Icon() string {
	return eventIcons[c]
}

// WeatherEventCategory returns the event category matching the condition
func WeatherEventCategory(c WeatherCondition) EventCategory {
	switch c {
	case WeatherLightRain:
		return EventWeatherLightRain
	case WeatherHeavyRain:
		return EventWeatherHeavyRain
	default:
		return EventWeatherDry
	}
}

type RaceEventLogEntry struct {
	Lap      int           `json:"lap"`
	Category EventCategory `json:"category"`
	Message  string        `json:"message"`
}

// RaceResult is the record of a finished race
type RaceResult struct {
	ID        uuid.UUID           `json:"id"`
	TrackName string              `json:"trackName"`
	RaceDate  time.Time           `json:"raceDate"`
	Results   []ParticipantResult `json:"results"`
}

type ParticipantResult struct {
	DriverName string  `json:"driverName"`
	TeamName   string  `json:"teamName"`
	Position   int     `json:"position"`
	TotalTime  float64 `json:"totalTime"`
}
