package model

import (
	"fmt"
	"strings"
)

type WeatherCondition string

const (
	WeatherDry       WeatherCondition = "DRY"
	WeatherLightRain WeatherCondition = "LIGHT_RAIN"
	WeatherHeavyRain WeatherCondition = "HEAVY_RAIN"
)

type WeatherState struct {
	Condition      WeatherCondition `json:"condition"`
	GripMultiplier float64          `json:"gripMultiplier"`
}

func ParseWeatherCondition(s string) (WeatherCondition, error) {
	switch c := WeatherCondition(strings.ToUpper(s)); c {
	case WeatherDry, WeatherLightRain, WeatherHeavyRain:
		return c, nil
	default:
		return "", fmt.Errorf("unknown weather condition %q", s)
	}
}

// Grip returns the grip multiplier for the condition (1.0 dry, 0.9 light rain,
// 0.8 heavy rain). Unknown conditions are treated as dry.
func (c WeatherCondition) Grip() float64 {
	switch c {
	case WeatherLightRain:
		return 0.9
	case WeatherHeavyRain:
		return 0.8
	default:
		return 1.0
	}
}

// Display returns the condition name with blanks, e.g. "LIGHT RAIN"
func (c WeatherCondition) Display() string {
	return strings.ReplaceAll(string(c), "_", " ")
}

func NewWeatherState(c WeatherCondition) WeatherState {
	return WeatherState{Condition: c, GripMultiplier: c.Grip()}
}
