package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/service"
)

type EventType string

const (
	EventCrash     EventType = "crash"
	EventPitStop   EventType = "pit_stop"
	EventSafetyCar EventType = "safety_car"
	EventWeather   EventType = "weather"
)

var ErrInvalidScenario = errors.New("invalid scenario")

type (
	// Scenario describes a race including its roster and scripted events
	Scenario struct {
		Name    string          `yaml:"name"`
		Track   model.Track     `yaml:"track"`
		Weather string          `yaml:"weather"`
		Player  string          `yaml:"player"` // id of the player team, first team if empty
		Teams   []TeamSpec      `yaml:"teams"`
		Events  []ScriptedEvent `yaml:"events"`
	}
	TeamSpec struct {
		ID      string       `yaml:"id"`
		Name    string       `yaml:"name"`
		Car     *CarSpec     `yaml:"car"`
		Drivers []DriverSpec `yaml:"drivers"`
	}
	CarSpec struct {
		Name     string                 `yaml:"name"`
		Parts    map[model.PartKind]int `yaml:"parts"`
		Compound string                 `yaml:"compound"`
	}
	DriverSpec struct {
		Name  string `yaml:"name"`
		Skill int    `yaml:"skill"`
	}
	// ScriptedEvent is fired once the given lap is completed, lap 0 right after the start
	ScriptedEvent struct {
		Lap     int       `yaml:"lap"`
		Type    EventType `yaml:"type"`
		Drivers []string  `yaml:"drivers,omitempty"`
		Weather string    `yaml:"weather,omitempty"`
	}
)

func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Load reads and validates a scenario. Unknown keys are rejected.
func Load(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	s.Track.Characteristic = model.ParseTrackCharacteristic(string(s.Track.Characteristic))
	if s.Track.ID == "" {
		s.Track.ID = strings.ToLower(s.Track.Name)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	slices.SortStableFunc(s.Events, func(a, b ScriptedEvent) int { return a.Lap - b.Lap })
	return &s, nil
}

func (s *Scenario) validate() error {
	var errs []error
	if s.Weather != "" {
		if _, err := model.ParseWeatherCondition(s.Weather); err != nil {
			errs = append(errs, err)
		}
	}
	if s.Player != "" && !slices.ContainsFunc(s.Teams, func(t TeamSpec) bool {
		return t.ID == s.Player
	}) {
		errs = append(errs, fmt.Errorf("player team %q not found", s.Player))
	}
	for i, e := range s.Events {
		if err := e.validate(s.Track.Laps); err != nil {
			errs = append(errs, fmt.Errorf("event %d: %w", i+1, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, errors.Join(errs...))
	}
	return nil
}

func (e *ScriptedEvent) validate(laps int) error {
	if e.Lap < 0 || (laps > 0 && e.Lap >= laps) {
		return fmt.Errorf("lap %d out of range", e.Lap)
	}
	switch e.Type {
	case EventCrash, EventPitStop:
		if len(e.Drivers) == 0 {
			return fmt.Errorf("%s needs drivers", e.Type)
		}
	case EventSafetyCar:
	case EventWeather:
		if _, err := model.ParseWeatherCondition(e.Weather); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	return nil
}

// Setup builds the race setup. The player team is the one named by Player,
// all other teams are AI teams.
func (s *Scenario) Setup() *service.RaceSetup {
	setup := &service.RaceSetup{
		Track:   &s.Track,
		Weather: model.WeatherDry,
	}
	if s.Weather != "" {
		setup.Weather, _ = model.ParseWeatherCondition(s.Weather)
	}
	playerID := s.Player
	if playerID == "" && len(s.Teams) > 0 {
		playerID = s.Teams[0].ID
	}
	for i := range s.Teams {
		t := s.Teams[i].team()
		if t.ID == playerID && setup.PlayerTeam == nil {
			setup.PlayerTeam = t
		} else {
			setup.AITeams = append(setup.AITeams, t)
		}
	}
	return setup
}

func (ts *TeamSpec) team() *model.Team {
	t := &model.Team{ID: ts.ID, Name: ts.Name}
	if t.Name == "" {
		t.Name = ts.ID
	}
	if ts.Car != nil {
		t.Car = ts.Car.car(ts.ID)
	}
	for i, d := range ts.Drivers {
		t.Drivers = append(t.Drivers, &model.Driver{
			ID:     fmt.Sprintf("%s-%d", ts.ID, i+1),
			Name:   d.Name,
			Skill:  model.ClampRating(d.Skill),
			TeamID: ts.ID,
		})
	}
	return t
}

func (cs *CarSpec) car(teamID string) *model.Car {
	c := &model.Car{
		ID:    teamID + "-car",
		Name:  cs.Name,
		Parts: make(map[model.PartKind]*model.CarPart, len(cs.Parts)),
	}
	for kind, perf := range cs.Parts {
		p := &model.CarPart{
			ID:          fmt.Sprintf("%s-%s", c.ID, kind),
			Kind:        kind,
			Name:        string(kind),
			Performance: model.ClampRating(perf),
		}
		if kind == model.PartTires {
			p.Compound = model.ParseTireCompound(strings.ToUpper(cs.Compound))
		}
		c.Parts[kind] = p
	}
	return c
}
