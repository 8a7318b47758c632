package service

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
)

var ErrInvalidSetup = errors.New("invalid race setup")

// RaceSetup is everything needed to start a race
type RaceSetup struct {
	Track      *model.Track
	PlayerTeam *model.Team
	AITeams    []*model.Team
	Weather    model.WeatherCondition
}

// Validate checks the setup: a track must be selected, the player team needs
// a car and at least one driver and at least one AI team must take part.
func (s *RaceSetup) Validate() error {
	var errs []error
	if s.Track == nil {
		errs = append(errs, errors.New("no track selected"))
	} else if s.Track.Laps <= 0 {
		errs = append(errs, fmt.Errorf("track %s has no laps", s.Track.Name))
	}
	if s.PlayerTeam == nil {
		errs = append(errs, errors.New("no player team"))
	} else {
		if len(s.PlayerTeam.Drivers) == 0 {
			errs = append(errs, fmt.Errorf("team %s has no drivers", s.PlayerTeam.Name))
		}
		if s.PlayerTeam.Car == nil {
			errs = append(errs, fmt.Errorf("team %s has no car", s.PlayerTeam.Name))
		}
	}
	if len(s.AITeams) == 0 {
		errs = append(errs, errors.New("no AI team selected"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSetup, errors.Join(errs...))
	}
	return nil
}

// Participants lists the drivers of the player team followed by the
// drivers of each AI team.
func (s *RaceSetup) Participants() []model.Participant {
	teams := append([]*model.Team{s.PlayerTeam}, s.AITeams...)
	return lo.FlatMap(teams, func(t *model.Team, _ int) []model.Participant {
		return model.ParticipantsOf(t)
	})
}
