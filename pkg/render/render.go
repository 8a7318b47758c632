package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/sim"
)

const DefaultEventCount = 8

type (
	Option func(*Renderer)

	// Renderer formats race state and roster data for the terminal
	Renderer struct {
		st         styles
		plain      bool
		showEvents bool
		eventCount int
		player     map[string]bool // team names highlighted in the leaderboard
	}
)

// WithPlain disables colors and box drawing characters
func WithPlain(plain bool) Option {
	return func(r *Renderer) {
		r.plain = plain
	}
}

func WithEvents(show bool, count int) Option {
	return func(r *Renderer) {
		r.showEvents = show
		if count > 0 {
			r.eventCount = count
		}
	}
}

func WithPlayerTeams(names ...string) Option {
	return func(r *Renderer) {
		for _, n := range names {
			r.player[n] = true
		}
	}
}

func New(opts ...Option) *Renderer {
	r := &Renderer{
		showEvents: true,
		eventCount: DefaultEventCount,
		player:     map[string]bool{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.plain {
		r.st = plainStyles()
	} else {
		r.st = colorStyles()
	}
	return r
}

// Race renders the leaderboard together with the race status and the
// latest events.
func (r *Renderer) Race(s *sim.Snapshot) string {
	parts := []string{
		r.st.title.Render(fmt.Sprintf("%s  Lap %d/%d", s.TrackName, s.CurrentLap, s.TotalLaps)),
		r.status(s),
		r.leaderboard(s.Standings),
	}
	if r.showEvents {
		parts = append(parts, r.events(s.EventLog))
	}
	return r.st.doc.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (r *Renderer) status(s *sim.Snapshot) string {
	state := s.State.String()
	weather := fmt.Sprintf("%s %s (grip %d%%)",
		model.WeatherEventCategory(s.Weather.Condition).Icon(),
		s.Weather.Condition.Display(),
		int(math.Round(s.Weather.GripMultiplier*100)))
	if s.Weather.Condition != model.WeatherDry {
		weather = r.st.rain.Render(weather)
	}
	sc := r.st.green.Render("Green flag")
	if s.SafetyCar.IsActive {
		sc = r.st.safetyCar.Render(fmt.Sprintf("%s SAFETY CAR (%d laps)",
			model.EventSafetyCar.Icon(), s.SafetyCar.LapsRemaining))
	}
	return strings.Join([]string{state, weather, sc}, " | ")
}

func (r *Renderer) leaderboard(standings []model.RaceStanding) string {
	rows := lo.Map(standings, func(s model.RaceStanding, _ int) []string {
		return []string{
			strconv.Itoa(s.Position), s.DriverName, s.TeamName, s.Gap, FormatTime(s.TotalTime),
		}
	})
	return r.table([]string{"POS", "DRIVER", "TEAM", "GAP", "TIME"}, rows,
		func(row int) lipgloss.Style {
			switch {
			case row < 0 || row >= len(standings):
				return r.st.cell
			case r.player[standings[row].TeamName]:
				return r.st.player
			case row == 0:
				return r.st.leader
			default:
				return r.st.cell
			}
		})
}

func (r *Renderer) events(entries []model.RaceEventLogEntry) string {
	if len(entries) > r.eventCount {
		entries = entries[len(entries)-r.eventCount:]
	}
	lines := lo.Map(entries, func(e model.RaceEventLogEntry, _ int) string {
		line := fmt.Sprintf("%s L%-3d %s", e.Category.Icon(), e.Lap, e.Message)
		if e.Category == model.EventCrash && !r.plain {
			return crashStyle.Render(line)
		}
		return line
	})
	if len(lines) == 0 {
		lines = []string{r.st.subtle.Render("no events yet")}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Result renders the final classification
func (r *Renderer) Result(res *model.RaceResult) string {
	var winnerTime float64
	if len(res.Results) > 0 {
		winnerTime = res.Results[0].TotalTime
	}
	rows := lo.Map(res.Results, func(p model.ParticipantResult, _ int) []string {
		gap := "Winner"
		if p.Position > 1 {
			gap = fmt.Sprintf("+%.1fs", p.TotalTime-winnerTime)
		}
		return []string{
			strconv.Itoa(p.Position), p.DriverName, p.TeamName, FormatTime(p.TotalTime), gap,
		}
	})
	title := fmt.Sprintf("%s Result %s (%s)", model.EventCheckeredFlag.Icon(),
		res.TrackName, res.RaceDate.Format("2006-01-02 15:04"))
	return r.st.doc.Render(lipgloss.JoinVertical(lipgloss.Left,
		r.st.title.Render(title),
		r.table([]string{"POS", "DRIVER", "TEAM", "TIME", "GAP"}, rows, r.plainRow)))
}

// History renders one line per recorded race, oldest first
func (r *Renderer) History(results []*model.RaceResult) string {
	rows := lo.Map(results, func(res *model.RaceResult, _ int) []string {
		winner := "-"
		if len(res.Results) > 0 {
			winner = res.Results[0].DriverName
		}
		return []string{
			res.RaceDate.Format("2006-01-02 15:04"),
			res.TrackName,
			winner,
			strconv.Itoa(len(res.Results)),
			res.ID.String(),
		}
	})
	return r.table([]string{"DATE", "TRACK", "WINNER", "ENTRIES", "ID"}, rows, r.plainRow)
}

func (r *Renderer) Teams(teams []*model.Team) string {
	rows := lo.Map(teams, func(t *model.Team, _ int) []string {
		car, perf := "-", "-"
		if t.Car != nil {
			car = t.Car.Name
			perf = fmt.Sprintf("%.1f", t.Car.OverallPerformance())
		}
		drivers := lo.Map(t.Drivers, func(d *model.Driver, _ int) string { return d.Name })
		kind := "player"
		if t.IsAI() {
			kind = "ai"
		}
		return []string{t.ID, t.Name, kind, car, perf, strings.Join(drivers, ", ")}
	})
	return r.table([]string{"ID", "NAME", "KIND", "CAR", "PERF", "DRIVERS"}, rows, r.plainRow)
}

func (r *Renderer) Drivers(drivers []*model.Driver) string {
	rows := lo.Map(drivers, func(d *model.Driver, _ int) []string {
		return []string{d.ID, d.Name, strconv.Itoa(d.Skill), lo.Ternary(d.TeamID == "", "-", d.TeamID)}
	})
	return r.table([]string{"ID", "NAME", "SKILL", "TEAM"}, rows, r.plainRow)
}

func (r *Renderer) Tracks(tracks []*model.Track) string {
	rows := lo.Map(tracks, func(t *model.Track, _ int) []string {
		return []string{t.ID, t.Name, strconv.Itoa(t.Laps), string(t.Characteristic)}
	})
	return r.table([]string{"ID", "NAME", "LAPS", "CHARACTERISTIC"}, rows, r.plainRow)
}

func (r *Renderer) Parts(parts []*model.CarPart) string {
	rows := lo.Map(parts, func(p *model.CarPart, _ int) []string {
		return []string{
			p.ID, string(p.Kind), p.Name, strconv.Itoa(p.Performance),
			lo.Ternary(p.Compound == "", "-", string(p.Compound)),
		}
	})
	return r.table([]string{"ID", "KIND", "NAME", "PERF", "COMPOUND"}, rows, r.plainRow)
}

func (r *Renderer) plainRow(int) lipgloss.Style { return r.st.cell }

//nolint:whitespace // can't make both editor and linter happy
func (r *Renderer) table(
	headers []string,
	rows [][]string,
	rowStyle func(row int) lipgloss.Style,
) string {
	return table.New().
		Border(r.st.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.st.header
			}
			return rowStyle(row)
		}).
		String()
}

// FormatTime formats seconds as m:ss.SSS
func FormatTime(seconds float64) string {
	ms := int64(math.Round(seconds * 1000))
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, ms/1000%60, ms%1000)
}
