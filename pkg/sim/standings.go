package sim

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mpapenbr/racesim-manager-go/pkg/model"
)

const leaderGap = "Leader"

// computeStandings ranks the participants by cumulative time plus penalty.
// Ties keep the roster order.
func computeStandings(
	participants []model.Participant,
	cumulative, penalties map[string]float64,
) []model.RaceStanding {
	ret := make([]model.RaceStanding, len(participants))
	for i := range participants {
		name := participants[i].DriverName
		ret[i] = model.RaceStanding{
			DriverName: name,
			TeamName:   participants[i].TeamName,
			TotalTime:  cumulative[name] + penalties[name],
		}
	}
	slices.SortStableFunc(ret, func(a, b model.RaceStanding) int {
		return cmp.Compare(a.TotalTime, b.TotalTime)
	})
	for i := range ret {
		ret[i].Position = i + 1
		if i == 0 {
			ret[i].Gap = leaderGap
		} else {
			ret[i].Gap = formatGap(ret[i].TotalTime - ret[0].TotalTime)
		}
	}
	return ret
}

// formatGap renders the gap with one decimal, rounding half up ("+3.4s")
func formatGap(seconds float64) string {
	return "+" + decimal.NewFromFloat(seconds).StringFixed(1) + "s"
}

type overtake struct {
	driver    string
	overtaken string
}

// detectOvertakes reports every driver whose rank improved. The overtaken
// driver is the one directly behind the mover in the new order.
func detectOvertakes(previous, current []model.RaceStanding) []overtake {
	ret := []overtake{}
	for prevIdx := range previous {
		name := previous[prevIdx].DriverName
		curIdx := slices.IndexFunc(current, func(s model.RaceStanding) bool {
			return s.DriverName == name
		})
		if curIdx == -1 || curIdx >= prevIdx {
			continue
		}
		overtaken := "unknown"
		if curIdx+1 < len(current) {
			overtaken = current[curIdx+1].DriverName
		}
		ret = append(ret, overtake{driver: name, overtaken: overtaken})
	}
	return ret
}
