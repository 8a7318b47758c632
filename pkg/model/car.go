package model

type PartKind string

const (
	PartEngine       PartKind = "engine"
	PartAerodynamics PartKind = "aerodynamics"
	PartTires        PartKind = "tires"
	PartSuspension   PartKind = "suspension"
	PartGearbox      PartKind = "gearbox"
)

// PartKinds in order of their contribution to the overall car performance
var PartKinds = []PartKind{
	PartEngine, PartAerodynamics, PartTires, PartSuspension, PartGearbox,
}

type TireCompound string

const (
	CompoundSoft   TireCompound = "SOFT"
	CompoundMedium TireCompound = "MEDIUM"
	CompoundHard   TireCompound = "HARD"
)

// NeutralPerformance is used whenever performance data is missing
const NeutralPerformance = 50.0

// Weight returns the share a part of this kind contributes to the car performance.
func (k PartKind) Weight() float64 {
	switch k {
	case PartEngine:
		return 0.35
	case PartAerodynamics:
		return 0.25
	case PartTires:
		return 0.20
	case PartSuspension, PartGearbox:
		return 0.10
	default:
		return 0
	}
}

func ParseTireCompound(s string) TireCompound {
	switch TireCompound(s) {
	case CompoundSoft, CompoundHard:
		return TireCompound(s)
	default:
		return CompoundMedium
	}
}

type CarPart struct {
	ID          string       `json:"id"`
	Kind        PartKind     `json:"kind"`
	Name        string       `json:"name"`
	Performance int          `json:"performance"`
	Compound    TireCompound `json:"compound,omitempty"` // tires only
}

type Car struct {
	ID    string                `json:"id"`
	Name  string                `json:"name"`
	Parts map[PartKind]*CarPart `json:"parts"`
}

func (c *Car) Part(kind PartKind) *CarPart {
	if c == nil || c.Parts == nil {
		return nil
	}
	return c.Parts[kind]
}

// OverallPerformance sums the weighted performance of all mounted parts.
// Missing parts contribute nothing.
func (c *Car) OverallPerformance() float64 {
	ret := 0.0
	for _, kind := range PartKinds {
		if p := c.Part(kind); p != nil {
			ret += float64(ClampRating(p.Performance)) * kind.Weight()
		}
	}
	return ret
}

// PartPerformance returns the performance of the given part,
// NeutralPerformance if the part is not mounted.
func (c *Car) PartPerformance(kind PartKind) float64 {
	if p := c.Part(kind); p != nil {
		return float64(ClampRating(p.Performance))
	}
	return NeutralPerformance
}
