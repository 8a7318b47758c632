package model

type TrackCharacteristic string

const (
	TrackSpeed     TrackCharacteristic = "SPEED"     // favors engine power
	TrackTechnical TrackCharacteristic = "TECHNICAL" // favors aero
	TrackBalanced  TrackCharacteristic = "BALANCED"  // overall performance
)

type Track struct {
	ID             string              `json:"id"             yaml:"id"`
	Name           string              `json:"name"           yaml:"name"`
	Laps           int                 `json:"laps"           yaml:"laps"`
	Characteristic TrackCharacteristic `json:"characteristic" yaml:"characteristic"`
}

// ParseTrackCharacteristic maps unknown values to TrackBalanced
func ParseTrackCharacteristic(s string) TrackCharacteristic {
	switch TrackCharacteristic(s) {
	case TrackSpeed, TrackTechnical:
		return TrackCharacteristic(s)
	default:
		return TrackBalanced
	}
}
