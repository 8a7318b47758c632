package scenario

import (
	"context"
	"slices"
	"sync"

	"github.com/mpapenbr/racesim-manager-go/log"
	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/sim"
)

// Race is the part of the engine the director needs
type Race interface {
	Subscribe() <-chan *sim.Snapshot
	Unsubscribe(ch <-chan *sim.Snapshot)
	Done() <-chan struct{}
	TriggerCrash(driverNames ...string)
	TriggerPitStop(driverNames ...string)
	TriggerSafetyCar()
	TriggerWeatherChange(condition model.WeatherCondition)
}

type (
	DirectorOption func(*Director)

	// Director fires scripted events on a running race.
	// An event is fired as soon as a snapshot shows its lap completed.
	Director struct {
		mu      sync.Mutex
		pending []ScriptedEvent
		lap     int // last lap events were fired for, -1 before the start
		l       *log.Logger
	}
)

func WithDirectorLogger(l *log.Logger) DirectorOption {
	return func(d *Director) {
		d.l = l
	}
}

func NewDirector(events []ScriptedEvent, opts ...DirectorOption) *Director {
	d := &Director{
		lap: -1,
		l:   log.Default().Named("scenario"),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.pending = sortedEvents(events)
	return d
}

// Replace exchanges the pending events. Events for laps already processed
// are ignored.
func (d *Director) Replace(events []ScriptedEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = slices.DeleteFunc(sortedEvents(events), func(e ScriptedEvent) bool {
		return e.Lap <= d.lap
	})
	d.l.Info("scripted events replaced", log.Int("pending", len(d.pending)))
}

// Pending returns the events not yet fired
func (d *Director) Pending() []ScriptedEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.pending)
}

// Run follows the race until it is finished, closed or ctx is done.
func (d *Director) Run(ctx context.Context, r Race) {
	ch := r.Subscribe()
	defer r.Unsubscribe(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.Done():
			return
		case s, ok := <-ch:
			if !ok || s.IsFinished() {
				return
			}
			if s.IsRacing() {
				for _, e := range d.due(s.CurrentLap) {
					d.fire(r, e)
				}
			}
		}
	}
}

// due removes and returns the events to fire once lap is completed
func (d *Director) due(lap int) []ScriptedEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	if lap <= d.lap {
		return nil
	}
	d.lap = lap
	idx := slices.IndexFunc(d.pending, func(e ScriptedEvent) bool { return e.Lap > lap })
	if idx == -1 {
		idx = len(d.pending)
	}
	ret := slices.Clone(d.pending[:idx])
	d.pending = slices.Delete(d.pending, 0, idx)
	return ret
}

func (d *Director) fire(r Race, e ScriptedEvent) {
	d.l.Debug("firing scripted event",
		log.Int("lap", e.Lap),
		log.String("type", string(e.Type)),
		log.Strings("drivers", e.Drivers))
	switch e.Type {
	case EventCrash:
		r.TriggerCrash(e.Drivers...)
	case EventPitStop:
		r.TriggerPitStop(e.Drivers...)
	case EventSafetyCar:
		r.TriggerSafetyCar()
	case EventWeather:
		if c, err := model.ParseWeatherCondition(e.Weather); err == nil {
			r.TriggerWeatherChange(c)
		} else {
			d.l.Warn("skipping weather event", log.ErrorField(err))
		}
	default:
		d.l.Warn("unknown event type", log.String("type", string(e.Type)))
	}
}

func sortedEvents(events []ScriptedEvent) []ScriptedEvent {
	ret := slices.Clone(events)
	slices.SortStableFunc(ret, func(a, b ScriptedEvent) int { return a.Lap - b.Lap })
	return ret
}
