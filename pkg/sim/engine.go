package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mpapenbr/racesim-manager-go/log"
	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/utils/broadcast"
)

type State int

const (
	NotStarted State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NOT_STARTED"
	case Running:
		return "RUNNING"
	case Finished:
		return "FINISHED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const DefaultTickInterval = time.Second

var (
	ErrNoParticipants  = errors.New("race needs at least one participant")
	ErrDuplicateDriver = errors.New("driver names must be unique within a race")
	ErrInvalidLapCount = errors.New("track needs a positive lap count")
)

// ResultHandler receives the result once the race is finished.
// It is called from the engine's tick goroutine before Done is closed.
// Calling Close from a handler is allowed, it returns without waiting.
type ResultHandler func(res *model.RaceResult)

type (
	Option func(*Engine)

	// Engine simulates a single race lap by lap.
	// All operations are safe for concurrent use, the lap processing and the
	// trigger operations are serialized by the engine.
	Engine struct {
		mu             sync.Mutex
		participants   []model.Participant
		known          map[string]bool
		track          model.Track
		state          State
		currentLap     int
		cumulative     map[string]float64
		penalties      map[string]float64
		standings      []model.RaceStanding
		weather        model.WeatherState
		safetyCar      model.SafetyCarState
		events         *eventLog
		result         *model.RaceResult
		interval       time.Duration
		rnd            *rand.Rand
		now            func() time.Time
		resultHandlers []ResultHandler
		bcst           broadcast.BroadcastServer[*Snapshot]
		ctx            context.Context
		cancel         context.CancelFunc
		done           chan struct{}
		looping        bool
		notifying      bool
		closed         bool
		l              *log.Logger
		metrics        *engineMetrics
		tracer         trace.Tracer
	}
)

func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithRand sets the random source used to draw the safety car duration
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rnd = r
	}
}

// WithClock sets the time source used for the race date of the result
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.l = l
	}
}

func WithResultHandler(h ResultHandler) Option {
	return func(e *Engine) {
		e.resultHandlers = append(e.resultHandlers, h)
	}
}

//nolint:whitespace // can't make both editor and linter happy
func NewEngine(
	participants []model.Participant,
	track model.Track,
	weather model.WeatherCondition,
	opts ...Option,
) (*Engine, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if track.Laps <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLapCount, track.Laps)
	}
	if _, err := model.ParseWeatherCondition(string(weather)); err != nil {
		weather = model.WeatherDry
	}
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		participants: append([]model.Participant(nil), participants...),
		known:        make(map[string]bool, len(participants)),
		track:        track,
		cumulative:   make(map[string]float64, len(participants)),
		penalties:    make(map[string]float64),
		weather:      model.NewWeatherState(weather),
		events:       newEventLog(MaxEventLogEntries),
		interval:     DefaultTickInterval,
		now:          time.Now,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
		l:            log.Default().Named("sim"),
		tracer:       otel.Tracer("rsm.sim"),
	}
	for _, p := range e.participants {
		if e.known[p.DriverName] {
			cancel()
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDriver, p.DriverName)
		}
		e.known[p.DriverName] = true
		e.cumulative[p.DriverName] = 0
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rnd == nil {
		//nolint:gosec // no crypto here
		e.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	e.metrics = newEngineMetrics(e.l)
	e.bcst = broadcast.NewBroadcastServer(
		"sim."+track.Name,
		broadcast.WithReplayLatest[*Snapshot](),
		broadcast.WithLogger[*Snapshot](e.l))
	e.standings = computeStandings(e.participants, e.cumulative, e.penalties)
	e.publish()
	return e, nil
}

// StartRace starts the lap loop. Calling it again or after Close has no effect.
func (e *Engine) StartRace() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.begin() {
		return
	}
	e.looping = true
	go e.run(e.ctx)
}

// begin switches to Running. The caller must hold the lock.
func (e *Engine) begin() bool {
	if e.state != NotStarted || e.closed {
		return false
	}
	e.state = Running
	e.currentLap = 0
	e.l.Info("race started",
		log.String("track", e.track.Name),
		log.Int("laps", e.track.Laps),
		log.Int("participants", len(e.participants)))
	e.logEvent(model.EventGreenFlag, fmt.Sprintf("Race started at %s!", e.track.Name))
	e.publish()
	return true
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for lap := 1; lap <= e.track.Laps; lap++ {
		select {
		case <-ctx.Done():
			e.l.Debug("lap loop cancelled", log.Int("lap", lap))
			return
		case <-ticker.C:
		}
		if !e.completeLap(ctx, lap) {
			return
		}
	}
	if res := e.finish(); res != nil {
		e.mu.Lock()
		e.notifying = true
		e.mu.Unlock()
		for _, h := range e.resultHandlers {
			h(res)
		}
	}
}

// completeLap processes one lap. It returns false if the engine was closed.
func (e *Engine) completeLap(ctx context.Context, lap int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state != Running {
		return false
	}
	_, span := e.tracer.Start(ctx, "sim.lap",
		trace.WithAttributes(attribute.Int("lap", lap)))
	defer span.End()

	e.currentLap = lap
	for i := range e.participants {
		p := &e.participants[i]
		e.cumulative[p.DriverName] += LapTime(
			p, e.track.Characteristic, e.weather, e.safetyCar)
	}

	previous := e.standings
	e.standings = computeStandings(e.participants, e.cumulative, e.penalties)
	for _, o := range detectOvertakes(previous, e.standings) {
		e.logEvent(model.EventOvertake,
			fmt.Sprintf("%s overtakes %s!", o.driver, o.overtaken))
	}

	if e.safetyCar.IsActive {
		if remaining := e.safetyCar.LapsRemaining - 1; remaining <= 0 {
			e.safetyCar = model.SafetyCarState{}
			e.logEvent(model.EventGreenFlag, "Safety car returns to pits")
		} else {
			e.safetyCar.LapsRemaining = remaining
		}
	}

	if lap%10 == 0 || lap == e.track.Laps {
		e.logEvent(model.EventLapComplete,
			fmt.Sprintf("Lap %d/%d completed", lap, e.track.Laps))
	}
	e.metrics.lapCompleted(ctx, e.track.Name)
	e.l.Debug("lap completed",
		log.Int("lap", lap),
		log.String("leader", e.standings[0].DriverName))
	e.publish()
	return true
}

// finish switches to Finished and returns the race result,
// nil if the engine was closed in the meantime.
func (e *Engine) finish() *model.RaceResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state != Running {
		return nil
	}
	e.state = Finished
	winner := "Unknown"
	if len(e.standings) > 0 {
		winner = e.standings[0].DriverName
	}
	e.logEvent(model.EventCheckeredFlag, "Race finished! Winner: "+winner)
	e.result = e.buildResult()
	e.l.Info("race finished",
		log.String("track", e.track.Name),
		log.String("winner", winner))
	e.publish()
	return e.result
}

func (e *Engine) buildResult() *model.RaceResult {
	id, err := uuid.NewV4()
	if err != nil {
		e.l.Warn("could not create result id", log.ErrorField(err))
	}
	return &model.RaceResult{
		ID:        id,
		TrackName: e.track.Name,
		RaceDate:  e.now(),
		Results: lo.Map(e.standings,
			func(s model.RaceStanding, _ int) model.ParticipantResult {
				return model.ParticipantResult{
					DriverName: s.DriverName,
					TeamName:   s.TeamName,
					Position:   s.Position,
					TotalTime:  s.TotalTime,
				}
			}),
	}
}

// TriggerCrash adds the crash penalty for every named driver.
// Unknown names are ignored.
func (e *Engine) TriggerCrash(driverNames ...string) {
	e.applyPenalty(driverNames, CrashPenalty, model.EventCrash, "%s crashed! +%gs penalty")
}

// TriggerPitStop adds the pit stop time for every named driver.
// Unknown names are ignored.
func (e *Engine) TriggerPitStop(driverNames ...string) {
	e.applyPenalty(driverNames, PitStopPenalty, model.EventPitStop, "%s pits (+%gs)")
}

//nolint:whitespace // can't make both editor and linter happy
func (e *Engine) applyPenalty(
	driverNames []string,
	seconds float64,
	category model.EventCategory,
	msgFormat string,
) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state != Running {
		return
	}
	names := lo.Filter(lo.Uniq(driverNames), func(name string, _ int) bool {
		return e.known[name]
	})
	if len(names) == 0 {
		return
	}
	for _, name := range names {
		e.penalties[name] += seconds
		e.logEvent(category, fmt.Sprintf(msgFormat, name, seconds))
	}
	e.standings = computeStandings(e.participants, e.cumulative, e.penalties)
	e.publish()
}

// TriggerSafetyCar deploys the safety car for 3 to 5 laps.
// Nothing happens if it is already out.
func (e *Engine) TriggerSafetyCar() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state != Running || e.safetyCar.IsActive {
		return
	}
	laps := SafetyCarMinLap + e.rnd.IntN(SafetyCarMaxLap-SafetyCarMinLap+1)
	e.safetyCar = model.SafetyCarState{IsActive: true, LapsRemaining: laps}
	e.logEvent(model.EventSafetyCar, fmt.Sprintf("SAFETY CAR deployed for %d laps!", laps))
	e.publish()
}

// TriggerWeatherChange switches the weather. The new grip applies from the
// next lap on.
func (e *Engine) TriggerWeatherChange(condition model.WeatherCondition) {
	if _, err := model.ParseWeatherCondition(string(condition)); err != nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state != Running {
		return
	}
	e.weather = model.NewWeatherState(condition)
	e.logEvent(model.WeatherEventCategory(condition),
		fmt.Sprintf("Weather: %s! Grip: %d%%",
			condition.Display(), int(math.Round(e.weather.GripMultiplier*100))))
	e.publish()
}

// Snapshot returns a copy of the current race state
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// Subscribe returns a channel which receives a snapshot after every change.
// The current snapshot is delivered right away.
func (e *Engine) Subscribe() <-chan *Snapshot {
	return e.bcst.Subscribe()
}

func (e *Engine) Unsubscribe(ch <-chan *Snapshot) {
	e.bcst.CancelSubscription(ch)
}

// Done is closed when the lap loop has terminated (finished or closed)
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Result returns the race result, nil until the race is finished
func (e *Engine) Result() *model.RaceResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// Close stops the lap loop. No state changes happen once Close returns.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	looping, notifying := e.looping, e.notifying
	e.cancel()
	e.mu.Unlock()

	switch {
	case !looping:
		close(e.done)
	case !notifying:
		<-e.done
	}
	e.bcst.Close()
}

// logEvent appends to the event log. The caller must hold the lock.
func (e *Engine) logEvent(category model.EventCategory, msg string) {
	e.events.add(model.RaceEventLogEntry{
		Lap:      e.currentLap,
		Category: category,
		Message:  msg,
	})
	e.metrics.eventLogged(e.ctx, category)
	e.l.Debug("race event",
		log.Int("lap", e.currentLap),
		log.String("category", string(category)),
		log.String("msg", msg))
}

// publish sends the current state to subscribers. The caller must hold the lock.
func (e *Engine) publish() {
	e.bcst.Publish(e.snapshot())
}
