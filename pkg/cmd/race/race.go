package race

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/racesim-manager-go/log"
	"github.com/mpapenbr/racesim-manager-go/pkg/cmd/util"
	"github.com/mpapenbr/racesim-manager-go/pkg/config"
	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/render"
	"github.com/mpapenbr/racesim-manager-go/pkg/scenario"
	"github.com/mpapenbr/racesim-manager-go/pkg/service"
	"github.com/mpapenbr/racesim-manager-go/pkg/sim"
)

const clearScreen = "\033[H\033[2J"

var (
	appConfig    config.Config // holds processed config values
	scenarioFile string
	watch        bool
	trackID      string
	playerTeamID string
	aiTeamIDs    []string
	weather      string
)

var ErrRaceAborted = errors.New("race aborted")

//nolint:funlen // by design
func NewRaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "race",
		Short: "runs a race and renders the live leaderboard",
		Long: `Runs a race either from a scenario file or from the roster stored in
the database. The result is appended to the configured history store.`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if watch && scenarioFile == "" {
				return errors.New("--watch requires --scenario")
			}
			if scenarioFile == "" && (trackID == "" || playerTeamID == "") {
				return errors.New("either --scenario or --track and --team are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRace(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&scenarioFile, "scenario", "s", "",
		"scenario file describing roster, track and scripted events")
	cmd.Flags().BoolVar(&watch, "watch", false,
		"reload scripted events when the scenario file changes")
	cmd.Flags().StringVar(&trackID, "track", "", "id of the track")
	cmd.Flags().StringVar(&playerTeamID, "team", "player", "id of the player team")
	cmd.Flags().StringSliceVar(&aiTeamIDs, "ai-team", []string{},
		"ids of the AI teams (default: all AI teams)")
	cmd.Flags().StringVar(&weather, "weather", string(model.WeatherDry),
		"initial weather (DRY, LIGHT_RAIN, HEAVY_RAIN)")
	cmd.Flags().StringVar(&config.TickInterval, "tick-interval", "1s",
		"real time per simulated lap")
	cmd.Flags().BoolVar(&appConfig.ShowEvents, "show-events", true,
		"render the latest race events below the leaderboard")
	cmd.Flags().BoolVar(&appConfig.Plain, "plain", false,
		"no colors, no screen refresh")
	return cmd
}

//nolint:funlen,cyclop // by design
func runRace(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_, sqlLogger := util.SetupLogger()
	if telemetry := util.SetupTelemetry(ctx); telemetry != nil {
		defer telemetry.Shutdown()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tick, err := time.ParseDuration(config.TickInterval)
	if err != nil {
		log.Warn("Invalid tick interval. Using default",
			log.String("value", config.TickInterval),
			log.Duration("default", sim.DefaultTickInterval))
		tick = sim.DefaultTickInterval
	}

	var pool *pgxpool.Pool
	if scenarioFile == "" || config.HistoryStore == util.StorePostgres {
		pool = util.NewPool(sqlLogger)
		defer pool.Close()
	}
	history, closeStore, err := util.OpenHistoryStore(ctx, pool)
	if err != nil {
		log.Error("could not open history store", log.ErrorField(err))
		return err
	}
	defer closeStore()

	raceOpts := []service.RaceOption{
		service.WithHistory(history),
		service.WithEngineOptions(sim.WithTickInterval(tick)),
	}
	var sc *scenario.Scenario
	var setup *service.RaceSetup
	if scenarioFile != "" {
		if sc, err = scenario.LoadFile(scenarioFile); err != nil {
			log.Error("could not load scenario", log.ErrorField(err))
			return err
		}
		setup = sc.Setup()
	} else {
		raceOpts = append(raceOpts, service.WithRoster(service.NewRosterService(pool)))
	}
	svc := service.NewRaceService(raceOpts...)
	if setup == nil {
		cond, err := model.ParseWeatherCondition(weather)
		if err != nil {
			return err
		}
		if setup, err = svc.Setup(ctx, trackID, playerTeamID, aiTeamIDs, cond); err != nil {
			log.Error("invalid race setup", log.ErrorField(err))
			return err
		}
	}

	e, err := svc.NewRace(setup)
	if err != nil {
		log.Error("could not create race", log.ErrorField(err))
		return err
	}
	defer e.Close()

	if sc != nil {
		d := scenario.NewDirector(sc.Events)
		go d.Run(ctx, e)
		if watch {
			if err := scenario.Watch(ctx, scenarioFile, d); err != nil {
				log.Warn("could not watch scenario file", log.ErrorField(err))
			}
		}
	}

	r := render.New(
		render.WithPlain(appConfig.Plain),
		render.WithEvents(appConfig.ShowEvents, 0),
		render.WithPlayerTeams(setup.PlayerTeam.Name))
	e.StartRace()
	res := follow(ctx, out, e, r, !appConfig.Plain)
	if res == nil {
		fmt.Fprintln(out, "Race aborted")
		return ErrRaceAborted
	}
	fmt.Fprintln(out, r.Result(res))
	return nil
}

// follow renders every snapshot until the race is finished or ctx is done.
// It returns the result, nil if the race was aborted.
//
//nolint:whitespace // can't make both editor and linter happy
func follow(
	ctx context.Context,
	out io.Writer,
	e *sim.Engine,
	r *render.Renderer,
	refresh bool,
) *model.RaceResult {
	ch := e.Subscribe()
	defer e.Unsubscribe(ch)
	for {
		select {
		case <-ctx.Done():
			log.Info("race aborted")
			e.Close()
			return nil
		case s, ok := <-ch:
			if !ok {
				return e.Result()
			}
			if refresh {
				fmt.Fprint(out, clearScreen)
			}
			fmt.Fprintln(out, r.Race(s))
			if s.IsFinished() {
				// result handlers are done once the lap loop has terminated
				<-e.Done()
				return e.Result()
			}
		}
	}
}
