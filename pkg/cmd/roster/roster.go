package roster

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racesim-manager-go/log"
	"github.com/mpapenbr/racesim-manager-go/pkg/cmd/util"
	"github.com/mpapenbr/racesim-manager-go/pkg/model"
	"github.com/mpapenbr/racesim-manager-go/pkg/render"
	"github.com/mpapenbr/racesim-manager-go/pkg/service"
)

// Roster is the part of the roster service used by the commands
type Roster interface {
	Drivers(ctx context.Context) ([]*model.Driver, error)
	CreateDriver(ctx context.Context, name string, skill int) (*model.Driver, error)
	DeleteDriver(ctx context.Context, id string) error
	AssignDriver(ctx context.Context, driverID, teamID string) error
	ReleaseDriver(ctx context.Context, driverID string) error
	Teams(ctx context.Context) ([]*model.Team, error)
	Tracks(ctx context.Context) ([]*model.Track, error)
	Parts(ctx context.Context, kind model.PartKind) ([]*model.CarPart, error)
	MountPart(ctx context.Context, teamID string, kind model.PartKind, partID string) error
}

var _ Roster = (*service.RosterService)(nil)

type action func(ctx context.Context, out io.Writer, r Roster, rd *render.Renderer, args []string) error

// OpenFunc provides the roster and a func to release it
type OpenFunc func() (Roster, func())

var plain bool

func openDB() (Roster, func()) {
	_, sqlLogger := util.SetupLogger()
	pool := util.NewPool(sqlLogger)
	return service.NewRosterService(pool), pool.Close
}

func NewRosterCmd() *cobra.Command {
	return newRosterCmd(openDB)
}

//nolint:funlen // by design
func newRosterCmd(open OpenFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "manages drivers, teams, cars and tracks",
	}
	cmd.PersistentFlags().BoolVar(&plain, "plain", false, "no colors")

	run := func(fn action) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			r, release := open()
			defer release()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			err := fn(ctx, cmd.OutOrStdout(), r, render.New(render.WithPlain(plain)), args)
			if err != nil {
				log.Error("roster command failed",
					log.String("cmd", cmd.CommandPath()),
					log.ErrorField(err))
			}
			return err
		}
	}

	drivers := &cobra.Command{
		Use:   "drivers",
		Short: "lists all drivers",
		Args:  cobra.NoArgs,
		RunE:  run(listDrivers),
	}
	driver := &cobra.Command{
		Use:   "driver",
		Short: "creates, deletes and assigns drivers",
	}
	var skill int
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "creates a driver",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, out io.Writer, r Roster, _ *render.Renderer, args []string) error {
			d, err := r.CreateDriver(ctx, args[0], skill)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Created driver %s (%s, skill %d)\n", d.ID, d.Name, d.Skill)
			return nil
		}),
	}
	create.Flags().IntVar(&skill, "skill", 50, "driver skill (1-100)")
	driver.AddCommand(
		create,
		&cobra.Command{
			Use:   "delete <driver-id>",
			Short: "deletes a driver without team",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, out io.Writer, r Roster, _ *render.Renderer, args []string) error {
				if err := r.DeleteDriver(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted driver %s\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "assign <driver-id> <team-id>",
			Short: "moves a driver into a team",
			Args:  cobra.ExactArgs(2),
			RunE: run(func(ctx context.Context, out io.Writer, r Roster, _ *render.Renderer, args []string) error {
				if err := r.AssignDriver(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(out, "Driver %s now drives for %s\n", args[0], args[1])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "release <driver-id>",
			Short: "removes a driver from its team",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, out io.Writer, r Roster, _ *render.Renderer, args []string) error {
				if err := r.ReleaseDriver(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(out, "Driver %s released\n", args[0])
				return nil
			}),
		},
	)

	var kind string
	parts := &cobra.Command{
		Use:   "parts",
		Short: "lists the available car parts of a kind, best first",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, out io.Writer, r Roster, rd *render.Renderer, _ []string) error {
			list, err := r.Parts(ctx, model.PartKind(kind))
			if err != nil {
				return err
			}
			fmt.Fprintln(out, rd.Parts(list))
			return nil
		}),
	}
	parts.Flags().StringVar(&kind, "kind", string(model.PartEngine),
		"part kind (engine, aerodynamics, tires, suspension, gearbox)")

	cmd.AddCommand(
		drivers,
		driver,
		&cobra.Command{
			Use:   "teams",
			Short: "lists all teams with car and drivers",
			Args:  cobra.NoArgs,
			RunE:  run(listTeams),
		},
		&cobra.Command{
			Use:   "tracks",
			Short: "lists all tracks",
			Args:  cobra.NoArgs,
			RunE:  run(listTracks),
		},
		parts,
		&cobra.Command{
			Use:   "mount <team-id> <kind> [part-id]",
			Short: "mounts a part into the car of a team, without part-id the slot is cleared",
			Args:  cobra.RangeArgs(2, 3),
			RunE:  run(mountPart),
		},
	)
	return cmd
}

//nolint:whitespace // can't make both editor and linter happy
func listDrivers(
	ctx context.Context, out io.Writer, r Roster, rd *render.Renderer, _ []string,
) error {
	list, err := r.Drivers(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, rd.Drivers(list))
	return nil
}

//nolint:whitespace // can't make both editor and linter happy
func listTeams(
	ctx context.Context, out io.Writer, r Roster, rd *render.Renderer, _ []string,
) error {
	list, err := r.Teams(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, rd.Teams(list))
	return nil
}

//nolint:whitespace // can't make both editor and linter happy
func listTracks(
	ctx context.Context, out io.Writer, r Roster, rd *render.Renderer, _ []string,
) error {
	list, err := r.Tracks(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, rd.Tracks(list))
	return nil
}

//nolint:whitespace // can't make both editor and linter happy
func mountPart(
	ctx context.Context, out io.Writer, r Roster, _ *render.Renderer, args []string,
) error {
	kind := model.PartKind(args[1])
	if kind.Weight() == 0 {
		return fmt.Errorf("unknown part kind %q", args[1])
	}
	partID := ""
	if len(args) == 3 {
		partID = args[2]
	}
	if err := r.MountPart(ctx, args[0], kind, partID); err != nil {
		return err
	}
	if partID == "" {
		fmt.Fprintf(out, "Removed %s from car of %s\n", kind, args[0])
	} else {
		fmt.Fprintf(out, "Mounted %s %s into car of %s\n", kind, strconv.Quote(partID), args[0])
	}
	return nil
}
