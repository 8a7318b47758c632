package history

import (
	"context"
	"fmt"
	"io"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/racesim-manager-go/log"
	"github.com/mpapenbr/racesim-manager-go/pkg/cmd/util"
	"github.com/mpapenbr/racesim-manager-go/pkg/config"
	"github.com/mpapenbr/racesim-manager-go/pkg/render"
	"github.com/mpapenbr/racesim-manager-go/pkg/store"
)

var plain bool

func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [race-id]",
		Short: "lists finished races or shows the result of a single race",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "no colors")
	return cmd
}

func showHistory(ctx context.Context, out io.Writer, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	_, sqlLogger := util.SetupLogger()
	if config.HistoryStore == "" || config.HistoryStore == util.StoreMemory {
		log.Warn("memory history store is empty on every start",
			log.String("hint", "use --history-store postgres or nats"))
	}
	var pool *pgxpool.Pool
	if config.HistoryStore == util.StorePostgres {
		pool = util.NewPool(sqlLogger)
		defer pool.Close()
	}
	h, closeStore, err := util.OpenHistoryStore(ctx, pool)
	if err != nil {
		return err
	}
	defer closeStore()
	return printHistory(ctx, out, h, render.New(render.WithPlain(plain)), args)
}

//nolint:whitespace // can't make both editor and linter happy
func printHistory(
	ctx context.Context,
	out io.Writer,
	h store.HistoryStore,
	r *render.Renderer,
	args []string,
) error {
	if len(args) == 1 {
		id, err := uuid.FromString(args[0])
		if err != nil {
			return fmt.Errorf("invalid race id %q: %w", args[0], err)
		}
		res, err := h.Load(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, r.Result(res))
		return nil
	}
	all, err := h.LoadAll(ctx)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Fprintln(out, "No races recorded yet")
		return nil
	}
	fmt.Fprintln(out, r.History(all))
	return nil
}
