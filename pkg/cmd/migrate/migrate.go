package migrate

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racesim-manager-go/log"
	"github.com/mpapenbr/racesim-manager-go/pkg/cmd/util"
	"github.com/mpapenbr/racesim-manager-go/pkg/config"
	dbmigrate "github.com/mpapenbr/racesim-manager-go/pkg/db/migrate"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration()
		},
	}

	cmd.Flags().StringVarP(&config.MigrationSourceURL,
		"migration-source-url",
		"m",
		"",
		"url to migration files (default: migrations built into the binary)")

	return cmd
}

func startMigration() error {
	util.SetupLogger()
	util.WaitForDB()

	dbURL := prepareURLForDB(config.DB)
	var err error
	if config.MigrationSourceURL == "" {
		log.Info("Using embedded migrations")
		err = dbmigrate.MigrateDb(dbURL)
	} else {
		log.Info("Using migrations files at", log.String("source", config.MigrationSourceURL))
		err = dbmigrate.MigrateDbFromSource(config.MigrationSourceURL, dbURL)
	}
	if err != nil {
		log.Error("migration failed", log.ErrorField(err))
		return err
	}
	log.Info("Database is up to date")
	return nil
}

func prepareURLForDB(url string) string {
	options := "sslmode=disable"
	if strings.Contains(url, "sslmode=") {
		return url
	}
	if strings.Contains(url, "?") {
		return fmt.Sprintf("%s&%s", url, options)
	}
	return fmt.Sprintf("%s?%s", url, options)
}
