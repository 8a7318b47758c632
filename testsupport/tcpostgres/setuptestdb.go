//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/racesim-manager-go/pkg/db/migrate"
	database "github.com/mpapenbr/racesim-manager-go/pkg/db/postgres"
)

// SetupTestDb returns a pool for the migrated database in a reused container
func SetupTestDb() *pgxpool.Pool {
	_, dbURL, err := StartPostgres(context.Background(),
		WithName("racesim-manager-test"),
		WithCredentials("racesim", "racesim", "racesim"))
	if err != nil {
		log.Fatal(err)
	}
	return migrateAndConnect(dbURL)
}

// SetupExternalTestDb uses the database given by TESTDB_URL
func SetupExternalTestDb() *pgxpool.Pool {
	return migrateAndConnect(os.Getenv("TESTDB_URL"))
}

func migrateAndConnect(dbURL string) *pgxpool.Pool {
	if err := migrate.MigrateDb(dbURL); err != nil {
		log.Fatal(err)
	}
	return database.InitWithURL(dbURL)
}

func ClearResultTables(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from race_result_entry")
	pool.Exec(context.Background(), "delete from race_result")
}

func ClearRosterTables(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from driver")
	pool.Exec(context.Background(), "delete from team")
	pool.Exec(context.Background(), "delete from car")
	pool.Exec(context.Background(), "delete from car_part")
}

func ClearTrackTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from track")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearResultTables(pool)
	ClearRosterTables(pool)
	ClearTrackTable(pool)
}
