package pgdb

import (
	"context"
	"database/sql"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	_ "github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

func Open(ctx context.Context, pgDsn string) *bun.DB {
	sqldb, err := sql.Open("pg", pgDsn)
	if err != nil {
		logrus.WithError(err).Fatalln("Could not open pg database.")
	}
	err = sqldb.Ping()
	if err != nil {
		logrus.WithError(err).Fatalln("Could not ping pg database.")
	}

	bdb := bun.NewDB(sqldb, pgdialect.New())
	if os.Getenv("DB_VERBOSE") == "true" {
		bdb.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return bdb
}

// Integration tests need a real pg instance, but starting one per test
// is too slow. The testenv harness starts a single db and publishes its
// datasource for every test that wants it.

func OpenTest(ctx context.Context) *bun.DB {
	return Open(ctx, TestEnvDsn())
}

func TestEnvDsn() string {
	return os.Getenv("CAMPO_TEST_PG_DSN")
}

func SetTestEnvDsn(dsn string) {
	os.Setenv("CAMPO_TEST_PG_DSN", dsn)
}
