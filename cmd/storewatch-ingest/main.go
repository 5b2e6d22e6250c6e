// Command storewatch-ingest bulk-loads the three CSV collaborator schemas
// (store_status.csv, menu_hours.csv, timezones.csv) into Postgres, replacing
// whatever rows are already there.
package main

import (
	"context"
	"flag"
	"time"

	"storewatch/internal/modkit"
	"storewatch/internal/platform/config"
	"storewatch/internal/platform/logger"
	"storewatch/internal/platform/store"

	ingestmod "storewatch/internal/services/ingest/module"
)

// waitForDB mirrors storewatch-api's boot-time retry so the loader can run
// as the first thing up against a freshly-started Postgres container.
func waitForDB(ctx context.Context, cfg store.Config, opts ...store.Option) (*store.Store, error) {
	const (
		attempts = 10
		delay    = 2 * time.Second
	)
	var (
		st  *store.Store
		err error
	)
	for i := 0; i < attempts; i++ {
		st, err = store.Open(ctx, cfg, opts...)
		if err == nil {
			if gerr := st.Guard(ctx); gerr == nil {
				return st, nil
			} else {
				err = gerr
			}
		}
		time.Sleep(delay)
	}
	return st, err
}

func main() {
	pollsCSV := flag.String("polls", "", "path to store_status.csv")
	hoursCSV := flag.String("hours", "", "path to menu_hours.csv")
	tzCSV := flag.String("timezones", "", "path to timezones.csv")
	flag.Parse()

	root := config.New()
	dbCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	dsn := dbCfg.MayString("DBURL", "")
	if dsn == "" {
		l.Panic().Msg("missing SERVICE_PGSQL_DBURL")
	}
	st, err := waitForDB(
		context.Background(),
		store.Config{
			PG: store.PGConfig{
				Enabled:     true,
				URL:         dsn,
				MaxConns:    int32(dbCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: dbCfg.MayInt("SLOW_MS", 500),
				LogSQL:      dbCfg.MayBool("LOG_SQL", true),
			},
		},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
	}
	mod := ingestmod.New(deps, ingestmod.FromConfig(deps.Cfg))
	loader := mod.Ports().(ingestmod.Ports).Loader

	ctx := context.Background()
	if *pollsCSV != "" {
		res, err := loader.LoadPolls(ctx, *pollsCSV)
		if err != nil {
			l.Panic().Err(err).Str("file", *pollsCSV).Msg("load polls failed")
		}
		l.Info().Int("loaded", res.Loaded).Int("skipped", res.Skipped).Msg("loaded store_status.csv")
	}
	if *hoursCSV != "" {
		res, err := loader.LoadBusinessHours(ctx, *hoursCSV)
		if err != nil {
			l.Panic().Err(err).Str("file", *hoursCSV).Msg("load business hours failed")
		}
		l.Info().Int("loaded", res.Loaded).Int("skipped", res.Skipped).Msg("loaded menu_hours.csv")
	}
	if *tzCSV != "" {
		res, err := loader.LoadTimezones(ctx, *tzCSV)
		if err != nil {
			l.Panic().Err(err).Str("file", *tzCSV).Msg("load timezones failed")
		}
		l.Info().Int("loaded", res.Loaded).Int("skipped", res.Skipped).Msg("loaded timezones.csv")
	}
}
