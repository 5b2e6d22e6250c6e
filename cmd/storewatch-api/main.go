// @title         Storewatch API
// @version       0.1.0
// @description   Job-control endpoints for per-store uptime/downtime reports

package main

import (
	"context"
	"time"

	"storewatch/internal/platform/config"
	"storewatch/internal/platform/logger"
	phttp "storewatch/internal/platform/net/http"
	"storewatch/internal/platform/store"

	"storewatch/internal/services/api"
)

// waitForDB opens the store and retries Guard until the DB answers or attempts
// are exhausted, so a slow-to-boot Postgres next to the API container
// doesn't crash the process on the first connection attempt
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
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// db config lives under SERVICE_PGSQL_*
	dbCfg := root.Prefix("SERVICE_PGSQL_")

	// bring up logging early
	l := logger.Get()

	// open the platform store (postgres adapter)
	dsn := dbCfg.MayString("DBURL", "")
	if dsn == "" {
		panic("missing SERVICE_PGSQL_DBURL")
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
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// http server (reads CORE_API_API_PORT, default :4000)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:         apiCfg,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", true),
		},
	)

	// run
	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
