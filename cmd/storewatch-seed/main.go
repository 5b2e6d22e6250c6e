// Command storewatch-seed loads a static YAML fixture of stores, their
// business hours, timezones, and sample polls directly into Postgres for
// local development, bypassing the CSV pipeline entirely.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"storewatch/internal/modkit"
	"storewatch/internal/platform/config"
	"storewatch/internal/platform/logger"
	"storewatch/internal/platform/store"

	ingestdomain "storewatch/internal/services/ingest/domain"
	ingestmod "storewatch/internal/services/ingest/module"
)

// fixture is the on-disk shape of a dev seed file: one entry per store, each
// carrying its schedule, timezone, and a handful of sample polls.
type fixture struct {
	Stores []fixtureStore `yaml:"stores"`
}

type fixtureStore struct {
	StoreID       string                `yaml:"store_id"`
	Timezone      string                `yaml:"timezone"`
	BusinessHours []fixtureBusinessHour `yaml:"business_hours"`
	Polls         []fixturePoll         `yaml:"polls"`
}

type fixtureBusinessHour struct {
	DayOfWeek  int    `yaml:"day_of_week"`
	StartLocal string `yaml:"start_local"`
	EndLocal   string `yaml:"end_local"`
}

type fixturePoll struct {
	TimestampUTC string `yaml:"timestamp_utc"`
	Status       string `yaml:"status"`
}

func loadFixture(path string) (fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fixture{}, err
	}
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fixture{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// flatten turns the per-store fixture shape into the flat row slices the
// ingest storage port expects, the same shape a parsed CSV would produce.
func flatten(f fixture) ([]ingestdomain.Poll, []ingestdomain.BusinessHour, []ingestdomain.StoreTimezone, error) {
	var (
		polls []ingestdomain.Poll
		hours []ingestdomain.BusinessHour
		zones []ingestdomain.StoreTimezone
	)
	for _, s := range f.Stores {
		if s.Timezone != "" {
			zones = append(zones, ingestdomain.StoreTimezone{StoreID: s.StoreID, TZ: s.Timezone})
		}
		for _, h := range s.BusinessHours {
			start, err := parseLocalTime(h.StartLocal)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("store %s: start_local: %w", s.StoreID, err)
			}
			end, err := parseLocalTime(h.EndLocal)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("store %s: end_local: %w", s.StoreID, err)
			}
			hours = append(hours, ingestdomain.BusinessHour{
				StoreID:    s.StoreID,
				DayOfWeek:  h.DayOfWeek,
				StartLocal: start,
				EndLocal:   end,
			})
		}
		for _, p := range s.Polls {
			ts, err := time.Parse(time.RFC3339, p.TimestampUTC)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("store %s: timestamp_utc %q: %w", s.StoreID, p.TimestampUTC, err)
			}
			polls = append(polls, ingestdomain.Poll{StoreID: s.StoreID, TimestampUTC: ts.UTC(), Status: p.Status})
		}
	}
	return polls, hours, zones, nil
}

func parseLocalTime(s string) (ingestdomain.LocalTime, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return ingestdomain.LocalTime{}, err
	}
	return ingestdomain.LocalTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

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
	fixturePath := flag.String("fixture", "", "path to a YAML seed fixture (stores/hours/timezones/polls)")
	chunkSize := flag.Int("chunk-size", 1000, "rows per bulk-insert chunk")
	flag.Parse()

	l := logger.Get()
	if *fixturePath == "" {
		l.Panic().Msg("missing -fixture")
	}

	f, err := loadFixture(*fixturePath)
	if err != nil {
		l.Panic().Err(err).Str("file", *fixturePath).Msg("load fixture failed")
	}
	polls, hours, zones, err := flatten(f)
	if err != nil {
		l.Panic().Err(err).Msg("flatten fixture failed")
	}

	root := config.New()
	dbCfg := root.Prefix("SERVICE_PGSQL_")
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

	deps := modkit.Deps{Cfg: root, PG: st.PG}
	mod := ingestmod.New(deps, ingestmod.FromConfig(deps.Cfg))
	storage := mod.Ports().(ingestmod.Ports).Storage

	ctx := context.Background()
	if len(polls) > 0 {
		n, err := storage.ReplacePolls(ctx, polls, *chunkSize)
		if err != nil {
			l.Panic().Err(err).Msg("seed polls failed")
		}
		l.Info().Int("loaded", n).Msg("seeded polls")
	}
	if len(hours) > 0 {
		n, err := storage.ReplaceBusinessHours(ctx, hours, *chunkSize)
		if err != nil {
			l.Panic().Err(err).Msg("seed business hours failed")
		}
		l.Info().Int("loaded", n).Msg("seeded business hours")
	}
	if len(zones) > 0 {
		n, err := storage.ReplaceTimezones(ctx, zones, *chunkSize)
		if err != nil {
			l.Panic().Err(err).Msg("seed timezones failed")
		}
		l.Info().Int("loaded", n).Msg("seeded timezones")
	}
}
