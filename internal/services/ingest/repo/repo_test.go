//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"storewatch/internal/platform/store"
	"storewatch/internal/services/ingest/domain"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func.
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mapped.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func openTestStore(t *testing.T, dsn string) *store.Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st, err := store.Open(ctx, store.Config{
		PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 4},
	}, store.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

func mustExec(t *testing.T, ctx context.Context, db store.TxRunner, sql string) {
	t.Helper()
	if _, err := db.Exec(ctx, sql); err != nil {
		t.Fatalf("exec %q: %v", sql, err)
	}
}

func createSchema(t *testing.T, ctx context.Context, db store.TxRunner) {
	t.Helper()
	mustExec(t, ctx, db, `
		CREATE TABLE polls (
			store_id text NOT NULL,
			timestamp_utc timestamptz NOT NULL,
			status text NOT NULL
		)
	`)
	mustExec(t, ctx, db, `
		CREATE TABLE business_hours (
			store_id text NOT NULL,
			day_of_week int NOT NULL,
			start_local time NOT NULL,
			end_local time NOT NULL
		)
	`)
	mustExec(t, ctx, db, `
		CREATE TABLE store_timezones (
			store_id text PRIMARY KEY,
			tz text NOT NULL
		)
	`)
}

func countRows(t *testing.T, ctx context.Context, db store.TxRunner, table string) int {
	t.Helper()
	var n int
	row := db.QueryRow(ctx, "SELECT count(*) FROM "+table)
	if err := row.Scan(&n); err != nil {
		t.Fatalf("count(%s): %v", table, err)
	}
	return n
}

func TestReplacePolls_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	st := openTestStore(t, dsn)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	createSchema(t, ctx, st.PG)
	mustExec(t, ctx, st.PG, `INSERT INTO polls (store_id, timestamp_utc, status) VALUES ('stale', now(), 'active')`)

	repo := NewPG().Bind(st.PG)

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []domain.Poll{
		{StoreID: "s1", TimestampUTC: t0, Status: "active"},
		{StoreID: "s1", TimestampUTC: t0.Add(time.Hour), Status: "inactive"},
		{StoreID: "s2", TimestampUTC: t0, Status: "active"},
	}

	loaded, err := repo.ReplacePolls(ctx, rows, 2)
	if err != nil {
		t.Fatalf("ReplacePolls: %v", err)
	}
	if loaded != len(rows) {
		t.Fatalf("loaded = %d, want %d", loaded, len(rows))
	}

	if got := countRows(t, ctx, st.PG, "polls"); got != len(rows) {
		t.Fatalf("polls row count = %d, want %d (truncate-then-replace should drop the stale row)", got, len(rows))
	}

	var status string
	row := st.PG.QueryRow(ctx, `SELECT status FROM polls WHERE store_id = 's1' AND timestamp_utc = $1`, t0)
	if err := row.Scan(&status); err != nil {
		t.Fatalf("scan status: %v", err)
	}
	if status != "active" {
		t.Fatalf("status = %q, want active", status)
	}

	// ReplacePolls must truncate rather than append on a second call.
	loaded, err = repo.ReplacePolls(ctx, rows[:1], 10)
	if err != nil {
		t.Fatalf("ReplacePolls (second call): %v", err)
	}
	if loaded != 1 {
		t.Fatalf("loaded = %d, want 1", loaded)
	}
	if got := countRows(t, ctx, st.PG, "polls"); got != 1 {
		t.Fatalf("polls row count after second ReplacePolls = %d, want 1", got)
	}
}

func TestReplaceBusinessHours_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	st := openTestStore(t, dsn)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	createSchema(t, ctx, st.PG)

	repo := NewPG().Bind(st.PG)

	rows := []domain.BusinessHour{
		{StoreID: "s1", DayOfWeek: 0, StartLocal: domain.LocalTime{Hour: 9}, EndLocal: domain.LocalTime{Hour: 17}},
		{StoreID: "s1", DayOfWeek: 1, StartLocal: domain.LocalTime{Hour: 9}, EndLocal: domain.LocalTime{Hour: 17}},
	}
	loaded, err := repo.ReplaceBusinessHours(ctx, rows, 1)
	if err != nil {
		t.Fatalf("ReplaceBusinessHours: %v", err)
	}
	if loaded != len(rows) {
		t.Fatalf("loaded = %d, want %d", loaded, len(rows))
	}
	if got := countRows(t, ctx, st.PG, "business_hours"); got != len(rows) {
		t.Fatalf("business_hours row count = %d, want %d", got, len(rows))
	}

	loaded, err = repo.ReplaceBusinessHours(ctx, rows[:1], 10)
	if err != nil {
		t.Fatalf("ReplaceBusinessHours (second call): %v", err)
	}
	if loaded != 1 {
		t.Fatalf("loaded = %d, want 1", loaded)
	}
	if got := countRows(t, ctx, st.PG, "business_hours"); got != 1 {
		t.Fatalf("business_hours row count after second call = %d, want 1 (truncate-then-replace)", got)
	}
}

func TestReplaceTimezones_Integration(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	st := openTestStore(t, dsn)
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	createSchema(t, ctx, st.PG)

	repo := NewPG().Bind(st.PG)

	rows := []domain.StoreTimezone{
		{StoreID: "s1", TZ: "America/Chicago"},
		{StoreID: "s2", TZ: "America/New_York"},
	}
	loaded, err := repo.ReplaceTimezones(ctx, rows, 1)
	if err != nil {
		t.Fatalf("ReplaceTimezones: %v", err)
	}
	if loaded != len(rows) {
		t.Fatalf("loaded = %d, want %d", loaded, len(rows))
	}

	var tz string
	row := st.PG.QueryRow(ctx, `SELECT tz FROM store_timezones WHERE store_id = 's2'`)
	if err := row.Scan(&tz); err != nil {
		t.Fatalf("scan tz: %v", err)
	}
	if tz != "America/New_York" {
		t.Fatalf("tz = %q, want America/New_York", tz)
	}

	loaded, err = repo.ReplaceTimezones(ctx, rows[:1], 10)
	if err != nil {
		t.Fatalf("ReplaceTimezones (second call): %v", err)
	}
	if loaded != 1 {
		t.Fatalf("loaded = %d, want 1", loaded)
	}
	if got := countRows(t, ctx, st.PG, "store_timezones"); got != 1 {
		t.Fatalf("store_timezones row count after second call = %d, want 1", got)
	}
}
