// Package service implements CSV ingestion: truncate-then-replace bulk
// loads of store_status.csv, menu_hours.csv, and timezones.csv.
package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"golang.org/x/time/rate"

	"storewatch/internal/modkit/repokit"
	"storewatch/internal/platform/logger"
	"storewatch/internal/services/ingest/core"
	"storewatch/internal/services/ingest/domain"
)

// Config tunes ingest batching and pacing.
type Config struct {
	// ChunkSize bounds rows per bulk-insert transaction; <=0 -> 10000.
	ChunkSize int

	// ChunksPerSecond rate-limits bulk-insert calls: each Load waits on the
	// limiter once before handing all its rows to the repo, and the chunks
	// within that call are not paced; <=0 disables pacing.
	ChunksPerSecond float64
}

// Service implements domain.LoaderPort.
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Cfg    Config

	limiter *rate.Limiter
}

// New constructs the ingest service.
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], cfg Config) *Service {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 10000
	}
	if db == nil {
		panic("ingest.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("ingest.Service requires a non nil StorageRepo binder")
	}
	var lim *rate.Limiter
	if cfg.ChunksPerSecond > 0 {
		lim = rate.NewLimiter(rate.Limit(cfg.ChunksPerSecond), 1)
	}
	return &Service{DB: db, Binder: binder, Cfg: cfg, limiter: lim}
}

// LoadPolls implements domain.LoaderPort for store_status.csv.
func (s *Service) LoadPolls(ctx context.Context, csvPath string) (domain.LoadResult, error) {
	records, header, err := readCSV(csvPath)
	if err != nil {
		return domain.LoadResult{}, err
	}

	storeIdx, ok1 := header["store_id"]
	statusIdx, ok2 := header["status"]
	tsIdx, ok3 := header["timestamp_utc"]
	if !ok1 || !ok2 || !ok3 {
		return domain.LoadResult{}, fmt.Errorf("store_status.csv missing required columns")
	}

	log := logger.C(ctx)
	var rows []domain.Poll
	var skipped int
	for _, rec := range records {
		p, err := core.ParsePollRow(field(rec, storeIdx), field(rec, statusIdx), field(rec, tsIdx))
		if err != nil {
			skipped++
			log.Warn().Err(err).Strs("row", rec).Msg("ingest: skipping poll row")
			continue
		}
		rows = append(rows, p)
	}

	if err := s.pace(ctx); err != nil {
		return domain.LoadResult{}, err
	}
	repo := s.Binder.Bind(s.DB)
	loaded, err := repo.ReplacePolls(ctx, rows, s.Cfg.ChunkSize)
	if err != nil {
		return domain.LoadResult{}, err
	}
	return domain.LoadResult{Loaded: loaded, Skipped: skipped}, nil
}

// LoadBusinessHours implements domain.LoaderPort for menu_hours.csv.
func (s *Service) LoadBusinessHours(ctx context.Context, csvPath string) (domain.LoadResult, error) {
	records, header, err := readCSV(csvPath)
	if err != nil {
		return domain.LoadResult{}, err
	}

	storeIdx, ok1 := header["store_id"]
	dowIdx, ok2 := header["dayofweek"]
	if !ok2 {
		dowIdx, ok2 = header["day_of_week"]
	}
	startIdx, ok3 := header["start_time_local"]
	endIdx, ok4 := header["end_time_local"]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return domain.LoadResult{}, fmt.Errorf("menu_hours.csv missing required columns")
	}

	log := logger.C(ctx)
	var rows []domain.BusinessHour
	var skipped int
	for _, rec := range records {
		h, err := core.ParseBusinessHourRow(field(rec, storeIdx), field(rec, dowIdx), field(rec, startIdx), field(rec, endIdx))
		if err != nil {
			skipped++
			log.Warn().Err(err).Strs("row", rec).Msg("ingest: skipping business-hour row")
			continue
		}
		rows = append(rows, h)
	}

	if err := s.pace(ctx); err != nil {
		return domain.LoadResult{}, err
	}
	repo := s.Binder.Bind(s.DB)
	loaded, err := repo.ReplaceBusinessHours(ctx, rows, s.Cfg.ChunkSize)
	if err != nil {
		return domain.LoadResult{}, err
	}
	return domain.LoadResult{Loaded: loaded, Skipped: skipped}, nil
}

// LoadTimezones implements domain.LoaderPort for timezones.csv.
func (s *Service) LoadTimezones(ctx context.Context, csvPath string) (domain.LoadResult, error) {
	records, header, err := readCSV(csvPath)
	if err != nil {
		return domain.LoadResult{}, err
	}

	storeIdx, ok1 := header["store_id"]
	tzIdx, ok2 := header["timezone_str"]
	if !ok1 {
		return domain.LoadResult{}, fmt.Errorf("timezones.csv missing store_id column")
	}

	log := logger.C(ctx)
	var rows []domain.StoreTimezone
	var skipped int
	for _, rec := range records {
		tzRaw := ""
		if ok2 {
			tzRaw = field(rec, tzIdx)
		}
		tz, err := core.ParseTimezoneRow(field(rec, storeIdx), tzRaw)
		if err != nil {
			skipped++
			log.Warn().Err(err).Strs("row", rec).Msg("ingest: skipping timezone row")
			continue
		}
		rows = append(rows, tz)
	}

	if err := s.pace(ctx); err != nil {
		return domain.LoadResult{}, err
	}
	repo := s.Binder.Bind(s.DB)
	loaded, err := repo.ReplaceTimezones(ctx, rows, s.Cfg.ChunkSize)
	if err != nil {
		return domain.LoadResult{}, err
	}
	return domain.LoadResult{Loaded: loaded, Skipped: skipped}, nil
}

// pace waits on the rate limiter, if configured, before a bulk-insert call.
func (s *Service) pace(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

// readCSV loads a CSV file in full, returning its data records and a
// lower-cased column-name index. Header lookups are case-insensitive so
// business-hours' dayOfWeek/day_of_week variants both resolve.
func readCSV(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	cols, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[lower(c)] = i
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	return records, idx, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
