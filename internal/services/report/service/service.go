// Package service implements the report orchestrator: it enumerates stores,
// fans the per-store aggregator out across a bounded worker pool, publishes
// progress, and writes the result set as CSV.
package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"storewatch/internal/modkit/repokit"
	"storewatch/internal/platform/logger"
	"storewatch/internal/services/report/core"
	"storewatch/internal/services/report/domain"
)

// Config holds the orchestrator's tunables.
type Config struct {
	// MaxWorkers bounds concurrent per-store aggregations; <=0 -> min(4, NumCPU).
	MaxWorkers int

	// OutputDir is where completed CSVs are written, one file per report_id.
	OutputDir string

	// DefaultTimezone is used for stores with no StoreTimezone row.
	DefaultTimezone string
}

// Service implements domain.RunnerPort.
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Jobs   domain.JobRepo
	Cfg    Config
}

// New constructs the report service.
func New(db repokit.TxRunner, binder repokit.Binder[domain.StorageRepo], jobs domain.JobRepo, cfg Config) *Service {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = min(4, runtime.NumCPU())
	}
	if cfg.DefaultTimezone == "" {
		cfg.DefaultTimezone = domain.DefaultTimezone
	}
	if db == nil {
		panic("report.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("report.Service requires a non nil StorageRepo binder")
	}
	if jobs == nil {
		panic("report.Service requires a non nil JobRepo")
	}
	return &Service{DB: db, Binder: binder, Jobs: jobs, Cfg: cfg}
}

// Trigger implements domain.RunnerPort: it allocates a report_id, records it
// Running, and schedules the orchestrator to run in the background. The
// background run uses its own context so it outlives the HTTP request.
func (s *Service) Trigger(ctx context.Context) (string, error) {
	reportID := uuid.NewString()
	now := time.Now().UTC()
	if err := s.Jobs.Create(ctx, reportID, now); err != nil {
		return "", fmt.Errorf("create report job: %w", err)
	}

	log := logger.C(ctx)
	go func() {
		bg := context.Background()
		if err := s.run(bg, reportID); err != nil {
			log.Error().Err(err).Str("report_id", reportID).Msg("report: run failed")
			if ferr := s.Jobs.Fail(bg, reportID, time.Now().UTC()); ferr != nil {
				log.Error().Err(ferr).Str("report_id", reportID).Msg("report: failed to mark job Failed")
			}
		}
	}()

	return reportID, nil
}

// Get implements domain.RunnerPort.
func (s *Service) Get(ctx context.Context, reportID string) (domain.ReportJob, error) {
	job, ok, err := s.Jobs.Get(ctx, reportID)
	if err != nil {
		return domain.ReportJob{}, err
	}
	if !ok {
		return domain.ReportJob{ReportID: reportID, Status: domain.JobNotFound}, nil
	}
	return job, nil
}

// run performs the full report: enumerate, aggregate concurrently, write CSV.
// A report-level failure (enumeration or output path) marks the job Failed
// and never writes a partial CSV; per-store failures are absorbed into a
// zero-valued row instead.
func (s *Service) run(ctx context.Context, reportID string) error {
	repo := s.Binder.Bind(s.DB)

	now, err := s.resolveNow(ctx, repo)
	if err != nil {
		return fmt.Errorf("resolve now: %w", err)
	}

	storeIDs, err := repo.StoreIDs(ctx)
	if err != nil {
		return fmt.Errorf("enumerate store ids: %w", err)
	}

	rows := s.aggregateAll(ctx, now, storeIDs, reportID)

	sort.Slice(rows, func(i, j int) bool { return rows[i].StoreID < rows[j].StoreID })

	path, err := s.writeCSV(reportID, rows)
	if err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	if err := s.Jobs.Complete(ctx, reportID, path, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark job complete: %w", err)
	}
	return nil
}

// resolveNow samples the reference instant once, before dispatch, so every
// worker observes the same now.
func (s *Service) resolveNow(ctx context.Context, repo domain.StorageRepo) (time.Time, error) {
	ts, ok, err := repo.MaxPollTimestamp(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Now().UTC(), nil
	}
	return ts.UTC(), nil
}

// aggregateAll dispatches per-store aggregation across a bounded worker pool
// and publishes progress every k completions, always on the final one.
func (s *Service) aggregateAll(ctx context.Context, now time.Time, storeIDs []string, reportID string) []domain.StoreReport {
	total := len(storeIDs)
	if total == 0 {
		return nil
	}

	stride := progressStride(total)
	var done int64

	var mu sync.Mutex
	rows := make([]domain.StoreReport, 0, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Cfg.MaxWorkers)

	for _, storeID := range storeIDs {
		storeID := storeID
		g.Go(func() error {
			row := s.aggregateOne(gctx, now, storeID)

			mu.Lock()
			rows = append(rows, row)
			mu.Unlock()

			n := atomic.AddInt64(&done, 1)
			if n%int64(stride) == 0 || n == int64(total) {
				pct := int(n * 100 / int64(total))
				if err := s.Jobs.UpdateProgress(ctx, reportID, pct); err != nil {
					logger.C(ctx).Error().Err(err).Str("report_id", reportID).Msg("report: progress update failed")
				}
			}
			return nil // per-store failures never cascade
		})
	}
	_ = g.Wait() // no goroutine above returns an error; this only waits

	return rows
}

// aggregateOne runs the per-store aggregator with its own session, catching
// any panic or error and converting it to a zero-valued row: a worker
// failure never cascades to the report.
func (s *Service) aggregateOne(ctx context.Context, now time.Time, storeID string) (report domain.StoreReport) {
	report = domain.StoreReport{StoreID: storeID}

	defer func() {
		if r := recover(); r != nil {
			logger.C(ctx).Error().Interface("panic", r).Str("store_id", storeID).Msg("report: aggregator panicked")
			report = domain.StoreReport{StoreID: storeID}
		}
	}()

	repo := s.Binder.Bind(s.DB)

	recon := core.ReconstructionWindow(now)
	from := recon.Start.Add(-domain.ReconstructionMargin)
	to := recon.End.Add(domain.ReconstructionMargin)

	polls, err := repo.PollsInRange(ctx, storeID, from, to)
	if err != nil {
		logger.C(ctx).Error().Err(err).Str("store_id", storeID).Msg("report: fetch polls failed")
		return domain.StoreReport{StoreID: storeID}
	}

	hours, err := repo.BusinessHours(ctx, storeID)
	if err != nil {
		logger.C(ctx).Error().Err(err).Str("store_id", storeID).Msg("report: fetch business hours failed")
		return domain.StoreReport{StoreID: storeID}
	}

	tz, ok, err := repo.Timezone(ctx, storeID)
	if err != nil {
		logger.C(ctx).Error().Err(err).Str("store_id", storeID).Msg("report: fetch timezone failed")
		return domain.StoreReport{StoreID: storeID}
	}
	if !ok {
		tz = s.Cfg.DefaultTimezone
	}

	return core.Aggregate(storeID, now, polls, hours, tz)
}

// progressStride is the small-divisor formula for progress reporting
// cadence: max(1, min(5, total/20)).
func progressStride(total int) int {
	k := total / 20
	if k > 5 {
		k = 5
	}
	if k < 1 {
		k = 1
	}
	return k
}

// csvHeader is the fixed column order for the downloaded CSV.
var csvHeader = []string{
	"store_id",
	"uptime_last_hour_minutes",
	"uptime_last_day_hours",
	"uptime_last_week_hours",
	"downtime_last_hour_minutes",
	"downtime_last_day_hours",
	"downtime_last_week_hours",
}

// writeCSV writes rows (already sorted by store_id) to OutputDir/reportID.csv.
// An empty row set still produces a header-only file.
func (s *Service) writeCSV(reportID string, rows []domain.StoreReport) (string, error) {
	if err := os.MkdirAll(s.Cfg.OutputDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.Cfg.OutputDir, reportID+".csv")

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, r := range rows {
		record := []string{
			r.StoreID,
			formatFloat(r.UptimeLastHourMinutes),
			formatFloat(r.UptimeLastDayHours),
			formatFloat(r.UptimeLastWeekHours),
			formatFloat(r.DowntimeLastHourMinutes),
			formatFloat(r.DowntimeLastDayHours),
			formatFloat(r.DowntimeLastWeekHours),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
