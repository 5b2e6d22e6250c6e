package module

import (
	"runtime"

	"storewatch/internal/platform/config"
	"storewatch/internal/services/report/service"
)

// Options holds configuration options for the report service.
type Options struct {
	MaxWorkers      int
	OutputDir       string
	DefaultTimezone string
}

// FromConfig reads report options from config with CORE_REPORT_ prefix.
func FromConfig(cfg config.Conf) Options {
	rp := cfg.Prefix("CORE_REPORT_")
	return Options{
		MaxWorkers:      rp.MayInt("MAX_WORKERS", min(4, runtime.NumCPU())),
		OutputDir:       rp.MayString("OUTPUT_DIR", "./data/reports"),
		DefaultTimezone: rp.MayString("DEFAULT_TZ", "America/Chicago"),
	}
}

func (o Options) serviceConfig() service.Config {
	return service.Config{
		MaxWorkers:      o.MaxWorkers,
		OutputDir:       o.OutputDir,
		DefaultTimezone: o.DefaultTimezone,
	}
}
