package module

import (
	"storewatch/internal/platform/config"
	"storewatch/internal/services/ingest/service"
)

// Options holds configuration options for the ingest service.
type Options struct {
	ChunkSize       int
	ChunksPerSecond float64
}

// FromConfig reads ingest options from config with CORE_INGEST_ prefix.
func FromConfig(cfg config.Conf) Options {
	in := cfg.Prefix("CORE_INGEST_")
	return Options{
		ChunkSize:       in.MayInt("CHUNK_SIZE", 10000),
		ChunksPerSecond: in.MayFloat64("CHUNKS_PER_SEC", 0),
	}
}

func (o Options) serviceConfig() service.Config {
	return service.Config{
		ChunkSize:       o.ChunkSize,
		ChunksPerSecond: o.ChunksPerSecond,
	}
}
