// Package api provides the HTTP API for the application
package api

import (
	"storewatch/internal/platform/config"
	"storewatch/internal/platform/logger"
	phttp "storewatch/internal/platform/net/http"
	"storewatch/internal/platform/store"

	"storewatch/internal/modkit"
	"storewatch/internal/modkit/httpkit"
	"storewatch/internal/modkit/module"
	"storewatch/internal/modkit/swaggerkit"

	ingestmod "storewatch/internal/services/ingest/module"
	metamod "storewatch/internal/services/api/meta/module"
	reportmod "storewatch/internal/services/report/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
	}

	mods := []module.Module{
		metamod.New(deps),
		reportmod.New(deps, reportmod.FromConfig(deps.Cfg)),
		ingestmod.New(deps, ingestmod.FromConfig(deps.Cfg)),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
