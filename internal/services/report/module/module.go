// Package module wires the report job API into the application using a
// tiny modkit module.
package module

import (
	"net/http"

	"storewatch/internal/modkit"
	"storewatch/internal/modkit/httpkit"
	"storewatch/internal/modkit/repokit"

	"storewatch/internal/services/report/domain"
	reporthttp "storewatch/internal/services/report/http"
	"storewatch/internal/services/report/repo"
	"storewatch/internal/services/report/service"
)

// Ports defines the report module's ports.
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit's Module contract.
type Module struct {
	deps  modkit.Deps
	ports Ports

	mws      []func(http.Handler) http.Handler
	register func(httpkit.Router)
}

// New constructs the report module: a Postgres-backed orchestrator plus its
// job-control HTTP surface (POST /trigger_report, GET /get_report,
// GET /reports/{report_id}/download).
func New(deps modkit.Deps, opts Options) modkit.Module {
	svc := service.New(
		repokit.TxRunner(deps.PG),
		repo.NewPG(),
		repo.NewJobsPG().Bind(deps.PG),
		opts.serviceConfig(),
	)

	m := &Module{deps: deps, ports: Ports{Runner: svc}}
	m.register = func(r httpkit.Router) {
		reporthttp.Register(r, reporthttp.Deps{Runner: svc})
	}
	return m
}

// MountRoutes implements modkit.Module.
func (m *Module) MountRoutes(r httpkit.Router) {
	for _, mw := range m.mws {
		r.Use(mw)
	}
	m.register(r)
}

// Name implements modkit.Module.
func (m *Module) Name() string { return "report" }

// Ports implements modkit.Module.
func (m *Module) Ports() any { return m.ports }
