// Package module wires the ingest service into the application's module
// registry. Ingest has no HTTP surface of its own (loading is driven by
// cmd/storewatch-ingest and cmd/storewatch-seed); MountRoutes is a no-op
// and Ports exposes both the CSV loader and the raw storage binder for
// those CLIs' composition roots.
package module

import (
	"storewatch/internal/modkit"
	"storewatch/internal/modkit/httpkit"
	"storewatch/internal/modkit/repokit"

	"storewatch/internal/services/ingest/domain"
	"storewatch/internal/services/ingest/repo"
	"storewatch/internal/services/ingest/service"
)

// Ports exposes the loader and the bound storage repo for other modules or
// CLI entrypoints. Storage lets a non-CSV source (e.g. a YAML fixture) drive
// the same truncate-then-replace writes the CSV loader uses.
type Ports struct {
	Loader  domain.LoaderPort
	Storage domain.StorageRepo
}

// Module is the ingest modkit.Module.
type Module struct {
	ports Ports
}

// New constructs the ingest module.
func New(deps modkit.Deps, opts Options) modkit.Module {
	db := repokit.TxRunner(deps.PG)
	binder := repo.NewPG()
	svc := service.New(db, binder, opts.serviceConfig())
	return &Module{ports: Ports{Loader: svc, Storage: binder.Bind(db)}}
}

// MountRoutes is a no-op: ingest has no spec'd HTTP endpoints.
func (m *Module) MountRoutes(_ httpkit.Router) {}

func (m *Module) Name() string { return "ingest" }
func (m *Module) Ports() any   { return m.ports }
