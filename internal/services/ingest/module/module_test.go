package module

import (
	"context"
	"testing"

	"storewatch/internal/modkit"
	"storewatch/internal/modkit/repokit"
	"storewatch/internal/platform/config"
)

type stubTxRunner struct{}

func (stubTxRunner) Exec(ctx context.Context, sql string, args ...any) (repokit.CommandTag, error) {
	return nil, nil
}
func (stubTxRunner) Query(ctx context.Context, sql string, args ...any) (repokit.Rows, error) {
	return nil, nil
}
func (stubTxRunner) QueryRow(ctx context.Context, sql string, args ...any) repokit.Row { return nil }
func (stubTxRunner) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error    { return nil }

func TestNewWiresNameAndPorts(t *testing.T) {
	deps := modkit.Deps{Cfg: config.New(), PG: stubTxRunner{}}
	mod := New(deps, FromConfig(deps.Cfg))

	if mod.Name() != "ingest" {
		t.Fatalf("Name() = %q, want %q", mod.Name(), "ingest")
	}
	ports, ok := mod.Ports().(Ports)
	if !ok {
		t.Fatalf("Ports() = %T, want Ports", mod.Ports())
	}
	if ports.Loader == nil {
		t.Fatal("Ports().Loader is nil")
	}
	if ports.Storage == nil {
		t.Fatal("Ports().Storage is nil")
	}
}

func TestMountRoutesIsNoOp(t *testing.T) {
	deps := modkit.Deps{Cfg: config.New(), PG: stubTxRunner{}}
	mod := New(deps, FromConfig(deps.Cfg))

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("MountRoutes panicked: %v", r)
		}
	}()
	mod.MountRoutes(nil)
}
