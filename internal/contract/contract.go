// Package contract defines the interfaces pkgguard's engine uses to reach
// outside itself: the host package manager, the community repository, and
// the upstream signal sources. Every implementation of these interfaces is
// an external collaborator per the scanning engine's scope — the engine
// only depends on the interface, never on a concrete client.
package contract

import (
	"context"

	"github.com/pkgguard/pkgguard/schema"
)

// RecipeSource builds a PackageContext for one package name. Concrete
// implementations clone or pull the community recipe repository, read the
// recipe and install-hook files, and fetch community/upstream metadata.
// Timeouts and cancellation are the caller's responsibility via ctx.
type RecipeSource interface {
	Build(ctx context.Context, name string) (*schema.PackageContext, error)
}

// HostPackageManager is the fast, local query surface into the system
// package manager, used only to filter packages already satisfied by
// official repositories before scanning.
type HostPackageManager interface {
	// OfficialPackages returns the set of package names available in
	// official sync repositories. A query failure is not fatal to the
	// caller: per the hook's filtering contract, it is treated as
	// "nothing filtered".
	OfficialPackages(ctx context.Context) (map[string]struct{}, error)
}

// HistoryStore records ScanResults for later inspection. Recording is
// best-effort observation, never part of scoring.
type HistoryStore interface {
	Record(ctx context.Context, result schema.ScanResult) error
	Close() error
}

// ProgressSink receives incremental progress notifications from the batch
// orchestrator, called synchronously from its workers. Implementations must
// not block for long; with a nil sink, progress is not reported.
type ProgressSink interface {
	Progress(done, total int)
}
