// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about snapshot loads, counting passes, and exports.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    observability.SetPassHooks(&myPassHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Store().OnLoadStart(ctx, id, observability.RoleComparison)
//	// ... decode snapshot ...
//	observability.Store().OnLoadComplete(ctx, id, observability.RoleComparison, v, e, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// Snapshot roles passed to StoreHooks.
const (
	RoleReference  = "reference"
	RoleComparison = "comparison"
)

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from the snapshot store.
type StoreHooks interface {
	OnLoadStart(ctx context.Context, id, role string)
	OnLoadComplete(ctx context.Context, id, role string, vertices, edges int, duration time.Duration, err error)

	// OnUnload records a snapshot being released; bytes is its adjacency size.
	OnUnload(ctx context.Context, id string, bytes int64)
}

// =============================================================================
// Pass Hooks
// =============================================================================

// PassHooks receives events from the per-snapshot counting passes.
type PassHooks interface {
	// OnPassComplete records one finished pass over a comparison snapshot.
	OnPassComplete(ctx context.Context, id string, matched, scanned uint64, duration time.Duration)

	// OnSnapshotSkipped records a comparison snapshot excluded from the counts.
	OnSnapshotSkipped(ctx context.Context, id string, err error)
}

// =============================================================================
// Export Hooks
// =============================================================================

// ExportHooks receives events from the persistent-edge export.
type ExportHooks interface {
	OnExportComplete(ctx context.Context, emitted, skipped int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoadStart(context.Context, string, string) {}
func (NoopStoreHooks) OnLoadComplete(context.Context, string, string, int, int, time.Duration, error) {
}
func (NoopStoreHooks) OnUnload(context.Context, string, int64) {}

// NoopPassHooks is a no-op implementation of PassHooks.
type NoopPassHooks struct{}

func (NoopPassHooks) OnPassComplete(context.Context, string, uint64, uint64, time.Duration) {}
func (NoopPassHooks) OnSnapshotSkipped(context.Context, string, error)                      {}

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnExportComplete(context.Context, int, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	storeHooks  StoreHooks  = NoopStoreHooks{}
	passHooks   PassHooks   = NoopPassHooks{}
	exportHooks ExportHooks = NoopExportHooks{}
	hooksMu     sync.RWMutex
)

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any snapshot loads.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetPassHooks registers custom pass hooks.
func SetPassHooks(h PassHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		passHooks = h
	}
}

// SetExportHooks registers custom export hooks.
func SetExportHooks(h ExportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exportHooks = h
	}
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Pass returns the registered pass hooks.
func Pass() PassHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return passHooks
}

// Export returns the registered export hooks.
func Export() ExportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exportHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	storeHooks = NoopStoreHooks{}
	passHooks = NoopPassHooks{}
	exportHooks = NoopExportHooks{}
}
