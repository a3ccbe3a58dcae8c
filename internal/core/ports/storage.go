package ports

import (
	"context"
	"encoding/json"

	"github.com/provnet/isp-admin/internal/core/domain"
)

// ChangeHandler receives change notifications. data is the raw JSON payload
// stored under key, or nil when the key was removed.
type ChangeHandler func(key string, data json.RawMessage)

// LocalStore is the durable, synchronous, offline-always-available cache.
// Load never fails to the caller: absent or corrupt entries report ok=false.
type LocalStore interface {
	Save(key string, env domain.Envelope) error
	Load(key string) (domain.Envelope, bool)
	Remove(key string) error
	Clear() error
	Close() error
}

// RemoteStore adapts a remote always-on key-value database with live
// subscriptions. Fetch falls back to an adapter-local cache of the last
// successfully fetched envelope before propagating an error; exists=false
// with a nil error means the remote confirmed the key is absent.
type RemoteStore interface {
	Put(ctx context.Context, key string, env domain.Envelope) error
	Fetch(ctx context.Context, key string) (env domain.Envelope, exists bool, err error)
	Remove(ctx context.Context, key string) error
	// Subscribe establishes a live subscription for each key and invokes
	// onChange for every delivered event. The returned function detaches
	// all subscriptions created by this call.
	Subscribe(ctx context.Context, keys []string, onChange ChangeHandler) (func(), error)
	Ping(ctx context.Context) error
	Name() string
}

// SyncStorage is the single storage entry point for the application layer.
// SetItem, GetItem and RemoveItem never fail because of remote
// unavailability; they degrade to local-only operation silently.
type SyncStorage interface {
	// SetItem writes locally first (authoritative), then best-effort to the
	// remote store under a bounded timeout.
	SetItem(ctx context.Context, key string, value any) error
	// GetItem reads the local cache as a baseline, then attempts a
	// single-flight remote fetch. Successfully fetched remote data wins and
	// refreshes the local cache; a confirmed-empty remote is repaired from
	// local data. dest keeps its prior value when no data exists anywhere.
	GetItem(ctx context.Context, key string, dest any) error
	// GetItemSync is a local-cache-only read. It reports whether a value was
	// found; dest is untouched otherwise.
	GetItemSync(key string, dest any) bool
	RemoveItem(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	// AddChangeListener registers onChange for locally originated mutations
	// and remote live-subscription events on the well-known keys. The
	// returned function deregisters both sides.
	AddChangeListener(onChange ChangeHandler) (func(), error)
	CheckConnection(ctx context.Context) bool
	// ResetConnection clears connectivity throttle state so the next check
	// probes fresh.
	ResetConnection()
	// StartAutoReconnect launches periodic reconnection attempts until ctx
	// is cancelled. Part of the interface contract, never optional.
	StartAutoReconnect(ctx context.Context)
}
