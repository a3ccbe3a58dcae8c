package domain

import (
	"encoding/json"
	"time"
)

// Well-known storage keys. Every collection lives as a JSON array under its
// key, both in the local cache and in the remote store.
const (
	KeyUsers   = "users"
	KeyClients = "clients"
	KeyPlans   = "plans"
)

// WellKnownKeys returns the full set of synchronized keys.
func WellKnownKeys() []string {
	return []string{KeyUsers, KeyClients, KeyPlans}
}

// Envelope wraps every stored value, locally and remotely. Timestamp records
// the last local write time in epoch milliseconds; it is informational only
// and takes no part in conflict resolution (last write to reach the remote
// store wins).
type Envelope struct {
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEnvelope wraps raw JSON data with the current timestamp.
func NewEnvelope(data json.RawMessage) Envelope {
	return Envelope{
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// IsZero reports whether the envelope carries no data.
func (e Envelope) IsZero() bool {
	return e.Timestamp == 0 && len(e.Data) == 0
}
