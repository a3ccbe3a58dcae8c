// Package bolt implements the durable local cache store on top of bbolt.
// All envelopes live in a single bucket; reads never fail to the caller,
// absent or corrupt entries simply report not-found.
package bolt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	bbolt "go.etcd.io/bbolt"

	"github.com/provnet/isp-admin/internal/core/domain"
	"github.com/provnet/isp-admin/internal/core/ports"
)

var bucketName = []byte("storage")

// Store is a bbolt-backed ports.LocalStore.
type Store struct {
	db  *bbolt.DB
	log zerolog.Logger
}

var _ ports.LocalStore = (*Store)(nil)

// Open opens (or creates) the database file at path and ensures the storage
// bucket exists. The open itself has a bounded file-lock timeout so a stale
// lock cannot hang startup.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt open: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt bucket: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Save persists env under key, overwriting any prior value.
func (s *Store) Save(key string, env domain.Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("bolt save %s: %w", key, err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("bolt save %s: %w", key, err)
	}
	return nil
}

// Load reads the envelope stored under key. Absent or corrupt entries
// report ok=false and never error.
func (s *Store) Load(key string) (domain.Envelope, bool) {
	var raw []byte
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketName).Get([]byte(key)); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if raw == nil {
		return domain.Envelope{}, false
	}

	var env domain.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("corrupt local cache entry")
		return domain.Envelope{}, false
	}
	return env, true
}

// Remove deletes the entry under key. Missing keys are not an error.
func (s *Store) Remove(key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("bolt remove %s: %w", key, err)
	}
	return nil
}

// Clear drops every stored entry.
func (s *Store) Clear() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketName)
		return err
	})
	if err != nil {
		return fmt.Errorf("bolt clear: %w", err)
	}
	return nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}
