package bolt

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/provnet/isp-admin/internal/core/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func TestSaveAndLoad(t *testing.T) {
	store := openTestStore(t)

	env := domain.NewEnvelope(json.RawMessage(`[{"id":1,"name":"Basic 100"}]`))
	if err := store.Save("plans", env); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok := store.Load("plans")
	if !ok {
		t.Fatalf("Load reported not found")
	}
	if got.Timestamp != env.Timestamp || string(got.Data) != string(env.Data) {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, env)
	}
}

func TestLoad_MissingKey(t *testing.T) {
	store := openTestStore(t)

	if _, ok := store.Load("absent"); ok {
		t.Fatalf("missing key reported found")
	}
}

func TestSave_OverwritesPriorValue(t *testing.T) {
	store := openTestStore(t)

	_ = store.Save("users", domain.NewEnvelope(json.RawMessage(`["old"]`)))
	if err := store.Save("users", domain.NewEnvelope(json.RawMessage(`["new"]`))); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok := store.Load("users")
	if !ok || string(got.Data) != `["new"]` {
		t.Fatalf("overwrite failed: %s", got.Data)
	}
}

func TestRemove(t *testing.T) {
	store := openTestStore(t)

	_ = store.Save("clients", domain.NewEnvelope(json.RawMessage(`[]`)))
	if err := store.Remove("clients"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := store.Load("clients"); ok {
		t.Fatalf("entry survived removal")
	}

	// Removing an absent key is not an error.
	if err := store.Remove("clients"); err != nil {
		t.Fatalf("Remove absent: %v", err)
	}
}

func TestClear(t *testing.T) {
	store := openTestStore(t)

	for _, key := range domain.WellKnownKeys() {
		_ = store.Save(key, domain.NewEnvelope(json.RawMessage(`[]`)))
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, key := range domain.WellKnownKeys() {
		if _, ok := store.Load(key); ok {
			t.Fatalf("%q survived Clear", key)
		}
	}

	// The bucket is recreated, so the store stays usable.
	if err := store.Save("plans", domain.NewEnvelope(json.RawMessage(`[]`))); err != nil {
		t.Fatalf("Save after Clear: %v", err)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	env := domain.NewEnvelope(json.RawMessage(`["durable"]`))
	if err := store.Save("users", env); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, ok := reopened.Load("users")
	if !ok || string(got.Data) != `["durable"]` {
		t.Fatalf("data lost across reopen: %+v", got)
	}
}
