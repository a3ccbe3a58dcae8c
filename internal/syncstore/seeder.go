package syncstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/provnet/isp-admin/internal/core/domain"
	"github.com/provnet/isp-admin/internal/core/ports"
	"github.com/provnet/isp-admin/internal/metrics"
)

const defaultSeedInterval = 5 * time.Minute

// DefaultAdminUsername and DefaultAdminPassword are the bootstrap
// credentials created when no users exist yet. Operators are expected to
// change them after first login.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

// Seeder performs idempotent, throttled seeding of baseline records. Seeding
// is keyed on collection emptiness, not on a separate initialization flag,
// so two clients racing each other can both seed; last write wins.
type Seeder struct {
	store    ports.SyncStorage
	interval time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	lastRun time.Time
}

// NewSeeder builds a Seeder over store. A non-positive interval falls back
// to the recommended 5 minutes.
func NewSeeder(store ports.SyncStorage, interval time.Duration, log zerolog.Logger) *Seeder {
	if interval <= 0 {
		interval = defaultSeedInterval
	}
	return &Seeder{store: store, interval: interval, log: log}
}

// Initialize seeds a default administrator when the user collection is empty
// and the starter plans when the plan collection is empty. The two checks
// run independently; partial seeding is acceptable. Returns true when
// anything was written. A failed admin seed is the only hard error, because
// login depends on it; a failed plan seed is logged and the throttle window
// is left open for a retry.
func (s *Seeder) Initialize(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if !s.lastRun.IsZero() && time.Since(s.lastRun) < s.interval {
		s.mu.Unlock()
		metrics.SeedRunsTotal.WithLabelValues("skipped").Inc()
		return false, nil
	}
	s.lastRun = time.Now()
	s.mu.Unlock()

	seeded := false

	var users []domain.User
	if err := s.store.GetItem(ctx, domain.KeyUsers, &users); err != nil {
		metrics.SeedRunsTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("seed users: %w", err)
	}
	if len(users) == 0 {
		admin, err := defaultAdmin()
		if err != nil {
			metrics.SeedRunsTotal.WithLabelValues("error").Inc()
			return false, fmt.Errorf("%w: %v", domain.ErrSeedNotConfirmed, err)
		}
		if err := s.store.SetItem(ctx, domain.KeyUsers, []domain.User{admin}); err != nil {
			metrics.SeedRunsTotal.WithLabelValues("error").Inc()
			return false, fmt.Errorf("%w: %v", domain.ErrSeedNotConfirmed, err)
		}
		s.log.Info().Str("username", admin.Username).Msg("seeded default administrator")
		seeded = true
	}

	var plans []domain.Plan
	if err := s.store.GetItem(ctx, domain.KeyPlans, &plans); err != nil {
		s.log.Warn().Err(err).Msg("plan seed check failed")
	} else if len(plans) == 0 {
		defaults := domain.DefaultPlans(time.Now().UnixMilli())
		if err := s.store.SetItem(ctx, domain.KeyPlans, defaults); err != nil {
			s.log.Warn().Err(err).Msg("plan seed failed, will retry next window")
			s.Force()
		} else {
			s.log.Info().Int("plans", len(defaults)).Msg("seeded default plans")
			seeded = true
		}
	}

	if seeded {
		metrics.SeedRunsTotal.WithLabelValues("seeded").Inc()
	} else {
		metrics.SeedRunsTotal.WithLabelValues("skipped").Inc()
	}
	return seeded, nil
}

// Force clears the throttle so the next Initialize runs unconditionally.
// Used after reconnecting to the remote store.
func (s *Seeder) Force() {
	s.mu.Lock()
	s.lastRun = time.Time{}
	s.mu.Unlock()
}

func defaultAdmin() (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	now := time.Now().UnixMilli()
	return domain.User{
		ID:          now,
		Username:    DefaultAdminUsername,
		Password:    string(hash),
		Name:        "Administrator",
		IsAdmin:     true,
		Permissions: domain.AllPermissions(),
		CreatedAt:   now,
	}, nil
}
