package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/ports"
)

// ErrNoStore is returned by Save and Load when the manager was built
// without a snapshot store.
var ErrNoStore = errors.New("no snapshot store configured")

// lockEntry holds the per-desk mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns the live desks and serializes access to each of them.
// It uses reference counting to garbage collect unused lock entries.
type Manager struct {
	store ports.SnapshotStore // optional persistence backend

	mu    sync.Mutex // guards desks and locks
	desks map[string]*patchbay.Matrix
	locks map[string]*lockEntry

	locker   ports.DistributedLocker // optional distributed locker
	logger   *slog.Logger
	deskInit func(*patchbay.Matrix)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithDeskInit runs fn on every desk the manager constructs or restores,
// before the desk becomes reachable. Used to attach observers. fn must
// not call back into the Manager.
func WithDeskInit(fn func(*patchbay.Matrix)) Option {
	return func(m *Manager) {
		m.deskInit = fn
	}
}

// WithLogger configures a logger for the Manager and the desks it creates.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a desk manager. The store may be nil for purely
// ephemeral use; Save, Load and Open persistence are then unavailable.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		desks:  make(map[string]*patchbay.Matrix),
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu, and call release(deskID) after unlocking.
func (m *Manager) acquire(deskID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[deskID]
	if !exists {
		entry = &lockEntry{}
		m.locks[deskID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(deskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[deskID]
	if !exists {
		return // unmatched release, should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, deskID)
	}
}

// withEntry executes fn while holding the per-desk mutex, and the
// distributed lock when a locker is configured.
func (m *Manager) withEntry(ctx context.Context, deskID string, fn func(context.Context) error) error {
	entry := m.acquire(deskID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(deskID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, deskID, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"desk_id", deskID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) desk(deskID string) (*patchbay.Matrix, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	desk, ok := m.desks[deskID]
	return desk, ok
}

func (m *Manager) register(deskID string, desk *patchbay.Matrix) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.desks[deskID] = desk
}

// Create builds a fresh desk and registers it under id. An empty id gets
// a generated UUID. The id doubles as the initial matrix name.
func (m *Manager) Create(ctx context.Context, id string, numInputs, numOutputs int) (string, error) {
	if id == "" {
		id = uuid.New().String()
	}

	desk, err := patchbay.New(numInputs, numOutputs,
		patchbay.WithName(id),
		patchbay.WithLogger(m.logger.With("desk", id)),
	)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.desks[id]; exists {
		return "", fmt.Errorf("desk %q: %w", id, domain.ErrDeskExists)
	}
	if m.deskInit != nil {
		m.deskInit(desk)
	}
	m.desks[id] = desk
	return id, nil
}

// WithDesk executes fn with exclusive access to the desk. Everything a
// caller does to a Matrix must happen inside fn; the pointer must not
// escape it.
func (m *Manager) WithDesk(ctx context.Context, deskID string, fn func(context.Context, *patchbay.Matrix) error) error {
	return m.withEntry(ctx, deskID, func(ctx context.Context) error {
		desk, ok := m.desk(deskID)
		if !ok {
			return fmt.Errorf("desk %q: %w", deskID, domain.ErrDeskNotFound)
		}
		return fn(ctx, desk)
	})
}

// Open returns the id of a ready desk: the live one when present,
// otherwise one restored from the snapshot store, otherwise a fresh desk
// with the given dimensions, persisted immediately to reserve the id.
func (m *Manager) Open(ctx context.Context, id string, numInputs, numOutputs int) (string, error) {
	if id == "" {
		id = uuid.New().String()
	}

	err := m.withEntry(ctx, id, func(ctx context.Context) error {
		if _, ok := m.desk(id); ok {
			return nil
		}

		if m.store != nil {
			snap, err := m.store.Load(ctx, id)
			if err == nil {
				desk, err := patchbay.New(snap.NumInputs, snap.NumOutputs,
					patchbay.WithName(id),
					patchbay.WithLogger(m.logger.With("desk", id)),
				)
				if err != nil {
					return fmt.Errorf("restore desk %q: %w", id, err)
				}
				desk.SetState(snap)
				if m.deskInit != nil {
					m.deskInit(desk)
				}
				m.register(id, desk)
				return nil
			}
			if !errors.Is(err, domain.ErrSnapshotNotFound) {
				return fmt.Errorf("failed to check desk existence: %w", err)
			}
		}

		desk, err := patchbay.New(numInputs, numOutputs,
			patchbay.WithName(id),
			patchbay.WithLogger(m.logger.With("desk", id)),
		)
		if err != nil {
			return err
		}
		if m.deskInit != nil {
			m.deskInit(desk)
		}
		m.register(id, desk)

		if m.store != nil {
			if err := m.store.Save(ctx, id, desk.State()); err != nil {
				return fmt.Errorf("failed to initialize desk: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Save persists the desk's current state to the snapshot store.
func (m *Manager) Save(ctx context.Context, deskID string) error {
	if m.store == nil {
		return ErrNoStore
	}
	return m.WithDesk(ctx, deskID, func(ctx context.Context, desk *patchbay.Matrix) error {
		return m.store.Save(ctx, deskID, desk.State())
	})
}

// Load restores the desk from the snapshot store, replacing its state.
func (m *Manager) Load(ctx context.Context, deskID string) error {
	if m.store == nil {
		return ErrNoStore
	}
	return m.WithDesk(ctx, deskID, func(ctx context.Context, desk *patchbay.Matrix) error {
		snap, err := m.store.Load(ctx, deskID)
		if err != nil {
			return err
		}
		desk.SetState(snap)
		return nil
	})
}

// Delete removes the live desk. Persisted snapshots are untouched; use
// Store for their lifecycle.
func (m *Manager) Delete(ctx context.Context, deskID string) error {
	return m.WithDesk(ctx, deskID, func(context.Context, *patchbay.Matrix) error {
		m.mu.Lock()
		delete(m.desks, deskID)
		m.mu.Unlock()
		return nil
	})
}

// List returns the live desk ids, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.desks))
	for id := range m.desks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Store returns the underlying snapshot store, nil when none configured.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}
