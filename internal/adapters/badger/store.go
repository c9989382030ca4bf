// Package badger persists desk snapshots in an embedded Badger database,
// for single-host deployments that want durability without an external
// service. Values are msgpack; in-memory mode serves tests.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/schema"
)

const keyPrefix = "desk/"

// Store implements ports.SnapshotStore on an embedded Badger database.
type Store struct {
	db *badger.DB
}

// Options configures the Badger store.
type Options struct {
	// Dir is the directory for Badger data files. Required unless InMemory.
	Dir string

	// InMemory runs Badger without disk persistence. Useful for testing
	// against a real badger engine.
	InMemory bool

	// Logger receives Badger's own messages; nil keeps errors and warnings
	// on slog's default logger and drops the rest.
	Logger *slog.Logger
}

// New opens (or creates) the database and returns the store. The caller
// owns Close.
func New(opts Options) (*Store, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("badger: Options.Dir is required for on-disk mode")
	}

	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dbOpts = dbOpts.WithLogger(slogAdapter{logger})

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &Store{db: db}, nil
}

func key(deskID string) []byte {
	return []byte(keyPrefix + deskID)
}

// Save persists the snapshot.
func (s *Store) Save(ctx context.Context, deskID string, snap *domain.Snapshot) error {
	data, err := schema.EncodeMsgpack(snap)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(deskID), data)
	})
}

// Load retrieves and decodes the snapshot for a desk.
func (s *Store) Load(ctx context.Context, deskID string) (*domain.Snapshot, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(deskID))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read from badger: %w", err)
	}

	return schema.DecodeMsgpack(val)
}

// Delete removes the desk.
func (s *Store) Delete(ctx context.Context, deskID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(deskID))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

// List returns every saved desk id by prefix iteration.
func (s *Store) List(ctx context.Context) ([]string, error) {
	prefix := []byte(keyPrefix)

	var desks []string
	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := string(it.Item().KeyCopy(nil))
			desks = append(desks, strings.TrimPrefix(k, keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list desks: %w", err)
	}
	return desks, nil
}

// Close releases the database. Required for on-disk mode to flush.
func (s *Store) Close() error {
	return s.db.Close()
}

// slogAdapter narrows Badger's chatty logger to the ambient slog one,
// keeping errors and warnings and dropping info/debug noise.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Errorf(f string, v ...interface{}) {
	a.logger.Error("badger: " + strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (a slogAdapter) Warningf(f string, v ...interface{}) {
	a.logger.Warn("badger: " + strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (a slogAdapter) Infof(string, ...interface{})  {}
func (a slogAdapter) Debugf(string, ...interface{}) {}
