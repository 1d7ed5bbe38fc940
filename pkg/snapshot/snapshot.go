// Package snapshot caches the company directory and edge list in a local
// Badger database. A saved snapshot lets the service serve searches after
// a restart while the graph store is still warming up, and backs the
// fully offline mode.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/zeus1292/investorlens/pkg/driver"
	"github.com/zeus1292/investorlens/pkg/types"
)

// ErrNoSnapshot is returned when the store holds no saved dataset.
var ErrNoSnapshot = errors.New("no snapshot present")

const (
	companyPrefix = "company/"
	edgePrefix    = "edge/"
	metaSavedAt   = "meta/saved_at"
)

// Store is a Badger-backed snapshot of one dataset.
type Store struct {
	db  *badger.DB
	log *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to the badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens (or creates) a snapshot store at path. An empty path opens
// an in-memory store, used by tests.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = &badgerLoggerAdapter{logger: log}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveDataset replaces any stored snapshot with the given dataset.
func (s *Store) SaveDataset(ds driver.Dataset) error {
	if err := s.db.DropAll(); err != nil {
		return fmt.Errorf("failed to clear previous snapshot: %w", err)
	}

	err := s.db.Update(func(tx *badger.Txn) error {
		for _, c := range ds.Companies {
			raw, err := json.Marshal(c)
			if err != nil {
				return err
			}
			if err := tx.Set([]byte(companyPrefix+c.ID), raw); err != nil {
				return err
			}
		}
		for i, e := range ds.Edges {
			raw, err := json.Marshal(e)
			if err != nil {
				return err
			}
			key := fmt.Sprintf("%s%08d", edgePrefix, i)
			if err := tx.Set([]byte(key), raw); err != nil {
				return err
			}
		}
		savedAt := time.Now().UTC().Format(time.RFC3339Nano)
		return tx.Set([]byte(metaSavedAt), []byte(savedAt))
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.log.Info("snapshot saved", "companies", len(ds.Companies), "edges", len(ds.Edges))
	return nil
}

// LoadDataset reads the stored snapshot, or ErrNoSnapshot.
func (s *Store) LoadDataset() (driver.Dataset, error) {
	var ds driver.Dataset

	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(companyPrefix)
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(raw []byte) error {
				var c types.Company
				if err := json.Unmarshal(raw, &c); err != nil {
					return err
				}
				ds.Companies = append(ds.Companies, c)
				return nil
			})
			if err != nil {
				iter.Close()
				return err
			}
		}
		iter.Close()

		opts = badger.DefaultIteratorOptions
		opts.Prefix = []byte(edgePrefix)
		iter = tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(raw []byte) error {
				var e types.Edge
				if err := json.Unmarshal(raw, &e); err != nil {
					return err
				}
				ds.Edges = append(ds.Edges, e)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return driver.Dataset{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if len(ds.Companies) == 0 {
		return driver.Dataset{}, ErrNoSnapshot
	}

	s.log.Info("snapshot loaded", "companies", len(ds.Companies), "edges", len(ds.Edges))
	return ds, nil
}

// SavedAt reports when the snapshot was written, or ErrNoSnapshot.
func (s *Store) SavedAt() (time.Time, error) {
	var when time.Time
	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(metaSavedAt))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNoSnapshot
			}
			return err
		}
		return item.Value(func(raw []byte) error {
			t, err := time.Parse(time.RFC3339Nano, string(raw))
			if err != nil {
				return err
			}
			when = t
			return nil
		})
	})
	if err != nil {
		return time.Time{}, err
	}
	return when, nil
}
