package exemplar

import (
	"context"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// badgerPrefix namespaces all snapshot keys within the database.
// Key layout: "exemplar:{LABEL}" → msgpack-encoded [][]float32.
var badgerPrefix = []byte("exemplar:")

// BadgerSnapshot persists the exemplar mapping in BadgerDB, one record
// per intent label.
//
// Save replaces every record in a single transaction, so the
// whole-snapshot overwrite contract holds: a reader (or a crash) sees
// either the previous complete mapping or the new one.
type BadgerSnapshot struct {
	db *badger.DB
}

// BadgerOptions configures OpenBadger.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files.
	// Required unless InMemory is set.
	Dir string

	// InMemory runs BadgerDB in memory-only mode (no disk persistence).
	// Useful for testing with a real badger engine.
	InMemory bool
}

// OpenBadger opens (creating if needed) a BadgerDB-backed snapshot.
// Badger's own logging is silenced; the store logs what matters.
func OpenBadger(opts BadgerOptions) (*BadgerSnapshot, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, fmt.Errorf("exemplar: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(nil)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("exemplar: open badger: %w", err)
	}
	return &BadgerSnapshot{db: db}, nil
}

// Load reads every per-intent record under the snapshot prefix.
func (b *BadgerSnapshot) Load(_ context.Context) (map[string][][]float32, error) {
	out := map[string][][]float32{}
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = badgerPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			label := string(item.Key()[len(badgerPrefix):])
			err := item.Value(func(val []byte) error {
				var samples [][]float32
				if err := msgpack.Unmarshal(val, &samples); err != nil {
					return fmt.Errorf("decode %q: %w", label, err)
				}
				out[label] = samples
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("exemplar: load badger snapshot: %w", err)
	}
	return out, nil
}

// Save replaces all per-intent records in one transaction.
func (b *BadgerSnapshot) Save(_ context.Context, m map[string][][]float32) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		// Drop stale records first so labels removed from the mapping
		// do not linger.
		opts := badger.DefaultIteratorOptions
		opts.Prefix = badgerPrefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		var stale [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			k := it.Item().KeyCopy(nil)
			if _, ok := m[string(k[len(badgerPrefix):])]; !ok {
				stale = append(stale, k)
			}
		}
		it.Close()
		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}

		for label, samples := range m {
			val, err := msgpack.Marshal(samples)
			if err != nil {
				return fmt.Errorf("encode %q: %w", label, err)
			}
			key := append(append([]byte{}, badgerPrefix...), label...)
			if err := txn.Set(key, val); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("exemplar: save badger snapshot: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (b *BadgerSnapshot) Close() error {
	if err := b.db.Close(); err != nil {
		slog.Warn("exemplar: badger close", "error", err)
		return err
	}
	return nil
}
