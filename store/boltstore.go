// Package store persists revenue-share tables in a bbolt database.
package store

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/revshare-go/revshare"
)

var (
	bucketMeta   = []byte("meta")
	bucketSlots  = []byte("slots")
	bucketEvents = []byte("events")

	metaNextKey     = []byte("next_key")
	metaTotalWeight = []byte("total_weight")
)

// BoltStore wraps a bbolt database holding one revenue-share table.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketSlots, bucketEvents} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("store: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// uint64Key encodes v as an 8-byte big-endian key for sorted storage.
func uint64Key(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// Save writes the table's live entries and counters in a single
// transaction. Slots no longer live in t are deleted.
func (s *BoltStore) Save(t *revshare.Table) error {
	if t == nil {
		return ErrNilTable
	}
	snap := t.Snapshot()

	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if err := meta.Put(metaNextKey, uint64Key(snap.NextKey)); err != nil {
			return fmt.Errorf("store: put next key: %w", err)
		}
		if err := meta.Put(metaTotalWeight, uint64Key(t.TotalWeight())); err != nil {
			return fmt.Errorf("store: put total weight: %w", err)
		}

		slots := tx.Bucket(bucketSlots)
		var stale [][]byte
		err := slots.ForEach(func(k, _ []byte) error {
			if len(k) != 8 || !t.Contains(binary.BigEndian.Uint64(k)) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := slots.Delete(k); err != nil {
				return fmt.Errorf("store: delete slot: %w", err)
			}
		}

		for _, e := range snap.Entries {
			data, err := encodeGob(e)
			if err != nil {
				return fmt.Errorf("store: encode entry %d: %w", e.Key, err)
			}
			if err := slots.Put(uint64Key(e.Key), data); err != nil {
				return fmt.Errorf("store: put entry %d: %w", e.Key, err)
			}
		}
		return nil
	})
}

// Load rebuilds the persisted table. An empty store yields an empty table.
func (s *BoltStore) Load(opts ...revshare.Option) (*revshare.Table, error) {
	var (
		snap        revshare.Snapshot
		totalWeight uint64
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if v := meta.Get(metaNextKey); v != nil {
			if len(v) != 8 {
				return fmt.Errorf("%w: next key is %d bytes", ErrCorruptStore, len(v))
			}
			snap.NextKey = binary.BigEndian.Uint64(v)
		}
		if v := meta.Get(metaTotalWeight); v != nil {
			if len(v) != 8 {
				return fmt.Errorf("%w: total weight is %d bytes", ErrCorruptStore, len(v))
			}
			totalWeight = binary.BigEndian.Uint64(v)
		}

		return tx.Bucket(bucketSlots).ForEach(func(k, v []byte) error {
			var e revshare.Entry
			if err := decodeGob(v, &e); err != nil {
				return fmt.Errorf("%w: decode slot: %w", ErrCorruptStore, err)
			}
			if len(k) != 8 || binary.BigEndian.Uint64(k) != e.Key {
				return fmt.Errorf("%w: slot key does not match entry %d", ErrCorruptStore, e.Key)
			}
			snap.Entries = append(snap.Entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	t, err := revshare.RestoreTable(snap, opts...)
	switch {
	case errors.Is(err, revshare.ErrLimitExceeded), errors.Is(err, revshare.ErrInvalidPointer):
		// Stored entries no longer satisfy the options, e.g. a lowered cap.
		return nil, fmt.Errorf("store: stored table rejected: %w", err)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrCorruptStore, err)
	}
	if t.TotalWeight() != totalWeight {
		return nil, fmt.Errorf("%w: stored total %d, entries sum to %d", ErrCorruptStore, totalWeight, t.TotalWeight())
	}
	return t, nil
}
