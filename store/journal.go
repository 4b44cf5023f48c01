package store

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/bitfsorg/revshare-go/revshare"
)

// Record is one journaled table event.
type Record struct {
	Seq         uint64
	Event       string // revshare.EventPointerAdded or revshare.EventPointerRemoved
	Key         uint64
	Name        string
	Weight      uint64
	TotalWeight uint64
	Time        time.Time
}

// Journal appends table events to the store's events bucket.
type Journal struct {
	db  *bbolt.DB
	now func() time.Time
	err error
}

// Journal returns an event journal backed by this database.
func (s *BoltStore) Journal() *Journal {
	return &Journal{db: s.db, now: time.Now}
}

// Listener returns a revshare.Listener that appends each event.
// Write failures are kept and reported by Err.
func (j *Journal) Listener() revshare.Listener {
	return func(ev revshare.Event) {
		if err := j.Append(ev); err != nil && j.err == nil {
			j.err = err
		}
	}
}

// Err returns the first error a Listener failed to record.
func (j *Journal) Err() error { return j.err }

// Append stores ev under the next sequence number.
func (j *Journal) Append(ev revshare.Event) error {
	rec := Record{Event: ev.EventName(), Time: j.now().UTC()}
	switch e := ev.(type) {
	case revshare.PointerAdded:
		rec.Key, rec.Name, rec.Weight, rec.TotalWeight = e.Key, e.Name, e.Weight, e.TotalWeight
	case revshare.PointerRemoved:
		rec.Key, rec.Name, rec.Weight, rec.TotalWeight = e.Key, e.Name, e.Weight, e.TotalWeight
	default:
		return fmt.Errorf("store: unknown event %q", ev.EventName())
	}

	return j.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEvents)
		seq, err := b.NextSequence()
		if err != nil {
			return fmt.Errorf("store: next event sequence: %w", err)
		}
		rec.Seq = seq
		data, err := encodeGob(rec)
		if err != nil {
			return fmt.Errorf("store: encode event: %w", err)
		}
		return b.Put(uint64Key(seq), data)
	})
}

// Events returns all journaled events in append order.
func (j *Journal) Events() ([]Record, error) {
	var records []Record
	err := j.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEvents).ForEach(func(_, v []byte) error {
			var rec Record
			if err := decodeGob(v, &rec); err != nil {
				return fmt.Errorf("%w: decode event: %w", ErrCorruptStore, err)
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
