package revshare

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/crypto/blake2b"
)

const (
	snapshotHeaderSize  = 12 // next_key(8) + num_entries(4)
	snapshotEntryFixed  = 18 // key(8) + weight(8) + name_len(2)
	snapshotTrailerSize = blake2b.Size256
)

// Snapshot returns the table's restorable state.
func (t *Table) Snapshot() Snapshot {
	return Snapshot{NextKey: t.NextKey(), Entries: t.Entries()}
}

// RestoreTable rebuilds a table from a snapshot. Keys below s.NextKey that
// are missing from s.Entries come back as tombstones. Each entry passes the
// same checks Add applies under opts, so a restored table never holds an
// entry Add would have rejected.
func RestoreTable(s Snapshot, opts ...Option) (*Table, error) {
	t := NewTable(opts...)

	var total uint64
	for i, e := range s.Entries {
		if e.Key >= s.NextKey {
			return nil, fmt.Errorf("%w: key %d beyond next key %d", ErrInvalidSnapshot, e.Key, s.NextKey)
		}
		if i > 0 && e.Key <= s.Entries[i-1].Key {
			return nil, fmt.Errorf("%w: key %d out of order", ErrInvalidSnapshot, e.Key)
		}
		next, err := t.admit(e.Name, e.Weight, total)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", e.Key, err)
		}
		total = next
	}

	t.entries = restoreSlotMap(s.NextKey, s.Entries)
	t.totalWeight = total
	return t, nil
}

// SerializeSnapshot encodes a snapshot to binary format, followed by a
// BLAKE2b-256 digest of the payload.
func SerializeSnapshot(s Snapshot) ([]byte, error) {
	if len(s.Entries) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d entries", ErrTooManyEntries, len(s.Entries))
	}
	size := snapshotHeaderSize + snapshotTrailerSize
	for _, e := range s.Entries {
		if len(e.Name) > math.MaxUint16 {
			return nil, fmt.Errorf("%w: key %d name is %d bytes", ErrNameTooLong, e.Key, len(e.Name))
		}
		size += snapshotEntryFixed + len(e.Name)
	}

	buf := make([]byte, size)
	offset := 0

	binary.BigEndian.PutUint64(buf[offset:offset+8], s.NextKey)
	offset += 8

	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(s.Entries)))
	offset += 4

	for _, e := range s.Entries {
		binary.BigEndian.PutUint64(buf[offset:offset+8], e.Key)
		offset += 8
		binary.BigEndian.PutUint64(buf[offset:offset+8], e.Weight)
		offset += 8
		binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(e.Name)))
		offset += 2
		offset += copy(buf[offset:], e.Name)
	}

	digest := blake2b.Sum256(buf[:offset])
	copy(buf[offset:], digest[:])
	return buf, nil
}

// DeserializeSnapshot decodes binary data produced by SerializeSnapshot.
func DeserializeSnapshot(data []byte) (Snapshot, error) {
	if len(data) < snapshotHeaderSize+snapshotTrailerSize {
		return Snapshot{}, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidSnapshotData, len(data))
	}
	payload := data[:len(data)-snapshotTrailerSize]
	digest := blake2b.Sum256(payload)
	if !bytes.Equal(digest[:], data[len(payload):]) {
		return Snapshot{}, ErrChecksumMismatch
	}

	offset := 0
	s := Snapshot{}
	s.NextKey = binary.BigEndian.Uint64(payload[offset : offset+8])
	offset += 8

	numEntries := int(binary.BigEndian.Uint32(payload[offset : offset+4]))
	offset += 4

	if minSize := snapshotHeaderSize + snapshotEntryFixed*numEntries; len(payload) < minSize {
		return Snapshot{}, fmt.Errorf("%w: expected at least %d bytes for %d entries, got %d",
			ErrInvalidSnapshotData, minSize, numEntries, len(payload))
	}

	s.Entries = make([]Entry, numEntries)
	for i := 0; i < numEntries; i++ {
		if len(payload)-offset < snapshotEntryFixed {
			return Snapshot{}, fmt.Errorf("%w: entry %d truncated", ErrInvalidSnapshotData, i)
		}
		s.Entries[i].Key = binary.BigEndian.Uint64(payload[offset : offset+8])
		offset += 8
		s.Entries[i].Weight = binary.BigEndian.Uint64(payload[offset : offset+8])
		offset += 8
		nameLen := int(binary.BigEndian.Uint16(payload[offset : offset+2]))
		offset += 2
		if len(payload)-offset < nameLen {
			return Snapshot{}, fmt.Errorf("%w: entry %d name truncated", ErrInvalidSnapshotData, i)
		}
		s.Entries[i].Name = string(payload[offset : offset+nameLen])
		offset += nameLen
	}

	if offset != len(payload) {
		return Snapshot{}, fmt.Errorf("%w: %d trailing bytes", ErrInvalidSnapshotData, len(payload)-offset)
	}
	return s, nil
}
