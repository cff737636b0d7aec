// Package persistence saves and restores the stress-accounting balance
// across reboots. The on-disk record is a fixed binary layout followed
// by a CRC-32 trailer; a save cannot interleave with another save, but
// reads a consistent snapshot of the balance taken under the
// accounting lock beforehand.
package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/voltcapd/voltcapd/internal/types"
)

// BootCredit is the default balance assigned when no valid persisted
// state exists (absent file, short read, or CRC mismatch).
const BootCredit types.Points = 2100

// recordSize is the encoded size of record, before the CRC trailer:
// float32 balance + int64 sec + int64 nsec + uint32 reserved.
const recordSize = 4 + 8 + 8 + 4

// record is the fixed on-disk layout, encoded host/little-endian.
type record struct {
	Balance    float32
	SavedSec   int64
	SavedNsec  int64
	reserved   uint32 // declared but never populated; always written as 0
}

func (r record) encode() []byte {
	buf := make([]byte, recordSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(r.Balance))
	binary.LittleEndian.PutUint64(buf[4:12], uint64(r.SavedSec))
	binary.LittleEndian.PutUint64(buf[12:20], uint64(r.SavedNsec))
	binary.LittleEndian.PutUint32(buf[20:24], r.reserved)
	return buf
}

func decodeRecord(buf []byte) record {
	return record{
		Balance:   math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])),
		SavedSec:  int64(binary.LittleEndian.Uint64(buf[4:12])),
		SavedNsec: int64(binary.LittleEndian.Uint64(buf[12:20])),
		reserved:  binary.LittleEndian.Uint32(buf[20:24]),
	}
}

// Store persists and restores the balance to a single fixed file path.
// Persistence creation is deferred until the first Save: an absent file
// is simply treated as "no prior state" rather than pre-created at
// startup.
type Store struct {
	path string

	mu           sync.Mutex // independent of the accounting core's mutex
	lastSavedAt  time.Time  // the wall-clock time.Time stamped in the last record Load read
}

// New returns a Store backed by path. path is not touched until Save or
// Load is called.
func New(path string) *Store {
	return &Store{path: path}
}

// Save stamps the current wall-clock time into the record, computes its
// CRC-32 trailer, and writes record||crc to the store's file. Concurrent
// saves are serialised by the store's own mutex, independent of the
// accounting core's mutex, keeping disk I/O off the accounting hot path.
func (s *Store) Save(balance types.Points) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	rec := record{
		Balance:   float32(balance),
		SavedSec:  now.Unix(),
		SavedNsec: int64(now.Nanosecond()),
		reserved:  0,
	}

	body := rec.encode()
	crc := checksum(body)

	var out bytes.Buffer
	out.Write(body)
	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], crc)
	out.Write(crcBuf[:])

	if err := os.WriteFile(s.path, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("persistence: write %s: %w", s.path, err)
	}
	return nil
}

// Load reads and validates the persisted record.
//
// If the file is absent or shorter than a full record+crc, it returns
// (BootCredit, false): no prior state, no elapsed credit to apply.
//
// If the CRC does not match, it likewise returns (BootCredit, false):
// integrity failure is treated as no prior state.
//
// If the record is valid but the current wall clock is at or before the
// saved time (a clock set backward, or an image update that reset time),
// it returns (record balance, false): keep the persisted balance, but
// suppress elapsed-time credit.
//
// Otherwise it returns (record balance, true): the caller should credit
// the elapsed wall-clock time since saving.
func (s *Store) Load() (balance types.Points, shouldCreditElapsed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil || len(data) < recordSize+4 {
		return BootCredit, false
	}

	body := data[:recordSize]
	trailerCRC := binary.LittleEndian.Uint32(data[recordSize : recordSize+4])
	if checksum(body) != trailerCRC {
		return BootCredit, false
	}

	rec := decodeRecord(body)
	savedTime := time.Unix(rec.SavedSec, rec.SavedNsec)
	s.lastSavedAt = savedTime

	now := time.Now()
	if !now.After(savedTime) {
		return types.Points(rec.Balance), false
	}
	return types.Points(rec.Balance), true
}

// LastSavedAt returns the wall-clock time stamped in the record the most
// recent Load call read, for computing elapsed-time credit at startup.
// It is the zero Time if Load has not yet read a valid record.
func (s *Store) LastSavedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSavedAt
}
