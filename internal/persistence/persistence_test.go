package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltcapd/voltcapd/internal/types"
)

func TestLoad_MissingFile_ReturnsBootCredit(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "state.bin"))
	balance, credit := s.Load()
	assert.Equal(t, BootCredit, balance)
	assert.False(t, credit)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "state.bin"))
	require.NoError(t, s.Save(173.5))

	balance, credit := s.Load()
	assert.InDelta(t, 173.5, float64(balance), 1e-4)
	assert.True(t, credit)
}

func TestLoad_CorruptedSingleByte_ReturnsBootCredit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	s := New(path)
	require.NoError(t, s.Save(173.5))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[0] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	balance, credit := s.Load()
	assert.Equal(t, BootCredit, balance)
	assert.False(t, credit)
}

func TestLoad_ShortFile_ReturnsBootCredit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	s := New(path)
	balance, credit := s.Load()
	assert.Equal(t, BootCredit, balance)
	assert.False(t, credit)
}

func TestLoad_ClockRegression_SuppressesCreditButKeepsBalance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.bin")
	s := New(path)

	// Hand-construct a record stamped in the future relative to "now".
	future := time.Now().Add(365 * 24 * time.Hour)
	rec := record{
		Balance:   200.0,
		SavedSec:  future.Unix(),
		SavedNsec: int64(future.Nanosecond()),
	}
	body := rec.encode()
	crc := checksum(body)
	var crcBuf [4]byte
	for i := 0; i < 4; i++ {
		crcBuf[i] = byte(crc >> (8 * i))
	}
	require.NoError(t, os.WriteFile(path, append(body, crcBuf[:]...), 0o644))

	balance, credit := s.Load()
	assert.Equal(t, types.Points(200.0), balance)
	assert.False(t, credit, "wall clock behind the saved time must suppress elapsed credit")
}

func TestChecksum_MatchesKnownBitSerialAlgorithm(t *testing.T) {
	// CRC-32/IEEE of ASCII "123456789" is the well-known check value
	// 0xCBF43926, shared by this table-less bit-serial variant.
	got := checksum([]byte("123456789"))
	assert.Equal(t, uint32(0xCBF43926), got)
}
