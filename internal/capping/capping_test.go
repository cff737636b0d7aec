package capping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestActuator(t *testing.T) (*Actuator, string, string) {
	t.Helper()
	dir := t.TempDir()
	ceiling := filepath.Join(dir, "volt")
	enable := filepath.Join(dir, "capping_state")
	require.NoError(t, os.WriteFile(ceiling, []byte("0"), 0o644))
	require.NoError(t, os.WriteFile(enable, []byte("0"), 0o644))
	return New(ceiling, enable, nil), ceiling, enable
}

func TestSetCeiling_WritesDecimalString(t *testing.T) {
	a, ceiling, _ := newTestActuator(t)
	require.NoError(t, a.SetCeiling(1300))

	b, err := os.ReadFile(ceiling)
	require.NoError(t, err)
	assert.Equal(t, "1300", string(b))
}

func TestSetEnabled_WritesOneOrZero(t *testing.T) {
	a, _, enable := newTestActuator(t)

	require.NoError(t, a.SetEnabled(true))
	b, err := os.ReadFile(enable)
	require.NoError(t, err)
	assert.Equal(t, "1", string(b))

	require.NoError(t, a.SetEnabled(false))
	b, err = os.ReadFile(enable)
	require.NoError(t, err)
	assert.Equal(t, "0", string(b))
}

func TestSetCeiling_MissingFile_ReturnsErrorWithoutPanic(t *testing.T) {
	a := New(filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "missing2"), nil)
	assert.Error(t, a.SetCeiling(1300))
	assert.Error(t, a.SetEnabled(true))
}
