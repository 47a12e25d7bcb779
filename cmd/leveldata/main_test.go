package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gtfoseed/internal/level"
)

func TestListLevels(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, listLevels(nil, &out))

	assert.Contains(t, out.String(), "zones=3 objectives=1 walk_capacity=false")
	assert.Contains(t, out.String(), "consumers=5")
	assert.Contains(t, out.String(), "walk_capacity=true")
}

func TestValidateLevels(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, validateLevels(nil, &out))
	assert.Contains(t, out.String(), "4 levels, 0 malformed")

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("levels:\n  R1A1:\n    bulk_keys_main:\n      - []\n"), 0o600))

	out.Reset()
	err := validateLevels([]string{path}, &out)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "R1A1: malformed level")
}

func TestNormalizeLevels(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "levels.json")
	outPath := filepath.Join(dir, "levels.yaml")
	require.NoError(t, os.WriteFile(in, []byte(`{"levels": {"R4A1": {"skip_start": 2, "build_seed": 3, "build_seed_skip": 1,
		"zones": [{"zone": 9, "rooms": ["Small"], "medi": 1.5, "unlocked_by": {"type": "none"}}]}}}`), 0o600))

	var out bytes.Buffer
	require.NoError(t, normalizeLevels([]string{in, outPath}, &out))

	c, err := level.LoadFile(outPath)
	require.NoError(t, err)
	lvl, ok := c.Get("R4A1")
	require.True(t, ok)
	assert.Equal(t, 2, lvl.SkipStart)
	require.Len(t, lvl.Zones, 1)
	assert.Equal(t, float32(1.5), lvl.Zones[0].Medi)

	assert.Error(t, normalizeLevels([]string{in}, &out))
}

func TestOpenCatalog_TooManyArgs(t *testing.T) {
	_, err := openCatalog([]string{"a", "b"})
	assert.Error(t, err)
}

func TestPrintList(t *testing.T) {
	var out bytes.Buffer
	printList(&out)
	assert.Contains(t, out.String(), "normalize")
	assert.Contains(t, out.String(), "validate")
}
