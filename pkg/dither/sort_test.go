package dither

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFITS writes a minimal FITS primary header with the given cards.
func writeFITS(t *testing.T, path string, cards ...string) {
	t.Helper()

	var buf bytes.Buffer
	for _, c := range cards {
		buf.WriteString(c)
		buf.WriteString(string(bytes.Repeat([]byte{' '}, 80-len(c))))
	}
	buf.WriteString("END")
	buf.WriteString(string(bytes.Repeat([]byte{' '}, 77)))
	for buf.Len()%2880 != 0 {
		buf.WriteByte(' ')
	}
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestSortBasenames(t *testing.T) {
	dir := t.TempDir()

	// files intentionally numbered out of order
	writeFITS(t, filepath.Join(dir, "obs_a_L.fits"), "DITHER  =                    3")
	writeFITS(t, filepath.Join(dir, "obs_b_L.fits"), "DITHER  =                    1")
	writeFITS(t, filepath.Join(dir, "obs_c_L.fits"), "DITHER  =                    2")

	basenames := []string{
		filepath.Join(dir, "obs_a"),
		filepath.Join(dir, "obs_b"),
		filepath.Join(dir, "obs_c"),
	}

	got, err := SortBasenames(basenames, "_L.fits", "DITHER")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "obs_b"),
		filepath.Join(dir, "obs_c"),
		filepath.Join(dir, "obs_a"),
	}, got)
}

func TestSortBasenamesMissingKeyword(t *testing.T) {
	dir := t.TempDir()
	writeFITS(t, filepath.Join(dir, "obs_a_L.fits"), "OBJECT  = 'x'")

	_, err := SortBasenames([]string{filepath.Join(dir, "obs_a")}, "_L.fits", "DITHER")
	assert.Error(t, err)
}
