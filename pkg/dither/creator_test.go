package dither

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetdex-collaboration/gohetdex/pkg/fplane"
	"github.com/hetdex-collaboration/gohetdex/pkg/telescope"
)

const testFPlane = `# ifuslot x_fp y_fp specid specslot ifuid ifurot platescl
046  150.0  150.0  04  004  023  0.0  1.0
047 -150.0  150.0  05  005  024  0.0  1.0
`

func writeTestFPlane(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fplane.txt")
	require.NoError(t, os.WriteFile(path, []byte(testFPlane), 0o644))
	return path
}

func testPositions() []Position {
	return []Position{
		{ID: "046", Dx: []float64{0, -1.27, -1.27}, Dy: []float64{0, 0.73, -0.73}},
		{ID: "047", Dx: []float64{0, 0.61}, Dy: []float64{0, 1.07}},
	}
}

func TestNewCreator(t *testing.T) {
	c, err := NewCreator(writeTestFPlane(t), telescope.NewShot(1.6), testPositions())
	require.NoError(t, err)

	dxs, err := c.Dxs("046", fplane.IFUSlot)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, -1.27, -1.27}, dxs)

	dys, err := c.Dys("023", fplane.IFUID)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.73, -0.73}, dys)
}

func TestNewCreatorMismatchedPositions(t *testing.T) {
	positions := []Position{{ID: "046", Dx: []float64{0, 1}, Dy: []float64{0}}}
	_, err := NewCreator(writeTestFPlane(t), telescope.NewShot(1.6), positions)
	assert.ErrorIs(t, err, ErrPositions)
}

func TestCreatorUnknownIFU(t *testing.T) {
	c, err := NewCreator(writeTestFPlane(t), telescope.NewShot(1.6), testPositions())
	require.NoError(t, err)

	_, err = c.Dxs("999", fplane.IFUSlot)
	assert.ErrorIs(t, err, fplane.ErrUnknownID)
}

func TestCreatorNoPositionsForSlot(t *testing.T) {
	positions := []Position{{ID: "046", Dx: []float64{0}, Dy: []float64{0}}}
	c, err := NewCreator(writeTestFPlane(t), telescope.NewShot(1.6), positions)
	require.NoError(t, err)

	_, err = c.Dxs("047", fplane.IFUSlot)
	assert.ErrorIs(t, err, ErrPositions)
}

func TestCreate(t *testing.T) {
	c, err := NewCreator(writeTestFPlane(t), telescope.NewShot(1.6), testPositions())
	require.NoError(t, err)

	outfile := filepath.Join(t.TempDir(), "dither_046.txt")
	basenames := []string{"obs_D1_046", "obs_D2_046", "obs_D3_046"}
	modelbases := []string{"flat_D1_046", "flat_D2_046", "flat_D3_046"}

	require.NoError(t, c.Create("046", basenames, modelbases, outfile, fplane.IFUSlot))

	// the created file parses back to the same dithers
	d, err := ParseFile(outfile)
	require.NoError(t, err)
	assert.Equal(t, []string{"D1", "D2", "D3"}, d.Dithers())

	e, ok := d.Entry("D2")
	require.True(t, ok)
	assert.Equal(t, "obs_D2_046", e.Basename)
	assert.Equal(t, -1.27, e.Dx)
	assert.Equal(t, 0.73, e.Dy)
	assert.Equal(t, 1.6, e.Seeing)
	assert.Equal(t, 1.0, e.Norm)
	assert.Equal(t, DefaultAirmass, e.Airmass)

	content, err := os.ReadFile(outfile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "# basename"))
}

func TestCreateCountMismatch(t *testing.T) {
	c, err := NewCreator(writeTestFPlane(t), telescope.NewShot(1.6), testPositions())
	require.NoError(t, err)

	outfile := filepath.Join(t.TempDir(), "out.txt")

	err = c.Create("046", []string{"one"}, []string{"a", "b", "c"}, outfile, fplane.IFUSlot)
	assert.ErrorIs(t, err, ErrCreate)

	err = c.Create("046", []string{"a", "b", "c"}, []string{"one"}, outfile, fplane.IFUSlot)
	assert.ErrorIs(t, err, ErrCreate)
}

func TestParsePositionsFile(t *testing.T) {
	content := `# ihmpid x1 x2 x3 y1 y2 y3
046 0.000 -1.270 -1.270 0.000 0.730 -0.730
047 0.0 0.61 0.0 1.07
`
	path := filepath.Join(t.TempDir(), "ditherpos.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	positions, err := ParsePositionsFile(path)
	require.NoError(t, err)
	require.Len(t, positions, 2)

	assert.Equal(t, "046", positions[0].ID)
	assert.Equal(t, []float64{0, -1.27, -1.27}, positions[0].Dx)
	assert.Equal(t, []float64{0, 0.73, -0.73}, positions[0].Dy)

	assert.Equal(t, "047", positions[1].ID)
	assert.Equal(t, []float64{0, 0.61}, positions[1].Dx)
	assert.Equal(t, []float64{0, 1.07}, positions[1].Dy)
}

func TestParsePositionsFileOddCount(t *testing.T) {
	content := "046 0.0 1.0 2.0\n"
	path := filepath.Join(t.TempDir(), "ditherpos.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := ParsePositionsFile(path)
	assert.ErrorIs(t, err, ErrPositions)
}

func TestCheckCounts(t *testing.T) {
	tests := []struct {
		name       string
		nDithers   int
		basenames  []string
		modelbases []string
		want       bool
	}{
		{"both single", 3, []string{"a"}, []string{"m"}, true},
		{"both full", 3, []string{"a", "b", "c"}, []string{"m", "n", "o"}, true},
		{"mixed", 3, []string{"a"}, []string{"m", "n", "o"}, true},
		{"basenames wrong", 3, []string{"a", "b"}, []string{"m"}, false},
		{"modelbases wrong", 2, []string{"a"}, []string{"m", "n", "o"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckCounts(tt.nDithers, tt.basenames, tt.modelbases))
		})
	}
}

func TestFormatNames(t *testing.T) {
	t.Run("replicates single name", func(t *testing.T) {
		got := FormatNames([]string{"file_D{dither}_{id}"}, 3, "046")
		assert.Equal(t, []string{"file_D1_046", "file_D2_046", "file_D3_046"}, got)
	})

	t.Run("formats each name", func(t *testing.T) {
		got := FormatNames([]string{"a_{id}", "b_{dither}"}, 2, "001")
		assert.Equal(t, []string{"a_001", "b_2"}, got)
	})

	t.Run("no placeholders", func(t *testing.T) {
		got := FormatNames([]string{"plain"}, 2, "001")
		assert.Equal(t, []string{"plain", "plain"}, got)
	})
}
