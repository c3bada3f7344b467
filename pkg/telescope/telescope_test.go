package telescope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShotDefaults(t *testing.T) {
	s := NewShot(1.6)

	assert.Equal(t, 1.6, s.FWHM(10, -20, 1))
	assert.Equal(t, 1.6, s.FWHM(0, 0, 3))
	assert.Equal(t, 1.0, s.Normalisation(10, -20, 2))
}

func TestShotCustomIllumination(t *testing.T) {
	s := NewShot(1.6)
	s.IlluminationModel = ConstantModel(0.9)

	assert.Equal(t, 0.9, s.Normalisation(0, 0, 1))
	assert.Equal(t, 1.6, s.FWHM(0, 0, 1))
}

func TestParseHetpupilOutput(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    []float64
		wantErr bool
	}{
		{
			name: "one value per line",
			out:  "file1.fits 0.95\nfile2.fits 0.90\nfile3.fits 0.85\n",
			want: []float64{0.95, 0.90, 0.85},
		},
		{
			name: "blank lines are ignored",
			out:  "0.95\n\n0.90\n",
			want: []float64{0.95, 0.90},
		},
		{
			name:    "non numeric tail",
			out:     "file1.fits oops\n",
			wantErr: true,
		},
		{
			name:    "wrong count",
			out:     "0.95\n",
			want:    nil,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseHetpupilOutput(tt.out, len(tt.want))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHetpupilModelValue(t *testing.T) {
	m := &HetpupilModel{fills: []float64{1.0, 0.95, 0.9}}

	assert.Equal(t, 1.0, m.Value(0, 0, 1))
	assert.Equal(t, 0.95, m.Value(100, -30, 2))
	assert.Equal(t, 0.9, m.Value(0, 0, 3))
	// out of range dithers fall back to 1
	assert.Equal(t, 1.0, m.Value(0, 0, 0))
	assert.Equal(t, 1.0, m.Value(0, 0, 4))
}

func TestNewHetpupilModelNoCureBin(t *testing.T) {
	t.Setenv(EnvCureBin, "")
	_, err := NewHetpupilModel([]string{"a.fits"}, true)
	assert.ErrorIs(t, err, ErrNoCureBin)
}
