// Package telescope models per-shot quantities needed when building dither
// files: image quality (FWHM) and relative illumination.
package telescope

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Model evaluates a per-shot quantity at a focal plane position for a given
// dither number (1-based).
type Model interface {
	Value(x, y float64, dither int) float64
}

// ConstantModel returns the same value everywhere.
type ConstantModel float64

// Value implements Model.
func (m ConstantModel) Value(x, y float64, dither int) float64 { return float64(m) }

// Shot bundles the models describing one observation.
type Shot struct {
	// FWHMModel provides the image quality in arcseconds.
	FWHMModel Model
	// IlluminationModel provides the relative flux normalisation.
	IlluminationModel Model
}

// NewShot creates a Shot with constant models: fwhmFallback for the image
// quality and 1 for the illumination.
func NewShot(fwhmFallback float64) *Shot {
	return &Shot{
		FWHMModel:         ConstantModel(fwhmFallback),
		IlluminationModel: ConstantModel(1),
	}
}

// FWHM returns the image quality at (x, y) for the given dither.
func (s *Shot) FWHM(x, y float64, dither int) float64 {
	return s.FWHMModel.Value(x, y, dither)
}

// Normalisation returns the relative flux normalisation at (x, y) for the
// given dither.
func (s *Shot) Normalisation(x, y float64, dither int) float64 {
	return s.IlluminationModel.Value(x, y, dither)
}

// EnvCureBin names the environment variable pointing at the cure binary
// directory.
const EnvCureBin = "CUREBIN"

// ErrNoCureBin is returned when CUREBIN is not set.
var ErrNoCureBin = errors.New("CUREBIN environment variable not set")

// HetpupilModel derives per-dither relative illumination from the output of
// the cure hetpupil tool, one value per input file. Values are indexed by
// dither number; position is ignored.
type HetpupilModel struct {
	fills []float64
}

// NewHetpupilModel runs $CUREBIN/hetpupil on the given FITS files and parses
// the pupil fill factors from its output. When normalize is true the values
// are scaled so the first dither is 1.
func NewHetpupilModel(files []string, normalize bool) (*HetpupilModel, error) {
	curebin := os.Getenv(EnvCureBin)
	if curebin == "" {
		return nil, ErrNoCureBin
	}

	bin := filepath.Join(curebin, "hetpupil")
	args := append([]string{"-q"}, files...)

	log.Debug().Str("bin", bin).Strs("files", files).Msg("running hetpupil")
	out, err := exec.Command(bin, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("running hetpupil: %w", err)
	}

	fills, err := parseHetpupilOutput(string(out), len(files))
	if err != nil {
		return nil, err
	}
	if normalize && len(fills) > 0 {
		first := fills[0]
		for i := range fills {
			fills[i] /= first
		}
	}
	return &HetpupilModel{fills: fills}, nil
}

// parseHetpupilOutput extracts the last whitespace-separated field of each
// output line as the pupil fill value.
func parseHetpupilOutput(out string, want int) ([]float64, error) {
	var fills []float64
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing hetpupil output line %q: %w", line, err)
		}
		fills = append(fills, v)
	}
	if len(fills) != want {
		return nil, fmt.Errorf("hetpupil returned %d values for %d files",
			len(fills), want)
	}
	return fills, nil
}

// Value implements Model. Out-of-range dithers fall back to 1.
func (m *HetpupilModel) Value(x, y float64, dither int) float64 {
	if dither < 1 || dither > len(m.fills) {
		return 1
	}
	return m.fills[dither-1]
}
