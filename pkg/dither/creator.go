package dither

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/hetdex-collaboration/gohetdex/internal/filetools"
	"github.com/hetdex-collaboration/gohetdex/pkg/fits"
	"github.com/hetdex-collaboration/gohetdex/pkg/fplane"
	"github.com/hetdex-collaboration/gohetdex/pkg/telescope"
)

// ErrCreate is returned when a dither file cannot be assembled.
var ErrCreate = errors.New("dither creation failed")

// DefaultAirmass is written to created dither files until a proper airmass
// model is available.
const DefaultAirmass = 1.22

// Position holds the dither shifts of one IFU: the x and y offsets of each
// dither, in order.
type Position struct {
	ID     string
	Dx, Dy []float64
}

// DefaultPositions are the standard three-dither shifts applied to every IFU.
var DefaultPositions = []Position{{
	ID: "000",
	Dx: []float64{0.000, -1.270, -1.270},
	Dy: []float64{0.000, 0.730, -0.730},
}}

// Creator builds dither files for the IFUs of a focal plane, using a shot
// model for the image quality and normalisation.
type Creator struct {
	// Airmass is written to every created line.
	Airmass float64

	fplane *fplane.FPlane
	shot   *telescope.Shot
	dxs    map[string][]float64
	dys    map[string][]float64
}

// NewCreator parses the focal plane file and stores the dither positions,
// keyed by ifuslot. ErrPositions is returned when a position has mismatching
// x and y counts.
func NewCreator(fplaneFile string, shot *telescope.Shot, positions []Position) (*Creator, error) {
	fp, err := fplane.Parse(fplaneFile)
	if err != nil {
		return nil, err
	}

	c := &Creator{
		Airmass: DefaultAirmass,
		fplane:  fp,
		shot:    shot,
		dxs:     make(map[string][]float64),
		dys:     make(map[string][]float64),
	}
	for _, p := range positions {
		if len(p.Dx) != len(p.Dy) {
			return nil, fmt.Errorf("%w: id %q has %d x and %d y entries",
				ErrPositions, p.ID, len(p.Dx), len(p.Dy))
		}
		c.dxs[p.ID] = p.Dx
		c.dys[p.ID] = p.Dy
	}
	return c, nil
}

// NewCreatorFromFile reads the dither positions from a file with lines of the
// form `id x1 x2 ... xn y1 y2 ... yn` and builds a Creator with them.
func NewCreatorFromFile(fplaneFile string, shot *telescope.Shot, positionsFile string) (*Creator, error) {
	positions, err := ParsePositionsFile(positionsFile)
	if err != nil {
		return nil, err
	}
	return NewCreator(fplaneFile, shot, positions)
}

// ParsePositionsFile parses a dither positions file. Comment lines are
// skipped; each remaining line carries an id followed by an even number of
// values, the first half x shifts and the second half y shifts.
func ParsePositionsFile(path string) ([]Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var positions []Position
	s := filetools.SkipComments(f)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) < 3 || (len(fields)-1)%2 != 0 {
			return nil, fmt.Errorf("%w: line %q has a miss-matching number"+
				" of x and y entries", ErrPositions, s.Text())
		}

		n := (len(fields) - 1) / 2
		p := Position{ID: fields[0]}
		for i, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrPositions, err)
			}
			if i < n {
				p.Dx = append(p.Dx, v)
			} else {
				p.Dy = append(p.Dy, v)
			}
		}
		positions = append(positions, p)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return positions, nil
}

// Dxs returns the x shifts for the IFU resolved by id and idtype.
func (c *Creator) Dxs(id string, idtype fplane.IDType) ([]float64, error) {
	ifu, err := c.fplane.ByID(id, idtype)
	if err != nil {
		return nil, err
	}
	dxs, ok := c.dxs[ifu.IFUSlot]
	if !ok {
		return nil, fmt.Errorf("%w: no dither positions for ifuslot %q",
			ErrPositions, ifu.IFUSlot)
	}
	return dxs, nil
}

// Dys returns the y shifts for the IFU resolved by id and idtype.
func (c *Creator) Dys(id string, idtype fplane.IDType) ([]float64, error) {
	ifu, err := c.fplane.ByID(id, idtype)
	if err != nil {
		return nil, err
	}
	dys, ok := c.dys[ifu.IFUSlot]
	if !ok {
		return nil, fmt.Errorf("%w: no dither positions for ifuslot %q",
			ErrPositions, ifu.IFUSlot)
	}
	return dys, nil
}

// Create writes the dither file for the given IFU. basenames and modelbases
// must have exactly as many elements as there are dithers.
func (c *Creator) Create(id string, basenames, modelbases []string, outfile string, idtype fplane.IDType) error {
	ifu, err := c.fplane.ByID(id, idtype)
	if err != nil {
		return err
	}
	dxs, err := c.Dxs(id, idtype)
	if err != nil {
		return err
	}
	dys, err := c.Dys(id, idtype)
	if err != nil {
		return err
	}

	if len(basenames) != len(dxs) {
		return fmt.Errorf("%w: %d basenames for %d dithers",
			ErrCreate, len(basenames), len(dxs))
	}
	if len(modelbases) != len(dxs) {
		return fmt.Errorf("%w: %d modelbases for %d dithers",
			ErrCreate, len(modelbases), len(dxs))
	}

	var b strings.Builder
	b.WriteString("# basename          modelbase           ditherx dithery seeing norm airmass\n")
	for i := range dxs {
		ditherNum := i + 1
		seeing := c.shot.FWHM(ifu.X, ifu.Y, ditherNum)
		norm := c.shot.Normalisation(ifu.X, ifu.Y, ditherNum)
		fmt.Fprintf(&b, "%s %s %f %f %4.3f %5.4f %5.4f\n",
			basenames[i], modelbases[i], dxs[i], dys[i], seeing, norm, c.Airmass)
	}

	if err := os.WriteFile(outfile, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrCreate, err)
	}
	return nil
}

// Shot returns the shot model used by the creator.
func (c *Creator) Shot() *telescope.Shot { return c.shot }

// SetShot replaces the shot model, e.g. to install a hetpupil illumination.
func (c *Creator) SetShot(shot *telescope.Shot) { c.shot = shot }

// CheckCounts reports whether the number of basenames and modelbases is
// either one or the number of dithers.
func CheckCounts(nDithers int, basenames, modelbases []string) bool {
	okBase := len(basenames) == 1 || len(basenames) == nDithers
	okModel := len(modelbases) == 1 || len(modelbases) == nDithers
	return okBase && okModel
}

// FormatNames expands names to nDithers entries (replicating a single name)
// and substitutes the {id} and {dither} placeholders; {dither} is the
// 1-based dither number.
func FormatNames(names []string, nDithers int, id string) []string {
	if len(names) == 1 {
		expanded := make([]string, nDithers)
		for i := range expanded {
			expanded[i] = names[0]
		}
		names = expanded
	}

	out := make([]string, len(names))
	for i, name := range names {
		name = strings.ReplaceAll(name, "{id}", id)
		name = strings.ReplaceAll(name, "{dither}", strconv.Itoa(i+1))
		out[i] = name
	}
	return out
}

// SortBasenames orders basenames by the value of the FITS header keyword read
// from basename+extension. Values that parse as numbers compare numerically,
// otherwise lexicographically.
func SortBasenames(basenames []string, extension, headerKey string) ([]string, error) {
	type keyed struct {
		name  string
		raw   string
		num   float64
		isNum bool
	}

	ks := make([]keyed, len(basenames))
	for i, bn := range basenames {
		raw, err := fits.GetVal(bn+extension, headerKey)
		if err != nil {
			return nil, fmt.Errorf("reading %s from %s%s: %w", headerKey, bn, extension, err)
		}
		k := keyed{name: bn, raw: raw}
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			k.num, k.isNum = v, true
		}
		ks[i] = k
	}

	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].isNum && ks[j].isNum {
			return ks[i].num < ks[j].num
		}
		return ks[i].raw < ks[j].raw
	})

	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = k.name
	}
	return out, nil
}
