// Package dither parses and creates dither files. A dither file describes
// the exposures of one IFU:
//
//	# basename          modelbase           ditherx dithery seeing norm airmass
//	SIMDEX-obs-1_D1_046 SIMDEX-obs-1_D1_046   0.00   0.00    1.60  1.00  1.22
//	SIMDEX-obs-1_D2_046 SIMDEX-obs-1_D2_046   0.61   1.07    1.60  1.00  1.22
//	SIMDEX-obs-1_D3_046 SIMDEX-obs-1_D3_046   1.23   0.00    1.60  1.00  1.22
//
// Entries are keyed by the dither tag D1..Dn extracted from the modelbase
// column.
package dither

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hetdex-collaboration/gohetdex/internal/filetools"
)

// Errors returned while parsing dither and dither position files.
var (
	ErrParse     = errors.New("malformed dither file")
	ErrPositions = errors.New("malformed dither positions")
)

// Entry holds the values of one dither.
type Entry struct {
	Basename string
	Dx, Dy   float64
	Seeing   float64
	Norm     float64
	Airmass  float64
}

// Dither is a parsed dither file: entries keyed by the dither tag.
type Dither struct {
	entries  map[string]Entry
	absfname string
}

// Empty returns a stub dither with the single entry D1: zero offsets, seeing,
// norm and airmass set to 1. Useful when the real dither file does not exist.
func Empty() *Dither {
	return &Dither{
		entries: map[string]Entry{
			"D1": {Seeing: 1, Norm: 1, Airmass: 1},
		},
	}
}

var ditherTagRe = regexp.MustCompile(`D\d`)

// ParseFile reads the dither file at path. The dither tag of each line must
// match `D\d` exactly once inside the modelbase column.
func ParseFile(path string) (*Dither, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	d := &Dither{entries: make(map[string]Entry), absfname: abs}

	s := filetools.SkipComments(f)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) < 7 {
			// empty or incomplete lines are skipped
			continue
		}

		tags := uniqueMatches(ditherTagRe, fields[1])
		if len(tags) != 1 {
			return nil, fmt.Errorf("%w: found %d matches of 'D\\d' in"+
				" modelbase %q, expected one", ErrParse, len(tags), fields[1])
		}

		entry := Entry{Basename: fields[0]}
		values := []*float64{&entry.Dx, &entry.Dy, &entry.Seeing, &entry.Norm, &entry.Airmass}
		for i, dst := range values {
			v, err := strconv.ParseFloat(fields[i+2], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: column %d of %q: %v", ErrParse, i+3, s.Text(), err)
			}
			*dst = v
		}
		d.entries[tags[0]] = entry
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// uniqueMatches returns the distinct matches of re in s, preserving first
// occurrence order.
func uniqueMatches(re *regexp.Regexp, s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range re.FindAllString(s, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// Dithers returns the sorted dither tags.
func (d *Dither) Dithers() []string {
	tags := make([]string, 0, len(d.entries))
	for tag := range d.entries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Entry returns the entry for the given dither tag.
func (d *Dither) Entry(tag string) (Entry, bool) {
	e, ok := d.entries[tag]
	return e, ok
}

// AbsFilename returns the absolute name of the parsed file; empty for stub
// dithers.
func (d *Dither) AbsFilename() string { return d.absfname }

// AbsPath returns the directory of the parsed file.
func (d *Dither) AbsPath() string { return filepath.Dir(d.absfname) }

// Filename returns the base name of the parsed file.
func (d *Dither) Filename() string { return filepath.Base(d.absfname) }
