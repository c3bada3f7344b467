// Package fplane parses focal plane files and resolves IFUs by their
// identifiers. A focal plane file lists one IFU per line:
//
//	# ifuslot x_fp y_fp specid specslot ifuid ifurot platescl
//	046  150.0  150.0  04  004  023  0.0  1.0
package fplane

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/hetdex-collaboration/gohetdex/internal/filetools"
)

// IDType selects which identifier ByID resolves.
type IDType string

// Identifier types understood by ByID.
const (
	IFUSlot IDType = "ifuslot"
	IFUID   IDType = "ifuid"
	SpecID  IDType = "specid"
)

// Errors returned while parsing or resolving IFUs.
var (
	ErrParse         = errors.New("malformed focal plane file")
	ErrUnknownID     = errors.New("unknown IFU id")
	ErrUnknownIDType = errors.New("unknown id type")
)

// IFU is a single entry of the focal plane file.
type IFU struct {
	IFUSlot    string
	X, Y       float64
	SpecID     string
	SpecSlot   string
	IFUID      string
	IFURot     float64
	PlateScale float64
}

// FPlane holds the parsed focal plane with lookups by the three id kinds.
type FPlane struct {
	filename string
	byslot   map[string]*IFU
	byifu    map[string]*IFU
	byspec   map[string]*IFU
}

// Parse reads the focal plane file at path.
func Parse(path string) (*FPlane, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fp := &FPlane{
		filename: path,
		byslot:   make(map[string]*IFU),
		byifu:    make(map[string]*IFU),
		byspec:   make(map[string]*IFU),
	}

	s := filetools.SkipComments(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ifu, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		fp.byslot[ifu.IFUSlot] = ifu
		fp.byifu[ifu.IFUID] = ifu
		fp.byspec[ifu.SpecID] = ifu
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return fp, nil
}

func parseLine(line string) (*IFU, error) {
	fields := strings.Fields(line)
	if len(fields) < 8 {
		return nil, fmt.Errorf("expected 8 columns, got %d", len(fields))
	}

	ifu := &IFU{
		IFUSlot:  fields[0],
		SpecID:   fields[3],
		SpecSlot: fields[4],
		IFUID:    fields[5],
	}

	var err error
	if ifu.X, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return nil, err
	}
	if ifu.Y, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return nil, err
	}
	if ifu.IFURot, err = strconv.ParseFloat(fields[6], 64); err != nil {
		return nil, err
	}
	if ifu.PlateScale, err = strconv.ParseFloat(fields[7], 64); err != nil {
		return nil, err
	}
	return ifu, nil
}

// Filename returns the path the focal plane was parsed from.
func (fp *FPlane) Filename() string { return fp.filename }

// Size returns the number of IFUs.
func (fp *FPlane) Size() int { return len(fp.byslot) }

// ByID resolves an IFU by id, where idtype selects among ifuslot, ifuid and
// specid.
func (fp *FPlane) ByID(id string, idtype IDType) (*IFU, error) {
	var m map[string]*IFU
	switch idtype {
	case IFUSlot:
		m = fp.byslot
	case IFUID:
		m = fp.byifu
	case SpecID:
		m = fp.byspec
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIDType, idtype)
	}

	ifu, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrUnknownID, idtype, id)
	}
	return ifu, nil
}

// IFUSlots returns the sorted list of ifuslot ids.
func (fp *FPlane) IFUSlots() []string {
	slots := make([]string, 0, len(fp.byslot))
	for slot := range fp.byslot {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots
}

// IFUs returns the IFUs sorted by ifuslot.
func (fp *FPlane) IFUs() []*IFU {
	out := make([]*IFU, 0, len(fp.byslot))
	for _, slot := range fp.IFUSlots() {
		out = append(out, fp.byslot[slot])
	}
	return out
}
