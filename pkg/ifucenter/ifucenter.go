// Package ifucenter parses IFU center files, which map fiber numbers to
// positions within an IFU. The expected structure is:
//
//	# HETDEX IFU description file
//	# IFU 00001
//	# FIBERD   FIBERSEP
//	1.55      2.20
//	# NFIBX NFIBY
//	20 23
//	#
//	0001  -19.8000  -19.6876 L 0001    1.000
//	...
//
// Rows whose target fiber number is not a positive integer belong to broken
// fibers and are skipped. A positive fiber number with negative throughput is
// an inconsistency the parser refuses to resolve on its own.
package ifucenter

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrParse is returned when an IFU center file cannot be interpreted.
var ErrParse = errors.New("malformed IFU center file")

// IFUCenter holds the parsed content of an IFU center file.
type IFUCenter struct {
	Filename string
	IFUID    int
	FiberD   float64 // fiber diameter
	FiberSep float64 // fiber separation
	NFibX    int
	NFibY    int

	// per-channel (L/R) fiber data
	X          map[string][]float64
	Y          map[string][]float64
	FiberNum   map[string][]int
	Throughput map[string][]float64
	NFibers    map[string]int
}

// Parse reads the IFU center file at path.
func Parse(path string) (*IFUCenter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c := &IFUCenter{
		Filename:   path,
		X:          make(map[string][]float64),
		Y:          make(map[string][]float64),
		FiberNum:   make(map[string][]int),
		Throughput: make(map[string][]float64),
		NFibers:    make(map[string]int),
	}

	s := bufio.NewScanner(f)
	if err := c.readHeader(s); err != nil {
		return nil, err
	}
	if err := c.readFiberMap(s); err != nil {
		return nil, err
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// readHeader extracts the bundle id, fiber geometry and fiber grid size.
func (c *IFUCenter) readHeader(s *bufio.Scanner) error {
	// the bundle id lives in a leading "# IFU <n>" or "# VIFU<n>" comment
	found := false
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if !strings.HasPrefix(line, "#") {
			return fmt.Errorf("%w: failed to find IFU bundle ID in file header", ErrParse)
		}
		line = strings.TrimSpace(line[1:])

		var idstr string
		switch {
		case strings.HasPrefix(line, "IFU "):
			idstr = strings.TrimSpace(line[4:])
		case strings.HasPrefix(line, "VIFU"):
			idstr = strings.TrimSpace(line[4:])
		default:
			continue
		}

		id, err := strconv.Atoi(idstr)
		if err != nil {
			return fmt.Errorf("%w: bad IFU bundle ID %q", ErrParse, idstr)
		}
		c.IFUID = id
		found = true
		break
	}
	if !found {
		return fmt.Errorf("%w: failed to find IFU bundle ID in file header", ErrParse)
	}

	// fiber diameter and separation
	line, err := nextDataLine(s)
	if err != nil {
		return err
	}
	if _, err := fmt.Sscan(line, &c.FiberD, &c.FiberSep); err != nil {
		return fmt.Errorf("%w: fiber diameter/separation: %v", ErrParse, err)
	}

	// number of fibers along x and y
	line, err = nextDataLine(s)
	if err != nil {
		return err
	}
	if _, err := fmt.Sscan(line, &c.NFibX, &c.NFibY); err != nil {
		return fmt.Errorf("%w: fiber grid size: %v", ErrParse, err)
	}
	return nil
}

// nextDataLine returns the next non-comment line.
func nextDataLine(s *bufio.Scanner) (string, error) {
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
	if err := s.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("%w: unexpected end of file", ErrParse)
}

// readFiberMap parses the fiber position rows.
func (c *IFUCenter) readFiberMap(s *bufio.Scanner) error {
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}
		x, errX := strconv.ParseFloat(fields[1], 64)
		y, errY := strconv.ParseFloat(fields[2], 64)
		channel := fields[3]
		throughput, errT := strconv.ParseFloat(fields[5], 64)
		if errX != nil || errY != nil || errT != nil {
			return fmt.Errorf("%w: bad fiber row %q", ErrParse, line)
		}

		// a fiber number that does not convert to an integer marks a
		// broken fiber
		fibNum, err := strconv.Atoi(fields[4])
		if err != nil {
			continue
		}
		if fibNum <= 0 {
			continue
		}

		if throughput < 0 {
			return fmt.Errorf("%w: fiber %d has a positive fiber number and"+
				" negative throughput", ErrParse, fibNum)
		}

		c.NFibers[channel]++
		c.X[channel] = append(c.X[channel], x)
		c.Y[channel] = append(c.Y[channel], y)
		c.FiberNum[channel] = append(c.FiberNum[channel], fibNum)
		c.Throughput[channel] = append(c.Throughput[channel], throughput)
	}
	return nil
}

// Channels returns the sorted list of channels found in the fiber map.
func (c *IFUCenter) Channels() []string {
	channels := make([]string, 0, len(c.NFibers))
	for ch := range c.NFibers {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	return channels
}
