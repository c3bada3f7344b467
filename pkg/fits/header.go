// Package fits reads primary-HDU headers of FITS files. Only the header
// cards are decoded; data units are out of scope.
package fits

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// FITS headers are sequences of 80-byte cards, padded to 2880-byte blocks.
const (
	cardLen  = 80
	blockLen = 2880
)

// Errors returned by the header functions.
var (
	ErrKeyNotFound = errors.New("header keyword not found")
	ErrNoEnd       = errors.New("no END card found in header")
)

// Card is a single header card: keyword, raw value and comment.
type Card struct {
	Keyword string
	Value   string
	Comment string
}

// Header is the ordered list of cards of a primary HDU.
type Header struct {
	cards []Card
	index map[string]int
}

// ReadHeader reads header cards from r until the END card. It consumes whole
// 2880-byte blocks, leaving r positioned at the start of the data unit.
func ReadHeader(r io.Reader) (*Header, error) {
	h := &Header{index: make(map[string]int)}
	block := make([]byte, blockLen)

	for {
		if _, err := io.ReadFull(r, block); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, ErrNoEnd
			}
			return nil, err
		}

		for off := 0; off < blockLen; off += cardLen {
			card := string(block[off : off+cardLen])
			keyword := strings.TrimRight(card[:8], " ")
			if keyword == "END" {
				return h, nil
			}
			if keyword == "" || keyword == "COMMENT" || keyword == "HISTORY" {
				continue
			}
			value, comment := splitCard(card)
			h.index[keyword] = len(h.cards)
			h.cards = append(h.cards, Card{Keyword: keyword, Value: value, Comment: comment})
		}
	}
}

// Open reads the primary header of the FITS file at path.
func Open(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h, err := ReadHeader(f)
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	return h, nil
}

// GetVal returns the raw value string of key in the primary header of the
// FITS file at path.
func GetVal(path, key string) (string, error) {
	h, err := Open(path)
	if err != nil {
		return "", err
	}
	return h.Get(key)
}

// splitCard separates the value and comment of a card. Value indicators
// other than "= " mean the card carries no value.
func splitCard(card string) (value, comment string) {
	if len(card) < 10 || card[8:10] != "= " {
		return "", ""
	}
	rest := card[10:]

	// quoted string value: find the closing quote, doubled quotes escape
	if strings.HasPrefix(strings.TrimLeft(rest, " "), "'") {
		rest = strings.TrimLeft(rest, " ")
		var b strings.Builder
		i := 1
		for i < len(rest) {
			if rest[i] == '\'' {
				if i+1 < len(rest) && rest[i+1] == '\'' {
					b.WriteByte('\'')
					i += 2
					continue
				}
				i++
				break
			}
			b.WriteByte(rest[i])
			i++
		}
		value = strings.TrimRight(b.String(), " ")
		comment = trimComment(rest[i:])
		return value, comment
	}

	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		return strings.TrimSpace(rest[:idx]), strings.TrimSpace(rest[idx+1:])
	}
	return strings.TrimSpace(rest), ""
}

func trimComment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "/")
	return strings.TrimSpace(s)
}

// Has reports whether key is present.
func (h *Header) Has(key string) bool {
	_, ok := h.index[key]
	return ok
}

// Cards returns the cards in file order.
func (h *Header) Cards() []Card { return h.cards }

// Get returns the raw value string of key.
func (h *Header) Get(key string) (string, error) {
	i, ok := h.index[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return h.cards[i].Value, nil
}

// Float returns the value of key parsed as a float64. FITS exponent letters
// D and E are both accepted.
func (h *Header) Float(key string) (float64, error) {
	s, err := h.Get(key)
	if err != nil {
		return 0, err
	}
	s = strings.ReplaceAll(strings.ReplaceAll(s, "D", "E"), "d", "e")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("keyword %s: %w", key, err)
	}
	return v, nil
}

// Int returns the value of key parsed as an int.
func (h *Header) Int(key string) (int, error) {
	s, err := h.Get(key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("keyword %s: %w", key, err)
	}
	return v, nil
}

// Bool returns the value of key parsed as a FITS logical (T or F).
func (h *Header) Bool(key string) (bool, error) {
	s, err := h.Get(key)
	if err != nil {
		return false, err
	}
	switch s {
	case "T":
		return true, nil
	case "F":
		return false, nil
	default:
		return false, fmt.Errorf("keyword %s: not a FITS logical: %q", key, s)
	}
}

// WavelengthToIndex determines the index of wavelength along the first axis
// using the CRVAL1 and CDELT1 keywords.
func (h *Header) WavelengthToIndex(wavelength float64) (int, error) {
	wmin, err := h.Float("CRVAL1")
	if err != nil {
		return 0, err
	}
	deltaw, err := h.Float("CDELT1")
	if err != nil {
		return 0, err
	}
	return int(math.Round((wavelength - wmin) / deltaw)), nil
}
