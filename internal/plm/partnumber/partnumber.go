// Package partnumber parses, formats, and increments part numbers and
// revision strings for the semi-intelligent numbering scheme.
//
// A semi-intelligent number is CCC-III…I-VV…V: a fixed three-digit class
// code, an item segment of the org's configured length, and an optional
// alphanumeric variation segment. Intelligent numbers are opaque and never
// pass through here.
package partnumber

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
)

// ClassCodeLen is fixed regardless of org settings.
const ClassCodeLen = 3

// MaxRevisionLen bounds revision strings.
const MaxRevisionLen = 4

// Number is a parsed semi-intelligent part number. Fields are nil when the
// corresponding trailing segment was absent in a partial parse.
type Number struct {
	Class     *string
	Item      *string
	Variation *string
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		default:
			return false
		}
	}
	return true
}

// Parse parses a full C-I-V number under the given org segment lengths.
// A zero variationLen means the number has no variation segment.
func Parse(number string, itemLen, variationLen int) (class, item, variation string, err error) {
	n, err := ParsePartial(number, itemLen, variationLen)
	if err != nil {
		return "", "", "", err
	}
	if n.Class == nil || n.Item == nil {
		return "", "", "", plmerr.Validationf("part number %q is missing a segment", number)
	}
	if variationLen > 0 && n.Variation == nil {
		return "", "", "", plmerr.Validationf("part number %q is missing its variation segment", number)
	}
	class = *n.Class
	item = *n.Item
	if n.Variation != nil {
		variation = *n.Variation
	}
	return class, item, variation, nil
}

// ParsePartial accepts C, C-I, or C-I-V and returns nil for absent trailing
// segments. Per-segment format rules are identical to Parse.
func ParsePartial(number string, itemLen, variationLen int) (*Number, error) {
	if number == "" {
		return nil, plmerr.Validationf("empty part number")
	}
	segments := strings.Split(number, "-")
	if len(segments) > 3 {
		return nil, plmerr.Validationf("part number %q has too many segments", number)
	}

	class := segments[0]
	if len(class) != ClassCodeLen || !isDigits(class) {
		return nil, plmerr.Validationf("part number class %q must be %d digits", class, ClassCodeLen)
	}
	n := &Number{Class: &class}

	if len(segments) >= 2 {
		item := segments[1]
		if len(item) != itemLen || !isDigits(item) {
			return nil, plmerr.Validationf("part number item %q must be %d digits", item, itemLen)
		}
		n.Item = &item
	}

	if len(segments) == 3 {
		variation := segments[2]
		if len(variation) != variationLen || !isAlphanumeric(variation) {
			return nil, plmerr.Validationf("part number variation %q must be %d alphanumeric characters", variation, variationLen)
		}
		n.Variation = &variation
	}

	return n, nil
}

// Format renders a C-I-V triple. The variation segment is omitted when empty.
func Format(class, item, variation string) string {
	if variation == "" {
		return class + "-" + item
	}
	return class + "-" + item + "-" + variation
}

// PadItem zero-pads an item ordinal to the org item length.
func PadItem(n, itemLen int) string {
	return fmt.Sprintf("%0*d", itemLen, n)
}

// PadVariation zero-pads a numeric variation ordinal. Auto-assigned numeric
// variations are always two digits wide.
func PadVariation(n int) string {
	return fmt.Sprintf("%02d", n)
}

// NextAlpha returns the alphabetic successor: "" → "A", "Y" → "Z",
// "Z" → "AA", "AZ" → "BA". Input is uppercased first. The result is always
// strictly greater than the input under length-then-lexicographic order.
func NextAlpha(s string) string {
	s = strings.ToUpper(s)
	if s == "" {
		return "A"
	}
	b := []byte(s)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 'Z' {
			b[i]++
			return string(b)
		}
		b[i] = 'A'
	}
	// all Z: carry out one column
	return "A" + string(b)
}

// NextRevision returns the successor revision string: numeric strings
// increment, everything else takes the alphabetic successor. An error is
// returned when the successor would exceed MaxRevisionLen characters.
func NextRevision(rev string) (string, error) {
	rev = strings.TrimSpace(rev)
	var next string
	if n, err := strconv.Atoi(rev); err == nil && n >= 0 {
		next = strconv.Itoa(n + 1)
	} else {
		next = NextAlpha(rev)
	}
	if len(next) > MaxRevisionLen {
		return "", plmerr.Validationf("revision successor of %q exceeds %d characters", rev, MaxRevisionLen)
	}
	return next, nil
}
