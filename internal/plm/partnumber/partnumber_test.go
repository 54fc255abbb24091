package partnumber

import (
	"errors"
	"fmt"
	"testing"

	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullNumber(t *testing.T) {
	class, item, variation, err := Parse("500-0001-01", 4, 2)
	require.NoError(t, err)
	assert.Equal(t, "500", class)
	assert.Equal(t, "0001", item)
	assert.Equal(t, "01", variation)
}

func TestParseNoVariationScheme(t *testing.T) {
	class, item, variation, err := Parse("200-12345", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, "200", class)
	assert.Equal(t, "12345", item)
	assert.Equal(t, "", variation)
}

func TestParseRejectsBadSegments(t *testing.T) {
	cases := []struct {
		name   string
		number string
	}{
		{"short class", "50-0001-01"},
		{"alpha class", "5A0-0001-01"},
		{"wrong item length", "500-001-01"},
		{"alpha item", "500-00A1-01"},
		{"wrong variation length", "500-0001-001"},
		{"punctuation", "500-0001-0#"},
		{"missing item", "500"},
		{"too many segments", "500-0001-01-02"},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := Parse(tc.number, 4, 2)
			require.Error(t, err)
			assert.True(t, errors.Is(err, plmerr.ErrValidation))
		})
	}
}

func TestParsePartial(t *testing.T) {
	n, err := ParsePartial("500", 4, 2)
	require.NoError(t, err)
	require.NotNil(t, n.Class)
	assert.Equal(t, "500", *n.Class)
	assert.Nil(t, n.Item)
	assert.Nil(t, n.Variation)

	n, err = ParsePartial("500-0042", 4, 2)
	require.NoError(t, err)
	require.NotNil(t, n.Item)
	assert.Equal(t, "0042", *n.Item)
	assert.Nil(t, n.Variation)

	n, err = ParsePartial("500-0042-0A", 4, 2)
	require.NoError(t, err)
	require.NotNil(t, n.Variation)
	assert.Equal(t, "0A", *n.Variation)
}

// Property 1: parse(format(c,i,v)) round-trips.
func TestFormatParseRoundTrip(t *testing.T) {
	cases := []struct{ class, item, variation string }{
		{"500", "0001", "01"},
		{"999", "123456", "AB"},
		{"001", "0100", ""},
	}
	for _, tc := range cases {
		variationLen := len(tc.variation)
		class, item, variation, err := Parse(Format(tc.class, tc.item, tc.variation), len(tc.item), variationLen)
		require.NoError(t, err)
		assert.Equal(t, tc.class, class)
		assert.Equal(t, tc.item, item)
		assert.Equal(t, tc.variation, variation)
	}
}

func TestNextAlpha(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "A"},
		{"A", "B"},
		{"Y", "Z"},
		{"Z", "AA"},
		{"AZ", "BA"},
		{"ZZ", "AAA"},
		{"az", "BA"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NextAlpha(tc.in), "NextAlpha(%q)", tc.in)
	}
}

// Property 2: the successor is strictly increasing under length-then-lex
// ordering and never equals its argument.
func TestNextAlphaMonotonic(t *testing.T) {
	less := func(a, b string) bool {
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	}
	s := ""
	for i := 0; i < 200; i++ {
		next := NextAlpha(s)
		assert.NotEqual(t, s, next)
		assert.True(t, less(s, next), "%q should precede %q", s, next)
		s = next
	}
}

// Scenario B from the revision lifecycle.
func TestNextRevision(t *testing.T) {
	cases := []struct{ in, want string }{
		{"1", "2"},
		{"9", "10"},
		{"Z", "AA"},
		{"AZ", "BA"},
		{"A1", "A2"},
	}
	for _, tc := range cases {
		got, err := NextRevision(tc.in)
		require.NoError(t, err, "NextRevision(%q)", tc.in)
		assert.Equal(t, tc.want, got, "NextRevision(%q)", tc.in)
	}
}

func TestNextRevisionOverflow(t *testing.T) {
	_, err := NextRevision("9999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, plmerr.ErrValidation))
}

func TestPadding(t *testing.T) {
	assert.Equal(t, "0001", PadItem(1, 4))
	assert.Equal(t, "012345", PadItem(12345, 6))
	assert.Equal(t, "01", PadVariation(1))
	assert.Equal(t, "10", PadVariation(10))
}

func ExampleFormat() {
	fmt.Println(Format("500", "0001", "01"))
	// Output: 500-0001-01
}
