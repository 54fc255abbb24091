package csvio

import (
	"testing"

	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderSynonyms(t *testing.T) {
	s := BomHeaders()

	assert.Equal(t, "quantity", s.GetDefault("qty"))
	assert.Equal(t, "quantity", s.GetDefault("Count"))
	assert.Equal(t, "quantity", s.GetDefault(" QTY "))
	assert.Equal(t, "", s.GetDefault("price"))

	assert.Equal(t, []string{"do_not_load", "dnl", "dnp", "do not load"}, s.Synonyms("dnp"))
	assert.Nil(t, s.Synonyms("nope"))

	row := []string{"part number", "Qty", "count"}
	assert.Equal(t, 2, s.CountMatches(row, "quantity"))
	assert.Equal(t, 1, s.CountMatches(row, "part_number"))
}

func TestValidateNamesRejectsUnknownColumns(t *testing.T) {
	s := BomHeaders()
	assert.NoError(t, s.ValidateNames([]string{"part_number", "qty", ""}))

	err := s.ValidateNames([]string{"part_number", "unit price"})
	require.ErrorIs(t, err, plmerr.ErrValidation)
	assert.Contains(t, err.Error(), "unit price")
}

func TestAssertionExactlyOnce(t *testing.T) {
	s := BomHeaders()

	assert.NoError(t, s.ValidateAssertions([]string{"part_number", "quantity"}))

	// Missing entirely.
	err := s.ValidateAssertions([]string{"part_number"})
	assert.ErrorIs(t, err, plmerr.ErrValidation)

	// Present twice under different synonyms.
	err = s.ValidateAssertions([]string{"part_number", "qty", "count"})
	assert.ErrorIs(t, err, plmerr.ErrValidation)
}

func TestAssertionMutuallyExclusive(t *testing.T) {
	s := PartClassesHeaders()

	assert.NoError(t, s.ValidateAssertions([]string{"code", "name", "comment"}))
	assert.NoError(t, s.ValidateAssertions([]string{"code", "name", "description"}))

	err := s.ValidateAssertions([]string{"code", "name", "comment", "description"})
	require.ErrorIs(t, err, plmerr.ErrValidation)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestAssertionOr(t *testing.T) {
	s := PartsHeaders()

	assert.NoError(t, s.ValidateAssertions([]string{"part_number", "description"}))
	assert.NoError(t, s.ValidateAssertions([]string{"part_class", "description"}))
	assert.NoError(t, s.ValidateAssertions([]string{"part_number", "part_class"}))

	err := s.ValidateAssertions([]string{"description", "revision"})
	require.ErrorIs(t, err, plmerr.ErrValidation)
	assert.Contains(t, err.Error(), "part_number")
}

func TestMalformedAssertions(t *testing.T) {
	s := &CSVHeaders{
		Headers: []CSVHeader{{Name: "a"}, {Name: "b"}},
	}
	row := []string{"a", "b"}

	cases := [][]string{
		{},                      // empty
		{"a"},                   // ends in an operand
		{"in"},                  // operator with empty stack
		{"a", "and"},            // binary operator with one operand
		{"a", "b", "c", "or"},   // unknown column
		{"a", "b", "in"},        // leftover operand on the stack
	}
	for _, tokens := range cases {
		s.Assertions = [][]string{tokens}
		assert.ErrorIs(t, s.ValidateAssertions(row), plmerr.ErrValidation, "tokens %v", tokens)
	}
}
