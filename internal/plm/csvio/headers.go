package csvio

import (
	"strings"

	"github.com/bomwerk/bomwerk/internal/plm/attr"
	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
)

// CSVHeader is one logical column: a canonical name plus its accepted
// synonyms. Matching is case-insensitive.
type CSVHeader struct {
	Name     string
	Synonyms []string
}

// matches reports whether name is the canonical or any synonym.
func (h *CSVHeader) matches(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == h.Name {
		return true
	}
	for _, s := range h.Synonyms {
		if name == s {
			return true
		}
	}
	return false
}

// CSVHeaders is an ordered column schema with its header assertions.
// Assertions are reverse-polish token lists evaluated against a header
// row; see ValidateAssertions.
type CSVHeaders struct {
	Headers    []CSVHeader
	Assertions [][]string
}

// find returns the header that owns name, canonical or synonym.
func (s *CSVHeaders) find(name string) *CSVHeader {
	for i := range s.Headers {
		if s.Headers[i].matches(name) {
			return &s.Headers[i]
		}
	}
	return nil
}

// Synonyms returns the canonical name plus all synonyms of the header
// owning name, nil when unknown.
func (s *CSVHeaders) Synonyms(name string) []string {
	h := s.find(name)
	if h == nil {
		return nil
	}
	out := make([]string, 0, len(h.Synonyms)+1)
	out = append(out, h.Name)
	out = append(out, h.Synonyms...)
	return out
}

// GetDefault maps a synonym (or the canonical itself) to the canonical
// name, "" when unknown.
func (s *CSVHeaders) GetDefault(name string) string {
	h := s.find(name)
	if h == nil {
		return ""
	}
	return h.Name
}

// CountMatches counts the columns in row that match name by synonym.
func (s *CSVHeaders) CountMatches(row []string, name string) int {
	h := s.find(name)
	if h == nil {
		return 0
	}
	count := 0
	for _, col := range row {
		if h.matches(col) {
			count++
		}
	}
	return count
}

// ValidateNames rejects a header row containing columns outside the
// schema.
func (s *CSVHeaders) ValidateNames(row []string) error {
	for _, col := range row {
		col = strings.ToLower(strings.TrimSpace(col))
		if col == "" {
			continue
		}
		if s.find(col) == nil {
			return plmerr.Validationf("unknown column %q", col)
		}
	}
	return nil
}

// Assertion operators. Operands push their occurrence count; `in` requires
// exactly one match, `mex` at most one across a header's synonym group,
// `and`/`or` combine truth values. Evaluation is strictly left-to-right
// with no precedence and the failure of the final operator is the only one
// reported.
type assertValue struct {
	ok    bool
	count int
}

func (v assertValue) truthy() bool {
	return v.ok
}

// ValidateAssertions evaluates the schema's assertions against row. A
// malformed assertion is a validation error regardless of the row.
func (s *CSVHeaders) ValidateAssertions(row []string) error {
	for _, tokens := range s.Assertions {
		if err := s.evalAssertion(row, tokens); err != nil {
			return err
		}
	}
	return nil
}

func (s *CSVHeaders) evalAssertion(row []string, tokens []string) error {
	if len(tokens) == 0 {
		return plmerr.Validationf("empty header assertion")
	}
	var stack []assertValue
	pop := func() (assertValue, bool) {
		if len(stack) == 0 {
			return assertValue{}, false
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, true
	}

	for i, tok := range tokens {
		final := i == len(tokens)-1
		switch tok {
		case "in":
			v, ok := pop()
			if !ok {
				return plmerr.Validationf("malformed header assertion %q", strings.Join(tokens, " "))
			}
			result := assertValue{ok: v.count == 1, count: v.count}
			if final && !result.ok {
				return plmerr.Validationf("header %s must appear exactly once", tokens[0])
			}
			stack = append(stack, result)
		case "mex":
			v, ok := pop()
			if !ok {
				return plmerr.Validationf("malformed header assertion %q", strings.Join(tokens, " "))
			}
			result := assertValue{ok: v.count <= 1, count: v.count}
			if final && !result.ok {
				return plmerr.Validationf("columns %s are mutually exclusive", strings.Join(s.Synonyms(tokens[0]), ", "))
			}
			stack = append(stack, result)
		case "and", "or":
			b, okB := pop()
			a, okA := pop()
			if !okA || !okB {
				return plmerr.Validationf("malformed header assertion %q", strings.Join(tokens, " "))
			}
			var result assertValue
			if tok == "and" {
				result = assertValue{ok: a.truthy() && b.truthy(), count: a.count + b.count}
			} else {
				result = assertValue{ok: a.truthy() || b.truthy(), count: a.count + b.count}
			}
			if final && !result.ok {
				operands := assertionOperands(tokens)
				return plmerr.Validationf("one of the columns %s is required", strings.Join(operands, ", "))
			}
			stack = append(stack, result)
		default:
			if s.find(tok) == nil {
				return plmerr.Validationf("header assertion names unknown column %q", tok)
			}
			count := s.CountMatches(row, tok)
			stack = append(stack, assertValue{ok: count >= 1, count: count})
			if final {
				return plmerr.Validationf("header assertion %q must end in an operator", strings.Join(tokens, " "))
			}
		}
	}
	if len(stack) != 1 {
		return plmerr.Validationf("malformed header assertion %q", strings.Join(tokens, " "))
	}
	return nil
}

func assertionOperands(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		switch tok {
		case "in", "mex", "and", "or":
		default:
			out = append(out, tok)
		}
	}
	return out
}

// PartClassesHeaders is the schema for the part-classes import. Comment
// and description are the same logical column; a file carrying both is
// rejected.
func PartClassesHeaders() *CSVHeaders {
	return &CSVHeaders{
		Headers: []CSVHeader{
			{Name: "code"},
			{Name: "name"},
			{Name: "comment", Synonyms: []string{"description"}},
			{Name: "mouser_enabled", Synonyms: []string{"mouser"}},
		},
		Assertions: [][]string{
			{"code", "in"},
			{"name", "in"},
			{"comment", "mex"},
		},
	}
}

// PartsHeaders is the schema for the parts import: identity and sourcing
// columns plus one column (and a units partner) per specification
// attribute.
func PartsHeaders() *CSVHeaders {
	headers := []CSVHeader{
		{Name: "part_number", Synonyms: []string{"part number", "part no", "pn"}},
		{Name: "part_class", Synonyms: []string{"class", "part category"}},
		{Name: "revision", Synonyms: []string{"rev"}},
		{Name: "description", Synonyms: []string{"desc", "part description"}},
		{Name: "manufacturer_name", Synonyms: []string{"manufacturer", "mfg", "mfg name", "manufacturer name"}},
		{Name: "manufacturer_part_number", Synonyms: []string{"mpn", "mfg part number", "mfg part no", "manufacturer part number"}},
	}
	for _, f := range attr.Fields {
		if f.Name == "value" {
			headers = append(headers,
				CSVHeader{Name: "value", Synonyms: []string{"val"}},
				CSVHeader{Name: "value_units", Synonyms: []string{"value units"}})
			continue
		}
		headers = append(headers, CSVHeader{Name: f.Name, Synonyms: []string{strings.ReplaceAll(f.Name, "_", " ")}})
		if f.UnitsName != "" {
			headers = append(headers, CSVHeader{Name: f.UnitsName, Synonyms: []string{strings.ReplaceAll(f.UnitsName, "_", " ")}})
		}
	}
	return &CSVHeaders{
		Headers: headers,
		Assertions: [][]string{
			{"part_number", "part_class", "or"},
		},
	}
}

// BomHeaders is the schema for flat BOM imports. Level is recognized only
// so an indented export gets a targeted rejection instead of an
// unknown-column error.
func BomHeaders() *CSVHeaders {
	return &CSVHeaders{
		Headers: []CSVHeader{
			{Name: "level", Synonyms: []string{"indent"}},
			{Name: "part_number", Synonyms: []string{"part number", "part no", "pn"}},
			{Name: "manufacturer_part_number", Synonyms: []string{"mpn", "mfg part number", "manufacturer part number"}},
			{Name: "manufacturer_name", Synonyms: []string{"manufacturer", "mfg", "mfg name"}},
			{Name: "quantity", Synonyms: []string{"qty", "count"}},
			{Name: "do_not_load", Synonyms: []string{"dnl", "dnp", "do not load"}},
			{Name: "references", Synonyms: []string{"reference", "designator", "designators", "ref"}},
			{Name: "revision", Synonyms: []string{"rev"}},
		},
		Assertions: [][]string{
			{"part_number", "manufacturer_part_number", "or"},
			{"quantity", "in"},
		},
	}
}
