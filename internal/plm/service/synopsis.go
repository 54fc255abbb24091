package service

import (
	"strconv"
	"strings"

	"github.com/bomwerk/bomwerk/internal/plm/attr"
	"github.com/bomwerk/bomwerk/internal/plm/entity"
)

// The synopsis builder renders a revision's specification attributes into a
// single line, in registry order. The display flavor uses unit glyphs
// ("kΩ", "μF"); the search flavor uses canonical unit codes so text search
// does not depend on the user's keyboard. Empty fields are skipped and
// fields are joined with a single space.

// fmtNum renders a numeric attribute with trailing zeros stripped. The
// shortest round-trip representation caps well below 15 fractional digits.
func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildSynopses returns the (display, search) synopsis pair for a revision.
func BuildSynopses(r *entity.PartRevision) (string, string) {
	return buildSynopsis(r, true), buildSynopsis(r, false)
}

func buildSynopsis(r *entity.PartRevision, display bool) string {
	unit := func(choices []attr.Choice, code string) string {
		if display {
			return attr.Glyph(choices, code)
		}
		if c, ok := attr.FindChoice(choices, code); ok {
			return c.Code
		}
		return code
	}
	num := func(f attr.Field) string {
		v := *f.Num(r)
		if v == nil {
			return ""
		}
		return fmtNum(*v) + unit(f.Choices, *f.Units(r))
	}
	field := func(name string) attr.Field {
		f, _ := attr.ByName(name)
		return f
	}

	var parts []string
	add := func(s string) {
		if s != "" {
			parts = append(parts, s)
		}
	}

	add(num(field("value")))
	add(strings.TrimSpace(r.Description))
	if tol := strings.TrimSuffix(strings.TrimSpace(r.Tolerance), "%"); tol != "" {
		add(tol + "%")
	}
	add(strings.TrimSpace(r.Attribute))
	add(r.Package)
	if r.PinCount != nil {
		add(strconv.Itoa(*r.PinCount) + " pins")
	}
	add(num(field("frequency")))
	add(num(field("wavelength")))
	add(num(field("memory")))
	add(r.Interface)
	if s := num(field("supply_voltage")); s != "" {
		add(s + " supply")
	}
	for _, name := range []string{"temperature_rating", "power_rating", "voltage_rating", "current_rating"} {
		if s := num(field(name)); s != "" {
			add(s + " rating")
		}
	}
	add(r.Material)
	add(r.Color)
	add(r.Finish)
	for _, dim := range []struct{ name, prefix string }{
		{"length", "L"}, {"width", "W"}, {"height", "H"},
	} {
		if s := num(field(dim.name)); s != "" {
			add(dim.prefix + s)
		}
	}
	add(num(field("weight")))

	return strings.Join(parts, " ")
}
