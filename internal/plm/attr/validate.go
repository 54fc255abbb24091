package attr

import (
	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
)

// CheckPairs validates every X / X_units pairing on a revision: a value
// without its units (or units without a value) is an error. Invalid unit
// codes are reported separately as warnings, not here.
func CheckPairs(r *entity.PartRevision) []error {
	var errs []error
	for _, f := range Fields {
		if f.Kind != KindNumeric {
			continue
		}
		val := *f.Num(r)
		u := *f.Units(r)
		if val != nil && u == "" {
			errs = append(errs, plmerr.Validationf("%s is set but %s is empty", f.Name, f.UnitsName))
		}
		if val == nil && u != "" {
			errs = append(errs, plmerr.Validationf("%s is set but %s is empty", f.UnitsName, f.Name))
		}
	}
	return errs
}

// CheckChoices reports unit codes and choice values not present in their
// field's choice set. Callers surface these as warnings.
func CheckChoices(r *entity.PartRevision) []string {
	var warns []string
	for _, f := range Fields {
		switch f.Kind {
		case KindNumeric:
			if u := *f.Units(r); u != "" {
				if _, ok := FindChoice(f.Choices, u); !ok {
					warns = append(warns, f.UnitsName+" has unrecognized unit "+u)
				}
			}
		case KindChoice:
			if v := *f.Text(r); v != "" {
				if _, ok := FindChoice(f.Choices, v); !ok {
					warns = append(warns, f.Name+" has unrecognized value "+v)
				}
			}
		}
	}
	return warns
}
