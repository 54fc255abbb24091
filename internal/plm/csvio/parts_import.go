package csvio

import (
	"context"
	"strconv"
	"strings"

	"github.com/bomwerk/bomwerk/internal/plm/attr"
	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/partnumber"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"github.com/bomwerk/bomwerk/internal/plm/service"
)

// PartsImporter ingests parts-list CSV files: identity, one revision's
// specification attributes, and optional manufacturer sourcing per row.
type PartsImporter struct {
	parts     *service.PartService
	sourcing  *service.SourcingService
	classRepo *repository.PartClassRepository
}

func NewPartsImporter(parts *service.PartService, sourcing *service.SourcingService,
	classRepo *repository.PartClassRepository) *PartsImporter {
	return &PartsImporter{parts: parts, sourcing: sourcing, classRepo: classRepo}
}

// Import creates one part with its first revision per valid row. Invalid
// choice values are warnings; everything else that fails skips the row.
func (im *PartsImporter) Import(ctx context.Context, org *entity.Organization, data []byte) (*ImportResult, error) {
	schema := PartsHeaders()
	header, body, err := ReadTable(data)
	if err != nil {
		return nil, err
	}
	if err := schema.ValidateNames(header); err != nil {
		return nil, err
	}
	if err := schema.ValidateAssertions(header); err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i, cells := range body {
		line := i + 2
		r := &row{schema: schema, header: header, cells: cells}
		im.importRow(ctx, org, r, line, result)
	}
	return result, nil
}

func (im *PartsImporter) importRow(ctx context.Context, org *entity.Organization, r *row, line int, result *ImportResult) {
	spec := &entity.PartRevision{Description: r.get("description")}
	if !im.fillSpec(r, spec, line, result) {
		return
	}

	input := &service.CreatePartInput{Revision: r.get("revision")}
	if !im.fillIdentity(ctx, org, r, input, line, result) {
		return
	}
	input.Spec = spec

	part, _, warnings, err := im.parts.CreatePart(ctx, org, input)
	if err != nil {
		result.errorf("row %d: %v", line, err)
		return
	}
	for _, w := range warnings {
		result.warnf("row %d: %s", line, w)
	}

	if mpn := r.get("manufacturer_part_number"); mpn != "" {
		mfgName := r.get("manufacturer_name")
		if mfgName == "" {
			mfgName = org.Name
		}
		m, err := im.sourcing.GetOrCreateManufacturer(ctx, org.ID, mfgName)
		if err != nil {
			result.warnf("row %d: manufacturer %q: %v", line, mfgName, err)
		} else {
			mp, err := im.sourcing.AddManufacturerPart(ctx, part.ID, mpn, &m.ID)
			if err != nil {
				result.warnf("row %d: manufacturer part %q: %v", line, mpn, err)
			} else if err := im.parts.SetPrimaryManufacturerPart(ctx, part, mp.ID); err != nil {
				result.warnf("row %d: primary manufacturer part: %v", line, err)
			}
		}
	}
	result.successf("row %d: created part %s", line, part.FullNumber())
}

// fillIdentity resolves the class/item/variation segments from either a
// rendered part number or a part_class cell. False means the row was
// rejected.
func (im *PartsImporter) fillIdentity(ctx context.Context, org *entity.Organization, r *row,
	input *service.CreatePartInput, line int, result *ImportResult) bool {
	pn := r.get("part_number")

	if org.NumberScheme == entity.NumberSchemeIntelligent {
		if pn == "" {
			result.errorf("row %d: part_number is required in the intelligent scheme", line)
			return false
		}
		input.NumberItem = pn
		return true
	}

	if pn != "" {
		n, err := partnumber.ParsePartial(pn, org.NumberItemLen, org.NumberVariationLen)
		if err != nil {
			result.errorf("row %d: %v", line, err)
			return false
		}
		class, err := im.classRepo.FindByCode(ctx, org.ID, *n.Class)
		if err != nil {
			result.errorf("row %d: unknown part class %s", line, *n.Class)
			return false
		}
		input.ClassID = class.ID
		if n.Item != nil {
			input.NumberItem = *n.Item
		}
		if n.Variation != nil {
			input.NumberVariation = *n.Variation
		}
		return true
	}

	className := r.get("part_class")
	if className == "" {
		result.errorf("row %d: part_number or part_class is required", line)
		return false
	}
	class, err := im.resolveClass(ctx, org.ID, className)
	if err != nil {
		result.errorf("row %d: unknown part class %q", line, className)
		return false
	}
	input.ClassID = class.ID
	return true
}

// resolveClass accepts a class code or a class name.
func (im *PartsImporter) resolveClass(ctx context.Context, orgID, name string) (*entity.PartClass, error) {
	if code, err := service.NormalizeClassCode(name); err == nil {
		if class, err := im.classRepo.FindByCode(ctx, orgID, code); err == nil {
			return class, nil
		}
	}
	return im.classRepo.FindByName(ctx, orgID, name)
}

// fillSpec walks the attribute registry and sets every column present in
// the row. Unparsable numbers reject the row; choice validity is checked
// later by the create path and surfaces as warnings.
func (im *PartsImporter) fillSpec(r *row, spec *entity.PartRevision, line int, result *ImportResult) bool {
	for _, f := range attr.Fields {
		cell := r.get(f.Name)
		if cell != "" {
			switch f.Kind {
			case attr.KindText, attr.KindChoice:
				if f.Name == "tolerance" {
					cell = strings.TrimSuffix(cell, "%")
				}
				*f.Text(spec) = cell
			case attr.KindInteger:
				n, err := strconv.Atoi(cell)
				if err != nil {
					result.errorf("row %d: %s %q is not an integer", line, f.Name, cell)
					return false
				}
				*f.Int(spec) = &n
			case attr.KindNumeric:
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					result.errorf("row %d: %s %q is not a number", line, f.Name, cell)
					return false
				}
				*f.Num(spec) = &v
			}
		}
		if f.UnitsName != "" {
			if u := r.get(f.UnitsName); u != "" {
				*f.Units(spec) = u
			}
		}
	}
	return true
}
