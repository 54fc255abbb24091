package csvio

import (
	"context"
	"strconv"
	"strings"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"github.com/bomwerk/bomwerk/internal/plm/service"
)

// BomImporter ingests flat BOM CSV files into one pre-identified parent
// revision's assembly.
type BomImporter struct {
	parts        *service.PartService
	assembly     *service.AssemblyService
	revisionRepo *repository.RevisionRepository
	sourcingRepo *repository.SourcingRepository
}

func NewBomImporter(parts *service.PartService, assembly *service.AssemblyService,
	revisionRepo *repository.RevisionRepository, sourcingRepo *repository.SourcingRepository) *BomImporter {
	return &BomImporter{parts: parts, assembly: assembly, revisionRepo: revisionRepo, sourcingRepo: sourcingRepo}
}

// Import adds one subpart line per valid row under parent. Rows resolve
// their part by part number, falling back to manufacturer part number.
// Self-reference and indirect cycles reject the row and leave the parent
// unchanged. Duplicate reference designators across the final BOM are
// reported once as a warning.
func (im *BomImporter) Import(ctx context.Context, org *entity.Organization, parent *entity.PartRevision, data []byte) (*ImportResult, error) {
	schema := BomHeaders()
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
	// Every row attaches directly under parent, so an indented export
	// would flatten into nonsense. Only flat files are accepted.
	if schema.CountMatches(header, "level") > 0 {
		return nil, plmerr.Validationf("level column is not supported: re-import a flat export, not an indented one")
	}

	result := &ImportResult{}
	for i, cells := range body {
		line := i + 2
		r := &row{schema: schema, header: header, cells: cells}
		im.importRow(ctx, org, parent, r, line, result)
	}

	subparts, err := im.assembly.Subparts(ctx, parent)
	if err != nil {
		return result, err
	}
	if dups := service.DuplicateReferences(subparts); len(dups) > 0 {
		result.warnf("duplicate reference designators: %s", strings.Join(dups, ", "))
	}
	return result, nil
}

func (im *BomImporter) importRow(ctx context.Context, org *entity.Organization, parent *entity.PartRevision,
	r *row, line int, result *ImportResult) {
	part, err := im.resolvePart(ctx, org, r)
	if err != nil {
		result.errorf("row %d: %v", line, err)
		return
	}

	count := 1
	if qty := r.get("quantity"); qty != "" {
		if count, err = strconv.Atoi(qty); err != nil {
			result.errorf("row %d: quantity %q is not an integer", line, qty)
			return
		}
	}

	rev, err := im.resolveRevision(ctx, part, r.get("revision"))
	if err != nil {
		result.errorf("row %d: %v", line, err)
		return
	}

	input := &service.SubpartInput{
		PartRevisionID: rev.ID,
		Count:          count,
		Reference:      r.get("references"),
		DoNotLoad:      truthy(r.get("do_not_load")),
	}
	if _, err := im.assembly.AddSubpart(ctx, parent, input); err != nil {
		result.errorf("row %d: %v", line, err)
		return
	}
	result.successf("row %d: added %s", line, part.FullNumber())
}

func (im *BomImporter) resolvePart(ctx context.Context, org *entity.Organization, r *row) (*entity.Part, error) {
	if pn := r.get("part_number"); pn != "" {
		return im.parts.GetPartByNumber(ctx, org, pn)
	}
	mpn := r.get("manufacturer_part_number")
	if mpn == "" {
		return nil, plmerr.Validationf("part_number or manufacturer_part_number is required")
	}
	mp, err := im.sourcingRepo.FindManufacturerPartByMPN(ctx, org.ID, mpn)
	if err != nil {
		return nil, plmerr.NotFoundf("manufacturer part number %q", mpn)
	}
	return im.parts.GetPart(ctx, org.ID, mp.PartID)
}

// resolveRevision picks the requested revision string, defaulting to the
// part's latest.
func (im *BomImporter) resolveRevision(ctx context.Context, part *entity.Part, revision string) (*entity.PartRevision, error) {
	if revision == "" {
		return im.revisionRepo.FindLatestByPart(ctx, part.ID)
	}
	return im.revisionRepo.FindByPartAndRevision(ctx, part.ID, revision)
}
