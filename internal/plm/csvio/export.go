package csvio

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"github.com/bomwerk/bomwerk/internal/plm/service"
)

// Exporter renders indented and flat BOM views as CSV or XLSX, optionally
// augmented with repeated manufacturer/seller column groups.
type Exporter struct {
	assembly     *service.AssemblyService
	sourcingRepo *repository.SourcingRepository
}

func NewExporter(assembly *service.AssemblyService, sourcingRepo *repository.SourcingRepository) *Exporter {
	return &Exporter{assembly: assembly, sourcingRepo: sourcingRepo}
}

var baseColumns = []string{"part_number", "revision", "quantity", "do_not_load", "references", "synopsis"}

var sellerGroupColumns = []string{
	"manufacturer_name", "manufacturer_part_number", "seller",
	"unit_cost", "moq", "mpq", "nre", "lead_time_days",
}

// offer is one flattened manufacturer/seller pairing of a part.
type offer struct {
	manufacturer string
	mpn          string
	seller       string
	sp           *entity.SellerPart
}

func (e *Exporter) offersForPart(ctx context.Context, partID string) ([]offer, error) {
	mps, err := e.sourcingRepo.ListManufacturerPartsByPart(ctx, partID)
	if err != nil {
		return nil, err
	}
	var offers []offer
	for i := range mps {
		mp := &mps[i]
		mfg := ""
		if mp.Manufacturer != nil {
			mfg = mp.Manufacturer.Name
		}
		if len(mp.SellerParts) == 0 {
			offers = append(offers, offer{manufacturer: mfg, mpn: mp.ManufacturerPartNumber})
			continue
		}
		for j := range mp.SellerParts {
			sp := &mp.SellerParts[j]
			seller := ""
			if sp.Seller != nil {
				seller = sp.Seller.Name
			}
			offers = append(offers, offer{manufacturer: mfg, mpn: mp.ManufacturerPartNumber, seller: seller, sp: sp})
		}
	}
	return offers, nil
}

func (o *offer) cells() []string {
	cells := []string{o.manufacturer, o.mpn, o.seller}
	if o.sp == nil {
		return append(cells, "", "", "", "", "")
	}
	return append(cells,
		strconv.FormatFloat(o.sp.UnitCost, 'f', -1, 64),
		strconv.Itoa(o.sp.MinimumOrderQuantity),
		strconv.Itoa(o.sp.MinimumPackQuantity),
		strconv.FormatFloat(o.sp.NreCost, 'f', -1, 64),
		strconv.Itoa(o.sp.LeadTimeDays),
	)
}

// exportLine is one output row before sourcing padding.
type exportLine struct {
	level  int
	cells  []string
	offers []offer
}

func lineFor(part *entity.Part, rev *entity.PartRevision, qty int, doNotLoad bool, refs string) []string {
	number, synopsis, revision := "", "", ""
	if part != nil {
		number = part.FullNumber()
	}
	if rev != nil {
		revision = rev.Revision
		synopsis = rev.DisplayableSynopsis
	}
	dnl := ""
	if doNotLoad {
		dnl = "y"
	}
	return []string{number, revision, strconv.Itoa(qty), dnl, refs, synopsis}
}

func (e *Exporter) indentedLines(ctx context.Context, root *entity.PartRevision, qty int, withSourcing bool) ([]exportLine, error) {
	// A tripped depth ceiling still exports the records walked so far.
	records, err := e.assembly.IndentedBom(ctx, root, qty)
	if err != nil && !errors.Is(err, plmerr.ErrGraphRecursion) {
		return nil, err
	}
	lines := make([]exportLine, 0, len(records))
	for i := range records {
		rec := &records[i]
		line := exportLine{
			level: rec.IndentLevel,
			cells: lineFor(rec.Part, rec.PartRevision, rec.Quantity, rec.DoNotLoad, rec.Reference),
		}
		if withSourcing && rec.Part != nil {
			if line.offers, err = e.offersForPart(ctx, rec.Part.ID); err != nil {
				return nil, err
			}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (e *Exporter) flatLines(ctx context.Context, root *entity.PartRevision, qty int, withSourcing bool) ([]exportLine, error) {
	items, err := e.assembly.FlatBom(ctx, root, qty)
	if err != nil && !errors.Is(err, plmerr.ErrGraphRecursion) {
		return nil, err
	}
	lines := make([]exportLine, 0, len(items))
	for i := range items {
		item := &items[i]
		line := exportLine{
			cells: lineFor(item.Part, item.PartRevision, item.Quantity, false, item.References),
		}
		if withSourcing && item.Part != nil {
			if line.offers, err = e.offersForPart(ctx, item.Part.ID); err != nil {
				return nil, err
			}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// table pads every line's sourcing groups to the widest line so primary
// columns stay aligned, and numbers the repeated groups _1, _2, ….
func table(lines []exportLine, withLevel bool) [][]string {
	maxOffers := 0
	for i := range lines {
		if n := len(lines[i].offers); n > maxOffers {
			maxOffers = n
		}
	}

	header := []string{}
	if withLevel {
		header = append(header, "level")
	}
	header = append(header, baseColumns...)
	for g := 1; g <= maxOffers; g++ {
		for _, col := range sellerGroupColumns {
			header = append(header, fmt.Sprintf("%s_%d", col, g))
		}
	}

	rows := [][]string{header}
	for i := range lines {
		line := &lines[i]
		row := []string{}
		if withLevel {
			row = append(row, strconv.Itoa(line.level))
		}
		row = append(row, line.cells...)
		for g := 0; g < maxOffers; g++ {
			if g < len(line.offers) {
				row = append(row, line.offers[g].cells()...)
			} else {
				row = append(row, make([]string, len(sellerGroupColumns))...)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// IndentedCSV renders the indented BOM with a leading level column.
func (e *Exporter) IndentedCSV(ctx context.Context, root *entity.PartRevision, qty int, withSourcing bool) ([]byte, error) {
	lines, err := e.indentedLines(ctx, root, qty, withSourcing)
	if err != nil {
		return nil, err
	}
	return writeCSV(table(lines, true))
}

// FlatCSV renders the deduplicated flat BOM.
func (e *Exporter) FlatCSV(ctx context.Context, root *entity.PartRevision, qty int, withSourcing bool) ([]byte, error) {
	lines, err := e.flatLines(ctx, root, qty, withSourcing)
	if err != nil {
		return nil, err
	}
	return writeCSV(table(lines, false))
}
