package csvio

import (
	"context"
	"fmt"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "BOM"

func writeXLSX(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("write xlsx: %w", err)
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write xlsx: %w", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// IndentedXLSX renders the indented BOM as a spreadsheet.
func (e *Exporter) IndentedXLSX(ctx context.Context, root *entity.PartRevision, qty int, withSourcing bool) ([]byte, error) {
	lines, err := e.indentedLines(ctx, root, qty, withSourcing)
	if err != nil {
		return nil, err
	}
	return writeXLSX(table(lines, true))
}

// FlatXLSX renders the flat BOM as a spreadsheet.
func (e *Exporter) FlatXLSX(ctx context.Context, root *entity.PartRevision, qty int, withSourcing bool) ([]byte, error) {
	lines, err := e.flatLines(ctx, root, qty, withSourcing)
	if err != nil {
		return nil, err
	}
	return writeXLSX(table(lines, false))
}
