package csvio

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func exportFixture(t *testing.T) (*Exporter, *exportFixtureData) {
	env := newImportEnv(t)
	class := env.class(t, "500", "Electronics")
	ctx := context.Background()

	top, topRev := env.part(t, class.ID, "top assembly")
	res, resRev := env.part(t, class.ID, "resistor")

	_, err := env.svcs.Assembly.AddSubpart(ctx, topRev, &service.SubpartInput{
		PartRevisionID: resRev.ID,
		Count:          2,
		Reference:      "R1, R2",
	})
	require.NoError(t, err)

	m, err := env.svcs.Sourcing.GetOrCreateManufacturer(ctx, env.org.ID, "Yageo")
	require.NoError(t, err)
	mp, err := env.svcs.Sourcing.AddManufacturerPart(ctx, res.ID, "RC0603-10K", &m.ID)
	require.NoError(t, err)
	for _, seller := range []string{"Digi-Key", "Mouser"} {
		s, err := env.svcs.Sourcing.GetOrCreateSeller(ctx, env.org.ID, seller)
		require.NoError(t, err)
		_, err = env.svcs.Sourcing.AddSellerPart(ctx, s.ID, mp.ID, &service.SellerPartInput{
			MinimumOrderQuantity: 1, UnitCost: 0.10,
		})
		require.NoError(t, err)
	}

	exporter := NewExporter(env.svcs.Assembly, env.repos.Sourcing)
	return exporter, &exportFixtureData{top: top.FullNumber(), res: res.FullNumber(), topRev: topRev}
}

type exportFixtureData struct {
	top    string
	res    string
	topRev *entity.PartRevision
}

func TestIndentedCSVExport(t *testing.T) {
	exporter, fx := exportFixture(t)

	data, err := exporter.IndentedCSV(context.Background(), fx.topRev, 1, false)
	require.NoError(t, err)
	rows := parseCSV(t, data)
	require.Len(t, rows, 3)

	assert.Equal(t, append([]string{"level"}, baseColumns...), rows[0])
	assert.Equal(t, []string{"0", fx.top, "1", "1", "", "", "top assembly"}, rows[1])
	assert.Equal(t, []string{"1", fx.res, "1", "2", "", "R1, R2", "resistor"}, rows[2])
}

func TestFlatCSVExportWithSourcing(t *testing.T) {
	exporter, fx := exportFixture(t)

	data, err := exporter.FlatCSV(context.Background(), fx.topRev, 1, true)
	require.NoError(t, err)
	rows := parseCSV(t, data)
	require.Len(t, rows, 3)

	// Two offers widen the table by two numbered seller groups.
	header := rows[0]
	require.Len(t, header, len(baseColumns)+2*len(sellerGroupColumns))
	assert.Equal(t, "manufacturer_name_1", header[len(baseColumns)])
	assert.Equal(t, "manufacturer_name_2", header[len(baseColumns)+len(sellerGroupColumns)])

	// The unsourced top assembly is padded out to the full width.
	for _, row := range rows[1:] {
		assert.Len(t, row, len(header))
	}

	// Flat lines sort by designator; the referenced resistor leads.
	resRow := rows[1]
	assert.Equal(t, fx.res, resRow[0])
	assert.Equal(t, "Yageo", resRow[len(baseColumns)])
	assert.Equal(t, "RC0603-10K", resRow[len(baseColumns)+1])
	assert.Equal(t, "0.1", resRow[len(baseColumns)+3])
}

func TestIndentedXLSXExport(t *testing.T) {
	exporter, fx := exportFixture(t)

	data, err := exporter.IndentedXLSX(context.Background(), fx.topRev, 1, false)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "level", rows[0][0])
	assert.Equal(t, fx.res, rows[2][1])
}

func TestExportServesTruncatedDeepBom(t *testing.T) {
	env := newImportEnv(t)
	class := env.class(t, "200", "Assembly")
	exporter := NewExporter(env.svcs.Assembly, env.repos.Sourcing)
	ctx := context.Background()

	_, parent := env.part(t, class.ID, "level 0")
	root := parent
	for i := 1; i <= service.MaxBomDepth; i++ {
		_, child := env.part(t, class.ID, "level")
		_, err := env.svcs.Assembly.AddSubpart(ctx, parent, &service.SubpartInput{
			PartRevisionID: child.ID,
			Count:          1,
		})
		require.NoError(t, err)
		parent = child
	}

	// The depth ceiling trips mid-walk; the export still carries every
	// line gathered before the trip.
	out, err := exporter.IndentedCSV(ctx, root, 1, false)
	require.NoError(t, err)
	rows := parseCSV(t, out)
	assert.Len(t, rows, service.MaxBomDepth+2)

	out, err = exporter.FlatCSV(ctx, root, 1, false)
	require.NoError(t, err)
	rows = parseCSV(t, out)
	assert.Len(t, rows, service.MaxBomDepth+2)
}
