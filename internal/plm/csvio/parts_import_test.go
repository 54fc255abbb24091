package csvio

import (
	"context"
	"testing"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartsImportByClassName(t *testing.T) {
	env := newImportEnv(t)
	env.class(t, "500", "Resistor")
	im := NewPartsImporter(env.svcs.Part, env.svcs.Sourcing, env.repos.PartClass)
	ctx := context.Background()

	data := []byte("part_class,description,value,value_units,tolerance\n" +
		"Resistor,chip resistor,10,kohms,5%\n" +
		"Resistor,chip resistor,4.7,kohms,\n" +
		"Diodes,unknown class,,,\n")

	result, err := im.Import(ctx, env.org, data)
	require.NoError(t, err)
	assert.Len(t, result.Successes, 2)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "row 4")

	part, err := env.svcs.Part.GetPartByNumber(ctx, env.org, "500-0001-01")
	require.NoError(t, err)
	rev, err := env.svcs.Revision.Latest(ctx, part.ID)
	require.NoError(t, err)
	require.NotNil(t, rev.Value)
	assert.InDelta(t, 10.0, *rev.Value, 1e-9)
	assert.Equal(t, "kohms", rev.ValueUnits)
	assert.Equal(t, "5", rev.Tolerance)
}

func TestPartsImportByPartNumber(t *testing.T) {
	env := newImportEnv(t)
	env.class(t, "500", "Resistor")
	im := NewPartsImporter(env.svcs.Part, env.svcs.Sourcing, env.repos.PartClass)
	ctx := context.Background()

	data := []byte("part number,description,mpn,manufacturer\n" +
		"500-0042-01,pull-up resistor,RC0603-10K,Yageo\n")

	result, err := im.Import(ctx, env.org, data)
	require.NoError(t, err)
	require.Len(t, result.Successes, 1, "errors: %v", result.Errors)

	part, err := env.svcs.Part.GetPartByNumber(ctx, env.org, "500-0042-01")
	require.NoError(t, err)
	assert.Equal(t, "0042", part.NumberItem)
	assert.Equal(t, "01", part.NumberVariation)
	require.NotNil(t, part.PrimaryManufacturerPartID)

	mps, err := env.repos.Sourcing.ListManufacturerPartsByPart(ctx, part.ID)
	require.NoError(t, err)
	require.Len(t, mps, 1)
	assert.Equal(t, "RC0603-10K", mps[0].ManufacturerPartNumber)
}

func TestPartsImportIntelligentSchemeNeedsNumber(t *testing.T) {
	env := newImportEnv(t)
	env.org.NumberScheme = entity.NumberSchemeIntelligent
	require.NoError(t, env.db.Save(env.org).Error)
	im := NewPartsImporter(env.svcs.Part, env.svcs.Sourcing, env.repos.PartClass)

	data := []byte("part_number,part_class,description\n" +
		"WIDGET-A1,,opaque number\n" +
		",Resistor,missing number\n")

	result, err := im.Import(context.Background(), env.org, data)
	require.NoError(t, err)
	assert.Len(t, result.Successes, 1)
	assert.Len(t, result.Errors, 1)
}

func TestPartsImportBadNumericCell(t *testing.T) {
	env := newImportEnv(t)
	env.class(t, "500", "Resistor")
	im := NewPartsImporter(env.svcs.Part, env.svcs.Sourcing, env.repos.PartClass)

	result, err := im.Import(context.Background(), env.org,
		[]byte("part_class,description,value,value_units\nResistor,bad value,ten,ohms\n"))
	require.NoError(t, err)
	assert.Empty(t, result.Successes)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "not a number")
}

func TestPartsImportNeedsNumberOrClass(t *testing.T) {
	env := newImportEnv(t)
	im := NewPartsImporter(env.svcs.Part, env.svcs.Sourcing, env.repos.PartClass)

	_, err := im.Import(context.Background(), env.org,
		[]byte("description,revision\nno identity,1\n"))
	assert.ErrorIs(t, err, plmerr.ErrValidation)
}
