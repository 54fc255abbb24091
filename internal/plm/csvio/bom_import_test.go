package csvio

import (
	"context"
	"fmt"
	"testing"

	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/bomwerk/bomwerk/internal/plm/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBomImporter(env *importEnv) *BomImporter {
	return NewBomImporter(env.svcs.Part, env.svcs.Assembly, env.repos.Revision, env.repos.Sourcing)
}

func TestBomImportPartialSuccess(t *testing.T) {
	env := newImportEnv(t)
	class := env.class(t, "500", "Electronics")
	ctx := context.Background()

	_, parentRev := env.part(t, class.ID, "top assembly")
	res, _ := env.part(t, class.ID, "resistor")
	cap2, _ := env.part(t, class.ID, "capacitor")

	data := []byte(fmt.Sprintf("part_number,quantity,references\n"+
		"%s,2,\"R1, R2\"\n"+
		"%s,-2,C1\n"+
		"%s,1,C1\n", res.FullNumber(), cap2.FullNumber(), cap2.FullNumber()))

	result, err := newBomImporter(env).Import(ctx, env.org, parentRev, data)
	require.NoError(t, err)
	assert.Len(t, result.Successes, 2, "errors: %v", result.Errors)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "row 3")
	assert.Contains(t, result.Errors[0], "count must be at least 1")

	subparts, err := env.svcs.Assembly.Subparts(ctx, parentRev)
	require.NoError(t, err)
	require.Len(t, subparts, 2)
	assert.Equal(t, 2, subparts[0].Count)
	assert.Equal(t, "R1, R2", subparts[0].Reference)
}

func TestBomImportResolvesByMPN(t *testing.T) {
	env := newImportEnv(t)
	class := env.class(t, "500", "Electronics")
	ctx := context.Background()

	_, parentRev := env.part(t, class.ID, "top assembly")
	res, _ := env.part(t, class.ID, "resistor")

	m, err := env.svcs.Sourcing.GetOrCreateManufacturer(ctx, env.org.ID, "Yageo")
	require.NoError(t, err)
	_, err = env.svcs.Sourcing.AddManufacturerPart(ctx, res.ID, "RC0603-10K", &m.ID)
	require.NoError(t, err)

	data := []byte("mpn,qty\nRC0603-10K,4\nNO-SUCH-MPN,1\n")
	result, err := newBomImporter(env).Import(ctx, env.org, parentRev, data)
	require.NoError(t, err)
	assert.Len(t, result.Successes, 1, "errors: %v", result.Errors)
	assert.Len(t, result.Errors, 1)

	subparts, err := env.svcs.Assembly.Subparts(ctx, parentRev)
	require.NoError(t, err)
	require.Len(t, subparts, 1)
	assert.Equal(t, 4, subparts[0].Count)
}

func TestBomImportRejectsCycles(t *testing.T) {
	env := newImportEnv(t)
	class := env.class(t, "500", "Electronics")
	ctx := context.Background()

	top, topRev := env.part(t, class.ID, "top")
	sub, subRev := env.part(t, class.ID, "sub")
	_, err := env.svcs.Assembly.AddSubpart(ctx, topRev, &service.SubpartInput{
		PartRevisionID: subRev.ID,
		Count:          1,
		Reference:      "U1",
	})
	require.NoError(t, err)

	// Importing the parent into its own child would close a loop.
	data := []byte(fmt.Sprintf("part_number,quantity\n%s,1\n%s,1\n", top.FullNumber(), sub.FullNumber()))
	result, err := newBomImporter(env).Import(ctx, env.org, subRev, data)
	require.NoError(t, err)
	assert.Len(t, result.Errors, 2, "successes: %v", result.Successes)

	subparts, err := env.svcs.Assembly.Subparts(ctx, subRev)
	require.NoError(t, err)
	assert.Empty(t, subparts)
}

func TestBomImportWarnsOnDuplicateDesignators(t *testing.T) {
	env := newImportEnv(t)
	class := env.class(t, "500", "Electronics")
	ctx := context.Background()

	_, parentRev := env.part(t, class.ID, "top")
	res, _ := env.part(t, class.ID, "resistor")
	cap2, _ := env.part(t, class.ID, "capacitor")

	data := []byte(fmt.Sprintf("part_number,quantity,references\n%s,1,R1\n%s,1,R1\n",
		res.FullNumber(), cap2.FullNumber()))
	result, err := newBomImporter(env).Import(ctx, env.org, parentRev, data)
	require.NoError(t, err)
	assert.Len(t, result.Successes, 2)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "R1")
}

func TestBomImportRequiresQuantityColumn(t *testing.T) {
	env := newImportEnv(t)
	class := env.class(t, "500", "Electronics")
	_, parentRev := env.part(t, class.ID, "top")

	_, err := newBomImporter(env).Import(context.Background(), env.org, parentRev,
		[]byte("part_number\n500-0001-01\n"))
	assert.ErrorIs(t, err, plmerr.ErrValidation)
}

func TestBomImportRejectsIndentedFile(t *testing.T) {
	env := newImportEnv(t)
	class := env.class(t, "500", "Electronics")
	ctx := context.Background()

	_, parentRev := env.part(t, class.ID, "top assembly")
	res, _ := env.part(t, class.ID, "resistor")

	data := []byte(fmt.Sprintf("level,part_number,quantity\n1,%s,2\n", res.FullNumber()))
	_, err := newBomImporter(env).Import(ctx, env.org, parentRev, data)
	require.ErrorIs(t, err, plmerr.ErrValidation)
	assert.Contains(t, err.Error(), "level")

	// The synonym is caught the same way.
	data = []byte(fmt.Sprintf("indent,part_number,quantity\n1,%s,2\n", res.FullNumber()))
	_, err = newBomImporter(env).Import(ctx, env.org, parentRev, data)
	require.ErrorIs(t, err, plmerr.ErrValidation)

	subparts, err := env.svcs.Assembly.Subparts(ctx, parentRev)
	require.NoError(t, err)
	assert.Empty(t, subparts)
}
