package service

import (
	"context"
	"testing"

	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/bomwerk/bomwerk/internal/plm/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSubpartCount(t *testing.T) {
	assert.NoError(t, ValidateSubpartCount(1, ""))
	assert.NoError(t, ValidateSubpartCount(3, "R1, R2, R3"))
	assert.ErrorIs(t, ValidateSubpartCount(0, ""), plmerr.ErrValidation)
	assert.ErrorIs(t, ValidateSubpartCount(2, ""), plmerr.ErrValidation)
	assert.ErrorIs(t, ValidateSubpartCount(2, "R1, R2, R3"), plmerr.ErrValidation)
}

func TestAddSubpartRejectsSelfReference(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Self Co")
	class := testutil.SeedClass(t, db, org.ID, "200", "Assembly")

	_, rev := mustCreatePart(t, svcs, org, class.ID, "board")
	_, err := svcs.Assembly.AddSubpart(context.Background(), rev, &SubpartInput{
		PartRevisionID: rev.ID,
		Count:          1,
	})
	assert.ErrorIs(t, err, plmerr.ErrCycle)
}

func TestAddSubpartRejectsCycle(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Cycle Co")
	class := testutil.SeedClass(t, db, org.ID, "200", "Assembly")

	_, revA := mustCreatePart(t, svcs, org, class.ID, "A")
	_, revB := mustCreatePart(t, svcs, org, class.ID, "B")
	_, revC := mustCreatePart(t, svcs, org, class.ID, "C")

	mustAddSubpart(t, svcs, revA, revB, 1, "")
	mustAddSubpart(t, svcs, revB, revC, 1, "")

	// C already reaches A through B; closing the loop must fail.
	_, err := svcs.Assembly.AddSubpart(context.Background(), revC, &SubpartInput{
		PartRevisionID: revA.ID,
		Count:          1,
	})
	assert.ErrorIs(t, err, plmerr.ErrCycle)

	// The rejection left C's assembly untouched.
	subparts, err := svcs.Assembly.Subparts(context.Background(), revC)
	require.NoError(t, err)
	assert.Empty(t, subparts)

	// B still has exactly its one line.
	subparts, err = svcs.Assembly.Subparts(context.Background(), revB)
	require.NoError(t, err)
	assert.Len(t, subparts, 1)
}

func TestAddSubpartMergesDuplicateLines(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Merge Co")
	class := testutil.SeedClass(t, db, org.ID, "200", "Assembly")

	_, parent := mustCreatePart(t, svcs, org, class.ID, "board")
	_, child := mustCreatePart(t, svcs, org, class.ID, "resistor")

	mustAddSubpart(t, svcs, parent, child, 2, "R1, R2")
	mustAddSubpart(t, svcs, parent, child, 1, "R7")

	subparts, err := svcs.Assembly.Subparts(context.Background(), parent)
	require.NoError(t, err)
	require.Len(t, subparts, 1)
	assert.Equal(t, 3, subparts[0].Count)
	assert.Equal(t, "R1, R2, R7", subparts[0].Reference)
}

func TestAddSubpartKeepsLoadStatesSeparate(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "DNL Co")
	class := testutil.SeedClass(t, db, org.ID, "200", "Assembly")

	_, parent := mustCreatePart(t, svcs, org, class.ID, "board")
	_, child := mustCreatePart(t, svcs, org, class.ID, "resistor")

	mustAddSubpart(t, svcs, parent, child, 1, "R1")
	_, err := svcs.Assembly.AddSubpart(context.Background(), parent, &SubpartInput{
		PartRevisionID: child.ID,
		Count:          1,
		Reference:      "R2",
		DoNotLoad:      true,
	})
	require.NoError(t, err)

	subparts, err := svcs.Assembly.Subparts(context.Background(), parent)
	require.NoError(t, err)
	assert.Len(t, subparts, 2)
}

func TestIndentedBomQuantities(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Indent Co")
	class := testutil.SeedClass(t, db, org.ID, "200", "Assembly")

	_, top := mustCreatePart(t, svcs, org, class.ID, "top")
	_, sub := mustCreatePart(t, svcs, org, class.ID, "sub")
	_, leaf := mustCreatePart(t, svcs, org, class.ID, "leaf")

	mustAddSubpart(t, svcs, top, sub, 2, "U1, U2")
	mustAddSubpart(t, svcs, sub, leaf, 3, "R1, R2, R3")

	records, err := svcs.Assembly.IndentedBom(context.Background(), top, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 0, records[0].IndentLevel)
	assert.Equal(t, top.ID, records[0].PartRevision.ID)

	assert.Equal(t, 1, records[1].IndentLevel)
	assert.Equal(t, 2, records[1].ExtendedQuantity)
	assert.Equal(t, 20, records[1].TotalQuantity)

	assert.Equal(t, 2, records[2].IndentLevel)
	assert.Equal(t, 6, records[2].ExtendedQuantity)
	assert.Equal(t, 60, records[2].TotalQuantity)
}

func TestFlatBomFoldsSharedSubparts(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Flat Co")
	class := testutil.SeedClass(t, db, org.ID, "200", "Assembly")

	_, top := mustCreatePart(t, svcs, org, class.ID, "top")
	_, sub := mustCreatePart(t, svcs, org, class.ID, "sub")
	_, shared := mustCreatePart(t, svcs, org, class.ID, "shared resistor")

	// The shared part appears directly under top and again inside sub.
	mustAddSubpart(t, svcs, top, shared, 1, "C1")
	mustAddSubpart(t, svcs, top, sub, 1, "")
	mustAddSubpart(t, svcs, sub, shared, 2, "C2, C3")

	items, err := svcs.Assembly.FlatBom(context.Background(), top, 1)
	require.NoError(t, err)

	var found bool
	for _, item := range items {
		if item.PartRevision.ID == shared.ID {
			found = true
			assert.Equal(t, 3, item.Quantity)
			assert.Equal(t, "C1, C2, C3", item.References)
		}
	}
	assert.True(t, found, "shared part missing from flat BOM")
}

func TestFlatBomDesignatorOrder(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Order Co")
	class := testutil.SeedClass(t, db, org.ID, "200", "Assembly")

	_, top := mustCreatePart(t, svcs, org, class.ID, "top")
	_, late := mustCreatePart(t, svcs, org, class.ID, "late")
	_, early := mustCreatePart(t, svcs, org, class.ID, "early")

	mustAddSubpart(t, svcs, top, late, 1, "R14")
	mustAddSubpart(t, svcs, top, early, 1, "R5")

	items, err := svcs.Assembly.FlatBom(context.Background(), top, 1)
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Natural order: R5 before R14 despite lexicographic order.
	assert.Equal(t, "R5", items[0].References)
	assert.Equal(t, "R14", items[1].References)
}

func TestWhereUsed(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Usage Co")
	class := testutil.SeedClass(t, db, org.ID, "200", "Assembly")

	_, top := mustCreatePart(t, svcs, org, class.ID, "top")
	_, mid := mustCreatePart(t, svcs, org, class.ID, "mid")
	_, leaf := mustCreatePart(t, svcs, org, class.ID, "leaf")

	mustAddSubpart(t, svcs, top, mid, 1, "")
	mustAddSubpart(t, svcs, mid, leaf, 1, "")

	parents, err := svcs.Assembly.WhereUsed(context.Background(), leaf.ID)
	require.NoError(t, err)

	ids := make(map[string]bool)
	for _, p := range parents {
		ids[p.ID] = true
	}
	assert.True(t, ids[mid.ID], "direct parent missing")
	assert.True(t, ids[top.ID], "transitive parent missing")
}

func TestRemoveSubpart(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Remove Co")
	class := testutil.SeedClass(t, db, org.ID, "200", "Assembly")

	_, parent := mustCreatePart(t, svcs, org, class.ID, "board")
	_, child := mustCreatePart(t, svcs, org, class.ID, "resistor")

	sp := mustAddSubpart(t, svcs, parent, child, 1, "R1")
	require.NoError(t, svcs.Assembly.RemoveSubpart(context.Background(), parent, sp.ID))

	subparts, err := svcs.Assembly.Subparts(context.Background(), parent)
	require.NoError(t, err)
	assert.Empty(t, subparts)
}

func TestDuplicateReferences(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Dup Co")
	class := testutil.SeedClass(t, db, org.ID, "200", "Assembly")

	_, parent := mustCreatePart(t, svcs, org, class.ID, "board")
	_, a := mustCreatePart(t, svcs, org, class.ID, "part a")
	_, b := mustCreatePart(t, svcs, org, class.ID, "part b")

	mustAddSubpart(t, svcs, parent, a, 2, "R1, R2")
	mustAddSubpart(t, svcs, parent, b, 2, "R2, R3")

	subparts, err := svcs.Assembly.Subparts(context.Background(), parent)
	require.NoError(t, err)

	dups := DuplicateReferences(subparts)
	assert.Equal(t, []string{"R2"}, dups)
}

func TestIndentedBomDepthCeiling(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Deep Co")
	class := testutil.SeedClass(t, db, org.ID, "200", "Assembly")
	ctx := context.Background()

	// A chain one level past the ceiling. Each link is added while the
	// child is still a leaf, so the cycle check stays cheap.
	_, parent := mustCreatePart(t, svcs, org, class.ID, "level 0")
	root := parent
	for i := 1; i <= MaxBomDepth; i++ {
		_, child := mustCreatePart(t, svcs, org, class.ID, "level")
		mustAddSubpart(t, svcs, parent, child, 1, "")
		parent = child
	}

	records, err := svcs.Assembly.IndentedBom(ctx, root, 1)
	assert.ErrorIs(t, err, plmerr.ErrGraphRecursion)

	// Everything walked before the trip is still there.
	require.Len(t, records, MaxBomDepth+1)
	assert.Equal(t, 0, records[0].IndentLevel)
	assert.Equal(t, MaxBomDepth, records[len(records)-1].IndentLevel)

	// The flat fold serves the same partial set.
	items, err := svcs.Assembly.FlatBom(ctx, root, 1)
	assert.ErrorIs(t, err, plmerr.ErrGraphRecursion)
	assert.Len(t, items, MaxBomDepth+1)
}
