package service

import (
	"context"
	"testing"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/bomwerk/bomwerk/internal/plm/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForkAssignsSuccessorRevision(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Fork Co")
	class := testutil.SeedClass(t, db, org.ID, "500", "Electronics")
	ctx := context.Background()

	_, rev := mustCreatePart(t, svcs, org, class.ID, "widget")
	require.Equal(t, "1", rev.Revision)

	fork, err := svcs.Revision.Fork(ctx, rev, &ForkInput{})
	require.NoError(t, err)
	assert.Equal(t, "2", fork.Revision)
	assert.Equal(t, rev.PartID, fork.PartID)
	assert.Equal(t, entity.ConfigurationWorking, fork.Configuration)
	assert.NotEqual(t, rev.ID, fork.ID)
	require.NotNil(t, fork.AssemblyID)
	assert.NotEqual(t, *rev.AssemblyID, *fork.AssemblyID)
	assert.Equal(t, rev.Description, fork.Description)

	// The fork is newest, so it becomes the part's latest.
	latest, err := svcs.Revision.Latest(ctx, rev.PartID)
	require.NoError(t, err)
	assert.Equal(t, fork.ID, latest.ID)

	history, err := svcs.Revision.History(ctx, rev.PartID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, rev.ID, history[0].ID)
}

func TestForkExplicitRevisionAndDuplicates(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Fork Dup Co")
	class := testutil.SeedClass(t, db, org.ID, "500", "Electronics")
	ctx := context.Background()

	_, rev := mustCreatePart(t, svcs, org, class.ID, "widget")

	fork, err := svcs.Revision.Fork(ctx, rev, &ForkInput{Revision: "B"})
	require.NoError(t, err)
	assert.Equal(t, "B", fork.Revision)

	_, err = svcs.Revision.Fork(ctx, rev, &ForkInput{Revision: "B"})
	assert.ErrorIs(t, err, plmerr.ErrUniqueness)
}

func TestForkDeepCopiesAssembly(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Deep Copy Co")
	class := testutil.SeedClass(t, db, org.ID, "500", "Electronics")
	ctx := context.Background()

	_, topRev := mustCreatePart(t, svcs, org, class.ID, "top")
	_, resRev := mustCreatePart(t, svcs, org, class.ID, "resistor")
	_, capRev := mustCreatePart(t, svcs, org, class.ID, "capacitor")
	mustAddSubpart(t, svcs, topRev, resRev, 2, "R1, R2")
	mustAddSubpart(t, svcs, topRev, capRev, 1, "C1")

	fork, err := svcs.Revision.Fork(ctx, topRev, &ForkInput{CopyAssembly: true})
	require.NoError(t, err)

	forkLines, err := svcs.Assembly.Subparts(ctx, fork)
	require.NoError(t, err)
	require.Len(t, forkLines, 2)
	assert.Equal(t, resRev.ID, forkLines[0].PartRevisionID)
	assert.Equal(t, 2, forkLines[0].Count)
	assert.Equal(t, "R1, R2", forkLines[0].Reference)

	// Removing a line from the fork leaves the source untouched.
	require.NoError(t, svcs.Assembly.RemoveSubpart(ctx, fork, forkLines[0].ID))
	srcLines, err := svcs.Assembly.Subparts(ctx, topRev)
	require.NoError(t, err)
	assert.Len(t, srcLines, 2)
}

func TestForkRepointsWhereUsed(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Repoint Co")
	class := testutil.SeedClass(t, db, org.ID, "500", "Electronics")
	ctx := context.Background()

	_, parentRev := mustCreatePart(t, svcs, org, class.ID, "parent")
	_, childRev := mustCreatePart(t, svcs, org, class.ID, "child")
	mustAddSubpart(t, svcs, parentRev, childRev, 1, "U1")

	fork, err := svcs.Revision.Fork(ctx, childRev, &ForkInput{RepointWhereUsed: true})
	require.NoError(t, err)

	lines, err := svcs.Assembly.Subparts(ctx, parentRev)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, fork.ID, lines[0].PartRevisionID)

	parents, err := svcs.Assembly.WhereUsed(ctx, childRev.ID)
	require.NoError(t, err)
	assert.Empty(t, parents)
}

func TestReleaseAndRevert(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Release Co")
	class := testutil.SeedClass(t, db, org.ID, "500", "Electronics")
	ctx := context.Background()

	_, rev := mustCreatePart(t, svcs, org, class.ID, "widget")
	assert.Equal(t, entity.ConfigurationWorking, rev.Configuration)

	require.NoError(t, svcs.Revision.Release(ctx, rev))
	assert.Equal(t, entity.ConfigurationReleased, rev.Configuration)

	// Releasing twice is a validation error.
	assert.ErrorIs(t, svcs.Revision.Release(ctx, rev), plmerr.ErrValidation)

	require.NoError(t, svcs.Revision.Revert(ctx, rev))
	assert.Equal(t, entity.ConfigurationWorking, rev.Configuration)
	assert.ErrorIs(t, svcs.Revision.Revert(ctx, rev), plmerr.ErrValidation)
}

func TestSaveSpecNormalizesTolerance(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Spec Co")
	class := testutil.SeedClass(t, db, org.ID, "500", "Electronics")
	ctx := context.Background()

	_, rev := mustCreatePart(t, svcs, org, class.ID, "resistor")
	value := 10.0
	rev.Value = &value
	rev.ValueUnits = "kohms"
	rev.Tolerance = "5%"

	warnings, err := svcs.Revision.SaveSpec(ctx, rev)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "5", rev.Tolerance)
	assert.Contains(t, rev.SearchableSynopsis, "10kohms")
	assert.Contains(t, rev.DisplayableSynopsis, "10kΩ")
	assert.Contains(t, rev.DisplayableSynopsis, "5%")

	// An unrecognized unit is kept but warned about.
	rev.ValueUnits = "parsecs"
	warnings, err = svcs.Revision.SaveSpec(ctx, rev)
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)
}
