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

func TestBestSellerPartPrefersLowUnitCost(t *testing.T) {
	offers := []entity.SellerPart{
		{ID: "a", MinimumOrderQuantity: 1, UnitCost: 0.10},
		{ID: "b", MinimumOrderQuantity: 1, UnitCost: 0.08},
	}
	best := BestSellerPart(offers, 100)
	require.NotNil(t, best)
	assert.Equal(t, "b", best.ID)
}

func TestBestSellerPartAccountsForMOQ(t *testing.T) {
	// The cheap offer forces a 1000-piece buy: 1000*0.01 = 10.
	// The pricier offer needs only the asked 100 pieces: 100*0.05 = 5.
	offers := []entity.SellerPart{
		{ID: "bulk", MinimumOrderQuantity: 1000, UnitCost: 0.01},
		{ID: "small", MinimumOrderQuantity: 1, UnitCost: 0.05},
	}
	best := BestSellerPart(offers, 100)
	require.NotNil(t, best)
	assert.Equal(t, "small", best.ID)

	// At 10000 pieces the bulk offer wins outright.
	best = BestSellerPart(offers, 10000)
	require.NotNil(t, best)
	assert.Equal(t, "bulk", best.ID)
}

func TestBestSellerPartIgnoresNreAndPacks(t *testing.T) {
	// Selection looks at max(qty, moq) * unit_cost only.
	offers := []entity.SellerPart{
		{ID: "nre", MinimumOrderQuantity: 1, UnitCost: 0.10, NreCost: 100000},
		{ID: "plain", MinimumOrderQuantity: 1, UnitCost: 0.11},
	}
	best := BestSellerPart(offers, 100)
	require.NotNil(t, best)
	assert.Equal(t, "nre", best.ID)
}

func TestBestSellerPartEmpty(t *testing.T) {
	assert.Nil(t, BestSellerPart(nil, 100))
}

func TestOrderQuantity(t *testing.T) {
	sp := &entity.SellerPart{MinimumOrderQuantity: 100, MinimumPackQuantity: 1}
	assert.Equal(t, 100, OrderQuantity(sp, 30))
	assert.Equal(t, 150, OrderQuantity(sp, 150))

	// Pack rounding after the MOQ floor.
	sp = &entity.SellerPart{MinimumOrderQuantity: 100, MinimumPackQuantity: 250}
	assert.Equal(t, 250, OrderQuantity(sp, 30))

	sp = &entity.SellerPart{MinimumOrderQuantity: 1, MinimumPackQuantity: 50}
	assert.Equal(t, 150, OrderQuantity(sp, 101))
	assert.Equal(t, 100, OrderQuantity(sp, 100))
}

func TestGetOrCreateSellerIsIdempotent(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Seller Co")

	first, err := svcs.Sourcing.GetOrCreateSeller(context.Background(), org.ID, "Digi-Key")
	require.NoError(t, err)
	second, err := svcs.Sourcing.GetOrCreateSeller(context.Background(), org.ID, "Digi-Key")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestAddSellerPartValidation(t *testing.T) {
	svcs, db := newTestServices(t)
	org := testutil.SeedOrg(t, db, "Offer Co")
	class := testutil.SeedClass(t, db, org.ID, "500", "Resistor")
	part, _ := mustCreatePart(t, svcs, org, class.ID, "resistor")

	m, err := svcs.Sourcing.GetOrCreateManufacturer(context.Background(), org.ID, "Acme")
	require.NoError(t, err)
	mp, err := svcs.Sourcing.AddManufacturerPart(context.Background(), part.ID, "ACME-100", &m.ID)
	require.NoError(t, err)
	seller, err := svcs.Sourcing.GetOrCreateSeller(context.Background(), org.ID, "Mouser")
	require.NoError(t, err)

	_, err = svcs.Sourcing.AddSellerPart(context.Background(), seller.ID, mp.ID, &SellerPartInput{
		MinimumOrderQuantity: 0,
		UnitCost:             0.1,
	})
	assert.ErrorIs(t, err, plmerr.ErrValidation)

	_, err = svcs.Sourcing.AddSellerPart(context.Background(), seller.ID, mp.ID, &SellerPartInput{
		MinimumOrderQuantity: 1,
		UnitCost:             -1,
	})
	assert.ErrorIs(t, err, plmerr.ErrValidation)
}
