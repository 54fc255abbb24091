package service

import (
	"context"
	"testing"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"github.com/bomwerk/bomwerk/internal/plm/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestServices(t *testing.T) (*Services, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewServices(repos, NewQuantityCache(nil), zap.NewNop()), db
}

// mustCreatePart creates a part with an auto-assigned number in the given
// class and a one-line description spec.
func mustCreatePart(t *testing.T, svcs *Services, org *entity.Organization, classID, desc string) (*entity.Part, *entity.PartRevision) {
	t.Helper()
	part, rev, _, err := svcs.Part.CreatePart(context.Background(), org, &CreatePartInput{
		ClassID: classID,
		Spec:    &entity.PartRevision{Description: desc},
	})
	if err != nil {
		t.Fatalf("CreatePart(%s): %v", desc, err)
	}
	return part, rev
}

// mustAddSubpart links child under parent with count and references.
func mustAddSubpart(t *testing.T, svcs *Services, parent, child *entity.PartRevision, count int, refs string) *entity.Subpart {
	t.Helper()
	sp, err := svcs.Assembly.AddSubpart(context.Background(), parent, &SubpartInput{
		PartRevisionID: child.ID,
		Count:          count,
		Reference:      refs,
	})
	if err != nil {
		t.Fatalf("AddSubpart: %v", err)
	}
	return sp
}

// mustAddOffer attaches a manufacturer part and one seller offer to part.
func mustAddOffer(t *testing.T, svcs *Services, org *entity.Organization, part *entity.Part, seller, mpn string, input *SellerPartInput) *entity.SellerPart {
	t.Helper()
	ctx := context.Background()
	m, err := svcs.Sourcing.GetOrCreateManufacturer(ctx, org.ID, "Acme Components")
	if err != nil {
		t.Fatalf("GetOrCreateManufacturer: %v", err)
	}
	mp, err := svcs.Sourcing.AddManufacturerPart(ctx, part.ID, mpn, &m.ID)
	if err != nil {
		t.Fatalf("AddManufacturerPart: %v", err)
	}
	s, err := svcs.Sourcing.GetOrCreateSeller(ctx, org.ID, seller)
	if err != nil {
		t.Fatalf("GetOrCreateSeller: %v", err)
	}
	sp, err := svcs.Sourcing.AddSellerPart(ctx, s.ID, mp.ID, input)
	if err != nil {
		t.Fatalf("AddSellerPart: %v", err)
	}
	return sp
}
