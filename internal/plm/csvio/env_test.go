package csvio

import (
	"context"
	"testing"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"github.com/bomwerk/bomwerk/internal/plm/service"
	"github.com/bomwerk/bomwerk/internal/plm/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type importEnv struct {
	db    *gorm.DB
	repos *repository.Repositories
	svcs  *service.Services
	org   *entity.Organization
}

func newImportEnv(t *testing.T) *importEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svcs := service.NewServices(repos, service.NewQuantityCache(nil), zap.NewNop())
	org := testutil.SeedOrg(t, db, "Import Co")
	return &importEnv{db: db, repos: repos, svcs: svcs, org: org}
}

func (e *importEnv) class(t *testing.T, code, name string) *entity.PartClass {
	t.Helper()
	return testutil.SeedClass(t, e.db, e.org.ID, code, name)
}

func (e *importEnv) part(t *testing.T, classID, desc string) (*entity.Part, *entity.PartRevision) {
	t.Helper()
	part, rev, _, err := e.svcs.Part.CreatePart(context.Background(), e.org, &service.CreatePartInput{
		ClassID: classID,
		Spec:    &entity.PartRevision{Description: desc},
	})
	if err != nil {
		t.Fatalf("CreatePart(%s): %v", desc, err)
	}
	return part, rev
}
