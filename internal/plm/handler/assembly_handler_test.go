package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"github.com/bomwerk/bomwerk/internal/plm/service"
	"github.com/bomwerk/bomwerk/internal/plm/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newBomRouter(t *testing.T) (*gin.Engine, *service.Services, *gorm.DB, *entity.Organization) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svcs := service.NewServices(repos, service.NewQuantityCache(nil), zap.NewNop())
	org := testutil.SeedOrg(t, db, "Bom Co")
	testutil.SeedClass(t, db, org.ID, "200", "Assembly")
	h := NewHandlers(svcs, repos, nil, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", org.OwnerID)
		c.Set("organization_id", org.ID)
	})
	r.GET("/revisions/:id/bom/indented", h.Assembly.IndentedBom)
	r.GET("/revisions/:id/bom/flat", h.Assembly.FlatBom)
	return r, svcs, db, org
}

// Both traversal views serve the partial result with a truncated marker
// when the assembly chain runs past the depth ceiling.
func TestBomViewsMarkTruncatedDeepChains(t *testing.T) {
	r, svcs, db, org := newBomRouter(t)
	ctx := context.Background()

	var class entity.PartClass
	require.NoError(t, db.Where("organization_id = ?", org.ID).First(&class).Error)

	parent := createRevision(t, svcs, org, class.ID)
	root := parent
	for i := 0; i < service.MaxBomDepth; i++ {
		child := createRevision(t, svcs, org, class.ID)
		_, err := svcs.Assembly.AddSubpart(ctx, parent, &service.SubpartInput{
			PartRevisionID: child.ID,
			Count:          1,
		})
		require.NoError(t, err)
		parent = child
	}

	w, resp := doJSON(t, r, http.MethodGet, "/revisions/"+root.ID+"/bom/indented", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["truncated"])
	assert.Len(t, data["records"], service.MaxBomDepth+1)

	w, resp = doJSON(t, r, http.MethodGet, "/revisions/"+root.ID+"/bom/flat", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["truncated"])
	assert.Len(t, data["items"], service.MaxBomDepth+1)
}

func TestFlatBomShallowHasNoMarker(t *testing.T) {
	r, svcs, db, org := newBomRouter(t)

	var class entity.PartClass
	require.NoError(t, db.Where("organization_id = ?", org.ID).First(&class).Error)

	top := createRevision(t, svcs, org, class.ID)
	child := createRevision(t, svcs, org, class.ID)
	_, err := svcs.Assembly.AddSubpart(context.Background(), top, &service.SubpartInput{
		PartRevisionID: child.ID,
		Count:          2,
		Reference:      "R1, R2",
	})
	require.NoError(t, err)

	w, resp := doJSON(t, r, http.MethodGet, "/revisions/"+top.ID+"/bom/flat", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]interface{})
	_, marked := data["truncated"]
	assert.False(t, marked)
	assert.Len(t, data["items"], 2)
}

func createRevision(t *testing.T, svcs *service.Services, org *entity.Organization, classID string) *entity.PartRevision {
	t.Helper()
	_, rev, _, err := svcs.Part.CreatePart(context.Background(), org, &service.CreatePartInput{
		ClassID: classID,
		Spec:    &entity.PartRevision{Description: "assembly level"},
	})
	require.NoError(t, err)
	return rev
}
