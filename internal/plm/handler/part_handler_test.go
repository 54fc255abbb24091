package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"github.com/bomwerk/bomwerk/internal/plm/service"
	"github.com/bomwerk/bomwerk/internal/plm/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestRouter wires the full handler set over an in-memory store and
// injects the given identity the way the auth middleware would.
func newTestRouter(t *testing.T) (*gin.Engine, *entity.Organization) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svcs := service.NewServices(repos, service.NewQuantityCache(nil), zap.NewNop())
	org := testutil.SeedOrg(t, db, "Handler Co")
	testutil.SeedClass(t, db, org.ID, "500", "Resistor")
	h := NewHandlers(svcs, repos, nil, nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", org.OwnerID)
		c.Set("organization_id", org.ID)
	})
	r.GET("/part-classes", h.PartClass.List)
	r.POST("/parts", h.Part.Create)
	r.GET("/parts/by-number", h.Part.GetByNumber)
	r.GET("/parts/:id", h.Part.Get)
	return r, org
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return w, resp
}

func classID(t *testing.T, r *gin.Engine) string {
	t.Helper()
	_, resp := doJSON(t, r, http.MethodGet, "/part-classes", nil)
	classes := resp.Data.(map[string]interface{})["classes"].([]interface{})
	require.NotEmpty(t, classes)
	return classes[0].(map[string]interface{})["id"].(string)
}

func TestPartCreateAndGet(t *testing.T) {
	r, _ := newTestRouter(t)
	class := classID(t, r)

	w, resp := doJSON(t, r, http.MethodPost, "/parts", gin.H{
		"class_id": class,
		"spec":     gin.H{"description": "chip resistor"},
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %v", resp)
	assert.Equal(t, 0, resp.Code)

	data := resp.Data.(map[string]interface{})
	part := data["part"].(map[string]interface{})
	assert.Equal(t, "0001", part["number_item"])

	w, resp = doJSON(t, r, http.MethodGet, "/parts/"+part["id"].(string), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/parts/by-number?number=500-0001-01", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPartCreateDuplicateConflict(t *testing.T) {
	r, _ := newTestRouter(t)
	class := classID(t, r)

	body := gin.H{
		"class_id":         class,
		"number_item":      "0007",
		"number_variation": "01",
		"spec":             gin.H{"description": "fixed number"},
	}
	w, _ := doJSON(t, r, http.MethodPost, "/parts", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := doJSON(t, r, http.MethodPost, "/parts", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 40900, resp.Code)
}

func TestPartCreateValidationCode(t *testing.T) {
	r, _ := newTestRouter(t)
	class := classID(t, r)

	w, resp := doJSON(t, r, http.MethodPost, "/parts", gin.H{
		"class_id": class,
		"spec":     gin.H{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40001, resp.Code)
}

func TestPartGetUnknownIsNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	w, resp := doJSON(t, r, http.MethodGet, "/parts/nosuchpart", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40400, resp.Code)
}
