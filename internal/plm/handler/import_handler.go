package handler

import (
	"io"

	"github.com/bomwerk/bomwerk/internal/plm/csvio"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"github.com/bomwerk/bomwerk/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// ImportHandler serves the CSV upload endpoints. Each import runs row by
// row: bad rows land in the result's errors, good rows commit.
type ImportHandler struct {
	classes   *csvio.ClassImporter
	parts     *csvio.PartsImporter
	bom       *csvio.BomImporter
	revisions *service.RevisionService
	orgs      *service.OrganizationService
	store     *service.ImportStore
}

func NewImportHandler(svc *service.Services, repos *repository.Repositories,
	store *service.ImportStore) *ImportHandler {
	return &ImportHandler{
		classes:   csvio.NewClassImporter(svc.PartClass),
		parts:     csvio.NewPartsImporter(svc.Part, svc.Sourcing, repos.PartClass),
		bom:       csvio.NewBomImporter(svc.Part, svc.Assembly, repos.Revision, repos.Sourcing),
		revisions: svc.Revision,
		orgs:      svc.Organization,
		store:     store,
	}
}

// readUpload pulls the "file" form part into memory. Returns filename and
// bytes, or writes the error response and returns empty data.
func readUpload(c *gin.Context) (string, []byte) {
	fh, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "file form field is required: "+err.Error())
		return "", nil
	}

	f, err := fh.Open()
	if err != nil {
		InternalError(c, err.Error())
		return "", nil
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		InternalError(c, err.Error())
		return "", nil
	}
	return fh.Filename, data
}

// ImportClasses imports part classes from an uploaded CSV.
func (h *ImportHandler) ImportClasses(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	filename, data := readUpload(c)
	if data == nil {
		return
	}
	h.store.Archive(c.Request.Context(), org.ID, "classes", filename, data)

	result, err := h.classes.Import(c.Request.Context(), org, data)
	if err != nil {
		Fail(c, err)
		return
	}

	Success(c, result)
}

// ImportParts imports parts from an uploaded CSV.
func (h *ImportHandler) ImportParts(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	filename, data := readUpload(c)
	if data == nil {
		return
	}
	h.store.Archive(c.Request.Context(), org.ID, "parts", filename, data)

	result, err := h.parts.Import(c.Request.Context(), org, data)
	if err != nil {
		Fail(c, err)
		return
	}

	Success(c, result)
}

// ImportBom imports assembly lines under a parent revision from an
// uploaded CSV.
func (h *ImportHandler) ImportBom(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	parent, err := h.revisions.GetRevision(c.Request.Context(), org.ID, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}

	filename, data := readUpload(c)
	if data == nil {
		return
	}
	h.store.Archive(c.Request.Context(), org.ID, "bom", filename, data)

	result, err := h.bom.Import(c.Request.Context(), org, parent, data)
	if err != nil {
		Fail(c, err)
		return
	}

	Success(c, result)
}
