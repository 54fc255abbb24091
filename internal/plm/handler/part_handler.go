package handler

import (
	"github.com/bomwerk/bomwerk/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// PartHandler serves part lifecycle requests.
type PartHandler struct {
	svc  *service.PartService
	orgs *service.OrganizationService
}

func NewPartHandler(svc *service.PartService, orgs *service.OrganizationService) *PartHandler {
	return &PartHandler{svc: svc, orgs: orgs}
}

// List returns a page of the org's parts.
func (h *PartHandler) List(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	page, pageSize := GetPagination(c)
	parts, total, err := h.svc.ListParts(c.Request.Context(), org.ID, (page-1)*pageSize, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{
		"parts":     parts,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Create creates a part with its first revision.
func (h *PartHandler) Create(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	var req service.CreatePartInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	part, rev, warnings, err := h.svc.CreatePart(c.Request.Context(), org, &req)
	if err != nil {
		Fail(c, err)
		return
	}

	Created(c, gin.H{
		"part":     part,
		"revision": rev,
		"warnings": warnings,
	})
}

// Get returns one part.
func (h *PartHandler) Get(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	part, err := h.svc.GetPart(c.Request.Context(), org.ID, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}

	Success(c, part)
}

// GetByNumber resolves the ?number= query in the org's scheme.
func (h *PartHandler) GetByNumber(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	number := c.Query("number")
	if number == "" {
		BadRequest(c, "number query parameter is required")
		return
	}

	part, err := h.svc.GetPartByNumber(c.Request.Context(), org, number)
	if err != nil {
		Fail(c, err)
		return
	}

	Success(c, part)
}

// Delete removes a part with all revisions, assembly lines and sourcing.
func (h *PartHandler) Delete(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	part, err := h.svc.GetPart(c.Request.Context(), org.ID, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}

	if err := h.svc.DeletePart(c.Request.Context(), part); err != nil {
		Fail(c, err)
		return
	}

	Success(c, nil)
}

// SetPrimaryManufacturerPart selects the part's primary manufacturer part.
func (h *PartHandler) SetPrimaryManufacturerPart(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	part, err := h.svc.GetPart(c.Request.Context(), org.ID, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}

	var req struct {
		ManufacturerPartID string `json:"manufacturer_part_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.svc.SetPrimaryManufacturerPart(c.Request.Context(), part, req.ManufacturerPartID); err != nil {
		Fail(c, err)
		return
	}

	Success(c, part)
}
