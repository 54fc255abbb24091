package handler

import (
	"github.com/bomwerk/bomwerk/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// PartClassHandler serves part class CRUD.
type PartClassHandler struct {
	svc  *service.PartClassService
	orgs *service.OrganizationService
}

func NewPartClassHandler(svc *service.PartClassService, orgs *service.OrganizationService) *PartClassHandler {
	return &PartClassHandler{svc: svc, orgs: orgs}
}

// List returns the org's part classes ordered by code.
func (h *PartClassHandler) List(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	classes, err := h.svc.ListPartClasses(c.Request.Context(), org.ID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"classes": classes})
}

// Create creates a part class.
func (h *PartClassHandler) Create(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	var req service.CreatePartClassInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	class, err := h.svc.CreatePartClass(c.Request.Context(), org.ID, &req)
	if err != nil {
		Fail(c, err)
		return
	}

	Created(c, class)
}

// Get returns one part class.
func (h *PartClassHandler) Get(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	class, err := h.svc.GetPartClass(c.Request.Context(), org.ID, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}

	Success(c, class)
}

// Update renames a class or toggles its pricing lookup flag. The code is
// immutable.
func (h *PartClassHandler) Update(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	class, err := h.svc.GetPartClass(c.Request.Context(), org.ID, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}

	var req struct {
		Name          string `json:"name" binding:"required"`
		Comment       string `json:"comment"`
		MouserEnabled bool   `json:"mouser_enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.svc.UpdatePartClass(c.Request.Context(), class, req.Name, req.Comment, req.MouserEnabled); err != nil {
		Fail(c, err)
		return
	}

	Success(c, class)
}

// Delete removes a class that no part references.
func (h *PartClassHandler) Delete(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	class, err := h.svc.GetPartClass(c.Request.Context(), org.ID, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}

	if err := h.svc.DeletePartClass(c.Request.Context(), class); err != nil {
		Fail(c, err)
		return
	}

	Success(c, nil)
}
