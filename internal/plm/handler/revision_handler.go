package handler

import (
	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// RevisionHandler serves revision specs, lifecycle and forking.
type RevisionHandler struct {
	svc   *service.RevisionService
	parts *service.PartService
	orgs  *service.OrganizationService
}

func NewRevisionHandler(svc *service.RevisionService, parts *service.PartService, orgs *service.OrganizationService) *RevisionHandler {
	return &RevisionHandler{svc: svc, parts: parts, orgs: orgs}
}

// Latest returns the newest revision of a part.
func (h *RevisionHandler) Latest(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	part, err := h.parts.GetPart(c.Request.Context(), org.ID, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}

	rev, err := h.svc.Latest(c.Request.Context(), part.ID)
	if err != nil {
		Fail(c, err)
		return
	}

	Success(c, rev)
}

// History returns all revisions of a part, newest first.
func (h *RevisionHandler) History(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	part, err := h.parts.GetPart(c.Request.Context(), org.ID, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}

	revs, err := h.svc.History(c.Request.Context(), part.ID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"revisions": revs})
}

func (h *RevisionHandler) revision(c *gin.Context) *entity.PartRevision {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return nil
	}
	rev, err := h.svc.GetRevision(c.Request.Context(), org.ID, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return nil
	}
	return rev
}

// Get returns one revision with its part.
func (h *RevisionHandler) Get(c *gin.Context) {
	rev := h.revision(c)
	if rev == nil {
		return
	}
	Success(c, rev)
}

// SaveSpec updates the revision's specification attributes.
func (h *RevisionHandler) SaveSpec(c *gin.Context) {
	rev := h.revision(c)
	if rev == nil {
		return
	}

	// Bind the spec fields over the loaded row; identity and lifecycle
	// columns are pinned so the body cannot move the revision.
	id, partID, revision, config, assemblyID := rev.ID, rev.PartID, rev.Revision, rev.Configuration, rev.AssemblyID
	if err := c.ShouldBindJSON(rev); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	rev.ID, rev.PartID, rev.Revision, rev.Configuration, rev.AssemblyID = id, partID, revision, config, assemblyID

	warnings, err := h.svc.SaveSpec(c.Request.Context(), rev)
	if err != nil {
		Fail(c, err)
		return
	}

	Success(c, gin.H{"revision": rev, "warnings": warnings})
}

// Release marks the revision released.
func (h *RevisionHandler) Release(c *gin.Context) {
	rev := h.revision(c)
	if rev == nil {
		return
	}

	if err := h.svc.Release(c.Request.Context(), rev); err != nil {
		Fail(c, err)
		return
	}

	Success(c, rev)
}

// Revert returns a released revision to the working configuration.
func (h *RevisionHandler) Revert(c *gin.Context) {
	rev := h.revision(c)
	if rev == nil {
		return
	}

	if err := h.svc.Revert(c.Request.Context(), rev); err != nil {
		Fail(c, err)
		return
	}

	Success(c, rev)
}

// Fork creates the next revision from this one, optionally deep-copying
// the assembly and repointing parents at the successor.
func (h *RevisionHandler) Fork(c *gin.Context) {
	rev := h.revision(c)
	if rev == nil {
		return
	}

	var req service.ForkInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	fork, err := h.svc.Fork(c.Request.Context(), rev, &req)
	if err != nil {
		Fail(c, err)
		return
	}

	Created(c, fork)
}
