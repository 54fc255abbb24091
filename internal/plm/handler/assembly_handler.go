package handler

import (
	"errors"
	"strconv"

	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/bomwerk/bomwerk/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// AssemblyHandler serves assembly lines and graph traversals.
type AssemblyHandler struct {
	svc       *service.AssemblyService
	revisions *service.RevisionService
	orgs      *service.OrganizationService
}

func NewAssemblyHandler(svc *service.AssemblyService, revisions *service.RevisionService,
	orgs *service.OrganizationService) *AssemblyHandler {
	return &AssemblyHandler{svc: svc, revisions: revisions, orgs: orgs}
}

func (h *AssemblyHandler) revision(c *gin.Context) *entity.PartRevision {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return nil
	}
	rev, err := h.revisions.GetRevision(c.Request.Context(), org.ID, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return nil
	}
	return rev
}

func queryInt(c *gin.Context, name string, def int) int {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return def
}

// AddSubpart adds one line to the revision's assembly. A line for the same
// revision and load state merges counts and designators.
func (h *AssemblyHandler) AddSubpart(c *gin.Context) {
	rev := h.revision(c)
	if rev == nil {
		return
	}

	var req service.SubpartInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	subpart, err := h.svc.AddSubpart(c.Request.Context(), rev, &req)
	if err != nil {
		Fail(c, err)
		return
	}

	Created(c, subpart)
}

// RemoveSubpart detaches one line from the revision's assembly.
func (h *AssemblyHandler) RemoveSubpart(c *gin.Context) {
	rev := h.revision(c)
	if rev == nil {
		return
	}

	if err := h.svc.RemoveSubpart(c.Request.Context(), rev, c.Param("subpartId")); err != nil {
		Fail(c, err)
		return
	}

	Success(c, nil)
}

// ListSubparts returns the revision's direct assembly lines in order.
func (h *AssemblyHandler) ListSubparts(c *gin.Context) {
	rev := h.revision(c)
	if rev == nil {
		return
	}

	subparts, err := h.svc.Subparts(c.Request.Context(), rev)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"subparts": subparts})
}

// IndentedBom returns the depth-first assembly traversal. A hit on the
// depth ceiling still returns the records walked so far.
func (h *AssemblyHandler) IndentedBom(c *gin.Context) {
	rev := h.revision(c)
	if rev == nil {
		return
	}

	qty := queryInt(c, "quantity", 1)
	records, err := h.svc.IndentedBom(c.Request.Context(), rev, qty)
	if err != nil && !errors.Is(err, plmerr.ErrGraphRecursion) {
		Fail(c, err)
		return
	}

	resp := gin.H{"records": records}
	if err != nil {
		resp["truncated"] = true
	}
	Success(c, resp)
}

// FlatBom returns the folded traversal, one line per distinct revision.
// Like the indented view, a tripped depth ceiling serves the lines folded
// so far with a truncated marker.
func (h *AssemblyHandler) FlatBom(c *gin.Context) {
	rev := h.revision(c)
	if rev == nil {
		return
	}

	qty := queryInt(c, "quantity", 1)
	items, err := h.svc.FlatBom(c.Request.Context(), rev, qty)
	if err != nil && !errors.Is(err, plmerr.ErrGraphRecursion) {
		Fail(c, err)
		return
	}

	resp := gin.H{"items": items}
	if err != nil {
		resp["truncated"] = true
	}
	Success(c, resp)
}

// WhereUsed returns every revision whose assembly reaches this one.
func (h *AssemblyHandler) WhereUsed(c *gin.Context) {
	rev := h.revision(c)
	if rev == nil {
		return
	}

	parents, err := h.svc.WhereUsed(c.Request.Context(), rev.ID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"used_in": parents})
}

// WhereUsedPart unions where-used across all revisions of a part.
func (h *AssemblyHandler) WhereUsedPart(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	parents, err := h.svc.WhereUsedPart(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"used_in": parents})
}
