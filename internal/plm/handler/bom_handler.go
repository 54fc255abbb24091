package handler

import (
	"errors"

	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/bomwerk/bomwerk/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// BomHandler serves the costed rollup.
type BomHandler struct {
	svc       *service.BomService
	revisions *service.RevisionService
	orgs      *service.OrganizationService
}

func NewBomHandler(svc *service.BomService, revisions *service.RevisionService,
	orgs *service.OrganizationService) *BomHandler {
	return &BomHandler{svc: svc, revisions: revisions, orgs: orgs}
}

// Rollup walks the revision's assembly and prices every line at the
// extract quantity. Lines without a usable offer are counted, not fatal.
func (h *BomHandler) Rollup(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	rev, err := h.revisions.GetRevision(c.Request.Context(), org.ID, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}

	qty := queryInt(c, "quantity", 0)
	bom, err := h.svc.Rollup(c.Request.Context(), rev, qty)
	if err != nil && !errors.Is(err, plmerr.ErrGraphRecursion) {
		Fail(c, err)
		return
	}

	resp := gin.H{"bom": bom}
	if err != nil {
		resp["truncated"] = true
	}
	Success(c, resp)
}
