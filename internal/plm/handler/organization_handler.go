package handler

import (
	"github.com/bomwerk/bomwerk/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// OrganizationHandler serves organization lifecycle and membership.
type OrganizationHandler struct {
	svc *service.OrganizationService
}

func NewOrganizationHandler(svc *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{svc: svc}
}

// Create creates an organization owned by the caller.
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req service.CreateOrganizationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	org, err := h.svc.CreateOrganization(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}

	Created(c, org)
}

// Get returns the caller's organization.
func (h *OrganizationHandler) Get(c *gin.Context) {
	org := requireOrg(c, h.svc)
	if org == nil {
		return
	}
	Success(c, org)
}

// Me returns the caller's organization and role.
func (h *OrganizationHandler) Me(c *gin.Context) {
	org, role, err := h.svc.MemberOrg(c.Request.Context(), GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"organization": org, "role": role})
}

// ChangeNumberScheme switches the numbering scheme. The service refuses
// once parts exist.
func (h *OrganizationHandler) ChangeNumberScheme(c *gin.Context) {
	org := requireOrg(c, h.svc)
	if org == nil {
		return
	}

	var req struct {
		NumberScheme string `json:"number_scheme" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.svc.ChangeNumberScheme(c.Request.Context(), org, req.NumberScheme); err != nil {
		Fail(c, err)
		return
	}

	Success(c, org)
}

// SetMemberRole assigns a member role within the caller's organization.
func (h *OrganizationHandler) SetMemberRole(c *gin.Context) {
	org := requireOrg(c, h.svc)
	if org == nil {
		return
	}

	userID := c.Param("userId")
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.svc.SetMemberRole(c.Request.Context(), org.ID, userID, req.Role); err != nil {
		Fail(c, err)
		return
	}

	Success(c, nil)
}
