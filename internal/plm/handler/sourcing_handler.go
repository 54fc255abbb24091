package handler

import (
	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/pricing"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"github.com/bomwerk/bomwerk/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// SourcingHandler serves manufacturers, sellers, offers and the external
// pricing lookup.
type SourcingHandler struct {
	svc      *service.SourcingService
	parts    *service.PartService
	orgs     *service.OrganizationService
	repo     *repository.SourcingRepository
	provider pricing.Provider
}

func NewSourcingHandler(svc *service.SourcingService, parts *service.PartService,
	orgs *service.OrganizationService, repo *repository.SourcingRepository,
	provider pricing.Provider) *SourcingHandler {
	return &SourcingHandler{
		svc:      svc,
		parts:    parts,
		orgs:     orgs,
		repo:     repo,
		provider: provider,
	}
}

func (h *SourcingHandler) part(c *gin.Context) (*entity.Organization, *entity.Part) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return nil, nil
	}
	part, err := h.parts.GetPart(c.Request.Context(), org.ID, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return nil, nil
	}
	return org, part
}

// AddManufacturerPart attaches a manufacturer part number to a part. An
// empty manufacturer name defaults to the organization itself.
func (h *SourcingHandler) AddManufacturerPart(c *gin.Context) {
	org, part := h.part(c)
	if part == nil {
		return
	}

	var req struct {
		ManufacturerPartNumber string `json:"manufacturer_part_number" binding:"required"`
		ManufacturerName       string `json:"manufacturer_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	name := req.ManufacturerName
	if name == "" {
		name = org.Name
	}
	manufacturer, err := h.svc.GetOrCreateManufacturer(c.Request.Context(), org.ID, name)
	if err != nil {
		Fail(c, err)
		return
	}

	mpart, err := h.svc.AddManufacturerPart(c.Request.Context(), part.ID, req.ManufacturerPartNumber, &manufacturer.ID)
	if err != nil {
		Fail(c, err)
		return
	}

	Created(c, mpart)
}

// ListManufacturerParts returns a part's manufacturer parts with offers.
func (h *SourcingHandler) ListManufacturerParts(c *gin.Context) {
	_, part := h.part(c)
	if part == nil {
		return
	}

	mparts, err := h.repo.ListManufacturerPartsByPart(c.Request.Context(), part.ID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"manufacturer_parts": mparts})
}

// AddSellerPart records an offer against a manufacturer part. The seller
// is created on first use.
func (h *SourcingHandler) AddSellerPart(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	mpart, err := h.repo.FindManufacturerPart(c.Request.Context(), c.Param("mpartId"))
	if err != nil {
		Fail(c, err)
		return
	}

	var req struct {
		SellerName string `json:"seller_name" binding:"required"`
		service.SellerPartInput
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	seller, err := h.svc.GetOrCreateSeller(c.Request.Context(), org.ID, req.SellerName)
	if err != nil {
		Fail(c, err)
		return
	}

	offer, err := h.svc.AddSellerPart(c.Request.Context(), seller.ID, mpart.ID, &req.SellerPartInput)
	if err != nil {
		Fail(c, err)
		return
	}

	Created(c, offer)
}

// ListSellerParts returns every offer across a part's manufacturer parts.
func (h *SourcingHandler) ListSellerParts(c *gin.Context) {
	_, part := h.part(c)
	if part == nil {
		return
	}

	offers, err := h.svc.SellerPartsForPart(c.Request.Context(), part.ID)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"seller_parts": offers})
}

// DeleteSellerPart removes one offer.
func (h *SourcingHandler) DeleteSellerPart(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	if err := h.repo.DeleteSellerPart(c.Request.Context(), c.Param("sellerPartId")); err != nil {
		Fail(c, err)
		return
	}

	Success(c, nil)
}

// MouserSearch looks up external pricing for a part. The part's class must
// have the lookup enabled and a provider must be configured. The MPN comes
// from the ?mpn= query, falling back to the primary manufacturer part.
func (h *SourcingHandler) MouserSearch(c *gin.Context) {
	_, part := h.part(c)
	if part == nil {
		return
	}

	if h.provider == nil {
		Error(c, 50300, "No pricing provider configured")
		return
	}

	if part.NumberClassID == nil || part.NumberClass == nil || !part.NumberClass.MouserEnabled {
		Forbidden(c, "Pricing lookup is not enabled for this part class")
		return
	}

	mpn := c.Query("mpn")
	if mpn == "" && part.PrimaryManufacturerPart != nil {
		mpn = part.PrimaryManufacturerPart.ManufacturerPartNumber
	}
	if mpn == "" {
		BadRequest(c, "mpn query parameter is required")
		return
	}

	results, err := h.provider.Search(c.Request.Context(), mpn)
	if err != nil {
		Fail(c, err)
		return
	}

	Success(c, gin.H{"results": results})
}
