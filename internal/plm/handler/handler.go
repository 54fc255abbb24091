package handler

import (
	"errors"
	"strconv"

	"github.com/bomwerk/bomwerk/internal/plm/csvio"
	"github.com/bomwerk/bomwerk/internal/plm/entity"
	"github.com/bomwerk/bomwerk/internal/plm/plmerr"
	"github.com/bomwerk/bomwerk/internal/plm/pricing"
	"github.com/bomwerk/bomwerk/internal/plm/repository"
	"github.com/bomwerk/bomwerk/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// Handlers is the handler set for the BOM API.
type Handlers struct {
	Organization *OrganizationHandler
	PartClass    *PartClassHandler
	Part         *PartHandler
	Revision     *RevisionHandler
	Assembly     *AssemblyHandler
	Bom          *BomHandler
	Sourcing     *SourcingHandler
	Import       *ImportHandler
	Export       *ExportHandler
}

// NewHandlers wires handlers over the service graph. provider may be nil
// when no pricing source is configured; store may be nil when import
// archiving is disabled.
func NewHandlers(svc *service.Services, repos *repository.Repositories,
	store *service.ImportStore, provider pricing.Provider) *Handlers {
	return &Handlers{
		Organization: NewOrganizationHandler(svc.Organization),
		PartClass:    NewPartClassHandler(svc.PartClass, svc.Organization),
		Part:         NewPartHandler(svc.Part, svc.Organization),
		Revision:     NewRevisionHandler(svc.Revision, svc.Part, svc.Organization),
		Assembly:     NewAssemblyHandler(svc.Assembly, svc.Revision, svc.Organization),
		Bom:          NewBomHandler(svc.Bom, svc.Revision, svc.Organization),
		Sourcing:     NewSourcingHandler(svc.Sourcing, svc.Part, svc.Organization, repos.Sourcing, provider),
		Import:       NewImportHandler(svc, repos, store),
		Export:       NewExportHandler(csvio.NewExporter(svc.Assembly, repos.Sourcing), svc.Revision, svc.Organization),
	}
}

// Response is the common response envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes an error envelope; the HTTP status is the leading three
// digits of code.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// Fail maps a service error kind onto the response envelope.
func Fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, plmerr.ErrValidation):
		Error(c, 40001, err.Error())
	case errors.Is(err, plmerr.ErrCycle):
		Error(c, 40002, err.Error())
	case errors.Is(err, plmerr.ErrGraphRecursion):
		Error(c, 40003, err.Error())
	case errors.Is(err, plmerr.ErrUniqueness):
		Error(c, 40900, err.Error())
	case errors.Is(err, plmerr.ErrNotFound):
		Error(c, 40400, err.Error())
	case errors.Is(err, plmerr.ErrAuthorization):
		Error(c, 40300, err.Error())
	case errors.Is(err, plmerr.ErrProvider):
		Error(c, 50301, err.Error())
	default:
		Error(c, 50000, err.Error())
	}
}

// GetUserID reads the authenticated user id from the request context.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetOrganizationID reads the caller's organization id from the request context.
func GetOrganizationID(c *gin.Context) string {
	orgID, _ := c.Get("organization_id")
	if id, ok := orgID.(string); ok {
		return id
	}
	return ""
}

// requireOrg loads the caller's organization or writes the error response
// and returns nil.
func requireOrg(c *gin.Context, orgs *service.OrganizationService) *entity.Organization {
	orgID := GetOrganizationID(c)
	if orgID == "" {
		Forbidden(c, "No organization in token")
		return nil
	}
	org, err := orgs.GetOrganization(c.Request.Context(), orgID)
	if err != nil {
		Fail(c, err)
		return nil
	}
	return org
}

// GetPagination reads page/page_size query params with sane bounds.
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
