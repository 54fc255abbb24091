package handler

import (
	"fmt"

	"github.com/bomwerk/bomwerk/internal/plm/csvio"
	"github.com/bomwerk/bomwerk/internal/plm/service"
	"github.com/gin-gonic/gin"
)

// ExportHandler serves BOM downloads in CSV and XLSX.
type ExportHandler struct {
	exporter  *csvio.Exporter
	revisions *service.RevisionService
	orgs      *service.OrganizationService
}

func NewExportHandler(exporter *csvio.Exporter, revisions *service.RevisionService,
	orgs *service.OrganizationService) *ExportHandler {
	return &ExportHandler{exporter: exporter, revisions: revisions, orgs: orgs}
}

// Export streams a revision's BOM. Query parameters: view=indented|flat,
// format=csv|xlsx, sourcing=1 to add per-offer columns, quantity for the
// extract quantity. The JWT middleware accepts a ?token= so this works as
// a plain download link.
func (h *ExportHandler) Export(c *gin.Context) {
	org := requireOrg(c, h.orgs)
	if org == nil {
		return
	}

	rev, err := h.revisions.GetRevision(c.Request.Context(), org.ID, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}

	qty := queryInt(c, "quantity", 1)
	withSourcing := c.Query("sourcing") == "1"
	view := c.DefaultQuery("view", "indented")
	format := c.DefaultQuery("format", "csv")

	var data []byte
	switch {
	case view == "indented" && format == "csv":
		data, err = h.exporter.IndentedCSV(c.Request.Context(), rev, qty, withSourcing)
	case view == "flat" && format == "csv":
		data, err = h.exporter.FlatCSV(c.Request.Context(), rev, qty, withSourcing)
	case view == "indented" && format == "xlsx":
		data, err = h.exporter.IndentedXLSX(c.Request.Context(), rev, qty, withSourcing)
	case view == "flat" && format == "xlsx":
		data, err = h.exporter.FlatXLSX(c.Request.Context(), rev, qty, withSourcing)
	default:
		BadRequest(c, "view must be indented or flat, format must be csv or xlsx")
		return
	}
	if err != nil {
		Fail(c, err)
		return
	}

	name := "bom"
	if rev.Part != nil {
		name = rev.Part.FullNumber()
	}
	filename := fmt.Sprintf("%s-%s-%s.%s", name, rev.Revision, view, format)

	contentType := "text/csv"
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, contentType, data)
}
