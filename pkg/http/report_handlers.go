package http

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"liyu1981.xyz/vessel-resource-service/pkg/metrics"
	"liyu1981.xyz/vessel-resource-service/pkg/report"
)

func (rs *RestfulServer) GetReport(c *gin.Context) {
	t, ok := parseResourceType(c)
	if !ok {
		return
	}
	if rs.Reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reports not available"})
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	writer, err := rs.Reports.Get(format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter, ok := parsePageQuery(c)
	if !ok {
		return
	}

	data, err := report.Collect(c.Request.Context(), rs.Vessel.Resource, t, filter, rs.Vessel.Now())
	if err != nil {
		metrics.IncReportExport(writer.Format(), metrics.ResultError)
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := writer.Write(&buf, data); err != nil {
		metrics.IncReportExport(writer.Format(), metrics.ResultError)
		writeError(c, err)
		return
	}
	metrics.IncReportExport(writer.Format(), metrics.ResultSuccess)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(data, writer.Format())))
	c.Data(http.StatusOK, writer.ContentType(), buf.Bytes())
}
