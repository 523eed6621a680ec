package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	reportingdomain "github.com/smallbiznis/rechargedesk/internal/reporting/domain"
)

// defaultReportDays is the window used when a report request names no dates.
const defaultReportDays = 30

func (s *Server) GetReportMetrics(c *gin.Context) {
	req, err := s.metricsRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.reportingSvc.Metrics(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ExportReport(c *gin.Context) {
	req, err := s.metricsRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	format := reportingdomain.Format(strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", string(reportingdomain.FormatCSV)))))
	doc, err := s.reportingSvc.Export(c.Request.Context(), req, format)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	attachment(c, doc.Filename, doc.ContentType, doc.Data)
}

// metricsRequest reads business_type, start and end. A missing end means today
// and a missing start means defaultReportDays back from end.
func (s *Server) metricsRequest(c *gin.Context) (reportingdomain.MetricsRequest, error) {
	start, end, err := parseDateRange("start", c.Query("start"), "end", c.Query("end"), false)
	if err != nil {
		return reportingdomain.MetricsRequest{}, err
	}

	req := reportingdomain.MetricsRequest{BusinessType: strings.TrimSpace(c.Query("business_type"))}
	if end != nil {
		req.End = *end
	} else {
		now := s.clock.Now().UTC()
		req.End = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if start != nil {
		req.Start = *start
	} else {
		req.Start = req.End.AddDate(0, 0, -(defaultReportDays - 1))
	}
	return req, nil
}
