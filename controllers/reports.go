package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"annualreports/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReportsController struct {
	Catalog Catalog
	Fetcher DocumentFetcher
	Logger  *zap.SugaredLogger
}

type reportItem struct {
	ID           uint    `json:"id"`
	Year         int     `json:"year"`
	PDFURL       *string `json:"pdf_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
	Exchange     string  `json:"exchange"`
}

func reportItems(reports []models.Report) []reportItem {
	items := make([]reportItem, 0, len(reports))
	for _, report := range reports {
		items = append(items, reportItem{
			ID:           report.ID,
			Year:         report.Year,
			PDFURL:       report.PDFURL,
			ThumbnailURL: report.ThumbnailURL,
			Exchange:     report.Exchange,
		})
	}
	return items
}

func (rc ReportsController) GetReports(c *gin.Context) {
	reports, err := rc.Catalog.Reports(c.Request.Context())
	if err != nil {
		rc.Logger.Errorw("Failed to list reports", "error", err)
		RespondInternalErr(c)
		return
	}

	c.JSON(http.StatusOK, reportItems(reports))
}

// Download streams the stored document as an attachment. The document is
// fetched from its URL on every request.
func (rc ReportsController) Download(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		RespondBadRequestErr(c, ErrInvalidReportID)
		return
	}

	report, err := rc.Catalog.ReportByID(c.Request.Context(), uint(id))
	if err != nil {
		rc.Logger.Errorw("Failed to get report", "id", id, "error", err)
		RespondInternalErr(c)
		return
	}
	if report == nil {
		RespondNotFound(c, ErrReportNotFound)
		return
	}
	if report.PDFURL == nil || *report.PDFURL == "" {
		RespondNotFound(c, ErrMissingPDFURL)
		return
	}

	body, _, err := rc.Fetcher.Open(c.Request.Context(), *report.PDFURL)
	if err != nil {
		rc.Logger.Warnw("Failed to fetch report document", "id", id, "url", *report.PDFURL, "error", err)
		RespondErr(c, http.StatusBadGateway, ErrUpstream)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, -1, "application/pdf", body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s_%d.pdf"`, report.Ticker, report.Year),
	})
}
