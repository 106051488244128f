package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"annualreports/ingest"
	"annualreports/models"

	"github.com/gin-gonic/gin"
)

var (
	ErrInternalError   = errors.New("Internal error")
	ErrCompanyNotFound = errors.New("Company not found")
	ErrReportNotFound  = errors.New("Report not found")
	ErrMissingPDFURL   = errors.New("PDF URL missing")
	ErrInvalidLimit    = errors.New("limit must be a positive integer")
	ErrInvalidReportID = errors.New("Invalid report id")
	ErrUpstream        = errors.New("Failed to fetch the document")
)

const (
	defaultRandomLimit = 6
	maxRandomLimit     = 50
)

// Catalog is the read side of the report and company tables.
type Catalog interface {
	Companies(ctx context.Context, exchange string) ([]models.Company, error)
	RandomCompanies(ctx context.Context, limit int) ([]models.Company, error)
	Company(ctx context.Context, ticker, exchange string) (*models.Company, error)
	CompanyProfile(ctx context.Context, ticker, exchange string) (*models.CompanyProfile, error)
	Reports(ctx context.Context) ([]models.Report, error)
	CompanyReports(ctx context.Context, ticker, exchange string) ([]models.Report, error)
	RandomCompanyReport(ctx context.Context, ticker, exchange string) (*models.Report, error)
	ReportByID(ctx context.Context, id uint) (*models.Report, error)
}

type Ingester interface {
	IngestReports(ctx context.Context, uploads []ingest.Upload) []ingest.UploadOutcome
	IngestLogo(ctx context.Context, upload ingest.Upload, fields ingest.CompanyFields) ingest.UploadOutcome
}

// DocumentFetcher opens a remote document for streaming.
type DocumentFetcher interface {
	Open(ctx context.Context, url string) (io.ReadCloser, string, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func RespondErr(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func RespondNotFound(c *gin.Context, err error) {
	RespondErr(c, http.StatusNotFound, err)
}

func RespondBadRequestErr(c *gin.Context, err error) {
	RespondErr(c, http.StatusBadRequest, err)
}

func RespondInternalErr(c *gin.Context) {
	RespondErr(c, http.StatusInternalServerError, ErrInternalError)
}

// randomLimit reads the sample size, defaulting to 6 and capped at 50.
func randomLimit(c *gin.Context) (int, error) {
	value := c.Query("limit")
	if value == "" {
		return defaultRandomLimit, nil
	}

	limit, err := strconv.Atoi(value)
	if err != nil || limit < 1 {
		return 0, ErrInvalidLimit
	}
	if limit > maxRandomLimit {
		limit = maxRandomLimit
	}
	return limit, nil
}

// mediaURL makes relative logo paths absolute against the media base URL.
func mediaURL(base, logo string) string {
	if logo == "" || strings.HasPrefix(logo, "http://") || strings.HasPrefix(logo, "https://") {
		return logo
	}
	return base + "/" + strings.TrimLeft(logo, "/")
}
