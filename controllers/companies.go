package controllers

import (
	"net/http"
	"strings"

	"annualreports/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const noReportsMessage = "No reports available for this company"

type CompaniesController struct {
	Catalog Catalog
	// Base URL for logos stored as relative paths.
	MediaURL string
	Logger   *zap.SugaredLogger
}

type companyItem struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Ticker   string `json:"ticker"`
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
	Exchange string `json:"exchange"`
	Logo     string `json:"logo"`
}

type socialLinks struct {
	Instagram string `json:"instagram"`
	Facebook  string `json:"facebook"`
	Youtube   string `json:"youtube"`
	Twitter   string `json:"twitter"`
	Website   string `json:"website"`
	Linkedin  string `json:"linkedin"`
}

type companyDetail struct {
	Ticker        string       `json:"ticker"`
	CompanyName   string       `json:"company_name"`
	Exchange      string       `json:"exchange"`
	Sector        string       `json:"sector"`
	Industry      string       `json:"industry"`
	Logo          string       `json:"logo"`
	EmployeeCount string       `json:"employee_count"`
	Address       string       `json:"address"`
	Description   string       `json:"description"`
	SocialLinks   socialLinks  `json:"social_links"`
	Reports       []reportItem `json:"reports"`
	ReportMessage string       `json:"report_message"`
}

type randomCompany struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Ticker   string `json:"ticker"`
	Sector   string `json:"sector"`
	Exchange string `json:"exchange"`
}

type randomReport struct {
	ID           *uint   `json:"id"`
	Year         *int    `json:"year"`
	HasReport    bool    `json:"has_report"`
	ReportPDF    *string `json:"report_pdf"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

type randomResult struct {
	Company randomCompany `json:"company"`
	Report  randomReport  `json:"report"`
}

type logoItem struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Ticker   string `json:"ticker"`
	Exchange string `json:"exchange"`
	Logo     string `json:"logo"`
}

// GetCompanies lists all companies, optionally only those of one exchange.
func (cc CompaniesController) GetCompanies(c *gin.Context) {
	exchange := strings.TrimSpace(c.Query("exchange"))

	companies, err := cc.Catalog.Companies(c.Request.Context(), exchange)
	if err != nil {
		cc.Logger.Errorw("Failed to list companies", "exchange", exchange, "error", err)
		RespondInternalErr(c)
		return
	}

	items := make([]companyItem, 0, len(companies))
	for _, company := range companies {
		items = append(items, companyItem{
			ID:       company.ID,
			Name:     company.Name,
			Ticker:   company.Ticker,
			Sector:   company.Sector,
			Industry: company.Industry,
			Exchange: company.Exchange,
			Logo:     mediaURL(cc.MediaURL, company.Logo),
		})
	}

	c.JSON(http.StatusOK, gin.H{"companies": items})
}

// GetCompany returns the profile and reports of one company.
func (cc CompaniesController) GetCompany(c *gin.Context) {
	ctx := c.Request.Context()
	ticker := c.Param("ticker")
	exchange := c.Param("exchange")
	logger := cc.Logger.With("ticker", ticker, "exchange", exchange)

	company, err := cc.Catalog.Company(ctx, ticker, exchange)
	if err != nil {
		logger.Errorw("Failed to get company", "error", err)
		RespondInternalErr(c)
		return
	}
	if company == nil {
		RespondNotFound(c, ErrCompanyNotFound)
		return
	}

	profile, err := cc.Catalog.CompanyProfile(ctx, ticker, exchange)
	if err != nil {
		logger.Errorw("Failed to get company profile", "error", err)
		RespondInternalErr(c)
		return
	}
	if profile == nil {
		profile = &models.CompanyProfile{}
	}

	reports, err := cc.Catalog.CompanyReports(ctx, ticker, exchange)
	if err != nil {
		logger.Errorw("Failed to get company reports", "error", err)
		RespondInternalErr(c)
		return
	}

	detail := companyDetail{
		Ticker:        company.Ticker,
		CompanyName:   company.Name,
		Exchange:      company.Exchange,
		Sector:        company.Sector,
		Industry:      company.Industry,
		Logo:          mediaURL(cc.MediaURL, company.Logo),
		EmployeeCount: profile.EmpNumber,
		Address:       profile.Address,
		Description:   profile.Info,
		SocialLinks: socialLinks{
			Instagram: profile.InstaLink,
			Facebook:  profile.FaceLink,
			Youtube:   profile.YoutubeLink,
			Twitter:   profile.TwitterLink,
			Website:   profile.WebLink,
			Linkedin:  profile.LinkedinLink,
		},
		Reports: reportItems(reports),
	}
	if len(reports) == 0 {
		detail.ReportMessage = noReportsMessage
	}

	c.JSON(http.StatusOK, detail)
}

// GetRandomCompanies samples companies, each with one random report if it
// has any.
func (cc CompaniesController) GetRandomCompanies(c *gin.Context) {
	ctx := c.Request.Context()

	limit, err := randomLimit(c)
	if err != nil {
		RespondBadRequestErr(c, err)
		return
	}

	companies, err := cc.Catalog.RandomCompanies(ctx, limit)
	if err != nil {
		cc.Logger.Errorw("Failed to sample companies", "error", err)
		RespondInternalErr(c)
		return
	}

	results := make([]randomResult, 0, len(companies))
	for _, company := range companies {
		report, err := cc.Catalog.RandomCompanyReport(ctx, company.Ticker, company.Exchange)
		if err != nil {
			cc.Logger.Errorw("Failed to sample a company report", "ticker", company.Ticker, "exchange", company.Exchange, "error", err)
			RespondInternalErr(c)
			return
		}

		result := randomResult{
			Company: randomCompany{
				ID:       company.ID,
				Name:     company.Name,
				Ticker:   company.Ticker,
				Sector:   company.Sector,
				Exchange: company.Exchange,
			},
		}
		if report != nil {
			result.Report = randomReport{
				ID:           &report.ID,
				Year:         &report.Year,
				HasReport:    true,
				ReportPDF:    report.PDFURL,
				ThumbnailURL: report.ThumbnailURL,
			}
		}
		results = append(results, result)
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetRandomLogos samples companies for display.
func (cc CompaniesController) GetRandomLogos(c *gin.Context) {
	limit, err := randomLimit(c)
	if err != nil {
		RespondBadRequestErr(c, err)
		return
	}

	companies, err := cc.Catalog.RandomCompanies(c.Request.Context(), limit)
	if err != nil {
		cc.Logger.Errorw("Failed to sample companies", "error", err)
		RespondInternalErr(c)
		return
	}

	items := make([]logoItem, 0, len(companies))
	for _, company := range companies {
		items = append(items, logoItem{
			ID:       company.ID,
			Name:     company.Name,
			Ticker:   company.Ticker,
			Exchange: company.Exchange,
			Logo:     mediaURL(cc.MediaURL, company.Logo),
		})
	}

	c.JSON(http.StatusOK, gin.H{"companies": items})
}
