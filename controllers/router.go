package controllers

import (
	"github.com/gin-gonic/gin"
)

type Router struct {
	HealthController    *HealthController
	CompaniesController *CompaniesController
	ReportsController   *ReportsController
	UploadsController   *UploadsController
}

func (r Router) RegisterRoutes(router gin.IRouter) {
	router.GET("/health", r.HealthController.Status)

	router.GET("/companies", r.CompaniesController.GetCompanies)
	router.GET("/company/:ticker/:exchange", r.CompaniesController.GetCompany)
	router.GET("/random-companies", r.CompaniesController.GetRandomCompanies)
	router.GET("/random-logos", r.CompaniesController.GetRandomLogos)

	router.GET("/reports", r.ReportsController.GetReports)
	router.GET("/report/:id/download", r.ReportsController.Download)

	router.POST("/upload-pdf", r.UploadsController.UploadPDF)
	router.POST("/upload-logo", r.UploadsController.UploadLogo)
}
