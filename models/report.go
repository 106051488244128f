package models

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Report is one annual report document. The PDF and its thumbnail live in the
// asset store; the row is only written once the PDF upload succeeded, so a
// failure in between leaves an orphaned asset rather than a row without a
// document.
type Report struct {
	Generic

	// Unique case-insensitively, see CreateKeyIndexes.
	Exchange string `gorm:"size:50;not null" json:"exchange"`
	Ticker   string `gorm:"size:20;not null" json:"ticker"`
	Year     int    `gorm:"not null" json:"year"`

	PDFURL       *string `gorm:"column:pdf_url" json:"pdf_url"`
	ThumbnailURL *string `gorm:"column:thumbnail_url" json:"thumbnail_url"`

	// Asset store identifiers, used to tell which assets a row references.
	PDFAssetID       string `gorm:"column:pdf_asset_id" json:"-"`
	ThumbnailAssetID string `gorm:"column:thumbnail_asset_id" json:"-"`
}

func (Report) TableName() string {
	return "report"
}

// References reports whether the row points at the given asset identifier.
func (r *Report) References(assetID string) bool {
	if r == nil || assetID == "" {
		return false
	}
	return r.PDFAssetID == assetID || r.ThumbnailAssetID == assetID
}

func whereReportKey(db *gorm.DB, exchange, ticker string, year int) *gorm.DB {
	return db.Where("LOWER(exchange) = LOWER(?) AND LOWER(ticker) = LOWER(?) AND year = ?", exchange, ticker, year)
}

// CreateReport inserts the report in its own transaction.
func CreateReport(db *gorm.DB, report *Report) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(report).Error
	})
}

// UpsertReport inserts the report or replaces the document and thumbnail of
// the row that already holds its key.
func UpsertReport(db *gorm.DB, report *Report) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: reportKeyColumns,
			DoUpdates: clause.AssignmentColumns([]string{
				"pdf_url",
				"thumbnail_url",
				"pdf_asset_id",
				"thumbnail_asset_id",
				"updated_at",
			}),
		}).Create(report).Error
	})
}

func ReportExists(db *gorm.DB, exchange, ticker string, year int) (bool, error) {
	var count int64
	err := whereReportKey(db.Model(&Report{}), exchange, ticker, year).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func GetReportByKey(db *gorm.DB, exchange, ticker string, year int) (*Report, error) {
	var report Report
	err := whereReportKey(db, exchange, ticker, year).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &report, nil
}

func GetReportByID(db *gorm.DB, id uint) (*Report, error) {
	var report Report
	err := db.First(&report, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &report, nil
}

func GetReports(db *gorm.DB) ([]Report, error) {
	var reports []Report
	if err := db.Order("id").Find(&reports).Error; err != nil {
		return nil, err
	}

	return reports, nil
}

// GetCompanyReports returns the reports of one company, most recent year first.
func GetCompanyReports(db *gorm.DB, ticker, exchange string) ([]Report, error) {
	var reports []Report
	err := db.Where("LOWER(ticker) = LOWER(?) AND LOWER(exchange) = LOWER(?)", ticker, exchange).
		Order("year DESC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	return reports, nil
}

// GetRandomCompanyReport picks one of the company's reports uniformly, or
// returns nil when it has none.
func GetRandomCompanyReport(db *gorm.DB, ticker, exchange string) (*Report, error) {
	var reports []Report
	err := db.Where("LOWER(ticker) = LOWER(?) AND LOWER(exchange) = LOWER(?)", ticker, exchange).
		Order("RANDOM()").
		Limit(1).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	if len(reports) == 0 {
		return nil, nil
	}
	return &reports[0], nil
}
