package models

import (
	"context"

	"gorm.io/gorm"
)

// Repository binds the query functions of this package to a database handle
// and a request context.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) ReportExists(ctx context.Context, exchange, ticker string, year int) (bool, error) {
	return ReportExists(r.DB.WithContext(ctx), exchange, ticker, year)
}

func (r *Repository) CreateReport(ctx context.Context, report *Report) error {
	return CreateReport(r.DB.WithContext(ctx), report)
}

func (r *Repository) UpsertReport(ctx context.Context, report *Report) error {
	return UpsertReport(r.DB.WithContext(ctx), report)
}

func (r *Repository) ReportByKey(ctx context.Context, exchange, ticker string, year int) (*Report, error) {
	return GetReportByKey(r.DB.WithContext(ctx), exchange, ticker, year)
}

func (r *Repository) ReportByID(ctx context.Context, id uint) (*Report, error) {
	return GetReportByID(r.DB.WithContext(ctx), id)
}

func (r *Repository) Reports(ctx context.Context) ([]Report, error) {
	return GetReports(r.DB.WithContext(ctx))
}

func (r *Repository) CompanyReports(ctx context.Context, ticker, exchange string) ([]Report, error) {
	return GetCompanyReports(r.DB.WithContext(ctx), ticker, exchange)
}

func (r *Repository) RandomCompanyReport(ctx context.Context, ticker, exchange string) (*Report, error) {
	return GetRandomCompanyReport(r.DB.WithContext(ctx), ticker, exchange)
}

func (r *Repository) Companies(ctx context.Context, exchange string) ([]Company, error) {
	return GetCompanies(r.DB.WithContext(ctx), exchange)
}

func (r *Repository) RandomCompanies(ctx context.Context, limit int) ([]Company, error) {
	return GetRandomCompanies(r.DB.WithContext(ctx), limit)
}

func (r *Repository) Company(ctx context.Context, ticker, exchange string) (*Company, error) {
	return GetCompany(r.DB.WithContext(ctx), ticker, exchange)
}

func (r *Repository) CompanyProfile(ctx context.Context, ticker, exchange string) (*CompanyProfile, error) {
	return GetCompanyProfile(r.DB.WithContext(ctx), ticker, exchange)
}

func (r *Repository) UpsertCompanyWithProfile(ctx context.Context, company *Company, profile *CompanyProfile) (bool, bool, error) {
	return UpsertCompanyWithProfile(r.DB.WithContext(ctx), company, profile)
}
