package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Company is one listed issuer. Ticker and exchange together identify it.
type Company struct {
	Generic

	// Company name.
	Name     string `gorm:"size:255;not null" json:"name"`
	Ticker   string `gorm:"size:20;not null" json:"ticker"`
	Exchange string `gorm:"size:50;not null" json:"exchange"`
	Sector   string `gorm:"size:100" json:"sector"`
	Industry string `gorm:"size:150" json:"industry"`
	// Absolute URL, or a path relative to the media root for older rows.
	Logo string `json:"logo"`
}

func (Company) TableName() string {
	return "comp_name"
}

// CompanyProfile is the optional extended metadata of a Company.
type CompanyProfile struct {
	Ticker   string `gorm:"primaryKey;size:20" json:"ticker"`
	Exchange string `gorm:"primaryKey;size:50" json:"exchange"`

	// Free text, e.g. "10,000+".
	EmpNumber    string `gorm:"column:emp_number;size:100" json:"emp_number"`
	Address      string `json:"address"`
	Info         string `json:"info"`
	InstaLink    string `gorm:"size:300" json:"insta_link"`
	FaceLink     string `gorm:"size:300" json:"face_link"`
	YoutubeLink  string `gorm:"size:300" json:"youtube_link"`
	TwitterLink  string `gorm:"size:300" json:"twitter_link"`
	WebLink      string `gorm:"size:300" json:"web_link"`
	LinkedinLink string `gorm:"size:300" json:"linkedin_link"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (CompanyProfile) TableName() string {
	return "comp_info"
}

func whereCompanyKey(db *gorm.DB, ticker, exchange string) *gorm.DB {
	return db.Where("LOWER(ticker) = LOWER(?) AND LOWER(exchange) = LOWER(?)", ticker, exchange)
}

// GetCompanies lists companies, optionally restricted to one exchange. The
// stored exchange is trimmed before the case-insensitive comparison.
func GetCompanies(db *gorm.DB, exchange string) ([]Company, error) {
	query := db.Order("id")
	if exchange != "" {
		query = query.Where("LOWER(TRIM(exchange)) = LOWER(?)", exchange)
	}

	var companies []Company
	if err := query.Find(&companies).Error; err != nil {
		return nil, err
	}

	return companies, nil
}

func GetCompany(db *gorm.DB, ticker, exchange string) (*Company, error) {
	var company Company
	err := whereCompanyKey(db, ticker, exchange).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &company, nil
}

func GetCompanyProfile(db *gorm.DB, ticker, exchange string) (*CompanyProfile, error) {
	var profile CompanyProfile
	err := whereCompanyKey(db, ticker, exchange).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &profile, nil
}

// GetRandomCompanies samples up to limit companies uniformly.
func GetRandomCompanies(db *gorm.DB, limit int) ([]Company, error) {
	var companies []Company
	if err := db.Order("RANDOM()").Limit(limit).Find(&companies).Error; err != nil {
		return nil, err
	}

	return companies, nil
}

// UpsertCompanyWithProfile creates or updates the company and its profile in
// one transaction. Every column is written, so empty strings replace old
// values. The returned flags tell whether each row was newly created.
func UpsertCompanyWithProfile(db *gorm.DB, company *Company, profile *CompanyProfile) (companyCreated, profileCreated bool, err error) {
	err = db.Transaction(func(tx *gorm.DB) error {
		var created bool
		var err error

		created, err = upsertCompany(tx, company)
		if err != nil {
			return err
		}
		companyCreated = created

		created, err = upsertProfile(tx, profile)
		if err != nil {
			return err
		}
		profileCreated = created

		return nil
	})
	if err != nil {
		return false, false, err
	}

	return companyCreated, profileCreated, nil
}

func upsertCompany(tx *gorm.DB, company *Company) (bool, error) {
	var existing Company
	err := whereCompanyKey(tx, company.Ticker, company.Exchange).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, tx.Create(company).Error
	}
	if err != nil {
		return false, err
	}

	err = tx.Model(&existing).Updates(map[string]interface{}{
		"name":     company.Name,
		"exchange": company.Exchange,
		"sector":   company.Sector,
		"industry": company.Industry,
		"logo":     company.Logo,
	}).Error
	if err != nil {
		return false, err
	}

	company.ID = existing.ID
	company.CreatedAt = existing.CreatedAt
	return false, nil
}

func upsertProfile(tx *gorm.DB, profile *CompanyProfile) (bool, error) {
	var existing CompanyProfile
	err := whereCompanyKey(tx, profile.Ticker, profile.Exchange).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, tx.Create(profile).Error
	}
	if err != nil {
		return false, err
	}

	err = tx.Model(&CompanyProfile{}).
		Where("ticker = ? AND exchange = ?", existing.Ticker, existing.Exchange).
		Updates(map[string]interface{}{
			"emp_number":    profile.EmpNumber,
			"address":       profile.Address,
			"info":          profile.Info,
			"insta_link":    profile.InstaLink,
			"face_link":     profile.FaceLink,
			"youtube_link":  profile.YoutubeLink,
			"twitter_link":  profile.TwitterLink,
			"web_link":      profile.WebLink,
			"linkedin_link": profile.LinkedinLink,
		}).Error
	return false, err
}
