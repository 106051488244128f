package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"annualreports/internal/assets"
	"annualreports/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultRemoteTimeout = 60 * time.Second

type ReportRepository interface {
	ReportExists(ctx context.Context, exchange, ticker string, year int) (bool, error)
	CreateReport(ctx context.Context, report *models.Report) error
	UpsertReport(ctx context.Context, report *models.Report) error
	ReportByKey(ctx context.Context, exchange, ticker string, year int) (*models.Report, error)
}

type CompanyRepository interface {
	UpsertCompanyWithProfile(ctx context.Context, company *models.Company, profile *models.CompanyProfile) (companyCreated, profileCreated bool, err error)
}

// Thumbnailer renders the first page of a PDF to an encoded JPEG.
type Thumbnailer interface {
	Extract(ctx context.Context, document []byte) ([]byte, error)
}

// Upload is one received file. Err is set when the file could not be read.
// When Open is set the contents are loaded only once the file passed its
// checks, so a batch holds at most one file in memory.
type Upload struct {
	Name string
	Data []byte
	Open func() ([]byte, error)
	Err  error
}

func (u Upload) read() ([]byte, error) {
	if u.Err != nil {
		return nil, u.Err
	}
	if u.Open != nil {
		return u.Open()
	}
	return u.Data, nil
}

// CompanyFields are the company and profile values sent with a logo.
// Absent fields are empty strings and are stored as such.
type CompanyFields struct {
	Name         string
	Sector       string
	Industry     string
	EmpNumber    string
	Address      string
	Info         string
	InstaLink    string
	FaceLink     string
	YoutubeLink  string
	TwitterLink  string
	WebLink      string
	LinkedinLink string
}

// Pipeline stores uploaded reports and logos. Remote uploads always happen
// before the database write, so a failure in between leaves an orphaned
// asset, which is cleaned up on a best-effort basis, rather than a row
// without its document.
type Pipeline struct {
	Store       assets.Store
	Reports     ReportRepository
	Companies   CompanyRepository
	Thumbnailer Thumbnailer
	Logger      *zap.SugaredLogger

	// Bounds every single call to the asset store and the thumbnailer.
	RemoteTimeout time.Duration

	newID func() string
}

func NewPipeline(store assets.Store, reports ReportRepository, companies CompanyRepository, thumbnailer Thumbnailer, logger *zap.SugaredLogger, remoteTimeout time.Duration) *Pipeline {
	if remoteTimeout <= 0 {
		remoteTimeout = defaultRemoteTimeout
	}

	return &Pipeline{
		Store:         store,
		Reports:       reports,
		Companies:     companies,
		Thumbnailer:   thumbnailer,
		Logger:        logger,
		RemoteTimeout: remoteTimeout,
		newID:         uuid.NewString,
	}
}

// IngestReports processes the uploads one after another. There is exactly
// one outcome per upload, in input order, and a failed file never affects
// the others.
func (p *Pipeline) IngestReports(ctx context.Context, uploads []Upload) []UploadOutcome {
	outcomes := make([]UploadOutcome, 0, len(uploads))
	for _, upload := range uploads {
		outcomes = append(outcomes, p.IngestReport(ctx, upload))
	}
	return outcomes
}

// IngestReport stores one EXCHANGE_TICKER_YEAR.pdf upload unless a report
// with that key already exists.
func (p *Pipeline) IngestReport(ctx context.Context, upload Upload) (outcome UploadOutcome) {
	outcome = UploadOutcome{File: upload.Name}
	defer p.finish("report", &outcome)

	key, err := ParseReportFilename(upload.Name)
	if err != nil {
		outcome.fail(err)
		return outcome
	}
	outcome.setReportKey(key)

	exists, err := p.Reports.ReportExists(ctx, key.Exchange, key.Ticker, key.Year)
	if err != nil {
		outcome.fail(fmt.Errorf("%w: %v", ErrPersistence, err))
		return outcome
	}
	if exists {
		outcome.fail(fmt.Errorf("%w: %s", ErrDuplicateKey, key))
		return outcome
	}

	document, err := upload.read()
	if err != nil {
		outcome.fail(fmt.Errorf("%w: %v", ErrUnreadable, err))
		return outcome
	}

	p.storeReport(ctx, &outcome, key, document, false)
	return outcome
}

// UpsertReport stores the document under the given key, replacing the
// document and thumbnail of an existing report.
func (p *Pipeline) UpsertReport(ctx context.Context, key ReportKey, upload Upload) (outcome UploadOutcome) {
	outcome = UploadOutcome{File: upload.Name}
	defer p.finish("report", &outcome)

	if key.Exchange == "" || key.Ticker == "" || key.Year <= 0 ||
		strings.Contains(key.Exchange, delimiter) || strings.Contains(key.Ticker, delimiter) {
		outcome.fail(fmt.Errorf("%w: invalid report key %s", ErrMalformedKey, key))
		return outcome
	}
	outcome.setReportKey(key)

	document, err := upload.read()
	if err != nil {
		outcome.fail(fmt.Errorf("%w: %v", ErrUnreadable, err))
		return outcome
	}

	p.storeReport(ctx, &outcome, key, document, true)
	return outcome
}

func (p *Pipeline) storeReport(ctx context.Context, outcome *UploadOutcome, key ReportKey, document []byte, upsert bool) {
	c := p.newCleanup()
	defer func() {
		if r := recover(); r != nil {
			outcome.fail(fmt.Errorf("unexpected failure while storing %s: %v", key, r))
		}
		if !outcome.OK() {
			c.run(ctx, p.referencedBy(key, upsert))
		}
	}()

	pdf, err := p.put(ctx, assets.Object{
		Key:         key.DocumentAssetKey(),
		Kind:        assets.Document,
		Ext:         "pdf",
		ContentType: "application/pdf",
		Data:        document,
	})
	if err != nil {
		outcome.fail(fmt.Errorf("%w: %v", ErrRemoteStore, err))
		return
	}
	c.track(pdf)

	report := &models.Report{
		Exchange:   key.Exchange,
		Ticker:     key.Ticker,
		Year:       key.Year,
		PDFURL:     &pdf.URL,
		PDFAssetID: pdf.ID,
	}

	thumb, err := p.thumbnail(ctx, key, document)
	if err != nil {
		thumbnailFailuresTotal.Inc()
		outcome.warn(err)
		p.Logger.Warnw("Storing report without a thumbnail", "report", key.String(), "error", err)
	} else {
		c.track(thumb)
		report.ThumbnailURL = &thumb.URL
		report.ThumbnailAssetID = thumb.ID
	}

	if upsert {
		err = p.Reports.UpsertReport(ctx, report)
	} else {
		err = p.Reports.CreateReport(ctx, report)
	}
	if err != nil {
		if models.IsDuplicateKey(err) {
			outcome.fail(fmt.Errorf("%w: %s was stored by a concurrent upload", ErrDuplicateKey, key))
		} else {
			outcome.fail(fmt.Errorf("%w: %v", ErrPersistence, err))
		}
		return
	}

	outcome.Status = StatusSuccess
	outcome.ReportURLs = &ReportURLs{
		PDFURL:       pdf.URL,
		ThumbnailURL: report.ThumbnailURL,
	}
}

func (p *Pipeline) thumbnail(ctx context.Context, key ReportKey, document []byte) (asset assets.Asset, err error) {
	if p.Thumbnailer == nil {
		return assets.Asset{}, fmt.Errorf("%w: no thumbnailer configured", ErrThumbnail)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrThumbnail, r)
		}
	}()

	extractCtx, cancel := context.WithTimeout(ctx, p.RemoteTimeout)
	defer cancel()

	image, err := p.Thumbnailer.Extract(extractCtx, document)
	if err != nil {
		return assets.Asset{}, fmt.Errorf("%w: %v", ErrThumbnail, err)
	}

	asset, err = p.put(ctx, assets.Object{
		Key:         key.ThumbnailAssetKey(),
		Kind:        assets.Image,
		Ext:         "jpg",
		ContentType: "image/jpeg",
		Data:        image,
	})
	if err != nil {
		return assets.Asset{}, fmt.Errorf("%w: upload failed: %v", ErrThumbnail, err)
	}

	return asset, nil
}

// referencedBy keeps assets that the stored row for key points at. Asset
// keys are deterministic, so the winner of a concurrent upload and an
// upserted row share them with the failed attempt.
func (p *Pipeline) referencedBy(key ReportKey, keepOnError bool) func(context.Context, assets.Asset) bool {
	var stored *models.Report
	var loaded, lookupFailed bool

	return func(ctx context.Context, asset assets.Asset) bool {
		if !loaded {
			loaded = true

			lookupCtx, cancel := context.WithTimeout(ctx, p.RemoteTimeout)
			report, err := p.Reports.ReportByKey(lookupCtx, key.Exchange, key.Ticker, key.Year)
			cancel()
			if err != nil {
				p.Logger.Warnw("Failed to look up stored report before cleanup", "report", key.String(), "error", err)
				lookupFailed = true
			}
			stored = report
		}

		if lookupFailed {
			return keepOnError
		}
		return stored.References(asset.ID)
	}
}

// IngestLogo stores a company logo and upserts the company and its profile.
func (p *Pipeline) IngestLogo(ctx context.Context, upload Upload, fields CompanyFields) (outcome UploadOutcome) {
	outcome = UploadOutcome{File: upload.Name}
	defer p.finish("logo", &outcome)

	key, err := ParseLogoFilename(upload.Name)
	if err != nil {
		outcome.fail(err)
		return outcome
	}
	outcome.Exchange = key.Exchange
	outcome.Ticker = key.Ticker

	image, err := upload.read()
	if err != nil {
		outcome.fail(fmt.Errorf("%w: %v", ErrUnreadable, err))
		return outcome
	}

	c := p.newCleanup()
	defer func() {
		if r := recover(); r != nil {
			outcome.fail(fmt.Errorf("unexpected failure while storing logo for %s_%s: %v", key.Exchange, key.Ticker, r))
		}
		if !outcome.OK() {
			c.run(ctx, nil)
		}
	}()

	logo, err := p.put(ctx, assets.Object{
		Key:         key.AssetKey(p.newID()),
		Kind:        assets.Image,
		Ext:         strings.TrimPrefix(key.Ext, "."),
		ContentType: key.ContentType(),
		Data:        image,
	})
	if err != nil {
		outcome.fail(fmt.Errorf("%w: %v", ErrRemoteStore, err))
		return outcome
	}
	c.track(logo)

	company := &models.Company{
		Name:     fields.Name,
		Ticker:   key.Ticker,
		Exchange: key.Exchange,
		Sector:   fields.Sector,
		Industry: fields.Industry,
		Logo:     logo.URL,
	}
	profile := &models.CompanyProfile{
		Ticker:       key.Ticker,
		Exchange:     key.Exchange,
		EmpNumber:    fields.EmpNumber,
		Address:      fields.Address,
		Info:         fields.Info,
		InstaLink:    fields.InstaLink,
		FaceLink:     fields.FaceLink,
		YoutubeLink:  fields.YoutubeLink,
		TwitterLink:  fields.TwitterLink,
		WebLink:      fields.WebLink,
		LinkedinLink: fields.LinkedinLink,
	}

	companyCreated, profileCreated, err := p.Companies.UpsertCompanyWithProfile(ctx, company, profile)
	if err != nil {
		outcome.fail(fmt.Errorf("%w: %v", ErrPersistence, err))
		return outcome
	}

	outcome.Status = StatusSuccess
	outcome.LogoResult = &LogoResult{
		LogoURL:        logo.URL,
		CompanyCreated: companyCreated,
		ProfileCreated: profileCreated,
	}
	return outcome
}

func (p *Pipeline) put(ctx context.Context, obj assets.Object) (assets.Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, p.RemoteTimeout)
	defer cancel()

	return p.Store.Put(ctx, obj)
}

func (p *Pipeline) newCleanup() *cleanup {
	return &cleanup{
		store:   p.Store,
		logger:  p.Logger,
		timeout: p.RemoteTimeout,
	}
}

// finish recovers a panic into the outcome, then logs and counts it.
func (p *Pipeline) finish(kind string, outcome *UploadOutcome) {
	if r := recover(); r != nil {
		outcome.fail(fmt.Errorf("unexpected failure: %v", r))
	}

	switch outcome.Status {
	case StatusSuccess:
		p.Logger.Infow("Ingested file", "kind", kind, "file", outcome.File, "warnings", len(outcome.Warnings))
	case StatusSkipped:
		p.Logger.Infow("Skipped file", "kind", kind, "file", outcome.File, "reason", outcome.Reason)
	default:
		p.Logger.Warnw("Failed to ingest file", "kind", kind, "file", outcome.File, "error", outcome.Error, "reason", outcome.Reason)
	}

	observe(kind, *outcome)
}
