package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"annualreports/internal/assets"
	"annualreports/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string]assets.Object
	puts      int
	putErr    func(obj assets.Object) error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]assets.Object{}}
}

func (s *fakeStore) Put(ctx context.Context, obj assets.Object) (assets.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.puts++
	if s.putErr != nil {
		if err := s.putErr(obj); err != nil {
			return assets.Asset{}, err
		}
	}

	id := obj.Key + "." + obj.Ext
	s.objects[id] = obj
	return assets.Asset{ID: id, Kind: obj.Kind, URL: "https://cdn.test/" + id}, nil
}

func (s *fakeStore) Delete(ctx context.Context, asset assets.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, asset.ID)
	return nil
}

func (s *fakeStore) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.objects[id]
	return ok
}

func (s *fakeStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.objects)
}

type fakeReports struct {
	rows      map[string]*models.Report
	existsErr error
	createErr error
	lookupErr error
	// Runs before the row is written; a non-nil error aborts the write.
	beforeWrite func(report *models.Report) error
}

func newFakeReports() *fakeReports {
	return &fakeReports{rows: map[string]*models.Report{}}
}

func rowKey(exchange, ticker string, year int) string {
	return strings.ToLower(fmt.Sprintf("%s|%s|%d", exchange, ticker, year))
}

func (r *fakeReports) ReportExists(ctx context.Context, exchange, ticker string, year int) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	_, ok := r.rows[rowKey(exchange, ticker, year)]
	return ok, nil
}

func (r *fakeReports) CreateReport(ctx context.Context, report *models.Report) error {
	if err := r.write(report); err != nil {
		return err
	}
	k := rowKey(report.Exchange, report.Ticker, report.Year)
	if _, ok := r.rows[k]; ok {
		return gorm.ErrDuplicatedKey
	}
	report.ID = uint(len(r.rows) + 1)
	r.rows[k] = report
	return nil
}

func (r *fakeReports) UpsertReport(ctx context.Context, report *models.Report) error {
	if err := r.write(report); err != nil {
		return err
	}
	r.rows[rowKey(report.Exchange, report.Ticker, report.Year)] = report
	return nil
}

func (r *fakeReports) write(report *models.Report) error {
	if r.beforeWrite != nil {
		if err := r.beforeWrite(report); err != nil {
			return err
		}
	}
	return r.createErr
}

func (r *fakeReports) ReportByKey(ctx context.Context, exchange, ticker string, year int) (*models.Report, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	return r.rows[rowKey(exchange, ticker, year)], nil
}

type fakeCompanies struct {
	companies map[string]*models.Company
	profiles  map[string]*models.CompanyProfile
	err       error
}

func newFakeCompanies() *fakeCompanies {
	return &fakeCompanies{
		companies: map[string]*models.Company{},
		profiles:  map[string]*models.CompanyProfile{},
	}
}

func (c *fakeCompanies) UpsertCompanyWithProfile(ctx context.Context, company *models.Company, profile *models.CompanyProfile) (bool, bool, error) {
	if c.err != nil {
		return false, false, c.err
	}

	k := strings.ToLower(company.Ticker + "|" + company.Exchange)
	_, companyExists := c.companies[k]
	_, profileExists := c.profiles[k]
	c.companies[k] = company
	c.profiles[k] = profile
	return !companyExists, !profileExists, nil
}

type fakeThumbnailer struct {
	err   error
	panic bool
}

func (f fakeThumbnailer) Extract(ctx context.Context, document []byte) ([]byte, error) {
	if f.panic {
		panic("renderer crashed")
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte("jpeg"), nil
}

type fixture struct {
	store     *fakeStore
	reports   *fakeReports
	companies *fakeCompanies
	pipeline  *Pipeline
}

func newFixture(thumbnailer Thumbnailer) *fixture {
	f := &fixture{
		store:     newFakeStore(),
		reports:   newFakeReports(),
		companies: newFakeCompanies(),
	}
	f.pipeline = NewPipeline(f.store, f.reports, f.companies, thumbnailer, zap.NewNop().Sugar(), time.Second)
	f.pipeline.newID = func() string { return "logo1" }
	return f
}

func pdfUpload(name string) Upload {
	return Upload{Name: name, Data: []byte("%PDF-1.4 test document")}
}

func TestIngestReportSuccess(t *testing.T) {
	f := newFixture(fakeThumbnailer{})

	outcome := f.pipeline.IngestReport(context.Background(), pdfUpload("NYSE_IBM_2021.pdf"))

	require.Equal(t, StatusSuccess, outcome.Status, outcome.Reason)
	assert.Equal(t, "NYSE", outcome.Exchange)
	assert.Equal(t, "IBM", outcome.Ticker)
	assert.Equal(t, 2021, outcome.Year)
	require.NotNil(t, outcome.ReportURLs)
	assert.Equal(t, "https://cdn.test/pdf_reports/NYSE_IBM_2021.pdf", outcome.PDFURL)
	require.NotNil(t, outcome.ThumbnailURL)
	assert.Equal(t, "https://cdn.test/report_thumbnails/NYSE_IBM_2021_thumb.jpg", *outcome.ThumbnailURL)
	assert.Empty(t, outcome.Warnings)

	row := f.reports.rows[rowKey("NYSE", "IBM", 2021)]
	require.NotNil(t, row)
	assert.Equal(t, "pdf_reports/NYSE_IBM_2021.pdf", row.PDFAssetID)
	assert.Equal(t, "report_thumbnails/NYSE_IBM_2021_thumb.jpg", row.ThumbnailAssetID)
	assert.Equal(t, 2, f.store.len())
}

func TestIngestReportMalformedHasNoSideEffects(t *testing.T) {
	f := newFixture(fakeThumbnailer{})

	outcome := f.pipeline.IngestReport(context.Background(), pdfUpload("NYSE_IBM.pdf"))

	assert.Equal(t, StatusError, outcome.Status)
	assert.Equal(t, "MalformedKey", outcome.Error)
	assert.ErrorIs(t, outcome.Err(), ErrMalformedKey)
	assert.Zero(t, f.store.puts)
	assert.Empty(t, f.reports.rows)
}

func TestIngestReportUnsupportedType(t *testing.T) {
	f := newFixture(fakeThumbnailer{})

	outcome := f.pipeline.IngestReport(context.Background(), pdfUpload("NYSE_IBM_2021.txt"))

	assert.Equal(t, StatusError, outcome.Status)
	assert.Equal(t, "UnsupportedType", outcome.Error)
	assert.Zero(t, f.store.puts)
}

func TestIngestReportTwiceIsSkipped(t *testing.T) {
	f := newFixture(fakeThumbnailer{})
	ctx := context.Background()

	first := f.pipeline.IngestReport(ctx, pdfUpload("NYSE_IBM_2021.pdf"))
	require.Equal(t, StatusSuccess, first.Status)
	puts := f.store.puts

	second := f.pipeline.IngestReport(ctx, pdfUpload("nyse_ibm_2021.pdf"))

	assert.Equal(t, StatusSkipped, second.Status)
	assert.Equal(t, "DuplicateKey", second.Error)
	assert.Nil(t, second.ReportURLs)
	assert.Equal(t, puts, f.store.puts)
	assert.Len(t, f.reports.rows, 1)
}

func TestIngestReportPersistenceFailureCleansUp(t *testing.T) {
	f := newFixture(fakeThumbnailer{})
	f.reports.createErr = errors.New("connection reset")

	outcome := f.pipeline.IngestReport(context.Background(), pdfUpload("NYSE_IBM_2021.pdf"))

	assert.Equal(t, StatusError, outcome.Status)
	assert.Equal(t, "PersistenceFailure", outcome.Error)
	assert.Contains(t, outcome.Reason, "connection reset")
	assert.Equal(t, 2, f.store.puts)
	assert.Zero(t, f.store.len())
	assert.Empty(t, f.reports.rows)
}

func TestIngestReportCleanupFailureKeepsOriginalReason(t *testing.T) {
	f := newFixture(fakeThumbnailer{})
	f.reports.createErr = errors.New("connection reset")
	f.store.deleteErr = errors.New("store unavailable")

	outcome := f.pipeline.IngestReport(context.Background(), pdfUpload("NYSE_IBM_2021.pdf"))

	assert.Equal(t, StatusError, outcome.Status)
	assert.Equal(t, "PersistenceFailure", outcome.Error)
	assert.Contains(t, outcome.Reason, "connection reset")
	assert.NotContains(t, outcome.Reason, "store unavailable")
}

func TestIngestReportPreCheckFailure(t *testing.T) {
	f := newFixture(fakeThumbnailer{})
	f.reports.existsErr = errors.New("database is down")

	outcome := f.pipeline.IngestReport(context.Background(), pdfUpload("NYSE_IBM_2021.pdf"))

	assert.Equal(t, "PersistenceFailure", outcome.Error)
	assert.Zero(t, f.store.puts)
}

func TestIngestReportRemoteStoreFailure(t *testing.T) {
	f := newFixture(fakeThumbnailer{})
	f.store.putErr = func(assets.Object) error { return context.DeadlineExceeded }

	outcome := f.pipeline.IngestReport(context.Background(), pdfUpload("NYSE_IBM_2021.pdf"))

	assert.Equal(t, StatusError, outcome.Status)
	assert.Equal(t, "RemoteStoreFailure", outcome.Error)
	assert.Empty(t, f.reports.rows)
}

func TestIngestReportThumbnailFailureIsNonFatal(t *testing.T) {
	f := newFixture(fakeThumbnailer{err: errors.New("corrupt page tree")})

	outcome := f.pipeline.IngestReport(context.Background(), pdfUpload("NYSE_IBM_2021.pdf"))

	require.Equal(t, StatusSuccess, outcome.Status)
	require.NotNil(t, outcome.ReportURLs)
	assert.NotEmpty(t, outcome.PDFURL)
	assert.Nil(t, outcome.ThumbnailURL)
	require.Len(t, outcome.Warnings, 1)
	assert.Contains(t, outcome.Warnings[0], "corrupt page tree")

	row := f.reports.rows[rowKey("NYSE", "IBM", 2021)]
	require.NotNil(t, row)
	assert.NotNil(t, row.PDFURL)
	assert.Nil(t, row.ThumbnailURL)
	assert.Empty(t, row.ThumbnailAssetID)
}

func TestIngestReportThumbnailUploadFailureIsNonFatal(t *testing.T) {
	f := newFixture(fakeThumbnailer{})
	f.store.putErr = func(obj assets.Object) error {
		if obj.Kind == assets.Image {
			return errors.New("image quota exceeded")
		}
		return nil
	}

	outcome := f.pipeline.IngestReport(context.Background(), pdfUpload("NYSE_IBM_2021.pdf"))

	require.Equal(t, StatusSuccess, outcome.Status)
	assert.Nil(t, outcome.ThumbnailURL)
	assert.Len(t, outcome.Warnings, 1)
}

func TestIngestReportThumbnailerPanicIsNonFatal(t *testing.T) {
	f := newFixture(fakeThumbnailer{panic: true})

	outcome := f.pipeline.IngestReport(context.Background(), pdfUpload("NYSE_IBM_2021.pdf"))

	require.Equal(t, StatusSuccess, outcome.Status)
	assert.Nil(t, outcome.ThumbnailURL)
	assert.Len(t, outcome.Warnings, 1)
}

func TestIngestReportWithoutThumbnailer(t *testing.T) {
	f := newFixture(nil)

	outcome := f.pipeline.IngestReport(context.Background(), pdfUpload("NYSE_IBM_2021.pdf"))

	require.Equal(t, StatusSuccess, outcome.Status)
	assert.Nil(t, outcome.ThumbnailURL)
}

func TestIngestReportConcurrentDuplicateKeepsWinnerAssets(t *testing.T) {
	f := newFixture(fakeThumbnailer{})
	f.reports.beforeWrite = func(report *models.Report) error {
		// Another upload of the same key commits first.
		winner := *report
		f.reports.rows[rowKey(report.Exchange, report.Ticker, report.Year)] = &winner
		return gorm.ErrDuplicatedKey
	}

	outcome := f.pipeline.IngestReport(context.Background(), pdfUpload("NYSE_IBM_2021.pdf"))

	assert.Equal(t, StatusSkipped, outcome.Status)
	assert.Equal(t, "DuplicateKey", outcome.Error)
	assert.True(t, f.store.has("pdf_reports/NYSE_IBM_2021.pdf"))
	assert.True(t, f.store.has("report_thumbnails/NYSE_IBM_2021_thumb.jpg"))
}

func TestIngestReportConcurrentDuplicateRemovesUnreferencedAssets(t *testing.T) {
	f := newFixture(fakeThumbnailer{})
	f.reports.beforeWrite = func(report *models.Report) error {
		// The winner stored its document without a thumbnail.
		winner := *report
		winner.ThumbnailURL = nil
		winner.ThumbnailAssetID = ""
		f.reports.rows[rowKey(report.Exchange, report.Ticker, report.Year)] = &winner
		return gorm.ErrDuplicatedKey
	}

	outcome := f.pipeline.IngestReport(context.Background(), pdfUpload("NYSE_IBM_2021.pdf"))

	assert.Equal(t, StatusSkipped, outcome.Status)
	assert.True(t, f.store.has("pdf_reports/NYSE_IBM_2021.pdf"))
	assert.False(t, f.store.has("report_thumbnails/NYSE_IBM_2021_thumb.jpg"))
}

func TestIngestReportsBatch(t *testing.T) {
	f := newFixture(fakeThumbnailer{})

	outcomes := f.pipeline.IngestReports(context.Background(), []Upload{
		pdfUpload("NYSE_IBM_2021.pdf"),
		pdfUpload("NYSE_IBM.pdf"),
		pdfUpload("NASDAQ_AAPL_2022.pdf"),
	})

	require.Len(t, outcomes, 3)
	assert.Equal(t, StatusSuccess, outcomes[0].Status)
	assert.Equal(t, StatusError, outcomes[1].Status)
	assert.Equal(t, StatusSuccess, outcomes[2].Status)
	assert.Equal(t, "NYSE_IBM_2021.pdf", outcomes[0].File)
	assert.Equal(t, "NYSE_IBM.pdf", outcomes[1].File)
	assert.Equal(t, "NASDAQ_AAPL_2022.pdf", outcomes[2].File)
	assert.Len(t, f.reports.rows, 2)
}

func TestIngestReportsBatchFailureDoesNotRollBackOthers(t *testing.T) {
	f := newFixture(fakeThumbnailer{})
	f.reports.beforeWrite = func(report *models.Report) error {
		if report.Ticker == "FAIL" {
			return errors.New("check constraint")
		}
		return nil
	}

	outcomes := f.pipeline.IngestReports(context.Background(), []Upload{
		pdfUpload("NYSE_IBM_2021.pdf"),
		pdfUpload("NYSE_FAIL_2021.pdf"),
		{Name: "NYSE_BAD_2021.pdf", Err: errors.New("multipart: truncated")},
	})

	require.Len(t, outcomes, 3)
	assert.Equal(t, StatusSuccess, outcomes[0].Status)
	assert.Equal(t, "PersistenceFailure", outcomes[1].Error)
	assert.Equal(t, "UnreadableFile", outcomes[2].Error)
	assert.Len(t, f.reports.rows, 1)
	assert.True(t, f.store.has("pdf_reports/NYSE_IBM_2021.pdf"))
	assert.False(t, f.store.has("pdf_reports/NYSE_FAIL_2021.pdf"))
}

func TestIngestReportRecoversRepositoryPanic(t *testing.T) {
	f := newFixture(fakeThumbnailer{})
	f.reports.beforeWrite = func(*models.Report) error {
		panic("nil pointer")
	}

	outcome := f.pipeline.IngestReport(context.Background(), pdfUpload("NYSE_IBM_2021.pdf"))

	assert.Equal(t, StatusError, outcome.Status)
	assert.Contains(t, outcome.Reason, "nil pointer")
	assert.Zero(t, f.store.len())
}

func TestUpsertReportReplacesExisting(t *testing.T) {
	f := newFixture(fakeThumbnailer{})
	old := "https://old.test/report.pdf"
	f.reports.rows[rowKey("NYSE", "SPA", 2020)] = &models.Report{Exchange: "NYSE", Ticker: "SPA", Year: 2020, PDFURL: &old}

	outcome := f.pipeline.UpsertReport(context.Background(), ReportKey{"NYSE", "SPA", 2020}, pdfUpload("annual-report-2020.pdf"))

	require.Equal(t, StatusSuccess, outcome.Status, outcome.Reason)
	row := f.reports.rows[rowKey("NYSE", "SPA", 2020)]
	require.NotNil(t, row.PDFURL)
	assert.Equal(t, "https://cdn.test/pdf_reports/NYSE_SPA_2020.pdf", *row.PDFURL)
	assert.Len(t, f.reports.rows, 1)
}

func TestUpsertReportFailureKeepsReferencedAssets(t *testing.T) {
	f := newFixture(fakeThumbnailer{})
	ctx := context.Background()

	require.Equal(t, StatusSuccess, f.pipeline.UpsertReport(ctx, ReportKey{"NYSE", "SPA", 2020}, pdfUpload("a.pdf")).Status)

	f.reports.createErr = errors.New("serialization failure")
	outcome := f.pipeline.UpsertReport(ctx, ReportKey{"NYSE", "SPA", 2020}, pdfUpload("a.pdf"))

	assert.Equal(t, "PersistenceFailure", outcome.Error)
	assert.True(t, f.store.has("pdf_reports/NYSE_SPA_2020.pdf"))
	assert.True(t, f.store.has("report_thumbnails/NYSE_SPA_2020_thumb.jpg"))
}

func TestUpsertReportKeepsAssetsWhenLookupFails(t *testing.T) {
	f := newFixture(fakeThumbnailer{})
	f.reports.createErr = errors.New("connection reset")
	f.reports.lookupErr = errors.New("connection reset")

	outcome := f.pipeline.UpsertReport(context.Background(), ReportKey{"NYSE", "SPA", 2020}, pdfUpload("a.pdf"))

	assert.Equal(t, "PersistenceFailure", outcome.Error)
	assert.Equal(t, 2, f.store.len())
}

func TestUpsertReportRejectsInvalidKey(t *testing.T) {
	f := newFixture(fakeThumbnailer{})

	outcome := f.pipeline.UpsertReport(context.Background(), ReportKey{"NYSE", "S_PA", 2020}, pdfUpload("a.pdf"))
	assert.Equal(t, "MalformedKey", outcome.Error)

	outcome = f.pipeline.UpsertReport(context.Background(), ReportKey{"NYSE", "SPA", 0}, pdfUpload("a.pdf"))
	assert.Equal(t, "MalformedKey", outcome.Error)

	assert.Zero(t, f.store.puts)
}

func TestIngestLogo(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	fields := CompanyFields{Name: "International Business Machines", Sector: "Technology", WebLink: "https://ibm.com"}

	outcome := f.pipeline.IngestLogo(ctx, Upload{Name: "NYSE_IBM.png", Data: []byte("png")}, fields)

	require.Equal(t, StatusSuccess, outcome.Status, outcome.Reason)
	require.NotNil(t, outcome.LogoResult)
	assert.Equal(t, "https://cdn.test/company_logos/NYSE_IBM_logo1.png", outcome.LogoURL)
	assert.True(t, outcome.CompanyCreated)
	assert.True(t, outcome.ProfileCreated)

	company := f.companies.companies["ibm|nyse"]
	require.NotNil(t, company)
	assert.Equal(t, "International Business Machines", company.Name)
	assert.Equal(t, outcome.LogoURL, company.Logo)
	assert.Equal(t, "", company.Industry)
	assert.Equal(t, "https://ibm.com", f.companies.profiles["ibm|nyse"].WebLink)

	f.pipeline.newID = func() string { return "logo2" }
	outcome = f.pipeline.IngestLogo(ctx, Upload{Name: "NYSE_IBM.png", Data: []byte("png")}, fields)
	require.Equal(t, StatusSuccess, outcome.Status)
	assert.False(t, outcome.CompanyCreated)
	assert.False(t, outcome.ProfileCreated)
}

func TestIngestLogoPersistenceFailureDeletesLogo(t *testing.T) {
	f := newFixture(nil)
	f.companies.err = errors.New("deadlock detected")

	outcome := f.pipeline.IngestLogo(context.Background(), Upload{Name: "NYSE_IBM.jpg", Data: []byte("jpg")}, CompanyFields{})

	assert.Equal(t, StatusError, outcome.Status)
	assert.Equal(t, "PersistenceFailure", outcome.Error)
	assert.Nil(t, outcome.LogoResult)
	assert.Equal(t, 1, f.store.puts)
	assert.Zero(t, f.store.len())
}

func TestIngestLogoMalformed(t *testing.T) {
	f := newFixture(nil)

	outcome := f.pipeline.IngestLogo(context.Background(), Upload{Name: "IBM.png", Data: []byte("png")}, CompanyFields{})

	assert.Equal(t, "MalformedKey", outcome.Error)
	assert.Zero(t, f.store.puts)
	assert.Empty(t, f.companies.companies)
}

func TestIngestLogoRemoteStoreFailure(t *testing.T) {
	f := newFixture(nil)
	f.store.putErr = func(assets.Object) error { return errors.New("401 unauthorized") }

	outcome := f.pipeline.IngestLogo(context.Background(), Upload{Name: "NYSE_IBM.png", Data: []byte("png")}, CompanyFields{})

	assert.Equal(t, "RemoteStoreFailure", outcome.Error)
	assert.Empty(t, f.companies.companies)
}

func lazyUpload(name string, opened *[]string, onOpen func()) Upload {
	return Upload{Name: name, Open: func() ([]byte, error) {
		*opened = append(*opened, name)
		if onOpen != nil {
			onOpen()
		}
		return []byte("%PDF-1.4 " + name), nil
	}}
}

func TestIngestReportsReadsEachFileAfterThePreviousOne(t *testing.T) {
	f := newFixture(fakeThumbnailer{})
	var opened []string
	var rowsAtOpen []int
	record := func() { rowsAtOpen = append(rowsAtOpen, len(f.reports.rows)) }

	outcomes := f.pipeline.IngestReports(context.Background(), []Upload{
		lazyUpload("NYSE_IBM_2021.pdf", &opened, record),
		lazyUpload("NYSE_IBM_2022.pdf", &opened, record),
		lazyUpload("NASDAQ_AAPL_2022.pdf", &opened, record),
	})

	require.Len(t, outcomes, 3)
	for _, outcome := range outcomes {
		assert.Equal(t, StatusSuccess, outcome.Status, outcome.Reason)
	}
	assert.Equal(t, []string{"NYSE_IBM_2021.pdf", "NYSE_IBM_2022.pdf", "NASDAQ_AAPL_2022.pdf"}, opened)
	assert.Equal(t, []int{0, 1, 2}, rowsAtOpen)
	assert.Equal(t, "%PDF-1.4 NYSE_IBM_2022.pdf", string(f.store.objects["pdf_reports/NYSE_IBM_2022.pdf"].Data))
}

func TestIngestReportDoesNotReadRejectedFiles(t *testing.T) {
	f := newFixture(fakeThumbnailer{})
	ctx := context.Background()
	var opened []string

	require.Equal(t, StatusSuccess, f.pipeline.IngestReport(ctx, pdfUpload("NYSE_IBM_2021.pdf")).Status)

	skipped := f.pipeline.IngestReport(ctx, lazyUpload("NYSE_IBM_2021.pdf", &opened, nil))
	malformed := f.pipeline.IngestReport(ctx, lazyUpload("NYSE_IBM.pdf", &opened, nil))

	assert.Equal(t, StatusSkipped, skipped.Status)
	assert.Equal(t, "MalformedKey", malformed.Error)
	assert.Empty(t, opened)
}

func TestIngestReportOpenFailure(t *testing.T) {
	f := newFixture(fakeThumbnailer{})
	upload := Upload{Name: "NYSE_IBM_2021.pdf", Open: func() ([]byte, error) {
		return nil, errors.New("unexpected EOF")
	}}

	outcome := f.pipeline.IngestReport(context.Background(), upload)

	assert.Equal(t, "UnreadableFile", outcome.Error)
	assert.Contains(t, outcome.Reason, "unexpected EOF")
	assert.Zero(t, f.store.puts)
}

func TestIngestLogoAcceptsAnyExtension(t *testing.T) {
	f := newFixture(nil)
	var opened []string

	outcome := f.pipeline.IngestLogo(context.Background(), Upload{Name: "NYSE_IBM.bmp", Open: func() ([]byte, error) {
		opened = append(opened, "NYSE_IBM.bmp")
		return []byte("bmp"), nil
	}}, CompanyFields{Name: "IBM"})

	require.Equal(t, StatusSuccess, outcome.Status, outcome.Reason)
	assert.Equal(t, "https://cdn.test/company_logos/NYSE_IBM_logo1.bmp", outcome.LogoURL)
	assert.Equal(t, []string{"NYSE_IBM.bmp"}, opened)

	stored := f.store.objects["company_logos/NYSE_IBM_logo1.bmp"]
	assert.Equal(t, "bmp", stored.Ext)
	assert.NotEmpty(t, stored.ContentType)
	assert.Equal(t, []byte("bmp"), stored.Data)
}
