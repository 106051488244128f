package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"annualreports/core"
	"annualreports/ingest"
	"annualreports/internal/assets"
	"annualreports/internal/fetch"
	"annualreports/internal/thumbnail"
	"annualreports/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const fetchRetries = 3

func main() {
	dir := flag.String("dir", "", "import every EXCHANGE_TICKER_YEAR.pdf in this folder")
	urls := flag.String("urls", "", "file with one report URL per line")
	exchange := flag.String("exchange", "", "exchange of the reports listed in -urls")
	ticker := flag.String("ticker", "", "ticker of the reports listed in -urls")
	delay := flag.Duration("delay", 2*time.Second, "pause between two downloads")
	flag.Parse()

	if (*dir == "") == (*urls == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -dir or -urls is required")
		flag.Usage()
		os.Exit(2)
	}
	if *urls != "" && (*exchange == "" || *ticker == "") {
		fmt.Fprintln(os.Stderr, "-urls requires -exchange and -ticker")
		os.Exit(2)
	}

	godotenv.Load()

	cfg, err := core.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, err := core.NewLogger(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	importer, err := newReportImporter(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to set up the importer", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var outcomes []ingest.UploadOutcome
	if *dir != "" {
		outcomes, err = importer.importDir(ctx, *dir)
	} else {
		outcomes, err = importer.importURLs(ctx, *urls, *exchange, *ticker, *delay)
	}
	if err != nil {
		logger.Fatalw("Import failed", "error", err)
	}

	t := tally(outcomes)
	fmt.Printf("Import finished: %d succeeded, %d skipped, %d failed\n", t.success, t.skipped, t.failed)
}

type reportImporter struct {
	pipeline *ingest.Pipeline
	fetcher  *fetch.Fetcher
	logger   *zap.SugaredLogger
	maxBytes int64
}

func newReportImporter(cfg *core.Config, logger *zap.SugaredLogger) (*reportImporter, error) {
	db, err := core.InitDB(cfg.Database)
	if err != nil {
		return nil, err
	}

	store, err := assets.NewStore(cfg.Assets)
	if err != nil {
		return nil, err
	}

	repo := models.NewRepository(db)
	extractor := thumbnail.NewExtractor(thumbnail.Poppler{
		Binary: cfg.PdftoppmPath,
		DPI:    cfg.ThumbnailDPI,
	})

	return &reportImporter{
		pipeline: ingest.NewPipeline(store, repo, repo, extractor, logger.With("component", "ingest"), cfg.RemoteTimeout),
		fetcher:  fetch.NewFetcher(cfg.RemoteTimeout, fetchRetries),
		logger:   logger,
		maxBytes: cfg.MaxUploadBytes,
	}, nil
}

// importDir ingests the PDFs of a folder. Reports that already exist are
// skipped.
func (i *reportImporter) importDir(ctx context.Context, dir string) ([]ingest.UploadOutcome, error) {
	files, err := listPDFs(dir)
	if err != nil {
		return nil, err
	}
	i.logger.Infof("Importing %d files from %v", len(files), dir)

	outcomes := make([]ingest.UploadOutcome, 0, len(files))
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}

		file := file
		upload := ingest.Upload{
			Name: filepath.Base(file),
			Open: func() ([]byte, error) { return os.ReadFile(file) },
		}

		outcome := i.pipeline.IngestReport(ctx, upload)
		i.logOutcome(outcome)
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// importURLs downloads every listed report of one company and stores it,
// replacing reports that already exist.
func (i *reportImporter) importURLs(ctx context.Context, listFile, exchange, ticker string, delay time.Duration) ([]ingest.UploadOutcome, error) {
	f, err := os.Open(listFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	urls, err := readURLs(f)
	if err != nil {
		return nil, err
	}
	i.logger.Infof("Importing %d reports of %v:%v", len(urls), exchange, ticker)

	outcomes := make([]ingest.UploadOutcome, 0, len(urls))
	for n, rawURL := range urls {
		if n > 0 && delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
		}
		if ctx.Err() != nil {
			break
		}

		outcome := i.importURL(ctx, rawURL, exchange, ticker)
		i.logOutcome(outcome)
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

func (i *reportImporter) importURL(ctx context.Context, rawURL, exchange, ticker string) ingest.UploadOutcome {
	key := ingest.ReportKey{Exchange: exchange, Ticker: ticker}
	upload := ingest.Upload{Name: rawURL}

	year, err := yearFromURL(rawURL)
	if err != nil {
		// The pipeline reports the zero year as a malformed key.
		return i.pipeline.UpsertReport(ctx, key, upload)
	}
	key.Year = year

	upload.Data, upload.Err = i.fetcher.Get(ctx, rawURL, i.maxBytes)
	return i.pipeline.UpsertReport(ctx, key, upload)
}

func (i *reportImporter) logOutcome(outcome ingest.UploadOutcome) {
	switch outcome.Status {
	case ingest.StatusSuccess:
		i.logger.Infow("Imported report", "file", outcome.File, "warnings", outcome.Warnings)
	case ingest.StatusSkipped:
		i.logger.Infow("Skipped report", "file", outcome.File, "reason", outcome.Reason)
	default:
		i.logger.Errorw("Failed to import report", "file", outcome.File, "error", outcome.Error, "reason", outcome.Reason)
	}
}

// listPDFs returns the files of dir whose extension is .pdf in any case.
func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}

	return files, nil
}

// readURLs returns the non-empty lines of r. Lines starting with # are
// comments.
func readURLs(r io.Reader) ([]string, error) {
	var urls []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}

	return urls, scanner.Err()
}

// yearFromURL takes the report year from the file name of the URL path.
func yearFromURL(rawURL string) (int, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, err
	}
	return ingest.YearFromName(path.Base(u.Path))
}

type totals struct {
	success, skipped, failed int
}

func tally(outcomes []ingest.UploadOutcome) totals {
	var t totals
	for _, outcome := range outcomes {
		switch outcome.Status {
		case ingest.StatusSuccess:
			t.success++
		case ingest.StatusSkipped:
			t.skipped++
		default:
			t.failed++
		}
	}
	return t
}
