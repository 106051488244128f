package ingest

import (
	"fmt"
	"mime"
	"path"
	"strconv"
	"strings"
)

const delimiter = "_"

const defaultContentType = "application/octet-stream"

var logoContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// ReportKey identifies one annual report. Case is kept as uploaded.
type ReportKey struct {
	Exchange string
	Ticker   string
	Year     int
}

func (k ReportKey) String() string {
	return fmt.Sprintf("%s_%s_%d", k.Exchange, k.Ticker, k.Year)
}

func (k ReportKey) DocumentAssetKey() string {
	return "pdf_reports/" + k.String()
}

func (k ReportKey) ThumbnailAssetKey() string {
	return "report_thumbnails/" + k.String() + "_thumb"
}

// LogoKey identifies the company a logo belongs to.
type LogoKey struct {
	Exchange string
	Ticker   string
	// Lower case extension including the dot, empty when the name has none.
	Ext string
}

// AssetKey returns a fresh key per upload so the logo of a committed company
// row is never overwritten by an attempt that later fails.
func (k LogoKey) AssetKey(suffix string) string {
	return fmt.Sprintf("company_logos/%s_%s_%s", k.Exchange, k.Ticker, suffix)
}

func (k LogoKey) ContentType() string {
	if contentType, ok := logoContentTypes[k.Ext]; ok {
		return contentType
	}
	if contentType := mime.TypeByExtension(k.Ext); k.Ext != "" && contentType != "" {
		return contentType
	}
	return defaultContentType
}

// ParseReportFilename parses EXCHANGE_TICKER_YEAR.pdf.
func ParseReportFilename(name string) (ReportKey, error) {
	base := baseName(name)
	ext := path.Ext(base)
	if !strings.EqualFold(ext, ".pdf") {
		return ReportKey{}, fmt.Errorf("%w: %q is not a .pdf file", ErrUnsupportedType, base)
	}

	parts, err := splitStem(strings.TrimSuffix(base, ext), 3)
	if err != nil {
		return ReportKey{}, err
	}

	year, err := parseYear(parts[2])
	if err != nil {
		return ReportKey{}, err
	}

	return ReportKey{Exchange: parts[0], Ticker: parts[1], Year: year}, nil
}

// ParseLogoFilename parses EXCHANGE_TICKER.<ext>. Any extension is
// accepted, including none.
func ParseLogoFilename(name string) (LogoKey, error) {
	base := baseName(name)
	ext := path.Ext(base)

	parts, err := splitStem(strings.TrimSuffix(base, ext), 2)
	if err != nil {
		return LogoKey{}, err
	}

	return LogoKey{Exchange: parts[0], Ticker: parts[1], Ext: strings.ToLower(ext)}, nil
}

// YearFromName takes the first four digits found in a file name as the
// report year, e.g. "NYSE_IBM_2021.pdf" or "ar-2019-final.pdf".
func YearFromName(name string) (int, error) {
	var digits []rune
	for _, r := range baseName(name) {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
			if len(digits) == 4 {
				break
			}
		}
	}

	if len(digits) < 4 {
		return 0, fmt.Errorf("%w: no year in %q", ErrMalformedKey, name)
	}

	year, _ := strconv.Atoi(string(digits))
	return year, nil
}

func baseName(name string) string {
	return path.Base(strings.ReplaceAll(name, "\\", "/"))
}

func splitStem(stem string, n int) ([]string, error) {
	parts := strings.Split(stem, delimiter)
	if len(parts) != n {
		return nil, fmt.Errorf("%w: expected %d segments in %q, got %d", ErrMalformedKey, n, stem, len(parts))
	}

	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrMalformedKey, stem)
		}
	}

	return parts, nil
}

func parseYear(s string) (int, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: year %q is not a number", ErrMalformedKey, s)
		}
	}

	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: year %q is not a number", ErrMalformedKey, s)
	}

	return year, nil
}
