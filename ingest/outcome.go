package ingest

import (
	"errors"
)

var (
	ErrMalformedKey    = errors.New("malformed key")
	ErrUnsupportedType = errors.New("unsupported type")
	ErrDuplicateKey    = errors.New("report already exists")
	ErrRemoteStore     = errors.New("remote store failure")
	ErrThumbnail       = errors.New("thumbnail failure")
	ErrPersistence     = errors.New("persistence failure")
	ErrUnreadable      = errors.New("unreadable upload")
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// Code returns the error taxonomy name of err, or "" when err is nil.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedKey):
		return "MalformedKey"
	case errors.Is(err, ErrUnsupportedType):
		return "UnsupportedType"
	case errors.Is(err, ErrDuplicateKey):
		return "DuplicateKey"
	case errors.Is(err, ErrRemoteStore):
		return "RemoteStoreFailure"
	case errors.Is(err, ErrThumbnail):
		return "ThumbnailFailure"
	case errors.Is(err, ErrPersistence):
		return "PersistenceFailure"
	case errors.Is(err, ErrUnreadable):
		return "UnreadableFile"
	default:
		return "InternalError"
	}
}

// UploadOutcome is the result of ingesting one file.
type UploadOutcome struct {
	File   string `json:"file"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`

	Exchange string `json:"exchange,omitempty"`
	Ticker   string `json:"ticker,omitempty"`
	Year     int    `json:"year,omitempty"`

	Warnings []string `json:"warnings,omitempty"`

	*ReportURLs
	*LogoResult

	err error
}

type ReportURLs struct {
	PDFURL       string  `json:"pdf_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

type LogoResult struct {
	LogoURL        string `json:"logo_url"`
	CompanyCreated bool   `json:"comp_name_created"`
	ProfileCreated bool   `json:"comp_info_created"`
}

// Err returns the failure behind a skipped or failed outcome.
func (o UploadOutcome) Err() error {
	return o.err
}

func (o UploadOutcome) OK() bool {
	return o.Status == StatusSuccess
}

func (o *UploadOutcome) setReportKey(key ReportKey) {
	o.Exchange = key.Exchange
	o.Ticker = key.Ticker
	o.Year = key.Year
}

func (o *UploadOutcome) fail(err error) {
	o.err = err
	o.Error = Code(err)
	o.Reason = err.Error()
	o.Status = StatusError
	if errors.Is(err, ErrDuplicateKey) {
		o.Status = StatusSkipped
	}
}

func (o *UploadOutcome) warn(err error) {
	o.Warnings = append(o.Warnings, err.Error())
}
