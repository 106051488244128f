package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"annualreports/ingest"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	ErrNoPDFFiles   = errors.New("No PDF files uploaded")
	ErrNoImageFile  = errors.New("No image file provided")
	ErrInvalidForm  = errors.New("Invalid multipart form")
	ErrFileTooLarge = errors.New("file is too large")
)

type UploadsController struct {
	Ingester       Ingester
	MaxUploadBytes int64
	Logger         *zap.SugaredLogger
}

// UploadPDF ingests every file of the repeated "pdf" field. The response is
// 200 even when some files failed; each result carries its own status.
func (uc UploadsController) UploadPDF(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondBadRequestErr(c, ErrInvalidForm)
		return
	}

	files := form.File["pdf"]
	if len(files) == 0 {
		RespondBadRequestErr(c, ErrNoPDFFiles)
		return
	}

	uploads := make([]ingest.Upload, 0, len(files))
	for _, file := range files {
		uploads = append(uploads, uc.upload(file))
	}

	results := uc.Ingester.IngestReports(c.Request.Context(), uploads)

	c.JSON(http.StatusOK, gin.H{
		"message": "PDF Upload Completed",
		"results": results,
	})
}

// UploadLogo stores a company logo together with the company and profile
// fields sent in the same form.
func (uc UploadsController) UploadLogo(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			RespondBadRequestErr(c, ErrNoImageFile)
			return
		}
		RespondBadRequestErr(c, ErrInvalidForm)
		return
	}

	fields := ingest.CompanyFields{
		Name:         c.PostForm("name"),
		Sector:       c.PostForm("sector"),
		Industry:     c.PostForm("industry"),
		EmpNumber:    c.PostForm("emp_number"),
		Address:      c.PostForm("address"),
		Info:         c.PostForm("info"),
		InstaLink:    c.PostForm("insta_link"),
		FaceLink:     c.PostForm("face_link"),
		YoutubeLink:  c.PostForm("youtube_link"),
		TwitterLink:  c.PostForm("twitter_link"),
		WebLink:      c.PostForm("web_link"),
		LinkedinLink: c.PostForm("linkedin_link"),
	}

	outcome := uc.Ingester.IngestLogo(c.Request.Context(), uc.upload(file), fields)

	if !outcome.OK() {
		c.JSON(logoStatus(outcome.Err()), outcome)
		return
	}

	c.JSON(http.StatusOK, struct {
		Message string `json:"message"`
		ingest.UploadOutcome
	}{
		Message:       "Company data saved successfully",
		UploadOutcome: outcome,
	})
}

// upload defers reading the file until the pipeline asks for it, so a batch
// never holds more than one file in memory.
func (uc UploadsController) upload(header *multipart.FileHeader) ingest.Upload {
	upload := ingest.Upload{Name: header.Filename}

	if uc.MaxUploadBytes > 0 && header.Size > uc.MaxUploadBytes {
		upload.Err = fmt.Errorf("%w: %d bytes, limit is %d", ErrFileTooLarge, header.Size, uc.MaxUploadBytes)
		return upload
	}

	upload.Open = func() ([]byte, error) {
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()

		return io.ReadAll(f)
	}

	return upload
}

func logoStatus(err error) int {
	switch {
	case errors.Is(err, ingest.ErrMalformedKey),
		errors.Is(err, ingest.ErrUnsupportedType),
		errors.Is(err, ingest.ErrUnreadable):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrRemoteStore):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
