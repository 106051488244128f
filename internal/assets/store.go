package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedBackend = errors.New("unsupported asset store backend")

// Kind tells the store how the object will be delivered.
type Kind string

const (
	Document Kind = "raw"
	Image    Kind = "image"
)

// Object is one file to be stored under a deterministic key.
type Object struct {
	// Key without extension, e.g. "pdf_reports/NYSE_IBM_2021".
	Key         string
	Kind        Kind
	Ext         string
	ContentType string
	Data        []byte
}

// Asset identifies a stored object. ID is what Delete needs, URL is public.
type Asset struct {
	ID   string
	Kind Kind
	URL  string
}

// Store puts objects somewhere publicly reachable. Put overwrites an existing
// object with the same key.
type Store interface {
	Put(ctx context.Context, obj Object) (Asset, error)
	Delete(ctx context.Context, asset Asset) error
}

type Config struct {
	// cloudinary, s3 or local.
	Backend string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string

	BasePath string
	BaseURL  string
}

// NewStore creates the backend selected by cfg.Backend.
func NewStore(cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "cloudinary":
		return NewCloudinaryStore(cfg)
	case "s3", "r2":
		return NewS3Store(cfg)
	case "local":
		return NewLocalStore(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Backend)
	}
}

func objectName(obj Object) string {
	if obj.Ext == "" {
		return obj.Key
	}
	return obj.Key + "." + obj.Ext
}
