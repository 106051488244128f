package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cfg Config) (*CloudinaryStore, error) {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		return nil, errors.New("cloudinary cloud name, api key and api secret are required")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}

	return &CloudinaryStore{cld: cld}, nil
}

func (s *CloudinaryStore) Put(ctx context.Context, obj Object) (Asset, error) {
	// Raw resources keep their extension in the public id, images don't.
	publicID := obj.Key
	if obj.Kind == Document {
		publicID = objectName(obj)
	}

	resp, err := s.cld.Upload.Upload(ctx, bytes.NewReader(obj.Data), uploader.UploadParams{
		PublicID:     publicID,
		ResourceType: string(obj.Kind),
		Overwrite:    api.Bool(true),
	})
	if err != nil {
		return Asset{}, fmt.Errorf("failed to upload %s to cloudinary: %w", publicID, err)
	}
	if resp.Error.Message != "" {
		return Asset{}, fmt.Errorf("failed to upload %s to cloudinary: %s", publicID, resp.Error.Message)
	}

	return Asset{ID: resp.PublicID, Kind: obj.Kind, URL: resp.SecureURL}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, asset Asset) error {
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     asset.ID,
		ResourceType: string(asset.Kind),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from cloudinary: %w", asset.ID, err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("failed to delete %s from cloudinary: %s", asset.ID, resp.Error.Message)
	}

	return nil
}
