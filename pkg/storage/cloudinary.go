package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ImageStorage defines the contract for the job-image blob store: public
// read URLs, authenticated writes (Cloudinary implementation).
type ImageStorage interface {
	// UploadImage uploads image from reader and returns the secure URL.
	// folder is a logical folder in storage (e.g. "jobs").
	UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// DeleteImage deletes image from storage using its URL.
	DeleteImage(ctx context.Context, fileURL string) error
}

type cloudinaryStorage struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStorage creates a Cloudinary-backed ImageStorage. It expects
// CLOUDINARY_URL or the individual CLOUDINARY_* variables in the environment.
func NewCloudinaryStorage() (ImageStorage, error) {
	cld, err := cloudinary.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}

	cld.Config.URL.Secure = true

	if cloudName := os.Getenv("CLOUDINARY_CLOUD_NAME"); cloudName != "" {
		cld.Config.Cloud.CloudName = cloudName
	}

	return &cloudinaryStorage{cld: cld}, nil
}

func (s *cloudinaryStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	if s == nil || s.cld == nil {
		return "", fmt.Errorf("cloudinary storage is not initialized")
	}

	publicID := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileName)

	params := uploader.UploadParams{
		Folder:         folder,
		UseFilename:    api.Bool(true),
		UniqueFilename: api.Bool(true),
		PublicID:       publicID,
		Overwrite:      api.Bool(false),
	}

	// Convert to webp with automatic quality for common image formats.
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".bmp", ".gif", ".webp":
		params.Format = "webp"
		params.Transformation = "q_auto"
	}

	resp, err := s.cld.Upload.Upload(ctx, r, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload image to cloudinary: %w", err)
	}

	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload succeeded but secure URL is empty")
	}

	return resp.SecureURL, nil
}

func (s *cloudinaryStorage) DeleteImage(ctx context.Context, fileURL string) error {
	if s == nil || s.cld == nil {
		return fmt.Errorf("cloudinary storage is not initialized")
	}

	publicID := extractPublicID(fileURL)
	if publicID == "" {
		return fmt.Errorf("could not extract public ID from URL: %s", fileURL)
	}

	params := uploader.DestroyParams{
		PublicID:   publicID,
		Invalidate: api.Bool(true),
	}

	resp, err := s.cld.Upload.Destroy(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to delete image from cloudinary: %w", err)
	}

	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy api returned result: %s", resp.Result)
	}

	return nil
}

// extractPublicID pulls the public ID out of a Cloudinary delivery URL.
// Path shape: /<cloud_name>/image/upload/[v<version>/]<folder>/<file>.<ext>
func extractPublicID(fileURL string) string {
	u, err := url.Parse(fileURL)
	if err != nil {
		return ""
	}

	parts := strings.Split(u.Path, "/")
	uploadIndex := -1
	for i, p := range parts {
		if p == "upload" {
			uploadIndex = i
			break
		}
	}

	if uploadIndex == -1 || uploadIndex+1 >= len(parts) {
		return ""
	}

	relevantParts := parts[uploadIndex+1:]
	if len(relevantParts) > 0 && strings.HasPrefix(relevantParts[0], "v") {
		relevantParts = relevantParts[1:]
	}

	if len(relevantParts) == 0 {
		return ""
	}

	publicIDWithExt := strings.Join(relevantParts, "/")
	return strings.TrimSuffix(publicIDWithExt, filepath.Ext(publicIDWithExt))
}
