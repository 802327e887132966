package utils

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/civicpulse/civicpulse/config"
)

// Complaint photos are uploaded to Cloudinary exactly once, best-effort;
// an upload failure aborts the complaint creation so no record is stored
// without its requested image.

var allowedImageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// MaxImageSize limits complaint photos to 5MB.
const MaxImageSize = int64(5 * 1024 * 1024)

// ErrUploaderNotConfigured is returned when Cloudinary credentials are
// missing but an image upload was requested.
var ErrUploaderNotConfigured = errors.New("image storage is not configured")

var (
	cld        *cloudinary.Cloudinary
	cldFolder  string
	cldInitErr error
	cldOnce    sync.Once
)

// InitUploader builds the Cloudinary client from configuration. Missing
// credentials are not fatal; image uploads will be rejected until they are
// provided.
func InitUploader(cfg config.AppConfig) error {
	cldOnce.Do(func() {
		if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
			cldInitErr = ErrUploaderNotConfigured
			return
		}
		url := fmt.Sprintf("cloudinary://%s:%s@%s", cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryCloudName)
		cld, cldInitErr = cloudinary.NewFromURL(url)
		cldFolder = cfg.CloudinaryFolder
	})
	return cldInitErr
}

// ValidateImage checks extension and declared size before any bytes are
// sent upstream.
func ValidateImage(header *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	ok := false
	for _, allowed := range allowedImageExts {
		if ext == allowed {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("unsupported image type %q", ext)
	}
	if header.Size > MaxImageSize {
		return fmt.Errorf("image exceeds %dMB limit", MaxImageSize/(1024*1024))
	}
	return nil
}

// UploadImage sends the file to Cloudinary and returns its public URL.
// Single attempt, no retry.
func UploadImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	if cld == nil {
		if cldInitErr != nil {
			return "", cldInitErr
		}
		return "", ErrUploaderNotConfigured
	}
	if err := ValidateImage(header); err != nil {
		return "", err
	}

	res, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID: uuid.NewString(),
		Folder:   cldFolder,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.SecureURL == "" {
		return "", errors.New("cloudinary upload returned no URL")
	}
	return res.SecureURL, nil
}
