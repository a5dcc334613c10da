package helpers

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const EventsFolder = "events"

// UploadImage pushes a single image to the media store and returns its public
// URL and public ID. The source may be a local path, a data URI, or a remote
// URL, per the uploader contract.
func UploadImage(ctx context.Context, cld *cloudinary.Cloudinary, source, folder string) (string, string, error) {
	if cld == nil {
		return "", "", fmt.Errorf("cloudinary client is not initialized")
	}
	result, err := cld.Upload.Upload(ctx, source, uploader.UploadParams{Folder: folder})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload image: %w", err)
	}
	return result.SecureURL, result.PublicID, nil
}

// DeleteImage removes a previously uploaded image. Best effort; callers log
// rather than fail the surrounding operation.
func DeleteImage(ctx context.Context, cld *cloudinary.Cloudinary, publicID string) error {
	if cld == nil || publicID == "" {
		return nil
	}
	_, err := cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
