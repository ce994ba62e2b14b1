package services

import (
	"context"
	"io"

	"github.com/rpupo63/portfolio-site-backend/media"
)

// ImageUpload is an uploaded file as received from the client. A nil Content means no upload.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

func (u *ImageUpload) present() bool {
	return u != nil && u.Content != nil && u.Filename != ""
}

type ImageLimits struct {
	MaxWidth  int
	MaxHeight int
}

// stageImage writes an upload into folder before the owning transaction runs.
// An ingestion error never fails the request: the name is empty and warning
// carries the reason, so the caller keeps the previous reference.
func stageImage(ctx context.Context, ing *media.Ingestor, folder string, limits ImageLimits, upload *ImageUpload) (name, warning string) {
	if !upload.present() || ing == nil {
		return "", ""
	}
	name, err := ing.Ingest(ctx, upload.Content, upload.Filename, folder, limits.MaxWidth, limits.MaxHeight)
	if err != nil {
		return "", err.Error()
	}
	return name, ""
}

// discardImage removes a stored image; a nil ingestor or empty name is a no-op.
func discardImage(ctx context.Context, ing *media.Ingestor, folder string, name *string) {
	if ing == nil || name == nil || *name == "" {
		return
	}
	ing.Discard(context.WithoutCancel(ctx), folder, *name)
}
