package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/metrics"
)

const jpegQuality = 85

// DefaultMaxPixels is the largest source image, in pixels, that will be decoded.
const DefaultMaxPixels int64 = 89478485

var (
	errInvalidBounds = errors.New("maximum dimensions must be positive")
	errTooManyPixels = errors.New("image has too many pixels")
)

// AllowedExtensions are the accepted upload extensions, compared case-insensitively.
var AllowedExtensions = []string{"png", "jpg", "jpeg", "gif"}

// Prepared is a normalized image that has not been written anywhere yet.
type Prepared struct {
	Name   string
	Data   []byte
	Width  int
	Height int
}

// Ingestor normalizes uploads to bounded JPEGs and hands them to a Store.
type Ingestor struct {
	store     Store
	maxPixels int64
	logger    zerolog.Logger
}

func NewIngestor(store Store, opts ...func(*Ingestor)) *Ingestor {
	i := &Ingestor{
		store:     store,
		maxPixels: DefaultMaxPixels,
		logger:    log.With().Str("component", "imageIngestor").Logger(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// WithMaxPixels caps width*height of accepted sources. Non-positive values keep the default.
func WithMaxPixels(n int64) func(*Ingestor) {
	return func(i *Ingestor) {
		if n > 0 {
			i.maxPixels = n
		}
	}
}

// Store exposes the backing store, e.g. for cleanup.
func (i *Ingestor) Store() Store {
	return i.store
}

// Extension returns the lower-cased extension of filename without the dot.
func Extension(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// IsAllowed reports whether filename carries an accepted image extension.
func IsAllowed(filename string) bool {
	ext := Extension(filename)
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Prepare decodes, bounds and re-encodes an upload in memory.
// Alpha is discarded; the output is always an opaque JPEG named <uuid>.jpg.
func (i *Ingestor) Prepare(r io.Reader, originalFilename string, maxWidth, maxHeight int) (*Prepared, error) {
	if !IsAllowed(originalFilename) {
		metrics.ImagesIngested.WithLabelValues("unsupported").Inc()
		return nil, errs.NewUnsupportedFormatError(Extension(originalFilename), AllowedExtensions)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, i.failed(originalFilename, "read", err)
	}

	// Only the header is read here; the pixel buffer is allocated by the full decode below.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, i.failed(originalFilename, "decode", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > i.maxPixels {
		return nil, i.failed(originalFilename, "decode",
			fmt.Errorf("%w: %dx%d exceeds %d", errTooManyPixels, cfg.Width, cfg.Height, i.maxPixels))
	}

	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, i.failed(originalFilename, "decode", err)
	}

	bounded := imaging.Fit(src, maxWidth, maxHeight, imaging.Lanczos)
	if bounded.Bounds().Empty() {
		return nil, i.failed(originalFilename, "resize", errInvalidBounds)
	}
	dropAlpha(bounded)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, bounded, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, i.failed(originalFilename, "encode", err)
	}

	return &Prepared{
		Name:   uuid.New().String() + ".jpg",
		Data:   buf.Bytes(),
		Width:  bounded.Bounds().Dx(),
		Height: bounded.Bounds().Dy(),
	}, nil
}

// Save writes a prepared image into folder.
func (i *Ingestor) Save(ctx context.Context, folder string, p *Prepared) error {
	if err := i.store.Save(ctx, folder, p.Name, p.Data); err != nil {
		return i.failed(p.Name, "store", err)
	}
	metrics.ImagesIngested.WithLabelValues("stored").Inc()
	return nil
}

// Discard removes a stored image, logging instead of failing.
func (i *Ingestor) Discard(ctx context.Context, folder, name string) {
	if name == "" {
		return
	}
	if err := i.store.Remove(ctx, folder, name); err != nil {
		i.logger.Warn().Err(err).Str("folder", folder).Str("file", name).Msg("failed to remove stored image")
	}
}

// Ingest prepares and stores an upload, returning the stored filename.
// On any error the returned name is empty and nothing is left behind.
func (i *Ingestor) Ingest(ctx context.Context, r io.Reader, originalFilename, folder string, maxWidth, maxHeight int) (string, error) {
	p, err := i.Prepare(r, originalFilename, maxWidth, maxHeight)
	if err != nil {
		return "", err
	}
	if err := i.Save(ctx, folder, p); err != nil {
		return "", err
	}
	return p.Name, nil
}

func (i *Ingestor) failed(filename, stage string, cause error) error {
	metrics.ImagesIngested.WithLabelValues("failed").Inc()
	i.logger.Error().Err(cause).Str("file", filename).Str("stage", stage).Msg("image ingestion failed")
	return errs.NewIngestionFailedError(cause)
}

// dropAlpha makes every pixel opaque, keeping the colour channels as they are.
func dropAlpha(img *image.NRGBA) {
	for y := 0; y < img.Rect.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+img.Rect.Dx()*4]
		for x := 3; x < len(row); x += 4 {
			row[x] = 0xff
		}
	}
}
