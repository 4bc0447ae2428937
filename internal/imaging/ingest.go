// Package imaging turns an uploaded image into a reference the content
// document can carry: a public object URL when object storage is
// configured, otherwise an inline data URL.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
	"github.com/lovestory/lovestory/backend/go-services/internal/storage"
	"github.com/lovestory/lovestory/backend/go-services/pkg/logger"
	"github.com/lovestory/lovestory/backend/go-services/pkg/metrics"
)

// DefaultMaxBytes is the upload ceiling: 2 MiB.
const DefaultMaxBytes = 2 * 1024 * 1024

var accepted = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// Uploader stores a blob and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// Ingestor validates uploads and produces image references.
type Ingestor struct {
	uploader Uploader
	maxBytes int64
	now      func() time.Time
}

// NewIngestor returns an Ingestor. A nil uploader makes every reference an
// inline data URL; maxBytes <= 0 selects DefaultMaxBytes.
func NewIngestor(uploader Uploader, maxBytes int64) *Ingestor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Ingestor{uploader: uploader, maxBytes: maxBytes, now: time.Now}
}

// MaxBytes is the configured ceiling.
func (i *Ingestor) MaxBytes() int64 { return i.maxBytes }

// TooLarge is the rejection for an image above max bytes.
func TooLarge(max int64) error {
	return fmt.Errorf("%w: %w: image exceeds %d bytes", apperr.ErrValidation, apperr.ErrTooLarge, max)
}

// Ingest reads an image for projectID's field and returns its reference.
// A declared size above the ceiling is rejected before anything is read;
// a body that turns out larger than declared is rejected as well.
func (i *Ingestor) Ingest(ctx context.Context, projectID, field string, r io.Reader, declaredSize int64) (string, error) {
	if declaredSize > i.maxBytes {
		metrics.ImageIngests.WithLabelValues("too_large").Inc()
		return "", TooLarge(i.maxBytes)
	}
	data, err := io.ReadAll(io.LimitReader(r, i.maxBytes+1))
	if err != nil {
		metrics.ImageIngests.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("%w: read image: %v", apperr.ErrValidation, err)
	}
	if int64(len(data)) > i.maxBytes {
		metrics.ImageIngests.WithLabelValues("too_large").Inc()
		return "", TooLarge(i.maxBytes)
	}
	if len(data) == 0 {
		metrics.ImageIngests.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("%w: empty image", apperr.ErrValidation)
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), accepted...) {
		metrics.ImageIngests.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("%w: unsupported image type %s", apperr.ErrValidation, mt.String())
	}

	if i.uploader == nil {
		metrics.ImageIngests.WithLabelValues("inline").Inc()
		return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
	}

	key := storage.ObjectKey(projectID, field, mt.Extension(), i.now())
	url, err := i.uploader.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), mt.String())
	if err != nil {
		metrics.ImageIngests.WithLabelValues("failed").Inc()
		logger.Errorf("imaging: upload %s failed: %v", key, err)
		return "", fmt.Errorf("%w: upload image: %v", apperr.ErrPersistence, err)
	}
	metrics.ImageIngests.WithLabelValues("uploaded").Inc()
	return url, nil
}
