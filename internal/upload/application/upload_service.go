package application

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"path"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"

	"github.com/bolsatrabajo/api/internal/apperror"
	"github.com/bolsatrabajo/api/internal/upload/domain"
)

// MaxPhotoSide bounds the longest side of stored profile photos.
const MaxPhotoSide = 1024

type uploadService struct {
	directory OwnerDirectory
	files     FileStore
	maxBytes  int64
	logger    *log.Logger
	now       func() time.Time
}

// UploadConfig defines dependencies required by NewUploadService.
type UploadConfig struct {
	Directory OwnerDirectory
	Files     FileStore
	MaxBytes  int64
	Logger    *log.Logger
	Now       func() time.Time
}

func NewUploadService(cfg UploadConfig) UploadService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &uploadService{
		directory: cfg.Directory,
		files:     cfg.Files,
		maxBytes:  cfg.MaxBytes,
		logger:    cfg.Logger,
		now:       now,
	}
}

// Replace stores r as the caller's new file of kind and returns the stored
// reference. The previous file is removed only after the owning record
// points at the new one.
func (s *uploadService) Replace(ctx context.Context, caller domain.Identity, kind domain.Kind, r io.Reader) (string, error) {
	if caller.ID == "" {
		return "", apperror.Unauthenticated("")
	}
	if !caller.Is(kind.OwnerRole()) {
		return "", apperror.Forbidden()
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return "", apperror.Validation(apperror.CodeInvalidUpload, "file is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return "", apperror.Validation(apperror.CodeInvalidUpload, fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	mime := mimetype.Detect(data).String()
	if !kind.Accepts(mime) {
		return "", apperror.Validation(apperror.CodeInvalidUpload, "unsupported file type "+mime)
	}
	ext := domain.ExtensionFor(mime)

	if kind == domain.KindPhoto {
		data, ext, err = normalizePhoto(data, ext)
		if err != nil {
			return "", err
		}
	}

	name := domain.NewFilename(kind, caller.ID, s.now(), ext)
	dir := kind.Segment()
	if err := s.files.Write(ctx, dir, name, bytes.NewReader(data)); err != nil {
		return "", err
	}

	reference := domain.StoredPath(kind, name)
	previous, err := s.directory.SetReference(ctx, kind, caller.ID, reference)
	if err != nil {
		if rmErr := s.files.Remove(dir, name); rmErr != nil && s.logger != nil {
			s.logger.Printf("remove orphan upload %s: %v", name, rmErr)
		}
		return "", err
	}

	if previous != "" && previous != reference {
		if err := s.files.Remove(dir, path.Base(previous)); err != nil && s.logger != nil {
			s.logger.Printf("remove replaced upload %s: %v", previous, err)
		}
	}
	return reference, nil
}

// normalizePhoto shrinks photos whose longest side exceeds MaxPhotoSide.
// Smaller photos are stored untouched; webp is re-encoded as png when resized.
func normalizePhoto(data []byte, ext string) ([]byte, string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", apperror.Validation(apperror.CodeInvalidUpload, "image cannot be decoded")
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= MaxPhotoSide && h <= MaxPhotoSide {
		return data, ext, nil
	}
	if w >= h {
		img = imaging.Resize(img, MaxPhotoSide, 0, imaging.Lanczos)
	} else {
		img = imaging.Resize(img, 0, MaxPhotoSide, imaging.Lanczos)
	}

	format, outExt := imaging.PNG, "png"
	if ext == "jpg" {
		format, outExt = imaging.JPEG, "jpg"
	}
	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, "", fmt.Errorf("encode photo: %w", err)
	}
	return buf.Bytes(), outExt, nil
}
