package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/storage"
)

// imageExtensions maps the accepted content types to file extensions.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageService decodes inline base64 images and keeps them in an object store.
type ImageService struct {
	store    storage.ObjectStore
	maxBytes int64
}

func NewImageService(store storage.ObjectStore, maxBytes int64) *ImageService {
	return &ImageService{store: store, maxBytes: maxBytes}
}

// Save decodes encoded (a data URI or bare base64), checks that it is an
// image and stores it. It returns the object key.
func (s *ImageService) Save(ctx context.Context, encoded string) (string, error) {
	data, err := s.decode(encoded)
	if err != nil {
		return "", err
	}

	mtype := mimetype.Detect(data)
	var contentType, ext string
	for candidate, candidateExt := range imageExtensions {
		if mtype.Is(candidate) {
			contentType, ext = candidate, candidateExt
			break
		}
	}
	if contentType == "" {
		return "", models.NewFieldError("image", fmt.Sprintf("unsupported image type %s", mtype.String()))
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return "", models.NewFieldError("image", "upload a valid image")
	}

	key := "recipes/" + uuid.New().String() + ext
	if err := s.store.Put(ctx, key, data, contentType); err != nil {
		return "", models.NewInternalError(fmt.Errorf("failed to store image: %w", err))
	}
	return key, nil
}

func (s *ImageService) decode(encoded string) ([]byte, error) {
	payload := strings.TrimSpace(encoded)
	if strings.HasPrefix(payload, "data:") {
		header, body, found := strings.Cut(payload, ",")
		if !found || !strings.HasSuffix(header, ";base64") || !strings.HasPrefix(header, "data:image/") {
			return nil, models.NewFieldError("image", "expected a base64 data URI")
		}
		payload = body
	}

	if s.maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > s.maxBytes+2 {
		return nil, models.NewFieldError("image", fmt.Sprintf("image exceeds %d bytes", s.maxBytes))
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil || len(data) == 0 {
		return nil, models.NewFieldError("image", "invalid base64 image")
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, models.NewFieldError("image", fmt.Sprintf("image exceeds %d bytes", s.maxBytes))
	}
	return data, nil
}

// Remove deletes a stored image. Failures are logged, never returned.
func (s *ImageService) Remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to remove image")
	}
}

// URL returns the public URL of a stored image.
func (s *ImageService) URL(key string) string {
	return s.store.URL(key)
}
