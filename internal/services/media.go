package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/yungbote/marmora-backend/internal/platform/apierr"
	"github.com/yungbote/marmora-backend/internal/platform/logger"
	"github.com/yungbote/marmora-backend/internal/platform/validation"
)

const DefaultMaxUploadBytes = 10 << 20

// ObjectStore is satisfied by the GCS bucket service and the local disk store.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, file io.Reader) error
	Delete(ctx context.Context, key string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	PublicURL(key string) string
}

var mediaFolders = map[string]bool{
	"products":   true,
	"categories": true,
	"blog":       true,
	"seo":        true,
}

var imageExt = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

type UploadedMedia struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

type MediaService interface {
	UploadImage(ctx context.Context, folder string, r io.Reader) (*UploadedMedia, error)
	Delete(ctx context.Context, key string) error
	// OpenURL opens an object previously returned by UploadImage, by its public URL.
	OpenURL(ctx context.Context, publicURL string) (io.ReadCloser, error)
}

type mediaService struct {
	log      *logger.Logger
	store    ObjectStore
	maxBytes int64
	now      func() time.Time
}

func NewMediaService(log *logger.Logger, store ObjectStore, maxBytes int64) MediaService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &mediaService{
		log:      log.With("service", "MediaService"),
		store:    store,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

func (s *mediaService) UploadImage(ctx context.Context, folder string, r io.Reader) (*UploadedMedia, error) {
	folder = strings.ToLower(strings.TrimSpace(folder))
	if !mediaFolders[folder] {
		return nil, validation.Single("folder", validation.CodeInvalid, nil)
	}
	raw, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(raw)) > s.maxBytes {
		return nil, apierr.New(http.StatusRequestEntityTooLarge, CodeTooLarge, fmt.Errorf("file exceeds %d bytes", s.maxBytes))
	}
	if len(raw) == 0 {
		return nil, validation.Single("file", validation.CodeRequired, nil)
	}

	ctype := http.DetectContentType(raw)
	ext, ok := imageExt[ctype]
	if !ok {
		return nil, apierr.New(http.StatusUnsupportedMediaType, CodeUnsupported, fmt.Errorf("unsupported content type %s", ctype))
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, apierr.New(http.StatusUnsupportedMediaType, CodeUnsupported, fmt.Errorf("decode image: %w", err))
	}

	key := fmt.Sprintf("%s/%s/%s.%s", folder, s.now().UTC().Format("2006/01"), uuid.NewString(), ext)
	if err := s.store.Upload(ctx, key, ctype, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}
	s.log.Info("Image uploaded", "key", key, "bytes", len(raw))
	return &UploadedMedia{
		Key:         key,
		URL:         s.store.PublicURL(key),
		ContentType: ctype,
		Size:        len(raw),
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

func (s *mediaService) Delete(ctx context.Context, key string) error {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	folder, _, _ := strings.Cut(key, "/")
	if !mediaFolders[folder] || strings.Contains(key, "..") {
		return validation.Single("key", validation.CodeInvalid, nil)
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *mediaService) OpenURL(ctx context.Context, publicURL string) (io.ReadCloser, error) {
	key, ok := s.keyForURL(publicURL)
	if !ok {
		return nil, fmt.Errorf("not a stored object: %s", publicURL)
	}
	return s.store.Open(ctx, key)
}

// keyForURL inverts PublicURL for the simple "<base>/<key>" layouts.
func (s *mediaService) keyForURL(u string) (string, bool) {
	const probe = "__probe__"
	base := strings.TrimSuffix(s.store.PublicURL(probe), probe)
	if base == "" || !strings.HasPrefix(u, base) {
		return "", false
	}
	key := strings.TrimPrefix(u, base)
	folder, _, _ := strings.Cut(key, "/")
	if !mediaFolders[folder] || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
