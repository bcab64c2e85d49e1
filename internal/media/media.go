// Package media turns uploads into normalized WebP objects and resolves
// stored keys to URLs.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"fbclone/internal/middleware"
	"fbclone/internal/models"
	"fbclone/internal/observability"
	"fbclone/internal/storage"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// MaxDimension bounds both sides of a stored image.
	MaxDimension = 1920
	WebPQuality  = 75

	DefaultMaxUploadSizeMB = 10
	DefaultURLTTL          = time.Hour
)

// Prefix is the key namespace of an upload.
type Prefix string

const (
	PrefixAvatars Prefix = "avatars"
	PrefixBanners Prefix = "banners"
	PrefixPosts   Prefix = "posts"
	PrefixStories Prefix = "stories"
)

// PrefixFor maps a profile image kind to its namespace.
func PrefixFor(kind models.ImageKind) Prefix {
	if kind == models.ImageKindBanner {
		return PrefixBanners
	}
	return PrefixAvatars
}

// Upload is a raw file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Service validates, normalizes and stores images.
type Service struct {
	store              storage.Storage
	maxUploadSizeBytes int64
	urlTTL             time.Duration
}

// NewService wraps store. Non-positive limits fall back to defaults.
func NewService(store storage.Storage, maxUploadSizeMB int, urlTTL time.Duration) *Service {
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = DefaultMaxUploadSizeMB
	}
	if urlTTL <= 0 {
		urlTTL = DefaultURLTTL
	}
	return &Service{
		store:              store,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
		urlTTL:             urlTTL,
	}
}

// MaxUploadSizeBytes is the largest accepted upload.
func (s *Service) MaxUploadSizeBytes() int64 {
	return s.maxUploadSizeBytes
}

// Store decodes in, downsizes it to fit MaxDimension, re-encodes it as WebP
// and writes it under a fresh key in prefix. Bad input is a validation error.
func (s *Service) Store(ctx context.Context, prefix Prefix, in Upload) (string, error) {
	if len(in.Content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detected := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detected) {
		return "", models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, decodedFormatToMime(format)) {
		return "", models.NewValidationError("Image content type mismatch")
	}

	encoded, err := encodeWebP(resizeToFit(decoded, MaxDimension, MaxDimension), WebPQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	key := path.Join(string(prefix), uuid.NewString()+".webp")
	if err := s.store.Put(ctx, key, bytes.NewReader(encoded), int64(len(encoded)), "image/webp"); err != nil {
		return "", models.NewInternalError(err)
	}
	observability.MediaUploadBytes.WithLabelValues(string(prefix)).Observe(float64(len(encoded)))
	return key, nil
}

// URL resolves key for a response. A nil key or a resolution failure yields "".
func (s *Service) URL(ctx context.Context, key *string) string {
	if key == nil || *key == "" {
		return ""
	}
	url, err := s.store.URL(ctx, *key, s.urlTTL)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "media url resolution failed", "key", *key, "error", err)
		return ""
	}
	return url
}

// Delete removes key, logging instead of failing; the row referencing it is
// already gone or replaced.
func (s *Service) Delete(ctx context.Context, key *string) {
	if key == nil || *key == "" {
		return
	}
	if err := s.store.Delete(ctx, *key); err != nil {
		middleware.Logger.WarnContext(ctx, "media delete failed", "key", *key, "error", err)
	}
}

// Storage exposes the backing store, e.g. for serving local objects.
func (s *Service) Storage() storage.Storage {
	return s.store
}

// resizeToFit scales src down, never up, preserving aspect ratio.
func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}
