package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Skotchmaster/pharmacy/internal/media"
)

var uploadFolders = map[string]bool{
	"products":   true,
	"brands":     true,
	"categories": true,
	"banners":    true,
}

type MediaService struct {
	Media    media.Uploader
	MaxBytes int64
}

// UploadImage stores a catalog image. Unknown folders fall back to "misc".
func (s *MediaService) UploadImage(ctx context.Context, r io.Reader, size int64, folder string) (*media.Asset, error) {
	if err := checkSize(size, s.MaxBytes); err != nil {
		return nil, err
	}
	folder = strings.ToLower(strings.TrimSpace(folder))
	if !uploadFolders[folder] {
		folder = "misc"
	}

	ct, body, err := media.Accept(r, media.ImageTypes)
	if err != nil {
		return nil, mediaError(err)
	}
	asset, err := s.Media.Upload(ctx, body, folder)
	if err != nil {
		return nil, mediaError(err)
	}
	asset.ContentType = ct
	return asset, nil
}

func (s *MediaService) Delete(ctx context.Context, publicID string) error {
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return fmt.Errorf("%w: public_id required", ErrValidation)
	}
	return mediaError(s.Media.Delete(ctx, publicID))
}
