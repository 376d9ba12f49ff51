// Package media stores uploaded images and documents on the image CDN.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrDisabled        = errors.New("media uploads are not configured")
	ErrUnsupportedType = errors.New("unsupported file type")
)

type Asset struct {
	URL         string `json:"url"`
	PublicID    string `json:"public_id"`
	ContentType string `json:"content_type,omitempty"`
}

type Uploader interface {
	Upload(ctx context.Context, r io.Reader, folder string) (*Asset, error)
	Delete(ctx context.Context, publicID string) error
}

var (
	ImageTypes    = []string{"image/jpeg", "image/png", "image/webp"}
	DocumentTypes = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}
)

const sniffLen = 3072

// Sniff detects the content type from the first bytes of r and returns a
// reader that still yields the whole stream.
func Sniff(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]

	ct, _, _ := strings.Cut(mimetype.Detect(head).String(), ";")
	return ct, io.MultiReader(bytes.NewReader(head), r), nil
}

// Accept sniffs r and rejects types outside allowed.
func Accept(r io.Reader, allowed []string) (string, io.Reader, error) {
	ct, rest, err := Sniff(r)
	if err != nil {
		return "", nil, err
	}
	for _, a := range allowed {
		if a == ct {
			return ct, rest, nil
		}
	}
	return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
}

type Disabled struct{}

func (Disabled) Upload(context.Context, io.Reader, string) (*Asset, error) {
	return nil, ErrDisabled
}

func (Disabled) Delete(context.Context, string) error {
	return ErrDisabled
}
