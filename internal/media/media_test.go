package media

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestAcceptKeepsWholeStream(t *testing.T) {
	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 2048)...)

	ct, r, err := Accept(bytes.NewReader(payload), ImageTypes)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestAcceptRejectsText(t *testing.T) {
	_, _, err := Accept(bytes.NewReader([]byte("hello world")), ImageTypes)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestAcceptPDFOnlyAsDocument(t *testing.T) {
	pdf := []byte("%PDF-1.7\n%...")
	_, _, err := Accept(bytes.NewReader(pdf), ImageTypes)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	ct, _, err := Accept(bytes.NewReader(pdf), DocumentTypes)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ct)
}

func TestAcceptWebP(t *testing.T) {
	webp := append([]byte("RIFF\x24\x00\x00\x00WEBPVP8 "), bytes.Repeat([]byte{0}, 32)...)
	ct, _, err := Accept(bytes.NewReader(webp), ImageTypes)
	require.NoError(t, err)
	assert.Equal(t, "image/webp", ct)
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Upload(context.Background(), bytes.NewReader(nil), "x")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.ErrorIs(t, Disabled{}.Delete(context.Background(), "x"), ErrDisabled)
}
