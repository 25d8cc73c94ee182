package security

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestValidateImage(t *testing.T) {
	pngData := pngBytes(t)
	jpegHeader := append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 32)...)

	tests := []struct {
		name     string
		filename string
		data     []byte
		wantErr  error
	}{
		{"png", "card.PNG", pngData, nil},
		{"jpeg", "card.jpg", jpegHeader, nil},
		{"no extension", "card", pngData, ErrNoExtension},
		{"gif rejected", "card.gif", []byte("GIF89a......"), ErrExtensionRejected},
		{"renamed png", "card.jpg", pngData, ErrContentMismatch},
		{"html disguised", "card.png", []byte("<html><body>hi</body></html>"), ErrContentMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImage(tt.filename, tt.data)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
