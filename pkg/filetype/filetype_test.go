package filetype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func padded(prefix []byte) []byte {
	buf := make([]byte, 16)
	copy(buf, prefix)
	return buf
}

func TestDetectShortBufferReturnsNil(t *testing.T) {
	assert.Nil(t, Detect(nil))
	assert.Nil(t, Detect([]byte{0xFF, 0xD8, 0xFF}))
	assert.Nil(t, Detect(make([]byte, 11)))
}

func TestDetectJpeg(t *testing.T) {
	ft := Detect(padded([]byte{0xFF, 0xD8, 0xFF, 0xE0}))
	require.NotNil(t, ft)
	assert.Equal(t, "jpg", ft.Ext)
	assert.Equal(t, "image/jpeg", ft.Mime)
}

func TestDetectSignatures(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		ext  string
		mime string
	}{
		{"png", padded([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}), "png", "image/png"},
		{"gif87a", padded([]byte("GIF87a")), "gif", "image/gif"},
		{"gif89a", padded([]byte("GIF89a")), "gif", "image/gif"},
		{"pdf", padded([]byte("%PDF-1.7")), "pdf", "application/pdf"},
		{"webp", []byte("RIFF\x10\x00\x00\x00WEBPVP8 "), "webp", "image/webp"},
		{"mkv", padded([]byte{0x1A, 0x45, 0xDF, 0xA3}), "mkv", "video/x-matroska"},
		{"mp4", []byte("\x00\x00\x00\x18ftypmp42...."), "mp4", "video/mp4"},
		{"avi", []byte("RIFF\x10\x00\x00\x00AVI LIST"), "avi", "video/x-msvideo"},
		{"mp3 id3", padded([]byte("ID3\x04")), "mp3", "audio/mpeg"},
		{"mp3 frame sync", padded([]byte{0xFF, 0xFB, 0x90}), "mp3", "audio/mpeg"},
		{"ogg", padded([]byte("OggS")), "ogg", "audio/ogg"},
		{"zip", padded([]byte{0x50, 0x4B, 0x03, 0x04}), "zip", "application/zip"},
		{"rar", padded([]byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00}), "rar", "application/vnd.rar"},
		{"bmp", padded([]byte{0x42, 0x4D}), "bmp", "image/bmp"},
		{"ico", padded([]byte{0x00, 0x00, 0x01, 0x00}), "ico", "image/x-icon"},
		{"tiff little endian", padded([]byte{0x49, 0x49, 0x2A, 0x00}), "tiff", "image/tiff"},
		{"tiff big endian", padded([]byte{0x4D, 0x4D, 0x00, 0x2A}), "tiff", "image/tiff"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ft := Detect(tc.buf)
			require.NotNil(t, ft)
			assert.Equal(t, tc.ext, ft.Ext)
			assert.Equal(t, tc.mime, ft.Mime)
		})
	}
}

func TestDetectUnknownReturnsNil(t *testing.T) {
	assert.Nil(t, Detect(padded([]byte("hello world!"))))
}

func TestDetectWebpBeforeAvi(t *testing.T) {
	// Both share the RIFF header; the format tag at offset 8 decides.
	webp := Detect([]byte("RIFF\x00\x00\x00\x00WEBP...."))
	require.NotNil(t, webp)
	assert.Equal(t, "webp", webp.Ext)

	avi := Detect([]byte("RIFF\x00\x00\x00\x00AVI ...."))
	require.NotNil(t, avi)
	assert.Equal(t, "avi", avi.Ext)
}
