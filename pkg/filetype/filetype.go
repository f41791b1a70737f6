// Package filetype identifies common media formats from their leading bytes.
package filetype

import "bytes"

// FileType pairs a file extension with its MIME type.
type FileType struct {
	Ext  string
	Mime string
}

// Detect sniffs the buffer's magic bytes and returns the matching file type,
// or nil when the buffer is too short or matches no known signature.
// Checks run in a fixed order so container formats sharing a RIFF header
// (WEBP, AVI) and loose matchers (MP3 frame sync) resolve deterministically.
func Detect(buf []byte) *FileType {
	if len(buf) < 12 {
		return nil
	}

	switch {
	case bytes.HasPrefix(buf, []byte{0xFF, 0xD8, 0xFF}):
		return &FileType{Ext: "jpg", Mime: "image/jpeg"}
	case bytes.HasPrefix(buf, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}):
		return &FileType{Ext: "png", Mime: "image/png"}
	case bytes.HasPrefix(buf, []byte("GIF87a")) || bytes.HasPrefix(buf, []byte("GIF89a")):
		return &FileType{Ext: "gif", Mime: "image/gif"}
	case bytes.HasPrefix(buf, []byte("%PDF")):
		return &FileType{Ext: "pdf", Mime: "application/pdf"}
	case bytes.HasPrefix(buf, []byte("RIFF")) && bytes.Equal(buf[8:12], []byte("WEBP")):
		return &FileType{Ext: "webp", Mime: "image/webp"}
	case bytes.HasPrefix(buf, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return &FileType{Ext: "mkv", Mime: "video/x-matroska"}
	case bytes.Equal(buf[4:8], []byte("ftyp")):
		return &FileType{Ext: "mp4", Mime: "video/mp4"}
	case bytes.HasPrefix(buf, []byte("RIFF")) && bytes.Equal(buf[8:12], []byte("AVI ")):
		return &FileType{Ext: "avi", Mime: "video/x-msvideo"}
	case bytes.HasPrefix(buf, []byte("ID3")) || (buf[0] == 0xFF && buf[1]&0xE0 == 0xE0):
		return &FileType{Ext: "mp3", Mime: "audio/mpeg"}
	case bytes.HasPrefix(buf, []byte("OggS")):
		return &FileType{Ext: "ogg", Mime: "audio/ogg"}
	case bytes.HasPrefix(buf, []byte{0x50, 0x4B, 0x03, 0x04}):
		return &FileType{Ext: "zip", Mime: "application/zip"}
	case bytes.HasPrefix(buf, []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07, 0x00}):
		return &FileType{Ext: "rar", Mime: "application/vnd.rar"}
	case bytes.HasPrefix(buf, []byte{0x42, 0x4D}):
		return &FileType{Ext: "bmp", Mime: "image/bmp"}
	case bytes.HasPrefix(buf, []byte{0x00, 0x00, 0x01, 0x00}):
		return &FileType{Ext: "ico", Mime: "image/x-icon"}
	case bytes.HasPrefix(buf, []byte{0x49, 0x49, 0x2A, 0x00}) || bytes.HasPrefix(buf, []byte{0x4D, 0x4D, 0x00, 0x2A}):
		return &FileType{Ext: "tiff", Mime: "image/tiff"}
	}

	return nil
}
