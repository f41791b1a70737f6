package whatsapp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types"

	"github.com/knd27/kn-whatsapp-gateway/config"
	"github.com/knd27/kn-whatsapp-gateway/domains/gateway"
	"github.com/knd27/kn-whatsapp-gateway/pkg/filetype"
	pkgUtils "github.com/knd27/kn-whatsapp-gateway/pkg/utils"
)

const (
	mediaSubfolderMessages = "messages"
	mediaSubfolderStatus   = "status"
)

// extensionFromMime derives a file extension from a declared MIME type's
// subtype token, ignoring codec parameters like "audio/ogg; codecs=opus".
// Returns "" for absent, malformed, or generic binary types so the caller
// falls back to content sniffing.
func extensionFromMime(mimeType string) string {
	base := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	_, subtype, found := strings.Cut(base, "/")
	if !found || subtype == "" || subtype == "octet-stream" {
		return ""
	}
	return subtype
}

// extractMedia downloads a media payload and stores it on disk named after
// the message ID. Status updates land in their own subfolder. When the sender
// declared no usable MIME type the file is written as .bin first and renamed
// once the content sniffer identifies it.
func extractMedia(ctx context.Context, client *whatsmeow.Client, info *types.MessageInfo, msg whatsmeow.DownloadableMessage, declaredMime string) (*gateway.MediaDescriptor, error) {
	if msg == nil {
		return nil, nil
	}

	data, err := client.Download(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("download media: %w", err)
	}
	if int64(len(data)) > config.WhatsappSettingMaxDownloadSize {
		return nil, fmt.Errorf("media size %s exceeds limit %s",
			humanize.Bytes(uint64(len(data))), humanize.Bytes(uint64(config.WhatsappSettingMaxDownloadSize)))
	}

	subfolder := mediaSubfolderMessages
	if info.Chat.Server == types.BroadcastServer && info.Chat.User == "status" {
		subfolder = mediaSubfolderStatus
	}
	dir := pkgUtils.GetMediaStoragePath(config.PathMedia, subfolder)

	mimeType := strings.TrimSpace(strings.Split(declaredMime, ";")[0])
	ext := extensionFromMime(declaredMime)

	fileName := string(info.ID) + ".bin"
	if ext != "" {
		fileName = string(info.ID) + "." + ext
	}
	path := filepath.Join(dir, fileName)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write media file: %w", err)
	}

	if ext == "" {
		var sniffedMime string
		fileName, path, ext, sniffedMime = finalizeBinFile(dir, string(info.ID), path, data)
		if sniffedMime != "" {
			mimeType = sniffedMime
		}
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	logrus.WithFields(logrus.Fields{
		"message_id": info.ID,
		"file":       fileName,
		"mime":       mimeType,
		"size":       humanize.Bytes(uint64(len(data))),
	}).Info("[MEDIA] Stored inbound media")

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	return &gateway.MediaDescriptor{
		FileName:     fileName,
		FilePath:     absPath,
		RelativePath: subfolder + "/" + fileName,
		MimeType:     mimeType,
		Extension:    ext,
		Size:         int64(len(data)),
	}, nil
}

// finalizeBinFile sniffs an unidentified payload already stored as
// `<id>.bin` and renames it to the detected extension. The extension stays
// "bin" when detection or the rename fails, so the descriptor always names a
// file that exists on disk; the sniffed MIME is reported either way.
func finalizeBinFile(dir, id, path string, data []byte) (fileName, finalPath, ext, mime string) {
	fileName, finalPath, ext = id+".bin", path, "bin"

	detected := filetype.Detect(data)
	if detected == nil {
		return fileName, finalPath, ext, ""
	}
	mime = detected.Mime

	renamed := id + "." + detected.Ext
	renamedPath := filepath.Join(dir, renamed)
	if err := os.Rename(path, renamedPath); err != nil {
		logrus.Warnf("[MEDIA] Failed to rename %s to %s: %v", path, renamedPath, err)
		return fileName, finalPath, ext, mime
	}
	return renamed, renamedPath, detected.Ext, mime
}

// FindMediaByMessageID scans the media folders for a file named after the
// message ID regardless of its extension. Returns "" when nothing matches.
func FindMediaByMessageID(messageID string) string {
	for _, subfolder := range []string{mediaSubfolderMessages, mediaSubfolderStatus} {
		pattern := filepath.Join(config.PathMedia, subfolder, messageID+".*")
		matches, err := filepath.Glob(pattern)
		if err != nil || len(matches) == 0 {
			continue
		}
		return matches[0]
	}
	return ""
}
