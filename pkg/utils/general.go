package utils

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/knd27/kn-whatsapp-gateway/config"
)

// SanitizePhone normalizes a bare number into a JID so callers may pass
// either "6281..." or a full JID. Group identifiers are longer than any
// phone number, hence the length split.
func SanitizePhone(phone *string) {
	if phone == nil {
		return
	}
	trimmed := strings.TrimSpace(*phone)
	if trimmed != "" && !strings.Contains(trimmed, "@") {
		if len(trimmed) <= 15 {
			trimmed = trimmed + config.WhatsappTypeUser
		} else {
			trimmed = trimmed + config.WhatsappTypeGroup
		}
	}
	*phone = trimmed
}

// CreateFolder creates every given directory if it does not exist yet.
func CreateFolder(folders ...string) error {
	for _, folder := range folders {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// RemoveFile deletes the given paths after an optional delay in seconds.
// Used for temporary send items; failures are only logged.
func RemoveFile(delaySecond int, paths ...string) {
	if delaySecond > 0 {
		time.Sleep(time.Duration(delaySecond) * time.Second)
	}
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logrus.Warnf("[UTILS] Failed to remove file %s: %v", path, err)
		}
	}
}
