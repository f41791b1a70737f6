package config

import (
	"os"
	"strconv"
	"strings"

	"go.mau.fi/whatsmeow/proto/waCompanionReg"
)

var (
	AppVersion             = "v1.0.0"
	AppPort                = "3000"
	AppDebug               = false
	AppOs                  = "KnGateway"
	AppPlatform            = waCompanionReg.DeviceProps_PlatformType(1)
	AppBasicAuthCredential []string
	AppBasePath            = ""

	PathQrCode    = "statics/qrcode"
	PathSendItems = "statics/senditems"
	PathMedia     = "statics/media"
	PathStorages  = "storages"

	DBURI     = "file:storages/whatsapp.db?_foreign_keys=on"
	DBKeysURI = ""

	WhatsappAutoMarkRead                    = false
	WhatsappAutoDownloadMedia               = true
	WhatsappWebhook                   []string
	WhatsappWebhookSecret                   = ""
	WhatsappWebhookInsecureSkipVerify       = false
	WhatsappLogLevel                        = "ERROR"
	WhatsappSettingMaxImageSize       int64 = 20000000  // 20MB
	WhatsappSettingMaxFileSize        int64 = 50000000  // 50MB
	WhatsappSettingMaxVideoSize       int64 = 100000000 // 100MB
	WhatsappSettingMaxDownloadSize    int64 = 500000000 // 500MB
	WhatsappTypeUser                        = "@s.whatsapp.net"
	WhatsappTypeGroup                       = "@g.us"
	WhatsappAccountValidation               = true

	// MeNumber overrides the own-account number resolved at login. Useful
	// when the stored device JID carries a lid instead of the phone number.
	MeNumber = ""

	MessageStoreURI       = "file:storages/messages.db"
	MessageStoreEnableWAL = true

	MessageWorkerPoolSize  = 20
	MessageWorkerQueueSize = 1000
)

func init() {
	if v := strings.TrimSpace(os.Getenv("WEBHOOK_URL")); v != "" {
		for _, url := range strings.Split(v, ",") {
			if url = strings.TrimSpace(url); url != "" {
				WhatsappWebhook = append(WhatsappWebhook, url)
			}
		}
	}
	if v := strings.TrimSpace(os.Getenv("WEBHOOK_SECRET")); v != "" {
		WhatsappWebhookSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("ME_NUMBER")); v != "" {
		MeNumber = v
	}
	if v := strings.TrimSpace(os.Getenv("MEDIA_PATH")); v != "" {
		PathMedia = v
	}
	if v := strings.TrimSpace(os.Getenv("MESSAGE_STORE_URI")); v != "" {
		MessageStoreURI = v
	}
	if v := os.Getenv("MESSAGE_WORKER_POOL_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			MessageWorkerPoolSize = parsed
		}
	}
	if v := os.Getenv("MESSAGE_WORKER_QUEUE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			MessageWorkerQueueSize = parsed
		}
	}
}
