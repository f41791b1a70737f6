package whatsapp

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/knd27/kn-whatsapp-gateway/config"
	pkgError "github.com/knd27/kn-whatsapp-gateway/pkg/error"
	pkgUtils "github.com/knd27/kn-whatsapp-gateway/pkg/utils"
)

const webhookTimeout = 5 * time.Second

// submitWebhook delivers the payload to a single URL with one attempt.
// Consumers that miss an event are expected to re-sync through the REST API,
// so there is no retry loop here.
func submitWebhook(ctx context.Context, payload any, url string) error {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.WhatsappWebhookInsecureSkipVerify,
		},
	}
	client := &http.Client{
		Timeout:   webhookTimeout,
		Transport: transport,
	}

	postBody, err := json.Marshal(payload)
	if err != nil {
		return pkgError.WebhookError(fmt.Sprintf("Failed to marshal body: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(postBody))
	if err != nil {
		return pkgError.WebhookError(fmt.Sprintf("error when create http object %v", err))
	}

	req.Header.Set("Content-Type", "application/json")
	if secret := config.WhatsappWebhookSecret; secret != "" {
		signature, err := pkgUtils.GetMessageDigestOrSignature(postBody, []byte(secret))
		if err != nil {
			return pkgError.WebhookError(fmt.Sprintf("error when create signature %v", err))
		}
		req.Header.Set("X-Hub-Signature-256", fmt.Sprintf("sha256=%s", signature))
	}

	resp, err := client.Do(req)
	if err != nil {
		return pkgError.WebhookError(fmt.Sprintf("error when submit webhook: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgError.WebhookError(fmt.Sprintf("webhook returned status %d", resp.StatusCode))
	}

	logrus.Debugf("[WEBHOOK] Delivered to %s", url)
	return nil
}
