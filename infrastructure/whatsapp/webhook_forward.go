package whatsapp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/knd27/kn-whatsapp-gateway/config"
	pkgError "github.com/knd27/kn-whatsapp-gateway/pkg/error"
)

var submitWebhookFn = submitWebhook

// forwardToWebhooks delivers the payload to every configured webhook URL
// concurrently and waits for all deliveries to settle. One slow or failing
// consumer never blocks or cancels the others. It only returns an error when
// every delivery failed.
func forwardToWebhooks(ctx context.Context, eventName string, payload any) error {
	urls := config.WhatsappWebhook
	total := len(urls)
	if total == 0 {
		logrus.WithField("event", eventName).Debug("[WEBHOOK] No webhook configured; skipping dispatch")
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"event":    eventName,
		"webhooks": total,
	}).Info("[WEBHOOK] Forwarding event to configured webhook(s)")

	var (
		mu     sync.Mutex
		failed []string
		wg     sync.WaitGroup
	)
	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			if err := submitWebhookFn(ctx, payload, url); err != nil {
				logrus.Warnf("[WEBHOOK] Failed forwarding %s to %s: %v", eventName, url, err)
				mu.Lock()
				failed = append(failed, fmt.Sprintf("%s: %v", url, err))
				mu.Unlock()
			}
		}(url)
	}
	wg.Wait()

	if len(failed) == total {
		return pkgError.WebhookError(fmt.Sprintf("all webhook URLs failed for %s: %s", eventName, strings.Join(failed, "; ")))
	}
	if len(failed) > 0 {
		logrus.Warnf("[WEBHOOK] Some webhook URLs failed for %s (succeeded: %d/%d): %s",
			eventName, total-len(failed), total, strings.Join(failed, "; "))
	} else {
		logrus.Infof("[WEBHOOK] %s forwarded to all webhook(s)", eventName)
	}
	return nil
}
