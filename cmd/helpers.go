package cmd

import (
	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"

	"github.com/knd27/kn-whatsapp-gateway/infrastructure/whatsapp"
	"github.com/knd27/kn-whatsapp-gateway/ui/rest/helpers"
)

// whatsappCli holds the client created at boot. Cleanup flows may swap the
// global inside the whatsapp package; resolve through it when unset.
var whatsappCli *whatsmeow.Client

// getValidWhatsAppClient returns an initialized WhatsApp client if available.
func getValidWhatsAppClient() *whatsmeow.Client {
	client := whatsappCli
	if client == nil {
		client = whatsapp.GetClient()
	}
	return client
}

// startAutoReconnectCheckerIfClientAvailable guards the reconnect checker behind a valid client reference.
func startAutoReconnectCheckerIfClientAvailable() {
	client := getValidWhatsAppClient()
	if client == nil {
		logrus.Warn("whatsapp client is nil; auto-reconnect checker not started")
		return
	}
	go helpers.SetAutoReconnectChecking(client)
}
