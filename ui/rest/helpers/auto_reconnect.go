package helpers

import (
	"time"

	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
)

// SetAutoReconnectChecking periodically verifies the socket is still alive
// and reconnects when it dropped without a LoggedOut event.
func SetAutoReconnectChecking(cli *whatsmeow.Client) {
	for {
		time.Sleep(5 * time.Minute)
		if cli.Store.ID == nil {
			continue
		}
		if !cli.IsConnected() {
			logrus.Info("[RECONNECT] Connection lost, reconnecting...")
			if err := cli.Connect(); err != nil {
				logrus.Errorf("[RECONNECT] Failed to reconnect: %v", err)
			}
		}
	}
}
