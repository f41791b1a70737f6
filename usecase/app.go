package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	waLog "go.mau.fi/whatsmeow/util/log"

	"github.com/knd27/kn-whatsapp-gateway/config"
	domainApp "github.com/knd27/kn-whatsapp-gateway/domains/app"
	domainStorage "github.com/knd27/kn-whatsapp-gateway/domains/storage"
	"github.com/knd27/kn-whatsapp-gateway/infrastructure/whatsapp"
	pkgError "github.com/knd27/kn-whatsapp-gateway/pkg/error"
	"github.com/knd27/kn-whatsapp-gateway/validations"
)

type serviceApp struct {
	messageRepo domainStorage.IMessageRepository
}

func NewAppService(messageRepo domainStorage.IMessageRepository) domainApp.IAppUsecase {
	return &serviceApp{
		messageRepo: messageRepo,
	}
}

func (service *serviceApp) Login(ctx context.Context) (response domainApp.LoginResponse, err error) {
	client := whatsapp.GetClient()
	currentDB := whatsapp.GetDB()

	if client == nil {
		if currentDB == nil {
			return response, pkgError.ErrWaCLI
		}
		device := currentDB.NewDevice()
		client = whatsmeow.NewClient(device, waLog.Stdout("Client", config.WhatsappLogLevel, true))
		client.EnableAutoReconnect = true
		client.AutoTrustIdentity = true
	}

	// Disconnect for reconnecting
	client.Disconnect()

	chImage := make(chan string)

	ch, err := client.GetQRChannel(context.Background())
	if err != nil {
		logrus.Error(err.Error())
		// This error means that we're already logged in, so ignore it.
		if errors.Is(err, whatsmeow.ErrQRStoreContainsID) {
			_ = client.Connect() // just connect to websocket
			if client.IsLoggedIn() {
				return response, pkgError.ErrAlreadyLoggedIn
			}
			return response, pkgError.ErrSessionSaved
		}
		return response, pkgError.ErrQrChannel
	}

	go func() {
		for evt := range ch {
			response.Code = evt.Code
			response.Duration = evt.Timeout / time.Second / 2
			if evt.Event == "code" {
				qrPath := fmt.Sprintf("%s/scan-qr-%s.png", config.PathQrCode, uuid.NewString())
				err = qrcode.WriteFile(evt.Code, qrcode.Medium, 512, qrPath)
				if err != nil {
					logrus.Error("Error when write qr code to file: ", err)
				}
				go func() {
					time.Sleep(response.Duration * time.Second)
					if err := os.Remove(qrPath); err != nil && !os.IsNotExist(err) {
						logrus.Error("error when remove qrImage file", err.Error())
					}
				}()
				chImage <- qrPath
			} else {
				logrus.Error("error when get qrCode", evt.Event, evt.Error)
			}
		}
	}()

	err = client.Connect()
	if err != nil {
		logrus.Errorf("Error when connect to whatsapp: %v", err)
		return response, pkgError.ErrReconnect
	}
	response.ImagePath = <-chImage

	whatsapp.UpdateGlobalClient(client, currentDB)

	return response, nil
}

func (service *serviceApp) LoginWithCode(ctx context.Context, phoneNumber string) (loginCode string, err error) {
	if err = validations.ValidateLoginWithCode(ctx, phoneNumber); err != nil {
		logrus.Errorf("Error when validate login with code: %s", err.Error())
		return loginCode, err
	}

	client := whatsapp.GetClient()
	if client == nil {
		return loginCode, pkgError.ErrWaCLI
	}
	if client.Store.ID != nil || client.IsLoggedIn() {
		logrus.Warn("User is already logged in")
		return loginCode, pkgError.ErrAlreadyLoggedIn
	}

	if err = service.Reconnect(ctx); err != nil {
		logrus.Errorf("Error when reconnecting before login with code: %s", err.Error())
		return loginCode, err
	}

	client = whatsapp.GetClient()
	if client.IsLoggedIn() || client.Store.ID != nil {
		logrus.Warn("User is already logged in after reconnect")
		return loginCode, pkgError.ErrAlreadyLoggedIn
	}

	loginCode, err = client.PairPhone(ctx, phoneNumber, true, whatsmeow.PairClientChrome, "Chrome (Linux)")
	if err != nil {
		logrus.Errorf("Error when pairing phone: %s", err.Error())
		return loginCode, err
	}

	whatsapp.UpdateGlobalClient(client, whatsapp.GetDB())

	logrus.Infof("Successfully paired phone with code: %s", loginCode)
	return loginCode, nil
}

func (service *serviceApp) Logout(ctx context.Context) (err error) {
	client := whatsapp.GetClient()
	if client == nil {
		return pkgError.ErrWaCLI
	}

	if err = client.Logout(ctx); err != nil {
		logrus.Errorf("WhatsApp logout failed: %v", err)
	}

	newDB, newCli, err := whatsapp.PerformCleanupAndUpdateGlobals(ctx, "MANUAL_LOGOUT", service.messageRepo)
	if err != nil {
		return err
	}

	whatsapp.UpdateGlobalClient(newCli, newDB)
	return nil
}

func (service *serviceApp) Reconnect(_ context.Context) (err error) {
	client := whatsapp.GetClient()
	if client == nil {
		return pkgError.ErrWaCLI
	}

	client.Disconnect()
	if err = client.Connect(); err != nil {
		logrus.Errorf("Reconnect failed: %v", err)
		return err
	}

	whatsapp.UpdateGlobalClient(client, whatsapp.GetDB())
	return nil
}

func (service *serviceApp) Status(_ context.Context) (response domainApp.StatusResponse, err error) {
	isConnected, isLoggedIn, deviceJID := whatsapp.GetConnectionStatus()
	response.IsConnected = isConnected
	response.IsLoggedIn = isLoggedIn
	response.DeviceJID = deviceJID
	response.MeNumber = whatsapp.GetOwnNumber()
	return response, nil
}
