package whatsapp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/appstate"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"

	"github.com/knd27/kn-whatsapp-gateway/config"
	"github.com/knd27/kn-whatsapp-gateway/domains/gateway"
	"github.com/knd27/kn-whatsapp-gateway/domains/storage"
	"github.com/knd27/kn-whatsapp-gateway/infrastructure/messagestore"
	pkgError "github.com/knd27/kn-whatsapp-gateway/pkg/error"
	"github.com/knd27/kn-whatsapp-gateway/pkg/identity"
	"github.com/knd27/kn-whatsapp-gateway/pkg/msgworker"
	"github.com/knd27/kn-whatsapp-gateway/ui/websocket"
)

var (
	globalStateMu sync.RWMutex
	cli           *whatsmeow.Client
	db            *sqlstore.Container
	keysDB        *sqlstore.Container
	log           waLog.Logger

	// ownNumber is the bare phone number of the logged-in account. Written
	// only from the event handler goroutine on connect, read everywhere.
	ownNumberMu sync.RWMutex
	ownNumber   string

	msgWorkerPool *msgworker.MessageWorkerPool
	poolInitOnce  sync.Once
	poolCtx       context.Context
	poolCancel    context.CancelFunc
)

// --- Initialization & Setup ---

func InitWaDB(ctx context.Context, DBURI string) *sqlstore.Container {
	log = waLog.Stdout("Main", config.WhatsappLogLevel, true)
	container, err := initDatabase(ctx, waLog.Stdout("Database", config.WhatsappLogLevel, true), DBURI)
	if err != nil {
		panic(pkgError.InternalServerError(fmt.Sprintf("Database initialization error: %v", err)))
	}
	return container
}

func initDatabase(ctx context.Context, dbLog waLog.Logger, DBURI string) (*sqlstore.Container, error) {
	if strings.HasPrefix(DBURI, "postgres:") {
		return sqlstore.New(ctx, "postgres", DBURI, dbLog)
	}
	// Default to sqlite3 (file:)
	return sqlstore.New(ctx, "sqlite3", DBURI, dbLog)
}

func InitWaCLI(ctx context.Context, storeContainer, keysStoreContainer *sqlstore.Container, repo storage.IMessageRepository) *whatsmeow.Client {
	device, err := storeContainer.GetFirstDevice(ctx)
	if err != nil {
		panic(err)
	}
	if device == nil {
		panic("No device found")
	}

	configureDeviceProps()

	// Configure split keys database if needed
	if keysStoreContainer != nil && device.ID != nil {
		innerStore := sqlstore.NewSQLStore(keysStoreContainer, *device.ID)
		syncKeysDevice(ctx, storeContainer, keysStoreContainer)
		device.Identities = innerStore
		device.Sessions = innerStore
		device.PreKeys = innerStore
		device.SenderKeys = innerStore
		device.MsgSecrets = innerStore
		device.PrivacyTokens = innerStore
	}

	initMessageWorkerPool()

	client := whatsmeow.NewClient(device, waLog.Stdout("Client", config.WhatsappLogLevel, true))
	client.EnableAutoReconnect = true
	client.AutoTrustIdentity = true
	client.AddEventHandler(func(rawEvt interface{}) { handler(ctx, rawEvt, repo) })

	globalStateMu.Lock()
	cli = client
	db = storeContainer
	keysDB = keysStoreContainer
	globalStateMu.Unlock()

	refreshOwnNumber(client)

	return client
}

func initMessageWorkerPool() {
	poolInitOnce.Do(func() {
		poolCtx, poolCancel = context.WithCancel(context.Background())
		msgWorkerPool = msgworker.NewMessageWorkerPool(config.MessageWorkerPoolSize, config.MessageWorkerQueueSize)
		msgWorkerPool.Start(poolCtx)
	})
}

// StopMessageWorkerPool stops the message worker pool gracefully.
func StopMessageWorkerPool() {
	if poolCancel != nil {
		poolCancel()
	}
	if msgWorkerPool != nil {
		msgWorkerPool.Stop()
	}
}

// GetMessageWorkerPoolStats returns real-time statistics from the worker pool.
func GetMessageWorkerPoolStats() *msgworker.PoolStats {
	if msgWorkerPool == nil {
		return nil
	}
	stats := msgWorkerPool.GetStats()
	return &stats
}

// --- Client & State Management ---

func UpdateGlobalClient(newCli *whatsmeow.Client, newDB *sqlstore.Container) {
	globalStateMu.Lock()
	cli = newCli
	db = newDB
	globalStateMu.Unlock()
	log.Infof("Global WhatsApp client updated successfully")
}

func GetClient() *whatsmeow.Client {
	globalStateMu.RLock()
	defer globalStateMu.RUnlock()
	return cli
}

func GetDB() *sqlstore.Container {
	globalStateMu.RLock()
	defer globalStateMu.RUnlock()
	return db
}

func GetConnectionStatus() (bool, bool, string) {
	client := GetClient()
	if client == nil {
		return false, false, ""
	}
	deviceID := ""
	if client.Store != nil && client.Store.ID != nil {
		deviceID = client.Store.ID.String()
	}
	return client.IsConnected(), client.IsLoggedIn(), deviceID
}

// GetOwnNumber returns the bare phone number of the connected account, or ""
// before the first successful connect.
func GetOwnNumber() string {
	ownNumberMu.RLock()
	defer ownNumberMu.RUnlock()
	return ownNumber
}

// refreshOwnNumber re-resolves the own-account number from the stored device
// JID. The ME_NUMBER override wins when set, covering sessions whose device
// JID carries a lid instead of the phone number.
func refreshOwnNumber(client *whatsmeow.Client) {
	number := strings.TrimSpace(config.MeNumber)
	if number == "" && client != nil && client.Store != nil && client.Store.ID != nil {
		number = identity.CanonicalNumber(client.Store.ID.String())
	}
	if number == "" {
		return
	}

	ownNumberMu.Lock()
	changed := ownNumber != number
	ownNumber = number
	ownNumberMu.Unlock()

	if changed {
		logrus.Infof("[INIT] Own account number resolved: %s", number)
	}
}

// --- Cleanup & Helpers ---

func configureDeviceProps() {
	osName := fmt.Sprintf("%s %s", config.AppOs, config.AppVersion)
	store.DeviceProps.PlatformType = &config.AppPlatform
	store.DeviceProps.Os = &osName
}

func syncKeysDevice(ctx context.Context, db, keysDB *sqlstore.Container) {
	if keysDB == nil {
		return
	}
	dev, err := db.GetFirstDevice(ctx)
	if err != nil || dev == nil {
		return
	}

	devs, err := keysDB.GetAllDevices(ctx)
	if err != nil {
		return
	}
	found := false
	for _, d := range devs {
		if d.ID == dev.ID {
			found = true
		} else {
			keysDB.DeleteDevice(ctx, d)
		}
	}
	if !found {
		keysDB.PutDevice(ctx, dev)
	}
}

func CleanupDatabase() error {
	globalStateMu.RLock()
	currentDB, currentKeysDB := db, keysDB
	globalStateMu.RUnlock()

	if strings.HasPrefix(config.DBURI, "postgres:") {
		logrus.Info("[CLEANUP] Postgres: deleting all devices")
		if currentDB != nil {
			devices, _ := currentDB.GetAllDevices(context.Background())
			for _, d := range devices {
				if err := currentDB.DeleteDevice(context.Background(), d); err != nil {
					return err
				}
			}
		}
		if currentKeysDB != nil && currentKeysDB != currentDB {
			devices, _ := currentKeysDB.GetAllDevices(context.Background())
			for _, d := range devices {
				if err := currentKeysDB.DeleteDevice(context.Background(), d); err != nil {
					return err
				}
			}
		}
		return nil
	}

	logrus.Info("[CLEANUP] SQLite: closing and removing files")
	if currentDB != nil {
		currentDB.Close()
	}
	if currentKeysDB != nil && currentKeysDB != currentDB {
		currentKeysDB.Close()
		removeFileIfExists(config.DBKeysURI)
	}
	removeFileIfExists(config.DBURI)
	return nil
}

func removeFileIfExists(uri string) {
	uri = strings.TrimPrefix(uri, "file:")
	path := strings.Split(uri, "?")[0]
	if path == "" || strings.HasPrefix(path, ":memory:") {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logrus.Errorf("[CLEANUP] Failed to remove %s: %v", path, err)
	}
}

func CleanupTemporaryFiles() error {
	removeGlob := func(pattern string, desc string) {
		files, _ := filepath.Glob(pattern)
		for _, f := range files {
			if strings.Contains(f, ".gitignore") {
				continue
			}
			os.Remove(f)
		}
		logrus.Infof("[CLEANUP] %s cleaned up", desc)
	}

	removeGlob(fmt.Sprintf("./%s/scan-*", config.PathQrCode), "QR images")
	removeGlob(fmt.Sprintf("./%s/*", config.PathSendItems), "Send items")
	return nil
}

func PerformCleanupAndUpdateGlobals(ctx context.Context, logPrefix string, repo storage.IMessageRepository) (*sqlstore.Container, *whatsmeow.Client, error) {
	logrus.Infof("[%s] Starting cleanup...", logPrefix)
	if c := GetClient(); c != nil {
		c.Disconnect()
	}
	if err := CleanupDatabase(); err != nil {
		return nil, nil, err
	}
	CleanupTemporaryFiles()

	newDB := InitWaDB(ctx, config.DBURI)
	var newKeysDB *sqlstore.Container
	if config.DBKeysURI != "" {
		newKeysDB = InitWaDB(ctx, config.DBKeysURI)
	}
	newCli := InitWaCLI(ctx, newDB, newKeysDB, repo)
	UpdateGlobalClient(newCli, newDB)

	logrus.Infof("[%s] Cleanup finished, ready for login.", logPrefix)
	return newDB, newCli, nil
}

func handleRemoteLogout(ctx context.Context, repo storage.IMessageRepository) {
	logrus.Info("[REMOTE_LOGOUT] User logged out, cleaning up...")
	PerformCleanupAndUpdateGlobals(ctx, "REMOTE_LOGOUT", repo)
}

// --- Event Handlers ---

func handler(ctx context.Context, rawEvt any, repo storage.IMessageRepository) {
	switch evt := rawEvt.(type) {
	case *events.QR:
		code := ""
		if len(evt.Codes) > 0 {
			code = evt.Codes[0]
		}
		go forwardConnectionEvent(ctx, gateway.EventQRGenerated, code, "")
	case *events.AppStateSyncComplete:
		if client := GetClient(); client != nil && len(client.Store.PushName) > 0 && evt.Name == appstate.WAPatchCriticalBlock {
			client.SendPresence(context.Background(), types.PresenceAvailable)
		}
	case *events.PairSuccess:
		websocket.Broadcast <- websocket.BroadcastMessage{Code: "LOGIN_SUCCESS", Message: fmt.Sprintf("Successfully pair with %s", evt.ID.String())}
		globalStateMu.RLock()
		gDB, gKDB := db, keysDB
		globalStateMu.RUnlock()
		syncKeysDevice(ctx, gDB, gKDB)
	case *events.Connected, *events.PushNameSetting:
		if client := GetClient(); client != nil {
			refreshOwnNumber(client)
			if len(client.Store.PushName) > 0 {
				client.SendPresence(context.Background(), types.PresenceAvailable)
			}
		}
		if _, isConnected := rawEvt.(*events.Connected); isConnected {
			go forwardConnectionEvent(ctx, gateway.EventConnected, "", "")
		}
	case *events.Disconnected:
		go forwardConnectionEvent(ctx, gateway.EventDisconnected, "", "connection_lost")
	case *events.LoggedOut:
		handleRemoteLogout(ctx, repo)
		websocket.Broadcast <- websocket.BroadcastMessage{Code: "LOGOUT_COMPLETE", Message: "Remote logout cleanup completed"}
		go forwardConnectionEvent(ctx, gateway.EventDisconnected, "", "logged_out")
	case *events.StreamReplaced:
		os.Exit(0)
	case *events.Message:
		handleMessage(ctx, evt, repo)
	}
}

func handleMessage(ctx context.Context, evt *events.Message, repo storage.IMessageRepository) {
	log.Infof("Msg %s from %s: type=%s", evt.Info.ID, evt.Info.SourceString(), evt.Info.Type)

	if config.WhatsappAutoMarkRead && !evt.Info.IsFromMe {
		if client := GetClient(); client != nil {
			client.MarkRead(context.Background(), []types.MessageID{evt.Info.ID}, time.Now(), evt.Info.Chat, evt.Info.Sender)
		}
	}

	if msgWorkerPool == nil {
		processMessage(ctx, evt, repo)
		return
	}

	msgWorkerPool.Dispatch(msgworker.MessageJob{
		ChatJID: evt.Info.Chat.String(),
		Handler: func(workerCtx context.Context) error {
			processMessage(workerCtx, evt, repo)
			return nil
		},
	})
}

// processMessage runs the full inbound pipeline for one event: normalize,
// fan out to webhooks, then persist when the message passes the gate.
func processMessage(ctx context.Context, evt *events.Message, repo storage.IMessageRepository) {
	normalized := normalizeMessage(ctx, GetClient(), evt)

	if err := forwardToWebhooks(ctx, gateway.EventMessage, normalized); err != nil {
		logrus.WithError(err).Error("[WEBHOOK] Message forward failed")
	}

	if repo == nil {
		return
	}
	row, ok := messagestore.BuildStorable(normalized, GetOwnNumber())
	if !ok {
		return
	}
	if err := repo.Insert(ctx, row); err != nil {
		logrus.WithError(err).Errorf("[MESSAGE_STORE] Failed to store message %s", normalized.MessageID)
	}
}

func forwardConnectionEvent(ctx context.Context, event, qrCode, reason string) {
	payload := &gateway.ConnectionEvent{
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		QRCode:    qrCode,
		Reason:    reason,
	}
	if err := forwardToWebhooks(ctx, event, payload); err != nil {
		logrus.WithError(err).Errorf("[WEBHOOK] %s forward failed", event)
	}
}
