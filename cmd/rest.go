package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	globalConfig "github.com/knd27/kn-whatsapp-gateway/config"
	"github.com/knd27/kn-whatsapp-gateway/infrastructure/messagestore"
	"github.com/knd27/kn-whatsapp-gateway/infrastructure/whatsapp"
	"github.com/knd27/kn-whatsapp-gateway/ui/rest"
	"github.com/knd27/kn-whatsapp-gateway/ui/rest/middleware"
	"github.com/knd27/kn-whatsapp-gateway/ui/websocket"
	"github.com/knd27/kn-whatsapp-gateway/usecase"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Send whatsapp API over http",
	Long:  `Serve the gateway REST API and keep the WhatsApp session running`,
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	ctx := context.Background()

	// Session store plus optional split keys store
	whatsappDB := whatsapp.InitWaDB(ctx, globalConfig.DBURI)
	var keysDB = whatsappDB
	if globalConfig.DBKeysURI != "" {
		keysDB = whatsapp.InitWaDB(ctx, globalConfig.DBKeysURI)
	}

	// Message history store
	messageRepo, err := messagestore.NewRepository(globalConfig.MessageStoreURI, globalConfig.MessageStoreEnableWAL)
	if err != nil {
		logrus.Fatalf("[INIT] Failed to open message store: %v", err)
	}

	whatsappCli = whatsapp.InitWaCLI(ctx, whatsappDB, keysDB, messageRepo)

	// Usecases
	appUsecase := usecase.NewAppService(messageRepo)
	sendUsecase := usecase.NewSendService(messageRepo)
	messageUsecase := usecase.NewMessageService(messageRepo)

	app := fiber.New(fiber.Config{
		EnableTrustedProxyCheck: true,
		BodyLimit:               int(globalConfig.WhatsappSettingMaxVideoSize),
		Network:                 "tcp",
		AppName:                 "WhatsApp Gateway",
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if globalConfig.AppDebug {
		app.Use(logger.New())
	}

	if len(globalConfig.AppBasicAuthCredential) > 0 {
		account := make(map[string]string)
		for _, basicAuth := range globalConfig.AppBasicAuthCredential {
			ba := strings.Split(basicAuth, ":")
			if len(ba) != 2 {
				logrus.Fatalln("Basic auth is not valid, please this following format <user>:<secret>")
			}
			account[ba[0]] = ba[1]
		}

		app.Use(basicauth.New(basicauth.Config{
			Users: account,
		}))
	}

	app.Static(globalConfig.AppBasePath+"/statics", "./statics")
	app.Static(globalConfig.AppBasePath+"/statics/media", globalConfig.PathMedia)

	apiGroup := app.Group(globalConfig.AppBasePath)

	rest.InitRestApp(apiGroup, appUsecase)
	rest.InitRestSend(apiGroup, sendUsecase)
	rest.InitRestMessage(apiGroup, messageUsecase)

	websocket.RegisterRoutes(apiGroup, appUsecase)
	go websocket.RunHub()

	startAutoReconnectCheckerIfClientAvailable()

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}

		whatsapp.StopMessageWorkerPool()
		if err := messageRepo.Close(); err != nil {
			logrus.Errorf("[REST] Error closing message store: %v", err)
		}
	}()

	if err := app.Listen(":" + globalConfig.AppPort); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}
