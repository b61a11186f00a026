package main

import (
	"context"
	"flag"
	"log/syslog"
	"os"
	"os/signal"
	"time"

	"github.com/campolab/campo"
	"github.com/campolab/campo/persistent"
	"github.com/campolab/campo/pgdb"
	"github.com/campolab/campo/social"
	"github.com/campolab/campo/transport/rest"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/sirupsen/logrus"
	logrusys "github.com/sirupsen/logrus/hooks/syslog"
	"github.com/tidwall/buntdb"
	"github.com/uptrace/bun"
	_ "github.com/uptrace/bun/driver/pgdriver"
)

const permissionCacheTtl = time.Minute

func listenAndServe(
	ctx context.Context,
	bdb *buntdb.DB,
	db *bun.DB,
	socialEngineUrl string,
	debug bool,
) func() error {
	profileStore := &persistent.ProfileStore{DB: db}
	activityStore := &persistent.ActivityStore{DB: db}

	engine := &social.RestClient{BaseUrl: socialEngineUrl}
	socialClient := &social.CachingClient{Inner: engine, Bunt: bdb, Ttl: permissionCacheTtl}

	sharedResolver := &campo.SharedResolver{Social: socialClient, Store: profileStore}
	manager := &campo.ProfileManager{
		Store:    profileStore,
		Social:   socialClient,
		Activity: activityStore,
		Shared:   sharedResolver,
	}
	permissions := &campo.Permissions{Social: socialClient}

	basicProfileController := rest.BasicProfileController{Manager: manager, Store: profileStore}
	extProfileController := rest.ExtendedProfileController{
		Manager:     manager,
		Store:       profileStore,
		Permissions: permissions,
		Shared:      sharedResolver,
	}
	activityController := rest.ActivityController{Store: activityStore}

	server := fiber.New()
	server.Use(rest.LogHandler())

	api := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: rest.ErrorHandler,
	})

	if origins := os.Getenv("CORS_ALLOW_ORIGINS"); origins != "" {
		api.Use(cors.New(cors.Config{AllowOrigins: origins}))
	}

	requestAuthorizer := rest.RequestAuthorizer(engine)
	api.Get("/status", monitor.New())
	basicProfileController.InstallTo(requestAuthorizer, api)
	extProfileController.InstallTo(requestAuthorizer, api)
	activityController.InstallTo(requestAuthorizer, api)

	server.Mount("/api/", api)
	server.Use(rest.NotFoundHandler)

	var addr string
	if debug {
		addr = "127.0.0.1:2137"
	} else {
		addr = ":2137"
	}
	go server.Listen(addr)

	return server.Shutdown
}

func setupLogger(verbose bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: time.Stamp,
		FullTimestamp:   true,
	})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	syslogHook, err := logrusys.NewSyslogHook("", "", syslog.LOG_USER, "campo_backend")
	if err != nil {
		logrus.WithError(err).Warningln("Could not create syslog hook.")
		return
	}
	logrus.AddHook(syslogHook)
}

func requireEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		logrus.Fatalln(key + " not set!")
	}
	return value
}

func awaitInterruption() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
}

func main() {
	flag.Parse()
	debug := os.Getenv("DEBUG") == "true"
	setupLogger(debug)
	logrus.Infoln("Starting backend.")

	pgDsn := requireEnv("CAMPO_PG_DSN")
	socialEngineUrl := requireEnv("SOCIAL_ENGINE_URL")

	bdb, err := buntdb.Open("kv.db")
	if err != nil {
		logrus.WithError(err).Fatalln("Could not open buntdb.")
	}
	defer bdb.Close()

	ctx := context.Background()

	logrus.Infoln("Opening database.")
	db := pgdb.Open(ctx, pgDsn)
	defer db.Close()

	if err = persistent.CreateSchema(ctx, db); err != nil {
		logrus.WithError(err).Fatalln("Could not create db schema.")
	}

	logrus.Infoln("Starting listening... To shut down use ^C")
	shutdown := listenAndServe(ctx, bdb, db, socialEngineUrl, debug)

	awaitInterruption()

	logrus.Infoln("Shutting down...")
	err = shutdown()
	if err != nil {
		logrus.WithError(err).Warningln("Fiber shutdown failed.")
	}
	logrus.Exit(0)
}
