package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"github.com/m-ce-m1/html-bot/controllers"
	"github.com/m-ce-m1/html-bot/exporter"
	"github.com/m-ce-m1/html-bot/filestore"
	"github.com/m-ce-m1/html-bot/handlers"
	"github.com/m-ce-m1/html-bot/logger"
	"github.com/m-ce-m1/html-bot/quiz"
	"github.com/m-ce-m1/html-bot/routers"
	"github.com/m-ce-m1/html-bot/sessions"
	"github.com/m-ce-m1/html-bot/storage"
	"github.com/m-ce-m1/html-bot/util"
)

func main() {
	settings, err := util.LoadSettings()
	if err != nil {
		fmt.Println("couldn't load settings:", err.Error())
		os.Exit(1)
	}

	log, err := logger.New(settings.Env)
	if err != nil {
		fmt.Println("couldn't initialize logger:", err.Error())
		os.Exit(1)
	}
	defer log.Sync()

	db, err := util.OpenDB(settings.DBDriver, settings.DBDSN)
	if err != nil {
		log.Fatal("couldn't connect to the database", "driver", settings.DBDriver, "error", err)
	}
	defer db.Close()
	log.Info("connected to the database", "driver", settings.DBDriver)

	if err := util.CreateTablesIfNotExists(db, settings.DBDriver); err != nil {
		log.Fatal("couldn't create tables", "error", err)
	}

	users := storage.NewUserStore(db)
	questions := storage.NewQuestionStore(db)
	ledger := storage.NewAttemptLedger(db)
	materials := storage.NewMaterialStore(db)
	messages := storage.NewMessageStore(db)

	var sessionStore quiz.SessionStore = sessions.NewMemoryStore()
	if settings.RedisAddr != "" {
		redisStore, err := sessions.NewRedisStore(settings.RedisAddr, settings.SessionTTL)
		if err != nil {
			log.Fatal("couldn't connect to redis", "addr", settings.RedisAddr, "error", err)
		}
		defer redisStore.Close()
		sessionStore = redisStore
		log.Info("using redis session store", "addr", settings.RedisAddr)
	}

	quizService := quiz.NewService(questions, ledger, sessionStore, log, settings.TestLength)

	var files filestore.Store
	if settings.GCSBucket != "" {
		gcsStore, err := filestore.NewGCSStore(context.Background(), settings.GCSBucket)
		if err != nil {
			log.Fatal("couldn't open gcs bucket", "bucket", settings.GCSBucket, "error", err)
		}
		defer gcsStore.Close()
		files = gcsStore
		log.Info("using gcs file store", "bucket", settings.GCSBucket)
	} else {
		fsStore, err := filestore.NewFSStore(settings.MaterialsDir)
		if err != nil {
			log.Fatal("couldn't open materials dir", "dir", settings.MaterialsDir, "error", err)
		}
		files = fsStore
	}

	exports, err := exporter.New(settings.ExportsDir)
	if err != nil {
		log.Fatal("couldn't open exports dir", "dir", settings.ExportsDir, "error", err)
	}

	bot, err := handlers.New(handlers.Deps{
		Settings:  settings,
		Log:       log,
		Users:     users,
		Topics:    questions,
		Ledger:    ledger,
		Materials: materials,
		Messages:  messages,
		Quiz:      quizService,
		Files:     files,
		Exports:   exports,
	})
	if err != nil {
		log.Fatal("couldn't start the bot", "error", err)
	}

	controllers.Init(settings, log, questions, ledger, exports)
	app := fiber.New()
	routers.SetupRoutes(app, settings.JWTSecret)

	go func() {
		log.Info("http api listening", "addr", settings.HTTPAddr)
		if err := app.Listen(settings.HTTPAddr); err != nil {
			log.Error("http server stopped", "error", err)
		}
	}()
	go bot.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	bot.Stop()
	if err := app.Shutdown(); err != nil {
		log.Error("http shutdown failed", "error", err)
	}
}
