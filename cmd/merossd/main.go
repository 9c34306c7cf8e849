package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/viper"
	"github.com/wheelibin/merossd/internal/api"
	"github.com/wheelibin/merossd/internal/bridge"
	"github.com/wheelibin/merossd/internal/config"
	"github.com/wheelibin/merossd/internal/events"
	"github.com/wheelibin/merossd/internal/lights"
	"github.com/wheelibin/merossd/internal/meross"
	"github.com/wheelibin/merossd/internal/mqtt"
	"github.com/wheelibin/merossd/internal/repos"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           log.InfoLevel,
		ReportTimestamp: true,
		ReportCaller:    true,
	})
	logger.Info("merossd starting")

	// read the config file
	if err := config.InitialiseConfig(*configPath); err != nil {
		logger.Fatal(err)
	}
	cfg, err := config.ReadConfig(viper.GetViper())
	if err != nil {
		logger.Fatal(err)
	}

	level, err := config.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		logger.Fatal(err)
	}
	logger.SetLevel(level)
	if cfg.Log.File != "" {
		logger.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename: cfg.Log.File,
			MaxAge:   3,
		}))
	}

	db, err := sql.Open("sqlite3", cfg.Store.Path)
	if err != nil {
		logger.Fatal(err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	// create/wire up services
	deviceRepo, err := repos.NewDeviceRepo(logger, db)
	if err != nil {
		logger.Fatal(err)
	}
	publisher := events.NewPublisher(logger)
	defer publisher.Close()

	client := meross.NewClient(logger, meross.WithTimeout(cfg.HTTP.Timeout))
	lightService := lights.NewLightService(logger, client, cfg.HTTP.Timeout)
	b := bridge.NewBridge(logger, lightService, deviceRepo, publisher)

	if err := b.Register(cfg.Devices); err != nil {
		logger.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b.Initialise(ctx)

	mux := http.NewServeMux()
	mux.Handle("/events", publisher.Handler())
	mux.Handle("/status", api.NewStatusHandler(logger, deviceRepo))
	server := &http.Server{Addr: cfg.HTTP.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("serving device events and status", "addr", cfg.HTTP.Listen)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("event server stopped", "err", err)
		}
	}()

	if cfg.MQTT.Enabled {
		adapter, err := mqtt.NewAdapter(logger, b, mqtt.Config{
			Broker:          cfg.MQTT.Broker,
			Username:        cfg.MQTT.Username,
			Password:        cfg.MQTT.Password,
			TopicPrefix:     cfg.MQTT.TopicPrefix,
			DiscoveryPrefix: cfg.MQTT.DiscoveryPrefix,
		})
		if err != nil {
			logger.Fatal(err)
		}
		defer adapter.Stop()
	}

	<-ctx.Done()

	// cleanup before exit
	logger.Info("merossd is closing")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}
