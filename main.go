package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Strum355/log"
	"github.com/spf13/viper"

	"Harmony/channel"
	"Harmony/config"
	"Harmony/db_client"
	"Harmony/handlers"
	"Harmony/queue"
	"Harmony/redis_client"
)

var production *bool

func main() {
	// Sets Flag to Debug Mode
	production = flag.Bool("p", false, "enables production with json logging")
	flag.Parse()
	if *production {
		log.InitJSONLogger(&log.Config{Output: os.Stdout})
	} else {
		log.InitSimpleLogger(&log.Config{Output: os.Stdout})
	}

	// Sets up Configurations for Viper
	config.InitConfig()

	db_client.Init()
	redis_client.Init()

	registry := channel.NewRegistry()
	registry.TrackChanged = func(userID string, trackID queue.TrackID, setListName string) {
		go func() {
			redis_client.SetNowPlaying(userID, string(trackID))
			db_client.RecordPlay(userID, string(trackID), setListName)
		}()
	}
	registry.ChannelClosed = func(userID string) {
		go redis_client.ClearNowPlaying(userID)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handlers.ServeWS(registry))

	srv := &http.Server{
		Addr:    viper.GetString("server.address"),
		Handler: mux,
	}

	go func() {
		log.WithFields(log.Fields{"address": srv.Addr}).Info("Server is initialising")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("server stopped")
		}
	}()

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc
	gracefulShutdown(srv)
}

// gracefulShutdown drains open connections before exiting
func gracefulShutdown(srv *http.Server) {
	log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown did not complete cleanly")
	}

	log.Info("Cleanly exiting")
}
