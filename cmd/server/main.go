package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"berrypoker/internal/config"
	"berrypoker/internal/mux"
	"berrypoker/internal/rng"
	"berrypoker/pkg/room"
	"berrypoker/pkg/store"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", "", "the listen address, overrides config")

func main() {
	flag.Parse()
	setupLogger()

	if err := store.LoadInstance(config.Instance().DatabasePath); err != nil {
		logrus.WithError(err).Fatal("could not open database")
	}

	registry := room.NewRegistry(rng.Crypto{}, logrus.StandardLogger(), config.Instance().PersistInterval, config.Instance().RoomIdleTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	recovered, err := registry.Recover(ctx, config.Instance().RoomFreshnessWindow)
	cancel()
	if err != nil {
		logrus.WithError(err).Fatal("could not recover rooms")
	}
	logrus.WithField("recovered", recovered).Info("recovered rooms from storage")

	registry.StartShift()

	c := cors.New(cors.Options{
		AllowedOrigins: config.Instance().CORSOrigins,
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	})

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = fmt.Sprintf("%s:%d", config.Instance().BindAddress, config.Instance().Port)
	}

	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, registry))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logrus.WithField("addr", srv.Addr).Info("listening")
	logrus.Fatal(srv.ListenAndServe())
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
