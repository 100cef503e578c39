// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/setline/setline/internal/auth"
	"github.com/setline/setline/internal/cache"
	"github.com/setline/setline/internal/database"
	"github.com/setline/setline/internal/handlers"
	"github.com/setline/setline/internal/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	auth.Init()
	database.ConnectDB()

	logger := logrus.New()
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := cache.ConnectRedis(); err != nil {
		// Scoring works without the audit trail; log and continue.
		logger.WithError(err).Warn("redis unavailable, score action history disabled")
	}

	srv := handlers.NewServer(logger)
	logged := middleware.LogMiddleware(logger)

	mux := http.NewServeMux()

	// official accounts
	mux.HandleFunc("/user/create", handlers.CreateUserHandler)
	mux.HandleFunc("/user/login", handlers.LoginHandler)

	// registrations and matches (admin)
	mux.Handle("/registration/create", logged(handlers.CreateRegistrationHandler(srv)))
	mux.Handle("/registration/delete", logged(handlers.DeleteRegistrationHandler(srv)))
	mux.Handle("/match/create", logged(handlers.CreateMatchHandler(srv)))
	mux.Handle("/match/delete", logged(handlers.DeleteMatchHandler(srv)))
	mux.Handle("/match/state/", logged(handlers.MatchStateHandler(srv)))

	// live scoring websocket
	mux.Handle("/match/ws/", logged(handlers.MatchWSHandler(logger, srv)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
