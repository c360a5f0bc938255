package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-signin-gate/googleauth"
	"github.com/jrsteele09/go-signin-gate/internal/config"
	"github.com/jrsteele09/go-signin-gate/internal/database"
	"github.com/jrsteele09/go-signin-gate/internal/logger"
	"github.com/jrsteele09/go-signin-gate/server"
	"github.com/jrsteele09/go-signin-gate/server/authflowrepo"
	"github.com/jrsteele09/go-signin-gate/sessions"
	"github.com/jrsteele09/go-signin-gate/users"
	"github.com/rs/zerolog"
)

const purgeInterval = 15 * time.Minute

func main() {
	c := config.New()
	log := logger.New(c.GetLogLevel(), c.GetLogFormat(), os.Stdout)

	if err := run(c, log); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run(c config.Config, log zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())

	if c.GetGoogleClientID() == "" || c.GetGoogleClientSecret() == "" {
		log.Warn().Msg("GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET is not set, Google sign-in will fail")
	}

	models := append(users.Models(), sessions.Models()...)
	db, err := database.Open(c.GetDatabaseURL(), log, models...)
	if err != nil {
		return fmt.Errorf("database.Open: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	identity := googleauth.New(googleauth.Config{
		Issuer:       c.GetGoogleIssuer(),
		ClientID:     c.GetGoogleClientID(),
		ClientSecret: c.GetGoogleClientSecret(),
		RedirectURL:  c.GetBaseURL() + server.RouteAPICallbackGoogle,
	})

	repos := server.Repos{
		Users:    users.NewGormRepo(db),
		Sessions: sessions.NewGormRepo(db),
	}
	s, err := server.New(c, repos, identity, authflowrepo.NewInMemoryRepo(), log)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go purgeExpired(ctx, s, log)

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(httpServer, log) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server, log zerolog.Logger) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func purgeExpired(ctx context.Context, s *server.Server, log zerolog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.PurgeExpired(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to purge expired sessions")
			}
		}
	}
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
