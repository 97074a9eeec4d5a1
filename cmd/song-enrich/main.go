// Command song-enrich runs the song metadata enrichment service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/palcopro/song-enrich/internal/catalog"
	"github.com/palcopro/song-enrich/internal/config"
	"github.com/palcopro/song-enrich/internal/enrich"
	"github.com/palcopro/song-enrich/internal/search"
	"github.com/palcopro/song-enrich/internal/sheet"
	"github.com/palcopro/song-enrich/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A local .env is a convenience, not a requirement.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	broker, err := catalog.NewBroker(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	if err != nil {
		return fmt.Errorf("creating credential broker: %w", err)
	}

	service := enrich.NewService(
		catalog.NewResolver(broker),
		search.NewClient(cfg.SearchAPIKey, cfg.SearchEngineID),
		sheet.NewScraper(),
		log,
		cfg.UpstreamTimeout,
	)

	server, err := web.NewServer(web.ServerConfig{
		Addr:     cfg.Addr,
		Enricher: service,
		Log:      log,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}
