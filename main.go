// package main provides the entry point for the cvetrend-backend microservice:
// a rate-limited, cached NVD bulk-fetch pipeline with a REST/GraphQL query
// surface over the stored vulnerability corpus.
package main

import (
	"log"
	"strings"
	"time"

	"github.com/vulnwatch/cvetrend-backend/database"
	events "github.com/vulnwatch/cvetrend-backend/events/modules/cves"
	"github.com/vulnwatch/cvetrend-backend/internal/api"
	"github.com/vulnwatch/cvetrend-backend/internal/nvd"
	"github.com/vulnwatch/cvetrend-backend/internal/services"
	"github.com/vulnwatch/cvetrend-backend/util"
)

var db database.DBConnection

func main() {
	cfg := util.LoadConfig()
	logger := database.Logger()

	db = database.InitializeDatabase()

	client := nvd.NewClient(nvd.Config{
		APIKey:         cfg.NVD.APIKey,
		CacheDir:       cfg.NVD.CacheDir,
		CacheEnabled:   !cfg.NVD.CacheDisabled,
		CacheRetention: time.Duration(cfg.NVD.CacheRetentionDays) * 24 * time.Hour,
		RateLimit:      cfg.NVD.RateLimit,
	}, logger)

	// Kafka events are optional; without brokers the service still fetches
	// and serves, it just does not announce sessions.
	var producer *events.FetchProducer
	if cfg.Kafka.Brokers != "" {
		brokers := strings.Split(cfg.Kafka.Brokers, ",")
		producer = events.NewFetchProducer(brokers, cfg.Kafka.Topic)
		defer producer.Close()
		logger.Sugar().Infof("Kafka fetch events enabled on topic %s", cfg.Kafka.Topic)
	}

	svc := services.NewFetchService(client, db, producer, logger)

	app := api.NewFiberApp(db, svc)
	log.Printf("Starting cvetrend-backend on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		logger.Sugar().Fatalf("Server stopped: %v", err)
	}
}
