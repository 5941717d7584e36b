// Package services provides internal service implementations for the cvetrend backend.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vulnwatch/cvetrend-backend/database"
	events "github.com/vulnwatch/cvetrend-backend/events/modules/cves"
	"github.com/vulnwatch/cvetrend-backend/internal/nvd"
	"github.com/vulnwatch/cvetrend-backend/model"
	"github.com/vulnwatch/cvetrend-backend/util"
)

// FetchService orchestrates one bulk-fetch session end to end: pull from the
// NVD client, enrich, upsert into storage, log the session, and optionally
// publish an event. The single embedded client means every session triggered
// through this service shares one rate limiter.
type FetchService struct {
	client   *nvd.Client
	db       database.DBConnection
	producer *events.FetchProducer // nil when Kafka is not configured
	logger   *zap.Logger
}

// NewFetchService wires the service. producer may be nil.
func NewFetchService(client *nvd.Client, db database.DBConnection, producer *events.FetchProducer, logger *zap.Logger) *FetchService {
	return &FetchService{
		client:   client,
		db:       db,
		producer: producer,
		logger:   logger,
	}
}

// queryFromRequest maps the API request onto the client query. Days is a
// convenience alternative to an explicit date range.
func queryFromRequest(req model.FetchRequest) nvd.Query {
	q := nvd.Query{
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		CVEID:          req.CVEID,
		Keyword:        req.Keyword,
		Severity:       req.Severity,
		ResultsPerPage: req.PageSize,
		MaxResults:     req.MaxResults,
	}
	if req.Days > 0 && q.StartDate == "" {
		end := time.Now()
		q.StartDate = end.AddDate(0, 0, -req.Days).Format("2006-01-02")
		q.EndDate = end.Format("2006-01-02")
	}
	return q
}

// Fetch runs one session and persists whatever it yielded. On a partial
// failure the accumulated records are still stored, the session log carries
// the error, and the error is returned so the caller can narrow the window
// and retry.
func (s *FetchService) Fetch(ctx context.Context, req model.FetchRequest) (*model.FetchLog, error) {
	sessionID := uuid.New().String()
	started := time.Now().UTC()
	query := queryFromRequest(req)

	log := &model.FetchLog{
		SessionID:  sessionID,
		StartDate:  query.StartDate,
		EndDate:    query.EndDate,
		Keyword:    query.Keyword,
		CVEID:      query.CVEID,
		Severity:   query.Severity,
		MaxResults: query.MaxResults,
		StartedAt:  started,
		ObjType:    "FetchLog",
	}

	query.Progress = func(fetched, target int) {
		s.logger.Info("fetch progress",
			zap.String("session_id", sessionID),
			zap.Int("fetched", fetched),
			zap.Int("target", target))
	}

	result, fetchErr := s.client.FetchCVEs(ctx, query)
	log.State = string(result.State)
	log.TotalAvailable = result.TotalAvailable
	log.Target = result.Target
	log.Fetched = len(result.Records)
	if fetchErr != nil {
		log.Error = fetchErr.Error()
	}

	// Partial results are never discarded: store whatever arrived before
	// recording the session.
	upserted, storeErr := s.store(ctx, result.Records)
	log.Upserted = upserted
	log.FinishedAt = time.Now().UTC()

	if err := database.SaveFetchLog(ctx, s.db, *log); err != nil {
		s.logger.Warn("failed to record fetch session", zap.String("session_id", sessionID), zap.Error(err))
	}
	s.publish(ctx, *log)

	if fetchErr != nil {
		return log, fmt.Errorf("fetch session %s: %w", sessionID, fetchErr)
	}
	if storeErr != nil {
		return log, fmt.Errorf("fetch session %s: store: %w", sessionID, storeErr)
	}
	return log, nil
}

// Export pulls the requested window (served from cache when recent) and
// writes the bulk export document to req.Path.
func (s *FetchService) Export(ctx context.Context, req model.ExportRequest) (*model.FetchLog, error) {
	query := queryFromRequest(req.FetchRequest)

	result, err := s.client.FetchCVEs(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := nvd.Export(result.Records, req.Path); err != nil {
		return nil, err
	}

	s.logger.Info("exported CVE collection", zap.String("path", req.Path), zap.Int("count", len(result.Records)))
	return &model.FetchLog{
		Fetched:        len(result.Records),
		TotalAvailable: result.TotalAvailable,
		State:          string(result.State),
	}, nil
}

// Import reloads a previously exported file and upserts its records, letting
// a prior fetch be reprocessed without spending API quota.
func (s *FetchService) Import(ctx context.Context, path string) (int, error) {
	records, err := nvd.Import(path)
	if err != nil {
		return 0, err
	}

	upserted, err := s.store(ctx, records)
	if err != nil {
		return upserted, err
	}

	s.logger.Info("imported CVE collection", zap.String("path", path), zap.Int("upserted", upserted))
	return upserted, nil
}

// store enriches and upserts records, skipping the ones without an id (they
// cannot be keyed for idempotent writes).
func (s *FetchService) store(ctx context.Context, records []nvd.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	docs := make([]model.StoredCVE, 0, len(records))
	for _, rec := range records {
		doc := util.BuildStoredCVE(rec, now)
		if doc.CveID == "" {
			s.logger.Warn("skipping record without CVE id")
			continue
		}
		docs = append(docs, doc)
	}

	return database.UpsertCVEs(ctx, s.db, docs)
}

func (s *FetchService) publish(ctx context.Context, log model.FetchLog) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishFetchCompleted(ctx, log); err != nil {
		s.logger.Warn("failed to publish fetch event", zap.String("session_id", log.SessionID), zap.Error(err))
	}
}
