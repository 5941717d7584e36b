// Package cves handles Kafka event production for CVE fetch sessions.
package cves

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/vulnwatch/cvetrend-backend/model"
)

// FetchProducer handles sending fetch-completed events to Kafka
type FetchProducer struct {
	Writer *kafka.Writer
}

// NewFetchProducer initializes a new Kafka writer for fetch events
func NewFetchProducer(brokers []string, topic string) *FetchProducer {
	return &FetchProducer{
		Writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// PublishFetchCompleted sends the event to the Kafka topic
func (p *FetchProducer) PublishFetchCompleted(ctx context.Context, log model.FetchLog) error {

	// Construct the Event Contract
	event := FetchCompletedEvent{
		EventType:     "cve.fetch.completed",
		EventID:       uuid.New().String(),
		EventTime:     time.Now().UTC(),
		SchemaVersion: "v1",
		SessionID:     log.SessionID,
		StartDate:     log.StartDate,
		EndDate:       log.EndDate,
		Keyword:       log.Keyword,
		State:         log.State,
		Fetched:       log.Fetched,
		Upserted:      log.Upserted,
	}

	// Marshal to JSON
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Write to Kafka
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(log.SessionID),
		Value: payload,
	})
}

// Close cleans up the Kafka writer
func (p *FetchProducer) Close() error {
	return p.Writer.Close()
}
