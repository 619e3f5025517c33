// Package events publishes catalog audit events to NATS JetStream.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"catalog-service/internal/models"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
)

const (
	streamName = "CATALOG_EVENTS"

	EventProductCreated  = "product.created"
	EventProductUpdated  = "product.updated"
	EventProductDeleted  = "product.deleted"
	EventProductIngested = "product.ingested"
)

// ProductEvent is the audit payload for single-record changes.
type ProductEvent struct {
	EventType   string    `json:"eventType"`
	ProductID   string    `json:"productId"`
	ProductCode string    `json:"productCode,omitempty"`
	Name        string    `json:"name,omitempty"`
	Price       float64   `json:"price,omitempty"`
	SourceEmail string    `json:"sourceEmail,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// BatchIngestedEvent is the audit payload for one ingestion batch.
type BatchIngestedEvent struct {
	EventType          string    `json:"eventType"`
	SourceEmail        string    `json:"sourceEmail"`
	TotalReceived      int       `json:"totalReceived"`
	TotalProcessed     int       `json:"totalProcessed"`
	DuplicatesFiltered int       `json:"duplicatesFiltered"`
	Timestamp          time.Time `json:"timestamp"`
}

// Publisher emits catalog events. Publishing is asynchronous and never fails
// the request that triggered it.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *logrus.Entry
}

// NewPublisher connects to NATS and ensures the catalog stream exists.
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}

	nc, err := nats.Connect(natsURL,
		nats.Name("catalog-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"product.>"},
	})
	if err != nil && !errors.Is(err, jetstream.ErrStreamNameAlreadyInUse) {
		logger.WithError(err).Warn("Failed to ensure catalog stream (may already exist)")
	}

	return &Publisher{
		nc:     nc,
		js:     js,
		logger: logger.WithField("component", "catalog-events"),
	}, nil
}

// Close drains the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// PublishProductCreated publishes a product.created event
func (p *Publisher) PublishProductCreated(ctx context.Context, product *models.Product) {
	p.publish(EventProductCreated, ProductEvent{
		EventType:   EventProductCreated,
		ProductID:   product.ID.String(),
		ProductCode: product.ProductCode,
		Name:        product.Name,
		Price:       product.Price,
		SourceEmail: product.SourceEmail,
		Timestamp:   time.Now().UTC(),
	})
}

// PublishProductUpdated publishes a product.updated event
func (p *Publisher) PublishProductUpdated(ctx context.Context, product *models.Product) {
	p.publish(EventProductUpdated, ProductEvent{
		EventType:   EventProductUpdated,
		ProductID:   product.ID.String(),
		ProductCode: product.ProductCode,
		Name:        product.Name,
		Price:       product.Price,
		Timestamp:   time.Now().UTC(),
	})
}

// PublishProductDeleted publishes a product.deleted event
func (p *Publisher) PublishProductDeleted(ctx context.Context, productID uuid.UUID) {
	p.publish(EventProductDeleted, ProductEvent{
		EventType: EventProductDeleted,
		ProductID: productID.String(),
		Timestamp: time.Now().UTC(),
	})
}

// PublishBatchIngested publishes a product.ingested event with batch counts
func (p *Publisher) PublishBatchIngested(ctx context.Context, sourceEmail string, report *models.IngestionReport) {
	p.publish(EventProductIngested, BatchIngestedEvent{
		EventType:          EventProductIngested,
		SourceEmail:        sourceEmail,
		TotalReceived:      report.TotalReceived,
		TotalProcessed:     report.TotalProcessed,
		DuplicatesFiltered: report.DuplicatesFiltered,
		Timestamp:          time.Now().UTC(),
	})
}

// publish serializes and sends the event off the request path.
func (p *Publisher) publish(subject string, event interface{}) {
	go func() {
		data, err := json.Marshal(event)
		if err != nil {
			p.logger.WithError(err).Error("Failed to marshal event")
			return
		}

		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := p.js.Publish(pubCtx, subject, data); err != nil {
			p.logger.WithFields(logrus.Fields{
				"subject": subject,
			}).WithError(err).Error("Failed to publish catalog event")
		}
	}()
}
