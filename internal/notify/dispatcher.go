package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/model"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/repository"
)

// DispatcherConfig tunes the outbox delivery loop.
type DispatcherConfig struct {
	// PollInterval between outbox scans when the last scan was clean.
	PollInterval time.Duration
	// MaxRetries before an event is marked failed for good.
	MaxRetries int
	// BatchSize caps events fetched per scan.
	BatchSize int
	// InitialBackoff seeds the exponential backoff applied after a
	// scan or delivery error.
	InitialBackoff time.Duration
	// MaxBackoff caps the backoff interval.
	MaxBackoff time.Duration
}

// DefaultDispatcherConfig returns the default tuning.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		PollInterval:   2 * time.Second,
		MaxRetries:     5,
		BatchSize:      100,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
	}
}

// Dispatcher drains the event outbox to connected clients. It is a
// cancellable background task; stopping it never loses events because
// undelivered rows stay pending.
type Dispatcher struct {
	events      repository.EventRepository
	broadcaster Broadcaster
	cfg         DispatcherConfig
	logger      *logrus.Logger
}

// NewDispatcher creates an outbox dispatcher.
func NewDispatcher(events repository.EventRepository, broadcaster Broadcaster, cfg DispatcherConfig, logger *logrus.Logger) *Dispatcher {
	if cfg.PollInterval <= 0 {
		cfg = DefaultDispatcherConfig()
	}
	return &Dispatcher{
		events:      events,
		broadcaster: broadcaster,
		cfg:         cfg,
		logger:      logger,
	}
}

// Run delivers pending events until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = d.cfg.InitialBackoff
	bo.MaxInterval = d.cfg.MaxBackoff
	bo.MaxElapsedTime = 0
	bo.Reset()

	wait := d.cfg.PollInterval
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		if err := d.DispatchPending(); err != nil {
			d.logger.WithError(err).Warn("outbox dispatch failed")
			wait = bo.NextBackOff()
			continue
		}
		bo.Reset()
		wait = d.cfg.PollInterval
	}
}

// DispatchPending delivers one batch of pending events.
func (d *Dispatcher) DispatchPending() error {
	pending, err := d.events.FindPending(d.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to scan outbox: %w", err)
	}

	for _, ev := range pending {
		if err := d.deliver(ev); err != nil {
			// the event stays pending until its retry budget is spent
			if ev.RetryCount+1 >= d.cfg.MaxRetries {
				if markErr := d.events.MarkFailed(ev.ID); markErr != nil {
					return fmt.Errorf("failed to mark event %s: %w", ev.ID, markErr)
				}
				d.logger.WithError(err).WithField("event_id", ev.ID).Warn("event delivery abandoned")
				continue
			}
			if markErr := d.events.BumpRetry(ev.ID); markErr != nil {
				return fmt.Errorf("failed to count retry for event %s: %w", ev.ID, markErr)
			}
			d.logger.WithError(err).WithField("event_id", ev.ID).Warn("event delivery failed, will retry")
			continue
		}
		if err := d.events.MarkDelivered(ev.ID); err != nil {
			return fmt.Errorf("failed to mark event %s delivered: %w", ev.ID, err)
		}
	}
	return nil
}

// deliver encodes and broadcasts one outbox row.
func (d *Dispatcher) deliver(ev *model.EventModel) error {
	var payload interface{}
	if len(ev.Data) > 0 {
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			return fmt.Errorf("corrupt event payload: %w", err)
		}
	}

	msg := Message{
		Type:      ev.Type,
		RequestID: ev.RequestID,
		Phase:     ev.Phase,
		Payload:   payload,
		Time:      ev.CreatedAt,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if !d.broadcaster.Send(data) {
		return fmt.Errorf("broadcast queue full")
	}
	return nil
}
