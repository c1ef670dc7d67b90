// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/models"
)

// Recomputer is the slice of the scoring engine the worker needs.
type Recomputer interface {
	IncrementalUpdate(ctx context.Context, ownerID string) (models.RecomputeStats, error)
}

// Worker consumes TagsChanged events and runs incremental recomputes.
//
// Delivery is at-most-once: messages are acked even when the recompute
// fails, with the failure logged and counted. Losing a recompute is
// acceptable because FullRebuild is the authoritative self-healing pass;
// redelivery loops on a persistently failing owner are not.
//
// Worker implements suture.Service; Serve blocks until the context is
// cancelled or the subscription channel closes.
type Worker struct {
	subscriber message.Subscriber
	engine     Recomputer
	logger     zerolog.Logger
}

// NewWorker creates a recompute worker over the given subscriber.
func NewWorker(subscriber message.Subscriber, engine Recomputer, logger zerolog.Logger) *Worker {
	return &Worker{
		subscriber: subscriber,
		engine:     engine,
		logger:     logger.With().Str("component", "recompute-worker").Logger(),
	}
}

// String identifies the service in suture logs.
func (w *Worker) String() string {
	return "recompute-worker"
}

// Serve implements suture.Service.
func (w *Worker) Serve(ctx context.Context) error {
	messages, err := w.subscriber.Subscribe(ctx, TagsChangedTopic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", TagsChangedTopic, err)
	}

	w.logger.Info().Str("topic", TagsChangedTopic).Msg("Recompute worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("subscription to %s closed", TagsChangedTopic)
			}
			w.handle(ctx, msg)
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg *message.Message) {
	// Ack unconditionally; see the at-most-once note on Worker.
	defer msg.Ack()

	var event TagsChanged
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		metrics.WorkerRecomputes.WithLabelValues("error").Inc()
		w.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Malformed TagsChanged payload")
		return
	}

	stats, err := w.engine.IncrementalUpdate(ctx, event.OwnerID)
	if err != nil {
		metrics.WorkerRecomputes.WithLabelValues("error").Inc()
		w.logger.Error().Err(err).
			Str("owner_id", event.OwnerID).
			Str("event_id", event.EventID).
			Msg("Incremental recompute failed")
		return
	}

	metrics.WorkerRecomputes.WithLabelValues("ok").Inc()
	w.logger.Debug().
		Str("owner_id", event.OwnerID).
		Int("examined", stats.Examined).
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("pruned", stats.Pruned).
		Int("failed", stats.Failed).
		Msg("Incremental recompute complete")
}
