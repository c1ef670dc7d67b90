// Affinity - Interest Graph & Match Scoring Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/affinity/internal/metrics"
)

// Publisher wraps a Watermill publisher with a circuit breaker. When the
// pipeline degrades, publishes fail fast instead of stacking up behind a
// stalled transport; FullRebuild closes any resulting score gap.
type Publisher struct {
	publisher      message.Publisher
	circuitBreaker *gobreaker.CircuitBreaker[interface{}]
}

// NewPublisher creates a breaker-protected publisher over any Watermill
// transport (the service wires the in-process gochannel Pub/Sub).
func NewPublisher(publisher message.Publisher) *Publisher {
	settings := gobreaker.Settings{
		Name:        "tags-changed-publisher",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
	}
	return &Publisher{
		publisher:      publisher,
		circuitBreaker: gobreaker.NewCircuitBreaker[interface{}](settings),
	}
}

// PublishTagsChanged emits a TagsChanged event for the given owner.
func (p *Publisher) PublishTagsChanged(event TagsChanged) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal tags changed event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_id", event.EventID)

	_, err = p.circuitBreaker.Execute(func() (interface{}, error) {
		return nil, p.publisher.Publish(TagsChangedTopic, msg)
	})
	if err != nil {
		metrics.TagsChangedDropped.Inc()
		return fmt.Errorf("publish tags changed for %s: %w", event.OwnerID, err)
	}

	metrics.TagsChangedPublished.Inc()
	return nil
}
