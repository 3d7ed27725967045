package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/layer-3/gmstreak/ports"
)

// CheckInEvent represents a committed check-in
type CheckInEvent struct {
	Address string `json:"address"`
	Date    string `json:"date"`
	Streak  int    `json:"streak"`
	Total   int    `json:"total"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     "gmstreak.checkin",
	}
}

// PublishCheckIn publishes a check-in event
func (p *WatermillPublisher) PublishCheckIn(ctx context.Context, address, date string, streak, total int) error {
	event := CheckInEvent{
		Address: address,
		Date:    date,
		Streak:  streak,
		Total:   total,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
