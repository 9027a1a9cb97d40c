// Package events publishes resource lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"goout/internal/config"
)

// Type names a lifecycle transition.
type Type string

const (
	Created Type = "created"
	Deleted Type = "deleted"
)

// Event is the JSON payload published for each transition.
type Event struct {
	Type       Type      `json:"type"`
	Kind       string    `json:"kind"`
	ID         string    `json:"id"`
	OwnerID    string    `json:"userId"`
	ImageCount int       `json:"imageCount"`
	At         time.Time `json:"at"`
}

// Publisher delivers events. Delivery is fire and forget.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Subject is <prefix>.<kind>.<type>.
func Subject(prefix, kind string, t Type) string {
	return fmt.Sprintf("%s.%s.%s", prefix, kind, t)
}

type noopPublisher struct{}

// Noop discards every event.
func Noop() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, Event) error { return nil }
func (noopPublisher) Close() error                         { return nil }

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

type natsPublisher struct {
	nc     conn
	prefix string
}

// NewNATS connects to cfg.URL. An empty URL yields the no-op publisher.
func NewNATS(cfg config.NATSConfig) (Publisher, error) {
	if cfg.URL == "" {
		return Noop(), nil
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name("goout-api"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return newNATSPublisher(nc, cfg.SubjectPrefix), nil
}

func newNATSPublisher(nc conn, prefix string) *natsPublisher {
	if prefix == "" {
		prefix = "goout"
	}
	return &natsPublisher{nc: nc, prefix: prefix}
}

// Publish checks ctx before publishing; core NATS publish itself does not block.
func (p *natsPublisher) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.nc.Publish(Subject(p.prefix, ev.Kind, ev.Type), data)
}

func (p *natsPublisher) Close() error {
	return p.nc.Drain()
}
