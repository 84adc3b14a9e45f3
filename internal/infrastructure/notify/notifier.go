// Package notify fans committed lot events out to external observers.
// The event rows written inside each mutation's transaction are the durable
// record; everything here is post-commit delivery.
package notify

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/thiagodalladea/bebida-segura/internal/errs"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
)

// Envelope is the wire form of a published event. Payload stays raw JSON so
// observers can decode the per-type body without a second schema.
type Envelope struct {
	EventID    uint64          `json:"event_id"`
	LotID      uint64          `json:"lot_id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	RecordedAt string          `json:"recorded_at"`
}

// SubjectFor maps an event type to its NATS subject, e.g.
// ("bebida.lots", "lot.created") -> "bebida.lots.created".
func SubjectFor(prefix, eventType string) string {
	suffix := strings.TrimPrefix(eventType, "lot.")
	return prefix + "." + suffix
}

// EncodeEnvelope builds the published message body for an event.
func EncodeEnvelope(event ports.LotEvent) ([]byte, error) {
	payload := json.RawMessage(event.Payload)
	if !json.Valid(payload) {
		payload, _ = json.Marshal(event.Payload)
	}
	body, err := json.Marshal(Envelope{
		EventID:    event.EventID,
		LotID:      event.LotID,
		Type:       event.Type,
		Payload:    payload,
		RecordedAt: event.RecordedAt,
	})
	if err != nil {
		return nil, errs.Wrap(err, "encode event envelope")
	}
	return body, nil
}

type NATSNotifier struct {
	conn          *nats.Conn
	subjectPrefix string
}

var _ ports.Notifier = (*NATSNotifier)(nil)

func NewNATSNotifier(url, subjectPrefix string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, errs.Wrap(err, "connect nats")
	}
	return &NATSNotifier{conn: conn, subjectPrefix: subjectPrefix}, nil
}

func (n *NATSNotifier) Publish(ctx context.Context, event ports.LotEvent) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	body, err := EncodeEnvelope(event)
	if err != nil {
		return err
	}
	if err := n.conn.Publish(SubjectFor(n.subjectPrefix, event.Type), body); err != nil {
		return errs.Wrap(err, "publish event")
	}
	return nil
}

func (n *NATSNotifier) Close() {
	n.conn.Close()
}

// NopNotifier is used when no broker is configured; the events table remains
// the observer channel.
type NopNotifier struct{}

var _ ports.Notifier = NopNotifier{}

func (NopNotifier) Publish(context.Context, ports.LotEvent) error {
	return nil
}
