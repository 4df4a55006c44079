// Package notify is the notification gateway: it delivers committed
// workflow events to connected clients. The workflow core writes one
// outbox row per commit; delivery happens here, after the transaction,
// and a delivery failure never rolls anything back.
package notify

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// Gateway receives phase-change and reconciliation events from the
// workflow core after commit. Delivery is at-least-once, best-effort.
// Emit reports whether the event reached the transport; the caller
// settles the matching outbox row on success so the dispatcher only
// picks up what was not delivered.
type Gateway interface {
	Emit(eventType string, requestID string, newPhase string, payload interface{}) bool
}

// Broadcaster pushes an encoded message to connected clients. The
// websocket hub satisfies this; tests use a recorder.
type Broadcaster interface {
	Send(message []byte) bool
}

// Message is the wire format pushed to clients.
type Message struct {
	Type      string      `json:"type"`
	RequestID string      `json:"request_id"`
	Phase     string      `json:"phase,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Time      time.Time   `json:"time"`
}

// hubGateway broadcasts events over a hub.
type hubGateway struct {
	broadcaster Broadcaster
	logger      *logrus.Logger
}

// NewGateway creates a gateway delivering over the given broadcaster.
func NewGateway(broadcaster Broadcaster, logger *logrus.Logger) Gateway {
	return &hubGateway{broadcaster: broadcaster, logger: logger}
}

// Emit pushes one event to connected clients. Failures are logged and
// dropped here; the outbox dispatcher retries undelivered events.
func (g *hubGateway) Emit(eventType string, requestID string, newPhase string, payload interface{}) bool {
	msg := Message{
		Type:      eventType,
		RequestID: requestID,
		Phase:     newPhase,
		Payload:   payload,
		Time:      time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		g.logger.WithError(err).WithField("request_id", requestID).Warn("failed to encode event")
		return false
	}
	if !g.broadcaster.Send(data) {
		g.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"type":       eventType,
		}).Warn("broadcast queue full, event left for dispatcher")
		return false
	}
	return true
}

// NopGateway discards every event. Used where no clients can be
// connected, such as migrations and tests. It reports nothing as
// delivered, leaving outbox rows pending.
type NopGateway struct{}

// Emit implements Gateway.
func (NopGateway) Emit(string, string, string, interface{}) bool { return false }
