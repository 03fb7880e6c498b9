package activity

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes stored entries as JSON on
// <prefix>.<project_id>.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSPublisher constructs a NATSPublisher.
func NewNATSPublisher(conn *nats.Conn, prefix string) *NATSPublisher {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = "railyard.activity"
	}
	return &NATSPublisher{conn: conn, prefix: prefix}
}

// Subject returns the subject entries of projectID are published on.
func (p *NATSPublisher) Subject(projectID uuid.UUID) string {
	return p.prefix + "." + projectID.String()
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(_ context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.Subject(e.ProjectID), data)
}
