// Package push wraps the out-of-band push-notification transport.
// The transport itself is an external collaborator; this package only
// defines the seam the fanout uses.
package push

import (
	"context"
	"log"

	"fueldash/internal/domain"
)

// Client delivers a notification to a registered device endpoint.
type Client interface {
	Send(ctx context.Context, deviceToken string, n *domain.Notification) error
}

// LogClient is a stand-in push client that logs instead of sending.
type LogClient struct{}

// NewLogClient creates a new LogClient.
func NewLogClient() *LogClient {
	return &LogClient{}
}

// Send logs the push that would have been sent.
func (c *LogClient) Send(ctx context.Context, deviceToken string, n *domain.Notification) error {
	log.Printf("[PUSH] token=%s type=%s title=%s", deviceToken, n.Type, n.Title)
	return nil
}
