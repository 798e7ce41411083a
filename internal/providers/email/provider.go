package email

import "context"

// Provider is the outbound mail transport. Fire-and-forget: callers log send
// failures, nothing retries.
type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}
