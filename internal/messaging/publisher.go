package messaging

import "context"

// ReminderPublisher hands due reminders to the notification pipeline
type ReminderPublisher interface {
	PublishReminderDue(ctx context.Context, msg *ReminderDueMessage) error
}

// NoOpPublisher drops every message. Used when no broker is configured.
type NoOpPublisher struct{}

// NewNoOpPublisher creates a publisher that does nothing
func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

// PublishReminderDue does nothing
func (p *NoOpPublisher) PublishReminderDue(ctx context.Context, msg *ReminderDueMessage) error {
	return nil
}
