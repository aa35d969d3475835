// Package notify holds the best-effort notification collaborators. Sends are
// fire-and-forget: a failed send is logged and reported as a flag, never as
// an error that could fail the lifecycle mutation that triggered it.
package notify

import (
	"context"
)

// PushSender delivers a push notification to a person's registered device.
type PushSender interface {
	Send(ctx context.Context, personID, title, body string, data map[string]string) bool
}

// SMSResult reports the outcome of a single SMS attempt.
type SMSResult struct {
	Success bool
	Message string
}

// SMSSender delivers a templated message to a phone number. Implementations
// validate the number before attempting delivery.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) SMSResult
}
