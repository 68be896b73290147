// Package notify wraps outbound email and SMS delivery. Both channels share
// the debug convention: in debug mode messages reroute to a configured debug
// recipient instead of the real one, so development systems never contact
// real users.
package notify

import "context"

// Mailer sends templated HTML email.
type Mailer interface {
	// SendTemplate renders the named template with data and delivers it.
	SendTemplate(ctx context.Context, to []string, subject, template string, data map[string]any) error
}

// SMSSender delivers short text messages.
type SMSSender interface {
	Send(ctx context.Context, recipient, message string) error
}
