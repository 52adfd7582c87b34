package service

import "context"

// Mailer is the outbound email collaborator. Callers on the registration
// and OTP paths treat it as fire-and-forget: a send failure is logged, not
// propagated.
type Mailer interface {
	// Send renders the named template with the given context values and
	// delivers it to the recipient.
	Send(ctx context.Context, to, subject, template string, data any) error
}
