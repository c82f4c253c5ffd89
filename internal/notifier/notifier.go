package notifier

import "context"

// Notifier delivers a one-time verification code to a user through an
// out-of-band channel. Delivery is best-effort: callers must not fail their
// own operation when SendCode returns an error.
type Notifier interface {
	SendCode(ctx context.Context, email, code string) error
}
