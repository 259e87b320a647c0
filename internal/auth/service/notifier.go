package service

import "context"

// Notifier delivers verification codes out of band. Delivery is best effort:
// a failure is logged by the caller and never reaches the client.
type Notifier interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}
