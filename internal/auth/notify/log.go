package notify

import (
	"context"
	"log/slog"

	"github.com/diyageorge33/minipro/pkg/slogx"
)

// LogNotifier writes codes to the request logger instead of sending them.
// It is meant for development setups without a mail relay.
type LogNotifier struct{}

func (LogNotifier) SendVerificationCode(ctx context.Context, email, code string) error {
	slogx.FromContext(ctx).Info("[DEV] verification code",
		slog.String("email", email),
		slog.String("code", code),
	)
	return nil
}
