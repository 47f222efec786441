package contact

import (
	"context"
	"log/slog"

	"sellerflow/internal/onboarding/models"
)

// LogSender writes codes to the log instead of delivering them. Development
// and test stand-in for the messaging provider.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, channel models.Channel, target, code string) error {
	s.logger.InfoContext(ctx, "dispatching one-time code",
		"channel", channel,
		"target", target,
		"code", code,
	)
	return nil
}
