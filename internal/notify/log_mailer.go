package notify

import (
	"context"
	"log/slog"

	"github.com/phrazzld/task-manager-api/internal/redact"
)

// LogMailer records messages in the log instead of sending them. It is used
// when no mail provider is configured.
type LogMailer struct {
	logger *slog.Logger
}

var _ Mailer = (*LogMailer)(nil)

// NewLogMailer creates a LogMailer. If logger is nil, a default logger will be used.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger.With(slog.String("component", "log_mailer"))}
}

// Send implements Mailer.
func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "e-mail not sent, no mail provider configured",
		slog.String("to", redact.String(msg.To.Email)),
		slog.String("subject", msg.Subject))
	return nil
}
