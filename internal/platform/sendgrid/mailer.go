// Package sendgrid delivers notification e-mails through the SendGrid v3
// mail-send API.
package sendgrid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/notify"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/sendgrid/rest"
	sendgridapi "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	mailSendEndpoint = "/v3/mail/send"
	defaultHost      = "https://api.sendgrid.com"
)

// ErrMissingAPIKey is returned by NewMailer when no API key is configured.
var ErrMissingAPIKey = errors.New("sendgrid api key is required")

// Mailer implements notify.Mailer against SendGrid.
type Mailer struct {
	apiKey string
	host   string
	logger *slog.Logger
}

var _ notify.Mailer = (*Mailer)(nil)

// NewMailer creates a Mailer from the mail configuration.
// If logger is nil, a default logger will be used.
func NewMailer(cfg config.MailConfig, logger *slog.Logger) (*Mailer, error) {
	if cfg.SendGridAPIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}

	host := cfg.BaseURL
	if host == "" {
		host = defaultHost
	}

	return &Mailer{
		apiKey: cfg.SendGridAPIKey,
		host:   host,
		logger: logger.With(slog.String("component", "sendgrid_mailer")),
	}, nil
}

// Send implements notify.Mailer.
func (m *Mailer) Send(ctx context.Context, msg notify.Message) error {
	log := logger.FromContextOrDefault(ctx, m.logger)

	request := sendgridapi.GetRequest(m.apiKey, mailSendEndpoint, m.host)
	request.Method = rest.Post
	request.Body = mail.GetRequestBody(buildMail(msg))

	response, err := sendgridapi.MakeRequestWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, truncate(response.Body, 200))
	}

	log.Debug("e-mail accepted by sendgrid",
		slog.String("subject", msg.Subject),
		slog.Int("status", response.StatusCode))
	return nil
}

func buildMail(msg notify.Message) *mail.SGMailV3 {
	from := mail.NewEmail(msg.From.Name, msg.From.Email)
	to := mail.NewEmail(msg.To.Name, msg.To.Email)

	// text/plain must precede text/html in the content list.
	var contents []*mail.Content
	if msg.Text != "" {
		contents = append(contents, mail.NewContent("text/plain", msg.Text))
	}
	if msg.HTML != "" {
		contents = append(contents, mail.NewContent("text/html", msg.HTML))
	}

	return mail.NewV3MailInit(from, msg.Subject, to, contents...)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
