package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-manager-api/internal/events"
	"github.com/phrazzld/task-manager-api/internal/job"
	"github.com/phrazzld/task-manager-api/internal/platform/logger"
	"github.com/phrazzld/task-manager-api/internal/redact"
)

// Job types used for e-mail delivery.
const (
	JobTypeWelcomeEmail     = "email.welcome"
	JobTypeCancelationEmail = "email.cancelation"
)

// Notifier turns lifecycle events into e-mail jobs.
type Notifier struct {
	queue  job.QueueWriter
	mailer Mailer
	from   Address
	logger *slog.Logger
}

var _ events.EventHandler = (*Notifier)(nil)

// NewNotifier creates a Notifier that enqueues deliveries through mailer on queue.
// If logger is nil, a default logger will be used.
func NewNotifier(queue job.QueueWriter, mailer Mailer, from Address, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		queue:  queue,
		mailer: mailer,
		from:   from,
		logger: logger.With(slog.String("component", "notifier")),
	}
}

// SendWelcome enqueues the welcome e-mail. It never blocks; when the queue
// does not accept the job the message is dropped and the error returned.
func (n *Notifier) SendWelcome(ctx context.Context, email, name string) error {
	return n.dispatch(ctx, JobTypeWelcomeEmail, WelcomeMessage(n.from, email, name))
}

// SendCancelation enqueues the cancellation e-mail. Same delivery rules as SendWelcome.
func (n *Notifier) SendCancelation(ctx context.Context, email, name string) error {
	return n.dispatch(ctx, JobTypeCancelationEmail, CancelationMessage(n.from, email, name))
}

// HandleEvent implements events.EventHandler.
func (n *Notifier) HandleEvent(ctx context.Context, event *events.Event) error {
	switch event.Type {
	case events.TypeUserSignedUp, events.TypeAccountCanceled:
	default:
		return nil
	}

	var payload events.AccountPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
	}

	if event.Type == events.TypeUserSignedUp {
		return n.SendWelcome(ctx, payload.Email, payload.Name)
	}
	return n.SendCancelation(ctx, payload.Email, payload.Name)
}

func (n *Notifier) dispatch(ctx context.Context, jobType string, msg Message) error {
	log := logger.FromContextOrDefault(ctx, n.logger)

	mailer := n.mailer
	j := job.NewFuncJob(jobType, func(jobCtx context.Context) error {
		if err := mailer.Send(jobCtx, msg); err != nil {
			return fmt.Errorf("failed to send %s: %w", jobType, err)
		}
		return nil
	})

	if err := n.queue.Enqueue(j); err != nil {
		log.Warn("dropping e-mail, job not enqueued",
			slog.String("job_type", jobType),
			slog.String("to", redact.String(msg.To.Email)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to enqueue %s: %w", jobType, err)
	}

	return nil
}
