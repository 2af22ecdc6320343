package notify

import (
	"context"
	"log/slog"

	"matchport/internal/platform/metrics"
	id "matchport/pkg/domain"
	dErrors "matchport/pkg/domain-errors"
	"matchport/pkg/requestcontext"
)

// Dispatch describes one notification to deliver: the authoritative in-app
// row plus a best-effort email.
type Dispatch struct {
	RecipientID    id.AccountID
	RecipientEmail string
	RequestID      *id.RequestID
	Type           Type
	Title          string
	Message        string
	TemplateID     string
	TemplateData   map[string]string
}

type emailJob struct {
	to         string
	subject    string
	templateID string
	data       map[string]string
}

// Dispatcher writes notification rows and queues emails for the worker.
// The row write participates in the caller's transaction; the email queue
// is fire-and-forget so a slow or failing transport never blocks or fails
// the lifecycle command.
type Dispatcher struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	outbox  chan emailJob
}

const defaultOutboxSize = 256

func NewDispatcher(store Store, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		store:   store,
		logger:  logger,
		metrics: m,
		outbox:  make(chan emailJob, defaultOutboxSize),
	}
}

// Notify persists the in-app notification and queues the email. Only the
// row write can fail the call; a full outbox drops the email with a warning
// because the persisted row already records that the recipient was informed.
func (d *Dispatcher) Notify(ctx context.Context, in Dispatch) (*Notification, error) {
	n := &Notification{
		ID:          id.NewNotificationID(),
		RequestID:   in.RequestID,
		Type:        in.Type,
		Title:       in.Title,
		Message:     in.Message,
		RecipientID: in.RecipientID,
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := d.store.Create(ctx, n); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create notification")
	}
	if d.metrics != nil {
		d.metrics.NotificationsCreated.Inc()
	}

	if in.RecipientEmail == "" || in.TemplateID == "" {
		return n, nil
	}
	job := emailJob{
		to:         in.RecipientEmail,
		subject:    in.Title,
		templateID: in.TemplateID,
		data:       in.TemplateData,
	}
	select {
	case d.outbox <- job:
	default:
		if d.metrics != nil {
			d.metrics.EmailsDropped.Inc()
		}
		d.logger.WarnContext(ctx, "email outbox full, dropping message",
			"to", in.RecipientEmail,
			"template", in.TemplateID,
		)
	}
	return n, nil
}
