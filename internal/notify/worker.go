package notify

import (
	"context"
	"log/slog"
	"time"

	"matchport/internal/platform/metrics"
)

// Worker drains the dispatcher's email outbox and calls the transport.
// Failures are logged and counted, never retried here and never surfaced:
// the in-app row is the durable record.
type Worker struct {
	dispatcher *Dispatcher
	transport  Transport
	logger     *slog.Logger
	metrics    *metrics.Metrics
	timeout    time.Duration
}

const defaultSendTimeout = 10 * time.Second

func NewWorker(d *Dispatcher, transport Transport, logger *slog.Logger, m *metrics.Metrics) *Worker {
	return &Worker{
		dispatcher: d,
		transport:  transport,
		logger:     logger,
		metrics:    m,
		timeout:    defaultSendTimeout,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job := <-w.dispatcher.outbox:
			w.send(ctx, job)
		}
	}
}

func (w *Worker) send(ctx context.Context, job emailJob) {
	sendCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.transport.Send(sendCtx, job.to, job.subject, job.templateID, job.data); err != nil {
		if w.metrics != nil {
			w.metrics.EmailsFailed.Inc()
		}
		w.logger.ErrorContext(ctx, "email send failed",
			"error", err,
			"to", job.to,
			"template", job.templateID,
		)
		return
	}
	if w.metrics != nil {
		w.metrics.EmailsSent.Inc()
	}
}
