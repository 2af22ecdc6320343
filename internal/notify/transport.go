package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Transport delivers the external copy of a notification (email today).
// Implementations must be safe for concurrent use. A non-nil error means
// the message was not delivered; the caller logs and moves on.
type Transport interface {
	Send(ctx context.Context, to, subject, templateID string, data map[string]string) error
}

// Email template identifiers. The transport owns rendering; the dispatcher
// only names the template and supplies its data.
const (
	TemplateWelcomeDonor          = "welcome_donor"
	TemplateWelcomeCBO            = "welcome_cbo"
	TemplateCBOApproval           = "cbo_approval"
	TemplateCBORejection          = "cbo_rejection"
	TemplateRequestClaimedCBO     = "request_claimed_cbo"
	TemplateRequestClaimedDonor   = "request_claimed_donor"
	TemplateRequestFulfilledCBO   = "request_fulfilled_cbo"
	TemplateRequestFulfilledDonor = "request_fulfilled_donor"
	TemplateRequestDenied         = "request_denied"
	TemplateRequestApproved       = "request_approved"
)

// ConsoleTransport logs messages instead of sending them. It is the
// development default; production injects a real mail API client.
type ConsoleTransport struct {
	logger *slog.Logger
}

func NewConsoleTransport(logger *slog.Logger) *ConsoleTransport {
	return &ConsoleTransport{logger: logger}
}

func (t *ConsoleTransport) Send(ctx context.Context, to, subject, templateID string, data map[string]string) error {
	pairs := make([]string, 0, len(data))
	for k, v := range data {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, v))
	}
	t.logger.InfoContext(ctx, "mock email sent",
		"to", to,
		"subject", subject,
		"template", templateID,
		"data", strings.Join(pairs, " "),
	)
	return nil
}
