package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	AccountsRegistered prometheus.Counter
	VettingDecisions   prometheus.Counter

	RequestsCreated   prometheus.Counter
	RequestsClaimed   prometheus.Counter
	RequestsFulfilled prometheus.Counter
	RequestsReleased  prometheus.Counter
	RequestsDenied    prometheus.Counter
	ClaimConflicts    prometheus.Counter

	NotificationsCreated prometheus.Counter
	EmailsSent           prometheus.Counter
	EmailsFailed         prometheus.Counter
	EmailsDropped        prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		AccountsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matchport_accounts_registered_total",
			Help: "Total number of accounts registered",
		}),
		VettingDecisions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matchport_vetting_decisions_total",
			Help: "Total number of admin vetting decisions",
		}),
		RequestsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matchport_requests_created_total",
			Help: "Total number of requests created",
		}),
		RequestsClaimed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matchport_requests_claimed_total",
			Help: "Total number of successful claims",
		}),
		RequestsFulfilled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matchport_requests_fulfilled_total",
			Help: "Total number of fulfilled requests",
		}),
		RequestsReleased: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matchport_requests_released_total",
			Help: "Total number of released (unclaimed) requests",
		}),
		RequestsDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matchport_requests_denied_total",
			Help: "Total number of denied requests",
		}),
		ClaimConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matchport_claim_conflicts_total",
			Help: "Total number of claim attempts that lost a race",
		}),
		NotificationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matchport_notifications_created_total",
			Help: "Total number of in-app notifications created",
		}),
		EmailsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matchport_emails_sent_total",
			Help: "Total number of emails handed to the transport successfully",
		}),
		EmailsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matchport_emails_failed_total",
			Help: "Total number of email transport failures",
		}),
		EmailsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matchport_emails_dropped_total",
			Help: "Total number of emails dropped due to a full outbox",
		}),
	}
}
