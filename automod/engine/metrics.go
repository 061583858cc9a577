package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var decisionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "cogitia_decision_duration_sec",
	Help: "Total duration of the moderation decision pipeline",
}, []string{"action"})

var decisionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cogitia_decisions",
	Help: "Number of moderation decisions, by action and skip reason",
}, []string{"action", "reason"})

var decisionErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cogitia_decision_errors",
	Help: "Number of messages for which no decision could be made",
}, []string{"type"})

var sanctionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cogitia_sanctions",
	Help: "Number of escalated sanctions, by level and whether they were applied automatically",
}, []string{"sanction", "auto"})

var persistFailureCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cogitia_persist_failures",
	Help: "Number of decision side-effects dropped after retry",
}, []string{"target"})

var policyFallbackCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cogitia_policy_fallbacks",
	Help: "Number of times the default guild policy was used in place of a stored one",
}, []string{"cause"})

var validationCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cogitia_moderator_validations",
	Help: "Number of moderator verdicts on decisions",
}, []string{"approved"})

var notificationErrorCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "cogitia_notification_errors",
	Help: "Number of review notifications which failed to send",
})
