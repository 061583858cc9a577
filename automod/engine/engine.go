package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cogitia/cogitia/automod/auditlog"
	"github.com/cogitia/cogitia/automod/countstore"
	"github.com/cogitia/cogitia/automod/policy"
	"github.com/cogitia/cogitia/automod/policystore"
	"github.com/cogitia/cogitia/automod/ratelimit"
	"github.com/cogitia/cogitia/automod/toxicity"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("cogitia-engine")

// Produces per-category toxicity probabilities for a message.
type Classifier interface {
	Classify(ctx context.Context, text, lang string) (toxicity.Scores, error)
}

// Cleans raw message text and identifies its language. Must be deterministic and must not fail.
type Normalizer interface {
	Normalize(raw string) (clean string, lang string)
}

// Tunables shared by every guild. Per-guild thresholds and tolerance live in the guild policy.
type EngineConfig struct {
	Weights    toxicity.WeightTable
	Severity   toxicity.SeverityTable
	Escalation EscalationTable
	// trailing window for counting prior infractions
	InfractionWindow time.Duration
	// messages shorter than this (in characters, before or after cleaning) are not analyzed
	MinMessageLength  int
	ClassifierTimeout time.Duration
	// bounds each individual store call
	PersistTimeout time.Duration
	// delay before the single retry of a failed store write
	PersistRetryDelay time.Duration
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Weights:           toxicity.DefaultWeights,
		Severity:          toxicity.DefaultSeverity,
		Escalation:        DefaultEscalation,
		InfractionWindow:  countstore.DefaultWindow,
		MinMessageLength:  3,
		ClassifierTimeout: 10 * time.Second,
		PersistTimeout:    5 * time.Second,
		PersistRetryDelay: 100 * time.Millisecond,
	}
}

// Runs the moderation decision pipeline and records its outcomes.
//
// Safe for concurrent use. The engine itself holds no mutable state: the rate limiter and stores own theirs.
//
// Normalizer, Classifier, Infractions and Audit must be set. Limiter, Policies and Notifier are optional.
type Engine struct {
	Logger      *slog.Logger
	Limiter     ratelimit.Limiter
	Normalizer  Normalizer
	Classifier  Classifier
	Policies    policystore.PolicyStore
	Infractions countstore.InfractionStore
	Audit       auditlog.AuditLog
	// optional, notified about decisions needing moderator attention
	Notifier Notifier
	Config   EngineConfig
	// optional clock override, for tests
	Now func() time.Time
}

func (eng *Engine) now() time.Time {
	if eng.Now != nil {
		return eng.Now()
	}
	return time.Now().UTC()
}

// Decides what to do about one message.
//
// A rate-limited or skipped message is a valid outcome, returned with a nil error. The only error returned for a well-formed request wraps ErrClassifierUnavailable; in that case nothing is sanctioned or recorded.
//
// Once a message is admitted by the rate limiter, cancellation of ctx no longer interrupts the pipeline: every admitted message reaches a terminal decision (or a classifier failure), and its effects are recorded.
func (eng *Engine) Decide(ctx context.Context, msg Message, author Author, clientID string) (dec *Decision, err error) {
	// similar to an HTTP server, we want to recover any panics from pipeline execution
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("decision pipeline exception", "err", r, "guild", msg.GuildID, "user", author.UserID)
			decisionErrorCount.WithLabelValues("panic").Inc()
			dec = nil
			err = fmt.Errorf("decision pipeline panic: %v", r)
		}
	}()

	ctx, span := tracer.Start(ctx, "Decide")
	defer span.End()
	span.SetAttributes(attribute.String("guild", msg.GuildID))

	start := time.Now()
	logger := eng.Logger.With("guild", msg.GuildID, "user", author.UserID, "channel", msg.ChannelID)

	if eng.Limiter != nil && !eng.Limiter.Admit(ctx, clientID) {
		dec = skipped(ReasonRateLimited, "")
		eng.finish(context.WithoutCancel(ctx), logger, msg, author, dec, start)
		return dec, nil
	}
	ctx = context.WithoutCancel(ctx)

	dec, err = eng.decide(ctx, logger, msg, author)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("no decision reached", "err", err, "duration", time.Since(start))
		return nil, err
	}
	span.SetAttributes(attribute.String("action", string(dec.Action)))
	eng.finish(ctx, logger, msg, author, dec, start)
	return dec, nil
}

// Everything between rate limiting and persistence.
func (eng *Engine) decide(ctx context.Context, logger *slog.Logger, msg Message, author Author) (*Decision, error) {
	minLen := eng.Config.MinMessageLength
	if utf8.RuneCountInString(strings.TrimSpace(msg.Text)) < minLen {
		return skipped(ReasonTooShort, ""), nil
	}

	clean, lang := eng.Normalizer.Normalize(msg.Text)
	if utf8.RuneCountInString(clean) < minLen {
		return skipped(ReasonTooShort, lang), nil
	}

	pol := ResolvePolicy(ctx, eng.Policies, msg.GuildID, logger)

	if skip, reason := ShouldSkip(clean, author, &pol); skip {
		return skipped(reason, lang), nil
	}
	if !pol.LanguageActive(lang) {
		return skipped(ReasonLanguageInactive, lang), nil
	}

	scores, err := eng.classify(ctx, clean, lang)
	if err != nil {
		decisionErrorCount.WithLabelValues("classifier").Inc()
		return nil, fmt.Errorf("%w: %w", ErrClassifierUnavailable, err)
	}
	res := Aggregate(scores, eng.Config.Weights)

	prior := 0
	var last *toxicity.Sanction
	degraded := false
	historyPartial := false
	if Evaluate(AdjustedScore(res.ToxicityScore, &pol), pol.Thresholds) == ActionAutoSanctionPending {
		prior, err = eng.priorInfractions(ctx, msg.GuildID, author.UserID)
		if err != nil {
			// without history, escalation can't be trusted. a human decides instead.
			logger.Warn("failed to read prior infractions, downgrading to review", "err", err)
			persistFailureCount.WithLabelValues("infraction-count").Inc()
			degraded = true
		} else {
			last, err = eng.lastSanction(ctx, msg.GuildID, author.UserID)
			if err != nil {
				// informational only; escalation is driven by the count
				logger.Warn("failed to read last sanction", "err", err)
				persistFailureCount.WithLabelValues("last-sanction").Inc()
				historyPartial = true
			}
		}
	}

	dec := Assess(res, &pol, prior, eng.Config)
	dec.Language = lang
	dec.LastSanction = last
	if historyPartial {
		dec.Degraded = true
	}
	if degraded {
		dec.Action = ActionReviewRequired
		dec.RequiresReview = true
		dec.AutoSanction = false
		dec.Sanction = nil
		dec.Degraded = true
	}
	return dec, nil
}

// Pure decision arithmetic: given a classification, a guild policy and a prior infraction count, computes the action and (on the auto path) the escalated sanction.
//
// When the guild has disabled automatic sanctions, auto-level scores are sent to review with the escalated sanction attached as a suggestion.
func Assess(res ClassificationResult, p *policy.GuildPolicy, prior int, cfg EngineConfig) *Decision {
	adjusted := AdjustedScore(res.ToxicityScore, p)
	dec := &Decision{
		Action:           Evaluate(adjusted, p.Thresholds),
		Analyzed:         true,
		ToxicityScore:    res.ToxicityScore,
		AdjustedScore:    adjusted,
		Confidence:       res.Confidence,
		Categories:       res.Categories,
		Scores:           res.Scores,
		Severity:         cfg.Severity.Sum(res.Categories),
		Flagged:          adjusted >= p.Thresholds.Review,
		Borderline:       Borderline(adjusted, p.Thresholds),
		PriorInfractions: prior,
	}
	switch dec.Action {
	case ActionAutoSanctionPending:
		s := cfg.Escalation.Escalate(prior, dec.Severity)
		dec.Sanction = &s
		if p.AutoSanctions {
			dec.AutoSanction = true
		} else {
			dec.Action = ActionReviewRequired
			dec.RequiresReview = true
		}
	case ActionReviewRequired:
		dec.RequiresReview = true
	}
	return dec
}

func (eng *Engine) classify(ctx context.Context, text, lang string) (toxicity.Scores, error) {
	ctx, span := tracer.Start(ctx, "Classify")
	defer span.End()
	span.SetAttributes(attribute.String("lang", lang))

	if eng.Config.ClassifierTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, eng.Config.ClassifierTimeout)
		defer cancel()
	}
	scores, err := eng.Classifier.Classify(ctx, text, lang)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return scores, err
}

func (eng *Engine) priorInfractions(ctx context.Context, guildID, userID string) (int, error) {
	ctx, cancel := eng.persistContext(ctx)
	defer cancel()
	since := eng.now().Add(-eng.Config.InfractionWindow)
	return eng.Infractions.GetInfractionCount(ctx, userID, guildID, since)
}

func (eng *Engine) lastSanction(ctx context.Context, guildID, userID string) (*toxicity.Sanction, error) {
	ctx, cancel := eng.persistContext(ctx)
	defer cancel()
	since := eng.now().Add(-eng.Config.InfractionWindow)
	return eng.Infractions.LastSanction(ctx, userID, guildID, since)
}

func (eng *Engine) persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if eng.Config.PersistTimeout > 0 {
		return context.WithTimeout(ctx, eng.Config.PersistTimeout)
	}
	return context.WithCancel(ctx)
}

// Records effects, notifies, and emits metrics and the canonical log line for a terminal decision.
func (eng *Engine) finish(ctx context.Context, logger *slog.Logger, msg Message, author Author, dec *Decision, start time.Time) {
	eng.persistEffects(ctx, logger, msg, author, dec)
	if dec.RequiresReview || dec.AutoSanction {
		eng.notify(ctx, logger, msg, author, dec)
	}

	decisionCount.WithLabelValues(string(dec.Action), string(dec.Reason)).Inc()
	decisionDuration.WithLabelValues(string(dec.Action)).Observe(time.Since(start).Seconds())
	if dec.Sanction != nil {
		sanctionCount.WithLabelValues(dec.Sanction.String(), fmt.Sprint(dec.AutoSanction)).Inc()
	}
	canonicalLogLine(logger, dec, time.Since(start))
}

func (eng *Engine) notify(ctx context.Context, logger *slog.Logger, msg Message, author Author, dec *Decision) {
	if eng.Notifier == nil {
		return
	}
	ctx, cancel := eng.persistContext(ctx)
	defer cancel()
	if err := eng.Notifier.SendDecision(ctx, msg, author, dec); err != nil {
		notificationErrorCount.Inc()
		logger.Warn("failed to send decision notification", "err", err)
	}
}

func canonicalLogLine(logger *slog.Logger, dec *Decision, duration time.Duration) {
	sanction := ""
	if dec.Sanction != nil {
		sanction = dec.Sanction.String()
	}
	lastSanction := ""
	if dec.LastSanction != nil {
		lastSanction = dec.LastSanction.String()
	}
	logger.Info("canonical-decision-line",
		"action", dec.Action,
		"reason", dec.Reason,
		"analyzed", dec.Analyzed,
		"lang", dec.Language,
		"adjustedScore", dec.AdjustedScore,
		"categories", dec.Categories,
		"severity", dec.Severity,
		"priorInfractions", dec.PriorInfractions,
		"sanction", sanction,
		"lastSanction", lastSanction,
		"logID", dec.LogID,
		"degraded", dec.Degraded,
		"duration", duration,
	)
}
