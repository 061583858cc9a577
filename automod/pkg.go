package automod

import (
	"github.com/cogitia/cogitia/automod/engine"
)

type Engine = engine.Engine
type EngineConfig = engine.EngineConfig
type Decision = engine.Decision
type Message = engine.Message
type Author = engine.Author
type EscalationTable = engine.EscalationTable

type Classifier = engine.Classifier
type Normalizer = engine.Normalizer
type Notifier = engine.Notifier
type SlackNotifier = engine.SlackNotifier

var (
	ActionNone                = engine.ActionNone
	ActionReviewRequired      = engine.ActionReviewRequired
	ActionAutoSanctionPending = engine.ActionAutoSanctionPending

	DefaultEngineConfig = engine.DefaultEngineConfig
	NewSlackNotifier    = engine.NewSlackNotifier

	ErrClassifierUnavailable = engine.ErrClassifierUnavailable
)
