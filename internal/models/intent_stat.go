package models

import "time"

// Answer outcome constants
const (
	OutcomeAnswered         = "answered"
	OutcomeInfo             = "info"
	OutcomeNoData           = "no_data"
	OutcomeNoGoal           = "no_goal"
	OutcomeInsufficientData = "insufficient_data"
	OutcomeUnrecognized     = "unrecognized"
	OutcomeForbidden        = "forbidden"
	OutcomeInternalError    = "internal_error"
)

// IntentStat represents a per-intent answer count by outcome.
type IntentStat struct {
	Intent     string
	Outcome    string
	Count      int64
	LastSeenAt time.Time
}
