package course

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Tiers
const (
	TierWeekly   = "weekly"
	TierMonthly  = "monthly"
	TierLifetime = "lifetime"
)

var AllTiers = []string{TierWeekly, TierMonthly, TierLifetime}

type (
	// Enrollment anchors a member's drip timers. Created once on the first
	// access grant and never mutated thereafter, except for UnlockedAt which
	// a lifetime purchase may set to release every module at once.
	Enrollment struct {
		UserID     string    `json:"user_id"`
		StartedAt  time.Time `json:"started_at"` // UTC
		UnlockedAt null.Time `json:"unlocked_at"`
	}

	// Subscription is the member's current plan. A lifetime tier has no
	// expiry. Only the payment confirmation path mutates it.
	Subscription struct {
		UserID    string    `json:"user_id"`
		Tier      string    `json:"tier"`
		ExpiresAt null.Time `json:"expires_at"`
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	// LessonProgress is the persisted high-water mark for a lesson.
	// WatchPercentage never decreases and IsCompleted never reverts.
	LessonProgress struct {
		UserID          string    `json:"user_id"`
		Module          int       `json:"module"`
		Lesson          int       `json:"lesson"`
		WatchPercentage int       `json:"watch_percentage"`
		IsCompleted     bool      `json:"is_completed"`
		LastWatchedAt   time.Time `json:"last_watched_at"` // UTC
		CompletedAt     null.Time `json:"completed_at"`
	}

	// ModuleRelease is derived from an Enrollment; recomputed on read,
	// never a source of truth.
	ModuleRelease struct {
		ModuleNumber int       `json:"module_number"`
		ReleaseAt    time.Time `json:"release_at"`
		IsReleased   bool      `json:"is_released"`
	}
)

func (s Subscription) Recurring() bool {
	return s.Tier == TierWeekly || s.Tier == TierMonthly
}

// Access decision reasons
const (
	AccessOK                  = "ok"
	AccessModuleLocked        = "module-locked"
	AccessSubscriptionExpired = "subscription-expired"
	AccessNotFound            = "not-found"
)

// AccessDecision is the structured outcome of an access check. A denial is
// a normal return value consumed by the presentation layer, not an error.
type AccessDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
	Detail  string `json:"detail,omitempty"`

	// ReleaseAt is set when Reason == module-locked.
	ReleaseAt null.Time `json:"release_at,omitempty"`
	// TimeUntilExpiry is set for recurring subscriptions (negative once
	// expired); nil for lifetime or missing subscriptions.
	TimeUntilExpiry *time.Duration `json:"time_until_expiry,omitempty"`
}
