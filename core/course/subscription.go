package course

import "time"

// IsActive reports whether a subscription grants access at the given
// instant. Lifetime tiers are always active; recurring tiers are active
// strictly until their expiry.
//
// A missing subscription record must be treated by callers as "no active
// access" (fail-closed), never as an active-looking default.
func IsActive(sub Subscription, now time.Time) bool {
	if sub.Tier == TierLifetime {
		return true
	}
	return sub.ExpiresAt.Valid && sub.ExpiresAt.Time.After(now)
}

// TimeUntilExpiry returns how long until the subscription expires, negative
// once expired. Nil for lifetime tiers and for rows without an expiry.
func TimeUntilExpiry(sub Subscription, now time.Time) *time.Duration {
	if sub.Tier == TierLifetime || !sub.ExpiresAt.Valid {
		return nil
	}
	d := sub.ExpiresAt.Time.Sub(now)
	return &d
}
