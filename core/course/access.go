package course

import (
	"context"
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/upendo/core/catalog"
)

// CanAccessLesson decides whether a member may open a lesson right now.
//
// Checks run in a fixed order, short-circuiting on the first failure:
// catalog existence, then subscription, then module release. Subscription
// gates before content release on purpose: an expired member must see a
// renewal prompt, not a drip-lock countdown.
//
// A denial is a normal decision value; an error is returned only when
// storage fails.
func (svc *Service) CanAccessLesson(
	ctx context.Context,
	userID string,
	module, lesson int,
	now time.Time,
) (AccessDecision, error) {
	if _, err := catalog.Get(module, lesson); err != nil {
		return AccessDecision{
			Reason: AccessNotFound,
			Detail: fmt.Sprintf("lesson %d of module %d does not exist", lesson, module),
		}, nil
	}

	// missing subscription or enrollment rows fail closed
	sub, err := svc.repo.GetSubscription(ctx, userID)
	if err != nil {
		if err == ErrNoSubscription {
			return AccessDecision{
				Reason: AccessSubscriptionExpired,
				Detail: "no active subscription",
			}, nil
		}
		return AccessDecision{}, err
	}
	if !IsActive(sub, now) {
		return AccessDecision{
			Reason:          AccessSubscriptionExpired,
			Detail:          expiryDetail(sub, now),
			TimeUntilExpiry: TimeUntilExpiry(sub, now),
		}, nil
	}

	enr, err := svc.repo.GetEnrollment(ctx, userID)
	if err != nil {
		if err == ErrNoEnrollment {
			return AccessDecision{
				Reason: AccessSubscriptionExpired,
				Detail: "no active subscription",
			}, nil
		}
		return AccessDecision{}, err
	}
	released, err := svc.IsReleased(enr, module, now)
	if err != nil {
		return AccessDecision{}, err
	}
	if !released {
		releaseAt, _ := svc.ReleaseDate(enr, module)
		return AccessDecision{
			Reason:    AccessModuleLocked,
			Detail:    fmt.Sprintf("module %d unlocks on %s", module, releaseAt.Format("2 Jan 2006")),
			ReleaseAt: null.TimeFrom(releaseAt),
		}, nil
	}

	return AccessDecision{
		Allowed:         true,
		Reason:          AccessOK,
		TimeUntilExpiry: TimeUntilExpiry(sub, now),
	}, nil
}

func expiryDetail(sub Subscription, now time.Time) string {
	if !sub.ExpiresAt.Valid {
		return "no active subscription"
	}
	expiredFor := now.Sub(sub.ExpiresAt.Time)
	days := int(expiredFor.Hours() / 24)
	switch {
	case days <= 0:
		return "subscription expired today"
	case days == 1:
		return "subscription expired 1 day ago"
	default:
		return fmt.Sprintf("subscription expired %d days ago", days)
	}
}
