package course

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/upendo/core"
	"github.com/trezcool/upendo/core/catalog"
)

var (
	// errors
	ErrNoEnrollment   = errors.New("enrollment not found")
	ErrNoSubscription = errors.New("subscription not found")
	ErrNoProgress     = errors.New("lesson progress not found")
	ErrAllComplete    = errors.New("course completed")
)

type (
	Repository interface {
		GetEnrollment(ctx context.Context, userID string) (Enrollment, error)
		// CreateEnrollment is a no-op returning the existing row when the
		// user is already enrolled; the drip anchor must never move.
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		// UnlockAllModules marks the enrollment as fully released.
		UnlockAllModules(ctx context.Context, userID string, at time.Time) (Enrollment, error)

		GetSubscription(ctx context.Context, userID string) (Subscription, error)
		UpsertSubscription(ctx context.Context, sub Subscription) (Subscription, error)

		// UpsertLessonProgress applies a sample atomically on the
		// (user, module, lesson) conflict key: the stored watch percentage
		// never regresses and completion is sticky. The bool reports
		// whether THIS write flipped IsCompleted; concurrent completing
		// samples must observe the flip exactly once.
		UpsertLessonProgress(ctx context.Context, p LessonProgress) (LessonProgress, bool, error)
		GetLessonProgress(ctx context.Context, userID string, module, lesson int) (LessonProgress, error)
		// QueryLessonProgress returns all progress rows for a user,
		// optionally restricted to one module.
		QueryLessonProgress(ctx context.Context, userID string, module ...int) ([]LessonProgress, error)
	}

	ServiceInterface interface {
		Enroll(ctx context.Context, userID string, startedAt time.Time) (Enrollment, error)
		GetEnrollment(ctx context.Context, userID string) (Enrollment, error)
		GetSubscription(ctx context.Context, userID string) (Subscription, error)

		ReleaseDate(enr Enrollment, moduleNumber int) (time.Time, error)
		IsReleased(enr Enrollment, moduleNumber int, now time.Time) (bool, error)
		ModuleReleases(enr Enrollment, now time.Time) []ModuleRelease

		GrantAccess(ctx context.Context, userID, tier string, expiresAt null.Time, now time.Time) (Subscription, error)

		RecordSample(ctx context.Context, userID string, module, lesson, percentage int, observedAt time.Time) (LessonProgress, bool, error)
		CompletionRatio(ctx context.Context, userID string, moduleNumber int) (float64, error)
		GlobalCompletionRatio(ctx context.Context, userID string) (float64, error)
		Overview(ctx context.Context, userID string, now time.Time) (Overview, error)
		NextLesson(ctx context.Context, userID string) (catalog.Lesson, error)
		GetLessonProgress(ctx context.Context, userID string, module, lesson int) (LessonProgress, error)
		QueryProgress(ctx context.Context, userID string, module ...int) ([]LessonProgress, error)

		CanAccessLesson(ctx context.Context, userID string, module, lesson int, now time.Time) (AccessDecision, error)
	}

	Service struct {
		repo    Repository
		offsets map[int]time.Duration

		// moduleCompletedFn is invoked after a sample completes the last
		// remaining lesson of a module.
		moduleCompletedFn func(userID string, moduleNumber int)
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, conf *core.Config) *Service {
	interval := time.Duration(conf.Course.ReleaseIntervalDays) * 24 * time.Hour

	// module 1 releases at enrollment; each later module one interval apart
	offsets := make(map[int]time.Duration)
	for _, m := range catalog.Modules() {
		offsets[m.Number] = time.Duration(m.Number-1) * interval
	}

	return &Service{
		repo:    repo,
		offsets: offsets,
	}
}

// OnModuleCompleted registers the module-completed signal handler, used by
// the presentation layer to prompt the next module.
func (svc *Service) OnModuleCompleted(fn func(userID string, moduleNumber int)) {
	svc.moduleCompletedFn = fn
}

// Enroll creates the user's enrollment if it does not exist yet. An existing
// enrollment is returned unchanged: drip timers anchor to the first grant.
func (svc *Service) Enroll(ctx context.Context, userID string, startedAt time.Time) (Enrollment, error) {
	return svc.repo.CreateEnrollment(ctx, Enrollment{
		UserID:    userID,
		StartedAt: startedAt.UTC(),
	})
}

func (svc *Service) GetEnrollment(ctx context.Context, userID string) (Enrollment, error) {
	return svc.repo.GetEnrollment(ctx, userID)
}

func (svc *Service) GetSubscription(ctx context.Context, userID string) (Subscription, error) {
	return svc.repo.GetSubscription(ctx, userID)
}

func (svc *Service) GetLessonProgress(ctx context.Context, userID string, module, lesson int) (LessonProgress, error) {
	return svc.repo.GetLessonProgress(ctx, userID, module, lesson)
}

func (svc *Service) QueryProgress(ctx context.Context, userID string, module ...int) ([]LessonProgress, error) {
	return svc.repo.QueryLessonProgress(ctx, userID, module...)
}

// GrantAccess records a confirmed purchase: the subscription is upserted,
// the enrollment is created if this is the first grant (anchoring the drip
// timers) and a lifetime purchase releases every module at once.
func (svc *Service) GrantAccess(ctx context.Context, userID, tier string, expiresAt null.Time, now time.Time) (Subscription, error) {
	now = now.UTC()
	sub, err := svc.repo.UpsertSubscription(ctx, Subscription{
		UserID:    userID,
		Tier:      tier,
		ExpiresAt: expiresAt,
		UpdatedAt: now,
	})
	if err != nil {
		return Subscription{}, err
	}
	if _, err = svc.Enroll(ctx, userID, now); err != nil {
		return Subscription{}, err
	}
	if tier == TierLifetime {
		if _, err = svc.repo.UnlockAllModules(ctx, userID, now); err != nil {
			return Subscription{}, err
		}
	}
	return sub, nil
}
