package course

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/upendo/core/catalog"
)

// CompletionThreshold is the watch percentage at which a lesson counts as
// completed. Completion is sticky: it never reverts once reached.
const CompletionThreshold = 90

var (
	// errors
	ErrInvalidPercentage = errors.New("watch percentage must be within [0,100]")
)

// RecordSample persists a periodic watch-percentage sample for a lesson.
// Samples may arrive duplicated or out of order; the stored high-water mark
// never regresses and replaying an identical sample changes nothing.
//
// The returned bool signals that this sample completed the module's last
// remaining lesson (the module completion ratio transitioned to 1.0).
func (svc *Service) RecordSample(
	ctx context.Context,
	userID string,
	module, lesson, percentage int,
	observedAt time.Time,
) (LessonProgress, bool, error) {
	if percentage < 0 || percentage > 100 {
		return LessonProgress{}, false, ErrInvalidPercentage
	}
	if _, err := catalog.Get(module, lesson); err != nil {
		return LessonProgress{}, false, err
	}

	observedAt = observedAt.UTC()
	p := LessonProgress{
		UserID:          userID,
		Module:          module,
		Lesson:          lesson,
		WatchPercentage: percentage,
		IsCompleted:     percentage >= CompletionThreshold,
		LastWatchedAt:   observedAt,
	}
	if p.IsCompleted {
		p.CompletedAt = null.TimeFrom(observedAt)
	}

	// the repository reports the completion transition so concurrent
	// duplicates of a completing sample cannot both claim it
	p, completedNow, err := svc.repo.UpsertLessonProgress(ctx, p)
	if err != nil {
		return LessonProgress{}, false, err
	}

	var moduleCompleted bool
	if completedNow {
		ratio, err := svc.CompletionRatio(ctx, userID, module)
		if err != nil {
			return p, false, err
		}
		if ratio == 1 {
			moduleCompleted = true
			if svc.moduleCompletedFn != nil {
				svc.moduleCompletedFn(userID, module)
			}
		}
	}
	return p, moduleCompleted, nil
}

// CompletionRatio returns completed lessons / total lessons for a module.
func (svc *Service) CompletionRatio(ctx context.Context, userID string, moduleNumber int) (float64, error) {
	total, err := catalog.LessonCount(moduleNumber)
	if err != nil {
		return 0, err
	}
	rows, err := svc.repo.QueryLessonProgress(ctx, userID, moduleNumber)
	if err != nil {
		return 0, err
	}
	return float64(countCompleted(rows)) / float64(total), nil
}

// GlobalCompletionRatio returns completed lessons / total lessons across the
// full catalog.
func (svc *Service) GlobalCompletionRatio(ctx context.Context, userID string) (float64, error) {
	rows, err := svc.repo.QueryLessonProgress(ctx, userID)
	if err != nil {
		return 0, err
	}
	return float64(countCompleted(rows)) / float64(catalog.TotalLessons()), nil
}

func countCompleted(rows []LessonProgress) int {
	var n int
	for _, p := range rows {
		if p.IsCompleted {
			n++
		}
	}
	return n
}

type (
	// Overview aggregates a member's course state for the dashboard.
	Overview struct {
		GlobalRatio      float64          `json:"global_ratio"`
		CompletedLessons int              `json:"completed_lessons"`
		TotalLessons     int              `json:"total_lessons"`
		Modules          []ModuleOverview `json:"modules"`
	}

	ModuleOverview struct {
		ModuleRelease
		CompletionRatio  float64 `json:"completion_ratio"`
		CompletedLessons int     `json:"completed_lessons"`
		TotalLessons     int     `json:"total_lessons"`
	}
)

// Overview computes release and completion state for every module.
func (svc *Service) Overview(ctx context.Context, userID string, now time.Time) (Overview, error) {
	enr, err := svc.repo.GetEnrollment(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	rows, err := svc.repo.QueryLessonProgress(ctx, userID)
	if err != nil {
		return Overview{}, err
	}

	completedByModule := make(map[int]int)
	for _, p := range rows {
		if p.IsCompleted {
			completedByModule[p.Module]++
		}
	}

	releases := svc.ModuleReleases(enr, now)
	mods := make([]ModuleOverview, 0, len(releases))
	var completed int
	for _, rel := range releases {
		total, _ := catalog.LessonCount(rel.ModuleNumber)
		done := completedByModule[rel.ModuleNumber]
		completed += done
		mods = append(mods, ModuleOverview{
			ModuleRelease:    rel,
			CompletionRatio:  float64(done) / float64(total),
			CompletedLessons: done,
			TotalLessons:     total,
		})
	}

	return Overview{
		GlobalRatio:      float64(completed) / float64(catalog.TotalLessons()),
		CompletedLessons: completed,
		TotalLessons:     catalog.TotalLessons(),
		Modules:          mods,
	}, nil
}

// NextLesson returns the lesson a member should continue with: the one
// watched most recently that is not yet completed, else the first lesson
// right after their last completed one. ErrNoProgress when nothing was
// ever started, ErrAllComplete once every catalog lesson is completed.
func (svc *Service) NextLesson(ctx context.Context, userID string) (catalog.Lesson, error) {
	rows, err := svc.repo.QueryLessonProgress(ctx, userID)
	if err != nil {
		return catalog.Lesson{}, err
	}
	if len(rows) == 0 {
		return catalog.Lesson{}, ErrNoProgress
	}

	var last LessonProgress
	done := make(map[[2]int]bool, len(rows))
	for _, p := range rows {
		if p.IsCompleted {
			done[[2]int{p.Module, p.Lesson}] = true
			continue
		}
		if p.LastWatchedAt.After(last.LastWatchedAt) {
			last = p
		}
	}
	if last.UserID != "" {
		return catalog.Get(last.Module, last.Lesson)
	}

	// everything watched so far is complete; suggest the next lesson after
	// the most recently completed one, unless it is already behind them
	for _, p := range rows {
		if p.LastWatchedAt.After(last.LastWatchedAt) {
			last = p
		}
	}
	if l, err := catalog.Get(last.Module, last.Lesson+1); err == nil && !done[[2]int{l.Module, l.Number}] {
		return l, nil
	}
	if ls, err := catalog.Lessons(last.Module + 1); err == nil && len(ls) > 0 && !done[[2]int{ls[0].Module, ls[0].Number}] {
		return ls[0], nil
	}

	// fall back to the first incomplete lesson in catalog order
	for _, m := range catalog.Modules() {
		ls, err := catalog.Lessons(m.Number)
		if err != nil {
			continue
		}
		for _, l := range ls {
			if !done[[2]int{l.Module, l.Number}] {
				return l, nil
			}
		}
	}
	return catalog.Lesson{}, ErrAllComplete
}
