package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/upendo/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) GetEnrollment(ctx context.Context, userID string) (course.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if enr, ok := repo.db.enrollments[userID]; ok {
		return *enr, nil
	}
	return course.Enrollment{}, course.ErrNoEnrollment
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// the first insert wins; the drip anchor must never move
	if existing, ok := repo.db.enrollments[enr.UserID]; ok {
		return *existing, nil
	}
	repo.db.enrollments[enr.UserID] = &enr
	return enr, nil
}

func (repo *courseRepository) UnlockAllModules(ctx context.Context, userID string, at time.Time) (course.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	enr, ok := repo.db.enrollments[userID]
	if !ok {
		return course.Enrollment{}, course.ErrNoEnrollment
	}
	if !enr.UnlockedAt.Valid {
		enr.UnlockedAt = null.TimeFrom(at.UTC())
	}
	return *enr, nil
}

func (repo *courseRepository) GetSubscription(ctx context.Context, userID string) (course.Subscription, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sub, ok := repo.db.subscriptions[userID]; ok {
		return *sub, nil
	}
	return course.Subscription{}, course.ErrNoSubscription
}

func (repo *courseRepository) UpsertSubscription(ctx context.Context, sub course.Subscription) (course.Subscription, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.subscriptions[sub.UserID] = &sub
	return sub, nil
}

func (repo *courseRepository) UpsertLessonProgress(ctx context.Context, p course.LessonProgress) (course.LessonProgress, bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := progressKey{p.UserID, p.Module, p.Lesson}
	existing, ok := repo.db.progress[key]
	if !ok {
		repo.db.progress[key] = &p
		return p, p.IsCompleted, nil
	}

	// high-water merge; mirrors the SQL upsert. The completion flip is
	// decided under the lock so only one writer observes it.
	completedNow := p.IsCompleted && !existing.IsCompleted
	if p.WatchPercentage > existing.WatchPercentage {
		existing.WatchPercentage = p.WatchPercentage
	}
	existing.IsCompleted = existing.IsCompleted || p.IsCompleted
	if p.LastWatchedAt.After(existing.LastWatchedAt) {
		existing.LastWatchedAt = p.LastWatchedAt
	}
	if !existing.CompletedAt.Valid {
		existing.CompletedAt = p.CompletedAt
	}
	return *existing, completedNow, nil
}

func (repo *courseRepository) GetLessonProgress(ctx context.Context, userID string, module, lesson int) (course.LessonProgress, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.progress[progressKey{userID, module, lesson}]; ok {
		return *p, nil
	}
	return course.LessonProgress{}, course.ErrNoProgress
}

func (repo *courseRepository) QueryLessonProgress(ctx context.Context, userID string, module ...int) ([]course.LessonProgress, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	progress := make([]course.LessonProgress, 0)
	for key, p := range repo.db.progress {
		if key.userID != userID {
			continue
		}
		if len(module) > 0 && key.module != module[0] {
			continue
		}
		progress = append(progress, *p)
	}
	sort.Slice(progress, func(i, j int) bool {
		if progress[i].Module != progress[j].Module {
			return progress[i].Module < progress[j].Module
		}
		return progress[i].Lesson < progress[j].Lesson
	})
	return progress, nil
}
