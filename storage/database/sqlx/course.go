package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/upendo/core/course"
)

type enrollmentRow struct {
	UserID     string    `db:"user_id"`
	StartedAt  time.Time `db:"started_at"`
	UnlockedAt null.Time `db:"unlocked_at"`
}

func (r enrollmentRow) enrollment() course.Enrollment {
	return course.Enrollment{UserID: r.UserID, StartedAt: r.StartedAt, UnlockedAt: r.UnlockedAt}
}

type subscriptionRow struct {
	UserID    string    `db:"user_id"`
	Tier      string    `db:"tier"`
	ExpiresAt null.Time `db:"expires_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r subscriptionRow) subscription() course.Subscription {
	return course.Subscription{UserID: r.UserID, Tier: r.Tier, ExpiresAt: r.ExpiresAt, UpdatedAt: r.UpdatedAt}
}

type lessonProgressRow struct {
	UserID          string    `db:"user_id"`
	Module          int       `db:"module"`
	Lesson          int       `db:"lesson"`
	WatchPercentage int       `db:"watch_percentage"`
	IsCompleted     bool      `db:"is_completed"`
	LastWatchedAt   time.Time `db:"last_watched_at"`
	CompletedAt     null.Time `db:"completed_at"`
}

func (r lessonProgressRow) progress() course.LessonProgress {
	return course.LessonProgress{
		UserID:          r.UserID,
		Module:          r.Module,
		Lesson:          r.Lesson,
		WatchPercentage: r.WatchPercentage,
		IsCompleted:     r.IsCompleted,
		LastWatchedAt:   r.LastWatchedAt,
		CompletedAt:     r.CompletedAt,
	}
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) GetEnrollment(ctx context.Context, userID string) (course.Enrollment, error) {
	var row enrollmentRow
	query := repo.db.Rebind(`SELECT * FROM enrollments WHERE user_id = ?`)
	if err := repo.db.GetContext(ctx, &row, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return course.Enrollment{}, course.ErrNoEnrollment
		}
		return course.Enrollment{}, errors.Wrap(err, "getting enrollment")
	}
	return row.enrollment(), nil
}

func (repo courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment) (course.Enrollment, error) {
	// the first insert wins; the drip anchor must never move
	query := repo.db.Rebind(`
		INSERT INTO enrollments (user_id, started_at, unlocked_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING`)
	if _, err := repo.db.ExecContext(ctx, query, enr.UserID, enr.StartedAt.UTC(), enr.UnlockedAt); err != nil {
		return course.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return repo.GetEnrollment(ctx, enr.UserID)
}

func (repo courseRepository) UnlockAllModules(ctx context.Context, userID string, at time.Time) (course.Enrollment, error) {
	var row enrollmentRow
	query := repo.db.Rebind(`
		UPDATE enrollments
		SET unlocked_at = COALESCE(unlocked_at, ?)
		WHERE user_id = ?
		RETURNING *`)
	if err := repo.db.GetContext(ctx, &row, query, at.UTC(), userID); err != nil {
		if err == sql.ErrNoRows {
			return course.Enrollment{}, course.ErrNoEnrollment
		}
		return course.Enrollment{}, errors.Wrap(err, "unlocking enrollment")
	}
	return row.enrollment(), nil
}

func (repo courseRepository) GetSubscription(ctx context.Context, userID string) (course.Subscription, error) {
	var row subscriptionRow
	query := repo.db.Rebind(`SELECT * FROM subscriptions WHERE user_id = ?`)
	if err := repo.db.GetContext(ctx, &row, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return course.Subscription{}, course.ErrNoSubscription
		}
		return course.Subscription{}, errors.Wrap(err, "getting subscription")
	}
	return row.subscription(), nil
}

func (repo courseRepository) UpsertSubscription(ctx context.Context, sub course.Subscription) (course.Subscription, error) {
	var row subscriptionRow
	query := repo.db.Rebind(`
		INSERT INTO subscriptions (user_id, tier, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET tier = EXCLUDED.tier, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at
		RETURNING *`)
	if err := repo.db.GetContext(ctx, &row, query, sub.UserID, sub.Tier, sub.ExpiresAt, sub.UpdatedAt.UTC()); err != nil {
		return course.Subscription{}, errors.Wrap(err, "upserting subscription")
	}
	return row.subscription(), nil
}

func (repo courseRepository) UpsertLessonProgress(ctx context.Context, p course.LessonProgress) (course.LessonProgress, bool, error) {
	// the merge runs in the DB so concurrent samples cannot regress the
	// stored high-water mark or revert completion. The row lock taken by
	// the read serializes writers per key, so the completion flip is
	// observed by exactly one of them.
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return course.LessonProgress{}, false, errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback() // nolint

	var wasCompleted bool
	query := repo.db.Rebind(`SELECT is_completed FROM lesson_progress WHERE user_id = ? AND module = ? AND lesson = ? FOR UPDATE`)
	if err = tx.GetContext(ctx, &wasCompleted, query, p.UserID, p.Module, p.Lesson); err != nil && err != sql.ErrNoRows {
		return course.LessonProgress{}, false, errors.Wrap(err, "locking lesson progress")
	}

	var row lessonProgressRow
	query = repo.db.Rebind(`
		INSERT INTO lesson_progress (user_id, module, lesson, watch_percentage, is_completed, last_watched_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, module, lesson) DO UPDATE
		SET watch_percentage = GREATEST(lesson_progress.watch_percentage, EXCLUDED.watch_percentage),
			is_completed = lesson_progress.is_completed OR EXCLUDED.is_completed,
			last_watched_at = GREATEST(lesson_progress.last_watched_at, EXCLUDED.last_watched_at),
			completed_at = COALESCE(lesson_progress.completed_at, EXCLUDED.completed_at)
		RETURNING *`)
	err = tx.GetContext(
		ctx, &row, query,
		p.UserID, p.Module, p.Lesson, p.WatchPercentage, p.IsCompleted, p.LastWatchedAt.UTC(), p.CompletedAt,
	)
	if err != nil {
		return course.LessonProgress{}, false, errors.Wrap(err, "upserting lesson progress")
	}
	if err = tx.Commit(); err != nil {
		return course.LessonProgress{}, false, errors.Wrap(err, "committing lesson progress")
	}
	return row.progress(), row.IsCompleted && !wasCompleted, nil
}

func (repo courseRepository) GetLessonProgress(ctx context.Context, userID string, module, lesson int) (course.LessonProgress, error) {
	var row lessonProgressRow
	query := repo.db.Rebind(`SELECT * FROM lesson_progress WHERE user_id = ? AND module = ? AND lesson = ?`)
	if err := repo.db.GetContext(ctx, &row, query, userID, module, lesson); err != nil {
		if err == sql.ErrNoRows {
			return course.LessonProgress{}, course.ErrNoProgress
		}
		return course.LessonProgress{}, errors.Wrap(err, "getting lesson progress")
	}
	return row.progress(), nil
}

func (repo courseRepository) QueryLessonProgress(ctx context.Context, userID string, module ...int) ([]course.LessonProgress, error) {
	query := `SELECT * FROM lesson_progress WHERE user_id = ?`
	args := []interface{}{userID}
	if len(module) > 0 {
		query += ` AND module = ?`
		args = append(args, module[0])
	}
	query += ` ORDER BY module, lesson`

	var rows []lessonProgressRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying lesson progress")
	}
	progress := make([]course.LessonProgress, 0, len(rows))
	for _, row := range rows {
		progress = append(progress, row.progress())
	}
	return progress, nil
}
