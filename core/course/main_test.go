package course_test

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/upendo/core"
	"github.com/trezcool/upendo/core/course"
	inmemdb "github.com/trezcool/upendo/storage/database/inmem"
)

var ctx = context.Background()

func newTestService(t *testing.T) (*course.Service, course.Repository) {
	t.Helper()
	repo := inmemdb.NewCourseRepository(inmemdb.NewDB())
	conf := &core.Config{Course: core.CourseConfig{ReleaseIntervalDays: 7}}
	return course.NewService(repo, conf), repo
}

func enroll(t *testing.T, svc *course.Service, userID string, startedAt time.Time) course.Enrollment {
	t.Helper()
	enr, err := svc.Enroll(ctx, userID, startedAt)
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	return enr
}

func subscribe(t *testing.T, repo course.Repository, userID, tier string, expiresAt null.Time) course.Subscription {
	t.Helper()
	sub, err := repo.UpsertSubscription(ctx, course.Subscription{
		UserID:    userID,
		Tier:      tier,
		ExpiresAt: expiresAt,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("UpsertSubscription() failed: %v", err)
	}
	return sub
}
