package course_test

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/upendo/core/catalog"
	"github.com/trezcool/upendo/core/course"
)

func TestRecordSampleMonotonicity(t *testing.T) {
	svc, _ := newTestService(t)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	p, _, err := svc.RecordSample(ctx, "u1", 1, 1, 30, at)
	if err != nil {
		t.Fatalf("RecordSample(30) failed: %v", err)
	}
	if p.WatchPercentage != 30 || p.IsCompleted {
		t.Fatalf("RecordSample(30) = %%%d completed=%v", p.WatchPercentage, p.IsCompleted)
	}

	// an out-of-order lower sample never regresses the stored mark
	p, _, err = svc.RecordSample(ctx, "u1", 1, 1, 20, at.Add(time.Minute))
	if err != nil {
		t.Fatalf("RecordSample(20) failed: %v", err)
	}
	if p.WatchPercentage != 30 {
		t.Errorf("WatchPercentage = %d after lower sample; want 30", p.WatchPercentage)
	}
	if !p.LastWatchedAt.Equal(at.Add(time.Minute)) {
		t.Errorf("LastWatchedAt = %v; want %v", p.LastWatchedAt, at.Add(time.Minute))
	}

	p, _, err = svc.RecordSample(ctx, "u1", 1, 1, 95, at.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("RecordSample(95) failed: %v", err)
	}
	if p.WatchPercentage != 95 || !p.IsCompleted {
		t.Errorf("RecordSample(95) = %%%d completed=%v; want 95, true", p.WatchPercentage, p.IsCompleted)
	}
	if !p.CompletedAt.Valid {
		t.Error("CompletedAt not set on completion")
	}
}

func TestRecordSampleIdempotentReplay(t *testing.T) {
	svc, _ := newTestService(t)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	first, _, err := svc.RecordSample(ctx, "u1", 2, 3, 55, at)
	if err != nil {
		t.Fatalf("RecordSample() failed: %v", err)
	}
	replay, _, err := svc.RecordSample(ctx, "u1", 2, 3, 55, at)
	if err != nil {
		t.Fatalf("RecordSample() replay failed: %v", err)
	}
	if replay != first {
		t.Errorf("replay changed the row: %+v != %+v", replay, first)
	}
}

func TestCompletionIsSticky(t *testing.T) {
	svc, _ := newTestService(t)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if _, _, err := svc.RecordSample(ctx, "u1", 1, 1, 92, at); err != nil {
		t.Fatalf("RecordSample(92) failed: %v", err)
	}

	// rewatching from the start must not clear completion
	p, _, err := svc.RecordSample(ctx, "u1", 1, 1, 10, at.Add(time.Hour))
	if err != nil {
		t.Fatalf("RecordSample(10) failed: %v", err)
	}
	if !p.IsCompleted {
		t.Error("IsCompleted reverted after a low sample")
	}
	if p.WatchPercentage != 92 {
		t.Errorf("WatchPercentage = %d; want 92", p.WatchPercentage)
	}
	if !p.CompletedAt.Valid || !p.CompletedAt.Time.Equal(at) {
		t.Errorf("CompletedAt = %v; want %v", p.CompletedAt, at)
	}
}

func TestRecordSampleValidation(t *testing.T) {
	svc, _ := newTestService(t)
	at := time.Now().UTC()

	if _, _, err := svc.RecordSample(ctx, "u1", 1, 1, -1, at); err != course.ErrInvalidPercentage {
		t.Errorf("RecordSample(-1) err = %v; want %v", err, course.ErrInvalidPercentage)
	}
	if _, _, err := svc.RecordSample(ctx, "u1", 1, 1, 101, at); err != course.ErrInvalidPercentage {
		t.Errorf("RecordSample(101) err = %v; want %v", err, course.ErrInvalidPercentage)
	}
	if _, _, err := svc.RecordSample(ctx, "u1", 9, 1, 50, at); err != catalog.ErrNotFound {
		t.Errorf("RecordSample(unknown lesson) err = %v; want %v", err, catalog.ErrNotFound)
	}
}

func TestCompletionRatios(t *testing.T) {
	svc, _ := newTestService(t)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// complete 7 of module 1's 8 lessons, plus 3 in module 2
	for lesson := 1; lesson <= 7; lesson++ {
		if _, _, err := svc.RecordSample(ctx, "u1", 1, lesson, 100, at); err != nil {
			t.Fatalf("RecordSample(1, %d) failed: %v", lesson, err)
		}
	}
	for lesson := 1; lesson <= 3; lesson++ {
		if _, _, err := svc.RecordSample(ctx, "u1", 2, lesson, 90, at); err != nil {
			t.Fatalf("RecordSample(2, %d) failed: %v", lesson, err)
		}
	}
	// a started-but-incomplete lesson does not count
	if _, _, err := svc.RecordSample(ctx, "u1", 1, 8, 89, at); err != nil {
		t.Fatalf("RecordSample(1, 8) failed: %v", err)
	}

	ratio, err := svc.CompletionRatio(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("CompletionRatio(1) failed: %v", err)
	}
	if want := 7.0 / 8; ratio != want {
		t.Errorf("CompletionRatio(1) = %v; want %v", ratio, want)
	}

	global, err := svc.GlobalCompletionRatio(ctx, "u1")
	if err != nil {
		t.Fatalf("GlobalCompletionRatio() failed: %v", err)
	}
	if want := 10.0 / 39; global != want {
		t.Errorf("GlobalCompletionRatio() = %v; want %v", global, want)
	}

	// another member's rows never leak in
	other, err := svc.GlobalCompletionRatio(ctx, "u2")
	if err != nil {
		t.Fatalf("GlobalCompletionRatio(u2) failed: %v", err)
	}
	if other != 0 {
		t.Errorf("GlobalCompletionRatio(u2) = %v; want 0", other)
	}
}

func TestModuleCompletedSignal(t *testing.T) {
	svc, _ := newTestService(t)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	var signaled []int
	svc.OnModuleCompleted(func(userID string, moduleNumber int) {
		signaled = append(signaled, moduleNumber)
	})

	// module 5 has 3 lessons
	for lesson := 1; lesson <= 2; lesson++ {
		_, done, err := svc.RecordSample(ctx, "u1", 5, lesson, 100, at)
		if err != nil {
			t.Fatalf("RecordSample(5, %d) failed: %v", lesson, err)
		}
		if done {
			t.Errorf("module completed after lesson %d of 3", lesson)
		}
	}

	_, done, err := svc.RecordSample(ctx, "u1", 5, 3, 95, at)
	if err != nil {
		t.Fatalf("RecordSample(5, 3) failed: %v", err)
	}
	if !done {
		t.Error("module completed signal missing on the last lesson")
	}
	if len(signaled) != 1 || signaled[0] != 5 {
		t.Errorf("OnModuleCompleted calls = %v; want [5]", signaled)
	}

	// replaying the completing sample must not fire the signal again
	_, done, err = svc.RecordSample(ctx, "u1", 5, 3, 100, at.Add(time.Minute))
	if err != nil {
		t.Fatalf("RecordSample(5, 3) replay failed: %v", err)
	}
	if done {
		t.Error("module completed signaled twice")
	}
	if len(signaled) != 1 {
		t.Errorf("OnModuleCompleted calls = %v; want [5]", signaled)
	}
}

func TestNextLesson(t *testing.T) {
	svc, _ := newTestService(t)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if _, err := svc.NextLesson(ctx, "u1"); err != course.ErrNoProgress {
		t.Fatalf("NextLesson() on empty history err = %v; want %v", err, course.ErrNoProgress)
	}

	// an in-flight lesson wins
	if _, _, err := svc.RecordSample(ctx, "u1", 1, 1, 100, at); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.RecordSample(ctx, "u1", 1, 2, 40, at.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	l, err := svc.NextLesson(ctx, "u1")
	if err != nil {
		t.Fatalf("NextLesson() failed: %v", err)
	}
	if l.Module != 1 || l.Number != 2 {
		t.Errorf("NextLesson() = (%d, %d); want (1, 2)", l.Module, l.Number)
	}

	// everything complete so far: suggest the lesson right after
	if _, _, err := svc.RecordSample(ctx, "u1", 1, 2, 100, at.Add(2*time.Minute)); err != nil {
		t.Fatal(err)
	}
	l, err = svc.NextLesson(ctx, "u1")
	if err != nil {
		t.Fatalf("NextLesson() failed: %v", err)
	}
	if l.Module != 1 || l.Number != 3 {
		t.Errorf("NextLesson() = (%d, %d); want (1, 3)", l.Module, l.Number)
	}
}

func TestUpsertReportsCompletionFlipOnce(t *testing.T) {
	_, repo := newTestService(t)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	sample := course.LessonProgress{
		UserID:          "u1",
		Module:          1,
		Lesson:          1,
		WatchPercentage: 95,
		IsCompleted:     true,
		LastWatchedAt:   at,
		CompletedAt:     null.TimeFrom(at),
	}

	_, completedNow, err := repo.UpsertLessonProgress(ctx, sample)
	if err != nil {
		t.Fatalf("UpsertLessonProgress() failed: %v", err)
	}
	if !completedNow {
		t.Error("first completing write did not report the flip")
	}

	// a duplicate delivery of the same sample must not claim it again
	_, completedNow, err = repo.UpsertLessonProgress(ctx, sample)
	if err != nil {
		t.Fatalf("UpsertLessonProgress() failed: %v", err)
	}
	if completedNow {
		t.Error("duplicate completing write reported the flip again")
	}
}

func TestNextLessonAllComplete(t *testing.T) {
	svc, _ := newTestService(t)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// finish the whole catalog; identical timestamps on purpose, samples
	// may arrive in the same tick
	for _, m := range catalog.Modules() {
		ls, err := catalog.Lessons(m.Number)
		if err != nil {
			t.Fatal(err)
		}
		for _, l := range ls {
			if _, _, err := svc.RecordSample(ctx, "u1", l.Module, l.Number, 100, at); err != nil {
				t.Fatal(err)
			}
		}
	}

	if _, err := svc.NextLesson(ctx, "u1"); err != course.ErrAllComplete {
		t.Errorf("NextLesson() after finishing everything err = %v; want %v", err, course.ErrAllComplete)
	}
}

func TestNextLessonRollsOverModules(t *testing.T) {
	svc, _ := newTestService(t)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// last lesson of module 1 was the most recent watch
	if _, _, err := svc.RecordSample(ctx, "u1", 1, 8, 100, at); err != nil {
		t.Fatal(err)
	}
	l, err := svc.NextLesson(ctx, "u1")
	if err != nil {
		t.Fatalf("NextLesson() failed: %v", err)
	}
	if l.Module != 2 || l.Number != 1 {
		t.Errorf("NextLesson() = (%d, %d); want (2, 1)", l.Module, l.Number)
	}
}

func TestOverview(t *testing.T) {
	svc, _ := newTestService(t)
	enroll(t, svc, "u1", enrolledAt)
	at := enrolledAt.Add(time.Hour)

	for lesson := 1; lesson <= 4; lesson++ {
		if _, _, err := svc.RecordSample(ctx, "u1", 1, lesson, 100, at); err != nil {
			t.Fatal(err)
		}
	}

	ov, err := svc.Overview(ctx, "u1", enrolledAt.AddDate(0, 0, 8))
	if err != nil {
		t.Fatalf("Overview() failed: %v", err)
	}
	if ov.TotalLessons != 39 {
		t.Errorf("TotalLessons = %d; want 39", ov.TotalLessons)
	}
	if ov.CompletedLessons != 4 {
		t.Errorf("CompletedLessons = %d; want 4", ov.CompletedLessons)
	}
	if want := 4.0 / 39; ov.GlobalRatio != want {
		t.Errorf("GlobalRatio = %v; want %v", ov.GlobalRatio, want)
	}
	if len(ov.Modules) != 7 {
		t.Fatalf("Modules len = %d; want 7", len(ov.Modules))
	}

	m1 := ov.Modules[0]
	if m1.CompletedLessons != 4 || m1.TotalLessons != 8 || m1.CompletionRatio != 0.5 {
		t.Errorf("module 1 overview = %+v", m1)
	}
	if !m1.IsReleased || !ov.Modules[1].IsReleased {
		t.Error("modules 1-2 should be released 8 days in")
	}
	if ov.Modules[2].IsReleased {
		t.Error("module 3 should still be locked 8 days in")
	}

	if _, err = svc.Overview(ctx, "nobody", at); err != course.ErrNoEnrollment {
		t.Errorf("Overview(nobody) err = %v; want %v", err, course.ErrNoEnrollment)
	}
}
