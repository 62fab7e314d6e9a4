package echoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/upendo/core/catalog"
	"github.com/trezcool/upendo/core/course"
	"github.com/trezcool/upendo/core/user"
)

// grantMember provisions an active member with a subscription and an
// enrollment anchored enrolledDaysAgo in the past.
func grantMember(t *testing.T, env testEnv, email, tier string, expiresAt null.Time, enrolledDaysAgo int) user.User {
	t.Helper()

	usr := createUser(t, env.usrRepo, "Ana", email, "LePassword123", user.MemberRoles, true)
	startedAt := time.Now().UTC().AddDate(0, 0, -enrolledDaysAgo)
	if _, err := env.courseSvc.GrantAccess(context.Background(), usr.ID, tier, expiresAt, startedAt); err != nil {
		t.Fatalf("GrantAccess() failed: %v", err)
	}
	return usr
}

func lessonPath(module, lesson int) string {
	return fmt.Sprintf("/v1/course/modules/%d/lessons/%d", module, lesson)
}

func Test_courseApi_retrieveLesson(t *testing.T) {
	env := setup(t)

	active := grantMember(t, env, "active@test.tld", course.TierMonthly,
		null.TimeFrom(time.Now().UTC().AddDate(0, 0, 20)), 10)
	expired := grantMember(t, env, "expired@test.tld", course.TierWeekly,
		null.TimeFrom(time.Now().UTC().AddDate(0, 0, -3)), 30)
	nonMember := createUser(t, env.usrRepo, "Bot", "bot@test.tld", "LePassword123", nil, true)

	tests := []struct {
		name       string
		path       string
		token      string
		wantCode   int
		wantReason string
	}{
		{
			name:     "anonymous",
			path:     lessonPath(1, 1),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "no member role",
			path:     lessonPath(1, 1),
			token:    getToken(t, nonMember),
			wantCode: http.StatusForbidden,
		},
		{
			name:       "released lesson",
			path:       lessonPath(1, 1),
			token:      getToken(t, active),
			wantCode:   http.StatusOK,
			wantReason: course.AccessOK,
		},
		{
			name:       "second module ten days in",
			path:       lessonPath(2, 1),
			token:      getToken(t, active),
			wantCode:   http.StatusOK,
			wantReason: course.AccessOK,
		},
		{
			name:       "still-dripping module",
			path:       lessonPath(3, 1),
			token:      getToken(t, active),
			wantCode:   http.StatusForbidden,
			wantReason: course.AccessModuleLocked,
		},
		{
			name:       "unknown lesson",
			path:       lessonPath(1, 42),
			token:      getToken(t, active),
			wantCode:   http.StatusNotFound,
			wantReason: course.AccessNotFound,
		},
		{
			name:       "expired subscription",
			path:       lessonPath(1, 1),
			token:      getToken(t, expired),
			wantCode:   http.StatusForbidden,
			wantReason: course.AccessSubscriptionExpired,
		},
		{
			// the catalog check runs first, even for expired members
			name:       "unknown lesson with an expired subscription",
			path:       lessonPath(9, 1),
			token:      getToken(t, expired),
			wantCode:   http.StatusNotFound,
			wantReason: course.AccessNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			env.app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantReason == "" {
				return
			}
			var resp LessonAccessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshalling LessonAccessResponse: %v", err)
			}
			if resp.Reason != tt.wantReason {
				t.Errorf("Reason = %q; want %q", resp.Reason, tt.wantReason)
			}
			if tt.wantReason == course.AccessOK {
				if resp.Lesson == nil || resp.Lesson.MediaRef == "" {
					t.Errorf("allowed response has no playable lesson: %+v", resp)
				}
			} else if resp.Lesson != nil {
				t.Error("denied response leaks the lesson payload")
			}
		})
	}
}

func Test_courseApi_recordProgress(t *testing.T) {
	env := setup(t)
	usr := grantMember(t, env, "ana@test.tld", course.TierLifetime, null.Time{}, 0)
	token := getToken(t, usr)

	post := func(t *testing.T, body []byte) *httptest.ResponseRecorder {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPost, "/v1/course/progress", token, body)
		env.app.ServeHTTP(rec, req)
		return rec
	}

	t.Run("stores the sample", func(t *testing.T) {
		rec := post(t, []byte(`{"module": 1, "lesson": 1, "watch_percentage": 40}`))
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var resp ProgressSampleResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Progress.WatchPercentage != 40 || resp.Progress.IsCompleted || resp.ModuleCompleted {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("never regresses", func(t *testing.T) {
		rec := post(t, []byte(`{"module": 1, "lesson": 1, "watch_percentage": 10}`))
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var resp ProgressSampleResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Progress.WatchPercentage != 40 {
			t.Errorf("WatchPercentage = %d; want 40", resp.Progress.WatchPercentage)
		}
	})

	t.Run("completes the module", func(t *testing.T) {
		// module 5 has 3 lessons
		for lesson := 1; lesson <= 3; lesson++ {
			rec := post(t, []byte(fmt.Sprintf(`{"module": 5, "lesson": %d, "watch_percentage": 95}`, lesson)))
			if rec.Code != http.StatusOK {
				t.Fatalf("lesson %d failed! code = %v; body %s", lesson, rec.Code, rec.Body.String())
			}
			var resp ProgressSampleResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if !resp.Progress.IsCompleted {
				t.Errorf("lesson %d not completed at 95%%", lesson)
			}
			if wantDone := lesson == 3; resp.ModuleCompleted != wantDone {
				t.Errorf("lesson %d ModuleCompleted = %v; want %v", lesson, resp.ModuleCompleted, wantDone)
			}
		}
	})

	t.Run("rejects an out-of-range percentage", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"watch_percentage": "watch_percentage must be 100 or less"}`),
		}
		rec := post(t, []byte(`{"module": 1, "lesson": 1, "watch_percentage": 101}`))
		checkCodeAndData(t, tt, rec)
	})

	t.Run("rejects an unknown lesson", func(t *testing.T) {
		rec := post(t, []byte(`{"module": 9, "lesson": 1, "watch_percentage": 50}`))
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})
}

func Test_courseApi_recordProgressGated(t *testing.T) {
	env := setup(t)
	usr := grantMember(t, env, "ana@test.tld", course.TierMonthly,
		null.TimeFrom(time.Now().UTC().AddDate(0, 0, 20)), 0)

	// samples for a still-locked module are rejected, not stored
	body := []byte(`{"module": 4, "lesson": 1, "watch_percentage": 80}`)
	req, rec := newAuthRequest(http.MethodPost, "/v1/course/progress", getToken(t, usr), body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	rows, err := env.courseSvc.QueryProgress(context.Background(), usr.ID)
	if err != nil {
		t.Fatalf("QueryProgress() failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("stored %d progress rows for a locked module", len(rows))
	}
}

func Test_courseApi_overview(t *testing.T) {
	env := setup(t)
	usr := grantMember(t, env, "ana@test.tld", course.TierMonthly,
		null.TimeFrom(time.Now().UTC().AddDate(0, 0, 20)), 8)
	token := getToken(t, usr)

	for lesson := 1; lesson <= 4; lesson++ {
		body := []byte(fmt.Sprintf(`{"module": 1, "lesson": %d, "watch_percentage": 100}`, lesson))
		req, rec := newAuthRequest(http.MethodPost, "/v1/course/progress", token, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("seeding progress failed: %s", rec.Body.String())
		}
	}

	req, rec := newAuthRequest(http.MethodGet, "/v1/course/overview", token)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	var ov course.Overview
	if err := json.Unmarshal(rec.Body.Bytes(), &ov); err != nil {
		t.Fatal(err)
	}
	if ov.CompletedLessons != 4 || ov.TotalLessons != 39 {
		t.Errorf("overview = %d/%d; want 4/39", ov.CompletedLessons, ov.TotalLessons)
	}
	if len(ov.Modules) != 7 {
		t.Fatalf("Modules len = %d; want 7", len(ov.Modules))
	}
	if !ov.Modules[0].IsReleased || !ov.Modules[1].IsReleased || ov.Modules[2].IsReleased {
		t.Errorf("release states 8 days in = [%v %v %v]; want [true true false]",
			ov.Modules[0].IsReleased, ov.Modules[1].IsReleased, ov.Modules[2].IsReleased)
	}
}

func Test_courseApi_queryModules(t *testing.T) {
	env := setup(t)
	usr := grantMember(t, env, "ana@test.tld", course.TierLifetime, null.Time{}, 0)

	req, rec := newAuthRequest(http.MethodGet, "/v1/course/modules", getToken(t, usr))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	var mods []ModuleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &mods); err != nil {
		t.Fatal(err)
	}
	if len(mods) != 7 {
		t.Fatalf("got %d modules; want 7", len(mods))
	}
	for i, m := range mods {
		if m.Number != i+1 || m.ModuleNumber != i+1 {
			t.Errorf("modules out of order at index %d: %+v", i, m)
		}
		// a lifetime member sees everything released
		if !m.IsReleased {
			t.Errorf("module %d locked for a lifetime member", m.Number)
		}
		if m.Title == "" {
			t.Errorf("module %d has no title", m.Number)
		}
	}
}

func Test_courseApi_nextLesson(t *testing.T) {
	env := setup(t)
	usr := grantMember(t, env, "ana@test.tld", course.TierLifetime, null.Time{}, 0)
	token := getToken(t, usr)

	firstLesson, err := catalog.Get(1, 1)
	if err != nil {
		t.Fatal(err)
	}

	// nothing watched yet: start at the top
	tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, firstLesson)}
	req, rec := newAuthRequest(http.MethodGet, "/v1/course/next-lesson", token)
	env.app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)

	// an in-flight lesson takes over
	body := []byte(`{"module": 2, "lesson": 3, "watch_percentage": 50}`)
	req, rec = newAuthRequest(http.MethodPost, "/v1/course/progress", token, body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("seeding progress failed: %s", rec.Body.String())
	}

	inFlight, err := catalog.Get(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	tt = httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, inFlight)}
	req, rec = newAuthRequest(http.MethodGet, "/v1/course/next-lesson", token)
	env.app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_courseApi_queryProgress(t *testing.T) {
	env := setup(t)
	usr := grantMember(t, env, "ana@test.tld", course.TierLifetime, null.Time{}, 0)
	token := getToken(t, usr)

	tt := httpTest{wantCode: http.StatusOK, wantData: []byte(`[]`)}
	req, rec := newAuthRequest(http.MethodGet, "/v1/course/progress", token)
	env.app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)

	for _, sample := range []string{
		`{"module": 1, "lesson": 1, "watch_percentage": 100}`,
		`{"module": 1, "lesson": 2, "watch_percentage": 30}`,
		`{"module": 2, "lesson": 1, "watch_percentage": 60}`,
	} {
		req, rec = newAuthRequest(http.MethodPost, "/v1/course/progress", token, []byte(sample))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("seeding progress failed: %s", rec.Body.String())
		}
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/course/progress", token)
	env.app.ServeHTTP(rec, req)
	var rows []course.LessonProgress
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows; want 3", len(rows))
	}

	// scoped to one module
	req, rec = newAuthRequest(http.MethodGet, "/v1/course/progress?module=1", token)
	env.app.ServeHTTP(rec, req)
	rows = rows[:0]
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows for module 1; want 2", len(rows))
	}
	for _, p := range rows {
		if p.Module != 1 {
			t.Errorf("row for module %d leaked into the module 1 query", p.Module)
		}
	}
}
