package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/upendo/core/catalog"
	"github.com/trezcool/upendo/core/course"
)

type courseApi struct {
	svc      *course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := courseApi{
		svc:      deps.CourseSvc,
		validate: deps.Validate,
	}

	cg := g.Group("/course", jwt, memberMiddleware())
	cg.GET("/overview", api.overview)
	cg.GET("/modules", api.queryModules)
	cg.GET("/modules/:module/lessons/:lesson", api.retrieveLesson)
	cg.GET("/next-lesson", api.nextLesson)
	cg.GET("/progress", api.queryProgress)
	cg.POST("/progress", api.recordProgress)
}

// Handlers

func (api *courseApi) overview(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	overview, err := api.svc.Overview(ctx.Request().Context(), claims.Subject, time.Now().UTC())
	if err != nil {
		if errors.Cause(err) == course.ErrNoEnrollment {
			return errHttpNotFound
		}
		return errors.Wrap(err, "computing overview")
	}
	return ctx.JSON(http.StatusOK, overview)
}

func (api *courseApi) queryModules(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	enr, err := api.svc.GetEnrollment(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == course.ErrNoEnrollment {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting enrollment")
	}

	releases := api.svc.ModuleReleases(enr, time.Now().UTC())
	resp := make([]ModuleResponse, 0, len(releases))
	for _, rel := range releases {
		mod, _ := catalog.GetModule(rel.ModuleNumber)
		resp = append(resp, ModuleResponse{Module: mod, ModuleRelease: rel})
	}
	return ctx.JSON(http.StatusOK, resp)
}

// retrieveLesson runs the access decision for a lesson and returns its
// playable payload when allowed. Denials come back as structured JSON: 404
// for an unknown lesson, 403 with the decision for everything else.
func (api *courseApi) retrieveLesson(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	module, lesson, err := lessonParams(ctx)
	if err != nil {
		return errHttpNotFound
	}

	decision, err := api.svc.CanAccessLesson(ctx.Request().Context(), claims.Subject, module, lesson, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "checking lesson access")
	}
	if !decision.Allowed {
		if decision.Reason == course.AccessNotFound {
			return ctx.JSON(http.StatusNotFound, LessonAccessResponse{AccessDecision: decision})
		}
		return ctx.JSON(http.StatusForbidden, LessonAccessResponse{AccessDecision: decision})
	}

	l, err := catalog.Get(module, lesson)
	if err != nil {
		return errHttpNotFound
	}
	resp := LessonAccessResponse{AccessDecision: decision, Lesson: &l}

	if p, err := api.svc.GetLessonProgress(ctx.Request().Context(), claims.Subject, module, lesson); err == nil {
		resp.Progress = &p
	} else if errors.Cause(err) != course.ErrNoProgress {
		return errors.Wrap(err, "getting lesson progress")
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *courseApi) nextLesson(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	l, err := api.svc.NextLesson(ctx.Request().Context(), claims.Subject)
	if err != nil {
		switch errors.Cause(err) {
		case course.ErrNoProgress:
			// nothing watched yet; start at the beginning
			if ls, lerr := catalog.Lessons(1); lerr == nil && len(ls) > 0 {
				return ctx.JSON(http.StatusOK, ls[0])
			}
			return errHttpNotFound
		case course.ErrAllComplete:
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding next lesson")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *courseApi) queryProgress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var module []int
	if param := ctx.QueryParam("module"); param != "" {
		m, err := strconv.Atoi(param)
		if err != nil {
			return errHttpNotFound
		}
		module = append(module, m)
	}

	rows, err := api.svc.QueryProgress(ctx.Request().Context(), claims.Subject, module...)
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}
	if rows == nil {
		rows = []course.LessonProgress{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *courseApi) recordProgress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data ProgressSampleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgressSampleRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	now := time.Now().UTC()

	// samples only count for lessons the member may watch right now
	decision, err := api.svc.CanAccessLesson(ctx.Request().Context(), claims.Subject, data.Module, data.Lesson, now)
	if err != nil {
		return errors.Wrap(err, "checking lesson access")
	}
	if !decision.Allowed {
		if decision.Reason == course.AccessNotFound {
			return ctx.JSON(http.StatusNotFound, LessonAccessResponse{AccessDecision: decision})
		}
		return ctx.JSON(http.StatusForbidden, LessonAccessResponse{AccessDecision: decision})
	}

	p, moduleCompleted, err := api.svc.RecordSample(
		ctx.Request().Context(), claims.Subject, data.Module, data.Lesson, data.WatchPercentage, now)
	if err != nil {
		return errors.Wrap(err, "recording progress sample")
	}
	return ctx.JSON(http.StatusOK, ProgressSampleResponse{Progress: p, ModuleCompleted: moduleCompleted})
}

func lessonParams(ctx echo.Context) (int, int, error) {
	module, err := strconv.Atoi(ctx.Param("module"))
	if err != nil {
		return 0, 0, err
	}
	lesson, err := strconv.Atoi(ctx.Param("lesson"))
	if err != nil {
		return 0, 0, err
	}
	return module, lesson, nil
}

type (
	ModuleResponse struct {
		catalog.Module
		course.ModuleRelease
	}

	LessonAccessResponse struct {
		course.AccessDecision
		Lesson   *catalog.Lesson        `json:"lesson,omitempty"`
		Progress *course.LessonProgress `json:"progress,omitempty"`
	}

	ProgressSampleRequest struct {
		Module          int `json:"module" validate:"required,min=1"`
		Lesson          int `json:"lesson" validate:"required,min=1"`
		WatchPercentage int `json:"watch_percentage" validate:"min=0,max=100"`
	}

	ProgressSampleResponse struct {
		Progress        course.LessonProgress `json:"progress"`
		ModuleCompleted bool                  `json:"module_completed"`
	}
)

func (pr *ProgressSampleRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(pr)
}
