package catalog

import (
	"errors"
	"sort"
)

var (
	// errors
	ErrNotFound = errors.New("module or lesson not found")
)

type (
	// Module is an immutable catalog entry. Ordering by Number is the
	// canonical course sequence.
	Module struct {
		Number      int    `json:"number"`
		Title       string `json:"title"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
		Duration    string `json:"duration"`
		LessonCount int    `json:"lesson_count"`
	}

	// Lesson is an immutable catalog entry, identified by the unique
	// (Module, Number) pair. MediaRef is an opaque video embed ID.
	Lesson struct {
		Module      int    `json:"module"`
		Number      int    `json:"number"`
		Title       string `json:"title"`
		MediaRef    string `json:"media_ref"`
		Description string `json:"description,omitempty"`
		IsBonus     bool   `json:"is_bonus"`
	}
)

type lessonKey struct {
	module, lesson int
}

var (
	moduleIndex map[int]Module
	lessonIndex map[lessonKey]Lesson
	byModule    map[int][]Lesson
)

func init() {
	moduleIndex = make(map[int]Module, len(modules))
	for _, m := range modules {
		moduleIndex[m.Number] = m
	}

	lessonIndex = make(map[lessonKey]Lesson, len(lessons))
	byModule = make(map[int][]Lesson, len(modules))
	for _, l := range lessons {
		lessonIndex[lessonKey{l.Module, l.Number}] = l
		byModule[l.Module] = append(byModule[l.Module], l)
	}
	for _, ls := range byModule {
		sort.Slice(ls, func(i, j int) bool { return ls[i].Number < ls[j].Number })
	}
}

// Modules returns all catalog modules in canonical order.
func Modules() []Module {
	out := make([]Module, len(modules))
	copy(out, modules)
	return out
}

// GetModule returns the module with the given number.
func GetModule(moduleNumber int) (Module, error) {
	m, ok := moduleIndex[moduleNumber]
	if !ok {
		return Module{}, ErrNotFound
	}
	return m, nil
}

// Lessons returns the ordered lessons of a module.
func Lessons(moduleNumber int) ([]Lesson, error) {
	ls, ok := byModule[moduleNumber]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]Lesson, len(ls))
	copy(out, ls)
	return out, nil
}

// Get returns the lesson identified by (moduleNumber, lessonNumber).
func Get(moduleNumber, lessonNumber int) (Lesson, error) {
	l, ok := lessonIndex[lessonKey{moduleNumber, lessonNumber}]
	if !ok {
		return Lesson{}, ErrNotFound
	}
	return l, nil
}

// LessonCount returns the number of lessons in a module.
func LessonCount(moduleNumber int) (int, error) {
	ls, ok := byModule[moduleNumber]
	if !ok {
		return 0, ErrNotFound
	}
	return len(ls), nil
}

// TotalLessons returns the number of lessons across the full catalog.
func TotalLessons() int {
	return len(lessons)
}
