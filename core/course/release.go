package course

import (
	"errors"
	"sort"
	"time"
)

var (
	// errors
	ErrInvalidModule = errors.New("invalid module number")
)

// ReleaseDate computes when a module unlocks for the given enrollment:
// StartedAt plus the module's drip offset. Module 1 has a zero offset and
// is always released at enrollment.
func (svc *Service) ReleaseDate(enr Enrollment, moduleNumber int) (time.Time, error) {
	offset, ok := svc.offsets[moduleNumber]
	if !ok {
		return time.Time{}, ErrInvalidModule
	}
	return enr.StartedAt.Add(offset), nil
}

// IsReleased reports whether a module is unlocked at the given instant.
// The check uses >= so a request at the exact release instant succeeds.
// Once true for an enrollment, it stays true: time does not go backward.
func (svc *Service) IsReleased(enr Enrollment, moduleNumber int, now time.Time) (bool, error) {
	if _, ok := svc.offsets[moduleNumber]; !ok {
		return false, ErrInvalidModule
	}
	if enr.UnlockedAt.Valid && !now.Before(enr.UnlockedAt.Time) {
		return true, nil
	}
	releaseAt, err := svc.ReleaseDate(enr, moduleNumber)
	if err != nil {
		return false, err
	}
	return !now.Before(releaseAt), nil
}

// ModuleReleases derives the release state of every catalog module for an
// enrollment, in canonical module order.
func (svc *Service) ModuleReleases(enr Enrollment, now time.Time) []ModuleRelease {
	releases := make([]ModuleRelease, 0, len(svc.offsets))
	for num := range svc.offsets {
		releaseAt, _ := svc.ReleaseDate(enr, num)
		released, _ := svc.IsReleased(enr, num, now)
		releases = append(releases, ModuleRelease{
			ModuleNumber: num,
			ReleaseAt:    releaseAt,
			IsReleased:   released,
		})
	}
	sort.Slice(releases, func(i, j int) bool { return releases[i].ModuleNumber < releases[j].ModuleNumber })
	return releases
}
