package main

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/upendo/core"
	"github.com/trezcool/upendo/core/catalog"
	"github.com/trezcool/upendo/core/course"
	"github.com/trezcool/upendo/core/user"
)

// sendReminders emails every active member with a valid subscription a
// nudge towards their next lesson. Members who never started are pointed
// at the first lesson of module 1.
func (cli *commandLine) sendReminders() error {
	ctx := context.Background()
	now := time.Now().UTC()

	active := true
	members, err := cli.usrRepo.QueryUsers(ctx, &user.QueryFilter{
		IsActive: &active,
		Roles:    user.MemberRoles,
	})
	if err != nil {
		return errors.Wrap(err, "querying members")
	}

	var sent int
	for _, usr := range members {
		sub, err := cli.courseSvc.GetSubscription(ctx, usr.ID)
		if err != nil {
			if err == course.ErrNoSubscription {
				continue
			}
			return errors.Wrap(err, "getting subscription")
		}
		if !course.IsActive(sub, now) {
			continue
		}

		lesson, err := cli.courseSvc.NextLesson(ctx, usr.ID)
		if err != nil {
			switch err {
			case course.ErrAllComplete:
				// nothing left to nudge towards
				continue
			case course.ErrNoProgress:
				if ls, lerr := catalog.Lessons(1); lerr == nil && len(ls) > 0 {
					lesson = ls[0]
					break
				}
				continue
			default:
				return errors.Wrap(err, "finding next lesson")
			}
		}
		module, err := catalog.GetModule(lesson.Module)
		if err != nil {
			return errors.Wrap(err, "getting module")
		}

		cli.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject:      "Your next lesson is waiting",
			TemplateName: "reminder",
			TemplateData: struct {
				User   user.User
				Module catalog.Module
				Lesson catalog.Lesson
			}{usr, module, lesson},
		})
		sent++
	}

	logger.Printf("reminders sent: %d", sent)
	return nil
}
