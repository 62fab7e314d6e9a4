package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/upendo/core"
	"github.com/trezcool/upendo/core/billing"
	"github.com/trezcool/upendo/core/course"
	"github.com/trezcool/upendo/core/user"
	appfs "github.com/trezcool/upendo/fs"
	emailsvc "github.com/trezcool/upendo/services/email"
	logsvc "github.com/trezcool/upendo/services/logger"
	"github.com/trezcool/upendo/storage/database"
	sqlxrepos "github.com/trezcool/upendo/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())
	sdb := sqlx.NewDb(db, conf.Database.Engine)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, appLogger)
	}
	core.ParseEmailTemplates(appfs.FS, conf, appLogger)

	usrRepo := sqlxrepos.NewUserRepository(sdb)
	usrSvc := user.NewService(usrRepo, mailSvc, conf)
	courseSvc := course.NewService(sqlxrepos.NewCourseRepository(sdb), conf)
	billingSvc := billing.NewService(
		sqlxrepos.NewBillingRepository(sdb), usrRepo, usrSvc, courseSvc, conf, appLogger)

	// start CLI
	cli := commandLine{
		db:         db,
		conf:       conf,
		mailSvc:    mailSvc,
		usrRepo:    usrRepo,
		courseSvc:  courseSvc,
		billingSvc: billingSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
