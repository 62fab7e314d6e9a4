package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/upendo/core"
	"github.com/trezcool/upendo/core/billing"
	"github.com/trezcool/upendo/core/course"
	"github.com/trezcool/upendo/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sql.DB
	conf       *core.Config
	mailSvc    core.EmailService
	usrRepo    user.Repository
	courseSvc  *course.Service
	billingSvc *billing.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - apply DB migrations (up, down, status, ...)")
	fmt.Println("  adduser -email EMAIL [-name NAME] [-admin] - update or create a user; password prompted")
	fmt.Println("  resetpassword -email EMAIL - reset user's password; password prompted")
	fmt.Println("  grantaccess -email EMAIL -plan PLAN [-name NAME] [-amount AMOUNT] - grant course access manually")
	fmt.Println("  sendreminders - email every active member their next lesson")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant all admin roles.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	grantAccessCmd := flag.NewFlagSet("grantaccess", flag.ExitOnError)
	grantAccessEmail := grantAccessCmd.String("email", "", "The member's email; the account is created if missing.")
	grantAccessPlan := grantAccessCmd.String("plan", billing.PlanLifetime, "The plan: semanal, mensal or vitalicio.")
	grantAccessName := grantAccessCmd.String("name", "", "The member's full name (new accounts only).")
	grantAccessAmount := grantAccessCmd.Float64("amount", 0, "The amount paid, for the audit record.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserEmail, pwd, *addUserAdmin)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "grantaccess":
		if err := grantAccessCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *grantAccessEmail == "" {
			grantAccessCmd.Usage()
			return errHelp
		}
		return cli.grantAccess(*grantAccessEmail, *grantAccessName, *grantAccessPlan, *grantAccessAmount)
	case "sendreminders":
		return cli.sendReminders()
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
