package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/dentacamp/portal/core"
	"github.com/dentacamp/portal/core/session"
	"github.com/dentacamp/portal/services/platform"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf    *core.Config
	db      *sqlx.DB // nil unless the postgres session store is configured
	api     *platform.Client
	sessSvc *session.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  ping                   - check that the platform API is reachable")
	fmt.Println("  magiclink -email EMAIL - send a login magic link to an account")
	fmt.Println("  purgesessions          - delete expired portal sessions")
	fmt.Println("  migrate COMMAND        - run session store migrations (postgres store only)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	magicLinkCmd := flag.NewFlagSet("magiclink", flag.ExitOnError)
	magicLinkEmail := magicLinkCmd.String("email", "", "The account's email address.")

	switch args[1] {
	case "ping":
		return cli.ping()
	case "magiclink":
		if err := magicLinkCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *magicLinkEmail == "" {
			magicLinkCmd.Usage()
			return errHelp
		}
		return cli.magicLink(*magicLinkEmail)
	case "purgesessions":
		return cli.purgeSessions()
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
