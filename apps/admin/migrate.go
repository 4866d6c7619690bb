package main

import (
	"errors"

	"github.com/pressly/goose/v3"

	appfs "github.com/dentacamp/portal/fs"
)

var gooseRunFunc = goose.Run // mockable

var errNoDatabase = errors.New("migrate requires the postgres session store")

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errNoDatabase
	}

	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect(cli.db.DriverName()); err != nil {
		return err
	}

	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db.DB, "migrations", arguments...)
}
