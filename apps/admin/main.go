package main

import (
	"fmt"
	"log"
	"os"
	"syscall"

	"github.com/dentacamp/portal/core"
	"github.com/dentacamp/portal/core/session"
	logsvc "github.com/dentacamp/portal/services/logger"
	"github.com/dentacamp/portal/services/platform"
	"github.com/dentacamp/portal/storage/database"
	memstore "github.com/dentacamp/portal/storage/sessionstore/inmem"
	pgstore "github.com/dentacamp/portal/storage/sessionstore/postgres"
	redisstore "github.com/dentacamp/portal/storage/sessionstore/redis"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// the DB password may come from a hidden prompt instead of the environment
	if conf.Session.Store == "postgres" && conf.Database.Password == "" {
		fmt.Print("Enter DB password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		errAndDie(err)
		conf.Database.Password = string(pwd)
	}

	cli, cleanup, err := newCommandLine(conf)
	errAndDie(err)
	defer cleanup()

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func newCommandLine(conf *core.Config) (*commandLine, func(), error) {
	noop := func() {}

	svcLogger := logsvc.NewRollbarLogger(logger, conf)
	svcLogger.Enable(false)

	api := platform.NewClient(conf, svcLogger)
	cli := &commandLine{conf: conf, api: api}

	switch conf.Session.Store {
	case "redis":
		client := redisstore.NewClient(conf)
		cli.sessSvc = session.NewService(redisstore.NewStore(client), api, conf, svcLogger)
		return cli, func() { _ = client.Close() }, nil

	case "postgres":
		db, err := database.Open(conf)
		if err != nil {
			return nil, noop, err
		}
		if err = database.Ping(db); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		cli.db = db
		cli.sessSvc = session.NewService(pgstore.NewStore(db), api, conf, svcLogger)
		return cli, func() { _ = db.Close() }, nil

	default:
		cli.sessSvc = session.NewService(memstore.NewStore(), api, conf, svcLogger)
		return cli, noop, nil
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
