package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/dentacamp/portal/apps/api/echo"
	"github.com/dentacamp/portal/core"
	"github.com/dentacamp/portal/core/directory"
	"github.com/dentacamp/portal/core/report"
	"github.com/dentacamp/portal/core/screening"
	"github.com/dentacamp/portal/core/session"
	"github.com/dentacamp/portal/core/student"
	emailsvc "github.com/dentacamp/portal/services/email"
	logsvc "github.com/dentacamp/portal/services/logger"
	"github.com/dentacamp/portal/services/platform"
	memcache "github.com/dentacamp/portal/storage/cache/inmem"
	rediscache "github.com/dentacamp/portal/storage/cache/redis"
	"github.com/dentacamp/portal/storage/database"
	memstore "github.com/dentacamp/portal/storage/sessionstore/inmem"
	pgstore "github.com/dentacamp/portal/storage/sessionstore/postgres"
	redisstore "github.com/dentacamp/portal/storage/sessionstore/redis"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "PORTAL : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up session store & query cache
	sessStore, cache, cleanup, err := setUpStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer cleanup()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	api := platform.NewClient(conf, logger)
	sessionSvc := session.NewService(sessStore, api, conf, logger)
	directorySvc := directory.NewService(api, cache, conf, logger)
	validate := validator.New()
	translator := newTranslator()
	studentSvc := student.NewService(api, cache, validate, conf, logger)
	screeningSvc := screening.NewService(api, cache, conf, logger)
	reportSvc := report.NewService(api, cache, mailSvc, conf, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	core.InitValidators(validate, translator)
	core.ParseEmailTemplates(conf, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		&echoapi.ServerDeps{
			Conf:         conf,
			Logger:       logger,
			SessionSvc:   sessionSvc,
			DirectorySvc: directorySvc,
			StudentSvc:   studentSvc,
			ScreeningSvc: screeningSvc,
			ReportSvc:    reportSvc,
			Validate:     validate,
			Translator:   translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// setUpStorage picks the session store from config. Redis doubles as the
// query cache when selected; the in-memory cache backs the other stores.
func setUpStorage(conf *core.Config) (session.Store, core.Cache, func(), error) {
	noop := func() {}

	switch conf.Session.Store {
	case "redis":
		client := redisstore.NewClient(conf)
		cleanup := func() { _ = client.Close() }
		return redisstore.NewStore(client), rediscache.NewCache(client), cleanup, nil

	case "postgres":
		db, err := database.Open(conf)
		if err != nil {
			return nil, nil, noop, err
		}
		if err = database.Ping(db); err != nil {
			_ = db.Close()
			return nil, nil, noop, err
		}
		if err = database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, noop, err
		}
		cleanup := func() { _ = db.Close() }
		return pgstore.NewStore(db), memcache.NewCache(), cleanup, nil

	default:
		return memstore.NewStore(), memcache.NewCache(), noop, nil
	}
}

func newTranslator() ut.Translator {
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	return translator
}
