package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"net/mail"
	"os"

	echoapi "github.com/trezcool/masomo-attendance/apps/api/echo"
	"github.com/trezcool/masomo-attendance/core"
	"github.com/trezcool/masomo-attendance/core/attendance"
	"github.com/trezcool/masomo-attendance/core/student"
	emailsvc "github.com/trezcool/masomo-attendance/services/email"
	logsvc "github.com/trezcool/masomo-attendance/services/logger"
	"github.com/trezcool/masomo-attendance/storage"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up storage
	ctx, cancel := context.WithTimeout(context.Background(), conf.Storage.Timeout)
	store, err := storage.Open(ctx, conf)
	cancel()
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening %s storage: %v", conf.Storage.Engine, err), err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), conf.Storage.Timeout)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)

	// set up services
	mailSvc := emailsvc.NewService(conf, logger, log.New(os.Stdout, "EMAIL : ", log.LstdFlags))
	stdSvc := student.NewService(store.Students, validate)
	attSvc := attendance.NewService(
		attendance.Deps{
			Roster:   stdSvc,
			Sheets:   store.Sheets,
			Validate: validate,
			Logger:   logger,
			Mailer:   mailSvc,
		},
		attendance.Options{ReportRecipients: reportRecipients(conf, logger)},
	)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q, storage %q", conf.Build, store.Engine))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(store.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Students:   stdSvc,
			Attendance: attSvc,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// reportRecipients parses the configured report addresses, skipping invalid ones.
func reportRecipients(conf *core.Config, logger core.Logger) []mail.Address {
	addrs := make([]mail.Address, 0, len(conf.Attendance.ReportRecipients))
	for _, raw := range conf.Attendance.ReportRecipients {
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			logger.Warn(fmt.Sprintf("invalid report recipient %q: %v", raw, err))
			continue
		}
		addrs = append(addrs, *addr)
	}
	return addrs
}
