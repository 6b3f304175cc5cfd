package main

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"os"

	"github.com/trezcool/masomo-attendance/core"
	"github.com/trezcool/masomo-attendance/core/attendance"
	"github.com/trezcool/masomo-attendance/core/student"
	emailsvc "github.com/trezcool/masomo-attendance/services/email"
	logsvc "github.com/trezcool/masomo-attendance/services/logger"
	"github.com/trezcool/masomo-attendance/storage"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up storage
	ctx, cancel := context.WithTimeout(context.Background(), conf.Storage.Timeout)
	store, err := storage.Open(ctx, conf)
	cancel()
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening %s storage: %v", conf.Storage.Engine, err), err)
	}

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)

	// set up services
	mailSvc := emailsvc.NewService(conf, logger, log.New(os.Stdout, "EMAIL : ", log.LstdFlags))
	stdSvc := student.NewService(store.Students, validate)

	recipients := make([]mail.Address, 0, len(conf.Attendance.ReportRecipients))
	for _, raw := range conf.Attendance.ReportRecipients {
		if addr, err := mail.ParseAddress(raw); err == nil {
			recipients = append(recipients, *addr)
		}
	}
	attSvc := attendance.NewService(
		attendance.Deps{
			Roster:   stdSvc,
			Sheets:   store.Sheets,
			Validate: validate,
			Logger:   logger,
			Mailer:   mailSvc,
		},
		attendance.Options{ReportRecipients: recipients},
	)

	// start CLI
	cli := commandLine{
		conf:       conf,
		stdSvc:     stdSvc,
		attSvc:     attSvc,
		translator: translator,
		in:         os.Stdin,
		out:        os.Stdout,
	}
	if store.SQL != nil {
		cli.db = store.SQL.DB
	}

	code := 0
	if err = cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		code = 1
	}

	ctx, cancel = context.WithTimeout(context.Background(), conf.Storage.Timeout)
	err = store.Close(ctx)
	cancel()
	if err != nil {
		logger.Error("closing storage", err)
	}
	logger.Close()
	os.Exit(code)
}
