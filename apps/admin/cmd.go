package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	ut "github.com/go-playground/universal-translator"

	"github.com/trezcool/masomo-attendance/core"
	"github.com/trezcool/masomo-attendance/core/attendance"
	"github.com/trezcool/masomo-attendance/core/student"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf       *core.Config
	db         *sql.DB // postgres only
	stdSvc     *student.Service
	attSvc     *attendance.Service
	translator ut.Translator
	in         io.Reader
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  importstudents -file FILE - add or update the students listed in a JSON file")
	fmt.Fprintln(cli.out, "  exportsheet -date DATE -class CLASS -section SECTION [-status STATUS] [-search TEXT] [-out FILE] - export attendance as CSV")
	fmt.Fprintln(cli.out, "  clearsheet -date DATE -class CLASS -section SECTION - delete a submitted attendance sheet")
	fmt.Fprintln(cli.out, "  take -date DATE -class CLASS -section SECTION -actor ID [-name NAME] - take attendance interactively")
	fmt.Fprintln(cli.out, "  migrate up|up-by-one|up-to VERSION|down|down-to VERSION|redo - migrate the postgres database")
}

// sheetFlags registers the flags selecting an attendance sheet; the date defaults to today.
func sheetFlags(cmd *flag.FlagSet) (date, class, section *string) {
	date = cmd.String("date", attendance.NowFunc().Format(core.DateLayout), "The attendance date (YYYY-MM-DD).")
	class = cmd.String("class", "", "The class name.")
	section = cmd.String("section", "", "The section name.")
	return
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	importCmd := flag.NewFlagSet("importstudents", flag.ExitOnError)
	importFile := importCmd.String("file", "", "Path to a JSON array of students ('-' reads stdin).")

	exportCmd := flag.NewFlagSet("exportsheet", flag.ExitOnError)
	exportDate, exportClass, exportSection := sheetFlags(exportCmd)
	exportStatus := exportCmd.String("status", "all", "Only export students with this status (all, present, absent).")
	exportSearch := exportCmd.String("search", "", "Only export students whose name, roll or admission number contains this text.")
	exportOut := exportCmd.String("out", "", "Output file (defaults to attendance-CLASS-SECTION-DATE.csv, '-' writes to stdout).")

	clearCmd := flag.NewFlagSet("clearsheet", flag.ExitOnError)
	clearDate, clearClass, clearSection := sheetFlags(clearCmd)

	takeCmd := flag.NewFlagSet("take", flag.ExitOnError)
	takeDate, takeClass, takeSection := sheetFlags(takeCmd)
	takeActor := takeCmd.String("actor", "", "The ID of the staff member taking attendance.")
	takeName := takeCmd.String("name", "", "The name of the staff member taking attendance.")

	switch args[1] {
	case "importstudents":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importStudents(ctx, *importFile)

	case "exportsheet":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportClass == "" || *exportSection == "" {
			exportCmd.Usage()
			return errHelp
		}
		filter, err := attendance.ParseStatusFilter(*exportStatus)
		if err != nil {
			return err
		}
		key := attendance.NewSheetKey(*exportDate, *exportClass, *exportSection)
		return cli.exportSheet(ctx, key, filter, strings.TrimSpace(*exportSearch), *exportOut)

	case "clearsheet":
		if err := clearCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *clearClass == "" || *clearSection == "" {
			clearCmd.Usage()
			return errHelp
		}
		return cli.clearSheet(ctx, attendance.NewSheetKey(*clearDate, *clearClass, *clearSection))

	case "take":
		if err := takeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *takeClass == "" || *takeSection == "" || strings.TrimSpace(*takeActor) == "" {
			takeCmd.Usage()
			return errHelp
		}
		key := attendance.NewSheetKey(*takeDate, *takeClass, *takeSection)
		return cli.take(ctx, key, attendance.Actor{ID: *takeActor, Name: *takeName})

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

// translate turns validation errors into a readable message.
func (cli *commandLine) translate(err error) error {
	vErr, ok := core.TranslateValidationErrors(err, cli.translator).(*core.ValidationError)
	if !ok || len(vErr.Fields) == 0 {
		return err
	}
	msgs := make([]string, 0, len(vErr.Fields))
	for _, fld := range vErr.Fields {
		msgs = append(msgs, fld.Field+": "+fld.Error)
	}
	return errors.New(strings.Join(msgs, "; "))
}
