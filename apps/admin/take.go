package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/trezcool/masomo-attendance/core"
	"github.com/trezcool/masomo-attendance/core/attendance"
)

var isTerminalFunc = term.IsTerminal // mockable

func (cli *commandLine) printTakeHelp() {
	fmt.Fprintln(cli.out, "Commands:")
	fmt.Fprintln(cli.out, "  list                      show the current page")
	fmt.Fprintln(cli.out, "  next | prev | page N      move between pages")
	fmt.Fprintln(cli.out, "  present|absent ID...      mark students by ID or roll number")
	fmt.Fprintln(cli.out, "  all present|absent        mark every student")
	fmt.Fprintln(cli.out, "  filter all|present|absent show students with a status")
	fmt.Fprintln(cli.out, "  search [TEXT]             search by name, roll or admission number (empty clears)")
	fmt.Fprintln(cli.out, "  summary                   show the counts of the whole class")
	fmt.Fprintln(cli.out, "  export [FILE]             export the filtered students as CSV")
	fmt.Fprintln(cli.out, "  submit                    save the attendance")
	fmt.Fprintln(cli.out, "  quit                      leave (unsubmitted changes are lost)")
}

// take runs an interactive attendance session for key, reading commands line by line.
func (cli *commandLine) take(ctx context.Context, key attendance.SheetKey, actor attendance.Actor) error {
	sess := attendance.NewSession(cli.attSvc, cli.conf.Attendance.PageSize)
	defer sess.Close()

	if err := sess.Select(ctx, key); err != nil {
		return cli.translate(err)
	}
	if sub := sess.Submission(); !sub.IsZero() {
		fmt.Fprintf(cli.out, "already submitted by %s at %s\n", submitter(sub), sub.LastUpdated.Local().Format("2006-01-02 15:04"))
	}
	cli.printSummary(sess.Summary())
	cli.printPage(sess, sess.View())

	interactive := false
	if f, ok := cli.in.(*os.File); ok {
		interactive = isTerminalFunc(int(f.Fd()))
	}
	scanner := bufio.NewScanner(cli.in)
	for {
		if interactive {
			fmt.Fprint(cli.out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		done, err := cli.takeCommand(ctx, sess, actor, fields[0], fields[1:])
		if err != nil {
			fmt.Fprintf(cli.out, "error: %v\n", cli.translate(err))
			if core.IsRetryable(err) {
				fmt.Fprintln(cli.out, "nothing was lost, try again")
			}
		}
		if done {
			return nil
		}
	}
}

func (cli *commandLine) takeCommand(
	ctx context.Context,
	sess *attendance.Session,
	actor attendance.Actor,
	cmd string,
	args []string,
) (done bool, err error) {
	switch strings.ToLower(cmd) {
	case "help", "?":
		cli.printTakeHelp()

	case "list", "ls":
		cli.printPage(sess, sess.View())

	case "next":
		cli.printPage(sess, sess.SetPage(sess.Params().Page+1))

	case "prev":
		cli.printPage(sess, sess.SetPage(sess.Params().Page-1))

	case "page":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: page N")
		}
		page, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("page must be a number (got '%s')", args[0])
		}
		cli.printPage(sess, sess.SetPage(page))

	case "present", "absent":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: %s ID...", cmd)
		}
		status, _ := attendance.ParseStatus(cmd)
		for _, ref := range args {
			if err := sess.SetStatus(cli.resolveStudent(sess, ref), status); err != nil {
				return false, fmt.Errorf("%s: %v", ref, err)
			}
		}
		cli.printSummary(sess.Summary())

	case "all":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: all present|absent")
		}
		status, err := attendance.ParseStatus(args[0])
		if err != nil {
			return false, err
		}
		if err = sess.SetAllStatus(status); err != nil {
			return false, err
		}
		cli.printSummary(sess.Summary())

	case "filter":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: filter all|present|absent")
		}
		filter, err := attendance.ParseStatusFilter(args[0])
		if err != nil {
			return false, err
		}
		if err = sess.SetFilter(filter); err != nil {
			return false, err
		}
		cli.printPage(sess, sess.View())

	case "search":
		if err := sess.SetSearch(strings.Join(args, " ")); err != nil {
			return false, err
		}
		cli.printPage(sess, sess.View())

	case "summary":
		cli.printSummary(sess.Summary())

	case "export":
		out := attendance.ExportFilename(sess.Key())
		if len(args) > 0 {
			out = args[0]
		}
		f, err := os.Create(out)
		if err != nil {
			return false, err
		}
		if err = sess.Export(f); err != nil {
			_ = f.Close()
			return false, err
		}
		if err = f.Close(); err != nil {
			return false, err
		}
		fmt.Fprintf(cli.out, "exported %s\n", out)

	case "submit":
		id, err := sess.Submit(ctx, actor)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(cli.out, "submitted %s\n", id)
		cli.printSummary(sess.Summary())

	case "quit", "exit", "q":
		if st := sess.State(); st == attendance.StateEditing || st == attendance.StateSubmitFailed {
			fmt.Fprintln(cli.out, "leaving without submitting")
		}
		return true, nil

	default:
		return false, fmt.Errorf("%q: unknown command (try 'help')", cmd)
	}
	return false, nil
}

// resolveStudent maps a roll number to its student ID; anything else is taken as an ID.
func (cli *commandLine) resolveStudent(sess *attendance.Session, ref string) string {
	if rec, ok := sess.Find(ref); ok {
		return rec.StudentID
	}
	return ref
}

func (cli *commandLine) printPage(sess *attendance.Session, page attendance.Page) {
	key := sess.Key()
	params := sess.Params()
	fmt.Fprintf(cli.out, "%s %s %s [%s] %s page %d/%d (%d students)\n",
		key.Date, key.Class, key.Section, sess.State(), params.Status, page.Page, page.TotalPages, page.TotalFiltered)
	for _, rec := range page.Records {
		fmt.Fprintf(cli.out, "  %-6s %-28s %-8s %s\n", rec.RollNumber, rec.Name, rec.Status, rec.StudentID)
	}
}

func (cli *commandLine) printSummary(sum attendance.Summary) {
	fmt.Fprintf(cli.out, "Total: %d  Present: %d (%d%%)  Absent: %d (%d%%)\n",
		sum.Total, sum.Present, sum.PresentPct, sum.Absent, sum.AbsentPct)
}

func submitter(sub attendance.Submission) string {
	if sub.SubmittedName != "" {
		return sub.SubmittedName
	}
	return sub.SubmittedBy
}
