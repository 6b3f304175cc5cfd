package attendance

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-attendance/core"
	"github.com/trezcool/masomo-attendance/core/student"
)

var (
	// errors
	ErrSheetNotFound          = errors.New("attendance sheet not found")
	ErrStudentNotInWorkingSet = errors.New("student is not in the attendance list")
	ErrInvalidStatus          = errors.New("attendance status must be present or absent")
	ErrInvalidFilter          = errors.New("status filter must be all, present or absent")
	ErrNoSelection            = errors.New("class and section must be selected")
	ErrSelectionSuperseded    = errors.New("selection changed before the attendance list was loaded")

	NowFunc = time.Now // mockable
)

const reportTemplate = "attendance_report"

type (
	SheetRepository interface {
		// FindSheet returns ErrSheetNotFound when no sheet has the id.
		FindSheet(ctx context.Context, id string) (Sheet, error)
		// UpsertSheet creates the sheet or replaces the one with the same id.
		UpsertSheet(ctx context.Context, sheet Sheet) error
		// DeleteSheet returns ErrSheetNotFound when no sheet has the id.
		DeleteSheet(ctx context.Context, id string) error
	}

	RosterProvider interface {
		Roster(ctx context.Context, class, section string) ([]student.Student, error)
	}

	Deps struct {
		Roster   RosterProvider
		Sheets   SheetRepository
		Validate *validator.Validate
		Logger   core.Logger
		Mailer   core.EmailService // optional
	}

	Options struct {
		// ReportRecipients receive a report after every submission.
		ReportRecipients []mail.Address
	}

	Service struct {
		roster   RosterProvider
		sheets   SheetRepository
		validate *validator.Validate
		logger   core.Logger
		mailer   core.EmailService
		opts     Options
	}

	// submission is validated before any sheet is written.
	submission struct {
		Date    string   `json:"date" validate:"required,isodate"`
		Class   string   `json:"class" validate:"required,notblank,alphanum_"`
		Section string   `json:"section" validate:"required,notblank,alphanum_"`
		Records []Record `json:"records" validate:"required,min=1,dive"`
		Actor   Actor    `json:"actor"`
	}
)

func NewService(deps Deps, opts Options) *Service {
	return &Service{
		roster:   deps.Roster,
		sheets:   deps.Sheets,
		validate: deps.Validate,
		logger:   deps.Logger,
		mailer:   deps.Mailer,
		opts:     opts,
	}
}

// ValidateKey checks the date format and the class and section names.
func (svc *Service) ValidateKey(key SheetKey) error {
	return svc.validate.Struct(key)
}

// FetchSheet returns the stored sheet of key, or nil if it was never submitted.
func (svc *Service) FetchSheet(ctx context.Context, key SheetKey) (*Sheet, error) {
	sheet, err := svc.sheets.FindSheet(ctx, key.ID())
	if err != nil {
		if errors.Cause(err) == ErrSheetNotFound {
			return nil, nil
		}
		return nil, core.NewRetryableError(errors.Wrap(err, "fetching attendance sheet"))
	}
	return &sheet, nil
}

// Open loads the roster of key, then its stored sheet, and reconciles them.
func (svc *Service) Open(ctx context.Context, key SheetKey) (*WorkingSet, error) {
	if err := svc.ValidateKey(key); err != nil {
		return nil, err
	}
	roster, err := svc.roster.Roster(ctx, key.Class, key.Section)
	if err != nil {
		return nil, err
	}
	sheet, err := svc.FetchSheet(ctx, key)
	if err != nil {
		return nil, err
	}
	return Reconcile(key, roster, sheet), nil
}

// Submit validates the working set and saves it as the sheet of its key, replacing any
// previous submission. It returns the sheet id.
// The working set is left untouched when saving fails; the error is then retryable.
func (svc *Service) Submit(ctx context.Context, ws *WorkingSet, actor Actor) (string, error) {
	sheet, err := svc.save(ctx, ws, actor)
	if err != nil {
		return "", err
	}
	ws.markSubmitted(sheet)
	return sheet.ID, nil
}

// save writes the sheet of ws without marking ws as submitted.
// ws must not be mutated until it returns.
func (svc *Service) save(ctx context.Context, ws *WorkingSet, actor Actor) (Sheet, error) {
	if ws == nil {
		return Sheet{}, ErrNoSelection
	}
	actor.ID, actor.Name = core.CleanString(actor.ID), core.CleanString(actor.Name)
	sub := submission{
		Date:    ws.key.Date,
		Class:   ws.key.Class,
		Section: ws.key.Section,
		Records: ws.records,
		Actor:   actor,
	}
	if err := svc.validate.Struct(sub); err != nil {
		return Sheet{}, err
	}

	now := NowFunc().UTC().Truncate(time.Millisecond)
	lastUpdated := now
	if prev := ws.submission.LastUpdated; !prev.IsZero() && !now.After(prev) {
		lastUpdated = prev.Add(time.Millisecond)
	}

	records := ws.Records()
	sum := Aggregate(records)
	sheet := Sheet{
		ID:            ws.key.ID(),
		Date:          ws.key.Date,
		Class:         ws.key.Class,
		Section:       ws.key.Section,
		Records:       records,
		TotalStudents: sum.Total,
		PresentCount:  sum.Present,
		AbsentCount:   sum.Absent,
		SubmittedBy:   actor.ID,
		SubmittedName: actor.Name,
		SubmittedAt:   now,
		LastUpdated:   lastUpdated,
	}
	if err := svc.sheets.UpsertSheet(ctx, sheet); err != nil {
		return Sheet{}, core.NewRetryableError(errors.Wrap(err, "saving attendance sheet"))
	}

	svc.logger.Info(fmt.Sprintf("attendance %s submitted: %d present, %d absent", sheet.ID, sum.Present, sum.Absent), actor)
	svc.sendReport(sheet, sum)
	return sheet, nil
}

// Clear deletes the whole sheet of key.
func (svc *Service) Clear(ctx context.Context, key SheetKey) error {
	if err := svc.ValidateKey(key); err != nil {
		return err
	}
	if err := svc.sheets.DeleteSheet(ctx, key.ID()); err != nil {
		if errors.Cause(err) == ErrSheetNotFound {
			return ErrSheetNotFound
		}
		return core.NewRetryableError(errors.Wrap(err, "deleting attendance sheet"))
	}
	return nil
}

type reportData struct {
	Date          string
	Class         string
	Section       string
	SubmittedName string
	Summary       Summary
	Absentees     []Record
}

func (svc *Service) sendReport(sheet Sheet, sum Summary) {
	if svc.mailer == nil || len(svc.opts.ReportRecipients) == 0 {
		return
	}

	submitter := sheet.SubmittedName
	if submitter == "" {
		submitter = sheet.SubmittedBy
	}
	msg := &core.EmailMessage{
		To:           svc.opts.ReportRecipients,
		Subject:      fmt.Sprintf("Attendance %s %s - %s", sheet.Class, sheet.Section, sheet.Date),
		TemplateName: reportTemplate,
		TemplateData: reportData{
			Date:          sheet.Date,
			Class:         sheet.Class,
			Section:       sheet.Section,
			SubmittedName: submitter,
			Summary:       sum,
			Absentees:     Filter(sheet.Records, FilterAbsent, ""),
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, ToTable(sheet.Records, sheet.Date)); err != nil {
		svc.logger.Error("exporting attendance report", err)
		return
	}
	if err := msg.Attach(&buf, ExportFilename(sheet.Key()), "text/csv"); err != nil {
		svc.logger.Error("attaching attendance report", err)
		return
	}
	svc.mailer.SendMessages(msg)
}
