package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-attendance/core"
	"github.com/trezcool/masomo-attendance/core/attendance"
)

const (
	statusParam   = "status"
	searchParam   = "search"
	pageParam     = "page"
	pageSizeParam = "page_size"
	maxPageSize   = 100
)

type (
	RecordStatus struct {
		StudentID string `json:"student_id"`
		Status    string `json:"status"`
	}

	// SubmitRequest is the body of an attendance submission.
	SubmitRequest struct {
		Actor   attendance.Actor `json:"actor"`
		MarkAll string           `json:"mark_all"`
		Records []RecordStatus   `json:"records"`
	}

	SubmitResponse struct {
		ID         string                `json:"id"`
		Summary    attendance.Summary    `json:"summary"`
		Submission attendance.Submission `json:"submission"`
	}

	SheetResponse struct {
		Key        attendance.SheetKey    `json:"key"`
		Summary    attendance.Summary     `json:"summary"`
		Submitted  bool                   `json:"submitted"`
		Submission *attendance.Submission `json:"submission"`
		attendance.Page
	}
)

// bindSheetKey reads the `:date/:class/:section` path params.
func bindSheetKey(ctx echo.Context) attendance.SheetKey {
	return attendance.NewSheetKey(ctx.Param("date"), ctx.Param("class"), ctx.Param("section"))
}

// bindViewParams reads the status filter, search text and page of a sheet view.
func bindViewParams(ctx echo.Context, defaultPageSize int) (attendance.ViewParams, error) {
	var params attendance.ViewParams
	data := ctx.QueryParams()

	filter, err := attendance.ParseStatusFilter(data.Get(statusParam))
	if err != nil {
		return params, err
	}
	params.Status = filter
	params.Search = core.CleanString(data.Get(searchParam))

	var fldErrs []core.FieldError
	params.Page, fldErrs = intParam(data.Get(pageParam), pageParam, 1, fldErrs)
	params.PageSize, fldErrs = intParam(data.Get(pageSizeParam), pageSizeParam, defaultPageSize, fldErrs)
	if len(fldErrs) > 0 {
		return params, core.NewValidationError(nil, fldErrs...)
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}
	return params, nil
}

func intParam(raw, name string, def int, fldErrs []core.FieldError) (int, []core.FieldError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, fldErrs
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 1 {
		return def, append(fldErrs, core.FieldError{Field: name, Error: name + " must be a positive integer"})
	}
	return val, fldErrs
}

// apply marks every student with MarkAll (if set), then applies the single edits in order.
func (req SubmitRequest) apply(ws *attendance.WorkingSet) error {
	if req.MarkAll != "" {
		status, err := attendance.ParseStatus(req.MarkAll)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "mark_all", Error: err.Error()})
		}
		if err = ws.SetAllStatus(status); err != nil {
			return err
		}
	}
	for i, rs := range req.Records {
		status, err := attendance.ParseStatus(rs.Status)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "records[" + strconv.Itoa(i) + "].status", Error: err.Error()})
		}
		if err = ws.SetStatus(core.CleanString(rs.StudentID), status); err != nil {
			return err
		}
	}
	return nil
}
