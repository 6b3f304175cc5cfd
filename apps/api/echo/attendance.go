package echoapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-attendance/core/attendance"
)

type attendanceApi struct {
	svc      *attendance.Service
	pageSize int
}

func registerAttendanceAPI(g *echo.Group, svc *attendance.Service, pageSize int) {
	if pageSize < 1 {
		pageSize = attendance.DefaultPageSize
	}
	api := attendanceApi{svc: svc, pageSize: pageSize}

	dg := g.Group("/attendance/:date/:class/:section")
	dg.GET("", api.retrieve)
	dg.PUT("", api.submit)
	dg.DELETE("", api.clear)
	dg.GET("/export", api.export)
}

// Handlers

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	params, err := bindViewParams(ctx, api.pageSize)
	if err != nil {
		return err
	}
	ws, err := api.svc.Open(ctx.Request().Context(), bindSheetKey(ctx))
	if err != nil {
		return errors.Wrap(err, "opening attendance")
	}

	resp := SheetResponse{
		Key:     ws.Key(),
		Summary: ws.Summary(),
		Page:    ws.View(params),
	}
	if sub := ws.Submission(); !sub.IsZero() {
		resp.Submitted = true
		resp.Submission = &sub
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *attendanceApi) submit(ctx echo.Context) error {
	var data SubmitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitRequest")
	}

	ws, err := api.svc.Open(ctx.Request().Context(), bindSheetKey(ctx))
	if err != nil {
		return errors.Wrap(err, "opening attendance")
	}
	if err = data.apply(ws); err != nil {
		return err
	}

	id, err := api.svc.Submit(ctx.Request().Context(), ws, data.Actor)
	if err != nil {
		return errors.Wrap(err, "submitting attendance")
	}
	return ctx.JSON(http.StatusOK, SubmitResponse{ID: id, Summary: ws.Summary(), Submission: ws.Submission()})
}

func (api *attendanceApi) clear(ctx echo.Context) error {
	if err := api.svc.Clear(ctx.Request().Context(), bindSheetKey(ctx)); err != nil {
		return errors.Wrap(err, "clearing attendance")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceApi) export(ctx echo.Context) error {
	params, err := bindViewParams(ctx, api.pageSize)
	if err != nil {
		return err
	}
	ws, err := api.svc.Open(ctx.Request().Context(), bindSheetKey(ctx))
	if err != nil {
		return errors.Wrap(err, "opening attendance")
	}

	var buf bytes.Buffer
	if err = attendance.Export(&buf, ws, params.Status, params.Search); err != nil {
		return errors.Wrap(err, "exporting attendance")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", attendance.ExportFilename(ws.Key())))
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
