package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-attendance/core/student"
)

type studentApi struct {
	svc *student.Service
}

func registerStudentAPI(g *echo.Group, svc *student.Service) {
	api := studentApi{svc: svc}

	sg := g.Group("/students")
	sg.GET("/roster", api.roster)
}

// Handlers

func (api *studentApi) roster(ctx echo.Context) error {
	students, err := api.svc.Roster(ctx.Request().Context(), ctx.QueryParam("class"), ctx.QueryParam("section"))
	if err != nil {
		return errors.Wrap(err, "querying roster")
	}
	return ctx.JSON(http.StatusOK, students)
}
