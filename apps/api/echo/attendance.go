package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/attendance"
)

type attendanceApi struct {
	svc      *attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := attendanceApi{svc: s.deps.AttendanceSvc, validate: s.deps.Validate}

	ag := g.Group("/attendance", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.DELETE("", api.destroyMultiple)
	ag.POST("/mark", api.mark)
	ag.GET("/statuses", api.statuses)
	ag.GET("/days", api.days)
	ag.GET("/sheet", api.sheet)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

func (api *attendanceApi) object(ctx echo.Context) (attendance.Record, error) {
	id, err := idParam(ctx, "id")
	if err != nil {
		return attendance.Record{}, err
	}
	return api.svc.GetByID(ctx.Request().Context(), id)
}

// monthParams reads `year` and `month`, defaulting to the current month.
func monthParams(ctx echo.Context) (int, time.Month, error) {
	now := time.Now().UTC()
	year, err := intParam(ctx, "year", now.Year())
	if err != nil {
		return 0, 0, err
	}
	month, err := intParam(ctx, "month", int(now.Month()))
	if err != nil {
		return 0, 0, err
	}
	if month < 1 || month > 12 {
		return 0, 0, core.FieldValidationError("month", errors.Errorf("%d is not a valid month", month))
	}
	return year, time.Month(month), nil
}

func (api *attendanceApi) query(ctx echo.Context) error {
	var filter attendance.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []attendance.Record{})
	}
	var err error
	if filter.From, err = dateParam(ctx, "from"); err != nil {
		return err
	}
	if filter.To, err = dateParam(ctx, "to"); err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	records, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying attendance records")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) create(ctx echo.Context) error {
	var data attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating attendance record")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	var data attendance.MarkDay
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	records, err := api.svc.Mark(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) statuses(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, attendance.Statuses)
}

func (api *attendanceApi) days(ctx echo.Context) error {
	year, month, err := monthParams(ctx)
	if err != nil {
		return err
	}
	days := attendance.SchoolDays(year, month)
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format(core.DateLayout))
	}
	return ctx.JSON(http.StatusOK, out)
}

func (api *attendanceApi) sheet(ctx echo.Context) error {
	year, month, err := monthParams(ctx)
	if err != nil {
		return err
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	records, err := api.svc.Query(ctx.Request().Context(), attendance.QueryFilter{
		From: first,
		To:   first.AddDate(0, 1, -1),
	})
	if err != nil {
		return errors.Wrap(err, "querying attendance records")
	}
	return ctx.JSON(http.StatusOK, attendance.NewSheet(year, month, records))
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	r, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding attendance record")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	r, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding attendance record")
	}

	var data attendance.UpdateRecord
	if err = ctx.Bind(&data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	r, err = api.svc.Update(ctx.Request().Context(), r, data)
	if err != nil {
		return errors.Wrap(err, "updating attendance record")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	r, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding attendance record")
	}
	if err = api.svc.Delete(ctx.Request().Context(), r.ID); err != nil {
		return errors.Wrap(err, "deleting attendance record")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceApi) destroyMultiple(ctx echo.Context) error {
	ids, err := idsParam(ctx)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		if err = api.svc.Delete(ctx.Request().Context(), ids...); err != nil {
			return errors.Wrap(err, "deleting attendance records")
		}
	}
	return ctx.NoContent(http.StatusNoContent)
}
