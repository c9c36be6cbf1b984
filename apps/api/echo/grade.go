package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/grade"
)

type gradeApi struct {
	svc      *grade.Service
	validate *validator.Validate
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := gradeApi{svc: s.deps.GradeSvc, validate: s.deps.Validate}

	gg := g.Group("/grades", jwt)
	gg.GET("", api.query)
	gg.POST("", api.create)
	gg.DELETE("", api.destroyMultiple)
	gg.PUT("/record", api.record)
	gg.GET("/:id", api.retrieve)
	gg.PUT("/:id", api.update)
	gg.DELETE("/:id", api.destroy)
}

func (api *gradeApi) object(ctx echo.Context) (grade.Grade, error) {
	id, err := idParam(ctx, "id")
	if err != nil {
		return grade.Grade{}, err
	}
	return api.svc.GetByID(ctx.Request().Context(), id)
}

func (api *gradeApi) query(ctx echo.Context) error {
	var filter grade.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []grade.Grade{})
	}
	var err error
	if filter.SubmittedFrom, err = dateParam(ctx, "submitted_from"); err != nil {
		return err
	}
	if filter.SubmittedTo, err = dateParam(ctx, "submitted_to"); err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	grades, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) create(ctx echo.Context) error {
	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	g, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating grade")
	}
	return ctx.JSON(http.StatusCreated, g)
}

// record is the gradebook cell entry: 201 when the grade was created, 200 when an existing one was updated.
func (api *gradeApi) record(ctx echo.Context) error {
	var data grade.RecordGrade
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	g, created, err := api.svc.Record(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording grade")
	}
	if created {
		return ctx.JSON(http.StatusCreated, g)
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gradeApi) retrieve(ctx echo.Context) error {
	g, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding grade")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gradeApi) update(ctx echo.Context) error {
	g, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding grade")
	}

	var data grade.UpdateGrade
	if err = ctx.Bind(&data); err != nil {
		return err
	}
	if err = data.Validate(ctx.Request().Context(), g, api.validate, api.svc); err != nil {
		return err
	}

	g, err = api.svc.Update(ctx.Request().Context(), g, data)
	if err != nil {
		return errors.Wrap(err, "updating grade")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gradeApi) destroy(ctx echo.Context) error {
	g, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding grade")
	}
	if err = api.svc.Delete(ctx.Request().Context(), g.ID); err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *gradeApi) destroyMultiple(ctx echo.Context) error {
	ids, err := idsParam(ctx)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		if err = api.svc.Delete(ctx.Request().Context(), ids...); err != nil {
			return errors.Wrap(err, "deleting grades")
		}
	}
	return ctx.NoContent(http.StatusNoContent)
}
