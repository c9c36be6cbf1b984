package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/assignment"
)

type assignmentApi struct {
	svc      *assignment.Service
	validate *validator.Validate
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := assignmentApi{svc: s.deps.AssignmentSvc, validate: s.deps.Validate}

	ag := g.Group("/assignments", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/categories", api.categories)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

func (api *assignmentApi) object(ctx echo.Context) (assignment.Assignment, error) {
	id, err := idParam(ctx, "id")
	if err != nil {
		return assignment.Assignment{}, err
	}
	return api.svc.GetByID(ctx.Request().Context(), id)
}

func (api *assignmentApi) query(ctx echo.Context) error {
	var filter assignment.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []assignment.Assignment{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	assignments, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) categories(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, assignment.Categories)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	a, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	a, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding assignment")
	}

	var data assignment.UpdateAssignment
	if err = ctx.Bind(&data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err = api.svc.Update(ctx.Request().Context(), a, data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

// destroy deletes the assignment along with its grades.
func (api *assignmentApi) destroy(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}
