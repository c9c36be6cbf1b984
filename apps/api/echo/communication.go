package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/communication"
)

type communicationApi struct {
	svc      *communication.Service
	validate *validator.Validate
}

func registerCommunicationAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := communicationApi{svc: s.deps.CommSvc, validate: s.deps.Validate}

	cg := g.Group("/communications", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.DELETE("", api.destroyMultiple)
	cg.GET("/types", api.types)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
}

func (api *communicationApi) object(ctx echo.Context) (communication.Communication, error) {
	id, err := idParam(ctx, "id")
	if err != nil {
		return communication.Communication{}, err
	}
	return api.svc.GetByID(ctx.Request().Context(), id)
}

func (api *communicationApi) query(ctx echo.Context) error {
	var filter communication.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []communication.Communication{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	comms, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying communications")
	}
	return ctx.JSON(http.StatusOK, comms)
}

// create logs a communication. Emails are also sent to the parents of the student.
func (api *communicationApi) create(ctx echo.Context) error {
	var data communication.NewCommunication
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating communication")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *communicationApi) types(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, communication.Types)
}

func (api *communicationApi) retrieve(ctx echo.Context) error {
	c, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding communication")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *communicationApi) update(ctx echo.Context) error {
	c, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding communication")
	}

	var data communication.UpdateCommunication
	if err = ctx.Bind(&data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	c, err = api.svc.Update(ctx.Request().Context(), c, data)
	if err != nil {
		return errors.Wrap(err, "updating communication")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *communicationApi) destroy(ctx echo.Context) error {
	c, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding communication")
	}
	if err = api.svc.Delete(ctx.Request().Context(), c.ID); err != nil {
		return errors.Wrap(err, "deleting communication")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *communicationApi) destroyMultiple(ctx echo.Context) error {
	ids, err := idsParam(ctx)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		if err = api.svc.Delete(ctx.Request().Context(), ids...); err != nil {
			return errors.Wrap(err, "deleting communications")
		}
	}
	return ctx.NoContent(http.StatusNoContent)
}
