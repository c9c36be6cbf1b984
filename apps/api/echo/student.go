package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/communication"
	"github.com/trezcool/gradebook/core/student"
)

type studentApi struct {
	svc      *student.Service
	commSvc  *communication.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := studentApi{
		svc:      s.deps.StudentSvc,
		commSvc:  s.deps.CommSvc,
		validate: s.deps.Validate,
	}

	sg := g.Group("/students", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create)
	sg.DELETE("", api.destroyMultiple)
	sg.GET("/choices", api.choices)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/communications", api.communications)
	dg.POST("/notes", api.addNote)
}

func (api *studentApi) object(ctx echo.Context) (student.Student, error) {
	id, err := idParam(ctx, "id")
	if err != nil {
		return student.Student{}, err
	}
	return api.svc.GetByID(ctx.Request().Context(), id)
}

func (api *studentApi) query(ctx echo.Context) error {
	var filter student.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	s, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) update(ctx echo.Context) error {
	s, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}

	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return err
	}
	if err = data.Validate(ctx.Request().Context(), s, api.validate, api.svc); err != nil {
		return err
	}

	s, err = api.svc.Update(ctx.Request().Context(), s, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	s, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	if err = api.svc.Delete(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) destroyMultiple(ctx echo.Context) error {
	ids, err := idsParam(ctx)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		if err = api.svc.Delete(ctx.Request().Context(), ids...); err != nil {
			return errors.Wrap(err, "deleting students")
		}
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) choices(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, StudentChoices{GradeLevels: student.GradeLevels, Statuses: student.Statuses})
}

func (api *studentApi) communications(ctx echo.Context) error {
	s, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	comms, err := api.commSvc.GetByStudent(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "querying student communications")
	}
	return ctx.JSON(http.StatusOK, comms)
}

func (api *studentApi) addNote(ctx echo.Context) error {
	s, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}

	var data communication.NewNote
	if err = ctx.Bind(&data); err != nil {
		return err
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	note, err := api.commSvc.AddNote(ctx.Request().Context(), s.ID, data)
	if err != nil {
		return errors.Wrap(err, "adding note")
	}
	return ctx.JSON(http.StatusCreated, note)
}

type StudentChoices struct {
	GradeLevels []string `json:"grade_levels"`
	Statuses    []string `json:"statuses"`
}
