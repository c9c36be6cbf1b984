package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/account"
)

type accountApi struct {
	svc      *account.Service
	auth     *authenticator
	validate *validator.Validate
	logger   core.Logger
}

func registerAccountAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := accountApi{
		svc:      s.deps.AccountSvc,
		auth:     s.auth,
		validate: s.deps.Validate,
		logger:   s.deps.Logger,
	}

	ag := g.Group("/accounts")

	// un-authed endpoints
	ag.POST("/login", api.login)
	ag.POST("/password-reset", api.resetPassword)
	ag.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	authed := ag.Group("", jwt)
	authed.POST("/token-refresh", api.refreshToken)
	authed.GET("/me", api.me)

	// admin endpoints
	admin := authed.Group("", adminMiddleware())
	admin.GET("", api.query)
	admin.POST("", api.create)
	admin.DELETE("", api.destroyMultiple)
	admin.GET("/roles", api.queryRoles)
	admin.GET("/:id", api.retrieve)
	admin.PUT("/:id", api.update)
	admin.DELETE("/:id", api.destroy)
}

// Handlers

func (api *accountApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := api.auth.authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := api.auth.GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *accountApi) refreshToken(ctx echo.Context) error {
	token, err := api.auth.refreshToken(ctx)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *accountApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email)
	if !(err == nil || err == account.ErrNotFound) {
		// do not return errors to attackers
		api.logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *accountApi) confirmPasswordReset(ctx echo.Context) error {
	var data account.ResetPassword
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *accountApi) me(ctx echo.Context) error {
	acc, err := api.auth.contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	return ctx.JSON(http.StatusOK, acc)
}

func (api *accountApi) query(ctx echo.Context) error {
	var filter account.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []account.Account{})
	}
	isActive, err := boolParam(ctx, "is_active")
	if err != nil {
		return err
	}
	filter.IsActive = isActive

	ordering := new(Ordering)
	ordering.Bind(ctx)

	accounts, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying accounts")
	}
	return ctx.JSON(http.StatusOK, accounts)
}

func (api *accountApi) create(ctx echo.Context) error {
	var data account.NewAccount
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	acc, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating account")
	}
	return ctx.JSON(http.StatusCreated, acc)
}

func (api *accountApi) object(ctx echo.Context) (account.Account, error) {
	id, err := idParam(ctx, "id")
	if err != nil {
		return account.Account{}, err
	}
	return api.svc.GetByID(ctx.Request().Context(), id)
}

func (api *accountApi) retrieve(ctx echo.Context) error {
	acc, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding account")
	}
	return ctx.JSON(http.StatusOK, acc)
}

func (api *accountApi) update(ctx echo.Context) error {
	acc, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding account")
	}

	var data account.UpdateAccount
	if err = ctx.Bind(&data); err != nil {
		return err
	}
	if err = data.Validate(ctx.Request().Context(), acc, api.validate, api.svc); err != nil {
		return err
	}

	// Say No to Suicide! ctxAccount cannot deactivate or demote themselves
	ctxAcc, err := api.auth.contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	if acc.ID == ctxAcc.ID && ((data.IsActive != nil && !*data.IsActive) || data.Role != acc.Role) {
		return errHttpForbidden
	}

	acc, err = api.svc.Update(ctx.Request().Context(), acc, data)
	if err != nil {
		return errors.Wrap(err, "updating account")
	}
	return ctx.JSON(http.StatusOK, acc)
}

func (api *accountApi) destroy(ctx echo.Context) error {
	acc, err := api.object(ctx)
	if err != nil {
		return errors.Wrap(err, "finding account")
	}

	// Say No to Suicide! ctxAccount cannot delete themselves
	ctxAcc, err := api.auth.contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	if acc.ID == ctxAcc.ID {
		return errHttpForbidden
	}

	if err = api.svc.Delete(ctx.Request().Context(), acc.ID); err != nil {
		return errors.Wrap(err, "deleting account")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *accountApi) destroyMultiple(ctx echo.Context) error {
	ids, err := idsParam(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}

	ctxAcc, err := api.auth.contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	for _, id := range ids {
		if id == ctxAcc.ID {
			return errHttpForbidden
		}
	}

	if err = api.svc.Delete(ctx.Request().Context(), ids...); err != nil {
		return errors.Wrap(err, "deleting accounts")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *accountApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, account.Roles)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
