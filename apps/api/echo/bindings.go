package echoapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// strictBinder rejects JSON bodies carrying unknown keys. Other requests go through echo.DefaultBinder.
type strictBinder struct {
	echo.DefaultBinder
}

func (b *strictBinder) Bind(i interface{}, ctx echo.Context) error {
	req := ctx.Request()
	if req.ContentLength == 0 || !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return b.DefaultBinder.Bind(i, ctx)
	}

	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error()).SetInternal(err)
	}
	return nil
}

func idParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// idsParam parses the repeated `id` query param of bulk operations.
func idsParam(ctx echo.Context) ([]int, error) {
	vals := ctx.QueryParams()["id"]
	ids := make([]int, 0, len(vals))
	for _, v := range vals {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, core.FieldValidationError("id", errors.Errorf("%q is not a valid id", v))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// dateParam parses a YYYY-MM-DD (or RFC 3339) query param. It is the zero time when absent.
func dateParam(ctx echo.Context, name string) (time.Time, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(core.DateLayout, val)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, val); err != nil {
			return time.Time{}, core.FieldValidationError(name, errors.Errorf("%q is not a valid date", val))
		}
	}
	return core.TruncateDay(t), nil
}

func boolParam(ctx echo.Context, name string) (*bool, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil, core.FieldValidationError(name, errors.Errorf("%q is not a valid boolean", val))
	}
	return &b, nil
}

func intParam(ctx echo.Context, name string, def int) (int, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, core.FieldValidationError(name, errors.Errorf("%q is not a valid number", val))
	}
	return n, nil
}

type (
	SuccessResponse struct {
		Success string `json:"success"`
	}
)
