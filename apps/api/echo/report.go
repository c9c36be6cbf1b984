package echoapi

import (
	"bytes"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/report"
)

const (
	reportStudents    = "students"
	reportAssignments = "assignments"

	reportTemplate = "report"
	csvContentType = "text/csv"
)

type reportApi struct {
	loader        *report.Loader
	auth          *authenticator
	mailSvc       core.EmailService
	validate      *validator.Validate
	activityLimit int
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := reportApi{
		loader:        s.deps.ReportLoader,
		auth:          s.auth,
		mailSvc:       s.deps.MailSvc,
		validate:      s.deps.Validate,
		activityLimit: s.deps.Conf.RecentActivityLimit,
	}

	rg := g.Group("/reports", jwt)
	rg.GET("/dashboard", api.dashboard)
	rg.GET("/overview", api.overview)
	rg.GET("/students", api.students)
	rg.GET("/assignments", api.assignments)
	rg.GET("/gradebook", api.gradebook)
	rg.GET("/attendance", api.attendance)
	rg.GET("/activity", api.activity)
	rg.GET("/students.csv", api.studentsCSV)
	rg.GET("/assignments.csv", api.assignmentsCSV)
	rg.POST("/email", api.email)
}

func (api *reportApi) snapshot(ctx echo.Context) (*report.Snapshot, error) {
	snap, err := api.loader.Load(ctx.Request().Context())
	if err != nil {
		return nil, errors.Wrap(err, "loading report data")
	}
	return snap, nil
}

func (api *reportApi) limitParam(ctx echo.Context) (int, error) {
	limit, err := intParam(ctx, "limit", api.activityLimit)
	if err != nil {
		return 0, err
	}
	if limit < 0 {
		return 0, core.FieldValidationError("limit", errors.New("must be 0 or greater"))
	}
	return limit, nil
}

// dashboard serves every view derived from the same snapshot.
func (api *reportApi) dashboard(ctx echo.Context) error {
	limit, err := api.limitParam(ctx)
	if err != nil {
		return err
	}
	snap, err := api.snapshot(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, Dashboard{
		Overview:           snap.Overview(),
		StudentPerformance: snap.StudentPerformance(),
		AssignmentAnalysis: snap.AssignmentAnalysis(),
		AttendanceSummary:  snap.AttendanceSummary(),
		RecentActivity:     snap.RecentActivity(limit),
		LoadedAt:           snap.LoadedAt,
	})
}

func (api *reportApi) overview(ctx echo.Context) error {
	snap, err := api.snapshot(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap.Overview())
}

func (api *reportApi) students(ctx echo.Context) error {
	snap, err := api.snapshot(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap.StudentPerformance())
}

func (api *reportApi) assignments(ctx echo.Context) error {
	snap, err := api.snapshot(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap.AssignmentAnalysis())
}

func (api *reportApi) gradebook(ctx echo.Context) error {
	snap, err := api.snapshot(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap.Gradebook())
}

func (api *reportApi) attendance(ctx echo.Context) error {
	snap, err := api.snapshot(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap.AttendanceSummary())
}

func (api *reportApi) activity(ctx echo.Context) error {
	limit, err := api.limitParam(ctx)
	if err != nil {
		return err
	}
	snap, err := api.snapshot(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap.RecentActivity(limit))
}

// renderCSV writes the named report of snap as CSV.
func renderCSV(buf *bytes.Buffer, name string, snap *report.Snapshot) (filename string, err error) {
	switch name {
	case reportStudents:
		return report.StudentCSVFilename, report.WriteStudentCSV(buf, snap.StudentPerformance())
	case reportAssignments:
		return report.AssignmentCSVFilename, report.WriteAssignmentCSV(buf, snap.AssignmentAnalysis())
	}
	return "", errors.Errorf("unknown report %q", name)
}

func (api *reportApi) attachment(ctx echo.Context, name string) error {
	snap, err := api.snapshot(ctx)
	if err != nil {
		return err
	}
	buf := new(bytes.Buffer)
	filename, err := renderCSV(buf, name, snap)
	if err != nil {
		return errors.Wrap(err, "writing csv")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Blob(http.StatusOK, csvContentType, buf.Bytes())
}

func (api *reportApi) studentsCSV(ctx echo.Context) error {
	return api.attachment(ctx, reportStudents)
}

func (api *reportApi) assignmentsCSV(ctx echo.Context) error {
	return api.attachment(ctx, reportAssignments)
}

// email sends the CSV export of a report to the requesting account.
func (api *reportApi) email(ctx echo.Context) error {
	var data EmailReportRequest
	if err := ctx.Bind(&data); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	acc, err := api.auth.contextAccount(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context account")
	}
	snap, err := api.snapshot(ctx)
	if err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	filename, err := renderCSV(buf, data.Report, snap)
	if err != nil {
		return errors.Wrap(err, "writing csv")
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: acc.Name, Address: acc.Email}},
		Subject:      "Your " + data.Report + " report",
		TemplateName: reportTemplate,
		TemplateData: reportEmailData{
			Report:      data.Report,
			GeneratedAt: snap.LoadedAt.Format(time.RFC1123),
		},
	}
	if err = msg.Attach(buf, filename, csvContentType); err != nil {
		return errors.Wrap(err, "attaching csv")
	}
	api.mailSvc.SendMessages(msg)

	return ctx.JSON(http.StatusAccepted, SuccessResponse{Success: "The report will arrive in your inbox shortly."})
}

type (
	Dashboard struct {
		Overview           report.Overview             `json:"overview"`
		StudentPerformance []report.StudentPerformance `json:"student_performance"`
		AssignmentAnalysis []report.AssignmentAnalysis `json:"assignment_analysis"`
		AttendanceSummary  []report.AttendanceSummary  `json:"attendance_summary"`
		RecentActivity     []report.Activity           `json:"recent_activity"`
		LoadedAt           time.Time                   `json:"loaded_at"`
	}

	EmailReportRequest struct {
		Report string `json:"report" validate:"required,oneof=students assignments"`
	}

	reportEmailData struct {
		Report      string
		GeneratedAt string
	}
)

func (er *EmailReportRequest) Validate(validate *validator.Validate) error {
	er.Report = core.CleanString(er.Report, true /* lower */)
	return validate.Struct(er)
}
