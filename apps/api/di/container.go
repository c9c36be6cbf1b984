// Package di builds the dependency graph of the API server with dig.
package di

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/gradebook/apps/api/echo"
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/account"
	"github.com/trezcool/gradebook/core/assignment"
	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/communication"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/services/email"
	"github.com/trezcool/gradebook/services/logger"
	"github.com/trezcool/gradebook/services/metrics"
	"github.com/trezcool/gradebook/storage/database"
	"github.com/trezcool/gradebook/storage/database/dummy"
	"github.com/trezcool/gradebook/storage/database/sqlx"
)

const (
	// DummyEngine selects the in-memory repositories instead of PostgreSQL.
	DummyEngine = "dummy"

	dbSetupTimeout = 30 * time.Second
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Repositories groups the storage of every domain.
	Repositories struct {
		dig.Out
		Accounts       account.Repository
		Students       student.Repository
		Assignments    assignment.Repository
		Grades         grade.Repository
		Attendance     attendance.Repository
		Communications communication.Repository
	}

	serverParams struct {
		dig.In
		Conf          *core.Config
		Logger        core.Logger
		Validate      *validator.Validate
		Translator    ut.Translator
		MailSvc       core.EmailService
		AccountSvc    *account.Service
		StudentSvc    *student.Service
		AssignmentSvc *assignment.Service
		GradeSvc      *grade.Service
		AttendanceSvc *attendance.Service
		CommSvc       *communication.Service
		ReportLoader  *report.Loader
		Metrics       *metricsvc.Metrics
	}
)

func newLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds), conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
}

// newDB creates the database if needed, then migrates it. It is nil with the dummy engine.
func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, error) {
	if conf.Database.Engine == DummyEngine {
		loggerParam.Logger.Info("using the in-memory database")
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbSetupTimeout)
	defer cancel()

	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, errors.Wrap(err, "creating database")
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = database.Ping(ctx, db); err != nil {
		return nil, errors.Wrap(err, "pinging database")
	}
	if err = database.Migrate(db); err != nil {
		return nil, errors.Wrap(err, "migrating database")
	}
	loggerParam.Logger.Info(fmt.Sprintf("connected to %s", conf.Database.Address()))
	return db, nil
}

func newRepositories(conf *core.Config, db *sqlx.DB) Repositories {
	if conf.Database.Engine == DummyEngine {
		mem := dummydb.Open()
		return Repositories{
			Accounts:       dummydb.NewAccountRepository(mem),
			Students:       dummydb.NewStudentRepository(mem),
			Assignments:    dummydb.NewAssignmentRepository(mem),
			Grades:         dummydb.NewGradeRepository(mem),
			Attendance:     dummydb.NewAttendanceRepository(mem),
			Communications: dummydb.NewCommunicationRepository(mem),
		}
	}
	return Repositories{
		Accounts:       sqlxrepos.NewAccountRepository(db),
		Students:       sqlxrepos.NewStudentRepository(db),
		Assignments:    sqlxrepos.NewAssignmentRepository(db),
		Grades:         sqlxrepos.NewGradeRepository(db),
		Attendance:     sqlxrepos.NewAttendanceRepository(db),
		Communications: sqlxrepos.NewCommunicationRepository(db),
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// newValidator registers the custom tags of every domain, with their english messages.
func newValidator() (*validator.Validate, ut.Translator) {
	english := en.New()
	translator, _ := ut.New(english, english).GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	assignment.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)
	communication.InitValidators(validate, translator)
	return validate, translator
}

func newLoader(
	students *student.Service,
	assignments *assignment.Service,
	grades *grade.Service,
	att *attendance.Service,
	metrics *metricsvc.Metrics,
	logger core.Logger,
) (*report.Loader, error) {
	return report.NewLoader(students, assignments, grades, att, metrics, logger)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		MailSvc:       p.MailSvc,
		AccountSvc:    p.AccountSvc,
		StudentSvc:    p.StudentSvc,
		AssignmentSvc: p.AssignmentSvc,
		GradeSvc:      p.GradeSvc,
		AttendanceSvc: p.AttendanceSvc,
		CommSvc:       p.CommSvc,
		ReportLoader:  p.ReportLoader,
		Metrics:       p.Metrics,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(newValidator))
	must(c.Provide(account.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(assignment.NewService))
	must(c.Provide(grade.NewService))
	must(c.Provide(func(svc *grade.Service) assignment.ScoreReader { return svc }))
	must(c.Provide(attendance.NewService))
	must(c.Provide(communication.NewService))
	must(c.Provide(metricsvc.New))
	must(c.Provide(newLoader))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
