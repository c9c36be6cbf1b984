package tests

import (
	"fmt"
	"os"
	"testing"

	. "github.com/trezcool/gradebook/apps/api/echo"
	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/account"
	"github.com/trezcool/gradebook/core/assignment"
	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/communication"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/report"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/fs"
	"github.com/trezcool/gradebook/services/email"
	"github.com/trezcool/gradebook/storage/database/dummy"
	"github.com/trezcool/gradebook/tests"
)

var (
	db      *dummydb.DB
	app     *Server
	mailSvc *emailsvc.ConsoleServiceMock

	accRepo  account.Repository
	stdRepo  student.Repository
	asgRepo  assignment.Repository
	grdRepo  grade.Repository
	attRepo  attendance.Repository
	commRepo communication.Repository
)

func TestMain(m *testing.M) {
	conf := core.NewTestConfig()
	logger := testutil.NewLogger()
	validate, translator := testutil.NewValidator()
	core.ParseEmailTemplates(appfs.FS, conf, logger)

	// set up DB & repos
	db = dummydb.Open()
	accRepo = dummydb.NewAccountRepository(db)
	stdRepo = dummydb.NewStudentRepository(db)
	asgRepo = dummydb.NewAssignmentRepository(db)
	grdRepo = dummydb.NewGradeRepository(db)
	attRepo = dummydb.NewAttendanceRepository(db)
	commRepo = dummydb.NewCommunicationRepository(db)

	// set up services
	mailSvc = emailsvc.NewConsoleServiceMock(conf, logger)
	stdSvc := student.NewService(stdRepo)
	grdSvc := grade.NewService(grdRepo, stdRepo, asgRepo)
	asgSvc := assignment.NewService(asgRepo, grdSvc)
	attSvc := attendance.NewService(attRepo, stdRepo)
	loader, err := report.NewLoader(stdSvc, asgSvc, grdSvc, attSvc, report.NopRecorder, logger)
	if err != nil {
		fmt.Printf("report.NewLoader(): %v", err)
		os.Exit(1)
	}

	// set up server
	app = NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		Validate:      validate,
		Translator:    translator,
		MailSvc:       mailSvc,
		AccountSvc:    account.NewService(accRepo, mailSvc, conf),
		StudentSvc:    stdSvc,
		AssignmentSvc: asgSvc,
		GradeSvc:      grdSvc,
		AttendanceSvc: attSvc,
		CommSvc:       communication.NewService(commRepo, stdRepo, mailSvc),
		ReportLoader:  loader,
	})

	// run tests
	code := m.Run()

	// clean up
	if err = app.Close(); err != nil {
		fmt.Printf("app.Close(): %v", err)
		os.Exit(1)
	}
	os.Exit(code)
}

// resetDB empties the database and the mailbox between tests.
func resetDB() {
	db.Reset()
	mailSvc.Reset()
}
