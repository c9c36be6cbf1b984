package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core/attendance"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/tests"
)

func Test_attendanceApi_query(t *testing.T) {
	resetDB()

	token := teacherToken(t)
	ann := testutil.CreateStudent(t, stdRepo, "Ann", "Lee", "ann@school.edu", student.Grade9, student.StatusActive)
	ben := testutil.CreateStudent(t, stdRepo, "Ben", "Kim", "ben@school.edu", student.Grade10, student.StatusActive)
	r1 := testutil.CreateAttendance(t, attRepo, ann.ID, testutil.Day(2024, 4, 1), attendance.StatusPresent)
	r2 := testutil.CreateAttendance(t, attRepo, ben.ID, testutil.Day(2024, 4, 1), attendance.StatusAbsent)
	r3 := testutil.CreateAttendance(t, attRepo, ann.ID, testutil.Day(2024, 4, 2), attendance.StatusLate)

	tests := []httpTest{
		{name: "auth required", path: "/v1/attendance", wantCode: http.StatusUnauthorized},
		{name: "all", path: "/v1/attendance", token: token, wantData: marchallList(t, r1, r2, r3)},
		{name: "student", path: "/v1/attendance?student_id=" + itoa(ann.ID), token: token, wantData: marchallList(t, r1, r3)},
		{name: "status", path: "/v1/attendance?status=Absent&status=Late", token: token, wantData: marchallList(t, r2, r3)},
		{name: "from", path: "/v1/attendance?from=2024-04-02", token: token, wantData: marchallList(t, r3)},
		{name: "to", path: "/v1/attendance?to=2024-04-01", token: token, wantData: marchallList(t, r1, r2)},
		{
			name: "from (invalid)", path: "/v1/attendance?from=04/02/2024", token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"from":"\"04/02/2024\" is not a valid date"}`),
		},
		{name: "order by -date", path: "/v1/attendance?ordering=-date,student_id", token: token, wantData: marchallList(t, r3, r1, r2)},
		{name: "retrieve", path: "/v1/attendance/" + itoa(r2.ID), token: token, wantData: marchallObj(t, r2)},
		{name: "retrieve (not found)", path: "/v1/attendance/999", token: token, wantCode: http.StatusNotFound},
		{name: "statuses", path: "/v1/attendance/statuses", token: token, wantData: marchallObj(t, attendance.Statuses)},
	}
	runHTTPTests(t, tests)
}

func Test_attendanceApi_create(t *testing.T) {
	resetDB()

	token := teacherToken(t)
	ann := testutil.CreateStudent(t, stdRepo, "Ann", "Lee", "ann@school.edu", student.Grade9, student.StatusActive)
	testutil.CreateAttendance(t, attRepo, ann.ID, testutil.Day(2024, 4, 1), attendance.StatusPresent)

	tests := []httpTest{
		{
			name: "required", method: http.MethodPost, path: "/v1/attendance", token: token, body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"student_id":"this field is required","date":"this field is required","status":"this field is required"}`),
		},
		{
			name: "invalid status", method: http.MethodPost, path: "/v1/attendance", token: token,
			body:     []byte(`{"student_id":` + itoa(ann.ID) + `,"date":"2024-04-02T00:00:00Z","status":"Asleep"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"status":"must be one of: Present, Absent, Late, Excused"}`),
		},
		{
			name: "unknown student", method: http.MethodPost, path: "/v1/attendance", token: token,
			body:     []byte(`{"student_id":999,"date":"2024-04-02T00:00:00Z","status":"Present"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"student_id":"student 999 not found"}`),
		},
		{
			name: "already recorded", method: http.MethodPost, path: "/v1/attendance", token: token,
			body:     []byte(`{"student_id":` + itoa(ann.ID) + `,"date":"2024-04-01T13:45:00Z","status":"Late"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"date":"attendance already recorded for this student on this day"}`),
		},
	}
	runHTTPTests(t, tests)

	t.Run("success", func(t *testing.T) {
		rec := do(httpTest{
			method: http.MethodPost, path: "/v1/attendance", token: token,
			body: []byte(`{"student_id":` + itoa(ann.ID) + `,"date":"2024-04-02T08:30:00Z","status":"Excused","notes":" dentist "}`),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var r attendance.Record
		unmarchall(t, rec, &r)
		assert.Equal(t, testutil.Day(2024, 4, 2), r.Date.UTC(), "dates are truncated to the day")
		assert.Equal(t, attendance.StatusExcused, r.Status)
		assert.Equal(t, "dentist", r.Notes)
	})
}

func Test_attendanceApi_mark(t *testing.T) {
	resetDB()

	token := teacherToken(t)
	ann := testutil.CreateStudent(t, stdRepo, "Ann", "Lee", "ann@school.edu", student.Grade9, student.StatusActive)
	ben := testutil.CreateStudent(t, stdRepo, "Ben", "Kim", "ben@school.edu", student.Grade10, student.StatusActive)
	existing := testutil.CreateAttendance(t, attRepo, ann.ID, testutil.Day(2024, 4, 3), attendance.StatusAbsent)

	tests := []httpTest{
		{
			name: "required", method: http.MethodPost, path: "/v1/attendance/mark", token: token, body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"date":"this field is required","statuses":"this field is required"}`),
		},
		{
			name: "invalid status", method: http.MethodPost, path: "/v1/attendance/mark", token: token,
			body:     []byte(`{"date":"2024-04-03T00:00:00Z","statuses":{"` + itoa(ann.ID) + `":"Asleep"}}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown student", method: http.MethodPost, path: "/v1/attendance/mark", token: token,
			body:     []byte(`{"date":"2024-04-03T00:00:00Z","statuses":{"` + itoa(ann.ID) + `":"Present","999":"Present"}}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"statuses":"student 999 not found"}`),
		},
	}
	runHTTPTests(t, tests)

	t.Run("success", func(t *testing.T) {
		rec := do(httpTest{
			method: http.MethodPost, path: "/v1/attendance/mark", token: token,
			body: []byte(`{"date":"2024-04-03T00:00:00Z","statuses":{"` + itoa(ben.ID) + `":"Late","` + itoa(ann.ID) + `":"Present"}}`),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var records []attendance.Record
		unmarchall(t, rec, &records)
		require.Len(t, records, 2)
		assert.Equal(t, existing.ID, records[0].ID, "existing records are updated")
		assert.Equal(t, attendance.StatusPresent, records[0].Status)
		assert.Equal(t, ben.ID, records[1].StudentID)
		assert.Equal(t, attendance.StatusLate, records[1].Status)

		rec = do(httpTest{path: "/v1/attendance?from=2024-04-03&to=2024-04-03", token: token})
		checkCodeAndData(t, httpTest{wantData: marchallList(t, records[0], records[1])}, rec)
	})
}

func Test_attendanceApi_calendar(t *testing.T) {
	resetDB()

	token := teacherToken(t)
	ann := testutil.CreateStudent(t, stdRepo, "Ann", "Lee", "ann@school.edu", student.Grade9, student.StatusActive)
	ben := testutil.CreateStudent(t, stdRepo, "Ben", "Kim", "ben@school.edu", student.Grade10, student.StatusActive)
	r1 := testutil.CreateAttendance(t, attRepo, ann.ID, testutil.Day(2024, 4, 1), attendance.StatusPresent)
	r2 := testutil.CreateAttendance(t, attRepo, ben.ID, testutil.Day(2024, 4, 30), attendance.StatusAbsent)
	testutil.CreateAttendance(t, attRepo, ann.ID, testutil.Day(2024, 4, 6), attendance.StatusPresent) // Saturday
	testutil.CreateAttendance(t, attRepo, ann.ID, testutil.Day(2024, 5, 1), attendance.StatusLate)

	wantDays := []string{
		"2024-04-01", "2024-04-02", "2024-04-03", "2024-04-04", "2024-04-05",
		"2024-04-08", "2024-04-09", "2024-04-10", "2024-04-11", "2024-04-12",
		"2024-04-15", "2024-04-16", "2024-04-17", "2024-04-18", "2024-04-19",
		"2024-04-22", "2024-04-23", "2024-04-24", "2024-04-25", "2024-04-26",
		"2024-04-29", "2024-04-30",
	}

	tests := []httpTest{
		{name: "days", path: "/v1/attendance/days?year=2024&month=4", token: token, wantData: marchallObj(t, wantDays)},
		{
			name: "days (invalid month)", path: "/v1/attendance/days?year=2024&month=13", token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"month":"13 is not a valid month"}`),
		},
		{name: "days (invalid year)", path: "/v1/attendance/days?year=soon", token: token, wantCode: http.StatusBadRequest},
		{
			name: "sheet", path: "/v1/attendance/sheet?year=2024&month=4", token: token,
			wantData: marchallObj(t, attendance.NewSheet(2024, time.April, []attendance.Record{r1, r2})),
		},
		{
			name: "sheet (empty month)", path: "/v1/attendance/sheet?year=2024&month=2", token: token,
			wantData: marchallObj(t, attendance.NewSheet(2024, time.February, nil)),
		},
	}
	runHTTPTests(t, tests)

	t.Run("current month by default", func(t *testing.T) {
		rec := do(httpTest{path: "/v1/attendance/days", token: token})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		now := time.Now().UTC()
		var days []string
		unmarchall(t, rec, &days)
		assert.Len(t, days, len(attendance.SchoolDays(now.Year(), now.Month())))
	})
}

func Test_attendanceApi_update(t *testing.T) {
	resetDB()

	token := teacherToken(t)
	ann := testutil.CreateStudent(t, stdRepo, "Ann", "Lee", "ann@school.edu", student.Grade9, student.StatusActive)
	r1 := testutil.CreateAttendance(t, attRepo, ann.ID, testutil.Day(2024, 4, 1), attendance.StatusAbsent)
	r2 := testutil.CreateAttendance(t, attRepo, ann.ID, testutil.Day(2024, 4, 2), attendance.StatusAbsent)

	want := r1
	want.Status = attendance.StatusExcused
	want.Notes = "flu"

	tests := []httpTest{
		{name: "not found", method: http.MethodPut, path: "/v1/attendance/999", token: token, body: []byte(`{}`), wantCode: http.StatusNotFound},
		{
			name: "invalid status", method: http.MethodPut, path: "/v1/attendance/" + itoa(r1.ID), token: token,
			body:     []byte(`{"status":"Gone"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"status":"must be one of: Present, Absent, Late, Excused"}`),
		},
		{
			name: "update", method: http.MethodPut, path: "/v1/attendance/" + itoa(r1.ID), token: token,
			body: []byte(`{"status":"Excused","notes":"flu"}`), wantData: marchallObj(t, want),
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/attendance/" + itoa(r1.ID), token: token, wantCode: http.StatusNoContent},
		{name: "bulk delete", method: http.MethodDelete, path: "/v1/attendance?id=" + itoa(r2.ID), token: token, wantCode: http.StatusNoContent},
		{name: "remaining", path: "/v1/attendance", token: token, wantData: marchallList(t)},
	}
	runHTTPTests(t, tests)
}
