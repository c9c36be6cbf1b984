package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/assignment"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/tests"
)

func Test_gradeApi_query(t *testing.T) {
	resetDB()

	token := teacherToken(t)
	ann := testutil.CreateStudent(t, stdRepo, "Ann", "Lee", "ann@school.edu", student.Grade9, student.StatusActive)
	ben := testutil.CreateStudent(t, stdRepo, "Ben", "Kim", "ben@school.edu", student.Grade10, student.StatusActive)
	quiz := testutil.CreateAssignment(t, asgRepo, "Quiz 1", assignment.CategoryQuiz, 20, 10)
	essay := testutil.CreateAssignment(t, asgRepo, "Essay", assignment.CategoryHomework, 100, 25)

	g1 := testutil.CreateGrade(t, grdRepo, ann.ID, quiz.ID, 18, testutil.Day(2024, 4, 1))
	g2 := testutil.CreateGrade(t, grdRepo, ben.ID, quiz.ID, 12, testutil.Day(2024, 4, 3))
	g3 := testutil.CreateGrade(t, grdRepo, ann.ID, essay.ID, 91, testutil.Day(2024, 4, 10))

	tests := []httpTest{
		{name: "auth required", path: "/v1/grades", wantCode: http.StatusUnauthorized},
		{name: "all", path: "/v1/grades", token: token, wantData: marchallList(t, g1, g2, g3)},
		{name: "student", path: "/v1/grades?student_id=" + itoa(ann.ID), token: token, wantData: marchallList(t, g1, g3)},
		{name: "assignment", path: "/v1/grades?assignment_id=" + itoa(quiz.ID), token: token, wantData: marchallList(t, g1, g2)},
		{name: "submitted_from", path: "/v1/grades?submitted_from=2024-04-03", token: token, wantData: marchallList(t, g2, g3)},
		{name: "submitted_to", path: "/v1/grades?submitted_to=2024-04-03", token: token, wantData: marchallList(t, g1, g2)},
		{name: "submitted_from (RFC 3339)", path: "/v1/grades?submitted_from=2024-04-03T18:00:00Z", token: token, wantData: marchallList(t, g2, g3)},
		{
			name: "submitted_from (invalid)", path: "/v1/grades?submitted_from=yesterday", token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"submitted_from":"\"yesterday\" is not a valid date"}`),
		},
		{name: "order by -score", path: "/v1/grades?ordering=-score", token: token, wantData: marchallList(t, g3, g1, g2)},
		{name: "retrieve", path: "/v1/grades/" + itoa(g2.ID), token: token, wantData: marchallObj(t, g2)},
		{name: "retrieve (not found)", path: "/v1/grades/999", token: token, wantCode: http.StatusNotFound},
	}
	runHTTPTests(t, tests)
}

func Test_gradeApi_create(t *testing.T) {
	resetDB()

	token := teacherToken(t)
	ann := testutil.CreateStudent(t, stdRepo, "Ann", "Lee", "ann@school.edu", student.Grade9, student.StatusActive)
	quiz := testutil.CreateAssignment(t, asgRepo, "Quiz 1", assignment.CategoryQuiz, 20, 10)

	body := func(studentID, assignmentID int, score string) []byte {
		return []byte(`{"student_id":` + itoa(studentID) + `,"assignment_id":` + itoa(assignmentID) + `,"score":` + score + `}`)
	}

	tests := []httpTest{
		{
			name: "required", method: http.MethodPost, path: "/v1/grades", token: token, body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"student_id":"this field is required","assignment_id":"this field is required","score":"this field is required"}`),
		},
		{
			name: "unknown student", method: http.MethodPost, path: "/v1/grades", token: token, body: body(999, quiz.ID, "10"),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"student_id":"student not found"}`),
		},
		{
			name: "unknown assignment", method: http.MethodPost, path: "/v1/grades", token: token, body: body(ann.ID, 999, "10"),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"assignment_id":"assignment not found"}`),
		},
		{
			name: "score above total points", method: http.MethodPost, path: "/v1/grades", token: token, body: body(ann.ID, quiz.ID, "20.5"),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"score":"score must be between 0 and 20"}`),
		},
	}
	runHTTPTests(t, tests)

	t.Run("zero score", func(t *testing.T) {
		rec := do(httpTest{method: http.MethodPost, path: "/v1/grades", token: token, body: body(ann.ID, quiz.ID, "0")})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var g grade.Grade
		unmarchall(t, rec, &g)
		assert.Equal(t, 0.0, g.Score)
		assert.Equal(t, core.Today(), g.SubmittedDate.UTC(), "submitted today by default")
	})
}

func Test_gradeApi_record(t *testing.T) {
	resetDB()

	token := teacherToken(t)
	ann := testutil.CreateStudent(t, stdRepo, "Ann", "Lee", "ann@school.edu", student.Grade9, student.StatusActive)
	quiz := testutil.CreateAssignment(t, asgRepo, "Quiz 1", assignment.CategoryQuiz, 20, 10)
	body := []byte(`{"student_id":` + itoa(ann.ID) + `,"assignment_id":` + itoa(quiz.ID) + `,"score":14}`)

	var created grade.Grade
	t.Run("creates", func(t *testing.T) {
		rec := do(httpTest{method: http.MethodPut, path: "/v1/grades/record", token: token, body: body})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		unmarchall(t, rec, &created)
		assert.Equal(t, 14.0, created.Score)
	})

	t.Run("updates", func(t *testing.T) {
		rec := do(httpTest{
			method: http.MethodPut, path: "/v1/grades/record", token: token,
			body: []byte(`{"student_id":` + itoa(ann.ID) + `,"assignment_id":` + itoa(quiz.ID) + `,"score":17,"comments":" better "}`),
		})
		want := created
		want.Score = 17
		want.Comments = "better"
		checkCodeAndData(t, httpTest{wantData: marchallObj(t, want)}, rec)
	})

	runHTTPTests(t, []httpTest{
		{name: "single grade", path: "/v1/grades", token: token, wantCode: http.StatusOK},
		{
			name: "score above total points", method: http.MethodPut, path: "/v1/grades/record", token: token,
			body:     []byte(`{"student_id":` + itoa(ann.ID) + `,"assignment_id":` + itoa(quiz.ID) + `,"score":21}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"score":"score must be between 0 and 20"}`),
		},
	})

	grades, err := grdRepo.QueryGrades(context.Background(), grade.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, grades, 1)
}

func Test_gradeApi_update(t *testing.T) {
	resetDB()

	token := teacherToken(t)
	ann := testutil.CreateStudent(t, stdRepo, "Ann", "Lee", "ann@school.edu", student.Grade9, student.StatusActive)
	quiz := testutil.CreateAssignment(t, asgRepo, "Quiz 1", assignment.CategoryQuiz, 20, 10)
	g := testutil.CreateGrade(t, grdRepo, ann.ID, quiz.ID, 15, testutil.Day(2024, 4, 1))
	g2 := testutil.CreateGrade(t, grdRepo, ann.ID, quiz.ID, 16, testutil.Day(2024, 4, 2))

	want := g
	want.Score = 19.5
	want.SubmittedDate = testutil.Day(2024, 4, 5)

	tests := []httpTest{
		{name: "not found", method: http.MethodPut, path: "/v1/grades/999", token: token, body: []byte(`{}`), wantCode: http.StatusNotFound},
		{
			name: "score above total points", method: http.MethodPut, path: "/v1/grades/" + itoa(g.ID), token: token,
			body: []byte(`{"score":30}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "update", method: http.MethodPut, path: "/v1/grades/" + itoa(g.ID), token: token,
			body: []byte(`{"score":19.5,"submitted_date":"2024-04-05T00:00:00Z"}`), wantData: marchallObj(t, want),
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/grades/" + itoa(g.ID), token: token, wantCode: http.StatusNoContent},
		{name: "delete (not found)", method: http.MethodDelete, path: "/v1/grades/" + itoa(g.ID), token: token, wantCode: http.StatusNotFound},
		{name: "bulk delete", method: http.MethodDelete, path: "/v1/grades?id=" + itoa(g2.ID), token: token, wantCode: http.StatusNoContent},
		{name: "remaining", path: "/v1/grades", token: token, wantData: marchallList(t)},
	}
	runHTTPTests(t, tests)
}
