package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core/assignment"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/tests"
)

func Test_assignmentApi(t *testing.T) {
	resetDB()

	token := teacherToken(t)
	quiz := testutil.CreateAssignment(t, asgRepo, "Quiz 1", assignment.CategoryQuiz, 20, 10)
	essay := testutil.CreateAssignment(t, asgRepo, "Essay", assignment.CategoryHomework, 100, 25)

	tests := []httpTest{
		{name: "auth required", path: "/v1/assignments", wantCode: http.StatusUnauthorized},
		{name: "all", path: "/v1/assignments", token: token, wantData: marchallList(t, quiz, essay)},
		{name: "order by -total_points", path: "/v1/assignments?ordering=-total_points", token: token, wantData: marchallList(t, essay, quiz)},
		{name: "retrieve", path: "/v1/assignments/" + itoa(quiz.ID), token: token, wantData: marchallObj(t, quiz)},
		{name: "retrieve (not found)", path: "/v1/assignments/999", token: token, wantCode: http.StatusNotFound},
		{name: "categories", path: "/v1/assignments/categories", token: token, wantData: marchallObj(t, assignment.Categories)},
		{
			name: "create (required)", method: http.MethodPost, path: "/v1/assignments", token: token, body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"title":"this field is required","category":"this field is required","total_points":"this field is required"}`),
		},
		{
			name: "create (out of range)", method: http.MethodPost, path: "/v1/assignments", token: token,
			body: []byte(`{"title":"Lab","category":"Project","total_points":-5,"weight":120}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "update (not found)", method: http.MethodPut, path: "/v1/assignments/999", token: token,
			body: []byte(`{"title":"Nope"}`), wantCode: http.StatusNotFound,
		},
		{
			name: "update (invalid category)", method: http.MethodPut, path: "/v1/assignments/" + itoa(quiz.ID), token: token,
			body:     []byte(`{"category":"Nap"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"category":"must be one of: Homework, Quiz, Test, Project, Participation"}`),
		},
	}
	runHTTPTests(t, tests)

	t.Run("create", func(t *testing.T) {
		rec := do(httpTest{
			method: http.MethodPost, path: "/v1/assignments", token: token,
			body: []byte(`{"title":" Lab report ","category":"Project","total_points":50,"weight":30,"due_date":"2024-05-10T15:04:05Z"}`),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var a assignment.Assignment
		unmarchall(t, rec, &a)
		assert.Equal(t, "Lab report", a.Title)
		assert.Equal(t, 50.0, a.TotalPoints)
		require.NotNil(t, a.DueDate)
		assert.Equal(t, testutil.Day(2024, 5, 10), a.DueDate.UTC())
	})

	t.Run("update", func(t *testing.T) {
		rec := do(httpTest{
			method: http.MethodPut, path: "/v1/assignments/" + itoa(quiz.ID), token: token,
			body: []byte(`{"total_points":25}`),
		})
		want := quiz
		want.TotalPoints = 25
		checkCodeAndData(t, httpTest{wantData: marchallObj(t, want)}, rec)
	})
}

func Test_assignmentApi_destroy(t *testing.T) {
	resetDB()

	token := teacherToken(t)
	ann := testutil.CreateStudent(t, stdRepo, "Ann", "Lee", "ann@school.edu", student.Grade9, student.StatusActive)
	quiz := testutil.CreateAssignment(t, asgRepo, "Quiz 1", assignment.CategoryQuiz, 20, 10)
	essay := testutil.CreateAssignment(t, asgRepo, "Essay", assignment.CategoryHomework, 100, 25)
	testutil.CreateGrade(t, grdRepo, ann.ID, quiz.ID, 15, testutil.Day(2024, 4, 1))
	kept := testutil.CreateGrade(t, grdRepo, ann.ID, essay.ID, 80, testutil.Day(2024, 4, 2))

	tests := []httpTest{
		{name: "not found", method: http.MethodDelete, path: "/v1/assignments/999", token: token, wantCode: http.StatusNotFound},
		{name: "delete", method: http.MethodDelete, path: "/v1/assignments/" + itoa(quiz.ID), token: token, wantCode: http.StatusNoContent},
		{name: "deleted", path: "/v1/assignments/" + itoa(quiz.ID), token: token, wantCode: http.StatusNotFound},
		{name: "grades are deleted along", path: "/v1/grades", token: token, wantData: marchallList(t, kept)},
	}
	runHTTPTests(t, tests)
}

func Test_assignmentApi_updateTotalPoints(t *testing.T) {
	resetDB()

	token := teacherToken(t)
	ann := testutil.CreateStudent(t, stdRepo, "Ann", "Lee", "ann@school.edu", student.Grade9, student.StatusActive)
	essay := testutil.CreateAssignment(t, asgRepo, "Essay", assignment.CategoryHomework, 100, 25)
	testutil.CreateGrade(t, grdRepo, ann.ID, essay.ID, 80, testutil.Day(2024, 4, 2))

	lowered := essay
	lowered.TotalPoints = 80
	raised := essay
	raised.TotalPoints = 120

	tests := []httpTest{
		{
			name: "below the highest score", method: http.MethodPut, path: "/v1/assignments/" + itoa(essay.ID), token: token,
			body:     []byte(`{"total_points":10}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"total_points":"must be at least 80, the highest recorded score"}`),
		},
		{name: "unchanged", path: "/v1/assignments/" + itoa(essay.ID), token: token, wantData: marchallObj(t, essay)},
		{
			name: "down to the highest score", method: http.MethodPut, path: "/v1/assignments/" + itoa(essay.ID), token: token,
			body: []byte(`{"total_points":80}`), wantData: marchallObj(t, lowered),
		},
		{
			name: "raise", method: http.MethodPut, path: "/v1/assignments/" + itoa(essay.ID), token: token,
			body: []byte(`{"total_points":120}`), wantData: marchallObj(t, raised),
		},
	}
	runHTTPTests(t, tests)
}
