package tests

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/apps/api/echo"
	"github.com/trezcool/gradebook/core/account"
	"github.com/trezcool/gradebook/tests"
)

func Test_accountApi_login(t *testing.T) {
	resetDB()

	testutil.CreateAccount(t, accRepo, "Ann Teacher", "ann@school.edu", "s3cret-pass", account.RoleTeacher, true)
	testutil.CreateAccount(t, accRepo, "Old Timer", "old@school.edu", "s3cret-pass", account.RoleTeacher, false)

	path := "/v1/accounts/login"
	body := func(email, pwd string) []byte {
		return marchallObj(t, echoapi.LoginRequest{Email: email, Password: pwd})
	}
	failed := marchallObj(t, httpErr{Error: "authentication failed"})

	tests := []httpTest{
		{
			name: "required fields", method: http.MethodPost, path: path, body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email":"this field is required","password":"this field is required"}`),
		},
		{
			name: "unknown field", method: http.MethodPost, path: path,
			body: []byte(`{"email":"ann@school.edu","password":"s3cret-pass","remember":true}`), wantCode: http.StatusBadRequest,
		},
		{name: "unknown email", method: http.MethodPost, path: path, body: body("nobody@school.edu", "s3cret-pass"), wantCode: http.StatusBadRequest, wantData: failed},
		{name: "wrong password", method: http.MethodPost, path: path, body: body("ann@school.edu", "wrong"), wantCode: http.StatusBadRequest, wantData: failed},
		{
			name: "deactivated", method: http.MethodPost, path: path, body: body("old@school.edu", "s3cret-pass"),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	runHTTPTests(t, tests)

	t.Run("success (case-insensitive email)", func(t *testing.T) {
		rec := do(httpTest{method: http.MethodPost, path: path, body: body(" ANN@school.edu ", "s3cret-pass")})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res echoapi.LoginResponse
		unmarchall(t, rec, &res)
		assert.NotEmpty(t, res.Token)

		// the token authenticates the account
		me := do(httpTest{path: "/v1/accounts/me", token: res.Token})
		require.Equal(t, http.StatusOK, me.Code)
		var acc account.Account
		unmarchall(t, me, &acc)
		assert.Equal(t, "ann@school.edu", acc.Email)
		assert.False(t, acc.LastLogin.IsZero(), "last login is set")
	})
}

func Test_accountApi_me(t *testing.T) {
	resetDB()

	ann := testutil.CreateAccount(t, accRepo, "Ann Teacher", "ann@school.edu", "", account.RoleTeacher, true)
	ghost := account.Account{ID: 999, Name: "Ghost", Email: "ghost@school.edu", Role: account.RoleTeacher}

	tests := []httpTest{
		{name: "auth required", path: "/v1/accounts/me", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "invalid token", path: "/v1/accounts/me", token: "not.a.jwt", wantCode: http.StatusUnauthorized},
		{
			name: "deleted account", path: "/v1/accounts/me", token: getToken(t, ghost),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "user not authenticated"}),
		},
		{name: "success", path: "/v1/accounts/me", token: getToken(t, ann), wantData: marchallObj(t, ann)},
	}
	runHTTPTests(t, tests)
}

func Test_accountApi_refreshToken(t *testing.T) {
	resetDB()

	ann := testutil.CreateAccount(t, accRepo, "Ann Teacher", "ann@school.edu", "", account.RoleTeacher, true)
	old := testutil.CreateAccount(t, accRepo, "Old Timer", "old@school.edu", "", account.RoleTeacher, false)

	tests := []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/v1/accounts/token-refresh", wantCode: http.StatusUnauthorized},
		{
			name: "deactivated", method: http.MethodPost, path: "/v1/accounts/token-refresh", token: getToken(t, old),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	runHTTPTests(t, tests)

	t.Run("success", func(t *testing.T) {
		rec := do(httpTest{method: http.MethodPost, path: "/v1/accounts/token-refresh", token: getToken(t, ann)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var res echoapi.LoginResponse
		unmarchall(t, rec, &res)
		assert.NotEmpty(t, res.Token)
	})
}

func Test_accountApi_query(t *testing.T) {
	resetDB()

	admin := testutil.CreateAccount(t, accRepo, "Root Admin", "root@school.edu", "", account.RoleAdmin, true)
	ann := testutil.CreateAccount(t, accRepo, "Ann Teacher", "ann@school.edu", "", account.RoleTeacher, true)
	old := testutil.CreateAccount(t, accRepo, "Old Timer", "old@mail.com", "", account.RoleTeacher, false)
	token := getToken(t, admin)

	tests := []httpTest{
		{name: "auth required", path: "/v1/accounts", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "admin required", path: "/v1/accounts", token: getToken(t, ann),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "all", path: "/v1/accounts", token: token, wantData: marchallList(t, admin, ann, old)},
		{name: "search", path: "/v1/accounts?search=SCHOOL", token: token, wantData: marchallList(t, admin, ann)},
		{name: "search (unknown)", path: "/v1/accounts?search=lol", token: token, wantData: marchallList(t)},
		{name: "role", path: "/v1/accounts?role=teacher", token: token, wantData: marchallList(t, ann, old)},
		{name: "is_active=false", path: "/v1/accounts?is_active=false", token: token, wantData: marchallList(t, old)},
		{
			name: "is_active (invalid)", path: "/v1/accounts?is_active=maybe", token: token,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"is_active":"\"maybe\" is not a valid boolean"}`),
		},
		{name: "order by -name", path: "/v1/accounts?ordering=-name", token: token, wantData: marchallList(t, admin, old, ann)},
		{name: "unknown ordering is ignored", path: "/v1/accounts?ordering=password", token: token, wantData: marchallList(t, admin, ann, old)},
		{name: "roles", path: "/v1/accounts/roles", token: token, wantData: marchallObj(t, account.Roles)},
	}
	runHTTPTests(t, tests)
}

func Test_accountApi_create(t *testing.T) {
	resetDB()

	admin := testutil.CreateAccount(t, accRepo, "Root Admin", "root@school.edu", "", account.RoleAdmin, true)
	token := getToken(t, admin)
	path := "/v1/accounts"

	tests := []httpTest{
		{
			name: "required fields", method: http.MethodPost, path: path, token: token, body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{
				"name": "this field is required",
				"email": "this field is required",
				"password": "this field is required",
				"password_confirm": "this field is required"
			}`),
		},
		{
			name: "invalid role", method: http.MethodPost, path: path, token: token,
			body:     []byte(`{"name":"Ben","email":"ben@school.edu","role":"janitor","password":"Str0ng!Pass","password_confirm":"Str0ng!Pass"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"role":"must be one of: teacher, admin"}`),
		},
		{
			name: "passwords mismatch", method: http.MethodPost, path: path, token: token,
			body:     []byte(`{"name":"Ben","email":"ben@school.edu","password":"Str0ng!Pass","password_confirm":"Other!Pass1"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "duplicate email", method: http.MethodPost, path: path, token: token,
			body:     []byte(`{"name":"Imposter","email":"ROOT@school.edu","password":"Str0ng!Pass","password_confirm":"Str0ng!Pass"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email":"an account with this email already exists"}`),
		},
	}
	runHTTPTests(t, tests)

	t.Run("success", func(t *testing.T) {
		rec := do(httpTest{
			method: http.MethodPost, path: path, token: token,
			body: []byte(`{"name":" Ben Teacher ","email":"Ben@School.edu","password":"Str0ng!Pass","password_confirm":"Str0ng!Pass"}`),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var acc account.Account
		unmarchall(t, rec, &acc)
		assert.Equal(t, "Ben Teacher", acc.Name)
		assert.Equal(t, "ben@school.edu", acc.Email)
		assert.Equal(t, account.RoleTeacher, acc.Role)
		assert.True(t, acc.IsActive)

		stored, err := accRepo.GetAccount(context.Background(), acc.ID)
		require.NoError(t, err)
		assert.NoError(t, stored.CheckPassword("Str0ng!Pass"))
	})
}

func Test_accountApi_update(t *testing.T) {
	resetDB()

	admin := testutil.CreateAccount(t, accRepo, "Root Admin", "root@school.edu", "", account.RoleAdmin, true)
	ann := testutil.CreateAccount(t, accRepo, "Ann Teacher", "ann@school.edu", "", account.RoleTeacher, true)
	token := getToken(t, admin)

	tests := []httpTest{
		{name: "not found", method: http.MethodPut, path: "/v1/accounts/999", token: token, body: []byte(`{}`), wantCode: http.StatusNotFound},
		{name: "invalid id", method: http.MethodPut, path: "/v1/accounts/abc", token: token, body: []byte(`{}`), wantCode: http.StatusNotFound},
		{
			name: "cannot deactivate self", method: http.MethodPut, path: "/v1/accounts/" + itoa(admin.ID), token: token,
			body: []byte(`{"is_active":false}`), wantCode: http.StatusForbidden,
		},
		{
			name: "cannot demote self", method: http.MethodPut, path: "/v1/accounts/" + itoa(admin.ID), token: token,
			body: []byte(`{"role":"teacher"}`), wantCode: http.StatusForbidden,
		},
		{
			name: "duplicate email", method: http.MethodPut, path: "/v1/accounts/" + itoa(ann.ID), token: token,
			body:     []byte(`{"email":"root@school.edu"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"email":"an account with this email already exists"}`),
		},
	}
	runHTTPTests(t, tests)

	t.Run("success", func(t *testing.T) {
		rec := do(httpTest{
			method: http.MethodPut, path: "/v1/accounts/" + itoa(ann.ID), token: token,
			body: []byte(`{"name":"Ann Admin","role":"admin","is_active":false}`),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var acc account.Account
		unmarchall(t, rec, &acc)
		assert.Equal(t, "Ann Admin", acc.Name)
		assert.Equal(t, "ann@school.edu", acc.Email)
		assert.Equal(t, account.RoleAdmin, acc.Role)
		assert.False(t, acc.IsActive)
	})
}

func Test_accountApi_destroy(t *testing.T) {
	resetDB()

	admin := testutil.CreateAccount(t, accRepo, "Root Admin", "root@school.edu", "", account.RoleAdmin, true)
	ann := testutil.CreateAccount(t, accRepo, "Ann Teacher", "ann@school.edu", "", account.RoleTeacher, true)
	ben := testutil.CreateAccount(t, accRepo, "Ben Teacher", "ben@school.edu", "", account.RoleTeacher, true)
	cat := testutil.CreateAccount(t, accRepo, "Cat Teacher", "cat@school.edu", "", account.RoleTeacher, true)
	token := getToken(t, admin)

	tests := []httpTest{
		{name: "cannot delete self", method: http.MethodDelete, path: "/v1/accounts/" + itoa(admin.ID), token: token, wantCode: http.StatusForbidden},
		{
			name: "cannot bulk delete self", method: http.MethodDelete,
			path: "/v1/accounts?id=" + itoa(ann.ID) + "&id=" + itoa(admin.ID), token: token, wantCode: http.StatusForbidden,
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/accounts/" + itoa(ann.ID), token: token, wantCode: http.StatusNoContent},
		{name: "deleted", path: "/v1/accounts/" + itoa(ann.ID), token: token, wantCode: http.StatusNotFound},
		{
			name: "bulk delete", method: http.MethodDelete,
			path: "/v1/accounts?id=" + itoa(ben.ID) + "&id=" + itoa(cat.ID), token: token, wantCode: http.StatusNoContent,
		},
		{name: "remaining", path: "/v1/accounts", token: token, wantData: marchallList(t, admin)},
	}
	runHTTPTests(t, tests)
}

func Test_accountApi_passwordReset(t *testing.T) {
	resetDB()

	ann := testutil.CreateAccount(t, accRepo, "Ann Teacher", "ann@school.edu", "old-pass", account.RoleTeacher, true)
	success := echoapi.SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	}

	t.Run("unknown email", func(t *testing.T) {
		rec := do(httpTest{method: http.MethodPost, path: "/v1/accounts/password-reset", body: []byte(`{"email":"nobody@school.edu"}`)})
		checkCodeAndData(t, httpTest{wantData: marchallObj(t, success)}, rec)
		assert.Empty(t, mailSvc.SentMessages())
	})

	var uid, token string
	t.Run("request", func(t *testing.T) {
		rec := do(httpTest{method: http.MethodPost, path: "/v1/accounts/password-reset", body: []byte(`{"email":"ANN@school.edu"}`)})
		checkCodeAndData(t, httpTest{wantData: marchallObj(t, success)}, rec)

		sent := mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, ann.Email, sent[0].To[0].Address)
		uid, token = resetLinkParams(t, sent[0].TextContent)
	})

	tests := []httpTest{
		{
			name: "invalid token", method: http.MethodPost, path: "/v1/accounts/password-reset-confirm",
			body:     marchallObj(t, account.ResetPassword{Token: "bad-token", UID: uid, Password: "N3w!Passw0rd", PasswordConfirm: "N3w!Passw0rd"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "the reset link is invalid or has expired"}),
		},
		{
			name: "confirm", method: http.MethodPost, path: "/v1/accounts/password-reset-confirm",
			body:     marchallObj(t, account.ResetPassword{Token: token, UID: uid, Password: "N3w!Passw0rd", PasswordConfirm: "N3w!Passw0rd"}),
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Password has been reset with the new password."}),
		},
		{
			name: "login with the new password", method: http.MethodPost, path: "/v1/accounts/login",
			body: marchallObj(t, echoapi.LoginRequest{Email: ann.Email, Password: "N3w!Passw0rd"}),
		},
		{
			name: "token is single use", method: http.MethodPost, path: "/v1/accounts/password-reset-confirm",
			body:     marchallObj(t, account.ResetPassword{Token: token, UID: uid, Password: "0ther!Passw0rd", PasswordConfirm: "0ther!Passw0rd"}),
			wantCode: http.StatusBadRequest,
		},
	}
	runHTTPTests(t, tests)
}

// resetLinkParams extracts uid & token from the `.../password-reset?uid=<uid>&token=<token>` link of a reset email.
func resetLinkParams(t *testing.T, content string) (uid, token string) {
	idx := strings.Index(content, "/password-reset?")
	require.NotEqual(t, -1, idx, "reset link not found in %q", content)

	link, err := url.Parse(strings.Fields(content[idx:])[0])
	require.NoError(t, err)
	return link.Query().Get("uid"), link.Query().Get("token")
}
