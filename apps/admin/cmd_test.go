package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/account"
	"github.com/trezcool/gradebook/storage/database/dummy"
	"github.com/trezcool/gradebook/tests"
)

var accRepo account.Repository

func setup(t *testing.T) *commandLine {
	accRepo = dummydb.NewAccountRepository(dummydb.Open())
	return &commandLine{accRepo: accRepo}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

type promptExtra struct {
	pwd string
}

func mockPrompt(tt cliTest) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		if extra, ok := tt.extra.(promptExtra); ok {
			return []byte(extra.pwd), nil
		}
		return nil, nil
	}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var gotCommand string
	migrateFunc = func(db *sqlx.DB, command string, args ...string) error {
		gotCommand = command
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		tt := tt
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
			if len(tt.args) > 1 {
				assert.Equal(t, tt.args[1], gotCommand)
			}
		})
	}
}

func Test_commandLine_addAccount(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	existing := testutil.CreateAccount(t, accRepo, "Old Name", "bob@school.edu", "", account.RoleTeacher, false)

	tests := []cliTest{
		{name: "no args", args: []string{"addaccount"}, wantErr: errHelp},
		{name: "no name", args: []string{"addaccount", "-email", "ann@school.edu"}, wantErr: errHelp},
		{name: "no password", args: []string{"addaccount", "-email", "ann@school.edu", "-name", "Ann"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		tt := tt
		args := append([]string{"admin"}, tt.args...)
		mockPrompt(tt)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	t.Run("weak password", func(t *testing.T) {
		mockPrompt(cliTest{extra: promptExtra{pwd: "password"}})
		err := cli.run([]string{"admin", "addaccount", "-email", "ann@school.edu", "-name", "Ann"})

		var verr *core.ValidationError
		assert.True(t, errors.As(err, &verr), "got %T: %v", err, err)
		_, err = accRepo.GetAccountByEmail(ctx, "ann@school.edu")
		assert.Equal(t, account.ErrNotFound, err)
	})

	t.Run("create admin", func(t *testing.T) {
		mockPrompt(cliTest{extra: promptExtra{pwd: "Str0ng!Pass"}})
		require.NoError(t, cli.run([]string{"admin", "addaccount", "-email", " ANN@school.edu ", "-name", "Ann Admin", "-admin"}))

		acc, err := accRepo.GetAccountByEmail(ctx, "ann@school.edu")
		require.NoError(t, err)
		assert.Equal(t, "Ann Admin", acc.Name)
		assert.Equal(t, account.RoleAdmin, acc.Role)
		assert.True(t, acc.IsActive)
		assert.NoError(t, acc.CheckPassword("Str0ng!Pass"))
	})

	t.Run("update existing", func(t *testing.T) {
		mockPrompt(cliTest{extra: promptExtra{pwd: "N3w!Passw0rd"}})
		require.NoError(t, cli.run([]string{"admin", "addaccount", "-email", "bob@school.edu", "-name", "Bob Teacher"}))

		acc, err := accRepo.GetAccount(ctx, existing.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bob Teacher", acc.Name)
		assert.Equal(t, account.RoleTeacher, acc.Role)
		assert.True(t, acc.IsActive, "reactivated")
		assert.NoError(t, acc.CheckPassword("N3w!Passw0rd"))
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	acc := testutil.CreateAccount(t, accRepo, "Awe Some", "awe@school.edu", "Str0ng!Pass", account.RoleTeacher, true)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@school.edu"}, wantErr: errHelp},
		{
			name: "account not found", args: []string{"resetpassword", "-email", "lol@school.edu"},
			extra: promptExtra{pwd: "N3w!Passw0rd"}, wantErr: account.ErrNotFound,
		},
		{name: "reset", args: []string{"resetpassword", "-email", "AWE@school.edu"}, extra: promptExtra{pwd: "N3w!Passw0rd"}},
	}
	for _, tt := range tests {
		tt := tt
		args := append([]string{"admin"}, tt.args...)
		mockPrompt(tt)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	refreshed, err := accRepo.GetAccount(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.NoError(t, refreshed.CheckPassword("N3w!Passw0rd"))
}
