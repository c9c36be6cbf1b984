package main

import (
	"context"
	"time"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/account"
)

// addAccount updates or creates an active account.Account
func (cli *commandLine) addAccount(name, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)
	if err := account.ValidatePassword(pwd, name, email); err != nil {
		return err
	}

	now := time.Now().UTC()
	acc, err := cli.accRepo.GetAccountByEmail(ctx, email)
	if err != nil {
		if err != account.ErrNotFound {
			return err
		}
		acc = account.Account{Email: email, Role: account.RoleTeacher, CreatedAt: now}
	}
	acc.Name = name
	if isAdmin {
		acc.Role = account.RoleAdmin
	}
	acc.IsActive = true
	acc.UpdatedAt = now
	if err = acc.SetPassword(pwd); err != nil {
		return err
	}

	if acc.ID == 0 {
		_, err = cli.accRepo.CreateAccount(ctx, acc)
	} else {
		_, err = cli.accRepo.UpdateAccount(ctx, acc)
	}
	return err
}
