package main

import (
	"context"
	"time"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/account"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	acc, err := cli.accRepo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return err
	}
	if err = account.ValidatePassword(pwd, acc.Name, acc.Email); err != nil {
		return err
	}
	if err = acc.SetPassword(pwd); err != nil {
		return err
	}
	acc.UpdatedAt = time.Now().UTC()
	_, err = cli.accRepo.UpdateAccount(ctx, acc)
	return err
}
