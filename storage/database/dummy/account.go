package dummydb

import (
	"context"
	"strings"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/account"
)

type accountRepository struct {
	db *DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{db: db}
}

func compareAccounts(a, b account.Account, column string) int {
	switch column {
	case "name":
		return cmpString(a.Name, b.Name)
	case "email":
		return cmpString(a.Email, b.Email)
	case "created_at":
		return cmpTime(a.CreatedAt, b.CreatedAt)
	case "last_login":
		return cmpTime(a.LastLogin, b.LastLogin)
	}
	return cmpInt(a.ID, b.ID)
}

func (repo *accountRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...account.Account) error {
	defer repo.db.runlock()
	if err := repo.db.rlock(ctx); err != nil {
		return err
	}

	excl := make(map[int]struct{}, len(excluded))
	for _, acc := range excluded {
		excl[acc.ID] = struct{}{}
	}
	for _, acc := range repo.db.accounts {
		if _, ok := excl[acc.ID]; !ok && strings.EqualFold(acc.Email, email) {
			return account.ErrEmailExists
		}
	}
	return nil
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return account.Account{}, err
	}

	acc.ID = repo.db.nextPK()
	repo.db.accounts[acc.ID] = acc
	return acc, nil
}

func (repo *accountRepository) GetAccount(ctx context.Context, id int) (account.Account, error) {
	defer repo.db.runlock()
	if err := repo.db.rlock(ctx); err != nil {
		return account.Account{}, err
	}

	if acc, ok := repo.db.accounts[id]; ok {
		return acc, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	defer repo.db.runlock()
	if err := repo.db.rlock(ctx); err != nil {
		return account.Account{}, err
	}

	for _, acc := range repo.db.accounts {
		if strings.EqualFold(acc.Email, email) {
			return acc, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) QueryAccounts(
	ctx context.Context,
	filter account.QueryFilter,
	ordering ...core.DBOrdering,
) ([]account.Account, error) {
	defer repo.db.runlock()
	if err := repo.db.rlock(ctx); err != nil {
		return nil, err
	}

	filter.Clean()
	accounts := make([]account.Account, 0, len(repo.db.accounts))
	for _, acc := range repo.db.accounts {
		if filter.Matches(acc) {
			accounts = append(accounts, acc)
		}
	}
	sortRows(accounts, ordering, compareAccounts)
	return accounts, nil
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return account.Account{}, err
	}

	if _, ok := repo.db.accounts[acc.ID]; !ok {
		return account.Account{}, account.ErrNotFound
	}
	repo.db.accounts[acc.ID] = acc
	return acc, nil
}

func (repo *accountRepository) DeleteAccounts(ctx context.Context, ids ...int) error {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return err
	}

	for _, id := range ids {
		delete(repo.db.accounts, id)
	}
	return nil
}
