package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/account"
)

const accountColumns = "id, name, email, role, is_active, password_hash, created_at, updated_at, last_login"

type accountRow struct {
	ID           int       `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	LastLogin    null.Time `db:"last_login"`
}

func newAccountRow(acc account.Account) accountRow {
	return accountRow{
		ID:           acc.ID,
		Name:         acc.Name,
		Email:        acc.Email,
		Role:         acc.Role,
		IsActive:     acc.IsActive,
		PasswordHash: acc.PasswordHash,
		CreatedAt:    acc.CreatedAt.UTC(),
		UpdatedAt:    acc.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(acc.LastLogin.UTC(), !acc.LastLogin.IsZero()),
	}
}

func (row accountRow) account() account.Account {
	acc := account.Account{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Role:         row.Role,
		IsActive:     row.IsActive,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
	if row.LastLogin.Valid {
		acc.LastLogin = row.LastLogin.Time.UTC()
	}
	return acc
}

type accountRepository struct {
	db *sqlx.DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *sqlx.DB) account.Repository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...account.Account) error {
	var w where
	w.add("LOWER(email) = LOWER(?)", email)
	if len(excluded) > 0 {
		ids := make([]int, 0, len(excluded))
		for _, acc := range excluded {
			ids = append(ids, acc.ID)
		}
		w.add("id NOT IN (?)", ids)
	}
	q, args, err := sqlx.In("SELECT EXISTS (SELECT 1 FROM account"+w.String()+")", w.args...)
	if err != nil {
		return errors.Wrap(err, "expanding query arguments")
	}

	var exists bool
	if err = repo.db.GetContext(ctx, &exists, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking account email uniqueness")
	}
	if exists {
		return account.ErrEmailExists
	}
	return nil
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	row := newAccountRow(acc)
	id, err := insertReturningID(ctx, repo.db, `
		INSERT INTO account (name, email, role, is_active, password_hash, created_at, updated_at, last_login)
		VALUES (:name, :email, :role, :is_active, :password_hash, :created_at, :updated_at, :last_login)
		RETURNING id`, row)
	if err != nil {
		if isUniqueViolation(err) {
			return account.Account{}, account.ErrEmailExists
		}
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	row.ID = id
	return row.account(), nil
}

func (repo *accountRepository) get(ctx context.Context, cond string, arg interface{}) (account.Account, error) {
	var row accountRow
	q := repo.db.Rebind("SELECT " + accountColumns + " FROM account WHERE " + cond)
	if err := repo.db.GetContext(ctx, &row, q, arg); err != nil {
		return account.Account{}, trapNoRowsErr(err, account.ErrNotFound, "finding account")
	}
	return row.account(), nil
}

func (repo *accountRepository) GetAccount(ctx context.Context, id int) (account.Account, error) {
	return repo.get(ctx, "id = ?", id)
}

func (repo *accountRepository) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	return repo.get(ctx, "LOWER(email) = LOWER(?)", email)
}

func (repo *accountRepository) QueryAccounts(
	ctx context.Context,
	filter account.QueryFilter,
	ordering ...core.DBOrdering,
) ([]account.Account, error) {
	filter.Clean()

	var w where
	if filter.Search != "" {
		w.addSearch(filter.Search, "name", "email")
	}
	if len(filter.Roles) > 0 {
		w.add("role IN (?)", filter.Roles)
	}
	if filter.IsActive != nil {
		w.add("is_active = ?", *filter.IsActive)
	}

	q, args, err := w.query(repo.db, "SELECT "+accountColumns+" FROM account", ordering, "id ASC")
	if err != nil {
		return nil, err
	}
	var rows []accountRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying accounts")
	}

	accounts := make([]account.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, row.account())
	}
	return accounts, nil
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	row := newAccountRow(acc)
	err := updateOne(ctx, repo.db, `
		UPDATE account SET name = :name, email = :email, role = :role, is_active = :is_active,
			password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`, row, account.ErrNotFound)
	if err != nil {
		if err == account.ErrNotFound {
			return account.Account{}, err
		}
		if isUniqueViolation(err) {
			return account.Account{}, account.ErrEmailExists
		}
		return account.Account{}, errors.Wrap(err, "updating account")
	}
	return row.account(), nil
}

func (repo *accountRepository) DeleteAccounts(ctx context.Context, ids ...int) error {
	return deleteIDs(ctx, repo.db, "account", ids)
}
