// Package sqlxrepos implements the repositories on PostgreSQL, with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == uniqueViolation
}

// trapNoRowsErr maps the "no rows" error to notFound.
func trapNoRowsErr(err, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// where accumulates AND-ed conditions, written with `?` bind vars.
// Slice arguments are expanded for `IN (?)` conditions.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// addSearch matches value (case-insensitive) against any of cols.
// LIKE wildcards in value match literally.
func (w *where) addSearch(value string, cols ...string) {
	likes := make([]string, 0, len(cols))
	pattern := "%" + likeEscaper.Replace(value) + "%"
	for _, c := range cols {
		likes = append(likes, c+` ILIKE ? ESCAPE '\'`)
		w.args = append(w.args, pattern)
	}
	w.conds = append(w.conds, "("+strings.Join(likes, " OR ")+")")
}

func (w where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// query expands and rebinds the bind vars of base + WHERE + ORDER BY.
func (w where) query(db *sqlx.DB, base string, ordering []core.DBOrdering, fallback string) (string, []interface{}, error) {
	q := base + w.String() + core.OrderBy(ordering, fallback)
	if len(w.args) == 0 {
		return q, nil, nil
	}
	q, args, err := sqlx.In(q, w.args...)
	if err != nil {
		return "", nil, errors.Wrap(err, "expanding query arguments")
	}
	return db.Rebind(q), args, nil
}

// insertReturningID runs a named INSERT ... RETURNING id.
func insertReturningID(ctx context.Context, db *sqlx.DB, query string, arg interface{}) (int, error) {
	q, args, err := db.BindNamed(query, arg)
	if err != nil {
		return 0, errors.Wrap(err, "binding named query")
	}
	var id int
	if err = db.QueryRowxContext(ctx, q, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func deleteIDs(ctx context.Context, db *sqlx.DB, table string, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := sqlx.In("DELETE FROM "+table+" WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "expanding query arguments")
	}
	if _, err = db.ExecContext(ctx, db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting from "+table)
	}
	return nil
}

// updateOne runs a named UPDATE, returning notFound when no row was affected.
func updateOne(ctx context.Context, db *sqlx.DB, query string, arg interface{}, notFound error) error {
	res, err := db.NamedExecContext(ctx, query, arg)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
