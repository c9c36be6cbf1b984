package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/communication"
)

const communicationColumns = "id, student_id, type, subject, content, contact_method, date"

type communicationRow struct {
	ID            int         `db:"id"`
	StudentID     int         `db:"student_id"`
	Type          string      `db:"type"`
	Subject       string      `db:"subject"`
	Content       string      `db:"content"`
	ContactMethod null.String `db:"contact_method"`
	Date          time.Time   `db:"date"`
}

func newCommunicationRow(c communication.Communication) communicationRow {
	return communicationRow{
		ID:            c.ID,
		StudentID:     c.StudentID,
		Type:          c.Type,
		Subject:       c.Subject,
		Content:       c.Content,
		ContactMethod: nullString(c.ContactMethod),
		Date:          c.Date.UTC(),
	}
}

func (row communicationRow) communication() communication.Communication {
	return communication.Communication{
		ID:            row.ID,
		StudentID:     row.StudentID,
		Type:          row.Type,
		Subject:       row.Subject,
		Content:       row.Content,
		ContactMethod: row.ContactMethod.String,
		Date:          row.Date.UTC(),
	}
}

type communicationRepository struct {
	db *sqlx.DB
}

var _ communication.Repository = (*communicationRepository)(nil) // interface compliance check

func NewCommunicationRepository(db *sqlx.DB) communication.Repository {
	return &communicationRepository{db: db}
}

func (repo *communicationRepository) CreateCommunication(
	ctx context.Context,
	c communication.Communication,
) (communication.Communication, error) {
	row := newCommunicationRow(c)
	id, err := insertReturningID(ctx, repo.db, `
		INSERT INTO communication (student_id, type, subject, content, contact_method, date)
		VALUES (:student_id, :type, :subject, :content, :contact_method, :date)
		RETURNING id`, row)
	if err != nil {
		return communication.Communication{}, errors.Wrap(err, "inserting communication")
	}
	row.ID = id
	return row.communication(), nil
}

func (repo *communicationRepository) GetCommunication(ctx context.Context, id int) (communication.Communication, error) {
	var row communicationRow
	q := repo.db.Rebind("SELECT " + communicationColumns + " FROM communication WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return communication.Communication{}, trapNoRowsErr(err, communication.ErrNotFound, "finding communication")
	}
	return row.communication(), nil
}

func (repo *communicationRepository) QueryCommunications(
	ctx context.Context,
	filter communication.QueryFilter,
	ordering ...core.DBOrdering,
) ([]communication.Communication, error) {
	filter.Clean()

	var w where
	if len(filter.StudentIDs) > 0 {
		w.add("student_id IN (?)", filter.StudentIDs)
	}
	if len(filter.Types) > 0 {
		w.add("type IN (?)", filter.Types)
	}
	if filter.Search != "" {
		w.addSearch(filter.Search, "subject", "content")
	}

	q, args, err := w.query(repo.db, "SELECT "+communicationColumns+" FROM communication", ordering, "date DESC, id DESC")
	if err != nil {
		return nil, err
	}
	var rows []communicationRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying communications")
	}

	comms := make([]communication.Communication, 0, len(rows))
	for _, row := range rows {
		comms = append(comms, row.communication())
	}
	return comms, nil
}

func (repo *communicationRepository) UpdateCommunication(
	ctx context.Context,
	c communication.Communication,
) (communication.Communication, error) {
	row := newCommunicationRow(c)
	err := updateOne(ctx, repo.db, `
		UPDATE communication SET student_id = :student_id, type = :type, subject = :subject,
			content = :content, contact_method = :contact_method, date = :date
		WHERE id = :id`, row, communication.ErrNotFound)
	if err != nil {
		if err == communication.ErrNotFound {
			return communication.Communication{}, err
		}
		return communication.Communication{}, errors.Wrap(err, "updating communication")
	}
	return row.communication(), nil
}

func (repo *communicationRepository) DeleteCommunications(ctx context.Context, ids ...int) error {
	return deleteIDs(ctx, repo.db, "communication", ids)
}
