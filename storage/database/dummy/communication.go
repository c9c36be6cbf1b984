package dummydb

import (
	"context"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/communication"
)

type communicationRepository struct {
	db *DB
}

var _ communication.Repository = (*communicationRepository)(nil) // interface compliance check

func NewCommunicationRepository(db *DB) communication.Repository {
	return &communicationRepository{db: db}
}

func compareCommunications(a, b communication.Communication, column string) int {
	switch column {
	case "student_id":
		return cmpInt(a.StudentID, b.StudentID)
	case "type":
		return cmpString(a.Type, b.Type)
	case "date":
		return cmpTime(a.Date, b.Date)
	}
	return cmpInt(a.ID, b.ID)
}

func (repo *communicationRepository) CreateCommunication(
	ctx context.Context,
	c communication.Communication,
) (communication.Communication, error) {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return communication.Communication{}, err
	}

	c.ID = repo.db.nextPK()
	repo.db.communications[c.ID] = c
	return c, nil
}

func (repo *communicationRepository) GetCommunication(ctx context.Context, id int) (communication.Communication, error) {
	defer repo.db.runlock()
	if err := repo.db.rlock(ctx); err != nil {
		return communication.Communication{}, err
	}

	if c, ok := repo.db.communications[id]; ok {
		return c, nil
	}
	return communication.Communication{}, communication.ErrNotFound
}

func (repo *communicationRepository) QueryCommunications(
	ctx context.Context,
	filter communication.QueryFilter,
	ordering ...core.DBOrdering,
) ([]communication.Communication, error) {
	defer repo.db.runlock()
	if err := repo.db.rlock(ctx); err != nil {
		return nil, err
	}

	filter.Clean()
	comms := make([]communication.Communication, 0, len(repo.db.communications))
	for _, c := range repo.db.communications {
		if filter.Matches(c) {
			comms = append(comms, c)
		}
	}
	sortRows(comms, ordering, compareCommunications)
	return comms, nil
}

func (repo *communicationRepository) UpdateCommunication(
	ctx context.Context,
	c communication.Communication,
) (communication.Communication, error) {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return communication.Communication{}, err
	}

	if _, ok := repo.db.communications[c.ID]; !ok {
		return communication.Communication{}, communication.ErrNotFound
	}
	repo.db.communications[c.ID] = c
	return c, nil
}

func (repo *communicationRepository) DeleteCommunications(ctx context.Context, ids ...int) error {
	defer repo.db.unlock()
	if err := repo.db.lock(ctx); err != nil {
		return err
	}

	for _, id := range ids {
		delete(repo.db.communications, id)
	}
	return nil
}
