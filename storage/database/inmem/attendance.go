package inmemdb

import (
	"context"

	"github.com/trezcool/masomo-attendance/core/attendance"
)

type sheetRepository struct {
	db *sheetTable
}

var _ attendance.SheetRepository = (*sheetRepository)(nil)

func NewSheetRepository(db *DB) attendance.SheetRepository {
	return &sheetRepository{db: db.sheet}
}

func (repo *sheetRepository) FindSheet(_ context.Context, id string) (attendance.Sheet, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sheet, ok := repo.db.table[id]
	if !ok {
		return attendance.Sheet{}, attendance.ErrSheetNotFound
	}
	return copySheet(*sheet), nil
}

func (repo *sheetRepository) UpsertSheet(_ context.Context, sheet attendance.Sheet) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	sheet = copySheet(sheet)
	repo.db.table[sheet.ID] = &sheet
	return nil
}

func (repo *sheetRepository) DeleteSheet(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return attendance.ErrSheetNotFound
	}
	delete(repo.db.table, id)
	return nil
}

// copySheet keeps stored records apart from the caller's.
func copySheet(sheet attendance.Sheet) attendance.Sheet {
	records := make([]attendance.Record, len(sheet.Records))
	copy(records, sheet.Records)
	sheet.Records = records
	return sheet
}
