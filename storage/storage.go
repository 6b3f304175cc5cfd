package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-attendance/core"
	"github.com/trezcool/masomo-attendance/core/attendance"
	"github.com/trezcool/masomo-attendance/core/student"
	"github.com/trezcool/masomo-attendance/storage/database"
	inmemdb "github.com/trezcool/masomo-attendance/storage/database/inmem"
	"github.com/trezcool/masomo-attendance/storage/database/mongodb"
	sqlxrepos "github.com/trezcool/masomo-attendance/storage/database/sqlx"
)

// Store holds the repositories of the configured storage engine.
type Store struct {
	Engine   string
	Students student.Repository
	Sheets   attendance.SheetRepository

	// SQL is only set for the postgres engine.
	SQL *sqlx.DB

	close func(ctx context.Context) error
}

// Open connects to the storage engine selected by conf.Storage.Engine.
func Open(ctx context.Context, conf *core.Config) (*Store, error) {
	switch conf.Storage.Engine {
	case core.EngineMongo:
		db, err := mongodb.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err = db.EnsureIndexes(ctx); err != nil {
			_ = db.Close(ctx)
			return nil, err
		}
		return &Store{
			Engine:   core.EngineMongo,
			Students: mongodb.NewStudentRepository(db),
			Sheets:   mongodb.NewSheetRepository(db),
			close:    db.Close,
		}, nil

	case core.EnginePostgres:
		db, err := database.Open(ctx, conf)
		if err != nil {
			return nil, errors.Wrap(err, "opening postgres")
		}
		return &Store{
			Engine:   core.EnginePostgres,
			Students: sqlxrepos.NewStudentRepository(db),
			Sheets:   sqlxrepos.NewSheetRepository(db),
			SQL:      db,
			close:    func(context.Context) error { return db.Close() },
		}, nil

	case core.EngineMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown storage engine %q", conf.Storage.Engine)
}

// NewMemoryStore returns a store that lives as long as the process.
func NewMemoryStore() *Store {
	db := inmemdb.Open()
	return &Store{
		Engine:   core.EngineMemory,
		Students: inmemdb.NewStudentRepository(db),
		Sheets:   inmemdb.NewSheetRepository(db),
		close:    func(context.Context) error { return nil },
	}
}

func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}
