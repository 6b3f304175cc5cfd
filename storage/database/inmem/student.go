package inmemdb

import (
	"context"

	"github.com/trezcool/masomo-attendance/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) QueryActiveStudents(_ context.Context, class, section string) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0)
	for _, s := range repo.db.table {
		if s.Class == class && s.Section == section && s.IsActive() {
			students = append(students, *s)
		}
	}
	return students, nil
}

func (repo *studentRepository) UpsertStudents(_ context.Context, students ...student.Student) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range students {
		s := s
		if orig, ok := repo.db.table[s.ID]; ok {
			s.CreatedAt = orig.CreatedAt
		}
		repo.db.table[s.ID] = &s
	}
	return nil
}
