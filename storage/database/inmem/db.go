package inmemdb

import (
	"sync"

	"github.com/trezcool/masomo-attendance/core/attendance"
	"github.com/trezcool/masomo-attendance/core/student"
)

type (
	DB struct {
		student *studentTable
		sheet   *sheetTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	sheetTable struct {
		sync.RWMutex
		table map[string]*attendance.Sheet
	}
)

func Open() *DB {
	return &DB{
		student: &studentTable{table: make(map[string]*student.Student)},
		sheet:   &sheetTable{table: make(map[string]*attendance.Sheet)},
	}
}
