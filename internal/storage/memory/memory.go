// Package memory provides the default, in-process implementation of
// storage.Repository.
//
// STRUCTURE:
//
//	students   map[uuid.UUID]types.Student   primary map, keyed by id
//	idNumbers  map[string]uuid.UUID          uniqueness index, keyed by
//	                                         storage.IDNumberKey(idNumber)
//	order      []uuid.UUID                   insertion order for GetAll
//
// The three are only ever changed together, under one sync.Mutex held for
// the full duration of every method (including the duplicate checks), so
// the collection as a whole behaves as if operations ran one at a time.
//
// Nothing is written to disk; state is lost when the process exits.
package memory

import (
	"slices"
	"strings"
	"sync"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/google/uuid"
)

// Memory is the in-memory storage.Repository.
type Memory struct {
	mu        sync.Mutex
	students  map[uuid.UUID]types.Student
	idNumbers map[string]uuid.UUID
	order     []uuid.UUID
}

var _ storage.Repository = (*Memory)(nil)

// New returns an empty store.
func New() *Memory {
	return &Memory{
		students:  make(map[uuid.UUID]types.Student),
		idNumbers: make(map[string]uuid.UUID),
	}
}

func (m *Memory) GetAll() ([]types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// types.Student holds only values, so copying the struct copies the
	// record; callers can't reach back into the map.
	students := make([]types.Student, 0, len(m.order))
	for _, id := range m.order {
		students = append(students, m.students[id])
	}
	return students, nil
}

func (m *Memory) GetByID(id uuid.UUID) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	student, ok := m.students[id]
	if !ok {
		return types.Student{}, storage.ErrStudentNotFound
	}
	return student, nil
}

func (m *Memory) Add(student types.Student) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := storage.IDNumberKey(student.IDNumber)
	if _, taken := m.idNumbers[key]; taken {
		return types.Student{}, storage.ErrIDNumberExists
	}
	if _, taken := m.students[student.ID]; taken {
		return types.Student{}, storage.ErrStudentExists
	}

	m.students[student.ID] = student
	m.idNumbers[key] = student.ID
	m.order = append(m.order, student.ID)
	return student, nil
}

func (m *Memory) Update(student types.Student) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.students[student.ID]
	if !ok {
		return types.Student{}, storage.ErrStudentNotFound
	}

	key := storage.IDNumberKey(student.IDNumber)
	if owner, taken := m.idNumbers[key]; taken && owner != student.ID {
		return types.Student{}, storage.ErrIDNumberTaken
	}

	// Re-point the index before replacing the record. Position in order is
	// unchanged.
	delete(m.idNumbers, storage.IDNumberKey(current.IDNumber))
	m.idNumbers[key] = student.ID
	m.students[student.ID] = student
	return student, nil
}

func (m *Memory) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	student, ok := m.students[id]
	if !ok {
		return storage.ErrStudentNotFound
	}

	delete(m.students, id)
	delete(m.idNumbers, storage.IDNumberKey(student.IDNumber))
	m.order = slices.DeleteFunc(m.order, func(other uuid.UUID) bool {
		return other == id
	})
	return nil
}

func (m *Memory) ExistsByID(id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.students[id]
	return ok, nil
}

func (m *Memory) ExistsByIDNumber(idNumber string) (bool, error) {
	if strings.TrimSpace(idNumber) == "" {
		return false, storage.ErrIDNumberEmpty
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.idNumbers[storage.IDNumberKey(idNumber)]
	return ok, nil
}
