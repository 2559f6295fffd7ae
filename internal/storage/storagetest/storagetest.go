// Package storagetest holds the behaviour every storage.Repository must
// show. Each backend's tests call Run with a constructor for a fresh,
// empty store.
package storagetest

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewStudent returns a valid student with a fresh id.
func NewStudent(name, idNumber string) types.Student {
	return types.Student{
		ID:             uuid.New(),
		Name:           name,
		IDNumber:       idNumber,
		Email:          fmt.Sprintf("%s@example.com", idNumber),
		EnrollmentDate: time.Date(2024, time.September, 1, 9, 30, 0, 0, time.UTC),
	}
}

// AssertSameStudent compares two students field by field, dates by instant.
func AssertSameStudent(t *testing.T, want, got types.Student) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.IDNumber, got.IDNumber)
	assert.Equal(t, want.Email, got.Email)
	assert.True(t, want.EnrollmentDate.Equal(got.EnrollmentDate),
		"enrollment date: want %s, got %s", want.EnrollmentDate, got.EnrollmentDate)
}

// Run exercises repo constructors against the storage.Repository contract.
func Run(t *testing.T, newRepo func(t *testing.T) storage.Repository) {
	t.Run("empty store", func(t *testing.T) {
		repo := newRepo(t)

		all, err := repo.GetAll()
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("add then get", func(t *testing.T) {
		repo := newRepo(t)
		student := NewStudent("Alice", "S100")

		stored, err := repo.Add(student)
		require.NoError(t, err)
		AssertSameStudent(t, student, stored)

		got, err := repo.GetByID(student.ID)
		require.NoError(t, err)
		AssertSameStudent(t, student, got)
	})

	t.Run("get missing", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetByID(uuid.New())
		assert.ErrorIs(t, err, storage.ErrStudentNotFound)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("add rejects id number differing only in case", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Add(NewStudent("Alice", "S100"))
		require.NoError(t, err)

		_, err = repo.Add(NewStudent("Bob", "s100"))
		assert.ErrorIs(t, err, storage.ErrIDNumberExists)

		all, err := repo.GetAll()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("add rejects id already in use", func(t *testing.T) {
		repo := newRepo(t)
		first := NewStudent("Alice", "S100")
		_, err := repo.Add(first)
		require.NoError(t, err)

		second := NewStudent("Bob", "S200")
		second.ID = first.ID
		_, err = repo.Add(second)
		assert.ErrorIs(t, err, storage.ErrStudentExists)
	})

	t.Run("get all keeps insertion order", func(t *testing.T) {
		repo := newRepo(t)
		a := NewStudent("Alice", "S100")
		b := NewStudent("Bob", "S200")
		c := NewStudent("Carol", "S300")
		for _, s := range []types.Student{a, b, c} {
			_, err := repo.Add(s)
			require.NoError(t, err)
		}

		all, err := repo.GetAll()
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []uuid.UUID{a.ID, b.ID, c.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})
	})

	t.Run("get all is a snapshot", func(t *testing.T) {
		repo := newRepo(t)
		a := NewStudent("Alice", "S100")
		_, err := repo.Add(a)
		require.NoError(t, err)

		all, err := repo.GetAll()
		require.NoError(t, err)
		all[0].Name = "changed"

		got, err := repo.GetByID(a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.Name)
	})

	t.Run("update replaces fields", func(t *testing.T) {
		repo := newRepo(t)
		student := NewStudent("Alice", "S100")
		_, err := repo.Add(student)
		require.NoError(t, err)

		student.Name = "Alice Smith"
		student.Email = "alice.smith@example.com"
		student.IDNumber = "S101"
		updated, err := repo.Update(student)
		require.NoError(t, err)
		AssertSameStudent(t, student, updated)

		got, err := repo.GetByID(student.ID)
		require.NoError(t, err)
		AssertSameStudent(t, student, got)

		// The old number is free again, the new one is taken.
		exists, err := repo.ExistsByIDNumber("S100")
		require.NoError(t, err)
		assert.False(t, exists)
		exists, err = repo.ExistsByIDNumber("s101")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("update may change case of own id number", func(t *testing.T) {
		repo := newRepo(t)
		student := NewStudent("Alice", "S100")
		_, err := repo.Add(student)
		require.NoError(t, err)

		student.IDNumber = "s100"
		updated, err := repo.Update(student)
		require.NoError(t, err)
		assert.Equal(t, "s100", updated.IDNumber)
	})

	t.Run("update rejects id number held by another student", func(t *testing.T) {
		repo := newRepo(t)
		a := NewStudent("Alice", "S100")
		c := NewStudent("Carol", "S200")
		for _, s := range []types.Student{a, c} {
			_, err := repo.Add(s)
			require.NoError(t, err)
		}

		changed := a
		changed.IDNumber = "s200"
		_, err := repo.Update(changed)
		assert.ErrorIs(t, err, storage.ErrIDNumberTaken)

		gotA, err := repo.GetByID(a.ID)
		require.NoError(t, err)
		AssertSameStudent(t, a, gotA)
		gotC, err := repo.GetByID(c.ID)
		require.NoError(t, err)
		AssertSameStudent(t, c, gotC)
	})

	t.Run("update missing", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Update(NewStudent("Ghost", "S999"))
		assert.ErrorIs(t, err, storage.ErrStudentNotFound)
	})

	t.Run("update keeps position", func(t *testing.T) {
		repo := newRepo(t)
		a := NewStudent("Alice", "S100")
		b := NewStudent("Bob", "S200")
		for _, s := range []types.Student{a, b} {
			_, err := repo.Add(s)
			require.NoError(t, err)
		}

		a.Name = "Alice Smith"
		_, err := repo.Update(a)
		require.NoError(t, err)

		all, err := repo.GetAll()
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, a.ID, all[0].ID)
		assert.Equal(t, "Alice Smith", all[0].Name)
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		a := NewStudent("Alice", "S100")
		b := NewStudent("Bob", "S200")
		for _, s := range []types.Student{a, b} {
			_, err := repo.Add(s)
			require.NoError(t, err)
		}

		require.NoError(t, repo.Delete(a.ID))

		_, err := repo.GetByID(a.ID)
		assert.ErrorIs(t, err, storage.ErrStudentNotFound)

		all, err := repo.GetAll()
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, b.ID, all[0].ID)

		// The id number can be reused once its holder is gone.
		_, err = repo.Add(NewStudent("Alan", "s100"))
		assert.NoError(t, err)
	})

	t.Run("delete missing leaves store unchanged", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Add(NewStudent("Alice", "S100"))
		require.NoError(t, err)

		err = repo.Delete(uuid.New())
		assert.ErrorIs(t, err, storage.ErrStudentNotFound)

		all, err := repo.GetAll()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("exists", func(t *testing.T) {
		repo := newRepo(t)
		a := NewStudent("Alice", "S100")
		_, err := repo.Add(a)
		require.NoError(t, err)

		exists, err := repo.ExistsByID(a.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByID(uuid.New())
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.ExistsByIDNumber("s100")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByIDNumber("S200")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("exists by id number rejects blank input", func(t *testing.T) {
		repo := newRepo(t)

		for _, blank := range []string{"", "   ", "\t\n"} {
			_, err := repo.ExistsByIDNumber(blank)
			assert.ErrorIs(t, err, storage.ErrIDNumberEmpty, "input %q", blank)
		}
	})

	t.Run("concurrent adds of one id number", func(t *testing.T) {
		repo := newRepo(t)

		const writers = 16
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			success int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				idNumber := "S100"
				if i%2 == 1 {
					idNumber = "s100"
				}
				_, err := repo.Add(NewStudent(fmt.Sprintf("writer-%d", i), idNumber))
				if err == nil {
					mu.Lock()
					success++
					mu.Unlock()
					return
				}
				if !errors.Is(err, storage.ErrIDNumberExists) {
					t.Errorf("writer %d: unexpected error: %v", i, err)
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 1, success)
		all, err := repo.GetAll()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}
