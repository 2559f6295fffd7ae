package memory_test

import (
	"testing"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/memory"
	"github.com/aanand-mishra/student-records/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Repository {
		return memory.New()
	})
}

func TestMemory_ReturnedStudentIsACopy(t *testing.T) {
	repo := memory.New()
	student := storagetest.NewStudent("Alice", "S100")

	stored, err := repo.Add(student)
	require.NoError(t, err)
	stored.Name = "changed"

	got, err := repo.GetByID(student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
}

func TestMemory_FoldsUnicodeCase(t *testing.T) {
	repo := memory.New()

	_, err := repo.Add(storagetest.NewStudent("Jörg", "STRASSE-Ä1"))
	require.NoError(t, err)

	exists, err := repo.ExistsByIDNumber("strasse-ä1")
	require.NoError(t, err)
	assert.True(t, exists)
}
