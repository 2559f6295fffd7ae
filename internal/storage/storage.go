// Package storage defines the Repository interface, the contract every
// student store must satisfy, along with the errors it reports.
//
// Two implementations exist:
//
//   - storage/memory: the default, a mutex-guarded map plus a uniqueness
//     index on the ID number.
//   - storage/sqlite: the same contract over a SQLite table, selected
//     with storage.driver: sqlite in the config.
//
// The service layer only sees this interface, so switching backends is a
// one-line change in main.go.
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Error groups. Use errors.Is against these to classify a failure without
// caring which specific rule was broken.
var (
	// ErrNotFound is returned when the referenced student does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an operation would break a uniqueness rule.
	ErrDuplicate = errors.New("already exists")

	// ErrInvalid is returned for input the store refuses to work with.
	ErrInvalid = errors.New("invalid input")
)

// Specific errors. Their messages are shown to API clients as they are.
var (
	ErrStudentNotFound = fmt.Errorf("%w: Student not found", ErrNotFound)

	// ErrIDNumberExists is reported by Add.
	ErrIDNumberExists = fmt.Errorf("%w: Student with this ID number already exists", ErrDuplicate)

	// ErrIDNumberTaken is reported by Update when a different student
	// already holds the ID number.
	ErrIDNumberTaken = fmt.Errorf("%w: Another student with this ID number already exists", ErrDuplicate)

	// ErrStudentExists is reported by Add when the generated id is in use.
	ErrStudentExists = fmt.Errorf("%w: Student with this id already exists", ErrDuplicate)

	ErrIDNumberEmpty = fmt.Errorf("%w: ID number cannot be null or empty", ErrInvalid)
)

// Message strips the group prefix from one of the errors above so it can
// be shown to a client. Other errors are returned unchanged.
func Message(err error) string {
	msg := err.Error()
	for _, group := range []error{ErrNotFound, ErrDuplicate, ErrInvalid} {
		if errors.Is(err, group) {
			return strings.TrimPrefix(msg, group.Error()+": ")
		}
	}
	return msg
}

// IsBusinessError reports whether err is one of the expected rule
// violations rather than an unexpected fault.
func IsBusinessError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrInvalid)
}

// IDNumberKey returns the comparison key for an ID number. Two ID numbers
// are the same when their keys are equal, i.e. they match ignoring case.
func IDNumberKey(idNumber string) string {
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Fold().String(idNumber)
}

// Repository is the storage contract.
//
// Every method is safe for concurrent use and runs atomically with
// respect to every other method: a read never observes a half-applied
// write and two writes never interleave.
type Repository interface {
	// GetAll returns a copy of every stored student in insertion order.
	// The result is never nil.
	GetAll() ([]types.Student, error)

	// GetByID returns ErrStudentNotFound if no student has the id.
	GetByID(id uuid.UUID) (types.Student, error)

	// Add inserts student and returns what was stored. It fails with
	// ErrIDNumberExists if the ID number is already in use and with
	// ErrStudentExists if the id is.
	Add(student types.Student) (types.Student, error)

	// Update replaces the student with the same id. It fails with
	// ErrStudentNotFound if there is none and with ErrIDNumberTaken if a
	// different student holds the ID number.
	Update(student types.Student) (types.Student, error)

	// Delete removes the student, or fails with ErrStudentNotFound.
	Delete(id uuid.UUID) error

	ExistsByID(id uuid.UUID) (bool, error)

	// ExistsByIDNumber fails with ErrIDNumberEmpty for empty or
	// whitespace-only input.
	ExistsByIDNumber(idNumber string) (bool, error)
}
