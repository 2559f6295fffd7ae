// Package sqlite provides a SQLite-backed implementation of the
// storage.Repository interface using Go's standard database/sql package.
//
// It is the alternative to the default in-memory store and is selected with
//
//	storage:
//	  driver: sqlite
//	  path: ":memory:"   # or a file path
//
// The default path ":memory:" keeps the whole database in process memory,
// so state still lasts only as long as the process. A file path keeps it
// across restarts.
//
// Uniqueness of the ID number is enforced twice: by an explicit check
// inside each transaction (so the caller gets the right error) and by a
// UNIQUE column holding storage.IDNumberKey(idNumber) (so the table can
// never hold a duplicate even if the check is bypassed).
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/google/uuid"

	// Also registers the "sqlite3" driver with database/sql.
	"github.com/mattn/go-sqlite3"
)

// Dates are stored as text so they come back exactly as written,
// independent of the driver's own time handling.
const dateLayout = time.RFC3339Nano

// SQLite is the SQLite storage.Repository.
//
// A single mutex serializes every method, matching the in-memory store:
// each call runs as one unit, never interleaved with another.
type SQLite struct {
	mu sync.Mutex
	Db *sql.DB
}

var _ storage.Repository = (*SQLite)(nil)

// New opens the SQLite database at cfg.Storage.Path, creates the students
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Every connection to ":memory:" is its own empty database, so the
	// pool must never open a second one.
	db.SetMaxOpenConns(1)

	// seq gives GetAll a stable insertion order; id is the public key.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			seq             INTEGER PRIMARY KEY AUTOINCREMENT,
			id              TEXT    NOT NULL UNIQUE,
			name            TEXT    NOT NULL,
			id_number       TEXT    NOT NULL,
			id_number_key   TEXT    NOT NULL UNIQUE,
			email           TEXT    NOT NULL,
			enrollment_date TEXT    NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the underlying database.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

const selectColumns = "SELECT id, name, id_number, email, enrollment_date FROM students"

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (types.Student, error) {
	var (
		student types.Student
		id      string
		date    string
	)
	if err := row.Scan(&id, &student.Name, &student.IDNumber, &student.Email, &date); err != nil {
		return types.Student{}, err
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return types.Student{}, fmt.Errorf("parse id %q: %w", id, err)
	}
	enrolled, err := time.Parse(dateLayout, date)
	if err != nil {
		return types.Student{}, fmt.Errorf("parse enrollment date %q: %w", date, err)
	}

	student.ID = parsedID
	student.EnrollmentDate = enrolled
	return student, nil
}

func (s *SQLite) GetAll() ([]types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.Db.Query(selectColumns + " ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("GetAll: query: %w", err)
	}
	defer rows.Close()

	// Pre-allocate an empty (non-nil) slice so an empty table encodes as [].
	students := make([]types.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("GetAll: scan row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetAll: rows iteration: %w", err)
	}

	return students, nil
}

func (s *SQLite) GetByID(id uuid.UUID) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return getByID(s.Db, id)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func getByID(q querier, id uuid.UUID) (types.Student, error) {
	student, err := scanStudent(q.QueryRow(selectColumns+" WHERE id = ? LIMIT 1", id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, storage.ErrStudentNotFound
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("GetByID: scan: %w", err)
	}
	return student, nil
}

// idNumberOwner returns the id of the student holding idNumber, or
// uuid.Nil if nobody does.
func idNumberOwner(q querier, idNumber string) (uuid.UUID, error) {
	var owner string
	err := q.QueryRow(
		"SELECT id FROM students WHERE id_number_key = ? LIMIT 1",
		storage.IDNumberKey(idNumber),
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(owner)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (s *SQLite) Add(student types.Student) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.Db.Begin()
	if err != nil {
		return types.Student{}, fmt.Errorf("Add: begin: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer tx.Rollback()

	owner, err := idNumberOwner(tx, student.IDNumber)
	if err != nil {
		return types.Student{}, fmt.Errorf("Add: check id number: %w", err)
	}
	if owner != uuid.Nil {
		return types.Student{}, storage.ErrIDNumberExists
	}

	if _, err := getByID(tx, student.ID); err == nil {
		return types.Student{}, storage.ErrStudentExists
	} else if !errors.Is(err, storage.ErrNotFound) {
		return types.Student{}, fmt.Errorf("Add: check id: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO students (id, name, id_number, id_number_key, email, enrollment_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		student.ID.String(),
		student.Name,
		student.IDNumber,
		storage.IDNumberKey(student.IDNumber),
		student.Email,
		student.EnrollmentDate.UTC().Format(dateLayout),
	)
	if isUniqueViolation(err) {
		return types.Student{}, storage.ErrIDNumberExists
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("Add: exec: %w", err)
	}

	stored, err := getByID(tx, student.ID)
	if err != nil {
		return types.Student{}, fmt.Errorf("Add: reload: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("Add: commit: %w", err)
	}
	return stored, nil
}

func (s *SQLite) Update(student types.Student) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.Db.Begin()
	if err != nil {
		return types.Student{}, fmt.Errorf("Update: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := getByID(tx, student.ID); err != nil {
		return types.Student{}, err
	}

	owner, err := idNumberOwner(tx, student.IDNumber)
	if err != nil {
		return types.Student{}, fmt.Errorf("Update: check id number: %w", err)
	}
	if owner != uuid.Nil && owner != student.ID {
		return types.Student{}, storage.ErrIDNumberTaken
	}

	_, err = tx.Exec(
		`UPDATE students
		 SET name = ?, id_number = ?, id_number_key = ?, email = ?, enrollment_date = ?
		 WHERE id = ?`,
		student.Name,
		student.IDNumber,
		storage.IDNumberKey(student.IDNumber),
		student.Email,
		student.EnrollmentDate.UTC().Format(dateLayout),
		student.ID.String(),
	)
	if isUniqueViolation(err) {
		return types.Student{}, storage.ErrIDNumberTaken
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("Update: exec: %w", err)
	}

	// Re-fetch the record so we return exactly what is stored.
	stored, err := getByID(tx, student.ID)
	if err != nil {
		return types.Student{}, fmt.Errorf("Update: reload: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("Update: commit: %w", err)
	}
	return stored, nil
}

func (s *SQLite) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.Db.Exec("DELETE FROM students WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("Delete: exec: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrStudentNotFound
	}
	return nil
}

func (s *SQLite) ExistsByID(id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	err := s.Db.QueryRow("SELECT EXISTS(SELECT 1 FROM students WHERE id = ?)", id.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsByID: scan: %w", err)
	}
	return exists, nil
}

func (s *SQLite) ExistsByIDNumber(idNumber string) (bool, error) {
	if strings.TrimSpace(idNumber) == "" {
		return false, storage.ErrIDNumberEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := idNumberOwner(s.Db, idNumber)
	if err != nil {
		return false, fmt.Errorf("ExistsByIDNumber: scan: %w", err)
	}
	return owner != uuid.Nil, nil
}
